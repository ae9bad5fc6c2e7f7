package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/ingestion/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/logger"
)

// maxBodyBytes bounds both JSON batches and CSV uploads.
const maxBodyBytes = 32 << 20

// Importer is satisfied by publisher.Publisher.
type Importer interface {
	Import(ctx context.Context, origin string, records []ingestion.ListingRecord) (*ingestion.ImportResponse, error)
	ImportCSV(ctx context.Context, origin string, r io.Reader) (*ingestion.ImportResponse, error)
}

type Handler struct {
	importer Importer
	logger   *slog.Logger
}

func New(importer Importer) *Handler {
	return &Handler{
		importer: importer,
		logger:   slog.Default().With("component", "ingestion-handler"),
	}
}

// Import accepts a JSON ImportRequest, or a raw scraper CSV when the
// Content-Type is text/csv.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var (
		resp *ingestion.ImportResponse
		err  error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		resp, err = h.importer.ImportCSV(ctx, "http-csv", body)
	} else {
		var req ingestion.ImportRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validator.ValidateImportRequest(&req); err != nil {
			var validationErr *validator.ValidationError
			if errors.As(err, &validationErr) {
				h.writeJSON(w, http.StatusBadRequest, map[string]any{
					"error":  "validation failed",
					"fields": validationErr.Fields,
				})
				return
			}
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		resp, err = h.importer.Import(ctx, "http", req.Listings)
	}

	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		log.Error("import failed",
			"error", err,
			"status_code", statusCode,
		)
		payload := map[string]any{"error": apperrors.PublicMessage(err)}
		if resp != nil && len(resp.Rejected) > 0 {
			payload["rejected"] = resp.Rejected
		}
		h.writeJSON(w, statusCode, payload)
		return
	}
	log.Info("listings imported",
		"batch_id", resp.BatchID,
		"inserted", resp.Inserted,
		"skipped", resp.Skipped,
		"rejected", len(resp.Rejected),
	)
	h.writeJSON(w, http.StatusAccepted, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
