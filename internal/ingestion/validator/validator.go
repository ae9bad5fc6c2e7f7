// Package validator checks listing records before they are stored. Records
// are validated one by one so a batch can be partially accepted.
package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/ingestion"
	"github.com/go-playground/validator/v10"
)

// validate caches struct metadata, so one instance is shared.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// ValidateRecord trims the record's fields in place and checks them.
func ValidateRecord(r *ingestion.ListingRecord) error {
	trim(r)
	return toValidationError(validate.Struct(r))
}

// ValidateImportRequest checks the batch envelope only; records are checked
// with ValidateRecord.
func ValidateImportRequest(req *ingestion.ImportRequest) error {
	return toValidationError(validate.Struct(req))
}

// Partition splits records into valid ones and rejections indexed by their
// position in the input.
func Partition(records []ingestion.ListingRecord) ([]ingestion.ListingRecord, []ingestion.RejectedRecord) {
	valid := make([]ingestion.ListingRecord, 0, len(records))
	var rejected []ingestion.RejectedRecord
	for i := range records {
		r := records[i]
		if err := ValidateRecord(&r); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				rejected = append(rejected, ingestion.RejectedRecord{Index: i, Fields: ve.Fields})
				continue
			}
			rejected = append(rejected, ingestion.RejectedRecord{Index: i, Fields: map[string]string{"record": err.Error()}})
			continue
		}
		valid = append(valid, r)
	}
	return valid, rejected
}

func trim(r *ingestion.ListingRecord) {
	for _, f := range []*string{&r.Title, &r.Company, &r.Location, &r.Salary, &r.JobType,
		&r.DatePosted, &r.URL, &r.LogoURL, &r.Description} {
		*f = strings.TrimSpace(*f)
	}
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	errs := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs[jsonName(fe.Field())] = message(fe)
	}
	return &ValidationError{Fields: errs}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "max":
		return fmt.Sprintf("must be at most %s long", fe.Param())
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

var jsonNames = map[string]string{
	"Title": "title", "Company": "company", "Location": "location", "Salary": "salary",
	"JobType": "job_type", "DatePosted": "date_posted", "URL": "url", "LogoURL": "logo_url",
	"Description": "description", "Listings": "listings",
}

func jsonName(field string) string {
	if n, ok := jsonNames[field]; ok {
		return n
	}
	return strings.ToLower(field)
}
