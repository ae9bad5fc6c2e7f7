package publisher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	batches  map[string][]catalog.Listing
	urls     map[string]bool
	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{batches: map[string][]catalog.Listing{}, urls: map[string]bool{}}
}

func (s *fakeStore) InsertNew(_ context.Context, batchID string, listings []catalog.Listing) (catalog.InsertResult, error) {
	if s.failWith != nil {
		return catalog.InsertResult{}, s.failWith
	}
	var res catalog.InsertResult
	for _, l := range listings {
		if l.URL != "" && s.urls[l.URL] {
			res.Skipped++
			continue
		}
		s.urls[l.URL] = l.URL != ""
		s.batches[batchID] = append(s.batches[batchID], l)
		res.Inserted++
	}
	return res, nil
}

type fakeProducer struct {
	events []kafka.Event
	err    error
}

func (p *fakeProducer) Publish(_ context.Context, events ...kafka.Event) error {
	p.events = append(p.events, events...)
	return p.err
}

func TestImportStoresAndPublishes(t *testing.T) {
	store, prod := newFakeStore(), &fakeProducer{}
	p := New(store, prod)

	resp, err := p.Import(context.Background(), "api", []ingestion.ListingRecord{
		{Title: "Backend Developer", URL: "https://example.com/1"},
		{Title: ""},
		{Title: "Graphic Designer", URL: "https://example.com/2"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.BatchID)
	assert.Equal(t, 2, resp.Inserted)
	require.Len(t, resp.Rejected, 1)
	assert.Equal(t, 1, resp.Rejected[0].Index)
	assert.Len(t, store.batches[resp.BatchID], 2)

	require.Len(t, prod.events, 1)
	ev, ok := prod.events[0].Value.(ingestion.CatalogUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, resp.BatchID, ev.BatchID)
	assert.Equal(t, 2, ev.Inserted)
	assert.Equal(t, "api", ev.Origin)
}

func TestImportDuplicatesDoNotPublish(t *testing.T) {
	store, prod := newFakeStore(), &fakeProducer{}
	p := New(store, prod)
	records := []ingestion.ListingRecord{{Title: "Backend Developer", URL: "https://example.com/1"}}

	_, err := p.Import(context.Background(), "api", records)
	require.NoError(t, err)
	resp, err := p.Import(context.Background(), "api", records)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Inserted)
	assert.Equal(t, 1, resp.Skipped)
	assert.Len(t, prod.events, 1)
}

func TestImportAllInvalid(t *testing.T) {
	p := New(newFakeStore(), nil)
	resp, err := p.Import(context.Background(), "api", []ingestion.ListingRecord{{Title: " "}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, 400, apperrors.HTTPStatusCode(err))
	require.NotNil(t, resp)
	assert.Len(t, resp.Rejected, 1)
}

func TestImportStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.failWith = apperrors.ErrCatalogUnavailable
	_, err := New(store, nil).Import(context.Background(), "api", []ingestion.ListingRecord{{Title: "x"}})
	assert.ErrorIs(t, err, apperrors.ErrCatalogUnavailable)
}

func TestImportPublishFailureIsNotFatal(t *testing.T) {
	prod := &fakeProducer{err: errors.New("broker down")}
	resp, err := New(newFakeStore(), prod).Import(context.Background(), "api", []ingestion.ListingRecord{{Title: "x"}})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Inserted)
}

func TestImportCSV(t *testing.T) {
	store := newFakeStore()
	p := New(store, nil)
	csv := "Title,Company,Location,Salary,JobType,DatePosted,URL,Description\n" +
		"Backend Developer,Tokopedia,Jakarta,8000000,Remote,2024-05-01,https://example.com/1,Go services\n" +
		",Nobody,Bandung,,Contract,,,\n"
	resp, err := p.ImportCSV(context.Background(), "csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Inserted)
	assert.Len(t, resp.Rejected, 1)
	assert.Equal(t, "Tokopedia", store.batches[resp.BatchID][0].Company)

	_, err = p.ImportCSV(context.Background(), "csv", strings.NewReader("Foo,Bar\n1,2\n"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
