package executor

import (
	"context"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/locale"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/filter"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/suggest"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/synonym"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var twoListings = catalog.StaticSource{
	{Title: "Backend Developer", Company: "Tokopedia", Location: "Jakarta", Salary: "8000000", JobType: "Remote", Description: "Build Go services"},
	{Title: "Graphic Designer", Company: "Gojek", Location: "Bandung", Salary: "4000000", JobType: "Contract", Description: "Create visual assets"},
}

func newExecutor(t *testing.T, src catalog.Source, cfg config.SearchConfig) *Executor {
	t.Helper()
	loc := locale.Default()
	norm := tokenizer.New(loc)
	engine := indexer.NewEngine(src, norm, config.CatalogConfig{BuildConcurrency: 2}, nil)
	_, err := engine.Reload(context.Background())
	require.NoError(t, err)
	return New(engine, parser.New(loc, norm, synonym.New(loc)), suggest.New(3, 0.6), cfg)
}

var searchCfg = config.SearchConfig{DefaultLimit: 10, MaxResults: 100}

func TestSearchEndToEnd(t *testing.T) {
	e := newExecutor(t, twoListings, searchCfg)
	res, err := e.Search(context.Background(), Request{Query: "developer jakarta remote"})
	require.NoError(t, err)

	require.Len(t, res.Results, 1)
	got := res.Results[0]
	assert.Equal(t, 0, got.ID)
	assert.Equal(t, "Backend Developer", got.Title)
	assert.Equal(t, 1, got.Rank)
	assert.Greater(t, got.Score, 0.0)
	assert.Equal(t, "jakarta", res.Constraints.Location)
	assert.Equal(t, "remote", res.Constraints.JobType)
	assert.Empty(t, res.Suggestions)
	assert.Equal(t, filter.SortSimilarity, res.Sort)
	assert.Equal(t, uint64(1), res.Generation)
}

func TestSearchZeroResultsSuggestsExistingTitles(t *testing.T) {
	e := newExecutor(t, twoListings, searchCfg)
	res, err := e.Search(context.Background(), Request{Query: "quantum pastry chef"})
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.NotNil(t, res.Suggestions)
	for _, s := range res.Suggestions {
		assert.Contains(t, []string{"Backend Developer", "Graphic Designer"}, s)
	}
}

func TestSearchSuggestsForTypo(t *testing.T) {
	e := newExecutor(t, twoListings, searchCfg)
	res, err := e.Search(context.Background(), Request{Query: "grafic desainer"})
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.Equal(t, []string{"Graphic Designer"}, res.Suggestions)
}

func TestSearchExplicitFiltersOverrideParsed(t *testing.T) {
	e := newExecutor(t, twoListings, searchCfg)

	res, err := e.Search(context.Background(), Request{Query: "developer jakarta", Location: "Bandung"})
	require.NoError(t, err)
	assert.Equal(t, "bandung", res.Constraints.Location)
	assert.Empty(t, res.Results)

	res, err = e.Search(context.Background(), Request{Query: "designer", JobType: "contract"})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, 1, res.Results[0].ID)
}

func TestSearchSalaryFromQuery(t *testing.T) {
	e := newExecutor(t, twoListings, searchCfg)
	res, err := e.Search(context.Background(), Request{Query: "developer designer above 5000000"})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "Backend Developer", res.Results[0].Title)
	require.NotNil(t, res.Constraints.SalaryMin)
	assert.Equal(t, int64(5000000), *res.Constraints.SalaryMin)
}

func TestSearchValidation(t *testing.T) {
	e := newExecutor(t, twoListings, searchCfg)
	for name, req := range map[string]Request{
		"empty query":    {Query: ""},
		"blank query":    {Query: "   "},
		"bad sort":       {Query: "developer", Sort: "relevance"},
		"negative limit": {Query: "developer", Limit: -1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := e.Search(context.Background(), req)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Equal(t, 400, apperrors.HTTPStatusCode(err))
		})
	}
}

func TestSearchLimits(t *testing.T) {
	var many catalog.StaticSource
	for i := 0; i < 30; i++ {
		many = append(many, catalog.Listing{Title: fmt.Sprintf("Developer %d", i), Location: "Jakarta"})
	}
	e := newExecutor(t, many, config.SearchConfig{DefaultLimit: 10, MaxResults: 20})

	res, err := e.Search(context.Background(), Request{Query: "developer"})
	require.NoError(t, err)
	assert.Len(t, res.Results, 10)

	res, err = e.Search(context.Background(), Request{Query: "developer", Limit: 3})
	require.NoError(t, err)
	assert.Len(t, res.Results, 3)

	res, err = e.Search(context.Background(), Request{Query: "developer", Limit: 500})
	require.NoError(t, err)
	assert.Len(t, res.Results, 20)
}

func TestSearchSalarySort(t *testing.T) {
	src := catalog.StaticSource{
		{Title: "Developer", Salary: "5000000"},
		{Title: "Developer", Salary: "9000000"},
		{Title: "Developer", Salary: "n/a"},
		{Title: "Developer", Salary: "7000000"},
	}
	e := newExecutor(t, src, searchCfg)
	res, err := e.Search(context.Background(), Request{Query: "developer", Sort: "salary"})
	require.NoError(t, err)
	ids := make([]int, len(res.Results))
	for i, r := range res.Results {
		ids[i] = r.ID
	}
	assert.Equal(t, []int{1, 3, 0, 2}, ids)
}

func TestSearchNotReady(t *testing.T) {
	loc := locale.Default()
	norm := tokenizer.New(loc)
	engine := indexer.NewEngine(twoListings, norm, config.CatalogConfig{}, nil)
	e := New(engine, parser.New(loc, norm, synonym.New(loc)), suggest.New(0, 0), searchCfg)

	_, err := e.Search(context.Background(), Request{Query: "developer"})
	assert.ErrorIs(t, err, apperrors.ErrIndexNotReady)
	_, err = e.Detail(context.Background(), 0)
	assert.ErrorIs(t, err, apperrors.ErrIndexNotReady)
}

func TestDetailBounds(t *testing.T) {
	e := newExecutor(t, twoListings, searchCfg)

	l, err := e.Detail(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Graphic Designer", l.Title)
	assert.Equal(t, 1, l.ID)

	for _, id := range []int{2, -1} {
		_, err = e.Detail(context.Background(), id)
		assert.ErrorIs(t, err, apperrors.ErrListingNotFound)
		assert.Equal(t, 404, apperrors.HTTPStatusCode(err))
	}
}
