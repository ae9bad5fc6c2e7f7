package parser

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/locale"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/synonym"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInterpreter() *Interpreter {
	loc := locale.Default()
	return New(loc, tokenizer.New(loc), synonym.New(loc))
}

func ptr(v int64) *int64 { return &v }

func TestParseConstraints(t *testing.T) {
	p := newInterpreter()
	tests := []struct {
		name     string
		query    string
		location string
		jobType  string
		min      *int64
		max      *int64
	}{
		{"above marker", "jobs above 5000000 in jakarta remote", "jakarta", "remote", ptr(5000000), nil},
		{"two numbers no marker", "gaji 3000000 5000000", "", "", ptr(3000000), ptr(5000000)},
		{"two numbers reversed", "gaji 9000000 4000000", "", "", ptr(4000000), ptr(9000000)},
		{"single number no marker", "developer 5000000", "", "", nil, nil},
		{"below marker", "designer under 4000000", "", "", nil, ptr(4000000)},
		{"symbol above", "gaji >7000000 bandung", "bandung", "", ptr(7000000), nil},
		{"symbol below", "gaji <=3000000", "", "", nil, ptr(3000000)},
		{"indonesian above", "gaji di atas 6000000", "", "", ptr(6000000), nil},
		{"indonesian below", "gaji kurang dari 6000000", "", "", nil, ptr(6000000)},
		{"above wins over below", "above 5000000 below 9000000", "", "", ptr(5000000), nil},
		{"thousands dots", "gaji 5.000.000 - 7.500.000", "", "", ptr(5000000), ptr(7500000)},
		{"thousands commas", "salary 5,000,000 8,000,000", "", "", ptr(5000000), ptr(8000000)},
		{"marker inside word ignored", "discover 3000000 8000000", "", "", ptr(3000000), ptr(8000000)},
		{"no signals", "backend developer", "", "", nil, nil},
		{"freelance", "freelance designer", "", "freelance", nil, nil},
		{"remote before contract", "contract remote developer", "", "remote", nil, nil},
		{"location list order wins", "bandung or jakarta", "jakarta", "", nil, nil},
		{"case insensitive", "Developer JAKARTA Remote", "jakarta", "remote", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := p.Parse(tt.query)
			assert.Equal(t, tt.location, q.Location)
			assert.Equal(t, tt.jobType, q.JobType)
			assert.Equal(t, tt.min, q.SalaryMin)
			assert.Equal(t, tt.max, q.SalaryMax)
		})
	}
}

func TestParseCleanedText(t *testing.T) {
	p := newInterpreter()
	q := p.Parse("Developer, Jakarta!")
	assert.Equal(t, "Developer, Jakarta!", q.RawQuery)
	assert.Equal(t, "developer jakarta", q.Normalized)
	assert.Equal(t, "developer programmer engineer coder jakarta", q.CleanedText)
}

func TestParseMalformedInput(t *testing.T) {
	p := newInterpreter()
	for _, raw := range []string{"", "   ", ">>><<<", "99999999999999999999999 1", "!!!"} {
		require.NotPanics(t, func() { p.Parse(raw) }, raw)
	}
	q := p.Parse("99999999999999999999999 1 2")
	assert.Equal(t, ptr(1), q.SalaryMin)
	assert.Equal(t, ptr(2), q.SalaryMax)
}
