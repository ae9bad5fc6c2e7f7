package tokenizer

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/locale"
	"github.com/stretchr/testify/assert"
)

func newTestNormalizer() *Normalizer {
	return New(&locale.Locale{Stopwords: []string{"dan", "yang", "di", "untuk"}})
}

func TestNormalize(t *testing.T) {
	n := newTestNormalizer()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Backend DEVELOPER", "backend developer"},
		{"apostrophe merges without space", "it's", "its"},
		{"strips punctuation", "Go, Python & SQL!", "go python sql"},
		{"removes stopwords", "developer dan designer yang handal", "developer designer handal"},
		{"collapses whitespace", "  senior \t engineer \n ", "senior engineer"},
		{"keeps digits", "gaji 5.000.000", "gaji 5000000"},
		{"only stopwords", "dan yang di", ""},
		{"empty", "", ""},
		{"unicode letters survive", "Café—Barista", "cafébarista"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := New(locale.Default())
	inputs := []string{
		"Backend Developer (Golang) - Jakarta, Remote",
		"Dicari: UI/UX Designer untuk tim yang berkembang!!!",
		"it's a 'quoted' string; with -- dashes",
		"Gaji > 5,000,000 di Bandung",
		"İstanbul ǅemal ﬁle",
		"",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}

func TestNormalizeDropsEveryStopword(t *testing.T) {
	loc := locale.Default()
	n := New(loc)
	for _, w := range loc.Stopwords {
		assert.Empty(t, n.Normalize(w), "stopword %q survived", w)
	}
}

func TestNormalizeValue(t *testing.T) {
	n := newTestNormalizer()
	assert.Equal(t, "", n.NormalizeValue(nil))
	assert.Equal(t, "", n.NormalizeValue(42))
	assert.Equal(t, "", n.NormalizeValue(3.14))
	assert.Equal(t, "golang", n.NormalizeValue("Golang!"))
}

func TestTokens(t *testing.T) {
	n := newTestNormalizer()
	assert.Equal(t, []string{"data", "engineer", "jakarta"}, n.Tokens("Data Engineer di Jakarta"))
	assert.Empty(t, n.Tokens(""))
}
