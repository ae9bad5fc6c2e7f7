// Package locale holds the deployment-specific word lists the search
// pipeline depends on: stopwords, synonym groups, known locations, job-type
// keywords and salary markers. The Indonesian list set is embedded; other
// locales are loaded from YAML files with the same layout.
package locale

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed id.yaml
var defaultLocale []byte

// SynonymGroup maps a canonical term to related terms.
type SynonymGroup struct {
	Term    string   `yaml:"term"`
	Related []string `yaml:"related"`
}

// SalaryMarkers lists phrases that turn the first number in a query into a
// lower (Above) or upper (Below) salary bound.
type SalaryMarkers struct {
	Above []string `yaml:"above"`
	Below []string `yaml:"below"`
}

type Locale struct {
	Name          string         `yaml:"name"`
	Stopwords     []string       `yaml:"stopwords"`
	Synonyms      []SynonymGroup `yaml:"synonyms"`
	Locations     []string       `yaml:"locations"`
	JobTypes      []string       `yaml:"jobTypes"`
	SalaryMarkers SalaryMarkers  `yaml:"salaryMarkers"`
}

// Default returns the embedded Indonesian locale.
func Default() *Locale {
	l, err := Parse(defaultLocale)
	if err != nil {
		panic(fmt.Sprintf("embedded locale is invalid: %v", err))
	}
	return l
}

// Load reads a locale file. An empty path returns Default().
func Load(path string) (*Locale, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading locale file %s: %w", path, err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("locale file %s: %w", path, err)
	}
	return l, nil
}

// Parse decodes and validates a locale document. All entries are
// lower-cased so matching can run on lower-cased text.
func Parse(data []byte) (*Locale, error) {
	var l Locale
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parsing locale: %w", err)
	}
	l.Stopwords = lowerAll(l.Stopwords)
	l.Locations = lowerAll(l.Locations)
	l.JobTypes = lowerAll(l.JobTypes)
	l.SalaryMarkers.Above = lowerAll(l.SalaryMarkers.Above)
	l.SalaryMarkers.Below = lowerAll(l.SalaryMarkers.Below)
	for i := range l.Synonyms {
		l.Synonyms[i].Term = strings.ToLower(strings.TrimSpace(l.Synonyms[i].Term))
		l.Synonyms[i].Related = lowerAll(l.Synonyms[i].Related)
		if l.Synonyms[i].Term == "" {
			return nil, fmt.Errorf("synonym group %d has no term", i)
		}
	}
	return &l, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
