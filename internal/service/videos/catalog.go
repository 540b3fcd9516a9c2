// Package videos links questions to curated explainer videos by keyword.
package videos

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

// MaxResults is the most videos returned for one question.
const MaxResults = 3

//go:embed catalog.yaml
var defaultCatalog []byte

type entry struct {
	Keywords []string        `yaml:"keywords"`
	Video    domain.VideoRef `yaml:"video"`
}

// Catalog is an immutable keyword index of videos.
type Catalog struct {
	entries []entry
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("videos: embedded catalog: %v", err))
	}
	return c
}

// Parse builds a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var entries []entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i, e := range entries {
		if e.Video.ID == "" || len(e.Keywords) == 0 {
			return nil, fmt.Errorf("catalog entry %d: id and keywords are required", i)
		}
		for j, kw := range e.Keywords {
			entries[i].Keywords[j] = strings.ToLower(strings.TrimSpace(kw))
		}
	}
	return &Catalog{entries: entries}, nil
}

// Len returns the number of videos in the catalog.
func (c *Catalog) Len() int { return len(c.entries) }

// Lookup returns up to MaxResults videos whose keywords occur in question,
// in catalog order. It never returns nil.
func (c *Catalog) Lookup(question string) []domain.VideoRef {
	q := domain.NormalizeQuery(question)
	out := make([]domain.VideoRef, 0, MaxResults)
	if q == "" {
		return out
	}

	for _, e := range c.entries {
		if len(out) == MaxResults {
			break
		}
		for _, kw := range e.Keywords {
			if kw != "" && strings.Contains(q, kw) {
				out = append(out, e.Video)
				break
			}
		}
	}
	return out
}
