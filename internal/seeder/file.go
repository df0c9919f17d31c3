// Package seeder loads canonical entities from a local YAML fixture into the
// entity store. Production data comes from external ingestion.
package seeder

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

// File is the fixture layout. Each group shares one faction; a group without
// a faction holds faction-agnostic entities such as core stratagems.
//
//	groups:
//	  - faction: Drukhari
//	    names:
//	      unit: [Wyches, Incubi]
//	      detachment: [Kabalite Cartel]
//	  - names:
//	      stratagem: [Fire Overwatch]
type File struct {
	Groups []Group `yaml:"groups"`
}

// Group is a set of entity names keyed by category.
type Group struct {
	Faction string              `yaml:"faction"`
	Names   map[string][]string `yaml:"names"`
}

// ReadFile parses the fixture at path.
func ReadFile(path string) ([]domain.CandidateEntity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes a fixture and flattens it into entities, categories sorted
// within each group. Blank names are
// skipped and duplicates within one (category, faction) scope collapse.
// Unknown categories fail the whole file.
func Parse(r io.Reader) ([]domain.CandidateEntity, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	type scopeKey struct {
		category domain.Category
		faction  string
		name     string
	}
	seen := make(map[scopeKey]struct{})

	var out []domain.CandidateEntity
	for i, g := range file.Groups {
		faction := strings.TrimSpace(g.Faction)
		for _, rawCat := range slices.Sorted(maps.Keys(g.Names)) {
			names := g.Names[rawCat]
			cat, err := domain.ParseCategory(rawCat)
			if err != nil {
				return nil, fmt.Errorf("group %d: %w", i, err)
			}
			for _, name := range names {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				key := scopeKey{cat, strings.ToLower(faction), name}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, domain.CandidateEntity{
					Name:     name,
					Category: cat,
					Faction:  domain.StringPtr(faction),
				})
			}
		}
	}
	return out, nil
}

// Categories returns the distinct categories of entities in first-seen order.
func Categories(entities []domain.CandidateEntity) []domain.Category {
	seen := make(map[domain.Category]struct{})
	var out []domain.Category
	for _, e := range entities {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	return out
}
