package matching

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

const (
	aliasesFile  = "aliases.yaml"
	phoneticFile = "phonetic.yaml"
)

//go:embed data/aliases.yaml data/phonetic.yaml
var embedded embed.FS

// BuiltinAlias is one entry of the static alias table.
type BuiltinAlias struct {
	Alias     string `yaml:"alias"`
	Canonical string `yaml:"canonical"`
	Category  string `yaml:"category"`
	Faction   string `yaml:"faction,omitempty"`
}

// PhoneticOverride lists the ways a canonical name is commonly mis-captioned,
// most common first.
type PhoneticOverride struct {
	Canonical string   `yaml:"canonical"`
	Category  string   `yaml:"category"`
	Faction   string   `yaml:"faction,omitempty"`
	Variants  []string `yaml:"variants"`
}

// tableHit is a resolved table row keyed by its normalized alias or variant.
type tableHit struct {
	canonical string
	category  domain.Category
	faction   *string
	// rank is the variant position for phonetic rows, 0 for aliases.
	rank int
}

// Tables holds the built-in alias and phonetic override tables. It is built
// once at startup and read-only afterwards, so it needs no locking.
type Tables struct {
	aliases  map[string][]tableHit
	phonetic map[string][]tableHit
	builtins []BuiltinAlias
}

var (
	defaultOnce   sync.Once
	defaultTables *Tables
)

// DefaultTables returns the tables embedded in the binary. It panics if the
// embedded files are broken, which is a build defect.
func DefaultTables() *Tables {
	defaultOnce.Do(func() {
		t, err := loadTablesFS(embedded, "data")
		if err != nil {
			panic(fmt.Sprintf("matching: embedded tables: %v", err))
		}
		defaultTables = t
	})
	return defaultTables
}

// LoadTables reads aliases.yaml and phonetic.yaml from dir. An empty dir
// returns the embedded tables. A missing file in dir falls back to the
// embedded copy of that file.
func LoadTables(dir string) (*Tables, error) {
	if dir == "" {
		return DefaultTables(), nil
	}
	return loadTablesFS(overlayFS{primary: os.DirFS(dir), fallback: mustSub(embedded, "data")}, ".")
}

func loadTablesFS(fsys fs.FS, dir string) (*Tables, error) {
	var aliases []BuiltinAlias
	if err := readYAML(fsys, path.Join(dir, aliasesFile), &aliases); err != nil {
		return nil, err
	}

	var overrides []PhoneticOverride
	if err := readYAML(fsys, path.Join(dir, phoneticFile), &overrides); err != nil {
		return nil, err
	}

	return NewTables(aliases, overrides)
}

// NewTables validates and indexes the given rows.
func NewTables(aliases []BuiltinAlias, overrides []PhoneticOverride) (*Tables, error) {
	t := &Tables{
		aliases:  make(map[string][]tableHit, len(aliases)),
		phonetic: make(map[string][]tableHit),
		builtins: make([]BuiltinAlias, 0, len(aliases)),
	}

	for i, a := range aliases {
		key := domain.Normalize(a.Alias)
		if key == "" || a.Canonical == "" {
			return nil, fmt.Errorf("aliases[%d]: alias and canonical are required", i)
		}
		cat, err := domain.ParseCategory(a.Category)
		if err != nil {
			return nil, fmt.Errorf("aliases[%d] %q: %w", i, a.Alias, err)
		}

		hit := tableHit{canonical: a.Canonical, category: cat, faction: domain.StringPtr(a.Faction)}
		if slices.ContainsFunc(t.aliases[key], hit.sameScope) {
			return nil, fmt.Errorf("aliases[%d]: duplicate alias %q for %s", i, key, cat)
		}
		t.aliases[key] = append(t.aliases[key], hit)
		t.builtins = append(t.builtins, BuiltinAlias{Alias: key, Canonical: a.Canonical, Category: string(cat), Faction: a.Faction})
	}

	for i, o := range overrides {
		if o.Canonical == "" || len(o.Variants) == 0 {
			return nil, fmt.Errorf("phonetic[%d]: canonical and variants are required", i)
		}
		cat, err := domain.ParseCategory(o.Category)
		if err != nil {
			return nil, fmt.Errorf("phonetic[%d] %q: %w", i, o.Canonical, err)
		}

		canonicalKey := domain.StripApostrophes(domain.Normalize(o.Canonical))
		for rank, v := range o.Variants {
			key := domain.Normalize(v)
			if key == "" {
				return nil, fmt.Errorf("phonetic[%d] %q: empty variant at %d", i, o.Canonical, rank)
			}
			// A variant spelling the canonical name would shadow a perfect fuzzy match.
			if domain.StripApostrophes(key) == canonicalKey {
				return nil, fmt.Errorf("phonetic[%d] %q: variant %q equals the canonical name", i, o.Canonical, v)
			}
			t.phonetic[key] = append(t.phonetic[key], tableHit{
				canonical: o.Canonical,
				category:  cat,
				faction:   domain.StringPtr(o.Faction),
				rank:      rank,
			})
		}
	}

	return t, nil
}

// AliasCount returns the number of built-in aliases.
func (t *Tables) AliasCount() int { return len(t.builtins) }

// PhoneticCount returns the number of distinct phonetic variants.
func (t *Tables) PhoneticCount() int { return len(t.phonetic) }

// BuiltinAliases returns the built-in aliases pointing at entities of the
// given category. A non-empty faction keeps faction-agnostic rows and rows of
// that faction.
func (t *Tables) BuiltinAliases(category domain.Category, faction string) []BuiltinAlias {
	var out []BuiltinAlias
	for _, a := range t.builtins {
		if a.Category != string(category) {
			continue
		}
		if faction != "" && a.Faction != "" && !sameFaction(a.Faction, faction) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (t *Tables) builtin(token string, categories []domain.Category, factions []string) (tableHit, bool) {
	return pickHit(t.aliases[token], categories, factions)
}

func (t *Tables) phoneticHit(token string, categories []domain.Category, factions []string) (tableHit, bool) {
	return pickHit(t.phonetic[token], categories, factions)
}

// pickHit prefers a row of one of the requested factions, then a
// faction-agnostic row. Rows of other factions only qualify when no faction
// was requested.
func pickHit(hits []tableHit, categories []domain.Category, factions []string) (tableHit, bool) {
	var agnostic, other *tableHit
	for i := range hits {
		h := &hits[i]
		if len(categories) > 0 && !slices.Contains(categories, h.category) {
			continue
		}
		switch {
		case h.faction == nil:
			if agnostic == nil {
				agnostic = h
			}
		case factionIn(*h.faction, factions):
			return *h, true
		default:
			if other == nil {
				other = h
			}
		}
	}

	if agnostic != nil {
		return *agnostic, true
	}
	if other != nil && len(factions) == 0 {
		return *other, true
	}
	return tableHit{}, false
}

func (h tableHit) sameScope(o tableHit) bool {
	return h.category == o.category && sameFaction(domain.Deref(h.faction), domain.Deref(o.faction))
}

func factionIn(faction string, factions []string) bool {
	return slices.ContainsFunc(factions, func(f string) bool { return sameFaction(f, faction) })
}

// sameFaction compares faction names and ids case- and punctuation-insensitively,
// so "space-marines" equals "Space Marines".
func sameFaction(a, b string) bool {
	return domain.FactionKey(a) == domain.FactionKey(b)
}

func readYAML(fsys fs.FS, name string, dst any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// overlayFS serves files from primary and falls back when they are missing.
type overlayFS struct {
	primary  fs.FS
	fallback fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return o.fallback.Open(name)
	}
	return f, err
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
