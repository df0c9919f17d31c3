package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
	"github.com/heartmarshall/wh40k-terms/internal/matching"
	"github.com/heartmarshall/wh40k-terms/internal/service/feedback"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type staticIndex struct {
	entities []domain.CandidateEntity
}

func (s *staticIndex) Load(_ context.Context, categories []domain.Category, _ []string) []domain.CandidateEntity {
	if len(categories) == 0 {
		return s.entities
	}
	var out []domain.CandidateEntity
	for _, e := range s.entities {
		if slices.Contains(categories, e.Category) {
			out = append(out, e)
		}
	}
	return out
}

func (s *staticIndex) Names(ctx context.Context, category domain.Category, _ string) []string {
	var names []string
	for _, e := range s.Load(ctx, []domain.Category{category}, nil) {
		names = append(names, e.Name)
	}
	slices.Sort(names)
	return names
}

// memAliases is an in-memory alias store with increment-on-conflict upserts.
type memAliases struct {
	mu       sync.Mutex
	mappings []domain.AliasMapping
	listErr  error
}

func (m *memAliases) FindByAlias(_ context.Context, alias string) ([]domain.AliasMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AliasMapping
	for _, a := range m.mappings {
		if a.Alias == alias {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAliases) IncrementUsage(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.mappings {
		if m.mappings[i].ID == id {
			m.mappings[i].UsageCount++
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memAliases) Upsert(_ context.Context, a domain.AliasMapping) (*domain.AliasMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.mappings {
		e := &m.mappings[i]
		if e.Alias == a.Alias && e.EntityType == a.EntityType && domain.Deref(e.FactionID) == domain.Deref(a.FactionID) {
			e.UsageCount++
			e.CanonicalName = a.CanonicalName
			out := *e
			return &out, nil
		}
	}
	a.ID = uuid.New()
	a.UsageCount = 1
	m.mappings = append(m.mappings, a)
	return &a, nil
}

func (m *memAliases) ListByCategory(_ context.Context, category domain.Category, _ string) ([]domain.AliasMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.AliasMapping
	for _, a := range m.mappings {
		if a.EntityType == category {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAliases) usage(alias string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.mappings {
		if a.Alias == alias {
			return a.UsageCount
		}
	}
	return 0
}

// memFeedback is an in-memory feedback store.
type memFeedback struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.FeedbackItem
}

func newMemFeedback() *memFeedback {
	return &memFeedback{items: make(map[uuid.UUID]*domain.FeedbackItem)}
}

func (m *memFeedback) Create(_ context.Context, item *domain.FeedbackItem) (*domain.FeedbackItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *item
	m.items[item.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memFeedback) GetByID(_ context.Context, id uuid.UUID) (*domain.FeedbackItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *it
	return &out, nil
}

func (m *memFeedback) List(context.Context, domain.FeedbackFilter) ([]domain.FeedbackItem, int, error) {
	return nil, 0, nil
}

func (m *memFeedback) Stats(context.Context) (domain.FeedbackStats, error) {
	return domain.FeedbackStats{}, nil
}

func (m *memFeedback) Transition(_ context.Context, id uuid.UUID, to domain.FeedbackStatus, resolvedTo, resolvedBy *string, at time.Time) (*domain.FeedbackItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if it.Status != domain.FeedbackStatusPending {
		return nil, domain.ErrConflict
	}
	it.Status, it.ResolvedTo, it.ResolvedBy, it.ResolvedAt = to, resolvedTo, resolvedBy, &at
	out := *it
	return &out, nil
}

func (m *memFeedback) DeleteReviewedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (m *memFeedback) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ent(name string, cat domain.Category, faction string) domain.CandidateEntity {
	return domain.CandidateEntity{Name: name, Category: cat, Faction: domain.StringPtr(faction)}
}

func testCandidates() []domain.CandidateEntity {
	return []domain.CandidateEntity{
		ent("Kabalite Cartel", domain.CategoryDetachment, "Drukhari"),
		ent("Cantor", domain.CategoryUnit, "Imperial Agents"),
		ent("Guilliman", domain.CategoryUnit, "Ultramarines"),
		ent("Hellblasters", domain.CategoryUnit, "Space Marines"),
		ent("Hellblaster", domain.CategoryUnit, "Dark Angels"),
		ent("Wyches", domain.CategoryUnit, "Drukhari"),
		ent("Witches", domain.CategoryUnit, "Chaos Daemons"),
		ent("Fire Overwatch", domain.CategoryStratagem, ""),
		ent("Heroic Intervention", domain.CategoryStratagem, ""),
	}
}

type fixture struct {
	svc      *Service
	aliases  *memAliases
	feedback *feedback.Service
	store    *memFeedback
}

func newFixture(t *testing.T, cfg Config, candidates []domain.CandidateEntity) *fixture {
	t.Helper()

	log := discardLogger()
	th := matching.DefaultThresholds()
	tables := matching.DefaultTables()
	aliases := &memAliases{}
	store := newMemFeedback()
	fb := feedback.NewService(log, store, aliases, 5)

	lookup := matching.NewLookup(log, tables, aliases, aliases, th)
	svc := NewService(log, &staticIndex{entities: candidates}, lookup, matching.NewScorer(th),
		tables, aliases, fb, cfg)

	return &fixture{svc: svc, aliases: aliases, feedback: fb, store: store}
}

func assertRanked(t *testing.T, matches []domain.MatchResult) {
	t.Helper()
	for i := 1; i < len(matches); i++ {
		prev, cur := matches[i-1], matches[i]
		if prev.Confidence < cur.Confidence {
			t.Errorf("confidence increases at %d: %v < %v", i, prev.Confidence, cur.Confidence)
		}
		if prev.Confidence == cur.Confidence && strings.ToLower(prev.Name) > strings.ToLower(cur.Name) {
			t.Errorf("tie not lexical at %d: %q > %q", i, prev.Name, cur.Name)
		}
	}
}

// ---------------------------------------------------------------------------
// FindBestMatches
// ---------------------------------------------------------------------------

func TestFindBestMatches_RankingInvariant(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())

	for _, term := range []string{"hellblaster", "wyches", "cartel", "fire overwatch", "guiliman"} {
		got := f.svc.FindBestMatches(context.Background(), term, testCandidates(), FindOptions{MinConfidence: 0.1, Limit: 10})
		assertRanked(t, got)
	}
}

func TestFindBestMatches_ThresholdFiltering(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())

	got := f.svc.FindBestMatches(context.Background(), "xyz123", testCandidates(), FindOptions{MinConfidence: 0.6, CheckAliases: true})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindBestMatches_EmptyTerm(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())

	got := f.svc.FindBestMatches(context.Background(), " [] ", testCandidates(), FindOptions{})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindBestMatches_Limit(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())

	got := f.svc.FindBestMatches(context.Background(), "hellblaster", testCandidates(), FindOptions{MinConfidence: 0, Limit: 1})
	require.Len(t, got, 1)
	assert.Equal(t, "Hellblaster", got[0].Name)
	assert.Equal(t, 1.0, got[0].Confidence)
}

func TestFindBestMatches_AliasPrecedence(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())
	ctx := context.Background()

	drukhari := "drukhari"
	_, err := f.aliases.Upsert(ctx, domain.AliasMapping{Alias: "cartel", CanonicalName: "Kabalite Cartel", EntityType: domain.CategoryDetachment, FactionID: &drukhari})
	require.NoError(t, err)
	_, err = f.aliases.Upsert(ctx, domain.AliasMapping{Alias: "cartel", CanonicalName: "Cartel Enforcers", EntityType: domain.CategoryDetachment})
	require.NoError(t, err)

	got := f.svc.FindBestMatches(ctx, "Cartel", testCandidates(), FindOptions{
		MinConfidence: 0.4, Limit: 3, CheckAliases: true, Factions: []string{"drukhari"},
	})
	require.NotEmpty(t, got)
	assert.Equal(t, "Kabalite Cartel", got[0].Name)
	assert.Equal(t, matching.AliasConfidence, got[0].Confidence)
	assert.Equal(t, domain.MatchSourceAlias, got[0].Source)

	agnostic := f.svc.FindBestMatches(ctx, "cartel", testCandidates(), FindOptions{MinConfidence: 0.4, CheckAliases: true})
	require.NotEmpty(t, agnostic)
	assert.Equal(t, "Cartel Enforcers", agnostic[0].Name)
}

func TestFindBestMatches_HitWithFuzzyContext(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())

	// "wyches" is a built-in alias; the fuzzy pass also finds Wyches (1.0)
	// and Witches, which must not outrank or duplicate the hit.
	got := f.svc.FindBestMatches(context.Background(), "wyches", testCandidates(), FindOptions{
		MinConfidence: 0.5, Limit: 3, CheckAliases: true,
	})
	require.NotEmpty(t, got)
	assert.Equal(t, "Wyches", got[0].Name)
	assert.Equal(t, domain.MatchSourceBuiltin, got[0].Source)
	for _, m := range got[1:] {
		assert.NotEqual(t, "Wyches", m.Name)
		assert.LessOrEqual(t, m.Confidence, got[0].Confidence)
	}
}

// ---------------------------------------------------------------------------
// ValidateTerms
// ---------------------------------------------------------------------------

func TestValidateTerms_BatchShape(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())

	out, err := f.svc.ValidateTerms(context.Background(), ValidateInput{
		Terms: []string{"Hellblasters", "xyz123", "gladius"},
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 3)
	assert.False(t, out.Truncated)

	assert.Equal(t, "Hellblasters", out.Results[0].Term)
	require.NotNil(t, out.Results[0].Match)
	assert.Equal(t, "Hellblasters", *out.Results[0].Match)
	assert.LessOrEqual(t, len(out.Results[0].Alternates), MaxAlternates)

	assert.Equal(t, "xyz123", out.Results[1].Term)
	assert.Nil(t, out.Results[1].Match)
	assert.NotNil(t, out.Results[1].Alternates)

	require.NotNil(t, out.Results[2].Match)
	assert.Equal(t, "Gladius Task Force", *out.Results[2].Match)
	assert.Equal(t, matching.BuiltinConfidence, out.Results[2].Confidence)
	require.NotNil(t, out.Results[2].Category)
	assert.Equal(t, domain.CategoryDetachment, *out.Results[2].Category)
}

func TestValidateTerms_Truncates(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{MaxBatchTerms: 2}, testCandidates())

	out, err := f.svc.ValidateTerms(context.Background(), ValidateInput{
		Terms: []string{"wyches", "cantor", "guilliman"},
	})
	require.NoError(t, err)
	assert.True(t, out.Truncated)
	assert.Equal(t, 1, out.Rejected)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "wyches", out.Results[0].Term)
	assert.Equal(t, "cantor", out.Results[1].Term)
}

func TestValidateTerms_BatchCapIsHard(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{MaxBatchTerms: 500}, testCandidates())

	terms := make([]string, MaxBatchTerms+5)
	for i := range terms {
		terms[i] = "wyches"
	}
	out, err := f.svc.ValidateTerms(context.Background(), ValidateInput{Terms: terms})
	require.NoError(t, err)
	assert.True(t, out.Truncated)
	assert.Equal(t, 5, out.Rejected)
	assert.Len(t, out.Results, MaxBatchTerms)
}

func TestValidateTerms_MinConfidence(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())

	strict := 0.95
	out, err := f.svc.ValidateTerms(context.Background(), ValidateInput{
		Terms:         []string{"hellblastr"},
		MinConfidence: &strict,
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Nil(t, out.Results[0].Match)
}

func TestValidateTerms_InputErrors(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())
	bad := 1.5

	tests := []struct {
		name  string
		input ValidateInput
	}{
		{"no terms", ValidateInput{}},
		{"unknown category", ValidateInput{Terms: []string{"x"}, Categories: []string{"vehicle"}}},
		{"min confidence out of range", ValidateInput{Terms: []string{"x"}, MinConfidence: &bad}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ValidateTerms(context.Background(), tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestValidateTerms_CancelledContext(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.ValidateTerms(ctx, ValidateInput{Terms: []string{"wyches"}})
	assert.ErrorIs(t, err, context.Canceled)
}

// ---------------------------------------------------------------------------
// ResolveTerm
// ---------------------------------------------------------------------------

func TestResolveTerm_Disambiguation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())

	out, err := f.svc.ResolveTerm(context.Background(), ResolveInput{
		Term:         "cartel",
		FactionHints: []string{"Drukhari"},
	})
	require.NoError(t, err)

	assert.False(t, out.Ambiguous)
	require.NotNil(t, out.Recommendation)
	assert.Equal(t, "Kabalite Cartel", *out.Recommendation)

	require.GreaterOrEqual(t, len(out.Candidates), 2)
	assert.Equal(t, 1.0, out.Candidates[0].Relevance)
	assert.Equal(t, "Cantor", out.Candidates[1].Name)
	assert.InDelta(t, 0.5, out.Candidates[1].Relevance, 1e-9)
}

func TestResolveTerm_Ambiguous(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())

	out, err := f.svc.ResolveTerm(context.Background(), ResolveInput{Term: "hellblaster"})
	require.NoError(t, err)

	assert.True(t, out.Ambiguous)
	assert.Nil(t, out.Recommendation)
	assert.Equal(t, "Hellblaster", out.Candidates[0].Name)
	assert.Equal(t, "Hellblasters", out.Candidates[1].Name)
}

func TestResolveTerm_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())

	_, err := f.svc.ResolveTerm(context.Background(), ResolveInput{Term: "  ...  "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.ResolveTerm(context.Background(), ResolveInput{Term: "cartel", EntityType: "vehicle"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestResolveTerm_NoMatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{AutoRecord: true}, testCandidates())

	out, err := f.svc.ResolveTerm(context.Background(), ResolveInput{Term: "xyz123"})
	require.NoError(t, err)
	assert.Empty(t, out.Candidates)
	assert.False(t, out.Ambiguous)
	assert.Nil(t, out.Recommendation)
	assert.Nil(t, out.FeedbackID, "no category to file the term under")
	assert.Zero(t, f.store.count())
}

func TestRank_Boosts(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, nil)

	tau, necrons := "T'au Empire", "Necrons"
	got := f.svc.rank([]domain.MatchResult{
		{Name: "Ka'tah", Faction: &tau, Confidence: 0.5},
		{Name: "Warriors", Faction: &necrons, Confidence: 0.6},
		{Name: "Overwatch", Confidence: 0.55},
	}, []string{"tau"}, "the necrons player moves")

	require.Len(t, got, 3)
	assert.Equal(t, "Warriors", got[0].Name)
	assert.InDelta(t, 0.75, got[0].Relevance, 1e-9)
	assert.Equal(t, "Ka'tah", got[1].Name)
	assert.InDelta(t, 0.7, got[1].Relevance, 1e-9)
	assert.InDelta(t, 0.55, got[2].Relevance, 1e-9)

	clamped := f.svc.rank([]domain.MatchResult{{Name: "Ka'tah", Faction: &tau, Confidence: 0.95}},
		[]string{"T'AU EMPIRE"}, "tau empire gunline")
	assert.Equal(t, 1.0, clamped[0].Relevance)
}

func TestResolveTerm_LearningLoop(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{AutoRecord: true}, testCandidates())
	ctx := context.Background()

	first, err := f.svc.ResolveTerm(ctx, ResolveInput{Term: "gilman"})
	require.NoError(t, err)
	require.NotEmpty(t, first.Candidates)
	assert.Equal(t, "Guilliman", first.Candidates[0].Name)
	assert.Equal(t, 0.5, first.Candidates[0].Confidence)
	assert.Equal(t, domain.MatchSourcePhonetic, first.Candidates[0].Source)
	require.NotNil(t, first.FeedbackID, "low-confidence resolution should be queued for review")

	item, err := f.feedback.Resolve(ctx, feedback.ResolveInput{
		ID:             *first.FeedbackID,
		CanonicalName:  "Guilliman",
		PersistMapping: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackStatusResolved, item.Status)
	assert.Equal(t, 1, f.aliases.usage("gilman"))

	second, err := f.svc.ResolveTerm(ctx, ResolveInput{Term: "gilman"})
	require.NoError(t, err)
	require.NotEmpty(t, second.Candidates)
	assert.Equal(t, "Guilliman", second.Candidates[0].Name)
	assert.Equal(t, matching.AliasConfidence, second.Candidates[0].Confidence)
	assert.Equal(t, domain.MatchSourceAlias, second.Candidates[0].Source)
	assert.Nil(t, second.FeedbackID)
	assert.Equal(t, 2, f.aliases.usage("gilman"), "alias hit bumps usage")
	assert.Equal(t, 1, f.store.count())
}

func TestResolveTerm_LearningLoopWithFactionHint(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{AutoRecord: true}, testCandidates())
	ctx := context.Background()

	first, err := f.svc.ResolveTerm(ctx, ResolveInput{Term: "gilman", FactionHints: []string{"Ultramarines"}})
	require.NoError(t, err)
	require.NotNil(t, first.FeedbackID)

	_, err = f.feedback.Resolve(ctx, feedback.ResolveInput{
		ID:             *first.FeedbackID,
		CanonicalName:  "Guilliman",
		PersistMapping: true,
	})
	require.NoError(t, err)

	// The learned mapping is faction-scoped but must win without a filter.
	out, err := f.svc.ValidateTerms(ctx, ValidateInput{Terms: []string{"gilman"}})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	res := out.Results[0]
	require.NotNil(t, res.Match)
	assert.Equal(t, "Guilliman", *res.Match)
	assert.Equal(t, matching.AliasConfidence, res.Confidence)
	assert.Equal(t, domain.MatchSourceAlias, res.Source)
}

func TestResolveFeedback_FactionSpellingsShareOneMapping(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())
	ctx := context.Background()

	for _, tc := range []struct{ faction, canonical string }{
		{"Ultramarines", "Guilliman"},
		{"ultramarines", "Roboute Guilliman"},
	} {
		faction := tc.faction
		item, err := f.feedback.Record(ctx, feedback.RecordInput{
			Token:      "gilman",
			EntityType: domain.CategoryUnit,
			FactionID:  &faction,
			Confidence: 0.5,
		})
		require.NoError(t, err)
		_, err = f.feedback.Resolve(ctx, feedback.ResolveInput{ID: item.ID, CanonicalName: tc.canonical, PersistMapping: true})
		require.NoError(t, err)
	}

	mappings, err := f.aliases.FindByAlias(ctx, "gilman")
	require.NoError(t, err)
	require.Len(t, mappings, 1, "one (alias, type, faction) scope must hold one mapping")
	assert.Equal(t, "Roboute Guilliman", mappings[0].CanonicalName, "latest correction retargets the mapping")
	assert.Equal(t, 2, mappings[0].UsageCount)
	assert.Equal(t, "ultramarines", domain.Deref(mappings[0].FactionID))
}

// ---------------------------------------------------------------------------
// ValidNames / FuzzySearch
// ---------------------------------------------------------------------------

func TestValidNames(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())
	ctx := context.Background()

	_, err := f.aliases.Upsert(ctx, domain.AliasMapping{Alias: "heroic", CanonicalName: "Heroic Intervention", EntityType: domain.CategoryStratagem})
	require.NoError(t, err)

	out, err := f.svc.ValidNames(ctx, ValidNamesInput{Category: "Stratagem"})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryStratagem, out.Category)
	assert.Equal(t, []string{"Fire Overwatch", "Heroic Intervention"}, out.Names)
	assert.Empty(t, out.Aliases)

	out, err = f.svc.ValidNames(ctx, ValidNamesInput{Category: "stratagem", IncludeAliases: true})
	require.NoError(t, err)

	sources := map[string]domain.MatchSource{}
	for _, a := range out.Aliases {
		sources[a.Alias] = a.Source
	}
	assert.Equal(t, domain.MatchSourceBuiltin, sources["overwatch"])
	assert.Equal(t, domain.MatchSourceAlias, sources["heroic"])
}

func TestValidNames_AliasStoreDown(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())
	f.aliases.listErr = errors.New("db down")

	out, err := f.svc.ValidNames(context.Background(), ValidNamesInput{Category: "stratagem", IncludeAliases: true})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Aliases, "built-in aliases still listed")
}

func TestValidNames_UnknownCategory(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())

	_, err := f.svc.ValidNames(context.Background(), ValidNamesInput{Category: "vehicle"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFuzzySearch(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{}, testCandidates())
	ctx := context.Background()

	got, err := f.svc.FuzzySearch(ctx, FuzzySearchInput{Query: "helblaster", Categories: []string{"unit"}})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assertRanked(t, got)
	for _, m := range got {
		assert.GreaterOrEqual(t, m.Confidence, matching.DefaultThresholds().FuzzyLow)
		assert.Equal(t, domain.MatchSourceFuzzy, m.Source)
	}

	one, err := f.svc.FuzzySearch(ctx, FuzzySearchInput{Query: "helblaster", Limit: -5})
	require.NoError(t, err)
	assert.Len(t, one, 1)

	_, err = f.svc.FuzzySearch(ctx, FuzzySearchInput{Query: "h"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.FuzzySearch(ctx, FuzzySearchInput{Query: "hellblaster", Categories: []string{"vehicle"}})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want int }{
		{0, DefaultSearchLimit},
		{-3, 1},
		{7, 7},
		{500, MaxSearchLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clampLimit(tt.in, DefaultSearchLimit, MaxSearchLimit), "clampLimit(%d)", tt.in)
	}
}
