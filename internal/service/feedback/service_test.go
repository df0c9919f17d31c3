package feedback

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
	"github.com/heartmarshall/wh40k-terms/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type feedbackRepoMock struct {
	CreateFunc     func(ctx context.Context, item *domain.FeedbackItem) (*domain.FeedbackItem, error)
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.FeedbackItem, error)
	ListFunc       func(ctx context.Context, f domain.FeedbackFilter) ([]domain.FeedbackItem, int, error)
	StatsFunc      func(ctx context.Context) (domain.FeedbackStats, error)
	TransitionFunc func(ctx context.Context, id uuid.UUID, to domain.FeedbackStatus, resolvedTo, resolvedBy *string, at time.Time) (*domain.FeedbackItem, error)
	DeleteFunc     func(ctx context.Context, threshold time.Time) (int64, error)
}

func (m *feedbackRepoMock) Create(ctx context.Context, item *domain.FeedbackItem) (*domain.FeedbackItem, error) {
	return m.CreateFunc(ctx, item)
}

func (m *feedbackRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.FeedbackItem, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *feedbackRepoMock) List(ctx context.Context, f domain.FeedbackFilter) ([]domain.FeedbackItem, int, error) {
	return m.ListFunc(ctx, f)
}

func (m *feedbackRepoMock) Stats(ctx context.Context) (domain.FeedbackStats, error) {
	return m.StatsFunc(ctx)
}

func (m *feedbackRepoMock) Transition(ctx context.Context, id uuid.UUID, to domain.FeedbackStatus, resolvedTo, resolvedBy *string, at time.Time) (*domain.FeedbackItem, error) {
	return m.TransitionFunc(ctx, id, to, resolvedTo, resolvedBy, at)
}

func (m *feedbackRepoMock) DeleteReviewedBefore(ctx context.Context, threshold time.Time) (int64, error) {
	return m.DeleteFunc(ctx, threshold)
}

type aliasRepoMock struct {
	UpsertFunc func(ctx context.Context, m domain.AliasMapping) (*domain.AliasMapping, error)

	mu    sync.Mutex
	calls []domain.AliasMapping
}

func (m *aliasRepoMock) Upsert(ctx context.Context, mapping domain.AliasMapping) (*domain.AliasMapping, error) {
	m.mu.Lock()
	m.calls = append(m.calls, mapping)
	m.mu.Unlock()
	return m.UpsertFunc(ctx, mapping)
}

func (m *aliasRepoMock) UpsertCalls() []domain.AliasMapping {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, items *feedbackRepoMock, aliases *aliasRepoMock) *Service {
	t.Helper()
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), items, aliases, 3)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// transitionStore simulates the pending-only transition of the store.
func transitionStore(item domain.FeedbackItem) *feedbackRepoMock {
	var mu sync.Mutex
	return &feedbackRepoMock{
		TransitionFunc: func(_ context.Context, id uuid.UUID, to domain.FeedbackStatus, resolvedTo, resolvedBy *string, at time.Time) (*domain.FeedbackItem, error) {
			mu.Lock()
			defer mu.Unlock()
			if id != item.ID {
				return nil, domain.ErrNotFound
			}
			if item.Status != domain.FeedbackStatusPending {
				return nil, domain.ErrConflict
			}
			item.Status = to
			item.ResolvedTo = resolvedTo
			item.ResolvedBy = resolvedBy
			item.ResolvedAt = &at
			out := item
			return &out, nil
		},
	}
}

func pendingItem(token string, faction *string) domain.FeedbackItem {
	return domain.FeedbackItem{
		ID:              uuid.New(),
		OriginalToken:   token,
		EntityType:      domain.CategoryUnit,
		FactionID:       faction,
		ConfidenceScore: 0.5,
		Status:          domain.FeedbackStatusPending,
		CreatedAt:       fixedNow,
	}
}

func okAliases() *aliasRepoMock {
	return &aliasRepoMock{
		UpsertFunc: func(_ context.Context, m domain.AliasMapping) (*domain.AliasMapping, error) {
			m.ID = uuid.New()
			m.UsageCount = 1
			return &m, nil
		},
	}
}

// ---------------------------------------------------------------------------
// Record
// ---------------------------------------------------------------------------

func TestRecord_Success(t *testing.T) {
	t.Parallel()

	var stored *domain.FeedbackItem
	items := &feedbackRepoMock{
		CreateFunc: func(_ context.Context, item *domain.FeedbackItem) (*domain.FeedbackItem, error) {
			stored = item
			return item, nil
		},
	}
	svc := newTestService(t, items, okAliases())

	faction := "  ultramarines "
	got, err := svc.Record(context.Background(), RecordInput{
		Token:      "  gilman ",
		EntityType: domain.CategoryUnit,
		FactionID:  &faction,
		Confidence: 0.5,
		Suggestions: []domain.MatchResult{
			{Name: "Gladius", Confidence: 0.3},
			{Name: "Guilliman", Confidence: 0.5},
			{Name: "Gilgamesh", Confidence: 0.3},
			{Name: "Gideon", Confidence: 0.1},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Status != domain.FeedbackStatusPending {
		t.Errorf("status: got %s, want pending", got.Status)
	}
	if stored.OriginalToken != "gilman" {
		t.Errorf("token: got %q, want trimmed", stored.OriginalToken)
	}
	if stored.FactionID == nil || *stored.FactionID != "ultramarines" {
		t.Errorf("faction: got %v, want ultramarines", stored.FactionID)
	}
	if !stored.CreatedAt.Equal(fixedNow) {
		t.Errorf("created_at: got %v, want %v", stored.CreatedAt, fixedNow)
	}
	if stored.ID == uuid.Nil {
		t.Error("expected generated ID")
	}

	wantNames := []string{"Guilliman", "Gilgamesh", "Gladius"}
	if len(stored.Suggestions) != len(wantNames) {
		t.Fatalf("suggestions: got %d, want %d", len(stored.Suggestions), len(wantNames))
	}
	for i, name := range wantNames {
		if stored.Suggestions[i].Name != name {
			t.Errorf("suggestion[%d]: got %q, want %q", i, stored.Suggestions[i].Name, name)
		}
	}
}

func TestRecord_CanonicalFaction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		faction string
		want    string
	}{
		{faction: "Ultramarines", want: "ultramarines"},
		{faction: "Space-Marines", want: "space marines"},
		{faction: "  SPACE   MARINES ", want: "space marines"},
		{faction: "T'au Empire", want: "tau empire"},
	}

	for _, tt := range tests {
		t.Run(tt.faction, func(t *testing.T) {
			t.Parallel()

			var stored *domain.FeedbackItem
			items := &feedbackRepoMock{
				CreateFunc: func(_ context.Context, item *domain.FeedbackItem) (*domain.FeedbackItem, error) {
					stored = item
					return item, nil
				},
			}
			svc := newTestService(t, items, okAliases())

			faction := tt.faction
			if _, err := svc.Record(context.Background(), RecordInput{
				Token: "gilman", EntityType: domain.CategoryUnit, FactionID: &faction, Confidence: 0.5,
			}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := domain.Deref(stored.FactionID); got != tt.want {
				t.Errorf("faction: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecord_Validation(t *testing.T) {
	t.Parallel()

	neg := -1
	tests := []struct {
		name  string
		input RecordInput
	}{
		{"empty token", RecordInput{Token: "  ", EntityType: domain.CategoryUnit}},
		{"punctuation only", RecordInput{Token: "?!", EntityType: domain.CategoryUnit}},
		{"bad category", RecordInput{Token: "gilman", EntityType: "vehicle"}},
		{"confidence above one", RecordInput{Token: "gilman", EntityType: domain.CategoryUnit, Confidence: 1.2}},
		{"negative player", RecordInput{Token: "gilman", EntityType: domain.CategoryUnit, PlayerIndex: &neg}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			items := &feedbackRepoMock{
				CreateFunc: func(context.Context, *domain.FeedbackItem) (*domain.FeedbackItem, error) {
					t.Fatal("Create should not be called")
					return nil, nil
				},
			}
			svc := newTestService(t, items, okAliases())

			_, err := svc.Record(context.Background(), tt.input)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestRecord_StoreError(t *testing.T) {
	t.Parallel()

	items := &feedbackRepoMock{
		CreateFunc: func(context.Context, *domain.FeedbackItem) (*domain.FeedbackItem, error) {
			return nil, errors.New("db down")
		},
	}
	svc := newTestService(t, items, okAliases())

	_, err := svc.Record(context.Background(), RecordInput{Token: "gilman", EntityType: domain.CategoryUnit})
	if err == nil {
		t.Fatal("expected error")
	}
}

// ---------------------------------------------------------------------------
// Resolve / Ignore
// ---------------------------------------------------------------------------

func TestResolve_PersistsAlias(t *testing.T) {
	t.Parallel()

	faction := "ultramarines"
	item := pendingItem("Gil-man!", &faction)
	aliases := okAliases()
	svc := newTestService(t, transitionStore(item), aliases)

	ctx := ctxutil.WithReviewer(context.Background(), "reviewer-1")
	got, err := svc.Resolve(ctx, ResolveInput{ID: item.ID, CanonicalName: " Guilliman ", PersistMapping: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Status != domain.FeedbackStatusResolved {
		t.Errorf("status: got %s, want resolved", got.Status)
	}
	if got.ResolvedTo == nil || *got.ResolvedTo != "Guilliman" {
		t.Errorf("resolved_to: got %v", got.ResolvedTo)
	}
	if got.ResolvedBy == nil || *got.ResolvedBy != "reviewer-1" {
		t.Errorf("resolved_by: got %v", got.ResolvedBy)
	}

	calls := aliases.UpsertCalls()
	if len(calls) != 1 {
		t.Fatalf("Upsert calls: got %d, want 1", len(calls))
	}
	if calls[0].Alias != "gil man" {
		t.Errorf("alias: got %q, want normalized token", calls[0].Alias)
	}
	if calls[0].CanonicalName != "Guilliman" || calls[0].EntityType != domain.CategoryUnit {
		t.Errorf("unexpected mapping %+v", calls[0])
	}
	if calls[0].FactionID == nil || *calls[0].FactionID != "ultramarines" {
		t.Errorf("faction: got %v", calls[0].FactionID)
	}
}

func TestResolve_PersistsCanonicalFaction(t *testing.T) {
	t.Parallel()

	// Items stored before factions were canonicalized keep their raw spelling.
	faction := "Ultramarines"
	item := pendingItem("gilman", &faction)
	aliases := okAliases()
	svc := newTestService(t, transitionStore(item), aliases)

	if _, err := svc.Resolve(context.Background(), ResolveInput{ID: item.ID, CanonicalName: "Guilliman", PersistMapping: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := aliases.UpsertCalls()
	if len(calls) != 1 {
		t.Fatalf("Upsert calls: got %d, want 1", len(calls))
	}
	if got := domain.Deref(calls[0].FactionID); got != "ultramarines" {
		t.Errorf("faction: got %q, want ultramarines", got)
	}
}

func TestResolve_WithoutPersist(t *testing.T) {
	t.Parallel()

	item := pendingItem("gilman", nil)
	aliases := okAliases()
	svc := newTestService(t, transitionStore(item), aliases)

	got, err := svc.Resolve(context.Background(), ResolveInput{ID: item.ID, CanonicalName: "Guilliman"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ResolvedBy != nil {
		t.Errorf("resolved_by: got %v, want nil without a reviewer", got.ResolvedBy)
	}
	if n := len(aliases.UpsertCalls()); n != 0 {
		t.Errorf("Upsert calls: got %d, want 0", n)
	}
}

func TestResolve_AliasFailureDoesNotFail(t *testing.T) {
	t.Parallel()

	item := pendingItem("gilman", nil)
	aliases := &aliasRepoMock{
		UpsertFunc: func(context.Context, domain.AliasMapping) (*domain.AliasMapping, error) {
			return nil, errors.New("db down")
		},
	}
	svc := newTestService(t, transitionStore(item), aliases)

	got, err := svc.Resolve(context.Background(), ResolveInput{ID: item.ID, CanonicalName: "Guilliman", PersistMapping: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.FeedbackStatusResolved {
		t.Errorf("status: got %s, want resolved", got.Status)
	}
}

func TestResolve_OnlyFromPending(t *testing.T) {
	t.Parallel()

	item := pendingItem("gilman", nil)
	svc := newTestService(t, transitionStore(item), okAliases())
	ctx := context.Background()

	if _, err := svc.Ignore(ctx, item.ID); err != nil {
		t.Fatalf("Ignore: unexpected error: %v", err)
	}

	_, err := svc.Resolve(ctx, ResolveInput{ID: item.ID, CanonicalName: "Guilliman"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("Resolve after ignore: got %v, want ErrConflict", err)
	}
	_, err = svc.Ignore(ctx, item.ID)
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("Ignore twice: got %v, want ErrConflict", err)
	}
}

func TestResolve_NotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, transitionStore(pendingItem("gilman", nil)), okAliases())

	_, err := svc.Resolve(context.Background(), ResolveInput{ID: uuid.New(), CanonicalName: "Guilliman"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestResolve_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &feedbackRepoMock{}, okAliases())

	_, err := svc.Resolve(context.Background(), ResolveInput{ID: uuid.New(), CanonicalName: "  "})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank name: got %v, want ErrValidation", err)
	}
	_, err = svc.Resolve(context.Background(), ResolveInput{CanonicalName: "Guilliman"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("nil id: got %v, want ErrValidation", err)
	}
	_, err = svc.Ignore(context.Background(), uuid.Nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("ignore nil id: got %v, want ErrValidation", err)
	}
}

func TestResolve_ConcurrentReviewersOneWins(t *testing.T) {
	t.Parallel()

	item := pendingItem("gilman", nil)
	svc := newTestService(t, transitionStore(item), okAliases())

	const reviewers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for range reviewers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Resolve(context.Background(), ResolveInput{ID: item.ID, CanonicalName: "Guilliman"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 || conflicts != reviewers-1 {
		t.Errorf("wins=%d conflicts=%d, want 1/%d", wins, conflicts, reviewers-1)
	}
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

func TestListPending_Defaults(t *testing.T) {
	t.Parallel()

	var got domain.FeedbackFilter
	items := &feedbackRepoMock{
		ListFunc: func(_ context.Context, f domain.FeedbackFilter) ([]domain.FeedbackItem, int, error) {
			got = f
			return []domain.FeedbackItem{pendingItem("gilman", nil)}, 7, nil
		},
	}
	svc := newTestService(t, items, okAliases())

	res, err := svc.ListPending(context.Background(), 0, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status == nil || *got.Status != domain.FeedbackStatusPending {
		t.Errorf("status filter: got %v, want pending", got.Status)
	}
	if got.Limit != DefaultListLimit || got.Offset != 5 {
		t.Errorf("paging: got limit=%d offset=%d", got.Limit, got.Offset)
	}
	if res.Total != 7 || len(res.Items) != 1 {
		t.Errorf("result: got total=%d items=%d", res.Total, len(res.Items))
	}
}

func TestList_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &feedbackRepoMock{}, okAliases())
	bogus := domain.FeedbackStatus("archived")

	tests := []ListInput{
		{Limit: -1},
		{Limit: MaxListLimit + 1},
		{Offset: -3},
		{Status: &bogus},
	}
	for _, in := range tests {
		if _, err := svc.List(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("List(%+v): got %v, want ErrValidation", in, err)
		}
	}
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()

	items := &feedbackRepoMock{
		GetByIDFunc: func(context.Context, uuid.UUID) (*domain.FeedbackItem, error) {
			return nil, domain.ErrNotFound
		},
	}
	svc := newTestService(t, items, okAliases())

	_, err := svc.Get(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	items := &feedbackRepoMock{
		StatsFunc: func(context.Context) (domain.FeedbackStats, error) {
			return domain.FeedbackStats{Pending: 2, Resolved: 3, Ignored: 1, Total: 6}, nil
		},
	}
	svc := newTestService(t, items, okAliases())

	got, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Total != 6 || got.Resolved != 3 {
		t.Errorf("unexpected stats %+v", got)
	}
}

func TestPurge(t *testing.T) {
	t.Parallel()

	var gotThreshold time.Time
	items := &feedbackRepoMock{
		DeleteFunc: func(_ context.Context, threshold time.Time) (int64, error) {
			gotThreshold = threshold
			return 4, nil
		},
	}
	svc := newTestService(t, items, okAliases())

	deleted, err := svc.Purge(context.Background(), 30*24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 4 {
		t.Errorf("deleted = %d, want 4", deleted)
	}
	if want := fixedNow.Add(-30 * 24 * time.Hour); !gotThreshold.Equal(want) {
		t.Errorf("threshold = %v, want %v", gotThreshold, want)
	}

	if _, err := svc.Purge(context.Background(), 0); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("zero retention: got %v, want ErrValidation", err)
	}
}
