package alias_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/wh40k-terms/internal/adapter/postgres/alias"
	"github.com/heartmarshall/wh40k-terms/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

func newRepo(t *testing.T) (*alias.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return alias.New(pool), pool
}

func TestRepo_FindByAlias_Scopes(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	key := "cartel " + testhelper.UniqueSuffix()
	testhelper.SeedAlias(t, pool, key, "Kabalite Cartel", domain.CategoryDetachment, "drukhari", 1)
	testhelper.SeedAlias(t, pool, key, "Cartel Enforcers", domain.CategoryDetachment, "", 1)

	got, err := repo.FindByAlias(ctx, key)
	if err != nil {
		t.Fatalf("FindByAlias: unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	var scoped, agnostic int
	for _, m := range got {
		if m.IsFactionScoped() {
			scoped++
			if *m.FactionID != "drukhari" {
				t.Errorf("faction = %q, want drukhari", *m.FactionID)
			}
		} else {
			agnostic++
			if m.FactionID != nil {
				t.Errorf("agnostic mapping should have nil faction, got %q", *m.FactionID)
			}
		}
	}
	if scoped != 1 || agnostic != 1 {
		t.Errorf("scoped=%d agnostic=%d, want 1/1", scoped, agnostic)
	}
}

func TestRepo_FindByAliases(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	suffix := testhelper.UniqueSuffix()
	a := testhelper.SeedAlias(t, pool, "a "+suffix, "Alpha", domain.CategoryUnit, "", 1)
	b := testhelper.SeedAlias(t, pool, "b "+suffix, "Beta", domain.CategoryUnit, "", 1)

	got, err := repo.FindByAliases(ctx, []string{a.Alias, b.Alias, "missing " + suffix})
	if err != nil {
		t.Fatalf("FindByAliases: unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	empty, err := repo.FindByAliases(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("FindByAliases(nil) = %v, %v; want empty, nil", empty, err)
	}
}

func TestRepo_Upsert_InsertThenIncrement(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	key := "gilman " + testhelper.UniqueSuffix()
	m := domain.AliasMapping{Alias: key, CanonicalName: "Guilliman", EntityType: domain.CategoryUnit}

	first, err := repo.Upsert(ctx, m)
	if err != nil {
		t.Fatalf("Upsert: unexpected error: %v", err)
	}
	if first.UsageCount != 1 {
		t.Errorf("usage after insert = %d, want 1", first.UsageCount)
	}
	if first.ID == uuid.Nil {
		t.Error("expected generated ID")
	}

	m.CanonicalName = "Roboute Guilliman"
	second, err := repo.Upsert(ctx, m)
	if err != nil {
		t.Fatalf("Upsert (conflict): unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("conflict should keep the row: got %s, want %s", second.ID, first.ID)
	}
	if second.UsageCount != 2 {
		t.Errorf("usage after conflict = %d, want 2", second.UsageCount)
	}
	if second.CanonicalName != "Roboute Guilliman" {
		t.Errorf("canonical = %q, want retargeted name", second.CanonicalName)
	}
}

func TestRepo_Upsert_Concurrent(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	key := "race " + testhelper.UniqueSuffix()
	faction := "orks"
	const workers = 10

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Upsert(ctx, domain.AliasMapping{
				Alias: key, CanonicalName: "Ork Boyz", EntityType: domain.CategoryUnit, FactionID: &faction,
			})
			if err != nil {
				t.Errorf("Upsert: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := repo.FindByAlias(ctx, key)
	if err != nil {
		t.Fatalf("FindByAlias: unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].UsageCount != workers {
		t.Errorf("usage = %d, want %d", got[0].UsageCount, workers)
	}
}

func TestRepo_Upsert_FactionSpellingsShareScope(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	key := "gilman " + testhelper.UniqueSuffix()
	for _, faction := range []string{"Ultramarines", "ultramarines", " ULTRAMARINES "} {
		f := faction
		if _, err := repo.Upsert(ctx, domain.AliasMapping{
			Alias: key, CanonicalName: "Guilliman", EntityType: domain.CategoryUnit, FactionID: &f,
		}); err != nil {
			t.Fatalf("Upsert %q: unexpected error: %v", faction, err)
		}
	}

	got, err := repo.FindByAlias(ctx, key)
	if err != nil {
		t.Fatalf("FindByAlias: unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 mapping per scope", len(got))
	}
	if got[0].UsageCount != 3 {
		t.Errorf("usage = %d, want 3", got[0].UsageCount)
	}
	if domain.Deref(got[0].FactionID) != "ultramarines" {
		t.Errorf("faction = %q, want canonical key", domain.Deref(got[0].FactionID))
	}
}

func TestRepo_IncrementUsage(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	m := testhelper.SeedAlias(t, pool, "kabs "+testhelper.UniqueSuffix(), "Kabalite Warriors", domain.CategoryUnit, "", 3)

	if err := repo.IncrementUsage(ctx, m.ID); err != nil {
		t.Fatalf("IncrementUsage: unexpected error: %v", err)
	}

	got, err := repo.FindByAlias(ctx, m.Alias)
	if err != nil {
		t.Fatalf("FindByAlias: unexpected error: %v", err)
	}
	if got[0].UsageCount != 4 {
		t.Errorf("usage = %d, want 4", got[0].UsageCount)
	}

	err = repo.IncrementUsage(ctx, uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("IncrementUsage(unknown) = %v, want ErrNotFound", err)
	}
}

func TestRepo_ListByCategory(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	suffix := testhelper.UniqueSuffix()
	faction := "list " + suffix
	testhelper.SeedAlias(t, pool, "mine "+suffix, "Mine", domain.CategoryAbility, faction, 5)
	testhelper.SeedAlias(t, pool, "theirs "+suffix, "Theirs", domain.CategoryAbility, "other "+suffix, 9)

	got, err := repo.ListByCategory(ctx, domain.CategoryAbility, "LIST "+suffix)
	if err != nil {
		t.Fatalf("ListByCategory: unexpected error: %v", err)
	}

	found := map[string]bool{}
	for _, m := range got {
		if m.EntityType != domain.CategoryAbility {
			t.Errorf("unexpected entity type %s", m.EntityType)
		}
		found[m.Alias] = true
	}
	if !found["mine "+suffix] {
		t.Error("expected the faction's alias")
	}
	if found["theirs "+suffix] {
		t.Error("did not expect another faction's alias")
	}
}
