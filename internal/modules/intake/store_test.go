package intake

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"fria/internal/infra"
	"fria/internal/modules/form"
	"fria/internal/modules/profile"
	"fria/internal/types"
)

func TestRestoreFormHealsSnapshot(t *testing.T) {
	defaults := map[string]*string{"full_name": form.Str("Sarah Chen"), "legacy_field": form.Str("x")}
	values := map[string]*string{"damage_description": form.Str("dent"), "shoe_size": form.Str("9")}

	fm := restoreForm(defaults, values)
	wire := fm.Wire()
	if len(wire) != len(form.Schema) {
		t.Fatalf("restored form has %d keys", len(wire))
	}
	if _, ok := wire["shoe_size"]; ok {
		t.Fatal("unknown key survived restore")
	}
	if v := wire["full_name"]; v == nil || *v != "Sarah Chen" {
		t.Fatalf("missing key not healed from defaults: %v", v)
	}
	if v := wire["damage_description"]; v == nil || *v != "dent" {
		t.Fatalf("damage_description = %v", v)
	}
	fm.Reset()
	if fm.Snapshot().IsSet(form.DamageDescription) {
		t.Fatal("reset kept a non-default value")
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	e := NewEngine(mustRouter(t, DefaultRequired), nil, nil, nil)
	s, _ := e.Start("s1", "u1", profile.Default)

	if _, err := m.Load(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("load before commit: %v", err)
	}
	if err := m.Commit(ctx, &s, s.Transcript.Entries()...); err != nil {
		t.Fatalf("commit: %v", err)
	}
	_ = s.Form.Set(form.VehicleColor, form.Str("Blue"))

	loaded, err := m.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Form.Snapshot().Value(form.VehicleColor) != "White" {
		t.Fatal("stored session aliases the caller's form")
	}
	if loaded.Transcript.Len() != 1 {
		t.Fatalf("transcript length = %d", loaded.Transcript.Len())
	}
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	e := NewEngine(mustRouter(t, DefaultRequired), nil, nil, nil)

	id := string(types.NewID())
	s, _ := e.Start(id, "u1", profile.Default)
	s.CreatedAt = s.CreatedAt.Truncate(time.Microsecond)
	s.UpdatedAt = s.CreatedAt
	if err := store.Commit(ctx, &s, s.Transcript.Entries()...); err != nil {
		t.Fatalf("commit: %v", err)
	}

	next, _, err := e.Continue(ctx, s, say("yes"))
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if err := store.Commit(ctx, &next, next.Transcript.Since(s.Transcript.Len())...); err != nil {
		t.Fatalf("commit next: %v", err)
	}

	loaded, err := store.Load(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Lane != LaneIncident || loaded.SafetyConfirmed == nil || !*loaded.SafetyConfirmed {
		t.Fatalf("loaded = %+v", loaded)
	}
	got, want := loaded.Transcript.Entries(), next.Transcript.Entries()
	if len(got) != len(want) {
		t.Fatalf("transcript length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if loaded.Form.Snapshot().Value(form.FullName) != "Sarah Chen" {
		t.Fatal("form not restored")
	}
	loaded.Form.Reset()
	if loaded.Form.Snapshot().Value(form.VINNumber) != profile.Default.VINNumber {
		t.Fatal("form defaults not restored")
	}

	if _, err := store.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("load missing: %v", err)
	}
}

func TestPostgresCommitIsAtomic(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	e := NewEngine(mustRouter(t, DefaultRequired), nil, nil, nil)

	id := string(types.NewID())
	s, _ := e.Start(id, "u1", profile.Default)
	if err := store.Commit(ctx, &s, s.Transcript.Entries()...); err != nil {
		t.Fatalf("commit: %v", err)
	}
	next, _, err := e.Continue(ctx, s, say("yes"))
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	// Postgres rejects NUL bytes in text, so the message insert fails after the session update.
	bad := append(next.Transcript.Since(s.Transcript.Len()), Entry{Role: RoleUser, Content: "bad\x00byte"})
	if err := store.Commit(ctx, &next, bad...); err == nil {
		t.Fatal("expected commit to fail")
	}

	loaded, err := store.Load(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Lane != LaneSafety || loaded.SafetyConfirmed != nil {
		t.Fatalf("session advanced without its messages: %+v", loaded)
	}
	if loaded.Transcript.Len() != 1 {
		t.Fatalf("transcript length = %d", loaded.Transcript.Len())
	}
}

// setupTestStore skips the test when FRIA_TEST_DSN is not set.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("FRIA_TEST_DSN")
	if dsn == "" {
		t.Skip("FRIA_TEST_DSN not set; skipping DB-backed tests")
	}
	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	dir, err := infra.FindMigrations()
	if err != nil {
		t.Fatalf("locate migrations: %v", err)
	}
	if err := infra.ApplyMigrations(ctx, db, dir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return NewStore(db)
}
