// README: Form tests (schema validation, reset, completeness, healing restore).
package form

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"

	"github.com/redis/go-redis/v9"
)

func profileDefaults() Values {
	return Values{
		FullName:     Str("Sarah Chen"),
		VehicleModel: Str("Model 3 Long Range"),
		VehicleColor: Str("White"),
	}
}

func TestNewFormHasExactlySchemaKeys(t *testing.T) {
	fm := New(Values{FullName: Str("Sarah Chen"), Field("favorite_color"): Str("blue")})
	snap := fm.Snapshot()
	if len(snap) != len(Schema) {
		t.Fatalf("expected %d keys, got %d", len(Schema), len(snap))
	}
	if _, ok := snap[Field("favorite_color")]; ok {
		t.Error("unknown default leaked into form")
	}
	if snap.Value(FullName) != "Sarah Chen" || snap[DamageDescription] != nil {
		t.Errorf("unexpected snapshot: %v", snap.Wire())
	}
}

func TestSetInvalidFieldDoesNotMutate(t *testing.T) {
	fm := New(profileDefaults())
	before := fm.Snapshot()
	err := fm.Set(Field("color_of_sky"), Str("blue"))
	if !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	if !reflect.DeepEqual(before, fm.Snapshot()) {
		t.Error("form changed after invalid set")
	}
}

func TestSetAndClear(t *testing.T) {
	fm := New(profileDefaults())
	if err := fm.Set(VehicleColor, Str("Red")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _ := fm.Get(VehicleColor); v == nil || *v != "Red" {
		t.Fatalf("vehicle_color = %v", v)
	}
	if err := fm.Set(VehicleColor, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if v, _ := fm.Get(VehicleColor); v != nil {
		t.Fatalf("expected nil after clear, got %q", *v)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	fm := New(profileDefaults())
	_ = fm.Set(DamageDescription, Str("front bumper"))
	_ = fm.Set(FullName, Str("Someone Else"))
	fm.Reset()
	if !reflect.DeepEqual(fm.Snapshot(), fm.Defaults()) {
		t.Error("reset did not restore defaults")
	}
	if fm.Snapshot().Value(FullName) != "Sarah Chen" {
		t.Error("default name lost")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	fm := New(profileDefaults())
	snap := fm.Snapshot()
	*snap[FullName] = "mutated"
	snap[DamageDescription] = Str("x")
	if fm.Snapshot().Value(FullName) != "Sarah Chen" || fm.Snapshot()[DamageDescription] != nil {
		t.Error("snapshot aliases form state")
	}
}

func TestIsCompleteTreatsBlankAsMissing(t *testing.T) {
	required := []Field{DamageDescription, AccidentLocationAddress}
	fm := New(nil)
	if fm.IsComplete(required) {
		t.Fatal("empty form reported complete")
	}
	_ = fm.Set(DamageDescription, Str("   "))
	_ = fm.Set(AccidentLocationAddress, Str("1 Main St"))
	if fm.IsComplete(required) {
		t.Fatal("whitespace value counted as filled")
	}
	if got := fm.Missing(required); !reflect.DeepEqual(got, []Field{DamageDescription}) {
		t.Fatalf("missing = %v", got)
	}
	_ = fm.Set(DamageDescription, Str("cracked windshield"))
	if !fm.IsComplete(required) {
		t.Fatal("filled form reported incomplete")
	}
	if !fm.IsComplete(nil) {
		t.Fatal("empty subset should be complete")
	}
}

func TestRestoreHealsSnapshot(t *testing.T) {
	fm := New(profileDefaults())
	fm.Restore(map[string]*string{
		"damage_description": Str("dented door"),
		"Tesla_model":        Str("legacy key"),
	})
	snap := fm.Snapshot()
	if len(snap) != len(Schema) {
		t.Fatalf("expected full schema, got %d keys", len(snap))
	}
	if snap.Value(DamageDescription) != "dented door" {
		t.Error("restored value lost")
	}
	if snap.Value(VehicleModel) != "Model 3 Long Range" {
		t.Error("missing key did not take its default")
	}
}

func TestParseFields(t *testing.T) {
	got, err := ParseFields([]string{"damage_description", " reason_for_towing", "damage_description"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(got, []Field{DamageDescription, ReasonForTowing}) {
		t.Fatalf("got %v", got)
	}
	if _, err := ParseFields([]string{"shoe_size"}); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
}

type stubStore struct {
	saveErr error
	saved   map[string]Values
	deleted []string
}

func (s *stubStore) Save(_ context.Context, sessionID string, values Values) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[sessionID] = values.Clone()
	return nil
}

func (s *stubStore) Delete(_ context.Context, sessionID string) error {
	s.deleted = append(s.deleted, sessionID)
	delete(s.saved, sessionID)
	return nil
}

func TestServiceRequiredFields(t *testing.T) {
	svc, err := NewService(nil, []string{"reason_for_towing", " damage_description "})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	want := []Field{ReasonForTowing, DamageDescription}
	got := svc.ListRequired()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("required = %v, want %v", got, want)
	}
	got[0] = VehicleColor
	if svc.ListRequired()[0] != ReasonForTowing {
		t.Fatal("ListRequired exposes internal slice")
	}
	if _, err := NewService(nil, []string{"bogus"}); err == nil {
		t.Fatal("expected error for unknown required field")
	}
	if _, err := NewService(nil, nil); err == nil {
		t.Fatal("expected error for empty required list")
	}
	if err := svc.Save(context.Background(), "s1", New(nil)); err != nil {
		t.Fatalf("save without mirror: %v", err)
	}
}

func TestServiceSaveDropsStaleMirror(t *testing.T) {
	store := &stubStore{saved: map[string]Values{}}
	svc, err := NewService(store, []string{"damage_description"})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	fm := New(profileDefaults())
	if err := svc.Save(ctx, "s1", fm); err != nil {
		t.Fatalf("save: %v", err)
	}
	if store.saved["s1"].Value(FullName) != "Sarah Chen" {
		t.Fatalf("mirrored = %v", store.saved["s1"])
	}

	store.saveErr = errors.New("redis timeout")
	_ = fm.Set(DamageDescription, Str("hood crumpled"))
	if err := svc.Save(ctx, "s1", fm); !errors.Is(err, store.saveErr) {
		t.Fatalf("expected wrapped save error, got %v", err)
	}
	if _, ok := store.saved["s1"]; ok || len(store.deleted) != 1 {
		t.Fatalf("stale copy kept: saved=%v deleted=%v", store.saved, store.deleted)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("FRIA_REDIS_ADDR")
	if addr == "" {
		t.Skip("FRIA_REDIS_ADDR not set; skipping redis-backed tests")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()
	store := NewRedisStore(client, 0)
	t.Cleanup(func() { client.Del(ctx, formKey("redis-test")) })

	fm := New(profileDefaults())
	_ = fm.Set(DamageDescription, Str("hood crumpled"))
	if err := store.Save(ctx, "redis-test", fm.Snapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = fm.Set(DamageDescription, nil)
	if err := store.Save(ctx, "redis-test", fm.Snapshot()); err != nil {
		t.Fatalf("save cleared: %v", err)
	}
	raw, err := client.HGetAll(ctx, formKey("redis-test")).Result()
	if err != nil || len(raw) == 0 {
		t.Fatalf("hgetall: %v %v", raw, err)
	}
	if _, present := raw[string(DamageDescription)]; present {
		t.Error("cleared field still stored")
	}
	if raw[string(FullName)] != "Sarah Chen" {
		t.Errorf("full_name = %q", raw[string(FullName)])
	}

	if err := store.Delete(ctx, "redis-test"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, _ := client.Exists(ctx, formKey("redis-test")).Result(); n != 0 {
		t.Error("mirror key survived delete")
	}
}
