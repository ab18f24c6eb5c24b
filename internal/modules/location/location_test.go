package location

import (
	"context"
	"errors"
	"math"
	"testing"

	"fria/internal/types"
)

type memStore struct {
	fixes []Fix
}

func (m *memStore) Append(_ context.Context, f *Fix) error {
	f.ID = int64(len(m.fixes) + 1)
	m.fixes = append(m.fixes, *f)
	return nil
}

func (m *memStore) Latest(_ context.Context, sessionID string) (*Fix, error) {
	for i := len(m.fixes) - 1; i >= 0; i-- {
		if m.fixes[i].SessionID == sessionID {
			f := m.fixes[i]
			return &f, nil
		}
	}
	return nil, ErrNotFound
}

func TestDistanceM(t *testing.T) {
	tests := []struct {
		name      string
		a, b      types.Point
		wantM     float64
		tolerance float64
	}{
		{"same point", types.Point{Lat: 41.88, Lng: -87.63}, types.Point{Lat: 41.88, Lng: -87.63}, 0, 0.01},
		{"one block in Chicago", types.Point{Lat: 41.8781, Lng: -87.6298}, types.Point{Lat: 41.8790, Lng: -87.6298}, 100, 5},
		{"New York to Los Angeles", types.Point{Lat: 40.7128, Lng: -74.0060}, types.Point{Lat: 34.0522, Lng: -118.2437}, 3944000, 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := distanceM(tt.a, tt.b); math.Abs(got-tt.wantM) > tt.tolerance {
				t.Errorf("distanceM() = %f, want %f (±%f)", got, tt.wantM, tt.tolerance)
			}
		})
	}
}

func TestRecordFix(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)
	ctx := context.Background()
	base := types.Point{Lat: 41.8781, Lng: -87.6298}

	if ok, err := svc.RecordFix(ctx, Fix{SessionID: "s1", Position: base}); err != nil || !ok {
		t.Fatalf("first fix: ok=%v err=%v", ok, err)
	}
	// A few metres away and unresolved: dropped.
	near := types.Point{Lat: 41.87811, Lng: -87.62981}
	if ok, err := svc.RecordFix(ctx, Fix{SessionID: "s1", Position: near}); err != nil || ok {
		t.Fatalf("jitter fix: ok=%v err=%v", ok, err)
	}
	// Resolved fixes are always kept.
	if ok, _ := svc.RecordFix(ctx, Fix{SessionID: "s1", Position: near, Address: "233 S Wacker Dr"}); !ok {
		t.Fatal("resolved fix dropped")
	}
	// Other sessions are independent.
	if ok, _ := svc.RecordFix(ctx, Fix{SessionID: "s2", Position: near}); !ok {
		t.Fatal("fix for a new session dropped")
	}
	if len(store.fixes) != 3 {
		t.Fatalf("expected 3 stored fixes, got %d", len(store.fixes))
	}
	if store.fixes[0].RecordedAt.IsZero() {
		t.Error("recorded_at not stamped")
	}

	latest, err := svc.Latest(ctx, "s1")
	if err != nil || latest.Address != "233 S Wacker Dr" {
		t.Fatalf("latest = %+v, %v", latest, err)
	}
}

func TestRecordFixRejectsInvalidPoint(t *testing.T) {
	svc := NewService(&memStore{})
	_, err := svc.RecordFix(context.Background(), Fix{SessionID: "s1", Position: types.Point{Lat: 95, Lng: 0}})
	if !errors.Is(err, ErrInvalidPoint) {
		t.Fatalf("expected ErrInvalidPoint, got %v", err)
	}
}
