package profile

import (
	"context"
	"errors"
	"testing"

	"fria/internal/modules/form"
)

type stubGetter struct {
	p   Profile
	err error
}

func (s stubGetter) Get(context.Context, string) (Profile, error) {
	return s.p, s.err
}

func TestFormDefaults(t *testing.T) {
	v := Default.FormDefaults()
	if v.Value(form.FullName) != "Sarah Chen" || v.Value(form.VINNumber) != "5YJ3E1EA7JF123456" {
		t.Errorf("unexpected defaults: %v", v.Wire())
	}
	for _, f := range []form.Field{form.DamageDescription, form.AccidentLocationAddress, form.IsVehicleOperable, form.ReasonForTowing} {
		if v[f] != nil {
			t.Errorf("incident field %s should default to nil", f)
		}
	}
	if (Profile{FullName: "Ann"}).FormDefaults()[form.VehicleModel] != nil {
		t.Error("blank profile attribute should stay nil")
	}
}

func TestFirstName(t *testing.T) {
	cases := map[string]string{"Sarah Chen": "Sarah", "  Bo  ": "Bo", "": ""}
	for in, want := range cases {
		if got := (Profile{FullName: in}).FirstName(); got != want {
			t.Errorf("FirstName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLookupFallback(t *testing.T) {
	ctx := context.Background()
	known := Profile{UserID: "u1", FullName: "Dana Ortiz"}

	if got := NewService(stubGetter{p: known}, Default, nil).Lookup(ctx, "u1"); got.FullName != "Dana Ortiz" {
		t.Errorf("expected stored profile, got %+v", got)
	}
	if got := NewService(stubGetter{err: ErrNotFound}, Default, nil).Lookup(ctx, "u2"); got.FullName != "Sarah Chen" {
		t.Errorf("expected fallback, got %+v", got)
	}
	if got := NewService(stubGetter{err: errors.New("db down")}, Default, nil).Lookup(ctx, "u3"); got.UserID != "demo" {
		t.Errorf("expected fallback on error, got %+v", got)
	}
	if got := NewService(nil, Default, nil).Lookup(ctx, "u4"); got.UserID != "demo" {
		t.Errorf("expected fallback without store, got %+v", got)
	}
}

func TestDecodeRow(t *testing.T) {
	p, err := decodeRow(map[string]any{
		"user_id":                 "u9",
		"full_name":               "Lee Park",
		"vehicle_model":           "Model Y",
		"insurance_policy_number": "TI-1",
		"unrelated":               42,
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.UserID != "u9" || p.VehicleModel != "Model Y" || p.InsurancePolicy != "TI-1" {
		t.Errorf("unexpected profile: %+v", p)
	}
}
