package intake

import (
	"errors"
	"testing"

	"fria/internal/modules/form"
)

func mustRouter(t *testing.T, required []form.Field) *Router {
	t.Helper()
	r, err := NewRouter(required)
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return r
}

func TestDeriveLane(t *testing.T) {
	r := mustRouter(t, DefaultRequired)
	yes, no := boolPtr(true), boolPtr(false)
	filled := func(fields ...form.Field) form.Values {
		v := form.New(nil).Snapshot()
		for _, f := range fields {
			v[f] = form.Str("x")
		}
		return v
	}
	cases := []struct {
		name   string
		values form.Values
		safety *bool
		want   Lane
	}{
		{"unknown safety", filled(), nil, LaneSafety},
		{"unsafe", filled(form.DamageDescription), no, LaneSafety},
		{"fresh", filled(), yes, LaneIncident},
		{"damage known", filled(form.DamageDescription), yes, LaneLocation},
		{"address known first", filled(form.AccidentLocationAddress), yes, LaneIncident},
		{"location known", filled(form.DamageDescription, form.AccidentLocationAddress), yes, LaneOperability},
		{"operability known", filled(form.DamageDescription, form.AccidentLocationAddress, form.IsVehicleOperable), yes, LaneTowReason},
		{"all known", filled(form.DamageDescription, form.AccidentLocationAddress, form.IsVehicleOperable, form.ReasonForTowing), yes, LaneFinalize},
		{"all known but unconfirmed", filled(form.DamageDescription, form.AccidentLocationAddress, form.IsVehicleOperable, form.ReasonForTowing), nil, LaneSafety},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			first := r.Derive(tc.values, tc.safety)
			second := r.Derive(tc.values, tc.safety)
			if first != tc.want || second != first {
				t.Fatalf("Derive = %s then %s, want %s", first, second, tc.want)
			}
		})
	}
}

func TestDeriveLaneBlankCountsAsUnset(t *testing.T) {
	r := mustRouter(t, DefaultRequired)
	v := form.New(nil).Snapshot()
	v[form.DamageDescription] = form.Str("   ")
	if got := r.Derive(v, boolPtr(true)); got != LaneIncident {
		t.Fatalf("Derive = %s, want INCIDENT", got)
	}
}

func TestRouterExtraFieldsBecomeLanes(t *testing.T) {
	r := mustRouter(t, []form.Field{form.VehicleColor, form.ReasonForTowing, form.DamageDescription})
	want := []form.Field{form.DamageDescription, form.ReasonForTowing, form.VehicleColor}
	got := r.Required()
	if len(got) != len(want) {
		t.Fatalf("required = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("required = %v, want %v", got, want)
		}
	}
	v := form.New(nil).Snapshot()
	v[form.DamageDescription] = form.Str("dent")
	v[form.ReasonForTowing] = form.Str("won't start")
	lane := r.Derive(v, boolPtr(true))
	if lane != Lane("VEHICLE_COLOR") {
		t.Fatalf("lane = %s", lane)
	}
	if f, ok := r.Field(lane); !ok || f != form.VehicleColor {
		t.Fatalf("Field(%s) = %s, %v", lane, f, ok)
	}
}

func TestNewRouterValidates(t *testing.T) {
	if _, err := NewRouter(nil); err == nil {
		t.Fatal("expected error for empty field list")
	}
	if _, err := NewRouter([]form.Field{"shoe_size"}); !errors.Is(err, form.ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
}

func TestTranscriptRoundTrip(t *testing.T) {
	var tr Transcript
	want := []Entry{
		{RoleAssistant, "Are you safe?"},
		{RoleUser, "yes"},
		{RoleAssistant, "What happened?"},
		{RoleUser, "I hit a curb and bent the wheel"},
	}
	for _, e := range want {
		tr.Append(e.Role, e.Content)
	}
	got := tr.Entries()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	got[0].Content = "mutated"
	if first := tr.Entries()[0]; first.Content != "Are you safe?" {
		t.Fatal("Entries aliases the transcript")
	}
	if since := tr.Since(2); len(since) != 2 || since[0] != want[2] {
		t.Fatalf("Since(2) = %+v", since)
	}
	if tail := tr.Tail(10); len(tail) != 4 {
		t.Fatalf("Tail(10) = %d entries", len(tail))
	}
	if last, ok := tr.Last(); !ok || last != want[3] {
		t.Fatalf("Last = %+v, %v", last, ok)
	}
}
