package intake

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"fria/internal/ai"
)

func TestParseYesNo(t *testing.T) {
	cases := []struct {
		in     string
		want   bool
		wantOK bool
	}{
		{"yes", true, true},
		{"Yes I'm safe", true, true},
		{"yeah we’re safe now", true, true},
		{"  YEP!! ", true, true},
		{"I am fine", true, true},
		{"no", false, true},
		{"not safe, help", false, true},
		{"I'm not safe there is smoke everywhere and I can't get out of the car", false, true},
		{"nope", false, true},
		{"I'm safe, nobody was injured", true, true},
		{"yes I'm fine, not really hurt", true, true},
		{"Yes, we are safe and no one is injured", true, true},
		{"no one is hurt and we're safe", true, true},
		{"not really", false, true},
		{"I'm not hurt", false, false},
		{"the car won't start but I'm safe", true, true},
		{"no, I'm hurt", false, true},
		{"not sure", false, false},
		{"maybe", false, false},
		{"hello", false, false},
		{"", false, false},
		{"I hit a pole near the exit", false, false},
	}
	for _, tc := range cases {
		got, ok := ParseYesNo(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ParseYesNo(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestParseOperable(t *testing.T) {
	cases := []struct {
		in     string
		want   bool
		wantOK bool
	}{
		{"it won't start", false, true},
		{"no it won't start", false, true},
		{"yes it still runs", true, true},
		{"It runs fine", true, true},
		{"not drivable, the axle snapped", false, true},
		{"hello there", false, false},
		{"not sure", false, false},
	}
	for _, tc := range cases {
		got, ok := ParseOperable(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ParseOperable(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestLooksLikeIncident(t *testing.T) {
	cases := map[string]bool{
		"I rear-ended a truck and the hood is crumpled": true,
		"hit a pole":             true,
		"flat tire":              false,
		"yes":                    false,
		"no it is not":           false,
		"the car slid off road":  true,
		"   ":                    false,
	}
	for in, want := range cases {
		if got := LooksLikeIncident(in); got != want {
			t.Errorf("LooksLikeIncident(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLooksLikeAddress(t *testing.T) {
	cases := map[string]bool{
		"123 Main St, Chicago":        true,
		"I-90 near exit 45":           true,
		"Lake Shore Drive northbound": true,
		"hello":                       false,
		"Main St":                     false,
		"somewhere downtown":          false,
	}
	for in, want := range cases {
		if got := LooksLikeAddress(in); got != want {
			t.Errorf("LooksLikeAddress(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsSkipAnswer(t *testing.T) {
	for _, in := range []string{"skip", "IDK", "n/a", "", "unsure", "I don't know"} {
		if !isSkipAnswer(in) {
			t.Errorf("isSkipAnswer(%q) = false", in)
		}
	}
	for _, in := range []string{"engine died", "flat tire", "no"} {
		if isSkipAnswer(in) {
			t.Errorf("isSkipAnswer(%q) = true", in)
		}
	}
}

func TestTowReasonValidator(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		err   error
		want  bool
	}{
		{"valid", `{"is_valid": true, "reason": "engine failure"}`, nil, true},
		{"wrapped in prose", "Here you go:\n```json\n{\"is_valid\": true}\n```", nil, true},
		{"invalid", `{"is_valid": false}`, nil, false},
		{"missing key", `{"valid": true}`, nil, false},
		{"not json", "yes it is valid", nil, false},
		{"wrong type", `{"is_valid": "yes"}`, nil, false},
		{"llm error", "", errors.New("timeout"), false},
		{"quota exhausted", "", fmt.Errorf("quota: %w", ai.ErrUnavailable), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			llm := ai.Func(func(context.Context, string) (string, error) { return tc.reply, tc.err })
			v := NewTowReasonValidator(llm, nil)
			if got := v.Validate(context.Background(), "the engine died on the highway"); got != tc.want {
				t.Fatalf("Validate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTowReasonValidatorWithoutModel(t *testing.T) {
	v := NewTowReasonValidator(nil, nil)
	cases := map[string]bool{
		"engine won't start after the crash":  true,
		"collision damage, front axle broken": true,
		"engine died":                         true,
		"yes":                                 false,
		"no":                                  false,
		"skip":                                false,
		"flat":                                false,
	}
	for in, want := range cases {
		if got := v.Validate(context.Background(), in); got != want {
			t.Errorf("Validate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTowReasonValidatorSkipAnswer(t *testing.T) {
	called := false
	llm := ai.Func(func(context.Context, string) (string, error) {
		called = true
		return `{"is_valid": true}`, nil
	})
	if NewTowReasonValidator(llm, nil).Validate(context.Background(), "skip") {
		t.Fatal("skip answer accepted")
	}
	if called {
		t.Fatal("model consulted for a skip answer")
	}
}
