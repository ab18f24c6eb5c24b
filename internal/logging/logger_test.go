package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestRedact(t *testing.T) {
	SetRedaction(true)
	t.Cleanup(func() { SetRedaction(true) })

	cases := []struct {
		in      string
		want    string
		missing string
	}{
		{"mail me at sarah.chen@tesla.com", "[REDACTED_EMAIL]", "sarah.chen"},
		{"call +1-312-555-2098 please", "[REDACTED_PHONE]", "555"},
		{"vin 5YJ3E1EA7JF123456", "[REDACTED_VIN]", "5YJ3E1EA7JF123456"},
		{"I hit a pole", "I hit a pole", ""},
	}
	for _, tc := range cases {
		got := Redact(tc.in)
		if !strings.Contains(got, tc.want) {
			t.Errorf("Redact(%q) = %q, want it to contain %q", tc.in, got, tc.want)
		}
		if tc.missing != "" && strings.Contains(got, tc.missing) {
			t.Errorf("Redact(%q) = %q still contains %q", tc.in, got, tc.missing)
		}
	}
}

func TestRedactDisabled(t *testing.T) {
	SetRedaction(false)
	t.Cleanup(func() { SetRedaction(true) })
	in := "sarah.chen@tesla.com"
	if got := Redact(in); got != in {
		t.Errorf("Redact with redaction off = %q", got)
	}
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	log := Component(NewWithWriter(&buf, "debug", "text"), "intake")
	log.Debug("turn")
	if !strings.Contains(buf.String(), "component=intake") {
		t.Errorf("missing component attr: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("WARN") != slog.LevelWarn || ParseLevel("bogus") != slog.LevelInfo {
		t.Error("unexpected level mapping")
	}
}
