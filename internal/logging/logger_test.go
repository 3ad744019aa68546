package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}

	var typed *slogLogger
	if !IsNil(typed) {
		t.Fatal("typed nil pointer should be nil")
	}
	OrNop(typed).Info("must not panic")
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Output: &buf, Component: "test"})

	logger.Info("hidden %d", 1)
	logger.Warn("visible %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line emitted at warn level: %q", out)
	}
	if !strings.Contains(out, "visible 2") {
		t.Errorf("warn line missing: %q", out)
	}
	if !strings.Contains(out, "component=test") {
		t.Errorf("component attribute missing: %q", out)
	}
}

func TestMultiFansOut(t *testing.T) {
	var a, b bytes.Buffer
	logger := Multi(New(Config{Output: &a}), nil, New(Config{Output: &b}))

	logger.Info("both sinks")

	if !strings.Contains(a.String(), "both sinks") || !strings.Contains(b.String(), "both sinks") {
		t.Errorf("fan-out missed a sink: a=%q b=%q", a.String(), b.String())
	}
}

func TestSanitizeAPIKey(t *testing.T) {
	if got := SanitizeAPIKey("short"); got != "***" {
		t.Errorf("short key: got %q", got)
	}
	if got := SanitizeAPIKey("sk-ant-api03-abcdefgh"); !strings.HasPrefix(got, "sk-ant-a") || !strings.HasSuffix(got, "efgh") {
		t.Errorf("long key not masked as prefix...suffix: %q", got)
	}
}
