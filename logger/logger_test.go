package logger

import (
	"testing"
	"time"
)

func TestFields_BuildsMapFromPairs(t *testing.T) {
	m := Fields("a", 1, "b", "two")
	if len(m) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m))
	}
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected map: %v", m)
	}
}

func TestFields_IgnoresDanglingKey(t *testing.T) {
	m := Fields("a", 1, "dangling")
	if _, ok := m["dangling"]; ok {
		t.Errorf("dangling key should be dropped: %v", m)
	}
}

func TestDurationFields(t *testing.T) {
	m := DurationFields("transcribe", 1500*time.Millisecond)
	if m[FieldOperation] != "transcribe" {
		t.Errorf("unexpected operation: %v", m[FieldOperation])
	}
	if m[FieldDuration] != int64(1500) {
		t.Errorf("unexpected duration: %v", m[FieldDuration])
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}

	cfg.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for invalid level")
	}
}

func TestGet_FallsBackToGlobalWithComponent(t *testing.T) {
	l := Get("not-registered")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestGet_ReturnsRegisteredLogger(t *testing.T) {
	named := NewDefault("test")
	Register("named", named)
	if got := Get("named"); got != named {
		t.Errorf("expected registered logger instance")
	}
}
