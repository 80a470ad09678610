package logger

import (
	"errors"
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{
		Level:  "invalid-level",
		Format: "json",
		Output: "stdout",
	}
	l := New(cfg, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestWithComponent(t *testing.T) {
	l := NewDefault("svc")
	cl := l.WithComponent("normalizer")
	if cl == nil {
		t.Fatal("expected non-nil component logger")
	}
	if cl == l {
		t.Error("expected a new logger instance")
	}
}

func TestWithError(t *testing.T) {
	l := NewDefault("svc")
	el := l.WithError(errors.New("boom"))
	if el == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled by default")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "debug", Format: "json"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFields(t *testing.T) {
	m := Fields("op", "transcribe", "hit", true)
	if m["op"] != "transcribe" {
		t.Errorf("unexpected op field: %v", m["op"])
	}
	if m["hit"] != true {
		t.Errorf("unexpected hit field: %v", m["hit"])
	}
}

func TestFieldsOddArguments(t *testing.T) {
	m := Fields("op", "transcribe", "dangling")
	if len(m) != 1 {
		t.Errorf("expected 1 field, got %d", len(m))
	}
}

func TestDurationFields(t *testing.T) {
	m := DurationFields("normalize", 1500*time.Millisecond)
	if m[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", m[FieldDuration])
	}
}

func TestGetGlobalLogger(t *testing.T) {
	globalLogger = nil
	l := GetGlobalLogger()
	if l == nil {
		t.Fatal("expected global logger to be created on demand")
	}
	if GetGlobalLogger() != l {
		t.Error("expected same global logger instance")
	}
}
