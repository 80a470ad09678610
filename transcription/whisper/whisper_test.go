package whisper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skillsenselab/callscribe/audio"
	apperrors "github.com/skillsenselab/callscribe/errors"
	"github.com/skillsenselab/callscribe/transcription"
)

func testRequest(t *testing.T) transcription.Request {
	t.Helper()
	wav, err := audio.EncodePCM16(make([]int, 1600), 16000)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return transcription.Request{
		Audio:    &audio.CanonicalAudio{WAV: wav, SampleRate: 16000, Channels: 1, BitDepth: 16, Frames: 1600},
		Model:    "base",
		Language: "en",
	}
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "base" {
			t.Errorf("expected model 'base', got %q", got)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("expected language 'en', got %q", got)
		}
		if _, _, err := r.FormFile("audio"); err != nil {
			t.Errorf("expected audio form file: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"text":     "dispatch twelve responding",
			"language": "en",
			"segments": []map[string]any{
				{"text": "dispatch twelve", "start": 0.0, "end": 1.2},
				{"text": "responding", "start": 1.2, "end": 2.0},
			},
		})
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	res, err := p.Transcribe(context.Background(), testRequest(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "dispatch twelve responding" {
		t.Errorf("unexpected text: %q", res.Text)
	}
	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(res.Segments))
	}
	if res.Duration != 2.0 {
		t.Errorf("expected duration 2.0, got %v", res.Duration)
	}
}

func TestTranscribeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model load failed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	_, err := p.Transcribe(context.Background(), testRequest(t))
	if !apperrors.HasCode(err, apperrors.ErrCodeBackendUnavailable) {
		t.Fatalf("expected BACKEND_UNAVAILABLE for 5xx, got %v", err)
	}
}

func TestTranscribeClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad model", http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	_, err := p.Transcribe(context.Background(), testRequest(t))
	if !apperrors.HasCode(err, apperrors.ErrCodeBackendUnknown) {
		t.Fatalf("expected UNKNOWN for 4xx, got %v", err)
	}
	appErr, _ := apperrors.AsAppError(err)
	if appErr.Message == "" {
		t.Error("expected backend detail preserved")
	}
}

func TestTranscribeConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // immediately unreachable

	p := NewProvider(Config{URL: srv.URL})
	_, err := p.Transcribe(context.Background(), testRequest(t))
	if !apperrors.HasCode(err, apperrors.ErrCodeBackendUnavailable) {
		t.Fatalf("expected BACKEND_UNAVAILABLE, got %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	if !p.IsAvailable(context.Background()) {
		t.Error("expected sidecar to be available")
	}

	srv.Close()
	if p.IsAvailable(context.Background()) {
		t.Error("expected closed sidecar to be unavailable")
	}
}

func TestFactory(t *testing.T) {
	factory := Factory()
	p, err := factory(map[string]any{"url": "http://sidecar:9000", "timeout": "30s"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wp, ok := p.(*Provider)
	if !ok {
		t.Fatal("expected *Provider")
	}
	if wp.cfg.URL != "http://sidecar:9000" {
		t.Errorf("unexpected url %q", wp.cfg.URL)
	}
	if wp.cfg.Timeout.Seconds() != 30 {
		t.Errorf("unexpected timeout %v", wp.cfg.Timeout)
	}
}

func TestFactoryBadTimeout(t *testing.T) {
	factory := Factory()
	if _, err := factory(map[string]any{"timeout": "soon"}); err == nil {
		t.Error("expected error for unparsable timeout")
	}
}
