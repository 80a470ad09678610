package transcription

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/skillsenselab/callscribe/audio"
	apperrors "github.com/skillsenselab/callscribe/errors"
	"github.com/skillsenselab/callscribe/logger"
)

// wavDecoder fakes the ffmpeg step: it accepts any input and always writes
// the same valid canonical WAV.
type wavDecoder struct {
	output []byte
}

func (d *wavDecoder) Decode(_ context.Context, _, dstPath, _ string, _ int) error {
	return os.WriteFile(dstPath, d.output, 0o600)
}

type fakeBackend struct {
	calls int32
	fn    func(ctx context.Context, req Request) (*Result, error)
}

func (f *fakeBackend) Name() string                       { return "fake" }
func (f *fakeBackend) IsAvailable(_ context.Context) bool { return true }
func (f *fakeBackend) Transcribe(ctx context.Context, req Request) (*Result, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.fn(ctx, req)
}

func newTestService(t *testing.T, cfg Config, backend Provider) *Service {
	t.Helper()
	wav, err := audio.EncodePCM16(make([]int, 4800), 16000)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	log := logger.NewDefault("test")
	normalizer := audio.NewNormalizer(audio.Config{SampleRate: 16000}, &wavDecoder{output: wav}, log)

	cfg.Provider = "fake"
	registry := NewRegistry()
	registry.Set("fake", backend)

	return NewService(cfg, normalizer, registry, NewCache(cfg.CacheMaxEntries, log), log)
}

func sampleBlob() audio.Blob {
	return audio.Blob{Bytes: []byte("some upload"), Hint: "wav", Filename: "call.wav"}
}

func TestTranscribeSuccess(t *testing.T) {
	backend := &fakeBackend{fn: func(_ context.Context, _ Request) (*Result, error) {
		return &Result{Text: "hello operator"}, nil
	}}
	svc := newTestService(t, Config{}, backend)

	res, err := svc.Transcribe(context.Background(), sampleBlob(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "hello operator" {
		t.Errorf("unexpected text: %q", res.Text)
	}
	if res.Provider != "fake" {
		t.Errorf("expected provider 'fake', got %q", res.Provider)
	}
	if res.Fingerprint == "" {
		t.Error("expected fingerprint to be set")
	}
}

func TestTranscribeIdempotent(t *testing.T) {
	backend := &fakeBackend{fn: func(_ context.Context, _ Request) (*Result, error) {
		return &Result{Text: "once"}, nil
	}}
	svc := newTestService(t, Config{}, backend)

	first, err := svc.Transcribe(context.Background(), sampleBlob(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Transcribe(context.Background(), sampleBlob(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("expected cache hit to return the same result")
	}
	if backend.calls != 1 {
		t.Errorf("expected 1 backend invocation, got %d", backend.calls)
	}
}

func TestTranscribeRepeatedUploadsAfterWarmCache(t *testing.T) {
	backend := &fakeBackend{fn: func(_ context.Context, _ Request) (*Result, error) {
		return &Result{Text: "warm"}, nil
	}}
	svc := newTestService(t, Config{}, backend)

	if _, err := svc.Transcribe(context.Background(), sampleBlob(), Options{}); err != nil {
		t.Fatal(err)
	}

	// Every repeat of the same upload is a cache hit and must succeed with a
	// nil error; a regression here surfaces as a panic or a non-nil error.
	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.Transcribe(context.Background(), sampleBlob(), Options{})
			errs[i] = err
			if err == nil && res.Text != "warm" {
				t.Errorf("repeat upload %d: unexpected text %q", i, res.Text)
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("repeat upload %d: %v", i, err)
		}
	}
	if backend.calls != 1 {
		t.Errorf("expected 1 backend invocation, got %d", backend.calls)
	}
}

func TestTranscribeConcurrentSharedCache(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{fn: func(_ context.Context, _ Request) (*Result, error) {
		<-release
		return &Result{Text: "shared"}, nil
	}}
	svc := newTestService(t, Config{}, backend)

	const n = 6
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Transcribe(context.Background(), sampleBlob(), Options{})
		}(i)
	}
	// Give the goroutines time to coalesce on the in-flight computation.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: %v", i, err)
		}
	}
	if backend.calls != 1 {
		t.Errorf("expected exactly 1 backend invocation, got %d", backend.calls)
	}
}

func TestTranscribeSilenceIsUnintelligible(t *testing.T) {
	backend := &fakeBackend{fn: func(_ context.Context, _ Request) (*Result, error) {
		return &Result{Text: "   "}, nil
	}}
	svc := newTestService(t, Config{}, backend)

	_, err := svc.Transcribe(context.Background(), sampleBlob(), Options{})
	if !apperrors.HasCode(err, apperrors.ErrCodeUnintelligible) {
		t.Fatalf("expected UNINTELLIGIBLE, got %v", err)
	}

	// The verdict is deterministic and must be served from cache.
	_, err = svc.Transcribe(context.Background(), sampleBlob(), Options{})
	if !apperrors.HasCode(err, apperrors.ErrCodeUnintelligible) {
		t.Fatalf("expected UNINTELLIGIBLE on second call, got %v", err)
	}
	if backend.calls != 1 {
		t.Errorf("expected 1 backend invocation, got %d", backend.calls)
	}
}

func TestTranscribeBackendErrorPassthrough(t *testing.T) {
	backend := &fakeBackend{fn: func(_ context.Context, _ Request) (*Result, error) {
		return nil, apperrors.BackendUnavailable("fake", "connection refused")
	}}
	svc := newTestService(t, Config{}, backend)

	_, err := svc.Transcribe(context.Background(), sampleBlob(), Options{})
	if !apperrors.HasCode(err, apperrors.ErrCodeBackendUnavailable) {
		t.Fatalf("expected BACKEND_UNAVAILABLE, got %v", err)
	}
}

func TestTranscribeTimeout(t *testing.T) {
	backend := &fakeBackend{fn: func(ctx context.Context, _ Request) (*Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	svc := newTestService(t, Config{Timeout: 20 * time.Millisecond}, backend)

	_, err := svc.Transcribe(context.Background(), sampleBlob(), Options{})
	if !apperrors.HasCode(err, apperrors.ErrCodeBackendUnavailable) {
		t.Fatalf("expected timeout mapped to BACKEND_UNAVAILABLE, got %v", err)
	}
}

func TestTranscribeUnknownBackendError(t *testing.T) {
	backend := &fakeBackend{fn: func(_ context.Context, _ Request) (*Result, error) {
		return nil, os.ErrPermission
	}}
	svc := newTestService(t, Config{}, backend)

	_, err := svc.Transcribe(context.Background(), sampleBlob(), Options{})
	if !apperrors.HasCode(err, apperrors.ErrCodeBackendUnknown) {
		t.Fatalf("expected UNKNOWN, got %v", err)
	}
	appErr, _ := apperrors.AsAppError(err)
	if appErr.Message == "" {
		t.Error("expected backend detail preserved in message")
	}
}

func TestTranscribeInvalidModel(t *testing.T) {
	backend := &fakeBackend{fn: func(_ context.Context, _ Request) (*Result, error) {
		return &Result{Text: "x"}, nil
	}}
	svc := newTestService(t, Config{}, backend)

	_, err := svc.Transcribe(context.Background(), sampleBlob(), Options{Model: "enormous"})
	if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	appErr, _ := apperrors.AsAppError(err)
	if appErr.Details["available"] == nil {
		t.Error("expected available models in error details")
	}
	if backend.calls != 0 {
		t.Error("expected backend not to be called for invalid model")
	}
}

func TestTranscribeInvalidLanguage(t *testing.T) {
	backend := &fakeBackend{fn: func(_ context.Context, _ Request) (*Result, error) {
		return &Result{Text: "x"}, nil
	}}
	svc := newTestService(t, Config{}, backend)

	_, err := svc.Transcribe(context.Background(), sampleBlob(), Options{Language: "xx"})
	if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestTranscribeNormalizationErrorPropagates(t *testing.T) {
	backend := &fakeBackend{fn: func(_ context.Context, _ Request) (*Result, error) {
		return &Result{Text: "x"}, nil
	}}
	svc := newTestService(t, Config{}, backend)

	_, err := svc.Transcribe(context.Background(), audio.Blob{Bytes: nil, Hint: "wav"}, Options{})
	if !apperrors.HasCode(err, apperrors.ErrCodeEmptyOrCorrupt) {
		t.Fatalf("expected EMPTY_OR_CORRUPT, got %v", err)
	}
	if backend.calls != 0 {
		t.Error("expected backend not to be called when normalization fails")
	}
}

func TestTranscribeModelSelectionForwarded(t *testing.T) {
	var gotModel, gotLanguage string
	backend := &fakeBackend{fn: func(_ context.Context, req Request) (*Result, error) {
		gotModel = req.Model
		gotLanguage = req.Language
		return &Result{Text: "bonjour"}, nil
	}}
	svc := newTestService(t, Config{}, backend)

	_, err := svc.Transcribe(context.Background(), sampleBlob(), Options{Model: "small", Language: "fr"})
	if err != nil {
		t.Fatal(err)
	}
	if gotModel != "small" {
		t.Errorf("expected model 'small', got %q", gotModel)
	}
	if gotLanguage != "fr" {
		t.Errorf("expected language 'fr', got %q", gotLanguage)
	}
}

func TestTranscribeDistinctModelsNotShared(t *testing.T) {
	backend := &fakeBackend{fn: func(_ context.Context, req Request) (*Result, error) {
		return &Result{Text: "text for " + req.Model}, nil
	}}
	svc := newTestService(t, Config{}, backend)

	ctx := context.Background()
	if _, err := svc.Transcribe(ctx, sampleBlob(), Options{Model: "tiny"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Transcribe(ctx, sampleBlob(), Options{Model: "large"}); err != nil {
		t.Fatal(err)
	}
	if backend.calls != 2 {
		t.Errorf("expected separate computations per model, got %d", backend.calls)
	}
}

func TestProviderAvailable(t *testing.T) {
	backend := &fakeBackend{fn: func(_ context.Context, _ Request) (*Result, error) {
		return &Result{Text: "x"}, nil
	}}
	svc := newTestService(t, Config{}, backend)
	if !svc.ProviderAvailable(context.Background()) {
		t.Error("expected provider to be available")
	}

	log := logger.NewDefault("test")
	empty := NewService(Config{Provider: "missing"}, nil, NewRegistry(), NewCache(0, log), log)
	if empty.ProviderAvailable(context.Background()) {
		t.Error("expected missing provider to be unavailable")
	}
}
