package transcription

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	apperrors "github.com/skillsenselab/callscribe/errors"
	"github.com/skillsenselab/callscribe/logger"
)

func testLog() *logger.Logger { return logger.NewDefault("test") }

func TestGetOrComputeCachesSuccess(t *testing.T) {
	c := NewCache(0, testLog())
	var calls int32
	compute := func(_ context.Context) (*Result, error) {
		atomic.AddInt32(&calls, 1)
		return &Result{Text: "hello"}, nil
	}

	first, err := c.GetOrCompute(context.Background(), "k1", compute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.GetOrCompute(context.Background(), "k1", compute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Error("expected identical cached result")
	}
	if calls != 1 {
		t.Errorf("expected 1 computation, got %d", calls)
	}
}

func TestGetOrComputeHitErrorIsExactlyNil(t *testing.T) {
	c := NewCache(0, testLog())
	compute := func(_ context.Context) (*Result, error) {
		return &Result{Text: "warm"}, nil
	}
	if _, err := c.GetOrCompute(context.Background(), "warm", compute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The stored error slot is a concrete *errors.AppError; a hit on a
	// successful entry must come back as the untyped nil error, not a
	// non-nil interface wrapping a nil pointer.
	res, err := c.GetOrCompute(context.Background(), "warm", compute)
	if err != nil {
		t.Fatalf("cache hit returned non-nil error: %v", err)
	}
	if res == nil || res.Text != "warm" {
		t.Errorf("unexpected cached result: %+v", res)
	}
}

func TestGetOrComputeSingleFlight(t *testing.T) {
	c := NewCache(0, testLog())
	var calls int32
	release := make(chan struct{})
	compute := func(_ context.Context) (*Result, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &Result{Text: "shared"}, nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]*Result, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := c.GetOrCompute(context.Background(), "same", compute)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
				return
			}
			results[i] = r
		}(i)
	}
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Errorf("expected exactly 1 backend invocation, got %d", calls)
	}
	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Errorf("caller %d got a different result instance", i)
		}
	}
}

func TestGetOrComputeCachesUnintelligible(t *testing.T) {
	c := NewCache(0, testLog())
	var calls int32
	compute := func(_ context.Context) (*Result, error) {
		atomic.AddInt32(&calls, 1)
		return nil, apperrors.Unintelligible("whisper")
	}

	for i := 0; i < 2; i++ {
		_, err := c.GetOrCompute(context.Background(), "silent", compute)
		if !apperrors.HasCode(err, apperrors.ErrCodeUnintelligible) {
			t.Fatalf("expected UNINTELLIGIBLE, got %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected unintelligible verdict cached, got %d computations", calls)
	}
}

func TestGetOrComputeDoesNotCacheRetryable(t *testing.T) {
	c := NewCache(0, testLog())
	var calls int32
	compute := func(_ context.Context) (*Result, error) {
		atomic.AddInt32(&calls, 1)
		return nil, apperrors.BackendUnavailable("whisper", "down")
	}

	for i := 0; i < 2; i++ {
		_, err := c.GetOrCompute(context.Background(), "flaky", compute)
		if !apperrors.HasCode(err, apperrors.ErrCodeBackendUnavailable) {
			t.Fatalf("expected BACKEND_UNAVAILABLE, got %v", err)
		}
	}
	if calls != 2 {
		t.Errorf("expected retryable failure not cached, got %d computations", calls)
	}
}

func TestCacheBound(t *testing.T) {
	c := NewCache(2, testLog())
	mk := func(text string) func(context.Context) (*Result, error) {
		return func(_ context.Context) (*Result, error) { return &Result{Text: text}, nil }
	}

	ctx := context.Background()
	if _, err := c.GetOrCompute(ctx, "a", mk("a")); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetOrCompute(ctx, "b", mk("b")); err != nil {
		t.Fatal(err)
	}
	// Touch "a" so "b" is the least recently used.
	if _, err := c.GetOrCompute(ctx, "a", mk("never")); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetOrCompute(ctx, "c", mk("c")); err != nil {
		t.Fatal(err)
	}

	if c.Len() != 2 {
		t.Errorf("expected 2 entries after eviction, got %d", c.Len())
	}

	var recomputed int32
	if _, err := c.GetOrCompute(ctx, "b", func(_ context.Context) (*Result, error) {
		atomic.AddInt32(&recomputed, 1)
		return &Result{Text: "b2"}, nil
	}); err != nil {
		t.Fatal(err)
	}
	if recomputed != 1 {
		t.Error("expected evicted entry to be recomputed")
	}
}

func TestCacheClear(t *testing.T) {
	c := NewCache(0, testLog())
	_, _ = c.GetOrCompute(context.Background(), "x", func(_ context.Context) (*Result, error) {
		return &Result{Text: "x"}, nil
	})
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d", c.Len())
	}
}
