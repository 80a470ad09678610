package process

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRunCapturesOutput(t *testing.T) {
	res, err := Run(context.Background(), Command{
		Binary: "sh",
		Args:   []string{"-c", "echo out; echo err >&2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(string(res.Stdout)); got != "out" {
		t.Errorf("unexpected stdout: %q", got)
	}
	if got := strings.TrimSpace(string(res.Stderr)); got != "err" {
		t.Errorf("unexpected stderr: %q", got)
	}
	if res.ExitCode != 0 {
		t.Errorf("unexpected exit code: %d", res.ExitCode)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	res, err := Run(context.Background(), Command{
		Binary: "sh",
		Args:   []string{"-c", "exit 3"},
	})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if res.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", res.ExitCode)
	}
}

func TestRunRequiresBinary(t *testing.T) {
	if _, err := Run(context.Background(), Command{}); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Run(ctx, Command{
		Binary:      "sleep",
		Args:        []string{"10"},
		GracePeriod: 100 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error for canceled process")
	}
	if !strings.Contains(err.Error(), "killed by context") {
		t.Errorf("unexpected error: %v", err)
	}
}
