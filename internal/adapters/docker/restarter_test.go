package docker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewRestarter_Defaults(t *testing.T) {
	r := NewRestarter(Options{})

	if r.binary != "docker" {
		t.Errorf("expected binary 'docker', got %q", r.binary)
	}

	if r.run == nil {
		t.Error("expected a default runner")
	}
}

func TestRestart_Success(t *testing.T) {
	var gotName string
	var gotArgs []string
	r := NewRestarter(Options{Runner: func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return []byte("protonmail-bridge\n"), nil
	}})

	if err := r.Restart(context.Background(), "protonmail-bridge"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotName != "docker" {
		t.Errorf("expected docker binary, got %q", gotName)
	}

	if strings.Join(gotArgs, " ") != "restart protonmail-bridge" {
		t.Errorf("expected 'restart protonmail-bridge', got %q", gotArgs)
	}
}

func TestRestart_FailureIncludesOutput(t *testing.T) {
	exitErr := errors.New("exit status 1")
	r := NewRestarter(Options{Runner: func(context.Context, string, ...string) ([]byte, error) {
		return []byte("Error response from daemon: No such container: bridge\n"), exitErr
	}})

	err := r.Restart(context.Background(), "bridge")
	if !errors.Is(err, exitErr) {
		t.Fatalf("expected wrapped exit error, got %v", err)
	}

	if !strings.Contains(err.Error(), "No such container") {
		t.Errorf("expected daemon output in error, got %q", err.Error())
	}
}

func TestRestart_FailureWithoutOutput(t *testing.T) {
	r := NewRestarter(Options{Runner: func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exec: \"docker\": executable file not found in $PATH")
	}})

	err := r.Restart(context.Background(), "bridge")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if !strings.HasPrefix(err.Error(), "docker restart bridge: exec:") {
		t.Errorf("unexpected error message %q", err.Error())
	}
}

func TestRestart_EmptyService(t *testing.T) {
	r := NewRestarter(Options{Runner: func(context.Context, string, ...string) ([]byte, error) {
		t.Fatal("runner must not be called")
		return nil, nil
	}})

	if err := r.Restart(context.Background(), " "); err == nil {
		t.Error("expected error for empty service name")
	}
}

func TestRestart_AppliesTimeout(t *testing.T) {
	r := NewRestarter(Options{
		Timeout: 50 * time.Millisecond,
		Runner: func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("expected a deadline on the runner context")
			}
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})

	err := r.Restart(context.Background(), "bridge")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
