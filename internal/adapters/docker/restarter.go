package docker

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command on the host.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Restarter restarts containers through the docker CLI.
type Restarter struct {
	binary  string
	timeout time.Duration
	run     Runner
}

// Options configures a Restarter. Zero values pick the defaults.
type Options struct {
	Binary  string        // defaults to "docker"
	Timeout time.Duration // no extra bound when zero
	Runner  Runner        // defaults to ExecRunner
}

func NewRestarter(opts Options) *Restarter {
	r := &Restarter{
		binary:  opts.Binary,
		timeout: opts.Timeout,
		run:     opts.Runner,
	}
	if r.binary == "" {
		r.binary = "docker"
	}
	if r.run == nil {
		r.run = ExecRunner
	}
	return r
}

// Restart runs `docker restart <service>`. Restarting an already stopped
// container is fine for docker, so the call is safe to repeat.
func (r *Restarter) Restart(ctx context.Context, service string) error {
	if strings.TrimSpace(service) == "" {
		return errors.New("service name is required")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	out, err := r.run(ctx, r.binary, "restart", service)
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s restart %s: %w: %s", r.binary, service, err, msg)
		}
		return fmt.Errorf("%s restart %s: %w", r.binary, service, err)
	}
	return nil
}
