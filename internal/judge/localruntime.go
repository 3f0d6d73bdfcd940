package judge

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
)

// LocalRuntime reports whether an interpreter capable of running one
// language locally has finished loading. It is a readiness capability,
// not an execution path: the adapter surfaces the signal and nothing
// more. Tests substitute StaticRuntime.
type LocalRuntime interface {
	Ready() bool
}

// StaticRuntime is a LocalRuntime with a fixed answer.
type StaticRuntime bool

func (r StaticRuntime) Ready() bool { return bool(r) }

// DockerRuntime warms up a local Python interpreter image in the
// background. Warmup is idempotent, polls on a fixed interval, and
// gives up silently after a bounded wait.
type DockerRuntime struct {
	image    string
	maxWait  time.Duration
	interval time.Duration

	mu      sync.Mutex
	started bool
	ready   bool
}

// DockerRuntimeConfig holds settings for the local runtime warmup
type DockerRuntimeConfig struct {
	Image    string        // default: python:3.12-alpine
	MaxWait  time.Duration // default: 30s
	Interval time.Duration // default: 1s
}

// NewDockerRuntime creates a new local runtime. Nothing is loaded
// until Warmup is called.
func NewDockerRuntime(cfg DockerRuntimeConfig) *DockerRuntime {
	if cfg.Image == "" {
		cfg.Image = "python:3.12-alpine"
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = 30 * time.Second
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &DockerRuntime{
		image:    cfg.Image,
		maxWait:  cfg.MaxWait,
		interval: cfg.Interval,
	}
}

// Ready reports whether the interpreter image is available locally.
func (r *DockerRuntime) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// Warmup starts the background load. Repeat calls are no-ops; the
// first call wins regardless of whether it eventually succeeds.
func (r *DockerRuntime) Warmup(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	go r.load(ctx)
}

func (r *DockerRuntime) load(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.maxWait)
	defer cancel()

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		slog.Debug("local runtime unavailable", "error", err)
		return
	}
	defer cli.Close()

	if _, err := cli.Ping(ctx); err != nil {
		slog.Debug("local runtime: docker not reachable", "error", err)
		return
	}

	// Kick off the pull once, then poll until the image shows up
	// locally or the wait expires. Expiry is silent: the controller is
	// never told, it simply keeps seeing Ready() == false.
	if reader, err := cli.ImagePull(ctx, r.image, image.PullOptions{}); err == nil {
		go func() {
			defer reader.Close()
			_, _ = io.Copy(io.Discard, reader)
		}()
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if r.imagePresent(ctx, cli) {
			r.mu.Lock()
			r.ready = true
			r.mu.Unlock()
			slog.Info("local runtime ready", "image", r.image)
			return
		}

		select {
		case <-ctx.Done():
			slog.Debug("local runtime warmup timed out", "image", r.image)
			return
		case <-ticker.C:
		}
	}
}

func (r *DockerRuntime) imagePresent(ctx context.Context, cli *client.Client) bool {
	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false
	}
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == r.image {
				return true
			}
		}
	}
	return false
}
