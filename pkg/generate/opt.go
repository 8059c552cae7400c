package generate

import (
	"log/slog"
	"time"

	// Packages
	imagegen "github.com/dragon84867/qwen-code-examples"
	store "github.com/dragon84867/qwen-code-examples/pkg/store"
	ui "github.com/dragon84867/qwen-code-examples/pkg/ui"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Opt is a functional option for configuring a runner
type Opt func(*Runner) error

///////////////////////////////////////////////////////////////////////////////
// RUNNER OPTIONS

// WithGenerator sets the client which sends the generation request
func WithGenerator(generator imagegen.Generator) Opt {
	return func(r *Runner) error {
		if generator == nil {
			return imagegen.ErrBadParameter.With("generator is required")
		}
		r.generator = generator
		return nil
	}
}

// WithDownloader sets the client which fetches the image. If not set,
// a downloader without credentials is used.
func WithDownloader(downloader imagegen.Downloader) Opt {
	return func(r *Runner) error {
		if downloader == nil {
			return imagegen.ErrBadParameter.With("downloader is required")
		}
		r.downloader = downloader
		return nil
	}
}

// WithStore sets where artifacts are written. If not set, files are
// written into the current working directory.
func WithStore(s *store.Store) Opt {
	return func(r *Runner) error {
		if s == nil {
			return imagegen.ErrBadParameter.With("store is required")
		}
		r.store = s
		return nil
	}
}

// WithReporter sets where progress is reported
func WithReporter(reporter ui.Reporter) Opt {
	return func(r *Runner) error {
		if reporter == nil {
			return imagegen.ErrBadParameter.With("reporter is required")
		}
		r.reporter = reporter
		return nil
	}
}

// WithTracer sets the tracer for run spans
func WithTracer(tracer trace.Tracer) Opt {
	return func(r *Runner) error {
		r.tracer = tracer
		return nil
	}
}

// WithLogger sets the structured logger for diagnostics
func WithLogger(logger *slog.Logger) Opt {
	return func(r *Runner) error {
		if logger == nil {
			return imagegen.ErrBadParameter.With("logger is required")
		}
		r.logger = logger
		return nil
	}
}

// WithClock replaces the wall clock used for timestamps and timings
func WithClock(now func() time.Time) Opt {
	return func(r *Runner) error {
		if now == nil {
			return imagegen.ErrBadParameter.With("clock is required")
		}
		r.now = now
		return nil
	}
}
