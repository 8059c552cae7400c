package imagegen

import (
	"context"
	"io"

	// Packages
	opt "github.com/dragon84867/qwen-code-examples/pkg/opt"
	schema "github.com/dragon84867/qwen-code-examples/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// ProgressFn is called with the cumulative number of bytes received
type ProgressFn func(bytes int64)

// StatusFn is called with the status code as soon as a response arrives,
// before any of the body has been read
type StatusFn func(status int)

// CreateFn returns the writer that downloaded bytes are streamed into. It is
// only called once the remote server has accepted the request, so a failed
// download never leaves an empty file behind.
type CreateFn func(mimetype string) (io.WriteCloser, error)

// Generator is the interface that wraps the image generation call
type Generator interface {
	// Generate sends the prompt and returns the buffered response. When the
	// body cannot be decoded the result is still returned alongside the error
	// so that the raw body can be inspected.
	Generate(ctx context.Context, prompt string, opts ...opt.Opt) (*schema.GenerateResult, error)
}

// Downloader is the interface that wraps retrieval of generated images
type Downloader interface {
	// Download fetches the image reference and streams it into the writer
	// returned by create, returning the number of bytes written
	Download(ctx context.Context, ref string, create CreateFn, progress ProgressFn) (int64, error)
}
