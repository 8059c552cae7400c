/*
generate runs one image generation: it sends the prompt, extracts the text
and the first image reference from the response, downloads the image and
writes the image, response and metadata files. Every step is reported and
the terminal state is returned.
*/
package generate

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	// Packages
	imagegen "github.com/dragon84867/qwen-code-examples"
	download "github.com/dragon84867/qwen-code-examples/pkg/download"
	opt "github.com/dragon84867/qwen-code-examples/pkg/opt"
	schema "github.com/dragon84867/qwen-code-examples/pkg/schema"
	store "github.com/dragon84867/qwen-code-examples/pkg/store"
	ui "github.com/dragon84867/qwen-code-examples/pkg/ui"
	uuid "github.com/google/uuid"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	attribute "go.opentelemetry.io/otel/attribute"
	trace "go.opentelemetry.io/otel/trace"
	noop "go.opentelemetry.io/otel/trace/noop"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Runner struct {
	generator  imagegen.Generator
	downloader imagegen.Downloader
	store      *store.Store
	reporter   ui.Reporter
	tracer     trace.Tracer
	logger     *slog.Logger
	now        func() time.Time
}

// Result describes a finished run
type Result struct {
	ID       string
	State    State
	Text     string                 // commentary returned with the image
	ImageRef string                 // first inline image reference
	Reason   string                 // block or finish reason when no image was returned
	Response *schema.GenerateResult // nil when the request failed
	Download *schema.DownloadResult // set once the image is saved
	Files    ui.Files
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a runner. A generator is required.
func New(opts ...Opt) (*Runner, error) {
	r := &Runner{
		reporter: ui.Discard,
		tracer:   noop.NewTracerProvider().Tracer("imagegen"),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	// Defaults
	if r.generator == nil {
		return nil, imagegen.ErrMissingConfiguration.With("generator is required")
	}
	if r.downloader == nil {
		r.downloader = download.New()
	}
	if r.store == nil {
		if s, err := store.New("."); err != nil {
			return nil, err
		} else {
			r.store = s
		}
	}

	// Return success
	return r, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Run performs a single generation for the prompt. The result is returned
// for every run which got as far as sending a request, together with the
// error which ended it, if any.
func (r *Runner) Run(ctx context.Context, prompt string, opts ...opt.Opt) (result *Result, err error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, imagegen.ErrMissingConfiguration.With("prompt is required")
	}
	options, err := opt.Apply(opts...)
	if err != nil {
		return nil, imagegen.ErrBadParameter.With(err)
	}
	model := options.GetString(opt.ModelKey)
	if model == "" {
		model = schema.DefaultModel
	}

	result = &Result{ID: uuid.NewString(), State: StateStart}
	start := r.now()

	// Otel span
	ctx, endSpan := otel.StartSpan(r.tracer, ctx, "Run",
		attribute.String("id", result.ID),
		attribute.String("model", model),
	)
	defer func() {
		r.logger.DebugContext(ctx, "run finished", "id", result.ID, "state", result.State.String(), "error", err)
		endSpan(err)
	}()

	r.reporter.Info("Starting image generation...")
	r.reporter.Info("Prompt: %s", prompt)

	// Requesting
	result.State = StateRequesting
	status := opt.SetAny(opt.StatusKey, imagegen.StatusFn(func(code int) {
		r.reporter.Info("Response Status: %d", code)
	}))
	tick := opt.SetAny(opt.ProgressKey, imagegen.ProgressFn(func(int64) {
		r.reporter.Tick()
	}))
	response, err := r.generate(ctx, prompt, append([]opt.Opt{status, tick}, opts...)...)
	result.Response = response
	if response != nil {
		r.reporter.Info("API Response Time: %s", schema.Seconds(response.APIDuration))
	}
	if err != nil {
		if response != nil && errors.Is(err, imagegen.ErrParse) {
			result.State = StateParseFailed
			r.reporter.Error("Failed to parse response: %v", err)
			r.saveDebug(result, "Raw response saved to: %s")
			return result, err
		}
		result.State = StateFailed
		var reqErr *imagegen.RequestError
		if errors.As(err, &reqErr) {
			r.reporter.Error("Request failed, status code: %d", reqErr.Status)
			r.reporter.Error("%s", reqErr.Message)
		} else {
			r.reporter.Error("Request error: %v", err)
		}
		return result, err
	}

	// Parsing
	result.State = StateParsing
	extract := response.Response.Extract()
	result.Text = extract.Text
	if extract.Image != nil {
		result.ImageRef = extract.Image.Data
		r.reporter.Info("Image data found!")
	}
	if extract.Text != "" {
		r.reporter.Info("Generated Text:")
		r.reporter.Markdown(extract.Text)
	}
	if extract.Image == nil {
		result.State = StateNoImageFound
		result.Reason = response.Response.Reason()
		if result.Reason != "" {
			r.reporter.Warn("No image data found (%s).", result.Reason)
			err = imagegen.ErrNoImage.With(result.Reason)
		} else {
			r.reporter.Warn("No image data found.")
			err = imagegen.ErrNoImage
		}
		r.saveDebug(result, "Debug info saved to: %s")
		return result, err
	}

	// Downloading
	result.State = StateDownloading
	r.reporter.Info("Starting image download...")
	token := schema.FileTimestamp(r.now())
	downloadStart := r.now()
	n, err := r.download(ctx, result.ImageRef, token)
	if err != nil {
		result.State = StateDownloadFailed
		var reqErr *imagegen.RequestError
		if errors.As(err, &reqErr) {
			r.reporter.Error("Download failed, status code: %d", reqErr.Status)
		} else {
			r.reporter.Error("Download error: %v", err)
		}
		return result, err
	}
	end := r.now()
	result.Download = &schema.DownloadResult{
		ID:               result.ID,
		Model:            model,
		Filename:         filepath.Base(r.store.ImagePath(token)),
		Bytes:            n,
		APIDuration:      response.APIDuration,
		DownloadDuration: end.Sub(downloadStart),
		TotalDuration:    end.Sub(start),
		Prompt:           prompt,
		ImageRef:         result.ImageRef,
		Timestamp:        end,
	}
	result.Files = append(result.Files, ui.File{Kind: "image", Path: r.store.ImagePath(token), Bytes: n})
	r.reporter.Info("Image saved: %s", result.Download.Filename)
	r.reporter.Info("File Size: %s", schema.Megabytes(n))
	r.reporter.Info("Download Time: %s", schema.Seconds(result.Download.DownloadDuration))
	r.reporter.Info("Total Time: %s", schema.Seconds(result.Download.TotalDuration))

	// Persist the response and the metadata record
	if err := r.save(result, token); err != nil {
		result.State = StateDownloadFailed
		r.reporter.Error("%v", err)
		return result, err
	}

	// Saved
	result.State = StateSaved
	r.reporter.Done(result.Files)
	return result, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (r *Runner) generate(ctx context.Context, prompt string, opts ...opt.Opt) (result *schema.GenerateResult, err error) {
	ctx, endSpan := otel.StartSpan(r.tracer, ctx, "Generate",
		attribute.Int("prompt_length", len(prompt)),
	)
	defer func() { endSpan(err) }()

	result, err = r.generator.Generate(ctx, prompt, opts...)
	if result != nil {
		r.logger.DebugContext(ctx, "response received", "status", result.Status, "bytes", len(result.Raw), "duration", result.APIDuration)
	}
	return result, err
}

func (r *Runner) download(ctx context.Context, ref, token string) (n int64, err error) {
	ctx, endSpan := otel.StartSpan(r.tracer, ctx, "Download",
		attribute.String("token", token),
	)
	defer func() { endSpan(err) }()

	n, err = r.downloader.Download(ctx, ref, r.store.CreateImage(token), r.reporter.Progress)
	r.logger.DebugContext(ctx, "download finished", "bytes", n, "path", r.store.ImagePath(token))
	return n, err
}

// save writes the response and metadata files sharing the image token
func (r *Runner) save(result *Result, token string) error {
	path, err := r.store.WriteResponse(token, result.Response)
	if err != nil {
		return err
	}
	result.Files = append(result.Files, ui.File{Kind: "response", Path: path})
	r.reporter.Info("Response data saved: %s", filepath.Base(path))

	metadata := result.Download.Metadata()
	path, err = r.store.WriteMetadata(token, metadata)
	if err != nil {
		return err
	}
	result.Files = append(result.Files, ui.File{Kind: "metadata", Path: path})
	r.reporter.Info("Metadata saved: %s", filepath.Base(path))
	r.logger.Debug("metadata", "record", metadata.String())

	return nil
}

// saveDebug keeps the response for inspection, reporting any failure
func (r *Runner) saveDebug(result *Result, format string) {
	path, err := r.store.WriteDebug(r.now(), result.Response)
	if err != nil {
		r.reporter.Error("%v", err)
		return
	}
	result.Files = append(result.Files, ui.File{Kind: "debug", Path: path})
	r.reporter.Info(format, path)
}
