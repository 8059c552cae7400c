/*
download fetches a generated image from the reference returned by the
model. The reference is either an http(s) URL, a data: URI or bare base64
encoded image data.
*/
package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	// Packages
	imagegen "github.com/dragon84867/qwen-code-examples"
	client "github.com/mutablelogic/go-client"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client downloads image references. It carries no credentials, so the API
// key used for generation is never sent to the image host.
type Client struct {
	opts []client.ClientOpt
}

var _ imagegen.Downloader = (*Client)(nil)

// sink streams a successful response body into the writer returned by
// create, which is only called once the server has accepted the request
type sink struct {
	create   imagegen.CreateFn
	progress imagegen.ProgressFn
	written  int64
	err      error
}

var _ client.Unmarshaler = (*sink)(nil)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return fn(req)
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	chunkSize       = 32 * 1024
	defaultMimeType = "application/octet-stream"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a downloader. The client options (timeout, trace, user agent)
// are applied to every http(s) fetch.
func New(opts ...client.ClientOpt) *Client {
	return &Client{opts: opts}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Download resolves ref and streams the image bytes into the writer
// returned by create. It returns the number of bytes written. When the
// server answers with any status other than 200, create is never called.
func (c *Client) Download(ctx context.Context, ref string, create imagegen.CreateFn, progress imagegen.ProgressFn) (int64, error) {
	if create == nil {
		return 0, imagegen.ErrBadParameter.With("create function is required")
	}
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return 0, imagegen.ErrBadParameter.With("empty image reference")
	case isURL(ref):
		return c.fetch(ctx, ref, create, progress)
	case strings.HasPrefix(ref, "data:"):
		mimetype, data, err := decodeDataURI(ref)
		if err != nil {
			return 0, err
		}
		return write(data, mimetype, create, progress)
	default:
		data, err := decodeBase64(ref)
		if err != nil {
			return 0, imagegen.ErrBadParameter.Withf("unsupported image reference: %v", err)
		}
		return write(data, http.DetectContentType(data), create, progress)
	}
}

///////////////////////////////////////////////////////////////////////////////
// UNMARSHALER

func (s *sink) Unmarshal(header http.Header, r io.Reader) error {
	mimetype := defaultMimeType
	if value := header.Get("Content-Type"); value != "" {
		if t, _, err := mime.ParseMediaType(value); err == nil {
			mimetype = t
		}
	}

	w, err := s.create(mimetype)
	if err != nil {
		s.err = err
		return err
	}

	n, err := copyWithProgress(w, r, s.progress)
	s.written = n
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	return err
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (c *Client) fetch(ctx context.Context, ref string, create imagegen.CreateFn, progress imagegen.ProgressFn) (int64, error) {
	// The reference is used verbatim as the endpoint so signed query
	// parameters are preserved
	opts := append([]client.ClientOpt{client.OptTimeout(0)}, c.opts...)
	opts = append(opts, client.OptEndpoint(ref))
	cl, err := client.New(opts...)
	if err != nil {
		return 0, imagegen.ErrBadParameter.With(err)
	}

	s := &sink{create: create, progress: progress}
	if err := cl.DoWithContext(ctx, client.MethodGet, s, client.OptReqTransport(statusOK)); err != nil {
		if s.err != nil {
			return 0, s.err
		}
		if status, ok := statusCode(err); ok {
			return s.written, fmt.Errorf("%w: %w", imagegen.ErrDownloadFailed, &imagegen.RequestError{
				Status:  status,
				Message: err.Error(),
			})
		}
		if s.written > 0 {
			return s.written, fmt.Errorf("%w: %w", imagegen.ErrDownloadFailed, err)
		}
		return s.written, fmt.Errorf("%w: %w", imagegen.ErrTransport, err)
	}
	return s.written, nil
}

// statusOK rejects successful responses other than 200 before the body
// reaches the sink, so partial or empty replies never create a file
func statusOK(next http.RoundTripper) http.RoundTripper {
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		resp, err := next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			resp.Body.Close()
			return nil, httpresponse.Err(resp.StatusCode).With(resp.Status)
		}
		return resp, nil
	})
}

// statusCode returns the HTTP status carried by err, if any
func statusCode(err error) (int, bool) {
	var httpErr httpresponse.Err
	if errors.As(err, &httpErr) {
		return int(httpErr), true
	}
	var errResponse httpresponse.ErrResponse
	if errors.As(err, &errResponse) {
		return errResponse.Code, true
	}
	return 0, false
}

func write(data []byte, mimetype string, create imagegen.CreateFn, progress imagegen.ProgressFn) (int64, error) {
	w, err := create(mimetype)
	if err != nil {
		return 0, err
	}
	n, err := copyWithProgress(w, bytes.NewReader(data), progress)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	return n, err
}

// copyWithProgress copies r to w in chunks, reporting the cumulative count
func copyWithProgress(w io.Writer, r io.Reader, progress imagegen.ProgressFn) (int64, error) {
	var total int64
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			m, werr := w.Write(buf[:n])
			total += int64(m)
			if werr != nil {
				return total, werr
			}
			if progress != nil {
				progress(total)
			}
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		} else if err != nil {
			return total, err
		}
	}
}

func isURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
