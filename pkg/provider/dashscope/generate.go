package dashscope

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	// Packages
	imagegen "github.com/dragon84867/qwen-code-examples"
	opt "github.com/dragon84867/qwen-code-examples/pkg/opt"
	schema "github.com/dragon84867/qwen-code-examples/pkg/schema"
	client "github.com/mutablelogic/go-client"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// rawResponse buffers the body exactly as received, so it can be written
// out verbatim when it turns out not to be JSON
type rawResponse struct {
	bytes.Buffer
	progress imagegen.ProgressFn
}

var _ client.Unmarshaler = (*rawResponse)(nil)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return fn(req)
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	chunkSize = 32 * 1024
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Generate sends a single non-streaming generation request for the prompt
// and returns the buffered response. A body which is not valid JSON returns
// the result (with Raw set) together with ErrParse. Valid JSON of any other
// shape decodes to an empty response.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...opt.Opt) (*schema.GenerateResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, imagegen.ErrMissingConfiguration.With("prompt is required")
	}

	// Apply options
	options, err := opt.Apply(opts...)
	if err != nil {
		return nil, imagegen.ErrBadParameter.With(err)
	}

	// Create JSON payload
	payload, err := client.NewJSONRequest(generateRequestFromOpts(prompt, options))
	if err != nil {
		return nil, err
	}

	// Send the request and buffer the response
	start := time.Now()
	response := rawResponse{}
	if fn, ok := options.Get(opt.ProgressKey).(imagegen.ProgressFn); ok {
		response.progress = fn
	}
	statusFn, _ := options.Get(opt.StatusKey).(imagegen.StatusFn)
	status := http.StatusOK
	observe := func(next http.RoundTripper) http.RoundTripper {
		return roundTripFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err == nil {
				status = resp.StatusCode
				if statusFn != nil {
					statusFn(status)
				}
			}
			return resp, err
		})
	}
	if err := c.DoWithContext(ctx, payload, &response, client.OptPath("chat", "completions"), client.OptReqTransport(observe)); err != nil {
		return nil, requestError(err)
	}

	// Decode
	result := &schema.GenerateResult{
		Status:      status,
		Raw:         response.Bytes(),
		APIDuration: time.Since(start),
	}
	if !json.Valid(result.Raw) {
		return result, imagegen.ErrParse.With("response body is not valid JSON")
	}
	var body schema.GenerateResponse
	if err := json.Unmarshal(result.Raw, &body); err != nil {
		// Unexpected shape: nothing can be extracted from it
		body = schema.GenerateResponse{}
	}
	result.Response = &body

	// Return success
	return result, nil
}

///////////////////////////////////////////////////////////////////////////////
// UNMARSHALER

// Unmarshal is only called by go-client for successful responses
func (r *rawResponse) Unmarshal(header http.Header, body io.Reader) error {
	buf := make([]byte, chunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			r.Write(buf[:n])
			if r.progress != nil {
				r.progress(int64(r.Len()))
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// generateRequestFromOpts builds the request body from the prompt and options
func generateRequestFromOpts(prompt string, options *opt.Options) *schema.GenerateRequest {
	request := schema.NewGenerateRequest(
		options.GetString(opt.ModelKey),
		prompt,
		options.GetStringArray(opt.ModalitiesKey)...,
	)
	if system := options.GetString(opt.SystemPromptKey); system != "" {
		request.SystemInstruction = schema.NewTextContent("", system)
	}
	return request
}

// requestError separates status errors from transport failures
func requestError(err error) error {
	if status, ok := statusCode(err); ok {
		return fmt.Errorf("%w: %w", imagegen.ErrRequestFailed, &imagegen.RequestError{
			Status:  status,
			Message: err.Error(),
		})
	}
	return fmt.Errorf("%w: %w", imagegen.ErrTransport, err)
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
