package generate_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	// Packages
	imagegen "github.com/dragon84867/qwen-code-examples"
	generate "github.com/dragon84867/qwen-code-examples/pkg/generate"
	dashscope "github.com/dragon84867/qwen-code-examples/pkg/provider/dashscope"
	schema "github.com/dragon84867/qwen-code-examples/pkg/schema"
	store "github.com/dragon84867/qwen-code-examples/pkg/store"
	ui "github.com/dragon84867/qwen-code-examples/pkg/ui"
	client "github.com/mutablelogic/go-client"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

///////////////////////////////////////////////////////////////////////////////
// TEST SET-UP

const prompt = "a red fox in the snow"

var (
	imageData = bytes.Repeat([]byte("0123456789abcdef"), 4096) // 64KiB
	epoch     = time.Date(2025, 1, 16, 3, 0, 0, 0, time.UTC)
)

// fakeHosts stands in for DashScope and the image host
type fakeHosts struct {
	sync.Mutex
	api       *httptest.Server
	images    *httptest.Server
	status    int
	body      string
	apiCalls  int
	imagePath []string
}

func newFakeHosts(t *testing.T) *fakeHosts {
	t.Helper()
	h := &fakeHosts{status: http.StatusOK}
	h.api = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Lock()
		defer h.Unlock()
		h.apiCalls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(h.status)
		_, _ = w.Write([]byte(h.body))
	}))
	h.images = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Lock()
		defer h.Unlock()
		h.imagePath = append(h.imagePath, r.URL.Path)
		switch r.URL.Path {
		case "/missing.png":
			http.NotFound(w, r)
			return
		case "/empty.png":
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(imageData)
	}))
	t.Cleanup(h.api.Close)
	t.Cleanup(h.images.Close)
	return h
}

func (h *fakeHosts) respond(status int, body string) {
	h.Lock()
	defer h.Unlock()
	h.status, h.body = status, body
}

func (h *fakeHosts) imageResponse(paths ...string) string {
	parts := []string{`{"text":"Here is your image"}`}
	for _, path := range paths {
		parts = append(parts, fmt.Sprintf(`{"inlineData":{"mimeType":"image/png","data":%q}}`, h.images.URL+path))
	}
	return `{"candidates":[{"content":{"role":"model","parts":[` + strings.Join(parts, ",") + `]},"finishReason":"STOP"}],"responseId":"abc"}`
}

func (h *fakeHosts) calls() (int, []string) {
	h.Lock()
	defer h.Unlock()
	return h.apiCalls, append([]string(nil), h.imagePath...)
}

// recorder captures everything reported
type recorder struct {
	events   []string
	info     []string
	warn     []string
	errors   []string
	markdown []string
	ticks    int
	progress []int64
	done     ui.Files
}

func (r *recorder) Info(format string, args ...any) {
	r.info = append(r.info, fmt.Sprintf(format, args...))
	r.events = append(r.events, fmt.Sprintf(format, args...))
}
func (r *recorder) Warn(format string, args ...any)  { r.warn = append(r.warn, fmt.Sprintf(format, args...)) }
func (r *recorder) Error(format string, args ...any) { r.errors = append(r.errors, fmt.Sprintf(format, args...)) }
func (r *recorder) Tick() {
	r.ticks++
	r.events = append(r.events, ".")
}
func (r *recorder) Progress(n int64)                 { r.progress = append(r.progress, n) }
func (r *recorder) Markdown(text string)             { r.markdown = append(r.markdown, text) }
func (r *recorder) Done(files ui.Files)              { r.done = files }

// clock is a settable wall clock
type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

type fixture struct {
	hosts    *fakeHosts
	runner   *generate.Runner
	reporter *recorder
	clock    *clock
	dir      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		hosts:    newFakeHosts(t),
		reporter: &recorder{},
		clock:    &clock{now: epoch},
		dir:      t.TempDir(),
	}
	generator, err := dashscope.New("sk-test", client.OptEndpoint(f.hosts.api.URL))
	require.NoError(t, err)
	s, err := store.New(f.dir)
	require.NoError(t, err)
	f.runner, err = generate.New(
		generate.WithGenerator(generator),
		generate.WithStore(s),
		generate.WithReporter(f.reporter),
		generate.WithClock(f.clock.Now),
	)
	require.NoError(t, err)
	return f
}

func (f *fixture) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

func (f *fixture) read(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	require.NoError(t, err)
	return data
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_runner_001(t *testing.T) {
	// A generator is required
	assert := assert.New(t)
	_, err := generate.New()
	assert.ErrorIs(err, imagegen.ErrMissingConfiguration)
	_, err = generate.New(generate.WithGenerator(nil))
	assert.ErrorIs(err, imagegen.ErrBadParameter)
}

func Test_runner_002(t *testing.T) {
	// A missing prompt never reaches the network
	assert := assert.New(t)
	f := newFixture(t)
	f.hosts.respond(http.StatusOK, f.hosts.imageResponse("/a.png"))

	result, err := f.runner.Run(context.Background(), "  ")
	assert.ErrorIs(err, imagegen.ErrMissingConfiguration)
	assert.Nil(result)
	apiCalls, imageCalls := f.hosts.calls()
	assert.Zero(apiCalls)
	assert.Empty(imageCalls)
	assert.Empty(f.files(t))
}

func Test_runner_003(t *testing.T) {
	// Text is printed and only the first image is downloaded and saved
	assert := assert.New(t)
	f := newFixture(t)
	f.hosts.respond(http.StatusOK, f.hosts.imageResponse("/a.png", "/b.png"))

	result, err := f.runner.Run(context.Background(), prompt)
	require.NoError(t, err)
	assert.Equal(generate.StateSaved, result.State)
	assert.Equal("Here is your image", result.Text)
	assert.Equal(f.hosts.images.URL+"/a.png", result.ImageRef)
	assert.Equal([]string{"Here is your image"}, f.reporter.markdown)
	assert.GreaterOrEqual(f.reporter.ticks, 1)
	assert.Empty(f.reporter.errors)

	apiCalls, imageCalls := f.hosts.calls()
	assert.Equal(1, apiCalls)
	assert.Equal([]string{"/a.png"}, imageCalls)

	// Three files share one token
	token := schema.FileTimestamp(epoch)
	assert.Equal([]string{
		"image_" + token + ".png",
		"metadata_" + token + ".json",
		"response_" + token + ".json",
	}, f.files(t))
	assert.Len(f.reporter.done, 3)
}

func Test_runner_004(t *testing.T) {
	// The image file and metadata agree on the byte count and prompt
	assert := assert.New(t)
	f := newFixture(t)
	f.hosts.respond(http.StatusOK, f.hosts.imageResponse("/a.png"))

	result, err := f.runner.Run(context.Background(), prompt, dashscope.WithModel("custom-model"))
	require.NoError(t, err)
	token := schema.FileTimestamp(epoch)

	image := f.read(t, "image_"+token+".png")
	assert.Equal(imageData, image)
	if assert.NotEmpty(f.reporter.progress) {
		assert.Equal(int64(len(imageData)), f.reporter.progress[len(f.reporter.progress)-1])
	}

	var metadata schema.Metadata
	require.NoError(t, json.Unmarshal(f.read(t, "metadata_"+token+".json"), &metadata))
	assert.Equal(int64(len(imageData)), metadata.FileSize)
	assert.Equal(prompt, metadata.Prompt)
	assert.Equal(f.hosts.images.URL+"/a.png", metadata.ImageURL)
	assert.Equal("image_"+token+".png", metadata.Filename)
	assert.Equal("2025-01-16T03:00:00.000Z", metadata.Timestamp)
	assert.Equal("custom-model", metadata.Model)
	assert.Equal(result.ID, metadata.ID)
	assert.Equal("0.00s", metadata.Timings.Download)

	// The response is kept in full, including fields which are not modelled
	assert.JSONEq(f.hosts.imageResponse("/a.png"), string(f.read(t, "response_"+token+".json")))
}

func Test_runner_005(t *testing.T) {
	// No image part leaves a debug JSON file and nothing is downloaded
	assert := assert.New(t)
	f := newFixture(t)
	f.hosts.respond(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"I cannot draw that"}]}}],"promptFeedback":{"blockReason":"SAFETY"}}`)

	result, err := f.runner.Run(context.Background(), prompt)
	assert.ErrorIs(err, imagegen.ErrNoImage)
	if assert.NotNil(result) {
		assert.Equal(generate.StateNoImageFound, result.State)
		assert.Equal("SAFETY", result.Reason)
		assert.Equal("I cannot draw that", result.Text)
	}
	_, imageCalls := f.hosts.calls()
	assert.Empty(imageCalls)

	name := fmt.Sprintf("debug_response_%d.json", epoch.UnixMilli())
	assert.Equal([]string{name}, f.files(t))
	assert.JSONEq(`{"candidates":[{"content":{"parts":[{"text":"I cannot draw that"}]}}],"promptFeedback":{"blockReason":"SAFETY"}}`, string(f.read(t, name)))
	if assert.Len(f.reporter.warn, 1) {
		assert.Contains(f.reporter.warn[0], "SAFETY")
	}
}

func Test_runner_006(t *testing.T) {
	// A body which is not JSON is saved verbatim as a text debug file
	assert := assert.New(t)
	f := newFixture(t)
	raw := "<html><body>502 Bad Gateway</body></html>\n"
	f.hosts.respond(http.StatusOK, raw)

	result, err := f.runner.Run(context.Background(), prompt)
	assert.ErrorIs(err, imagegen.ErrParse)
	if assert.NotNil(result) {
		assert.Equal(generate.StateParseFailed, result.State)
	}
	name := fmt.Sprintf("debug_response_%d.txt", epoch.UnixMilli())
	assert.Equal([]string{name}, f.files(t))
	assert.Equal(raw, string(f.read(t, name)))
	_, imageCalls := f.hosts.calls()
	assert.Empty(imageCalls)
}

func Test_runner_007(t *testing.T) {
	// A failed request is reported and writes nothing
	assert := assert.New(t)
	f := newFixture(t)
	f.hosts.respond(http.StatusInternalServerError, `{"code":"InternalError","message":"boom"}`)

	result, err := f.runner.Run(context.Background(), prompt)
	assert.ErrorIs(err, imagegen.ErrRequestFailed)
	if assert.NotNil(result) {
		assert.Equal(generate.StateFailed, result.State)
		assert.Nil(result.Response)
	}
	assert.Empty(f.files(t))
	if assert.NotEmpty(f.reporter.errors) {
		assert.Equal("Request failed, status code: 500", f.reporter.errors[0])
	}
	assert.Contains(f.reporter.info, "Response Status: 500")
}

func Test_runner_008(t *testing.T) {
	// A download which is not accepted leaves no image file
	assert := assert.New(t)
	f := newFixture(t)
	f.hosts.respond(http.StatusOK, f.hosts.imageResponse("/missing.png"))

	result, err := f.runner.Run(context.Background(), prompt)
	assert.ErrorIs(err, imagegen.ErrDownloadFailed)
	if assert.NotNil(result) {
		assert.Equal(generate.StateDownloadFailed, result.State)
		assert.Nil(result.Download)
	}
	assert.Empty(f.files(t))
	assert.Equal([]string{"Download failed, status code: 404"}, f.reporter.errors)
	assert.Nil(f.reporter.done)
}

func Test_runner_009(t *testing.T) {
	// Runs more than one second apart do not collide
	assert := assert.New(t)
	f := newFixture(t)
	f.hosts.respond(http.StatusOK, f.hosts.imageResponse("/a.png"))

	_, err := f.runner.Run(context.Background(), prompt)
	require.NoError(t, err)
	f.clock.now = epoch.Add(1500 * time.Millisecond)
	_, err = f.runner.Run(context.Background(), prompt)
	require.NoError(t, err)

	first, second := schema.FileTimestamp(epoch), schema.FileTimestamp(f.clock.now)
	assert.NotEqual(first, second)
	assert.Equal([]string{
		"image_" + first + ".png",
		"image_" + second + ".png",
		"metadata_" + first + ".json",
		"metadata_" + second + ".json",
		"response_" + first + ".json",
		"response_" + second + ".json",
	}, f.files(t))
}

func Test_runner_010(t *testing.T) {
	// Inline base64 image data is decoded without a download
	assert := assert.New(t)
	f := newFixture(t)
	f.hosts.respond(http.StatusOK, `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"`+base64.StdEncoding.EncodeToString(imageData)+`"}}]}}]}`)

	result, err := f.runner.Run(context.Background(), prompt)
	require.NoError(t, err)
	assert.Equal(generate.StateSaved, result.State)
	_, imageCalls := f.hosts.calls()
	assert.Empty(imageCalls)

	token := schema.FileTimestamp(epoch)
	assert.Equal(imageData, f.read(t, "image_"+token+".png"))
	var metadata schema.Metadata
	require.NoError(t, json.Unmarshal(f.read(t, "metadata_"+token+".json"), &metadata))
	assert.Equal(int64(len(imageData)), metadata.FileSize)
	assert.Equal(base64.StdEncoding.EncodeToString(imageData), metadata.ImageURL)
}

func Test_runner_011(t *testing.T) {
	// States have names and only outcomes are terminal
	assert := assert.New(t)
	assert.Equal("saved", generate.StateSaved.String())
	assert.Equal("no_image_found", generate.StateNoImageFound.String())
	assert.True(generate.StateDownloadFailed.Terminal())
	assert.False(generate.StateDownloading.Terminal())
	assert.False(generate.StateStart.Terminal())
}

func Test_runner_012(t *testing.T) {
	// Valid JSON of an unexpected shape ends without an image and keeps a JSON debug file
	assert := assert.New(t)
	for i, body := range []string{`[]`, `"hello"`, `{"candidates":"oops"}`, `{"candidates":[{"content":{"parts":[{"text":5}]}}]}`} {
		f := newFixture(t)
		f.hosts.respond(http.StatusOK, body)

		result, err := f.runner.Run(context.Background(), prompt)
		assert.ErrorIs(err, imagegen.ErrNoImage, body)
		if assert.NotNil(result, body) {
			assert.Equal(generate.StateNoImageFound, result.State, body)
		}
		name := fmt.Sprintf("debug_response_%d.json", epoch.UnixMilli())
		assert.Equal([]string{name}, f.files(t), i)
		assert.JSONEq(body, string(f.read(t, name)), body)
		_, imageCalls := f.hosts.calls()
		assert.Empty(imageCalls, body)
	}
}

func Test_runner_013(t *testing.T) {
	// The status is reported as soon as the response arrives, before the body
	assert := assert.New(t)
	f := newFixture(t)
	f.hosts.respond(http.StatusOK, f.hosts.imageResponse("/a.png"))

	_, err := f.runner.Run(context.Background(), prompt)
	require.NoError(t, err)

	status := -1
	for i, event := range f.reporter.events {
		if event == "Response Status: 200" {
			status = i
			break
		}
	}
	if assert.GreaterOrEqual(status, 0) {
		assert.Equal(".", f.reporter.events[status+1])
	}
	for _, event := range f.reporter.events[:max(status, 0)] {
		assert.NotEqual(".", event)
	}
}

func Test_runner_014(t *testing.T) {
	// A successful download status other than 200 leaves no image file
	assert := assert.New(t)
	f := newFixture(t)
	f.hosts.respond(http.StatusOK, f.hosts.imageResponse("/empty.png"))

	result, err := f.runner.Run(context.Background(), prompt)
	assert.ErrorIs(err, imagegen.ErrDownloadFailed)
	if assert.NotNil(result) {
		assert.Equal(generate.StateDownloadFailed, result.State)
	}
	assert.Empty(f.files(t))
	assert.Equal([]string{"Download failed, status code: 204"}, f.reporter.errors)
}
