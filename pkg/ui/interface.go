// Package ui defines how a generation run reports to the user.
//
// A [Reporter] receives status lines, the text commentary returned by the
// model, response and download progress, and finally the list of files
// written. The console implementation lives in the console subpackage.
package ui

import (
	"path/filepath"

	// Packages
	schema "github.com/dragon84867/qwen-code-examples/pkg/schema"
	table "github.com/dragon84867/qwen-code-examples/pkg/ui/table"
)

///////////////////////////////////////////////////////////////////////////////
// INTERFACES

type Reporter interface {
	// Info prints a status line on standard output.
	Info(format string, args ...any)

	// Warn prints a warning on standard output.
	Warn(format string, args ...any)

	// Error prints a failure on standard error.
	Error(format string, args ...any)

	// Tick marks the arrival of one chunk of the API response.
	Tick()

	// Progress reports the cumulative number of bytes downloaded so far.
	Progress(bytes int64)

	// Markdown prints the text commentary returned by the model.
	Markdown(text string)

	// Done summarises the files written by a successful run.
	Done(files Files)
}

///////////////////////////////////////////////////////////////////////////////
// TYPES

// File is one artifact written to disk
type File struct {
	Kind  string // "image", "response", "metadata" or "debug"
	Path  string
	Bytes int64
}

// Files renders as a table of written artifacts
type Files []File

var _ table.TableData = Files(nil)

// Discard is a Reporter which prints nothing
var Discard Reporter = discard{}

type discard struct{}

///////////////////////////////////////////////////////////////////////////////
// TABLE DATA

func (f Files) Header() []string {
	return []string{"File", "Kind", "Size"}
}

func (f Files) Len() int {
	return len(f)
}

func (f Files) Row(i int) []any {
	file := f[i]
	size := ""
	if file.Bytes > 0 {
		size = schema.Megabytes(file.Bytes)
	}
	return []any{table.Bold{Value: filepath.Base(file.Path)}, file.Kind, size}
}

///////////////////////////////////////////////////////////////////////////////
// DISCARD

func (discard) Info(string, ...any)  {}
func (discard) Warn(string, ...any)  {}
func (discard) Error(string, ...any) {}
func (discard) Tick()                {}
func (discard) Progress(int64)       {}
func (discard) Markdown(string)      {}
func (discard) Done(Files)           {}
