/*
store writes the artifacts of a generation run into an output directory:
the image, the pretty-printed response, the metadata record and, when
something went wrong, a debug copy of the response.
*/
package store

import (
	"io"
	"time"

	// Packages
	imagegen "github.com/dragon84867/qwen-code-examples"
	schema "github.com/dragon84867/qwen-code-examples/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Store struct {
	dir string
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ImagePrefix    = "image_"
	ResponsePrefix = "response_"
	MetadataPrefix = "metadata_"
	DebugPrefix    = "debug_response_"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a store which writes into dir, creating it when needed. An
// empty dir means the current working directory.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Dir returns the output directory
func (s *Store) Dir() string {
	return s.dir
}

// ImagePath returns the path of the image for the timestamp token
func (s *Store) ImagePath(token string) string {
	return filePath(s.dir, ImagePrefix, token, pngExt)
}

// ResponsePath returns the path of the response for the timestamp token
func (s *Store) ResponsePath(token string) string {
	return filePath(s.dir, ResponsePrefix, token, jsonExt)
}

// MetadataPath returns the path of the metadata record for the timestamp token
func (s *Store) MetadataPath(token string) string {
	return filePath(s.dir, MetadataPrefix, token, jsonExt)
}

// CreateImage returns a function which creates the image file for the
// timestamp token. Nothing is written to disk until it is called.
func (s *Store) CreateImage(token string) imagegen.CreateFn {
	return func(string) (io.WriteCloser, error) {
		return createFile(s.ImagePath(token))
	}
}

// WriteResponse writes the response body pretty-printed with a two-space
// indent and returns the path written
func (s *Store) WriteResponse(token string, result *schema.GenerateResult) (string, error) {
	if result == nil {
		return "", imagegen.ErrBadParameter.With("missing response")
	}
	data, err := result.Indent()
	if err != nil {
		return "", imagegen.ErrParse.With(err)
	}
	path := s.ResponsePath(token)
	return path, writeFile(path, data)
}

// WriteMetadata writes the metadata record and returns the path written
func (s *Store) WriteMetadata(token string, metadata *schema.Metadata) (string, error) {
	if metadata == nil {
		return "", imagegen.ErrBadParameter.With("missing metadata")
	}
	path := s.MetadataPath(token)
	return path, writeJSON(path, metadata)
}

// WriteDebug saves the response for inspection, named after the epoch
// milliseconds of t. A decoded response is pretty-printed into a .json
// file, anything else is written verbatim into a .txt file.
func (s *Store) WriteDebug(t time.Time, result *schema.GenerateResult) (string, error) {
	if result == nil {
		return "", imagegen.ErrBadParameter.With("missing response")
	}
	token := schema.EpochMillis(t)
	if result.Response != nil {
		if data, err := result.Indent(); err == nil {
			path := filePath(s.dir, DebugPrefix, token, jsonExt)
			return path, writeFile(path, data)
		}
	}
	path := filePath(s.dir, DebugPrefix, token, textExt)
	return path, writeFile(path, result.Raw)
}
