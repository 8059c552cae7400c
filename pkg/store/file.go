package store

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	// Packages
	imagegen "github.com/dragon84867/qwen-code-examples"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	jsonExt              = ".json"
	textExt              = ".txt"
	pngExt               = ".png"
	DirPerm  os.FileMode = 0o755 // Directory permission for the output directory
	FilePerm os.FileMode = 0o644 // File permission for written artifacts
)

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS - FILE UTILITIES

// ensureDir validates that dir is non-empty and creates it if needed.
func ensureDir(dir string) error {
	if dir == "" {
		return imagegen.ErrBadParameter.With("directory is required")
	}
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return imagegen.ErrInternalServerError.Withf("mkdir: %v", err)
	}
	return nil
}

// writeJSON serialises v to a JSON file at the given path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return imagegen.ErrInternalServerError.Withf("marshal: %v", err)
	}
	return writeFile(path, data)
}

// writeFile writes data verbatim to the given path.
func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, FilePerm); err != nil {
		return imagegen.ErrInternalServerError.Withf("write: %v", err)
	}
	return nil
}

// createFile opens path for writing, truncating an existing file.
func createFile(path string) (io.WriteCloser, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FilePerm)
	if err != nil {
		return nil, imagegen.ErrInternalServerError.Withf("create: %v", err)
	}
	return f, nil
}

// filePath returns the path for a prefixed, timestamped name in dir.
func filePath(dir, prefix, token, ext string) string {
	return filepath.Join(dir, prefix+token+ext)
}
