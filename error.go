package imagegen

import (
	"fmt"
)

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ErrSuccess Err = iota
	ErrBadParameter
	ErrMissingConfiguration
	ErrRequestFailed
	ErrTransport
	ErrParse
	ErrNoImage
	ErrDownloadFailed
	ErrInternalServerError
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Errors
type Err int

// RequestError is returned when the remote server answers with a status
// outside the accepted range. Message holds the error body as reported by
// the transport.
type RequestError struct {
	Status  int
	Message string
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (e Err) Error() string {
	switch e {
	case ErrSuccess:
		return "success"
	case ErrBadParameter:
		return "bad parameter"
	case ErrMissingConfiguration:
		return "missing configuration"
	case ErrRequestFailed:
		return "request failed"
	case ErrTransport:
		return "transport error"
	case ErrParse:
		return "failed to parse response"
	case ErrNoImage:
		return "no image data found"
	case ErrDownloadFailed:
		return "download failed"
	case ErrInternalServerError:
		return "internal server error"
	}
	return fmt.Sprintf("error code %d", int(e))
}

func (e Err) With(args ...interface{}) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprint(args...))
}

func (e Err) Withf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprintf(format, args...))
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status code %d", e.Status)
	}
	return fmt.Sprintf("status code %d: %s", e.Status, e.Message)
}
