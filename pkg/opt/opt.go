package opt

import (
	"net/url"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// A generic option type, which can set options on a generation request
type Opt func(*Options) error

// Options is the set of applied options. Scalar values are kept as strings,
// anything else (callbacks and the like) is kept as-is.
type Options struct {
	url.Values
	extra map[string]any
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ModelKey        = "model"
	ModalitiesKey   = "modalities"
	SystemPromptKey = "system"
	ProgressKey     = "progress"
	StatusKey       = "status"
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Apply returns a structure of applied options
func Apply(o ...Opt) (*Options, error) {
	opts := &Options{Values: make(url.Values), extra: make(map[string]any)}
	for _, opt := range o {
		if opt == nil {
			continue
		}
		if err := opt(opts); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// GetString returns the trimmed value for key, or empty string if not set
func (o *Options) GetString(key string) string {
	if values, ok := o.Values[key]; ok && len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

// GetStringArray returns all values for key, each trimmed
func (o *Options) GetStringArray(key string) []string {
	values, ok := o.Values[key]
	if !ok {
		return nil
	}
	result := make([]string, len(values))
	for i, v := range values {
		result[i] = strings.TrimSpace(v)
	}
	return result
}

// Get returns an arbitrary value for key, or nil
func (o *Options) Get(key string) any {
	return o.extra[key]
}

// Has returns true if the key exists
func (o *Options) Has(key string) bool {
	if _, ok := o.Values[key]; ok {
		return true
	}
	_, ok := o.extra[key]
	return ok
}

////////////////////////////////////////////////////////////////////////////////
// OPTIONS

// Error returns an option that always returns an error
func Error(err error) Opt {
	return func(o *Options) error {
		return err
	}
}

// WithOpts combines multiple options into a single option
func WithOpts(options ...Opt) Opt {
	return func(o *Options) error {
		for _, opt := range options {
			if err := opt(o); err != nil {
				return err
			}
		}
		return nil
	}
}

// SetString replaces any existing values for key
func SetString(key, value string) Opt {
	return func(o *Options) error {
		o.Values.Set(key, value)
		return nil
	}
}

// AddString appends values for key
func AddString(key string, values ...string) Opt {
	return func(o *Options) error {
		for _, v := range values {
			o.Values.Add(key, v)
		}
		return nil
	}
}

// SetAny stores a value which cannot be represented as a string
func SetAny(key string, value any) Opt {
	return func(o *Options) error {
		o.extra[key] = value
		return nil
	}
}
