package dashscope

import (
	"fmt"
	"strings"

	// Packages
	imagegen "github.com/dragon84867/qwen-code-examples"
	opt "github.com/dragon84867/qwen-code-examples/pkg/opt"
	schema "github.com/dragon84867/qwen-code-examples/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// GENERATION OPTIONS

// WithModel sets the model used for generation
func WithModel(name string) opt.Opt {
	if name = strings.TrimSpace(name); name == "" {
		return opt.Error(fmt.Errorf("model name is required"))
	}
	return opt.SetString(opt.ModelKey, name)
}

// WithModalities sets the requested output modalities, "text" and/or "image"
func WithModalities(values ...string) opt.Opt {
	if len(values) == 0 {
		return opt.Error(fmt.Errorf("at least one modality is required"))
	}
	for _, value := range values {
		switch value {
		case schema.ModalityText, schema.ModalityImage:
		default:
			return opt.Error(fmt.Errorf("unsupported modality %q", value))
		}
	}
	return opt.AddString(opt.ModalitiesKey, values...)
}

// WithSystemPrompt sets the system instruction for the request
func WithSystemPrompt(value string) opt.Opt {
	return opt.SetString(opt.SystemPromptKey, value)
}

// WithProgress sets a callback which receives the cumulative number of
// response bytes each time a chunk arrives
func WithProgress(fn imagegen.ProgressFn) opt.Opt {
	return opt.SetAny(opt.ProgressKey, fn)
}

// WithStatus sets a callback which receives the response status code once
// the headers have arrived, including for failed requests
func WithStatus(fn imagegen.StatusFn) opt.Opt {
	return opt.SetAny(opt.StatusKey, fn)
}
