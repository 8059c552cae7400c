package schema

///////////////////////////////////////////////////////////////////////////////
// TYPES - DashScope native-protocol wire format
//
// DashScope forwards the body to the upstream Gemini API when
// dashscope_extend_params.using_native_protocol is set, so contents and
// generationConfig follow the Gemini REST shape.
//
// Reference: https://ai.google.dev/api/generate-content

// GenerateRequest is the request body for
// POST /compatible-mode/v1/chat/completions
type GenerateRequest struct {
	Model             string           `json:"model"`
	ExtendParams      *ExtendParams    `json:"dashscope_extend_params,omitempty"`
	Stream            bool             `json:"stream"`
	SystemInstruction *Content         `json:"systemInstruction,omitempty"`
	Contents          []*Content       `json:"contents"`
	GenerationConfig  GenerationConfig `json:"generationConfig"`
}

// ExtendParams are DashScope-specific request flags
type ExtendParams struct {
	UsingNativeProtocol bool `json:"using_native_protocol"`
}

// Content is a single message turn made of ordered parts
type Content struct {
	Parts []*Part `json:"parts"`
	Role  string  `json:"role,omitempty"`
}

// Part is a fragment of a content turn. Exactly one data field is expected
// to be populated, but every field may be absent in a response.
type Part struct {
	Text       string      `json:"text,omitempty"`
	Thought    bool        `json:"thought,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries an image either as a URL or as base64-encoded bytes
type InlineData struct {
	MIMEType string `json:"mimeType,omitempty"`
	Data     string `json:"data"`
}

// GenerationConfig holds the requested output modalities
type GenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultModel  = "gemini-3-pro-image-preview"
	RoleUser      = "user"
	ModalityText  = "text"
	ModalityImage = "image"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewGenerateRequest returns a non-streaming request with the prompt as the
// sole user-turn text part. When no modalities are given, both text and
// image output are requested.
func NewGenerateRequest(model, prompt string, modalities ...string) *GenerateRequest {
	if model == "" {
		model = DefaultModel
	}
	if len(modalities) == 0 {
		modalities = []string{ModalityText, ModalityImage}
	}
	return &GenerateRequest{
		Model:        model,
		ExtendParams: &ExtendParams{UsingNativeProtocol: true},
		Stream:       false,
		Contents: []*Content{
			NewTextContent(RoleUser, prompt),
		},
		GenerationConfig: GenerationConfig{
			ResponseModalities: modalities,
		},
	}
}

// NewTextContent returns a content turn holding a single text part
func NewTextContent(role, text string) *Content {
	return &Content{
		Parts: []*Part{{Text: text}},
		Role:  role,
	}
}
