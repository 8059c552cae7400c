package schema

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// GenerateResponse is the decoded response body. Every field is optional:
// the candidate list may be empty and parts may lack text or image data.
type GenerateResponse struct {
	Candidates     []*Candidate    `json:"candidates,omitempty"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *UsageMetadata  `json:"usageMetadata,omitempty"`
	ModelVersion   string          `json:"modelVersion,omitempty"`
	ResponseID     string          `json:"responseId,omitempty"`
}

// Candidate is one alternative generation result
type Candidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
	Index        int      `json:"index,omitempty"`
}

// PromptFeedback reports whether the prompt was blocked
type PromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// UsageMetadata reports token counts for the request
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount,omitempty"`
	CandidatesTokenCount int `json:"candidatesTokenCount,omitempty"`
	TotalTokenCount      int `json:"totalTokenCount,omitempty"`
}

// GenerateResult is the outcome of the request phase. Raw always holds the
// body exactly as received; Response is nil when the body was not valid JSON.
type GenerateResult struct {
	Status      int
	Raw         []byte
	Response    *GenerateResponse
	APIDuration time.Duration
}

// Extraction is what the parser pulls out of a response
type Extraction struct {
	// Text is the concatenation of all text parts, in order
	Text string

	// Image is the first inline image found, or nil
	Image *InlineData
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Extract scans the first candidate's parts in order, accumulating text and
// capturing the first inline image. Later images and candidates are ignored.
func (r *GenerateResponse) Extract() Extraction {
	var result Extraction
	if r == nil || len(r.Candidates) == 0 {
		return result
	}
	candidate := r.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return result
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			text.WriteString(part.Text)
		}
		if part.InlineData != nil && part.InlineData.Data != "" && result.Image == nil {
			result.Image = part.InlineData
		}
	}
	result.Text = text.String()
	return result
}

// Reason returns why the response carries no content, if the server said so
func (r *GenerateResponse) Reason() string {
	if r == nil {
		return ""
	}
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return r.PromptFeedback.BlockReason
	}
	if len(r.Candidates) > 0 && r.Candidates[0] != nil {
		return r.Candidates[0].FinishReason
	}
	return ""
}

// Indent returns the raw body pretty-printed with a two-space indent. The raw
// bytes are used rather than the decoded response so that fields which are
// not modelled survive.
func (r *GenerateResult) Indent() ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(r.Raw), "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
