package schema

import (
	"fmt"
	"time"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// DownloadResult describes one successful image download
type DownloadResult struct {
	ID               string
	Model            string
	Filename         string
	Bytes            int64
	MIMEType         string
	APIDuration      time.Duration
	DownloadDuration time.Duration
	TotalDuration    time.Duration
	Prompt           string
	ImageRef         string
	Timestamp        time.Time
}

// Metadata is the record written alongside each saved image
type Metadata struct {
	ID        string  `json:"id,omitempty"`
	Prompt    string  `json:"prompt"`
	ImageURL  string  `json:"imageUrl"`
	Filename  string  `json:"filename"`
	Timestamp string  `json:"timestamp"`
	FileSize  int64   `json:"fileSize"`
	Model     string  `json:"model,omitempty"`
	Timings   Timings `json:"timings"`
}

// Timings are rendered as seconds with two decimals, eg "12.34s"
type Timings struct {
	APIResponse string `json:"apiResponse"`
	Download    string `json:"download"`
	Total       string `json:"total"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// ISO-8601 with millisecond precision in UTC
	isoFormat = "2006-01-02T15:04:05.000Z07:00"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Metadata returns the record to be written for this download
func (r *DownloadResult) Metadata() *Metadata {
	return &Metadata{
		ID:        r.ID,
		Prompt:    r.Prompt,
		ImageURL:  r.ImageRef,
		Filename:  r.Filename,
		Timestamp: r.Timestamp.UTC().Format(isoFormat),
		FileSize:  r.Bytes,
		Model:     r.Model,
		Timings: Timings{
			APIResponse: Seconds(r.APIDuration),
			Download:    Seconds(r.DownloadDuration),
			Total:       Seconds(r.TotalDuration),
		},
	}
}

func (m Metadata) String() string {
	return types.Stringify(m)
}

// Seconds formats a duration as seconds with two decimals and an "s" suffix
func Seconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// Megabytes formats a byte count as megabytes with two decimals
func Megabytes(n int64) string {
	return fmt.Sprintf("%.2f MB", float64(n)/1024/1024)
}
