package schema

import (
	"strconv"
	"time"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// ISO-8601 in UTC with ':' replaced and fractional seconds and zone removed
	fileTimestampFormat = "2006-01-02T15-04-05"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// FileTimestamp returns the token shared by the files written for one
// download, eg "2025-01-02T03-04-05"
func FileTimestamp(t time.Time) string {
	return t.UTC().Format(fileTimestampFormat)
}

// EpochMillis returns the token used for debug files
func EpochMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
