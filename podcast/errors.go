package podcast

import (
	"fmt"
)

// ConfigurationError reports unusable command-line input.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// FetchError reports a network failure or a non-success HTTP status for a page request.
// StatusCode is zero when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports page markup that does not have the expected structure.
type ParseError struct {
	URL    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.URL, e.Reason)
}

// DownloadError reports a failed audio download or file write for one episode.
type DownloadError struct {
	Episode string
	Path    string
	Err     error
}

func (e *DownloadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("download %q to %s: %v", e.Episode, e.Path, e.Err)
	}
	return fmt.Sprintf("download %q: %v", e.Episode, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }
