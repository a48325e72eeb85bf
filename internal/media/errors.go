package media

import "fmt"

// DownloadErrorKind categorizes a failed image download.
type DownloadErrorKind string

const (
	// DownloadTimeout indicates the fetch exceeded its deadline.
	DownloadTimeout DownloadErrorKind = "timeout"
	// DownloadTooLarge indicates the payload exceeded the size cap, either
	// by declared Content-Length or while streaming.
	DownloadTooLarge DownloadErrorKind = "too_large"
	// DownloadHTTPStatus indicates a non-200 response.
	DownloadHTTPStatus DownloadErrorKind = "http_status"
	// DownloadNetwork indicates a transport-level failure.
	DownloadNetwork DownloadErrorKind = "network"
)

// DownloadError reports a failed image download. Failure is data here, not
// control flow: the batch layer aggregates these instead of aborting.
type DownloadError struct {
	URL        string
	Kind       DownloadErrorKind
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	switch e.Kind {
	case DownloadHTTPStatus:
		return fmt.Sprintf("download %s: HTTP %d", e.URL, e.StatusCode)
	case DownloadTooLarge:
		return fmt.Sprintf("download %s: payload exceeds size limit", e.URL)
	default:
		if e.Err != nil {
			return fmt.Sprintf("download %s: %s: %v", e.URL, e.Kind, e.Err)
		}
		return fmt.Sprintf("download %s: %s", e.URL, e.Kind)
	}
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ValidationErrorKind categorizes a rejected image payload.
type ValidationErrorKind string

const (
	// ValidationUndecodable indicates the bytes could not be decoded.
	ValidationUndecodable ValidationErrorKind = "undecodable"
	// ValidationUnsupportedFormat indicates a format outside the allow-list.
	ValidationUnsupportedFormat ValidationErrorKind = "unsupported_format"
	// ValidationTooSmall indicates dimensions below the minimum.
	ValidationTooSmall ValidationErrorKind = "dimensions_too_small"
	// ValidationTooLarge indicates dimensions above the maximum.
	ValidationTooLarge ValidationErrorKind = "dimensions_too_large"
)

// ValidationError reports an image that downloaded fine but failed
// normalization constraints.
type ValidationError struct {
	Kind   ValidationErrorKind
	Detail string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("invalid image: %s: %s", e.Kind, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid image: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("invalid image: %s", e.Kind)
}

func (e *ValidationError) Unwrap() error { return e.Err }
