package provider

import (
	"context"
	"errors"
	"fmt"
)

// Image represents the wallpaper image chosen for one update cycle.
type Image struct {
	ID          string // Service identifier of the day, used as the filename prefix
	Path        string // URL to download the image
	Attribution string // Copyright line supplied by the service
	Title       string
	Provider    string // Source provider name
}

// ImageProvider defines the interface for an image-of-the-day service.
type ImageProvider interface {
	// Name returns the provider name.
	Name() string
	// FetchImage fetches today's metadata and resolves the download URL.
	FetchImage(ctx context.Context) (Image, error)
}

// Fetcher is the raw transport used by providers and the downloader.
// Fetch returns nil on any transport failure and never panics; when optional is true
// failures are not logged at error level.
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string, optional bool) []byte
}

// ErrMetadataUnavailable marks transport failures and malformed responses.
// Callers treat it as transient and retry soon.
var ErrMetadataUnavailable = errors.New("image metadata unavailable")

// ValidationError reports a user misconfiguration that retrying will not fix.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
