package main

import (
	"context"
	"errors"
)

var (
	ErrUndecodableImage  = errors.New("input is not a decodable image")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrImageTooLarge     = errors.New("image too large")
	ErrRemovalFailed     = errors.New("background removal failed")
	ErrRemovalTimeout    = errors.New("background removal timed out")
	ErrDownloadFailed    = errors.New("failed to download file")
)

// errorKind maps an error to a short label used in metrics and stored records.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUndecodableImage):
		return "undecodable"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported"
	case errors.Is(err, ErrImageTooLarge):
		return "too_large"
	case errors.Is(err, ErrRemovalTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrRemovalFailed):
		return "removal"
	case errors.Is(err, ErrDownloadFailed):
		return "download"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}
