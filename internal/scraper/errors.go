package scraper

import "fmt"

// StatusError is returned when a video page responds with a non-200 status.
type StatusError struct {
	VideoID int
	Code    int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("video %d returned status %d", e.VideoID, e.Code)
}

// Is allows for error checking with errors.Is().
func (e *StatusError) Is(target error) bool {
	_, ok := target.(*StatusError)
	return ok
}

// PageTooShortError is returned when a response body is below the configured
// minimum length, a proxy for the page not being fully rendered.
type PageTooShortError struct {
	VideoID int
	Length  int
	Min     int
}

// Error implements the error interface.
func (e *PageTooShortError) Error() string {
	return fmt.Sprintf("video %d page too short: %d chars, need at least %d", e.VideoID, e.Length, e.Min)
}

// Is allows for error checking with errors.Is().
func (e *PageTooShortError) Is(target error) bool {
	_, ok := target.(*PageTooShortError)
	return ok
}

// MediaURLNotFoundError is returned when no configured pattern matches the
// page body.
type MediaURLNotFoundError struct {
	VideoID int
}

// Error implements the error interface.
func (e *MediaURLNotFoundError) Error() string {
	return fmt.Sprintf("no media URL found for video %d", e.VideoID)
}

// Is allows for error checking with errors.Is().
func (e *MediaURLNotFoundError) Is(target error) bool {
	_, ok := target.(*MediaURLNotFoundError)
	return ok
}
