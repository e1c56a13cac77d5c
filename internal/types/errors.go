package types

import "errors"

var (
	// ErrInvalidURL is returned when the input does not parse as a URL
	ErrInvalidURL = errors.New("invalid URL")

	// ErrUnsupportedDomain is returned when no adapter is registered for the domain
	ErrUnsupportedDomain = errors.New("unsupported domain")

	// ErrTransientNavigation marks a navigation that failed with a connection reset
	ErrTransientNavigation = errors.New("transient navigation failure")

	// ErrExtractionFailed is returned for any other failure while rendering or extracting
	ErrExtractionFailed = errors.New("extraction failed")
)
