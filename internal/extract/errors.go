package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned when no adapter matches the document.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrNoExtractableContent is returned when a document yields nothing to work with.
	ErrNoExtractableContent = errors.New("no extractable content")

	// ErrNoSlidesFound is a NoExtractableContent case for slide decks without slide parts.
	ErrNoSlidesFound = fmt.Errorf("%w: no slides found", ErrNoExtractableContent)
)

// PageDecodeError reports a single page that could not be decoded. It never aborts
// the batch unless Config.StrictPages is set.
type PageDecodeError struct {
	Page int
	Err  error
}

func (e *PageDecodeError) Error() string {
	return fmt.Sprintf("decode page %d: %v", e.Page, e.Err)
}

func (e *PageDecodeError) Unwrap() error { return e.Err }
