// Package perr defines the error taxonomy from spec §7 and a small
// aggregation helper for independent failures (e.g. several tiles
// failing to rasterize within one frame) built on go.uber.org/multierr,
// the aggregation library already in the corpus (rupor-github-fb2cng).
package perr

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Kind tags which §7 error category a Error belongs to.
type Kind int

const (
	KindUnknown Kind = iota
	// DocumentInvalid: no root, malformed JSON. Fatal at bootstrap.
	KindDocumentInvalid
	// MediaFetchFailed: network/file fetch for a media src failed.
	KindMediaFetchFailed
	// MediaDecodeFailed: fetched bytes could not be decoded as an image or SVG.
	KindMediaDecodeFailed
	// LayoutMeasurementFailed: the text backend returned an error measuring text.
	KindLayoutMeasurementFailed
	// RasterBackendError: the rasterizer's backend refused to draw.
	KindRasterBackendError
	// MissingTexture: the compositor looked up a TextureId that isn't in the store.
	KindMissingTexture
	// StyleValueMalformed: a style value is unusable at this stage (e.g. em units for font-size).
	KindStyleValueMalformed
)

func (k Kind) String() string {
	switch k {
	case KindDocumentInvalid:
		return "DocumentInvalid"
	case KindMediaFetchFailed:
		return "MediaFetchFailed"
	case KindMediaDecodeFailed:
		return "MediaDecodeFailed"
	case KindLayoutMeasurementFailed:
		return "LayoutMeasurementFailed"
	case KindRasterBackendError:
		return "RasterBackendError"
	case KindMissingTexture:
		return "MissingTexture"
	case KindStyleValueMalformed:
		return "StyleValueMalformed"
	default:
		return "Unknown"
	}
}

// Error is a typed, wrappable error carrying a §7 Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an Error of the given kind wrapping err.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err is (or wraps) a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Collector aggregates independent failures — e.g. several tiles in one
// frame each hitting RasterBackendError — without letting the first one
// stop the others from being attempted.
type Collector struct {
	err error
}

func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	c.err = multierr.Append(c.err, err)
}

func (c *Collector) Err() error {
	return c.err
}

// Errors returns the individual errors that were appended.
func (c *Collector) Errors() []error {
	return multierr.Errors(c.err)
}
