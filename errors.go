package htmlview

import (
	"errors"
	"fmt"
)

// Controller errors.
var (
	// ErrNotReady is returned by Present before the controller is Ready.
	ErrNotReady = errors.New("htmlview: controller is not ready")

	// ErrNoGeometry is returned by Present before the first Resize.
	ErrNoGeometry = errors.New("htmlview: no surface geometry")

	// ErrInvalidDimensions is returned for non-positive surface sizes.
	ErrInvalidDimensions = errors.New("htmlview: invalid surface dimensions")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("htmlview: controller is closed")

	// ErrInvalidState is returned when a lifecycle step is called out of order.
	ErrInvalidState = errors.New("htmlview: invalid controller state")

	// ErrDocumentExists is returned when a second document is created on
	// the same engine handle.
	ErrDocumentExists = errors.New("htmlview: document already created")

	// ErrAlreadyBootstrapped is returned when a Bootstrapper is used twice.
	ErrAlreadyBootstrapped = errors.New("htmlview: engine already bootstrapped")

	// ErrBootstrapAborted is returned when a stage is used after an earlier
	// step failed.
	ErrBootstrapAborted = errors.New("htmlview: bootstrap aborted")
)

// BootstrapErrorKind classifies a BootstrapError.
type BootstrapErrorKind int

const (
	// FontConfigInvalid means the font configuration was empty or rejected.
	FontConfigInvalid BootstrapErrorKind = iota + 1

	// FontDirUnavailable means the font directory is missing or rejected.
	FontDirUnavailable

	// StylesheetInvalid means the master stylesheet was empty or rejected.
	StylesheetInvalid
)

func (k BootstrapErrorKind) String() string {
	switch k {
	case FontConfigInvalid:
		return "font config invalid"
	case FontDirUnavailable:
		return "font directory unavailable"
	case StylesheetInvalid:
		return "stylesheet invalid"
	default:
		return fmt.Sprintf("BootstrapErrorKind(%d)", int(k))
	}
}

// BootstrapError reports a failed engine configuration step.
type BootstrapError struct {
	Kind BootstrapErrorKind
	Err  error
}

func (e *BootstrapError) Error() string {
	if e.Err != nil {
		return "htmlview: bootstrap: " + e.Kind.String() + ": " + e.Err.Error()
	}
	return "htmlview: bootstrap: " + e.Kind.String()
}

func (e *BootstrapError) Unwrap() error { return e.Err }

// DocumentErrorKind classifies a DocumentError.
type DocumentErrorKind int

const (
	// EmptySource means the markup was empty or whitespace-only.
	EmptySource DocumentErrorKind = iota + 1

	// InvalidEncoding means the markup was not valid UTF-8.
	InvalidEncoding
)

func (k DocumentErrorKind) String() string {
	switch k {
	case EmptySource:
		return "empty source"
	case InvalidEncoding:
		return "invalid encoding"
	default:
		return fmt.Sprintf("DocumentErrorKind(%d)", int(k))
	}
}

// DocumentError reports a document that could not be created.
type DocumentError struct {
	Kind DocumentErrorKind
	Err  error
}

func (e *DocumentError) Error() string {
	if e.Err != nil {
		return "htmlview: document: " + e.Kind.String() + ": " + e.Err.Error()
	}
	return "htmlview: document: " + e.Kind.String()
}

func (e *DocumentError) Unwrap() error { return e.Err }

// RenderErrorKind classifies a RenderError.
type RenderErrorKind int

const (
	// EngineFailure means the engine reported a failed layout or paint.
	EngineFailure RenderErrorKind = iota + 1
)

func (k RenderErrorKind) String() string {
	if k == EngineFailure {
		return "engine failure"
	}
	return fmt.Sprintf("RenderErrorKind(%d)", int(k))
}

// RenderError reports a failed layout or paint pass.
type RenderError struct {
	Kind RenderErrorKind

	// Op is "layout" or "paint".
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return "htmlview: " + e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *RenderError) Unwrap() error { return e.Err }
