// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package assets

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a ProvisionError.
type ErrorKind int

const (
	// SourceUnavailable means the archive could not be opened or read.
	SourceUnavailable ErrorKind = iota + 1

	// ExtractionFailed means an entry could not be written, or the archive
	// content is unusable.
	ExtractionFailed

	// DirectoryCreationFailed means a required directory could not be made.
	DirectoryCreationFailed
)

func (k ErrorKind) String() string {
	switch k {
	case SourceUnavailable:
		return "source unavailable"
	case ExtractionFailed:
		return "extraction failed"
	case DirectoryCreationFailed:
		return "directory creation failed"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Sentinels matched by errors.Is against a *ProvisionError of the same kind.
var (
	ErrSourceUnavailable       = errors.New("assets: source unavailable")
	ErrExtractionFailed        = errors.New("assets: extraction failed")
	ErrDirectoryCreationFailed = errors.New("assets: directory creation failed")
)

// ProvisionError reports a failed asset provisioning step.
type ProvisionError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *ProvisionError) Error() string {
	msg := "assets: " + e.Kind.String()
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *ProvisionError) Is(target error) bool {
	switch target {
	case ErrSourceUnavailable:
		return e.Kind == SourceUnavailable
	case ErrExtractionFailed:
		return e.Kind == ExtractionFailed
	case ErrDirectoryCreationFailed:
		return e.Kind == DirectoryCreationFailed
	}
	return false
}
