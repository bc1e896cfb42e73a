// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package assets

import (
	"io"
	"io/fs"
	"os"
)

// FS is the writable filesystem assets are materialized into.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	MkdirAll(path string, perm fs.FileMode) error
	Create(name string) (io.WriteCloser, error)
	Open(name string) (io.ReadCloser, error)
	RemoveAll(path string) error
}

// OSFS is the operating system filesystem.
type OSFS struct{}

var _ FS = OSFS{}

func (OSFS) Stat(name string) (fs.FileInfo, error)        { return os.Stat(name) }
func (OSFS) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }
func (OSFS) RemoveAll(path string) error                  { return os.RemoveAll(path) }

//nolint:gosec // target paths are validated against the extraction root
func (OSFS) Create(name string) (io.WriteCloser, error) { return os.Create(name) }

//nolint:gosec // asset paths come from Paths
func (OSFS) Open(name string) (io.ReadCloser, error) { return os.Open(name) }

// isDir reports whether name exists and is a directory.
func isDir(fsys FS, name string) bool {
	fi, err := fsys.Stat(name)
	return err == nil && fi.IsDir()
}
