// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package assets

import "path/filepath"

// Archive layout. Both subtrees are materialized under the target
// directory with the same relative structure.
const (
	archiveRoot = "assets"
	dataSubtree = "assets/data"
	fontSubtree = "assets/fonts"
)

// Well-known file names inside the subtrees.
const (
	FontConfigName       = "fonts.conf"
	MasterStylesheetName = "master.css"
	DefaultDocumentName  = "test.html"
)

// Paths locates provisioned assets.
type Paths struct {
	// Root is the target directory holding the assets tree.
	Root string

	// DataDir holds stylesheets and documents.
	DataDir string

	// FontDir holds fonts.conf and the font files.
	FontDir string
}

// PathsFor returns where assets live under targetDir.
func PathsFor(targetDir string) Paths {
	return Paths{
		Root:    targetDir,
		DataDir: filepath.Join(targetDir, filepath.FromSlash(dataSubtree)),
		FontDir: filepath.Join(targetDir, filepath.FromSlash(fontSubtree)),
	}
}

// FontConfigFile returns the path of fonts.conf.
func (p Paths) FontConfigFile() string { return filepath.Join(p.FontDir, FontConfigName) }

// MasterStylesheet returns the path of master.css.
func (p Paths) MasterStylesheet() string { return filepath.Join(p.DataDir, MasterStylesheetName) }

// DefaultDocument returns the path of test.html.
func (p Paths) DefaultDocument() string { return filepath.Join(p.DataDir, DefaultDocumentName) }
