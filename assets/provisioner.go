// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package assets

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/gogpu/htmlview/internal/logging"
)

const (
	dirPerm = 0o755
)

// Provisioner materializes the asset archive into a writable directory.
//
// Extraction is not transactional. A failed run can leave a partially
// populated target, and the fast path only checks that both subtrees exist,
// so a partial tree counts as provisioned. Call Reset before retrying after
// a failure.
//
// The zero value uses the operating system filesystem.
type Provisioner struct {
	// FS is the target filesystem. Nil means OSFS.
	FS FS
}

func (p *Provisioner) fs() FS {
	if p.FS == nil {
		return OSFS{}
	}
	return p.FS
}

// Provisioned reports whether both asset subtrees exist under targetDir.
func (p *Provisioner) Provisioned(targetDir string) bool {
	paths := PathsFor(targetDir)
	fsys := p.fs()
	return isDir(fsys, paths.DataDir) && isDir(fsys, paths.FontDir)
}

// Ensure makes sure the assets from the zip archive at archivePath exist
// under targetDir. When they already do, it returns without writing.
func (p *Provisioner) Ensure(ctx context.Context, archivePath, targetDir string) (Paths, error) {
	if p.Provisioned(targetDir) {
		return PathsFor(targetDir), nil
	}

	rc, err := zip.OpenReader(archivePath)
	if err != nil {
		return Paths{}, &ProvisionError{Kind: SourceUnavailable, Path: archivePath, Err: err}
	}
	defer rc.Close()

	return p.extract(ctx, &rc.Reader, archivePath, targetDir)
}

// EnsureReader is Ensure for an archive already held in memory or opened
// by the caller, such as an embedded zip.
func (p *Provisioner) EnsureReader(ctx context.Context, r io.ReaderAt, size int64, targetDir string) (Paths, error) {
	if p.Provisioned(targetDir) {
		return PathsFor(targetDir), nil
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Paths{}, &ProvisionError{Kind: SourceUnavailable, Err: err}
	}
	return p.extract(ctx, zr, "", targetDir)
}

// Reset removes both asset subtrees under targetDir.
func (p *Provisioner) Reset(targetDir string) error {
	paths := PathsFor(targetDir)
	fsys := p.fs()
	for _, dir := range []string{paths.DataDir, paths.FontDir} {
		if err := fsys.RemoveAll(dir); err != nil {
			return &ProvisionError{Kind: DirectoryCreationFailed, Path: dir, Err: err}
		}
	}
	logging.Logger().Info("assets: reset", "target", targetDir)
	return nil
}

func (p *Provisioner) extract(ctx context.Context, zr *zip.Reader, source, targetDir string) (Paths, error) {
	fsys := p.fs()
	log := logging.Logger()

	var files, skipped int
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return Paths{}, &ProvisionError{Kind: ExtractionFailed, Path: source, Err: err}
		}

		rel, ok, err := entryPath(f.Name)
		if err != nil {
			log.Warn("assets: rejected entry", "entry", f.Name, "err", err)
			return Paths{}, &ProvisionError{Kind: ExtractionFailed, Path: f.Name, Err: err}
		}
		if !ok {
			skipped++
			continue
		}

		dst := filepath.Join(targetDir, filepath.FromSlash(rel))
		if f.FileInfo().IsDir() {
			if err := fsys.MkdirAll(dst, dirPerm); err != nil {
				return Paths{}, &ProvisionError{Kind: DirectoryCreationFailed, Path: dst, Err: err}
			}
			continue
		}

		if err := fsys.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
			return Paths{}, &ProvisionError{Kind: DirectoryCreationFailed, Path: filepath.Dir(dst), Err: err}
		}
		if err := writeEntry(fsys, f, dst); err != nil {
			log.Warn("assets: extraction failed", "entry", f.Name, "err", err)
			return Paths{}, &ProvisionError{Kind: ExtractionFailed, Path: dst, Err: err}
		}
		files++
		log.Debug("assets: extracted", "entry", f.Name, "bytes", f.UncompressedSize64)
	}

	paths := PathsFor(targetDir)
	for _, dir := range []string{paths.DataDir, paths.FontDir} {
		if !isDir(fsys, dir) {
			return Paths{}, &ProvisionError{Kind: ExtractionFailed, Path: dir, Err: errMissingSubtree}
		}
	}

	log.Info("assets: provisioned", "target", targetDir, "files", files, "skipped", skipped)
	return paths, nil
}

var (
	errMissingSubtree = errors.New("archive has no entries for this subtree")
	errUnsafePath     = errors.New("entry path escapes the asset tree")
)

// entryPath returns the slash-separated path an archive entry extracts to.
// ok is false for entries outside the data and font subtrees.
func entryPath(name string) (rel string, ok bool, err error) {
	if strings.Contains(name, `\`) {
		if inScope(strings.ReplaceAll(name, `\`, "/")) {
			return "", false, errUnsafePath
		}
		return "", false, nil
	}
	if !inScope(name) {
		return "", false, nil
	}
	clean := path.Clean(name)
	if path.IsAbs(name) || !inScope(clean) {
		return "", false, errUnsafePath
	}
	return clean, true, nil
}

func inScope(name string) bool {
	for _, sub := range []string{dataSubtree, fontSubtree} {
		if name == sub || strings.HasPrefix(name, sub+"/") {
			return true
		}
	}
	return false
}

func writeEntry(fsys FS, f *zip.File, dst string) (err error) {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := fsys.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, src)
	return err
}

// ReadText reads a UTF-8 asset file.
func ReadText(fsys FS, name string) (string, error) {
	if fsys == nil {
		fsys = OSFS{}
	}
	r, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
