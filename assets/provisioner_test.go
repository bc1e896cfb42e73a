// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package assets

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zip"
)

// recordingFS counts writes made through it.
type recordingFS struct {
	OSFS
	writes []string
}

func (r *recordingFS) MkdirAll(path string, perm fs.FileMode) error {
	r.writes = append(r.writes, "mkdir "+path)
	return r.OSFS.MkdirAll(path, perm)
}

func (r *recordingFS) Create(name string) (io.WriteCloser, error) {
	r.writes = append(r.writes, "create "+name)
	return r.OSFS.Create(name)
}

func (r *recordingFS) RemoveAll(path string) error {
	r.writes = append(r.writes, "remove "+path)
	return r.OSFS.RemoveAll(path)
}

// failingFS fails every Create.
type failingFS struct{ OSFS }

func (failingFS) Create(string) (io.WriteCloser, error) { return nil, errors.New("disk full") }

type zipEntry struct {
	name, body string
}

func buildZip(t *testing.T, entries []zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("zip create %s: %v", e.name, err)
		}
		if _, err := io.WriteString(w, e.body); err != nil {
			t.Fatalf("zip write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func writeZip(t *testing.T, entries []zipEntry) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "assets.zip")
	if err := os.WriteFile(p, buildZip(t, entries), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

var standardEntries = []zipEntry{
	{"assets/data/", ""},
	{"assets/data/master.css", "body { color: black }"},
	{"assets/data/test.html", "<p>hello</p>"},
	{"assets/fonts/fonts.conf", "<fontconfig></fontconfig>"},
	{"assets/fonts/Tinos-Regular.ttf", "not really a font"},
	{"assets/other/readme.txt", "skipped"},
	{"META-INF/MANIFEST.MF", "skipped"},
}

func listTree(t *testing.T, root string) []string {
	t.Helper()
	var got []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(root, p)
			got = append(got, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	return got
}

func TestEnsureExtractsOnlySubtrees(t *testing.T) {
	archive := writeZip(t, standardEntries)
	target := t.TempDir()

	var p Provisioner
	paths, err := p.Ensure(context.Background(), archive, target)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	want := []string{
		"assets/data/master.css",
		"assets/data/test.html",
		"assets/fonts/Tinos-Regular.ttf",
		"assets/fonts/fonts.conf",
	}
	if diff := cmp.Diff(want, listTree(t, target)); diff != "" {
		t.Errorf("extracted files mismatch (-want +got):\n%s", diff)
	}

	css, err := ReadText(nil, paths.MasterStylesheet())
	if err != nil || css != "body { color: black }" {
		t.Errorf("master.css = %q, %v", css, err)
	}
	if paths.FontConfigFile() != filepath.Join(target, "assets", "fonts", "fonts.conf") {
		t.Errorf("FontConfigFile = %s", paths.FontConfigFile())
	}
	if paths.DefaultDocument() != filepath.Join(target, "assets", "data", "test.html") {
		t.Errorf("DefaultDocument = %s", paths.DefaultDocument())
	}
}

func TestEnsureIdempotentZeroWrites(t *testing.T) {
	archive := writeZip(t, standardEntries)
	target := t.TempDir()

	rfs := &recordingFS{}
	p := Provisioner{FS: rfs}
	first, err := p.Ensure(context.Background(), archive, target)
	if err != nil {
		t.Fatalf("first Ensure: %v", err)
	}
	if len(rfs.writes) == 0 {
		t.Fatal("first Ensure made no writes")
	}

	rfs.writes = nil
	second, err := p.Ensure(context.Background(), archive, target)
	if err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if len(rfs.writes) != 0 {
		t.Errorf("second Ensure wrote %v", rfs.writes)
	}
	if first != second {
		t.Errorf("paths differ: %+v vs %+v", first, second)
	}
}

func TestEnsureFastPathSkipsMissingArchive(t *testing.T) {
	target := t.TempDir()
	for _, d := range []string{"assets/data", "assets/fonts"} {
		if err := os.MkdirAll(filepath.Join(target, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	var p Provisioner
	if _, err := p.Ensure(context.Background(), filepath.Join(target, "missing.zip"), target); err != nil {
		t.Errorf("Ensure on a provisioned target: %v", err)
	}
}

func TestEnsureErrors(t *testing.T) {
	t.Run("source unavailable", func(t *testing.T) {
		var p Provisioner
		_, err := p.Ensure(context.Background(), filepath.Join(t.TempDir(), "nope.zip"), t.TempDir())
		if !errors.Is(err, ErrSourceUnavailable) {
			t.Errorf("error = %v, want ErrSourceUnavailable", err)
		}
		var pe *ProvisionError
		if !errors.As(err, &pe) || pe.Kind != SourceUnavailable {
			t.Errorf("error = %#v, want *ProvisionError{SourceUnavailable}", err)
		}
	})

	t.Run("not a zip", func(t *testing.T) {
		data := []byte("plain text")
		var p Provisioner
		_, err := p.EnsureReader(context.Background(), bytes.NewReader(data), int64(len(data)), t.TempDir())
		if !errors.Is(err, ErrSourceUnavailable) {
			t.Errorf("error = %v, want ErrSourceUnavailable", err)
		}
	})

	t.Run("write failure", func(t *testing.T) {
		archive := writeZip(t, standardEntries)
		p := Provisioner{FS: failingFS{}}
		_, err := p.Ensure(context.Background(), archive, t.TempDir())
		if !errors.Is(err, ErrExtractionFailed) {
			t.Errorf("error = %v, want ErrExtractionFailed", err)
		}
	})

	t.Run("directory creation failure", func(t *testing.T) {
		archive := writeZip(t, standardEntries)
		target := t.TempDir()
		// A regular file where the assets directory must go.
		if err := os.WriteFile(filepath.Join(target, "assets"), nil, 0o600); err != nil {
			t.Fatal(err)
		}
		var p Provisioner
		_, err := p.Ensure(context.Background(), archive, target)
		if !errors.Is(err, ErrDirectoryCreationFailed) {
			t.Errorf("error = %v, want ErrDirectoryCreationFailed", err)
		}
	})

	t.Run("missing subtree", func(t *testing.T) {
		archive := writeZip(t, []zipEntry{{"assets/data/master.css", "p{}"}})
		var p Provisioner
		_, err := p.Ensure(context.Background(), archive, t.TempDir())
		if !errors.Is(err, ErrExtractionFailed) {
			t.Errorf("error = %v, want ErrExtractionFailed", err)
		}
	})

	t.Run("path escape", func(t *testing.T) {
		archive := writeZip(t, []zipEntry{{"assets/data/../../evil.txt", "x"}})
		target := t.TempDir()
		var p Provisioner
		_, err := p.Ensure(context.Background(), archive, target)
		if !errors.Is(err, ErrExtractionFailed) {
			t.Errorf("error = %v, want ErrExtractionFailed", err)
		}
		if _, err := os.Stat(filepath.Join(filepath.Dir(target), "evil.txt")); err == nil {
			t.Error("escaping entry was written")
		}
	})

	t.Run("canceled", func(t *testing.T) {
		archive := writeZip(t, standardEntries)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var p Provisioner
		_, err := p.Ensure(ctx, archive, t.TempDir())
		if !errors.Is(err, context.Canceled) || !errors.Is(err, ErrExtractionFailed) {
			t.Errorf("error = %v, want ExtractionFailed wrapping context.Canceled", err)
		}
	})
}

func TestResetThenRetry(t *testing.T) {
	archive := writeZip(t, standardEntries)
	target := t.TempDir()

	// A partial previous run: both directories exist but are empty.
	for _, d := range []string{"assets/data", "assets/fonts"} {
		if err := os.MkdirAll(filepath.Join(target, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	var p Provisioner
	paths, err := p.Ensure(context.Background(), archive, target)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if _, err := os.Stat(paths.MasterStylesheet()); err == nil {
		t.Fatal("fast path extracted into a partial tree")
	}

	if err := p.Reset(target); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if p.Provisioned(target) {
		t.Fatal("Provisioned after Reset")
	}
	if _, err := p.Ensure(context.Background(), archive, target); err != nil {
		t.Fatalf("Ensure after Reset: %v", err)
	}
	if _, err := os.Stat(paths.MasterStylesheet()); err != nil {
		t.Errorf("master.css missing after retry: %v", err)
	}
}

func TestEnsureReader(t *testing.T) {
	data := buildZip(t, standardEntries)
	target := t.TempDir()

	var p Provisioner
	paths, err := p.EnsureReader(context.Background(), bytes.NewReader(data), int64(len(data)), target)
	if err != nil {
		t.Fatalf("EnsureReader: %v", err)
	}
	conf, err := ReadText(nil, paths.FontConfigFile())
	if err != nil || conf != "<fontconfig></fontconfig>" {
		t.Errorf("fonts.conf = %q, %v", conf, err)
	}
}

func TestEntryPath(t *testing.T) {
	tests := []struct {
		name    string
		rel     string
		ok      bool
		wantErr bool
	}{
		{"assets/data/master.css", "assets/data/master.css", true, false},
		{"assets/fonts/", "assets/fonts", true, false},
		{"assets/fonts/sub/x.ttf", "assets/fonts/sub/x.ttf", true, false},
		{"assets/data/../fonts/x.ttf", "assets/fonts/x.ttf", true, false},
		{"assets/database/x", "", false, false},
		{"data/master.css", "", false, false},
		{"assets/data/../../x", "", false, true},
		{`assets\data\x`, "", false, true},
	}
	for _, tt := range tests {
		rel, ok, err := entryPath(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("entryPath(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if rel != tt.rel || ok != tt.ok {
			t.Errorf("entryPath(%q) = %q, %v; want %q, %v", tt.name, rel, ok, tt.rel, tt.ok)
		}
	}
}

func TestProvisionErrorMessage(t *testing.T) {
	err := &ProvisionError{Kind: ExtractionFailed, Path: "a/b", Err: errors.New("boom")}
	if got, want := err.Error(), "assets: extraction failed: a/b: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if errors.Is(err, ErrSourceUnavailable) {
		t.Error("ExtractionFailed matched ErrSourceUnavailable")
	}
}
