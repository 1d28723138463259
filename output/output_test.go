package output

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func TestWriteCreatesDirectories(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root, nil)
	arts := []Artifact{
		{Name: "a", Path: "common/include/a.h", Data: []byte("A\n")},
		{Name: "b", Path: "layer/b.def", Data: []byte("B\n")},
	}
	res, err := w.Write(arts, Digest([]byte("metadata")))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !reflect.DeepEqual(res.Written, []string{"common/include/a.h", "layer/b.def"}) {
		t.Errorf("Written = %v", res.Written)
	}
	if got := readFile(t, filepath.Join(root, "common", "include", "a.h")); got != "A\n" {
		t.Errorf("a.h = %q", got)
	}

	entries, err := os.ReadDir(filepath.Join(root, "layer"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("layer dir holds %d entries, want only b.def (temp files left behind?)", len(entries))
	}
}

func TestWriteSkipsUnchanged(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root, nil)
	arts := []Artifact{{Name: "a", Path: "a.h", Data: []byte("same")}}
	if _, err := w.Write(arts, nil); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(root, "a.h")
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	res, err := w.Write(arts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Written) != 0 || !reflect.DeepEqual(res.Unchanged, []string{"a.h"}) {
		t.Errorf("second write = %+v", res)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(old) {
		t.Errorf("mtime changed to %v, want %v", info.ModTime(), old)
	}
}

func TestWriteDetectsHandEdits(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root, nil)
	if _, err := w.Write([]Artifact{{Path: "a.h", Data: []byte("v1")}}, nil); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.h"), []byte("edited"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := w.Write([]Artifact{{Path: "a.h", Data: []byte("v2")}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(res.HandEdited, []string{"a.h"}) {
		t.Errorf("HandEdited = %v", res.HandEdited)
	}
	if got := readFile(t, filepath.Join(root, "a.h")); got != "v2" {
		t.Errorf("a.h = %q, want v2", got)
	}

	// A regenerated file that nobody touched is not reported.
	res, err = w.Write([]Artifact{{Path: "a.h", Data: []byte("v3")}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.HandEdited) != 0 {
		t.Errorf("HandEdited = %v, want none", res.HandEdited)
	}
}

func TestWriteContinuesAfterFailure(t *testing.T) {
	root := t.TempDir()
	// A regular file where a directory is needed makes the first artifact fail.
	if err := os.WriteFile(filepath.Join(root, "blocked"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w := NewWriter(root, nil)
	res, err := w.Write([]Artifact{
		{Path: "blocked/a.h", Data: []byte("A")},
		{Path: "ok/b.h", Data: []byte("B")},
	}, nil)
	if err == nil {
		t.Fatal("expected an error for blocked/a.h")
	}
	if !reflect.DeepEqual(res.Written, []string{"ok/b.h"}) {
		t.Errorf("Written = %v", res.Written)
	}
	if got := readFile(t, filepath.Join(root, "ok", "b.h")); got != "B" {
		t.Errorf("b.h = %q", got)
	}
}

func TestStamp(t *testing.T) {
	root := t.TempDir()
	digest := Digest([]byte("metadata"))
	w := NewWriter(root, nil)
	if _, err := w.Write([]Artifact{{Path: "a.h", Data: []byte("A")}}, digest); err != nil {
		t.Fatal(err)
	}

	s, err := ReadStamp(root)
	if err != nil {
		t.Fatalf("ReadStamp: %v", err)
	}
	if !bytes.Equal(s.MetadataDigest, digest) {
		t.Errorf("MetadataDigest = %x, want %x", s.MetadataDigest, digest)
	}
	if !bytes.Equal(s.Files["a.h"], Digest([]byte("A"))) {
		t.Errorf("Files[a.h] = %x", s.Files["a.h"])
	}

	// Canonical encoding is byte-stable.
	first, err := MarshalStamp(s)
	if err != nil {
		t.Fatal(err)
	}
	second, err := MarshalStamp(s)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("stamp encoding is not deterministic")
	}
}

func TestReadStampMissing(t *testing.T) {
	s, err := ReadStamp(t.TempDir())
	if err != nil {
		t.Fatalf("ReadStamp: %v", err)
	}
	if len(s.Files) != 0 || s.MetadataDigest != nil {
		t.Errorf("empty stamp = %+v", s)
	}
}

func TestStale(t *testing.T) {
	root := t.TempDir()
	if err := WriteFile(filepath.Join(root, "same.h"), []byte("same")); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(filepath.Join(root, "sub", "old.h"), []byte("old")); err != nil {
		t.Fatal(err)
	}

	stale, err := Stale(root, []Artifact{
		{Path: "same.h", Data: []byte("same")},
		{Path: "sub/old.h", Data: []byte("new")},
		{Path: "missing.h", Data: []byte("x")},
	})
	if err != nil {
		t.Fatalf("Stale: %v", err)
	}
	if want := []string{"missing.h", "sub/old.h"}; !reflect.DeepEqual(stale, want) {
		t.Errorf("Stale = %v, want %v", stale, want)
	}
}
