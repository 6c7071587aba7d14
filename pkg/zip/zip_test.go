package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestArchiveKeepsDuplicateNames(t *testing.T) {
	data, err := Archive([]Entry{
		{Filename: "sketch.png", Data: []byte("one")},
		{Filename: "sketch.png", Data: []byte("two")},
		{Filename: "other.jpg", Data: []byte("three")},
	})
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	want := map[string]string{"sketch.png": "one", "sketch-1.png": "two", "other.jpg": "three"}
	if len(zr.File) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(zr.File))
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		body, _ := io.ReadAll(rc)
		rc.Close()
		if want[f.Name] != string(body) {
			t.Fatalf("file %s: got %q want %q", f.Name, body, want[f.Name])
		}
	}
}

func TestArchiveEmpty(t *testing.T) {
	data, err := Archive(nil)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 0 {
		t.Fatalf("expected empty archive, got %d files", len(zr.File))
	}
}
