// Package zip bundles in-memory files into a single archive.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

type Entry struct {
	Filename string
	Modified time.Time
	Data     []byte
}

// Archive writes entries in order. Duplicate names get a numeric suffix so
// every entry survives extraction.
func Archive(entries []Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		name := uniqueName(seen, e.Filename)
		hdr := &zip.FileHeader{Name: name, Method: zip.Store}
		if !e.Modified.IsZero() {
			hdr.Modified = e.Modified
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("zip %s: %w", name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, fmt.Errorf("zip %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func uniqueName(seen map[string]int, name string) string {
	if name == "" {
		name = "file"
	}
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}
	ext := ""
	for i := len(name) - 1; i >= 0 && name[i] != '/'; i-- {
		if name[i] == '.' {
			ext = name[i:]
			name = name[:i]
			break
		}
	}
	return fmt.Sprintf("%s-%d%s", name, n, ext)
}
