package outline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Marshal renders a record as stable 2-space-indented UTF-8 JSON. Field
// order is fixed by the struct, so identical records serialize to
// identical bytes.
func Marshal(rec Record) ([]byte, error) {
	if rec.Outline == nil {
		rec.Outline = []Entry{}
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return append(data, '\n'), nil
}

// Writer persists one record per document into an output directory, using
// the document's base name with a .json extension.
type Writer struct {
	Dir string
}

func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Writer{Dir: dir}, nil
}

// Write serializes the record for the named document and returns the path
// written.
func (w *Writer) Write(name string, rec Record) (string, error) {
	data, err := Marshal(rec)
	if err != nil {
		return "", err
	}
	path := filepath.Join(w.Dir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
