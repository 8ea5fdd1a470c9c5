package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JSONWriter writes any result value as indented JSON.
type JSONWriter struct{}

// WriteToFile writes v as JSON to a file at the given path.
func (w *JSONWriter) WriteToFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, v)
}

// Write writes v as indented JSON to the given writer.
func (w *JSONWriter) Write(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
