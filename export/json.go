package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type jsonWriter struct{}

func (jsonWriter) Ext() string { return ".json" }

func (jsonWriter) Write(w io.Writer, doc *Document) error { return EncodeJSON(w, doc) }

func EncodeJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ReadJSON parses a document previously written by the JSON writer.
func ReadJSON(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var doc Document
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &doc, nil
}
