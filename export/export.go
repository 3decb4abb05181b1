package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/maastricht-university/lipsync-pipeline/viseme"
)

const (
	FormatTag = "OVRLipSync_Visemes"
	Version   = "1.0"
)

// Document is the self-describing export of a viseme sequence. Duration is
// the length of the source clip, so it can exceed the last frame timestamp
// by up to one frame.
type Document struct {
	Format     string          `json:"format" yaml:"format"`
	Version    string          `json:"version" yaml:"version"`
	FrameCount int             `json:"frame_count" yaml:"frame_count"`
	Duration   float64         `json:"duration" yaml:"duration"`
	Frames     []viseme.Record `json:"frames" yaml:"frames"`
}

// NewDocument wraps records with export metadata. duration is the clip length
// in seconds.
func NewDocument(records []viseme.Record, duration float64) *Document {
	if records == nil {
		records = []viseme.Record{}
	}
	return &Document{
		Format:     FormatTag,
		Version:    Version,
		FrameCount: len(records),
		Duration:   duration,
		Frames:     records,
	}
}

type ExportIOError struct {
	Path string
	Err  error
}

func (e *ExportIOError) Error() string { return fmt.Sprintf("export %s: %v", e.Path, e.Err) }

func (e *ExportIOError) Unwrap() error { return e.Err }

// Writer renders a document in one format.
type Writer interface {
	Ext() string
	Write(w io.Writer, doc *Document) error
}

var writers = map[string]Writer{
	"json": jsonWriter{},
	"csv":  csvWriter{},
	"yaml": yamlWriter{},
}

// Formats lists the supported format names.
func Formats() []string { return []string{"json", "csv", "yaml"} }

func Lookup(format string) (Writer, error) {
	w, ok := writers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("unknown export format %q", format)
	}
	return w, nil
}

// WriteFile renders doc into path using the given format. Encoding errors
// are returned as is and leave no file behind; filesystem failures are
// reported as an *ExportIOError.
func WriteFile(path, format string, doc *Document) error {
	w, err := Lookup(format)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := w.Write(&buf, doc); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &ExportIOError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &ExportIOError{Path: path, Err: err}
	}
	return nil
}
