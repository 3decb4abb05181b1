package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, "debug", "text")
	if l.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %s", l.GetLevel())
	}

	buf.Reset()
	l = NewWithOutput(&buf, "loud", "text")
	if l.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %s", l.GetLevel())
	}
	if !strings.Contains(buf.String(), "unknown log level") {
		t.Errorf("missing warning: %q", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, "info", "json")
	l.WithField("frames", 3).Info("done")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("not json: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "done" || entry["frames"].(float64) != 3 {
		t.Errorf("entry = %v", entry)
	}
}
