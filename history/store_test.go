package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestRecordAndList(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "db", "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, name := range []string{"a.wav", "b.wav", "c.wav"} {
		r := &Run{
			SessionID:  "session_" + name,
			AudioPath:  name,
			Mode:       "fallback",
			FrameCount: 10 * (i + 1),
			Duration:   float64(i),
			Outputs:    []string{name + ".json"},
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.Record(ctx, r); err != nil {
			t.Fatal(err)
		}
		if r.ID == "" {
			t.Fatal("id not assigned")
		}
	}

	runs, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs", len(runs))
	}
	if runs[0].AudioPath != "c.wav" || runs[1].AudioPath != "b.wav" {
		t.Errorf("order = %s, %s", runs[0].AudioPath, runs[1].AudioPath)
	}
	if runs[0].FrameCount != 30 || len(runs[0].Outputs) != 1 || runs[0].Outputs[0] != "c.wav.json" {
		t.Errorf("run = %+v", runs[0])
	}
}
