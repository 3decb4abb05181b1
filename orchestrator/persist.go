package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/maastricht-university/lipsync-pipeline/export"
)

type PersistBundle struct {
	SessionID   string    `json:"session_id"`
	AudioPath   string    `json:"audio_path"`
	GeneratedAt time.Time `json:"generated_at"`
	Summary     Summary   `json:"summary"`
	Outputs     []string  `json:"outputs"`
}

func mkSessionDir(outputsRoot string) (string, string, error) {
	ts := time.Now().Format("20060102-150405")
	sid := "session_" + ts
	dir := filepath.Join(outputsRoot, sid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", &export.ExportIOError{Path: dir, Err: err}
	}
	return sid, dir, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func persist(outputsRoot, audioPath string, formats []string, doc *export.Document, sum Summary) (*Result, error) {
	sid, outDir, err := mkSessionDir(outputsRoot)
	if err != nil {
		return nil, err
	}

	res := &Result{SessionID: sid, Dir: outDir, Document: doc, Summary: sum}
	for _, f := range formats {
		w, err := export.Lookup(f)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(outDir, "visemes"+w.Ext())
		if err := export.WriteFile(path, f, doc); err != nil {
			return nil, err
		}
		res.Outputs = append(res.Outputs, path)
	}

	bundle := PersistBundle{
		SessionID:   sid,
		AudioPath:   audioPath,
		GeneratedAt: time.Now(),
		Summary:     sum,
		Outputs:     res.Outputs,
	}
	sumPath := filepath.Join(outDir, "summary.json")
	if err := writeJSON(sumPath, bundle); err != nil {
		return nil, &export.ExportIOError{Path: sumPath, Err: err}
	}
	return res, nil
}
