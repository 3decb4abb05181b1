package orchestrator

import "github.com/maastricht-university/lipsync-pipeline/export"

// Pipeline states.
const (
	StateUninitialized = "uninitialized"
	StateInitialized   = "initialized"
	StateProcessing    = "processing"
	StateFinalized     = "finalized"
)

const (
	evInitialize = "initialize"
	evProcess    = "process"
	evFinalize   = "finalize"
)

type VisemeCount struct {
	Viseme  string  `json:"viseme"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type Summary struct {
	FrameCount  int           `json:"frame_count"`
	Duration    float64       `json:"duration"`
	Mode        string        `json:"mode"`
	Unique      []string      `json:"unique_visemes"`
	Top         []VisemeCount `json:"top_visemes"`
	LaughFrames int           `json:"laugh_frames"`
	MeanLaugh   float64       `json:"mean_laugh"`
}

// Result is what a full Run leaves behind.
type Result struct {
	SessionID string
	Dir       string
	Outputs   []string
	Document  *export.Document
	Summary   Summary
}
