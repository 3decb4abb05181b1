package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/lipsync-pipeline/audio"
	cfg "github.com/maastricht-university/lipsync-pipeline/config"
	"github.com/maastricht-university/lipsync-pipeline/export"
	"github.com/maastricht-university/lipsync-pipeline/history"
	"github.com/maastricht-university/lipsync-pipeline/viseme"
)

var (
	ErrFinalized   = errors.New("pipeline already finalized")
	ErrNotReady    = errors.New("pipeline not initialized")
	ErrInitialized = errors.New("pipeline already initialized")
)

// OpenFunc creates the extractor for a run.
type OpenFunc func(viseme.Options, logrus.FieldLogger) (viseme.Extractor, error)

// Pipeline drives one audio clip through extraction and export. It moves
// uninitialized -> initialized -> processing -> finalized and cannot be
// reused once finalized.
type Pipeline struct {
	cfg     *cfg.Root
	log     logrus.FieldLogger
	open    OpenFunc
	history *history.Store

	sm        *fsm.FSM
	ex        viseme.Extractor
	agg       *viseme.Aggregator
	frameSize int
	rate      int
}

type Option func(*Pipeline)

func WithHistory(s *history.Store) Option { return func(p *Pipeline) { p.history = s } }

func WithExtractor(open OpenFunc) Option { return func(p *Pipeline) { p.open = open } }

func NewPipeline(c *cfg.Root, log logrus.FieldLogger, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: c, log: log, open: viseme.Open}
	for _, o := range opts {
		o(p)
	}
	p.sm = fsm.NewFSM(
		StateUninitialized,
		fsm.Events{
			{Name: evInitialize, Src: []string{StateUninitialized}, Dst: StateInitialized},
			{Name: evProcess, Src: []string{StateInitialized}, Dst: StateProcessing},
			{Name: evFinalize, Src: []string{StateUninitialized, StateInitialized, StateProcessing}, Dst: StateFinalized},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				p.log.WithFields(logrus.Fields{"from": e.Src, "to": e.Dst}).Debug("pipeline state")
			},
		},
	)
	return p
}

func (p *Pipeline) State() string { return p.sm.Current() }

// Mode reports the extractor variant, empty before initialization.
func (p *Pipeline) Mode() viseme.Mode {
	if p.ex == nil {
		return ""
	}
	return p.ex.Mode()
}

// Initialize opens the extractor for the given stream parameters.
func (p *Pipeline) Initialize(ctx context.Context, sampleRate, frameSize int) error {
	if !p.sm.Can(evInitialize) {
		if p.sm.Is(StateFinalized) {
			return ErrFinalized
		}
		return ErrInitialized
	}
	if !audio.ValidFrameSize(frameSize) {
		return audio.ErrInvalidFrameSize
	}
	ex, err := p.open(viseme.Options{
		Library:       p.cfg.LipSync.Library,
		RequireNative: p.cfg.LipSync.RequireNative,
		SampleRate:    sampleRate,
		BufferSize:    frameSize,
	}, p.log)
	if err != nil {
		return err
	}
	p.ex, p.frameSize, p.rate = ex, frameSize, sampleRate
	p.agg = viseme.NewAggregator(frameSize, sampleRate)
	return p.sm.Event(ctx, evInitialize)
}

// Process runs every frame of w through the extractor, one at a time.
func (p *Pipeline) Process(ctx context.Context, w *audio.Waveform) ([]viseme.Record, error) {
	switch {
	case p.sm.Is(StateFinalized):
		return nil, ErrFinalized
	case !p.sm.Is(StateInitialized):
		return nil, ErrNotReady
	}
	if w.SampleRate != p.rate {
		return nil, fmt.Errorf("waveform sample rate %d does not match initialized rate %d", w.SampleRate, p.rate)
	}

	seg, err := audio.NewSegmenter(w, p.frameSize)
	if err != nil {
		return nil, err
	}
	if err := p.sm.Event(ctx, evProcess); err != nil {
		return nil, err
	}
	for _, frame := range seg.All() {
		if _, err := p.Feed(ctx, frame); err != nil {
			return nil, err
		}
	}
	p.log.WithFields(logrus.Fields{"frames": p.agg.Len(), "mode": p.ex.Mode()}).Debug("frames processed")
	return p.agg.Records(), nil
}

// Feed extracts and labels a single frame. Streams call it directly; the
// first call moves the pipeline into processing.
func (p *Pipeline) Feed(ctx context.Context, frame []float32) (viseme.Record, error) {
	switch p.sm.Current() {
	case StateInitialized:
		if err := p.sm.Event(ctx, evProcess); err != nil {
			return viseme.Record{}, err
		}
	case StateProcessing:
	case StateFinalized:
		return viseme.Record{}, ErrFinalized
	default:
		return viseme.Record{}, ErrNotReady
	}
	return p.agg.Add(p.ex.Process(frame)), nil
}

// Records returns everything labelled so far.
func (p *Pipeline) Records() []viseme.Record {
	if p.agg == nil {
		return nil
	}
	return p.agg.Records()
}

// Finalize releases the extractor. Errors during cleanup are logged by the
// extractor and never returned.
func (p *Pipeline) Finalize(ctx context.Context) {
	if p.ex != nil {
		p.ex.Cleanup()
	}
	if p.sm.Can(evFinalize) {
		_ = p.sm.Event(ctx, evFinalize)
	}
}

// Analyze initializes, processes and finalizes in one go.
func (p *Pipeline) Analyze(ctx context.Context, w *audio.Waveform, frameSize int) (*export.Document, Summary, error) {
	defer p.Finalize(ctx)

	if err := p.Initialize(ctx, w.SampleRate, frameSize); err != nil {
		return nil, Summary{}, err
	}
	recs, err := p.Process(ctx, w)
	if err != nil {
		return nil, Summary{}, err
	}
	return export.NewDocument(recs, w.Duration), summarize(recs, w.Duration, p.ex.Mode()), nil
}

// Run processes the wav at wavPath, persists the configured exports into a
// fresh session directory under outputsRoot and finalizes the pipeline.
func (p *Pipeline) Run(ctx context.Context, wavPath, outputsRoot string) (*Result, error) {
	switch {
	case p.sm.Is(StateFinalized):
		return nil, ErrFinalized
	case !p.sm.Is(StateUninitialized):
		return nil, ErrInitialized
	}
	defer p.Finalize(ctx)
	log := p.log.WithField("audio", wavPath)

	w, err := audio.Load(wavPath)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"sample_rate": w.SampleRate,
		"channels":    w.Channels,
		"width":       w.SampleWidth,
		"duration":    w.Duration,
	}).Info("audio loaded")

	if err := p.Initialize(ctx, w.SampleRate, p.cfg.Audio.FrameSize); err != nil {
		return nil, err
	}
	recs, err := p.Process(ctx, w)
	if err != nil {
		return nil, err
	}
	doc := export.NewDocument(recs, w.Duration)
	sum := summarize(recs, w.Duration, p.ex.Mode())

	res, err := persist(outputsRoot, wavPath, p.cfg.Export.Formats, doc, sum)
	if err != nil {
		return nil, err
	}
	if p.history != nil {
		run := &history.Run{
			SessionID:  res.SessionID,
			AudioPath:  wavPath,
			Mode:       sum.Mode,
			FrameCount: sum.FrameCount,
			Duration:   sum.Duration,
			Outputs:    res.Outputs,
		}
		if err := p.history.Record(ctx, run); err != nil {
			log.WithError(err).Warn("history not recorded")
		}
	}
	log.WithFields(logrus.Fields{"frames": sum.FrameCount, "mode": sum.Mode, "session": res.SessionID}).Info("visemes exported")
	return res, nil
}
