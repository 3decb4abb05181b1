package viseme

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

type Mode string

const (
	ModeNative   Mode = "native"
	ModeFallback Mode = "fallback"
)

// Output is what an extractor reports for a single frame.
type Output struct {
	Weights Weights
	Laugh   float32
}

// Extractor turns fixed-size audio frames into viseme weights. An extractor
// owns one inference context and must not be shared between runs or
// goroutines.
type Extractor interface {
	// Initialize must succeed before Process is called.
	Initialize(sampleRate, bufferSize int) error
	// Process never fails; internal errors yield a zero Output.
	Process(frame []float32) Output
	// Cleanup releases the context. Calls after the first are no-ops.
	Cleanup()
	Mode() Mode
}

type InitializationError struct {
	SampleRate int
	BufferSize int
	Err        error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("lip-sync init (sr=%d, bs=%d): %v", e.SampleRate, e.BufferSize, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

type ExtractionFailure struct {
	Code int
}

func (e *ExtractionFailure) Error() string {
	return fmt.Sprintf("lip-sync process frame returned code %d", e.Code)
}

var ErrNativeUnavailable = errors.New("native lip-sync library unavailable")

type Options struct {
	Library       string // path to the shared library; empty disables native mode
	RequireNative bool
	SampleRate    int
	BufferSize    int
}

// Open returns an initialised extractor. The native library is preferred;
// when it cannot be loaded or rejects the configuration the heuristic
// fallback is returned instead, unless RequireNative is set.
func Open(opts Options, log logrus.FieldLogger) (Extractor, error) {
	log = log.WithFields(logrus.Fields{"sample_rate": opts.SampleRate, "buffer_size": opts.BufferSize})

	native := NewNative(opts.Library, log)
	err := native.Initialize(opts.SampleRate, opts.BufferSize)
	if err == nil {
		log.WithField("library", opts.Library).Info("lip-sync native library initialized")
		return native, nil
	}
	native.Cleanup()
	if opts.RequireNative {
		return nil, err
	}
	log.WithError(err).Warn("lip-sync falling back to energy heuristic")

	fb := NewFallback(log)
	if err := fb.Initialize(opts.SampleRate, opts.BufferSize); err != nil {
		return nil, err
	}
	return fb, nil
}
