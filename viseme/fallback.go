package viseme

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Energy thresholds of the fallback heuristic. They are placeholders, not
// derived from acoustic measurements.
const (
	speechEnergy = 0.01
	laughEnergy  = 0.05
)

// Fallback estimates visemes from short-term energy when the native library
// is not available.
type Fallback struct {
	log         logrus.FieldLogger
	initialized bool
}

func NewFallback(log logrus.FieldLogger) *Fallback {
	return &Fallback{log: log}
}

func (f *Fallback) Initialize(sampleRate, bufferSize int) error {
	if sampleRate <= 0 || bufferSize <= 0 {
		return &InitializationError{
			SampleRate: sampleRate,
			BufferSize: bufferSize,
			Err:        fmt.Errorf("sample rate and buffer size must be positive"),
		}
	}
	f.initialized = true
	return nil
}

func (f *Fallback) Process(frame []float32) Output {
	if !f.initialized {
		f.log.Warn("fallback extractor used before initialize")
		return Output{}
	}
	e := meanAbs(frame)

	var w Weights
	if e > speechEnergy {
		w[Sil] = float32(math.Max(0, 1-e*5))
		w[AA] = float32(math.Min(1, e*3))
		w[PP] = float32(math.Min(1, e*2))
	} else {
		w[Sil] = 1
	}
	var total float32
	for _, v := range w {
		total += v
	}
	if total > 0 {
		for i := range w {
			w[i] /= total
		}
	}

	var laugh float32
	if e > laughEnergy {
		laugh = float32(math.Min(1, e*2))
	}
	return Output{Weights: w, Laugh: laugh}
}

func (f *Fallback) Cleanup() { f.initialized = false }

func (f *Fallback) Mode() Mode { return ModeFallback }

func meanAbs(frame []float32) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		v := math.Abs(float64(s))
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
	}
	return sum / float64(len(frame))
}
