package audio

import (
	"errors"
	"iter"
)

const (
	DefaultFrameSize = 1024
	// MaxFrameSize bounds a single frame allocation.
	MaxFrameSize = 1 << 16
)

var ErrInvalidFrameSize = errors.New("frame size must be between 1 and 65536")

// ValidFrameSize reports whether size is usable as a frame size.
func ValidFrameSize(size int) bool { return size > 0 && size <= MaxFrameSize }

// Segmenter slices a waveform into non-overlapping frames of a fixed size.
// Only the last frame is zero-padded. Frames can be iterated any number of
// times; each frame slice is freshly allocated.
type Segmenter struct {
	samples []float32
	size    int
}

func NewSegmenter(w *Waveform, size int) (*Segmenter, error) {
	if !ValidFrameSize(size) {
		return nil, ErrInvalidFrameSize
	}
	return &Segmenter{samples: w.Samples, size: size}, nil
}

func (s *Segmenter) Size() int { return s.size }

// Len is the number of frames, ceil(samples/size).
func (s *Segmenter) Len() int {
	return (len(s.samples) + s.size - 1) / s.size
}

// Frame returns frame i, padded to the frame size.
func (s *Segmenter) Frame(i int) []float32 {
	out := make([]float32, s.size)
	start := i * s.size
	if start >= len(s.samples) || i < 0 {
		return out
	}
	copy(out, s.samples[start:min(start+s.size, len(s.samples))])
	return out
}

// All yields (index, frame) pairs in waveform order.
func (s *Segmenter) All() iter.Seq2[int, []float32] {
	return func(yield func(int, []float32) bool) {
		for i := 0; i < s.Len(); i++ {
			if !yield(i, s.Frame(i)) {
				return
			}
		}
	}
}
