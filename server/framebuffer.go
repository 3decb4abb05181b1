package server

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/smallnest/ringbuffer"
)

const bytesPerSample = 2 // 16-bit little-endian mono

// frameBuffer turns arbitrarily sized PCM chunks into fixed-size frames.
// It holds at most a few frames; completed frames are handed out as soon as
// they are available.
type frameBuffer struct {
	rb         *ringbuffer.RingBuffer
	frameSize  int
	frameBytes int
	buf        []byte
}

func newFrameBuffer(frameSize int) *frameBuffer {
	fb := frameSize * bytesPerSample
	return &frameBuffer{
		rb:         ringbuffer.New(fb * 4).SetBlocking(false),
		frameSize:  frameSize,
		frameBytes: fb,
		buf:        make([]byte, fb),
	}
}

// Write buffers p and calls emit for every frame it completes.
func (b *frameBuffer) Write(p []byte, emit func([]float32) error) error {
	for len(p) > 0 {
		if n := min(b.rb.Free(), len(p)); n > 0 {
			w, err := b.rb.Write(p[:n])
			p = p[w:]
			if err != nil && !errors.Is(err, ringbuffer.ErrTooMuchDataToWrite) && !errors.Is(err, ringbuffer.ErrIsFull) {
				return err
			}
		}
		if err := b.drain(emit); err != nil {
			return err
		}
	}
	return nil
}

func (b *frameBuffer) drain(emit func([]float32) error) error {
	for b.rb.Length() >= b.frameBytes {
		n, err := b.rb.Read(b.buf)
		if err != nil {
			return err
		}
		if n != b.frameBytes {
			return fmt.Errorf("short frame read: %d of %d bytes", n, b.frameBytes)
		}
		if err := emit(decodePCM16(b.buf, b.frameSize)); err != nil {
			return err
		}
	}
	return nil
}

// Pending is the number of buffered samples not yet emitted.
func (b *frameBuffer) Pending() int { return b.rb.Length() / bytesPerSample }

// Flush emits the trailing partial frame zero-padded to full size. A stray
// odd byte is dropped.
func (b *frameBuffer) Flush(emit func([]float32) error) error {
	n := b.rb.Length()
	if n < bytesPerSample {
		b.rb.Reset()
		return nil
	}
	tail := make([]byte, n)
	if _, err := b.rb.Read(tail); err != nil {
		return err
	}
	return emit(decodePCM16(tail[:n-n%bytesPerSample], b.frameSize))
}

// decodePCM16 converts little-endian 16-bit samples to [-1, 1] in a frame of
// size samples; missing samples stay zero.
func decodePCM16(b []byte, size int) []float32 {
	out := make([]float32, size)
	for i := 0; i+1 < len(b) && i/bytesPerSample < size; i += bytesPerSample {
		out[i/bytesPerSample] = float32(int16(binary.LittleEndian.Uint16(b[i:]))) / 32768.0
	}
	return out
}
