package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	formatPCM        = 0x0001
	formatExtensible = 0xFFFE
)

// Waveform is a decoded clip, normalised to float32 in [-1, 1] and
// downmixed to mono. It is not modified after Load/Decode returns.
type Waveform struct {
	Samples     []float32
	SampleRate  int
	Channels    int // channel count of the source container
	SampleWidth int // bytes per sample in the source container
	Duration    float64
}

func (w *Waveform) Len() int { return len(w.Samples) }

type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Path == "" {
		return "unsupported audio format: " + e.Reason
	}
	return fmt.Sprintf("unsupported audio format %s: %s", e.Path, e.Reason)
}

type UnsupportedSampleWidthError struct {
	Width int // bytes
}

func (e *UnsupportedSampleWidthError) Error() string {
	return fmt.Sprintf("unsupported sample width: %d bytes", e.Width)
}

// Load reads a PCM wav file from disk.
func Load(path string) (*Waveform, error) {
	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		return nil, &UnsupportedFormatError{Path: path, Reason: "expected .wav"}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w, err := Decode(f)
	var ufe *UnsupportedFormatError
	if errors.As(err, &ufe) && ufe.Path == "" {
		ufe.Path = path
	}
	return w, err
}

type fmtChunk struct {
	format     uint16
	channels   int
	sampleRate int
	blockAlign int
	bits       int
}

// Decode parses a RIFF/WAVE stream.
func Decode(r io.Reader) (*Waveform, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	if len(raw) < 12 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return nil, &UnsupportedFormatError{Reason: "missing RIFF/WAVE header"}
	}

	var (
		hdr  *fmtChunk
		data []byte
	)
	pos := 12
	for pos+8 <= len(raw) {
		id := string(raw[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(raw[pos+4 : pos+8]))
		body := raw[pos+8:]
		if size > len(body) || size < 0 {
			// streamed wavs sometimes carry a placeholder length
			size = len(body)
		}
		body = body[:size]

		switch id {
		case "fmt ":
			hdr, err = parseFmt(body)
			if err != nil {
				return nil, err
			}
		case "data":
			data = body
		}
		pos += 8 + size
		if size%2 == 1 {
			pos++
		}
		if hdr != nil && data != nil {
			break
		}
	}
	if hdr == nil {
		return nil, &UnsupportedFormatError{Reason: "missing fmt chunk"}
	}
	if data == nil {
		return nil, &UnsupportedFormatError{Reason: "missing data chunk"}
	}
	return decodePCM(hdr, data)
}

func parseFmt(b []byte) (*fmtChunk, error) {
	if len(b) < 16 {
		return nil, &UnsupportedFormatError{Reason: "short fmt chunk"}
	}
	h := &fmtChunk{
		format:     binary.LittleEndian.Uint16(b[0:2]),
		channels:   int(binary.LittleEndian.Uint16(b[2:4])),
		sampleRate: int(binary.LittleEndian.Uint32(b[4:8])),
		blockAlign: int(binary.LittleEndian.Uint16(b[12:14])),
		bits:       int(binary.LittleEndian.Uint16(b[14:16])),
	}
	if h.format == formatExtensible {
		// sub-format GUID starts at offset 24; its first two bytes carry the tag
		if len(b) < 26 {
			return nil, &UnsupportedFormatError{Reason: "short extensible fmt chunk"}
		}
		h.format = binary.LittleEndian.Uint16(b[24:26])
	}
	if h.format != formatPCM {
		return nil, &UnsupportedFormatError{Reason: fmt.Sprintf("format tag 0x%04x is not integer PCM", h.format)}
	}
	if h.channels < 1 || h.channels > 2 {
		return nil, &UnsupportedFormatError{Reason: fmt.Sprintf("%d channels", h.channels)}
	}
	if h.sampleRate <= 0 {
		return nil, &UnsupportedFormatError{Reason: "zero sample rate"}
	}
	return h, nil
}

func decodePCM(h *fmtChunk, data []byte) (*Waveform, error) {
	width := h.bits / 8
	if h.bits%8 != 0 || (width != 1 && width != 2 && width != 4) {
		return nil, &UnsupportedSampleWidthError{Width: (h.bits + 7) / 8}
	}
	block := width * h.channels
	n := len(data) / block

	samples := make([]float32, n)
	rd := bytes.NewReader(data[:n*block])
	buf := make([]byte, block)
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(rd, buf); err != nil {
			return nil, fmt.Errorf("read sample %d: %w", i, err)
		}
		var sum float64
		for c := 0; c < h.channels; c++ {
			sum += normalize(buf[c*width:(c+1)*width], width)
		}
		samples[i] = float32(sum / float64(h.channels))
	}

	return &Waveform{
		Samples:     samples,
		SampleRate:  h.sampleRate,
		Channels:    h.channels,
		SampleWidth: width,
		Duration:    float64(n) / float64(h.sampleRate),
	}, nil
}

// normalize converts one little-endian integer sample to [-1, 1].
func normalize(b []byte, width int) float64 {
	switch width {
	case 1:
		return (float64(b[0]) - 128) / 128.0
	case 2:
		return float64(int16(binary.LittleEndian.Uint16(b))) / 32768.0
	default:
		return float64(int32(binary.LittleEndian.Uint32(b))) / 2147483648.0
	}
}
