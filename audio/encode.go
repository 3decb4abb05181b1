package audio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Encode writes interleaved integer samples as a canonical 44-byte-header
// PCM wav. width is bytes per sample (1, 2 or 4); 8-bit values are written
// unsigned with the usual 128 offset.
func Encode(w io.Writer, sampleRate, channels, width int, interleaved []int32) error {
	if width != 1 && width != 2 && width != 4 {
		return &UnsupportedSampleWidthError{Width: width}
	}
	if channels < 1 {
		return fmt.Errorf("encode wav: %d channels", channels)
	}
	dataSize := len(interleaved) * width
	blockAlign := channels * width
	byteRate := sampleRate * blockAlign

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], formatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(width*8))
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))
	if _, err := w.Write(header); err != nil {
		return err
	}

	body := make([]byte, dataSize)
	for i, s := range interleaved {
		off := i * width
		switch width {
		case 1:
			body[off] = byte(s + 128)
		case 2:
			binary.LittleEndian.PutUint16(body[off:], uint16(int16(s)))
		case 4:
			binary.LittleEndian.PutUint32(body[off:], uint32(s))
		}
	}
	_, err := w.Write(body)
	return err
}
