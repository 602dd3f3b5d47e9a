package render

import (
	"encoding/binary"
	"fmt"
	"os"
)

// EncodeWAV wraps interleaved 16-bit PCM samples in a RIFF/WAV container
// (format 1, little-endian)
func EncodeWAV(samples []int16, sampleRate int, numChannels int) []byte {
	dataSize := len(samples) * 2
	byteRate := sampleRate * numChannels * 2
	blockAlign := numChannels * 2
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], uint16(numChannels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[44+i*2:], uint16(s))
	}
	return out
}

// WriteWAVFile renders the samples to a WAV file on disk
func WriteWAVFile(path string, samples []int16, sampleRate int) error {
	data := EncodeWAV(samples, sampleRate, channels)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write wav %s: %w", path, err)
	}
	return nil
}
