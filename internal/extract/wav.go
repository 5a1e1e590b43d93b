package extract

import (
	"encoding/binary"
	"fmt"
)

// decodeWAV parses a PCM16 RIFF/WAVE capture into normalized mono
// samples in [-1, 1]. Stereo captures are mixed down. Malformed input
// fails fast; the caller falls back to the reduced extraction tier.
func decodeWAV(capture []byte) (samples []float64, sampleRate int, err error) {
	if len(capture) < 44 {
		return nil, 0, fmt.Errorf("wav: header truncated")
	}
	if string(capture[0:4]) != "RIFF" || string(capture[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("wav: not a RIFF/WAVE stream")
	}

	var (
		channels      int
		bitsPerSample int
		data          []byte
	)

	offset := 12
	for offset+8 <= len(capture) {
		chunkID := string(capture[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(capture[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(capture) {
			chunkSize = len(capture) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, 0, fmt.Errorf("wav: fmt chunk too small")
			}
			format := binary.LittleEndian.Uint16(capture[body : body+2])
			if format != 1 { // PCM only
				return nil, 0, fmt.Errorf("wav: unsupported format %d", format)
			}
			channels = int(binary.LittleEndian.Uint16(capture[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(capture[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(capture[body+14 : body+16]))
		case "data":
			data = capture[body : body+chunkSize]
		}

		// Chunks are word-aligned.
		offset = body + chunkSize + chunkSize%2
	}

	if sampleRate <= 0 || channels <= 0 || data == nil {
		return nil, 0, fmt.Errorf("wav: missing fmt or data chunk")
	}
	if bitsPerSample != 16 {
		return nil, 0, fmt.Errorf("wav: unsupported bit depth %d", bitsPerSample)
	}

	frameBytes := 2 * channels
	frames := len(data) / frameBytes
	if frames == 0 {
		return nil, 0, fmt.Errorf("wav: empty data chunk")
	}

	samples = make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			raw := int16(binary.LittleEndian.Uint16(data[i*frameBytes+2*c:]))
			sum += float64(raw) / 32768
		}
		samples[i] = sum / float64(channels)
	}
	return samples, sampleRate, nil
}
