package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// loadInput returns the n input samples of a run. Without a path every
// sample is (1,1); otherwise the WAV samples fill the real parts, truncated
// or zero padded to n.
func loadInput(path string, n int) ([]complex64, error) {
	if path == "" {
		x := make([]complex64, n)
		for i := range x {
			x[i] = complex(1, 1)
		}
		return x, nil
	}
	samples, err := loadWAVSamples(inputSampleRate, path)
	if err != nil {
		return nil, err
	}
	return samplesToInput(samples, n), nil
}

func samplesToInput(samples []float32, n int) []complex64 {
	x := make([]complex64, n)
	for i := 0; i < n && i < len(samples); i++ {
		x[i] = complex(samples[i], 0)
	}
	return x
}

// loadWAVSamples decodes the WAV at path and returns stereo-averaged samples
// at sampleRate.
func loadWAVSamples(sampleRate int, path string) ([]float32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	stream, err := wav.DecodeWithSampleRate(sampleRate, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", path, err)
	}
	decoded, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("reading decoded %q: %w", path, err)
	}
	samples := decodeStereoI16ToFloat(decoded)
	if len(samples) == 0 {
		return nil, fmt.Errorf("wav %q has no audio data", path)
	}
	return samples, nil
}

func decodeStereoI16ToFloat(pcm []byte) []float32 {
	frameCount := len(pcm) / stereoFrameBytes
	if frameCount == 0 {
		return nil
	}
	samples := make([]float32, frameCount)
	for i := range samples {
		offset := i * stereoFrameBytes
		left := int16(binary.LittleEndian.Uint16(pcm[offset : offset+2]))
		right := int16(binary.LittleEndian.Uint16(pcm[offset+2 : offset+4]))
		samples[i] = (float32(left) + float32(right)) * pcm16Scale
	}
	return samples
}
