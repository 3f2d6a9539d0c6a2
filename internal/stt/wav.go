package stt

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/voxide/voxide/internal/audio"
)

// EncodeWAVFile writes a recording to path as a 16-bit PCM WAV file.
func EncodeWAVFile(path string, rec audio.Recording) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav file: %w", err)
	}
	defer f.Close()

	channels := rec.Channels
	if channels <= 0 {
		channels = 1
	}
	rate := rec.SampleRate
	if rate <= 0 {
		rate = audio.SampleRate
	}

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  rate,
		},
		Data:           make([]int, len(rec.PCM)/2),
		SourceBitDepth: 16,
	}
	for i := range buf.Data {
		lo := uint16(rec.PCM[2*i])
		hi := uint16(rec.PCM[2*i+1])
		buf.Data[i] = int(int16(lo | hi<<8))
	}

	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav file: %w", err)
	}
	return nil
}
