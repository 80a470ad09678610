package audio

import (
	"bytes"
	"fmt"
	"io"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

// PCMInfo describes the PCM stream inside a WAV container.
type PCMInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Frames     int
}

// ReadWAVInfo parses a WAV byte stream and returns its PCM parameters.
func ReadWAVInfo(b []byte) (PCMInfo, error) {
	dec := wav.NewDecoder(bytes.NewReader(b))
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return PCMInfo{}, fmt.Errorf("read wav header: %w", err)
	}
	if !dec.WasPCMAccessed() {
		if err := dec.FwdToPCM(); err != nil {
			return PCMInfo{}, fmt.Errorf("seek wav pcm chunk: %w", err)
		}
	}

	info := PCMInfo{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	if info.Channels > 0 && info.BitDepth > 0 {
		bytesPerFrame := info.Channels * info.BitDepth / 8
		info.Frames = int(dec.PCMLen()) / bytesPerFrame
	}
	return info, nil
}

// EncodePCM16 renders mono int16 samples as an in-memory WAV byte stream.
// Used to synthesize canonical audio without touching disk.
func EncodePCM16(samples []int, sampleRate int) ([]byte, error) {
	ws := &writerseeker.WriterSeeker{}
	enc := wav.NewEncoder(ws, sampleRate, 16, 1, 1)

	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           samples,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close wav encoder: %w", err)
	}

	out, err := io.ReadAll(ws.Reader())
	if err != nil {
		return nil, fmt.Errorf("read wav buffer: %w", err)
	}
	return out, nil
}
