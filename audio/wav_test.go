package audio

import "testing"

func TestReadWAVInfo(t *testing.T) {
	samples := make([]int, 4800) // 300ms at 16kHz
	b, err := EncodePCM16(samples, 16000)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	info, err := ReadWAVInfo(b)
	if err != nil {
		t.Fatalf("read info: %v", err)
	}
	if info.SampleRate != 16000 {
		t.Errorf("expected 16000 Hz, got %d", info.SampleRate)
	}
	if info.Channels != 1 {
		t.Errorf("expected mono, got %d channels", info.Channels)
	}
	if info.BitDepth != 16 {
		t.Errorf("expected 16-bit, got %d", info.BitDepth)
	}
	if info.Frames != 4800 {
		t.Errorf("expected 4800 frames, got %d", info.Frames)
	}
}

func TestReadWAVInfoGarbage(t *testing.T) {
	if _, err := ReadWAVInfo([]byte("definitely not a RIFF stream")); err == nil {
		t.Fatal("expected error for non-WAV bytes")
	}
}

func TestReadWAVInfoEmptyAudio(t *testing.T) {
	b, err := EncodePCM16(nil, 16000)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	info, err := ReadWAVInfo(b)
	if err != nil {
		t.Fatalf("read info: %v", err)
	}
	if info.Frames != 0 {
		t.Errorf("expected 0 frames, got %d", info.Frames)
	}
}
