package audio

import "fmt"

// Blob is an uploaded audio file: raw bytes plus the declared container hint.
// Immutable once received; its lifetime is one request.
type Blob struct {
	// Bytes is the raw upload content.
	Bytes []byte
	// Hint is the declared MIME type or file extension (e.g. "audio/mpeg",
	// ".mp3", "mp3"). It is a hint only and is never trusted.
	Hint string
	// Filename is the original upload filename, kept for annotation.
	Filename string
}

// CanonicalAudio is the normalized decode result: mono 16-bit linear PCM in a
// WAV container at the configured sample rate. It is owned by the pipeline
// invocation that created it.
type CanonicalAudio struct {
	// WAV holds the full canonical WAV byte stream handed to backends.
	WAV []byte
	// SampleRate is the PCM sample rate in Hz.
	SampleRate int
	// Channels is always 1.
	Channels int
	// BitDepth is always 16.
	BitDepth int
	// Frames is the number of PCM frames decoded.
	Frames int
	// Container is the container that won the probe.
	Container string
}

// Config holds audio normalization configuration.
type Config struct {
	// SampleRate is the canonical PCM sample rate in Hz.
	SampleRate int `yaml:"sample_rate" mapstructure:"sample_rate"`
	// FallbackChain is the fixed probe order for supported containers. The
	// declared and sniffed containers are promoted to the front at runtime.
	FallbackChain []string `yaml:"fallback_chain" mapstructure:"fallback_chain"`
	// FFmpegPath is the ffmpeg binary used for decode and resample.
	FFmpegPath string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	// TempDir overrides the scratch directory parent; empty means os.TempDir.
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if len(c.FallbackChain) == 0 {
		c.FallbackChain = SupportedContainers()
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive (got: %d)", c.SampleRate)
	}
	for _, name := range c.FallbackChain {
		if !IsSupportedContainer(name) {
			return fmt.Errorf("audio.fallback_chain contains unsupported container %q (supported: %v)",
				name, SupportedContainers())
		}
	}
	return nil
}
