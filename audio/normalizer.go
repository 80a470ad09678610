package audio

import (
	"context"
	"os"
	"path/filepath"

	apperrors "github.com/skillsenselab/callscribe/errors"
	"github.com/skillsenselab/callscribe/logger"
)

// Normalizer converts uploads of unknown container type into CanonicalAudio.
type Normalizer struct {
	cfg Config
	dec Decoder
	log *logger.Logger
}

// NewNormalizer creates a Normalizer. A nil decoder defaults to ffmpeg.
func NewNormalizer(cfg Config, dec Decoder, log *logger.Logger) *Normalizer {
	cfg.ApplyDefaults()
	if dec == nil {
		dec = NewFFmpegDecoder(cfg.FFmpegPath)
	}
	return &Normalizer{
		cfg: cfg,
		dec: dec,
		log: log.WithComponent("normalizer"),
	}
}

// Normalize probes the blob's container, decodes it, and re-encodes to
// canonical PCM. All errors are typed; scratch files are removed on every
// exit path.
func (n *Normalizer) Normalize(ctx context.Context, blob Blob) (*CanonicalAudio, error) {
	if len(blob.Bytes) == 0 {
		return nil, apperrors.EmptyOrCorrupt("upload contains no bytes")
	}

	scratch, err := os.MkdirTemp(n.cfg.TempDir, "callscribe-normalize-*")
	if err != nil {
		return nil, apperrors.EncodingFailed("cannot allocate scratch storage").WithCause(err)
	}
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil {
			n.log.Warn("Scratch cleanup failed", logger.ErrorFields("normalize", rmErr))
		}
	}()

	srcPath := filepath.Join(scratch, "upload.bin")
	if err := os.WriteFile(srcPath, blob.Bytes, 0o600); err != nil {
		return nil, apperrors.EncodingFailed("cannot stage upload for decoding").WithCause(err)
	}

	candidates := probeOrder(blob, n.cfg.FallbackChain)
	dstPath := filepath.Join(scratch, "canonical.wav")

	var (
		decoded   string
		lastErr   error
		attempted []string
	)
	for _, container := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.EncodingFailed("normalization canceled").WithCause(err)
		}
		attempted = append(attempted, container)
		if err := n.dec.Decode(ctx, srcPath, dstPath, container, n.cfg.SampleRate); err != nil {
			lastErr = err
			n.log.Debug("Decode attempt failed", logger.Fields(
				logger.FieldContainer, container,
				logger.FieldError, err.Error(),
			))
			continue
		}
		decoded = container
		break
	}
	if decoded == "" {
		return nil, apperrors.UnsupportedContainer(blob.Hint, attempted).WithCause(lastErr)
	}

	out, err := os.ReadFile(dstPath)
	if err != nil {
		return nil, apperrors.EncodingFailed("cannot read canonical output").WithCause(err)
	}

	info, err := ReadWAVInfo(out)
	if err != nil {
		return nil, apperrors.EncodingFailed("canonical output is not valid WAV").WithCause(err)
	}
	if info.Channels != 1 || info.SampleRate != n.cfg.SampleRate || info.BitDepth != 16 {
		return nil, apperrors.EncodingFailed("canonical output has wrong PCM parameters").
			WithDetail("sample_rate", info.SampleRate).
			WithDetail("channels", info.Channels).
			WithDetail("bit_depth", info.BitDepth)
	}
	if info.Frames == 0 {
		return nil, apperrors.EmptyOrCorrupt("decode produced zero-length audio")
	}

	n.log.Debug("Normalized upload", logger.Fields(
		logger.FieldContainer, decoded,
		"frames", info.Frames,
		"sample_rate", info.SampleRate,
	))

	return &CanonicalAudio{
		WAV:        out,
		SampleRate: info.SampleRate,
		Channels:   info.Channels,
		BitDepth:   info.BitDepth,
		Frames:     info.Frames,
		Container:  decoded,
	}, nil
}
