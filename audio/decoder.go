package audio

import (
	"context"
	"fmt"
	"strconv"

	"github.com/skillsenselab/callscribe/process"
)

// Decoder converts container audio on disk into canonical PCM WAV.
type Decoder interface {
	// Decode reads the container at srcPath and writes mono 16-bit linear PCM
	// WAV at sampleRate to dstPath. container selects the input demuxer;
	// empty means auto-detect.
	Decode(ctx context.Context, srcPath, dstPath, container string, sampleRate int) error
}

// demuxers maps container names to ffmpeg input format names.
var demuxers = map[string]string{
	"wav":  "wav",
	"mp3":  "mp3",
	"m4a":  "mov,mp4,m4a,3gp,3g2,mj2",
	"ogg":  "ogg",
	"flac": "flac",
	"webm": "matroska,webm",
}

// FFmpegDecoder shells out to ffmpeg for decode, resample, and downmix.
type FFmpegDecoder struct {
	// Path is the ffmpeg binary; "ffmpeg" resolves via PATH.
	Path string
}

// NewFFmpegDecoder creates a decoder using the given ffmpeg binary path.
func NewFFmpegDecoder(path string) *FFmpegDecoder {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegDecoder{Path: path}
}

// Decode implements Decoder.
func (d *FFmpegDecoder) Decode(ctx context.Context, srcPath, dstPath, container string, sampleRate int) error {
	args := []string{"-y", "-loglevel", "error"}
	if container != "" {
		demuxer, ok := demuxers[container]
		if !ok {
			return fmt.Errorf("no demuxer for container %q", container)
		}
		args = append(args, "-f", demuxer)
	}
	args = append(args,
		"-i", srcPath,
		"-ar", strconv.Itoa(sampleRate),
		"-ac", "1",
		"-acodec", "pcm_s16le",
		"-f", "wav",
		dstPath,
	)

	res, err := process.Run(ctx, process.Command{Binary: d.Path, Args: args})
	if err != nil {
		if res != nil && len(res.Stderr) > 0 {
			return fmt.Errorf("ffmpeg decode (%s): %w: %s", container, err, string(res.Stderr))
		}
		return fmt.Errorf("ffmpeg decode (%s): %w", container, err)
	}
	return nil
}
