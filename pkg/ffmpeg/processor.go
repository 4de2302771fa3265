// Package ffmpeg wraps the ffmpeg and ffprobe binaries for the single
// transformation this service needs: shrinking an over-budget video once.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Processor handles media compression using ffmpeg.
type Processor struct {
	ffmpegPath  string
	ffprobePath string
}

// NewProcessor creates a new processor.
// It will attempt to find ffmpeg and ffprobe in PATH.
func NewProcessor() (*Processor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	return &Processor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}, nil
}

// CompressVideo re-encodes a video into a smaller rendition: 480p ceiling,
// x264 at a high CRF, 96k AAC audio. One pass, no quality ladder; the
// caller decides what to do if the result still does not fit.
func (p *Processor) CompressVideo(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, p.ffmpegPath, compressArgs(inputPath, outputPath)...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("compress video: %w", err)
	}

	stat, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("stat compressed output: %w", err)
	}
	if stat.Size() == 0 {
		return fmt.Errorf("compressed output is empty")
	}
	return nil
}

func compressArgs(inputPath, outputPath string) []string {
	return []string{
		"-i", inputPath,
		"-vf", "scale=-2:480",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "32",
		"-c:a", "aac",
		"-b:a", "96k",
		"-y",
		outputPath,
	}
}

// Duration probes a media file and returns its duration in seconds.
func (p *Processor) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	var parsed struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(output, &parsed); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if parsed.Format.Duration == "" {
		return 0, fmt.Errorf("no duration in ffprobe output")
	}

	dur, err := strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return dur, nil
}

// IsAvailable checks if ffmpeg is available on the system.
func IsAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	if err != nil {
		return false
	}
	_, err = exec.LookPath("ffprobe")
	return err == nil
}
