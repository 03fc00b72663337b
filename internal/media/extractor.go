// Package media extracts audio tracks from video containers.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Extractor writes the audio track of videoPath to audioPath as MP3,
// overwriting any existing file at that path.
type Extractor interface {
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
}

// FFmpegExtractor shells out to ffmpeg for demuxing and MP3 encoding.
type FFmpegExtractor struct {
	Executable string
	Logger     *zap.Logger
}

var _ Extractor = (*FFmpegExtractor)(nil)

func NewFFmpegExtractor(logger *zap.Logger) (*FFmpegExtractor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found on PATH: %w", err)
	}

	return &FFmpegExtractor{Executable: path, Logger: logger}, nil
}

func (e *FFmpegExtractor) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	if strings.TrimSpace(videoPath) == "" {
		return errors.New("video path is required")
	}
	if strings.TrimSpace(audioPath) == "" {
		return errors.New("audio path is required")
	}

	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("video file not found: %w", err)
	}

	if dir := filepath.Dir(audioPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create audio directory: %w", err)
		}
	}

	args := buildExtractArgs(videoPath, audioPath)

	cmd := exec.CommandContext(ctx, e.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	e.Logger.Debug("running ffmpeg", zap.String("ffmpeg", e.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if errText == "" {
			return fmt.Errorf("ffmpeg failed: %w", err)
		}
		return fmt.Errorf("ffmpeg failed: %w (%s)", err, errText)
	}

	return nil
}

func buildExtractArgs(videoPath, audioPath string) []string {
	return []string{
		"-nostdin", "-hide_banner", "-loglevel", "error",
		"-y",
		"-i", videoPath,
		"-vn",
		"-c:a", "libmp3lame",
		"-q:a", "2",
		audioPath,
	}
}
