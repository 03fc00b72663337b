package cli

import (
	"path/filepath"
	"strings"
)

type jobPaths struct {
	Video         string
	Audio         string
	Transcription string
}

// derivePaths swaps the video extension for .mp3 and .txt unless explicit
// overrides are given. Collisions with existing files are allowed; the
// pipeline overwrites.
func derivePaths(videoPath, audioOverride, transcriptionOverride string) jobPaths {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))

	paths := jobPaths{
		Video:         videoPath,
		Audio:         base + ".mp3",
		Transcription: base + ".txt",
	}

	if strings.TrimSpace(audioOverride) != "" {
		paths.Audio = filepath.Clean(audioOverride)
	}
	if strings.TrimSpace(transcriptionOverride) != "" {
		paths.Transcription = filepath.Clean(transcriptionOverride)
	}

	return paths
}
