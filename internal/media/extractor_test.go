package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeStubFFmpeg(t *testing.T, dir, script string) string {
	t.Helper()
	stubPath := filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(stubPath, []byte(script), 0o755))
	return stubPath
}

func TestBuildExtractArgs(t *testing.T) {
	t.Parallel()

	args := buildExtractArgs("/videos/movie.mp4", "/videos/movie.mp3")
	require.Equal(t, []string{
		"-nostdin", "-hide_banner", "-loglevel", "error",
		"-y",
		"-i", "/videos/movie.mp4",
		"-vn",
		"-c:a", "libmp3lame",
		"-q:a", "2",
		"/videos/movie.mp3",
	}, args)
}

func TestExtractAudioRequiresPaths(t *testing.T) {
	t.Parallel()

	e := &FFmpegExtractor{Executable: "/usr/bin/ffmpeg"}
	require.Error(t, e.ExtractAudio(context.Background(), "", "/tmp/out.mp3"))
	require.Error(t, e.ExtractAudio(context.Background(), "/tmp/in.mp4", ""))
}

func TestExtractAudioSurfacesFFmpegStderr(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	stubPath := writeStubFFmpeg(t, tempDir, `#!/bin/sh
>&2 echo "movie.mp4: Invalid data found when processing input"
exit 1
`)

	videoPath := filepath.Join(tempDir, "movie.mp4")
	require.NoError(t, os.WriteFile(videoPath, []byte("mp4-bytes"), 0o644))

	e := &FFmpegExtractor{Executable: stubPath}
	err := e.ExtractAudio(context.Background(), videoPath, filepath.Join(tempDir, "movie.mp3"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "ffmpeg failed")
	require.Contains(t, err.Error(), "Invalid data found when processing input")
}

func TestExtractAudioSucceeds(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	stubPath := writeStubFFmpeg(t, tempDir, `#!/bin/sh
for out in "$@"; do :; done
echo "mp3-bytes" > "$out"
`)

	videoPath := filepath.Join(tempDir, "movie.mp4")
	require.NoError(t, os.WriteFile(videoPath, []byte("mp4-bytes"), 0o644))

	audioPath := filepath.Join(tempDir, "movie.mp3")
	e := &FFmpegExtractor{Executable: stubPath}
	require.NoError(t, e.ExtractAudio(context.Background(), videoPath, audioPath))
	require.FileExists(t, audioPath)
}

func TestExtractAudioMissingVideo(t *testing.T) {
	t.Parallel()

	e := &FFmpegExtractor{Executable: "/usr/bin/ffmpeg"}
	err := e.ExtractAudio(context.Background(), "/does/not/exist.mp4", "/tmp/out.mp3")
	require.Error(t, err)
	require.Contains(t, err.Error(), "video file not found")
}
