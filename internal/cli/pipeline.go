package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"vidscribe/internal/download"
	"vidscribe/internal/media"
	"vidscribe/internal/whisper"
)

// runPipeline is the whole program: extract audio when needed, transcribe,
// write the transcript, optionally delete the intermediate audio file. Any
// failure aborts the remaining stages.
func (a *appState) runPipeline(ctx context.Context, videoPath string) error {
	videoPath = filepath.Clean(videoPath)
	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("video file not found: %w", err)
	}

	// Model names are checked before any expensive work so a typo does not
	// leave a freshly extracted audio file behind.
	if _, err := whisper.ValidateModel(a.model); err != nil {
		return err
	}

	paths := derivePaths(videoPath, a.audioPath, a.transcriptionPath)

	if err := a.extractIfNeeded(ctx, paths); err != nil {
		return err
	}

	transcript, err := a.runTranscription(ctx, paths.Audio)
	if err != nil {
		return err
	}

	if err := os.WriteFile(paths.Transcription, []byte(transcript), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	a.log().Info("transcript written", zap.String("path", paths.Transcription))

	if a.removeAudio {
		a.log().Info("removing intermediate audio file", zap.String("path", paths.Audio))
		if err := os.Remove(paths.Audio); err != nil {
			return fmt.Errorf("remove audio file: %w", err)
		}
	}

	fmt.Fprintf(a.outWriter(), "Transcript saved to %s\n", paths.Transcription)
	return nil
}

func (a *appState) extractIfNeeded(ctx context.Context, paths jobPaths) error {
	if !a.force {
		if _, err := os.Stat(paths.Audio); err == nil {
			a.log().Info("audio file already exists, skipping extraction", zap.String("audio", paths.Audio))
			return nil
		}
	}

	extractFn := a.extractFn
	if extractFn == nil {
		extractFn = a.extractAudio
	}

	a.log().Info("extracting audio", zap.String("video", paths.Video), zap.String("audio", paths.Audio))
	stopSpinner := startSpinner(a.progressEnabled(), "Extracting audio")
	started := time.Now()
	err := extractFn(ctx, paths.Video, paths.Audio)
	stopSpinner()
	if err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}
	a.log().Info("extraction finished", zap.Duration("elapsed", time.Since(started)))

	return nil
}

func (a *appState) runTranscription(ctx context.Context, audioPath string) (string, error) {
	transcribeFn := a.transcribeFn
	if transcribeFn == nil {
		transcribeFn = a.transcribeAudio
	}

	a.log().Info("transcribing audio", zap.String("audio", audioPath), zap.String("model", a.model), zap.String("language", a.language))
	stopSpinner := startSpinner(a.progressEnabled(), "Transcribing")
	started := time.Now()
	result, err := transcribeFn(ctx, audioPath)
	stopSpinner()
	if err != nil {
		a.log().Warn("transcription failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return "", err
	}
	a.log().Info("transcription finished",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("segments", len(result.Segments)),
		zap.String("language", result.Language))

	return joinSegments(result.Segments), nil
}

// joinSegments concatenates segment texts in model order with single spaces,
// discarding the timing metadata.
func joinSegments(segments []whisper.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

func (a *appState) extractAudio(ctx context.Context, videoPath, audioPath string) error {
	extractor, err := media.NewFFmpegExtractor(a.log())
	if err != nil {
		return err
	}
	return extractor.ExtractAudio(ctx, videoPath, audioPath)
}

func (a *appState) transcribeAudio(ctx context.Context, audioPath string) (whisper.Result, error) {
	audioPath = filepath.Clean(audioPath)
	if _, err := os.Stat(audioPath); err != nil {
		return whisper.Result{}, fmt.Errorf("audio file not found: %w", err)
	}

	model, err := a.ensureModelAvailable(ctx)
	if err != nil {
		return whisper.Result{}, err
	}

	engine, err := whisper.NewCLIEngine(a.log())
	if err != nil {
		return whisper.Result{}, err
	}

	return engine.Transcribe(ctx, whisper.TranscriptionRequest{
		AudioPath: audioPath,
		ModelPath: model.Path,
		Language:  a.language,
	})
}

func (a *appState) ensureModelAvailable(ctx context.Context) (whisper.ResolvedModel, error) {
	modelDir, err := a.modelStorageDir()
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	resolved, err := whisper.ResolveModel(a.model, modelDir)
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	if !resolved.NeedsDownload {
		return resolved, nil
	}

	if !a.autoDownload {
		return whisper.ResolvedModel{}, fmt.Errorf(
			"model %q is missing at %s; run `vidscribe setup --model %s` or use --auto-download=true",
			resolved.Name, resolved.Path, resolved.Name)
	}

	a.log().Info("model not found, downloading", zap.String("model", resolved.Name), zap.String("destination", resolved.Path))
	if err := download.Fetch(ctx, download.Options{
		URL:            resolved.URL,
		Destination:    resolved.Path,
		ExpectedSHA256: resolved.SHA256,
		NoProgress:     a.noProgress,
		Logger:         a.log(),
	}); err != nil {
		return whisper.ResolvedModel{}, fmt.Errorf("download model %q: %w", resolved.Name, err)
	}

	resolved.NeedsDownload = false
	return resolved, nil
}
