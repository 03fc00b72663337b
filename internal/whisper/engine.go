// Package whisper selects pretrained speech models and runs transcription.
package whisper

import (
	"context"
	"time"
)

// Segment is one contiguous span of recognized speech.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

type TranscriptionRequest struct {
	AudioPath string
	ModelPath string
	Language  string
}

// Result holds the ordered segments plus run metadata from the engine.
type Result struct {
	Segments []Segment
	Language string
}

type Engine interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (Result, error)
}
