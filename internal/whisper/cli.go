package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// EnvEnginePath overrides the whisper-cli binary resolved from PATH.
const EnvEnginePath = "VIDSCRIBE_WHISPER_PATH"

// CLIEngine runs transcription through the whisper.cpp command-line binary,
// reading back its JSON output to recover timed segments.
type CLIEngine struct {
	Executable string
	Logger     *zap.Logger
}

var _ Engine = (*CLIEngine)(nil)

func NewCLIEngine(logger *zap.Logger) (*CLIEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if override := strings.TrimSpace(os.Getenv(EnvEnginePath)); override != "" {
		if err := ensureExecutable(override); err != nil {
			return nil, fmt.Errorf("%s is not executable: %w", EnvEnginePath, err)
		}
		return &CLIEngine{Executable: override, Logger: logger}, nil
	}

	path, err := exec.LookPath("whisper-cli")
	if err != nil {
		return nil, fmt.Errorf("whisper-cli not found on PATH (install whisper.cpp or set %s): %w", EnvEnginePath, err)
	}

	return &CLIEngine{Executable: path, Logger: logger}, nil
}

func (e *CLIEngine) Transcribe(ctx context.Context, req TranscriptionRequest) (Result, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return Result{}, errors.New("audio path is required")
	}
	if strings.TrimSpace(req.ModelPath) == "" {
		return Result{}, errors.New("model path is required")
	}

	outBase := filepath.Join(os.TempDir(), fmt.Sprintf("vidscribe-%d", time.Now().UnixNano()))
	jsonOut := outBase + ".json"

	args := buildEngineArgs(req, outBase)

	cmd := exec.CommandContext(ctx, e.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	e.Logger.Debug("running whisper engine", zap.String("engine", e.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		return Result{}, fmt.Errorf("whisper transcribe failed: %w (%s)", err, errText)
	}

	defer os.Remove(jsonOut)
	content, err := os.ReadFile(jsonOut)
	if err != nil {
		return Result{}, fmt.Errorf("read whisper output: %w", err)
	}

	return parseEngineOutput(content)
}

func buildEngineArgs(req TranscriptionRequest, outBase string) []string {
	args := []string{"-m", req.ModelPath, "-f", req.AudioPath, "-oj", "-of", outBase}
	lang := strings.TrimSpace(req.Language)
	if lang != "" && lang != "auto" {
		args = append(args, "-l", lang)
	}
	return args
}

type engineOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseEngineOutput(content []byte) (Result, error) {
	var out engineOutput
	if err := json.Unmarshal(content, &out); err != nil {
		return Result{}, fmt.Errorf("decode whisper output: %w", err)
	}

	result := Result{Language: out.Result.Language}
	for _, entry := range out.Transcription {
		result.Segments = append(result.Segments, Segment{
			Start: time.Duration(entry.Offsets.From) * time.Millisecond,
			End:   time.Duration(entry.Offsets.To) * time.Millisecond,
			Text:  entry.Text,
		})
	}

	return result, nil
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}
