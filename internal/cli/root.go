package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"vidscribe/internal/config"
	"vidscribe/internal/logging"
	"vidscribe/internal/platform"
	"vidscribe/internal/version"
	"vidscribe/internal/whisper"
)

type appState struct {
	verbose    bool
	jsonLogs   bool
	noProgress bool

	audioPath         string
	transcriptionPath string
	force             bool
	removeAudio       bool
	model             string
	modelDir          string
	language          string
	autoDownload      bool

	configPath string
	logger     *zap.Logger
	out        io.Writer

	extractFn    func(ctx context.Context, videoPath, audioPath string) error
	transcribeFn func(ctx context.Context, audioPath string) (whisper.Result, error)
}

func NewRootCmd() *cobra.Command {
	app := &appState{
		model:        whisper.DefaultModel,
		language:     "auto",
		autoDownload: true,
		out:          os.Stdout,
	}
	app.extractFn = app.extractAudio
	app.transcribeFn = app.transcribeAudio
	return newRootCmd(app)
}

func newRootCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vidscribe <video-file>",
		Short:         "Extract audio from a video file and transcribe it with a whisper model",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.logger = logger
			app.language = sanitizeLanguage(app.language)
			return app.applyConfigFile(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runPipeline(cmd.Context(), args[0])
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	// Snake_case spellings like --audio_path resolve to the dashed flag names.
	cmd.SetGlobalNormalizationFunc(normalizeFlagName)

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageAndDownloadFlags(cmd, app)
	bindPipelineFlags(cmd, app)

	cmd.AddCommand(newModelsCmd(app))
	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.Flags().BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
}

func bindProgressFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
}

func bindModelFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVarP(&app.model, "model", "m", app.model,
		fmt.Sprintf("Whisper model, one of: %s", strings.Join(whisper.ModelNames(), ", ")))
	cmd.Flags().StringVar(&app.modelDir, "model-dir", app.modelDir, "Directory where models are stored")
}

func bindLanguageAndDownloadFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.language, "language", app.language, "Language code (auto|en|de|...) for transcription")
	cmd.Flags().BoolVar(&app.autoDownload, "auto-download", app.autoDownload, "Automatically download missing models")
}

func bindPipelineFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVarP(&app.audioPath, "audio-path", "a", app.audioPath,
		"Audio file path; defaults to the video path with an .mp3 extension")
	cmd.Flags().StringVarP(&app.transcriptionPath, "transcription", "t", app.transcriptionPath,
		"Transcript file path; defaults to the video path with a .txt extension")
	cmd.Flags().BoolVarP(&app.force, "force", "f", app.force,
		"Re-extract audio even when the audio file already exists")
	cmd.Flags().BoolVarP(&app.removeAudio, "remove-audio", "r", app.removeAudio,
		"Delete the extracted audio file after transcription")
}

// applyConfigFile fills in defaults from the user's config file for any flag
// not given on the command line.
func (a *appState) applyConfigFile(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		resolved, err := platform.ResolveConfigPath()
		if err != nil {
			a.log().Debug("config path unresolved, skipping config file", zap.Error(err))
			return nil
		}
		path = resolved
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if cfg.Model != "" && !flags.Changed("model") {
		a.model = cfg.Model
	}
	if cfg.ModelDir != "" && !flags.Changed("model-dir") {
		a.modelDir = cfg.ModelDir
	}
	if cfg.Language != "" && !flags.Changed("language") {
		a.language = sanitizeLanguage(cfg.Language)
	}
	if cfg.AutoDownload != nil && !flags.Changed("auto-download") {
		a.autoDownload = *cfg.AutoDownload
	}

	return nil
}

func (a *appState) modelStorageDir() (string, error) {
	dir, err := platform.ResolveModelDir(a.modelDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}

func sanitizeLanguage(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	if trimmed == "" {
		return "auto"
	}
	return trimmed
}
