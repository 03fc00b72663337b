package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"vidscribe/internal/platform"
	"vidscribe/internal/whisper"
)

func newModelsCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List known whisper models and their install status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			modelDir, err := platform.ResolveModelDir(app.modelDir)
			if err != nil {
				return err
			}

			writer := table.NewWriter()
			writer.SetOutputMirror(cmd.OutOrStdout())
			writer.AppendHeader(table.Row{"Model", "File", "Status"})

			for _, name := range whisper.ModelNames() {
				resolved, err := whisper.ResolveModel(name, modelDir)
				if err != nil {
					return err
				}

				status := "installed"
				if resolved.NeedsDownload {
					status = "not downloaded"
				}
				writer.AppendRow(table.Row{name, resolved.Path, status})
			}

			writer.Render()
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	cmd.Flags().StringVar(&app.modelDir, "model-dir", app.modelDir, "Directory where models are stored")

	return cmd
}
