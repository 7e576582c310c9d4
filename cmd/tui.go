package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/session"
	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/tui"
)

var flagTheme string
var flagLogFile string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive terminal UI",
	Long: `Launch an interactive terminal UI. Type the path of a photo, pick a
mode with tab (or 1-3 while the path is empty) and press Enter. The
critique is shown as a ranked, scrollable report; press r to evaluate
another photo.

The UI owns the terminal, so logs are discarded unless --log-file is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cmd, fileSink(flagLogFile))
		if err != nil {
			return err
		}
		defer a.close(ctx)

		machine := session.NewMachine(a.mode,
			session.WithMetrics(a.metrics()),
			session.WithLogger(a.log),
		)
		t := &tui.TUI{
			Analyzer: a.client,
			Machine:  machine,
			MaxBytes: a.cfg.MaxUploadBytes,
			Theme:    flagTheme,
			Backend:  fmt.Sprintf("%s/%s", a.client.Provider(), a.client.Model()),
			Log:      a.log,
		}
		return t.Run(ctx)
	},
}

func init() {
	tuiCmd.Flags().StringVar(&flagTheme, "theme", "dark", "Color theme: dark, light")
	tuiCmd.Flags().StringVar(&flagLogFile, "log-file", "", "append logs to this file")
	rootCmd.AddCommand(tuiCmd)
}
