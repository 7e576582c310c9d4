package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/web"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web front-end",
	Long: `Start the HTTP server. Open the page, pick a mode, upload a photo
and the page follows the analysis through to the result.

POST /api/analyze accepts the same multipart upload ("photo", "mode")
and answers with the critique as JSON.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cmd, writerSink(os.Stdout))
		if err != nil {
			return err
		}
		defer a.close(ctx)

		addr := a.cfg.Listen
		if cmd.Flags().Changed("listen") {
			addr = flagListen
		}

		srv := web.New(a.client, web.Options{
			MaxUploadBytes: a.cfg.MaxUploadBytes,
			RequestTimeout: a.cfg.RequestTimeoutDuration,
			SessionTTL:     a.cfg.SessionTTLDuration,
			DefaultMode:    a.mode,
			Version:        Version,
		}, web.WithLogger(a.log), web.WithMetrics(a.metrics()))

		a.log.WithFields(logrus.Fields{
			"provider": a.client.Provider(),
			"model":    a.client.Model(),
		}).Info("Analysis backend configured")
		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", ":8080", "address to listen on")
	rootCmd.AddCommand(serveCmd)
}
