package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/photo"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Critique a single photo and print the result as JSON",
	Long: `Send one photo to the configured model and print the critique.

The photo must be a JPEG, PNG or WEBP file. The result is validated
against the critique schema before it is printed; a response that is
missing a field or has an out-of-range score is an error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cmd, writerSink(os.Stderr))
		if err != nil {
			return err
		}
		defer a.close(ctx)

		img, err := photo.Load(args[0], a.cfg.MaxUploadBytes)
		if err != nil {
			return err
		}

		if a.cfg.RequestTimeoutDuration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, a.cfg.RequestTimeoutDuration)
			defer cancel()
		}

		start := time.Now()
		result, err := a.client.Analyze(ctx, img, a.mode)
		if err != nil {
			return fmt.Errorf("analysis of %s failed: %w", img.Name, err)
		}
		duration := time.Since(start)

		critique := model.Critique{
			Image:       img.Name,
			Mode:        a.mode,
			Result:      *result,
			Usage:       result.Usage,
			Model:       a.client.Model(),
			Provider:    a.client.Provider(),
			EvaluatedAt: time.Now().UTC(),
			DurationMs:  duration.Milliseconds(),
		}

		a.log.WithFields(logrus.Fields{
			"image":       img.Name,
			"score":       result.Score,
			"duration_ms": critique.DurationMs,
		}).Debug("Analysis completed")

		out, err := json.MarshalIndent(critique, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal critique: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
