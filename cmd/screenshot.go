// File: cmd/screenshot.go
package cmd

import (
	"fmt"
	"time"

	"github.com/overflowy/browserpilot/internal/browser"
	"github.com/overflowy/browserpilot/internal/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	screenshotURL   string
	screenshotTag   string
	screenshotEvery time.Duration
	screenshotUntil time.Duration
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Navigate to a URL and capture one or more screenshots.",
	Long: `Navigates to the given URL and saves a PNG under the configured
screenshots path. With --every the capture repeats at that interval, blocking
until --until elapses (or forever when --until is zero).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.GetLogger()
		if cfg.Logging.LogExceptions {
			defer observability.CapturePanic(logger)
		}

		ctx := cmd.Context()
		session, err := browser.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer session.Close()

		if out := session.Navigate(ctx, screenshotURL); !out.Ok() {
			return fmt.Errorf("navigating to %s: %w", screenshotURL, out)
		}

		if screenshotEvery > 0 {
			if out := session.CaptureEvery(ctx, screenshotEvery, screenshotUntil, screenshotTag); !out.Ok() {
				return out
			}
			return nil
		}

		path, out := session.SaveScreenshot(ctx, screenshotTag)
		if !out.Ok() {
			return out
		}
		logger.Info("Screenshot saved.", zap.String("path", path))
		return nil
	},
}

func init() {
	screenshotCmd.Flags().StringVar(&screenshotURL, "url", "", "URL to navigate to before capturing")
	screenshotCmd.Flags().StringVar(&screenshotTag, "tag", "", "tag embedded in the screenshot filename")
	screenshotCmd.Flags().DurationVar(&screenshotEvery, "every", 0, "capture repeatedly at this interval")
	screenshotCmd.Flags().DurationVar(&screenshotUntil, "until", 0, "stop repeating after this total duration")
	_ = screenshotCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(screenshotCmd)
}
