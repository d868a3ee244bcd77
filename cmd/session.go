// File: cmd/session.go
package cmd

import (
	"fmt"

	"github.com/overflowy/browserpilot/internal/browser"
	"github.com/overflowy/browserpilot/internal/observability"
	"github.com/spf13/cobra"
)

var sessionURL string

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Save or restore browser session state (URL plus cookies).",
}

var sessionSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Navigate to a URL and persist the session to the configured session_path.",
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

		if sessionURL != "" {
			if out := session.Navigate(ctx, sessionURL); !out.Ok() {
				return fmt.Errorf("navigating to %s: %w", sessionURL, out)
			}
		}
		if out := session.SaveSession(ctx); !out.Ok() {
			return out
		}
		return nil
	},
}

var sessionRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the session saved at the configured session_path.",
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

		if out := session.RestoreSession(ctx); !out.Ok() {
			return out
		}
		return nil
	},
}

func init() {
	sessionSaveCmd.Flags().StringVar(&sessionURL, "url", "", "URL to navigate to before saving")
	sessionCmd.AddCommand(sessionSaveCmd)
	sessionCmd.AddCommand(sessionRestoreCmd)
	rootCmd.AddCommand(sessionCmd)
}
