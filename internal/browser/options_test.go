// File: internal/browser/options_test.go
package browser

import (
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/overflowy/browserpilot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAllocatorOptions(t *testing.T) {
	base := len(chromedp.DefaultExecAllocatorOptions)

	t.Run("defaults add only the headless flag", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		opts, err := buildAllocatorOptions(&cfg.Browser)
		require.NoError(t, err)
		assert.Len(t, opts, base+1)
	})

	t.Run("every configured key contributes an option", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		cfg.Browser.DisableSandbox = true
		cfg.Browser.StartMaximized = true
		cfg.Browser.UserAgent = "pilot/1.0"
		cfg.Browser.ProfilePath = "/tmp/profile"
		cfg.Browser.DownloadPath = "/tmp/downloads"
		cfg.Browser.WindowSize = "1280x800"
		cfg.Browser.ExecutablePath = "/usr/bin/chromium"

		opts, err := buildAllocatorOptions(&cfg.Browser)
		require.NoError(t, err)
		assert.Len(t, opts, base+len(allocatorTable))
	})

	t.Run("malformed window size is rejected", func(t *testing.T) {
		// Validate would have caught this at load; the builder still guards
		// against a config constructed by hand.
		cfg := config.NewDefaultConfig()
		cfg.Browser.WindowSize = "wide"
		_, err := buildAllocatorOptions(&cfg.Browser)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrConfiguration)
	})
}
