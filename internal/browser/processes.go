// File: internal/browser/processes.go
package browser

import (
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/overflowy/browserpilot/internal/config"
	"go.uber.org/zap"
)

// defaultBrowserProcessNames are the executables reaped when no explicit
// executable path is configured.
var defaultBrowserProcessNames = []string{"chromium", "chrome"}

// shouldReapStaleBrowsers decides whether launch is preceded by a kill pass.
// A prior run with quit_when_done disabled leaves its browser running, so a
// non-quitting configuration also reaps leftovers at the next start.
func shouldReapStaleBrowsers(c *config.BrowserConfig) bool {
	return !c.QuitWhenDone || c.KillBrowserBeforeStart || c.KillOrphansBeforeStart
}

// killStaleBrowsers terminates leftover browser processes by executable name
// before a new launch. A failed kill is not fatal; the processes may simply
// not exist.
func killStaleBrowsers(cfg *config.Config, logger *zap.Logger) {
	names := defaultBrowserProcessNames
	if p := cfg.Browser.ExecutablePath; p != "" {
		names = []string{filepath.Base(p)}
	}
	for _, name := range names {
		if err := killProcessByName(name); err != nil {
			logger.Debug("No stale browser process terminated.",
				zap.String("process", name), zap.Error(err))
			continue
		}
		logger.Info("Terminated stale browser process.", zap.String("process", name))
	}
}

// killProcessByName kills every process matching the given image name,
// platform appropriately.
func killProcessByName(name string) error {
	if runtime.GOOS == "windows" {
		return exec.Command("taskkill", "/im", name, "/f").Run()
	}
	return exec.Command("pkill", "-f", name).Run()
}
