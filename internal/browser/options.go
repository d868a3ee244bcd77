// File: internal/browser/options.go
package browser

import (
	"github.com/chromedp/chromedp"
	"github.com/overflowy/browserpilot/internal/config"
)

// allocatorBinding maps one config key to the allocator option(s) it
// produces. apply returns nil when the setting is at its zero value.
type allocatorBinding struct {
	key   string
	apply func(*config.BrowserConfig) ([]chromedp.ExecAllocatorOption, error)
}

// allocatorTable is the closed, ordered set of browser config keys that
// influence the launcher. Unrecognized config keys never reach the browser
// because nothing outside this table is consulted.
var allocatorTable = []allocatorBinding{
	{"headless", func(c *config.BrowserConfig) ([]chromedp.ExecAllocatorOption, error) {
		if !c.Headless {
			return []chromedp.ExecAllocatorOption{chromedp.Flag("headless", false)}, nil
		}
		return []chromedp.ExecAllocatorOption{chromedp.Flag("headless", true)}, nil
	}},
	{"disable_sandbox", func(c *config.BrowserConfig) ([]chromedp.ExecAllocatorOption, error) {
		if c.DisableSandbox {
			return []chromedp.ExecAllocatorOption{chromedp.NoSandbox}, nil
		}
		return nil, nil
	}},
	{"start_maximized", func(c *config.BrowserConfig) ([]chromedp.ExecAllocatorOption, error) {
		if c.StartMaximized {
			return []chromedp.ExecAllocatorOption{chromedp.Flag("start-maximized", true)}, nil
		}
		return nil, nil
	}},
	{"user_agent", func(c *config.BrowserConfig) ([]chromedp.ExecAllocatorOption, error) {
		if c.UserAgent != "" {
			return []chromedp.ExecAllocatorOption{chromedp.UserAgent(c.UserAgent)}, nil
		}
		return nil, nil
	}},
	{"profile_path", func(c *config.BrowserConfig) ([]chromedp.ExecAllocatorOption, error) {
		if c.ProfilePath != "" {
			return []chromedp.ExecAllocatorOption{chromedp.UserDataDir(c.ProfilePath)}, nil
		}
		return nil, nil
	}},
	{"download_path", func(c *config.BrowserConfig) ([]chromedp.ExecAllocatorOption, error) {
		if c.DownloadPath != "" {
			return []chromedp.ExecAllocatorOption{
				chromedp.Flag("download.default_directory", c.DownloadPath),
			}, nil
		}
		return nil, nil
	}},
	{"window_size", func(c *config.BrowserConfig) ([]chromedp.ExecAllocatorOption, error) {
		if c.WindowSize == "" {
			return nil, nil
		}
		w, h, err := config.ParseWindowSize(c.WindowSize)
		if err != nil {
			return nil, err
		}
		return []chromedp.ExecAllocatorOption{chromedp.WindowSize(w, h)}, nil
	}},
	{"executable_path", func(c *config.BrowserConfig) ([]chromedp.ExecAllocatorOption, error) {
		if c.ExecutablePath != "" {
			return []chromedp.ExecAllocatorOption{chromedp.ExecPath(c.ExecutablePath)}, nil
		}
		return nil, nil
	}},
}

// buildAllocatorOptions translates the browser config into launcher options,
// starting from chromedp's defaults.
func buildAllocatorOptions(c *config.BrowserConfig) ([]chromedp.ExecAllocatorOption, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for _, binding := range allocatorTable {
		extra, err := binding.apply(c)
		if err != nil {
			return nil, err
		}
		opts = append(opts, extra...)
	}
	return opts, nil
}
