// File: internal/browser/screenshot.go
package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/overflowy/browserpilot/internal/config"
	"github.com/overflowy/browserpilot/internal/observability"
	"go.uber.org/zap"
)

// SaveScreenshot captures the viewport as PNG and writes it under the
// configured screenshots path, creating the directory on demand. The tag, if
// any, is embedded in the filename; a nanosecond timestamp keeps names unique
// even under rapid capture.
func (s *Session) SaveScreenshot(ctx context.Context, tag string) (string, Outcome) {
	done := observability.StartAction(s.logger, "screenshot", tag)

	dir := s.cfg.Browser.ScreenshotsPath
	if dir == "" {
		dir = "screenshots"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		out := s.failIO(ctx, "screenshot", err)
		done(zap.Object("outcome", out))
		return "", out
	}

	name := "screenshot"
	if tag != "" {
		name += "_" + tag
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%d.png", name, time.Now().UnixNano()))

	var buf []byte
	if err := s.run(ctx, s.cfg.Browser.GlobalTimeout, chromedp.CaptureScreenshot(&buf)); err != nil {
		out := s.failIO(ctx, "screenshot", err)
		done(zap.Object("outcome", out))
		return "", out
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		out := s.failIO(ctx, "screenshot", err)
		done(zap.Object("outcome", out))
		return "", out
	}

	done(zap.Object("outcome", succeeded()), zap.String("path", path))
	return path, succeeded()
}

// failIO logs an I/O failure without invoking the failure hook. Screenshot
// capture is itself part of the hook, so recursing into it would loop.
func (s *Session) failIO(_ context.Context, op string, err error) Outcome {
	s.logger.Error("Operation failed.",
		zap.String("operation", op),
		zap.String("reason", string(FailureIO)),
		zap.Error(err))
	return failed(FailureIO, err)
}

// CaptureEvery blocks, capturing a screenshot at each interval until the
// total duration elapses or the context is canceled. A zero until runs until
// cancellation. A nonzero until no larger than the interval is rejected up
// front as a configuration error.
func (s *Session) CaptureEvery(ctx context.Context, interval, until time.Duration, tag string) Outcome {
	if interval <= 0 {
		return failed(FailureIO, fmt.Errorf("%w: capture interval must be positive", config.ErrConfiguration))
	}
	if until != 0 && until <= interval {
		return failed(FailureIO, fmt.Errorf("%w: capture duration %v must exceed the interval %v",
			config.ErrConfiguration, until, interval))
	}

	s.logger.Info("Starting periodic capture.",
		zap.Duration("interval", interval), zap.Duration("until", until), zap.String("tag", tag))

	var deadline <-chan time.Time
	if until > 0 {
		timer := time.NewTimer(until)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, out := s.SaveScreenshot(ctx, tag); !out.Ok() {
			return out
		}
		select {
		case <-ctx.Done():
			return failed(FailureIO, ctx.Err())
		case <-deadline:
			s.logger.Info("Periodic capture finished.")
			return succeeded()
		case <-ticker.C:
		}
	}
}
