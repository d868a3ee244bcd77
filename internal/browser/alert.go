// File: internal/browser/alert.go
// JavaScript dialog handling. A monitor attached at session start records the
// currently open dialog so alert-present waits are answered locally instead
// of issuing protocol calls while the page is blocked on the dialog.
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/overflowy/browserpilot/internal/observability"
	"go.uber.org/zap"
)

// dialogMonitor tracks the open JavaScript dialog, if any.
type dialogMonitor struct {
	mu      sync.Mutex
	pending *page.EventJavascriptDialogOpening
}

func newDialogMonitor(ctx context.Context, logger *zap.Logger) *dialogMonitor {
	m := &dialogMonitor{}
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *page.EventJavascriptDialogOpening:
			logger.Debug("JavaScript dialog opened.",
				zap.String("type", string(e.Type)), zap.String("message", e.Message))
			m.mu.Lock()
			m.pending = e
			m.mu.Unlock()
		case *page.EventJavascriptDialogClosed:
			m.mu.Lock()
			m.pending = nil
			m.mu.Unlock()
		}
	})
	return m
}

// current returns the open dialog or nil.
func (m *dialogMonitor) current() *page.EventJavascriptDialogOpening {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// clear drops the recorded dialog after it has been handled.
func (m *dialogMonitor) clear() {
	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()
}

// AcceptAlert waits for a dialog, captures its text, then accepts it. The
// text is logged before the dialog is disposed so it survives even if the
// handling call fails.
func (s *Session) AcceptAlert(ctx context.Context, policy WaitPolicy) (string, Outcome) {
	return s.handleAlert(ctx, "accept_alert", policy, true)
}

// DismissAlert waits for a dialog, captures its text, then dismisses it.
func (s *Session) DismissAlert(ctx context.Context, policy WaitPolicy) (string, Outcome) {
	return s.handleAlert(ctx, "dismiss_alert", policy, false)
}

func (s *Session) handleAlert(ctx context.Context, op string, policy WaitPolicy, accept bool) (string, Outcome) {
	done := observability.StartAction(s.logger, op, "")
	timeout := s.timeoutOr(policy.Timeout)

	waitErr := waitFor(ctx, timeout, s.cfg.Browser.PollInterval, func(context.Context) (bool, error) {
		return s.dialogs.current() != nil, nil
	})
	if waitErr != nil {
		reason := FailureAlertAbsent
		if ctx.Err() != nil {
			out := failed(reason, ctx.Err())
			done(zap.Object("outcome", out))
			return "", out
		}
		out := s.fail(ctx, op, reason, fmt.Errorf("no alert appeared within %v", timeout))
		done(zap.Object("outcome", out))
		return "", out
	}

	dialog := s.dialogs.current()
	text := dialog.Message
	s.logger.Info("Alert captured.", zap.String("text", text), zap.Bool("accept", accept))

	err := s.run(ctx, s.cfg.Browser.GlobalTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		return page.HandleJavaScriptDialog(accept).Do(ctx)
	}))
	s.dialogs.clear()
	if err != nil {
		out := s.fail(ctx, op, FailureIO, err)
		done(zap.Object("outcome", out))
		return text, out
	}
	done(zap.Object("outcome", succeeded()), zap.String("alert_text", text))
	return text, succeeded()
}
