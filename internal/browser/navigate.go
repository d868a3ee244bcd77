// File: internal/browser/navigate.go
// Navigation and page-read operations. Each wraps the underlying chromedp
// action with the per-operation timeout, an action log record, and an Outcome
// so failures are always distinguishable from successes.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/overflowy/browserpilot/internal/config"
	"github.com/overflowy/browserpilot/internal/observability"
	"go.uber.org/zap"
)

// Navigate loads the given URL. The configured page_load_strategy decides how
// long to wait: normal blocks for the full load event, eager returns once the
// DOM is ready, none fires the navigation and returns immediately.
func (s *Session) Navigate(ctx context.Context, url string) Outcome {
	done := observability.StartAction(s.logger, "navigate", url)

	var action chromedp.Action
	switch s.cfg.Browser.PageLoadStrategy {
	case config.PageLoadEager:
		action = chromedp.Tasks{
			chromedp.ActionFunc(func(ctx context.Context) error {
				_, _, _, _, err := page.Navigate(url).Do(ctx)
				return err
			}),
			chromedp.WaitReady("body", chromedp.ByQuery),
		}
	case config.PageLoadNone:
		action = chromedp.ActionFunc(func(ctx context.Context) error {
			_, _, _, _, err := page.Navigate(url).Do(ctx)
			return err
		})
	default: // normal
		action = chromedp.Navigate(url)
	}

	if err := s.run(ctx, s.cfg.Browser.GlobalTimeout, action); err != nil {
		out := s.fail(ctx, "navigate", FailureIO, err, zap.String("url", url))
		done(zap.Object("outcome", out))
		return out
	}
	done(zap.Object("outcome", succeeded()))
	return succeeded()
}

// Refresh reloads the current page.
func (s *Session) Refresh(ctx context.Context) Outcome {
	return s.simpleNav(ctx, "refresh", chromedp.Reload())
}

// Back navigates one entry back in the session history.
func (s *Session) Back(ctx context.Context) Outcome {
	return s.simpleNav(ctx, "back", chromedp.NavigateBack())
}

// Forward navigates one entry forward in the session history.
func (s *Session) Forward(ctx context.Context) Outcome {
	return s.simpleNav(ctx, "forward", chromedp.NavigateForward())
}

func (s *Session) simpleNav(ctx context.Context, op string, action chromedp.Action) Outcome {
	done := observability.StartAction(s.logger, op, "")
	if err := s.run(ctx, s.cfg.Browser.GlobalTimeout, action); err != nil {
		out := s.fail(ctx, op, FailureIO, err)
		done(zap.Object("outcome", out))
		return out
	}
	done(zap.Object("outcome", succeeded()))
	return succeeded()
}

// CurrentURL returns the URL of the active page.
func (s *Session) CurrentURL(ctx context.Context) (string, Outcome) {
	var url string
	if err := s.run(ctx, s.cfg.Browser.GlobalTimeout, chromedp.Location(&url)); err != nil {
		return "", s.fail(ctx, "current_url", FailureIO, err)
	}
	return url, succeeded()
}

// Title returns the active page's title.
func (s *Session) Title(ctx context.Context) (string, Outcome) {
	var title string
	if err := s.run(ctx, s.cfg.Browser.GlobalTimeout, chromedp.Title(&title)); err != nil {
		return "", s.fail(ctx, "title", FailureIO, err)
	}
	return title, succeeded()
}

// HTML returns the full outer HTML of the document.
func (s *Session) HTML(ctx context.Context) (string, Outcome) {
	var html string
	if err := s.run(ctx, s.cfg.Browser.GlobalTimeout,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", s.fail(ctx, "html", FailureIO, err)
	}
	return html, succeeded()
}

// PageContainsText reports whether the rendered page text contains the given
// substring.
func (s *Session) PageContainsText(ctx context.Context, text string) (bool, Outcome) {
	expr := "(document.body && document.body.innerText || '').includes(" + jsString(text) + ")"
	var found bool
	if err := s.run(ctx, s.cfg.Browser.GlobalTimeout, chromedp.Evaluate(expr, &found)); err != nil {
		return false, s.fail(ctx, "page_contains_text", FailureIO, err)
	}
	return found, succeeded()
}

// ElementText resolves the locator and returns the element's text content.
func (s *Session) ElementText(ctx context.Context, locator Locator, policy WaitPolicy) (string, Outcome) {
	done := observability.StartAction(s.logger, "element_text", locator.String())
	handle, out := s.Resolve(ctx, locator, policy)
	if !out.Ok() {
		done(zap.Object("outcome", out))
		return "", out
	}

	var text string
	expr, opt, _ := handle.locator.query()
	if err := s.run(ctx, s.cfg.Browser.GlobalTimeout, chromedp.Text(expr, &text, opt)); err != nil {
		out := s.fail(ctx, "element_text", FailureIO, err, zap.String("locator", locator.String()))
		done(zap.Object("outcome", out))
		return "", out
	}
	done(zap.Object("outcome", succeeded()))
	return text, succeeded()
}

// ExecuteScript evaluates a JavaScript expression in the page and decodes the
// result into out, which may be nil when the result is irrelevant.
func (s *Session) ExecuteScript(ctx context.Context, script string, out interface{}) Outcome {
	if err := s.run(ctx, s.cfg.Browser.GlobalTimeout, chromedp.Evaluate(script, out)); err != nil {
		return s.fail(ctx, "execute_script", FailureIO, err)
	}
	return succeeded()
}

// Sleep blocks for the given duration, honoring context cancellation.
func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
