// File: internal/browser/interact.go
// Interaction primitives. Each follows the same shape: resolve the target,
// perform the action, emit exactly one action log record carrying the target
// alias and outcome. All primitives are idempotent and share no resolver
// state between calls.
package browser

import (
	"context"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/overflowy/browserpilot/internal/observability"
	"go.uber.org/zap"
)

// Click resolves the locator and clicks it once the element is clickable.
func (s *Session) Click(ctx context.Context, locator Locator, policy WaitPolicy) Outcome {
	return s.click(ctx, "click", locator, policy, 1)
}

// DoubleClick resolves the locator and double-clicks it.
func (s *Session) DoubleClick(ctx context.Context, locator Locator, policy WaitPolicy) Outcome {
	return s.click(ctx, "double_click", locator, policy, 2)
}

func (s *Session) click(ctx context.Context, op string, locator Locator, policy WaitPolicy, count int64) Outcome {
	done := observability.StartAction(s.logger, op, locator.String())

	// Clicking a hidden or disabled element is never useful, so the wait
	// condition is upgraded regardless of what the caller asked for.
	policy.Condition = ElementClickable
	handle, out := s.Resolve(ctx, locator, policy)
	if !out.Ok() {
		done(zap.Object("outcome", out))
		return out
	}

	if err := s.run(ctx, s.cfg.Browser.GlobalTimeout,
		chromedp.MouseClickNode(handle.node, chromedp.ClickCount(int(count)))); err != nil {
		out := s.fail(ctx, op, FailureIO, err, zap.String("locator", locator.String()))
		done(zap.Object("outcome", out))
		return out
	}
	done(zap.Object("outcome", succeeded()))
	return succeeded()
}

// WriteOptions refines a Write call. A nil Target sends the keys to whatever
// currently holds focus. SkipClear leaves existing content in place.
type WriteOptions struct {
	Target    *Locator
	Policy    WaitPolicy
	SkipClear bool
}

// Write types text. With a target locator, the element is resolved, cleared
// (unless SkipClear) and the keys are dispatched to it. Without a target the
// keys go to the focused context at page level.
func (s *Session) Write(ctx context.Context, text string, opts WriteOptions) Outcome {
	if opts.Target == nil {
		done := observability.StartAction(s.logger, "write", "focused element")
		if err := s.run(ctx, s.cfg.Browser.GlobalTimeout, chromedp.KeyEvent(text)); err != nil {
			out := s.fail(ctx, "write", FailureIO, err)
			done(zap.Object("outcome", out))
			return out
		}
		done(zap.Object("outcome", succeeded()))
		return succeeded()
	}

	locator := *opts.Target
	done := observability.StartAction(s.logger, "write", locator.String())

	handle, out := s.Resolve(ctx, locator, opts.Policy)
	if !out.Ok() {
		done(zap.Object("outcome", out))
		return out
	}

	actions := []chromedp.Action{
		chromedp.ActionFunc(func(ctx context.Context) error {
			return dom.Focus().WithNodeID(handle.node.NodeID).Do(ctx)
		}),
	}
	if !opts.SkipClear {
		// Native value clearing is unreliable against framework-controlled
		// inputs; select-all plus delete goes through the same key pipeline
		// the page's listeners see.
		actions = append(actions,
			chromedp.Evaluate(`document.execCommand('selectAll')`, nil),
			chromedp.KeyEventNode(handle.node, kb.Delete),
		)
	}
	actions = append(actions, chromedp.KeyEventNode(handle.node, text))

	if err := s.run(ctx, s.cfg.Browser.GlobalTimeout, actions...); err != nil {
		out := s.fail(ctx, "write", FailureIO, err, zap.String("locator", locator.String()))
		done(zap.Object("outcome", out))
		return out
	}
	done(zap.Object("outcome", succeeded()))
	return succeeded()
}
