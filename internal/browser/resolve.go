// File: internal/browser/resolve.go
// Element resolution: translate a Locator plus WaitPolicy into a live node
// handle, polling the page until the wait condition holds. Soft-fail is the
// default policy; a failed resolution logs, fires the failure hook, and
// returns a Failed outcome instead of raising.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Handle references a resolved element for a follow-up action. Handles are
// transient: they are produced per call and never retained across operations.
type Handle struct {
	node    *cdp.Node
	locator Locator
}

// probe result codes returned by the in-page condition predicate.
const (
	probeAbsent    = 0
	probePresent   = 1
	probeSatisfied = 2
)

// Resolve locates an element per the wait policy. On timeout the outcome
// distinguishes not-found (the element never appeared) from timeout (it
// appeared but the condition never held).
func (s *Session) Resolve(ctx context.Context, locator Locator, policy WaitPolicy) (*Handle, Outcome) {
	op := "resolve"
	if err := locator.validate(); err != nil {
		return nil, s.fail(ctx, op, FailureInvalidLocator, err, zap.String("locator", locator.String()))
	}
	if policy.Condition == "" {
		policy.Condition = ElementPresent
	}
	if policy.Condition == AlertPresent {
		return nil, s.fail(ctx, op, FailureInvalidLocator,
			fmt.Errorf("alert-present is not an element condition; use AcceptAlert or DismissAlert"))
	}

	timeout := s.timeoutOr(policy.Timeout)
	interval := s.cfg.Browser.PollInterval

	probe, err := s.conditionProbe(locator, policy)
	if err != nil {
		return nil, s.fail(ctx, op, FailureInvalidLocator, err, zap.String("locator", locator.String()))
	}

	everPresent := false
	waitErr := waitFor(ctx, timeout, interval, func(ctx context.Context) (bool, error) {
		var state int
		if err := s.run(ctx, interval+time.Second, chromedp.Evaluate(probe, &state,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithReturnByValue(true)
			})); err != nil {
			// Transient protocol errors (mid-navigation evaluations mostly)
			// count as a failed probe, not a failed resolution.
			s.logger.Debug("Condition probe errored; retrying.", zap.Error(err))
			return false, nil
		}
		if state >= probePresent {
			everPresent = true
		}
		return state == probeSatisfied, nil
	})

	if waitErr != nil {
		reason := FailureNotFound
		if everPresent {
			reason = FailureTimeout
		}
		if ctx.Err() != nil {
			return nil, failed(reason, ctx.Err())
		}
		return nil, s.fail(ctx, op, reason,
			fmt.Errorf("condition %s not met within %v", policy.Condition, timeout),
			zap.String("locator", locator.String()),
			zap.String("strategy", string(locator.Strategy)))
	}

	node, err := s.fetchNode(ctx, locator)
	if err != nil {
		// The element satisfied the condition moments ago; losing it now is a
		// race with the page, reported as not-found.
		return nil, s.fail(ctx, op, FailureNotFound, err, zap.String("locator", locator.String()))
	}
	return &Handle{node: node, locator: locator}, succeeded()
}

// fetchNode materializes the first matching CDP node for a locator.
func (s *Session) fetchNode(ctx context.Context, locator Locator) (*cdp.Node, error) {
	expr, opt, err := locator.query()
	if err != nil {
		return nil, err
	}
	var nodes []*cdp.Node
	if err := s.run(ctx, s.cfg.Browser.GlobalTimeout,
		chromedp.Nodes(expr, &nodes, opt, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no element matches %s", locator)
	}
	return nodes[0], nil
}

// conditionProbe builds a single JavaScript expression that evaluates the
// wait condition in one round trip. It returns 0 when no element matches,
// 1 when one matches but the condition does not hold, 2 when it holds.
func (s *Session) conditionProbe(locator Locator, policy WaitPolicy) (string, error) {
	finder, err := jsFinder(locator)
	if err != nil {
		return "", err
	}

	var predicate string
	switch policy.Condition {
	case ElementPresent:
		predicate = "true"
	case ElementClickable:
		predicate = `(function(el){
			if (el.disabled) return false;
			const style = window.getComputedStyle(el);
			if (style.display === 'none' || style.visibility === 'hidden') return false;
			const rect = el.getBoundingClientRect();
			return rect.width > 0 && rect.height > 0;
		})(el)`
	case TextPresentIn:
		predicate = fmt.Sprintf(`(el.textContent || '').includes(%s)`, jsString(policy.Text))
	default:
		return "", fmt.Errorf("unsupported wait condition %q", policy.Condition)
	}

	return fmt.Sprintf(`(function(){
		const el = %s;
		if (!el) return 0;
		return (%s) ? 2 : 1;
	})()`, finder, predicate), nil
}

// jsFinder returns a JavaScript expression locating the first element the
// locator matches, or null.
func jsFinder(locator Locator) (string, error) {
	expr, _, err := locator.query()
	if err != nil {
		return "", err
	}
	if locator.usesXPath() {
		return fmt.Sprintf(
			`document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue`,
			jsString(expr)), nil
	}
	return fmt.Sprintf(`document.querySelector(%s)`, jsString(expr)), nil
}

// jsString encodes a Go string as a JavaScript string literal.
func jsString(s string) string {
	return fmt.Sprintf("%q", s)
}
