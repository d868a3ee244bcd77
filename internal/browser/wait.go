// File: internal/browser/wait.go
package browser

import (
	"context"
	"errors"
	"time"
)

// Condition names a wait predicate evaluated during element resolution.
type Condition string

const (
	// ElementPresent holds once at least one element matches the locator.
	ElementPresent Condition = "element-present"
	// ElementClickable holds once a matching element is present, visible and enabled.
	ElementClickable Condition = "element-clickable"
	// AlertPresent holds once a JavaScript dialog is open.
	AlertPresent Condition = "alert-present"
	// TextPresentIn holds once the matching element's text contains the expected substring.
	TextPresentIn Condition = "text-present-in"
)

// WaitPolicy bounds a resolution attempt. A zero Timeout means the session's
// global timeout; a zero Condition means ElementPresent.
type WaitPolicy struct {
	Timeout   time.Duration
	Condition Condition
	// Text is the expected substring for TextPresentIn.
	Text string
}

// errWaitTimeout is the internal signal that the deadline elapsed before the
// condition held. Callers translate it into a timeout or not-found Outcome.
var errWaitTimeout = errors.New("wait deadline elapsed")

// waitFor polls check at the given interval until it reports done, the
// timeout elapses, or the context is canceled. The deadline check happens
// after each probe, so the total wait is at least timeout and strictly less
// than timeout plus two intervals.
func waitFor(ctx context.Context, timeout, interval time.Duration, check func(context.Context) (bool, error)) error {
	deadline := time.Now().Add(timeout)
	for {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if !time.Now().Before(deadline) {
			return errWaitTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
