// File: internal/browser/outcome.go
package browser

import "go.uber.org/zap/zapcore"

// FailureReason classifies why a browser operation did not succeed.
type FailureReason string

const (
	// FailureNotFound means no element matched the locator within the wait window.
	FailureNotFound FailureReason = "not-found"
	// FailureTimeout means an element (or page state) appeared but the wait
	// condition never held before the deadline.
	FailureTimeout FailureReason = "timeout"
	// FailureInvalidLocator means the locator itself is malformed. This is a
	// caller bug and is never folded into not-found or timeout.
	FailureInvalidLocator FailureReason = "invalid-locator"
	// FailureAlertAbsent means no JavaScript dialog appeared within the window.
	FailureAlertAbsent FailureReason = "alert-absent"
	// FailureIO means a filesystem or protocol error interrupted the operation.
	FailureIO FailureReason = "io-error"
)

// Outcome is the soft-fail result every primitive returns. A failed Outcome
// has already been logged (and the failure hook already invoked where the
// policy calls for it) by the time the caller sees it; the caller only decides
// whether to escalate.
type Outcome struct {
	Reason FailureReason
	Err    error
}

// Ok reports whether the operation succeeded.
func (o Outcome) Ok() bool { return o.Reason == "" && o.Err == nil }

// Error implements error so an Outcome can be escalated directly.
func (o Outcome) Error() string {
	if o.Ok() {
		return ""
	}
	if o.Err != nil {
		return string(o.Reason) + ": " + o.Err.Error()
	}
	return string(o.Reason)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (o Outcome) Unwrap() error { return o.Err }

// MarshalLogObject lets an Outcome be attached to zap records as a single field.
func (o Outcome) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddBool("ok", o.Ok())
	if o.Reason != "" {
		enc.AddString("reason", string(o.Reason))
	}
	if o.Err != nil {
		enc.AddString("error", o.Err.Error())
	}
	return nil
}

// succeeded is the zero Outcome.
func succeeded() Outcome { return Outcome{} }

// failed builds a failed Outcome.
func failed(reason FailureReason, err error) Outcome {
	return Outcome{Reason: reason, Err: err}
}
