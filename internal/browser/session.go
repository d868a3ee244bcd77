// File: internal/browser/session.go
// Session owns one exclusively-held browser context plus everything an
// operation needs: the resolved config, the logger, the dialog monitor and
// the failure hook. The model is single-threaded and synchronous; every
// operation blocks until completion or timeout, and per-operation timeouts
// leave the session usable afterwards.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/overflowy/browserpilot/internal/config"
	"go.uber.org/zap"
)

// FailureHook runs the side effects of a soft failure: a screenshot when
// screenshot_on_exception is set, an interactive pause when debug_on_exception
// is set. It is invoked once per failed resolution, never per call site.
type FailureHook func(ctx context.Context, s *Session, op string, reason FailureReason)

// Session is a facade over one chromedp browser context.
type Session struct {
	id     string
	cfg    *config.Config
	logger *zap.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	dialogs *dialogMonitor
	onFail  FailureHook
}

// Option customizes a Session at construction time.
type Option func(*Session)

// WithFailureHook replaces the default failure side effects. Used by tests
// and by callers that handle screenshots themselves.
func WithFailureHook(hook FailureHook) Option {
	return func(s *Session) { s.onFail = hook }
}

// New launches a browser per the configuration and returns a ready Session.
// If the config asks for it, orphaned browser processes are terminated first.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*Session, error) {
	id := uuid.NewString()
	logger = logger.Named("session").With(zap.String("session_id", id))

	if shouldReapStaleBrowsers(&cfg.Browser) {
		killStaleBrowsers(cfg, logger)
	}

	allocOpts, err := buildAllocatorOptions(&cfg.Browser)
	if err != nil {
		return nil, err
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)

	var ctxOpts []chromedp.ContextOption
	if !cfg.Browser.DisableDriverLogging {
		ctxOpts = append(ctxOpts, chromedp.WithErrorf(func(format string, args ...interface{}) {
			logger.Debug("driver: " + fmt.Sprintf(format, args...))
		}))
	}
	browserCtx, cancel := chromedp.NewContext(allocCtx, ctxOpts...)

	s := &Session{
		id:          id,
		cfg:         cfg,
		logger:      logger,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		ctx:         browserCtx,
		cancel:      cancel,
	}
	s.onFail = defaultFailureHook
	for _, opt := range opts {
		opt(s)
	}

	// Starting the browser eagerly surfaces launch problems (bad executable
	// path, dead display) here rather than on the first operation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	s.dialogs = newDialogMonitor(browserCtx, logger)

	logger.Info("Browser session started.",
		zap.Bool("headless", cfg.Browser.Headless),
		zap.String("page_load_strategy", cfg.Browser.PageLoadStrategy))
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Logger exposes the session-scoped logger for callers composing their own
// log records around session operations.
func (s *Session) Logger() *zap.Logger { return s.logger }

// Close tears the browser down. With quit_when_done disabled the browser
// process is left running and only the protocol connection is released.
func (s *Session) Close() {
	if s.cfg.Browser.QuitWhenDone {
		// Graceful shutdown; the cancels below reap the process regardless.
		if err := chromedp.Cancel(s.ctx); err != nil {
			s.logger.Debug("Graceful browser shutdown failed.", zap.Error(err))
		}
	}
	s.cancel()
	s.allocCancel()
	s.logger.Info("Browser session closed.")
}

// timeoutOr returns the override when positive, otherwise the configured
// global timeout.
func (s *Session) timeoutOr(override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return s.cfg.Browser.GlobalTimeout
}

// run executes chromedp actions under a per-operation timeout derived from
// the caller's context. The session context supplies the browser target; the
// caller's context supplies cancellation.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, opCancel := context.WithTimeout(s.ctx, timeout)
	defer opCancel()
	stop := context.AfterFunc(ctx, opCancel)
	defer stop()

	if err := chromedp.Run(opCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// fail logs a soft failure, fires the failure hook and packages the Outcome.
// Invalid-locator failures skip the hook: they are caller bugs, and a
// screenshot of the page would not help.
func (s *Session) fail(ctx context.Context, op string, reason FailureReason, err error, fields ...zap.Field) Outcome {
	all := append([]zap.Field{
		zap.String("operation", op),
		zap.String("reason", string(reason)),
		zap.Error(err),
	}, fields...)
	s.logger.Error("Operation failed.", all...)

	if reason != FailureInvalidLocator && s.onFail != nil {
		s.onFail(ctx, s, op, reason)
	}
	return failed(reason, err)
}

// defaultFailureHook implements the configured failure side effects.
func defaultFailureHook(ctx context.Context, s *Session, op string, reason FailureReason) {
	if s.cfg.Browser.ScreenshotOnException {
		if _, out := s.SaveScreenshot(ctx, op); !out.Ok() {
			s.logger.Warn("Failure screenshot could not be captured.", zap.Error(out.Err))
		}
	}
	if s.cfg.Browser.DebugOnException {
		s.debugPause(op, reason)
	}
}

// debugPause blocks until the operator presses enter, mirroring an
// interactive breakpoint. Only reachable when debug_on_exception is set.
func (s *Session) debugPause(op string, reason FailureReason) {
	fmt.Printf("browserpilot paused after %s (%s). Press enter to continue...\n", op, reason)
	var discard string
	_, _ = fmt.Scanln(&discard)
}
