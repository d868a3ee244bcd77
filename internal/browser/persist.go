// File: internal/browser/persist.go
// Session persistence: cookies plus the page URL, written as one ordered JSON
// array whose first element is a synthetic URL marker. The codec operates
// against a narrow driver interface so it is testable without a browser. The
// record format only promises compatibility with this implementation's own
// read/write pair.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"github.com/overflowy/browserpilot/internal/config"
	"github.com/overflowy/browserpilot/internal/observability"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// sessionMarker is the first element of every session record. It pins the
// URL the session was saved on; cookies can only be attached while the
// browser sits on a matching origin, so restore navigates here first.
type sessionMarker struct {
	URL string `json:"url"`
}

// sessionCookie is the persisted form of one cookie.
type sessionCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Expiry   float64 `json:"expiry,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
}

// sessionDriver is the slice of browser behavior the codec needs.
type sessionDriver interface {
	CurrentURL(ctx context.Context) (string, error)
	Cookies(ctx context.Context) ([]sessionCookie, error)
	SetCookie(ctx context.Context, c sessionCookie) error
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
}

// encodeSessionRecord renders the marker-first ordered array.
func encodeSessionRecord(url string, cookies []sessionCookie) ([]byte, error) {
	record := make([]interface{}, 0, len(cookies)+1)
	record = append(record, sessionMarker{URL: url})
	for _, c := range cookies {
		record = append(record, c)
	}
	return json.MarshalIndent(record, "", "  ")
}

// decodeSessionRecord splits a record back into its marker and cookies.
func decodeSessionRecord(data []byte) (sessionMarker, []sessionCookie, error) {
	var raw []jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return sessionMarker{}, nil, fmt.Errorf("decoding session record: %w", err)
	}
	if len(raw) == 0 {
		return sessionMarker{}, nil, errors.New("session record is empty")
	}

	var marker sessionMarker
	if err := json.Unmarshal(raw[0], &marker); err != nil {
		return sessionMarker{}, nil, fmt.Errorf("decoding session marker: %w", err)
	}
	if marker.URL == "" {
		return sessionMarker{}, nil, errors.New("session record has no URL marker")
	}

	cookies := make([]sessionCookie, 0, len(raw)-1)
	for i, entry := range raw[1:] {
		var c sessionCookie
		if err := json.Unmarshal(entry, &c); err != nil {
			return sessionMarker{}, nil, fmt.Errorf("decoding cookie %d: %w", i, err)
		}
		cookies = append(cookies, c)
	}
	return marker, cookies, nil
}

// saveSession captures the driver's state into path.
func saveSession(ctx context.Context, d sessionDriver, path string) error {
	url, err := d.CurrentURL(ctx)
	if err != nil {
		return fmt.Errorf("reading current URL: %w", err)
	}
	cookies, err := d.Cookies(ctx)
	if err != nil {
		return fmt.Errorf("reading cookies: %w", err)
	}
	data, err := encodeSessionRecord(url, cookies)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// restoreSession replays a record against the driver. Order matters: the
// browser must land on the marker URL before any cookie can be attached, and
// the final reload is what makes the restored cookies take effect.
func restoreSession(ctx context.Context, d sessionDriver, data []byte) error {
	marker, cookies, err := decodeSessionRecord(data)
	if err != nil {
		return err
	}
	if err := d.Navigate(ctx, marker.URL); err != nil {
		return fmt.Errorf("navigating to saved URL: %w", err)
	}
	for _, c := range cookies {
		if err := d.SetCookie(ctx, c); err != nil {
			return fmt.Errorf("restoring cookie %q: %w", c.Name, err)
		}
	}
	return d.Reload(ctx)
}

// SaveSession persists the current URL and cookie set to the configured
// session_path. An unset path is a configuration error, detected before any
// I/O or protocol traffic.
func (s *Session) SaveSession(ctx context.Context) Outcome {
	done := observability.StartAction(s.logger, "save_session", s.cfg.Browser.SessionPath)
	path := s.cfg.Browser.SessionPath
	if path == "" {
		out := failed(FailureIO, fmt.Errorf("%w: browser.session_path is not set", config.ErrConfiguration))
		s.logger.Error("Cannot save session.", zap.Error(out.Err))
		done(zap.Object("outcome", out))
		return out
	}

	if err := saveSession(ctx, &cdpDriver{s}, path); err != nil {
		out := s.failIO(ctx, "save_session", err)
		done(zap.Object("outcome", out))
		return out
	}
	done(zap.Object("outcome", succeeded()))
	return succeeded()
}

// RestoreSession loads the record at session_path and replays it. A missing
// file is a logged no-op; a first run legitimately has no saved session.
func (s *Session) RestoreSession(ctx context.Context) Outcome {
	done := observability.StartAction(s.logger, "restore_session", s.cfg.Browser.SessionPath)
	path := s.cfg.Browser.SessionPath
	if path == "" {
		out := failed(FailureIO, fmt.Errorf("%w: browser.session_path is not set", config.ErrConfiguration))
		s.logger.Error("Cannot restore session.", zap.Error(out.Err))
		done(zap.Object("outcome", out))
		return out
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("No saved session found; continuing without one.", zap.String("path", path))
			done(zap.Object("outcome", succeeded()))
			return succeeded()
		}
		out := s.failIO(ctx, "restore_session", err)
		done(zap.Object("outcome", out))
		return out
	}

	if err := restoreSession(ctx, &cdpDriver{s}, data); err != nil {
		out := s.failIO(ctx, "restore_session", err)
		done(zap.Object("outcome", out))
		return out
	}
	done(zap.Object("outcome", succeeded()))
	return succeeded()
}

// cdpDriver adapts a Session to the codec's driver interface.
type cdpDriver struct {
	s *Session
}

func (d *cdpDriver) CurrentURL(ctx context.Context) (string, error) {
	url, out := d.s.CurrentURL(ctx)
	if !out.Ok() {
		return "", out.Err
	}
	return url, nil
}

func (d *cdpDriver) Cookies(ctx context.Context) ([]sessionCookie, error) {
	var cookies []sessionCookie
	err := d.s.run(ctx, d.s.cfg.Browser.GlobalTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		raw, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		cookies = make([]sessionCookie, 0, len(raw))
		for _, c := range raw {
			cookies = append(cookies, sessionCookie{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Expiry:   c.Expires,
				Secure:   c.Secure,
				HTTPOnly: c.HTTPOnly,
			})
		}
		return nil
	}))
	return cookies, err
}

func (d *cdpDriver) SetCookie(ctx context.Context, c sessionCookie) error {
	return d.s.run(ctx, d.s.cfg.Browser.GlobalTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		p := network.SetCookie(c.Name, c.Value).
			WithDomain(c.Domain).
			WithPath(c.Path).
			WithSecure(c.Secure).
			WithHTTPOnly(c.HTTPOnly)
		if c.Expiry > 0 {
			expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expiry), 0))
			p = p.WithExpires(&expires)
		}
		return p.Do(ctx)
	}))
}

func (d *cdpDriver) Navigate(ctx context.Context, url string) error {
	if out := d.s.Navigate(ctx, url); !out.Ok() {
		return out.Err
	}
	return nil
}

func (d *cdpDriver) Reload(ctx context.Context) error {
	if out := d.s.Refresh(ctx); !out.Ok() {
		return out.Err
	}
	return nil
}
