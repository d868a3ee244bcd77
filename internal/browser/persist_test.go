// File: internal/browser/persist_test.go
package browser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/overflowy/browserpilot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeDriver records every codec call in order so tests can assert the
// restore protocol without a browser.
type fakeDriver struct {
	url     string
	cookies []sessionCookie

	calls      []string
	navigated  []string
	setCookies []sessionCookie
	reloads    int

	cookieErr error
}

func (f *fakeDriver) CurrentURL(context.Context) (string, error) {
	f.calls = append(f.calls, "current_url")
	return f.url, nil
}

func (f *fakeDriver) Cookies(context.Context) ([]sessionCookie, error) {
	f.calls = append(f.calls, "cookies")
	if f.cookieErr != nil {
		return nil, f.cookieErr
	}
	return f.cookies, nil
}

func (f *fakeDriver) SetCookie(_ context.Context, c sessionCookie) error {
	f.calls = append(f.calls, "set_cookie:"+c.Name)
	f.setCookies = append(f.setCookies, c)
	return nil
}

func (f *fakeDriver) Navigate(_ context.Context, url string) error {
	f.calls = append(f.calls, "navigate")
	f.navigated = append(f.navigated, url)
	return nil
}

func (f *fakeDriver) Reload(context.Context) error {
	f.calls = append(f.calls, "reload")
	f.reloads++
	return nil
}

var testCookies = []sessionCookie{
	{Name: "sid", Value: "abc123", Domain: "example.com", Path: "/", Secure: true, HTTPOnly: true,
		Expiry: float64(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC).Unix())},
	{Name: "theme", Value: "dark", Domain: "example.com", Path: "/"},
}

// -- Codec Tests --

func TestSessionRecordCodec(t *testing.T) {
	t.Run("marker is always the first element", func(t *testing.T) {
		data, err := encodeSessionRecord("https://example.com/account", testCookies)
		require.NoError(t, err)

		marker, cookies, err := decodeSessionRecord(data)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/account", marker.URL)
		assert.Empty(t, cmp.Diff(testCookies, cookies, cmpopts.EquateEmpty()))
	})

	t.Run("no cookies is a valid record", func(t *testing.T) {
		data, err := encodeSessionRecord("https://example.com", nil)
		require.NoError(t, err)

		marker, cookies, err := decodeSessionRecord(data)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", marker.URL)
		assert.Empty(t, cookies)
	})

	t.Run("empty record is rejected", func(t *testing.T) {
		_, _, err := decodeSessionRecord([]byte(`[]`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("markerless record is rejected", func(t *testing.T) {
		_, _, err := decodeSessionRecord([]byte(`[{"name":"sid","value":"x"}]`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no URL marker")
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, _, err := decodeSessionRecord([]byte(`not json at all`))
		assert.Error(t, err)
	})
}

// -- Save/Restore Protocol Tests --

func TestSaveSessionProtocol(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	driver := &fakeDriver{url: "https://example.com/home", cookies: testCookies}

	require.NoError(t, saveSession(context.Background(), driver, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	marker, cookies, err := decodeSessionRecord(data)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/home", marker.URL)
	assert.Empty(t, cmp.Diff(testCookies, cookies))
}

func TestRestoreSessionProtocol(t *testing.T) {
	t.Run("navigates before applying cookies, then reloads", func(t *testing.T) {
		data, err := encodeSessionRecord("https://example.com/home", testCookies)
		require.NoError(t, err)

		driver := &fakeDriver{}
		require.NoError(t, restoreSession(context.Background(), driver, data))

		assert.Equal(t, []string{"navigate", "set_cookie:sid", "set_cookie:theme", "reload"}, driver.calls)
		assert.Equal(t, []string{"https://example.com/home"}, driver.navigated)
		assert.Equal(t, 1, driver.reloads)
		assert.Empty(t, cmp.Diff(testCookies, driver.setCookies))
	})

	t.Run("round trip preserves URL and cookie set", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		source := &fakeDriver{url: "https://example.com/app", cookies: testCookies}
		require.NoError(t, saveSession(context.Background(), source, path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		target := &fakeDriver{}
		require.NoError(t, restoreSession(context.Background(), target, data))
		assert.Equal(t, []string{"https://example.com/app"}, target.navigated)
		assert.Empty(t, cmp.Diff(testCookies, target.setCookies))
	})

	t.Run("save propagates driver errors", func(t *testing.T) {
		driver := &fakeDriver{url: "https://example.com", cookieErr: errors.New("protocol down")}
		err := saveSession(context.Background(), driver, filepath.Join(t.TempDir(), "s.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "protocol down")
	})
}

// -- Session-Level Guard Tests --

// sessionForPersistTests builds a Session with just enough state for the
// persistence guards that never touch the browser.
func sessionForPersistTests(t *testing.T, sessionPath string) *Session {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Browser.SessionPath = sessionPath
	return &Session{
		id:     "test",
		cfg:    cfg,
		logger: zap.NewNop(),
	}
}

func TestSessionPathGuards(t *testing.T) {
	t.Run("save with unset session_path is a configuration error", func(t *testing.T) {
		s := sessionForPersistTests(t, "")
		out := s.SaveSession(context.Background())
		require.False(t, out.Ok())
		assert.ErrorIs(t, out.Err, config.ErrConfiguration)
	})

	t.Run("restore with unset session_path is a configuration error", func(t *testing.T) {
		s := sessionForPersistTests(t, "")
		out := s.RestoreSession(context.Background())
		require.False(t, out.Ok())
		assert.ErrorIs(t, out.Err, config.ErrConfiguration)
	})

	t.Run("restore with a missing file is a logged no-op", func(t *testing.T) {
		s := sessionForPersistTests(t, filepath.Join(t.TempDir(), "never-written.json"))
		out := s.RestoreSession(context.Background())
		assert.True(t, out.Ok())
	})
}
