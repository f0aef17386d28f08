package chrome

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"catalogpdf/internal/config"
	"catalogpdf/internal/infra/logging"
)

// ErrManagerClosed is returned by Acquire after Shutdown has run.
var ErrManagerClosed = errors.New("chrome: manager is closed")

// LaunchError wraps a failure to start the browser process.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string { return "chrome: browser launch failed: " + e.Err.Error() }
func (e *LaunchError) Unwrap() error { return e.Err }

// IsLaunchError reports whether err is (or wraps) a LaunchError.
func IsLaunchError(err error) bool {
	var le *LaunchError
	return errors.As(err, &le)
}

// Session is a handle on a running browser. Shared sessions belong to the
// Manager; per-request sessions are torn down on Release.
type Session struct {
	Ctx        context.Context
	cancels    []context.CancelFunc
	profileDir string
	perRequest bool
}

// Manager owns the browser process lifecycle. In the default shared mode it
// lazily launches exactly one browser on first Acquire and hands the same
// handle to every caller until Shutdown. With per_request_browser set, each
// Acquire launches a fresh browser that Release closes.
type Manager struct {
	cfg config.Config

	mu         sync.Mutex
	browserCtx context.Context
	cancels    []context.CancelFunc
	profileDir string
	launched   bool
	closed     bool
}

// NewManager creates a Manager. No browser is started until first use.
func NewManager(cfg config.Config) *Manager {
	return &Manager{cfg: cfg}
}

// Launched reports whether the shared browser has been started. Validation
// failures must never flip this.
func (m *Manager) Launched() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.launched
}

// Acquire returns a browser session, launching the process if needed.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	if m.cfg.PDF.PerRequestBrowser {
		m.mu.Lock()
		closed := m.closed
		m.mu.Unlock()
		if closed {
			return nil, ErrManagerClosed
		}
		browserCtx, cancels, dir, err := launchBrowser(ctx, m.cfg)
		if err != nil {
			return nil, err
		}
		return &Session{Ctx: browserCtx, cancels: cancels, profileDir: dir, perRequest: true}, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}
	if !m.launched {
		browserCtx, cancels, dir, err := launchBrowser(ctx, m.cfg)
		if err != nil {
			return nil, err
		}
		m.browserCtx = browserCtx
		m.cancels = cancels
		m.profileDir = dir
		m.launched = true
		logging.Info("Browser launched", "profile_dir", dir)
	}
	return &Session{Ctx: m.browserCtx}, nil
}

// Release returns a session. Shared sessions are a no-op; per-request
// sessions close their browser and delete the profile directory.
func (m *Manager) Release(s *Session) {
	if s == nil || !s.perRequest {
		return
	}
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
	if s.profileDir != "" {
		_ = os.RemoveAll(s.profileDir)
	}
}

// Shutdown closes the shared browser if one is running. Safe to call more
// than once; only the first call does work.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true

	if m.launched {
		for i := len(m.cancels) - 1; i >= 0; i-- {
			m.cancels[i]()
		}
		if m.profileDir != "" {
			_ = os.RemoveAll(m.profileDir)
		}
		m.browserCtx = nil
		m.cancels = nil
		m.launched = false
		logging.Info("Browser closed")
	}
}

// launchBrowser starts a headless browser and verifies it came up.
func launchBrowser(ctx context.Context, cfg config.Config) (context.Context, []context.CancelFunc, string, error) {
	profileDir, err := createProfileDir(cfg)
	if err != nil {
		return nil, nil, "", &LaunchError{Err: err}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(profileDir),
		// Force software rendering; minimal container images have no GPU
		// and no working Vulkan/ANGLE stack.
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-gpu-compositing", true),
		chromedp.Flag("disable-features", "Vulkan,UseSkiaRenderer"),
		chromedp.Flag("use-gl", "swiftshader"),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.PDF.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.PDF.ChromePath))
	}
	if cfg.PDF.ChromeNoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	cancels := []context.CancelFunc{allocCancel, browserCancel}

	// Start the process now so launch failures surface here instead of in
	// the middle of the first render.
	probeCtx, probeCancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer probeCancel()
	stop := context.AfterFunc(ctx, probeCancel)
	defer stop()
	if err := chromedp.Run(probeCtx); err != nil {
		browserCancel()
		allocCancel()
		_ = os.RemoveAll(profileDir)
		return nil, nil, "", &LaunchError{Err: err}
	}

	return browserCtx, cancels, profileDir, nil
}

// createProfileDir creates a fresh temp profile directory, under the
// configured base when one is set.
func createProfileDir(cfg config.Config) (string, error) {
	base := cfg.PDF.UserDataDir
	if base != "" {
		if err := os.MkdirAll(base, 0o755); err != nil {
			return "", fmt.Errorf("cannot create profile base dir: %w", err)
		}
	}
	dir, err := os.MkdirTemp(base, "catalogpdf-chrome-*")
	if err != nil {
		return "", fmt.Errorf("cannot create temp profile dir: %w", err)
	}
	return dir, nil
}

// IsSessionInterrupted reports whether err indicates the browser session
// went away underneath us rather than a render-level failure.
func IsSessionInterrupted(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{"target closed", "session closed", "connection closed", "browser closed"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
