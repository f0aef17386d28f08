package chrome

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"catalogpdf/internal/config"
)

// Readiness conditions for deciding a loaded document is safe to print.
const (
	WaitLoad             = "load"
	WaitDOMContentLoaded = "domcontentloaded"
	WaitNetworkIdle      = "networkidle"
)

const mmPerInch = 25.4

// RenderTimeoutError indicates the document did not reach its readiness
// condition within the per-request timeout.
type RenderTimeoutError struct {
	Timeout time.Duration
}

func (e *RenderTimeoutError) Error() string {
	return fmt.Sprintf("chrome: render exceeded %s timeout", e.Timeout)
}

// IsRenderTimeout reports whether err is (or wraps) a RenderTimeoutError.
func IsRenderTimeout(err error) bool {
	var te *RenderTimeoutError
	return errors.As(err, &te)
}

// PageOptions is the fully resolved page configuration for one render.
type PageOptions struct {
	Paper        config.PaperSize
	MarginInches float64
	WaitUntil    string
	Timeout      time.Duration
	QuietWindow  time.Duration
	Viewport     config.Viewport
}

// forceColorAdjust makes print output keep backgrounds and exact colors;
// browsers strip them when printing by default.
const forceColorAdjust = `(() => {
	const s = document.createElement('style');
	s.textContent = '* { -webkit-print-color-adjust: exact !important; print-color-adjust: exact !important; }';
	document.head.appendChild(s);
})()`

// MarginInchesFromMM converts a millimeter margin to the inches PrintToPDF
// expects.
func MarginInchesFromMM(mm float64) float64 {
	return mm / mmPerInch
}

// RenderToPDF opens a fresh tab on the managed browser, loads html, waits
// for the readiness condition, and prints the page. The tab is closed on
// every path. Cancelling reqCtx (client disconnect) aborts the render.
func (m *Manager) RenderToPDF(reqCtx context.Context, html string, opts PageOptions) ([]byte, error) {
	sess, err := m.Acquire(reqCtx)
	if err != nil {
		return nil, err
	}
	defer m.Release(sess)

	tabCtx, closeTab := chromedp.NewContext(sess.Ctx)
	defer closeTab()

	runCtx, cancel := context.WithTimeout(tabCtx, opts.Timeout)
	defer cancel()
	stop := context.AfterFunc(reqCtx, cancel)
	defer stop()

	pdfBuf, err := renderInTab(runCtx, html, opts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && reqCtx.Err() == nil {
			return nil, &RenderTimeoutError{Timeout: opts.Timeout}
		}
		return nil, err
	}
	return pdfBuf, nil
}

// renderInTab runs the load-wait-print sequence inside an existing tab.
func renderInTab(ctx context.Context, html string, opts PageOptions) ([]byte, error) {
	var pdfBuf []byte

	actions := []chromedp.Action{
		chromedp.EmulateViewport(opts.Viewport.Width, opts.Viewport.Height,
			chromedp.EmulateScale(opts.Viewport.Scale)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frame, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frame.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}

	if opts.WaitUntil == WaitNetworkIdle {
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForRenderReady(ctx, opts.QuietWindow)
		}))
	}

	actions = append(actions,
		chromedp.Evaluate(forceColorAdjust, nil),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithPaperWidth(opts.Paper.Width).
				WithPaperHeight(opts.Paper.Height).
				WithMarginTop(opts.MarginInches).
				WithMarginBottom(opts.MarginInches).
				WithMarginLeft(opts.MarginInches).
				WithMarginRight(opts.MarginInches).
				Do(ctx)
			return err
		}),
	)

	if err := chromedp.Run(ctx, actions...); err != nil {
		return nil, err
	}
	return pdfBuf, nil
}

// waitForRenderReady gives in-flight resources a quiet window to settle
// before printing, respecting context cancellation.
func waitForRenderReady(ctx context.Context, quiet time.Duration) error {
	if quiet <= 0 {
		quiet = 200 * time.Millisecond
	}
	t := time.NewTimer(quiet)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
