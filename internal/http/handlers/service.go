package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"catalogpdf/internal/config"
	"catalogpdf/internal/infra/chrome"
	"catalogpdf/internal/infra/logging"
)

// Version reported by the health and metadata endpoints.
const Version = "1.0.0"

var filenamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Service bundles configuration and dependencies shared by all handlers.
type Service struct {
	Config *config.Config
	Chrome *chrome.Manager
	Redis  *redis.Client

	startedAt time.Time
}

// NewService creates a Service. rdb may be nil when caching is disabled.
func NewService(cfg config.Config, mgr *chrome.Manager, rdb *redis.Client) *Service {
	if mgr == nil {
		mgr = chrome.NewManager(cfg)
	}
	return &Service{
		Config:    &cfg,
		Chrome:    mgr,
		Redis:     rdb,
		startedAt: time.Now(),
	}
}

// RenderOptions is the caller-facing options bag. All fields are optional;
// absent values take the configured defaults.
type RenderOptions struct {
	Format      string   `json:"format,omitempty"`
	MarginMM    *float64 `json:"margin,omitempty"`
	WaitUntil   string   `json:"waitUntil,omitempty"`
	TimeoutSecs int      `json:"timeoutSecs,omitempty"`
	Landscape   bool     `json:"landscape,omitempty"`
}

// resolvePageOptions validates the options bag against the configuration
// and produces the fully resolved page configuration for the renderer.
func (svc *Service) resolvePageOptions(opts *RenderOptions) (chrome.PageOptions, error) {
	cfg := svc.Config

	resolved := chrome.PageOptions{
		MarginInches: chrome.MarginInchesFromMM(cfg.PDF.MarginMM),
		WaitUntil:    chrome.WaitNetworkIdle,
		Timeout:      time.Duration(cfg.PDF.TimeoutSecs) * time.Second,
		QuietWindow:  time.Duration(cfg.PDF.NetworkQuietMS) * time.Millisecond,
		Viewport:     cfg.PDF.Viewport,
	}

	format := cfg.PDF.DefaultPaper
	landscape := false

	if opts != nil {
		if opts.Format != "" {
			format = strings.ToUpper(opts.Format)
			if _, ok := cfg.PDF.PaperSizes[format]; !ok {
				return resolved, NewError(fiber.StatusBadRequest, CodeInvalidFormat,
					"Invalid format: not supported")
			}
		}
		if opts.MarginMM != nil {
			m := *opts.MarginMM
			if m < 0 || m > 50 {
				return resolved, NewError(fiber.StatusBadRequest, CodeInvalidMargin,
					"Invalid margin: must be between 0 and 50 millimeters")
			}
			resolved.MarginInches = chrome.MarginInchesFromMM(m)
		}
		switch opts.WaitUntil {
		case "", chrome.WaitNetworkIdle:
		case chrome.WaitLoad, chrome.WaitDOMContentLoaded:
			resolved.WaitUntil = opts.WaitUntil
		default:
			return resolved, NewError(fiber.StatusBadRequest, CodeInvalidWaitUntil,
				"Invalid waitUntil: must be load, domcontentloaded or networkidle")
		}
		if opts.TimeoutSecs > 0 {
			resolved.Timeout = time.Duration(opts.TimeoutSecs) * time.Second
		}
		landscape = opts.Landscape
	}

	paper := cfg.PDF.PaperSizes[format]
	if landscape {
		paper.Width, paper.Height = paper.Height, paper.Width
	}
	resolved.Paper = paper

	return resolved, nil
}

// validateFilename checks a caller-supplied attachment name.
func validateFilename(filename string) (string, error) {
	if filename == "" {
		return "output.pdf", nil
	}
	if !strings.HasSuffix(filename, ".pdf") {
		return "", NewError(fiber.StatusBadRequest, CodeInvalidFilename, "Filename must end with .pdf")
	}
	if !filenamePattern.MatchString(filename) {
		return "", NewError(fiber.StatusBadRequest, CodeInvalidFilename, "Filename contains invalid characters")
	}
	return filename, nil
}

// render runs one HTML document through the browser and maps failures to
// the error taxonomy.
func (svc *Service) render(c *fiber.Ctx, html string, opts chrome.PageOptions) ([]byte, error) {
	pdfBuf, err := svc.Chrome.RenderToPDF(c.Context(), html, opts)
	if err != nil {
		switch {
		case chrome.IsRenderTimeout(err):
			logging.Error("Render timed out", "timeout", opts.Timeout.String())
			return nil, NewError(fiber.StatusInternalServerError, CodeRenderTimeout,
				"Rendering did not finish within the configured timeout").WithDetails(err.Error())
		case chrome.IsLaunchError(err):
			logging.Error("Browser launch failed", "error", err.Error())
			return nil, NewError(fiber.StatusInternalServerError, CodeBrowserLaunchFailed,
				"Browser failed to start").WithDetails(err.Error())
		default:
			logging.Error("PDF generation failed", "error", err.Error())
			return nil, NewError(fiber.StatusInternalServerError, CodeGenerationError,
				"PDF generation failed").WithDetails(err.Error())
		}
	}
	if len(pdfBuf) > svc.Config.Limits.MaxPDFBytes {
		return nil, NewError(fiber.StatusRequestEntityTooLarge, CodePDFTooLarge,
			"PDF exceeds allowed size")
	}
	return pdfBuf, nil
}

// sendPDF writes the artifact with attachment framing.
func sendPDF(c *fiber.Ctx, pdfBuf []byte, filename string) error {
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(pdfBuf)
}

// computeCacheKey hashes the render input so identical requests share a
// cache slot.
func computeCacheKey(html string, opts chrome.PageOptions) string {
	h := sha256.New()
	h.Write([]byte(html))
	h.Write([]byte(opts.WaitUntil))
	h.Write([]byte(strconv.FormatFloat(opts.Paper.Width, 'f', 2, 64)))
	h.Write([]byte(strconv.FormatFloat(opts.Paper.Height, 'f', 2, 64)))
	h.Write([]byte(strconv.FormatFloat(opts.MarginInches, 'f', 4, 64)))
	return "pdfcache:" + hex.EncodeToString(h.Sum(nil))
}

// getCachedPDF attempts to serve a cached artifact. A miss or Redis error
// returns nil and the render proceeds normally.
func (svc *Service) getCachedPDF(c *fiber.Ctx, key string) []byte {
	if svc.Redis == nil || !svc.Config.Cache.PDFCacheEnabled {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Context(), time.Second)
	defer cancel()

	cached, err := svc.Redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		logging.Warn("Redis read failed", "error", err)
		return nil
	}
	logging.Info("PDF cache hit", "key", key)
	return cached
}

// setCachedPDF stores an artifact best-effort.
func (svc *Service) setCachedPDF(c *fiber.Ctx, key string, data []byte) {
	if svc.Redis == nil || !svc.Config.Cache.PDFCacheEnabled {
		return
	}
	ctx, cancel := context.WithTimeout(c.Context(), time.Second)
	defer cancel()

	ttl := svc.Config.Cache.PDFCacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := svc.Redis.Set(ctx, key, data, ttl).Err(); err != nil {
		logging.Warn("Redis write failed", "error", err)
	}
}

// Uptime returns seconds since the service instance was created.
func (svc *Service) Uptime() float64 {
	return time.Since(svc.startedAt).Seconds()
}
