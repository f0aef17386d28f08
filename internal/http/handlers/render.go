package handlers

import (
	"github.com/gofiber/fiber/v2"

	"catalogpdf/internal/infra/logging"
)

// RenderRequest is the gateway payload: a pre-built HTML document plus
// rendering options.
type RenderRequest struct {
	HTML     string         `json:"html"`
	Options  *RenderOptions `json:"options,omitempty"`
	Filename string         `json:"filename,omitempty"`
}

// testDocument is the canned input replayed by the smoke-test endpoint.
const testDocument = `<!DOCTYPE html>
<html>
<head><style>body { font-family: sans-serif; } h1 { color: #2c3e50; }</style></head>
<body>
<h1>catalogpdf smoke test</h1>
<p>If this document rendered, the browser pipeline works.</p>
</body>
</html>`

// HandleGeneratePDF renders caller-supplied HTML to a PDF attachment.
func (svc *Service) HandleGeneratePDF(c *fiber.Ctx) error {
	var req RenderRequest
	if err := c.BodyParser(&req); err != nil {
		return NewError(fiber.StatusBadRequest, CodeInvalidBody, "Invalid request body").
			WithDetails(err.Error())
	}
	return svc.processRender(c, &req)
}

// HandleTestPDF replays the canned document through the same render path.
// It calls the shared logic directly instead of re-entering the router.
func (svc *Service) HandleTestPDF(c *fiber.Ctx) error {
	return svc.processRender(c, &RenderRequest{HTML: testDocument, Filename: "test.pdf"})
}

// processRender validates, renders and frames one gateway request. All
// validation happens before any browser interaction.
func (svc *Service) processRender(c *fiber.Ctx, req *RenderRequest) error {
	if req.HTML == "" {
		return NewError(fiber.StatusBadRequest, CodeMissingHTML, "Missing required field: html")
	}
	if len(req.HTML) > svc.Config.Limits.MaxHTMLBytes {
		return NewError(fiber.StatusRequestEntityTooLarge, CodeHTMLTooLarge,
			"HTML input exceeds the allowed size")
	}

	filename, err := validateFilename(req.Filename)
	if err != nil {
		return err
	}

	opts, err := svc.resolvePageOptions(req.Options)
	if err != nil {
		return err
	}

	cacheKey := computeCacheKey(req.HTML, opts)
	if cached := svc.getCachedPDF(c, cacheKey); cached != nil {
		return sendPDF(c, cached, filename)
	}

	pdfBuf, err := svc.render(c, req.HTML, opts)
	if err != nil {
		return err
	}

	svc.setCachedPDF(c, cacheKey, pdfBuf)

	logging.Info("PDF generated", "filename", filename, "bytes", len(pdfBuf),
		"request_id", c.Get("X-Request-ID"))
	return sendPDF(c, pdfBuf, filename)
}
