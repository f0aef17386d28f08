package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"catalogpdf/internal/catalog"
	"catalogpdf/internal/infra/logging"
)

// CatalogRequest is the templater payload: structured product data that the
// service turns into HTML before rendering.
type CatalogRequest struct {
	Products     []catalog.Product      `json:"products"`
	BusinessInfo catalog.BusinessInfo   `json:"businessInfo"`
	Template     *catalog.StyleTemplate `json:"template,omitempty"`
	Options      *RenderOptions         `json:"options,omitempty"`
}

// catalogViewportHeight replaces the configured viewport height for catalog
// renders; templated catalogs are tall documents.
const catalogViewportHeight = 1600

// HandleGenerateCatalogPDF templates a product catalog and renders it.
func (svc *Service) HandleGenerateCatalogPDF(c *fiber.Ctx) error {
	var req CatalogRequest
	if err := c.BodyParser(&req); err != nil {
		return NewError(fiber.StatusBadRequest, CodeInvalidBody, "Invalid request body").
			WithDetails(err.Error())
	}
	return svc.processCatalog(c, &req)
}

// HandleTestCatalogPDF replays a fixed sample payload through the shared
// catalog logic without going back through the router.
func (svc *Service) HandleTestCatalogPDF(c *fiber.Ctx) error {
	return svc.processCatalog(c, sampleCatalogRequest())
}

// processCatalog validates, templates, renders and frames one catalog
// request. Validation happens before any browser interaction.
func (svc *Service) processCatalog(c *fiber.Ctx, req *CatalogRequest) error {
	if len(req.Products) == 0 {
		return NewError(fiber.StatusBadRequest, CodeMissingProducts,
			"Missing or invalid products: at least one product is required")
	}
	if max := svc.Config.Limits.MaxProducts; max > 0 && len(req.Products) > max {
		return NewError(fiber.StatusRequestEntityTooLarge, CodeTooManyProducts,
			"Product list exceeds the allowed size")
	}
	if strings.TrimSpace(req.BusinessInfo.BusinessName) == "" {
		return NewError(fiber.StatusBadRequest, CodeMissingBusinessName,
			"Missing required field: businessInfo.business_name")
	}

	opts, err := svc.resolvePageOptions(req.Options)
	if err != nil {
		return err
	}
	opts.Viewport.Height = catalogViewportHeight

	html, err := catalog.Render(req.Products, req.BusinessInfo, req.Template)
	if err != nil {
		return NewError(fiber.StatusInternalServerError, CodeGenerationError,
			"Catalog templating failed").WithDetails(err.Error())
	}

	pdfBuf, err := svc.render(c, html, opts)
	if err != nil {
		return err
	}

	filename := catalog.Filename(req.BusinessInfo.BusinessName)
	logging.Info("Catalog PDF generated", "filename", filename,
		"products", len(req.Products), "request_id", c.Get("X-Request-ID"))
	return sendPDF(c, pdfBuf, filename)
}

// sampleCatalogRequest is the canned payload for the catalog smoke test.
func sampleCatalogRequest() *CatalogRequest {
	tpl := &catalog.StyleTemplate{DisplayName: "Catálogo de prueba"}
	tpl.Layout.Columns = 2
	return &CatalogRequest{
		Products: []catalog.Product{
			{ID: "sample-1", Name: "Producto de prueba A", RetailPrice: 1250},
			{ID: "sample-2", Name: "Producto de prueba B", RetailPrice: 18990.5, Description: "Edición limitada"},
			{ID: "sample-3", Name: "Producto de prueba C", RetailPrice: 990},
		},
		BusinessInfo: catalog.BusinessInfo{
			BusinessName: "Tienda Demo",
			Phone:        "+54 11 5555-0100",
			Email:        "ventas@tiendademo.example",
		},
		Template: tpl,
	}
}
