package handlers

import (
	"errors"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"catalogpdf/internal/config"
	"catalogpdf/internal/infra/logging"
)

// Error codes returned in JSON error bodies.
const (
	CodeInvalidBody         = "INVALID_BODY"
	CodeMissingHTML         = "MISSING_HTML"
	CodeHTMLTooLarge        = "HTML_TOO_LARGE"
	CodeInvalidFormat       = "INVALID_FORMAT"
	CodeInvalidMargin       = "INVALID_MARGIN"
	CodeInvalidWaitUntil    = "INVALID_WAIT_UNTIL"
	CodeInvalidFilename     = "INVALID_FILENAME"
	CodeMissingProducts     = "MISSING_PRODUCTS"
	CodeTooManyProducts     = "TOO_MANY_PRODUCTS"
	CodeMissingBusinessName = "MISSING_BUSINESS_NAME"
	CodePDFTooLarge         = "PDF_TOO_LARGE"
	CodeRenderTimeout       = "RENDER_TIMEOUT"
	CodeBrowserLaunchFailed = "BROWSER_LAUNCH_FAILED"
	CodeGenerationError     = "PDF_GENERATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeInternal            = "INTERNAL_ERROR"
)

// Error is a request-boundary failure with a machine-readable code. The
// server's error handler turns it into a JSON body.
type Error struct {
	Status  int
	Code    string
	Message string
	Details string
}

func (e *Error) Error() string { return e.Message }

// NewError builds an Error without details.
func NewError(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// WithDetails attaches an underlying cause to the error body.
func (e *Error) WithDetails(details string) *Error {
	e.Details = details
	return e
}

// ErrorHandler turns handler errors into structured JSON bodies. Stack
// traces are only exposed in development mode.
func ErrorHandler(cfg config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		code := CodeInternal
		msg := "Internal Server Error"
		details := ""

		var apiErr *Error
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &apiErr):
			status = apiErr.Status
			code = apiErr.Code
			msg = apiErr.Message
			details = apiErr.Details
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			msg = fiberErr.Message
		}

		logging.Warn("Request failed", "path", c.Path(), "status", status, "code", code, "message", msg)

		body := fiber.Map{
			"error": msg,
			"code":  code,
		}
		if details != "" {
			body["details"] = details
		}
		if cfg.DevMode {
			body["stack"] = string(debug.Stack())
		}
		return c.Status(status).JSON(body)
	}
}
