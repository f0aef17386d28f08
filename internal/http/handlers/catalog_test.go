package handlers

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHandleGenerateCatalogPDF_ValidationErrors(t *testing.T) {
	manyProducts := make([]string, 11)
	for i := range manyProducts {
		manyProducts[i] = fmt.Sprintf(`{"id":"p%d","name":"P%d","retailPrice":10}`, i, i)
	}

	tests := []struct {
		name    string
		body    string
		status  int
		code    string
		mention string
	}{
		{
			"empty products",
			`{"products":[],"businessInfo":{"business_name":"Tienda"}}`,
			fiber.StatusBadRequest, CodeMissingProducts, "products",
		},
		{
			"absent products",
			`{"businessInfo":{"business_name":"Tienda"}}`,
			fiber.StatusBadRequest, CodeMissingProducts, "products",
		},
		{
			"missing business name",
			`{"products":[{"id":"p1","name":"P1","retailPrice":10}],"businessInfo":{"business_name":"  "}}`,
			fiber.StatusBadRequest, CodeMissingBusinessName, "business_name",
		},
		{
			"too many products",
			`{"products":[` + strings.Join(manyProducts, ",") + `],"businessInfo":{"business_name":"Tienda"}}`,
			fiber.StatusRequestEntityTooLarge, CodeTooManyProducts, "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(testCfg(), nil, nil)
			app := testApp(svc)

			status, body := postJSON(t, app, "/api/generate-pdf", tc.body)
			if status != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, status)
			}
			if body["code"] != tc.code {
				t.Fatalf("expected code %s, got %v", tc.code, body["code"])
			}
			if tc.mention != "" {
				msg, _ := body["error"].(string)
				if !strings.Contains(msg, tc.mention) {
					t.Fatalf("expected error message to mention %q, got %q", tc.mention, msg)
				}
			}
			if svc.Chrome.Launched() {
				t.Fatalf("validation failure must not launch the browser")
			}
		})
	}
}

func TestHandleGenerateCatalogPDF_RenderFailurePropagates(t *testing.T) {
	svc := NewService(testCfg(), nil, nil)
	app := testApp(svc)

	body := `{"products":[{"id":"p1","name":"P1","retailPrice":1500}],"businessInfo":{"business_name":"Tienda"}}`
	status, parsed := postJSON(t, app, "/api/generate-pdf", body)
	if status != fiber.StatusInternalServerError {
		t.Fatalf("expected 500 with missing chrome, got %d", status)
	}
	if parsed["code"] != CodeBrowserLaunchFailed {
		t.Fatalf("expected code %s, got %v", CodeBrowserLaunchFailed, parsed["code"])
	}
}

func TestHandleTestCatalogPDF_ReplaysSampleThroughSharedLogic(t *testing.T) {
	svc := NewService(testCfg(), nil, nil)
	app := testApp(svc)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/test-pdf", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	// The sample payload is valid, so it must reach the render stage.
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500 with missing chrome, got %d", resp.StatusCode)
	}
}

func TestSampleCatalogRequest_IsValid(t *testing.T) {
	req := sampleCatalogRequest()
	if len(req.Products) == 0 {
		t.Fatalf("sample must carry products")
	}
	if strings.TrimSpace(req.BusinessInfo.BusinessName) == "" {
		t.Fatalf("sample must carry a business name")
	}
}
