package catalog

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Product is one catalog entry. Only presence is validated; formatting
// happens at render time.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ImageURL    string  `json:"imageUrl"`
	RetailPrice float64 `json:"retailPrice"`
	Description string  `json:"description,omitempty"`
}

// BusinessInfo carries the merchant details shown in the catalog header.
type BusinessInfo struct {
	BusinessName string `json:"business_name"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
}

// StyleTemplate tunes the catalog look. Every field is optional; absent or
// out-of-range values fall back to defaults.
type StyleTemplate struct {
	DisplayName     string `json:"displayName,omitempty"`
	ProductsPerPage int    `json:"productsPerPage,omitempty"`
	Layout          struct {
		Columns int `json:"columns,omitempty"`
	} `json:"layout,omitempty"`
	Colors struct {
		Primary    string `json:"primary,omitempty"`
		Secondary  string `json:"secondary,omitempty"`
		Accent     string `json:"accent,omitempty"`
		Background string `json:"background,omitempty"`
		Text       string `json:"text,omitempty"`
	} `json:"colors,omitempty"`
}

const (
	defaultDisplayName     = "Catálogo de productos"
	defaultProductsPerPage = 6
	defaultColumns         = 3
)

var defaultColors = struct {
	primary, secondary, accent, background, text string
}{
	primary:    "#2c3e50",
	secondary:  "#7f8c8d",
	accent:     "#e74c3c",
	background: "#ffffff",
	text:       "#333333",
}

// pricePrinter groups thousands the way the catalog's audience reads
// prices (es locale: 19.999,50).
var pricePrinter = message.NewPrinter(language.Spanish)

// FormatPrice renders a retail price with locale-aware grouping and a
// literal currency prefix.
func FormatPrice(v float64) string {
	return pricePrinter.Sprintf("$ %v", number.Decimal(v, number.Scale(2)))
}

type cardView struct {
	Name        string
	Price       string
	ImageURL    string
	Description string
}

type pageView struct {
	Cards []cardView
}

type catalogView struct {
	BusinessName string
	Phone        string
	Email        string
	DisplayName  string
	Columns      int
	Pages        []pageView

	Primary    string
	Secondary  string
	Accent     string
	Background string
	Text       string
}

var catalogTmpl = template.Must(template.New("catalog").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  @page { size: A4; }
  body {
    margin: 0;
    font-family: 'Helvetica Neue', Arial, sans-serif;
    background: {{.Background}};
    color: {{.Text}};
  }
  header {
    background: {{.Primary}};
    color: {{.Background}};
    padding: 24px 32px;
  }
  header h1 { margin: 0 0 4px 0; font-size: 26px; }
  header .contact { font-size: 12px; opacity: 0.85; }
  h2.catalog-title {
    color: {{.Primary}};
    font-size: 18px;
    margin: 20px 32px 8px;
    border-bottom: 2px solid {{.Accent}};
    padding-bottom: 6px;
  }
  .page { page-break-after: always; }
  .page:last-child { page-break-after: auto; }
  .grid {
    display: grid;
    grid-template-columns: repeat({{.Columns}}, 1fr);
    gap: 16px;
    padding: 16px 32px;
  }
  .product-card {
    border: 1px solid {{.Secondary}};
    border-radius: 6px;
    overflow: hidden;
  }
  .product-card img {
    width: 100%;
    height: 140px;
    object-fit: cover;
    display: block;
    background: {{.Secondary}};
  }
  .product-card .body { padding: 10px 12px; }
  .product-card .name { font-weight: 600; font-size: 14px; margin: 0 0 4px 0; }
  .product-card .price { color: {{.Accent}}; font-weight: 700; font-size: 15px; margin: 0; }
  .product-card .description { color: {{.Secondary}}; font-size: 11px; margin: 6px 0 0 0; }
</style>
</head>
<body>
<header>
  <h1>{{.BusinessName}}</h1>
  <div class="contact">{{if .Phone}}Tel: {{.Phone}}{{end}}{{if .Email}} &middot; {{.Email}}{{end}}</div>
</header>
<h2 class="catalog-title">{{.DisplayName}}</h2>
{{range .Pages}}<div class="page">
<div class="grid">
{{range .Cards}}<div class="product-card">
{{if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.Name}}">{{end}}
<div class="body">
<p class="name">{{.Name}}</p>
<p class="price">{{.Price}}</p>
{{if .Description}}<p class="description">{{.Description}}</p>{{end}}
</div>
</div>
{{end}}</div>
</div>
{{end}}</body>
</html>
`))

// Render builds the catalog HTML for the given products. Deterministic and
// side-effect free; every interpolated field is contextually escaped.
func Render(products []Product, info BusinessInfo, tpl *StyleTemplate) (string, error) {
	view := catalogView{
		BusinessName: info.BusinessName,
		Phone:        info.Phone,
		Email:        info.Email,
		DisplayName:  defaultDisplayName,
		Columns:      defaultColumns,
		Primary:      defaultColors.primary,
		Secondary:    defaultColors.secondary,
		Accent:       defaultColors.accent,
		Background:   defaultColors.background,
		Text:         defaultColors.text,
	}

	perPage := defaultProductsPerPage
	if tpl != nil {
		if tpl.DisplayName != "" {
			view.DisplayName = tpl.DisplayName
		}
		if tpl.ProductsPerPage > 0 {
			perPage = tpl.ProductsPerPage
		}
		if tpl.Layout.Columns > 0 {
			view.Columns = tpl.Layout.Columns
		}
		if c := tpl.Colors.Primary; c != "" {
			view.Primary = c
		}
		if c := tpl.Colors.Secondary; c != "" {
			view.Secondary = c
		}
		if c := tpl.Colors.Accent; c != "" {
			view.Accent = c
		}
		if c := tpl.Colors.Background; c != "" {
			view.Background = c
		}
		if c := tpl.Colors.Text; c != "" {
			view.Text = c
		}
	}

	var cards []cardView
	for _, p := range products {
		cards = append(cards, cardView{
			Name:        p.Name,
			Price:       FormatPrice(p.RetailPrice),
			ImageURL:    p.ImageURL,
			Description: p.Description,
		})
	}
	for len(cards) > 0 {
		n := min(perPage, len(cards))
		view.Pages = append(view.Pages, pageView{Cards: cards[:n]})
		cards = cards[n:]
	}

	var buf bytes.Buffer
	if err := catalogTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("catalog: render template: %w", err)
	}
	return buf.String(), nil
}

// Filename derives the attachment name from the business name: lowercase,
// non-alphanumerics collapsed to single dashes.
func Filename(businessName string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(businessName) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		return "catalogo.pdf"
	}
	return "catalogo-" + name + ".pdf"
}
