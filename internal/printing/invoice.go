// Package printing renders committed sales into printable documents: an 80mm
// thermal receipt and an A4 invoice, as self-contained HTML suitable for a
// browser print dialog or PDF conversion.
package printing

import (
	"bytes"
	"fmt"
	"html/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lumenpos/lumenpos/internal/sales"
)

// Format selects the print layout.
type Format string

const (
	FormatThermal Format = "thermal"
	FormatA4      Format = "a4"
)

// InvoiceData is everything a print layout needs.
type InvoiceData struct {
	Sale     sales.SaleDetail
	Customer *sales.Customer
}

// CustomerName falls back to the walk-in label when no customer is linked.
func (d InvoiceData) CustomerName() string {
	if d.Customer != nil && d.Customer.Name != "" {
		return d.Customer.Name
	}
	if d.Sale.CustomerName != "" {
		return d.Sale.CustomerName
	}
	return "Walk-in"
}

// Total recomputes the document total from the lines when the record
// carries none.
func (d InvoiceData) Total() float64 {
	if d.Sale.TotalAmount != 0 {
		return d.Sale.TotalAmount
	}
	var total float64
	for _, item := range d.Sale.Items {
		total += float64(item.Quantity) * item.UnitPrice
	}
	return total
}

// Renderer renders print documents.
type Renderer struct {
	thermal *template.Template
	a4      *template.Template
}

// NewRenderer parses the built-in layouts.
func NewRenderer() *Renderer {
	printer := message.NewPrinter(language.English)
	funcs := template.FuncMap{
		"money": func(v float64) string {
			return printer.Sprintf("%.2f", v)
		},
		"lineTotal": func(item sales.SaleItem) float64 {
			return float64(item.Quantity) * item.UnitPrice
		},
	}
	return &Renderer{
		thermal: template.Must(template.New("thermal").Funcs(funcs).Parse(thermalTemplate)),
		a4:      template.Must(template.New("a4").Funcs(funcs).Parse(a4Template)),
	}
}

// Render produces a complete printable HTML document for the given format.
func (r *Renderer) Render(format Format, data InvoiceData) (string, error) {
	var tmpl *template.Template
	switch format {
	case FormatThermal:
		tmpl = r.thermal
	case FormatA4:
		tmpl = r.a4
	default:
		return "", fmt.Errorf("printing: unknown format %q", format)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("printing: render %s: %w", format, err)
	}
	return buf.String(), nil
}

const thermalTemplate = `<!DOCTYPE html>
<html>
<head>
<title>Invoice {{.Sale.InvoiceNumber}}</title>
<style>
body { margin: 0; padding: 0; }
.receipt { width: 80mm; font-family: monospace; font-size: 12px; padding: 10px; }
.receipt h2 { margin: 0; font-size: 16px; text-align: center; }
.meta { margin: 10px 0; }
.items { border-top: 1px dashed #000; border-bottom: 1px dashed #000; padding: 5px 0; }
.row { display: flex; justify-content: space-between; }
.total { margin-top: 10px; text-align: right; font-size: 14px; font-weight: bold; }
.footer { text-align: center; margin-top: 15px; font-size: 10px; }
@media print { body { -webkit-print-color-adjust: exact; } }
</style>
</head>
<body>
<div class="receipt">
  <h2>SALE RECEIPT</h2>
  <div class="meta">
    <div>Invoice: {{.Sale.InvoiceNumber}}</div>
    <div>Customer: {{.CustomerName}}</div>
    <div>Date: {{.Sale.SaleDate}}</div>
  </div>
  <div class="items">
    {{range .Sale.Items}}
    <div>
      <div>{{.Name}}</div>
      <div class="row">
        <span>Qty: {{.Quantity}} x {{money .UnitPrice}}</span>
        <span>{{money (lineTotal .)}}</span>
      </div>
    </div>
    {{end}}
  </div>
  <div class="total">Total: {{money .Total}}</div>
  <div class="footer">Thank you for your business!</div>
</div>
</body>
</html>
`

const a4Template = `<!DOCTYPE html>
<html>
<head>
<title>Invoice {{.Sale.InvoiceNumber}}</title>
<style>
body { font-family: sans-serif; font-size: 13px; margin: 25mm 20mm; color: #111; }
header { display: flex; justify-content: space-between; margin-bottom: 24px; }
h1 { font-size: 22px; margin: 0; }
.meta div { margin: 2px 0; }
table { width: 100%; border-collapse: collapse; }
th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #ddd; }
th { border-bottom: 2px solid #111; }
td.num, th.num { text-align: right; }
.totals { margin-top: 16px; text-align: right; font-size: 15px; font-weight: bold; }
@media print { body { -webkit-print-color-adjust: exact; } }
</style>
</head>
<body>
<header>
  <h1>INVOICE</h1>
  <div class="meta">
    <div><strong>{{.Sale.InvoiceNumber}}</strong></div>
    <div>Date: {{.Sale.SaleDate}}</div>
    <div>Billed to: {{.CustomerName}}</div>
  </div>
</header>
<table>
  <thead>
    <tr><th>Item</th><th class="num">Qty</th><th class="num">Unit Price</th><th class="num">Total</th></tr>
  </thead>
  <tbody>
    {{range .Sale.Items}}
    <tr>
      <td>{{.Name}}{{if .UnitCode}} ({{.UnitCode}}){{end}}</td>
      <td class="num">{{.Quantity}}</td>
      <td class="num">{{money .UnitPrice}}</td>
      <td class="num">{{money (lineTotal .)}}</td>
    </tr>
    {{end}}
  </tbody>
</table>
<div class="totals">Grand Total: {{money .Total}}</div>
</body>
</html>
`
