package printing

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"go.uber.org/zap"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/order"
)

const packingSlipFooter = `<div style="font-size:8px;width:100%;text-align:center;color:#666">` +
	`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`

var packingSlipTemplate = template.Must(template.New("packing_slip").Funcs(template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("2006-01-02 15:04 UTC")
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Packing slip {{.SubOrderNumber}}</title>
<style>
body { font-family: sans-serif; font-size: 11px; color: #222; }
h1 { font-size: 18px; margin: 0 0 8px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { border-bottom: 1px solid #ccc; padding: 4px; text-align: left; }
td.qty, th.qty { text-align: right; width: 60px; }
.meta td { border: none; padding: 1px 4px; }
.ship-to { margin-top: 12px; }
</style>
</head>
<body>
<h1>Packing slip</h1>
<table class="meta">
<tr><td>Order</td><td>{{.OrderNumber}}</td></tr>
<tr><td>Shipment</td><td>{{.SubOrderNumber}}</td></tr>
<tr><td>Placed</td><td>{{date .PlacedAt}}</td></tr>
<tr><td>Shipping</td><td>{{.ShippingMethod}}</td></tr>
{{- if .TrackingNumber}}
<tr><td>Tracking</td><td>{{.Carrier}} {{.TrackingNumber}}</td></tr>
{{- end}}
</table>
<div class="ship-to">
<strong>Ship to</strong><br>
{{.ShipTo.FullName}}<br>
{{.ShipTo.Line1}}<br>
{{- if .ShipTo.Line2}}
{{.ShipTo.Line2}}<br>
{{- end}}
{{.ShipTo.PostalCode}} {{.ShipTo.City}}<br>
{{.ShipTo.Country}}
{{- if .ShipTo.Phone}}<br>{{.ShipTo.Phone}}{{end}}
</div>
<table>
<thead><tr><th>SKU</th><th>Product</th><th class="qty">Qty</th></tr></thead>
<tbody>
{{- range .Lines}}
<tr><td>{{.SKU}}</td><td>{{.Name}}</td><td class="qty">{{.Quantity}}</td></tr>
{{- end}}
</tbody>
<tfoot><tr><th colspan="2">Total units</th><th class="qty">{{.TotalUnits}}</th></tr></tfoot>
</table>
<p style="margin-top:16px;color:#666">Generated {{date .GeneratedAt}}</p>
</body>
</html>
`))

// PackingSlipRenderer prints packing slips through a PDFRenderer
type PackingSlipRenderer struct {
	pdf       PDFRenderer
	paperSize PaperSize
	logger    *zap.Logger
}

// NewPackingSlipRenderer creates a packing slip renderer. An unknown paper
// size falls back to A4.
func NewPackingSlipRenderer(pdf PDFRenderer, paperSize string, logger *zap.Logger) *PackingSlipRenderer {
	size, ok := ParsePaperSize(paperSize)
	if !ok {
		logger.Warn("Unknown packing slip paper size, using A4", zap.String("paper_size", paperSize))
		size = PaperSizeA4
	}
	return &PackingSlipRenderer{pdf: pdf, paperSize: size, logger: logger}
}

// RenderHTML executes the packing slip template
func (r *PackingSlipRenderer) RenderHTML(slip *order.PackingSlip) (string, error) {
	var buf bytes.Buffer
	if err := packingSlipTemplate.Execute(&buf, slip); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "packing slip template failed", err)
	}
	return buf.String(), nil
}

// RenderPackingSlip renders the slip to PDF
func (r *PackingSlipRenderer) RenderPackingSlip(ctx context.Context, slip *order.PackingSlip) ([]byte, error) {
	doc, err := r.RenderHTML(slip)
	if err != nil {
		return nil, err
	}
	result, err := r.pdf.Render(ctx, &RenderRequest{
		HTML:       doc,
		PaperSize:  r.paperSize,
		Margins:    DefaultMargins(),
		Title:      "Packing slip " + slip.SubOrderNumber,
		FooterHTML: packingSlipFooter,
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("Packing slip rendered",
		zap.String("sub_order", slip.SubOrderNumber),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration))
	return result.PDFData, nil
}

var _ order.DocumentRenderer = (*PackingSlipRenderer)(nil)
