package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
)

type capturingRenderer struct {
	req *RenderRequest
	err error
}

func (r *capturingRenderer) Render(_ context.Context, req *RenderRequest) (*RenderResult, error) {
	r.req = req
	if r.err != nil {
		return nil, r.err
	}
	return &RenderResult{PDFData: []byte("%PDF-1.7"), PageCount: 1}, nil
}

func (r *capturingRenderer) Close() error { return nil }

func newSlip() *order.PackingSlip {
	return &order.PackingSlip{
		OrderNumber:    "MKT-20261018-0001",
		SubOrderNumber: "MKT-20261018-0001-02",
		PlacedAt:       time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
		ShipTo: valueobject.Address{
			FullName:   "Anna <Nowak>",
			Line1:      "ul. Prosta 1",
			City:       "Warszawa",
			PostalCode: "00-001",
			Country:    "PL",
		},
		ShippingMethod: "EXPRESS",
		Lines: []order.PackingSlipLine{
			{SKU: "B-1", Name: "Mug & Saucer", Quantity: 2},
			{SKU: "B-7", Name: "Teapot", Quantity: 1},
		},
		TotalUnits:  3,
		GeneratedAt: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}
}

func TestPackingSlipRenderer_RenderHTML(t *testing.T) {
	r := NewPackingSlipRenderer(&capturingRenderer{}, "A4", zap.NewNop())

	doc, err := r.RenderHTML(newSlip())
	require.NoError(t, err)

	assert.Contains(t, doc, "MKT-20261018-0001-02")
	assert.Contains(t, doc, "2026-10-18 09:30 UTC")
	assert.Contains(t, doc, "EXPRESS")
	assert.Contains(t, doc, "00-001 Warszawa")
	assert.Contains(t, doc, "Anna &lt;Nowak&gt;")
	assert.Contains(t, doc, "Mug &amp; Saucer")
	assert.Contains(t, doc, `<td class="qty">2</td>`)
	assert.Contains(t, doc, `<th class="qty">3</th>`)
	assert.NotContains(t, doc, "Tracking")
}

func TestPackingSlipRenderer_RenderHTML_Tracking(t *testing.T) {
	r := NewPackingSlipRenderer(&capturingRenderer{}, "A4", zap.NewNop())
	slip := newSlip()
	slip.Carrier = "DHL"
	slip.TrackingNumber = "JD0001"

	doc, err := r.RenderHTML(slip)
	require.NoError(t, err)
	assert.Contains(t, doc, "DHL JD0001")
}

func TestPackingSlipRenderer_RenderPackingSlip(t *testing.T) {
	pdf := &capturingRenderer{}
	r := NewPackingSlipRenderer(pdf, "a6", zap.NewNop())

	data, err := r.RenderPackingSlip(context.Background(), newSlip())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), data)

	require.NotNil(t, pdf.req)
	assert.Equal(t, PaperSizeA6, pdf.req.PaperSize)
	assert.Equal(t, "Packing slip MKT-20261018-0001-02", pdf.req.Title)
	assert.Equal(t, packingSlipFooter, pdf.req.FooterHTML)
	assert.Contains(t, pdf.req.HTML, "Teapot")
}

func TestPackingSlipRenderer_UnknownPaperFallsBackToA4(t *testing.T) {
	pdf := &capturingRenderer{}
	r := NewPackingSlipRenderer(pdf, "folio", zap.NewNop())

	_, err := r.RenderPackingSlip(context.Background(), newSlip())
	require.NoError(t, err)
	assert.Equal(t, PaperSizeA4, pdf.req.PaperSize)
}

func TestPackingSlipRenderer_PropagatesRenderError(t *testing.T) {
	cause := NewRenderError(ErrCodeRenderTimeout, "PDF rendering timed out after 30s", context.DeadlineExceeded)
	r := NewPackingSlipRenderer(&capturingRenderer{err: cause}, "A4", zap.NewNop())

	_, err := r.RenderPackingSlip(context.Background(), newSlip())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
