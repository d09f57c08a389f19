package order

import (
	"context"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrDocumentsUnavailable = shared.NewDomainError("DOCUMENTS_UNAVAILABLE", "Document rendering is not enabled")
	ErrNotPrintable         = shared.NewDomainError("SUB_ORDER_NOT_PRINTABLE", "Packing slips exist only for paid sub-orders that were not cancelled")
)

// PackingSlipLine is one product to pick
type PackingSlipLine struct {
	SKU      string
	Name     string
	Quantity int
}

// PackingSlip is what a seller puts in the parcel. It carries no prices.
type PackingSlip struct {
	OrderNumber    string
	SubOrderNumber string
	PlacedAt       time.Time
	ShipTo         valueobject.Address
	ShippingMethod string
	Carrier        string
	TrackingNumber string
	Lines          []PackingSlipLine
	TotalUnits     int
	GeneratedAt    time.Time
}

// DocumentRenderer turns a packing slip into a PDF
type DocumentRenderer interface {
	RenderPackingSlip(ctx context.Context, slip *PackingSlip) ([]byte, error)
}

// SetDocumentRenderer enables packing slip PDFs
func (s *Service) SetDocumentRenderer(r DocumentRenderer) {
	s.documents = r
}

// PackingSlip builds the packing slip of a sub-order for its seller
func (s *Service) PackingSlip(ctx context.Context, tenantID, subOrderID uuid.UUID, actor shared.Actor) (*PackingSlip, error) {
	o, err := s.orderRepo.FindBySubOrderID(ctx, tenantID, subOrderID)
	if err != nil {
		return nil, err
	}
	sub, err := o.SubOrder(subOrderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsPrivileged() && !actor.OwnsStore(sub.SellerID) {
		return nil, shared.ErrNotFound
	}
	switch sub.Status {
	case order.StatusPaid, order.StatusPreparing, order.StatusShipped, order.StatusDelivered:
	default:
		return nil, ErrNotPrintable
	}
	return newPackingSlip(o, sub, s.now()), nil
}

// RenderPackingSlip renders the packing slip PDF and returns it with a file name
func (s *Service) RenderPackingSlip(ctx context.Context, tenantID, subOrderID uuid.UUID, actor shared.Actor) ([]byte, string, error) {
	if s.documents == nil {
		return nil, "", ErrDocumentsUnavailable
	}
	slip, err := s.PackingSlip(ctx, tenantID, subOrderID, actor)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.documents.RenderPackingSlip(ctx, slip)
	if err != nil {
		s.logger.Error("Packing slip rendering failed",
			zap.String("sub_order", slip.SubOrderNumber),
			zap.Error(err))
		return nil, "", err
	}
	return pdf, "packing-slip-" + slip.SubOrderNumber + ".pdf", nil
}

func newPackingSlip(o *order.Order, sub *order.SubOrder, at time.Time) *PackingSlip {
	slip := &PackingSlip{
		OrderNumber:    o.Number,
		SubOrderNumber: sub.Number,
		PlacedAt:       o.PlacedAt,
		ShipTo:         o.ShippingAddress,
		ShippingMethod: string(sub.ShippingMethod),
		Carrier:        sub.Carrier,
		TrackingNumber: sub.TrackingNumber,
		Lines:          make([]PackingSlipLine, 0, len(sub.Items)),
		GeneratedAt:    at,
	}
	for _, it := range sub.Items {
		slip.Lines = append(slip.Lines, PackingSlipLine{SKU: it.SKU, Name: it.Name, Quantity: it.Quantity})
		slip.TotalUnits += it.Quantity
	}
	return slip
}
