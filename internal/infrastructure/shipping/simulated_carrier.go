package shipping

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shipping"
)

// SimulatedCarrier books parcels without calling anyone. Tracking numbers
// are derived from the sub-order number, so booking twice yields the same one.
type SimulatedCarrier struct {
	code         string
	prefix       string
	labelBaseURL string
}

// NewSimulatedCarrier creates a carrier with the given code and tracking prefix
func NewSimulatedCarrier(code, prefix, labelBaseURL string) *SimulatedCarrier {
	return &SimulatedCarrier{
		code:         strings.ToUpper(code),
		prefix:       strings.ToUpper(prefix),
		labelBaseURL: strings.TrimRight(labelBaseURL, "/"),
	}
}

// NewStandardPost is the STANDARD_POST carrier
func NewStandardPost(labelBaseURL string) *SimulatedCarrier {
	return NewSimulatedCarrier("STANDARD_POST", "SP", labelBaseURL)
}

// NewExpressCourier is the EXPRESS_COURIER carrier
func NewExpressCourier(labelBaseURL string) *SimulatedCarrier {
	return NewSimulatedCarrier("EXPRESS_COURIER", "EC", labelBaseURL)
}

func (c *SimulatedCarrier) Code() string { return c.code }

// CreateShipment returns a deterministic tracking number and label URL
func (c *SimulatedCarrier) CreateShipment(ctx context.Context, req shipping.ShipmentRequest) (*shipping.Shipment, error) {
	number := strings.TrimSpace(req.SubOrderNumber)
	if number == "" {
		return nil, fmt.Errorf("%w: sub-order number is required", shipping.ErrCarrierBadRequest)
	}
	tracking := c.TrackingNumber(number)
	return &shipping.Shipment{
		Carrier:        c.code,
		TrackingNumber: tracking,
		LabelURL:       fmt.Sprintf("%s/labels/%s.pdf", c.labelBaseURL, tracking),
	}, nil
}

// TrackingNumber derives the tracking number of a sub-order
func (c *SimulatedCarrier) TrackingNumber(subOrderNumber string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToUpper(subOrderNumber)))
	return fmt.Sprintf("%s%012d", c.prefix, h.Sum64()%1_000_000_000_000)
}

// Track reports parcels of this carrier as in transit
func (c *SimulatedCarrier) Track(ctx context.Context, trackingNumber string) (shipping.TrackingStatus, error) {
	if !strings.HasPrefix(strings.ToUpper(trackingNumber), c.prefix) {
		return "", fmt.Errorf("%w: %s", shipping.ErrShipmentNotFound, trackingNumber)
	}
	return shipping.TrackingInTransit, nil
}

var _ shipping.Provider = (*SimulatedCarrier)(nil)
