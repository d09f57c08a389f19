package shipping

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

var (
	ErrCarrierNotFound   = errors.New("shipping: carrier not registered")
	ErrShipmentNotFound  = errors.New("shipping: shipment not found")
	ErrCarrierRequest    = errors.New("shipping: carrier request failed")
	ErrCarrierBadRequest = errors.New("shipping: carrier rejected the shipment")
)

// TrackingStatus is the carrier's view of a parcel
type TrackingStatus string

const (
	TrackingCreated        TrackingStatus = "CREATED"
	TrackingInTransit      TrackingStatus = "IN_TRANSIT"
	TrackingOutForDelivery TrackingStatus = "OUT_FOR_DELIVERY"
	TrackingDelivered      TrackingStatus = "DELIVERED"
	TrackingException      TrackingStatus = "EXCEPTION"
)

// ParseTrackingStatus maps a carrier string onto a known status
func ParseTrackingStatus(s string) (TrackingStatus, error) {
	switch st := TrackingStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case TrackingCreated, TrackingInTransit, TrackingOutForDelivery, TrackingDelivered, TrackingException:
		return st, nil
	default:
		return "", fmt.Errorf("shipping: unknown tracking status %q", s)
	}
}

// Parcel describes what is shipped
type Parcel struct {
	Items       int
	WeightGrams int
}

// ShipmentRequest books a parcel for one sub-order
type ShipmentRequest struct {
	TenantID       uuid.UUID
	SubOrderID     uuid.UUID
	SubOrderNumber string
	SellerID       uuid.UUID
	Recipient      valueobject.Address
	Parcel         Parcel
}

// Shipment is the carrier booking
type Shipment struct {
	Carrier        string
	TrackingNumber string
	LabelURL       string
}

// Provider is a carrier integration
type Provider interface {
	// Code is the carrier code stored on sub-orders, e.g. STANDARD_POST
	Code() string

	CreateShipment(ctx context.Context, req ShipmentRequest) (*Shipment, error)

	Track(ctx context.Context, trackingNumber string) (TrackingStatus, error)
}

// Registry resolves carriers by code
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a carrier
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[strings.ToUpper(p.Code())] = p
}

// Get returns the carrier for a code, case-insensitively
func (r *Registry) Get(code string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCarrierNotFound, code)
	}
	return p, nil
}

// Codes lists registered carriers in sorted order
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.providers))
	for c := range r.providers {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
