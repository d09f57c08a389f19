package checkout

import (
	orderapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AddressRequest is the delivery address entered at checkout
type AddressRequest struct {
	FullName   string `json:"full_name" binding:"required,max=200"`
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"omitempty,max=200"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,country"`
	Phone      string `json:"phone" binding:"omitempty,max=30"`
}

func (r AddressRequest) toAddress() (valueobject.Address, error) {
	return valueobject.NewAddress(r.FullName, r.Line1, r.Line2, r.City, r.PostalCode, r.Country, r.Phone)
}

// CheckoutRequest turns the buyer's cart into an order
type CheckoutRequest struct {
	CartID     uuid.UUID      `json:"cart_id" binding:"required"`
	Address    AddressRequest `json:"shipping_address" binding:"required"`
	Provider   string         `json:"payment_provider" binding:"omitempty,max=50"`
	BuyerEmail string         `json:"buyer_email" binding:"omitempty,email"`
}

// PaymentResponse tells the client where to send the buyer to pay
type PaymentResponse struct {
	ID          uuid.UUID `json:"id"`
	Provider    string    `json:"provider"`
	Status      string    `json:"status"`
	RedirectURL string    `json:"redirect_url,omitempty"`
}

// CheckoutResponse is the placed order and its payment
type CheckoutResponse struct {
	Order   orderapp.OrderResponse `json:"order"`
	Payment PaymentResponse        `json:"payment"`
	// Replayed is set when the response was served from the idempotency store
	Replayed bool `json:"replayed,omitempty"`
}
