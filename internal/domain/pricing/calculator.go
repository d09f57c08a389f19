package pricing

import (
	"bytes"
	"sort"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteLine is one cart line to be priced
type QuoteLine struct {
	ProductID    uuid.UUID
	SellerID     uuid.UUID
	CategoryPath []uuid.UUID
	SKU          string
	Name         string
	UnitPrice    valueobject.Money
	Quantity     int
}

// QuoteInput is everything the calculator needs
type QuoteInput struct {
	Currency    valueobject.Currency
	At          time.Time
	Country     string // destination country, drives VAT and shipping
	Lines       []QuoteLine
	SellerTypes map[uuid.UUID]catalog.SellerType
	Methods     map[uuid.UUID]ShippingMethod // missing sellers default to STANDARD
	Promotion   *Promotion
}

// LineQuote is a priced line. All amounts are net of VAT unless stated.
type LineQuote struct {
	ProductID        uuid.UUID         `json:"product_id"`
	SKU              string            `json:"sku"`
	Name             string            `json:"name"`
	UnitPrice        valueobject.Money `json:"unit_price"`
	Quantity         int               `json:"quantity"`
	Amount           valueobject.Money `json:"amount"`
	Discount         valueobject.Money `json:"discount"`
	Net              valueobject.Money `json:"net"`
	VatRate          decimal.Decimal   `json:"vat_rate"`
	Vat              valueobject.Money `json:"vat"`
	CommissionRuleID *uuid.UUID        `json:"commission_rule_id,omitempty"`
	CommissionRate   decimal.Decimal   `json:"commission_rate"`
	Commission       valueobject.Money `json:"commission"`
}

// SellerQuote is the priced group of one seller; it becomes a sub-order
type SellerQuote struct {
	SellerID    uuid.UUID          `json:"seller_id"`
	SellerType  catalog.SellerType `json:"seller_type"`
	Method      ShippingMethod     `json:"shipping_method"`
	Carrier     string             `json:"carrier"`
	Lines       []LineQuote        `json:"lines"`
	Items       int                `json:"items"`
	Subtotal    valueobject.Money  `json:"subtotal"`
	Discount    valueobject.Money  `json:"discount"`
	Net         valueobject.Money  `json:"net"`
	Shipping    valueobject.Money  `json:"shipping"`
	ShippingVat valueobject.Money  `json:"shipping_vat"`
	Vat         valueobject.Money  `json:"vat"`
	Total       valueobject.Money  `json:"total"`
	Commission  valueobject.Money  `json:"commission"`
	Payout      valueobject.Money  `json:"payout"`
}

// Quote is the priced cart
type Quote struct {
	Currency      valueobject.Currency `json:"currency"`
	Country       string               `json:"country"`
	PromotionCode string               `json:"promotion_code,omitempty"`
	Sellers       []SellerQuote        `json:"sellers"`
	Subtotal      valueobject.Money    `json:"subtotal"`
	Discount      valueobject.Money    `json:"discount"`
	Shipping      valueobject.Money    `json:"shipping"`
	Vat           valueobject.Money    `json:"vat"`
	Total         valueobject.Money    `json:"total"`
	Commission    valueobject.Money    `json:"commission"`
}

// Calculator prices carts against a rule snapshot
type Calculator struct{}

// NewCalculator creates a calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Quote prices the input. Sellers are returned sorted by ID so the result
// is deterministic for the same input.
func (c *Calculator) Quote(snapshot *RuleSnapshot, in QuoteInput) (*Quote, error) {
	if len(in.Lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_CART", "Nothing to quote")
	}
	if in.Currency == "" {
		in.Currency = valueobject.DefaultCurrency
	}
	zero := valueobject.Zero(in.Currency)

	groups, order, err := groupLines(in)
	if err != nil {
		return nil, err
	}

	// Seller subtotals and the cart-wide promotion discount
	subtotals := make([]valueobject.Money, len(order))
	cartSubtotal := zero
	for i, sellerID := range order {
		sub := zero
		for _, l := range groups[sellerID] {
			sub = sub.MustAdd(l.UnitPrice.MultiplyByInt(int64(l.Quantity)))
		}
		subtotals[i] = sub
		cartSubtotal = cartSubtotal.MustAdd(sub)
	}

	discount := zero
	promoCode := ""
	if in.Promotion != nil {
		if err := in.Promotion.CheckApplicable(in.At, cartSubtotal); err != nil {
			return nil, err
		}
		discount = in.Promotion.DiscountFor(cartSubtotal)
		promoCode = in.Promotion.Code
	}
	sellerDiscounts, err := valueobject.AllocateProportionally(discount, subtotals)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		Currency:      in.Currency,
		Country:       in.Country,
		PromotionCode: promoCode,
		Subtotal:      zero,
		Discount:      zero,
		Shipping:      zero,
		Vat:           zero,
		Total:         zero,
		Commission:    zero,
	}
	for i, sellerID := range order {
		sq, err := c.quoteSeller(snapshot, in, sellerID, groups[sellerID], subtotals[i], sellerDiscounts[i])
		if err != nil {
			return nil, err
		}
		q.Sellers = append(q.Sellers, *sq)
		q.Subtotal = q.Subtotal.MustAdd(sq.Subtotal)
		q.Discount = q.Discount.MustAdd(sq.Discount)
		q.Shipping = q.Shipping.MustAdd(sq.Shipping)
		q.Vat = q.Vat.MustAdd(sq.Vat)
		q.Total = q.Total.MustAdd(sq.Total)
		q.Commission = q.Commission.MustAdd(sq.Commission)
	}
	return q, nil
}

func (c *Calculator) quoteSeller(snapshot *RuleSnapshot, in QuoteInput, sellerID uuid.UUID, lines []QuoteLine, subtotal, discount valueobject.Money) (*SellerQuote, error) {
	zero := valueobject.Zero(in.Currency)
	sellerType := in.SellerTypes[sellerID]
	method := in.Methods[sellerID]
	if method == "" {
		method = ShippingStandard
	}

	amounts := make([]valueobject.Money, len(lines))
	for i, l := range lines {
		amounts[i] = l.UnitPrice.MultiplyByInt(int64(l.Quantity))
	}
	lineDiscounts, err := valueobject.AllocateProportionally(discount, amounts)
	if err != nil {
		return nil, err
	}

	sq := &SellerQuote{
		SellerID:   sellerID,
		SellerType: sellerType,
		Method:     method,
		Subtotal:   subtotal,
		Discount:   discount,
		Net:        zero,
		Vat:        zero,
		Commission: zero,
	}
	for i, l := range lines {
		ctx := MatchContext{At: in.At, CategoryPath: l.CategoryPath, SellerType: sellerType, Country: in.Country}
		net := amounts[i].MustSubtract(lineDiscounts[i])
		vat := snapshot.VatFor(ctx)
		commission := snapshot.CommissionFor(ctx)

		lq := LineQuote{
			ProductID:        l.ProductID,
			SKU:              l.SKU,
			Name:             l.Name,
			UnitPrice:        l.UnitPrice,
			Quantity:         l.Quantity,
			Amount:           amounts[i],
			Discount:         lineDiscounts[i],
			Net:              net,
			VatRate:          vat.RatePercent,
			Vat:              net.Percent(vat.RatePercent),
			CommissionRuleID: commission.RuleID,
			CommissionRate:   commission.RatePercent,
			Commission:       commission.Apply(net),
		}
		sq.Lines = append(sq.Lines, lq)
		sq.Items += l.Quantity
		sq.Net = sq.Net.MustAdd(lq.Net)
		sq.Vat = sq.Vat.MustAdd(lq.Vat)
		sq.Commission = sq.Commission.MustAdd(lq.Commission)
	}

	shipCtx := MatchContext{At: in.At, SellerType: sellerType, Country: in.Country, Method: method}
	rule, err := snapshot.ShippingFor(shipCtx)
	if err != nil {
		return nil, err
	}
	if rule.BaseFee.Currency() != in.Currency {
		return nil, ErrShippingUnavailable
	}
	sq.Carrier = rule.Carrier
	sq.Shipping = rule.Fee(subtotal, sq.Items)
	shipVat := snapshot.VatFor(MatchContext{At: in.At, Country: in.Country})
	sq.ShippingVat = sq.Shipping.Percent(shipVat.RatePercent)
	sq.Vat = sq.Vat.MustAdd(sq.ShippingVat)

	sq.Total = sq.Net.MustAdd(sq.Shipping).MustAdd(sq.Vat)
	sq.Payout = sq.Total.MustSubtract(sq.Commission)
	return sq, nil
}

// groupLines validates lines and groups them by seller in ascending seller ID order
func groupLines(in QuoteInput) (map[uuid.UUID][]QuoteLine, []uuid.UUID, error) {
	groups := make(map[uuid.UUID][]QuoteLine)
	var order []uuid.UUID
	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			return nil, nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		if l.UnitPrice.Currency() != in.Currency {
			return nil, nil, shared.NewDomainError("CURRENCY_MISMATCH", "All items must be priced in "+string(in.Currency))
		}
		if _, ok := groups[l.SellerID]; !ok {
			order = append(order, l.SellerID)
		}
		groups[l.SellerID] = append(groups[l.SellerID], l)
	}
	sort.Slice(order, func(i, j int) bool {
		return bytes.Compare(order[i][:], order[j][:]) < 0
	})
	return groups, order, nil
}
