package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code
type Currency string

const (
	EUR Currency = "EUR"
	PLN Currency = "PLN"
	USD Currency = "USD"
	GBP Currency = "GBP"
	SEK Currency = "SEK"
	CZK Currency = "CZK"
)

// DefaultCurrency is used when a tenant does not configure one
const DefaultCurrency = EUR

// MinorUnits is the number of decimal places money is rounded to
const MinorUnits int32 = 2

var hundred = decimal.NewFromInt(100)

// ErrCurrencyMismatch is returned when combining different currencies
var ErrCurrencyMismatch = errors.New("money: currency mismatch")

// ParseCurrency validates a three letter currency code
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("invalid currency code %q", code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("invalid currency code %q", code)
		}
	}
	return Currency(code), nil
}

// Money is an immutable monetary amount in a single currency
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// MustMoney parses a decimal string, panicking on malformed input. Intended for
// constants and tests.
func MustMoney(amount string, currency Currency) Money {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	return Money{amount: d, currency: currency}
}

// NewMoneyFromString creates Money from a string representation
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// NewMoneyEUR creates Money in euro
func NewMoneyEUR(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: EUR}
}

// Zero returns a zero amount in the given currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

// Add returns m + other
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// MustAdd adds two amounts known to share a currency
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Subtract returns m - other
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// MustSubtract subtracts two amounts known to share a currency
func (m Money) MustSubtract(other Money) Money {
	result, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Multiply returns a new Money multiplied by the given factor
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// MultiplyByInt returns a new Money multiplied by an integer
func (m Money) MultiplyByInt(factor int64) Money {
	return m.Multiply(decimal.NewFromInt(factor))
}

// Percent returns percent% of m, rounded to minor units (half away from zero)
func (m Money) Percent(percent decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(percent).Div(hundred).Round(MinorUnits), currency: m.currency}
}

// Round rounds to the given number of decimal places
func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places), currency: m.currency}
}

// RoundMinor rounds to minor units
func (m Money) RoundMinor() Money {
	return m.Round(MinorUnits)
}

// Negate returns -m
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Min returns the smaller of the two amounts
func (m Money) Min(other Money) Money {
	if other.amount.LessThan(m.amount) {
		return Money{amount: other.amount, currency: m.currency}
	}
	return m
}

// Equals reports equal amount and currency
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// GreaterThan compares amounts. Currencies must match.
func (m Money) GreaterThan(other Money) (bool, error) {
	if err := m.sameCurrency(other); err != nil {
		return false, err
	}
	return m.amount.GreaterThan(other.amount), nil
}

// LessThan compares amounts. Currencies must match.
func (m Money) LessThan(other Money) (bool, error) {
	if err := m.sameCurrency(other); err != nil {
		return false, err
	}
	return m.amount.LessThan(other.amount), nil
}

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return nil
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(MinorUnits), m.currency)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.StringFixed(MinorUnits),
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = amount
	m.currency = v.Currency
	return nil
}

// Value stores the amount only; the currency lives in its own column
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Sum adds amounts that share currency. An empty list sums to zero.
func Sum(currency Currency, amounts ...Money) (Money, error) {
	total := Zero(currency)
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

// AllocateProportionally splits total across weights in proportion to each
// weight. Every share is rounded down to minor units and the leftover cents
// are handed out one at a time by largest remainder, ties going to the lower
// index. Shares always add up to total, which is clamped to [0, sum(weights)].
func AllocateProportionally(total Money, weights []Money) ([]Money, error) {
	shares := make([]Money, len(weights))
	for i := range shares {
		shares[i] = Zero(total.currency)
	}
	if len(weights) == 0 {
		return shares, nil
	}

	sum := decimal.Zero
	for _, w := range weights {
		if w.currency != total.currency {
			return nil, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, total.currency, w.currency)
		}
		if w.amount.IsPositive() {
			sum = sum.Add(w.amount)
		}
	}
	amount := total.amount.Round(MinorUnits)
	if !amount.IsPositive() || !sum.IsPositive() {
		return shares, nil
	}
	if amount.GreaterThan(sum) {
		amount = sum.Round(MinorUnits)
		if amount.GreaterThan(sum) {
			amount = sum.Truncate(MinorUnits)
		}
	}

	type remainder struct {
		index int
		frac  decimal.Decimal
	}
	remainders := make([]remainder, 0, len(weights))
	allocated := decimal.Zero
	for i, w := range weights {
		if !w.amount.IsPositive() {
			continue
		}
		exact := amount.Mul(w.amount).Div(sum)
		floor := exact.Truncate(MinorUnits)
		shares[i] = Money{amount: floor, currency: total.currency}
		allocated = allocated.Add(floor)
		remainders = append(remainders, remainder{index: i, frac: exact.Sub(floor)})
	}

	sort.SliceStable(remainders, func(a, b int) bool {
		if !remainders[a].frac.Equal(remainders[b].frac) {
			return remainders[a].frac.GreaterThan(remainders[b].frac)
		}
		return remainders[a].index < remainders[b].index
	})

	cent := decimal.New(1, -MinorUnits)
	leftover := amount.Sub(allocated).Div(cent).IntPart()
	for i := 0; leftover > 0 && len(remainders) > 0; i++ {
		r := remainders[i%len(remainders)]
		shares[r.index] = Money{amount: shares[r.index].amount.Add(cent), currency: total.currency}
		leftover--
	}
	return shares, nil
}
