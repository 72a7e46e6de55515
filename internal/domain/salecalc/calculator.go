// Package salecalc keeps the line items of one sales order and derives the
// order totals from them.
package salecalc

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidIndex is returned when a line item index is outside the current list.
var ErrInvalidIndex = errors.New("line item index out of range")

var hundred = decimal.NewFromInt(100)

// LineItem is a single product entry of an order.
type LineItem struct {
	ProductID       string          `json:"product_id"`
	UnitPrice       decimal.Decimal `json:"price"`
	Quantity        decimal.Decimal `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discount"`
}

// LineAmount returns unit price times quantity.
func (l LineItem) LineAmount() decimal.Decimal {
	return l.UnitPrice.Mul(l.Quantity)
}

// Subtotal returns the line amount after the line discount.
func (l LineItem) Subtotal() decimal.Decimal {
	amount := l.LineAmount()
	return amount.Sub(percentOf(amount, l.DiscountPercent))
}

// Totals are the order level amounts derived from the current line items.
type Totals struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	TaxPercent  decimal.Decimal `json:"tax"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	FinalAmount decimal.Decimal `json:"final_amount"`
}

// Calculator owns the line items of one order and its tax percentage.
// It is not safe for concurrent use.
type Calculator struct {
	items      []LineItem
	taxPercent decimal.Decimal
}

// New returns an empty calculator.
func New() *Calculator {
	return &Calculator{}
}

// Restore rebuilds a calculator from a previously taken snapshot.
func Restore(items []LineItem, taxPercent decimal.Decimal) *Calculator {
	c := &Calculator{taxPercent: taxPercent}
	if len(items) > 0 {
		c.items = append(make([]LineItem, 0, len(items)), items...)
	}
	return c
}

// Snapshot returns a copy of the line items and the tax percentage.
func (c *Calculator) Snapshot() ([]LineItem, decimal.Decimal) {
	return c.LineItems(), c.taxPercent
}

// Len returns the number of line items.
func (c *Calculator) Len() int {
	return len(c.items)
}

// LineItems returns a copy of the current line items.
func (c *Calculator) LineItems() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// TaxPercent returns the order tax percentage.
func (c *Calculator) TaxPercent() decimal.Decimal {
	return c.taxPercent
}

// AddLineItem appends an empty line item and returns its index.
func (c *Calculator) AddLineItem() int {
	c.items = append(c.items, LineItem{})
	return len(c.items) - 1
}

// RemoveLineItem removes the line item at index.
func (c *Calculator) RemoveLineItem(index int) error {
	if !c.valid(index) {
		return ErrInvalidIndex
	}
	c.items = append(c.items[:index], c.items[index+1:]...)
	return nil
}

// SetProduct selects a product for the line and copies its catalog price.
// An unresolved price sets the unit price to zero.
func (c *Calculator) SetProduct(index int, productID string, catalogPrice decimal.NullDecimal) error {
	return c.updateLine(index, func(l *LineItem) {
		l.ProductID = productID
		if catalogPrice.Valid {
			l.UnitPrice = catalogPrice.Decimal
		} else {
			l.UnitPrice = decimal.Zero
		}
	})
}

// SetUnitPrice overrides the unit price of the line.
func (c *Calculator) SetUnitPrice(index int, price decimal.Decimal) error {
	return c.updateLine(index, func(l *LineItem) { l.UnitPrice = price })
}

// SetQuantity sets the quantity of the line.
func (c *Calculator) SetQuantity(index int, quantity decimal.Decimal) error {
	return c.updateLine(index, func(l *LineItem) { l.Quantity = quantity })
}

// SetDiscountPercent sets the discount percentage of the line.
func (c *Calculator) SetDiscountPercent(index int, percent decimal.Decimal) error {
	return c.updateLine(index, func(l *LineItem) { l.DiscountPercent = percent })
}

// SetTaxPercent sets the order tax percentage.
func (c *Calculator) SetTaxPercent(percent decimal.Decimal) {
	c.taxPercent = percent
}

// Totals derives the order amounts from the current state.
func (c *Calculator) Totals() Totals {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	tax := percentOf(total, c.taxPercent)
	return Totals{
		TotalAmount: total,
		TaxPercent:  c.taxPercent,
		TaxAmount:   tax,
		FinalAmount: total.Add(tax),
	}
}

// Reset clears all line items and the tax percentage.
func (c *Calculator) Reset() {
	c.items = nil
	c.taxPercent = decimal.Zero
}

// updateLine is the only path through which a line item is mutated.
// The index is checked before fn runs.
func (c *Calculator) updateLine(index int, fn func(*LineItem)) error {
	if !c.valid(index) {
		return ErrInvalidIndex
	}
	fn(&c.items[index])
	return nil
}

func (c *Calculator) valid(index int) bool {
	return index >= 0 && index < len(c.items)
}

func percentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}
