// Package draft implements the sale-entry engine: an in-progress sale as a
// value, mutated through discrete operations that each return a new draft,
// recomputed totals, and exhaustive field-keyed validation. The engine never
// performs I/O; catalog lookups are resolved by the caller and passed in.
package draft

import (
	"errors"
	"time"
)

// PaymentMethod enumerates the supported tender types.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentUPI  PaymentMethod = "upi"
	PaymentCard PaymentMethod = "card"
)

// Valid reports whether m is one of the known payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentUPI, PaymentCard:
		return true
	}
	return false
}

var (
	// ErrDuplicateItem is returned when a line for the same item already
	// exists. Surfaced as a transient notice, not a field error.
	ErrDuplicateItem = errors.New("draft: item already added to sale")
	// ErrLineOutOfRange is returned for a line index outside the draft.
	ErrLineOutOfRange = errors.New("draft: line index out of range")
	// ErrInvalidPaymentMethod is returned for an unknown tender type.
	ErrInvalidPaymentMethod = errors.New("draft: invalid payment method")
)

// Line is one item row of a draft. An empty ItemID marks a placeholder row
// kept so the form always offers an entry point; placeholders are excluded
// from totals, validation and submission.
type Line struct {
	ItemID      string
	Quantity    int
	UnitPrice   float64
	StockOnHand float64
	UnitCode    string
	Description string
}

// Placeholder reports whether the line has no item picked yet.
func (l Line) Placeholder() bool {
	return l.ItemID == ""
}

// Total is the derived line amount. Never stored, always recomputed.
func (l Line) Total() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// Pick is the catalog snapshot captured at the moment an item is chosen.
// StockOnHand already has the expired-sale rule applied; it is not
// re-validated live against concurrent stock changes elsewhere.
type Pick struct {
	UnitPrice   float64
	StockOnHand float64
	UnitCode    string
}

// Draft is the in-progress, not-yet-submitted sale. It is a value: engine
// operations copy it and return the successor, leaving the input untouched.
type Draft struct {
	CustomerID    string
	InvoiceNumber string
	SaleDate      time.Time
	PaymentMethod PaymentMethod
	Note          string
	Lines         []Line
	Errors        ErrorSet
}

func (d Draft) clone() Draft {
	out := d
	out.Lines = make([]Line, len(d.Lines))
	copy(out.Lines, d.Lines)
	out.Errors = d.Errors.clone()
	return out
}

// ErrorMessage returns the first recorded message for a wire-form field key,
// e.g. "invoice_number" or "items.0.quantity".
func (d Draft) ErrorMessage(field string) string {
	return d.Errors.Message(ParseKey(field))
}

// ItemCount counts non-placeholder lines.
func (d Draft) ItemCount() int {
	n := 0
	for _, l := range d.Lines {
		if !l.Placeholder() {
			n++
		}
	}
	return n
}

func (d Draft) hasItem(itemID string, skip int) bool {
	for i, l := range d.Lines {
		if i == skip {
			continue
		}
		if !l.Placeholder() && l.ItemID == itemID {
			return true
		}
	}
	return false
}

// Engine applies sale-entry business rules. The tax rate is explicit
// configuration rather than a constant so tender policy changes stay out of
// the arithmetic.
type Engine struct {
	taxRate float64
}

// NewEngine builds an engine with the given tax rate, expressed as a
// fraction (0.05 for 5%).
func NewEngine(taxRate float64) *Engine {
	return &Engine{taxRate: taxRate}
}

// Initialize creates a fresh draft: one placeholder line, the supplied
// invoice number, the given sale date and cash tender. Fetching the invoice
// number is the caller's concern.
func (e *Engine) Initialize(invoiceNumber string, saleDate time.Time) Draft {
	return Draft{
		InvoiceNumber: invoiceNumber,
		SaleDate:      saleDate,
		PaymentMethod: PaymentCash,
		Lines:         []Line{{Quantity: 1}},
		Errors:        ErrorSet{},
	}
}

// AddLine appends a line for itemID seeded from the resolved catalog pick.
// A draft holding only the initial placeholder has that placeholder replaced
// instead. Adding an item already present is rejected without mutating the
// draft. Resolving the "at least one item" error is implicit in a
// successful add.
func (e *Engine) AddLine(d Draft, itemID string, pick Pick) (Draft, error) {
	if itemID == "" {
		return d, ErrLineOutOfRange
	}
	if d.hasItem(itemID, -1) {
		return d, ErrDuplicateItem
	}

	next := d.clone()
	line := Line{
		ItemID:      itemID,
		Quantity:    1,
		UnitPrice:   pick.UnitPrice,
		StockOnHand: pick.StockOnHand,
		UnitCode:    pick.UnitCode,
	}
	if len(next.Lines) == 1 && next.Lines[0].Placeholder() {
		next.Lines[0] = line
	} else {
		next.Lines = append(next.Lines, line)
	}
	next.Errors.clearKey(Scalar(FieldItems))
	return next, nil
}

// RepickLine swaps the item on an existing line and captures a fresh catalog
// snapshot. All stale errors for that line are dropped; quantity and any
// typed description survive the re-pick.
func (e *Engine) RepickLine(d Draft, index int, itemID string, pick Pick) (Draft, error) {
	if index < 0 || index >= len(d.Lines) {
		return d, ErrLineOutOfRange
	}
	if itemID == "" {
		return d, ErrLineOutOfRange
	}
	if d.hasItem(itemID, index) {
		return d, ErrDuplicateItem
	}

	next := d.clone()
	line := &next.Lines[index]
	line.ItemID = itemID
	line.UnitPrice = pick.UnitPrice
	line.StockOnHand = pick.StockOnHand
	line.UnitCode = pick.UnitCode
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	next.Errors.clearLine(index)
	return next, nil
}

// SetLineQuantity updates the quantity of one line. Range rules apply at
// validation time, not here, so the form can hold transiently bad input.
func (e *Engine) SetLineQuantity(d Draft, index, quantity int) (Draft, error) {
	return e.updateLine(d, index, func(l *Line) { l.Quantity = quantity })
}

// SetLineUnitPrice updates the unit price of one line.
func (e *Engine) SetLineUnitPrice(d Draft, index int, unitPrice float64) (Draft, error) {
	return e.updateLine(d, index, func(l *Line) { l.UnitPrice = unitPrice })
}

// SetLineDescription updates the free-text description of one line.
func (e *Engine) SetLineDescription(d Draft, index int, description string) (Draft, error) {
	return e.updateLine(d, index, func(l *Line) { l.Description = description })
}

func (e *Engine) updateLine(d Draft, index int, fn func(*Line)) (Draft, error) {
	if index < 0 || index >= len(d.Lines) {
		return d, ErrLineOutOfRange
	}
	next := d.clone()
	fn(&next.Lines[index])
	return next, nil
}

// RemoveLine deletes the line at index. The entire line-error namespace is
// invalidated because indices shift. An emptied draft gets a fresh
// placeholder back; a draft never has zero rows.
func (e *Engine) RemoveLine(d Draft, index int) (Draft, error) {
	if index < 0 || index >= len(d.Lines) {
		return d, ErrLineOutOfRange
	}
	next := d.clone()
	next.Lines = append(next.Lines[:index], next.Lines[index+1:]...)
	if len(next.Lines) == 0 {
		next.Lines = []Line{{Quantity: 1}}
	}
	next.Errors.clearAllLines()
	return next, nil
}

// SetCustomer selects the customer and clears its field error.
func (e *Engine) SetCustomer(d Draft, customerID string) Draft {
	next := d.clone()
	next.CustomerID = customerID
	next.Errors.clearKey(Scalar(FieldCustomer))
	return next
}

// SetInvoiceNumber edits the pre-populated invoice number.
func (e *Engine) SetInvoiceNumber(d Draft, invoiceNumber string) Draft {
	next := d.clone()
	next.InvoiceNumber = invoiceNumber
	next.Errors.clearKey(Scalar(FieldInvoiceNumber))
	return next
}

// SetSaleDate changes the sale date.
func (e *Engine) SetSaleDate(d Draft, saleDate time.Time) Draft {
	next := d.clone()
	next.SaleDate = saleDate
	next.Errors.clearKey(Scalar(FieldSaleDate))
	return next
}

// SetPaymentMethod changes the tender type.
func (e *Engine) SetPaymentMethod(d Draft, method PaymentMethod) (Draft, error) {
	if !method.Valid() {
		return d, ErrInvalidPaymentMethod
	}
	next := d.clone()
	next.PaymentMethod = method
	return next, nil
}

// SetNote attaches free text to the sale.
func (e *Engine) SetNote(d Draft, note string) Draft {
	next := d.clone()
	next.Note = note
	return next
}

// ApplyServerRejection merges a server-reported field→messages map into the
// draft, replacing any existing messages for the same keys. Other keys are
// left alone so unrelated local errors survive.
func (e *Engine) ApplyServerRejection(d Draft, fieldErrors map[string][]string) Draft {
	next := d.clone()
	if next.Errors == nil {
		next.Errors = ErrorSet{}
	}
	for field, msgs := range fieldErrors {
		copied := make([]string, len(msgs))
		copy(copied, msgs)
		next.Errors.Replace(ParseKey(field), copied)
	}
	return next
}
