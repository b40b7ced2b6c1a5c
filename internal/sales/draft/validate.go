package draft

import (
	"fmt"
	"strings"
	"time"
)

// Statuses stamped on every submission; the terminal only records completed,
// fully paid sales.
const (
	SaleStatusCompleted = "completed"
	PaymentStatusPaid   = "paid"
)

// PayloadItem is one submitted line. The stock snapshot and unit code are
// display-only and deliberately absent.
type PayloadItem struct {
	ItemID      string  `json:"item_id"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Description string  `json:"description"`
}

// Payload is the normalized submission the gateway persists.
type Payload struct {
	CustomerID    string        `json:"customer_id"`
	InvoiceNumber string        `json:"invoice_number"`
	SaleDate      string        `json:"sale_date"`
	Status        string        `json:"status"`
	PaymentStatus string        `json:"payment_status"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Note          string        `json:"note"`
	Items         []PayloadItem `json:"items"`
}

// Validate checks every business rule in one pass and returns either the
// normalized payload or the full error set, never both. It does not mutate
// the draft; callers decide whether to store the errors on it.
func (e *Engine) Validate(d Draft) (*Payload, ErrorSet) {
	errs := ErrorSet{}

	if d.CustomerID == "" {
		errs.Add(Scalar(FieldCustomer), "Customer is required.")
	}
	if strings.TrimSpace(d.InvoiceNumber) == "" {
		errs.Add(Scalar(FieldInvoiceNumber), "Invoice number is required.")
	}
	if d.SaleDate.IsZero() {
		errs.Add(Scalar(FieldSaleDate), "Sale date is required.")
	}
	if d.ItemCount() == 0 {
		errs.Add(Scalar(FieldItems), "At least one item is required.")
	}

	for i, l := range d.Lines {
		if l.Placeholder() {
			continue
		}
		if l.Quantity <= 0 {
			errs.Add(LineKey(i, LineFieldQuantity), "Quantity must be greater than 0.")
		} else if float64(l.Quantity) > l.StockOnHand {
			errs.Add(LineKey(i, LineFieldQuantity),
				fmt.Sprintf("Quantity cannot exceed available stock of %v.", l.StockOnHand))
		}
		if l.UnitPrice < 0 {
			errs.Add(LineKey(i, LineFieldUnitPrice), "Unit price cannot be negative.")
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	payload := &Payload{
		CustomerID:    d.CustomerID,
		InvoiceNumber: d.InvoiceNumber,
		SaleDate:      d.SaleDate.Format(time.DateOnly),
		Status:        SaleStatusCompleted,
		PaymentStatus: PaymentStatusPaid,
		PaymentMethod: d.PaymentMethod,
		Note:          d.Note,
		Items:         make([]PayloadItem, 0, d.ItemCount()),
	}
	for _, l := range d.Lines {
		if l.Placeholder() {
			continue
		}
		payload.Items = append(payload.Items, PayloadItem{
			ItemID:      l.ItemID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Description: l.Description,
		})
	}
	return payload, nil
}

// WithErrors returns the draft carrying the given error set, used after a
// failed validation so the form can render every problem inline.
func WithErrors(d Draft, errs ErrorSet) Draft {
	next := d.clone()
	next.Errors = errs.clone()
	if next.Errors == nil {
		next.Errors = ErrorSet{}
	}
	return next
}
