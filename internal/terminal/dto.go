package terminal

// Request bodies accepted from the presentation layer. Business rules live
// in the draft engine; the tags here only keep malformed requests out.

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type addLineRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

// updateLineRequest carries exactly one field edit. A new item id triggers
// a catalog re-resolution of the line's snapshot.
type updateLineRequest struct {
	ItemID      *string  `json:"item_id,omitempty" validate:"omitempty,min=1"`
	Quantity    *int     `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	Description *string  `json:"description,omitempty"`
}

type updateHeaderRequest struct {
	CustomerID    *string `json:"customer_id,omitempty"`
	InvoiceNumber *string `json:"invoice_number,omitempty"`
	SaleDate      *string `json:"sale_date,omitempty"`
	PaymentMethod *string `json:"payment_method,omitempty" validate:"omitempty,oneof=cash upi card"`
	Note          *string `json:"note,omitempty"`
}
