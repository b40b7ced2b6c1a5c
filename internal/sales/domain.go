// Package sales holds the sale records and remote-service ports shared by
// the draft engine, the terminal surface and the upstream API client.
package sales

// Customer is the minimal customer record the sale form selects from.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Sale is one committed sale as listed by the sales screen.
type Sale struct {
	ID            string  `json:"id"`
	InvoiceNumber string  `json:"invoice_number"`
	CustomerID    string  `json:"customer_id"`
	CustomerName  string  `json:"customer_name"`
	SaleDate      string  `json:"sale_date"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	PaymentMethod string  `json:"payment_method"`
	TotalAmount   float64 `json:"total_amount"`
	Note          string  `json:"note,omitempty"`
}

// SaleItem is one line of a committed sale.
type SaleItem struct {
	ItemID      string  `json:"item_id"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	UnitCode    string  `json:"unit_code,omitempty"`
	Description string  `json:"description,omitempty"`
}

// SaleDetail is a committed sale with its lines, as needed for printing.
type SaleDetail struct {
	Sale
	Items []SaleItem `json:"items"`
}

// InvoiceRecord is the server-assigned result of a committed submission.
type InvoiceRecord struct {
	ID            string  `json:"id"`
	InvoiceNumber string  `json:"invoice_number"`
	SaleDate      string  `json:"sale_date"`
	TotalAmount   float64 `json:"total_amount"`
}
