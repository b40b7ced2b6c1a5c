package upstream

import (
	"context"
	"net/http"

	"github.com/lumenpos/lumenpos/internal/sales"
	"github.com/lumenpos/lumenpos/internal/sales/draft"
)

// Customers fetches the customer list for the sale form.
func (c *Client) Customers(ctx context.Context) ([]sales.Customer, error) {
	var envelope apiEnvelope[[]sales.Customer]
	if err := c.do(ctx, http.MethodGet, "/customer?unpaginated=1", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}

// NextInvoiceNumber asks the server for the next number in the invoice
// sequence. The server owns sequencing; the terminal never increments.
func (c *Client) NextInvoiceNumber(ctx context.Context) (string, error) {
	var envelope apiEnvelope[struct {
		InvoiceNumber string `json:"invoice_number"`
	}]
	if err := c.do(ctx, http.MethodGet, "/sale/next-invoice-number", nil, &envelope); err != nil {
		return "", err
	}
	return envelope.Results.InvoiceNumber, nil
}

// Submit persists a validated sale. A 422 from the server surfaces as a
// *sales.Rejection carrying the per-field messages.
func (c *Client) Submit(ctx context.Context, payload draft.Payload) (sales.InvoiceRecord, error) {
	var envelope apiEnvelope[sales.InvoiceRecord]
	if err := c.do(ctx, http.MethodPost, "/sale", payload, &envelope); err != nil {
		return sales.InvoiceRecord{}, err
	}
	return envelope.Results, nil
}

// Sales lists committed sales for the transactions screen.
func (c *Client) Sales(ctx context.Context) ([]sales.Sale, error) {
	var envelope apiEnvelope[[]sales.Sale]
	if err := c.do(ctx, http.MethodGet, "/sale", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}

// Sale fetches one committed sale with its lines, as the print pipeline
// needs it.
func (c *Client) Sale(ctx context.Context, id string) (sales.SaleDetail, error) {
	var envelope apiEnvelope[sales.SaleDetail]
	if err := c.do(ctx, http.MethodGet, "/sale/"+id, nil, &envelope); err != nil {
		return sales.SaleDetail{}, err
	}
	return envelope.Results, nil
}
