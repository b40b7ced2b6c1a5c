package sales

import (
	"context"

	"github.com/lumenpos/lumenpos/internal/sales/draft"
)

// Rejection is a structured server-side refusal of a submission, carrying
// the field→messages map the form maps back into the draft. Any other error
// from the gateway is treated as a transport failure.
type Rejection struct {
	FieldErrors map[string][]string
}

func (r *Rejection) Error() string {
	return "sales: submission rejected by server"
}

// SubmissionGateway durably persists a validated sale remotely.
type SubmissionGateway interface {
	Submit(ctx context.Context, payload draft.Payload) (InvoiceRecord, error)
}

// InvoiceNumberSource fetches the next invoice number. The server owns
// invoice sequencing; the terminal never increments locally.
type InvoiceNumberSource interface {
	NextInvoiceNumber(ctx context.Context) (string, error)
}

// CustomerSource lists the customers offered by the sale form.
type CustomerSource interface {
	Customers(ctx context.Context) ([]Customer, error)
}

// Reader serves the committed-sales screens and the print pipeline.
type Reader interface {
	Sales(ctx context.Context) ([]Sale, error)
	Sale(ctx context.Context, id string) (SaleDetail, error)
}
