package terminal

import (
	"time"

	"github.com/lumenpos/lumenpos/internal/sales/draft"
	"github.com/lumenpos/lumenpos/internal/sales/session"
)

// lineView is one draft row as the form renders it, derived total included.
type lineView struct {
	ItemID      string  `json:"item_id"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	StockOnHand float64 `json:"stock_on_hand"`
	UnitCode    string  `json:"unit_code"`
	Description string  `json:"description"`
	Total       float64 `json:"total"`
	Placeholder bool    `json:"placeholder"`
}

// sessionView is the full form state the presentation layer re-renders
// after each call.
type sessionView struct {
	ID            string              `json:"id"`
	CustomerID    string              `json:"customer_id"`
	InvoiceNumber string              `json:"invoice_number"`
	SaleDate      string              `json:"sale_date"`
	PaymentMethod string              `json:"payment_method"`
	Note          string              `json:"note"`
	Lines         []lineView          `json:"lines"`
	Totals        draft.Totals        `json:"totals"`
	Errors        map[string][]string `json:"errors"`
}

func newSessionView(s *session.Session, d draft.Draft, totals draft.Totals) sessionView {
	view := sessionView{
		ID:            s.ID().String(),
		CustomerID:    d.CustomerID,
		InvoiceNumber: d.InvoiceNumber,
		PaymentMethod: string(d.PaymentMethod),
		Note:          d.Note,
		Lines:         make([]lineView, 0, len(d.Lines)),
		Totals:        totals,
		Errors:        make(map[string][]string, len(d.Errors)),
	}
	if !d.SaleDate.IsZero() {
		view.SaleDate = d.SaleDate.Format(time.DateOnly)
	}
	for _, l := range d.Lines {
		view.Lines = append(view.Lines, lineView{
			ItemID:      l.ItemID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			StockOnHand: l.StockOnHand,
			UnitCode:    l.UnitCode,
			Description: l.Description,
			Total:       l.Total(),
			Placeholder: l.Placeholder(),
		})
	}
	for key, msgs := range d.Errors {
		view.Errors[key.String()] = msgs
	}
	return view
}
