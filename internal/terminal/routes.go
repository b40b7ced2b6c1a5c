package terminal

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes attaches the terminal surface to the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/profile", h.Profile)

	r.Get("/customers", h.ListCustomers)
	r.Get("/items", h.ListItems)

	r.Get("/sales", h.ListSales)
	r.Get("/sales/{id}", h.ShowSale)
	r.Get("/sales/{id}/receipt", h.Receipt)
	r.Post("/sales/{id}/receipt/pdf", h.ReceiptPDF)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.OpenSession)
		r.Get("/{id}", h.ShowSession)
		r.Patch("/{id}", h.UpdateHeader)
		r.Delete("/{id}", h.CloseSession)
		r.Post("/{id}/lines", h.AddLine)
		r.Patch("/{id}/lines/{index}", h.UpdateLine)
		r.Delete("/{id}/lines/{index}", h.RemoveLine)
		r.Post("/{id}/submit", h.Submit)
	})
}
