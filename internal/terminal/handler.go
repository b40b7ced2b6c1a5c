// Package terminal is the local HTTP surface the presentation layer drives,
// the daemon's equivalent of the desktop shell's IPC handlers. It owns no
// business rules: requests are decoded, handed to the sale session or the
// upstream ports, and the resulting form state is returned for re-render.
package terminal

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lumenpos/lumenpos/internal/auth"
	"github.com/lumenpos/lumenpos/internal/catalog"
	"github.com/lumenpos/lumenpos/internal/platform/httpx"
	"github.com/lumenpos/lumenpos/internal/printing"
	"github.com/lumenpos/lumenpos/internal/sales"
	"github.com/lumenpos/lumenpos/internal/sales/draft"
	"github.com/lumenpos/lumenpos/internal/sales/session"
)

// Handler serves the terminal surface.
type Handler struct {
	logger    *slog.Logger
	sessions  *session.Manager
	auth      *auth.Service
	catalog   catalog.Lookup
	customers sales.CustomerSource
	reader    sales.Reader
	renderer  *printing.Renderer
	pdf       *printing.PDFClient
	validator *validator.Validate
}

// NewHandler constructs the Handler.
func NewHandler(
	logger *slog.Logger,
	sessions *session.Manager,
	authService *auth.Service,
	catalogLookup catalog.Lookup,
	customers sales.CustomerSource,
	reader sales.Reader,
	renderer *printing.Renderer,
	pdf *printing.PDFClient,
) *Handler {
	return &Handler{
		logger:    logger,
		sessions:  sessions,
		auth:      authService,
		catalog:   catalogLookup,
		customers: customers,
		reader:    reader,
		renderer:  renderer,
		pdf:       pdf,
		validator: validator.New(),
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid session id")
		return nil, false
	}
	s, err := h.sessions.Get(id)
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "sale session not found")
		return nil, false
	}
	return s, true
}

func (h *Handler) renderSession(w http.ResponseWriter, s *session.Session, status int) {
	d, err := s.Draft()
	if err != nil {
		httpx.Problem(w, http.StatusGone, "Session Closed", "sale session was closed")
		return
	}
	totals, err := s.Totals()
	if err != nil {
		httpx.Problem(w, http.StatusGone, "Session Closed", "sale session was closed")
		return
	}
	httpx.JSON(w, status, newSessionView(s, d, totals))
}

// respondSessionErr maps session and engine errors onto the terminal's
// response vocabulary.
func (h *Handler) respondSessionErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionClosed):
		httpx.Problem(w, http.StatusGone, "Session Closed", "sale session was closed")
	case errors.Is(err, draft.ErrDuplicateItem):
		// A transient notice on the form, not a field error.
		httpx.Problem(w, http.StatusConflict, "Duplicate Item", "item already added to this sale")
	case errors.Is(err, draft.ErrLineOutOfRange):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no such line item")
	case errors.Is(err, draft.ErrInvalidPaymentMethod):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown payment method")
	default:
		h.logger.Error("sale session operation failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

// --- auth ---

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("login failed", slog.String("email", req.Email), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		h.logger.Error("logout failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Profile(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// --- reference data ---

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.Customers(r.Context())
	if err != nil {
		h.logger.Error("list customers failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customers)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.List(r.Context())
	if err != nil {
		h.logger.Error("list items failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

// --- committed sales ---

func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	records, err := h.reader.Sales(r.Context())
	if err != nil {
		h.logger.Error("list sales failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}

func (h *Handler) ShowSale(w http.ResponseWriter, r *http.Request) {
	detail, err := h.reader.Sale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) saleDocument(w http.ResponseWriter, r *http.Request) (string, bool) {
	detail, err := h.reader.Sale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return "", false
	}

	format := printing.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = printing.FormatThermal
	}
	html, err := h.renderer.Render(format, printing.InvoiceData{Sale: detail})
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return "", false
	}
	return html, true
}

func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	html, ok := h.saleDocument(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (h *Handler) ReceiptPDF(w http.ResponseWriter, r *http.Request) {
	html, ok := h.saleDocument(w, r)
	if !ok {
		return
	}
	pdf, err := h.pdf.Convert(r.Context(), html)
	if err != nil {
		h.logger.Error("pdf conversion failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Converter Error", "pdf conversion failed")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// --- sale-entry sessions ---

func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Open(r.Context())
	if err != nil {
		h.logger.Error("open sale session failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.renderSession(w, s, http.StatusCreated)
}

func (h *Handler) ShowSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.renderSession(w, s, http.StatusOK)
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid session id")
		return
	}
	if err := h.sessions.Close(id); err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "sale session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateHeader(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req updateHeaderRequest
	if !h.decode(w, r, &req) {
		return
	}

	var saleDate *time.Time
	if req.SaleDate != nil {
		date, err := time.Parse(time.DateOnly, *req.SaleDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "sale_date must be YYYY-MM-DD")
			return
		}
		saleDate = &date
	}

	err := s.Mutate(func(e *draft.Engine, d draft.Draft) (draft.Draft, error) {
		if req.CustomerID != nil {
			d = e.SetCustomer(d, *req.CustomerID)
		}
		if req.InvoiceNumber != nil {
			d = e.SetInvoiceNumber(d, *req.InvoiceNumber)
		}
		if saleDate != nil {
			d = e.SetSaleDate(d, *saleDate)
		}
		if req.PaymentMethod != nil {
			var err error
			d, err = e.SetPaymentMethod(d, draft.PaymentMethod(*req.PaymentMethod))
			if err != nil {
				return d, err
			}
		}
		if req.Note != nil {
			d = e.SetNote(d, *req.Note)
		}
		return d, nil
	})
	if err != nil {
		h.respondSessionErr(w, err)
		return
	}
	h.renderSession(w, s, http.StatusOK)
}

func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req addLineRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := s.AddLine(r.Context(), req.ItemID); err != nil {
		h.respondSessionErr(w, err)
		return
	}
	h.renderSession(w, s, http.StatusOK)
}

func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid line index")
		return
	}
	var req updateLineRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.ItemID != nil {
		if err := s.RepickLine(r.Context(), index, *req.ItemID); err != nil {
			h.respondSessionErr(w, err)
			return
		}
	}
	err = s.Mutate(func(e *draft.Engine, d draft.Draft) (draft.Draft, error) {
		var err error
		if req.Quantity != nil {
			if d, err = e.SetLineQuantity(d, index, *req.Quantity); err != nil {
				return d, err
			}
		}
		if req.UnitPrice != nil {
			if d, err = e.SetLineUnitPrice(d, index, *req.UnitPrice); err != nil {
				return d, err
			}
		}
		if req.Description != nil {
			if d, err = e.SetLineDescription(d, index, *req.Description); err != nil {
				return d, err
			}
		}
		return d, nil
	})
	if err != nil {
		h.respondSessionErr(w, err)
		return
	}
	h.renderSession(w, s, http.StatusOK)
}

func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid line index")
		return
	}
	if err := s.Mutate(func(e *draft.Engine, d draft.Draft) (draft.Draft, error) {
		return e.RemoveLine(d, index)
	}); err != nil {
		h.respondSessionErr(w, err)
		return
	}
	h.renderSession(w, s, http.StatusOK)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	record, err := s.Submit(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrValidationFailed):
			d, derr := s.Draft()
			if derr != nil {
				h.respondSessionErr(w, derr)
				return
			}
			errs := make(map[string][]string, len(d.Errors))
			for key, msgs := range d.Errors {
				errs[key.String()] = msgs
			}
			httpx.Unprocessable(w, "Please correct the errors in the form", errs)
		case errors.Is(err, session.ErrSubmitInFlight):
			httpx.Problem(w, http.StatusConflict, "Submission In Flight", "a submission for this sale is already running")
		default:
			var rejection *sales.Rejection
			if errors.As(err, &rejection) {
				httpx.Unprocessable(w, "Please correct the errors in the form", rejection.FieldErrors)
				return
			}
			h.respondSessionErr(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, record)
}
