package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumenpos/lumenpos/internal/catalog"
	"github.com/lumenpos/lumenpos/internal/platform/httpx"
	"github.com/lumenpos/lumenpos/internal/sales"
	"github.com/lumenpos/lumenpos/internal/sales/draft"
)

type staticTokens string

func (s staticTokens) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "cashier@shop.test", r.FormValue("email"))
		require.Equal(t, "secret", r.FormValue("password"))
		// Login must not carry a stale token.
		require.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	}))
	defer server.Close()

	client := NewClient(server.URL, staticTokens("stale"))
	token, err := client.Login(context.Background(), "cashier@shop.test", "secret")
	require.NoError(t, err)
	require.Equal(t, "tok-1", token)
}

func TestLoginInvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.Login(context.Background(), "x@y.test", "bad")
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestBearerTokenAttached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-9", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []sales.Customer{{ID: "C1", Name: "Walk In"}}})
	}))
	defer server.Close()

	client := NewClient(server.URL, staticTokens("tok-9"))
	customers, err := client.Customers(context.Background())
	require.NoError(t, err)
	require.Equal(t, []sales.Customer{{ID: "C1", Name: "Walk In"}}, customers)
}

func TestResolveItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/item/I1":
			_ = json.NewEncoder(w).Encode(map[string]any{"results": catalog.Item{
				ID: "I1", SellingPrice: 50, NonExpiredStock: 30, Unit: catalog.Unit{Code: "pcs"},
			}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	item, err := client.Resolve(context.Background(), "I1")
	require.NoError(t, err)
	require.Equal(t, 50.0, item.SellingPrice)

	_, err = client.Resolve(context.Background(), "I2")
	require.ErrorIs(t, err, catalog.ErrItemNotFound)
}

func TestNextInvoiceNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sale/next-invoice-number", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"results": map[string]string{"invoice_number": "INV-7"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	next, err := client.NextInvoiceNumber(context.Background())
	require.NoError(t, err)
	require.Equal(t, "INV-7", next)
}

func TestSubmitSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/sale", r.URL.Path)

		var payload draft.Payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "completed", payload.Status)
		require.Equal(t, "paid", payload.PaymentStatus)
		require.Len(t, payload.Items, 1)

		_ = json.NewEncoder(w).Encode(map[string]any{"results": sales.InvoiceRecord{
			ID: "S1", InvoiceNumber: payload.InvoiceNumber, TotalAmount: 150,
		}})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	record, err := client.Submit(context.Background(), draft.Payload{
		CustomerID:    "C1",
		InvoiceNumber: "INV-1",
		SaleDate:      "2026-08-28",
		Status:        "completed",
		PaymentStatus: "paid",
		PaymentMethod: draft.PaymentCash,
		Items:         []draft.PayloadItem{{ItemID: "I1", Quantity: 3, UnitPrice: 50}},
	})
	require.NoError(t, err)
	require.Equal(t, "S1", record.ID)
	require.Equal(t, "INV-1", record.InvoiceNumber)
}

func TestSubmitRejectionCarriesFieldErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "The given data was invalid.",
			"errors":  map[string][]string{"invoice_number": {"already used"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.Submit(context.Background(), draft.Payload{})

	var rejection *sales.Rejection
	require.ErrorAs(t, err, &rejection)
	require.Equal(t, []string{"already used"}, rejection.FieldErrors["invoice_number"])
}

func TestSaleDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sale/S1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"results": sales.SaleDetail{
			Sale:  sales.Sale{ID: "S1", InvoiceNumber: "INV-1", TotalAmount: 150},
			Items: []sales.SaleItem{{ItemID: "I1", Name: "Soap", Quantity: 3, UnitPrice: 50}},
		}})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	detail, err := client.Sale(context.Background(), "S1")
	require.NoError(t, err)
	require.Equal(t, "INV-1", detail.InvoiceNumber)
	require.Len(t, detail.Items, 1)
}
