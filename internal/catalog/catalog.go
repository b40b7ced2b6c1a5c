// Package catalog defines the item catalog port the sale form resolves
// prices, stock and units through. The live implementation sits in
// internal/upstream; a Redis decorator caches pick-time snapshots.
package catalog

import (
	"context"
	"errors"
)

// ErrItemNotFound indicates the catalog has no item with the requested id.
var ErrItemNotFound = errors.New("catalog: item not found")

// Unit is the display unit of an item.
type Unit struct {
	Code string `json:"code"`
}

// Item is the catalog record for one sellable item.
type Item struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	SellingPrice       float64 `json:"selling_price"`
	StockOnHand        float64 `json:"stock_on_hand"`
	NonExpiredStock    float64 `json:"non_expired_stock"`
	ExpiredSaleEnabled bool    `json:"is_expired_sale_enabled"`
	Unit               Unit    `json:"unit"`
}

// AvailableStock is the figure the sale form validates quantities against.
// Items flagged for expired sale count their full stock, everything else
// only the non-expired portion.
func (i Item) AvailableStock() float64 {
	if i.ExpiredSaleEnabled {
		return i.StockOnHand
	}
	return i.NonExpiredStock
}

// Lookup resolves catalog items for the sale form.
type Lookup interface {
	Resolve(ctx context.Context, itemID string) (Item, error)
	List(ctx context.Context) ([]Item, error)
}
