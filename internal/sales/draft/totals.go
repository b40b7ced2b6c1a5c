package draft

// Totals are the derived monetary figures of a draft. They are recomputed
// from the lines on every call; nothing here is accumulated across
// mutations, so repeated recomputation cannot compound rounding.
type Totals struct {
	ItemCount  int     `json:"item_count"`
	NetTotal   float64 `json:"net_total"`
	TaxAmount  float64 `json:"tax_amount"`
	GrandTotal float64 `json:"grand_total"`
}

// Totals computes the figures over non-placeholder lines. GrandTotal is kept
// as a separately derived quantity even while the configured tax rate is
// zero, since tender policy is expected to vary.
func (e *Engine) Totals(d Draft) Totals {
	t := Totals{}
	for _, l := range d.Lines {
		if l.Placeholder() {
			continue
		}
		t.ItemCount++
		t.NetTotal += l.Total()
	}
	t.TaxAmount = t.NetTotal * e.taxRate
	t.GrandTotal = t.NetTotal + t.TaxAmount
	return t
}
