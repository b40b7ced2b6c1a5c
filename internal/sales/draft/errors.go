package draft

import (
	"fmt"
	"strconv"
	"strings"
)

// Header field names as the remote API and the form both key them.
const (
	FieldCustomer      = "customer_id"
	FieldInvoiceNumber = "invoice_number"
	FieldSaleDate      = "sale_date"
	FieldItems         = "items"
)

// Line field names.
const (
	LineFieldItem      = "item_id"
	LineFieldQuantity  = "quantity"
	LineFieldUnitPrice = "unit_price"
)

// Key identifies one validated field of a draft. Line is -1 for header
// fields and the line index otherwise, so "customer_id" and
// "items.0.quantity" are distinct keys without string collisions.
type Key struct {
	Field string
	Line  int
}

// Scalar builds a key for a header field.
func Scalar(field string) Key {
	return Key{Field: field, Line: -1}
}

// LineKey builds a key for a field of the line at index.
func LineKey(index int, field string) Key {
	return Key{Field: field, Line: index}
}

// IsLine reports whether the key refers to a line-item field.
func (k Key) IsLine() bool {
	return k.Line >= 0
}

// String renders the key in the wire form used by the remote API,
// e.g. "invoice_number" or "items.2.quantity".
func (k Key) String() string {
	if !k.IsLine() {
		return k.Field
	}
	return fmt.Sprintf("items.%d.%s", k.Line, k.Field)
}

// ParseKey converts a wire-form field key back into a structured Key.
// Unrecognised shapes are treated as header fields so server-reported
// errors never get dropped.
func ParseKey(s string) Key {
	parts := strings.SplitN(s, ".", 3)
	if len(parts) == 3 && parts[0] == FieldItems {
		if idx, err := strconv.Atoi(parts[1]); err == nil && idx >= 0 {
			return LineKey(idx, parts[2])
		}
	}
	return Scalar(s)
}

// ErrorSet accumulates validation messages per field key.
type ErrorSet map[Key][]string

// Add appends a message for key.
func (e ErrorSet) Add(k Key, msg string) {
	e[k] = append(e[k], msg)
}

// Replace overwrites all messages for key.
func (e ErrorSet) Replace(k Key, msgs []string) {
	e[k] = msgs
}

// Message returns the first message recorded for key, or "".
func (e ErrorSet) Message(k Key) string {
	if msgs, ok := e[k]; ok && len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e ErrorSet) clone() ErrorSet {
	if e == nil {
		return nil
	}
	out := make(ErrorSet, len(e))
	for k, msgs := range e {
		copied := make([]string, len(msgs))
		copy(copied, msgs)
		out[k] = copied
	}
	return out
}

// clearKey drops all messages for key.
func (e ErrorSet) clearKey(k Key) {
	delete(e, k)
}

// clearLine drops every error recorded against the line at index.
func (e ErrorSet) clearLine(index int) {
	for k := range e {
		if k.Line == index {
			delete(e, k)
		}
	}
}

// clearAllLines drops the whole line-item error namespace. Used after a
// removal since the remaining indices shift.
func (e ErrorSet) clearAllLines() {
	for k := range e {
		if k.IsLine() {
			delete(e, k)
		}
	}
}
