package models

import "github.com/grouppay/grouppay/internal/money"

// LineItem represents a single merged line item extracted from a receipt.
//
// Two raw-text matches with the same normalized name and unit price are the
// same LineItem; the parser sums their quantities instead of emitting
// duplicates.
type LineItem struct {
	// ID is an opaque stable identifier for the item (UUID format).
	ID string `json:"id"`

	// Name is the normalized item name: trimmed, uppercased, internal
	// whitespace collapsed, OCR noise tokens stripped.
	Name string `json:"name"`

	// UnitPrice is the price of a single unit, in minor units.
	UnitPrice money.Amount `json:"unitPrice"`

	// Quantity is the number of units, always >= 1.
	Quantity int `json:"quantity"`
}

// TotalPrice returns UnitPrice x Quantity. The total is always derived so
// it cannot drift from its inputs after a price or quantity correction.
func (i LineItem) TotalPrice() money.Amount {
	return i.UnitPrice * money.Amount(i.Quantity)
}

// TaxInfo is the tax extracted from a receipt.
type TaxInfo struct {
	// Amount is the extracted tax amount, zero if no tax line was found.
	Amount money.Amount `json:"amount"`

	// Percentage is the tax as a percentage of the subtotal, derived at
	// parse time. Zero when the subtotal is zero.
	Percentage float64 `json:"percentageOfSubtotal"`
}

// ParsedReceipt is the output of parsing raw OCR text. A receipt with no
// recognizable items is represented as an empty-but-valid ParsedReceipt,
// never as an error: receipt scanning is best-effort and the caller falls
// back to manual entry.
type ParsedReceipt struct {
	// Items holds the merged line items in first-seen order.
	Items []LineItem `json:"items"`

	// Subtotal is the sum of all items' total prices. It is derived from
	// the items, never taken from a "total" line in the source text.
	Subtotal money.Amount `json:"subtotal"`

	// Tax is the tax extracted from the receipt text.
	Tax TaxInfo `json:"tax"`
}
