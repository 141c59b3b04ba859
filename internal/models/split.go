package models

import "github.com/grouppay/grouppay/internal/money"

// Participant is one person splitting a bill.
type Participant struct {
	// ID is an opaque identifier. For bills created without user accounts
	// this is simply the display name.
	ID string `json:"id"`

	// DisplayName is the human-readable name shown in split results.
	DisplayName string `json:"displayName"`
}

// Assignment maps a line item to the participants who own it.
//
// When All is true the item is divided evenly among the entire roster,
// regardless of the Participants list. Otherwise
// Participants must be non-empty and the item is divided evenly among them.
// An item with no Assignment entry at all is unassigned: it contributes to
// nobody's share and is reported via SplitResult.UnassignedAmount.
type Assignment struct {
	All          bool     `json:"all"`
	Participants []string `json:"participants,omitempty"`
}

// SplitMode selects how the calculator distributes the bill.
type SplitMode string

const (
	// SplitEqual divides the grand total evenly across the roster,
	// ignoring per-item assignments entirely.
	SplitEqual SplitMode = "equal"

	// SplitItemized distributes each assigned item among its owners, with
	// tax and tip divided evenly across the full roster.
	SplitItemized SplitMode = "itemized"
)

// SplitParameters holds the tax and tip inputs to a split computation.
// Tip may come from a percentage applied to the subtotal (money.Percent)
// or be entered directly.
type SplitParameters struct {
	TaxAmount money.Amount `json:"taxAmount"`
	TipAmount money.Amount `json:"tipAmount"`
}

// ParticipantShare is one participant's computed share of a bill.
type ParticipantShare struct {
	ParticipantID string       `json:"participantId"`
	ItemsShare    money.Amount `json:"itemsShare"`
	TaxShare      money.Amount `json:"taxShare"`
	TipShare      money.Amount `json:"tipShare"`

	// Total = ItemsShare + TaxShare + TipShare.
	Total money.Amount `json:"total"`
}

// SplitResult is the complete outcome of a split computation. It is a pure
// projection of its inputs: it is recomputed from scratch on every change
// to assignments, parameters, or the roster, never patched incrementally.
type SplitResult struct {
	// Shares has one entry per roster participant, in roster order.
	Shares []ParticipantShare `json:"shares"`

	// Subtotal is the sum of all items' total prices (assigned or not).
	Subtotal money.Amount `json:"subtotal"`

	// GrandTotal = Subtotal + TaxAmount + TipAmount.
	GrandTotal money.Amount `json:"grandTotal"`

	// UnassignedAmount is the total price of items with no assignment.
	// Non-zero values are a warning the caller should surface before
	// money changes hands; they never block computation.
	UnassignedAmount money.Amount `json:"unassignedAmount"`
}
