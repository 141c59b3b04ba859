package models

import "github.com/grouppay/grouppay/internal/money"

// Bill represents a persisted bill: a parsed receipt plus the user state
// built on top of it (roster, assignments, tax/tip, payer).
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string `json:"id"`

	// Title is the human-readable name for the bill. Auto-generated from
	// the participants when not provided.
	Title string `json:"title"`

	// Items are the line items on the bill, in first-seen order.
	Items []LineItem `json:"items"`

	// Assignments maps item IDs to their owners. Items absent from the
	// map are unassigned.
	Assignments map[string]Assignment `json:"assignments,omitempty"`

	// Participants is the ordered roster splitting the bill.
	Participants []Participant `json:"participants"`

	// PayerID identifies the participant who paid the bill. Optional; when
	// set it must be one of the participants. The payer absorbs rounding
	// residuals in itemized splits.
	PayerID string `json:"payerId,omitempty"`

	// Params holds the tax and tip amounts for this bill.
	Params SplitParameters `json:"params"`

	// Mode selects equal or itemized splitting.
	Mode SplitMode `json:"mode"`

	// GroupID links the bill to a group, enabling group bill history.
	// Empty for standalone bills.
	GroupID string `json:"groupId,omitempty"`

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64 `json:"createdAt"`
}

// Subtotal returns the sum of all item total prices. Always derived from
// the items so price/quantity corrections can never leave a stale subtotal.
func (b *Bill) Subtotal() money.Amount {
	var sum money.Amount
	for _, item := range b.Items {
		sum += item.TotalPrice()
	}
	return sum
}

// GrandTotal returns subtotal + tax + tip.
func (b *Bill) GrandTotal() money.Amount {
	return b.Subtotal() + b.Params.TaxAmount + b.Params.TipAmount
}

// ParticipantIDs returns the roster's IDs in roster order.
func (b *Bill) ParticipantIDs() []string {
	ids := make([]string, len(b.Participants))
	for i, p := range b.Participants {
		ids[i] = p.ID
	}
	return ids
}
