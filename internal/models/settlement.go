package models

import "github.com/grouppay/grouppay/internal/money"

// Settlement represents a payment between group members to clear debts.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// GroupID is the group this settlement belongs to.
	GroupID string `json:"groupId"`

	// From is the participant who paid (debtor settling up).
	From string `json:"from"`

	// To is the participant who received payment (creditor being paid).
	To string `json:"to"`

	// Amount is the payment amount in minor units.
	Amount money.Amount `json:"amount"`

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64 `json:"createdAt"`

	// Note is an optional description for the settlement.
	Note string `json:"note,omitempty"`
}
