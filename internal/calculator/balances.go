package calculator

import (
	"fmt"

	"github.com/grouppay/grouppay/internal/models"
	"github.com/grouppay/grouppay/internal/money"
)

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	MemberID   string       `json:"memberId"`
	TotalPaid  money.Amount `json:"totalPaid"`  // paid across all bills and settlements
	TotalOwed  money.Amount `json:"totalOwed"`  // owed across all bills and received settlements
	NetBalance money.Amount `json:"netBalance"` // positive = owed money, negative = owes money
}

// DebtEdge represents a simplified debt from one member to another.
type DebtEdge struct {
	From   string       `json:"from"`
	To     string       `json:"to"`
	Amount money.Amount `json:"amount"`
}

// GroupBalances computes balances across a group's bills and settlements.
//
// For each bill the payer contributed the amount actually distributed
// (grand total minus any unassigned remainder) and every participant owes
// their computed share. Settlements improve the payer's balance and reduce
// the receiver's. The resulting net balances are simplified into a minimal
// set of debt edges by greedily matching debtors with creditors.
//
// Bills without a payer are skipped: with nobody on the paying side there
// is no debt to track.
func GroupBalances(bills []*models.Bill, settlements []*models.Settlement) ([]MemberBalance, []DebtEdge, error) {
	balances := make(map[string]*MemberBalance)
	var order []string

	touch := func(id string) *MemberBalance {
		if b, ok := balances[id]; ok {
			return b
		}
		b := &MemberBalance{MemberID: id}
		balances[id] = b
		order = append(order, id)
		return b
	}

	for _, bill := range bills {
		if bill.PayerID == "" {
			continue
		}

		split, err := ComputeSplit(bill.Items, bill.Assignments, bill.Participants, bill.PayerID, bill.Params, bill.Mode)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to compute split for bill %s: %w", bill.ID, err)
		}

		touch(bill.PayerID).TotalPaid += split.GrandTotal - split.UnassignedAmount

		for _, share := range split.Shares {
			touch(share.ParticipantID).TotalOwed += share.Total
		}
	}

	for _, s := range settlements {
		touch(s.From).TotalPaid += s.Amount
		touch(s.To).TotalOwed += s.Amount
	}

	members := make([]MemberBalance, 0, len(order))
	var debtors, creditors []*MemberBalance
	for _, id := range order {
		b := balances[id]
		b.NetBalance = b.TotalPaid - b.TotalOwed
		members = append(members, *b)

		switch {
		case b.NetBalance < 0:
			debtors = append(debtors, b)
		case b.NetBalance > 0:
			creditors = append(creditors, b)
		}
	}

	// Greedy matching: walk both lists, settling the smaller of what the
	// debtor owes and the creditor is owed at each step.
	var edges []DebtEdge
	i, j := 0, 0
	owe := make(map[string]money.Amount, len(debtors))
	due := make(map[string]money.Amount, len(creditors))
	for _, d := range debtors {
		owe[d.MemberID] = -d.NetBalance
	}
	for _, c := range creditors {
		due[c.MemberID] = c.NetBalance
	}

	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := debtors[i].MemberID, creditors[j].MemberID

		amount := owe[debtor]
		if due[creditor] < amount {
			amount = due[creditor]
		}

		if amount > 0 {
			edges = append(edges, DebtEdge{From: debtor, To: creditor, Amount: amount})
		}

		owe[debtor] -= amount
		due[creditor] -= amount

		if owe[debtor] == 0 {
			i++
		}
		if due[creditor] == 0 {
			j++
		}
	}

	return members, edges, nil
}
