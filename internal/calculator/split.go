// Package calculator computes per-participant bill splits.
//
// All arithmetic happens in minor units (cents) so that computed shares
// reconcile exactly to the grand total: rounding residuals are assigned to
// a designated participant instead of being lost. Every function is pure
// and safe to call concurrently for unrelated bills.
package calculator

import (
	"errors"
	"fmt"

	"github.com/grouppay/grouppay/internal/models"
	"github.com/grouppay/grouppay/internal/money"
)

// Validation errors. These block computation; the inputs must be corrected
// by a human rather than retried.
var (
	ErrEmptyRoster        = errors.New("roster must have at least one participant")
	ErrNegativeAmount     = errors.New("amount cannot be negative")
	ErrUnknownParticipant = errors.New("participant not in roster")
	ErrEmptyAssignment    = errors.New("assignment must name at least one participant")
)

// ComputeSplit calculates each roster participant's share of a bill.
//
// In equal mode per-item assignments are ignored: the grand total is
// divided evenly across the roster, with the leftover cents spread one per
// participant so the shares sum exactly and differ by at most one cent.
//
// In itemized mode each assigned item's total price is divided evenly among
// its owners; an Assignment with All set divides the item across the whole
// roster regardless of the Participants list. Tax and tip are always split
// evenly across the full roster, not proportionally to consumption.
// Rounding residuals go to the payer, or to the first roster participant
// when no payer is set.
//
// Items with no assignment contribute to nobody's share; their combined
// value is reported in SplitResult.UnassignedAmount as a warning so the
// caller can prompt the user before finalizing.
func ComputeSplit(
	items []models.LineItem,
	assignments map[string]models.Assignment,
	roster []models.Participant,
	payerID string,
	params models.SplitParameters,
	mode models.SplitMode,
) (*models.SplitResult, error) {
	if err := validate(items, assignments, roster, payerID, params); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(roster))
	for i, p := range roster {
		index[p.ID] = i
	}

	residualIdx := 0
	if payerID != "" {
		residualIdx = index[payerID]
	}

	var subtotal money.Amount
	for _, item := range items {
		subtotal += item.TotalPrice()
	}
	grandTotal := subtotal + params.TaxAmount + params.TipAmount

	result := &models.SplitResult{
		Shares:     make([]models.ParticipantShare, len(roster)),
		Subtotal:   subtotal,
		GrandTotal: grandTotal,
	}
	for i, p := range roster {
		result.Shares[i].ParticipantID = p.ID
	}

	if mode == models.SplitEqual {
		for i, share := range grandTotal.Split(len(roster)) {
			result.Shares[i].Total = share
		}
		return result, nil
	}

	// Itemized mode: each item's total goes to its owners; the per-item
	// residual cent(s) go to the designated participant when they own the
	// item, else to its first owner in roster order.
	for _, item := range items {
		assignment, ok := assignments[item.ID]
		if !ok {
			result.UnassignedAmount += item.TotalPrice()
			continue
		}

		owners := ownerIndexes(assignment, roster, index)
		target := residualTarget(owners, residualIdx)

		shares := item.TotalPrice().SplitWithRemainderTo(len(owners), target)
		for j, ownerIdx := range owners {
			result.Shares[ownerIdx].ItemsShare += shares[j]
		}
	}

	for i, share := range params.TaxAmount.SplitWithRemainderTo(len(roster), residualIdx) {
		result.Shares[i].TaxShare = share
	}
	for i, share := range params.TipAmount.SplitWithRemainderTo(len(roster), residualIdx) {
		result.Shares[i].TipShare = share
	}

	for i := range result.Shares {
		s := &result.Shares[i]
		s.Total = s.ItemsShare + s.TaxShare + s.TipShare
	}

	return result, nil
}

// validate surfaces malformed inputs as explicit errors instead of a
// misleading number.
func validate(
	items []models.LineItem,
	assignments map[string]models.Assignment,
	roster []models.Participant,
	payerID string,
	params models.SplitParameters,
) error {
	if len(roster) == 0 {
		return ErrEmptyRoster
	}
	if params.TaxAmount < 0 {
		return fmt.Errorf("tax: %w", ErrNegativeAmount)
	}
	if params.TipAmount < 0 {
		return fmt.Errorf("tip: %w", ErrNegativeAmount)
	}

	rosterIDs := make(map[string]bool, len(roster))
	for _, p := range roster {
		rosterIDs[p.ID] = true
	}

	if payerID != "" && !rosterIDs[payerID] {
		return fmt.Errorf("payer %q: %w", payerID, ErrUnknownParticipant)
	}

	for _, item := range items {
		if item.UnitPrice < 0 {
			return fmt.Errorf("item %q: %w", item.Name, ErrNegativeAmount)
		}

		assignment, ok := assignments[item.ID]
		if !ok || assignment.All {
			continue
		}
		if len(assignment.Participants) == 0 {
			return fmt.Errorf("item %q: %w", item.Name, ErrEmptyAssignment)
		}
		for _, id := range assignment.Participants {
			if !rosterIDs[id] {
				return fmt.Errorf("item %q assigned to %q: %w", item.Name, id, ErrUnknownParticipant)
			}
		}
	}

	return nil
}

// ownerIndexes resolves an assignment to roster indexes. The All flag means
// the entire roster, independent of any explicit selection.
func ownerIndexes(a models.Assignment, roster []models.Participant, index map[string]int) []int {
	if a.All {
		owners := make([]int, len(roster))
		for i := range roster {
			owners[i] = i
		}
		return owners
	}

	owners := make([]int, 0, len(a.Participants))
	seen := make(map[int]bool, len(a.Participants))
	for _, id := range a.Participants {
		idx := index[id]
		if !seen[idx] {
			seen[idx] = true
			owners = append(owners, idx)
		}
	}
	return owners
}

// residualTarget picks which owner absorbs an item's rounding residual:
// the designated participant when they own the item, else the owner
// earliest in roster order.
func residualTarget(owners []int, residualIdx int) int {
	target := 0
	for j, ownerIdx := range owners {
		if ownerIdx == residualIdx {
			return j
		}
		if ownerIdx < owners[target] {
			target = j
		}
	}
	return target
}
