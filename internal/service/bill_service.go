package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/grouppay/grouppay/internal/calculator"
	"github.com/grouppay/grouppay/internal/metrics"
	"github.com/grouppay/grouppay/internal/models"
	"github.com/grouppay/grouppay/internal/receipt"
	"github.com/grouppay/grouppay/internal/storage"
)

// BillService parses receipts, computes splits, and persists bills.
type BillService struct {
	store  storage.Store
	parser *receipt.Parser
}

// NewBillService creates a new BillService with the given storage backend.
func NewBillService(store storage.Store) *BillService {
	return &BillService{
		store:  store,
		parser: receipt.New(receipt.DefaultConfig()),
	}
}

// ParseReceipt extracts normalized line items and tax from raw OCR text.
// Parsing never fails; unusable text yields an empty receipt.
func (s *BillService) ParseReceipt(ctx context.Context, text string) *models.ParsedReceipt {
	parsed := s.parser.Parse(text)

	metrics.ReceiptsParsed.Inc()
	metrics.ReceiptItemsExtracted.Add(float64(len(parsed.Items)))

	slog.Info("Receipt parsed",
		"items_count", len(parsed.Items),
		"subtotal", parsed.Subtotal,
		"tax", parsed.Tax.Amount,
	)
	return parsed
}

// PreviewSplit computes a split without persisting anything.
func (s *BillService) PreviewSplit(
	ctx context.Context,
	items []models.LineItem,
	assignments map[string]models.Assignment,
	roster []models.Participant,
	payerID string,
	params models.SplitParameters,
	mode models.SplitMode,
) (*models.SplitResult, error) {
	if mode == "" {
		mode = models.SplitItemized
	}

	result, err := calculator.ComputeSplit(items, assignments, roster, payerID, params, mode)
	if err != nil {
		metrics.SplitValidationFailures.Inc()
		slog.Error("PreviewSplit failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	metrics.SplitsComputed.WithLabelValues(string(mode)).Inc()
	if result.UnassignedAmount > 0 {
		slog.Warn("Split has unassigned items", "unassigned", result.UnassignedAmount)
	}
	return result, nil
}

// CreateBill validates, computes the split, and persists a new bill. The
// split runs first so invalid bills are never stored. Participants and the
// payer are added to the linked group afterwards.
func (s *BillService) CreateBill(ctx context.Context, bill *models.Bill) (*models.SplitResult, error) {
	if bill.Mode == "" {
		bill.Mode = models.SplitItemized
	}

	result, err := s.PreviewSplit(ctx, bill.Items, bill.Assignments, bill.Participants, bill.PayerID, bill.Params, bill.Mode)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateBill(ctx, bill); err != nil {
		slog.Error("CreateBill failed", "error", err)
		return nil, err
	}
	slog.Info("Bill created", "bill_id", bill.ID, "title", bill.Title)

	s.autoAddParticipantsToGroup(ctx, bill)

	return result, nil
}

// GetBill retrieves a bill and recomputes its split. The split is derived,
// not stored, so edits to items or roster can never leave stale shares.
func (s *BillService) GetBill(ctx context.Context, billID string) (*models.Bill, *models.SplitResult, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		slog.Error("GetBill failed", "bill_id", billID, "error", err)
		return nil, nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	result, err := calculator.ComputeSplit(bill.Items, bill.Assignments, bill.Participants, bill.PayerID, bill.Params, bill.Mode)
	if err != nil {
		slog.Error("GetBill: split recomputation failed", "bill_id", billID, "error", err)
		return nil, nil, err
	}

	return bill, result, nil
}

// UpdateBill replaces an existing bill's contents and returns the new split.
func (s *BillService) UpdateBill(ctx context.Context, bill *models.Bill) (*models.SplitResult, error) {
	if bill.Mode == "" {
		bill.Mode = models.SplitItemized
	}

	result, err := s.PreviewSplit(ctx, bill.Items, bill.Assignments, bill.Participants, bill.PayerID, bill.Params, bill.Mode)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		slog.Error("UpdateBill failed", "bill_id", bill.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	slog.Info("Bill updated", "bill_id", bill.ID)

	s.autoAddParticipantsToGroup(ctx, bill)

	return result, nil
}

// DeleteBill removes a bill.
func (s *BillService) DeleteBill(ctx context.Context, billID string) error {
	if billID == "" {
		return fmt.Errorf("%w: bill id required", ErrInvalidInput)
	}
	if err := s.store.DeleteBill(ctx, billID); err != nil {
		slog.Error("DeleteBill failed", "bill_id", billID, "error", err)
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	slog.Info("Bill deleted", "bill_id", billID)
	return nil
}

// ListBillsByGroup retrieves all bills linked to a group, newest first.
func (s *BillService) ListBillsByGroup(ctx context.Context, groupID string) ([]*models.Bill, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		slog.Error("ListBillsByGroup: failed to get group", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	bills, err := s.store.ListBillsByGroup(ctx, groupID)
	if err != nil {
		slog.Error("ListBillsByGroup failed", "group_id", groupID, "error", err)
		return nil, err
	}
	return bills, nil
}

// autoAddParticipantsToGroup adds any bill participants (and payer) not
// already in the linked group. Failures are logged, not returned: the bill
// is already saved and membership can be fixed later.
func (s *BillService) autoAddParticipantsToGroup(ctx context.Context, bill *models.Bill) {
	if bill.GroupID == "" {
		return
	}
	group, err := s.store.GetGroup(ctx, bill.GroupID)
	if err != nil {
		slog.Warn("autoAddParticipantsToGroup: failed to get group", "group_id", bill.GroupID, "error", err)
		return
	}

	memberSet := make(map[string]bool, len(group.Members))
	for _, m := range group.Members {
		memberSet[m] = true
	}

	var newMembers []string
	for _, id := range bill.ParticipantIDs() {
		if !memberSet[id] {
			memberSet[id] = true
			newMembers = append(newMembers, id)
		}
	}
	if bill.PayerID != "" && !memberSet[bill.PayerID] {
		newMembers = append(newMembers, bill.PayerID)
	}
	if len(newMembers) == 0 {
		return
	}

	if err := s.store.AddGroupMembers(ctx, bill.GroupID, newMembers); err != nil {
		slog.Error("autoAddParticipantsToGroup: failed to add members", "group_id", bill.GroupID, "error", err)
		return
	}
	slog.Info("Auto-added participants to group", "group_id", bill.GroupID, "new_members", newMembers)
}
