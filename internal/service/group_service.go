package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/grouppay/grouppay/internal/calculator"
	"github.com/grouppay/grouppay/internal/models"
	"github.com/grouppay/grouppay/internal/storage"
)

// GroupService manages groups, their running balances, and settlements.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a new group.
func (s *GroupService) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.Name == "" {
		return fmt.Errorf("%w: group name required", ErrInvalidInput)
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return err
	}

	slog.Info("Group created", "group_id", group.ID, "name", group.Name, "members_count", len(group.Members))
	return nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return group, nil
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, err
	}
	return groups, nil
}

// UpdateGroup replaces a group's name and membership.
func (s *GroupService) UpdateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	if group.Name == "" {
		return nil, fmt.Errorf("%w: group name required", ErrInvalidInput)
	}

	if err := s.store.UpdateGroup(ctx, group); err != nil {
		slog.Error("UpdateGroup failed", "group_id", group.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	updated, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		slog.Error("UpdateGroup: failed to fetch updated group", "group_id", group.ID, "error", err)
		return nil, err
	}

	slog.Info("Group updated", "group_id", group.ID)
	return updated, nil
}

// DeleteGroup removes a group by ID.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID string) error {
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", groupID, "error", err)
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	slog.Info("Group deleted", "group_id", groupID)
	return nil
}

// AddMembers adds names to a group, ignoring members already present.
func (s *GroupService) AddMembers(ctx context.Context, groupID string, members []string) (*models.Group, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: at least one member required", ErrInvalidInput)
	}

	if err := s.store.AddGroupMembers(ctx, groupID, members); err != nil {
		slog.Error("AddMembers failed", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return s.GetGroup(ctx, groupID)
}

// Balances computes each member's net position across the group's bills
// and settlements, plus a simplified who-pays-whom list.
func (s *GroupService) Balances(ctx context.Context, groupID string) ([]calculator.MemberBalance, []calculator.DebtEdge, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		slog.Error("Balances: group not found", "group_id", groupID, "error", err)
		return nil, nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	bills, err := s.store.ListBillsByGroup(ctx, groupID)
	if err != nil {
		slog.Error("Balances: failed to list bills", "group_id", groupID, "error", err)
		return nil, nil, err
	}

	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		slog.Error("Balances: failed to list settlements", "group_id", groupID, "error", err)
		return nil, nil, err
	}

	memberBalances, debts, err := calculator.GroupBalances(bills, settlements)
	if err != nil {
		slog.Error("Balances: calculation failed", "group_id", groupID, "error", err)
		return nil, nil, err
	}

	slog.Info("Balances computed",
		"group_id", groupID,
		"bills_count", len(bills),
		"members_count", len(memberBalances),
		"debts_count", len(debts),
	)
	return memberBalances, debts, nil
}

// RecordSettlement records a payment between two group members.
func (s *GroupService) RecordSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.From == "" || settlement.To == "" {
		return fmt.Errorf("%w: settlement requires both from and to", ErrInvalidInput)
	}
	if settlement.From == settlement.To {
		return fmt.Errorf("%w: cannot settle with yourself", ErrInvalidInput)
	}
	if settlement.Amount <= 0 {
		return fmt.Errorf("%w: settlement amount must be positive", ErrInvalidInput)
	}

	if _, err := s.store.GetGroup(ctx, settlement.GroupID); err != nil {
		slog.Error("RecordSettlement: group not found", "group_id", settlement.GroupID, "error", err)
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("RecordSettlement failed", "error", err)
		return err
	}

	slog.Info("Settlement recorded",
		"settlement_id", settlement.ID,
		"group_id", settlement.GroupID,
		"from", settlement.From,
		"to", settlement.To,
		"amount", settlement.Amount,
	)
	return nil
}

// ListSettlements retrieves a group's settlements, newest first.
func (s *GroupService) ListSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		slog.Error("ListSettlements failed", "group_id", groupID, "error", err)
		return nil, err
	}
	return settlements, nil
}

// DeleteSettlement removes a settlement by ID.
func (s *GroupService) DeleteSettlement(ctx context.Context, settlementID string) error {
	if err := s.store.DeleteSettlement(ctx, settlementID); err != nil {
		slog.Error("DeleteSettlement failed", "settlement_id", settlementID, "error", err)
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	slog.Info("Settlement deleted", "settlement_id", settlementID)
	return nil
}
