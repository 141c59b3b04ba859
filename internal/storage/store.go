// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/grouppay/grouppay/internal/models"
)

// Store defines the interface for bill, group, and settlement persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// CreateBill persists a new bill. The bill's ID, CreatedAt, and Title
	// fields are populated by the store when empty.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill by its ID, including items, assignments,
	// and roster. Returns an error if the bill is not found.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// UpdateBill replaces an existing bill's contents.
	// Returns an error if the bill is not found.
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// DeleteBill removes a bill and its dependent rows.
	DeleteBill(ctx context.Context, billID string) error

	// ListBillsByGroup retrieves all bills linked to a group, newest first.
	ListBillsByGroup(ctx context.Context, groupID string) ([]*models.Bill, error)

	// CreateGroup persists a new group, populating ID and CreatedAt.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups retrieves all groups.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// UpdateGroup replaces a group's name and membership.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// AddGroupMembers adds names to a group, ignoring existing members.
	AddGroupMembers(ctx context.Context, groupID string, members []string) error

	// DeleteGroup removes a group, its membership rows, and its settlements.
	// Bills keep their data but lose the group link.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateSettlement records a payment between group members.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlementsByGroup retrieves all settlements for a group,
	// newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// DeleteSettlement removes a settlement by ID.
	DeleteSettlement(ctx context.Context, settlementID string) error

	// Close releases any resources held by the store.
	Close() error
}
