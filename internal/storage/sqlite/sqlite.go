// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/grouppay/grouppay/internal/models"
	"github.com/grouppay/grouppay/internal/money"
	"github.com/grouppay/grouppay/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateBill persists a new bill to the database.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.Title == "" {
		bill.Title = generateTitle(bill.Participants)
	}
	if bill.Mode == "" {
		bill.Mode = models.SplitItemized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (id, title, tax_amount, tip_amount, mode, payer_id, group_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.Title, int64(bill.Params.TaxAmount), int64(bill.Params.TipAmount),
		string(bill.Mode), nullable(bill.PayerID), nullable(bill.GroupID), bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	if err := insertBillRows(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBill retrieves a bill by ID, including items, assignments, and roster.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{ID: billID}
	var taxAmount, tipAmount int64
	var mode string
	var payerID, groupID sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT title, tax_amount, tip_amount, mode, payer_id, group_id, created_at FROM bills WHERE id = ?",
		billID,
	).Scan(&bill.Title, &taxAmount, &tipAmount, &mode, &payerID, &groupID, &bill.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bill not found: %s", billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	bill.Params = models.SplitParameters{
		TaxAmount: money.Amount(taxAmount),
		TipAmount: money.Amount(tipAmount),
	}
	bill.Mode = models.SplitMode(mode)
	if payerID.Valid {
		bill.PayerID = payerID.String
	}
	if groupID.Valid {
		bill.GroupID = groupID.String
	}

	// Roster in stored position order; roster order decides who absorbs
	// rounding residuals, so it must survive the round trip.
	rows, err := s.db.QueryContext(ctx,
		"SELECT participant_id, display_name FROM bill_participants WHERE bill_id = ? ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		bill.Participants = append(bill.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, name, unit_price, quantity, assign_all FROM items WHERE bill_id = ? ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer itemRows.Close()

	bill.Assignments = make(map[string]models.Assignment)
	for itemRows.Next() {
		var item models.LineItem
		var unitPrice int64
		var assignAll bool
		if err := itemRows.Scan(&item.ID, &item.Name, &unitPrice, &item.Quantity, &assignAll); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.UnitPrice = money.Amount(unitPrice)

		if assignAll {
			bill.Assignments[item.ID] = models.Assignment{All: true}
		} else {
			owners, err := s.itemOwners(ctx, item.ID)
			if err != nil {
				return nil, err
			}
			if len(owners) > 0 {
				bill.Assignments[item.ID] = models.Assignment{Participants: owners}
			}
		}

		bill.Items = append(bill.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return bill, nil
}

// UpdateBill replaces an existing bill's contents.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE bills SET title = ?, tax_amount = ?, tip_amount = ?, mode = ?, payer_id = ?, group_id = ?
		 WHERE id = ?`,
		bill.Title, int64(bill.Params.TaxAmount), int64(bill.Params.TipAmount),
		string(bill.Mode), nullable(bill.PayerID), nullable(bill.GroupID), bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bill not found: %s", bill.ID)
	}

	// Dependent rows are replaced wholesale: items, assignments, and the
	// roster are small and the bill is the unit of consistency.
	for _, stmt := range []string{
		"DELETE FROM item_assignments WHERE item_id IN (SELECT id FROM items WHERE bill_id = ?)",
		"DELETE FROM items WHERE bill_id = ?",
		"DELETE FROM bill_participants WHERE bill_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, bill.ID); err != nil {
			return fmt.Errorf("failed to clear bill rows: %w", err)
		}
	}

	if err := insertBillRows(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteBill removes a bill; dependent rows cascade.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bill not found: %s", billID)
	}
	return nil
}

// ListBillsByGroup retrieves all bills linked to a group, newest first.
func (s *SQLiteStore) ListBillsByGroup(ctx context.Context, groupID string) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM bills WHERE group_id = ? ORDER BY created_at DESC",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills by group: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan bill id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	bills := make([]*models.Bill, 0, len(ids))
	for _, id := range ids {
		bill, err := s.GetBill(ctx, id)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, nil
}

// insertBillRows writes a bill's participants, items, and assignments
// within the given transaction.
func insertBillRows(ctx context.Context, tx *sql.Tx, bill *models.Bill) error {
	for i, p := range bill.Participants {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO bill_participants (bill_id, participant_id, display_name, position) VALUES (?, ?, ?, ?)",
			bill.ID, p.ID, p.DisplayName, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}

		assignment, assigned := bill.Assignments[item.ID]

		_, err := tx.ExecContext(ctx,
			"INSERT INTO items (id, bill_id, name, unit_price, quantity, position, assign_all) VALUES (?, ?, ?, ?, ?, ?, ?)",
			item.ID, bill.ID, item.Name, int64(item.UnitPrice), item.Quantity, i, assigned && assignment.All,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		if !assigned || assignment.All {
			continue
		}
		for _, participantID := range assignment.Participants {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO item_assignments (item_id, participant_id) VALUES (?, ?)",
				item.ID, participantID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}

	return nil
}

// itemOwners loads the explicit participant list assigned to an item.
func (s *SQLiteStore) itemOwners(ctx context.Context, itemID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT participant_id FROM item_assignments WHERE item_id = ? ORDER BY participant_id",
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item assignments: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		owners = append(owners, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return owners, nil
}

// nullable converts an empty string to NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// generateTitle creates an auto-generated title from the roster.
func generateTitle(participants []models.Participant) string {
	names := make([]string, len(participants))
	for i, p := range participants {
		names[i] = p.DisplayName
		if names[i] == "" {
			names[i] = p.ID
		}
	}

	if len(names) == 0 {
		return fmt.Sprintf("Bill - %s", time.Now().Format("Jan 2, 2006"))
	}
	if len(names) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(names[:2], ", "),
		len(names)-2,
	)
}
