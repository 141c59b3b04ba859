package service

import (
	"context"
	"errors"
	"testing"

	"github.com/grouppay/grouppay/internal/models"
)

func TestGroupServiceCRUD(t *testing.T) {
	svc := NewGroupService(newTestStore(t))
	ctx := context.Background()

	t.Run("CreateGroup requires a name", func(t *testing.T) {
		err := svc.CreateGroup(ctx, &models.Group{})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
	})

	group := &models.Group{Name: "Ski House", Members: []string{"Alice", "Bob"}}
	if err := svc.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	t.Run("AddMembers returns the updated group", func(t *testing.T) {
		updated, err := svc.AddMembers(ctx, group.ID, []string{"Charlie"})
		if err != nil {
			t.Fatalf("AddMembers failed: %v", err)
		}
		if len(updated.Members) != 3 {
			t.Errorf("members = %v, want 3 entries", updated.Members)
		}
	})

	t.Run("AddMembers requires at least one name", func(t *testing.T) {
		if _, err := svc.AddMembers(ctx, group.ID, nil); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("UpdateGroup renames", func(t *testing.T) {
		group.Name = "Ski House 2026"
		updated, err := svc.UpdateGroup(ctx, group)
		if err != nil {
			t.Fatalf("UpdateGroup failed: %v", err)
		}
		if updated.Name != "Ski House 2026" {
			t.Errorf("name = %q", updated.Name)
		}
	})

	t.Run("DeleteGroup then GetGroup is not found", func(t *testing.T) {
		if err := svc.DeleteGroup(ctx, group.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		if _, err := svc.GetGroup(ctx, group.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestGroupServiceBalances(t *testing.T) {
	store := newTestStore(t)
	groups := NewGroupService(store)
	bills := NewBillService(store)
	ctx := context.Background()

	group := &models.Group{Name: "Dinner Club", Members: []string{"Alice", "Bob", "Charlie"}}
	if err := groups.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// Alice fronts a 30.00 bill split three ways.
	bill := &models.Bill{
		Items:        []models.LineItem{{ID: "i1", Name: "DINNER", UnitPrice: 3000, Quantity: 1}},
		Assignments:  map[string]models.Assignment{"i1": {All: true}},
		Participants: testRoster("Alice", "Bob", "Charlie"),
		PayerID:      "Alice",
		GroupID:      group.ID,
	}
	if _, err := bills.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	// Bob squares up.
	settlement := &models.Settlement{GroupID: group.ID, From: "Bob", To: "Alice", Amount: 1000}
	if err := groups.RecordSettlement(ctx, settlement); err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}

	balances, debts, err := groups.Balances(ctx, group.ID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}

	net := make(map[string]int64)
	for _, b := range balances {
		net[b.MemberID] = int64(b.NetBalance)
	}
	if net["Alice"] != 1000 || net["Bob"] != 0 || net["Charlie"] != -1000 {
		t.Errorf("net balances = %v", net)
	}
	if len(debts) != 1 || debts[0].From != "Charlie" || debts[0].To != "Alice" || debts[0].Amount != 1000 {
		t.Errorf("debts = %+v", debts)
	}
}

func TestGroupServiceSettlementValidation(t *testing.T) {
	svc := NewGroupService(newTestStore(t))
	ctx := context.Background()

	group := &models.Group{Name: "Pair"}
	if err := svc.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	tests := []struct {
		name       string
		settlement *models.Settlement
		wantErr    error
	}{
		{
			name:       "missing parties",
			settlement: &models.Settlement{GroupID: group.ID, Amount: 100},
			wantErr:    ErrInvalidInput,
		},
		{
			name:       "self settlement",
			settlement: &models.Settlement{GroupID: group.ID, From: "Alice", To: "Alice", Amount: 100},
			wantErr:    ErrInvalidInput,
		},
		{
			name:       "non-positive amount",
			settlement: &models.Settlement{GroupID: group.ID, From: "Alice", To: "Bob", Amount: 0},
			wantErr:    ErrInvalidInput,
		},
		{
			name:       "unknown group",
			settlement: &models.Settlement{GroupID: "nope", From: "Alice", To: "Bob", Amount: 100},
			wantErr:    ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.RecordSettlement(ctx, tt.settlement); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("valid settlement round-trips", func(t *testing.T) {
		s := &models.Settlement{GroupID: group.ID, From: "Alice", To: "Bob", Amount: 550}
		if err := svc.RecordSettlement(ctx, s); err != nil {
			t.Fatalf("RecordSettlement failed: %v", err)
		}
		list, err := svc.ListSettlements(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListSettlements failed: %v", err)
		}
		if len(list) != 1 || list[0].Amount != 550 {
			t.Errorf("settlements = %+v", list)
		}
		if err := svc.DeleteSettlement(ctx, list[0].ID); err != nil {
			t.Fatalf("DeleteSettlement failed: %v", err)
		}
	})
}
