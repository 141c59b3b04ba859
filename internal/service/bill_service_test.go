package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/grouppay/grouppay/internal/models"
	"github.com/grouppay/grouppay/internal/storage"
	"github.com/grouppay/grouppay/internal/storage/sqlite"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "grouppay-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func testRoster(ids ...string) []models.Participant {
	roster := make([]models.Participant, len(ids))
	for i, id := range ids {
		roster[i] = models.Participant{ID: id, DisplayName: id}
	}
	return roster
}

func TestBillServiceParseReceipt(t *testing.T) {
	svc := NewBillService(newTestStore(t))

	parsed := svc.ParseReceipt(context.Background(), "2 BURGER 18.00\nTAX 1.60\nTOTAL: 19.60")

	if len(parsed.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(parsed.Items))
	}
	if parsed.Items[0].Name != "BURGER" || parsed.Items[0].Quantity != 2 {
		t.Errorf("item = %+v", parsed.Items[0])
	}
	if parsed.Subtotal != 1800 || parsed.Tax.Amount != 160 {
		t.Errorf("subtotal = %s, tax = %s", parsed.Subtotal, parsed.Tax.Amount)
	}
}

func TestBillServicePreviewSplit(t *testing.T) {
	svc := NewBillService(newTestStore(t))
	ctx := context.Background()

	items := []models.LineItem{{ID: "i1", Name: "PIZZA", UnitPrice: 1001, Quantity: 1}}

	t.Run("defaults to itemized mode", func(t *testing.T) {
		result, err := svc.PreviewSplit(ctx, items,
			map[string]models.Assignment{"i1": {All: true}},
			testRoster("Alice", "Bob"), "", models.SplitParameters{}, "")
		if err != nil {
			t.Fatalf("PreviewSplit failed: %v", err)
		}
		if result.Shares[0].Total+result.Shares[1].Total != 1001 {
			t.Errorf("shares do not reconcile: %+v", result.Shares)
		}
	})

	t.Run("invalid input is classified", func(t *testing.T) {
		_, err := svc.PreviewSplit(ctx, items, nil, nil, "", models.SplitParameters{}, models.SplitEqual)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
	})
}

func TestBillServiceLifecycle(t *testing.T) {
	store := newTestStore(t)
	bills := NewBillService(store)
	groups := NewGroupService(store)
	ctx := context.Background()

	group := &models.Group{Name: "Trip", Members: []string{"Alice"}}
	if err := groups.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	bill := &models.Bill{
		Items: []models.LineItem{
			{ID: "i1", Name: "PIZZA", UnitPrice: 1800, Quantity: 1},
		},
		Assignments:  map[string]models.Assignment{"i1": {All: true}},
		Participants: testRoster("Alice", "Bob"),
		PayerID:      "Alice",
		Params:       models.SplitParameters{TaxAmount: 160},
		GroupID:      group.ID,
	}

	result, err := bills.CreateBill(ctx, bill)
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	if bill.ID == "" {
		t.Fatal("Expected bill ID to be generated")
	}
	if result.GrandTotal != 1960 {
		t.Errorf("grand total = %s, want 19.60", result.GrandTotal)
	}

	t.Run("participants are auto-added to group", func(t *testing.T) {
		got, err := groups.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		found := false
		for _, m := range got.Members {
			if m == "Bob" {
				found = true
			}
		}
		if !found {
			t.Errorf("Bob not auto-added, members = %v", got.Members)
		}
	})

	t.Run("GetBill recomputes the split", func(t *testing.T) {
		retrieved, split, err := bills.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if retrieved.Title == "" {
			t.Error("Expected generated title")
		}
		var sum int64
		for _, share := range split.Shares {
			sum += int64(share.Total)
		}
		if sum != int64(split.GrandTotal) {
			t.Errorf("shares sum to %d, want %d", sum, int64(split.GrandTotal))
		}
	})

	t.Run("UpdateBill changes the split", func(t *testing.T) {
		bill.Params.TipAmount = 200
		result, err := bills.UpdateBill(ctx, bill)
		if err != nil {
			t.Fatalf("UpdateBill failed: %v", err)
		}
		if result.GrandTotal != 2160 {
			t.Errorf("grand total = %s, want 21.60", result.GrandTotal)
		}
	})

	t.Run("invalid bill is never persisted", func(t *testing.T) {
		bad := &models.Bill{
			Items:        []models.LineItem{{ID: "i1", Name: "PIZZA", UnitPrice: 1800, Quantity: 1}},
			Assignments:  map[string]models.Assignment{"i1": {Participants: []string{"Mallory"}}},
			Participants: testRoster("Alice"),
		}
		if _, err := bills.CreateBill(ctx, bad); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
		if bad.ID != "" {
			if _, _, err := bills.GetBill(ctx, bad.ID); err == nil {
				t.Error("invalid bill was persisted")
			}
		}
	})

	t.Run("ListBillsByGroup returns the bill", func(t *testing.T) {
		list, err := bills.ListBillsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListBillsByGroup failed: %v", err)
		}
		if len(list) != 1 || list[0].ID != bill.ID {
			t.Errorf("list = %+v", list)
		}
	})

	t.Run("DeleteBill removes it", func(t *testing.T) {
		if err := bills.DeleteBill(ctx, bill.ID); err != nil {
			t.Fatalf("DeleteBill failed: %v", err)
		}
		if _, _, err := bills.GetBill(ctx, bill.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}
