package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/grouppay/grouppay/internal/calculator"
	"github.com/grouppay/grouppay/internal/models"
	"github.com/grouppay/grouppay/internal/storage/sqlite"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	return New(store).Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	handler := newTestServer(t)

	w := doJSON(t, handler, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestParseReceiptEndpoint(t *testing.T) {
	handler := newTestServer(t)

	w := doJSON(t, handler, http.MethodPost, "/api/receipts/parse", gin.H{
		"text": "2 BURGER 18.00\nSIDE FRIES 4.50\nTAX 1.80\nTOTAL: 24.30",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	parsed := decode[models.ParsedReceipt](t, w)
	if len(parsed.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(parsed.Items))
	}
	if parsed.Items[0].Name != "BURGER" || parsed.Items[0].Quantity != 2 || parsed.Items[0].UnitPrice != 900 {
		t.Errorf("item[0] = %+v", parsed.Items[0])
	}
	if parsed.Subtotal != 2250 || parsed.Tax.Amount != 180 {
		t.Errorf("subtotal = %s, tax = %s", parsed.Subtotal, parsed.Tax.Amount)
	}
}

func TestPreviewSplitEndpoint(t *testing.T) {
	handler := newTestServer(t)

	t.Run("valid request", func(t *testing.T) {
		w := doJSON(t, handler, http.MethodPost, "/api/splits/preview", gin.H{
			"items": []gin.H{
				{"id": "i1", "name": "PIZZA", "unitPrice": "10.01", "quantity": 1},
			},
			"assignments":  gin.H{"i1": gin.H{"all": true}},
			"participants": []gin.H{{"id": "A"}, {"id": "B"}, {"id": "C"}},
			"mode":         "itemized",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}

		result := decode[models.SplitResult](t, w)
		var sum int64
		for _, share := range result.Shares {
			sum += int64(share.Total)
		}
		if sum != 1001 {
			t.Errorf("shares sum to %d, want 1001", sum)
		}
	})

	t.Run("tip derived from percentage of subtotal", func(t *testing.T) {
		w := doJSON(t, handler, http.MethodPost, "/api/splits/preview", gin.H{
			"items": []gin.H{
				{"id": "i1", "name": "STEAK", "unitPrice": "20.00", "quantity": 1},
			},
			"assignments":  gin.H{"i1": gin.H{"all": true}},
			"participants": []gin.H{{"id": "A"}, {"id": "B"}},
			"mode":         "itemized",
			"tipPercent":   10,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}

		result := decode[models.SplitResult](t, w)
		if result.GrandTotal != 2200 {
			t.Errorf("grand total = %s, want 22.00", result.GrandTotal)
		}
		if result.Shares[0].TipShare != 100 {
			t.Errorf("tip share = %s, want 1.00", result.Shares[0].TipShare)
		}
	})

	t.Run("empty roster is rejected", func(t *testing.T) {
		w := doJSON(t, handler, http.MethodPost, "/api/splits/preview", gin.H{
			"items": []gin.H{{"id": "i1", "name": "PIZZA", "unitPrice": "10.00", "quantity": 1}},
			"mode":  "equal",
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestBillEndpoints(t *testing.T) {
	handler := newTestServer(t)

	billPayload := gin.H{
		"title": "Team Lunch",
		"items": []gin.H{
			{"id": "i1", "name": "PIZZA", "unitPrice": "18.00", "quantity": 1},
		},
		"assignments":  gin.H{"i1": gin.H{"all": true}},
		"participants": []gin.H{{"id": "Alice"}, {"id": "Bob"}},
		"payerId":      "Alice",
		"params":       gin.H{"taxAmount": "1.60"},
	}

	type billResponse struct {
		Bill  models.Bill        `json:"bill"`
		Split models.SplitResult `json:"split"`
	}

	w := doJSON(t, handler, http.MethodPost, "/api/bills", billPayload)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	created := decode[billResponse](t, w)
	if created.Bill.ID == "" {
		t.Fatal("Expected bill ID in response")
	}
	if created.Split.GrandTotal != 1960 {
		t.Errorf("grand total = %s, want 19.60", created.Split.GrandTotal)
	}

	t.Run("get recomputes split", func(t *testing.T) {
		w := doJSON(t, handler, http.MethodGet, "/api/bills/"+created.Bill.ID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		got := decode[billResponse](t, w)
		if got.Bill.Title != "Team Lunch" {
			t.Errorf("title = %q", got.Bill.Title)
		}
		if len(got.Split.Shares) != 2 {
			t.Errorf("shares = %+v", got.Split.Shares)
		}
	})

	t.Run("unknown bill is 404", func(t *testing.T) {
		w := doJSON(t, handler, http.MethodGet, "/api/bills/nope", nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})

	t.Run("invalid bill is 400", func(t *testing.T) {
		bad := gin.H{
			"items":        []gin.H{{"id": "i1", "name": "PIZZA", "unitPrice": "18.00", "quantity": 1}},
			"assignments":  gin.H{"i1": gin.H{"participants": []string{"Mallory"}}},
			"participants": []gin.H{{"id": "Alice"}},
		}
		w := doJSON(t, handler, http.MethodPost, "/api/bills", bad)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		w := doJSON(t, handler, http.MethodDelete, "/api/bills/"+created.Bill.ID, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", w.Code)
		}
		w = doJSON(t, handler, http.MethodGet, "/api/bills/"+created.Bill.ID, nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404 after delete", w.Code)
		}
	})
}

func TestGroupEndpoints(t *testing.T) {
	handler := newTestServer(t)

	w := doJSON(t, handler, http.MethodPost, "/api/groups", gin.H{
		"name":    "Apartment",
		"members": []string{"Alice", "Bob", "Charlie"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	group := decode[models.Group](t, w)

	// A bill paid by Alice, split across everyone.
	w = doJSON(t, handler, http.MethodPost, "/api/bills", gin.H{
		"items": []gin.H{
			{"id": "i1", "name": "GROCERIES", "unitPrice": "30.00", "quantity": 1},
		},
		"assignments":  gin.H{"i1": gin.H{"all": true}},
		"participants": []gin.H{{"id": "Alice"}, {"id": "Bob"}, {"id": "Charlie"}},
		"payerId":      "Alice",
		"groupId":      group.ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("bill status = %d, body = %s", w.Code, w.Body.String())
	}

	t.Run("group bills", func(t *testing.T) {
		w := doJSON(t, handler, http.MethodGet, "/api/groups/"+group.ID+"/bills", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		resp := decode[struct {
			Bills []models.Bill `json:"bills"`
		}](t, w)
		if len(resp.Bills) != 1 {
			t.Errorf("got %d bills, want 1", len(resp.Bills))
		}
	})

	t.Run("settlement and balances", func(t *testing.T) {
		w := doJSON(t, handler, http.MethodPost, "/api/groups/"+group.ID+"/settlements", gin.H{
			"from": "Bob", "to": "Alice", "amount": "10.00",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("settlement status = %d, body = %s", w.Code, w.Body.String())
		}

		w = doJSON(t, handler, http.MethodGet, "/api/groups/"+group.ID+"/balances", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("balances status = %d, body = %s", w.Code, w.Body.String())
		}
		resp := decode[struct {
			Balances []calculator.MemberBalance `json:"balances"`
			Debts    []calculator.DebtEdge      `json:"debts"`
		}](t, w)

		net := make(map[string]int64)
		for _, b := range resp.Balances {
			net[b.MemberID] = int64(b.NetBalance)
		}
		if net["Alice"] != 1000 || net["Bob"] != 0 || net["Charlie"] != -1000 {
			t.Errorf("net balances = %v", net)
		}
		if len(resp.Debts) != 1 || resp.Debts[0].From != "Charlie" {
			t.Errorf("debts = %+v", resp.Debts)
		}
	})

	t.Run("add members", func(t *testing.T) {
		w := doJSON(t, handler, http.MethodPost, "/api/groups/"+group.ID+"/members", gin.H{
			"members": []string{"Dana"},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		updated := decode[models.Group](t, w)
		if len(updated.Members) != 4 {
			t.Errorf("members = %v", updated.Members)
		}
	})

	t.Run("delete group", func(t *testing.T) {
		w := doJSON(t, handler, http.MethodDelete, "/api/groups/"+group.ID, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", w.Code)
		}
		w = doJSON(t, handler, http.MethodGet, "/api/groups/"+group.ID, nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404 after delete", w.Code)
		}
	})
}
