package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"fintrack/internal/dto"
	"fintrack/internal/models"
	"fintrack/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type stubTxRepo struct {
	byID map[uuid.UUID]models.Transaction
}

func newStubTxRepo() *stubTxRepo {
	return &stubTxRepo{byID: make(map[uuid.UUID]models.Transaction)}
}

func (s *stubTxRepo) Insert(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	now := time.Now().UTC()
	tx.ID = uuid.New()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	s.byID[tx.ID] = *tx
	return tx, nil
}

func (s *stubTxRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	tx, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

func (s *stubTxRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, tx := range s.byID {
		if tx.UserID == ownerID {
			tx := tx
			out = append(out, &tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *stubTxRepo) Save(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	if _, ok := s.byID[tx.ID]; !ok {
		return nil, fmt.Errorf("save transaction %s: row no longer exists", tx.ID)
	}
	s.byID[tx.ID] = *tx
	return tx, nil
}

func (s *stubTxRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	delete(s.byID, id)
	return nil
}

// newTestApp wires the real handler and service over an in-memory repository,
// with a stand-in auth middleware that injects the given user id.
func newTestApp(userID uuid.UUID) (*fiber.App, *service.TransactionService) {
	svc := service.NewTransactionService(newStubTxRepo(), zap.NewNop())
	h := NewTransactionHandler(svc, zap.NewNop())

	app := fiber.New()
	transactions := app.Group("/api/transactions", func(c *fiber.Ctx) error {
		c.Locals("userID", userID.String())
		return c.Next()
	})
	transactions.Get("", h.List)
	transactions.Get("/stats", h.Stats)
	transactions.Get("/:id", h.Get)
	transactions.Post("", h.Create)
	transactions.Put("/:id", h.Update)
	transactions.Delete("/:id", h.Delete)

	return app, svc
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	resp.Body.Close()

	return resp, raw
}

func TestTransactionHandler_CreateIgnoresClientOwner(t *testing.T) {
	userID := uuid.New()
	app, _ := newTestApp(userID)

	// A client-supplied owner field has no corresponding request field and is
	// silently dropped; the record belongs to the authenticated user.
	resp, raw := doJSON(t, app, http.MethodPost, "/api/transactions", map[string]any{
		"type":     "income",
		"category": "Salary",
		"amount":   1500.0,
		"user_id":  uuid.New().String(),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, raw)
	}

	var created dto.TransactionResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	// The record is visible to the authenticated user.
	getResp, _ := doJSON(t, app, http.MethodGet, "/api/transactions/"+created.ID, nil)
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on get, got %d", getResp.StatusCode)
	}
}

func TestTransactionHandler_CreateValidation(t *testing.T) {
	app, _ := newTestApp(uuid.New())

	tests := []struct {
		name      string
		body      map[string]any
		wantError string
	}{
		{
			name:      "missing fields",
			body:      map[string]any{"type": "income"},
			wantError: "type, category, and amount are required",
		},
		{
			name:      "negative amount",
			body:      map[string]any{"type": "expense", "category": "Food", "amount": -10.0},
			wantError: "amount must be greater than 0",
		},
		{
			name:      "bad type",
			body:      map[string]any{"type": "transfer", "category": "Food", "amount": 10.0},
			wantError: "type must be income or expense",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := doJSON(t, app, http.MethodPost, "/api/transactions", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.StatusCode, raw)
			}

			var body map[string]string
			if err := json.Unmarshal(raw, &body); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if body["error"] != tt.wantError {
				t.Errorf("expected error %q, got %q", tt.wantError, body["error"])
			}
		})
	}
}

func TestTransactionHandler_GetStatusCodes(t *testing.T) {
	userID := uuid.New()
	app, svc := newTestApp(userID)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/transactions/"+uuid.New().String(), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodGet, "/api/transactions/not-a-uuid", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", resp.StatusCode)
	}

	// A record owned by someone else is reported as unauthorized, not absent.
	foreign, err := svc.Create(context.Background(), uuid.New(), &dto.CreateTransactionRequest{
		Type: "income", Category: "Salary", Amount: 100,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	resp, _ = doJSON(t, app, http.MethodGet, "/api/transactions/"+foreign.ID.String(), nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for foreign record, got %d", resp.StatusCode)
	}
}

func TestTransactionHandler_ListOrdered(t *testing.T) {
	userID := uuid.New()
	app, svc := newTestApp(userID)

	dates := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for i := range dates {
		if _, err := svc.Create(context.Background(), userID, &dto.CreateTransactionRequest{
			Type: "expense", Category: "Misc", Amount: 10, Date: &dates[i],
		}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	resp, raw := doJSON(t, app, http.MethodGet, "/api/transactions", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var list []dto.TransactionResponse
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		prev, _ := time.Parse(time.RFC3339, list[i-1].Date)
		cur, _ := time.Parse(time.RFC3339, list[i].Date)
		if cur.After(prev) {
			t.Errorf("list not in descending date order at index %d", i)
		}
	}
}

func TestTransactionHandler_ListEmptyIsArray(t *testing.T) {
	app, _ := newTestApp(uuid.New())

	resp, raw := doJSON(t, app, http.MethodGet, "/api/transactions", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if string(raw) != "[]" {
		t.Errorf("expected empty JSON array, got %s", raw)
	}
}

func TestTransactionHandler_StatsRouteNotShadowedByID(t *testing.T) {
	userID := uuid.New()
	app, svc := newTestApp(userID)

	for _, in := range []struct {
		txType string
		amount float64
	}{{"income", 100}, {"expense", 30}, {"income", 20}} {
		if _, err := svc.Create(context.Background(), userID, &dto.CreateTransactionRequest{
			Type: in.txType, Category: "Misc", Amount: in.amount,
		}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	resp, raw := doJSON(t, app, http.MethodGet, "/api/transactions/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}

	var stats dto.StatsResponse
	if err := json.Unmarshal(raw, &stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if stats.TotalIncome != 120 || stats.TotalExpense != 30 || stats.Balance != 90 || stats.TransactionCount != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestTransactionHandler_UpdateZeroAmountRetained(t *testing.T) {
	userID := uuid.New()
	app, svc := newTestApp(userID)

	created, err := svc.Create(context.Background(), userID, &dto.CreateTransactionRequest{
		Type: "expense", Category: "Food", Amount: 50,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	resp, raw := doJSON(t, app, http.MethodPut, "/api/transactions/"+created.ID.String(), map[string]any{
		"amount": 0,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}

	var updated dto.TransactionResponse
	if err := json.Unmarshal(raw, &updated); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if updated.Amount != 50 {
		t.Errorf("expected amount 50 retained, got %v", updated.Amount)
	}
}

func TestTransactionHandler_Delete(t *testing.T) {
	userID := uuid.New()
	app, svc := newTestApp(userID)

	created, err := svc.Create(context.Background(), userID, &dto.CreateTransactionRequest{
		Type: "income", Category: "Salary", Amount: 100,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	resp, raw := doJSON(t, app, http.MethodDelete, "/api/transactions/"+created.ID.String(), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["message"] != "Transaction deleted successfully" {
		t.Errorf("unexpected message %q", body["message"])
	}

	resp, _ = doJSON(t, app, http.MethodGet, "/api/transactions/"+created.ID.String(), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}
