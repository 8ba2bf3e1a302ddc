package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/bufferstock-backend/internal/ledger"
	"github.com/angelmondragon/bufferstock-backend/pkg/db/models"
	"github.com/angelmondragon/bufferstock-backend/pkg/enums"
)

type stubLedgerService struct {
	movements  []models.StockMovement
	err        error
	lastFilter ledger.Filter
}

func (s *stubLedgerService) Record(ctx context.Context, input ledger.RecordMovementInput) (*models.StockMovement, error) {
	return nil, s.err
}

func (s *stubLedgerService) Query(ctx context.Context, filter ledger.Filter) ([]models.StockMovement, error) {
	s.lastFilter = filter
	limit := filter.Limit
	if limit <= 0 || limit > len(s.movements) {
		limit = len(s.movements)
	}
	return s.movements[:limit], s.err
}

func (s *stubLedgerService) NetQuantity(ctx context.Context, partCode string) (int, error) {
	return 0, s.err
}

func seededMovements(n int) []models.StockMovement {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	movements := make([]models.StockMovement, 0, n)
	for i := 0; i < n; i++ {
		movements = append(movements, models.StockMovement{
			ID:         uuid.New(),
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
			PartCode:   "P1001",
			Type:       enums.MovementTypeIn,
			InQty:      1,
			Balance:    i + 1,
			EnteredBy:  "TSD",
		})
	}
	return movements
}

func TestListMovementsPaginates(t *testing.T) {
	svc := &stubLedgerService{movements: seededMovements(5)}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/movements?part_code=P1001&limit=3", nil)
	resp := httptest.NewRecorder()
	ListMovements(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastFilter.PartCode != "P1001" {
		t.Fatalf("expected part filter, got %+v", svc.lastFilter)
	}
	if svc.lastFilter.Limit != 4 {
		t.Fatalf("expected buffered limit 4, got %d", svc.lastFilter.Limit)
	}

	var envelope struct {
		Data movementPage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Movements) != 3 {
		t.Fatalf("expected 3 movements got %d", len(envelope.Data.Movements))
	}
	if envelope.Data.NextCursor == "" {
		t.Fatal("expected next cursor on a full page")
	}
}

func TestListMovementsLastPageOmitsCursor(t *testing.T) {
	svc := &stubLedgerService{movements: seededMovements(2)}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/movements?limit=3", nil)
	resp := httptest.NewRecorder()
	ListMovements(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data movementPage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Movements) != 2 {
		t.Fatalf("expected 2 movements got %d", len(envelope.Data.Movements))
	}
	if envelope.Data.NextCursor != "" {
		t.Fatalf("expected no cursor, got %q", envelope.Data.NextCursor)
	}
}

func TestListMovementsRejectsInvertedWindow(t *testing.T) {
	svc := &stubLedgerService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/movements?start=2026-08-02T00:00:00Z&end=2026-08-01T00:00:00Z", nil)
	resp := httptest.NewRecorder()
	ListMovements(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListMovementsRejectsBadCursor(t *testing.T) {
	svc := &stubLedgerService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/movements?cursor=%21%21not-base64", nil)
	resp := httptest.NewRecorder()
	ListMovements(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
