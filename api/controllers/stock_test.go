package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/bufferstock-backend/api/middleware"
	"github.com/angelmondragon/bufferstock-backend/internal/stock"
	"github.com/angelmondragon/bufferstock-backend/pkg/db/models"
	"github.com/angelmondragon/bufferstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bufferstock-backend/pkg/errors"
)

type stubStockService struct {
	movement  *models.StockMovement
	result    *stock.ReconcileResult
	err       error
	lastActor stock.Actor
	lastInput stock.MovementInput
}

func (s *stubStockService) StockIn(ctx context.Context, actor stock.Actor, input stock.MovementInput) (*models.StockMovement, error) {
	s.lastActor = actor
	s.lastInput = input
	return s.movement, s.err
}

func (s *stubStockService) StockOut(ctx context.Context, actor stock.Actor, input stock.MovementInput) (*models.StockMovement, error) {
	s.lastActor = actor
	s.lastInput = input
	return s.movement, s.err
}

func (s *stubStockService) Reconcile(ctx context.Context, partCode string) (*stock.ReconcileResult, error) {
	return s.result, s.err
}

func (s *stubStockService) ReconcileAll(ctx context.Context) ([]stock.ReconcileResult, error) {
	return nil, s.err
}

func authedRequest(t *testing.T, method, target, body, operator, role string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithOperator(req.Context(), operator)
	ctx = middleware.WithRole(ctx, role)
	return req.WithContext(ctx)
}

func TestStockInRecordsMovement(t *testing.T) {
	svc := &stubStockService{movement: &models.StockMovement{
		ID:         uuid.New(),
		RecordedAt: time.Now().UTC(),
		PartCode:   "P1001",
		Type:       enums.MovementTypeIn,
		InQty:      5,
		Balance:    25,
		EnteredBy:  "TSD",
	}}

	req := authedRequest(t, http.MethodPost, "/api/v1/stock/in",
		`{"part_code":"P1001","quantity":5,"applicant":"line-3"}`, "TSD", "admin")
	resp := httptest.NewRecorder()
	StockIn(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastActor.Name != "TSD" || !svc.lastActor.CanWrite {
		t.Fatalf("unexpected actor %+v", svc.lastActor)
	}
	if svc.lastInput.PartCode != "P1001" || svc.lastInput.Qty != 5 {
		t.Fatalf("unexpected input %+v", svc.lastInput)
	}

	var envelope struct {
		Data models.StockMovement `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Balance != 25 {
		t.Fatalf("expected balance 25 got %d", envelope.Data.Balance)
	}
}

func TestStockOutRejectsMissingOperatorContext(t *testing.T) {
	svc := &stubStockService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/out", bytes.NewReader([]byte(`{"part_code":"P1001","quantity":5}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	StockOut(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestStockOutPropagatesInsufficientStock(t *testing.T) {
	svc := &stubStockService{err: pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock-out of 30 exceeds available 25")}
	req := authedRequest(t, http.MethodPost, "/api/v1/stock/out",
		`{"part_code":"P1001","quantity":30}`, "TSD", "admin")
	resp := httptest.NewRecorder()
	StockOut(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestStockInRejectsInvalidPayload(t *testing.T) {
	svc := &stubStockService{}
	req := authedRequest(t, http.MethodPost, "/api/v1/stock/in", `{"part_code":"P1001"}`, "TSD", "admin")
	resp := httptest.NewRecorder()
	StockIn(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestReconcilePartReturnsResult(t *testing.T) {
	svc := &stubStockService{result: &stock.ReconcileResult{PartCode: "P1001", StoredQty: 25, LedgerQty: 25}}
	router := newTestRouter("/api/v1/stock/{partCode}/reconcile", ReconcilePart(svc, nil))

	req := authedRequest(t, http.MethodPost, "/api/v1/stock/P1001/reconcile", ``, "TSD", "admin")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data stock.ReconcileResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.PartCode != "P1001" || envelope.Data.Repaired {
		t.Fatalf("unexpected result %+v", envelope.Data)
	}
}
