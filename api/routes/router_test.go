package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/bufferstock-backend/internal/auth"
	"github.com/angelmondragon/bufferstock-backend/internal/catalog"
	"github.com/angelmondragon/bufferstock-backend/internal/ledger"
	"github.com/angelmondragon/bufferstock-backend/internal/reports"
	"github.com/angelmondragon/bufferstock-backend/internal/stock"
	pkgauth "github.com/angelmondragon/bufferstock-backend/pkg/auth"
	"github.com/angelmondragon/bufferstock-backend/pkg/config"
	"github.com/angelmondragon/bufferstock-backend/pkg/db/models"
	"github.com/angelmondragon/bufferstock-backend/pkg/enums"
	"github.com/angelmondragon/bufferstock-backend/pkg/logger"
	"github.com/angelmondragon/bufferstock-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{AccessToken: "token", Operator: "TSD", Role: "admin", CanWrite: true}, nil
}

type stubCatalogService struct{}

func (stubCatalogService) CreatePart(ctx context.Context, input catalog.PartInput) (*models.Part, error) {
	return &models.Part{PartCode: input.PartCode}, nil
}

func (stubCatalogService) GetPart(ctx context.Context, partCode string) (*models.Part, error) {
	return &models.Part{PartCode: partCode}, nil
}

func (stubCatalogService) ListParts(ctx context.Context) ([]models.Part, error) {
	return []models.Part{{PartCode: "P1001", Description: "RAM 8GB", Quantity: 50}}, nil
}

func (stubCatalogService) Seed(ctx context.Context, parts []catalog.PartInput) (int, error) {
	return 0, nil
}

type stubStockService struct{}

func (stubStockService) StockIn(ctx context.Context, actor stock.Actor, input stock.MovementInput) (*models.StockMovement, error) {
	return &models.StockMovement{PartCode: input.PartCode, InQty: input.Qty}, nil
}

func (stubStockService) StockOut(ctx context.Context, actor stock.Actor, input stock.MovementInput) (*models.StockMovement, error) {
	return &models.StockMovement{PartCode: input.PartCode, OutQty: input.Qty}, nil
}

func (stubStockService) Reconcile(ctx context.Context, partCode string) (*stock.ReconcileResult, error) {
	return &stock.ReconcileResult{PartCode: partCode}, nil
}

func (stubStockService) ReconcileAll(ctx context.Context) ([]stock.ReconcileResult, error) {
	return nil, nil
}

type stubLedgerService struct{}

func (stubLedgerService) Record(ctx context.Context, input ledger.RecordMovementInput) (*models.StockMovement, error) {
	return nil, nil
}

func (stubLedgerService) Query(ctx context.Context, filter ledger.Filter) ([]models.StockMovement, error) {
	return nil, nil
}

func (stubLedgerService) NetQuantity(ctx context.Context, partCode string) (int, error) {
	return 0, nil
}

type stubReportsService struct{}

func (stubReportsService) LowStock(ctx context.Context, threshold int) (*reports.LowStockReport, error) {
	return &reports.LowStockReport{Threshold: threshold, Parts: []models.Part{}}, nil
}

func (stubReportsService) ConsumptionInWindow(ctx context.Context, start, end time.Time) (map[string]int, error) {
	return nil, nil
}

func (stubReportsService) SuggestedReorderLevel(ctx context.Context, partCode string, leadTimePeriods int) (*reports.ReorderSuggestion, error) {
	return &reports.ReorderSuggestion{PartCode: partCode}, nil
}

func (stubReportsService) Summary(ctx context.Context) (*reports.Summary, error) {
	return &reports.Summary{PartCount: 3}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "0"},
		JWT: config.JWTConfig{Secret: "router-test-secret", Issuer: "bufferstock", ExpirationMinutes: 30},
	}
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubAuthService{},
		stubCatalogService{},
		stubStockService{},
		stubLedgerService{},
		stubReportsService{},
	)
}

func mintToken(t *testing.T, role enums.OperatorRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		Operator: "TSD",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterHealthAndMetricsArePublic(t *testing.T) {
	handler := newTestHandler(t)

	for _, path := range []string{"/health/live", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestRouterRequiresAuthOnAPIRoutes(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/parts", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRouterServesReadsWithValidToken(t *testing.T) {
	handler := newTestHandler(t)

	for _, path := range []string{"/api/v1/parts", "/api/v1/parts/P1001", "/api/v1/reports/summary", "/api/v1/movements"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.OperatorRoleViewer))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200 got %d: %s", path, resp.Code, resp.Body.String())
		}
	}
}

func TestRouterBlocksViewerWrites(t *testing.T) {
	handler := newTestHandler(t)

	body := []byte(`{"part_code":"P1001","quantity":5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/in", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.OperatorRoleViewer))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRouterRequiresIdempotencyKeyOnStockWrites(t *testing.T) {
	handler := newTestHandler(t)

	body := []byte(`{"part_code":"P1001","quantity":5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/in", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.OperatorRoleAdmin))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRouterLoginIsPublic(t *testing.T) {
	handler := newTestHandler(t)

	body := []byte(`{"operator":"TSD","password":"secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}
