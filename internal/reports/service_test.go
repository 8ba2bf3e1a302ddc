package reports

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/bufferstock-backend/internal/inventory"
	"github.com/angelmondragon/bufferstock-backend/internal/ledger"
	"github.com/angelmondragon/bufferstock-backend/pkg/config"
	"github.com/angelmondragon/bufferstock-backend/pkg/db/models"
	"github.com/angelmondragon/bufferstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bufferstock-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:reports_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Part{}, &models.StockMovement{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, cfg config.ReportsConfig, now time.Time) (Service, inventory.Repository, ledger.Repository) {
	t.Helper()
	db := newTestDB(t)
	parts := inventory.NewRepository(db)
	moves := ledger.NewRepository(db)
	svc, err := NewService(parts, moves, cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if !now.IsZero() {
		svc.(*service).now = func() time.Time { return now }
	}
	return svc, parts, moves
}

func TestLowStock(t *testing.T) {
	t.Parallel()

	svc, parts, _ := newTestService(t, config.ReportsConfig{}, time.Time{})
	ctx := context.Background()

	for code, qty := range map[string]int{"A": 3, "B": 10, "C": 4} {
		if err := parts.Create(ctx, &models.Part{PartCode: code, Quantity: qty}); err != nil {
			t.Fatalf("seed %s: %v", code, err)
		}
	}

	report, err := svc.LowStock(ctx, 5)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if report.Threshold != 5 {
		t.Fatalf("expected threshold 5, got %d", report.Threshold)
	}
	if len(report.Parts) != 2 {
		t.Fatalf("expected exactly 2 low stock parts, got %d", len(report.Parts))
	}
	got := map[string]int{}
	for _, part := range report.Parts {
		got[part.PartCode] = part.Quantity
	}
	if got["A"] != 3 || got["C"] != 4 {
		t.Fatalf("unexpected low stock set: %v", got)
	}

	// a negative threshold means the caller did not supply one
	report, err = svc.LowStock(ctx, -1)
	if err != nil {
		t.Fatalf("low stock default: %v", err)
	}
	if report.Threshold != 5 {
		t.Fatalf("expected configured default 5, got %d", report.Threshold)
	}

	// an explicit zero is a literal answer, not the default
	report, err = svc.LowStock(ctx, 0)
	if err != nil {
		t.Fatalf("low stock zero: %v", err)
	}
	if report.Threshold != 0 || len(report.Parts) != 0 {
		t.Fatalf("expected empty report for threshold 0: %+v", report)
	}
}

func TestConsumptionInWindow(t *testing.T) {
	t.Parallel()

	svc, _, moves := newTestService(t, config.ReportsConfig{}, time.Time{})
	ctx := context.Background()
	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	records := []models.StockMovement{
		{ID: uuid.New(), RecordedAt: base, PartCode: "A", Type: enums.MovementTypeOut, PreviousQty: 10, OutQty: 2, Balance: 8},
		{ID: uuid.New(), RecordedAt: base.Add(time.Hour), PartCode: "A", Type: enums.MovementTypeOut, PreviousQty: 8, OutQty: 3, Balance: 5},
		{ID: uuid.New(), RecordedAt: base.Add(2 * time.Hour), PartCode: "A", Type: enums.MovementTypeIn, PreviousQty: 5, InQty: 7, Balance: 12},
		// boundary: end is exclusive
		{ID: uuid.New(), RecordedAt: base.Add(24 * time.Hour), PartCode: "A", Type: enums.MovementTypeOut, PreviousQty: 12, OutQty: 6, Balance: 6},
	}
	for i := range records {
		if err := moves.Append(ctx, &records[i]); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	totals, err := svc.ConsumptionInWindow(ctx, base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("consumption: %v", err)
	}
	if totals["A"] != 5 {
		t.Fatalf("expected consumption 5 (stock-ins excluded, end exclusive), got %d", totals["A"])
	}

	if _, err := svc.ConsumptionInWindow(ctx, base, base); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty window, got %v", err)
	}
}

func TestConsumptionEmptyLedger(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t, config.ReportsConfig{}, time.Time{})
	totals, err := svc.ConsumptionInWindow(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("empty ledger must not error: %v", err)
	}
	if len(totals) != 0 {
		t.Fatalf("expected empty totals, got %v", totals)
	}
}

func TestSuggestedReorderLevel(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	cfg := config.ReportsConfig{ReorderPeriod: 7 * 24 * time.Hour, ReorderWindowPeriods: 4}
	svc, parts, moves := newTestService(t, cfg, now)
	ctx := context.Background()

	if err := parts.Create(ctx, &models.Part{PartCode: "P1", Quantity: 50}); err != nil {
		t.Fatalf("seed part: %v", err)
	}

	// 24 units consumed inside the trailing 4-week window, 9 before it
	inside := []int{10, 8, 6}
	for i, qty := range inside {
		m := models.StockMovement{
			ID:         uuid.New(),
			RecordedAt: now.Add(-time.Duration(i+1) * 7 * 24 * time.Hour / 2),
			PartCode:   "P1",
			Type:       enums.MovementTypeOut,
			OutQty:     qty,
		}
		if err := moves.Append(ctx, &m); err != nil {
			t.Fatalf("append inside %d: %v", i, err)
		}
	}
	old := models.StockMovement{
		ID:         uuid.New(),
		RecordedAt: now.Add(-5 * 7 * 24 * time.Hour),
		PartCode:   "P1",
		Type:       enums.MovementTypeOut,
		OutQty:     9,
	}
	if err := moves.Append(ctx, &old); err != nil {
		t.Fatalf("append old: %v", err)
	}

	suggestion, err := svc.SuggestedReorderLevel(ctx, "P1", 2)
	if err != nil {
		t.Fatalf("reorder level: %v", err)
	}
	if suggestion.TotalConsumption != 24 {
		t.Fatalf("expected total 24, got %d", suggestion.TotalConsumption)
	}
	// 24 / 4 periods = 6 per period, times lead time 2 = 12
	if !suggestion.AverageConsumption.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("expected average 6, got %s", suggestion.AverageConsumption)
	}
	if !suggestion.SuggestedLevel.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("expected suggested 12, got %s", suggestion.SuggestedLevel)
	}

	if _, err := svc.SuggestedReorderLevel(ctx, "missing", 2); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.SuggestedReorderLevel(ctx, "P1", 0); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSuggestedReorderLevelEmptyLedger(t *testing.T) {
	t.Parallel()

	svc, parts, _ := newTestService(t, config.ReportsConfig{}, time.Time{})
	ctx := context.Background()
	if err := parts.Create(ctx, &models.Part{PartCode: "P2", Quantity: 10}); err != nil {
		t.Fatalf("seed part: %v", err)
	}

	suggestion, err := svc.SuggestedReorderLevel(ctx, "P2", 3)
	if err != nil {
		t.Fatalf("empty ledger must not error: %v", err)
	}
	if !suggestion.SuggestedLevel.IsZero() {
		t.Fatalf("expected zero suggestion, got %s", suggestion.SuggestedLevel)
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	svc, parts, moves := newTestService(t, config.ReportsConfig{LowStockThreshold: 5}, time.Time{})
	ctx := context.Background()

	for code, qty := range map[string]int{"A": 2, "B": 20} {
		if err := parts.Create(ctx, &models.Part{PartCode: code, Quantity: qty}); err != nil {
			t.Fatalf("seed %s: %v", code, err)
		}
	}
	m := models.StockMovement{ID: uuid.New(), RecordedAt: time.Now(), PartCode: "A", Type: enums.MovementTypeIn, InQty: 2, Balance: 2}
	if err := moves.Append(ctx, &m); err != nil {
		t.Fatalf("append: %v", err)
	}

	summary, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.PartCount != 2 || summary.MovementCount != 1 || summary.LowStockCount != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
