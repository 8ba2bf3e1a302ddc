package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/bufferstock-backend/internal/inventory"
	"github.com/angelmondragon/bufferstock-backend/internal/ledger"
	"github.com/angelmondragon/bufferstock-backend/pkg/config"
	"github.com/angelmondragon/bufferstock-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bufferstock-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// Summary is the dashboard rollup.
type Summary struct {
	PartCount     int64 `json:"part_count"`
	MovementCount int64 `json:"movement_count"`
	LowStockCount int   `json:"low_stock_count"`
}

// LowStockReport pairs the threshold that was applied with the parts below it.
type LowStockReport struct {
	Threshold int           `json:"threshold"`
	Parts     []models.Part `json:"parts"`
}

// ReorderSuggestion carries the computed reorder level for a part.
type ReorderSuggestion struct {
	PartCode           string          `json:"part_code"`
	WindowPeriods      int             `json:"window_periods"`
	LeadTimePeriods    int             `json:"lead_time_periods"`
	TotalConsumption   int             `json:"total_consumption"`
	AverageConsumption decimal.Decimal `json:"average_consumption"`
	SuggestedLevel     decimal.Decimal `json:"suggested_level"`
}

// Service exposes read-only derived views over the catalog and the ledger.
// Every operation tolerates an empty ledger.
type Service interface {
	LowStock(ctx context.Context, threshold int) (*LowStockReport, error)
	ConsumptionInWindow(ctx context.Context, start, end time.Time) (map[string]int, error)
	SuggestedReorderLevel(ctx context.Context, partCode string, leadTimePeriods int) (*ReorderSuggestion, error)
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	parts     inventory.Repository
	movements ledger.Repository
	cfg       config.ReportsConfig
	now       func() time.Time
}

// NewService wires the report aggregator.
func NewService(parts inventory.Repository, movements ledger.Repository, cfg config.ReportsConfig) (Service, error) {
	if parts == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if movements == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = 5
	}
	if cfg.ReorderPeriod <= 0 {
		cfg.ReorderPeriod = 7 * 24 * time.Hour
	}
	if cfg.ReorderWindowPeriods <= 0 {
		cfg.ReorderWindowPeriods = 12
	}
	return &service{parts: parts, movements: movements, cfg: cfg, now: time.Now}, nil
}

// LowStock returns parts whose quantity is strictly below threshold. A
// negative threshold falls back to the configured default; an explicit zero
// is honored and yields an empty report.
func (s *service) LowStock(ctx context.Context, threshold int) (*LowStockReport, error) {
	if threshold < 0 {
		threshold = s.cfg.LowStockThreshold
	}
	parts, err := s.parts.ListBelow(ctx, threshold)
	if err != nil {
		return nil, err
	}
	if parts == nil {
		parts = []models.Part{}
	}
	return &LowStockReport{Threshold: threshold, Parts: parts}, nil
}

// ConsumptionInWindow sums out quantities per part over [start, end).
func (s *service) ConsumptionInWindow(ctx context.Context, start, end time.Time) (map[string]int, error) {
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "window start must precede end")
	}
	return s.movements.SumOutByPart(ctx, start, end)
}

// SuggestedReorderLevel derives a reorder hint from trailing consumption:
// average periodic consumption times the supplied lead time.
func (s *service) SuggestedReorderLevel(ctx context.Context, partCode string, leadTimePeriods int) (*ReorderSuggestion, error) {
	if partCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part code is required")
	}
	if leadTimePeriods <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lead time periods must be positive")
	}
	if _, err := s.parts.GetByCode(ctx, partCode); err != nil {
		return nil, err
	}

	end := s.now().UTC()
	start := end.Add(-time.Duration(s.cfg.ReorderWindowPeriods) * s.cfg.ReorderPeriod)

	totals, err := s.movements.SumOutByPart(ctx, start, end)
	if err != nil {
		return nil, err
	}
	total := totals[partCode]

	average := decimal.NewFromInt(int64(total)).
		Div(decimal.NewFromInt(int64(s.cfg.ReorderWindowPeriods)))
	suggested := average.Mul(decimal.NewFromInt(int64(leadTimePeriods)))

	return &ReorderSuggestion{
		PartCode:           partCode,
		WindowPeriods:      s.cfg.ReorderWindowPeriods,
		LeadTimePeriods:    leadTimePeriods,
		TotalConsumption:   total,
		AverageConsumption: average.Round(2),
		SuggestedLevel:     suggested.Round(2),
	}, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	partCount, err := s.parts.Count(ctx)
	if err != nil {
		return nil, err
	}
	movementCount, err := s.movements.Count(ctx)
	if err != nil {
		return nil, err
	}
	low, err := s.parts.ListBelow(ctx, s.cfg.LowStockThreshold)
	if err != nil {
		return nil, err
	}
	return &Summary{
		PartCount:     partCount,
		MovementCount: movementCount,
		LowStockCount: len(low),
	}, nil
}
