package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/bufferstock-backend/internal/reports"
	"github.com/angelmondragon/bufferstock-backend/pkg/db/models"
)

type stubReportsService struct {
	lastThreshold int
}

func (s *stubReportsService) LowStock(ctx context.Context, threshold int) (*reports.LowStockReport, error) {
	s.lastThreshold = threshold
	applied := threshold
	if applied < 0 {
		applied = 5
	}
	return &reports.LowStockReport{Threshold: applied, Parts: []models.Part{}}, nil
}

func (s *stubReportsService) ConsumptionInWindow(ctx context.Context, start, end time.Time) (map[string]int, error) {
	return map[string]int{}, nil
}

func (s *stubReportsService) SuggestedReorderLevel(ctx context.Context, partCode string, leadTimePeriods int) (*reports.ReorderSuggestion, error) {
	return &reports.ReorderSuggestion{PartCode: partCode}, nil
}

func (s *stubReportsService) Summary(ctx context.Context) (*reports.Summary, error) {
	return &reports.Summary{}, nil
}

func TestReportLowStockOmittedThresholdUsesDefault(t *testing.T) {
	svc := &stubReportsService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/low-stock", nil)
	resp := httptest.NewRecorder()
	ReportLowStock(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastThreshold != -1 {
		t.Fatalf("omitted threshold must defer to the service default, got %d", svc.lastThreshold)
	}
}

func TestReportLowStockExplicitZeroIsLiteral(t *testing.T) {
	svc := &stubReportsService{lastThreshold: -99}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/low-stock?threshold=0", nil)
	resp := httptest.NewRecorder()
	ReportLowStock(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastThreshold != 0 {
		t.Fatalf("explicit zero must pass through unchanged, got %d", svc.lastThreshold)
	}
	var envelope struct {
		Data reports.LowStockReport `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Threshold != 0 || len(envelope.Data.Parts) != 0 {
		t.Fatalf("unexpected report %+v", envelope.Data)
	}
}

func TestReportLowStockRejectsNegativeThreshold(t *testing.T) {
	svc := &stubReportsService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/low-stock?threshold=-3", nil)
	resp := httptest.NewRecorder()
	ReportLowStock(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
