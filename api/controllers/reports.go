package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/bufferstock-backend/api/responses"
	"github.com/angelmondragon/bufferstock-backend/api/validators"
	"github.com/angelmondragon/bufferstock-backend/internal/reports"
	pkgerrors "github.com/angelmondragon/bufferstock-backend/pkg/errors"
	"github.com/angelmondragon/bufferstock-backend/pkg/logger"
)

const maxThreshold = 1_000_000

// ReportLowStock lists parts strictly below the low-stock threshold. The
// configured default applies only when the query omits the threshold, so an
// explicit threshold of zero returns an empty report.
func ReportLowStock(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		threshold, err := validators.ParseQueryInt(r, "threshold", -1, 0, maxThreshold)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.LowStock(r.Context(), threshold)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ReportConsumption sums stock-out quantities per part over a time window.
func ReportConsumption(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		start, err := validators.ParseQueryTime(r, "start")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryTime(r, "end")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if start.IsZero() || end.IsZero() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "start and end are required"))
			return
		}

		consumption, err := svc.ConsumptionInWindow(r.Context(), start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"start": start, "end": end, "consumption": consumption})
	}
}

// ReportReorderLevel computes the suggested reorder level for one part from
// its recent consumption history.
func ReportReorderLevel(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		partCode := strings.TrimSpace(chi.URLParam(r, "partCode"))
		if partCode == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "part code is required"))
			return
		}

		leadTime, err := validators.ParseQueryInt(r, "lead_time_periods", 1, 1, 52)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		suggestion, err := svc.SuggestedReorderLevel(r.Context(), partCode, leadTime)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, suggestion)
	}
}

// ReportSummary returns headline counts for dashboards.
func ReportSummary(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
