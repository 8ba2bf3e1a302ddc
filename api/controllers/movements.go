package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/bufferstock-backend/api/responses"
	"github.com/angelmondragon/bufferstock-backend/api/validators"
	"github.com/angelmondragon/bufferstock-backend/internal/ledger"
	"github.com/angelmondragon/bufferstock-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bufferstock-backend/pkg/errors"
	"github.com/angelmondragon/bufferstock-backend/pkg/logger"
	"github.com/angelmondragon/bufferstock-backend/pkg/pagination"
)

type movementPage struct {
	Movements  []models.StockMovement `json:"movements"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

// ListMovements returns the movement ledger in chronological order, filtered
// by part and time window, one cursor page at a time.
func ListMovements(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
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
		if !start.IsZero() && !end.IsZero() && !start.Before(end) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "start must precede end"))
			return
		}

		cursor, err := pagination.ParseCursor(r.URL.Query().Get("cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}

		filter := ledger.Filter{
			PartCode: strings.TrimSpace(r.URL.Query().Get("part_code")),
			Start:    start,
			End:      end,
			Limit:    pagination.LimitWithBuffer(limit),
			Cursor:   cursor,
		}

		movements, err := svc.Query(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page := movementPage{Movements: movements}
		if len(movements) > limit {
			page.Movements = movements[:limit]
			last := page.Movements[limit-1]
			page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
				RecordedAt: last.RecordedAt,
				ID:         last.ID,
			})
		}
		responses.WriteSuccess(w, page)
	}
}
