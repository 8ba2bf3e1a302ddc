package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/bufferstock-backend/api/middleware"
	"github.com/angelmondragon/bufferstock-backend/api/responses"
	"github.com/angelmondragon/bufferstock-backend/api/validators"
	"github.com/angelmondragon/bufferstock-backend/internal/stock"
	"github.com/angelmondragon/bufferstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bufferstock-backend/pkg/errors"
	"github.com/angelmondragon/bufferstock-backend/pkg/logger"
)

type movementRequest struct {
	PartCode       string `json:"part_code" validate:"required"`
	Quantity       int    `json:"quantity" validate:"required,min=1"`
	Applicant      string `json:"applicant"`
	HandoverPerson string `json:"handover_person"`
	Operator       string `json:"operator"`
	Floor          string `json:"floor"`
	DeliveryTAT    string `json:"delivery_tat"`
	Remark         string `json:"remark"`
}

// maxFreeTextLen caps the free-text columns carried on each movement row.
const maxFreeTextLen = 255

func (r movementRequest) toInput() stock.MovementInput {
	return stock.MovementInput{
		PartCode:       strings.TrimSpace(r.PartCode),
		Qty:            r.Quantity,
		Applicant:      validators.SanitizeString(r.Applicant, maxFreeTextLen),
		HandoverPerson: validators.SanitizeString(r.HandoverPerson, maxFreeTextLen),
		Operator:       validators.SanitizeString(r.Operator, maxFreeTextLen),
		Floor:          validators.SanitizeString(r.Floor, maxFreeTextLen),
		DeliveryTAT:    validators.SanitizeString(r.DeliveryTAT, maxFreeTextLen),
		Remark:         validators.SanitizeString(r.Remark, maxFreeTextLen),
	}
}

func actorFromContext(ctx context.Context) (stock.Actor, error) {
	operator := middleware.OperatorFromContext(ctx)
	if operator == "" {
		return stock.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "operator context missing")
	}
	role, err := enums.ParseOperatorRole(middleware.RoleFromContext(ctx))
	if err != nil {
		return stock.Actor{}, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "operator role missing")
	}
	return stock.Actor{Name: operator, CanWrite: role.CanWrite()}, nil
}

// StockIn records an inbound stock movement for a part.
func StockIn(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return movementHandler(svc, logg, func(ctx context.Context, svc stock.Service, actor stock.Actor, input stock.MovementInput) (any, error) {
		return svc.StockIn(ctx, actor, input)
	})
}

// StockOut records an outbound stock movement for a part. The service rejects
// requests that would take the quantity below zero.
func StockOut(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return movementHandler(svc, logg, func(ctx context.Context, svc stock.Service, actor stock.Actor, input stock.MovementInput) (any, error) {
		return svc.StockOut(ctx, actor, input)
	})
}

func movementHandler(
	svc stock.Service,
	logg *logger.Logger,
	apply func(ctx context.Context, svc stock.Service, actor stock.Actor, input stock.MovementInput) (any, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}

		actor, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body movementRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movement, err := apply(r.Context(), svc, actor, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, movement)
	}
}

// ReconcilePart replays the ledger for one part and repairs stored drift.
func ReconcilePart(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}

		partCode := strings.TrimSpace(chi.URLParam(r, "partCode"))
		if partCode == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "part code is required"))
			return
		}

		result, err := svc.Reconcile(r.Context(), partCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
