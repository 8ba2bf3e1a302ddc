package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/bufferstock-backend/api/middleware"
	"github.com/angelmondragon/bufferstock-backend/api/responses"
	"github.com/angelmondragon/bufferstock-backend/api/validators"
	"github.com/angelmondragon/bufferstock-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/bufferstock-backend/pkg/errors"
	"github.com/angelmondragon/bufferstock-backend/pkg/logger"
)

// ListParts returns the full parts catalog with current quantities.
func ListParts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		parts, err := svc.ListParts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, parts)
	}
}

// GetPart returns a single part by code.
func GetPart(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		partCode := strings.TrimSpace(chi.URLParam(r, "partCode"))
		if partCode == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "part code is required"))
			return
		}

		part, err := svc.GetPart(r.Context(), partCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, part)
	}
}

// CreatePart registers a new part in the catalog.
func CreatePart(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body catalog.PartInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.EnteredBy = middleware.OperatorFromContext(r.Context())

		part, err := svc.CreatePart(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, part)
	}
}
