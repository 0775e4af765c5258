package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dmarrero/stockpilot-backend/api/responses"
	auditpkg "github.com/dmarrero/stockpilot-backend/internal/audit"
	orderspkg "github.com/dmarrero/stockpilot-backend/internal/orders"
	transferspkg "github.com/dmarrero/stockpilot-backend/internal/transfers"
	"github.com/dmarrero/stockpilot-backend/pkg/enums"
	pkgerrors "github.com/dmarrero/stockpilot-backend/pkg/errors"
	"github.com/dmarrero/stockpilot-backend/pkg/logger"
)

// OrderList returns the tenant's orders, newest first.
func OrderList(repo *orderspkg.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order repository unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := repo.ListByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders"))
			return
		}

		views := make([]orderspkg.View, 0, len(rows))
		for i := range rows {
			views = append(views, orderspkg.FromModel(&rows[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

// TransferList returns the tenant's transfers, newest first.
func TransferList(repo *transferspkg.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer repository unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := repo.ListByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list transfers"))
			return
		}

		views := make([]transferspkg.View, 0, len(rows))
		for i := range rows {
			views = append(views, transferspkg.FromModel(&rows[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

// AuditList returns the tenant's audit trail, filterable by action, product,
// and time window.
func AuditList(repo *auditpkg.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit repository unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := auditFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := repo.ListByUser(r.Context(), userID, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list audit entries"))
			return
		}

		views := make([]auditpkg.View, 0, len(rows))
		for i := range rows {
			views = append(views, auditpkg.FromModel(&rows[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

func auditFilterFromQuery(r *http.Request) (auditpkg.ListFilter, error) {
	var filter auditpkg.ListFilter

	if raw := r.URL.Query().Get("action"); raw != "" {
		action, err := enums.ParseAuditAction(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action")
		}
		filter.Action = action
	}
	if raw := r.URL.Query().Get("productId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		filter.ProductID = id
	}
	if raw := r.URL.Query().Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "since must be RFC3339")
		}
		filter.Since = since
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}
