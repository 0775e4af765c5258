package controllers

import (
	"net/http"

	"github.com/dmarrero/stockpilot-backend/api/responses"
	accountsvc "github.com/dmarrero/stockpilot-backend/internal/account"
	pkgerrors "github.com/dmarrero/stockpilot-backend/pkg/errors"
	"github.com/dmarrero/stockpilot-backend/pkg/logger"
)

// AccountDeleteData wipes all of the tenant's operational data. The account
// and its credentials survive.
func AccountDeleteData(svc accountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "account service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteAllData(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
