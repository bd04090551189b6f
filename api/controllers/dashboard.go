package controllers

import (
	"net/http"

	"github.com/tableloop/menusync-backend/api/responses"
	"github.com/tableloop/menusync-backend/api/validators"
	"github.com/tableloop/menusync-backend/internal/dashboard"
	pkgerrors "github.com/tableloop/menusync-backend/pkg/errors"
	"github.com/tableloop/menusync-backend/pkg/logger"
)

// FranchiseDashboard aggregates sync posture across a franchise.
func FranchiseDashboard(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		franchiseID, err := validators.URLParamUUID(r, "franchiseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetFranchiseDashboard(r.Context(), franchiseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}
