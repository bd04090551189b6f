package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tableloop/menusync-backend/api/responses"
	menu "github.com/tableloop/menusync-backend/internal/menus"
	pkgerrors "github.com/tableloop/menusync-backend/pkg/errors"
	"github.com/tableloop/menusync-backend/pkg/logger"
)

// PublicMenu serves the effective menu for one location. No auth: this is
// the endpoint consumer apps read.
func PublicMenu(svc menu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "location slug is required"))
			return
		}

		menuView, err := svc.GetPublicMenu(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, menuView)
	}
}
