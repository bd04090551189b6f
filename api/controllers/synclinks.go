package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tableloop/menusync-backend/api/middleware"
	"github.com/tableloop/menusync-backend/api/responses"
	"github.com/tableloop/menusync-backend/api/validators"
	synclink "github.com/tableloop/menusync-backend/internal/synclinks"
	"github.com/tableloop/menusync-backend/pkg/enums"
	pkgerrors "github.com/tableloop/menusync-backend/pkg/errors"
	"github.com/tableloop/menusync-backend/pkg/logger"
)

type linkInitializeRequest struct {
	MenuName string `json:"menu_name" validate:"required,min=1,max=120"`
	SyncMode string `json:"sync_mode,omitempty" validate:"omitempty,oneof=auto manual disabled"`
}

// LinkInitialize connects the location in the path to the catalog in the
// path. The link starts at version zero; the first sync fills the menu.
func LinkInitialize(svc synclink.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sync link service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		uid, err := uuid.Parse(userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		locationID, err := validators.URLParamUUID(r, "locationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		catalogID, err := validators.URLParamUUID(r, "catalogId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload linkInitializeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mode := enums.SyncModeManual
		if payload.SyncMode != "" {
			parsed, err := enums.ParseSyncMode(payload.SyncMode)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sync mode"))
				return
			}
			mode = parsed
		}

		link, err := svc.Initialize(r.Context(), uid, synclink.InitializeInput{
			LocationID: locationID,
			CatalogID:  catalogID,
			MenuName:   strings.TrimSpace(payload.MenuName),
			SyncMode:   mode,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, link)
	}
}

// LinkStatus reports the branch cursor against the catalog head.
func LinkStatus(svc synclink.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sync link service unavailable"))
			return
		}

		link, err := resolveRouteLink(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.Status(r.Context(), link.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, status)
	}
}

// LinkPreview shows what the next sync would change without applying it.
func LinkPreview(svc synclink.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sync link service unavailable"))
			return
		}

		link, err := resolveRouteLink(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		preview, err := svc.PendingPreview(r.Context(), link.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, preview)
	}
}

type linkModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=auto manual disabled"`
}

// LinkSetMode switches the link between auto, manual, and disabled.
func LinkSetMode(svc synclink.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sync link service unavailable"))
			return
		}

		link, err := resolveRouteLink(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload linkModeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mode, err := enums.ParseSyncMode(payload.Mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sync mode"))
			return
		}

		updated, err := svc.SetMode(r.Context(), link.ID, mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// resolveRouteLink maps the location/catalog pair in the route to its link.
func resolveRouteLink(r *http.Request, svc synclink.Service) (*synclink.LinkDTO, error) {
	locationID, err := validators.URLParamUUID(r, "locationId")
	if err != nil {
		return nil, err
	}
	catalogID, err := validators.URLParamUUID(r, "catalogId")
	if err != nil {
		return nil, err
	}
	return svc.ResolveLink(r.Context(), locationID, catalogID)
}
