package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tableloop/menusync-backend/api/responses"
	"github.com/tableloop/menusync-backend/api/validators"
	override "github.com/tableloop/menusync-backend/internal/overrides"
	synclink "github.com/tableloop/menusync-backend/internal/synclinks"
	pkgerrors "github.com/tableloop/menusync-backend/pkg/errors"
	"github.com/tableloop/menusync-backend/pkg/logger"
)

type overrideSetRequest struct {
	PriceOverride        *decimal.Decimal `json:"price_override,omitempty"`
	AvailabilityOverride *bool            `json:"availability_override,omitempty"`
	PriceLocked          *bool            `json:"price_locked,omitempty"`
	AvailabilityLocked   *bool            `json:"availability_locked,omitempty"`
	FullyLocked          *bool            `json:"fully_locked,omitempty"`
	Notes                *string          `json:"notes,omitempty" validate:"omitempty,max=500"`
}

func (r overrideSetRequest) toInput() override.SetInput {
	return override.SetInput{
		PriceOverride:        r.PriceOverride,
		AvailabilityOverride: r.AvailabilityOverride,
		PriceLocked:          r.PriceLocked,
		AvailabilityLocked:   r.AvailabilityLocked,
		FullyLocked:          r.FullyLocked,
		Notes:                r.Notes,
	}
}

// OverrideSet upserts the override for one master item on the branch link.
func OverrideSet(links synclink.Service, svc override.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if links == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "override service unavailable"))
			return
		}

		link, err := resolveRouteLink(r, links)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := validators.URLParamUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload overrideSetRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saved, err := svc.Set(r.Context(), link.ID, itemID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, saved)
	}
}

// OverrideRemove deletes the override, letting the next sync restore the
// master values.
func OverrideRemove(links synclink.Service, svc override.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if links == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "override service unavailable"))
			return
		}

		link, err := resolveRouteLink(r, links)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := validators.URLParamUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), link.ID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

// OverrideList returns every override on the branch link.
func OverrideList(links synclink.Service, svc override.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if links == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "override service unavailable"))
			return
		}

		link, err := resolveRouteLink(r, links)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), link.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}
