package override

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tableloop/menusync-backend/pkg/db"
	"github.com/tableloop/menusync-backend/pkg/db/models"
	pkgerrors "github.com/tableloop/menusync-backend/pkg/errors"
)

// Service exposes branch override management. Overrides belong to the
// branch manager; sync runs read them but never write them, and setting an
// override never requires the sync lock.
type Service interface {
	Set(ctx context.Context, linkID, masterItemID uuid.UUID, input SetInput) (*OverrideDTO, error)
	Remove(ctx context.Context, linkID, masterItemID uuid.UUID) error
	List(ctx context.Context, linkID uuid.UUID) ([]OverrideDTO, error)
}

// SetInput carries the partial override payload. Nil fields keep their
// stored value, so callers can flip a single lock without resending the
// whole override.
type SetInput struct {
	PriceOverride        *decimal.Decimal
	AvailabilityOverride *bool
	PriceLocked          *bool
	AvailabilityLocked   *bool
	FullyLocked          *bool
	Notes                *string
}

// OverrideDTO is the read model for one override row.
type OverrideDTO struct {
	ID                   uuid.UUID        `json:"id"`
	BranchSyncLinkID     uuid.UUID        `json:"branch_sync_link_id"`
	MasterItemID         uuid.UUID        `json:"master_item_id"`
	PriceOverride        *decimal.Decimal `json:"price_override,omitempty"`
	AvailabilityOverride *bool            `json:"availability_override,omitempty"`
	PriceLocked          bool             `json:"price_locked"`
	AvailabilityLocked   bool             `json:"availability_locked"`
	FullyLocked          bool             `json:"fully_locked"`
	Notes                *string          `json:"notes,omitempty"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

type linkLoader interface {
	FindLink(ctx context.Context, id uuid.UUID) (*models.BranchSyncLink, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	links    linkLoader
}

// NewService constructs an override service instance.
func NewService(repo *Repository, dbClient *db.Client, links linkLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("override repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if links == nil {
		return nil, fmt.Errorf("link loader required")
	}
	return &service{repo: repo, dbClient: dbClient, links: links}, nil
}

// Set merges the input into the item's override, creating the row when
// none exists. Fields left nil keep their stored value.
func (s *service) Set(ctx context.Context, linkID, masterItemID uuid.UUID, input SetInput) (*OverrideDTO, error) {
	if input.PriceOverride != nil && input.PriceOverride.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price override cannot be negative")
	}

	if _, err := s.links.FindLink(ctx, linkID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sync link not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sync link")
	}

	var out *models.BranchOverride
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		row, err := txRepo.Find(ctx, linkID, masterItemID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load override")
			}
			row = &models.BranchOverride{
				ID:               uuid.New(),
				BranchSyncLinkID: linkID,
				MasterItemID:     masterItemID,
			}
		}

		if input.PriceOverride != nil {
			row.PriceOverride = input.PriceOverride
		}
		if input.AvailabilityOverride != nil {
			row.AvailabilityOverride = input.AvailabilityOverride
		}
		if input.PriceLocked != nil {
			row.PriceLocked = *input.PriceLocked
		}
		if input.AvailabilityLocked != nil {
			row.AvailabilityLocked = *input.AvailabilityLocked
		}
		if input.FullyLocked != nil {
			row.FullyLocked = *input.FullyLocked
		}
		if input.Notes != nil {
			row.Notes = input.Notes
		}

		saved, err := txRepo.Upsert(ctx, row)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: upsert override")
		}
		out = saved
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set override")
	}

	dto := newOverrideDTO(out)
	return &dto, nil
}

// Remove drops the override; the item reverts to master values on the next
// sync. Removing a missing override succeeds.
func (s *service) Remove(ctx context.Context, linkID, masterItemID uuid.UUID) error {
	if _, err := s.links.FindLink(ctx, linkID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "sync link not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sync link")
	}
	if err := s.repo.Delete(ctx, linkID, masterItemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete override")
	}
	return nil
}

// List returns all overrides on the link, oldest first.
func (s *service) List(ctx context.Context, linkID uuid.UUID) ([]OverrideDTO, error) {
	if _, err := s.links.FindLink(ctx, linkID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sync link not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sync link")
	}

	rows, err := s.repo.ListByLink(ctx, linkID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list overrides")
	}
	out := make([]OverrideDTO, 0, len(rows))
	for i := range rows {
		out = append(out, newOverrideDTO(&rows[i]))
	}
	return out, nil
}

func newOverrideDTO(m *models.BranchOverride) OverrideDTO {
	return OverrideDTO{
		ID:                   m.ID,
		BranchSyncLinkID:     m.BranchSyncLinkID,
		MasterItemID:         m.MasterItemID,
		PriceOverride:        m.PriceOverride,
		AvailabilityOverride: m.AvailabilityOverride,
		PriceLocked:          m.PriceLocked,
		AvailabilityLocked:   m.AvailabilityLocked,
		FullyLocked:          m.FullyLocked,
		Notes:                m.Notes,
		UpdatedAt:            m.UpdatedAt,
	}
}
