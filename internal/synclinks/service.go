package synclink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	version "github.com/tableloop/menusync-backend/internal/versions"
	"github.com/tableloop/menusync-backend/pkg/db"
	"github.com/tableloop/menusync-backend/pkg/db/models"
	"github.com/tableloop/menusync-backend/pkg/enums"
	pkgerrors "github.com/tableloop/menusync-backend/pkg/errors"
)

// Service manages the link between a branch location and a master catalog.
type Service interface {
	Initialize(ctx context.Context, userID uuid.UUID, input InitializeInput) (*LinkDTO, error)
	ResolveLink(ctx context.Context, locationID, catalogID uuid.UUID) (*LinkDTO, error)
	Status(ctx context.Context, linkID uuid.UUID) (*StatusDTO, error)
	SetMode(ctx context.Context, linkID uuid.UUID, mode enums.SyncMode) (*LinkDTO, error)
	PendingPreview(ctx context.Context, linkID uuid.UUID) (*PendingPreviewDTO, error)
}

// InitializeInput holds the payload to connect a location to a catalog.
type InitializeInput struct {
	LocationID uuid.UUID
	CatalogID  uuid.UUID
	MenuName   string
	SyncMode   enums.SyncMode
}

// LinkDTO is the read model for a branch sync link.
type LinkDTO struct {
	ID              uuid.UUID      `json:"id"`
	LocationID      uuid.UUID      `json:"location_id"`
	MasterCatalogID uuid.UUID      `json:"master_catalog_id"`
	MenuID          uuid.UUID      `json:"menu_id"`
	SyncedVersion   int64          `json:"synced_version"`
	SyncMode        enums.SyncMode `json:"sync_mode"`
	LastSyncedAt    *time.Time     `json:"last_synced_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// StatusDTO is the per-branch sync dashboard row. Pending state is always
// computed from the catalog counter, never stored.
type StatusDTO struct {
	Link              LinkDTO `json:"link"`
	CurrentVersion    int64   `json:"current_version"`
	VersionsBehind    int64   `json:"versions_behind"`
	HasPendingUpdates bool    `json:"has_pending_updates"`
	OverridesCount    int     `json:"overrides_count"`
}

// LockSkip explains why one pending change will not be applied.
type LockSkip struct {
	ItemID        uuid.UUID `json:"item_id"`
	Slug          string    `json:"slug"`
	Reason        string    `json:"reason"`
	SkippedFields []string  `json:"skipped_fields,omitempty"`
}

// PendingPreviewDTO shows what the next sync would change, annotated with
// the overrides that will hold parts of it back.
type PendingPreviewDTO struct {
	Link          LinkDTO               `json:"link"`
	FromVersion   int64                 `json:"from_version"`
	ToVersion     int64                 `json:"to_version"`
	Diff          *version.SnapshotDiff `json:"diff"`
	LockedChanges []LockSkip            `json:"locked_changes,omitempty"`
	UpToDate      bool                  `json:"up_to_date"`
}

type overrideReader interface {
	MapByItem(ctx context.Context, linkID uuid.UUID) (map[uuid.UUID]models.BranchOverride, error)
}

type catalogReader interface {
	FindCatalog(ctx context.Context, id uuid.UUID) (*models.MasterCatalog, error)
	FindVersion(ctx context.Context, catalogID uuid.UUID, number int64) (*models.CatalogVersion, error)
}

type service struct {
	repo      *Repository
	dbClient  *db.Client
	catalogs  catalogReader
	overrides overrideReader
}

// NewService constructs a sync link service instance.
func NewService(repo *Repository, dbClient *db.Client, catalogs catalogReader, overrides overrideReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sync link repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if catalogs == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	if overrides == nil {
		return nil, fmt.Errorf("override reader required")
	}
	return &service{repo: repo, dbClient: dbClient, catalogs: catalogs, overrides: overrides}, nil
}

// Initialize connects a location to a catalog: one branch menu plus one
// link with the cursor at zero. The first sync populates the menu.
func (s *service) Initialize(ctx context.Context, userID uuid.UUID, input InitializeInput) (*LinkDTO, error) {
	mode := input.SyncMode
	if mode == "" {
		mode = enums.SyncModeManual
	}
	if !mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid sync mode")
	}

	catalog, err := s.catalogs.FindCatalog(ctx, input.CatalogID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load catalog")
	}

	if _, err := s.repo.FindLinkByLocationCatalog(ctx, input.LocationID, input.CatalogID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "location is already linked to this catalog")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check existing link")
	}

	menuName := input.MenuName
	if menuName == "" {
		menuName = catalog.Name
	}

	var created *models.BranchSyncLink
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		menu, err := txRepo.CreateMenu(ctx, &models.BranchMenu{
			ID:         uuid.New(),
			LocationID: input.LocationID,
			Name:       menuName,
			IsActive:   true,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert branch menu")
		}

		created, err = txRepo.CreateLink(ctx, &models.BranchSyncLink{
			ID:              uuid.New(),
			LocationID:      input.LocationID,
			MasterCatalogID: input.CatalogID,
			MenuID:          menu.ID,
			SyncedVersion:   0,
			SyncMode:        mode,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "ux_branch_sync_links_location_catalog") {
				return pkgerrors.New(pkgerrors.CodeConflict, "location is already linked to this catalog")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert sync link")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "initialize sync link")
	}

	dto := newLinkDTO(created)
	return &dto, nil
}

// ResolveLink finds the link for a location and catalog pair. Routes are
// addressed by location and catalog, so handlers resolve the link first.
func (s *service) ResolveLink(ctx context.Context, locationID, catalogID uuid.UUID) (*LinkDTO, error) {
	row, err := s.repo.FindLinkByLocationCatalog(ctx, locationID, catalogID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sync link not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sync link")
	}
	dto := newLinkDTO(row)
	return &dto, nil
}

// Status reports how far the branch lags its catalog.
func (s *service) Status(ctx context.Context, linkID uuid.UUID) (*StatusDTO, error) {
	row, err := s.loadLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalogs.FindCatalog(ctx, row.MasterCatalogID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load catalog")
	}
	overrides, err := s.overrides.MapByItem(ctx, row.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load overrides")
	}

	behind := catalog.CurrentVersion - row.SyncedVersion
	if behind < 0 {
		behind = 0
	}
	return &StatusDTO{
		Link:              newLinkDTO(row),
		CurrentVersion:    catalog.CurrentVersion,
		VersionsBehind:    behind,
		HasPendingUpdates: row.SyncedVersion < catalog.CurrentVersion,
		OverridesCount:    len(overrides),
	}, nil
}

// SetMode switches the link between auto, manual, and disabled.
func (s *service) SetMode(ctx context.Context, linkID uuid.UUID, mode enums.SyncMode) (*LinkDTO, error) {
	if !mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid sync mode")
	}
	row, err := s.loadLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateMode(ctx, row.ID, mode); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update sync mode")
	}
	row.SyncMode = mode
	dto := newLinkDTO(row)
	return &dto, nil
}

// PendingPreview diffs the branch's consumed snapshot against the catalog
// head and annotates changes the branch's locks will hold back.
func (s *service) PendingPreview(ctx context.Context, linkID uuid.UUID) (*PendingPreviewDTO, error) {
	row, err := s.loadLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalogs.FindCatalog(ctx, row.MasterCatalogID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load catalog")
	}

	out := &PendingPreviewDTO{
		Link:        newLinkDTO(row),
		FromVersion: row.SyncedVersion,
		ToVersion:   catalog.CurrentVersion,
	}
	if row.SyncedVersion >= catalog.CurrentVersion {
		out.UpToDate = true
		out.Diff = &version.SnapshotDiff{}
		return out, nil
	}

	var fromSnap *version.CatalogSnapshot
	if row.SyncedVersion > 0 {
		fromRow, err := s.catalogs.FindVersion(ctx, row.MasterCatalogID, row.SyncedVersion)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load synced version")
		}
		fromSnap, err = version.DecodeSnapshot(fromRow.Snapshot)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode synced snapshot")
		}
	}
	toRow, err := s.catalogs.FindVersion(ctx, row.MasterCatalogID, catalog.CurrentVersion)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load head version")
	}
	toSnap, err := version.DecodeSnapshot(toRow.Snapshot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode head snapshot")
	}

	out.Diff = version.DiffSnapshots(fromSnap, toSnap)

	locks, err := s.overrides.MapByItem(ctx, row.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load overrides")
	}
	out.LockedChanges = annotateLocks(out.Diff, locks)
	return out, nil
}

func (s *service) loadLink(ctx context.Context, linkID uuid.UUID) (*models.BranchSyncLink, error) {
	row, err := s.repo.FindLink(ctx, linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sync link not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sync link")
	}
	return row, nil
}

// annotateLocks walks the diff and records which pending changes the
// branch's locks will suppress during the next sync.
func annotateLocks(diff *version.SnapshotDiff, locks map[uuid.UUID]models.BranchOverride) []LockSkip {
	if len(locks) == 0 {
		return nil
	}
	skips := []LockSkip{}

	for _, mod := range diff.ModifiedItems {
		ov, ok := locks[mod.ItemID]
		if !ok {
			continue
		}
		if ov.FullyLocked {
			skips = append(skips, LockSkip{ItemID: mod.ItemID, Slug: mod.Slug, Reason: "fully_locked"})
			continue
		}
		var fields []string
		for _, change := range mod.Changes {
			if change.Field == "price" && ov.PriceLocked {
				fields = append(fields, "price")
			}
			if change.Field == "is_available" && ov.AvailabilityLocked {
				fields = append(fields, "is_available")
			}
		}
		if len(fields) > 0 {
			skips = append(skips, LockSkip{ItemID: mod.ItemID, Slug: mod.Slug, Reason: "field_locked", SkippedFields: fields})
		}
	}

	for _, rem := range diff.RemovedItems {
		if ov, ok := locks[rem.ItemID]; ok && ov.FullyLocked {
			skips = append(skips, LockSkip{ItemID: rem.ItemID, Slug: rem.Slug, Reason: "fully_locked"})
		}
	}
	return skips
}

func newLinkDTO(m *models.BranchSyncLink) LinkDTO {
	return LinkDTO{
		ID:              m.ID,
		LocationID:      m.LocationID,
		MasterCatalogID: m.MasterCatalogID,
		MenuID:          m.MenuID,
		SyncedVersion:   m.SyncedVersion,
		SyncMode:        m.SyncMode,
		LastSyncedAt:    m.LastSyncedAt,
		CreatedAt:       m.CreatedAt,
	}
}
