package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tableloop/menusync-backend/pkg/db"
	"github.com/tableloop/menusync-backend/pkg/db/models"
	"github.com/tableloop/menusync-backend/pkg/enums"
	pkgerrors "github.com/tableloop/menusync-backend/pkg/errors"
	"github.com/tableloop/menusync-backend/pkg/outbox"
	"github.com/tableloop/menusync-backend/pkg/outbox/payloads"
	"github.com/tableloop/menusync-backend/pkg/pagination"
)

// Service exposes catalog version history operations.
type Service interface {
	CreateVersion(ctx context.Context, tx *gorm.DB, input CreateVersionInput) (*models.CatalogVersion, error)
	GetVersion(ctx context.Context, catalogID uuid.UUID, number int64) (*VersionDTO, error)
	ListVersions(ctx context.Context, catalogID uuid.UUID, params pagination.Params) (*VersionListResult, error)
	CompareVersions(ctx context.Context, catalogID uuid.UUID, fromNumber, toNumber int64) (*CompareResult, error)
}

// CreateVersionInput carries the metadata for one catalog version bump. The
// snapshot itself is always rebuilt from the live master rows inside the
// caller's transaction.
type CreateVersionInput struct {
	CatalogID     uuid.UUID
	ChangeType    enums.ChangeType
	ChangeSummary string
	CreatedBy     uuid.UUID
}

// VersionDTO is the read model for one version row. Snapshot is only
// populated on the detail path; list projections leave it empty.
type VersionDTO struct {
	ID            uuid.UUID        `json:"id"`
	CatalogID     uuid.UUID        `json:"catalog_id"`
	VersionNumber int64            `json:"version_number"`
	ChangeType    enums.ChangeType `json:"change_type"`
	ChangeSummary string           `json:"change_summary,omitempty"`
	ChangeData    json.RawMessage  `json:"change_data,omitempty"`
	Snapshot      json.RawMessage  `json:"snapshot,omitempty"`
	CreatedBy     uuid.UUID        `json:"created_by"`
	CreatedAt     string           `json:"created_at"`
}

// VersionListResult is one page of version history, newest first.
type VersionListResult struct {
	Versions   []VersionDTO `json:"versions"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// CompareResult pairs the two compared version numbers with their diff.
type CompareResult struct {
	CatalogID   uuid.UUID     `json:"catalog_id"`
	FromVersion int64         `json:"from_version"`
	ToVersion   int64         `json:"to_version"`
	Diff        *SnapshotDiff `json:"diff"`
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	outbox   *outbox.Service
}

// NewService constructs a version service instance.
func NewService(repo *Repository, dbClient *db.Client, outboxSvc *outbox.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("version repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{repo: repo, dbClient: dbClient, outbox: outboxSvc}, nil
}

// CreateVersion appends the next version for the catalog inside the given
// transaction. The catalog row is locked first so concurrent edits cannot
// race the counter; version numbers are strictly sequential.
func (s *service) CreateVersion(ctx context.Context, tx *gorm.DB, input CreateVersionInput) (*models.CatalogVersion, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if !input.ChangeType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid change type")
	}

	txRepo := s.repo.WithTx(tx)

	catalog, err := txRepo.LockCatalog(ctx, input.CatalogID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock catalog")
	}

	categories, items, offers, err := txRepo.ListMasterRows(ctx, input.CatalogID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load master rows")
	}
	snap := BuildSnapshot(catalog, categories, items, offers)
	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal snapshot")
	}

	var changeData json.RawMessage
	if catalog.CurrentVersion > 0 {
		prev, err := txRepo.FindVersion(ctx, input.CatalogID, catalog.CurrentVersion)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load previous version")
		}
		prevSnap, err := DecodeSnapshot(prev.Snapshot)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode previous snapshot")
		}
		diff := DiffSnapshots(prevSnap, &snap)
		changeData, err = json.Marshal(diff)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal diff")
		}
	}

	next := catalog.CurrentVersion + 1
	row := &models.CatalogVersion{
		ID:            uuid.New(),
		CatalogID:     input.CatalogID,
		VersionNumber: next,
		ChangeType:    input.ChangeType,
		ChangeSummary: input.ChangeSummary,
		ChangeData:    changeData,
		Snapshot:      snapJSON,
		CreatedBy:     input.CreatedBy,
	}
	created, err := txRepo.InsertVersion(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert version")
	}
	if err := txRepo.AdvanceCurrentVersion(ctx, input.CatalogID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: advance version counter")
	}

	event := outbox.DomainEvent{
		EventType:     enums.OutboxEventVersionCreated,
		AggregateType: enums.OutboxAggregateCatalog,
		AggregateID:   input.CatalogID,
		Actor:         &outbox.ActorRef{UserID: input.CreatedBy},
		Version:       1,
		Data: payloads.CatalogVersionCreatedEvent{
			CatalogID:     input.CatalogID,
			FranchiseID:   catalog.FranchiseID,
			VersionNumber: next,
			ChangeType:    input.ChangeType,
			ChangeSummary: input.ChangeSummary,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "outbox: emit version created")
	}

	return created, nil
}

// GetVersion loads one version by number.
func (s *service) GetVersion(ctx context.Context, catalogID uuid.UUID, number int64) (*VersionDTO, error) {
	if number < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "version does not exist")
	}
	row, err := s.repo.FindVersion(ctx, catalogID, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "version does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load version")
	}
	dto := newVersionDTO(row)
	dto.Snapshot = row.Snapshot
	return &dto, nil
}

// ListVersions pages through version history newest-first.
func (s *service) ListVersions(ctx context.Context, catalogID uuid.UUID, params pagination.Params) (*VersionListResult, error) {
	if _, err := s.repo.FindCatalog(ctx, catalogID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load catalog")
	}

	rows, err := s.repo.ListVersions(ctx, catalogID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list versions")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	out := make([]VersionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, newVersionDTO(&rows[i]))
	}
	return &VersionListResult{Versions: out, NextCursor: nextCursor}, nil
}

// CompareVersions diffs two stored snapshots. Version 0 compares as the
// empty snapshot, so diff(0, n) lists everything in n as added.
func (s *service) CompareVersions(ctx context.Context, catalogID uuid.UUID, fromNumber, toNumber int64) (*CompareResult, error) {
	if fromNumber < 0 || toNumber < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "version numbers cannot be negative")
	}

	fromSnap, err := s.loadSnapshotAt(ctx, catalogID, fromNumber, "from")
	if err != nil {
		return nil, err
	}
	toSnap, err := s.loadSnapshotAt(ctx, catalogID, toNumber, "to")
	if err != nil {
		return nil, err
	}

	return &CompareResult{
		CatalogID:   catalogID,
		FromVersion: fromNumber,
		ToVersion:   toNumber,
		Diff:        DiffSnapshots(fromSnap, toSnap),
	}, nil
}

func (s *service) loadSnapshotAt(ctx context.Context, catalogID uuid.UUID, number int64, side string) (*CatalogSnapshot, error) {
	if number == 0 {
		return nil, nil
	}
	row, err := s.repo.FindVersion(ctx, catalogID, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, side+" version does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load "+side+" version")
	}
	snap, err := DecodeSnapshot(row.Snapshot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode "+side+" snapshot")
	}
	return snap, nil
}

func newVersionDTO(row *models.CatalogVersion) VersionDTO {
	return VersionDTO{
		ID:            row.ID,
		CatalogID:     row.CatalogID,
		VersionNumber: row.VersionNumber,
		ChangeType:    row.ChangeType,
		ChangeSummary: row.ChangeSummary,
		ChangeData:    row.ChangeData,
		CreatedBy:     row.CreatedBy,
		CreatedAt:     row.CreatedAt.UTC().Format(time.RFC3339),
	}
}
