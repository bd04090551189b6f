package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	version "github.com/tableloop/menusync-backend/internal/versions"
	"github.com/tableloop/menusync-backend/pkg/db"
	"github.com/tableloop/menusync-backend/pkg/db/models"
	"github.com/tableloop/menusync-backend/pkg/enums"
	pkgerrors "github.com/tableloop/menusync-backend/pkg/errors"
	"github.com/tableloop/menusync-backend/pkg/logger"
	"github.com/tableloop/menusync-backend/pkg/metrics"
	"github.com/tableloop/menusync-backend/pkg/outbox"
	"github.com/tableloop/menusync-backend/pkg/outbox/payloads"
	"github.com/tableloop/menusync-backend/pkg/pagination"
)

const defaultBulkWorkers = 4

// Service runs the sync engine: applying catalog versions to branches,
// bulk propagation, and the audit history.
type Service interface {
	// SyncBranch moves the branch to targetVersion, or to the catalog
	// head when targetVersion is 0.
	SyncBranch(ctx context.Context, userID, linkID uuid.UUID, targetVersion int64, trigger enums.SyncTrigger) (*ResultDTO, error)
	BulkSyncAll(ctx context.Context, userID, catalogID uuid.UUID) (*BulkResultDTO, error)
	History(ctx context.Context, linkID uuid.UUID, params pagination.Params) (*LogListResult, error)
}

// ResultDTO reports one sync attempt.
type ResultDTO struct {
	SyncLogID        *uuid.UUID       `json:"sync_log_id,omitempty"`
	LinkID           uuid.UUID        `json:"link_id"`
	TargetVersion    int64            `json:"target_version"`
	Status           enums.SyncStatus `json:"status"`
	ItemsSynced      int              `json:"items_synced"`
	ItemsSkipped     int              `json:"items_skipped"`
	CategoriesSynced int              `json:"categories_synced"`
	Skipped          []SkippedChange  `json:"skipped,omitempty"`
	UpToDate         bool             `json:"up_to_date"`
}

// BranchOutcome is one branch's slice of a bulk run.
type BranchOutcome struct {
	LinkID     uuid.UUID  `json:"link_id"`
	LocationID uuid.UUID  `json:"location_id"`
	Result     *ResultDTO `json:"result,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// BulkResultDTO aggregates a bulk propagation across all linked branches.
// One branch failing never blocks the others.
type BulkResultDTO struct {
	CatalogID uuid.UUID       `json:"catalog_id"`
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Outcomes  []BranchOutcome `json:"outcomes"`
}

// LogDTO is the read model for one audit row.
type LogDTO struct {
	ID               uuid.UUID         `json:"id"`
	BranchSyncLinkID uuid.UUID         `json:"branch_sync_link_id"`
	Trigger          enums.SyncTrigger `json:"trigger"`
	Status           enums.SyncStatus  `json:"status"`
	TargetVersion    int64             `json:"target_version"`
	ItemsSynced      int               `json:"items_synced"`
	ItemsSkipped     int               `json:"items_skipped"`
	CategoriesSynced int               `json:"categories_synced"`
	ConflictDetails  json.RawMessage   `json:"conflict_details,omitempty"`
	ErrorMessage     *string           `json:"error_message,omitempty"`
	SyncedBy         uuid.UUID         `json:"synced_by"`
	StartedAt        time.Time         `json:"started_at"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
}

// LogListResult is one page of audit history, newest first.
type LogListResult struct {
	Logs       []LogDTO `json:"logs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

type linkStore interface {
	FindLink(ctx context.Context, id uuid.UUID) (*models.BranchSyncLink, error)
	ListLinksByCatalog(ctx context.Context, catalogID uuid.UUID) ([]models.BranchSyncLink, error)
	AdvanceCursorTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, version int64, syncedAt time.Time) error
}

type catalogStore interface {
	FindCatalog(ctx context.Context, id uuid.UUID) (*models.MasterCatalog, error)
	FindVersion(ctx context.Context, catalogID uuid.UUID, number int64) (*models.CatalogVersion, error)
}

type overrideStore interface {
	MapByItem(ctx context.Context, linkID uuid.UUID) (map[uuid.UUID]models.BranchOverride, error)
}

type service struct {
	repo      *Repository
	dbClient  *db.Client
	links     linkStore
	catalogs  catalogStore
	overrides overrideStore
	outbox    *outbox.Service
	locks     LockFactory
	logg      *logger.Logger
	metrics   *metrics.SyncMetrics
	workers   int
}

// Config tunes the engine.
type Config struct {
	BulkWorkers int
}

// NewService constructs the sync engine.
func NewService(
	repo *Repository,
	dbClient *db.Client,
	links linkStore,
	catalogs catalogStore,
	overrides overrideStore,
	outboxSvc *outbox.Service,
	locks LockFactory,
	logg *logger.Logger,
	syncMetrics *metrics.SyncMetrics,
	cfg Config,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sync repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if links == nil {
		return nil, fmt.Errorf("link store required")
	}
	if catalogs == nil {
		return nil, fmt.Errorf("catalog store required")
	}
	if overrides == nil {
		return nil, fmt.Errorf("override store required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if locks == nil {
		return nil, fmt.Errorf("lock factory required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	workers := cfg.BulkWorkers
	if workers <= 0 {
		workers = defaultBulkWorkers
	}
	return &service{
		repo:      repo,
		dbClient:  dbClient,
		links:     links,
		catalogs:  catalogs,
		overrides: overrides,
		outbox:    outboxSvc,
		locks:     locks,
		logg:      logg,
		metrics:   syncMetrics,
		workers:   workers,
	}, nil
}

// SyncBranch applies the target version to the branch as one atomic jump.
// Either the menu reaches the target version or nothing changes.
func (s *service) SyncBranch(ctx context.Context, userID, linkID uuid.UUID, targetVersion int64, trigger enums.SyncTrigger) (*ResultDTO, error) {
	if !trigger.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid sync trigger")
	}

	link, err := s.links.FindLink(ctx, linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sync link not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sync link")
	}
	if link.SyncMode == enums.SyncModeDisabled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "sync is disabled for this branch")
	}

	catalog, err := s.catalogs.FindCatalog(ctx, link.MasterCatalogID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load catalog")
	}
	target := targetVersion
	if target == 0 {
		target = catalog.CurrentVersion
	}
	if link.SyncedVersion == target {
		return &ResultDTO{
			LinkID:        link.ID,
			TargetVersion: link.SyncedVersion,
			Status:        enums.SyncStatusCompleted,
			UpToDate:      true,
		}, nil
	}

	versionRow, err := s.catalogs.FindVersion(ctx, link.MasterCatalogID, target)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidVersion, "catalog version not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load target version")
	}
	snap, err := version.DecodeSnapshot(versionRow.Snapshot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode target snapshot")
	}

	lock, err := s.locks(link.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build branch lock")
	}
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire branch lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeSyncInProgress, "a sync is already running for this branch")
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "link_id", link.ID.String()), "failed to release branch lock")
		}
	}()

	started := time.Now()
	logRow, err := s.repo.CreateSyncLog(ctx, &models.SyncLog{
		ID:               uuid.New(),
		BranchSyncLinkID: link.ID,
		Trigger:          trigger,
		Status:           enums.SyncStatusInProgress,
		TargetVersion:    target,
		SyncedBy:         userID,
		StartedAt:        started,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert sync log")
	}

	overrides, err := s.overrides.MapByItem(ctx, link.ID)
	if err != nil {
		return nil, s.failSync(ctx, link, logRow, trigger, started, err, "db: load overrides")
	}

	var res *applyResult
	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		applied, err := applySnapshot(ctx, txRepo, link.MenuID, snap, overrides)
		if err != nil {
			return err
		}
		res = applied

		completedAt := time.Now()
		if err := s.links.AdvanceCursorTx(ctx, tx, link.ID, target, completedAt); err != nil {
			return err
		}

		var conflictJSON []byte
		if len(applied.Skipped) > 0 {
			conflictJSON, err = json.Marshal(applied.Skipped)
			if err != nil {
				return err
			}
		}
		if err := txRepo.CompleteSyncLog(ctx, logRow.ID, enums.SyncStatusCompleted, SyncLogUpdate{
			ItemsSynced:      applied.ItemsSynced,
			ItemsSkipped:     applied.ItemsSkipped,
			CategoriesSynced: applied.CategoriesSynced,
			ConflictDetails:  conflictJSON,
			CompletedAt:      completedAt,
		}); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventSyncCompleted,
			AggregateType: enums.OutboxAggregateSyncLink,
			AggregateID:   link.ID,
			Actor:         &outbox.ActorRef{UserID: userID},
			Version:       1,
			Data: payloads.SyncCompletedEvent{
				BranchSyncLinkID: link.ID,
				LocationID:       link.LocationID,
				CatalogID:        link.MasterCatalogID,
				TargetVersion:    target,
				Trigger:          trigger,
				ItemsSynced:      applied.ItemsSynced,
				ItemsSkipped:     applied.ItemsSkipped,
				CompletedAt:      completedAt,
			},
		})
	})
	if txErr != nil {
		return nil, s.failSync(ctx, link, logRow, trigger, started, txErr, "apply snapshot")
	}

	s.metrics.ObserveDuration(string(trigger), time.Since(started))
	s.metrics.IncSuccess(string(trigger))
	s.metrics.AddItems(string(trigger), "synced", res.ItemsSynced)
	s.metrics.AddItems(string(trigger), "skipped", res.ItemsSkipped)

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"link_id":        link.ID.String(),
		"target_version": target,
		"items_synced":   res.ItemsSynced,
		"items_skipped":  res.ItemsSkipped,
	})
	s.logg.Info(logCtx, "branch sync completed")

	logID := logRow.ID
	return &ResultDTO{
		SyncLogID:        &logID,
		LinkID:           link.ID,
		TargetVersion:    target,
		Status:           enums.SyncStatusCompleted,
		ItemsSynced:      res.ItemsSynced,
		ItemsSkipped:     res.ItemsSkipped,
		CategoriesSynced: res.CategoriesSynced,
		Skipped:          res.Skipped,
	}, nil
}

// failSync marks the audit row failed and emits the failure event. The
// menu itself was rolled back, so the cursor never moved.
func (s *service) failSync(ctx context.Context, link *models.BranchSyncLink, logRow *models.SyncLog, trigger enums.SyncTrigger, started time.Time, cause error, msg string) error {
	failedAt := time.Now()
	errMsg := cause.Error()
	if err := s.repo.CompleteSyncLog(ctx, logRow.ID, enums.SyncStatusFailed, SyncLogUpdate{
		ErrorMessage: &errMsg,
		CompletedAt:  failedAt,
	}); err != nil {
		s.logg.Error(ctx, "failed to mark sync log failed", err)
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventSyncFailed,
			AggregateType: enums.OutboxAggregateSyncLink,
			AggregateID:   link.ID,
			Version:       1,
			Data: payloads.SyncFailedEvent{
				BranchSyncLinkID: link.ID,
				LocationID:       link.LocationID,
				CatalogID:        link.MasterCatalogID,
				TargetVersion:    logRow.TargetVersion,
				Trigger:          trigger,
				Error:            errMsg,
				FailedAt:         failedAt,
			},
		})
	}); err != nil {
		s.logg.Error(ctx, "failed to emit sync failed event", err)
	}

	s.metrics.ObserveDuration(string(trigger), time.Since(started))
	s.metrics.IncFailure(string(trigger))

	if typed := pkgerrors.As(cause); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, msg)
}

// BulkSyncAll fans one catalog's head version out to every linked branch
// that is behind and not disabled. Branches run concurrently with a
// bounded worker pool; failures are collected per branch, never aborting
// the run.
func (s *service) BulkSyncAll(ctx context.Context, userID, catalogID uuid.UUID) (*BulkResultDTO, error) {
	catalog, err := s.catalogs.FindCatalog(ctx, catalogID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load catalog")
	}

	all, err := s.links.ListLinksByCatalog(ctx, catalogID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list links")
	}
	links := make([]models.BranchSyncLink, 0, len(all))
	for _, link := range all {
		if link.SyncMode == enums.SyncModeDisabled || link.SyncedVersion >= catalog.CurrentVersion {
			continue
		}
		links = append(links, link)
	}

	out := &BulkResultDTO{
		CatalogID: catalogID,
		Total:     len(links),
		Outcomes:  make([]BranchOutcome, len(links)),
	}

	var mu gosync.Mutex
	var combined error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range links {
		i, link := i, links[i]
		g.Go(func() error {
			outcome := BranchOutcome{LinkID: link.ID, LocationID: link.LocationID}
			result, err := s.SyncBranch(gctx, userID, link.ID, catalog.CurrentVersion, enums.SyncTriggerBulk)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				outcome.Error = err.Error()
				out.Failed++
				combined = multierr.Append(combined, fmt.Errorf("link %s: %w", link.ID, err))
			} else {
				outcome.Result = result
				out.Succeeded++
			}
			out.Outcomes[i] = outcome
			return nil
		})
	}
	// workers never return errors; the group is only used for bounding
	_ = g.Wait()

	if combined != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"catalog_id": catalogID.String(),
			"failed":     out.Failed,
			"total":      out.Total,
		})
		s.logg.Error(logCtx, "bulk sync finished with failures", combined)
	}
	return out, nil
}

// History pages one link's audit trail.
func (s *service) History(ctx context.Context, linkID uuid.UUID, params pagination.Params) (*LogListResult, error) {
	if _, err := s.links.FindLink(ctx, linkID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sync link not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sync link")
	}

	rows, err := s.repo.ListSyncLogs(ctx, linkID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list sync logs")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	logs := make([]LogDTO, 0, len(rows))
	for i := range rows {
		logs = append(logs, newLogDTO(&rows[i]))
	}
	return &LogListResult{Logs: logs, NextCursor: nextCursor}, nil
}

func newLogDTO(m *models.SyncLog) LogDTO {
	return LogDTO{
		ID:               m.ID,
		BranchSyncLinkID: m.BranchSyncLinkID,
		Trigger:          m.Trigger,
		Status:           m.Status,
		TargetVersion:    m.TargetVersion,
		ItemsSynced:      m.ItemsSynced,
		ItemsSkipped:     m.ItemsSkipped,
		CategoriesSynced: m.CategoriesSynced,
		ConflictDetails:  m.ConflictDetails,
		ErrorMessage:     m.ErrorMessage,
		SyncedBy:         m.SyncedBy,
		StartedAt:        m.StartedAt,
		CompletedAt:      m.CompletedAt,
	}
}
