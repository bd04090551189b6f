package main

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	syncsvc "github.com/tableloop/menusync-backend/internal/sync"
	"github.com/tableloop/menusync-backend/pkg/config"
	"github.com/tableloop/menusync-backend/pkg/db/models"
	"github.com/tableloop/menusync-backend/pkg/enums"
	"github.com/tableloop/menusync-backend/pkg/logger"
	"github.com/tableloop/menusync-backend/pkg/metrics"
)

const (
	jobName         = "auto_sync"
	defaultInterval = 5 * time.Minute
)

type linkLister interface {
	ListStaleAutoLinks(ctx context.Context) ([]models.BranchSyncLink, error)
}

type branchSyncer interface {
	SyncBranch(ctx context.Context, userID, linkID uuid.UUID, targetVersion int64, trigger enums.SyncTrigger) (*syncsvc.ResultDTO, error)
}

type ServiceParams struct {
	Config  *config.Config
	Logger  *logger.Logger
	Links   linkLister
	Syncer  branchSyncer
	Lock    syncsvc.Lock
	Metrics *metrics.CronJobMetrics
}

// Service wakes on an interval and pushes every stale auto-mode branch to
// its catalog head. The Redis lock keeps concurrent worker instances from
// doubling the work; per-branch contention is handled by the engine's own
// branch locks.
type Service struct {
	cfg      *config.Config
	logg     *logger.Logger
	links    linkLister
	syncer   branchSyncer
	lock     syncsvc.Lock
	metrics  *metrics.CronJobMetrics
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Links == nil {
		return nil, errors.New("link lister is required")
	}
	if params.Syncer == nil {
		return nil, errors.New("sync service is required")
	}
	if params.Lock == nil {
		return nil, errors.New("worker lock is required")
	}

	interval := params.Config.AutoSync.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Service{
		cfg:      params.Config,
		logg:     params.Logger,
		links:    params.Links,
		syncer:   params.Syncer,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// first pass immediately so a fresh deploy does not wait a full interval
	if err := s.RunOnce(ctx); err != nil {
		s.logg.Error(ctx, "auto sync pass failed", err)
	}

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "sync worker context canceled")
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logg.Error(ctx, "auto sync pass failed", err)
			}
		}
	}
}

// RunOnce performs a single pass. Branch failures are recorded in their
// sync logs and do not abort the pass.
func (s *Service) RunOnce(ctx context.Context) error {
	acquired, err := s.lock.Acquire(ctx)
	if err != nil {
		s.metrics.IncFailure(jobName)
		return err
	}
	if !acquired {
		s.logg.Info(ctx, "auto sync pass skipped, another worker holds the lock")
		return nil
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "failed to release worker lock")
		}
	}()

	started := time.Now()
	links, err := s.links.ListStaleAutoLinks(ctx)
	if err != nil {
		s.metrics.IncFailure(jobName)
		return err
	}

	var synced, failed int
	for _, link := range links {
		linkCtx := s.logg.WithFields(ctx, map[string]any{
			"link_id":     link.ID.String(),
			"location_id": link.LocationID.String(),
		})
		if _, err := s.syncer.SyncBranch(ctx, uuid.Nil, link.ID, 0, enums.SyncTriggerAuto); err != nil {
			failed++
			s.logg.Warn(s.logg.WithField(linkCtx, "error", err.Error()), "auto sync failed for branch")
			continue
		}
		synced++
	}

	s.metrics.ObserveDuration(jobName, time.Since(started))
	if failed > 0 {
		s.metrics.IncFailure(jobName)
	} else {
		s.metrics.IncSuccess(jobName)
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"stale":    len(links),
		"synced":   synced,
		"failed":   failed,
		"duration": time.Since(started).String(),
	}), "auto sync pass complete")
	return nil
}
