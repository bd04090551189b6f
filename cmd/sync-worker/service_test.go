package main

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	syncsvc "github.com/tableloop/menusync-backend/internal/sync"
	"github.com/tableloop/menusync-backend/pkg/config"
	"github.com/tableloop/menusync-backend/pkg/db/models"
	"github.com/tableloop/menusync-backend/pkg/enums"
	"github.com/tableloop/menusync-backend/pkg/logger"
)

type fakeLister struct {
	links []models.BranchSyncLink
	err   error
}

func (l *fakeLister) ListStaleAutoLinks(ctx context.Context) ([]models.BranchSyncLink, error) {
	return l.links, l.err
}

type fakeSyncer struct {
	failFor map[uuid.UUID]error
	calls   []uuid.UUID
}

func (s *fakeSyncer) SyncBranch(ctx context.Context, userID, linkID uuid.UUID, targetVersion int64, trigger enums.SyncTrigger) (*syncsvc.ResultDTO, error) {
	s.calls = append(s.calls, linkID)
	if err, ok := s.failFor[linkID]; ok {
		return nil, err
	}
	return &syncsvc.ResultDTO{LinkID: linkID, Status: enums.SyncStatusCompleted}, nil
}

type fakeLock struct {
	held     bool
	acquired int
	released int
}

func (l *fakeLock) Acquire(ctx context.Context) (bool, error) {
	if l.held {
		return false, nil
	}
	l.held = true
	l.acquired++
	return true, nil
}

func (l *fakeLock) Release(ctx context.Context) error {
	l.held = false
	l.released++
	return nil
}

func workerConfig() *config.Config {
	return &config.Config{
		AutoSync: config.AutoSyncConfig{Interval: time.Minute, LockTTL: time.Minute},
	}
}

func workerLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "sync-worker-test", Output: io.Discard})
}

func staleLink() models.BranchSyncLink {
	return models.BranchSyncLink{ID: uuid.New(), LocationID: uuid.New()}
}

func TestRunOnceSyncsEveryStaleLink(t *testing.T) {
	one := staleLink()
	two := staleLink()
	syncer := &fakeSyncer{}
	lock := &fakeLock{}

	svc, err := NewService(ServiceParams{
		Config: workerConfig(),
		Logger: workerLogger(),
		Links:  &fakeLister{links: []models.BranchSyncLink{one, two}},
		Syncer: syncer,
		Lock:   lock,
	})
	require.NoError(t, err)

	require.NoError(t, svc.RunOnce(context.Background()))
	require.Equal(t, []uuid.UUID{one.ID, two.ID}, syncer.calls)
	require.Equal(t, 1, lock.acquired)
	require.Equal(t, 1, lock.released)
}

func TestRunOnceContinuesPastBranchFailure(t *testing.T) {
	broken := staleLink()
	healthy := staleLink()
	syncer := &fakeSyncer{failFor: map[uuid.UUID]error{broken.ID: errors.New("sync blew up")}}

	svc, err := NewService(ServiceParams{
		Config: workerConfig(),
		Logger: workerLogger(),
		Links:  &fakeLister{links: []models.BranchSyncLink{broken, healthy}},
		Syncer: syncer,
		Lock:   &fakeLock{},
	})
	require.NoError(t, err)

	require.NoError(t, svc.RunOnce(context.Background()))
	require.Equal(t, []uuid.UUID{broken.ID, healthy.ID}, syncer.calls)
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	syncer := &fakeSyncer{}
	lock := &fakeLock{held: true}

	svc, err := NewService(ServiceParams{
		Config: workerConfig(),
		Logger: workerLogger(),
		Links:  &fakeLister{links: []models.BranchSyncLink{staleLink()}},
		Syncer: syncer,
		Lock:   lock,
	})
	require.NoError(t, err)

	require.NoError(t, svc.RunOnce(context.Background()))
	require.Empty(t, syncer.calls)
	require.Zero(t, lock.released)
}
