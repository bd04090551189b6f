package sync

import (
	"context"
	"io"
	gosync "sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	override "github.com/tableloop/menusync-backend/internal/overrides"
	synclink "github.com/tableloop/menusync-backend/internal/synclinks"
	version "github.com/tableloop/menusync-backend/internal/versions"
	"github.com/tableloop/menusync-backend/pkg/db"
	"github.com/tableloop/menusync-backend/pkg/db/models"
	"github.com/tableloop/menusync-backend/pkg/enums"
	pkgerrors "github.com/tableloop/menusync-backend/pkg/errors"
	"github.com/tableloop/menusync-backend/pkg/logger"
	"github.com/tableloop/menusync-backend/pkg/metrics"
	"github.com/tableloop/menusync-backend/pkg/outbox"
	"github.com/tableloop/menusync-backend/pkg/pagination"
)

type memLockSet struct {
	mu   gosync.Mutex
	held map[uuid.UUID]bool
}

func newMemLockSet() *memLockSet {
	return &memLockSet{held: map[uuid.UUID]bool{}}
}

func (s *memLockSet) factory(linkID uuid.UUID) (Lock, error) {
	return &memLock{set: s, id: linkID}, nil
}

type memLock struct {
	set *memLockSet
	id  uuid.UUID
}

func (l *memLock) Acquire(ctx context.Context) (bool, error) {
	l.set.mu.Lock()
	defer l.set.mu.Unlock()
	if l.set.held[l.id] {
		return false, nil
	}
	l.set.held[l.id] = true
	return true, nil
}

func (l *memLock) Release(ctx context.Context) error {
	l.set.mu.Lock()
	defer l.set.mu.Unlock()
	delete(l.set.held, l.id)
	return nil
}

func newSyncService(t *testing.T) (Service, *gorm.DB, *memLockSet) {
	t.Helper()

	conn := setupSyncTestDB(t)
	client := db.NewFromConn(conn)
	logg := logger.New(logger.Options{ServiceName: "sync-test", Output: io.Discard})
	locks := newMemLockSet()

	svc, err := NewService(
		NewRepository(conn),
		client,
		synclink.NewRepository(conn),
		version.NewRepository(conn),
		override.NewRepository(conn),
		outbox.NewService(outbox.NewRepository(conn), nil),
		locks.factory,
		logg,
		metrics.NewSyncMetrics(nil),
		Config{BulkWorkers: 1},
	)
	require.NoError(t, err)
	return svc, conn, locks
}

func itemSnap(id uuid.UUID, slug, price string, pos int) version.ItemSnapshot {
	return version.ItemSnapshot{
		ID:          id,
		Name:        slug,
		Slug:        slug,
		Price:       decimal.RequireFromString(price),
		Currency:    "USD",
		IsAvailable: true,
		Position:    pos,
	}
}

func singleCategorySnapshot(catalogID, categoryID uuid.UUID, items ...version.ItemSnapshot) *version.CatalogSnapshot {
	return &version.CatalogSnapshot{
		CatalogID: catalogID,
		Name:      "Master Menu",
		Currency:  "USD",
		Categories: []version.CategorySnapshot{{
			ID:       categoryID,
			Name:     "Mains",
			Slug:     "mains",
			Position: 1,
			IsActive: true,
			Items:    items,
		}},
	}
}

func TestSyncBranchAppliesHeadVersion(t *testing.T) {
	svc, conn, _ := newSyncService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 0)
	categoryID := uuid.New()
	burgerID, pastaID := uuid.New(), uuid.New()
	seedVersion(t, conn, catalogID, 1, singleCategorySnapshot(catalogID, categoryID,
		itemSnap(burgerID, "classic-burger", "9.50", 1),
		itemSnap(pastaID, "pasta", "11.00", 2),
	))
	link := seedLink(t, conn, catalogID, enums.SyncModeManual, 0)

	res, err := svc.SyncBranch(ctx, uuid.New(), link.ID, 0, enums.SyncTriggerManual)
	require.NoError(t, err)
	assert.False(t, res.UpToDate)
	assert.Equal(t, int64(1), res.TargetVersion)
	assert.Equal(t, 2, res.ItemsSynced)
	assert.Equal(t, 0, res.ItemsSkipped)
	assert.Equal(t, 1, res.CategoriesSynced)
	require.NotNil(t, res.SyncLogID)

	var refreshed models.BranchSyncLink
	require.NoError(t, conn.First(&refreshed, "id = ?", link.ID).Error)
	assert.Equal(t, int64(1), refreshed.SyncedVersion)
	assert.NotNil(t, refreshed.LastSyncedAt)

	var items []models.BranchItem
	require.NoError(t, conn.Where("menu_id = ?", link.MenuID).Order("position ASC").Find(&items).Error)
	require.Len(t, items, 2)
	assert.Equal(t, "classic-burger", items[0].Slug)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("9.50")))

	var logRow models.SyncLog
	require.NoError(t, conn.First(&logRow, "id = ?", *res.SyncLogID).Error)
	assert.Equal(t, enums.SyncStatusCompleted, logRow.Status)
	assert.Equal(t, 2, logRow.ItemsSynced)
	require.NotNil(t, logRow.CompletedAt)

	var events []models.OutboxEvent
	require.NoError(t, conn.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.OutboxEventSyncCompleted, events[0].EventType)
}

func TestSyncBranchUpToDateIsNoop(t *testing.T) {
	svc, conn, _ := newSyncService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 0)
	seedVersion(t, conn, catalogID, 1, singleCategorySnapshot(catalogID, uuid.New()))
	link := seedLink(t, conn, catalogID, enums.SyncModeManual, 1)

	res, err := svc.SyncBranch(ctx, uuid.New(), link.ID, 0, enums.SyncTriggerManual)
	require.NoError(t, err)
	assert.True(t, res.UpToDate)
	assert.Nil(t, res.SyncLogID)

	var count int64
	require.NoError(t, conn.Model(&models.SyncLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSyncBranchDisabledModeRejected(t *testing.T) {
	svc, conn, _ := newSyncService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 0)
	seedVersion(t, conn, catalogID, 1, singleCategorySnapshot(catalogID, uuid.New()))
	link := seedLink(t, conn, catalogID, enums.SyncModeDisabled, 0)

	_, err := svc.SyncBranch(ctx, uuid.New(), link.ID, 0, enums.SyncTriggerManual)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestSyncBranchConcurrentRunRejected(t *testing.T) {
	svc, conn, locks := newSyncService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 0)
	seedVersion(t, conn, catalogID, 1, singleCategorySnapshot(catalogID, uuid.New()))
	link := seedLink(t, conn, catalogID, enums.SyncModeManual, 0)

	held, err := locks.factory(link.ID)
	require.NoError(t, err)
	ok, err := held.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.SyncBranch(ctx, uuid.New(), link.ID, 0, enums.SyncTriggerManual)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeSyncInProgress, typed.Code())

	var count int64
	require.NoError(t, conn.Model(&models.SyncLog{}).Count(&count).Error)
	assert.Zero(t, count)

	// released lock lets the next attempt through
	require.NoError(t, held.Release(ctx))
	_, err = svc.SyncBranch(ctx, uuid.New(), link.ID, 0, enums.SyncTriggerManual)
	require.NoError(t, err)
}

func TestSyncPreservesLockedFields(t *testing.T) {
	svc, conn, _ := newSyncService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 0)
	categoryID := uuid.New()
	burgerID := uuid.New()
	seedVersion(t, conn, catalogID, 1, singleCategorySnapshot(catalogID, categoryID,
		itemSnap(burgerID, "classic-burger", "10.00", 1),
	))
	link := seedLink(t, conn, catalogID, enums.SyncModeManual, 0)

	_, err := svc.SyncBranch(ctx, uuid.New(), link.ID, 0, enums.SyncTriggerManual)
	require.NoError(t, err)

	// the branch prices its burger locally and pins it
	require.NoError(t, conn.Model(&models.BranchItem{}).
		Where("menu_id = ? AND master_item_id = ?", link.MenuID, burgerID).
		Update("price", decimal.RequireFromString("12.00")).Error)
	require.NoError(t, conn.Create(&models.BranchOverride{
		ID:               uuid.New(),
		BranchSyncLinkID: link.ID,
		MasterItemID:     burgerID,
		PriceLocked:      true,
	}).Error)

	snap := singleCategorySnapshot(catalogID, categoryID, itemSnap(burgerID, "signature-burger", "11.00", 1))
	seedVersion(t, conn, catalogID, 2, snap)

	res, err := svc.SyncBranch(ctx, uuid.New(), link.ID, 0, enums.SyncTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ItemsSynced)
	assert.Equal(t, 0, res.ItemsSkipped)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "field_locked", res.Skipped[0].Reason)
	assert.Equal(t, []string{"price"}, res.Skipped[0].Fields)

	var item models.BranchItem
	require.NoError(t, conn.First(&item, "menu_id = ? AND master_item_id = ?", link.MenuID, burgerID).Error)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("12.00")), "locked price must survive the sync")
	assert.Equal(t, "signature-burger", item.Slug, "unlocked fields still follow the master")

	var logRow models.SyncLog
	require.NoError(t, conn.First(&logRow, "id = ?", *res.SyncLogID).Error)
	assert.NotEmpty(t, logRow.ConflictDetails)
}

func TestFullyLockedItemSurvivesRemoval(t *testing.T) {
	svc, conn, _ := newSyncService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 0)
	categoryID := uuid.New()
	burgerID, pastaID := uuid.New(), uuid.New()
	seedVersion(t, conn, catalogID, 1, singleCategorySnapshot(catalogID, categoryID,
		itemSnap(burgerID, "classic-burger", "9.50", 1),
		itemSnap(pastaID, "pasta", "11.00", 2),
	))
	link := seedLink(t, conn, catalogID, enums.SyncModeManual, 0)

	_, err := svc.SyncBranch(ctx, uuid.New(), link.ID, 0, enums.SyncTriggerManual)
	require.NoError(t, err)

	require.NoError(t, conn.Create(&models.BranchOverride{
		ID:               uuid.New(),
		BranchSyncLinkID: link.ID,
		MasterItemID:     pastaID,
		FullyLocked:      true,
	}).Error)

	// master drops the pasta
	seedVersion(t, conn, catalogID, 2, singleCategorySnapshot(catalogID, categoryID,
		itemSnap(burgerID, "classic-burger", "9.50", 1),
	))

	res, err := svc.SyncBranch(ctx, uuid.New(), link.ID, 0, enums.SyncTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ItemsSkipped)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "fully_locked", res.Skipped[0].Reason)

	var pasta models.BranchItem
	require.NoError(t, conn.First(&pasta, "menu_id = ? AND master_item_id = ?", link.MenuID, pastaID).Error)
	assert.True(t, pasta.IsLocalOnly, "removed master item stays as a local item")
}

func TestSyncAdoptsReplacedCategoryWithReusedSlug(t *testing.T) {
	svc, conn, _ := newSyncService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 0)
	oldCategoryID := uuid.New()
	burgerID := uuid.New()
	seedVersion(t, conn, catalogID, 1, singleCategorySnapshot(catalogID, oldCategoryID,
		itemSnap(burgerID, "classic-burger", "9.50", 1),
	))
	link := seedLink(t, conn, catalogID, enums.SyncModeManual, 0)

	_, err := svc.SyncBranch(ctx, uuid.New(), link.ID, 0, enums.SyncTriggerManual)
	require.NoError(t, err)

	// master deletes the category and recreates it under the same slug
	newCategoryID := uuid.New()
	pastaID := uuid.New()
	seedVersion(t, conn, catalogID, 2, singleCategorySnapshot(catalogID, newCategoryID,
		itemSnap(pastaID, "pasta", "11.00", 1),
	))

	res, err := svc.SyncBranch(ctx, uuid.New(), link.ID, 0, enums.SyncTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TargetVersion)

	var refreshed models.BranchSyncLink
	require.NoError(t, conn.First(&refreshed, "id = ?", link.ID).Error)
	assert.Equal(t, int64(2), refreshed.SyncedVersion)

	var cats []models.BranchCategory
	require.NoError(t, conn.Where("menu_id = ?", link.MenuID).Find(&cats).Error)
	require.Len(t, cats, 1, "the slug match must be adopted, not duplicated")
	require.NotNil(t, cats[0].MasterCategoryID)
	assert.Equal(t, newCategoryID, *cats[0].MasterCategoryID)
	assert.Equal(t, "mains", cats[0].Slug)

	var items []models.BranchItem
	require.NoError(t, conn.Where("menu_id = ?", link.MenuID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, "pasta", items[0].Slug)
	assert.Equal(t, cats[0].ID, items[0].CategoryID)
}

func TestFirstSyncCreatesFullyLockedItem(t *testing.T) {
	svc, conn, _ := newSyncService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 0)
	categoryID := uuid.New()
	burgerID := uuid.New()
	seedVersion(t, conn, catalogID, 1, singleCategorySnapshot(catalogID, categoryID,
		itemSnap(burgerID, "classic-burger", "9.50", 1),
	))
	link := seedLink(t, conn, catalogID, enums.SyncModeManual, 0)

	// a lock placed before the first sync protects branch state that does
	// not exist yet, so the item still lands with master values
	require.NoError(t, conn.Create(&models.BranchOverride{
		ID:               uuid.New(),
		BranchSyncLinkID: link.ID,
		MasterItemID:     burgerID,
		FullyLocked:      true,
	}).Error)

	res, err := svc.SyncBranch(ctx, uuid.New(), link.ID, 0, enums.SyncTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ItemsSynced)
	assert.Equal(t, 0, res.ItemsSkipped)

	var item models.BranchItem
	require.NoError(t, conn.First(&item, "menu_id = ? AND master_item_id = ?", link.MenuID, burgerID).Error)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("9.50")))
}

func TestSyncBranchInvalidTargetVersion(t *testing.T) {
	svc, conn, _ := newSyncService(t)

	catalogID := seedCatalog(t, conn, 0)
	seedVersion(t, conn, catalogID, 1, singleCategorySnapshot(catalogID, uuid.New()))
	link := seedLink(t, conn, catalogID, enums.SyncModeManual, 0)

	_, err := svc.SyncBranch(context.Background(), uuid.New(), link.ID, 5, enums.SyncTriggerManual)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidVersion, typed.Code())
}

func TestSyncAppliesOverrideValues(t *testing.T) {
	svc, conn, _ := newSyncService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 0)
	categoryID := uuid.New()
	burgerID := uuid.New()
	seedVersion(t, conn, catalogID, 1, singleCategorySnapshot(catalogID, categoryID,
		itemSnap(burgerID, "classic-burger", "10.00", 1),
	))
	link := seedLink(t, conn, catalogID, enums.SyncModeManual, 0)

	price := decimal.RequireFromString("8.00")
	available := false
	require.NoError(t, conn.Create(&models.BranchOverride{
		ID:                   uuid.New(),
		BranchSyncLinkID:     link.ID,
		MasterItemID:         burgerID,
		PriceOverride:        &price,
		AvailabilityOverride: &available,
	}).Error)

	res, err := svc.SyncBranch(ctx, uuid.New(), link.ID, 0, enums.SyncTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ItemsSynced)
	assert.Empty(t, res.Skipped)

	var item models.BranchItem
	require.NoError(t, conn.First(&item, "menu_id = ? AND master_item_id = ?", link.MenuID, burgerID).Error)
	assert.True(t, item.Price.Equal(price), "override price wins over the master price")
	assert.False(t, item.IsAvailable)
}

// sabotage the menu so applySnapshot hits the branch category unique
// index and the whole sync rolls back
func plantCategoryCollision(t *testing.T, conn *gorm.DB, menuID uuid.UUID) {
	t.Helper()
	foreignMaster := uuid.New()
	require.NoError(t, conn.Create(&models.BranchCategory{
		ID:               uuid.New(),
		MenuID:           menuID,
		MasterCategoryID: &foreignMaster,
		Name:             "Mains",
		Slug:             "mains",
		Position:         1,
		IsActive:         true,
	}).Error)
}

func TestSyncFailureRollsBackAndRecords(t *testing.T) {
	svc, conn, _ := newSyncService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 0)
	seedVersion(t, conn, catalogID, 1, singleCategorySnapshot(catalogID, uuid.New(),
		itemSnap(uuid.New(), "classic-burger", "9.50", 1),
	))
	link := seedLink(t, conn, catalogID, enums.SyncModeManual, 0)
	plantCategoryCollision(t, conn, link.MenuID)

	_, err := svc.SyncBranch(ctx, uuid.New(), link.ID, 0, enums.SyncTriggerManual)
	require.Error(t, err)

	var refreshed models.BranchSyncLink
	require.NoError(t, conn.First(&refreshed, "id = ?", link.ID).Error)
	assert.Zero(t, refreshed.SyncedVersion, "cursor must not advance on failure")

	var itemCount int64
	require.NoError(t, conn.Model(&models.BranchItem{}).Where("menu_id = ?", link.MenuID).Count(&itemCount).Error)
	assert.Zero(t, itemCount, "rolled back sync leaves no items behind")

	var logRow models.SyncLog
	require.NoError(t, conn.First(&logRow, "branch_sync_link_id = ?", link.ID).Error)
	assert.Equal(t, enums.SyncStatusFailed, logRow.Status)
	require.NotNil(t, logRow.ErrorMessage)
	require.NotNil(t, logRow.CompletedAt)

	var events []models.OutboxEvent
	require.NoError(t, conn.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.OutboxEventSyncFailed, events[0].EventType)
}

func TestBulkSyncPartialFailure(t *testing.T) {
	svc, conn, _ := newSyncService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 0)
	seedVersion(t, conn, catalogID, 1, singleCategorySnapshot(catalogID, uuid.New(),
		itemSnap(uuid.New(), "classic-burger", "9.50", 1),
	))
	healthy := seedLink(t, conn, catalogID, enums.SyncModeManual, 0)
	broken := seedLink(t, conn, catalogID, enums.SyncModeManual, 0)
	plantCategoryCollision(t, conn, broken.MenuID)
	seedLink(t, conn, catalogID, enums.SyncModeDisabled, 0)
	seedLink(t, conn, catalogID, enums.SyncModeManual, 1)

	res, err := svc.BulkSyncAll(ctx, uuid.New(), catalogID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total, "disabled and up-to-date links are not candidates")
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Outcomes, 2)

	for _, outcome := range res.Outcomes {
		if outcome.LinkID == broken.ID {
			assert.NotEmpty(t, outcome.Error)
			assert.Nil(t, outcome.Result)
		} else {
			assert.Equal(t, healthy.ID, outcome.LinkID)
			assert.Empty(t, outcome.Error)
			require.NotNil(t, outcome.Result)
			assert.Equal(t, int64(1), outcome.Result.TargetVersion)
		}
	}

	var refreshed models.BranchSyncLink
	require.NoError(t, conn.First(&refreshed, "id = ?", broken.ID).Error)
	assert.Zero(t, refreshed.SyncedVersion, "failed branch keeps its cursor")
}

func TestBulkSyncUnknownCatalog(t *testing.T) {
	svc, _, _ := newSyncService(t)

	_, err := svc.BulkSyncAll(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestTerminalSyncLogIsImmutable(t *testing.T) {
	svc, conn, _ := newSyncService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 0)
	seedVersion(t, conn, catalogID, 1, singleCategorySnapshot(catalogID, uuid.New(),
		itemSnap(uuid.New(), "classic-burger", "9.50", 1),
	))
	link := seedLink(t, conn, catalogID, enums.SyncModeManual, 0)

	res, err := svc.SyncBranch(ctx, uuid.New(), link.ID, 0, enums.SyncTriggerManual)
	require.NoError(t, err)
	require.NotNil(t, res.SyncLogID)

	msg := "late failure"
	require.NoError(t, NewRepository(conn).CompleteSyncLog(ctx, *res.SyncLogID, enums.SyncStatusFailed, SyncLogUpdate{
		ErrorMessage: &msg,
		CompletedAt:  time.Now(),
	}))

	var logRow models.SyncLog
	require.NoError(t, conn.First(&logRow, "id = ?", *res.SyncLogID).Error)
	assert.Equal(t, enums.SyncStatusCompleted, logRow.Status)
	assert.Nil(t, logRow.ErrorMessage)
}

func TestHistoryReturnsNewestFirst(t *testing.T) {
	svc, conn, _ := newSyncService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 0)
	categoryID := uuid.New()
	burgerID := uuid.New()
	seedVersion(t, conn, catalogID, 1, singleCategorySnapshot(catalogID, categoryID,
		itemSnap(burgerID, "classic-burger", "9.50", 1),
	))
	link := seedLink(t, conn, catalogID, enums.SyncModeManual, 0)

	_, err := svc.SyncBranch(ctx, uuid.New(), link.ID, 0, enums.SyncTriggerManual)
	require.NoError(t, err)

	seedVersion(t, conn, catalogID, 2, singleCategorySnapshot(catalogID, categoryID,
		itemSnap(burgerID, "classic-burger", "10.50", 1),
	))
	_, err = svc.SyncBranch(ctx, uuid.New(), link.ID, 0, enums.SyncTriggerBulk)
	require.NoError(t, err)

	page, err := svc.History(ctx, link.ID, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Logs, 2)
	assert.Equal(t, int64(2), page.Logs[0].TargetVersion)
	assert.Equal(t, int64(1), page.Logs[1].TargetVersion)
	assert.Empty(t, page.NextCursor)

	_, err = svc.History(ctx, uuid.New(), pagination.Params{})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
