package synclink

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	override "github.com/tableloop/menusync-backend/internal/overrides"
	version "github.com/tableloop/menusync-backend/internal/versions"
	"github.com/tableloop/menusync-backend/pkg/db"
	"github.com/tableloop/menusync-backend/pkg/db/models"
	"github.com/tableloop/menusync-backend/pkg/enums"
	pkgerrors "github.com/tableloop/menusync-backend/pkg/errors"
)

func newLinkService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn := setupLinkTestDB(t)
	svc, err := NewService(
		NewRepository(conn),
		db.NewFromConn(conn),
		version.NewRepository(conn),
		override.NewRepository(conn),
	)
	require.NoError(t, err)
	return svc, conn
}

func linkSnapshot(catalogID, categoryID, itemID uuid.UUID, price string) *version.CatalogSnapshot {
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
			Items: []version.ItemSnapshot{{
				ID:          itemID,
				Name:        "Burger",
				Slug:        "burger",
				Price:       decimal.RequireFromString(price),
				Currency:    "USD",
				IsAvailable: true,
				Position:    1,
			}},
		}},
	}
}

func TestInitializeCreatesMenuAndLink(t *testing.T) {
	svc, conn := newLinkService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 1)
	locationID := uuid.New()

	link, err := svc.Initialize(ctx, uuid.New(), InitializeInput{
		LocationID: locationID,
		CatalogID:  catalogID,
		MenuName:   "Downtown Menu",
	})
	require.NoError(t, err)

	assert.Equal(t, locationID, link.LocationID)
	assert.Equal(t, catalogID, link.MasterCatalogID)
	assert.Equal(t, int64(0), link.SyncedVersion)
	assert.Equal(t, enums.SyncModeManual, link.SyncMode)

	var menu models.BranchMenu
	require.NoError(t, conn.First(&menu, "id = ?", link.MenuID).Error)
	assert.Equal(t, "Downtown Menu", menu.Name)
	assert.True(t, menu.IsActive)
}

func TestInitializeDefaultsMenuNameToCatalog(t *testing.T) {
	svc, conn := newLinkService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 1)

	link, err := svc.Initialize(ctx, uuid.New(), InitializeInput{
		LocationID: uuid.New(),
		CatalogID:  catalogID,
		SyncMode:   enums.SyncModeAuto,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.SyncModeAuto, link.SyncMode)

	var menu models.BranchMenu
	require.NoError(t, conn.First(&menu, "id = ?", link.MenuID).Error)
	assert.Equal(t, "Master Menu", menu.Name)
}

func TestInitializeDuplicateRejected(t *testing.T) {
	svc, conn := newLinkService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 1)
	locationID := uuid.New()

	_, err := svc.Initialize(ctx, uuid.New(), InitializeInput{LocationID: locationID, CatalogID: catalogID})
	require.NoError(t, err)

	_, err = svc.Initialize(ctx, uuid.New(), InitializeInput{LocationID: locationID, CatalogID: catalogID})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestInitializeUnknownCatalog(t *testing.T) {
	svc, _ := newLinkService(t)

	_, err := svc.Initialize(context.Background(), uuid.New(), InitializeInput{
		LocationID: uuid.New(),
		CatalogID:  uuid.New(),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestStatusReportsVersionsBehind(t *testing.T) {
	svc, conn := newLinkService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 3)
	link, err := svc.Initialize(ctx, uuid.New(), InitializeInput{LocationID: uuid.New(), CatalogID: catalogID})
	require.NoError(t, err)
	require.NoError(t, conn.Model(&models.BranchSyncLink{}).
		Where("id = ?", link.ID).
		Update("synced_version", 1).Error)

	ov := models.BranchOverride{
		ID:               uuid.New(),
		BranchSyncLinkID: link.ID,
		MasterItemID:     uuid.New(),
		PriceLocked:      true,
	}
	require.NoError(t, conn.Create(&ov).Error)

	status, err := svc.Status(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), status.CurrentVersion)
	assert.Equal(t, int64(2), status.VersionsBehind)
	assert.True(t, status.HasPendingUpdates)
	assert.Equal(t, 1, status.OverridesCount)
}

func TestSetModePersists(t *testing.T) {
	svc, conn := newLinkService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 1)
	link, err := svc.Initialize(ctx, uuid.New(), InitializeInput{LocationID: uuid.New(), CatalogID: catalogID})
	require.NoError(t, err)

	updated, err := svc.SetMode(ctx, link.ID, enums.SyncModeDisabled)
	require.NoError(t, err)
	assert.Equal(t, enums.SyncModeDisabled, updated.SyncMode)

	var row models.BranchSyncLink
	require.NoError(t, conn.First(&row, "id = ?", link.ID).Error)
	assert.Equal(t, enums.SyncModeDisabled, row.SyncMode)
}

func TestSetModeRejectsUnknownMode(t *testing.T) {
	svc, conn := newLinkService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 1)
	link, err := svc.Initialize(ctx, uuid.New(), InitializeInput{LocationID: uuid.New(), CatalogID: catalogID})
	require.NoError(t, err)

	_, err = svc.SetMode(ctx, link.ID, enums.SyncMode("sometimes"))
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestResolveLinkByLocationAndCatalog(t *testing.T) {
	svc, conn := newLinkService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 1)
	locationID := uuid.New()
	created, err := svc.Initialize(ctx, uuid.New(), InitializeInput{LocationID: locationID, CatalogID: catalogID})
	require.NoError(t, err)

	resolved, err := svc.ResolveLink(ctx, locationID, catalogID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)

	_, err = svc.ResolveLink(ctx, uuid.New(), catalogID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestPendingPreviewUpToDate(t *testing.T) {
	svc, conn := newLinkService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 0)
	categoryID := uuid.New()
	itemID := uuid.New()
	seedVersion(t, conn, catalogID, 1, linkSnapshot(catalogID, categoryID, itemID, "10.00"))

	link, err := svc.Initialize(ctx, uuid.New(), InitializeInput{LocationID: uuid.New(), CatalogID: catalogID})
	require.NoError(t, err)
	require.NoError(t, conn.Model(&models.BranchSyncLink{}).
		Where("id = ?", link.ID).
		Update("synced_version", 1).Error)

	preview, err := svc.PendingPreview(ctx, link.ID)
	require.NoError(t, err)
	assert.True(t, preview.UpToDate)
	assert.True(t, preview.Diff.IsEmpty())
	assert.Empty(t, preview.LockedChanges)
}

func TestPendingPreviewAnnotatesLockedChanges(t *testing.T) {
	svc, conn := newLinkService(t)
	ctx := context.Background()

	catalogID := seedCatalog(t, conn, 0)
	categoryID := uuid.New()
	itemID := uuid.New()
	seedVersion(t, conn, catalogID, 1, linkSnapshot(catalogID, categoryID, itemID, "10.00"))
	seedVersion(t, conn, catalogID, 2, linkSnapshot(catalogID, categoryID, itemID, "12.00"))

	link, err := svc.Initialize(ctx, uuid.New(), InitializeInput{LocationID: uuid.New(), CatalogID: catalogID})
	require.NoError(t, err)
	require.NoError(t, conn.Model(&models.BranchSyncLink{}).
		Where("id = ?", link.ID).
		Update("synced_version", 1).Error)

	ov := models.BranchOverride{
		ID:               uuid.New(),
		BranchSyncLinkID: link.ID,
		MasterItemID:     itemID,
		PriceLocked:      true,
	}
	require.NoError(t, conn.Create(&ov).Error)

	preview, err := svc.PendingPreview(ctx, link.ID)
	require.NoError(t, err)
	assert.False(t, preview.UpToDate)
	assert.Equal(t, int64(1), preview.FromVersion)
	assert.Equal(t, int64(2), preview.ToVersion)
	require.Len(t, preview.Diff.ModifiedItems, 1)
	require.Len(t, preview.LockedChanges, 1)
	assert.Equal(t, "field_locked", preview.LockedChanges[0].Reason)
	assert.Equal(t, []string{"price"}, preview.LockedChanges[0].SkippedFields)
}
