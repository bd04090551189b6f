package sync

import (
	"context"

	"github.com/google/uuid"

	version "github.com/tableloop/menusync-backend/internal/versions"
	"github.com/tableloop/menusync-backend/pkg/db/models"
)

// SkippedChange records one place where a branch lock held back part of a
// sync. The list is stored on the audit row as conflict details.
type SkippedChange struct {
	ItemID uuid.UUID `json:"item_id"`
	Slug   string    `json:"slug"`
	Reason string    `json:"reason"`
	Fields []string  `json:"fields,omitempty"`
}

type applyResult struct {
	ItemsSynced      int
	ItemsSkipped     int
	CategoriesSynced int
	Skipped          []SkippedChange
}

// applySnapshot reconciles the branch menu with the target snapshot,
// honoring the branch's locks. It only mutates rows through the given
// repository, so it must run inside the caller's transaction.
func applySnapshot(ctx context.Context, repo *Repository, menuID uuid.UUID, snap *version.CatalogSnapshot, overrides map[uuid.UUID]models.BranchOverride) (*applyResult, error) {
	res := &applyResult{}

	existingCats, err := repo.ListBranchCategories(ctx, menuID)
	if err != nil {
		return nil, err
	}
	existingItems, err := repo.ListBranchItems(ctx, menuID)
	if err != nil {
		return nil, err
	}

	catByMaster := map[uuid.UUID]*models.BranchCategory{}
	catBySlug := map[string]*models.BranchCategory{}
	for i := range existingCats {
		c := &existingCats[i]
		if c.MasterCategoryID != nil {
			catByMaster[*c.MasterCategoryID] = c
		}
		catBySlug[c.Slug] = c
	}
	itemByMaster := map[uuid.UUID]*models.BranchItem{}
	for i := range existingItems {
		it := &existingItems[i]
		if it.MasterItemID != nil {
			itemByMaster[*it.MasterItemID] = it
		}
	}

	// categories first so items can point at them
	targetCat := map[uuid.UUID]bool{}
	for _, sc := range snap.Categories {
		targetCat[sc.ID] = true
	}

	branchCatID := map[uuid.UUID]uuid.UUID{}
	for _, sc := range snap.Categories {
		row, existed := catByMaster[sc.ID]
		if !existed {
			// adopt a slug match: a pre-link menu row, or a mirrored
			// category whose master was replaced by one reusing the slug
			if bySlug, ok := catBySlug[sc.Slug]; ok &&
				(bySlug.MasterCategoryID == nil || !targetCat[*bySlug.MasterCategoryID]) {
				row = bySlug
				existed = true
			}
		}
		if row == nil {
			masterID := sc.ID
			row = &models.BranchCategory{
				ID:     uuid.New(),
				MenuID: menuID,
			}
			row.MasterCategoryID = &masterID
		}
		changed := !existed ||
			row.Name != sc.Name ||
			row.Slug != sc.Slug ||
			row.Position != sc.Position ||
			row.IsActive != sc.IsActive ||
			row.MasterCategoryID == nil ||
			*row.MasterCategoryID != sc.ID

		if row.MasterCategoryID == nil || *row.MasterCategoryID != sc.ID {
			masterID := sc.ID
			row.MasterCategoryID = &masterID
		}
		row.Name = sc.Name
		row.Slug = sc.Slug
		row.Position = sc.Position
		row.IsActive = sc.IsActive
		if err := repo.SaveBranchCategory(ctx, row); err != nil {
			return nil, err
		}
		if changed {
			res.CategoriesSynced++
		}
		branchCatID[sc.ID] = row.ID
	}

	inSnapshot := map[uuid.UUID]bool{}
	for _, sc := range snap.Categories {
		for _, si := range sc.Items {
			inSnapshot[si.ID] = true

			ov, hasOverride := overrides[si.ID]
			row, exists := itemByMaster[si.ID]

			if exists && hasOverride && ov.FullyLocked {
				res.ItemsSkipped++
				res.Skipped = append(res.Skipped, SkippedChange{ItemID: si.ID, Slug: si.Slug, Reason: "fully_locked"})
				continue
			}

			if !exists {
				masterID := si.ID
				row = &models.BranchItem{
					ID:           uuid.New(),
					MenuID:       menuID,
					MasterItemID: &masterID,
				}
			}

			// per field: locked keeps the branch value, then an override
			// value wins, then the master value
			var lockedFields []string
			switch {
			case exists && hasOverride && ov.PriceLocked:
				lockedFields = append(lockedFields, "price")
			case hasOverride && ov.PriceOverride != nil:
				row.Price = *ov.PriceOverride
			default:
				row.Price = si.Price
			}
			switch {
			case exists && hasOverride && ov.AvailabilityLocked:
				lockedFields = append(lockedFields, "is_available")
			case hasOverride && ov.AvailabilityOverride != nil:
				row.IsAvailable = *ov.AvailabilityOverride
			default:
				row.IsAvailable = si.IsAvailable
			}

			row.CategoryID = branchCatID[sc.ID]
			row.Name = si.Name
			row.Slug = si.Slug
			row.Description = si.Description
			row.Currency = si.Currency
			row.ImageURL = si.ImageURL
			row.Allergens = si.Allergens
			row.Tags = si.Tags
			row.Position = si.Position
			row.IsLocalOnly = false

			if err := repo.SaveBranchItem(ctx, row); err != nil {
				return nil, err
			}
			res.ItemsSynced++
			if len(lockedFields) > 0 {
				res.Skipped = append(res.Skipped, SkippedChange{ItemID: si.ID, Slug: si.Slug, Reason: "field_locked", Fields: lockedFields})
			}
		}
	}

	// removals: master items gone from the snapshot
	for i := range existingItems {
		row := &existingItems[i]
		if row.MasterItemID == nil || inSnapshot[*row.MasterItemID] {
			continue
		}
		if ov, ok := overrides[*row.MasterItemID]; ok && ov.FullyLocked {
			// the branch keeps the item as its own
			row.IsLocalOnly = true
			if err := repo.SaveBranchItem(ctx, row); err != nil {
				return nil, err
			}
			res.ItemsSkipped++
			res.Skipped = append(res.Skipped, SkippedChange{ItemID: *row.MasterItemID, Slug: row.Slug, Reason: "fully_locked"})
			continue
		}
		if err := repo.DeleteBranchItem(ctx, row.ID); err != nil {
			return nil, err
		}
		res.ItemsSynced++
	}

	// drop mirrored categories the master removed, unless items survived.
	// Adopted rows were re-pointed at their new master above, so they pass
	// the membership check here.
	for i := range existingCats {
		row := &existingCats[i]
		if row.MasterCategoryID == nil || targetCat[*row.MasterCategoryID] {
			continue
		}
		remaining, err := repo.CountBranchItemsInCategory(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		if remaining > 0 {
			continue
		}
		if err := repo.DeleteBranchCategory(ctx, row.ID); err != nil {
			return nil, err
		}
		res.CategoriesSynced++
	}

	return res, nil
}
