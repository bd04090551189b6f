package version

import (
	"time"

	"github.com/google/uuid"
)

// FieldChange records one field that differs between two snapshots of the
// same entity. Values are JSON-friendly representations.
type FieldChange struct {
	Field string `json:"field"`
	From  any    `json:"from"`
	To    any    `json:"to"`
}

// ItemDiff describes one changed item between two versions.
type ItemDiff struct {
	ItemID       uuid.UUID     `json:"item_id"`
	Slug         string        `json:"slug"`
	Name         string        `json:"name"`
	CategorySlug string        `json:"category_slug"`
	Changes      []FieldChange `json:"changes,omitempty"`
}

// CategoryDiff describes one changed category between two versions.
type CategoryDiff struct {
	CategoryID uuid.UUID     `json:"category_id"`
	Slug       string        `json:"slug"`
	Name       string        `json:"name"`
	Changes    []FieldChange `json:"changes,omitempty"`
}

// OfferDiff describes one changed offer between two versions.
type OfferDiff struct {
	OfferID uuid.UUID     `json:"offer_id"`
	Name    string        `json:"name"`
	Changes []FieldChange `json:"changes,omitempty"`
}

// SnapshotDiff is the structural difference between two catalog snapshots.
// Identity is the master row id, not the slug, so renames show as modified
// rather than remove-plus-add.
type SnapshotDiff struct {
	AddedItems         []ItemDiff     `json:"added_items,omitempty"`
	RemovedItems       []ItemDiff     `json:"removed_items,omitempty"`
	ModifiedItems      []ItemDiff     `json:"modified_items,omitempty"`
	AddedCategories    []CategoryDiff `json:"added_categories,omitempty"`
	RemovedCategories  []CategoryDiff `json:"removed_categories,omitempty"`
	ModifiedCategories []CategoryDiff `json:"modified_categories,omitempty"`
	AddedOffers        []OfferDiff    `json:"added_offers,omitempty"`
	RemovedOffers      []OfferDiff    `json:"removed_offers,omitempty"`
	ModifiedOffers     []OfferDiff    `json:"modified_offers,omitempty"`
}

// IsEmpty reports whether the two snapshots were identical.
func (d *SnapshotDiff) IsEmpty() bool {
	return len(d.AddedItems) == 0 &&
		len(d.RemovedItems) == 0 &&
		len(d.ModifiedItems) == 0 &&
		len(d.AddedCategories) == 0 &&
		len(d.RemovedCategories) == 0 &&
		len(d.ModifiedCategories) == 0 &&
		len(d.AddedOffers) == 0 &&
		len(d.RemovedOffers) == 0 &&
		len(d.ModifiedOffers) == 0
}

// DiffSnapshots computes the change set transforming the "from" snapshot
// into the "to" snapshot. A nil "from" treats everything in "to" as added.
func DiffSnapshots(from, to *CatalogSnapshot) *SnapshotDiff {
	diff := &SnapshotDiff{}
	if from == nil {
		from = &CatalogSnapshot{}
	}
	if to == nil {
		to = &CatalogSnapshot{}
	}

	diffCategories(from, to, diff)
	diffItems(from, to, diff)
	diffOffers(from, to, diff)
	return diff
}

func diffCategories(from, to *CatalogSnapshot, diff *SnapshotDiff) {
	fromByID := map[uuid.UUID]CategorySnapshot{}
	for _, c := range from.Categories {
		fromByID[c.ID] = c
	}
	seen := map[uuid.UUID]bool{}

	for _, c := range to.Categories {
		prev, ok := fromByID[c.ID]
		if !ok {
			diff.AddedCategories = append(diff.AddedCategories, CategoryDiff{CategoryID: c.ID, Slug: c.Slug, Name: c.Name})
			continue
		}
		seen[c.ID] = true
		changes := []FieldChange{}
		if prev.Name != c.Name {
			changes = append(changes, FieldChange{Field: "name", From: prev.Name, To: c.Name})
		}
		if prev.Slug != c.Slug {
			changes = append(changes, FieldChange{Field: "slug", From: prev.Slug, To: c.Slug})
		}
		if prev.Position != c.Position {
			changes = append(changes, FieldChange{Field: "position", From: prev.Position, To: c.Position})
		}
		if prev.IsActive != c.IsActive {
			changes = append(changes, FieldChange{Field: "is_active", From: prev.IsActive, To: c.IsActive})
		}
		if len(changes) > 0 {
			diff.ModifiedCategories = append(diff.ModifiedCategories, CategoryDiff{CategoryID: c.ID, Slug: c.Slug, Name: c.Name, Changes: changes})
		}
	}

	for _, c := range from.Categories {
		if _, stillThere := categoryByID(to, c.ID); !stillThere && !seen[c.ID] {
			diff.RemovedCategories = append(diff.RemovedCategories, CategoryDiff{CategoryID: c.ID, Slug: c.Slug, Name: c.Name})
		}
	}
}

func categoryByID(snap *CatalogSnapshot, id uuid.UUID) (*CategorySnapshot, bool) {
	for i := range snap.Categories {
		if snap.Categories[i].ID == id {
			return &snap.Categories[i], true
		}
	}
	return nil, false
}

func diffItems(from, to *CatalogSnapshot, diff *SnapshotDiff) {
	fromItems := from.ItemsByID()
	toItems := to.ItemsByID()

	for _, cat := range to.Categories {
		for _, it := range cat.Items {
			prev, ok := fromItems[it.ID]
			if !ok {
				diff.AddedItems = append(diff.AddedItems, ItemDiff{ItemID: it.ID, Slug: it.Slug, Name: it.Name, CategorySlug: cat.Slug})
				continue
			}
			changes := diffItemFields(from, to, prev, it)
			if len(changes) > 0 {
				diff.ModifiedItems = append(diff.ModifiedItems, ItemDiff{ItemID: it.ID, Slug: it.Slug, Name: it.Name, CategorySlug: cat.Slug, Changes: changes})
			}
		}
	}

	for _, cat := range from.Categories {
		for _, it := range cat.Items {
			if _, still := toItems[it.ID]; !still {
				diff.RemovedItems = append(diff.RemovedItems, ItemDiff{ItemID: it.ID, Slug: it.Slug, Name: it.Name, CategorySlug: cat.Slug})
			}
		}
	}
}

func diffItemFields(from, to *CatalogSnapshot, prev, cur ItemSnapshot) []FieldChange {
	changes := []FieldChange{}
	if prev.Name != cur.Name {
		changes = append(changes, FieldChange{Field: "name", From: prev.Name, To: cur.Name})
	}
	if prev.Slug != cur.Slug {
		changes = append(changes, FieldChange{Field: "slug", From: prev.Slug, To: cur.Slug})
	}
	if derefString(prev.Description) != derefString(cur.Description) {
		changes = append(changes, FieldChange{Field: "description", From: derefString(prev.Description), To: derefString(cur.Description)})
	}
	if !prev.Price.Equal(cur.Price) {
		changes = append(changes, FieldChange{Field: "price", From: prev.Price.String(), To: cur.Price.String()})
	}
	if prev.IsAvailable != cur.IsAvailable {
		changes = append(changes, FieldChange{Field: "is_available", From: prev.IsAvailable, To: cur.IsAvailable})
	}
	if derefString(prev.ImageURL) != derefString(cur.ImageURL) {
		changes = append(changes, FieldChange{Field: "image_url", From: derefString(prev.ImageURL), To: derefString(cur.ImageURL)})
	}
	if !stringsEqual(prev.Allergens, cur.Allergens) {
		changes = append(changes, FieldChange{Field: "allergens", From: prev.Allergens, To: cur.Allergens})
	}
	if !stringsEqual(prev.Tags, cur.Tags) {
		changes = append(changes, FieldChange{Field: "tags", From: prev.Tags, To: cur.Tags})
	}
	if prev.Position != cur.Position {
		changes = append(changes, FieldChange{Field: "position", From: prev.Position, To: cur.Position})
	}

	prevCat, okPrev := from.CategoryOf(prev.ID)
	curCat, okCur := to.CategoryOf(cur.ID)
	if okPrev && okCur && prevCat.ID != curCat.ID {
		changes = append(changes, FieldChange{Field: "category", From: prevCat.Slug, To: curCat.Slug})
	}
	return changes
}

func diffOffers(from, to *CatalogSnapshot, diff *SnapshotDiff) {
	fromByID := map[uuid.UUID]OfferSnapshot{}
	for _, o := range from.Offers {
		fromByID[o.ID] = o
	}
	toByID := map[uuid.UUID]OfferSnapshot{}
	for _, o := range to.Offers {
		toByID[o.ID] = o
	}

	for _, o := range to.Offers {
		prev, ok := fromByID[o.ID]
		if !ok {
			diff.AddedOffers = append(diff.AddedOffers, OfferDiff{OfferID: o.ID, Name: o.Name})
			continue
		}
		changes := []FieldChange{}
		if prev.Name != o.Name {
			changes = append(changes, FieldChange{Field: "name", From: prev.Name, To: o.Name})
		}
		if derefString(prev.Description) != derefString(o.Description) {
			changes = append(changes, FieldChange{Field: "description", From: derefString(prev.Description), To: derefString(o.Description)})
		}
		if !prev.DiscountPercent.Equal(o.DiscountPercent) {
			changes = append(changes, FieldChange{Field: "discount_percent", From: prev.DiscountPercent.String(), To: o.DiscountPercent.String()})
		}
		if !timesEqual(prev.StartsAt, o.StartsAt) {
			changes = append(changes, FieldChange{Field: "starts_at", From: prev.StartsAt, To: o.StartsAt})
		}
		if !timesEqual(prev.EndsAt, o.EndsAt) {
			changes = append(changes, FieldChange{Field: "ends_at", From: prev.EndsAt, To: o.EndsAt})
		}
		if prev.IsActive != o.IsActive {
			changes = append(changes, FieldChange{Field: "is_active", From: prev.IsActive, To: o.IsActive})
		}
		if len(changes) > 0 {
			diff.ModifiedOffers = append(diff.ModifiedOffers, OfferDiff{OfferID: o.ID, Name: o.Name, Changes: changes})
		}
	}

	for _, o := range from.Offers {
		if _, still := toByID[o.ID]; !still {
			diff.RemovedOffers = append(diff.RemovedOffers, OfferDiff{OfferID: o.ID, Name: o.Name})
		}
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func timesEqual(a, b *time.Time) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Equal(*b)
}
