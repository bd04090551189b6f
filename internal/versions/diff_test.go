package version

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func snapshotFixture() CatalogSnapshot {
	catID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	burgers := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	classic := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	double := uuid.MustParse("44444444-4444-4444-4444-444444444444")

	return CatalogSnapshot{
		CatalogID: catID,
		Name:      "Master Menu",
		Currency:  "USD",
		Categories: []CategorySnapshot{
			{
				ID:       burgers,
				Name:     "Burgers",
				Slug:     "burgers",
				Position: 0,
				IsActive: true,
				Items: []ItemSnapshot{
					{
						ID:          classic,
						Name:        "Classic Burger",
						Slug:        "classic-burger",
						Price:       decimal.RequireFromString("9.50"),
						Currency:    "USD",
						IsAvailable: true,
						Position:    0,
					},
					{
						ID:          double,
						Name:        "Double Burger",
						Slug:        "double-burger",
						Price:       decimal.RequireFromString("12.00"),
						Currency:    "USD",
						IsAvailable: true,
						Position:    1,
					},
				},
			},
		},
	}
}

func TestDiffSnapshotsIdenticalIsEmpty(t *testing.T) {
	from := snapshotFixture()
	to := snapshotFixture()

	diff := DiffSnapshots(&from, &to)
	if !diff.IsEmpty() {
		t.Fatalf("expected empty diff, got %+v", diff)
	}
}

func TestDiffSnapshotsNilFromTreatsEverythingAsAdded(t *testing.T) {
	to := snapshotFixture()

	diff := DiffSnapshots(nil, &to)
	if len(diff.AddedCategories) != 1 {
		t.Fatalf("expected 1 added category, got %d", len(diff.AddedCategories))
	}
	if len(diff.AddedItems) != 2 {
		t.Fatalf("expected 2 added items, got %d", len(diff.AddedItems))
	}
	if len(diff.RemovedItems) != 0 || len(diff.ModifiedItems) != 0 {
		t.Fatalf("expected no removals or modifications, got %+v", diff)
	}
}

func TestDiffSnapshotsPriceChange(t *testing.T) {
	from := snapshotFixture()
	to := snapshotFixture()
	to.Categories[0].Items[0].Price = decimal.RequireFromString("10.50")

	diff := DiffSnapshots(&from, &to)
	if len(diff.ModifiedItems) != 1 {
		t.Fatalf("expected 1 modified item, got %d", len(diff.ModifiedItems))
	}
	mod := diff.ModifiedItems[0]
	if mod.Slug != "classic-burger" {
		t.Fatalf("expected classic-burger modified, got %s", mod.Slug)
	}
	if len(mod.Changes) != 1 {
		t.Fatalf("expected 1 field change, got %+v", mod.Changes)
	}
	change := mod.Changes[0]
	if change.Field != "price" || change.From != "9.5" || change.To != "10.5" {
		t.Fatalf("unexpected change: %+v", change)
	}
}

func TestDiffSnapshotsPriceScaleInsensitive(t *testing.T) {
	from := snapshotFixture()
	to := snapshotFixture()
	to.Categories[0].Items[0].Price = decimal.RequireFromString("9.50000")

	diff := DiffSnapshots(&from, &to)
	if !diff.IsEmpty() {
		t.Fatalf("9.50 and 9.50000 should compare equal, got %+v", diff)
	}
}

func TestDiffSnapshotsRenameIsModificationNotChurn(t *testing.T) {
	from := snapshotFixture()
	to := snapshotFixture()
	to.Categories[0].Items[1].Name = "Double Smash Burger"
	to.Categories[0].Items[1].Slug = "double-smash-burger"

	diff := DiffSnapshots(&from, &to)
	if len(diff.AddedItems) != 0 || len(diff.RemovedItems) != 0 {
		t.Fatalf("rename must not produce add/remove churn: %+v", diff)
	}
	if len(diff.ModifiedItems) != 1 {
		t.Fatalf("expected 1 modified item, got %d", len(diff.ModifiedItems))
	}
	if len(diff.ModifiedItems[0].Changes) != 2 {
		t.Fatalf("expected name and slug changes, got %+v", diff.ModifiedItems[0].Changes)
	}
}

func TestDiffSnapshotsItemRemoved(t *testing.T) {
	from := snapshotFixture()
	to := snapshotFixture()
	to.Categories[0].Items = to.Categories[0].Items[:1]

	diff := DiffSnapshots(&from, &to)
	if len(diff.RemovedItems) != 1 {
		t.Fatalf("expected 1 removed item, got %d", len(diff.RemovedItems))
	}
	if diff.RemovedItems[0].Slug != "double-burger" {
		t.Fatalf("expected double-burger removed, got %s", diff.RemovedItems[0].Slug)
	}
}

func TestDiffSnapshotsItemMovedBetweenCategories(t *testing.T) {
	from := snapshotFixture()
	to := snapshotFixture()

	sides := CategorySnapshot{
		ID:       uuid.MustParse("55555555-5555-5555-5555-555555555555"),
		Name:     "Sides",
		Slug:     "sides",
		Position: 1,
		IsActive: true,
	}
	moved := to.Categories[0].Items[1]
	to.Categories[0].Items = to.Categories[0].Items[:1]
	sides.Items = []ItemSnapshot{moved}
	to.Categories = append(to.Categories, sides)

	diff := DiffSnapshots(&from, &to)
	if len(diff.AddedCategories) != 1 {
		t.Fatalf("expected 1 added category, got %+v", diff.AddedCategories)
	}
	if len(diff.ModifiedItems) != 1 {
		t.Fatalf("expected 1 modified item from the move, got %+v", diff.ModifiedItems)
	}
	found := false
	for _, c := range diff.ModifiedItems[0].Changes {
		if c.Field == "category" && c.From == "burgers" && c.To == "sides" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected category change recorded, got %+v", diff.ModifiedItems[0].Changes)
	}
}

func TestDiffSnapshotsOfferChanges(t *testing.T) {
	from := snapshotFixture()
	to := snapshotFixture()

	offerID := uuid.MustParse("66666666-6666-6666-6666-666666666666")
	from.Offers = []OfferSnapshot{{
		ID:              offerID,
		Name:            "Happy Hour",
		DiscountPercent: decimal.RequireFromString("15.00"),
		IsActive:        true,
	}}
	to.Offers = []OfferSnapshot{{
		ID:              offerID,
		Name:            "Happy Hour",
		DiscountPercent: decimal.RequireFromString("20.00"),
		IsActive:        true,
	}}

	diff := DiffSnapshots(&from, &to)
	if len(diff.ModifiedOffers) != 1 {
		t.Fatalf("expected 1 modified offer, got %+v", diff)
	}
	if diff.ModifiedOffers[0].Changes[0].Field != "discount_percent" {
		t.Fatalf("expected discount change, got %+v", diff.ModifiedOffers[0].Changes)
	}
}
