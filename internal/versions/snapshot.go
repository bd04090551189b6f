package version

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tableloop/menusync-backend/pkg/db/models"
)

// CatalogSnapshot is the complete state of a catalog at one version. It is
// stored whole on every version row so any two versions diff without
// replaying history.
type CatalogSnapshot struct {
	CatalogID  uuid.UUID          `json:"catalog_id"`
	Name       string             `json:"name"`
	Currency   string             `json:"currency"`
	Categories []CategorySnapshot `json:"categories"`
	Offers     []OfferSnapshot    `json:"offers,omitempty"`
}

// CategorySnapshot is one category with its items, ordered by position.
type CategorySnapshot struct {
	ID       uuid.UUID      `json:"id"`
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	Position int            `json:"position"`
	IsActive bool           `json:"is_active"`
	Items    []ItemSnapshot `json:"items"`
}

// ItemSnapshot freezes one master item's sync-relevant fields.
type ItemSnapshot struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	IsAvailable bool            `json:"is_available"`
	ImageURL    *string         `json:"image_url,omitempty"`
	Allergens   []string        `json:"allergens,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Position    int             `json:"position"`
}

// OfferSnapshot freezes one catalog offer.
type OfferSnapshot struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Description     *string         `json:"description,omitempty"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	StartsAt        *time.Time      `json:"starts_at,omitempty"`
	EndsAt          *time.Time      `json:"ends_at,omitempty"`
	IsActive        bool            `json:"is_active"`
}

// BuildSnapshot assembles the snapshot from live master rows. Categories
// and items are sorted by position then slug so serialization is stable.
func BuildSnapshot(catalog *models.MasterCatalog, categories []models.MasterCategory, items []models.MasterItem, offers []models.MasterOffer) CatalogSnapshot {
	itemsByCategory := map[uuid.UUID][]models.MasterItem{}
	for _, it := range items {
		itemsByCategory[it.CategoryID] = append(itemsByCategory[it.CategoryID], it)
	}

	snap := CatalogSnapshot{
		CatalogID: catalog.ID,
		Name:      catalog.Name,
		Currency:  catalog.Currency,
	}

	for _, cat := range categories {
		cs := CategorySnapshot{
			ID:       cat.ID,
			Name:     cat.Name,
			Slug:     cat.Slug,
			Position: cat.Position,
			IsActive: cat.IsActive,
			Items:    []ItemSnapshot{},
		}
		for _, it := range itemsByCategory[cat.ID] {
			cs.Items = append(cs.Items, ItemSnapshot{
				ID:          it.ID,
				Name:        it.Name,
				Slug:        it.Slug,
				Description: it.Description,
				Price:       it.Price,
				Currency:    it.Currency,
				IsAvailable: it.IsAvailable,
				ImageURL:    it.ImageURL,
				Allergens:   it.Allergens,
				Tags:        it.Tags,
				Position:    it.Position,
			})
		}
		sort.SliceStable(cs.Items, func(i, j int) bool {
			if cs.Items[i].Position != cs.Items[j].Position {
				return cs.Items[i].Position < cs.Items[j].Position
			}
			return cs.Items[i].Slug < cs.Items[j].Slug
		})
		snap.Categories = append(snap.Categories, cs)
	}
	sort.SliceStable(snap.Categories, func(i, j int) bool {
		if snap.Categories[i].Position != snap.Categories[j].Position {
			return snap.Categories[i].Position < snap.Categories[j].Position
		}
		return snap.Categories[i].Slug < snap.Categories[j].Slug
	})

	for _, of := range offers {
		snap.Offers = append(snap.Offers, OfferSnapshot{
			ID:              of.ID,
			Name:            of.Name,
			Description:     of.Description,
			DiscountPercent: of.DiscountPercent,
			StartsAt:        of.StartsAt,
			EndsAt:          of.EndsAt,
			IsActive:        of.IsActive,
		})
	}
	sort.SliceStable(snap.Offers, func(i, j int) bool {
		return snap.Offers[i].Name < snap.Offers[j].Name
	})

	return snap
}

// DecodeSnapshot parses a stored snapshot payload.
func DecodeSnapshot(raw json.RawMessage) (*CatalogSnapshot, error) {
	var snap CatalogSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ItemsByID flattens the snapshot into a lookup keyed by master item id.
func (s *CatalogSnapshot) ItemsByID() map[uuid.UUID]ItemSnapshot {
	out := map[uuid.UUID]ItemSnapshot{}
	for _, cat := range s.Categories {
		for _, it := range cat.Items {
			out[it.ID] = it
		}
	}
	return out
}

// CategoryOf returns the category holding the given item id.
func (s *CatalogSnapshot) CategoryOf(itemID uuid.UUID) (*CategorySnapshot, bool) {
	for i := range s.Categories {
		for _, it := range s.Categories[i].Items {
			if it.ID == itemID {
				return &s.Categories[i], true
			}
		}
	}
	return nil, false
}
