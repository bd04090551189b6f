package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/tableloop/menusync-backend/pkg/db/types"
	"github.com/tableloop/menusync-backend/pkg/db/models"
)

// CatalogDTO is the read model for a master catalog.
type CatalogDTO struct {
	ID             uuid.UUID       `json:"id"`
	FranchiseID    uuid.UUID       `json:"franchise_id"`
	Name           string          `json:"name"`
	Currency       string          `json:"currency"`
	Settings       dbtypes.JSONMap `json:"settings,omitempty"`
	CurrentVersion int64           `json:"current_version"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CategoryDTO is the read model for a master category.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	CatalogID uuid.UUID `json:"catalog_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Position  int       `json:"position"`
	IsActive  bool      `json:"is_active"`
}

// ItemDTO is the read model for a master item.
type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	CatalogID   uuid.UUID       `json:"catalog_id"`
	CategoryID  uuid.UUID       `json:"category_id"`
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

// OfferDTO is the read model for a master offer.
type OfferDTO struct {
	ID              uuid.UUID       `json:"id"`
	CatalogID       uuid.UUID       `json:"catalog_id"`
	Name            string          `json:"name"`
	Description     *string         `json:"description,omitempty"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	StartsAt        *time.Time      `json:"starts_at,omitempty"`
	EndsAt          *time.Time      `json:"ends_at,omitempty"`
	IsActive        bool            `json:"is_active"`
}

func newCatalogDTO(m *models.MasterCatalog) *CatalogDTO {
	return &CatalogDTO{
		ID:             m.ID,
		FranchiseID:    m.FranchiseID,
		Name:           m.Name,
		Currency:       m.Currency,
		Settings:       m.Settings,
		CurrentVersion: m.CurrentVersion,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func newCategoryDTO(m *models.MasterCategory) *CategoryDTO {
	return &CategoryDTO{
		ID:        m.ID,
		CatalogID: m.CatalogID,
		Name:      m.Name,
		Slug:      m.Slug,
		Position:  m.Position,
		IsActive:  m.IsActive,
	}
}

func newItemDTO(m *models.MasterItem) *ItemDTO {
	return &ItemDTO{
		ID:          m.ID,
		CatalogID:   m.CatalogID,
		CategoryID:  m.CategoryID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		Price:       m.Price,
		Currency:    m.Currency,
		IsAvailable: m.IsAvailable,
		ImageURL:    m.ImageURL,
		Allergens:   m.Allergens,
		Tags:        m.Tags,
		Position:    m.Position,
	}
}

func newOfferDTO(m *models.MasterOffer) *OfferDTO {
	return &OfferDTO{
		ID:              m.ID,
		CatalogID:       m.CatalogID,
		Name:            m.Name,
		Description:     m.Description,
		DiscountPercent: m.DiscountPercent,
		StartsAt:        m.StartsAt,
		EndsAt:          m.EndsAt,
		IsActive:        m.IsActive,
	}
}
