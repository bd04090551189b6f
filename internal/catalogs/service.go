package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tableloop/menusync-backend/pkg/db"
	"github.com/tableloop/menusync-backend/pkg/db/models"
	dbtypes "github.com/tableloop/menusync-backend/pkg/db/types"
	"github.com/tableloop/menusync-backend/pkg/enums"
	pkgerrors "github.com/tableloop/menusync-backend/pkg/errors"

	version "github.com/tableloop/menusync-backend/internal/versions"
)

// Service exposes master catalog management. Every mutation appends a
// catalog version in the same transaction, so the version history never
// disagrees with the live rows.
type Service interface {
	CreateCatalog(ctx context.Context, userID uuid.UUID, input CreateCatalogInput) (*CatalogDTO, error)
	GetCatalog(ctx context.Context, catalogID uuid.UUID) (*CatalogDTO, error)
	ListCatalogs(ctx context.Context, franchiseID uuid.UUID) ([]CatalogDTO, error)

	AddCategory(ctx context.Context, userID, catalogID uuid.UUID, input CategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, userID, catalogID, categoryID uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error)
	RemoveCategory(ctx context.Context, userID, catalogID, categoryID uuid.UUID) error

	AddItem(ctx context.Context, userID, catalogID uuid.UUID, input ItemInput) (*ItemDTO, error)
	UpdateItem(ctx context.Context, userID, catalogID, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	RemoveItem(ctx context.Context, userID, catalogID, itemID uuid.UUID) error

	CreateOffer(ctx context.Context, userID, catalogID uuid.UUID, input OfferInput) (*OfferDTO, error)
	UpdateOffer(ctx context.Context, userID, catalogID, offerID uuid.UUID, input UpdateOfferInput) (*OfferDTO, error)
	DeleteOffer(ctx context.Context, userID, catalogID, offerID uuid.UUID) error
}

// CreateCatalogInput holds the validated payload to create a catalog.
type CreateCatalogInput struct {
	FranchiseID uuid.UUID
	Name        string
	Currency    string
	Settings    dbtypes.JSONMap
}

// CategoryInput holds the payload to add a category.
type CategoryInput struct {
	Name     string
	Slug     string
	Position int
}

// UpdateCategoryInput holds optional mutation values for a category.
type UpdateCategoryInput struct {
	Name     *string
	Position *int
	IsActive *bool
}

// ItemInput holds the payload to add a master item.
type ItemInput struct {
	CategoryID  uuid.UUID
	Name        string
	Slug        string
	Description *string
	Price       decimal.Decimal
	IsAvailable *bool
	ImageURL    *string
	Allergens   []string
	Tags        []string
	Position    int
}

// UpdateItemInput holds optional mutation values for a master item.
type UpdateItemInput struct {
	CategoryID  *uuid.UUID
	Name        *string
	Description *string
	Price       *decimal.Decimal
	IsAvailable *bool
	ImageURL    *string
	Allergens   *[]string
	Tags        *[]string
	Position    *int
}

// OfferInput holds the payload to create an offer.
type OfferInput struct {
	Name            string
	Description     *string
	DiscountPercent decimal.Decimal
	StartsAt        *time.Time
	EndsAt          *time.Time
	IsActive        *bool
}

// UpdateOfferInput holds optional mutation values for an offer.
type UpdateOfferInput struct {
	Name            *string
	Description     *string
	DiscountPercent *decimal.Decimal
	StartsAt        *time.Time
	EndsAt          *time.Time
	IsActive        *bool
}

type service struct {
	repo       *Repository
	dbClient   *db.Client
	versionSvc version.Service
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client, versionSvc version.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if versionSvc == nil {
		return nil, fmt.Errorf("version service required")
	}
	return &service{repo: repo, dbClient: dbClient, versionSvc: versionSvc}, nil
}

// CreateCatalog creates the catalog and its initial version in one
// transaction, so current_version is 1 from the first read.
func (s *service) CreateCatalog(ctx context.Context, userID uuid.UUID, input CreateCatalogInput) (*CatalogDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog name is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "USD"
	}

	var createdID uuid.UUID
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		row := &models.MasterCatalog{
			ID:          uuid.New(),
			FranchiseID: input.FranchiseID,
			Name:        name,
			Currency:    currency,
			Settings:    input.Settings,
		}
		created, err := txRepo.CreateCatalog(ctx, row)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert catalog")
		}
		createdID = created.ID

		_, err = s.versionSvc.CreateVersion(ctx, tx, version.CreateVersionInput{
			CatalogID:     created.ID,
			ChangeType:    enums.ChangeTypeInitial,
			ChangeSummary: "catalog created",
			CreatedBy:     userID,
		})
		return err
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create catalog")
	}

	return s.GetCatalog(ctx, createdID)
}

// GetCatalog loads one catalog by id.
func (s *service) GetCatalog(ctx context.Context, catalogID uuid.UUID) (*CatalogDTO, error) {
	row, err := s.repo.FindCatalog(ctx, catalogID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load catalog")
	}
	return newCatalogDTO(row), nil
}

// ListCatalogs lists a franchise's catalogs oldest-first.
func (s *service) ListCatalogs(ctx context.Context, franchiseID uuid.UUID) ([]CatalogDTO, error) {
	rows, err := s.repo.ListCatalogsByFranchise(ctx, franchiseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list catalogs")
	}
	out := make([]CatalogDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *newCatalogDTO(&rows[i]))
	}
	return out, nil
}

// AddCategory appends a category and bumps the catalog version.
func (s *service) AddCategory(ctx context.Context, userID, catalogID uuid.UUID, input CategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	slug := normalizeSlug(input.Slug, name)

	var created *models.MasterCategory
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		row := &models.MasterCategory{
			ID:        uuid.New(),
			CatalogID: catalogID,
			Name:      name,
			Slug:      slug,
			Position:  input.Position,
			IsActive:  true,
		}
		var err error
		created, err = txRepo.CreateCategory(ctx, row)
		if err != nil {
			if db.IsUniqueViolation(err, "ux_master_categories_catalog_slug") {
				return pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists in catalog")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert category")
		}

		_, err = s.versionSvc.CreateVersion(ctx, tx, version.CreateVersionInput{
			CatalogID:     catalogID,
			ChangeType:    enums.ChangeTypeCategoryAdded,
			ChangeSummary: fmt.Sprintf("category %q added", name),
			CreatedBy:     userID,
		})
		return err
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add category")
	}

	return newCategoryDTO(created), nil
}

// UpdateCategory mutates a category and bumps the catalog version.
func (s *service) UpdateCategory(ctx context.Context, userID, catalogID, categoryID uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error) {
	var updated *models.MasterCategory
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		row, err := txRepo.FindCategory(ctx, categoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
		}
		if row.CatalogID != catalogID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "category name cannot be empty")
			}
			row.Name = name
		}
		if input.Position != nil {
			row.Position = *input.Position
		}
		if input.IsActive != nil {
			row.IsActive = *input.IsActive
		}

		if err := txRepo.UpdateCategory(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update category")
		}
		updated = row

		_, err = s.versionSvc.CreateVersion(ctx, tx, version.CreateVersionInput{
			CatalogID:     catalogID,
			ChangeType:    enums.ChangeTypeCategoryUpdated,
			ChangeSummary: fmt.Sprintf("category %q updated", row.Name),
			CreatedBy:     userID,
		})
		return err
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}

	return newCategoryDTO(updated), nil
}

// RemoveCategory deletes a category and its items, then bumps the version.
func (s *service) RemoveCategory(ctx context.Context, userID, catalogID, categoryID uuid.UUID) error {
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		row, err := txRepo.FindCategory(ctx, categoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
		}
		if row.CatalogID != catalogID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}

		if err := txRepo.DeleteCategory(ctx, categoryID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete category")
		}

		_, err = s.versionSvc.CreateVersion(ctx, tx, version.CreateVersionInput{
			CatalogID:     catalogID,
			ChangeType:    enums.ChangeTypeCategoryRemoved,
			ChangeSummary: fmt.Sprintf("category %q removed", row.Name),
			CreatedBy:     userID,
		})
		return err
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove category")
	}
	return nil
}

// AddItem appends a master item and bumps the catalog version.
func (s *service) AddItem(ctx context.Context, userID, catalogID uuid.UUID, input ItemInput) (*ItemDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item price cannot be negative")
	}
	slug := normalizeSlug(input.Slug, name)

	var created *models.MasterItem
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cat, err := txRepo.FindCategory(ctx, input.CategoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
		}
		if cat.CatalogID != catalogID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}

		catalog, err := txRepo.FindCatalog(ctx, catalogID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load catalog")
		}

		available := true
		if input.IsAvailable != nil {
			available = *input.IsAvailable
		}
		row := &models.MasterItem{
			ID:          uuid.New(),
			CatalogID:   catalogID,
			CategoryID:  input.CategoryID,
			Name:        name,
			Slug:        slug,
			Description: input.Description,
			Price:       input.Price,
			Currency:    catalog.Currency,
			IsAvailable: available,
			ImageURL:    input.ImageURL,
			Allergens:   input.Allergens,
			Tags:        input.Tags,
			Position:    input.Position,
		}
		created, err = txRepo.CreateItem(ctx, row)
		if err != nil {
			if db.IsUniqueViolation(err, "ux_master_items_catalog_slug") {
				return pkgerrors.New(pkgerrors.CodeConflict, "item slug already exists in catalog")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert item")
		}

		_, err = s.versionSvc.CreateVersion(ctx, tx, version.CreateVersionInput{
			CatalogID:     catalogID,
			ChangeType:    enums.ChangeTypeItemAdded,
			ChangeSummary: fmt.Sprintf("item %q added", name),
			CreatedBy:     userID,
		})
		return err
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add item")
	}

	return newItemDTO(created), nil
}

// UpdateItem mutates a master item. A change touching only the price is
// recorded as price_changed so branches can filter the history.
func (s *service) UpdateItem(ctx context.Context, userID, catalogID, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	if input.Price != nil && input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item price cannot be negative")
	}

	var updated *models.MasterItem
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		row, err := txRepo.FindItem(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load item")
		}
		if row.CatalogID != catalogID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}

		priceChanged := false
		otherChanged := false

		if input.CategoryID != nil && *input.CategoryID != row.CategoryID {
			cat, err := txRepo.FindCategory(ctx, *input.CategoryID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "target category not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load target category")
			}
			if cat.CatalogID != catalogID {
				return pkgerrors.New(pkgerrors.CodeNotFound, "target category not found")
			}
			row.CategoryID = *input.CategoryID
			otherChanged = true
		}
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "item name cannot be empty")
			}
			if name != row.Name {
				row.Name = name
				otherChanged = true
			}
		}
		if input.Description != nil {
			row.Description = input.Description
			otherChanged = true
		}
		if input.Price != nil && !input.Price.Equal(row.Price) {
			row.Price = *input.Price
			priceChanged = true
		}
		if input.IsAvailable != nil && *input.IsAvailable != row.IsAvailable {
			row.IsAvailable = *input.IsAvailable
			otherChanged = true
		}
		if input.ImageURL != nil {
			row.ImageURL = input.ImageURL
			otherChanged = true
		}
		if input.Allergens != nil {
			row.Allergens = *input.Allergens
			otherChanged = true
		}
		if input.Tags != nil {
			row.Tags = *input.Tags
			otherChanged = true
		}
		if input.Position != nil && *input.Position != row.Position {
			row.Position = *input.Position
			otherChanged = true
		}

		if !priceChanged && !otherChanged {
			return pkgerrors.New(pkgerrors.CodeValidation, "update contains no changes")
		}

		if err := txRepo.UpdateItem(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update item")
		}
		updated = row

		changeType := enums.ChangeTypeItemUpdated
		if priceChanged && !otherChanged {
			changeType = enums.ChangeTypePriceChanged
		}
		_, err = s.versionSvc.CreateVersion(ctx, tx, version.CreateVersionInput{
			CatalogID:     catalogID,
			ChangeType:    changeType,
			ChangeSummary: fmt.Sprintf("item %q updated", row.Name),
			CreatedBy:     userID,
		})
		return err
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
	}

	return newItemDTO(updated), nil
}

// RemoveItem deletes a master item and bumps the catalog version.
func (s *service) RemoveItem(ctx context.Context, userID, catalogID, itemID uuid.UUID) error {
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		row, err := txRepo.FindItem(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load item")
		}
		if row.CatalogID != catalogID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}

		if err := txRepo.DeleteItem(ctx, itemID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete item")
		}

		_, err = s.versionSvc.CreateVersion(ctx, tx, version.CreateVersionInput{
			CatalogID:     catalogID,
			ChangeType:    enums.ChangeTypeItemRemoved,
			ChangeSummary: fmt.Sprintf("item %q removed", row.Name),
			CreatedBy:     userID,
		})
		return err
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove item")
	}
	return nil
}

// CreateOffer adds a catalog offer and bumps the version.
func (s *service) CreateOffer(ctx context.Context, userID, catalogID uuid.UUID, input OfferInput) (*OfferDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer name is required")
	}
	if err := validateDiscountPercent(input.DiscountPercent); err != nil {
		return nil, err
	}
	if input.StartsAt != nil && input.EndsAt != nil && input.EndsAt.Before(*input.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer cannot end before it starts")
	}

	var created *models.MasterOffer
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if _, err := txRepo.FindCatalog(ctx, catalogID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "catalog not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load catalog")
		}

		active := true
		if input.IsActive != nil {
			active = *input.IsActive
		}
		row := &models.MasterOffer{
			ID:              uuid.New(),
			CatalogID:       catalogID,
			Name:            name,
			Description:     input.Description,
			DiscountPercent: input.DiscountPercent,
			StartsAt:        input.StartsAt,
			EndsAt:          input.EndsAt,
			IsActive:        active,
		}
		var err error
		created, err = txRepo.CreateOffer(ctx, row)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert offer")
		}

		_, err = s.versionSvc.CreateVersion(ctx, tx, version.CreateVersionInput{
			CatalogID:     catalogID,
			ChangeType:    enums.ChangeTypeOfferChanged,
			ChangeSummary: fmt.Sprintf("offer %q created", name),
			CreatedBy:     userID,
		})
		return err
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create offer")
	}

	return newOfferDTO(created), nil
}

// UpdateOffer mutates an offer and bumps the version.
func (s *service) UpdateOffer(ctx context.Context, userID, catalogID, offerID uuid.UUID, input UpdateOfferInput) (*OfferDTO, error) {
	if input.DiscountPercent != nil {
		if err := validateDiscountPercent(*input.DiscountPercent); err != nil {
			return nil, err
		}
	}

	var updated *models.MasterOffer
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		row, err := txRepo.FindOffer(ctx, offerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load offer")
		}
		if row.CatalogID != catalogID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "offer name cannot be empty")
			}
			row.Name = name
		}
		if input.Description != nil {
			row.Description = input.Description
		}
		if input.DiscountPercent != nil {
			row.DiscountPercent = *input.DiscountPercent
		}
		if input.StartsAt != nil {
			row.StartsAt = input.StartsAt
		}
		if input.EndsAt != nil {
			row.EndsAt = input.EndsAt
		}
		if input.IsActive != nil {
			row.IsActive = *input.IsActive
		}
		if row.StartsAt != nil && row.EndsAt != nil && row.EndsAt.Before(*row.StartsAt) {
			return pkgerrors.New(pkgerrors.CodeValidation, "offer cannot end before it starts")
		}

		if err := txRepo.UpdateOffer(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update offer")
		}
		updated = row

		_, err = s.versionSvc.CreateVersion(ctx, tx, version.CreateVersionInput{
			CatalogID:     catalogID,
			ChangeType:    enums.ChangeTypeOfferChanged,
			ChangeSummary: fmt.Sprintf("offer %q updated", row.Name),
			CreatedBy:     userID,
		})
		return err
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update offer")
	}

	return newOfferDTO(updated), nil
}

// DeleteOffer removes an offer and bumps the version.
func (s *service) DeleteOffer(ctx context.Context, userID, catalogID, offerID uuid.UUID) error {
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		row, err := txRepo.FindOffer(ctx, offerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load offer")
		}
		if row.CatalogID != catalogID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}

		if err := txRepo.DeleteOffer(ctx, offerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete offer")
		}

		_, err = s.versionSvc.CreateVersion(ctx, tx, version.CreateVersionInput{
			CatalogID:     catalogID,
			ChangeType:    enums.ChangeTypeOfferChanged,
			ChangeSummary: fmt.Sprintf("offer %q deleted", row.Name),
			CreatedBy:     userID,
		})
		return err
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete offer")
	}
	return nil
}

func validateDiscountPercent(v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 0 and 100")
	}
	return nil
}

func normalizeSlug(slug, name string) string {
	s := strings.TrimSpace(strings.ToLower(slug))
	if s == "" {
		s = strings.ToLower(name)
	}
	s = strings.ReplaceAll(s, " ", "-")
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}
