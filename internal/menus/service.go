package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tableloop/menusync-backend/pkg/db/models"
	pkgerrors "github.com/tableloop/menusync-backend/pkg/errors"
	"github.com/tableloop/menusync-backend/pkg/logger"
)

// Service renders the customer-facing menu for a location. Override
// price and availability win over the stored branch values, so a manager
// edit shows up immediately even if the branch has not synced since.
type Service interface {
	GetPublicMenu(ctx context.Context, locationSlug string) (*PublicMenuDTO, error)
}

// PublicMenuDTO is the full effective menu for one location.
type PublicMenuDTO struct {
	Location PublicLocationDTO `json:"location"`
	Menus    []PublicMenuView  `json:"menus"`
}

type PublicLocationDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Timezone string    `json:"timezone"`
}

type PublicMenuView struct {
	ID         uuid.UUID           `json:"id"`
	Name       string              `json:"name"`
	Categories []PublicCategoryDTO `json:"categories"`
}

type PublicCategoryDTO struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Position int             `json:"position"`
	Items    []PublicItemDTO `json:"items"`
}

type PublicItemDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	Price       string    `json:"price"`
	Currency    string    `json:"currency"`
	IsAvailable bool      `json:"is_available"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Allergens   []string  `json:"allergens,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Position    int       `json:"position"`
}

type overrideReader interface {
	MapByItem(ctx context.Context, linkID uuid.UUID) (map[uuid.UUID]models.BranchOverride, error)
}

type service struct {
	repo      *Repository
	overrides overrideReader
	logg      *logger.Logger
}

// NewService constructs the public menu resolver.
func NewService(repo *Repository, overrides overrideReader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("menu repository required")
	}
	if overrides == nil {
		return nil, fmt.Errorf("override reader required")
	}
	return &service{repo: repo, overrides: overrides, logg: logg}, nil
}

func (s *service) GetPublicMenu(ctx context.Context, locationSlug string) (*PublicMenuDTO, error) {
	if locationSlug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location slug required")
	}

	location, err := s.repo.FindLocationBySlug(ctx, locationSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load location")
	}
	if !location.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
	}

	menus, err := s.repo.ListActiveMenus(ctx, location.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list menus")
	}

	out := &PublicMenuDTO{
		Location: PublicLocationDTO{
			ID:       location.ID,
			Name:     location.Name,
			Slug:     location.Slug,
			Timezone: location.Timezone,
		},
		Menus: make([]PublicMenuView, 0, len(menus)),
	}

	for i := range menus {
		view, err := s.renderMenu(ctx, &menus[i])
		if err != nil {
			return nil, err
		}
		out.Menus = append(out.Menus, *view)
	}
	return out, nil
}

func (s *service) renderMenu(ctx context.Context, menu *models.BranchMenu) (*PublicMenuView, error) {
	categories, err := s.repo.ListActiveCategories(ctx, menu.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}
	items, err := s.repo.ListItems(ctx, menu.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list items")
	}

	overrides := map[uuid.UUID]models.BranchOverride{}
	link, err := s.repo.FindLinkByMenu(ctx, menu.ID)
	switch {
	case err == nil:
		overrides, err = s.overrides.MapByItem(ctx, link.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load overrides")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// standalone menu, nothing to merge
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sync link")
	}

	itemsByCategory := map[uuid.UUID][]PublicItemDTO{}
	for i := range items {
		row := &items[i]
		itemsByCategory[row.CategoryID] = append(itemsByCategory[row.CategoryID], effectiveItem(row, overrides))
	}

	view := &PublicMenuView{
		ID:         menu.ID,
		Name:       menu.Name,
		Categories: make([]PublicCategoryDTO, 0, len(categories)),
	}
	for i := range categories {
		cat := &categories[i]
		view.Categories = append(view.Categories, PublicCategoryDTO{
			ID:       cat.ID,
			Name:     cat.Name,
			Slug:     cat.Slug,
			Position: cat.Position,
			Items:    itemsByCategory[cat.ID],
		})
	}
	return view, nil
}

// effectiveItem layers the branch's override on top of the stored row.
func effectiveItem(row *models.BranchItem, overrides map[uuid.UUID]models.BranchOverride) PublicItemDTO {
	price := row.Price
	available := row.IsAvailable
	if row.MasterItemID != nil {
		if ov, ok := overrides[*row.MasterItemID]; ok {
			if ov.PriceOverride != nil {
				price = *ov.PriceOverride
			}
			if ov.AvailabilityOverride != nil {
				available = *ov.AvailabilityOverride
			}
		}
	}
	return PublicItemDTO{
		ID:          row.ID,
		Name:        row.Name,
		Slug:        row.Slug,
		Description: row.Description,
		Price:       price.StringFixed(2),
		Currency:    row.Currency,
		IsAvailable: available,
		ImageURL:    row.ImageURL,
		Allergens:   row.Allergens,
		Tags:        row.Tags,
		Position:    row.Position,
	}
}
