package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/tableloop/menusync-backend/pkg/errors"
)

const failureWindow = 24 * time.Hour

// Service builds the franchise sync dashboard.
type Service interface {
	GetFranchiseDashboard(ctx context.Context, franchiseID uuid.UUID) (*DashboardDTO, error)
}

// DashboardDTO is the franchise-wide sync posture.
type DashboardDTO struct {
	FranchiseID      uuid.UUID           `json:"franchise_id"`
	FranchiseName    string              `json:"franchise_name"`
	Catalogs         []CatalogSummaryDTO `json:"catalogs"`
	TotalBranches    int                 `json:"total_branches"`
	PendingBranches  int                 `json:"pending_branches"`
	FailedSyncs24h   int64               `json:"failed_syncs_24h"`
	GeneratedAt      time.Time           `json:"generated_at"`
}

type CatalogSummaryDTO struct {
	CatalogID        uuid.UUID `json:"catalog_id"`
	CatalogName      string    `json:"catalog_name"`
	CurrentVersion   int64     `json:"current_version"`
	TotalBranches    int       `json:"total_branches"`
	SyncedBranches   int       `json:"synced_branches"`
	PendingBranches  int       `json:"pending_branches"`
	AutoBranches     int       `json:"auto_branches"`
	DisabledBranches int       `json:"disabled_branches"`
}

type service struct {
	repo *Repository
}

// NewService constructs the dashboard service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetFranchiseDashboard(ctx context.Context, franchiseID uuid.UUID) (*DashboardDTO, error) {
	franchise, err := s.repo.FindFranchise(ctx, franchiseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "franchise not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load franchise")
	}

	rows, err := s.repo.CatalogSummaries(ctx, franchiseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: catalog summaries")
	}

	now := time.Now()
	failed, err := s.repo.CountFailedSyncsSince(ctx, franchiseID, now.Add(-failureWindow))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count failed syncs")
	}

	out := &DashboardDTO{
		FranchiseID:    franchise.ID,
		FranchiseName:  franchise.Name,
		Catalogs:       make([]CatalogSummaryDTO, 0, len(rows)),
		FailedSyncs24h: failed,
		GeneratedAt:    now,
	}
	for _, row := range rows {
		out.Catalogs = append(out.Catalogs, CatalogSummaryDTO(row))
		out.TotalBranches += row.TotalBranches
		out.PendingBranches += row.PendingBranches
	}
	return out, nil
}
