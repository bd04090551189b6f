package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is one branch restaurant belonging to a franchise.
type Location struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FranchiseID uuid.UUID `gorm:"column:franchise_id;type:uuid;not null"`
	Name        string    `gorm:"column:name;not null"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex"`
	Timezone    string    `gorm:"column:timezone;not null;default:'UTC'"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
