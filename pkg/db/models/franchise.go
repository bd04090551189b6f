package models

import (
	"time"

	"github.com/google/uuid"
)

// Franchise is the tenant that owns master catalogs. Identity and
// membership live in the accounts service; this row carries only what the
// sync engine needs for FKs and reporting.
type Franchise struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Currency  string    `gorm:"column:currency;not null;default:'USD'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
