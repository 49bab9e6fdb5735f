// Package models contains the persistence models for the application,
// configured to work using GORM as the ORM.
package models

import (
	"time"

	domain "github.com/gartstein/companies/internal/company/models"
	"github.com/gartstein/companies/internal/company/query"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company represents a company row in the database.
// It uses a UUID as the primary key, assigned on insert, and soft deletes.
// Filters run against the *_lower columns, which hold query.Fold of the
// column they shadow; the database's LOWER is ASCII-only on SQLite.
type Company struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"size:255;not null;index"`
	Industry    string    `gorm:"size:255;not null;index"`
	Location    string    `gorm:"size:255;not null;index"`
	Size        string    `gorm:"size:32;not null;index"`
	Description string    `gorm:"size:3000;not null"`
	Founded     int       `gorm:"not null;check:founded >= 1900"`
	Website     string    `gorm:"size:2048"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	NameLower     string `gorm:"column:name_lower;size:255;not null;default:'';index"`
	IndustryLower string `gorm:"column:industry_lower;size:255;not null;default:'';index"`
	LocationLower string `gorm:"column:location_lower;size:255;not null;default:'';index"`
	SizeLower     string `gorm:"column:size_lower;size:32;not null;default:'';index"`
}

// TableName pins the table name independent of GORM's pluralizer.
func (Company) TableName() string {
	return "companies"
}

// BeforeCreate assigns the store-owned identifier.
func (c *Company) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps the folded columns in step on Create and Save. Map
// updates bypass the model, so they add Folded themselves.
func (c *Company) BeforeSave(_ *gorm.DB) error {
	c.NameLower = query.Fold(c.Name)
	c.IndustryLower = query.Fold(c.Industry)
	c.LocationLower = query.Fold(c.Location)
	c.SizeLower = query.Fold(c.Size)
	return nil
}

// Folded returns the folded columns for c's current values, keyed by column.
func (c *Company) Folded() map[string]interface{} {
	return map[string]interface{}{
		"name_lower":     query.Fold(c.Name),
		"industry_lower": query.Fold(c.Industry),
		"location_lower": query.Fold(c.Location),
		"size_lower":     query.Fold(c.Size),
	}
}

// FromDomain builds a row from the domain model.
func FromDomain(c *domain.Company) *Company {
	return &Company{
		ID:          c.ID,
		Name:        c.Name,
		Industry:    c.Industry,
		Location:    c.Location,
		Size:        c.Size,
		Description: c.Description,
		Founded:     c.Founded,
		Website:     c.Website,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToDomain converts the row to the domain model.
func (c *Company) ToDomain() *domain.Company {
	return &domain.Company{
		ID:          c.ID,
		Name:        c.Name,
		Industry:    c.Industry,
		Location:    c.Location,
		Size:        c.Size,
		Description: c.Description,
		Founded:     c.Founded,
		Website:     c.Website,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
