// Package models defines the core domain models for the Company entity.
// It includes definitions for Company, CompanyInput, CompanyPage and the
// suggested categorical values offered to clients.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Company defines the domain model for a company entity.
type Company struct {
	// ID is the unique identifier for the company, assigned by the store.
	ID uuid.UUID `json:"id" yaml:"id"`
	// Name is the company’s name.
	Name string `json:"name" yaml:"name"`
	// Industry is the sector the company operates in.
	Industry string `json:"industry" yaml:"industry"`
	// Location is where the company is based.
	Location string `json:"location" yaml:"location"`
	// Size is the employee head-count bracket, e.g. "11-50".
	Size string `json:"size" yaml:"size"`
	// Description provides details about the company.
	Description string `json:"description" yaml:"description"`
	// Founded is the year the company was founded.
	Founded int `json:"founded" yaml:"founded"`
	// Website is the optional company homepage.
	Website string `json:"website" yaml:"website"`
	// CreatedAt records the timestamp when the company was created.
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	// UpdatedAt records the timestamp when the company was last updated.
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// CompanyInput carries the mutable fields of a Company. It is the payload of
// both create and update; an update replaces every field.
type CompanyInput struct {
	Name        string `json:"name" validate:"required"`
	Industry    string `json:"industry" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Size        string `json:"size" validate:"required"`
	Description string `json:"description" validate:"required"`
	Founded     int    `json:"founded" validate:"required,min=1900,notfuture"`
	Website     string `json:"website"`
}

// CompanyUpdate identifies the company to replace and its new field values.
type CompanyUpdate struct {
	// ID is the unique identifier for the company to update.
	ID uuid.UUID
	// Input holds the replacement values.
	Input CompanyInput
}

// Input returns the mutable fields of c.
func (c *Company) Input() CompanyInput {
	return CompanyInput{
		Name:        c.Name,
		Industry:    c.Industry,
		Location:    c.Location,
		Size:        c.Size,
		Description: c.Description,
		Founded:     c.Founded,
		Website:     c.Website,
	}
}

// Apply copies the mutable fields of in onto c.
func (c *Company) Apply(in CompanyInput) {
	c.Name = in.Name
	c.Industry = in.Industry
	c.Location = in.Location
	c.Size = in.Size
	c.Description = in.Description
	c.Founded = in.Founded
	c.Website = in.Website
}

// CompanyPage is one page of a filtered, sorted company listing.
type CompanyPage struct {
	Items      []Company `json:"items"`
	TotalCount int       `json:"totalCount"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
}
