package models

import "time"

// Partner is a canonical partner record in the agency registry.
// Brand names are human-entered and inconsistent; the reconcile
// package owns all matching against them.
type Partner struct {
	ID        string     `json:"id" db:"id"`
	BrandName string     `json:"brand_name" db:"brand_name"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// CreatePartnerRequest is the request to create a partner
type CreatePartnerRequest struct {
	BrandName string `json:"brand_name" validate:"required"`
}

// UpdatePartnerRequest is the request to update a partner
type UpdatePartnerRequest struct {
	BrandName *string `json:"brand_name,omitempty"`
}
