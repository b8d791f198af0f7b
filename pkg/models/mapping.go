package models

import "time"

// MappingSource identifies where an external identifier came from
type MappingSource string

const (
	MappingSourceReferenceSheet MappingSource = "reference_sheet" // agency reference spreadsheet
	MappingSourceWarehouse      MappingSource = "warehouse"       // analytics warehouse client accounts
)

// ExternalMapping binds an external identifier to a partner.
// The store enforces uniqueness on (source, external_id); the engine
// keeps (partner_id, source) logically one-to-one by updating the
// most recently modified row instead of inserting a second one.
type ExternalMapping struct {
	ID         string         `json:"id" db:"id"`
	PartnerID  string         `json:"partner_id" db:"partner_id"`
	Source     MappingSource  `json:"source" db:"source"`
	ExternalID string         `json:"external_id" db:"external_id"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// ReferenceContext is the metadata block the synchronizer records on
// every write. It is overwritten per sync; all other metadata keys
// are preserved.
type ReferenceContext struct {
	RowNumber   int    `json:"row_number"`
	Brand       string `json:"brand"`
	ClientID    string `json:"client_id"`
	ClientName  string `json:"client_name,omitempty"`
	Marketplace string `json:"marketplace,omitempty"`
	SyncedAt    string `json:"synced_at"`
}

// ReferenceContextKey is the metadata key holding the ReferenceContext block
const ReferenceContextKey = "reference_context"
