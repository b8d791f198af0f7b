package externalmapping

import (
	"database/sql"

	"github.com/Ramsey-B/stem/pkg/database"

	"github.com/Ramsey-B/fern/pkg/models"
)

const mappingsTable = "external_mappings"

// MappingRow represents the database row for an external mapping
type MappingRow struct {
	ID         sql.NullString                 `db:"id"`
	PartnerID  sql.NullString                 `db:"partner_id"`
	Source     sql.NullString                 `db:"source"`
	ExternalID sql.NullString                 `db:"external_id"`
	Metadata   database.JSONB[map[string]any] `db:"metadata"`
	CreatedAt  sql.NullTime                   `db:"created_at"`
	UpdatedAt  sql.NullTime                   `db:"updated_at"`
}

var mappingStruct = database.NewStruct(new(MappingRow))

// FromMapping converts a domain model to a database row
func FromMapping(m *models.ExternalMapping) *MappingRow {
	return &MappingRow{
		ID:         sql.NullString{String: m.ID, Valid: m.ID != ""},
		PartnerID:  sql.NullString{String: m.PartnerID, Valid: m.PartnerID != ""},
		Source:     sql.NullString{String: string(m.Source), Valid: m.Source != ""},
		ExternalID: sql.NullString{String: m.ExternalID, Valid: m.ExternalID != ""},
		Metadata:   database.JSONB[map[string]any]{Data: m.Metadata},
		CreatedAt:  sql.NullTime{Time: m.CreatedAt, Valid: !m.CreatedAt.IsZero()},
		UpdatedAt:  sql.NullTime{Time: m.UpdatedAt, Valid: !m.UpdatedAt.IsZero()},
	}
}

// ToMapping converts a database row to a domain model
func ToMapping(row *MappingRow) *models.ExternalMapping {
	return &models.ExternalMapping{
		ID:         row.ID.String,
		PartnerID:  row.PartnerID.String,
		Source:     models.MappingSource(row.Source.String),
		ExternalID: row.ExternalID.String,
		Metadata:   row.Metadata.Data,
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
	}
}

// ToMappings converts a slice of database rows to domain models
func ToMappings(rows []MappingRow) []models.ExternalMapping {
	mappings := make([]models.ExternalMapping, len(rows))
	for i, row := range rows {
		mappings[i] = *ToMapping(&row)
	}
	return mappings
}
