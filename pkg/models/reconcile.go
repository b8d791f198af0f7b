package models

// MatchType indicates which matcher tier produced a match
type MatchType string

const (
	MatchTypeExact      MatchType = "exact"      // exact normalized name match
	MatchTypeNormalized MatchType = "normalized" // compact/canonical/fuzzy tiers
)

// SuggestionStatus is the classification outcome for one input row
type SuggestionStatus string

const (
	SuggestionStatusMissingData     SuggestionStatus = "missing_data"
	SuggestionStatusAmbiguous       SuggestionStatus = "ambiguous_partner"
	SuggestionStatusPartnerNotFound SuggestionStatus = "partner_not_found"
	SuggestionStatusClientConflict  SuggestionStatus = "client_conflict"
	SuggestionStatusAlreadyMapped   SuggestionStatus = "already_mapped"
	SuggestionStatusReady           SuggestionStatus = "ready"
)

// Apply outcomes, only reachable from ready
const (
	SuggestionStatusInserted SuggestionStatus = "inserted"
	SuggestionStatusUpdated  SuggestionStatus = "updated"
	SuggestionStatusSkipped  SuggestionStatus = "skipped"
	SuggestionStatusConflict SuggestionStatus = "conflict"
)

// InputRow is one resolved row from a reference source. Column
// resolution (header matching, fuzzy header hints) is the reader's
// responsibility; the engine only consumes resolved rows.
type InputRow struct {
	RowNumber  int    `json:"row_number"`
	Brand      string `json:"brand"`
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name,omitempty"`
}

// ColumnMap records which sheet columns supplied each field
type ColumnMap struct {
	ClientID   string `json:"client_id"`
	Brand      string `json:"brand"`
	ClientName string `json:"client_name,omitempty"`
}

// SheetData is the reader's output for one reconciliation run
type SheetData struct {
	SpreadsheetID  string     `json:"spreadsheet_id,omitempty"`
	Title          string     `json:"title,omitempty"`
	SelectedTab    string     `json:"selected_tab,omitempty"`
	HeaderRowIndex int        `json:"header_row_index,omitempty"`
	ColumnMap      ColumnMap  `json:"column_map"`
	Rows           []InputRow `json:"rows"`
}

// SheetMeta describes the sheet a run was computed from
type SheetMeta struct {
	SpreadsheetID string `json:"spreadsheet_id,omitempty"`
	Title         string `json:"title,omitempty"`
	SelectedTab   string `json:"selected_tab,omitempty"`
	RowCount      int    `json:"row_count"`
}

// MatchResult is the matcher's decision for one brand name
type MatchResult struct {
	Partner   *Partner
	MatchType MatchType
	Ambiguous bool
}

// Suggestion is the classified per-row output of one reconciliation
// run. Never persisted; the ready subset drives mapping writes.
type Suggestion struct {
	RowNumber          int              `json:"row_number"`
	Brand              string           `json:"brand"`
	ClientID           string           `json:"client_id"`
	ClientName         string           `json:"client_name,omitempty"`
	MatchedPartnerID   string           `json:"matched_partner_id,omitempty"`
	MatchedPartnerName string           `json:"matched_partner_name,omitempty"`
	MatchType          MatchType        `json:"match_type,omitempty"`
	Status             SuggestionStatus `json:"status"`
	CurrentMappingID   string           `json:"current_mapping_id,omitempty"`
	CurrentExternalID  string           `json:"current_external_id,omitempty"`
	ConflictPartner    string           `json:"conflicting_partner_name,omitempty"`
}

// PreviewResult is the output of a classification-only run
type PreviewResult struct {
	SheetMeta   SheetMeta                `json:"sheet_meta"`
	Summary     map[SuggestionStatus]int `json:"summary"`
	Suggestions []Suggestion             `json:"suggestions"`
}

// ApplyResult extends a preview with write outcomes
type ApplyResult struct {
	PreviewResult
	Applied   int  `json:"applied"`
	Inserted  int  `json:"inserted"`
	Updated   int  `json:"updated"`
	Skipped   int  `json:"skipped"`
	Conflicts int  `json:"conflicts"`
	DryRun    bool `json:"dry_run"`
}
