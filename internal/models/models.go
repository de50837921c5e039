package models

import "time"

// DataStatus is the import lifecycle phase of an activated profile, as
// reported by the AdPilot backend.
type DataStatus string

const (
	StatusNotActivated DataStatus = "not_activated"
	StatusPending      DataStatus = "pending"
	StatusRetrieving   DataStatus = "retrieving"
	StatusImporting    DataStatus = "importing"
	StatusReady        DataStatus = "ready"
	StatusError        DataStatus = "error"
)

// Profile is one Amazon Advertising account-region pairing. Number is
// assigned per listing response for human-friendly reference and is not a
// durable key; re-fetch the listing before trusting an old number.
type Profile struct {
	Number           int        `json:"number"`
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Region           string     `json:"region"`
	MCPActivated     bool       `json:"mcp_activated"`
	MCPDataStatus    DataStatus `json:"mcp_data_status"`
	IsReady          bool       `json:"is_ready"`
	EstimatedMinutes *int       `json:"estimated_minutes,omitempty"`
}

// ProfileList is the response of GET /v1/mcp/profiles.
type ProfileList struct {
	Profiles []Profile `json:"profiles"`
	Count    int       `json:"count"`
}

// ActivationResult is the response of POST /v1/mcp/profiles/activate.
type ActivationResult struct {
	ProfileID        string     `json:"profile_id"`
	Status           DataStatus `json:"status"`
	EstimatedMinutes *int       `json:"estimated_minutes,omitempty"`
}

// ImportProgress carries the optional counters reported while an import is
// running.
type ImportProgress struct {
	UniqueDates     int     `json:"unique_dates"`
	ExpectedDays    int     `json:"expected_days"`
	ProgressPercent float64 `json:"progress_percent"`
}

// ProfileStatus is the response of GET /v1/mcp/profiles/{id}/status.
type ProfileStatus struct {
	Available        bool            `json:"available"`
	Reason           string          `json:"reason,omitempty"`
	Message          string          `json:"message,omitempty"`
	EstimatedMinutes *int            `json:"estimated_minutes,omitempty"`
	ImportProgress   *ImportProgress `json:"import_progress,omitempty"`
}

// DeactivationResult is the response of POST /v1/mcp/profiles/deactivate.
type DeactivationResult struct {
	Message string `json:"message"`
}

// Campaign is an advertising campaign. The backend owns these; the CLI only
// formats them.
type Campaign struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	State       string  `json:"state"`
	Type        string  `json:"type,omitempty"`
	DailyBudget float64 `json:"daily_budget,omitempty"`
	StartDate   string  `json:"start_date,omitempty"`
}

// Keyword is a campaign keyword.
type Keyword struct {
	ID         string  `json:"id"`
	CampaignID string  `json:"campaign_id"`
	Text       string  `json:"keyword_text"`
	MatchType  string  `json:"match_type"`
	State      string  `json:"state"`
	Bid        float64 `json:"bid"`
}

// PerformanceRow is one day of aggregated metrics.
type PerformanceRow struct {
	Date        string  `json:"date"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Spend       float64 `json:"spend"`
	Sales       float64 `json:"sales"`
	Orders      int64   `json:"orders"`
	ACOS        float64 `json:"acos"`
}

// PerformanceReport is the response of GET /v1/mcp/profiles/{id}/performance.
type PerformanceReport struct {
	ProfileID string           `json:"profile_id"`
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	Rows      []PerformanceRow `json:"rows"`
}

// WorkingContext is the locally persisted "currently selected profile"
// record. It is written only by an explicit selection and is never
// re-validated against the backend on read, so it can go stale if the
// profile is deactivated elsewhere.
type WorkingContext struct {
	ProfileID     string    `json:"profile_id"`
	ProfileNumber int       `json:"profile_number"`
	ProfileName   string    `json:"profile_name"`
	Region        string    `json:"region"`
	SetAt         time.Time `json:"set_at"`
}
