package api

import "fmt"

// APIError is a hard failure from the AdPilot backend: a non-2xx status or
// a response envelope with success=false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// NotReadyError reports the distinguished "data not ready" envelope: the
// requested profile's import has not finished yet. It is a try-later
// condition, not a hard failure, and callers must render it as such.
type NotReadyError struct {
	Message          string
	EstimatedMinutes *int
}

func (e *NotReadyError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "data not ready"
}

// Hint returns user-facing text carrying the completion estimate when the
// backend supplied one.
func (e *NotReadyError) Hint() string {
	if e.EstimatedMinutes != nil {
		return fmt.Sprintf("⏳ Data import is still in progress. Try again in about %d minutes.", *e.EstimatedMinutes)
	}
	return "⏳ Data import is still in progress. Try again later."
}
