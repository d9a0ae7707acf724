package internal

import "time"

// RunRecord is a completed refinement run as kept in the run history.
type RunRecord struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	Mode           string    `json:"mode"`
	Language       string    `json:"language"`
	OriginalText   string    `json:"original_text"`
	FinalText      string    `json:"final_text"`
	Passes         int       `json:"passes"`
	Outcome        string    `json:"outcome"`
	StopReason     string    `json:"stop_reason"`
	InitialQuality float64   `json:"initial_quality"`
	FinalQuality   float64   `json:"final_quality"`
	Report         []byte    `json:"-"`
	Timestamp      time.Time `json:"timestamp"`
}
