package model

import "time"

// CheckResult is the outcome of one successful fact check
type CheckResult struct {
	ID        string    `json:"id"`         // Per-check identifier, also used on log lines
	Claim     string    `json:"claim"`      // Normalised claim that was sent
	CheckedAt time.Time `json:"checked_at"` // When the check finished

	Verdict   Verdict    `json:"verdict"`             // Yes/No keyword verdict
	Text      string     `json:"text"`                // Model answer without citations
	Citations []Citation `json:"citations,omitempty"` // Grounding sources in API order

	FullResponse string `json:"full_response"` // Text plus rendered citation list (history Response column)
	Markdown     string `json:"markdown"`      // FullResponse prefixed with the bolded verdict

	Provider string `json:"provider"`         // Backend that produced the answer
	Model    string `json:"model"`            // Model name
	Cached   bool   `json:"cached,omitempty"` // Served from the response cache

	HistoryPath string `json:"history_path"` // Location of the history record that received this row

	SourceChecks []LinkStatus `json:"source_checks,omitempty"` // Per-citation link probes, when enabled
}

// HistoryEntry is one row of the history record
type HistoryEntry struct {
	Status   Verdict `json:"status"`
	Response string  `json:"response"`
}

// HistoryHeader is the header row written once when the record is created
var HistoryHeader = []string{"Status", "Response"}
