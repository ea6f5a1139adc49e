package scan

import (
	"fmt"
	"time"
)

// Stats accumulates run-wide counters and processing errors. It is passed
// by reference through the pipeline stages; each stage writes only its own
// counters, and the whole run is single-threaded, so no locking is needed.
type Stats struct {
	RunID      string `json:"runId"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt"`

	WorkspacesSelected int `json:"workspacesSelected"`
	BatchesSucceeded   int `json:"batchesSucceeded"`
	BatchesFailed      int `json:"batchesFailed"`

	Workspaces         int `json:"workspaces"`
	Reports            int `json:"reports"`
	Datasets           int `json:"datasets"`
	DatasetsWithSchema int `json:"datasetsWithSchema"`
	Tables             int `json:"tables"`
	Columns            int `json:"columns"`
	Measures           int `json:"measures"`
	Datasources        int `json:"datasources"`
	LineageEdges       int `json:"lineageEdges"`

	RefreshHistoryHits    int `json:"refreshHistoryHits"`
	RefreshHistoryEmpty   int `json:"refreshHistoryEmpty"`
	RefreshNotSupported   int `json:"refreshNotSupported"`
	RefreshLookupErrors   int `json:"refreshLookupErrors"`
	RefreshHistoryEntries int `json:"refreshHistoryEntries"`

	Errors []string `json:"errors"`
}

// NewStats creates a stats accumulator for one run.
func NewStats(runID string, started time.Time) *Stats {
	return &Stats{
		RunID:     runID,
		StartedAt: started.UTC().Format(time.RFC3339),
		Errors:    []string{},
	}
}

// AddError appends one processing-error string. Order of arrival is kept.
func (s *Stats) AddError(format string, args ...any) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

// Finish stamps the end of the run.
func (s *Stats) Finish(finished time.Time) {
	s.FinishedAt = finished.UTC().Format(time.RFC3339)
}
