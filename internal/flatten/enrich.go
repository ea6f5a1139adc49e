package flatten

import (
	"context"
	"log"
	"time"

	"github.com/ventilios/tenantscan/internal/admin"
	"github.com/ventilios/tenantscan/internal/scan"
)

// Refresh-history outcome per dataset. Exactly one applies. Callers must
// not conflate NotSupported with Error: a lakehouse, warehouse, or dataflow
// backed dataset answering not-found is an expected absence, not a failure.
const (
	OutcomeHasHistory   = "HasRefreshHistory"
	OutcomeNoHistory    = "NoHistory"
	OutcomeNotSupported = "NotSupported"
	OutcomeError        = "Error"
)

// Lookup depths: one entry for the inline dataset summary, five for the
// detailed history export.
const (
	summaryTop = 1
	detailTop  = 5
)

// RefreshReader is the slice of the admin gateway enrichment needs.
type RefreshReader interface {
	RefreshHistory(ctx context.Context, workspaceID, datasetID string, top int) ([]admin.Refresh, error)
}

// EnrichRefreshHistory fills the refresh summary columns of every dataset
// record and builds the detailed refresh-history table, one dataset at a
// time. Lookup failures are recorded per dataset and never abort the pass.
func EnrichRefreshHistory(ctx context.Context, reader RefreshReader, res *Result, stats *scan.Stats) {
	datasets := res.Get(FamilyDatasets)
	history := res.Get(FamilyRefreshHistory)

	for _, rec := range datasets.Records {
		workspaceID, _ := rec["workspaceId"].(string)
		datasetID, _ := rec["datasetId"].(string)
		datasetName, _ := rec["datasetName"].(string)

		entries, err := reader.RefreshHistory(ctx, workspaceID, datasetID, summaryTop)

		switch {
		case err == nil && len(entries) > 0:
			stats.RefreshHistoryHits++
			rec["refreshOutcome"] = OutcomeHasHistory
			rec["hasRefreshHistory"] = true
			applySummary(rec, entries[0])

		case err == nil:
			stats.RefreshHistoryEmpty++
			rec["refreshOutcome"] = OutcomeNoHistory
			rec["hasRefreshHistory"] = false
			continue

		case admin.IsNotFound(err):
			stats.RefreshNotSupported++
			rec["refreshOutcome"] = OutcomeNotSupported
			rec["hasRefreshHistory"] = false
			continue

		default:
			stats.RefreshLookupErrors++
			rec["refreshOutcome"] = OutcomeError
			rec["hasRefreshHistory"] = false
			rec["lastRefreshError"] = err.Error()
			stats.AddError("refresh history %s/%s: %v", workspaceID, datasetID, err)
			continue
		}

		detail, err := reader.RefreshHistory(ctx, workspaceID, datasetID, detailTop)
		if err != nil {
			stats.AddError("refresh history detail %s/%s: %v", workspaceID, datasetID, err)
			log.Printf("refresh history detail %s/%s: %v", workspaceID, datasetID, err)
			continue
		}

		for _, entry := range detail {
			stats.RefreshHistoryEntries++
			history.Records = append(history.Records, Record{
				"workspaceId":          workspaceID,
				"datasetId":            datasetID,
				"datasetName":          datasetName,
				"refreshType":          emptyNil(entry.RefreshType),
				"status":               emptyNil(entry.Status),
				"startTime":            emptyNil(entry.StartTime),
				"endTime":              emptyNil(entry.EndTime),
				"durationMinutes":      durationMinutes(entry.StartTime, entry.EndTime),
				"requestId":            emptyNil(entry.RequestID),
				"serviceExceptionJson": emptyNil(entry.ServiceExceptionJSON),
			})
		}
	}
}

func applySummary(rec Record, entry admin.Refresh) {
	rec["lastRefreshType"] = emptyNil(entry.RefreshType)
	rec["lastRefreshStatus"] = emptyNil(entry.Status)
	rec["lastRefreshStart"] = emptyNil(entry.StartTime)
	rec["lastRefreshEnd"] = emptyNil(entry.EndTime)
	rec["lastRefreshError"] = emptyNil(entry.ServiceExceptionJSON)
}

// durationMinutes computes end minus start in minutes, or nil when either
// timestamp is absent or unparsable.
func durationMinutes(start, end string) any {
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return nil
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return nil
	}
	return e.Sub(s).Minutes()
}
