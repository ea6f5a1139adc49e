package flatten

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ventilios/tenantscan/internal/admin"
	"github.com/ventilios/tenantscan/internal/scan"
)

// fakeRefreshReader scripts per-dataset refresh lookups by dataset id.
type fakeRefreshReader struct {
	entries map[string][]admin.Refresh
	errs    map[string]error
	calls   []string
}

func (f *fakeRefreshReader) RefreshHistory(ctx context.Context, workspaceID, datasetID string, top int) ([]admin.Refresh, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s/%d", datasetID, top))
	if err := f.errs[datasetID]; err != nil {
		return nil, err
	}
	entries := f.entries[datasetID]
	if len(entries) > top {
		entries = entries[:top]
	}
	return entries, nil
}

func enrichResult(datasetIDs ...string) *Result {
	doc := &scan.Document{Workspaces: []scan.WorkspaceNode{{ID: "w1", Name: "W"}}}
	for _, id := range datasetIDs {
		doc.Workspaces[0].Datasets = append(doc.Workspaces[0].Datasets,
			scan.DatasetNode{ID: id, Name: "DS " + id})
	}
	return Flatten(doc, scan.NewStats("test", time.Now()))
}

func datasetRecord(t *testing.T, res *Result, id string) Record {
	t.Helper()
	for _, rec := range res.Get(FamilyDatasets).Records {
		if rec["datasetId"] == id {
			return rec
		}
	}
	t.Fatalf("dataset %s not in result", id)
	return nil
}

func TestEnrich_FourWayClassification(t *testing.T) {
	reader := &fakeRefreshReader{
		entries: map[string][]admin.Refresh{
			"d-hit": {{RefreshType: "Scheduled", Status: "Completed",
				StartTime: "2026-08-20T01:00:00Z", EndTime: "2026-08-20T01:10:00Z"}},
			"d-empty": {},
		},
		errs: map[string]error{
			"d-unsupported": &admin.HTTPError{StatusCode: 404, Message: "not found"},
			"d-broken":      fmt.Errorf("refresh history w1/d-broken: HTTP 500: boom"),
		},
	}

	res := enrichResult("d-hit", "d-empty", "d-unsupported", "d-broken")
	stats := scan.NewStats("test", time.Now())
	EnrichRefreshHistory(context.Background(), reader, res, stats)

	cases := []struct {
		id      string
		outcome string
		has     bool
	}{
		{"d-hit", OutcomeHasHistory, true},
		{"d-empty", OutcomeNoHistory, false},
		{"d-unsupported", OutcomeNotSupported, false},
		{"d-broken", OutcomeError, false},
	}
	for _, c := range cases {
		rec := datasetRecord(t, res, c.id)
		if rec["refreshOutcome"] != c.outcome {
			t.Fatalf("%s: outcome = %v, want %s", c.id, rec["refreshOutcome"], c.outcome)
		}
		if rec["hasRefreshHistory"] != c.has {
			t.Fatalf("%s: hasRefreshHistory = %v, want %v", c.id, rec["hasRefreshHistory"], c.has)
		}
	}

	if stats.RefreshHistoryHits != 1 || stats.RefreshHistoryEmpty != 1 ||
		stats.RefreshNotSupported != 1 || stats.RefreshLookupErrors != 1 {
		t.Fatalf("counters = %d/%d/%d/%d, want 1 each",
			stats.RefreshHistoryHits, stats.RefreshHistoryEmpty,
			stats.RefreshNotSupported, stats.RefreshLookupErrors)
	}
}

func TestEnrich_NotFoundIsNotAnError(t *testing.T) {
	reader := &fakeRefreshReader{
		errs: map[string]error{
			"d1": &admin.HTTPError{StatusCode: 404, Message: "not found"},
		},
	}

	res := enrichResult("d1")
	stats := scan.NewStats("test", time.Now())
	EnrichRefreshHistory(context.Background(), reader, res, stats)

	if len(stats.Errors) != 0 {
		t.Fatalf("not-found recorded as error: %v", stats.Errors)
	}
	rec := datasetRecord(t, res, "d1")
	if rec["lastRefreshError"] != nil {
		t.Fatalf("lastRefreshError = %v, want nil", rec["lastRefreshError"])
	}
}

func TestEnrich_LookupErrorIsRecordedOnRecordAndStats(t *testing.T) {
	reader := &fakeRefreshReader{
		errs: map[string]error{"d1": fmt.Errorf("HTTP 500: boom")},
	}

	res := enrichResult("d1")
	stats := scan.NewStats("test", time.Now())
	EnrichRefreshHistory(context.Background(), reader, res, stats)

	rec := datasetRecord(t, res, "d1")
	if rec["lastRefreshError"] != "HTTP 500: boom" {
		t.Fatalf("lastRefreshError = %v", rec["lastRefreshError"])
	}
	if len(stats.Errors) != 1 {
		t.Fatalf("stats errors = %v, want one", stats.Errors)
	}
}

func TestEnrich_SummaryThenDetailLookups(t *testing.T) {
	entries := []admin.Refresh{
		{RefreshType: "Scheduled", Status: "Completed",
			StartTime: "2026-08-20T01:00:00Z", EndTime: "2026-08-20T01:30:00Z"},
		{RefreshType: "OnDemand", Status: "Failed",
			StartTime: "2026-08-19T01:00:00Z", EndTime: "2026-08-19T01:05:00Z",
			ServiceExceptionJSON: `{"errorCode":"ModelRefreshFailed"}`},
	}
	reader := &fakeRefreshReader{entries: map[string][]admin.Refresh{"d1": entries}}

	res := enrichResult("d1")
	stats := scan.NewStats("test", time.Now())
	EnrichRefreshHistory(context.Background(), reader, res, stats)

	if len(reader.calls) != 2 || reader.calls[0] != "d1/1" || reader.calls[1] != "d1/5" {
		t.Fatalf("calls = %v, want summary top=1 then detail top=5", reader.calls)
	}

	rec := datasetRecord(t, res, "d1")
	if rec["lastRefreshStatus"] != "Completed" || rec["lastRefreshType"] != "Scheduled" {
		t.Fatalf("summary not taken from newest entry: %+v", rec)
	}

	rows := res.Get(FamilyRefreshHistory).Records
	if len(rows) != 2 || stats.RefreshHistoryEntries != 2 {
		t.Fatalf("detail rows = %d, counter = %d, want 2", len(rows), stats.RefreshHistoryEntries)
	}
	if rows[0]["durationMinutes"] != 30.0 {
		t.Fatalf("durationMinutes = %v, want 30", rows[0]["durationMinutes"])
	}
	if rows[1]["serviceExceptionJson"] == nil {
		t.Fatal("service exception dropped from detail row")
	}
}

func TestDurationMinutes_UnparsableTimestampsYieldNil(t *testing.T) {
	cases := []struct {
		start, end string
	}{
		{"", "2026-08-20T01:00:00Z"},
		{"2026-08-20T01:00:00Z", ""},
		{"not-a-time", "2026-08-20T01:00:00Z"},
		{"", ""},
	}
	for _, c := range cases {
		if got := durationMinutes(c.start, c.end); got != nil {
			t.Fatalf("durationMinutes(%q, %q) = %v, want nil", c.start, c.end, got)
		}
	}

	if got := durationMinutes("2026-08-20T01:00:00Z", "2026-08-20T01:45:00Z"); got != 45.0 {
		t.Fatalf("durationMinutes = %v, want 45", got)
	}
}
