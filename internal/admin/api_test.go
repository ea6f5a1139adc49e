package admin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

func testAPI(t *testing.T, transport http.RoundTripper) *API {
	t.Helper()
	return NewAPIWithClient(testClient(t, 0, transport))
}

func workspacePage(n int, prefix string) string {
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(
			`{"id":"%s-%d","name":"ws %s %d","type":"Workspace","state":"Active"}`, prefix, i, prefix, i))
	}
	return `{"value":[` + strings.Join(items, ",") + `]}`
}

func TestListWorkspaces_PagesUntilShortPage(t *testing.T) {
	const pageSize = 3

	var skips []string
	api := testAPI(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		skips = append(skips, q.Get("$skip"))
		if q.Get("$top") != "3" {
			t.Errorf("$top = %q, want 3", q.Get("$top"))
		}

		switch q.Get("$skip") {
		case "0":
			return jsonResponse(http.StatusOK, workspacePage(3, "a")), nil
		case "3":
			return jsonResponse(http.StatusOK, workspacePage(3, "b")), nil
		case "6":
			return jsonResponse(http.StatusOK, workspacePage(1, "c")), nil
		default:
			t.Errorf("unexpected $skip %q", q.Get("$skip"))
			return jsonResponse(http.StatusOK, `{"value":[]}`), nil
		}
	}))

	all, err := api.ListWorkspaces(context.Background(), pageSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 7 {
		t.Fatalf("workspaces = %d, want 7", len(all))
	}
	if len(skips) != 3 {
		t.Fatalf("pages requested = %d, want 3", len(skips))
	}
	if all[0].ID != "a-0" || all[6].ID != "c-0" {
		t.Fatalf("order not preserved: first %s last %s", all[0].ID, all[6].ID)
	}
}

func TestListWorkspaces_EmptyTenant(t *testing.T) {
	api := testAPI(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"value":[]}`), nil
	}))

	all, err := api.ListWorkspaces(context.Background(), 100)
	if err != nil {
		t.Fatalf("empty tenant must not error: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("workspaces = %d, want 0", len(all))
	}
}

func TestStartScan_QueryFlagsAndBody(t *testing.T) {
	var seen *http.Request
	var body []byte
	api := testAPI(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
		seen = req
		body, _ = io.ReadAll(req.Body)
		return jsonResponse(http.StatusAccepted, `{"id":"scan-42","status":"NotStarted"}`), nil
	}))

	scanID, err := api.StartScan(context.Background(), []string{"w1", "w2"}, ScanOptions{
		Lineage:       true,
		DatasetSchema: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scanID != "scan-42" {
		t.Fatalf("scanID = %q", scanID)
	}

	q := seen.URL.Query()
	if q.Get("lineage") != "true" || q.Get("datasetSchema") != "true" {
		t.Fatalf("enabled flags missing from query: %v", q)
	}
	if q.Has("datasourceDetails") || q.Has("datasetExpressions") {
		t.Fatalf("disabled flags must be absent, got %v", q)
	}
	if want := `{"workspaces":["w1","w2"]}`; string(body) != want {
		t.Fatalf("body = %s, want %s", body, want)
	}
}

func TestStartScan_MissingJobIDIsError(t *testing.T) {
	api := testAPI(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusAccepted, `{"status":"NotStarted"}`), nil
	}))

	_, err := api.StartScan(context.Background(), []string{"w1"}, ScanOptions{})
	if err == nil {
		t.Fatal("expected error when response has no job id")
	}
	if !strings.Contains(err.Error(), "no job id") {
		t.Fatalf("error does not name the problem: %v", err)
	}
}

func TestScanStatusAndResult(t *testing.T) {
	api := testAPI(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
		switch {
		case strings.Contains(req.URL.Path, "/scanStatus/scan-7"):
			return jsonResponse(http.StatusOK, `{"id":"scan-7","status":"Succeeded"}`), nil
		case strings.Contains(req.URL.Path, "/scanResult/scan-7"):
			return jsonResponse(http.StatusOK, `{"workspaces":[{"id":"w1","name":"One"}]}`), nil
		default:
			t.Errorf("unexpected path %s", req.URL.Path)
			return jsonResponse(http.StatusNotFound, `{}`), nil
		}
	}))

	status, err := api.ScanStatus(context.Background(), "scan-7")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status != "Succeeded" {
		t.Fatalf("status = %q", status)
	}

	raw, err := api.ScanResult(context.Background(), "scan-7")
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if !strings.Contains(string(raw), `"id":"w1"`) {
		t.Fatalf("raw result passthrough broken: %s", raw)
	}
}

func TestRefreshHistory(t *testing.T) {
	api := testAPI(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if want := "/v1/admin/groups/ws-1/datasets/ds-1/refreshes"; req.URL.Path != want {
			t.Errorf("path = %s, want %s", req.URL.Path, want)
		}
		if got := req.URL.Query().Get("$top"); got != "5" {
			t.Errorf("$top = %q, want 5", got)
		}
		return jsonResponse(http.StatusOK,
			`{"value":[{"refreshType":"Scheduled","status":"Completed","startTime":"2026-08-20T01:00:00Z","endTime":"2026-08-20T01:12:00Z"}]}`), nil
	}))

	entries, err := api.RefreshHistory(context.Background(), "ws-1", "ds-1", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != "Completed" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestRefreshHistory_NotFoundSurfacesAsHTTPError(t *testing.T) {
	api := testAPI(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"error":{"code":"PowerBIEntityNotFound"}}`), nil
	}))

	_, err := api.RefreshHistory(context.Background(), "ws-1", "ds-lakehouse", 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Fatalf("not-found must stay classifiable: %v", err)
	}
}
