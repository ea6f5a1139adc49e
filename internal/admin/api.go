package admin

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// Workspace is one entry from the admin workspace listing. Only the fields
// the pipeline selects on are modeled; everything else is ignored.
type Workspace struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Type                  string `json:"type"`
	State                 string `json:"state"`
	IsOnDedicatedCapacity bool   `json:"isOnDedicatedCapacity"`
	CapacityID            string `json:"capacityId"`
}

// ScanOptions selects which optional metadata the scan job materializes.
// Each enabled option becomes a query flag on the submit request.
type ScanOptions struct {
	Lineage            bool
	DatasourceDetails  bool
	DatasetSchema      bool
	DatasetExpressions bool
}

// Refresh is one entry from a dataset's refresh history.
type Refresh struct {
	RefreshType          string `json:"refreshType"`
	Status               string `json:"status"`
	StartTime            string `json:"startTime"`
	EndTime              string `json:"endTime"`
	RequestID            string `json:"requestId"`
	ServiceExceptionJSON string `json:"serviceExceptionJson"`
}

// valueEnvelope is the `{ "value": [...] }` wrapper the admin API uses for
// list responses.
type valueEnvelope[T any] struct {
	Value []T `json:"value"`
}

// =============================================================================
// API
// =============================================================================

// Admin API endpoint paths.
const (
	pathGroups     = "/admin/groups"
	pathScanSubmit = "/admin/workspaces/getInfo"
	pathScanStatus = "/admin/workspaces/scanStatus"
	pathScanResult = "/admin/workspaces/scanResult"
)

// API exposes the typed admin endpoints over the retrying client.
type API struct {
	client *Client
}

// NewAPI creates an API over a new client built from config.
func NewAPI(config *ClientConfig) *API {
	return &API{client: NewClient(config)}
}

// NewAPIWithClient creates an API over an existing client.
func NewAPIWithClient(client *Client) *API {
	return &API{client: client}
}

// ListWorkspaces pages through every workspace visible to the admin
// principal. It keeps requesting pages of pageSize while the last page came
// back full, and stops on a short or empty page. A tenant with zero visible
// workspaces yields an empty slice, not an error.
func (a *API) ListWorkspaces(ctx context.Context, pageSize int) ([]Workspace, error) {
	if pageSize <= 0 {
		pageSize = 5000
	}

	var all []Workspace
	for skip := 0; ; skip += pageSize {
		query := url.Values{}
		query.Set("$top", strconv.Itoa(pageSize))
		query.Set("$skip", strconv.Itoa(skip))

		resp, err := a.client.Get(ctx, pathGroups, query)
		if err != nil {
			return nil, fmt.Errorf("list workspaces (skip=%d): %w", skip, err)
		}

		var page valueEnvelope[Workspace]
		if err := resp.JSON(&page); err != nil {
			return nil, fmt.Errorf("decode workspace page (skip=%d): %w", skip, err)
		}

		all = append(all, page.Value...)
		if len(page.Value) < pageSize {
			return all, nil
		}
	}
}

// StartScan submits a scan job for up to 100 workspace ids and returns the
// job identifier. A response without an identifier is an error: the caller
// has nothing to poll.
func (a *API) StartScan(ctx context.Context, workspaceIDs []string, opts ScanOptions) (string, error) {
	query := url.Values{}
	if opts.Lineage {
		query.Set("lineage", "true")
	}
	if opts.DatasourceDetails {
		query.Set("datasourceDetails", "true")
	}
	if opts.DatasetSchema {
		query.Set("datasetSchema", "true")
	}
	if opts.DatasetExpressions {
		query.Set("datasetExpressions", "true")
	}

	body := map[string]any{"workspaces": workspaceIDs}

	resp, err := a.client.Post(ctx, pathScanSubmit, query, body)
	if err != nil {
		return "", fmt.Errorf("submit scan: %w", err)
	}

	var job struct {
		ID string `json:"id"`
	}
	if err := resp.JSON(&job); err != nil {
		return "", fmt.Errorf("decode scan submit response: %w", err)
	}
	if job.ID == "" {
		return "", fmt.Errorf("submit scan: response contains no job id")
	}

	return job.ID, nil
}

// ScanStatus returns the current status string of a scan job.
func (a *API) ScanStatus(ctx context.Context, scanID string) (string, error) {
	resp, err := a.client.Get(ctx, pathScanStatus+"/"+scanID, nil)
	if err != nil {
		return "", fmt.Errorf("scan status %s: %w", scanID, err)
	}

	var job struct {
		Status string `json:"status"`
	}
	if err := resp.JSON(&job); err != nil {
		return "", fmt.Errorf("decode scan status %s: %w", scanID, err)
	}

	return job.Status, nil
}

// ScanResult fetches the raw result document of a succeeded scan job. The
// body is returned unparsed; the pipeline owns decoding.
func (a *API) ScanResult(ctx context.Context, scanID string) ([]byte, error) {
	resp, err := a.client.Get(ctx, pathScanResult+"/"+scanID, nil)
	if err != nil {
		return nil, fmt.Errorf("scan result %s: %w", scanID, err)
	}
	return resp.Body, nil
}

// RefreshHistory returns up to top refresh entries for one dataset, newest
// first. Datasets whose content type does not expose refresh history (for
// example lakehouses, warehouses, dataflow-backed models) answer not-found;
// that surfaces as an *HTTPError for the caller to classify, never retried.
func (a *API) RefreshHistory(ctx context.Context, workspaceID, datasetID string, top int) ([]Refresh, error) {
	query := url.Values{}
	if top > 0 {
		query.Set("$top", strconv.Itoa(top))
	}

	path := fmt.Sprintf("%s/%s/datasets/%s/refreshes", pathGroups, workspaceID, datasetID)

	resp, err := a.client.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var page valueEnvelope[Refresh]
	if err := resp.JSON(&page); err != nil {
		return nil, fmt.Errorf("decode refresh history %s/%s: %w", workspaceID, datasetID, err)
	}

	return page.Value, nil
}
