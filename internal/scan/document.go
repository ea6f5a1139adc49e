package scan

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// SCAN RESULT DOCUMENT
// The scan result is a loosely-typed nested document: every collection and
// nearly every field is optional, and absence is an expected state. Nothing
// here validates shape beyond being JSON.
// =============================================================================

// Document is the result of one scan job: the detailed metadata tree for
// the workspaces that job covered.
type Document struct {
	Workspaces []WorkspaceNode `json:"workspaces"`
}

// WorkspaceNode is one workspace subtree of a scan result.
type WorkspaceNode struct {
	ID                    string        `json:"id"`
	Name                  string        `json:"name"`
	Type                  string        `json:"type,omitempty"`
	State                 string        `json:"state,omitempty"`
	IsOnDedicatedCapacity *bool         `json:"isOnDedicatedCapacity,omitempty"`
	CapacityID            string        `json:"capacityId,omitempty"`
	Reports               []ReportNode  `json:"reports,omitempty"`
	Datasets              []DatasetNode `json:"datasets,omitempty"`
}

// ReportNode is one report inside a workspace.
type ReportNode struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	DatasetID        string `json:"datasetId,omitempty"`
	ReportType       string `json:"reportType,omitempty"`
	CreatedDateTime  string `json:"createdDateTime,omitempty"`
	ModifiedDateTime string `json:"modifiedDateTime,omitempty"`
	CreatedBy        string `json:"createdBy,omitempty"`
	ModifiedBy       string `json:"modifiedBy,omitempty"`
}

// DatasetNode is one dataset inside a workspace. Tables are only present
// when the scan was submitted with dataset-schema collection; datasources
// only with datasource details; upstream references only with lineage.
type DatasetNode struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	ConfiguredBy        string           `json:"configuredBy,omitempty"`
	ContentProviderType string           `json:"contentProviderType,omitempty"`
	CreatedDate         string           `json:"createdDate,omitempty"`
	TargetStorageMode   string           `json:"targetStorageMode,omitempty"`
	Tables              []TableNode      `json:"tables,omitempty"`
	Datasources         []DatasourceNode `json:"datasources,omitempty"`
	UpstreamDataflows   []UpstreamRef    `json:"upstreamDataflows,omitempty"`
	UpstreamDatasets    []UpstreamRef    `json:"upstreamDatasets,omitempty"`
	Expressions         []ExpressionNode `json:"expressions,omitempty"`
}

// TableNode is one table of a dataset schema.
type TableNode struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	IsHidden    *bool         `json:"isHidden,omitempty"`
	Source      []TableSource `json:"source,omitempty"`
	Columns     []ColumnNode  `json:"columns,omitempty"`
	Measures    []MeasureNode `json:"measures,omitempty"`
}

// TableSource carries a table's source expression.
type TableSource struct {
	Expression string `json:"expression,omitempty"`
}

// ColumnNode is one column of a table.
type ColumnNode struct {
	Name       string `json:"name"`
	DataType   string `json:"dataType,omitempty"`
	ColumnType string `json:"columnType,omitempty"`
	IsHidden   *bool  `json:"isHidden,omitempty"`
	Expression string `json:"expression,omitempty"`
}

// MeasureNode is one measure of a table.
type MeasureNode struct {
	Name        string `json:"name"`
	Expression  string `json:"expression,omitempty"`
	Description string `json:"description,omitempty"`
	IsHidden    *bool  `json:"isHidden,omitempty"`
}

// DatasourceNode is one datasource a dataset draws from.
type DatasourceNode struct {
	DatasourceType    string            `json:"datasourceType,omitempty"`
	DatasourceID      string            `json:"datasourceId,omitempty"`
	GatewayID         string            `json:"gatewayId,omitempty"`
	ConnectionDetails ConnectionDetails `json:"connectionDetails,omitempty"`
}

// ConnectionDetails locates a datasource. Which fields are populated
// depends on the datasource type.
type ConnectionDetails struct {
	Server   string `json:"server,omitempty"`
	Database string `json:"database,omitempty"`
	URL      string `json:"url,omitempty"`
	Path     string `json:"path,omitempty"`
}

// UpstreamRef is a directed lineage reference from a dataset to an
// upstream dataset or dataflow it depends on.
type UpstreamRef struct {
	TargetDataflowID string `json:"targetDataflowId,omitempty"`
	TargetDatasetID  string `json:"targetDatasetId,omitempty"`
	GroupID          string `json:"groupId,omitempty"`
}

// ExpressionNode is one shared M expression of a dataset.
type ExpressionNode struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Expression  string `json:"expression,omitempty"`
}

// ParseDocument decodes one raw scan result.
func ParseDocument(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse scan document: %w", err)
	}
	return &doc, nil
}
