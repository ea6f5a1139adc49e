package flatten

// Record is one flat row: a permissive field mapping where a missing
// source field is simply a nil value, never an error.
type Record map[string]any

// Table is one exported entity family: an ordered field list plus rows.
type Table struct {
	Family  string
	Fields  []string
	Records []Record
}

// Empty reports whether the table has no rows. Empty families are not
// written to disk.
func (t *Table) Empty() bool {
	return len(t.Records) == 0
}

// Entity family names, used as table names and file name stems.
const (
	FamilyWorkspaces     = "workspaces"
	FamilyReports        = "reports"
	FamilyDatasets       = "datasets"
	FamilyTables         = "tables"
	FamilyColumns        = "columns"
	FamilyMeasures       = "measures"
	FamilyDatasources    = "datasources"
	FamilyLineage        = "lineage"
	FamilyRefreshHistory = "refreshhistory"
)

// Field orders per family. Every record of a family carries exactly these
// keys; values may be nil.
var (
	workspaceFields = []string{
		"workspaceId", "workspaceName", "type", "state",
		"isOnDedicatedCapacity", "capacityId", "reportCount", "datasetCount",
	}

	reportFields = []string{
		"workspaceId", "workspaceName", "reportId", "reportName",
		"datasetId", "reportType", "createdDateTime", "modifiedDateTime",
		"createdBy", "modifiedBy",
	}

	datasetFields = []string{
		"workspaceId", "workspaceName", "datasetId", "datasetName",
		"configuredBy", "contentProviderType", "createdDate", "targetStorageMode",
		"tableCount", "hasSchemaData",
		"refreshOutcome", "hasRefreshHistory", "lastRefreshType", "lastRefreshStatus",
		"lastRefreshStart", "lastRefreshEnd", "lastRefreshError",
	}

	tableFields = []string{
		"workspaceId", "workspaceName", "datasetId", "datasetName",
		"tableName", "description", "isHidden", "sourceExpression",
		"columnCount", "measureCount",
	}

	columnFields = []string{
		"workspaceId", "datasetId", "datasetName", "tableName",
		"columnName", "dataType", "columnType", "isHidden", "expression",
	}

	measureFields = []string{
		"workspaceId", "datasetId", "datasetName", "tableName",
		"measureName", "expression", "description", "isHidden",
	}

	datasourceFields = []string{
		"workspaceId", "datasetId", "datasetName",
		"datasourceType", "datasourceId", "gatewayId",
		"server", "database", "url", "path",
	}

	lineageFields = []string{
		"workspaceId", "datasetId", "datasetName",
		"edgeType", "targetId", "targetGroupId",
	}

	refreshHistoryFields = []string{
		"workspaceId", "datasetId", "datasetName",
		"refreshType", "status", "startTime", "endTime",
		"durationMinutes", "requestId", "serviceExceptionJson",
	}
)
