// Package flatten walks a merged scan document and emits one flat table
// per entity family, carrying parent keys down to each leaf. Absent nested
// collections at any level are skipped, not errors: the source document is
// optional-everywhere by design.
package flatten

import (
	"github.com/ventilios/tenantscan/internal/scan"
)

// Result bundles the flat tables of one run, keyed by family.
type Result struct {
	Tables map[string]*Table
}

// Get returns the table of a family, which may be empty but never nil for
// a known family.
func (r *Result) Get(family string) *Table {
	return r.Tables[family]
}

// Ordered returns the tables in a stable export order.
func (r *Result) Ordered() []*Table {
	order := []string{
		FamilyWorkspaces, FamilyReports, FamilyDatasets, FamilyTables,
		FamilyColumns, FamilyMeasures, FamilyDatasources, FamilyLineage,
		FamilyRefreshHistory,
	}
	out := make([]*Table, 0, len(order))
	for _, family := range order {
		if t, ok := r.Tables[family]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Flatten walks doc top-down and emits every entity family, updating the
// tree counters in stats as it goes. The refresh-history table starts
// empty; enrichment fills it separately.
func Flatten(doc *scan.Document, stats *scan.Stats) *Result {
	res := &Result{Tables: map[string]*Table{
		FamilyWorkspaces:     {Family: FamilyWorkspaces, Fields: workspaceFields},
		FamilyReports:        {Family: FamilyReports, Fields: reportFields},
		FamilyDatasets:       {Family: FamilyDatasets, Fields: datasetFields},
		FamilyTables:         {Family: FamilyTables, Fields: tableFields},
		FamilyColumns:        {Family: FamilyColumns, Fields: columnFields},
		FamilyMeasures:       {Family: FamilyMeasures, Fields: measureFields},
		FamilyDatasources:    {Family: FamilyDatasources, Fields: datasourceFields},
		FamilyLineage:        {Family: FamilyLineage, Fields: lineageFields},
		FamilyRefreshHistory: {Family: FamilyRefreshHistory, Fields: refreshHistoryFields},
	}}

	for _, ws := range doc.Workspaces {
		res.addWorkspace(ws, stats)
	}

	return res
}

func (r *Result) addWorkspace(ws scan.WorkspaceNode, stats *scan.Stats) {
	stats.Workspaces++

	r.append(FamilyWorkspaces, Record{
		"workspaceId":           ws.ID,
		"workspaceName":         ws.Name,
		"type":                  emptyNil(ws.Type),
		"state":                 emptyNil(ws.State),
		"isOnDedicatedCapacity": boolNil(ws.IsOnDedicatedCapacity),
		"capacityId":            emptyNil(ws.CapacityID),
		"reportCount":           len(ws.Reports),
		"datasetCount":          len(ws.Datasets),
	})

	for _, rep := range ws.Reports {
		stats.Reports++
		r.append(FamilyReports, Record{
			"workspaceId":      ws.ID,
			"workspaceName":    ws.Name,
			"reportId":         rep.ID,
			"reportName":       rep.Name,
			"datasetId":        emptyNil(rep.DatasetID),
			"reportType":       emptyNil(rep.ReportType),
			"createdDateTime":  emptyNil(rep.CreatedDateTime),
			"modifiedDateTime": emptyNil(rep.ModifiedDateTime),
			"createdBy":        emptyNil(rep.CreatedBy),
			"modifiedBy":       emptyNil(rep.ModifiedBy),
		})
	}

	for _, ds := range ws.Datasets {
		r.addDataset(ws, ds, stats)
	}
}

func (r *Result) addDataset(ws scan.WorkspaceNode, ds scan.DatasetNode, stats *scan.Stats) {
	stats.Datasets++
	if len(ds.Tables) > 0 {
		stats.DatasetsWithSchema++
	}

	r.append(FamilyDatasets, Record{
		"workspaceId":         ws.ID,
		"workspaceName":       ws.Name,
		"datasetId":           ds.ID,
		"datasetName":         ds.Name,
		"configuredBy":        emptyNil(ds.ConfiguredBy),
		"contentProviderType": emptyNil(ds.ContentProviderType),
		"createdDate":         emptyNil(ds.CreatedDate),
		"targetStorageMode":   emptyNil(ds.TargetStorageMode),
		"tableCount":          len(ds.Tables),
		"hasSchemaData":       len(ds.Tables) > 0,
		"refreshOutcome":      nil,
		"hasRefreshHistory":   nil,
		"lastRefreshType":     nil,
		"lastRefreshStatus":   nil,
		"lastRefreshStart":    nil,
		"lastRefreshEnd":      nil,
		"lastRefreshError":    nil,
	})

	for _, tbl := range ds.Tables {
		stats.Tables++
		r.append(FamilyTables, Record{
			"workspaceId":      ws.ID,
			"workspaceName":    ws.Name,
			"datasetId":        ds.ID,
			"datasetName":      ds.Name,
			"tableName":        tbl.Name,
			"description":      emptyNil(tbl.Description),
			"isHidden":         boolNil(tbl.IsHidden),
			"sourceExpression": tableSource(tbl),
			"columnCount":      len(tbl.Columns),
			"measureCount":     len(tbl.Measures),
		})

		for _, col := range tbl.Columns {
			stats.Columns++
			r.append(FamilyColumns, Record{
				"workspaceId": ws.ID,
				"datasetId":   ds.ID,
				"datasetName": ds.Name,
				"tableName":   tbl.Name,
				"columnName":  col.Name,
				"dataType":    emptyNil(col.DataType),
				"columnType":  emptyNil(col.ColumnType),
				"isHidden":    boolNil(col.IsHidden),
				"expression":  emptyNil(col.Expression),
			})
		}

		for _, m := range tbl.Measures {
			stats.Measures++
			r.append(FamilyMeasures, Record{
				"workspaceId": ws.ID,
				"datasetId":   ds.ID,
				"datasetName": ds.Name,
				"tableName":   tbl.Name,
				"measureName": m.Name,
				"expression":  emptyNil(m.Expression),
				"description": emptyNil(m.Description),
				"isHidden":    boolNil(m.IsHidden),
			})
		}
	}

	for _, src := range ds.Datasources {
		stats.Datasources++
		r.append(FamilyDatasources, Record{
			"workspaceId":    ws.ID,
			"datasetId":      ds.ID,
			"datasetName":    ds.Name,
			"datasourceType": emptyNil(src.DatasourceType),
			"datasourceId":   emptyNil(src.DatasourceID),
			"gatewayId":      emptyNil(src.GatewayID),
			"server":         emptyNil(src.ConnectionDetails.Server),
			"database":       emptyNil(src.ConnectionDetails.Database),
			"url":            emptyNil(src.ConnectionDetails.URL),
			"path":           emptyNil(src.ConnectionDetails.Path),
		})
	}

	for _, up := range ds.UpstreamDataflows {
		stats.LineageEdges++
		r.append(FamilyLineage, Record{
			"workspaceId":   ws.ID,
			"datasetId":     ds.ID,
			"datasetName":   ds.Name,
			"edgeType":      "dataflow",
			"targetId":      emptyNil(up.TargetDataflowID),
			"targetGroupId": emptyNil(up.GroupID),
		})
	}

	for _, up := range ds.UpstreamDatasets {
		stats.LineageEdges++
		r.append(FamilyLineage, Record{
			"workspaceId":   ws.ID,
			"datasetId":     ds.ID,
			"datasetName":   ds.Name,
			"edgeType":      "dataset",
			"targetId":      emptyNil(up.TargetDatasetID),
			"targetGroupId": emptyNil(up.GroupID),
		})
	}
}

func (r *Result) append(family string, rec Record) {
	t := r.Tables[family]
	t.Records = append(t.Records, rec)
}

func tableSource(tbl scan.TableNode) any {
	if len(tbl.Source) == 0 || tbl.Source[0].Expression == "" {
		return nil
	}
	return tbl.Source[0].Expression
}

func emptyNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolNil(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
