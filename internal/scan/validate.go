package scan

import (
	"fmt"
	"strings"
)

// Validate sanity-checks one fetched scan document against the id set its
// batch was submitted with. Issues are anomalies worth surfacing to the
// operator, never reasons to halt: the return is a list of human-readable
// issue strings, possibly empty.
//
// Checks:
//   - every expected id appears in the returned workspace set;
//   - workspaces that came back with zero datasets;
//   - when dataset-schema collection was requested, datasets with no tables.
func Validate(doc *Document, expectedIDs []string, schemaRequested bool) []string {
	var issues []string

	returned := make(map[string]bool, len(doc.Workspaces))
	for _, ws := range doc.Workspaces {
		returned[ws.ID] = true
	}

	var missing []string
	for _, id := range expectedIDs {
		if !returned[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		issues = append(issues, fmt.Sprintf(
			"scan returned %d of %d requested workspaces; missing: %s",
			len(doc.Workspaces), len(expectedIDs), strings.Join(missing, ", ")))
	}

	emptyWorkspaces := 0
	for _, ws := range doc.Workspaces {
		if len(ws.Datasets) == 0 {
			emptyWorkspaces++
		}
	}
	if emptyWorkspaces > 0 {
		issues = append(issues, fmt.Sprintf("%d workspaces contain no datasets", emptyWorkspaces))
	}

	if schemaRequested {
		var bare []string
		for _, ws := range doc.Workspaces {
			for _, ds := range ws.Datasets {
				if len(ds.Tables) == 0 {
					bare = append(bare, fmt.Sprintf("%s/%s", ws.Name, ds.Name))
				}
			}
		}
		if len(bare) > 0 {
			issues = append(issues, fmt.Sprintf(
				"%d datasets returned no schema: %s", len(bare), strings.Join(bare, ", ")))
		}
	}

	return issues
}
