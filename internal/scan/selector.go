package scan

import (
	"errors"
	"strings"

	"github.com/ventilios/tenantscan/internal/admin"
)

// ErrNoWorkspaces means the selection produced nothing to scan. The caller
// treats this as fatal: a run with zero targets has no useful output.
var ErrNoWorkspaces = errors.New("no workspaces selected to scan")

// Picker lets a host present the filtered workspace set for manual
// multi-selection. Returning an empty slice selects everything shown.
type Picker interface {
	Pick(candidates []admin.Workspace) ([]admin.Workspace, error)
}

// Select narrows the enumerated workspace set into a scan target list.
// Only active real workspaces survive (personal workspaces, deleted and
// orphaned entries are dropped). A non-empty pattern additionally filters
// names by case-insensitive wildcard match. A non-nil picker then gets the
// final say.
func Select(all []admin.Workspace, pattern string, picker Picker) ([]string, error) {
	var filtered []admin.Workspace
	for _, ws := range all {
		if ws.State != "Active" || ws.Type != "Workspace" {
			continue
		}
		if pattern != "" && !MatchWildcard(pattern, ws.Name) {
			continue
		}
		filtered = append(filtered, ws)
	}

	if picker != nil && len(filtered) > 0 {
		picked, err := picker.Pick(filtered)
		if err != nil {
			return nil, err
		}
		if len(picked) > 0 {
			filtered = picked
		}
	}

	if len(filtered) == 0 {
		return nil, ErrNoWorkspaces
	}

	ids := make([]string, 0, len(filtered))
	for _, ws := range filtered {
		ids = append(ids, ws.ID)
	}
	return ids, nil
}

// MatchWildcard reports whether name matches pattern, where '*' matches any
// run of characters and '?' matches exactly one. Matching is
// case-insensitive, like the console tooling this replaces.
func MatchWildcard(pattern, name string) bool {
	return matchFold(strings.ToLower(pattern), strings.ToLower(name))
}

func matchFold(pattern, name string) bool {
	// Iterative glob match with single-star backtracking.
	var pi, ni int
	star, mark := -1, 0

	for ni < len(name) {
		switch {
		case pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == name[ni]):
			pi++
			ni++
		case pi < len(pattern) && pattern[pi] == '*':
			star = pi
			mark = ni
			pi++
		case star >= 0:
			pi = star + 1
			mark++
			ni = mark
		default:
			return false
		}
	}

	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
