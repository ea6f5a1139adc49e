package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ventilios/tenantscan/internal/admin"
)

// consolePicker presents the filtered workspace set on stdout and reads a
// selection from stdin. Accepted input is comma-separated indexes and
// ranges ("1,3,5-8"); an empty line selects everything shown.
type consolePicker struct{}

func (consolePicker) Pick(candidates []admin.Workspace) ([]admin.Workspace, error) {
	for i, ws := range candidates {
		fmt.Printf("%4d  %-50s %s\n", i+1, ws.Name, ws.ID)
	}
	fmt.Printf("select workspaces (e.g. 1,3,5-8; empty = all): ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return nil, fmt.Errorf("read selection: %w", err)
	}

	indexes, err := parseSelection(strings.TrimSpace(line), len(candidates))
	if err != nil {
		return nil, err
	}
	if len(indexes) == 0 {
		return candidates, nil
	}

	picked := make([]admin.Workspace, 0, len(indexes))
	for _, idx := range indexes {
		picked = append(picked, candidates[idx-1])
	}
	return picked, nil
}

// parseSelection expands "1,3,5-8" into sorted-by-input 1-based indexes,
// rejecting anything out of range.
func parseSelection(input string, max int) ([]int, error) {
	if input == "" {
		return nil, nil
	}

	var indexes []int
	seen := make(map[int]bool)

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi := part, part
		if at := strings.Index(part, "-"); at > 0 {
			lo, hi = strings.TrimSpace(part[:at]), strings.TrimSpace(part[at+1:])
		}

		start, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q", part)
		}
		end, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q", part)
		}

		if start < 1 || end > max || start > end {
			return nil, fmt.Errorf("selection %q out of range 1-%d", part, max)
		}

		for i := start; i <= end; i++ {
			if !seen[i] {
				seen[i] = true
				indexes = append(indexes, i)
			}
		}
	}

	return indexes, nil
}
