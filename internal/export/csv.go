package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/ventilios/tenantscan/internal/flatten"
)

// writeCSV writes one table as UTF-8 CSV with a header row. Values are
// plain text with no embedded type metadata; nil renders as an empty cell.
func writeCSV(path string, t *flatten.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if err := cw.Write(t.Fields); err != nil {
		return err
	}

	row := make([]string, len(t.Fields))
	for _, rec := range t.Records {
		for i, field := range t.Fields {
			row[i] = formatValue(rec[field])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return f.Close()
}

// formatValue renders one cell. The record values come from permissive
// field extraction, so anything can show up here.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
