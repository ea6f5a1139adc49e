// Package export persists one run's artifacts under a timestamped
// directory: the merged document, one CSV (and optionally Parquet) per
// populated entity family, and the statistics summary.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ventilios/tenantscan/internal/flatten"
	"github.com/ventilios/tenantscan/internal/scan"
)

// Writer owns one run directory. File names are timestamp-suffixed so
// artifacts from different runs never collide even when copied together.
type Writer struct {
	Dir       string
	Parquet   bool
	timestamp string
	artifacts []string
}

// NewWriter creates the run directory under base. Failure here is fatal to
// the run: with nowhere to write, nothing downstream matters.
func NewWriter(base string, now time.Time, runID string, parquet bool) (*Writer, error) {
	ts := now.Format("20060102-150405")
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}

	dir := filepath.Join(base, fmt.Sprintf("scan-%s-%s", ts, short))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}

	return &Writer{Dir: dir, Parquet: parquet, timestamp: ts}, nil
}

// Artifacts lists every file written so far, in write order.
func (w *Writer) Artifacts() []string {
	return w.artifacts
}

// WriteMerged persists the merged scan document as indented JSON.
func (w *Writer) WriteMerged(doc *scan.Document) (string, error) {
	path := filepath.Join(w.Dir, fmt.Sprintf("merged-%s.json", w.timestamp))
	if err := writeJSON(path, doc); err != nil {
		return "", err
	}
	w.artifacts = append(w.artifacts, path)
	return path, nil
}

// WriteTable persists one flat table as CSV, plus Parquet when enabled.
// Empty tables are skipped entirely: a family with zero rows is simply
// omitted from the output.
func (w *Writer) WriteTable(t *flatten.Table) ([]string, error) {
	if t.Empty() {
		return nil, nil
	}

	var paths []string

	csvPath := filepath.Join(w.Dir, fmt.Sprintf("%s-%s.csv", t.Family, w.timestamp))
	if err := writeCSV(csvPath, t); err != nil {
		return nil, fmt.Errorf("write %s csv: %w", t.Family, err)
	}
	paths = append(paths, csvPath)

	if w.Parquet {
		pqPath := filepath.Join(w.Dir, fmt.Sprintf("%s-%s.parquet", t.Family, w.timestamp))
		if err := writeParquet(pqPath, t); err != nil {
			return nil, fmt.Errorf("write %s parquet: %w", t.Family, err)
		}
		paths = append(paths, pqPath)
	}

	w.artifacts = append(w.artifacts, paths...)
	return paths, nil
}

// WriteStats persists the statistics summary. This is written on every
// run, including runs where every batch failed.
func (w *Writer) WriteStats(stats *scan.Stats) (string, error) {
	path := filepath.Join(w.Dir, fmt.Sprintf("statistics-%s.json", w.timestamp))
	if err := writeJSON(path, stats); err != nil {
		return "", err
	}
	w.artifacts = append(w.artifacts, path)
	return path, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
