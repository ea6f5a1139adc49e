package scan

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ventilios/tenantscan/internal/admin"
)

// fakeScanner scripts the admin gateway for scheduler and job tests.
type fakeScanner struct {
	submits  int
	start    func(batch int, ids []string) (string, error)
	statuses map[string][]string // per scan id, consumed in order; last repeats
	polled   map[string]int
	results  map[string][]byte
	fetchErr map[string]error
}

func (f *fakeScanner) StartScan(ctx context.Context, ids []string, opts admin.ScanOptions) (string, error) {
	f.submits++
	return f.start(f.submits, ids)
}

func (f *fakeScanner) ScanStatus(ctx context.Context, scanID string) (string, error) {
	if f.polled == nil {
		f.polled = make(map[string]int)
	}
	seq := f.statuses[scanID]
	idx := f.polled[scanID]
	f.polled[scanID]++
	if idx >= len(seq) {
		idx = len(seq) - 1
	}
	return seq[idx], nil
}

func (f *fakeScanner) ScanResult(ctx context.Context, scanID string) ([]byte, error) {
	if err := f.fetchErr[scanID]; err != nil {
		return nil, err
	}
	return f.results[scanID], nil
}

func noSleep(time.Duration) {}

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("w-%03d", i)
	}
	return ids
}

func TestPartition_CoversInputExactlyOnce(t *testing.T) {
	for _, n := range []int{0, 1, 99, 100, 101, 250, 300} {
		ids := makeIDs(n)
		chunks := Partition(ids, 100)

		wantChunks := (n + 99) / 100
		if len(chunks) != wantChunks {
			t.Fatalf("n=%d: chunks = %d, want %d", n, len(chunks), wantChunks)
		}

		var flat []string
		for _, c := range chunks {
			flat = append(flat, c...)
		}
		if len(flat) != n {
			t.Fatalf("n=%d: concatenation has %d ids", n, len(flat))
		}
		for i := range flat {
			if flat[i] != ids[i] {
				t.Fatalf("n=%d: order broken at %d", n, i)
			}
		}
	}
}

func TestPartition_250SplitsInto100_100_50(t *testing.T) {
	chunks := Partition(makeIDs(250), 100)
	sizes := []int{}
	for _, c := range chunks {
		sizes = append(sizes, len(c))
	}
	want := []int{100, 100, 50}
	if len(sizes) != len(want) {
		t.Fatalf("sizes = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("sizes = %v, want %v", sizes, want)
		}
	}
}

func TestRun_FailedBatchIsIsolated(t *testing.T) {
	// 250 ids -> 3 batches; batch 2's submit fails after the client has
	// exhausted its retries. Batches 1 and 3 must still produce results.
	scanner := &fakeScanner{
		start: func(batch int, ids []string) (string, error) {
			if batch == 2 {
				return "", fmt.Errorf("submit scan: HTTP 500: transient, retries exhausted")
			}
			return fmt.Sprintf("scan-%d", batch), nil
		},
		statuses: map[string][]string{
			"scan-1": {"Running", "Succeeded"},
			"scan-3": {"Succeeded"},
		},
		results: map[string][]byte{
			"scan-1": []byte(`{"workspaces":[{"id":"w-000","name":"A"}]}`),
			"scan-3": []byte(`{"workspaces":[{"id":"w-200","name":"B"}]}`),
		},
	}

	stats := NewStats("test", time.Now())
	sched := NewScheduler(scanner, admin.ScanOptions{}, time.Millisecond, 0, noSleep)

	results := sched.Run(context.Background(), makeIDs(250), stats)

	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].BatchID != 1 || results[1].BatchID != 3 {
		t.Fatalf("batch ids = %d,%d want 1,3", results[0].BatchID, results[1].BatchID)
	}
	if stats.BatchesSucceeded != 2 || stats.BatchesFailed != 1 {
		t.Fatalf("counters = %d/%d, want 2/1", stats.BatchesSucceeded, stats.BatchesFailed)
	}
	if len(stats.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly one", stats.Errors)
	}
	if !strings.Contains(stats.Errors[0], "batch 2") {
		t.Fatalf("error does not name batch 2: %s", stats.Errors[0])
	}
}

func TestRun_NonSucceededTerminalFailsBatch(t *testing.T) {
	scanner := &fakeScanner{
		start: func(batch int, ids []string) (string, error) {
			return "scan-1", nil
		},
		statuses: map[string][]string{
			"scan-1": {"NotStarted", "Running", "Failed"},
		},
	}

	stats := NewStats("test", time.Now())
	sched := NewScheduler(scanner, admin.ScanOptions{}, time.Millisecond, 0, noSleep)

	results := sched.Run(context.Background(), makeIDs(10), stats)

	if len(results) != 0 {
		t.Fatalf("results = %d, want 0", len(results))
	}
	if stats.BatchesFailed != 1 {
		t.Fatalf("BatchesFailed = %d, want 1", stats.BatchesFailed)
	}
	if !strings.Contains(stats.Errors[0], "Failed") {
		t.Fatalf("error does not carry the terminal status: %s", stats.Errors[0])
	}
}

func TestRun_FetchErrorFailsBatch(t *testing.T) {
	scanner := &fakeScanner{
		start: func(batch int, ids []string) (string, error) {
			return "scan-1", nil
		},
		statuses: map[string][]string{"scan-1": {"Succeeded"}},
		fetchErr: map[string]error{"scan-1": fmt.Errorf("scan result scan-1: HTTP 500")},
	}

	stats := NewStats("test", time.Now())
	sched := NewScheduler(scanner, admin.ScanOptions{}, time.Millisecond, 0, noSleep)

	results := sched.Run(context.Background(), makeIDs(5), stats)

	if len(results) != 0 || stats.BatchesFailed != 1 {
		t.Fatalf("fetch failure not isolated: results=%d failed=%d", len(results), stats.BatchesFailed)
	}
}
