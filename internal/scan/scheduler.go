package scan

import (
	"context"
	"log"
	"time"

	"github.com/ventilios/tenantscan/internal/admin"
)

// MaxBatchSize is the platform's hard per-request cap on workspace ids.
const MaxBatchSize = 100

// BatchResult is one successfully scanned batch: the ids it was submitted
// with and the raw, unparsed result document.
type BatchResult struct {
	BatchID int
	IDs     []string
	Raw     []byte
}

// Scheduler partitions the target id list into batches and drives each
// batch's scan job to completion, one batch at a time.
type Scheduler struct {
	scanner      Scanner
	options      admin.ScanOptions
	pollInterval time.Duration
	maxPolls     int
	sleep        SleepFunc
}

// NewScheduler creates a scheduler. sleep may be nil for real sleeping.
func NewScheduler(scanner Scanner, options admin.ScanOptions, pollInterval time.Duration, maxPolls int, sleep SleepFunc) *Scheduler {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Scheduler{
		scanner:      scanner,
		options:      options,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
		sleep:        sleep,
	}
}

// Run scans every batch and returns the results of the batches that
// succeeded. A batch that fails anywhere in its submit, poll, or fetch
// cycle is counted and recorded in stats, and the run moves on to the next
// batch: one bad batch never aborts the run.
func (s *Scheduler) Run(ctx context.Context, ids []string, stats *Stats) []BatchResult {
	batches := Partition(ids, MaxBatchSize)

	var results []BatchResult
	for i, batch := range batches {
		batchID := i + 1
		log.Printf("batch %d/%d: scanning %d workspaces", batchID, len(batches), len(batch))

		raw, err := s.runBatch(ctx, batch)
		if err != nil {
			stats.BatchesFailed++
			stats.AddError("batch %d (%d workspaces): %v", batchID, len(batch), err)
			log.Printf("batch %d/%d failed: %v", batchID, len(batches), err)
			continue
		}

		stats.BatchesSucceeded++
		results = append(results, BatchResult{BatchID: batchID, IDs: batch, Raw: raw})
	}

	return results
}

// runBatch drives one batch through submit, poll, and fetch.
func (s *Scheduler) runBatch(ctx context.Context, ids []string) ([]byte, error) {
	scanID, err := s.scanner.StartScan(ctx, ids, s.options)
	if err != nil {
		return nil, err
	}

	job := NewJob(s.scanner, scanID, s.pollInterval, s.maxPolls, s.sleep)

	status, err := job.Await(ctx)
	if err != nil {
		return nil, err
	}
	if status != StatusSucceeded {
		return nil, &JobFailedError{ScanID: scanID, Status: status}
	}

	return s.scanner.ScanResult(ctx, scanID)
}

// Partition splits ids into consecutive chunks of at most size, preserving
// order. Concatenating the chunks reproduces the input exactly.
func Partition(ids []string, size int) [][]string {
	if size <= 0 {
		size = MaxBatchSize
	}

	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// JobFailedError reports a scan job that reached a terminal state other
// than Succeeded.
type JobFailedError struct {
	ScanID string
	Status string
}

func (e *JobFailedError) Error() string {
	return "scan " + e.ScanID + " ended " + e.Status
}
