package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/ventilios/tenantscan/internal/admin"
)

// Scan job status values as reported by the admin API.
const (
	StatusNotStarted = "NotStarted"
	StatusRunning    = "Running"
	StatusSucceeded  = "Succeeded"
	StatusFailed     = "Failed"
)

// Scanner is the slice of the admin gateway the job machinery needs.
type Scanner interface {
	StartScan(ctx context.Context, workspaceIDs []string, opts admin.ScanOptions) (string, error)
	ScanStatus(ctx context.Context, scanID string) (string, error)
	ScanResult(ctx context.Context, scanID string) ([]byte, error)
}

// SleepFunc is injectable so tests can drive polling without real delays.
type SleepFunc func(time.Duration)

// Job tracks one submitted scan job until it reaches a terminal state.
//
//	Submitted -> {NotStarted, Running}* -> {Succeeded | Failed}
type Job struct {
	ScanID string

	scanner  Scanner
	interval time.Duration
	maxPolls int
	sleep    SleepFunc
}

// NewJob wraps an already-submitted scan. maxPolls of zero means poll
// forever; a stuck job then blocks its batch until the operator interrupts
// the run, which is the reference behavior.
func NewJob(scanner Scanner, scanID string, interval time.Duration, maxPolls int, sleep SleepFunc) *Job {
	if sleep == nil {
		sleep = time.Sleep
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Job{
		ScanID:   scanID,
		scanner:  scanner,
		interval: interval,
		maxPolls: maxPolls,
		sleep:    sleep,
	}
}

// Await polls the job on a fixed interval until its status leaves
// {NotStarted, Running}, and returns the terminal status. Any status value
// it does not recognize is terminal: the job is no longer making progress.
func (j *Job) Await(ctx context.Context) (string, error) {
	polls := 0
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		status, err := j.scanner.ScanStatus(ctx, j.ScanID)
		if err != nil {
			return "", fmt.Errorf("poll scan %s: %w", j.ScanID, err)
		}

		if status != StatusNotStarted && status != StatusRunning {
			return status, nil
		}

		polls++
		if j.maxPolls > 0 && polls >= j.maxPolls {
			return "", fmt.Errorf("scan %s still %s after %d polls", j.ScanID, status, polls)
		}

		j.sleep(j.interval)
	}
}
