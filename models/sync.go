package models

import (
	"errors"
	"time"
)

// Phase is the terminal state of one data-set inside a sync run.
type Phase string

const (
	PhaseRunning Phase = "running"
	PhaseSuccess Phase = "success"
	PhaseFailed  Phase = "failed"
)

// DatasetResult holds the outcome of syncing a single data-set.
type DatasetResult struct {
	Dataset    string
	Phase      Phase
	Fetched    int
	Dropped    int
	Duplicates int
	Upserted   int
	Batches    int
	Duration   time.Duration
	Err        error
	// ByCounty counts the deduplicated restaurants per county.
	ByCounty map[string]int
}

// SyncReport summarises one invocation of the sync pipeline.
type SyncReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []DatasetResult
}

// Failed returns the results whose data-set did not finish successfully.
func (r *SyncReport) Failed() []DatasetResult {
	var failed []DatasetResult
	for _, res := range r.Results {
		if res.Phase != PhaseSuccess {
			failed = append(failed, res)
		}
	}
	return failed
}

// Succeeded reports whether every data-set finished successfully.
func (r *SyncReport) Succeeded() bool {
	return len(r.Failed()) == 0
}

// Err joins the errors of all failed data-sets, or returns nil.
func (r *SyncReport) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// TotalUpserted is the number of rows written across all data-sets.
func (r *SyncReport) TotalUpserted() int {
	total := 0
	for _, res := range r.Results {
		total += res.Upserted
	}
	return total
}

// SyncStatus is the persisted per-data-set state shown by the status command.
type SyncStatus struct {
	Dataset     string     `json:"dataset"`
	RunID       string     `json:"run_id"`
	Phase       Phase      `json:"phase"`
	Message     string     `json:"message"`
	LastAttempt time.Time  `json:"last_attempt"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	RecordCount int        `json:"record_count"`
}

// CountyCount is one row of the per-county breakdown in a RunSummary.
type CountyCount struct {
	County string
	Count  int
}

// RunSummary aggregates a SyncReport for printing.
type RunSummary struct {
	RunID           string
	Duration        time.Duration
	Datasets        int
	FailedDatasets  int
	TotalFetched    int
	TotalDropped    int
	TotalDuplicates int
	TotalUpserted   int
	TopCounties     []CountyCount
}
