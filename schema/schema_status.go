package schema

import "time"

// CacheStatus represents the status of the engine run cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// RunStatus represents the status of the persistent run store.
type RunStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalRecords  int              `json:"total_records"` // Result rows across all runs
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the slipcheck_run_results table: one
// completed engine run for a single record and polarity.
type RunRecord struct {
	RunID          int64
	AnalysisID     string
	CacheKey       string
	Method         Method
	Direction      Direction
	DisplacementCm float64
	Kmax           *float64
	VsFinalMps     *float64
	DampingFinal   *float64
	EngineVersion  string
	RunTime        time.Time
}
