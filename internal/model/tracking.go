package model

import "time"

// StageMetrics represents metrics for one stage of a dataset load
type StageMetrics struct {
	StartTime        time.Time     `json:"start_time"`
	EndTime          *time.Time    `json:"end_time,omitempty"`
	Duration         time.Duration `json:"duration,omitempty"`
	RecordsProcessed int64         `json:"records_processed"`
	ErrorCount       int64         `json:"error_count"`
	Status           string        `json:"status"` // "running", "completed", "failed"
}

// LoadMetrics represents the outcome of the last load of a dataset
type LoadMetrics struct {
	Dataset        string                  `json:"dataset"`
	StartTime      time.Time               `json:"start_time"`
	EndTime        *time.Time              `json:"end_time,omitempty"`
	Duration       time.Duration           `json:"duration,omitempty"`
	Status         string                  `json:"status"`
	TotalRecords   int64                   `json:"total_records"`
	ValidRecords   int64                   `json:"valid_records"`
	InvalidRecords int64                   `json:"invalid_records"`
	Stages         map[string]StageMetrics `json:"stages"`
	LastError      string                  `json:"last_error,omitempty"`
}
