package model

import "time"

// ExportResult represents the result of an export operation
type ExportResult struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"` // "database", "file"
	Path        string    `json:"path"` // file path or database path
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// CountRow is one value of a ValueCounts result
type CountRow struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// MeltRow is one long-format row produced by Melt
type MeltRow struct {
	ID       string      `json:"id"`
	Variable string      `json:"variable"`
	Value    interface{} `json:"value"`
}

// Matrix is a date x series pivot of one metric
type Matrix struct {
	Metric  string       `json:"metric"`
	Columns []string     `json:"columns"`
	Dates   []time.Time  `json:"dates"`
	Values  [][]*float64 `json:"values"` // Values[date][column]
}
