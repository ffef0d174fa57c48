package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MetricKind tells the aggregator how a metric reduces over a period.
type MetricKind int

const (
	// Cumulative metrics are running totals; a period reports its last observation.
	Cumulative MetricKind = iota + 1
	// Flow metrics belong to the day they were observed; a period reports their sum.
	Flow
)

func (k MetricKind) String() string {
	switch k {
	case Cumulative:
		return "cumulative"
	case Flow:
		return "flow"
	default:
		return fmt.Sprintf("MetricKind(%d)", int(k))
	}
}

func (k MetricKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *MetricKind) UnmarshalText(b []byte) error {
	v, ok := ParseMetricKind(string(b))
	if !ok {
		return fmt.Errorf("unknown metric kind %q", b)
	}
	*k = v
	return nil
}

// Valid reports whether k is one of the enumerated kinds.
func (k MetricKind) Valid() bool {
	return k == Cumulative || k == Flow
}

// ParseMetricKind accepts "cumulative"/"total" and "flow"/"new".
func ParseMetricKind(s string) (MetricKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cumulative", "total":
		return Cumulative, true
	case "flow", "new":
		return Flow, true
	}
	return 0, false
}

// InferMetricKind classifies a metric by its column name: anything
// mentioning "total" is cumulative, everything else is a flow.
func InferMetricKind(metric string) MetricKind {
	if strings.Contains(strings.ToLower(metric), "total") {
		return Cumulative
	}
	return Flow
}

// Granularity is the period length daily data is resampled to.
type Granularity int

const (
	Day Granularity = iota + 1
	Week
	Month
)

func (g Granularity) String() string {
	switch g {
	case Day:
		return "day"
	case Week:
		return "week"
	case Month:
		return "month"
	default:
		return fmt.Sprintf("Granularity(%d)", int(g))
	}
}

func (g Granularity) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *Granularity) UnmarshalText(b []byte) error {
	v, ok := ParseGranularity(string(b))
	if !ok {
		return fmt.Errorf("unknown granularity %q", b)
	}
	*g = v
	return nil
}

func (g Granularity) Valid() bool {
	return g == Day || g == Week || g == Month
}

func ParseGranularity(s string) (Granularity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "d", "daily":
		return Day, true
	case "week", "w", "weekly":
		return Week, true
	case "month", "m", "monthly":
		return Month, true
	}
	return 0, false
}

// RawRecord is one observation of a series on a calendar date.
// A metric missing from Values, or stored as NaN, is null.
type RawRecord struct {
	SeriesKey string             `json:"series_key"`
	Date      time.Time          `json:"date"`
	Group     string             `json:"group,omitempty"` // e.g. continent
	Values    map[string]float64 `json:"values"`
}

// Value returns the named metric and whether it is non-null.
func (r RawRecord) Value(metric string) (float64, bool) {
	v, ok := r.Values[metric]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// AggregatedRow is one reduced period of one series.
type AggregatedRow struct {
	PeriodStart time.Time `json:"period_start" parquet:"period_start,timestamp"`
	SeriesKey   string    `json:"series_key" parquet:"series_key"`
	Value       *float64  `json:"value" parquet:"value,optional"`
	Derivative  *float64  `json:"derivative,omitempty" parquet:"derivative,optional"`
}

// AggregationRequest carries every parameter the aggregator needs. Callers
// build it from their own widget/query state; nothing is read ambiently.
type AggregationRequest struct {
	Start         time.Time   `json:"start"`
	End           time.Time   `json:"end"`
	SeriesKeys    []string    `json:"series_keys"`
	Granularity   Granularity `json:"granularity"`
	Metric        string      `json:"metric"`
	MetricKind    MetricKind  `json:"metric_kind"`
	PeakDetection bool        `json:"peak_detection"`
}
