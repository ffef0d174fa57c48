package model

// GenericRecord is a schema-agnostic map for any tabular row
type GenericRecord map[string]interface{}

// Dataset kinds
const (
	KindTimeSeries = "timeseries"
	KindTable      = "table"
)

// ValidationRules defines validation requirements for a dataset
type ValidationRules struct {
	RequiredFields []string           `json:"requiredFields" yaml:"requiredFields"` // fields that must be present
	NumericFields  []string           `json:"numericFields" yaml:"numericFields"`   // fields that must be numeric
	MinValues      map[string]float64 `json:"minValues" yaml:"minValues"`
	MaxValues      map[string]float64 `json:"maxValues" yaml:"maxValues"`
}

// Dataset describes one tabular source and how to read it
type Dataset struct {
	Name      string            `json:"name" yaml:"name"`
	Kind      string            `json:"kind" yaml:"kind"`     // timeseries or table
	Source    string            `json:"source" yaml:"source"` // file path or http(s) URL
	Separator string            `json:"separator,omitempty" yaml:"separator"`
	Rename    map[string]string `json:"rename,omitempty" yaml:"rename"`
	Drop      []string          `json:"drop,omitempty" yaml:"drop"`

	// time series only
	SeriesColumn string            `json:"seriesColumn,omitempty" yaml:"seriesColumn"`
	DateColumn   string            `json:"dateColumn,omitempty" yaml:"dateColumn"`
	GroupColumn  string            `json:"groupColumn,omitempty" yaml:"groupColumn"`
	Groups       []string          `json:"groups,omitempty" yaml:"groups"`   // series keys that are themselves groups (e.g. continents)
	Metrics      map[string]string `json:"metrics,omitempty" yaml:"metrics"` // metric -> cumulative|flow

	Validation *ValidationRules `json:"validation,omitempty" yaml:"validation"`
}

// MetricKind returns the configured kind of the named metric, inferring it from
// the name when the dataset does not say.
func (d Dataset) MetricKind(metric string) MetricKind {
	if k, ok := ParseMetricKind(d.Metrics[metric]); ok {
		return k
	}
	return InferMetricKind(metric)
}

// Table is an in-memory tabular dataset with a stable column order
type Table struct {
	Name    string          `json:"name"`
	Columns []string        `json:"columns"`
	Rows    []GenericRecord `json:"rows"`
}

// Export defines export targets
type Export struct {
	DB   bool   `json:"db,omitempty"`   // save rows to the sqlite export tables
	File string `json:"file,omitempty"` // .csv, .json or .parquet; relative paths land in the job directory
}
