// Package config reads the dashboard settings from command-line flags and
// DASHBOARD_* environment variables, and the dataset definitions from YAML.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"

	"go-data-dashboard/internal/cache"
	"go-data-dashboard/internal/model"
)

const envPrefix = "DASHBOARD_"

func env(name string) cli.ValueSourceChain {
	return cli.EnvVars(envPrefix + name)
}

// Config holds the settings shared by the dashboard binaries
type Config struct {
	Addr         string
	DatasetsFile string // empty uses DefaultDatasets
	DBPath       string // empty disables database exports
	ExportDir    string
	Cache        cache.Config
	LogLevel     string
	LogFormat    string // json or console
	Color        bool
	Preload      bool
}

// Flags are the flags shared by every binary
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "datasets",
			Usage:   "YAML file with dataset definitions (built-in covid, cereal and rich when empty)",
			Sources: env("DATASETS"),
		},
		&cli.StringFlag{
			Name:    "db",
			Usage:   "sqlite file for database exports (disabled when empty)",
			Value:   "dashboard.db",
			Sources: env("DB"),
		},
		&cli.StringFlag{
			Name:    "export-dir",
			Usage:   "directory of file exports",
			Value:   "outputs",
			Sources: env("EXPORT_DIR"),
		},
		&cli.DurationFlag{
			Name:    "cache-ttl",
			Usage:   "lifetime of cached loads and aggregations, 0 keeps them until busted",
			Value:   time.Hour,
			Sources: env("CACHE_TTL"),
		},
		&cli.IntFlag{
			Name:    "cache-max-entries",
			Usage:   "maximum number of cached loads and aggregations",
			Value:   1024,
			Sources: env("CACHE_MAX_ENTRIES"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "debug, info, warn or error",
			Value:   "info",
			Sources: env("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "json or console",
			Value:   "console",
			Sources: env("LOG_FORMAT"),
		},
	}
}

// ServerFlags are Flags plus the API server settings
func ServerFlags() []cli.Flag {
	return append(Flags(),
		&cli.StringFlag{
			Name:    "addr",
			Usage:   "address the API listens on",
			Value:   ":8080",
			Sources: env("ADDR"),
		},
		&cli.BoolFlag{
			Name:    "color",
			Usage:   "color request log lines",
			Sources: env("COLOR"),
		},
		&cli.BoolFlag{
			Name:    "preload",
			Usage:   "load every dataset at startup",
			Value:   true,
			Sources: env("PRELOAD"),
		},
	)
}

// FromCommand reads the flags of a parsed command. Flags the command does
// not define read as their zero value.
func FromCommand(cmd *cli.Command) Config {
	return Config{
		Addr:         cmd.String("addr"),
		DatasetsFile: cmd.String("datasets"),
		DBPath:       cmd.String("db"),
		ExportDir:    cmd.String("export-dir"),
		Cache: cache.Config{
			MaxEntries: int64(cmd.Int("cache-max-entries")),
			TTL:        cmd.Duration("cache-ttl"),
		},
		LogLevel:  cmd.String("log-level"),
		LogFormat: cmd.String("log-format"),
		Color:     cmd.Bool("color"),
		Preload:   cmd.Bool("preload"),
	}
}

// Datasets returns the configured datasets
func (c Config) Datasets() ([]model.Dataset, error) {
	if c.DatasetsFile == "" {
		return DefaultDatasets(), nil
	}
	return LoadDatasets(c.DatasetsFile)
}

type datasetsFile struct {
	Datasets []model.Dataset `yaml:"datasets"`
}

// LoadDatasets reads dataset definitions from a YAML file of the form
//
//	datasets:
//	  - name: covid
//	    kind: timeseries
//	    source: https://...
func LoadDatasets(path string) ([]model.Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read datasets: %w", err)
	}
	return ParseDatasets(b)
}

// ParseDatasets decodes and checks YAML dataset definitions
func ParseDatasets(b []byte) ([]model.Dataset, error) {
	var f datasetsFile
	if err := yaml.UnmarshalStrict(b, &f); err != nil {
		return nil, fmt.Errorf("parse datasets: %w", err)
	}
	seen := map[string]bool{}
	for i := range f.Datasets {
		ds := &f.Datasets[i]
		if ds.Name == "" {
			return nil, fmt.Errorf("dataset %d: name is required", i)
		}
		if seen[ds.Name] {
			return nil, fmt.Errorf("dataset %s: defined twice", ds.Name)
		}
		seen[ds.Name] = true
		if ds.Source == "" {
			return nil, fmt.Errorf("dataset %s: source is required", ds.Name)
		}
		if ds.Kind == "" {
			ds.Kind = model.KindTable
		}
		switch ds.Kind {
		case model.KindTable:
		case model.KindTimeSeries:
			if ds.SeriesColumn == "" || ds.DateColumn == "" {
				return nil, fmt.Errorf("dataset %s: timeseries needs seriesColumn and dateColumn", ds.Name)
			}
		default:
			return nil, fmt.Errorf("dataset %s: unknown kind %q", ds.Name, ds.Kind)
		}
		for metric, kind := range ds.Metrics {
			if _, ok := model.ParseMetricKind(kind); !ok {
				return nil, fmt.Errorf("dataset %s: metric %s: unknown kind %q", ds.Name, metric, kind)
			}
		}
		if len([]rune(ds.Separator)) > 1 {
			return nil, fmt.Errorf("dataset %s: separator must be one character", ds.Name)
		}
	}
	return f.Datasets, nil
}

// OWIDCovidURL is the Our World in Data COVID-19 time series
const OWIDCovidURL = "https://covid.ourworldindata.org/data/owid-covid-data.csv"

// Continents are the OWID locations that aggregate countries
var Continents = []string{"Africa", "North America", "South America", "Europe", "Oceania", "Asia"}

// DefaultDatasets are the built-in dashboards: OWID covid, the cereal table
// and the list of the 500 richest persons.
func DefaultDatasets() []model.Dataset {
	return []model.Dataset{
		{
			Name:         "covid",
			Kind:         model.KindTimeSeries,
			Source:       OWIDCovidURL,
			SeriesColumn: "location",
			DateColumn:   "date",
			GroupColumn:  "continent",
			Groups:       Continents,
			Metrics: map[string]string{
				"new_cases":                "flow",
				"new_cases_per_million":    "flow",
				"total_cases":              "cumulative",
				"total_cases_per_million":  "cumulative",
				"new_deaths":               "flow",
				"new_deaths_per_million":   "flow",
				"total_deaths":             "cumulative",
				"total_deaths_per_million": "cumulative",
			},
		},
		{
			Name:   "cereal",
			Kind:   model.KindTable,
			Source: "cereal.csv",
			Validation: &model.ValidationRules{
				RequiredFields: []string{"name"},
			},
		},
		{
			Name:      "rich",
			Kind:      model.KindTable,
			Source:    "rich.csv",
			Separator: ";",
			Drop:      []string{"Unnamed: 7", "Unnamed: 8", "Unnamed: 9", "Unnamed: 10"},
			Validation: &model.ValidationRules{
				RequiredFields: []string{"Rank", "Industry"},
				NumericFields:  []string{"Rank"},
			},
		},
	}
}

// NewLogger builds the process logger
func NewLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	var cfg zap.Config
	switch strings.ToLower(format) {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console", "":
		cfg = zap.NewDevelopmentConfig()
		cfg.Development = false
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("log format: want json or console, got %q", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
