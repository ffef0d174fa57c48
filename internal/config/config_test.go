package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"go-data-dashboard/internal/model"
)

const datasetsYAML = `
datasets:
  - name: covid
    kind: timeseries
    source: data/owid-covid-data.csv
    seriesColumn: location
    dateColumn: date
    groupColumn: continent
    groups: [Europe, Asia]
    metrics:
      new_cases: flow
      total_cases: cumulative
  - name: rich
    source: rich.csv
    separator: ";"
    drop: ["Unnamed: 7"]
    validation:
      requiredFields: [Rank]
      numericFields: [Rank]
`

func TestParseDatasets(t *testing.T) {
	datasets, err := ParseDatasets([]byte(datasetsYAML))
	require.NoError(t, err)
	require.Len(t, datasets, 2)

	covid := datasets[0]
	require.Equal(t, model.KindTimeSeries, covid.Kind)
	require.Equal(t, []string{"Europe", "Asia"}, covid.Groups)
	require.Equal(t, model.Cumulative, covid.MetricKind("total_cases"))
	require.Equal(t, model.Flow, covid.MetricKind("new_cases"))

	rich := datasets[1]
	require.Equal(t, model.KindTable, rich.Kind)
	require.Equal(t, ";", rich.Separator)
	require.Equal(t, []string{"Rank"}, rich.Validation.NumericFields)
}

func TestParseDatasetsErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"no name", "datasets:\n  - source: a.csv\n", "name is required"},
		{"no source", "datasets:\n  - name: a\n", "source is required"},
		{"duplicate", "datasets:\n  - {name: a, source: a.csv}\n  - {name: a, source: b.csv}\n", "defined twice"},
		{"bad kind", "datasets:\n  - {name: a, source: a.csv, kind: graph}\n", "unknown kind"},
		{"timeseries keys", "datasets:\n  - {name: a, source: a.csv, kind: timeseries}\n", "seriesColumn"},
		{"metric kind", "datasets:\n  - {name: a, source: a.csv, metrics: {x: average}}\n", "metric x"},
		{"separator", "datasets:\n  - {name: a, source: a.csv, separator: ';;'}\n", "one character"},
		{"unknown field", "datasets:\n  - {name: a, source: a.csv, colour: red}\n", "parse datasets"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDatasets([]byte(tt.yaml))
			require.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestLoadDatasetsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datasets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(datasetsYAML), 0o644))

	cfg := Config{DatasetsFile: path}
	datasets, err := cfg.Datasets()
	require.NoError(t, err)
	require.Len(t, datasets, 2)

	_, err = LoadDatasets(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDefaultDatasets(t *testing.T) {
	datasets, err := Config{}.Datasets()
	require.NoError(t, err)
	require.Len(t, datasets, 3)

	names := []string{}
	for _, ds := range datasets {
		names = append(names, ds.Name)
	}
	require.Equal(t, []string{"covid", "cereal", "rich"}, names)
	require.Equal(t, Continents, datasets[0].Groups)
	require.Equal(t, ";", datasets[2].Separator)
}

func TestFromCommand(t *testing.T) {
	t.Setenv("DASHBOARD_CACHE_TTL", "5m")
	t.Setenv("DASHBOARD_LOG_FORMAT", "json")

	var got Config
	cmd := &cli.Command{
		Name:  "test",
		Flags: ServerFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			got = FromCommand(cmd)
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), []string{"test", "--addr", ":9090", "--cache-max-entries", "10"}))

	require.Equal(t, ":9090", got.Addr)
	require.Equal(t, 5*time.Minute, got.Cache.TTL)
	require.Equal(t, int64(10), got.Cache.MaxEntries)
	require.Equal(t, "json", got.LogFormat)
	require.Equal(t, "dashboard.db", got.DBPath)
	require.True(t, got.Preload)
	require.False(t, got.Color)
}

func TestFromCommandWithoutServerFlags(t *testing.T) {
	var got Config
	cmd := &cli.Command{
		Name:  "test",
		Flags: Flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			got = FromCommand(cmd)
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), []string{"test", "--export-dir", "out"}))
	require.Equal(t, "out", got.ExportDir)
	require.Empty(t, got.Addr)
	require.False(t, got.Preload)
	require.Equal(t, time.Hour, got.Cache.TTL)
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("debug", "json")
	require.NoError(t, err)
	require.NotNil(t, log)

	_, err = NewLogger("loud", "json")
	require.Error(t, err)
	_, err = NewLogger("info", "xml")
	require.Error(t, err)
}
