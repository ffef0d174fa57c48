package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const seriesCSV = "location,continent,date,new_cases,total_cases\n" +
	"Austria,Europe,2023-01-02,1,1\n" +
	"Austria,Europe,2023-01-03,2,3\n" +
	"Austria,Europe,2023-01-09,4,7\n" +
	"Europe,,2023-01-02,5,5\n"

func setupDir(t *testing.T) (dir string, args []string) {
	t.Helper()
	dir = t.TempDir()
	csvPath := filepath.Join(dir, "covid.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(seriesCSV), 0o644))
	yml := fmt.Sprintf(`datasets:
  - name: covid
    kind: timeseries
    source: %s
    seriesColumn: location
    dateColumn: date
    groupColumn: continent
    groups: [Europe]
`, csvPath)
	ymlPath := filepath.Join(dir, "datasets.yaml")
	require.NoError(t, os.WriteFile(ymlPath, []byte(yml), 0o644))
	return dir, []string{"dashboard", "--datasets", ymlPath, "--db", filepath.Join(dir, "exports.db"), "--log-level", "error"}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(context.Background(), args)
	return out.String(), err
}

func TestAggregatePrintsTable(t *testing.T) {
	_, base := setupDir(t)

	out, err := run(t, append(base, "aggregate", "--metric", "new_cases", "--series", "Austria",
		"--granularity", "week", "--start", "2023-01-02", "--end", "2023-01-15", "covid")...)
	require.NoError(t, err)
	require.Contains(t, out, "2023-01-02")
	require.Contains(t, out, "2023-01-09")
	// weekly flow sums: 1+2 and 4
	require.Regexp(t, `2023-01-02\s*\|\s*Austria\s*\|\s*3\s*\|`, out)
	require.Regexp(t, `2023-01-09\s*\|\s*Austria\s*\|\s*4\s*\|`, out)
}

func TestAggregateDefaultRange(t *testing.T) {
	_, base := setupDir(t)

	out, err := run(t, append(base, "aggregate", "--metric", "total_cases", "--days", "7", "covid")...)
	require.NoError(t, err)
	// the last 7 days of data end on 2023-01-09 and start on 2023-01-03
	require.Contains(t, out, "2023-01-03")
	require.Contains(t, out, "2023-01-09")
	require.NotContains(t, out, "2023-01-02")
	require.Contains(t, out, "Austria")
	require.NotContains(t, out, "Europe")
}

func TestAggregateExport(t *testing.T) {
	dir, base := setupDir(t)
	outPath := filepath.Join(dir, "weekly", "austria.csv")

	out, err := run(t, append(base, "aggregate", "--metric", "new_cases", "--series", "Austria",
		"--granularity", "week", "--start", "2023-01-02", "--end", "2023-01-15",
		"--peaks", "--out", outPath, "--save", "covid")...)
	require.NoError(t, err)
	require.Contains(t, out, outPath)
	require.Contains(t, out, "database")

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Equal(t, []string{
		"period_start,series_key,value,derivative",
		"2023-01-02,Austria,3,",
		"2023-01-09,Austria,4,1",
	}, lines)

	out, err = run(t, append(base, "exports")...)
	require.NoError(t, err)
	require.Contains(t, out, "covid")
	require.Contains(t, out, "-db")
}

func TestAggregateErrors(t *testing.T) {
	_, base := setupDir(t)

	_, err := run(t, append(base, "aggregate", "--metric", "new_cases", "--granularity", "year", "covid")...)
	require.ErrorContains(t, err, "granularity")

	_, err = run(t, append(base, "aggregate", "--metric", "new_cases", "--kind", "average", "covid")...)
	require.ErrorContains(t, err, "kind")

	_, err = run(t, append(base, "aggregate", "--metric", "new_cases", "--start", "2023-02-01", "--end", "2023-01-01", "covid")...)
	require.ErrorContains(t, err, "invalid range")

	_, err = run(t, append(base, "aggregate", "--metric", "new_cases", "flu")...)
	require.ErrorContains(t, err, "flu")

	_, err = run(t, append(base, "aggregate", "--metric", "new_cases")...)
	require.ErrorContains(t, err, "dataset name")
}

func TestListDatasets(t *testing.T) {
	_, base := setupDir(t)

	out, err := run(t, append(base, "datasets", "--load")...)
	require.NoError(t, err)
	require.Contains(t, out, "covid")
	require.Contains(t, out, "timeseries")
	require.Regexp(t, `\|\s*4\s*\|`, out)
}
