package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-data-dashboard/internal/model"
)

const covidCSV = "\ufefflocation,continent,date,new_cases,total_cases\n" +
	"Austria,Europe,2023-01-02,10,100\n" +
	"Austria,Europe,2023-01-03,,100\n" +
	"Europe,,2023-01-02,50,500\n" +
	",Europe,2023-01-02,1,1\n" +
	"Kenya,Africa,not-a-date,1,1\n"

func covidDataset() model.Dataset {
	return model.Dataset{
		Name:         "covid",
		Kind:         model.KindTimeSeries,
		SeriesColumn: "location",
		DateColumn:   "date",
		GroupColumn:  "continent",
	}
}

func TestReadCSV(t *testing.T) {
	table, skipped, err := ReadCSV(context.Background(), strings.NewReader(covidCSV), 0)
	require.NoError(t, err)
	require.Zero(t, skipped)
	require.Equal(t, []string{"location", "continent", "date", "new_cases", "total_cases"}, table.Columns)
	require.Len(t, table.Rows, 5)
	require.Equal(t, 10, table.Rows[0]["new_cases"])
	require.Nil(t, table.Rows[1]["new_cases"])
}

func TestReadCSVSeparatorAndUnnamedColumns(t *testing.T) {
	in := "name;net_worth;;\nA;1.5;;\nB;2\n"
	table, _, err := ReadCSV(context.Background(), strings.NewReader(in), ';')
	require.NoError(t, err)
	require.Equal(t, []string{"name", "net_worth", "Unnamed: 2", "Unnamed: 3"}, table.Columns)
	require.Equal(t, 1.5, table.Rows[0]["net_worth"])
	// short rows are padded with nulls
	require.Nil(t, table.Rows[1]["Unnamed: 3"])
}

func TestReadCSVEmpty(t *testing.T) {
	table, _, err := ReadCSV(context.Background(), strings.NewReader(""), 0)
	require.NoError(t, err)
	require.Empty(t, table.Rows)
}

func TestToRawRecords(t *testing.T) {
	table, _, err := ReadCSV(context.Background(), strings.NewReader(covidCSV), 0)
	require.NoError(t, err)

	records, errs := ToRawRecords(table, covidDataset())
	require.Len(t, records, 3)
	require.Len(t, errs, 2)

	require.Equal(t, "Austria", records[0].SeriesKey)
	require.Equal(t, "Europe", records[0].Group)
	require.Equal(t, date("2023-01-02"), records[0].Date)
	v, ok := records[0].Value("new_cases")
	require.True(t, ok)
	require.Equal(t, 10.0, v)

	_, ok = records[1].Value("new_cases")
	require.False(t, ok)
	v, ok = records[1].Value("total_cases")
	require.True(t, ok)
	require.Equal(t, 100.0, v)

	require.Empty(t, records[2].Group)
}

func TestToRawRecordsConfiguredMetrics(t *testing.T) {
	table, _, err := ReadCSV(context.Background(), strings.NewReader(covidCSV), 0)
	require.NoError(t, err)
	ds := covidDataset()
	ds.Metrics = map[string]string{"total_cases": "cumulative"}

	records, _ := ToRawRecords(table, ds)
	require.NotEmpty(t, records)
	for _, r := range records {
		require.NotContains(t, r.Values, "new_cases")
	}
}

func TestIngestCSVFileAndURL(t *testing.T) {
	log := zap.NewNop()

	path := filepath.Join(t.TempDir(), "covid.csv")
	require.NoError(t, os.WriteFile(path, []byte(covidCSV), 0o644))
	table, _, err := IngestCSV(context.Background(), log, http.DefaultClient, "covid", path, 0)
	require.NoError(t, err)
	require.Equal(t, "covid", table.Name)
	require.Len(t, table.Rows, 5)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/covid.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(covidCSV))
	}))
	defer srv.Close()

	table, _, err = IngestCSV(context.Background(), log, srv.Client(), "covid", srv.URL+"/covid.csv", 0)
	require.NoError(t, err)
	require.Len(t, table.Rows, 5)

	_, _, err = IngestCSV(context.Background(), log, srv.Client(), "covid", srv.URL+"/missing.csv", 0)
	require.Error(t, err)

	_, _, err = IngestCSV(context.Background(), log, http.DefaultClient, "covid", filepath.Join(t.TempDir(), "nope.csv"), 0)
	require.Error(t, err)
}

func TestValidateTable(t *testing.T) {
	table := cerealTable()
	valid, errs := ValidateTable(table, &model.ValidationRules{
		RequiredFields: []string{"name"},
		NumericFields:  []string{"calories", "rating"},
		MinValues:      map[string]float64{"rating": 40},
	})
	// Apple Jacks is below the minimum; Corn Pops has no rating, which is allowed
	require.Len(t, valid, 4)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "row 3")

	valid, errs = ValidateTable(table, nil)
	require.Len(t, valid, 5)
	require.Empty(t, errs)

	_, errs = ValidateTable(table, &model.ValidationRules{NumericFields: []string{"name"}})
	require.Len(t, errs, 5)
}
