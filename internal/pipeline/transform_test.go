package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go-data-dashboard/internal/model"
)

func cerealTable() *model.Table {
	return &model.Table{
		Name:    "cereal",
		Columns: []string{"name", "mfr", "calories", "rating"},
		Rows: []model.GenericRecord{
			{"name": "100% Bran", "mfr": "N", "calories": 70, "rating": 68.4},
			{"name": "All-Bran", "mfr": "K", "calories": 70, "rating": 59.4},
			{"name": "Apple Jacks", "mfr": "K", "calories": 110, "rating": 33.2},
			{"name": "Cheerios", "mfr": "G", "calories": 110, "rating": 50.8},
			{"name": "Corn Pops", "mfr": "K", "calories": 110, "rating": nil},
		},
	}
}

func TestApplySchema(t *testing.T) {
	table := cerealTable()
	out := ApplySchema(table, model.Dataset{
		Rename: map[string]string{"mfr": "manufacturer"},
		Drop:   []string{"rating"},
	})
	require.Equal(t, []string{"name", "manufacturer", "calories"}, out.Columns)
	require.Equal(t, "N", out.Rows[0]["manufacturer"])
	require.NotContains(t, out.Rows[0], "rating")
	require.NotContains(t, out.Rows[0], "mfr")

	// input untouched
	require.Equal(t, "N", table.Rows[0]["mfr"])
	require.Len(t, table.Columns, 4)
}

func TestFilters(t *testing.T) {
	table := cerealTable()

	k, err := FilterEquals(table, "mfr", "K")
	require.NoError(t, err)
	require.Len(t, k.Rows, 3)

	in, err := FilterIn(table, "mfr", []string{"N", "G"})
	require.NoError(t, err)
	require.Len(t, in.Rows, 2)

	cal, err := FilterEquals(table, "calories", "110")
	require.NoError(t, err)
	require.Len(t, cal.Rows, 3)

	rng, err := FilterRange(table, "rating", 50, 70)
	require.NoError(t, err)
	require.Len(t, rng.Rows, 3)

	_, err = FilterEquals(table, "sugar", "1")
	require.ErrorIs(t, err, ErrColumnNotFound)
	_, err = FilterRange(table, "sugar", 0, 1)
	require.ErrorIs(t, err, ErrColumnNotFound)
}

func TestNumericRange(t *testing.T) {
	min, max, ok := NumericRange(cerealTable(), "rating")
	require.True(t, ok)
	require.Equal(t, 33.2, min)
	require.Equal(t, 68.4, max)

	_, _, ok = NumericRange(cerealTable(), "name")
	require.False(t, ok)
}

func TestMelt(t *testing.T) {
	table := &model.Table{
		Columns: []string{"name", "2019", "2020"},
		Rows: []model.GenericRecord{
			{"name": "a", "2019": 1, "2020": 2},
			{"name": "b", "2019": 3, "2020": nil},
		},
	}
	rows, err := Melt(table, "name")
	require.NoError(t, err)
	require.Equal(t, []model.MeltRow{
		{ID: "a", Variable: "2019", Value: 1},
		{ID: "a", Variable: "2020", Value: 2},
		{ID: "b", Variable: "2019", Value: 3},
		{ID: "b", Variable: "2020", Value: nil},
	}, rows)

	_, err = Melt(table, "id")
	require.ErrorIs(t, err, ErrColumnNotFound)
}

func TestValueCountsAndUnique(t *testing.T) {
	counts, err := ValueCounts(cerealTable(), "mfr")
	require.NoError(t, err)
	require.Equal(t, []model.CountRow{
		{Value: "K", Count: 3},
		{Value: "N", Count: 1},
		{Value: "G", Count: 1},
	}, counts)

	uniq, err := Unique(cerealTable(), "mfr")
	require.NoError(t, err)
	require.Equal(t, []string{"N", "K", "G"}, uniq)
}

func covidRecords() []model.RawRecord {
	return []model.RawRecord{
		{SeriesKey: "Austria", Group: "Europe", Date: date("2023-01-02"), Values: map[string]float64{"new_cases": 1}},
		{SeriesKey: "Europe", Date: date("2023-01-02"), Values: map[string]float64{"new_cases": 9}},
		{SeriesKey: "Kenya", Group: "Africa", Date: date("2023-01-02"), Values: map[string]float64{"new_cases": 3}},
		{SeriesKey: "Austria", Group: "Europe", Date: date("2023-01-03"), Values: map[string]float64{}},
		{SeriesKey: "Africa", Date: date("2023-01-03"), Values: map[string]float64{"new_cases": 4}},
	}
}

func TestSeriesKeys(t *testing.T) {
	ds := model.Dataset{Groups: []string{"Europe", "Africa"}}
	records := covidRecords()

	require.Equal(t, []string{"Austria", "Europe", "Kenya", "Africa"}, SeriesKeys(records, ds, ScopeAll, ""))
	require.Equal(t, []string{"Europe", "Africa"}, SeriesKeys(records, ds, ScopeGroups, ""))
	require.Equal(t, []string{"Austria", "Kenya"}, SeriesKeys(records, ds, ScopeMember, ""))
	require.Equal(t, []string{"Austria"}, SeriesKeys(records, ds, ScopeMember, "Europe"))
	require.Len(t, FilterGroup(records, "Europe"), 2)
}

func TestPivot(t *testing.T) {
	m := Pivot(covidRecords(), "new_cases")
	require.Equal(t, []string{"Africa", "Austria", "Europe", "Kenya"}, m.Columns)
	require.Len(t, m.Dates, 2)
	require.True(t, m.Dates[0].Before(m.Dates[1]))

	// 2023-01-02
	require.Nil(t, m.Values[0][0])
	require.Equal(t, 1.0, *m.Values[0][1])
	require.Equal(t, 9.0, *m.Values[0][2])
	require.Equal(t, 3.0, *m.Values[0][3])
	// 2023-01-03: Austria reported nothing
	require.Equal(t, 4.0, *m.Values[1][0])
	require.Nil(t, m.Values[1][1])
}
