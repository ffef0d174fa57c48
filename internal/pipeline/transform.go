package pipeline

import (
	"fmt"
	"sort"
	"time"

	"go-data-dashboard/internal/model"
	"go-data-dashboard/pkg/utils"
)

// ApplySchema renames and drops columns as the dataset asks. The input
// table is not modified.
func ApplySchema(table *model.Table, ds model.Dataset) *model.Table {
	drop := make(map[string]bool, len(ds.Drop))
	for _, c := range ds.Drop {
		drop[c] = true
	}
	rename := func(c string) string {
		if to, ok := ds.Rename[c]; ok {
			return to
		}
		return c
	}

	out := &model.Table{Name: table.Name}
	for _, c := range table.Columns {
		if !drop[c] {
			out.Columns = append(out.Columns, rename(c))
		}
	}
	out.Rows = make([]model.GenericRecord, len(table.Rows))
	for i, row := range table.Rows {
		rec := make(model.GenericRecord, len(out.Columns))
		for k, v := range row {
			if !drop[k] {
				rec[rename(k)] = v
			}
		}
		out.Rows[i] = rec
	}
	return out
}

func hasColumn(table *model.Table, column string) bool {
	for _, c := range table.Columns {
		if c == column {
			return true
		}
	}
	return false
}

func columnError(table *model.Table, column string) error {
	return fmt.Errorf("%w: %q in %s", ErrColumnNotFound, column, table.Name)
}

// FilterEquals keeps the rows whose column renders as value
func FilterEquals(table *model.Table, column, value string) (*model.Table, error) {
	return FilterIn(table, column, []string{value})
}

// FilterIn keeps the rows whose column renders as one of values
func FilterIn(table *model.Table, column string, values []string) (*model.Table, error) {
	if !hasColumn(table, column) {
		return nil, columnError(table, column)
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	out := &model.Table{Name: table.Name, Columns: table.Columns}
	for _, row := range table.Rows {
		if set[utils.Stringify(row[column])] {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

// FilterRange keeps the rows whose numeric column lies in [min, max]
func FilterRange(table *model.Table, column string, min, max float64) (*model.Table, error) {
	if !hasColumn(table, column) {
		return nil, columnError(table, column)
	}
	out := &model.Table{Name: table.Name, Columns: table.Columns}
	for _, row := range table.Rows {
		v, ok := utils.ToFloat(row[column])
		if ok && v >= min && v <= max {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

// NumericRange returns the smallest and largest numeric value of a column
func NumericRange(table *model.Table, column string) (min, max float64, ok bool) {
	for _, row := range table.Rows {
		v, isNum := utils.ToFloat(row[column])
		if !isNum {
			continue
		}
		if !ok || v < min {
			min = v
		}
		if !ok || v > max {
			max = v
		}
		ok = true
	}
	return min, max, ok
}

// Melt unpivots every column except idColumn into (id, variable, value)
// rows, in row order then column order.
func Melt(table *model.Table, idColumn string) ([]model.MeltRow, error) {
	if !hasColumn(table, idColumn) {
		return nil, columnError(table, idColumn)
	}
	out := make([]model.MeltRow, 0, len(table.Rows)*(len(table.Columns)-1))
	for _, row := range table.Rows {
		id := utils.Stringify(row[idColumn])
		for _, c := range table.Columns {
			if c == idColumn {
				continue
			}
			out = append(out, model.MeltRow{ID: id, Variable: c, Value: row[c]})
		}
	}
	return out, nil
}

// ValueCounts counts the rows per distinct value of column, most frequent
// first; ties keep first-seen order.
func ValueCounts(table *model.Table, column string) ([]model.CountRow, error) {
	if !hasColumn(table, column) {
		return nil, columnError(table, column)
	}
	index := map[string]int{}
	var out []model.CountRow
	for _, row := range table.Rows {
		v := utils.Stringify(row[column])
		if v == "" {
			continue
		}
		i, ok := index[v]
		if !ok {
			i = len(out)
			index[v] = i
			out = append(out, model.CountRow{Value: v})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

// Unique returns the distinct non-empty values of column in first-seen order
func Unique(table *model.Table, column string) ([]string, error) {
	if !hasColumn(table, column) {
		return nil, columnError(table, column)
	}
	seen := map[string]bool{}
	var out []string
	for _, row := range table.Rows {
		v := utils.Stringify(row[column])
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out, nil
}

// Series key scopes
const (
	ScopeAll    = "all"
	ScopeGroups = "group"  // keys that are groups themselves (continents)
	ScopeMember = "member" // keys that are not groups (countries)
)

// SeriesKeys lists the distinct series keys in first-seen order. scope
// selects all keys, only the dataset's group keys, or only the others; a
// non-empty group further restricts the keys to records of that group.
func SeriesKeys(records []model.RawRecord, ds model.Dataset, scope, group string) []string {
	groups := make(map[string]bool, len(ds.Groups))
	for _, g := range ds.Groups {
		groups[g] = true
	}
	seen := map[string]bool{}
	var out []string
	for _, r := range records {
		if seen[r.SeriesKey] {
			continue
		}
		if group != "" && r.Group != group {
			continue
		}
		switch scope {
		case ScopeGroups:
			if !groups[r.SeriesKey] {
				continue
			}
		case ScopeMember:
			if groups[r.SeriesKey] {
				continue
			}
		}
		seen[r.SeriesKey] = true
		out = append(out, r.SeriesKey)
	}
	return out
}

// FilterGroup keeps the records of one group (e.g. one continent)
func FilterGroup(records []model.RawRecord, group string) []model.RawRecord {
	var out []model.RawRecord
	for _, r := range records {
		if r.Group == group {
			out = append(out, r)
		}
	}
	return out
}

// Pivot builds a date x series matrix of one metric. Columns are sorted
// series keys, dates ascending; a missing observation is nil.
func Pivot(records []model.RawRecord, metric string) model.Matrix {
	colIndex := map[string]int{}
	dateIndex := map[time.Time]int{}
	var cols []string
	var dates []time.Time
	for _, r := range records {
		if _, ok := colIndex[r.SeriesKey]; !ok {
			colIndex[r.SeriesKey] = 0
			cols = append(cols, r.SeriesKey)
		}
		d := utils.BeginDay(r.Date)
		if _, ok := dateIndex[d]; !ok {
			dateIndex[d] = 0
			dates = append(dates, d)
		}
	}
	sort.Strings(cols)
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	for i, c := range cols {
		colIndex[c] = i
	}
	for i, d := range dates {
		dateIndex[d] = i
	}

	values := make([][]*float64, len(dates))
	for i := range values {
		values[i] = make([]*float64, len(cols))
	}
	for _, r := range records {
		if v, ok := r.Value(metric); ok {
			v := v
			values[dateIndex[utils.BeginDay(r.Date)]][colIndex[r.SeriesKey]] = &v
		}
	}
	return model.Matrix{Metric: metric, Columns: cols, Dates: dates, Values: values}
}
