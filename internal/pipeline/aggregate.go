package pipeline

import (
	"sort"
	"time"

	"go-data-dashboard/internal/model"
	"go-data-dashboard/pkg/utils"
)

type bucketKey struct {
	series string
	start  time.Time
}

// bucket accumulates the observations of one (series, period) pair
type bucket struct {
	sum      float64
	last     float64
	lastDate time.Time
	observed int
}

func (b *bucket) observe(date time.Time, v float64) {
	b.sum += v
	// ties on date keep the later record in input order
	if b.observed == 0 || !date.Before(b.lastDate) {
		b.last = v
		b.lastDate = date
	}
	b.observed++
}

// reduce returns nil when every observation in the bucket was null
func (b *bucket) reduce(kind model.MetricKind) *float64 {
	if b.observed == 0 {
		return nil
	}
	var v float64
	switch kind {
	case model.Cumulative:
		v = b.last
	case model.Flow:
		v = b.sum
	}
	return &v
}

// ValidateRequest checks the argument contract of Aggregate.
func ValidateRequest(req model.AggregationRequest) error {
	if utils.BeginDay(req.Start).After(utils.BeginDay(req.End)) {
		return &InvalidRangeError{Start: req.Start, End: req.End}
	}
	if !req.MetricKind.Valid() {
		return &UnknownMetricKindError{Kind: req.MetricKind}
	}
	if !req.Granularity.Valid() {
		return &UnknownGranularityError{Granularity: req.Granularity}
	}
	return nil
}

// Aggregate filters records to the requested date range and series, buckets
// them by period and reduces every bucket according to the metric kind:
// cumulative metrics keep the latest observation of the period, flows are
// summed. Null observations are excluded; a week or month with nothing but
// nulls yields a nil value, and at day granularity a null day yields no row.
//
// Buckets are aligned to period boundaries, so the first period_start can
// fall before req.Start. Partial periods at either edge of the range are
// reduced over whatever days they contain.
//
// The result is sorted by (series_key, period_start). It never returns nil
// on success; no matching data gives an empty slice. Aggregate does no I/O
// and keeps no state, so it is safe to call concurrently.
func Aggregate(records []model.RawRecord, req model.AggregationRequest) ([]model.AggregatedRow, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	start, end := utils.BeginDay(req.Start), utils.BeginDay(req.End)
	keys := make(map[string]struct{}, len(req.SeriesKeys))
	for _, k := range req.SeriesKeys {
		keys[k] = struct{}{}
	}

	buckets := make(map[bucketKey]*bucket)
	for _, rec := range records {
		if _, ok := keys[rec.SeriesKey]; !ok {
			continue
		}
		date := utils.BeginDay(rec.Date)
		if date.Before(start) || date.After(end) {
			continue
		}
		v, ok := rec.Value(req.Metric)
		if !ok && req.Granularity == model.Day {
			continue
		}
		k := bucketKey{series: rec.SeriesKey, start: PeriodStart(date, req.Granularity)}
		b, exists := buckets[k]
		if !exists {
			b = &bucket{}
			buckets[k] = b
		}
		if ok {
			b.observe(date, v)
		}
	}

	rows := make([]model.AggregatedRow, 0, len(buckets))
	for k, b := range buckets {
		rows = append(rows, model.AggregatedRow{
			PeriodStart: k.start,
			SeriesKey:   k.series,
			Value:       b.reduce(req.MetricKind),
		})
	}
	SortRows(rows)

	if req.PeakDetection {
		DetectPeaks(rows)
	}
	return rows, nil
}

// SortRows orders rows by series key, then period start
func SortRows(rows []model.AggregatedRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SeriesKey != rows[j].SeriesKey {
			return rows[i].SeriesKey < rows[j].SeriesKey
		}
		return rows[i].PeriodStart.Before(rows[j].PeriodStart)
	})
}

// DetectPeaks fills Derivative with the positive first difference of Value
// between consecutive periods of the same series. rows must be sorted with
// SortRows. The first period of every series, and any period next to a
// nil value, gets a nil derivative.
func DetectPeaks(rows []model.AggregatedRow) {
	for i := range rows {
		rows[i].Derivative = nil
		if i == 0 || rows[i-1].SeriesKey != rows[i].SeriesKey {
			continue
		}
		prev, cur := rows[i-1].Value, rows[i].Value
		if prev == nil || cur == nil {
			continue
		}
		d := *cur - *prev
		if d < 0 {
			d = 0
		}
		rows[i].Derivative = &d
	}
}

// LastPoints returns the final row of every series, in series order. The
// chart layer anchors its end-of-series labels on these.
func LastPoints(rows []model.AggregatedRow) []model.AggregatedRow {
	out := []model.AggregatedRow{}
	for i := range rows {
		if i == len(rows)-1 || rows[i+1].SeriesKey != rows[i].SeriesKey {
			out = append(out, rows[i])
		}
	}
	return out
}
