package chart

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-data-dashboard/internal/model"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func f(v float64) *float64 { return &v }

func day(d int) time.Time { return time.Date(2023, 1, d, 0, 0, 0, 0, time.UTC) }

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": PNG, "png": PNG, "SVG": SVG} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseFormat("gif")
	require.Error(t, err)
	require.Equal(t, "image/svg+xml", SVG.ContentType())
	require.Equal(t, "image/png", PNG.ContentType())
}

func TestLinePNG(t *testing.T) {
	rows := []model.AggregatedRow{
		{PeriodStart: day(2), SeriesKey: "Austria", Value: f(10)},
		{PeriodStart: day(3), SeriesKey: "Austria", Value: f(20), Derivative: f(10)},
		{PeriodStart: day(4), SeriesKey: "Austria", Value: nil},
		{PeriodStart: day(2), SeriesKey: "Europe", Value: f(100)},
		{PeriodStart: day(3), SeriesKey: "Europe", Value: f(90), Derivative: f(0)},
	}
	var buf bytes.Buffer
	require.NoError(t, Line(&buf, Options{Title: "new_cases", Format: PNG}, rows))
	require.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestLineSVGSinglePoint(t *testing.T) {
	rows := []model.AggregatedRow{{PeriodStart: day(2), SeriesKey: "Austria", Value: f(0)}}
	var buf bytes.Buffer
	require.NoError(t, Line(&buf, Options{Format: SVG, Width: 400, Height: 300}, rows))
	require.Contains(t, buf.String(), "<svg")
	require.Contains(t, buf.String(), "Austria")
}

func TestLineNoData(t *testing.T) {
	var buf bytes.Buffer
	require.ErrorIs(t, Line(&buf, Options{}, nil), ErrNoData)
	rows := []model.AggregatedRow{{PeriodStart: day(2), SeriesKey: "Austria"}}
	require.ErrorIs(t, Line(&buf, Options{}, rows), ErrNoData)
}

func TestBars(t *testing.T) {
	counts := []model.CountRow{{Value: "Technology", Count: 2}, {Value: "Automotive", Count: 1}, {Value: "Fashion", Count: 1}}
	bars := CountBars(counts, 2)
	require.Equal(t, []Bar{{Label: "Technology", Value: 2}, {Label: "Automotive", Value: 1}}, bars)

	var buf bytes.Buffer
	require.NoError(t, Bars(&buf, Options{Title: "industries"}, bars))
	require.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	require.ErrorIs(t, Bars(&buf, Options{}, nil), ErrNoData)
}

func TestMeltBars(t *testing.T) {
	rows := []model.MeltRow{
		{ID: "Cheerios", Variable: "calories", Value: 110},
		{ID: "Cheerios", Variable: "mfr", Value: "G"},
		{ID: "Cheerios", Variable: "rating", Value: 50.8},
		{ID: "Cheerios", Variable: "sugars", Value: nil},
	}
	require.Equal(t, []Bar{{Label: "calories", Value: 110}, {Label: "rating", Value: 50.8}}, MeltBars(rows))
}
