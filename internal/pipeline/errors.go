package pipeline

import (
	"errors"
	"fmt"
	"time"

	"go-data-dashboard/internal/model"
)

var (
	ErrInvalidRange       = errors.New("pipeline: start date after end date")
	ErrUnknownMetricKind  = errors.New("pipeline: unknown metric kind")
	ErrUnknownGranularity = errors.New("pipeline: unknown granularity")
	ErrDatasetNotFound    = errors.New("pipeline: dataset not found")
	ErrWrongDatasetKind   = errors.New("pipeline: wrong dataset kind")
	ErrColumnNotFound     = errors.New("pipeline: column not found")
)

// InvalidRangeError is returned when Start is after End.
type InvalidRangeError struct {
	Start, End time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: start %s is after end %s",
		e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// UnknownMetricKindError is returned for a kind that is neither cumulative nor flow.
// Raw, when set, is the unparsed input.
type UnknownMetricKindError struct {
	Kind model.MetricKind
	Raw  string
}

func (e *UnknownMetricKindError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("unknown metric kind %q: want cumulative or flow", e.Raw)
	}
	return fmt.Sprintf("unknown metric kind %s", e.Kind)
}

func (e *UnknownMetricKindError) Unwrap() error { return ErrUnknownMetricKind }

type UnknownGranularityError struct {
	Granularity model.Granularity
	Raw         string
}

func (e *UnknownGranularityError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("unknown granularity %q: want day, week or month", e.Raw)
	}
	return fmt.Sprintf("unknown granularity %s", e.Granularity)
}

func (e *UnknownGranularityError) Unwrap() error { return ErrUnknownGranularity }
