package pipeline

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"go-data-dashboard/internal/metrics"
	"go-data-dashboard/internal/model"
)

// Load stages
const (
	StageIngestion  = "ingestion"
	StageValidation = "validation"
	StageConversion = "conversion"
)

// Tracker records stage timings of a dataset load, logs them and exports
// them as prometheus metrics.
type Tracker struct {
	log     *zap.Logger
	metrics *metrics.Metrics

	mu   sync.RWMutex
	load model.LoadMetrics
}

func NewTracker(log *zap.Logger, m *metrics.Metrics, dataset string) *Tracker {
	return &Tracker{
		log:     log.With(zap.String("dataset", dataset)),
		metrics: m,
		load: model.LoadMetrics{
			Dataset:   dataset,
			StartTime: time.Now(),
			Status:    "running",
			Stages:    make(map[string]model.StageMetrics),
		},
	}
}

// StartStage marks the start of a load stage
func (t *Tracker) StartStage(stage string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.load.Stages[stage] = model.StageMetrics{StartTime: time.Now(), Status: "running"}
	t.log.Debug("📊 Stage started", zap.String("stage", stage))
}

// EndStage marks the end of a load stage
func (t *Tracker) EndStage(stage string, processed, failed int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	s := t.load.Stages[stage]
	if s.StartTime.IsZero() {
		s.StartTime = now
	}
	s.EndTime = &now
	s.Duration = now.Sub(s.StartTime)
	s.RecordsProcessed = int64(processed)
	s.ErrorCount = int64(failed)
	s.Status = "completed"
	t.load.Stages[stage] = s

	switch stage {
	case StageIngestion:
		t.load.TotalRecords = int64(processed)
	case StageConversion:
		t.load.ValidRecords = int64(processed)
	}
	t.load.InvalidRecords += int64(failed)

	t.metrics.ObserveStage(t.load.Dataset, stage, s.Duration)
	t.log.Debug("📊 Stage completed",
		zap.String("stage", stage),
		zap.Int("records", processed),
		zap.Int("errors", failed),
		zap.Duration("duration", s.Duration),
	)
}

// Complete marks the load as completed
func (t *Tracker) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.load.EndTime = &now
	t.load.Duration = now.Sub(t.load.StartTime)
	t.load.Status = "completed"

	t.metrics.SetDatasetRows(t.load.Dataset, int(t.load.ValidRecords), int(t.load.InvalidRecords))
	t.log.Info("🏁 Dataset loaded",
		zap.Duration("duration", t.load.Duration),
		zap.Int64("total", t.load.TotalRecords),
		zap.Int64("valid", t.load.ValidRecords),
		zap.Int64("invalid", t.load.InvalidRecords),
	)
}

// Fail marks the load as failed
func (t *Tracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.load.EndTime = &now
	t.load.Duration = now.Sub(t.load.StartTime)
	t.load.Status = "failed"
	t.load.LastError = err.Error()
	for name, s := range t.load.Stages {
		if s.Status == "running" {
			s.Status = "failed"
			t.load.Stages[name] = s
		}
	}

	t.log.Error("❌ Dataset load failed", zap.Duration("duration", t.load.Duration), zap.Error(err))
}

// Metrics returns a copy of the load metrics
func (t *Tracker) Metrics() model.LoadMetrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := t.load
	out.Stages = make(map[string]model.StageMetrics, len(t.load.Stages))
	for k, v := range t.load.Stages {
		out.Stages[k] = v
	}
	return out
}
