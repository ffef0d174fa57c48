package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"go-data-dashboard/internal/cache"
	"go-data-dashboard/internal/metrics"
	"go-data-dashboard/internal/model"
)

// Loaded is one dataset after ingestion, validation and conversion
type Loaded struct {
	Dataset  model.Dataset
	Table    *model.Table
	Records  []model.RawRecord // time-series datasets only
	Rejected int
	LoadedAt time.Time
	Metrics  model.LoadMetrics
}

// ------------------- Loader -------------------

// Loader runs the load stages of a dataset: ingest, apply schema, validate
// and, for time series, convert rows to RawRecords.
type Loader struct {
	log     *zap.Logger
	client  *http.Client
	metrics *metrics.Metrics
}

func NewLoader(log *zap.Logger, client *http.Client, m *metrics.Metrics) *Loader {
	if client == nil {
		client = &http.Client{Timeout: time.Minute}
	}
	return &Loader{log: log, client: client, metrics: m}
}

func (l *Loader) Load(ctx context.Context, ds model.Dataset) (loaded *Loaded, err error) {
	tracker := NewTracker(l.log, l.metrics, ds.Name)
	defer func() {
		if err != nil {
			tracker.Fail(err)
		}
	}()

	var sep rune
	if ds.Separator != "" {
		sep = []rune(ds.Separator)[0]
	}

	// --- INGESTION STAGE ---
	tracker.StartStage(StageIngestion)
	raw, skipped, err := IngestCSV(ctx, l.log, l.client, ds.Name, ds.Source, sep)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ds.Name, err)
	}
	tracker.EndStage(StageIngestion, len(raw.Rows), skipped)

	// --- VALIDATION STAGE ---
	tracker.StartStage(StageValidation)
	table := ApplySchema(raw, ds)
	rows, verrs := ValidateTable(table, ds.Validation)
	for _, e := range verrs {
		l.log.Debug("⚠️ Row rejected", zap.String("dataset", ds.Name), zap.Error(e))
	}
	table.Rows = rows
	tracker.EndStage(StageValidation, len(rows), len(verrs))

	loaded = &Loaded{Dataset: ds, Table: table, Rejected: skipped + len(verrs)}

	// --- CONVERSION STAGE ---
	if ds.Kind == model.KindTimeSeries {
		tracker.StartStage(StageConversion)
		for _, col := range []string{ds.SeriesColumn, ds.DateColumn} {
			if !hasColumn(table, col) {
				return nil, fmt.Errorf("load %s: %w", ds.Name, columnError(table, col))
			}
		}
		records, cerrs := ToRawRecords(table, ds)
		for _, e := range cerrs {
			l.log.Debug("⚠️ Row not converted", zap.String("dataset", ds.Name), zap.Error(e))
		}
		loaded.Records = records
		loaded.Rejected += len(cerrs)
		tracker.EndStage(StageConversion, len(records), len(cerrs))
	} else {
		tracker.EndStage(StageConversion, len(rows), 0)
	}

	tracker.Complete()
	loaded.LoadedAt = time.Now()
	loaded.Metrics = tracker.Metrics()
	return loaded, nil
}

// ------------------- Catalog -------------------

// Status is the last known load state of a configured dataset
type Status struct {
	Dataset  model.Dataset `json:"dataset"`
	Loaded   bool          `json:"loaded"`
	Rows     int           `json:"rows"`
	Rejected int           `json:"rejected"`
	LoadedAt *time.Time    `json:"loaded_at,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Catalog serves the configured datasets. Loads and aggregations go through
// the shared cache; concurrent loads of one dataset are collapsed.
type Catalog struct {
	log     *zap.Logger
	loader  *Loader
	cache   *cache.Cache
	metrics *metrics.Metrics
	group   singleflight.Group

	mu       sync.RWMutex
	order    []string
	datasets map[string]model.Dataset
	status   map[string]Status
}

func NewCatalog(log *zap.Logger, loader *Loader, c *cache.Cache, m *metrics.Metrics, datasets []model.Dataset) *Catalog {
	cat := &Catalog{
		log:      log,
		loader:   loader,
		cache:    c,
		metrics:  m,
		datasets: make(map[string]model.Dataset, len(datasets)),
		status:   make(map[string]Status, len(datasets)),
	}
	for _, ds := range datasets {
		if _, dup := cat.datasets[ds.Name]; !dup {
			cat.order = append(cat.order, ds.Name)
		}
		cat.datasets[ds.Name] = ds
		cat.status[ds.Name] = Status{Dataset: ds}
	}
	return cat
}

// Dataset returns the definition of a configured dataset
func (c *Catalog) Dataset(name string) (model.Dataset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ds, ok := c.datasets[name]
	if !ok {
		return model.Dataset{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
	}
	return ds, nil
}

// Statuses lists every dataset in configuration order
func (c *Catalog) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Status, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.status[name])
	}
	return out
}

// Get returns the loaded dataset, loading it on a cache miss
func (c *Catalog) Get(ctx context.Context, name string) (*Loaded, error) {
	ds, err := c.Dataset(name)
	if err != nil {
		return nil, err
	}
	return cache.Memo(c.cache, "load", []interface{}{name}, func() (*Loaded, error) {
		// the load is shared by every waiting caller, so one caller
		// going away must not cancel it
		v, err, _ := c.group.Do(name, func() (interface{}, error) {
			return c.loader.Load(context.WithoutCancel(ctx), ds)
		})
		c.setStatus(ds, v, err)
		if err != nil {
			return nil, err
		}
		return v.(*Loaded), nil
	})
}

func (c *Catalog) setStatus(ds model.Dataset, v interface{}, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{Dataset: ds}
	if err != nil {
		st.Error = err.Error()
	} else if l, ok := v.(*Loaded); ok {
		at := l.LoadedAt
		st.Loaded = true
		st.Rows = len(l.Table.Rows)
		st.Rejected = l.Rejected
		st.LoadedAt = &at
	}
	c.status[ds.Name] = st
}

// TimeSeries returns a loaded time-series dataset
func (c *Catalog) TimeSeries(ctx context.Context, name string) (*Loaded, error) {
	return c.getKind(ctx, name, model.KindTimeSeries)
}

// Table returns a loaded table dataset. Time series are tables too.
func (c *Catalog) Table(ctx context.Context, name string) (*Loaded, error) {
	return c.getKind(ctx, name, "")
}

func (c *Catalog) getKind(ctx context.Context, name, kind string) (*Loaded, error) {
	ds, err := c.Dataset(name)
	if err != nil {
		return nil, err
	}
	if kind != "" && ds.Kind != kind {
		return nil, fmt.Errorf("%w: %s is a %s dataset", ErrWrongDatasetKind, name, ds.Kind)
	}
	return c.Get(ctx, name)
}

// LoadAll loads every dataset concurrently. A failing dataset is logged and
// recorded in its status; only cancellation is returned.
func (c *Catalog) LoadAll(ctx context.Context) error {
	c.mu.RLock()
	names := append([]string(nil), c.order...)
	c.mu.RUnlock()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, name := range names {
		name := name
		g.Go(func() error {
			if _, err := c.Get(ctx, name); err != nil {
				c.log.Warn("⚠️ Dataset unavailable", zap.String("dataset", name), zap.Error(err))
			}
			return ctx.Err()
		})
	}
	return g.Wait()
}

// Aggregate resolves a time-series dataset and aggregates it. Results are
// cached per (dataset, request).
func (c *Catalog) Aggregate(ctx context.Context, name string, req model.AggregationRequest) ([]model.AggregatedRow, error) {
	loaded, err := c.TimeSeries(ctx, name)
	if err != nil {
		return nil, err
	}
	return cache.Memo(c.cache, "aggregate", []interface{}{name, loaded.LoadedAt, req}, func() ([]model.AggregatedRow, error) {
		start := time.Now()
		rows, err := Aggregate(loaded.Records, req)
		c.metrics.ObserveAggregation(req.Granularity.String(), req.MetricKind.String(), start, err)
		return rows, err
	})
}

// Bust drops every cached load and aggregation
func (c *Catalog) Bust() {
	if c.cache != nil {
		c.cache.Bust()
	}
	c.log.Info("🧹 Cache busted")
}

// Evict drops the cached load of one dataset. Its aggregations are keyed by
// load time and go stale with it.
func (c *Catalog) Evict(name string) error {
	if _, err := c.Dataset(name); err != nil {
		return err
	}
	if c.cache == nil {
		return nil
	}
	key, err := cache.Key("load", name)
	if err != nil {
		return err
	}
	c.cache.Delete(key)
	c.log.Info("🧹 Dataset evicted", zap.String("dataset", name))
	return nil
}

// DateBounds returns the first and last date among records
func DateBounds(records []model.RawRecord) (first, last time.Time, ok bool) {
	for _, r := range records {
		if !ok || r.Date.Before(first) {
			first = r.Date
		}
		if !ok || r.Date.After(last) {
			last = r.Date
		}
		ok = true
	}
	return first, last, ok
}

// Metrics lists the metric columns present in the records, sorted
func Metrics(records []model.RawRecord) []string {
	seen := map[string]bool{}
	for _, r := range records {
		for m := range r.Values {
			seen[m] = true
		}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
