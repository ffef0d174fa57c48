package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"go-data-dashboard/internal/config"
	"go-data-dashboard/internal/model"
	"go-data-dashboard/internal/pipeline"
	"go-data-dashboard/internal/store"
	"go-data-dashboard/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "one-shot dataset aggregation and export",
		Flags: config.Flags(),
		Commands: []*cli.Command{
			{
				Name:      "aggregate",
				Usage:     "aggregate a time-series dataset and print or export the rows",
				ArgsUsage: "<dataset>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "metric", Aliases: []string{"m"}, Usage: "metric column", Required: true},
					&cli.StringSliceFlag{Name: "series", Aliases: []string{"s"}, Usage: "series keys, all when omitted"},
					&cli.StringFlag{Name: "start", Usage: "first date (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "end", Usage: "last date (YYYY-MM-DD), default the last date in the data"},
					&cli.IntFlag{Name: "days", Usage: "days up to end when start is omitted", Value: 30},
					&cli.StringFlag{Name: "granularity", Aliases: []string{"g"}, Usage: "day, week or month", Value: "day"},
					&cli.StringFlag{Name: "kind", Usage: "cumulative or flow, inferred from the metric when omitted"},
					&cli.BoolFlag{Name: "peaks", Usage: "add the positive first difference of every series"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "export to a .csv, .json or .parquet file instead of printing"},
					&cli.BoolFlag{Name: "save", Usage: "also save the rows to the export database"},
				},
				Action: aggregate,
			},
			{
				Name:  "datasets",
				Usage: "list the configured datasets",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "load", Usage: "load every dataset and report rows"},
				},
				Action: listDatasets,
			},
			{
				Name:   "exports",
				Usage:  "list past exports",
				Action: listExports,
			},
		},
	}
}

func setup(cmd *cli.Command) (config.Config, *zap.Logger, *pipeline.Catalog, error) {
	cfg := config.FromCommand(cmd)
	log, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return cfg, nil, nil, err
	}
	datasets, err := cfg.Datasets()
	if err != nil {
		return cfg, nil, nil, err
	}
	// One-shot runs need no cache or metrics
	catalog := pipeline.NewCatalog(log, pipeline.NewLoader(log, nil, nil), nil, nil, datasets)
	return cfg, log, catalog, nil
}

func aggregate(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("aggregate: want one dataset name, got %d arguments", cmd.Args().Len())
	}
	name := cmd.Args().First()

	cfg, log, catalog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	loaded, err := catalog.TimeSeries(ctx, name)
	if err != nil {
		return err
	}
	req, err := request(cmd, loaded)
	if err != nil {
		return err
	}
	rows, err := catalog.Aggregate(ctx, name, req)
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	out, save := cmd.String("out"), cmd.Bool("save")
	if out == "" && !save {
		printRows(w, rows)
		return nil
	}

	var st *store.Store
	if save {
		if st, err = store.Open(cfg.DBPath); err != nil {
			return err
		}
		defer st.Close()
	}
	results := pipeline.NewExporter(log, st, nil, nil).ExportRows(ctx, name, rows, model.Export{File: out, DB: save})
	printResults(w, results)
	for _, res := range results {
		if !res.Success {
			return fmt.Errorf("export %s failed: %s", res.Type, res.Error)
		}
	}
	return nil
}

// request builds the aggregation request from flags. Dates default to the
// last --days days of data.
func request(cmd *cli.Command, loaded *pipeline.Loaded) (model.AggregationRequest, error) {
	req := model.AggregationRequest{
		SeriesKeys:    cmd.StringSlice("series"),
		Metric:        cmd.String("metric"),
		PeakDetection: cmd.Bool("peaks"),
	}
	if len(req.SeriesKeys) == 0 {
		req.SeriesKeys = pipeline.SeriesKeys(loaded.Records, loaded.Dataset, pipeline.ScopeAll, "")
	}
	var ok bool
	if req.Granularity, ok = model.ParseGranularity(cmd.String("granularity")); !ok {
		return req, fmt.Errorf("granularity: want day, week or month, got %q", cmd.String("granularity"))
	}
	if k := cmd.String("kind"); k != "" {
		if req.MetricKind, ok = model.ParseMetricKind(k); !ok {
			return req, fmt.Errorf("kind: want cumulative or flow, got %q", k)
		}
	} else {
		req.MetricKind = loaded.Dataset.MetricKind(req.Metric)
	}

	var err error
	if s := cmd.String("end"); s != "" {
		if req.End, err = utils.ParseDate(s); err != nil {
			return req, fmt.Errorf("end: %w", err)
		}
	} else if _, last, ok := pipeline.DateBounds(loaded.Records); ok {
		req.End = last
	} else {
		req.End = utils.BeginDay(time.Now().UTC())
	}
	if s := cmd.String("start"); s != "" {
		if req.Start, err = utils.ParseDate(s); err != nil {
			return req, fmt.Errorf("start: %w", err)
		}
	} else {
		days := int(cmd.Int("days"))
		if days < 1 {
			return req, fmt.Errorf("days: want at least 1, got %d", days)
		}
		req.Start = req.End.AddDate(0, 0, -(days - 1))
	}
	return req, nil
}

func cell(v *float64) string {
	if v == nil {
		return ""
	}
	return utils.Stringify(*v)
}

func printRows(w io.Writer, rows []model.AggregatedRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"period", "series", "value", "peak"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, r := range rows {
		table.Append([]string{r.PeriodStart.Format(utils.DateLayout), r.SeriesKey, cell(r.Value), cell(r.Derivative)})
	}
	table.SetFooter([]string{"", "", "rows", strconv.Itoa(len(rows))})
	table.Render()
}

func printResults(w io.Writer, results []model.ExportResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"id", "type", "path", "records", "status"})
	for _, r := range results {
		status := "ok"
		if !r.Success {
			status = r.Error
		}
		table.Append([]string{r.ID, r.Type, r.Path, strconv.Itoa(r.RecordCount), status})
	}
	table.Render()
}

func listDatasets(ctx context.Context, cmd *cli.Command) error {
	_, log, catalog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	load := cmd.Bool("load")
	if load {
		if err := catalog.LoadAll(ctx); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(cmd.Root().Writer)
	header := []string{"name", "kind", "source"}
	if load {
		header = append(header, "rows", "rejected", "error")
	}
	table.SetHeader(header)
	for _, st := range catalog.Statuses() {
		row := []string{st.Dataset.Name, st.Dataset.Kind, st.Dataset.Source}
		if load {
			row = append(row, strconv.Itoa(st.Rows), strconv.Itoa(st.Rejected), st.Error)
		}
		table.Append(row)
	}
	table.Render()
	return nil
}

func listExports(ctx context.Context, cmd *cli.Command) error {
	cfg := config.FromCommand(cmd)
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	exports, err := st.ListExports(ctx)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(cmd.Root().Writer)
	table.SetHeader([]string{"id", "dataset", "type", "path", "records", "time"})
	for _, e := range exports {
		table.Append([]string{e.ID, e.Dataset, e.Type, e.Path, strconv.Itoa(e.RecordCount), e.Timestamp.Format(time.RFC3339)})
	}
	table.Render()
	return nil
}
