// Command ddlload infers a schema from a sample data file, creates the
// tables on a live database, and loads the sampled rows.
//
// The DSN is resolved flag-first, then from the DSN environment variable.
// Load timings and row counts can be shipped to Datadog with
// -metrics-backend=datadog (credentials via DD_API_KEY).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"ddlgen/internal/ingest"
	"ddlgen/internal/metrics"
	"ddlgen/internal/metrics/datadog"
	"ddlgen/internal/render"
	"ddlgen/internal/storage"
	"ddlgen/internal/tablemodel"

	// register all backends with the storage factory.
	_ "ddlgen/internal/storage/all"
)

func main() {
	var (
		flagBackend  = flag.String("backend", "postgres", "Storage backend: postgres|sqlite|mssql")
		flagDSN      = flag.String("dsn", "", "Connection string (overrides env DSN)")
		flagTable    = flag.String("table", "", "Table name; defaults to the input file name")
		flagKey      = flag.String("key", "", "Field to use as the primary key")
		flagForceKey = flag.Bool("force-key", false, "Give every table a primary key even without children")
		flagDrops    = flag.Bool("drops", false, "Drop existing tables before creating")
		flagLimit    = flag.Int("limit", 0, "Read at most this many records (0 = all)")
		flagCushion  = flag.Int("cushion", 0, "Extra length/precision padding on sized columns")
		flagFormat   = flag.String("format", "", "Force input format: json|ndjson|csv|tsv|yaml|html")
		flagMetrics  = flag.String("metrics-backend", "none", "Metrics backend: datadog|none")
		flagJob      = flag.String("job", "ddlload", "Job name tag on submitted metrics")
		flagTags     = flag.String("metrics-tags", "", "Extra metric tags, e.g. env:prod,service:loader")
		flagTimeout  = flag.Duration("timeout", 5*time.Minute, "Overall run timeout")
		flagVerbose  = flag.Bool("v", false, "Log per-table progress")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ddlload [flags] file.json")
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	dsn := *flagDSN
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DSN"))
	}
	if dsn == "" {
		fatalf("no DSN: pass -dsn or set the DSN environment variable")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *flagTimeout)
	defer cancel()

	batch, err := ingest.File(path, ingest.Options{
		Format: ingest.Format(*flagFormat),
		Limit:  *flagLimit,
	})
	if err != nil {
		fatalf("%v", err)
	}

	table := *flagTable
	if table == "" {
		table = batch.Name
	}
	model, err := tablemodel.Build(batch.Records, tablemodel.Config{
		Table:    table,
		Key:      *flagKey,
		ForceKey: *flagForceKey,
		Cushion:  *flagCushion,
		Limit:    *flagLimit,
	})
	if err != nil {
		fatalf("%s: %v", path, err)
	}
	for _, w := range model.Warnings {
		log.Printf("warning: %s", w)
	}

	repo, err := storage.New(ctx, storage.Config{Kind: *flagBackend, DSN: dsn})
	if err != nil {
		fatalf("%v", err)
	}
	defer repo.Close()

	sink := newMetrics(ctx, *flagMetrics, *flagJob, *flagTags)

	loader := storage.Loader{Repo: repo}
	if *flagVerbose {
		loader.Logger = log.Default()
	}

	start := time.Now()
	rows, loadErr := loader.Run(ctx, model, render.Options{Drops: *flagDrops})
	status := "ok"
	if loadErr != nil {
		status = "error"
	}
	labels := metrics.Labels{"backend": *flagBackend, "status": status}
	metrics.ObserveDuration(sink, "ddlgen.load.duration_seconds", start, labels)
	sink.IncCounter("ddlgen.load.rows.total", float64(rows), labels)
	sink.IncCounter("ddlgen.load.tables.total", float64(countTables(model)), labels)

	if err := sink.Close(); err != nil {
		log.Printf("metrics close: %v", err)
	}
	if loadErr != nil {
		fatalf("%v", loadErr)
	}

	log.Printf("loaded %d rows into %d tables on %s", rows, countTables(model), *flagBackend)
}

// newMetrics builds the metric sink named by kind, falling back to the noop
// sink.
func newMetrics(ctx context.Context, kind, job, tags string) metrics.Backend {
	switch kind {
	case "", "none":
		return metrics.Noop{}
	case "datadog":
		b, err := datadog.NewBackend(ctx, datadog.Options{
			JobName: job,
			Tags:    datadog.ParseTagsCSV(tags),
		})
		if err != nil {
			fatalf("metrics init: %v", err)
		}
		return b
	default:
		fatalf("unknown metrics backend %q", kind)
		return nil
	}
}

func countTables(root *tablemodel.Table) int {
	n := 0
	root.Walk(func(*tablemodel.Table) { n++ })
	return n
}

func fatalf(format string, v ...any) {
	fmt.Fprintf(os.Stderr, "ddlload: "+format+"\n", v...)
	os.Exit(1)
}
