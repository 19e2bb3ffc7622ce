// Command ddlgen infers a relational schema from sample data files and
// prints SQL for the chosen dialect.
//
// Each input file becomes one table tree: nested structures are split into
// child tables linked by keys. Input format is detected from the extension,
// then from content; "-" reads stdin.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"ddlgen/internal/ingest"
	"ddlgen/internal/render"
	"ddlgen/internal/tablemodel"
)

func main() {
	var (
		flagDialect  = flag.String("dialect", "postgres", "SQL dialect: "+strings.Join(render.Names(), "|"))
		flagTable    = flag.String("table", "", "Table name; defaults to the input file name")
		flagKey      = flag.String("key", "", "Field to use as the primary key")
		flagForceKey = flag.Bool("force-key", false, "Give every table a primary key even without children")
		flagReorder  = flag.Bool("reorder", false, "Sort columns alphabetically, key first")
		flagUniques  = flag.Bool("uniques", false, "Assert UNIQUE constraints from observed distinctness")
		flagText     = flag.Bool("text", false, "Use unbounded text columns instead of sized VARCHARs")
		flagInserts  = flag.Bool("inserts", false, "Emit INSERT statements for the sampled rows")
		flagDrops    = flag.Bool("drops", false, "Emit DROP TABLE IF EXISTS statements first")
		flagNoCreate = flag.Bool("no-creates", false, "Suppress CREATE TABLE statements")
		flagLimit    = flag.Int("limit", 0, "Read at most this many records per input (0 = all)")
		flagCushion  = flag.Int("cushion", 0, "Extra length/precision padding on sized columns")
		flagFormat   = flag.String("format", "", "Force input format: json|ndjson|csv|tsv|yaml|html")
		flagSaveMeta = flag.String("save-metadata-to", "", "Write the inferred model as JSON to this path")
		flagUseMeta  = flag.String("use-metadata-from", "", "Render from a saved model instead of sampling data")
	)
	flag.Parse()

	dialect, err := render.Get(*flagDialect)
	if err != nil {
		fatalf("%v", err)
	}

	opt := render.Options{
		Creates:  !*flagNoCreate,
		Drops:    *flagDrops,
		Inserts:  *flagInserts,
		Uniques:  *flagUniques,
		TextMode: *flagText,
	}

	if *flagUseMeta != "" {
		if *flagInserts {
			// A saved model carries no rows.
			fatalf("-use-metadata-from cannot be combined with -inserts")
		}
		if flag.NArg() > 0 {
			fatalf("-use-metadata-from replaces data inputs; drop the file arguments")
		}
		model, err := tablemodel.LoadSnapshot(*flagUseMeta)
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Print(render.Script(dialect, model, opt))
		return
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: ddlgen [flags] file.json [file.csv ...]")
		flag.Usage()
		os.Exit(2)
	}
	if *flagSaveMeta != "" && len(inputs) > 1 {
		fatalf("-save-metadata-to works with a single input")
	}

	cfg := tablemodel.Config{
		Key:      *flagKey,
		ForceKey: *flagForceKey,
		Reorder:  *flagReorder,
		Uniques:  *flagUniques,
		TextMode: *flagText,
		Cushion:  *flagCushion,
		Limit:    *flagLimit,
	}
	ing := ingest.Options{
		Format: ingest.Format(*flagFormat),
		Limit:  *flagLimit,
	}

	for _, path := range inputs {
		batch, err := ingest.File(path, ing)
		if err != nil {
			fatalf("%v", err)
		}

		cfg.Table = *flagTable
		if cfg.Table == "" {
			cfg.Table = batch.Name
		}

		model, err := tablemodel.Build(batch.Records, cfg)
		if err != nil {
			fatalf("%s: %v", path, err)
		}
		for _, w := range model.Warnings {
			log.Printf("warning: %s: %s", path, w)
		}

		if *flagSaveMeta != "" {
			if err := tablemodel.SaveSnapshot(*flagSaveMeta, model); err != nil {
				fatalf("%v", err)
			}
		}
		fmt.Print(render.Script(dialect, model, opt))
	}
}

func fatalf(format string, v ...any) {
	fmt.Fprintf(os.Stderr, "ddlgen: "+format+"\n", v...)
	os.Exit(1)
}
