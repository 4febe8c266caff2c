package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"orgtree/internal"
	"orgtree/internal/catalog"
	"orgtree/internal/config"
	"orgtree/internal/logging"
	"orgtree/internal/metrics"
	"orgtree/internal/pipeline"
	"orgtree/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := os.Args[1]
	switch cmd {
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", cfg.InputPath, "raw dump path or http(s) url")
		inType := fs.String("type", cfg.InputType, "json|html|xlsx (empty = detect)")
		output := fs.String("output", cfg.OutputPath, "output json path")
		xlsx := fs.String("xlsx", cfg.XLSXPath, "optional workbook path")
		_ = fs.Parse(os.Args[2:])
		must(cfg.Require("ORGTREE_INPUT", *input))
		must(cfg.Require("ORGTREE_OUTPUT", *output))
		parsedType, err := pipeline.ParseInputType(*inType)
		must(err)

		var store pipeline.Store
		if cfg.StoreEnabled() {
			db, err := storage.Open(cfg.DBPath)
			must(err)
			defer db.Close()
			store = db
		}
		rec := metrics.NewRecorder()
		svc := pipeline.NewProcessingService(store, catalog.NewClient(cfg, logger), rec, logger)
		res, err := svc.Process(ctx, pipeline.Request{Input: *input, Type: parsedType, Output: *output, XLSX: *xlsx})
		must(err)
		if cfg.MetricsTextfile != "" {
			must(rec.WriteTextfile(cfg.MetricsTextfile))
		}

		pipeline.WriteSummary(os.Stdout, res.Document)
		fmt.Printf("run done trace=%s teams=%d output=%s\n", res.TraceID, res.Document.Metadata.TotalTeams, *output)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		db := openStore(cfg)
		defer db.Close()
		doc, err := db.LoadSnapshot()
		must(err)
		if doc == nil {
			must(fmt.Errorf("no stored snapshot; run first"))
		}
		must(pipeline.ExportTeamsToXLSX(*doc, *out))
		fmt.Printf("exported %d teams to %s\n", len(doc.Teams), *out)
	case "show":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		top := fs.Int("top", 20, "number of teams (0 = all)")
		category := fs.String("category", "", "only this category label")
		_ = fs.Parse(os.Args[2:])
		cat, err := parseCategoryFlag(*category)
		must(err)
		db := openStore(cfg)
		defer db.Close()
		teams, err := db.TopTeams(*top, cat)
		must(err)
		pipeline.WriteTeams(os.Stdout, teams)
	case "categories":
		for _, c := range internal.Categories {
			fmt.Println(c)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func openStore(cfg config.Config) *storage.DB {
	must(cfg.Require("DB_PATH", cfg.DBPath))
	db, err := storage.Open(cfg.DBPath)
	must(err)
	return db
}

func parseCategoryFlag(value string) (internal.Category, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	for _, c := range internal.Categories {
		if strings.EqualFold(string(c), value) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category: %s", value)
}

func usage() {
	fmt.Println("usage: orgtree <command>")
	fmt.Println("commands:")
	fmt.Println("  run [--input=./org_structure.json|https://...] [--type=json|html|xlsx] [--output=...json] [--xlsx=...xlsx]")
	fmt.Println("  export:xlsx --out=./out/teams.xlsx")
	fmt.Println("  show [--top=20] [--category=\"Engineering\"]")
	fmt.Println("  categories")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
