package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"pantry/internal"
	"pantry/internal/config"
	"pantry/internal/pipeline"
	"pantry/internal/storage"
	"pantry/internal/token"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := os.Args[1]
	switch cmd {
	case "filter":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", cfg.DumpPath, "dump path (.jsonl or .jsonl.gz)")
		output := fs.String("output", cfg.FilteredCSVPath, "filtered CSV path")
		country := fs.String("country", strings.Join(cfg.CountryTerms, ","), "comma-separated country terms")
		_ = fs.Parse(os.Args[2:])

		filter := pipeline.NewCountryFilter(splitTerms(*country), cfg.ProgressInterval)
		stats, err := filter.RunFile(ctx, *input, *output)
		if cancelled(err) {
			fmt.Printf("filter cancelled: read=%d kept=%d (output is a valid prefix)\n", stats.LinesRead, stats.LinesKept)
			return
		}
		must(err)
		fmt.Printf("filter done: read=%d kept=%d malformed=%d output=%s\n", stats.LinesRead, stats.LinesKept, stats.Malformed, *output)
	case "clean":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", cfg.FilteredCSVPath, "filtered CSV path")
		output := fs.String("output", cfg.CatalogJSONPath, "catalog JSON path")
		chunk := fs.Int("chunk", cfg.ChunkSize, "rows per chunk")
		_ = fs.Parse(os.Args[2:])
		cfg.ChunkSize = *chunk

		stats, products, err := cleanDataset(ctx, cfg, *input)
		if cancelled(err) {
			fmt.Printf("clean cancelled: read=%d kept=%d\n", stats.RowsRead, stats.Kept)
			return
		}
		must(err)
		must(pipeline.WriteCatalogFile(*output, products))
		fmt.Printf("clean done: read=%d kept=%d rejected=%d malformed=%d output=%s\n", stats.RowsRead, stats.Kept, stats.Rejected, stats.Malformed, *output)
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", cfg.DumpPath, "dump path (.jsonl or .jsonl.gz)")
		output := fs.String("output", cfg.CatalogJSONPath, "catalog JSON path")
		country := fs.String("country", strings.Join(cfg.CountryTerms, ","), "comma-separated country terms")
		_ = fs.Parse(os.Args[2:])

		filter := pipeline.NewCountryFilter(splitTerms(*country), cfg.ProgressInterval)
		fstats, err := filter.RunFile(ctx, *input, cfg.FilteredCSVPath)
		if cancelled(err) {
			fmt.Printf("run cancelled during filter: read=%d kept=%d\n", fstats.LinesRead, fstats.LinesKept)
			return
		}
		must(err)
		fmt.Printf("filter done: read=%d kept=%d malformed=%d\n", fstats.LinesRead, fstats.LinesKept, fstats.Malformed)

		cstats, products, err := cleanDataset(ctx, cfg, cfg.FilteredCSVPath)
		if cancelled(err) {
			fmt.Printf("run cancelled during clean: read=%d kept=%d\n", cstats.RowsRead, cstats.Kept)
			return
		}
		must(err)
		must(pipeline.WriteCatalogFile(*output, products))
		fmt.Printf("run done: products=%d output=%s\n", cstats.Kept, *output)
	case "catalog:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dataset := fs.String("dataset", cfg.CatalogJSONPath, "catalog JSON path")
		_ = fs.Parse(os.Args[2:])

		products, err := pipeline.ReadCatalogFile(*dataset)
		must(err)
		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
		must(db.UpsertProducts(products, cfg.BrandMaxLen, cfg.SizeMaxLen))
		_ = db.SetMetadata("catalog.last_import", *dataset)
		count, err := db.CountProducts()
		must(err)
		fmt.Printf("import done: imported=%d total=%d\n", len(products), count)
	case "token:generate":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		plan := fs.String("plan", "trial", "plan: "+strings.Join(token.Plans(), "|"))
		days := fs.Int("days", 0, "override plan duration in days")
		_ = fs.Parse(os.Args[2:])

		duration, err := token.DurationForPlan(*plan)
		must(err)
		if *days > 0 {
			duration = *days
		}
		plain, err := token.Generate()
		must(err)
		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
		must(db.InsertToken(internal.TokenRecord{
			TokenHash:    token.Hash(plain),
			Plan:         *plan,
			DurationDays: duration,
			Status:       "valid",
		}))
		fmt.Printf("token generated: plan=%s days=%d token=%s\n", *plan, duration, plain)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dataset := fs.String("dataset", cfg.CatalogJSONPath, "catalog JSON path")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}

		products, err := pipeline.ReadCatalogFile(*dataset)
		must(err)
		must(pipeline.ExportCatalogXLSX(products, *out))
		fmt.Printf("exported %d rows to %s\n", len(products), *out)
	default:
		usage()
		os.Exit(1)
	}
}

func cleanDataset(ctx context.Context, cfg config.Config, inputPath string) (internal.CleanStats, []internal.CanonicalProduct, error) {
	assembler := pipeline.NewAssembler(cfg)
	var products []internal.CanonicalProduct
	stats, err := assembler.RunFile(ctx, inputPath, func(batch []internal.CanonicalProduct) error {
		products = append(products, batch...)
		return nil
	})
	return stats, products, err
}

func splitTerms(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func cancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

func usage() {
	fmt.Println("usage: pantry <command>")
	fmt.Println("commands:")
	fmt.Println("  filter --input=dump.jsonl.gz --output=filtered.csv --country=brazil,brasil")
	fmt.Println("  clean --input=filtered.csv --output=catalog.json [--chunk=5000]")
	fmt.Println("  run --input=dump.jsonl.gz --output=catalog.json [--country=...]")
	fmt.Println("  catalog:import --dataset=catalog.json")
	fmt.Println("  token:generate --plan=trial|coffee|snack|supporter [--days=N]")
	fmt.Println("  export:xlsx --dataset=catalog.json --out=./out/catalog.xlsx")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
