package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pantry/internal"
)

func TestSmokeDumpToCatalog(t *testing.T) {
	tmp := t.TempDir()

	dump := strings.Join([]string{
		`{"code":"7891000100103","countries_tags":["en:brazil"],"product_name_pt":"leite integral 1l","quantity":"1 L","brands":"itambé"}`,
		`{"code":"3017620422003","countries_tags":["en:france"],"product_name":"pâte à tartiner"}`,
		`{"product":{"code":"7894900011517","countries_tags":["en:brazil"],"product_name":"refrigerante","product_quantity":2,"product_quantity_unit":"l"}}`,
		`{"code":"7890000000000","countries_tags":["en:brazil"],"product_name":"Unknown"}`,
	}, "\n") + "\n"

	dumpPath := filepath.Join(tmp, "dump.jsonl")
	if err := os.WriteFile(dumpPath, []byte(dump), 0o644); err != nil {
		t.Fatal(err)
	}
	csvPath := filepath.Join(tmp, "filtered.csv")

	filter := NewCountryFilter([]string{"brazil", "brasil"}, 0)
	fstats, err := filter.RunFile(context.Background(), dumpPath, csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if fstats.LinesRead != 4 || fstats.LinesKept != 3 {
		t.Fatalf("unexpected filter stats: %+v", fstats)
	}

	assembler := testAssembler(t, 0)
	var products []internal.CanonicalProduct
	cstats, err := assembler.RunFile(context.Background(), csvPath, func(batch []internal.CanonicalProduct) error {
		products = append(products, batch...)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if cstats.Kept != 2 || cstats.Rejected != 1 {
		t.Fatalf("unexpected clean stats: %+v", cstats)
	}

	if products[0].Description != "Leite Integral" || products[0].Size != "1L" {
		t.Fatalf("first product %+v", products[0])
	}
	if products[1].Barcode != "7894900011517" || products[1].Size != "2L" {
		t.Fatalf("second product %+v", products[1])
	}
	if products[1].Brand != internal.NoBrand {
		t.Fatalf("brand %q", products[1].Brand)
	}

	outPath := filepath.Join(tmp, "catalog.json")
	if err := WriteCatalogFile(outPath, products); err != nil {
		t.Fatal(err)
	}
	decoded, err := ReadCatalogFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d products", len(decoded))
	}
}
