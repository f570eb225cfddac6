package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"pantry/internal"
)

// WriteCatalog writes the catalog as one indented JSON array. HTML escaping
// is off so accented names and image URLs come out literally.
func WriteCatalog(w io.Writer, products []internal.CanonicalProduct) error {
	if products == nil {
		products = []internal.CanonicalProduct{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(products)
}

func WriteCatalogFile(path string, products []internal.CanonicalProduct) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCatalog(f, products); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func ReadCatalogFile(path string) ([]internal.CanonicalProduct, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var out []internal.CanonicalProduct
	if err := json.Unmarshal(blob, &out); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return out, nil
}

// ExportCatalogXLSX renders the catalog to a spreadsheet for manual review.
func ExportCatalogXLSX(products []internal.CanonicalProduct, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"barcode", "description", "brand", "size", "image_url", "estimated_price"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, p := range products {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, p.Barcode)
		set(2, p.Description)
		set(3, p.Brand)
		set(4, p.Size)
		if p.ImageURL != nil {
			set(5, *p.ImageURL)
		} else {
			set(5, "")
		}
		set(6, p.EstimatedPrice)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
