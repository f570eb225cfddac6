package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"

	"pantry/internal"
	"pantry/internal/config"
)

// Assembler turns filtered raw rows into canonical products, reading the
// intermediate CSV in fixed-size chunks so peak memory stays bounded by the
// chunk size, not the dataset.
type Assembler struct {
	cfg config.Config
}

func NewAssembler(cfg config.Config) *Assembler {
	return &Assembler{cfg: cfg}
}

// RunFile processes the filtered CSV at inputPath, delivering batches to sink.
func (a *Assembler) RunFile(ctx context.Context, inputPath string, sink func([]internal.CanonicalProduct) error) (internal.CleanStats, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return internal.CleanStats{}, fmt.Errorf("open filtered dataset: %w", err)
	}
	defer in.Close()
	return a.Run(ctx, in, sink)
}

// Run reads rows from r and calls sink once per full chunk and once for the
// final partial chunk. The sink must not retain the slice. Rows that fail to
// parse or lack required fields are counted and skipped; only I/O errors and
// cancellation abort the run.
func (a *Assembler) Run(ctx context.Context, r io.Reader, sink func([]internal.CanonicalProduct) error) (internal.CleanStats, error) {
	stats := internal.CleanStats{}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return stats, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 || header[0] != "raw_data" {
		return stats, fmt.Errorf("unexpected header: %v", header)
	}

	chunkSize := a.cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 5000
	}
	batch := make([]internal.CanonicalProduct, 0, chunkSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := sink(batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				stats.Malformed++
				continue
			}
			return stats, fmt.Errorf("read row: %w", err)
		}

		stats.RowsRead++
		if len(record) == 0 || !gjson.Valid(record[0]) {
			stats.Malformed++
			continue
		}

		product, ok := a.Assemble(record[0])
		if !ok {
			stats.Rejected++
			continue
		}
		stats.Kept++
		batch = append(batch, product)

		if len(batch) >= chunkSize {
			if err := flush(); err != nil {
				return stats, err
			}
			fmt.Printf("clean: read=%d kept=%d rejected=%d\n", stats.RowsRead, stats.Kept, stats.Rejected)
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}

// Assemble builds one canonical product from a raw record. The second return
// is false when the record lacks a barcode or a usable name; that is a
// normal rejection, not an error.
func (a *Assembler) Assemble(raw string) (internal.CanonicalProduct, bool) {
	record := gjson.Parse(raw)

	barcode := ExtractBarcode(record)
	if barcode == "" {
		return internal.CanonicalProduct{}, false
	}

	size := ExtractSize(record)
	description, ok := ExtractDescription(record, size)
	if !ok {
		return internal.CanonicalProduct{}, false
	}

	return internal.CanonicalProduct{
		Barcode:        barcode,
		Description:    description,
		Brand:          ExtractBrand(record),
		Size:           size,
		ImageURL:       DeriveImageURL(a.cfg.ImageBaseURL, barcode, record),
		EstimatedPrice: 0,
	}, true
}
