package pipeline

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"pantry/internal"
	"pantry/internal/util"
)

// CountryFilter reduces the full dump to the rows whose country tags match
// any of the configured terms. It holds one line in memory at a time; the
// byte-level pre-filter may over-match but never under-matches, so the
// precise tag check only runs on candidate lines.
type CountryFilter struct {
	terms    []string
	pre      *regexp.Regexp
	progress int
}

func NewCountryFilter(terms []string, progressInterval int) *CountryFilter {
	lowered := make([]string, 0, len(terms))
	escaped := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		lowered = append(lowered, t)
		escaped = append(escaped, regexp.QuoteMeta(t))
	}
	return &CountryFilter{
		terms:    lowered,
		pre:      regexp.MustCompile(`(?i)` + strings.Join(escaped, "|")),
		progress: progressInterval,
	}
}

// RunFile opens inputPath (gzip when it ends in .gz) and writes the filtered
// rows to outputPath. A failing open is fatal before anything is written.
func (f *CountryFilter) RunFile(ctx context.Context, inputPath, outputPath string) (internal.FilterStats, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return internal.FilterStats{}, fmt.Errorf("open dump: %w", err)
	}
	defer in.Close()

	var reader io.Reader = in
	if strings.HasSuffix(inputPath, ".gz") {
		gz, err := gzip.NewReader(in)
		if err != nil {
			return internal.FilterStats{}, fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return internal.FilterStats{}, fmt.Errorf("create output: %w", err)
	}

	stats, runErr := f.Run(ctx, reader, out)
	closeErr := out.Close()
	if runErr != nil {
		return stats, runErr
	}
	return stats, closeErr
}

// Run streams newline-delimited JSON from r and appends one CSV row per
// matching record to w, input order preserved. Malformed lines are counted
// and skipped. On cancellation the rows written so far are flushed and the
// context error is returned; the output is a valid prefix of the full result.
func (f *CountryFilter) Run(ctx context.Context, r io.Reader, w io.Writer) (internal.FilterStats, error) {
	stats := internal.FilterStats{}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"raw_data"}); err != nil {
		return stats, fmt.Errorf("write header: %w", err)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			cw.Flush()
			return stats, err
		}

		line := scanner.Bytes()
		stats.LinesRead++
		stats.BytesRead += int64(len(line)) + 1

		if f.progress > 0 && stats.LinesRead%int64(f.progress) == 0 {
			fmt.Printf("filter: read=%d kept=%d consumed=%s\n", stats.LinesRead, stats.LinesKept, util.FormatBytes(stats.BytesRead))
		}

		if !f.pre.Match(line) {
			continue
		}

		if !gjson.ValidBytes(line) {
			stats.Malformed++
			continue
		}
		record := gjson.ParseBytes(line)
		if nested := record.Get("product"); nested.IsObject() {
			record = nested
		}
		if !f.matchesCountry(record.Get("countries_tags")) {
			continue
		}

		if err := cw.Write([]string{record.Raw}); err != nil {
			return stats, fmt.Errorf("write row: %w", err)
		}
		stats.LinesKept++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return stats, fmt.Errorf("flush output: %w", err)
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read dump: %w", err)
	}
	return stats, nil
}

// matchesCountry accepts either a tag list or a single scalar tag.
func (f *CountryFilter) matchesCountry(tags gjson.Result) bool {
	if tags.IsArray() {
		matched := false
		tags.ForEach(func(_, value gjson.Result) bool {
			if f.matchTerm(value.String()) {
				matched = true
				return false
			}
			return true
		})
		return matched
	}
	if tags.Type == gjson.String {
		return f.matchTerm(tags.String())
	}
	return false
}

func (f *CountryFilter) matchTerm(tag string) bool {
	lower := strings.ToLower(tag)
	for _, term := range f.terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
