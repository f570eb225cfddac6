package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
)

func runFilter(t *testing.T, input string) ([]string, func() int64) {
	t.Helper()
	f := NewCountryFilter([]string{"brazil", "brasil"}, 0)
	var out bytes.Buffer
	stats, err := f.Run(context.Background(), strings.NewReader(input), &out)
	if err != nil {
		t.Fatal(err)
	}

	cr := csv.NewReader(&out)
	rows, err := cr.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) == 0 || rows[0][0] != "raw_data" {
		t.Fatalf("missing header in %v", rows)
	}
	blobs := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		blobs = append(blobs, row[0])
	}
	return blobs, func() int64 { return stats.Malformed }
}

func TestCountryFilter(t *testing.T) {
	input := strings.Join([]string{
		`{"code":"1","countries_tags":["en:brazil"]}`,
		`{"code":"2","countries_tags":["en:france"]}`,
		`{"code":"3","countries_tags":["en:portugal","pt:brasil"]}`,
		`{"code":"4","countries_tags":"en:brazil"}`,
	}, "\n") + "\n"

	blobs, _ := runFilter(t, input)
	if len(blobs) != 3 {
		t.Fatalf("kept %d rows, want 3: %v", len(blobs), blobs)
	}
	// Input order preserved.
	for i, code := range []string{"1", "3", "4"} {
		if !strings.Contains(blobs[i], `"code":"`+code+`"`) {
			t.Fatalf("row %d = %q, want code %s", i, blobs[i], code)
		}
	}
}

func TestCountryFilterUnwrapsEnvelope(t *testing.T) {
	input := `{"product":{"code":"9","countries_tags":["en:brazil"]},"other":"x"}` + "\n"
	blobs, _ := runFilter(t, input)
	if len(blobs) != 1 {
		t.Fatalf("kept %d rows", len(blobs))
	}
	if strings.Contains(blobs[0], "other") || !strings.Contains(blobs[0], `"code":"9"`) {
		t.Fatalf("envelope not unwrapped: %q", blobs[0])
	}
}

func TestCountryFilterSkipsMalformed(t *testing.T) {
	input := strings.Join([]string{
		`{"code":"1","countries_tags":["en:brazil"]}`,
		`this line mentions brazil but is not json`,
		`{"code":"2","countries_tags":["en:brazil"]}`,
	}, "\n") + "\n"

	blobs, malformed := runFilter(t, input)
	if len(blobs) != 2 {
		t.Fatalf("kept %d rows, want 2", len(blobs))
	}
	if malformed() != 1 {
		t.Fatalf("malformed = %d, want 1", malformed())
	}
}

func TestCountryFilterMissingTags(t *testing.T) {
	// Pre-filter passes (byte match on a name), precise filter must not.
	input := `{"code":"1","product_name":"Brazil Nuts"}` + "\n"
	blobs, _ := runFilter(t, input)
	if len(blobs) != 0 {
		t.Fatalf("kept %d rows, want 0", len(blobs))
	}
}

func TestCountryFilterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewCountryFilter([]string{"brazil"}, 0)
	var out bytes.Buffer
	_, err := f.Run(ctx, strings.NewReader(`{"code":"1","countries_tags":["en:brazil"]}`+"\n"), &out)
	if err == nil {
		t.Fatal("expected context error")
	}
	// Whatever was flushed must still be valid CSV.
	if _, parseErr := csv.NewReader(&out).ReadAll(); parseErr != nil {
		t.Fatalf("cancelled output not valid: %v", parseErr)
	}
}
