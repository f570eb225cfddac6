package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Language priority for the selected front image. The host keys revisions by
// upload language; pt first for this catalog, then the two most common
// fallbacks. Best-effort heuristic, not a guaranteed-correct URL.
var imageLangs = []string{"pt", "en", "fr"}

var shardPattern = regexp.MustCompile(`^(\d{3})(\d{3})(\d{3})(\d*)$`)

// DeriveImageURL reconstructs the hosted front-photo URL for a barcode.
// Records without an editorially selected front image yield nil: guessing a
// revision across raw uploads would produce broken links.
func DeriveImageURL(baseURL, barcode string, record gjson.Result) *string {
	if barcode == "" {
		return nil
	}
	images := record.Get("images")
	if !images.IsObject() {
		return nil
	}
	front := images.Get("selected.front")
	if !front.IsObject() {
		return nil
	}

	for _, lang := range imageLangs {
		entry := front.Get(lang)
		if !entry.IsObject() {
			continue
		}
		rev := entry.Get("rev")
		if !rev.Exists() || rev.String() == "" {
			return nil
		}
		url := fmt.Sprintf("%s/%s/front_%s.%s.400.jpg", baseURL, ShardBarcode(barcode), lang, rev.String())
		return &url
	}
	return nil
}

// ShardBarcode maps a barcode to the image host's directory layout: codes of
// up to 8 characters are a single directory, longer ones split into three
// 3-digit groups plus the remaining digits. Codes that do not fit the digit
// grouping fall back to the unsplit barcode.
func ShardBarcode(barcode string) string {
	if len(barcode) <= 8 {
		return barcode
	}
	m := shardPattern.FindStringSubmatch(barcode)
	if m == nil {
		return barcode
	}
	parts := make([]string, 0, 4)
	for _, group := range m[1:] {
		if group != "" {
			parts = append(parts, group)
		}
	}
	return strings.Join(parts, "/")
}
