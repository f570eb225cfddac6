package pipeline

import (
	"strings"

	"github.com/tidwall/gjson"

	"pantry/internal"
	"pantry/internal/util"
)

var barcodeFields = []string{"code", "_id", "id"}

// Placeholder names seen in the wild that mean "no usable name".
var badNames = map[string]struct{}{
	"produto sem nome": {},
	"no name":          {},
	"unknown":          {},
	"nan":              {},
}

// ExtractBarcode returns the first non-empty identifier field, or "" when
// the record carries none.
func ExtractBarcode(record gjson.Result) string {
	for _, field := range barcodeFields {
		if v := strings.TrimSpace(record.Get(field).String()); v != "" {
			return v
		}
	}
	return ""
}

// ExtractSize tries the free-text quantity field first, then the structured
// numeric quantity plus its unit. The first source with a match wins; no
// match yields the sentinel.
func ExtractSize(record gjson.Result) string {
	candidates := []string{
		record.Get("quantity").String(),
		record.Get("product_quantity").String() + record.Get("product_quantity_unit").String(),
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if size, ok := util.FindSize(c); ok {
			return size
		}
	}
	return internal.NoSize
}

// ExtractDescription picks the localized name, then the generic one, then
// the English one. The second return is false when the record has no usable
// name and must be dropped. A trailing size token redundant with the
// extracted size is stripped.
func ExtractDescription(record gjson.Result, size string) (string, bool) {
	name := util.FirstNonEmpty(
		record.Get("product_name_pt").String(),
		record.Get("product_name").String(),
		record.Get("product_name_en").String(),
	)
	if name == "" {
		return "", false
	}

	name = strings.TrimSpace(util.TitleCase(name))
	if _, bad := badNames[strings.ToLower(name)]; bad {
		return "", false
	}

	if size != internal.NoSize && strings.HasSuffix(name, " "+size) {
		name = strings.TrimSpace(strings.TrimSuffix(name, size))
	}
	if name == "" {
		return "", false
	}
	return name, true
}

// ExtractBrand never rejects: a record with no brand gets the sentinel.
// Namespaced tags keep only the part after the last colon.
func ExtractBrand(record gjson.Result) string {
	brand := record.Get("brands").String()
	if brand == "" {
		if tags := record.Get("brands_tags").Array(); len(tags) > 0 {
			parts := strings.Split(tags[0].String(), ":")
			brand = parts[len(parts)-1]
		}
	}
	if strings.TrimSpace(brand) == "" {
		return internal.NoBrand
	}
	if idx := strings.LastIndex(brand, ":"); idx >= 0 {
		brand = brand[idx+1:]
	}
	return strings.TrimSpace(util.TitleCase(brand))
}
