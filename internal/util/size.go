package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var sizePattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*([a-zA-Z.]+)`)

// unitTable maps lower-cased unit tokens (trailing dots and spaces already
// trimmed) to the canonical unit code. Covers Portuguese and English
// spellings seen in the dump. Extend here, not in the extraction logic.
var unitTable = map[string]string{
	// volume
	"l": "L", "lt": "L", "lts": "L", "litro": "L", "litros": "L",
	"ml": "ml", "m.l": "ml", "mils": "ml",

	// mass
	"k": "kg", "kg": "kg", "k.g": "kg", "quilo": "kg", "kilo": "kg",
	"kilograma": "kg", "quilograma": "kg", "kgs": "kg",
	"g": "g", "gr": "g", "grs": "g", "grama": "g", "gramas": "g",
	"mg": "mg", "mgs": "mg", "miligrama": "mg", "miligramas": "mg",

	// count
	"u": "un", "un": "un", "und": "un", "uni": "un", "unid": "un",
	"unidade": "un", "unidades": "un", "unis": "un",
	"pç": "un", "pca": "un", "peca": "un",
	"dz": "dz", "duzia": "dz", "dúzia": "dz",

	// packaging
	"cx": "cx", "cxa": "cx", "caixa": "cx", "caixas": "cx", "box": "cx",
	"pct": "pct", "pcte": "pct", "pacote": "pct", "pacotes": "pct", "pc": "pct", "pack": "pct",
	"fd": "fd", "fdo": "fd", "fardo": "fd",
	"lata": "lata", "latas": "lata",
	"gf": "gf", "gfa": "gf", "garrafa": "gf", "garrafas": "gf",

	// length
	"m": "m", "mt": "m", "mts": "m", "metro": "m", "metros": "m",
	"cm": "cm", "cms": "cm", "centimetro": "cm",
	"mm": "mm", "mms": "mm",
}

// NormalizeSize canonicalizes a matched magnitude+unit pair into "<value><code>".
// Unknown units are kept as-is rather than rejected.
func NormalizeSize(magnitude, unit string) string {
	value := strings.ReplaceAll(magnitude, ",", ".")
	if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed == math.Trunc(parsed) {
		value = strconv.FormatFloat(parsed, 'f', -1, 64)
	}
	token := strings.Trim(strings.ToLower(unit), " .")
	if code, ok := unitTable[token]; ok {
		return value + code
	}
	return value + token
}

// FindSize searches text for the first magnitude+unit pair and returns it
// normalized. The second return reports whether anything matched.
func FindSize(text string) (string, bool) {
	m := sizePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return NormalizeSize(m[1], m[2]), true
}
