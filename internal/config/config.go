package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string

	DumpPath         string
	FilteredCSVPath  string
	CatalogJSONPath  string
	CountryTerms     []string
	ChunkSize        int
	ProgressInterval int

	ImageBaseURL string

	BrandMaxLen int
	SizeMaxLen  int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "pantry.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		DumpPath:         getEnv("DUMP_PATH", filepath.Join(cwd, "data", "openfoodfacts-products.jsonl.gz")),
		FilteredCSVPath:  getEnv("FILTERED_CSV_PATH", filepath.Join(cwd, "data", "products_filtered.csv")),
		CatalogJSONPath:  getEnv("CATALOG_JSON_PATH", filepath.Join(cwd, "data", "products_clean.json")),
		CountryTerms:     getEnvList("COUNTRY_TERMS", []string{"brazil", "brasil"}),
		ChunkSize:        getEnvInt("CHUNK_SIZE", 5000),
		ProgressInterval: getEnvInt("PROGRESS_INTERVAL", 5000),

		ImageBaseURL: getEnv("IMAGE_BASE_URL", "https://images.openfoodfacts.org/images/products"),

		BrandMaxLen: getEnvInt("BRAND_MAX_LEN", 50),
		SizeMaxLen:  getEnvInt("SIZE_MAX_LEN", 50),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
