package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"pantry/internal"
	"pantry/internal/util"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS products (
  barcode TEXT PRIMARY KEY,
  description TEXT NOT NULL,
  brand TEXT,
  size TEXT,
  image_url TEXT,
  estimated_price REAL NOT NULL DEFAULT 0,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_description ON products(description);

CREATE TABLE IF NOT EXISTS tokens (
  token_hash TEXT PRIMARY KEY,
  plan TEXT NOT NULL,
  duration_days INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'valid',
  activatedAt TEXT,
  expiresAt TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// UpsertProducts imports a catalog batch inside one transaction, keyed by
// barcode so re-imports are idempotent. Brand and size are truncated to the
// column caps before persistence.
func (d *DB) UpsertProducts(products []internal.CanonicalProduct, brandMax, sizeMax int) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO products (barcode, description, brand, size, image_url, estimated_price, updatedAt)
VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(barcode) DO UPDATE SET
  description=excluded.description,
  brand=excluded.brand,
  size=excluded.size,
  image_url=excluded.image_url,
  estimated_price=excluded.estimated_price,
  updatedAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range products {
		brand := util.Truncate(p.Brand, brandMax)
		size := util.Truncate(p.Size, sizeMax)
		if _, err := stmt.Exec(p.Barcode, p.Description, brand, size, p.ImageURL, p.EstimatedPrice); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) GetProduct(barcode string) (*internal.CanonicalProduct, error) {
	var p internal.CanonicalProduct
	err := d.conn.QueryRow(`
SELECT barcode, description, brand, size, image_url, estimated_price
FROM products WHERE barcode = ?
`, barcode).Scan(&p.Barcode, &p.Description, &p.Brand, &p.Size, &p.ImageURL, &p.EstimatedPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *DB) CountProducts() (int, error) {
	var count int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

func (d *DB) InsertToken(rec internal.TokenRecord) error {
	_, err := d.conn.Exec(`
INSERT INTO tokens (token_hash, plan, duration_days, status)
VALUES (?, ?, ?, ?)
`, rec.TokenHash, rec.Plan, rec.DurationDays, rec.Status)
	return err
}

func (d *DB) GetToken(hash string) (*internal.TokenRecord, error) {
	var rec internal.TokenRecord
	err := d.conn.QueryRow(`
SELECT token_hash, plan, duration_days, status, activatedAt, expiresAt
FROM tokens WHERE token_hash = ?
`, hash).Scan(&rec.TokenHash, &rec.Plan, &rec.DurationDays, &rec.Status, &rec.ActivatedAt, &rec.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
