package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"airbnb-insights/models"
	"airbnb-insights/utils"

	_ "modernc.org/sqlite"
)

var sqliteColumnTypes = map[string]string{
	"id":                    "INTEGER NOT NULL",
	"ciudad":                "TEXT NOT NULL",
	"accommodates":          "REAL",
	"bathrooms_num":         "REAL",
	"price":                 "REAL",
	"price_per_person":      "REAL",
	"amenities_count":       "INTEGER",
	"latitude":              "REAL",
	"longitude":             "REAL",
	"number_of_reviews_ltm": "REAL",
	"review_scores_rating":  "REAL",
}

// SQLiteWriter rebuilds a standalone SQLite file holding the clean dataset
type SQLiteWriter struct {
	path   string
	db     *sql.DB
	logger *utils.Logger
}

// NewSQLiteWriter opens (creating if needed) the SQLite database at path
func NewSQLiteWriter(path string, logger *utils.Logger) (*SQLiteWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	return &SQLiteWriter{path: path, db: db, logger: logger}, nil
}

// SaveClean replaces the listings table with the given rows
func (w *SQLiteWriter) SaveClean(ctx context.Context, listings []*models.Listing) (err error) {
	defs := make([]string, 0, len(models.CanonicalColumns)+1)
	quoted := make([]string, 0, len(models.CanonicalColumns))
	for _, c := range models.CanonicalColumns {
		t := sqliteColumnTypes[c]
		if t == "" {
			t = "TEXT"
		}
		defs = append(defs, fmt.Sprintf("%q %s", c, t))
		quoted = append(quoted, fmt.Sprintf("%q", c))
	}
	defs = append(defs, `PRIMARY KEY ("ciudad", "id")`)

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DROP TABLE IF EXISTS "listings"`); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `CREATE TABLE "listings" (`+strings.Join(defs, ",")+`)`); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(quoted)), ",")
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO "listings" (`+strings.Join(quoted, ",")+`) VALUES (`+ph+`)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		if _, err = stmt.ExecContext(ctx, listingValues(l)...); err != nil {
			return fmt.Errorf("failed to insert listing %s/%d: %w", l.Ciudad, l.ID, err)
		}
	}

	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_barrio ON listings(ciudad, barrio_std)`,
	} {
		if _, err = tx.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	w.logger.Info("Clean listings written to SQLite: %s (%d rows)", w.path, len(listings))
	return nil
}

// Close closes the database handle
func (w *SQLiteWriter) Close() error {
	if w.db == nil {
		return nil
	}
	return w.db.Close()
}
