package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"airbnb-insights/models"
	"airbnb-insights/utils"

	_ "github.com/lib/pq"
)

const createListingsTablePostgres = `
	CREATE TABLE IF NOT EXISTS listings (
		id                    BIGINT        NOT NULL,
		ciudad                VARCHAR(64)   NOT NULL,
		barrio_std            TEXT,
		room_type             TEXT,
		accommodates          DOUBLE PRECISION,
		bathrooms_num         DOUBLE PRECISION,
		price                 DOUBLE PRECISION,
		price_per_person      DOUBLE PRECISION,
		amenities_count       INTEGER,
		latitude              DOUBLE PRECISION,
		longitude             DOUBLE PRECISION,
		number_of_reviews_ltm DOUBLE PRECISION,
		review_scores_rating  DOUBLE PRECISION,
		host_is_superhost     TEXT,
		loaded_at             TIMESTAMP     NOT NULL DEFAULT NOW(),
		PRIMARY KEY (ciudad, id)
	);

	CREATE INDEX IF NOT EXISTS idx_listings_price     ON listings (price);
	CREATE INDEX IF NOT EXISTS idx_listings_barrio    ON listings (ciudad, barrio_std);
	CREATE INDEX IF NOT EXISTS idx_listings_room_type ON listings (room_type);
	`

const upsertListingPostgres = `
	INSERT INTO listings (id, ciudad, barrio_std, room_type, accommodates, bathrooms_num, price,
		price_per_person, amenities_count, latitude, longitude, number_of_reviews_ltm,
		review_scores_rating, host_is_superhost, loaded_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
	ON CONFLICT (ciudad, id) DO UPDATE SET
		barrio_std = EXCLUDED.barrio_std,
		room_type = EXCLUDED.room_type,
		accommodates = EXCLUDED.accommodates,
		bathrooms_num = EXCLUDED.bathrooms_num,
		price = EXCLUDED.price,
		price_per_person = EXCLUDED.price_per_person,
		amenities_count = EXCLUDED.amenities_count,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		number_of_reviews_ltm = EXCLUDED.number_of_reviews_ltm,
		review_scores_rating = EXCLUDED.review_scores_rating,
		host_is_superhost = EXCLUDED.host_is_superhost,
		loaded_at = EXCLUDED.loaded_at
	`

// PostgresWriter stores the clean dataset in PostgreSQL
type PostgresWriter struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresWriter creates a new PostgresWriter and pings the DB
func NewPostgresWriter(ctx context.Context, connStr string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.Info("Connected to PostgreSQL successfully")
	return &PostgresWriter{db: db, logger: logger}, nil
}

// CreateTable creates the listings table if it doesn't exist, with indexes
func (w *PostgresWriter) CreateTable(ctx context.Context) error {
	if _, err := w.db.ExecContext(ctx, createListingsTablePostgres); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	w.logger.Info("Table 'listings' is ready")
	return nil
}

// SaveClean upserts listings by (ciudad, id) in a single transaction
func (w *PostgresWriter) SaveClean(ctx context.Context, listings []*models.Listing) (err error) {
	if len(listings) == 0 {
		return nil
	}
	if err := w.CreateTable(ctx); err != nil {
		return err
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertListingPostgres)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		if _, err = stmt.ExecContext(ctx, listingValues(l)...); err != nil {
			return fmt.Errorf("failed to upsert listing %s/%d: %w", l.Ciudad, l.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.logger.Info("Upserted %d listings into PostgreSQL", len(listings))
	return nil
}

// Close closes the database connection
func (w *PostgresWriter) Close() error {
	if w.db == nil {
		return nil
	}
	return w.db.Close()
}
