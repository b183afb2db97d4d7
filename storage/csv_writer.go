package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"airbnb-insights/models"
	"airbnb-insights/utils"
)

// CSVWriter writes the clean dataset, and optionally raw city tables, to CSV files
type CSVWriter struct {
	filePath string
	rawDir   string
	logger   *utils.Logger
}

// NewCSVWriter creates a new CSVWriter for the clean dataset
func NewCSVWriter(filePath string, logger *utils.Logger) *CSVWriter {
	return &CSVWriter{filePath: filePath, logger: logger}
}

// NewRawCSVWriter creates a CSVWriter that dumps raw tables into dir
func NewRawCSVWriter(dir string, logger *utils.Logger) *CSVWriter {
	return &CSVWriter{rawDir: dir, logger: logger}
}

// SaveClean writes listings in canonical column order
func (w *CSVWriter) SaveClean(_ context.Context, listings []*models.Listing) error {
	if w.filePath == "" {
		return fmt.Errorf("no clean CSV path configured")
	}
	rows := make([][]string, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, listingRecord(l))
	}
	if err := writeCSV(w.filePath, models.CanonicalColumns, rows); err != nil {
		return err
	}
	w.logger.Info("Clean listings written to: %s (%d rows)", w.filePath, len(listings))
	return nil
}

// SaveRaw writes one city's raw table as fetched, missing cells left empty
func (w *CSVWriter) SaveRaw(city string, table *models.RawTable) error {
	if w.rawDir == "" {
		return fmt.Errorf("no raw dump directory configured")
	}
	path := filepath.Join(w.rawDir, strings.ToLower(city)+"_raw.csv")
	rows := make([][]string, 0, table.Len())
	for _, r := range table.Rows {
		rec := make([]string, len(table.Columns))
		for i := range rec {
			if i < len(r) && r[i] != nil {
				rec[i] = *r[i]
			}
		}
		rows = append(rows, rec)
	}
	if err := writeCSV(path, table.Columns, rows); err != nil {
		return err
	}
	w.logger.Debug("Raw %s table written to: %s (%d rows)", city, path, table.Len())
	return nil
}

// Close is a no-op; files are closed after each write
func (w *CSVWriter) Close() error {
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}
