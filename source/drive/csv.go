package drive

import (
	"fmt"
	"io"

	"airbnb-insights/models"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// naValues are the cell spellings treated as missing, matching the markers
// the upstream exports use for empty fields
var naValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// ReadRawCSV decodes a listings CSV into a RawTable, keeping every column
// as text and marking NA spellings as missing
func ReadRawCSV(r io.Reader) (*models.RawTable, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(naValues),
		dataframe.WithLazyQuotes(true),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to decode CSV: %w", df.Err)
	}

	columns := df.Names()
	nrow, ncol := df.Dims()
	rows := make([][]*string, nrow)
	for i := 0; i < nrow; i++ {
		row := make([]*string, ncol)
		for j := 0; j < ncol; j++ {
			elem := df.Elem(i, j)
			if elem.IsNA() {
				continue
			}
			v := elem.String()
			row[j] = &v
		}
		rows[i] = row
	}
	return models.NewRawTable(columns, rows), nil
}
