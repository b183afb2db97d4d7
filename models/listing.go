package models

import "sort"

// CanonicalColumns is the fixed field order of a standardized listing
var CanonicalColumns = []string{
	"id",
	"ciudad",
	"barrio_std",
	"room_type",
	"accommodates",
	"bathrooms_num",
	"price",
	"price_per_person",
	"amenities_count",
	"latitude",
	"longitude",
	"number_of_reviews_ltm",
	"review_scores_rating",
	"host_is_superhost",
}

// RawTable holds one city's listings exactly as delivered upstream.
// A nil cell is a missing value.
type RawTable struct {
	Columns []string
	Rows    [][]*string

	index map[string]int
}

// NewRawTable creates a RawTable from column names and rows of nullable cells
func NewRawTable(columns []string, rows [][]*string) *RawTable {
	t := &RawTable{Columns: columns, Rows: rows}
	t.buildIndex()
	return t
}

// buildIndex maps column names to positions; the first duplicate wins
func (t *RawTable) buildIndex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
}

// Len returns the number of rows
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Has reports whether the column exists in the table
func (t *RawTable) Has(column string) bool {
	if t == nil {
		return false
	}
	if t.index == nil {
		t.buildIndex()
	}
	_, ok := t.index[column]
	return ok
}

// Value returns the cell at (row, column); ok is false when the column
// is absent, the row is short or the cell is missing.
func (t *RawTable) Value(row int, column string) (string, bool) {
	if !t.Has(column) || row < 0 || row >= len(t.Rows) {
		return "", false
	}
	idx := t.index[column]
	cells := t.Rows[row]
	if idx >= len(cells) || cells[idx] == nil {
		return "", false
	}
	return *cells[idx], true
}

// Listing is one standardized record in the canonical schema.
// Nil pointers are null values.
type Listing struct {
	ID                 int64    `json:"id"`
	Ciudad             string   `json:"ciudad"`
	BarrioStd          *string  `json:"barrio_std"`
	RoomType           *string  `json:"room_type"`
	Accommodates       *float64 `json:"accommodates"`
	BathroomsNum       *float64 `json:"bathrooms_num"`
	Price              *float64 `json:"price"`
	PricePerPerson     *float64 `json:"price_per_person"`
	AmenitiesCount     *int     `json:"amenities_count"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	NumberOfReviewsLTM *float64 `json:"number_of_reviews_ltm"`
	ReviewScoresRating *float64 `json:"review_scores_rating"`
	HostIsSuperhost    *string  `json:"host_is_superhost"`
}

// Clone returns a copy of the listing. Pointed-to values are never
// written after standardization, so sharing them is safe.
func (l *Listing) Clone() *Listing {
	c := *l
	return &c
}

// Dataset is the consolidated, deduplicated and trimmed set of listings.
// It is read-only once published by the loader.
type Dataset struct {
	Listings []*Listing
}

// Empty reports whether the dataset holds no listings
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Listings) == 0
}

// Len returns the number of listings
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Listings)
}

// Cities returns the distinct cities present, sorted by name
func (d *Dataset) Cities() []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var cities []string
	for _, l := range d.Listings {
		if _, ok := seen[l.Ciudad]; ok {
			continue
		}
		seen[l.Ciudad] = struct{}{}
		cities = append(cities, l.Ciudad)
	}
	sort.Strings(cities)
	return cities
}

// ByCity groups listings by city, preserving row order within each city
func (d *Dataset) ByCity() map[string][]*Listing {
	groups := make(map[string][]*Listing)
	if d == nil {
		return groups
	}
	for _, l := range d.Listings {
		groups[l.Ciudad] = append(groups[l.Ciudad], l)
	}
	return groups
}

// Clone returns an independent copy that callers may filter freely
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return &Dataset{}
	}
	out := &Dataset{Listings: make([]*Listing, len(d.Listings))}
	for i, l := range d.Listings {
		out.Listings[i] = l.Clone()
	}
	return out
}
