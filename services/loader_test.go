package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"airbnb-insights/config"
	"airbnb-insights/models"
	"airbnb-insights/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	tables map[string]*models.RawTable
	errs   map[string]error
	calls  map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		tables: make(map[string]*models.RawTable),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (f *stubFetcher) Fetch(_ context.Context, src config.CitySource) (*models.RawTable, error) {
	f.calls[src.City]++
	if err := f.errs[src.City]; err != nil {
		return nil, err
	}
	if t, ok := f.tables[src.City]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("no table for %s", src.City)
}

func (f *stubFetcher) totalCalls() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type memorySnapshots struct {
	ds      *models.Dataset
	saves   int
	loadErr error
}

func (m *memorySnapshots) LoadSnapshot(context.Context) (*models.Dataset, bool, error) {
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	return m.ds, m.ds != nil, nil
}

func (m *memorySnapshots) SaveSnapshot(_ context.Context, ds *models.Dataset) error {
	m.ds = ds
	m.saves++
	return nil
}

func (m *memorySnapshots) Invalidate(context.Context) error {
	m.ds = nil
	return nil
}

func cityTable(rows int, firstID int) *models.RawTable {
	data := make([][]*string, 0, rows)
	for i := 0; i < rows; i++ {
		data = append(data, []*string{
			strPtr(strconv.Itoa(firstID + i)),
			strPtr(fmt.Sprintf("$%d.00", 50+i)),
			strPtr("2"),
		})
	}
	return models.NewRawTable([]string{"id", "price", "accommodates"}, data)
}

func fullFetcher() *stubFetcher {
	f := newStubFetcher()
	for _, src := range config.DriveFiles {
		f.tables[src.City] = cityTable(5, 1)
	}
	return f
}

func newTestLoader(f *stubFetcher, opts ...LoaderOption) *DatasetLoader {
	logger := utils.NewNopLogger()
	return NewDatasetLoader(config.DriveFiles, f, NewDataCleaner(logger), logger, opts...)
}

func TestLoadAllCities(t *testing.T) {
	loader := newTestLoader(fullFetcher())

	ds, warnings := loader.Load(context.Background())
	assert.Empty(t, warnings)
	assert.Equal(t, 25, ds.Len())
	assert.ElementsMatch(t, []string{"Amsterdam", "Atenas", "Barcelona", "Madrid", "Milan"}, ds.Cities())
}

func TestLoadOneCityFails(t *testing.T) {
	f := fullFetcher()
	f.errs["Milan"] = errors.New("connection reset")
	loader := newTestLoader(f)

	ds, warnings := loader.Load(context.Background())
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Milan")
	assert.Contains(t, warnings[0], "connection reset")
	assert.Equal(t, 20, ds.Len())
	assert.NotContains(t, ds.Cities(), "Milan")
}

func TestLoadAllCitiesFail(t *testing.T) {
	f := newStubFetcher()
	for _, src := range config.DriveFiles {
		f.errs[src.City] = errors.New("HTTP 403")
	}
	loader := newTestLoader(f)

	ds, warnings := loader.Load(context.Background())
	assert.True(t, ds.Empty())
	require.NotEmpty(t, warnings)
	assert.Equal(t, TotalFailureWarning, warnings[len(warnings)-1])
	assert.Len(t, warnings, len(config.DriveFiles)+1)
}

func TestLoadIsMemoized(t *testing.T) {
	f := fullFetcher()
	f.errs["Madrid"] = errors.New("timeout")
	loader := newTestLoader(f)

	first, w1 := loader.Load(context.Background())
	second, w2 := loader.Load(context.Background())

	assert.Same(t, first, second)
	assert.Equal(t, w1, w2)
	assert.Equal(t, len(config.DriveFiles), f.totalCalls(), "each city is fetched once")

	w2[0] = "mutated"
	_, w3 := loader.Load(context.Background())
	assert.NotEqual(t, "mutated", w3[0], "callers get their own warnings slice")
}

func TestResetForcesRefetch(t *testing.T) {
	f := fullFetcher()
	loader := newTestLoader(f)

	loader.Load(context.Background())
	loader.Reset(context.Background())
	loader.Load(context.Background())

	assert.Equal(t, 2*len(config.DriveFiles), f.totalCalls())
}

func TestLoadUsesSnapshot(t *testing.T) {
	snapshots := &memorySnapshots{}
	first := fullFetcher()
	ds, _ := newTestLoader(first, WithSnapshotStore(snapshots)).Load(context.Background())
	assert.Equal(t, 1, snapshots.saves)

	second := fullFetcher()
	cached, warnings := newTestLoader(second, WithSnapshotStore(snapshots)).Load(context.Background())
	assert.Empty(t, warnings)
	assert.Equal(t, ds.Len(), cached.Len())
	assert.Zero(t, second.totalCalls(), "snapshot hit skips downloads")
}

func TestLoadSkipsSnapshotOnWarnings(t *testing.T) {
	snapshots := &memorySnapshots{}
	f := fullFetcher()
	f.errs["Barcelona"] = errors.New("boom")

	newTestLoader(f, WithSnapshotStore(snapshots)).Load(context.Background())
	assert.Zero(t, snapshots.saves)
}

func TestLoadFallsBackWhenSnapshotFails(t *testing.T) {
	snapshots := &memorySnapshots{loadErr: errors.New("redis down")}
	f := fullFetcher()

	ds, warnings := newTestLoader(f, WithSnapshotStore(snapshots)).Load(context.Background())
	assert.Empty(t, warnings)
	assert.Equal(t, 25, ds.Len())
}

type recordingRaw struct{ cities []string }

func (r *recordingRaw) SaveRaw(city string, _ *models.RawTable) error {
	r.cities = append(r.cities, city)
	return nil
}

func TestLoadKeepsRawCopies(t *testing.T) {
	raw := &recordingRaw{}
	f := fullFetcher()
	f.errs["Atenas"] = errors.New("gone")

	newTestLoader(f, WithRawStorage(raw)).Load(context.Background())
	assert.Equal(t, []string{"Barcelona", "Amsterdam", "Milan", "Madrid"}, raw.cities)
}

func TestLoadDropsDuplicateIDs(t *testing.T) {
	f := fullFetcher()
	dup := cityTable(3, 1)
	dup.Rows = append(dup.Rows, dup.Rows[0])
	f.tables["Madrid"] = dup
	loader := newTestLoader(f)

	ds, _ := loader.Load(context.Background())
	assert.Len(t, ds.ByCity()["Madrid"], 3)

	seen := make(map[string]bool)
	for _, l := range ds.Listings {
		key := fmt.Sprintf("%s/%d", l.Ciudad, l.ID)
		assert.False(t, seen[key], "duplicate %s", key)
		seen[key] = true
	}
}

func TestDropDuplicatesKeepsFirst(t *testing.T) {
	a := priced("Madrid", 1, 10)
	b := priced("Madrid", 1, 20)
	c := priced("Milan", 1, 30)

	out := DropDuplicates([]*models.Listing{a, b, c})
	require.Len(t, out, 2)
	assert.Same(t, a, out[0])
	assert.Same(t, c, out[1])
}
