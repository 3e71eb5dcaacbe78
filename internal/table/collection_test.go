package table

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService is an in-memory FetchService with controllable latency,
// failure injection, and fetch counting.
type fakeService struct {
	mu         sync.Mutex
	zones      map[string]Zone          // query or key -> zone
	meanOffset map[string]float64       // key -> mean offset seconds
	delay      map[string]time.Duration // key -> fetch latency
	fetchErr   map[string]error         // key -> injected FetchRow error
	fetches    map[string]int           // key -> FetchRow call count
	homeSeen   map[string][]string      // key -> home keys passed to FetchRow
}

func newFakeService() *fakeService {
	return &fakeService{
		zones:      make(map[string]Zone),
		meanOffset: make(map[string]float64),
		delay:      make(map[string]time.Duration),
		fetchErr:   make(map[string]error),
		fetches:    make(map[string]int),
		homeSeen:   make(map[string][]string),
	}
}

func (f *fakeService) addZone(key, fullName string, meanOffset float64) {
	f.zones[key] = Zone{Key: key, Name: fullName, FullName: fullName, TZ: "UTC"}
	f.meanOffset[key] = meanOffset
}

func (f *fakeService) ResolveZone(ctx context.Context, query string) (Zone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	z, ok := f.zones[query]
	if !ok {
		return Zone{}, ErrZoneNotFound
	}
	return z, nil
}

func (f *fakeService) ResolveZoneSuggestions(ctx context.Context, query string, limit int) ([]Zone, error) {
	return nil, nil
}

func (f *fakeService) FetchRow(ctx context.Context, dateKey, homeKey, awayKey string) (RowData, error) {
	f.mu.Lock()
	z, ok := f.zones[awayKey]
	delay := f.delay[awayKey]
	injected := f.fetchErr[awayKey]
	f.fetches[awayKey]++
	f.homeSeen[awayKey] = append(f.homeSeen[awayKey], homeKey)
	mean := f.meanOffset[awayKey]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if injected != nil {
		return RowData{}, injected
	}
	if !ok {
		return RowData{}, ErrZoneNotFound
	}

	rd := RowData{
		Zone: z,
		Cells: []StampCell{
			{Slot: "Thu, 05 Mar 2026 00:00:00 +0000 (UTC)", UTC: "Thu, 05 Mar 2026 00:00:00 +0000 (UTC)"},
		},
		Clock: ClockInfo{Offset: int(mean)},
	}
	if homeKey != "" {
		rd.Offsets = &OffsetStats{Mean: mean}
	}
	return rd, nil
}

func (f *fakeService) fetchCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[key]
}

func newTestCollection(svc FetchService) *Collection {
	c := New(svc, "05-03-2026")
	c.SetNowFunc(func() time.Time {
		return time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	})
	return c
}

func keysOf(c *Collection) []string {
	rows := c.Rows()
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	return keys
}

func TestAddFirstRowBecomesHome(t *testing.T) {
	svc := newFakeService()
	svc.addZone("HR/Zagreb", "Zagreb, Croatia", 0)
	c := newTestCollection(svc)

	row, err := c.AddByKey(context.Background(), "HR/Zagreb")
	require.NoError(t, err)
	assert.True(t, row.Home)
	assert.Equal(t, "HR/Zagreb", c.HomeKey())
	assert.Equal(t, 1, c.Len())
}

func TestAddDuplicateIsNoOp(t *testing.T) {
	svc := newFakeService()
	svc.addZone("HR/Zagreb", "Zagreb, Croatia", 0)
	c := newTestCollection(svc)

	_, err := c.AddByKey(context.Background(), "HR/Zagreb")
	require.NoError(t, err)

	_, err = c.AddByKey(context.Background(), "HR/Zagreb")
	assert.ErrorIs(t, err, ErrAlreadyPresent)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "HR/Zagreb", c.HomeKey())
}

func TestAddUnknownZone(t *testing.T) {
	svc := newFakeService()
	c := newTestCollection(svc)

	_, err := c.AddByKey(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrZoneNotFound)
	assert.Equal(t, 0, c.Len())
}

func TestAddTransportFailureLeavesStateUntouched(t *testing.T) {
	svc := newFakeService()
	svc.addZone("HR/Zagreb", "Zagreb, Croatia", 0)
	svc.addZone("DE/Berlin", "Berlin, Germany", 0)
	svc.fetchErr["DE/Berlin"] = errors.New("connection reset")
	c := newTestCollection(svc)

	_, err := c.AddByKey(context.Background(), "HR/Zagreb")
	require.NoError(t, err)

	_, err = c.AddByKey(context.Background(), "DE/Berlin")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrZoneNotFound)
	assert.Equal(t, []string{"HR/Zagreb"}, keysOf(c))
}

func TestConcurrentAddsNeverDuplicate(t *testing.T) {
	svc := newFakeService()
	svc.addZone("HR/Zagreb", "Zagreb, Croatia", 0)
	svc.delay["HR/Zagreb"] = 20 * time.Millisecond
	c := newTestCollection(svc)

	// Both adds pass the entry check before either fetch resolves; the
	// insertion-time recheck must let exactly one through.
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = c.AddByKey(context.Background(), "HR/Zagreb")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, c.Len())
	var okCount, dupCount int
	for _, err := range results {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, ErrAlreadyPresent):
			dupCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, dupCount)
}

func TestRemoveReassignsHome(t *testing.T) {
	svc := newFakeService()
	svc.addZone("HR/Zagreb", "Zagreb, Croatia", 0)
	svc.addZone("US/Boston/MA", "Boston (MA), United States", -6*3600)
	c := newTestCollection(svc)
	ctx := context.Background()

	_, err := c.AddByKey(ctx, "HR/Zagreb")
	require.NoError(t, err)
	_, err = c.AddByKey(ctx, "US/Boston/MA")
	require.NoError(t, err)

	c.Remove(ctx, "HR/Zagreb")
	assert.Equal(t, []string{"US/Boston/MA"}, keysOf(c))
	assert.Equal(t, "US/Boston/MA", c.HomeKey())
	assert.True(t, c.Rows()[0].Home)

	c.Remove(ctx, "US/Boston/MA")
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, "", c.HomeKey())
}

func TestRemoveUnknownKeyIsNoOp(t *testing.T) {
	svc := newFakeService()
	svc.addZone("HR/Zagreb", "Zagreb, Croatia", 0)
	c := newTestCollection(svc)

	_, err := c.AddByKey(context.Background(), "HR/Zagreb")
	require.NoError(t, err)

	c.Remove(context.Background(), "US/Nowhere")
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "HR/Zagreb", c.HomeKey())
}

func TestSetHomeRefetchesEveryRow(t *testing.T) {
	svc := newFakeService()
	svc.addZone("HR/Zagreb", "Zagreb, Croatia", 0)
	svc.addZone("US/Boston/MA", "Boston (MA), United States", -6*3600)
	svc.addZone("DE/Berlin", "Berlin, Germany", 0)
	c := newTestCollection(svc)
	ctx := context.Background()

	for _, key := range []string{"HR/Zagreb", "US/Boston/MA", "DE/Berlin"} {
		_, err := c.AddByKey(ctx, key)
		require.NoError(t, err)
	}
	require.Equal(t, "HR/Zagreb", c.HomeKey())

	before := map[string]int{}
	for _, key := range []string{"HR/Zagreb", "US/Boston/MA", "DE/Berlin"} {
		before[key] = svc.fetchCount(key)
	}

	c.SetHome(ctx, "US/Boston/MA")
	assert.Equal(t, "US/Boston/MA", c.HomeKey())

	for _, key := range []string{"HR/Zagreb", "US/Boston/MA", "DE/Berlin"} {
		assert.Equal(t, before[key]+1, svc.fetchCount(key), "key %s", key)
	}
	for _, r := range c.Rows() {
		assert.Equal(t, r.Key == "US/Boston/MA", r.Home)
	}
}

func TestFirstHomeSetDoesNotRefetch(t *testing.T) {
	svc := newFakeService()
	svc.addZone("HR/Zagreb", "Zagreb, Croatia", 0)
	svc.addZone("DE/Berlin", "Berlin, Germany", 0)
	c := newTestCollection(svc)
	ctx := context.Background()

	for _, key := range []string{"HR/Zagreb", "DE/Berlin"} {
		_, err := c.AddByKey(ctx, key)
		require.NoError(t, err)
	}

	c.ClearHome()
	require.Equal(t, "", c.HomeKey())
	before := svc.fetchCount("HR/Zagreb") + svc.fetchCount("DE/Berlin")

	c.SetHome(ctx, "DE/Berlin")
	assert.Equal(t, "DE/Berlin", c.HomeKey())
	assert.Equal(t, before, svc.fetchCount("HR/Zagreb")+svc.fetchCount("DE/Berlin"),
		"setting home from none must not refetch")
}

func TestSetHomeUnknownKeyIsNoOp(t *testing.T) {
	svc := newFakeService()
	svc.addZone("HR/Zagreb", "Zagreb, Croatia", 0)
	c := newTestCollection(svc)

	_, err := c.AddByKey(context.Background(), "HR/Zagreb")
	require.NoError(t, err)

	c.SetHome(context.Background(), "US/Nowhere")
	assert.Equal(t, "HR/Zagreb", c.HomeKey())
}

func TestChangeDateRefetchesPreservingOrderAndHome(t *testing.T) {
	svc := newFakeService()
	svc.addZone("HR/Zagreb", "Zagreb, Croatia", 0)
	svc.addZone("US/Boston/MA", "Boston (MA), United States", -6*3600)
	c := newTestCollection(svc)
	ctx := context.Background()

	_, err := c.AddByKey(ctx, "HR/Zagreb")
	require.NoError(t, err)
	_, err = c.AddByKey(ctx, "US/Boston/MA")
	require.NoError(t, err)

	c.ChangeDate(ctx, "06-03-2026")
	assert.Equal(t, "06-03-2026", c.Date())
	assert.Equal(t, []string{"HR/Zagreb", "US/Boston/MA"}, keysOf(c))
	assert.Equal(t, "HR/Zagreb", c.HomeKey())
	assert.True(t, c.Rows()[0].Home)
}

func TestChangeDateFailureKeepsStaleRow(t *testing.T) {
	svc := newFakeService()
	svc.addZone("HR/Zagreb", "Zagreb, Croatia", 0)
	svc.addZone("US/Boston/MA", "Boston (MA), United States", -6*3600)
	c := newTestCollection(svc)
	ctx := context.Background()

	_, err := c.AddByKey(ctx, "HR/Zagreb")
	require.NoError(t, err)
	_, err = c.AddByKey(ctx, "US/Boston/MA")
	require.NoError(t, err)

	svc.mu.Lock()
	svc.fetchErr["US/Boston/MA"] = errors.New("timeout")
	svc.mu.Unlock()

	c.ChangeDate(ctx, "06-03-2026")

	assert.Equal(t, []string{"HR/Zagreb", "US/Boston/MA"}, keysOf(c),
		"a failed refetch must not remove the row")
	var boston *Row
	for _, r := range c.Rows() {
		if r.Key == "US/Boston/MA" {
			boston = r
		}
	}
	require.NotNil(t, boston)
	assert.Error(t, boston.FetchErr)
	assert.NotEmpty(t, boston.Cells, "stale data stays in place")

	// Zagreb refreshed cleanly
	assert.NoError(t, c.Rows()[0].FetchErr)
}

func TestRefetchDiscardedWhenRowRemoved(t *testing.T) {
	svc := newFakeService()
	svc.addZone("HR/Zagreb", "Zagreb, Croatia", 0)
	svc.addZone("US/Boston/MA", "Boston (MA), United States", -6*3600)
	c := newTestCollection(svc)
	ctx := context.Background()

	_, err := c.AddByKey(ctx, "HR/Zagreb")
	require.NoError(t, err)
	_, err = c.AddByKey(ctx, "US/Boston/MA")
	require.NoError(t, err)

	// Boston's refetch is slow; remove it while the date change is in
	// flight and make sure the late result does not reinsert it.
	svc.mu.Lock()
	svc.delay["US/Boston/MA"] = 50 * time.Millisecond
	svc.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.ChangeDate(ctx, "06-03-2026")
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	c.Remove(ctx, "US/Boston/MA")
	<-done

	assert.Equal(t, []string{"HR/Zagreb"}, keysOf(c))
}

func TestSortStability(t *testing.T) {
	svc := newFakeService()
	svc.addZone("GB/London", "London, United Kingdom", 0)
	svc.addZone("HR/Zagreb", "Zagreb, Croatia", 2*3600)
	svc.addZone("US/Boston/MA", "Boston, United States", -5*3600)
	svc.addZone("DE/Berlin", "Berlin, Germany", 2*3600)
	c := newTestCollection(svc)
	ctx := context.Background()

	// London is added first and becomes home; the rest carry the mean
	// offsets the fake reports relative to it.
	for _, key := range []string{"GB/London", "HR/Zagreb", "US/Boston/MA", "DE/Berlin"} {
		_, err := c.AddByKey(ctx, key)
		require.NoError(t, err)
	}

	c.SortByOffset()
	assert.Equal(t,
		[]string{"US/Boston/MA", "GB/London", "HR/Zagreb", "DE/Berlin"}, keysOf(c),
		"Zagreb and Berlin tie at +2h and keep their previous relative order")

	c.SortByName()
	assert.Equal(t,
		[]string{"DE/Berlin", "US/Boston/MA", "GB/London", "HR/Zagreb"}, keysOf(c),
		"name sort is case-insensitive")
}

func TestTickClocks(t *testing.T) {
	svc := newFakeService()
	svc.addZone("HR/Zagreb", "Zagreb, Croatia", 3600)
	svc.addZone("US/Boston/MA", "Boston, United States", -5*3600)
	c := newTestCollection(svc)
	ctx := context.Background()

	for _, key := range []string{"HR/Zagreb", "US/Boston/MA"} {
		_, err := c.AddByKey(ctx, key)
		require.NoError(t, err)
	}

	base := time.Date(2026, 3, 5, 12, 0, 30, 0, time.UTC)

	// same minute: no visible change
	c.TickClocks(base, true)
	changed := c.TickClocks(base.Add(time.Second), true)
	assert.False(t, changed)

	// minute rollover on every clock
	changed = c.TickClocks(base.Add(30*time.Second), true)
	assert.True(t, changed)

	// not today: clocks deactivate and stop moving
	changed = c.TickClocks(base.Add(10*time.Minute), false)
	assert.False(t, changed)
	for _, r := range c.Rows() {
		assert.False(t, r.Clock.Active)
	}
}
