// Package table owns the ordered collection of zone rows: membership,
// home selection, per-day refetches, sorting, and the once-per-second
// clock tick. All fetching goes through the FetchService contract; the
// collection never computes offsets itself.
package table

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrAlreadyPresent reports that an add was a no-op because the zone is
// already in the collection. It is a signal, not a failure; order and
// row identity are left untouched.
var ErrAlreadyPresent = errors.New("table: zone already present")

// Collection is the ordered list of rows with at most one home row.
// Methods are safe for concurrent use: fetches run outside the lock and
// membership is re-validated at insertion time, so two concurrent adds
// whose fetches complete out of order cannot create duplicates, and a
// refresh resolving after its row was removed is discarded.
type Collection struct {
	svc FetchService

	mu      sync.Mutex
	rows    []*Row
	homeKey string
	dateKey string

	// gen is bumped by every date or home change; refresh results
	// carrying a stale generation are dropped.
	gen uint64

	now func() time.Time
}

// New creates an empty collection over svc, fetching rows for dateKey.
func New(svc FetchService, dateKey string) *Collection {
	return &Collection{svc: svc, dateKey: dateKey, now: time.Now}
}

// SetNowFunc overrides the wall clock, for tests.
func (c *Collection) SetNowFunc(now func() time.Time) {
	c.now = now
}

// AddByKey resolves query to a zone, fetches its row for the current
// date and home, and appends it. Adding a zone already present returns
// ErrAlreadyPresent without disturbing existing order; an unresolvable
// query returns ErrZoneNotFound; transport errors pass through
// unchanged. The first row added becomes home. The membership check is
// re-run after the fetch resolves, immediately before insertion.
func (c *Collection) AddByKey(ctx context.Context, query string) (*Row, error) {
	c.mu.Lock()
	if c.findLocked(query) >= 0 {
		c.mu.Unlock()
		return nil, ErrAlreadyPresent
	}
	c.mu.Unlock()

	zone, err := c.svc.ResolveZone(ctx, query)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.findLocked(zone.Key) >= 0 {
		c.mu.Unlock()
		return nil, ErrAlreadyPresent
	}
	dateKey, homeKey := c.dateKey, c.homeKey
	c.mu.Unlock()

	rd, err := c.svc.FetchRow(ctx, dateKey, homeKey, zone.Key)
	if err != nil {
		return nil, err
	}

	row := newRow(rd, c.now())

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another add for the same zone may have won while we fetched.
	if c.findLocked(row.Key) >= 0 {
		return nil, ErrAlreadyPresent
	}
	c.rows = append(c.rows, row)
	if c.homeKey == "" {
		c.homeKey = row.Key
		row.Home = true
	}
	return row, nil
}

// Remove deletes the row for key. If it was the home row, home moves to
// the first remaining row by display order, which refetches every row
// against the new home; an emptied collection has no home.
func (c *Collection) Remove(ctx context.Context, key string) {
	c.mu.Lock()
	i := c.findLocked(key)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	c.rows = append(c.rows[:i], c.rows[i+1:]...)
	if c.homeKey != key {
		c.mu.Unlock()
		return
	}
	if len(c.rows) == 0 {
		c.homeKey = ""
		c.mu.Unlock()
		return
	}
	newHome := c.rows[0].Key
	c.mu.Unlock()

	c.SetHome(ctx, newHome)
}

// SetHome reassigns the home flag to the row for key. Changing the home
// from a previous non-null home invalidates everything fetched relative
// to it, so every row is refetched; setting home for the first time
// leaves existing rows alone. Unknown keys are ignored.
func (c *Collection) SetHome(ctx context.Context, key string) {
	c.mu.Lock()
	if c.findLocked(key) < 0 {
		c.mu.Unlock()
		return
	}
	wasNull := c.homeKey == ""
	c.homeKey = key
	for _, r := range c.rows {
		r.Home = r.Key == key
	}
	if wasNull {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.mu.Unlock()

	c.refetchAll(ctx)
}

// ClearHome drops the home selection without refetching.
func (c *Collection) ClearHome() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.homeKey = ""
	for _, r := range c.rows {
		r.Home = false
	}
}

// ChangeDate refetches every row for the new date, preserving order,
// home selection, and row identity. A row whose refetch fails keeps its
// previous data and gets its FetchErr flag set; it is never removed.
func (c *Collection) ChangeDate(ctx context.Context, dateKey string) {
	c.mu.Lock()
	c.dateKey = dateKey
	c.gen++
	c.mu.Unlock()

	c.refetchAll(ctx)
}

// refetchAll refreshes every row concurrently and blocks until all
// fetches settle. Results are applied only when the row is still a
// member and no later date/home change superseded the fetch.
func (c *Collection) refetchAll(ctx context.Context) {
	c.mu.Lock()
	gen := c.gen
	dateKey, homeKey := c.dateKey, c.homeKey
	keys := make([]string, len(c.rows))
	for i, r := range c.rows {
		keys[i] = r.Key
	}
	c.mu.Unlock()

	var wg sync.WaitGroup
	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			rd, err := c.svc.FetchRow(ctx, dateKey, homeKey, key)

			c.mu.Lock()
			defer c.mu.Unlock()
			if c.gen != gen {
				return // superseded by a later date/home change
			}
			i := c.findLocked(key)
			if i < 0 {
				return // row removed while the fetch was in flight
			}
			if err != nil {
				c.rows[i].FetchErr = err
				return
			}
			row := newRow(rd, c.now())
			row.Home = c.rows[i].Home
			c.rows[i] = row
		}(key)
	}
	wg.Wait()
}

// SortBy replaces the display order in place using less. The sort is
// stable, so comparators that report ties keep the previous relative
// order.
func (c *Collection) SortBy(less func(a, b *Row) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sort.SliceStable(c.rows, func(i, j int) bool {
		return less(c.rows[i], c.rows[j])
	})
}

// SortByOffset orders rows by their mean away-home offset.
func (c *Collection) SortByOffset() {
	c.SortBy(func(a, b *Row) bool {
		return a.MeanOffsetHours() < b.MeanOffsetHours()
	})
}

// SortByName orders rows case-insensitively by full display name.
func (c *Collection) SortByName() {
	c.SortBy(func(a, b *Row) bool {
		return strings.ToLower(a.Zone.FullName) < strings.ToLower(b.Zone.FullName)
	})
}

// TickClocks marks every clock active or inactive for isToday, ticks
// the active ones, and reports whether any displayed hour:minute
// changed. Intended to be driven once per second by an external timer;
// it never fetches.
func (c *Collection) TickClocks(now time.Time, isToday bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := false
	for _, r := range c.rows {
		r.Clock.SetActive(isToday)
		if isToday && r.Clock.Tick(now) {
			changed = true
		}
	}
	return changed
}

// Rows returns the rows in display order. The slice is a copy; the rows
// are the live values.
func (c *Collection) Rows() []*Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Row, len(c.rows))
	copy(out, c.rows)
	return out
}

// HomeKey returns the current home location key, "" when none.
func (c *Collection) HomeKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.homeKey
}

// Len returns the number of rows.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rows)
}

// Date returns the currently selected date key.
func (c *Collection) Date() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dateKey
}

func (c *Collection) findLocked(key string) int {
	for i, r := range c.rows {
		if r.Key == key {
			return i
		}
	}
	return -1
}
