// Package rowdata implements the fetch service contract: it resolves
// free-text zone queries against the city directory and computes a
// day's worth of hourly slot cells, offset statistics, and the next
// scheduled offset transition for an (away, home, date) triple. All
// time-zone authority lives here; the table core only consumes the
// values it is given.
package rowdata

import (
	"context"
	"fmt"
	"sort"
	"time"
	_ "time/tzdata"

	"tzsched/internal/civil"
	"tzsched/internal/table"
	"tzsched/internal/zonedb"
)

const (
	defaultSuggestLimit = 8
	maxSuggestLimit     = 50
)

// Service serves zone resolution and row data from an in-memory city
// directory. Safe for concurrent use.
type Service struct {
	dir *zonedb.Directory
	now func() time.Time
}

// New creates a service over dir.
func New(dir *zonedb.Directory) *Service {
	return &Service{dir: dir, now: time.Now}
}

// SetNowFunc overrides the wall clock, for tests.
func (s *Service) SetNowFunc(now func() time.Time) {
	s.now = now
}

// ResolveZone maps a free-text query (or an exact location key) to its
// canonical zone descriptor.
func (s *Service) ResolveZone(ctx context.Context, query string) (table.Zone, error) {
	if err := ctx.Err(); err != nil {
		return table.Zone{}, err
	}
	city := s.dir.FindOne(query)
	if city == nil {
		return table.Zone{}, table.ErrZoneNotFound
	}
	return exposeCity(city), nil
}

// ResolveZoneSuggestions returns ranked typeahead candidates, capped at
// limit (default 8, at most 50).
func (s *Service) ResolveZoneSuggestions(ctx context.Context, query string, limit int) ([]table.Zone, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	if limit > maxSuggestLimit {
		limit = maxSuggestLimit
	}
	cities := s.dir.Search(query)
	if len(cities) > limit {
		cities = cities[:limit]
	}
	zones := make([]table.Zone, len(cities))
	for i, c := range cities {
		zones[i] = exposeCity(c)
	}
	return zones, nil
}

// FetchRow computes the row for awayKey on dateKey relative to homeKey.
// The day runs from midnight of the date in the home zone (the away
// zone when homeKey is empty), converted to UTC, in 24 hourly slots.
func (s *Service) FetchRow(ctx context.Context, dateKey, homeKey, awayKey string) (table.RowData, error) {
	if err := ctx.Err(); err != nil {
		return table.RowData{}, err
	}

	away := s.dir.ByKey(awayKey)
	if away == nil {
		return table.RowData{}, table.ErrZoneNotFound
	}
	awayLoc, err := time.LoadLocation(away.Timezone)
	if err != nil {
		return table.RowData{}, fmt.Errorf("load zone %s: %w", away.Timezone, err)
	}

	var homeLoc *time.Location
	if homeKey != "" {
		home := s.dir.ByKey(homeKey)
		if home == nil {
			return table.RowData{}, table.ErrZoneNotFound
		}
		homeLoc, err = time.LoadLocation(home.Timezone)
		if err != nil {
			return table.RowData{}, fmt.Errorf("load zone %s: %w", home.Timezone, err)
		}
	}

	year, month, day, err := civil.ParseDateKey(dateKey)
	if err != nil {
		return table.RowData{}, err
	}

	refLoc := awayLoc
	if homeLoc != nil {
		refLoc = homeLoc
	}
	dayStart := time.Date(year, time.Month(month), day, 0, 0, 0, 0, refLoc).UTC()

	cells := make([]table.StampCell, 0, 24)
	var offsets []float64
	for hour := 0; hour < 24; hour++ {
		t := dayStart.Add(time.Duration(hour) * time.Hour)
		cells = append(cells, table.StampCell{
			Slot: civil.FormatStamp(t.In(awayLoc)),
			UTC:  civil.FormatStamp(t.UTC()),
		})
		if homeLoc != nil {
			_, awayOff := t.In(awayLoc).Zone()
			_, homeOff := t.In(homeLoc).Zone()
			offsets = append(offsets, float64(awayOff-homeOff))
		}
	}

	rd := table.RowData{
		Zone:  exposeCity(away),
		Cells: cells,
	}
	if homeLoc != nil {
		rd.Offsets = offsetStats(offsets)
	}
	rd.Clock, rd.NextTransition = s.clockInfo(awayLoc)
	return rd, nil
}

// clockInfo captures the away zone's current offset and, when the zone
// has a scheduled change ahead, the offset after it and its activation
// instant.
func (s *Service) clockInfo(loc *time.Location) (table.ClockInfo, *table.TransitionData) {
	now := s.now().In(loc)
	name, offset := now.Zone()
	ci := table.ClockInfo{Offset: offset}

	_, end := now.ZoneBounds()
	if end.IsZero() {
		return ci, nil
	}

	nextName, nextOffset := end.In(loc).Zone()
	stamp := civil.FormatStamp(end.In(loc))
	ci.NextOffset = &nextOffset
	ci.Activates = stamp
	return ci, &table.TransitionData{
		FromOffset: offset,
		ToOffset:   nextOffset,
		FromName:   name,
		ToName:     nextName,
		Activates:  stamp,
	}
}

func offsetStats(offsets []float64) *table.OffsetStats {
	sorted := make([]float64, len(offsets))
	copy(sorted, offsets)
	sort.Float64s(sorted)

	var all []float64
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			all = append(all, v)
		}
	}

	return &table.OffsetStats{
		All:      all,
		Min:      sorted[0],
		Max:      sorted[len(sorted)-1],
		DayStart: offsets[0],
		DayEnd:   offsets[len(offsets)-1],
		Mean:     sorted[len(sorted)/2],
	}
}

func exposeCity(c *zonedb.City) table.Zone {
	return table.Zone{
		Key:      c.Key,
		Name:     c.DisplayName,
		FullName: c.FullName,
		Country:  c.Country,
		TZ:       c.Timezone,
	}
}
