package table

import (
	"context"
	"errors"
)

// ErrZoneNotFound is returned when a query resolves to no known zone.
// It is surfaced distinctly from transport failures so the UI copy can
// differ.
var ErrZoneNotFound = errors.New("table: zone not found")

// Zone is a resolved zone descriptor. Key is the stable location key
// ("HR/Zagreb") used for membership and session serialization; TZ is the
// IANA zone name.
type Zone struct {
	Key      string
	Name     string
	FullName string
	Country  string
	TZ       string
}

// StampCell is one time slot of a fetched day, still in textual stamp
// form as produced by the fetch service.
type StampCell struct {
	Slot string
	UTC  string
}

// OffsetStats describes the away-home offset over a fetched day, in
// seconds. Mean is the median of the per-slot offsets and drives
// offset-based sorting.
type OffsetStats struct {
	All      []float64
	Min      float64
	Max      float64
	DayStart float64
	DayEnd   float64
	Mean     float64
}

// ClockInfo seeds a row's real-time clock: the zone's current offset
// and, when a transition is scheduled, the offset after it and the
// stamped instant it activates.
type ClockInfo struct {
	Offset     int
	NextOffset *int
	Activates  string
}

// TransitionData is the stamped form of the next scheduled offset
// change for a zone.
type TransitionData struct {
	FromOffset int
	ToOffset   int
	FromName   string
	ToName     string
	Activates  string
}

// RowData is everything the fetch service returns for one
// (date, home, away) triple. Offsets is nil when fetched without a home
// zone; NextTransition is nil when none is scheduled.
type RowData struct {
	Zone           Zone
	Cells          []StampCell
	Offsets        *OffsetStats
	Clock          ClockInfo
	NextTransition *TransitionData
}

// FetchService is the external collaborator contract: free-text zone
// resolution, typeahead suggestions, and per-day row data. Implementations
// must be safe for concurrent use; ResolveZone and FetchRow report
// not-found via ErrZoneNotFound and transport problems via any other
// error.
type FetchService interface {
	ResolveZone(ctx context.Context, query string) (Zone, error)
	ResolveZoneSuggestions(ctx context.Context, query string, limit int) ([]Zone, error)
	FetchRow(ctx context.Context, dateKey, homeKey, awayKey string) (RowData, error)
}
