package table

import (
	"time"

	"tzsched/internal/civil"
	"tzsched/internal/clock"
)

// Cell is one time slot of a row's day, parsed into civil values.
type Cell struct {
	Slot  civil.DateTime
	UTC   civil.DateTime
	Index int
}

// TransitionInfo is read-only metadata describing the next scheduled
// offset change for a row's zone. It is used for display; the ticking
// logic carries its own copy of the pending state.
type TransitionInfo struct {
	FromOffset int
	ToOffset   int
	FromName   string
	ToName     string
	Activates  civil.DateTime
}

// Row aggregates a zone identity, a day's worth of slot cells, the
// real-time clock, the home flag, and transition metadata. Key is the
// stable identity; everything else is replaced wholesale by a re-fetch.
type Row struct {
	Key        string
	Zone       Zone
	Cells      []Cell
	Offsets    *OffsetStats
	Transition *TransitionInfo
	Clock      *clock.Clock
	Home       bool

	// FetchErr records the most recent refresh failure; the row keeps
	// showing its previous data while set.
	FetchErr error
}

// newRow builds a Row from fetched data. Malformed cell stamps parse to
// zero values rather than failing the whole row.
func newRow(rd RowData, now time.Time) *Row {
	cells := make([]Cell, 0, len(rd.Cells))
	for i, sc := range rd.Cells {
		slot, err := civil.Parse(sc.Slot)
		if err != nil {
			slot = civil.DateTime{}
		}
		utc, err := civil.Parse(sc.UTC)
		if err != nil {
			utc = civil.DateTime{}
		}
		cells = append(cells, Cell{Slot: slot, UTC: utc, Index: i})
	}

	var activates time.Time
	if rd.Clock.NextOffset != nil {
		if dt, err := civil.Parse(rd.Clock.Activates); err == nil {
			activates = time.Date(dt.Year, time.Month(dt.Month), dt.Day,
				dt.Hour, dt.Minute, dt.Second, 0,
				time.FixedZone(dt.Zone, dt.OffsetSeconds))
		}
	}

	var ti *TransitionInfo
	if rd.NextTransition != nil {
		at, err := civil.Parse(rd.NextTransition.Activates)
		if err == nil {
			ti = &TransitionInfo{
				FromOffset: rd.NextTransition.FromOffset,
				ToOffset:   rd.NextTransition.ToOffset,
				FromName:   rd.NextTransition.FromName,
				ToName:     rd.NextTransition.ToName,
				Activates:  at,
			}
		}
	}

	return &Row{
		Key:        rd.Zone.Key,
		Zone:       rd.Zone,
		Cells:      cells,
		Offsets:    rd.Offsets,
		Transition: ti,
		Clock:      clock.New(rd.Clock.Offset, rd.Clock.NextOffset, activates, now),
	}
}

// MeanOffsetHours is the row's median away-home offset in hours, zero
// when the row was fetched without a home.
func (r *Row) MeanOffsetHours() float64 {
	if r.Offsets == nil {
		return 0
	}
	return r.Offsets.Mean / 3600
}
