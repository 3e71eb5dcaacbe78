// Package civil provides an immutable calendar/time-of-day value with an
// embedded UTC offset and zone label, plus the fixed textual stamp grammar
// used by the row data service.
package civil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrParse is returned when a timestamp string does not match the stamp
// grammar. Callers treat it as "no timestamp available", never as fatal.
var ErrParse = errors.New("civil: malformed timestamp")

// DateTime is a normalized calendar/time-of-day value. Month is 1-12,
// Hour 0-23. OffsetSeconds is the UTC offset in effect; Zone is an
// optional abbreviation label like "CET". Values are never mutated.
type DateTime struct {
	Year          int
	Month         int
	Day           int
	Hour          int
	Minute        int
	Second        int
	Microsecond   int
	OffsetSeconds int
	Zone          string
}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var monthAbbrs = [12]string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

// stampRe matches "Mon, 02 Jan 2006 15:04:05 -0700 (MST)" with the offset
// and zone label parts optional.
var stampRe = regexp.MustCompile(`\w+,\s+(\d+)\s+(\w+)\s+(\d+)\s+(\d+):(\d+):(\d+)(?:\s+(GMT|UTC|[+-]\d{4}))?(?:\s+\((\w+)\))?`)

// Parse parses a textual stamp in the fixed grammar: weekday name, day,
// abbreviated month name (case-insensitive), year, HH:MM:SS, optional
// offset token (GMT/UTC/±HHMM), optional parenthesized zone label.
func Parse(s string) (DateTime, error) {
	m := stampRe.FindStringSubmatch(s)
	if m == nil {
		return DateTime{}, ErrParse
	}

	month := monthIndex(m[2])
	if month == 0 {
		return DateTime{}, ErrParse
	}

	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	second, _ := strconv.Atoi(m[6])

	offset, err := parseOffset(m[7])
	if err != nil {
		return DateTime{}, err
	}

	return DateTime{
		Year:          year,
		Month:         month,
		Day:           day,
		Hour:          hour,
		Minute:        minute,
		Second:        second,
		OffsetSeconds: offset,
		Zone:          m[8],
	}, nil
}

// monthIndex returns the 1-based month for an abbreviated name, or 0 when
// the name is not recognized.
func monthIndex(name string) int {
	name = strings.ToLower(name)
	if len(name) > 3 {
		name = name[:3]
	}
	for i, abbr := range monthAbbrs {
		if name == abbr {
			return i + 1
		}
	}
	return 0
}

// parseOffset converts an offset token to seconds east of UTC. GMT and UTC
// are zero; otherwise the token is a signed HHMM pair.
func parseOffset(tok string) (int, error) {
	if tok == "" || tok == "GMT" || tok == "UTC" {
		return 0, nil
	}
	sign := 0
	switch tok[0] {
	case '+':
		sign = 1
	case '-':
		sign = -1
	default:
		return 0, ErrParse
	}
	if len(tok) != 5 {
		return 0, ErrParse
	}
	h, err := strconv.Atoi(tok[1:3])
	if err != nil {
		return 0, ErrParse
	}
	m, err := strconv.Atoi(tok[3:5])
	if err != nil {
		return 0, ErrParse
	}
	return sign * (h*3600 + m*60), nil
}

// DateKey returns the zero-padded DD-MM-YYYY form used both for display
// and as the row fetch date parameter. Locale-independent.
func (d DateTime) DateKey() string {
	return fmt.Sprintf("%02d-%02d-%04d", d.Day, d.Month, d.Year)
}

// String renders "March 5, 2026 14:03 (CET)"; the zone label is omitted
// when absent.
func (d DateTime) String() string {
	s := fmt.Sprintf("%s %d, %d %02d:%02d", d.MonthName(), d.Day, d.Year, d.Hour, d.Minute)
	if d.Zone != "" {
		s += " (" + d.Zone + ")"
	}
	return s
}

// MonthName returns the full English month name, or "" for an
// out-of-range month.
func (d DateTime) MonthName() string {
	if d.Month < 1 || d.Month > 12 {
		return ""
	}
	return monthNames[d.Month-1]
}

// Now snapshots the local wall clock with the local offset and zone
// abbreviation.
func Now() DateTime {
	return FromTime(time.Now())
}

// FromTime converts a time.Time, keeping its location's offset and
// abbreviation.
func FromTime(t time.Time) DateTime {
	zone, offset := t.Zone()
	return DateTime{
		Year:          t.Year(),
		Month:         int(t.Month()),
		Day:           t.Day(),
		Hour:          t.Hour(),
		Minute:        t.Minute(),
		Second:        t.Second(),
		Microsecond:   t.Nanosecond() / 1000,
		OffsetSeconds: offset,
		Zone:          zone,
	}
}

// FormatStamp renders t in the stamp grammar Parse accepts:
// "Mon, 02 Jan 2006 15:04:05 -0700 (MST)".
func FormatStamp(t time.Time) string {
	return t.Format("Mon, 02 Jan 2006 15:04:05 -0700 (MST)")
}

// ParseDateKey splits a DD-MM-YYYY date key into its fields.
func ParseDateKey(key string) (year, month, day int, err error) {
	parts := strings.SplitN(key, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("bad date key %q", key)
	}
	day, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bad date key %q", key)
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bad date key %q", key)
	}
	year, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bad date key %q", key)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, fmt.Errorf("bad date key %q", key)
	}
	return year, month, day, nil
}
