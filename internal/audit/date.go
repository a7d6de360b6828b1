// Package audit defines the request and date-range types shared by the
// extraction pipeline.
package audit

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

var (
	// ErrInvalidDate is returned when a string is not a well-formed
	// YYYY-MM-DD calendar date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrBadRange is returned when the start date is chronologically
	// after the end date.
	ErrBadRange = errors.New("start date is after end date")
)

// Date is a calendar day. Its canonical string form is zero-padded ISO
// (YYYY-MM-DD), so lexicographic comparison of rendered dates matches
// chronological order.
type Date struct {
	t time.Time
}

// ParseDate parses a YYYY-MM-DD calendar date in the host's local zone.
// Dates are compared at day granularity; no timezone normalization is
// performed.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t: t}, nil
}

func (d Date) String() string {
	return d.t.Format(dateLayout)
}

// After reports whether d is chronologically after other.
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Range is an inclusive day-granularity date range.
type Range struct {
	Start Date
	End   Date
}

// NewRange builds a range, rejecting a start date after the end date.
func NewRange(start, end Date) (Range, error) {
	if start.After(end) {
		return Range{}, fmt.Errorf("%w: %s > %s", ErrBadRange, start, end)
	}
	return Range{Start: start, End: end}, nil
}

// ContainsToken reports whether a zero-padded YYYY-MM-DD token falls
// within the range, bounds inclusive. The comparison is lexicographic,
// which is chronological for this fixed-width format.
func (r Range) ContainsToken(token string) bool {
	return token >= r.Start.String() && token <= r.End.String()
}

func (r Range) String() string {
	return r.Start.String() + " to " + r.End.String()
}
