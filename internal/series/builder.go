// Package series reshapes the raw analytics records of one run into
// time-ordered, numeric tables ready for charting and summarizing.
package series

import (
	"errors"
	"time"
)

// ErrUnordered is wrapped by the integrity error returned when a derived table
// is not in ascending timestamp order.
var ErrUnordered = errors.New("table not in ascending timestamp order")

// Builder converts stored records into WalletTable and OperationTable values.
// A Builder holds no mutable state and may be shared between goroutines.
type Builder struct {
	quote string
	loc   *time.Location
}

// NewBuilder creates a Builder for runs quoted in quote. Timestamps are
// rendered in loc (UTC when nil).
func NewBuilder(quote string, loc *time.Location) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	return &Builder{quote: quote, loc: loc}
}

// Quote returns the quote currency symbol.
func (b *Builder) Quote() string {
	return b.quote
}

// WallClock converts a µs epoch timestamp into wall-clock time.
func (b *Builder) WallClock(us int64) time.Time {
	return time.UnixMicro(us).In(b.loc)
}

// firstUnordered returns the index of the first row whose timestamp is before
// its predecessor, or -1 when ts is ascending.
func firstUnordered(ts func(i int) time.Time, n int) int {
	for i := 1; i < n; i++ {
		if ts(i).Before(ts(i - 1)) {
			return i
		}
	}
	return -1
}
