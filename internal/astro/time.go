package astro

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// SecondsPerDay is the length of a Julian day in seconds.
const SecondsPerDay = 86400.0

// ttMinusTAI is the constant offset between Terrestrial Time and TAI, in seconds.
const ttMinusTAI = 32.184

// leapSeconds lists TAI-UTC after each leap second insertion since 1972.
var leapSeconds = []struct {
	from   time.Time
	offset float64
}{
	{time.Date(1972, 1, 1, 0, 0, 0, 0, time.UTC), 10},
	{time.Date(1972, 7, 1, 0, 0, 0, 0, time.UTC), 11},
	{time.Date(1973, 1, 1, 0, 0, 0, 0, time.UTC), 12},
	{time.Date(1974, 1, 1, 0, 0, 0, 0, time.UTC), 13},
	{time.Date(1975, 1, 1, 0, 0, 0, 0, time.UTC), 14},
	{time.Date(1976, 1, 1, 0, 0, 0, 0, time.UTC), 15},
	{time.Date(1977, 1, 1, 0, 0, 0, 0, time.UTC), 16},
	{time.Date(1978, 1, 1, 0, 0, 0, 0, time.UTC), 17},
	{time.Date(1979, 1, 1, 0, 0, 0, 0, time.UTC), 18},
	{time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), 19},
	{time.Date(1981, 7, 1, 0, 0, 0, 0, time.UTC), 20},
	{time.Date(1982, 7, 1, 0, 0, 0, 0, time.UTC), 21},
	{time.Date(1983, 7, 1, 0, 0, 0, 0, time.UTC), 22},
	{time.Date(1985, 7, 1, 0, 0, 0, 0, time.UTC), 23},
	{time.Date(1988, 1, 1, 0, 0, 0, 0, time.UTC), 24},
	{time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), 25},
	{time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC), 26},
	{time.Date(1992, 7, 1, 0, 0, 0, 0, time.UTC), 27},
	{time.Date(1993, 7, 1, 0, 0, 0, 0, time.UTC), 28},
	{time.Date(1994, 7, 1, 0, 0, 0, 0, time.UTC), 29},
	{time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC), 30},
	{time.Date(1997, 7, 1, 0, 0, 0, 0, time.UTC), 31},
	{time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC), 32},
	{time.Date(2006, 1, 1, 0, 0, 0, 0, time.UTC), 33},
	{time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC), 34},
	{time.Date(2012, 7, 1, 0, 0, 0, 0, time.UTC), 35},
	{time.Date(2015, 7, 1, 0, 0, 0, 0, time.UTC), 36},
	{time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), 37},
}

// taiMinusUTC returns the leap second offset in effect at t. Dates before
// 1972 use the first tabulated value.
func taiMinusUTC(t time.Time) float64 {
	offset := leapSeconds[0].offset
	for _, ls := range leapSeconds {
		if t.Before(ls.from) {
			break
		}
		offset = ls.offset
	}
	return offset
}

// UTCToTDB converts a wall-clock time to a TDB Julian date. TDB is
// approximated by TT; the periodic difference stays below 2 ms.
func UTCToTDB(t time.Time) float64 {
	t = t.UTC()
	return julian.TimeToJD(t) + (taiMinusUTC(t)+ttMinusTAI)/SecondsPerDay
}

// TDBToUTC converts a TDB Julian date back to a UTC wall-clock time.
func TDBToUTC(tdb float64) time.Time {
	approx := julian.JDToTime(tdb)
	delta := taiMinusUTC(approx) + ttMinusTAI
	// Julian dates near the present resolve to tens of microseconds.
	return julian.JDToTime(tdb - delta/SecondsPerDay).UTC().Round(time.Millisecond)
}
