/*package ephtime formats ephemeris time for humans. Ephemeris time, as
stored in SPK files, is TDB seconds past the J2000 epoch (2000 Jan 1
12:00:00). The conversions here stay on that uniform scale: no leap
seconds are applied, so a rendered calendar date is a TDB date, which for
diagnostic output is within a minute of the civil date across several
millennia.
*/
package ephtime

import (
	"fmt"
	"math"
	"time"
)

const (
	// J2000JD is the J2000 epoch as a Julian date.
	J2000JD = 2451545.0
	// SecondsPerDay is the length of a day in ephemeris seconds.
	SecondsPerDay = 86400.0
	// DaysPerYear is the length of a Julian year in days.
	DaysPerYear = 365.25

	// The J2000 epoch on the Unix time scale, used to borrow the standard
	// library's calendar arithmetic.
	j2000Unix = 946728000
)

var monthNames = [12]string{
	"JAN", "FEB", "MAR", "APR", "MAY", "JUN",
	"JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
}

// Calendar renders an epoch in the style ephemeris toolkits use, e.g.
// "2000 JAN 01 12:00:00.000", with millisecond precision.
func Calendar(et float64) string {
	sec := math.Floor(et)
	ms := int(math.Round((et - sec) * 1000))
	if ms == 1000 {
		sec++
		ms = 0
	}

	t := time.Unix(j2000Unix+int64(sec), 0).UTC()
	year, month, day := t.Date()
	hour, min, s := t.Clock()

	return fmt.Sprintf("%04d %s %02d %02d:%02d:%02d.%03d",
		year, monthNames[month-1], day, hour, min, s, ms)
}

// Julian converts an epoch to a Julian date.
func Julian(et float64) float64 {
	return J2000JD + et/SecondsPerDay
}

// Days converts a span of ephemeris seconds to days.
func Days(seconds float64) float64 {
	return seconds / SecondsPerDay
}

// Years converts a span of ephemeris seconds to Julian years.
func Years(seconds float64) float64 {
	return seconds / SecondsPerDay / DaysPerYear
}
