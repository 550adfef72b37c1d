package report

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/gutsergut/EphReader/lib/ephtime"
)

// An IntervalCount says how many bodies share one native interval length.
type IntervalCount struct {
	Days   float64
	Bodies int
}

// Stats summarises the native interval lengths across the bodies of a
// report.
type Stats struct {
	// Bodies is the number of bodies that had a decodable segment.
	Bodies int
	// MinDays, MaxDays and MedianDays describe the interval lengths, in
	// days.
	MinDays, MaxDays, MedianDays float64
	// Unique lists each distinct interval length in ascending order.
	Unique []IntervalCount
}

// Statistics computes interval statistics over a body list. The second
// return value is false when no body had a decodable segment, in which
// case there is nothing to summarise.
func Statistics(reports []BodyReport) (Stats, bool) {
	var days []float64
	counts := map[float64]int{}
	for i := range reports {
		if reports[i].Native == nil {
			continue
		}
		d := ephtime.Days(reports[i].Native.IntervalSeconds)
		days = append(days, d)
		counts[d]++
	}
	if len(days) == 0 {
		return Stats{}, false
	}

	sort.Float64s(days)
	s := Stats{
		Bodies:     len(days),
		MinDays:    floats.Min(days),
		MaxDays:    floats.Max(days),
		MedianDays: stat.Quantile(0.5, stat.Empirical, days, nil),
	}

	for d, n := range counts {
		s.Unique = append(s.Unique, IntervalCount{Days: d, Bodies: n})
	}
	sort.Slice(s.Unique, func(i, j int) bool {
		return s.Unique[i].Days < s.Unique[j].Days
	})

	return s, true
}

func writeStatistics(w io.Writer, s Stats) {
	fmt.Fprintf(w, "Interval statistics:\n")
	fmt.Fprintf(w, "  Bodies with Chebyshev data: %d\n", s.Bodies)
	fmt.Fprintf(w, "  Minimum: %.2f days (%.1f hours)\n",
		s.MinDays, s.MinDays*24)
	fmt.Fprintf(w, "  Maximum: %.2f days (%.1f hours)\n",
		s.MaxDays, s.MaxDays*24)
	fmt.Fprintf(w, "  Median: %.2f days\n", s.MedianDays)
	fmt.Fprintf(w, "  Unique interval lengths: %d\n", len(s.Unique))
	for _, u := range s.Unique {
		fmt.Fprintf(w, "    %.2f days: %d bodies\n", u.Days, u.Bodies)
	}
	fmt.Fprintln(w)
}
