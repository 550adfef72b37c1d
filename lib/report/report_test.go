package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gutsergut/EphReader/lib/daf"
	"github.com/gutsergut/EphReader/lib/spk"
)

// segment builds a FakeSegment with the SPK summary shape.
func segment(target, typ int, start, end float64, data []float64) daf.FakeSegment {
	return daf.FakeSegment{
		Name: "TEST SEGMENT",
		D:    []float64{start, end},
		I:    []int32{int32(target), 0, 1, int32(typ), 0, 0},
		Data: data,
	}
}

// inspectOutput runs InspectKernel over an in-memory kernel and returns
// what it printed.
func inspectOutput(t *testing.T, opt Options, segs ...daf.FakeSegment) string {
	t.Helper()

	lim := opt.Limits
	if lim == (spk.Limits{}) {
		lim = spk.DefaultLimits()
	}

	r, size := (&daf.FakeKernel{Internal: "TEST EPHEMERIS", Segments: segs}).Reader()
	f, err := daf.NewFile(r, size, "test.bsp")
	require.NoError(t, err)
	k, err := spk.FromFile(f, lim)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, New(zap.NewNop(), opt).InspectKernel(buf, k))
	return buf.String()
}

// eightDays is a native interval the DE kernels really use for Mercury.
const eightDays = 8 * 86400.0

func TestInspectReport(t *testing.T) {
	// 100 eight-day intervals with 14 coefficients per component.
	out := inspectOutput(t, Options{},
		segment(1, 2, 0, 100*eightDays, spk.FakeType2Data(0, eightDays, 14, 100)),
	)

	expected := []string{
		"Analyzing: test.bsp",
		"Internal name: TEST EPHEMERIS",
		"Found 1 bodies in file",
		"Body 1: Mercury",
		"  Coverage: 2000 JAN 01 12:00:00.000 to 2002 MAR 11 12:00:00.000",
		"  Duration: 2.19 years",
		"  Native interval: 8.00 days (691200 seconds)",
		"  Chebyshev coefficients per component: 14",
		"  Polynomial degree: 13",
		"  Estimated intervals: 100",
		"Analysis complete.",
	}
	for i := range expected {
		if !strings.Contains(out, expected[i]) {
			t.Errorf("%d) Expected the report to contain '%s'. Full "+
				"report:\n%s", i, expected[i], out)
		}
	}
}

func TestInspectContinuesPastBadBody(t *testing.T) {
	out := inspectOutput(t, Options{},
		segment(1, 2, 0, 10*eightDays, spk.FakeType2Data(0, eightDays, 8, 10)),
		segment(5, 21, 0, 10*eightDays, spk.FakeType2Data(0, eightDays, 8, 10)),
		segment(9, 2, 0, 10*eightDays, spk.FakeType2Data(0, eightDays, 8, 10)),
	)

	jupiter := strings.Index(out, "Body 5: Jupiter")
	pluto := strings.Index(out, "Body 9: Pluto")
	if jupiter == -1 {
		t.Fatalf("Expected a report entry for body 5. Full report:\n%s", out)
	}
	if !strings.Contains(out, "data type 21") {
		t.Errorf("Expected the body 5 entry to name the unsupported type. " +
			"Full report:\n" + out)
	}
	if pluto == -1 || pluto < jupiter {
		t.Errorf("Expected the analysis to continue past body 5 and "+
			"report body 9. Full report:\n%s", out)
	}
	if !strings.Contains(out, "Analysis complete.") {
		t.Errorf("Expected the analysis to run to completion.")
	}
}

func TestInspectSelection(t *testing.T) {
	out := inspectOutput(t, Options{Bodies: []int{1, 844}},
		segment(1, 2, 0, 10*eightDays, spk.FakeType2Data(0, eightDays, 8, 10)),
		segment(301, 2, 0, 10*eightDays, spk.FakeType2Data(0, eightDays, 8, 10)),
	)

	if !strings.Contains(out, "Found 2 bodies in file") {
		t.Errorf("Expected the file's own body count. Full report:\n%s", out)
	}
	if !strings.Contains(out, "Body 1: Mercury") {
		t.Errorf("Expected a report entry for body 1.")
	}
	if strings.Contains(out, "Body 301") {
		t.Errorf("Expected body 301 to be filtered out.")
	}

	// A selected body that is not in the file is reported, not fatal.
	missing := strings.Index(out, "Body 844: Body 844")
	noCoverage := strings.Index(out, "  No coverage")
	if missing == -1 || noCoverage < missing {
		t.Errorf("Expected body 844 to be reported with no coverage. "+
			"Full report:\n%s", out)
	}
}

func TestInspectExact(t *testing.T) {
	out := inspectOutput(t, Options{Exact: true},
		segment(1, 2, 0, 100*eightDays, spk.FakeType2Data(0, eightDays, 8, 100)),
	)
	if !strings.Contains(out, "  Intervals: 100 (exact)") {
		t.Errorf("Expected an exact interval count. Full report:\n%s", out)
	}
	if strings.Contains(out, "Estimated intervals") {
		t.Errorf("Expected no estimate when the exact count is known.")
	}

	// Two intervals of different lengths: one day, then two days.
	data := []float64{
		0, 86400, 2, 0, 0, 0, 0, 0, 0,
		86400, 259200, 2, 0, 0, 0, 0, 0, 0,
	}
	out = inspectOutput(t, Options{Exact: true},
		segment(1, 2, 0, 259200, data),
	)
	if !strings.Contains(out, "  Intervals: 2 (exact)") {
		t.Errorf("Expected 2 exact intervals. Full report:\n%s", out)
	}
	if !strings.Contains(out, "  Interval lengths: 1.00 to 2.00 days") {
		t.Errorf("Expected the varying interval lengths to be reported. "+
			"Full report:\n%s", out)
	}
}

func TestInspectStats(t *testing.T) {
	out := inspectOutput(t, Options{Stats: true},
		segment(1, 2, 0, 10*eightDays, spk.FakeType2Data(0, eightDays, 8, 10)),
		segment(2, 2, 0, 10*eightDays, spk.FakeType2Data(0, eightDays, 8, 10)),
		segment(301, 2, 0, 20*86400, spk.FakeType2Data(0, 4*86400, 8, 5)),
	)

	expected := []string{
		"Interval statistics:",
		"  Bodies with Chebyshev data: 3",
		"  Minimum: 4.00 days (96.0 hours)",
		"  Maximum: 8.00 days (192.0 hours)",
		"  Median: 8.00 days",
		"  Unique interval lengths: 2",
		"    4.00 days: 1 bodies",
		"    8.00 days: 2 bodies",
	}
	for i := range expected {
		if !strings.Contains(out, expected[i]) {
			t.Errorf("%d) Expected the report to contain '%s'. Full "+
				"report:\n%s", i, expected[i], out)
		}
	}
}

func TestStatistics(t *testing.T) {
	native := func(days float64) *spk.Type2Info {
		return &spk.Type2Info{IntervalSeconds: days * 86400}
	}
	reports := []BodyReport{
		{ID: 1, Native: native(4)},
		{ID: 2, Native: native(8)},
		{ID: 3, Native: native(8)},
		{ID: 4}, // no decodable segment
	}

	s, ok := Statistics(reports)
	require.True(t, ok)

	if s.Bodies != 3 {
		t.Errorf("Expected 3 bodies with data, got %d.", s.Bodies)
	}
	if s.MinDays != 4 || s.MaxDays != 8 {
		t.Errorf("Expected interval lengths spanning 4 - 8 days, got "+
			"%g - %g.", s.MinDays, s.MaxDays)
	}
	if s.MedianDays != 8 {
		t.Errorf("Expected a median of 8 days, got %g.", s.MedianDays)
	}

	expected := []IntervalCount{{4, 1}, {8, 2}}
	require.Equal(t, expected, s.Unique)

	if _, ok := Statistics([]BodyReport{{ID: 1}}); ok {
		t.Errorf("Expected no statistics when no body has data.")
	}
}
