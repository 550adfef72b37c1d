package spk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gutsergut/EphReader/lib/daf"
)

func TestNativeInterval(t *testing.T) {
	// A segment built the way DE ephemerides store the Moon: 1200 second
	// intervals with 14 coefficients per component.
	k := testKernel(t, DefaultLimits(),
		spkSegment(301, 2, 0, 12000, FakeType2Data(0, 1200, 14, 10)),
	)
	seg, err := k.SegmentFor(301, 0)
	require.NoError(t, err)

	info, err := k.NativeInterval(seg)
	require.NoError(t, err)

	if info.IntervalSeconds != 1200 {
		t.Errorf("Expected a native interval of 1200 seconds, got %g.",
			info.IntervalSeconds)
	}
	if info.IntervalStart != 0 || info.IntervalEnd != 1200 {
		t.Errorf("Expected the first interval to be 0 - 1200, got %g - %g.",
			info.IntervalStart, info.IntervalEnd)
	}
	if info.NumCoeffs != 14 {
		t.Errorf("Expected 14 coefficients per component, got %d.",
			info.NumCoeffs)
	}
	if info.Degree() != 13 {
		t.Errorf("Expected polynomial degree 13, got %d.", info.Degree())
	}
	if info.RecordWords != 3+3*14 {
		t.Errorf("Expected sub-records of %d doubles, got %d.",
			3+3*14, info.RecordWords)
	}
}

func TestNativeIntervalUnsupportedType(t *testing.T) {
	k := testKernel(t, DefaultLimits(),
		spkSegment(301, 13, 0, 12000, FakeType2Data(0, 1200, 14, 10)),
	)
	seg, err := k.SegmentFor(301, 0)
	require.NoError(t, err)

	_, err = k.NativeInterval(seg)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Expected a type 13 segment to be rejected, got: %v", err)
	}
}

func TestNativeIntervalMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []float64
	}{
		{"segment shorter than a header", []float64{0, 1200}},
		{"interval of zero length", append([]float64{100, 100, 2},
			make([]float64, 6)...)},
		{"interval of negative length", append([]float64{100, 50, 2},
			make([]float64, 6)...)},
		{"fractional coefficient count", append([]float64{0, 1200, 2.5},
			make([]float64, 8)...)},
		{"zero coefficient count", append([]float64{0, 1200, 0},
			make([]float64, 8)...)},
		{"negative coefficient count", append([]float64{0, 1200, -4},
			make([]float64, 8)...)},
		{"absurd coefficient count", append([]float64{0, 1200, 1e9},
			make([]float64, 8)...)},
		{"sub-record past the end of the segment",
			[]float64{0, 1200, 50, 1, 2, 3}},
	}

	for i := range tests {
		k := testKernel(t, DefaultLimits(),
			spkSegment(301, 2, 0, 12000, tests[i].data),
		)
		seg, err := k.SegmentFor(301, 0)
		require.NoError(t, err)

		_, err = k.NativeInterval(seg)
		if !errors.Is(err, daf.ErrFileFormat) {
			t.Errorf("%d) Expected '%s' to give a format error, got: %v",
				i, tests[i].name, err)
		}
	}
}

func TestEstimateIntervals(t *testing.T) {
	tests := []struct {
		intlen   float64
		window   Window
		expected int
	}{
		// One year of coverage at 20 minute intervals.
		{1200, Window{0, 31536000}, 26280},
		// Exact multiples and a remainder that gets floored away.
		{100, Window{0, 1000}, 10},
		{100, Window{0, 1050}, 10},
		{100, Window{0, 99}, 0},
		// Degenerate windows estimate zero intervals.
		{100, Window{50, 50}, 0},
		{100, Window{100, 50}, 0},
	}

	for i := range tests {
		info := Type2Info{IntervalSeconds: tests[i].intlen}
		n := info.EstimateIntervals(tests[i].window)
		if n != tests[i].expected {
			t.Errorf("%d) Expected %d intervals across %g - %g, got %d.",
				i, tests[i].expected, tests[i].window.Start,
				tests[i].window.End, n)
		}
	}
}

func TestWalkIntervals(t *testing.T) {
	// A year of 1200 second intervals, the same shape EstimateIntervals
	// is tested against. The walk has to agree with the estimate because
	// the intervals are uniform.
	k := testKernel(t, DefaultLimits(),
		spkSegment(1, 2, 0, 31536000, FakeType2Data(0, 1200, 4, 26280)),
	)
	seg, err := k.SegmentFor(1, 0)
	require.NoError(t, err)

	walk, err := k.WalkIntervals(seg)
	require.NoError(t, err)

	if walk.Count != 26280 {
		t.Errorf("Expected 26280 sub-records, got %d.", walk.Count)
	}
	if !walk.Uniform() {
		t.Errorf("Expected uniform intervals, got %g - %g seconds.",
			walk.MinSeconds, walk.MaxSeconds)
	}
	if walk.MinSeconds != 1200 {
		t.Errorf("Expected 1200 second intervals, got %g.", walk.MinSeconds)
	}
}

// subRecords builds segment data with one sub-record per header, each
// holding nCoef coefficients per component.
func subRecords(nCoef int, headers ...[2]float64) []float64 {
	var out []float64
	for _, hd := range headers {
		out = append(out, hd[0], hd[1], float64(nCoef))
		out = append(out, make([]float64, 3*nCoef)...)
	}
	return out
}

func TestWalkIntervalsVarying(t *testing.T) {
	data := subRecords(2, [2]float64{0, 10}, [2]float64{10, 40},
		[2]float64{40, 45})

	k := testKernel(t, DefaultLimits(), spkSegment(1, 2, 0, 45, data))
	seg, err := k.SegmentFor(1, 0)
	require.NoError(t, err)

	walk, err := k.WalkIntervals(seg)
	require.NoError(t, err)

	if walk.Count != 3 {
		t.Errorf("Expected 3 sub-records, got %d.", walk.Count)
	}
	if walk.Uniform() {
		t.Errorf("Expected varying intervals to be reported as varying.")
	}
	if walk.MinSeconds != 5 || walk.MaxSeconds != 30 {
		t.Errorf("Expected interval lengths spanning 5 - 30 seconds, got "+
			"%g - %g.", walk.MinSeconds, walk.MaxSeconds)
	}
}

func TestWalkIntervalsMalformed(t *testing.T) {
	gap := subRecords(2, [2]float64{0, 10}, [2]float64{20, 30})

	varyingCount := subRecords(2, [2]float64{0, 10})
	varyingCount = append(varyingCount, 10, 20, 3)
	varyingCount = append(varyingCount, make([]float64, 9)...)
	// Pad so the second sub-record still fits inside the segment span.
	varyingCount = append(varyingCount, make([]float64, 6)...)

	tests := []struct {
		name string
		data []float64
	}{
		{"gap between sub-records", gap},
		{"coefficient count changes between sub-records", varyingCount},
	}

	for i := range tests {
		k := testKernel(t, DefaultLimits(),
			spkSegment(1, 2, 0, 100, tests[i].data),
		)
		seg, err := k.SegmentFor(1, 0)
		require.NoError(t, err)

		_, err = k.WalkIntervals(seg)
		if !errors.Is(err, daf.ErrFileFormat) {
			t.Errorf("%d) Expected '%s' to give a format error, got: %v",
				i, tests[i].name, err)
		}
	}
}

func TestWalkIntervalsLimit(t *testing.T) {
	k := testKernel(t, Limits{MaxBodies: 10, MaxIntervals: 5},
		spkSegment(1, 2, 0, 120, FakeType2Data(0, 12, 2, 10)),
	)
	seg, err := k.SegmentFor(1, 0)
	require.NoError(t, err)

	_, err = k.WalkIntervals(seg)
	if !errors.Is(err, ErrTooManyIntervals) {
		t.Errorf("Expected 10 sub-records against a limit of 5 to fail, "+
			"got: %v", err)
	}
}
