package spk

import (
	"fmt"
	"math"

	"github.com/gutsergut/EphReader/lib/daf"
)

// TypeChebyshevPosition is the data type tag of segments holding Chebyshev
// polynomial coefficients for position. It is the only type this package
// decodes; planetary ephemerides are distributed almost exclusively in it.
const TypeChebyshevPosition = 2

// Sanity bound on the coefficient count read out of a sub-record header. A
// corrupted header can hold any bit pattern, and real ephemerides never
// get anywhere near this degree.
const maxChebyshevCoeffs = 1024

// Type2Info describes the native layout of a Chebyshev position segment,
// read from its first sub-record. Each sub-record covers one time interval
// and holds NumCoeffs coefficients for each of the three position
// components, so its total size is 3 + 3*NumCoeffs doubles.
type Type2Info struct {
	// IntervalStart and IntervalEnd are the epochs of the first
	// sub-record's interval.
	IntervalStart, IntervalEnd float64
	// IntervalSeconds is the native interval length the file was built
	// with.
	IntervalSeconds float64
	// NumCoeffs is the number of Chebyshev coefficients per position
	// component.
	NumCoeffs int
	// RecordWords is the size of one sub-record in doubles.
	RecordWords int
}

// Degree returns the polynomial degree of the segment's Chebyshev
// expansions.
func (info Type2Info) Degree() int { return info.NumCoeffs - 1 }

// EstimateIntervals estimates how many native intervals it takes to span
// the window, assuming every sub-record uses the native interval length.
// The estimate comes from a single sub-record header; WalkIntervals gives
// the exact count.
func (info Type2Info) EstimateIntervals(w Window) int {
	if info.IntervalSeconds <= 0 || w.Seconds() <= 0 {
		return 0
	}
	return int(math.Floor(w.Seconds() / info.IntervalSeconds))
}

// NativeInterval reads the first sub-record header of a segment and
// returns the segment's native layout. Segments of any type other than
// Chebyshev position are rejected with ErrUnsupportedType.
func (k *Kernel) NativeInterval(seg Segment) (Type2Info, error) {
	if seg.Type != TypeChebyshevPosition {
		return Type2Info{}, fmt.Errorf("%w: segment '%s' for body %d in %s "+
			"has data type %d; only type %d (Chebyshev position) can be "+
			"decoded.", ErrUnsupportedType, seg.Name, seg.Target,
			k.FileName(), seg.Type, TypeChebyshevPosition)
	}
	if seg.End-seg.Begin+1 < 3 {
		return Type2Info{}, fmt.Errorf("%w: segment '%s' in %s spans %d "+
			"doubles, which is not enough for a sub-record header.",
			daf.ErrFileFormat, seg.Name, k.FileName(), seg.End-seg.Begin+1)
	}

	hd, err := k.f.ReadDoubles(seg.Begin, seg.Begin+2)
	if err != nil {
		return Type2Info{}, err
	}
	return k.subRecordInfo(seg, hd)
}

// subRecordInfo validates one sub-record header and converts it to a
// Type2Info.
func (k *Kernel) subRecordInfo(seg Segment, hd []float64) (Type2Info, error) {
	start, end, rawCount := hd[0], hd[1], hd[2]

	if !(end-start > 0) {
		return Type2Info{}, fmt.Errorf("%w: a sub-record of segment '%s' "+
			"in %s claims the interval %g - %g, whose length is not "+
			"positive.", daf.ErrFileFormat, seg.Name, k.FileName(),
			start, end)
	}

	n := int(rawCount)
	if float64(n) != rawCount || n < 1 || n > maxChebyshevCoeffs {
		return Type2Info{}, fmt.Errorf("%w: a sub-record of segment '%s' "+
			"in %s claims %g Chebyshev coefficients per component.",
			daf.ErrFileFormat, seg.Name, k.FileName(), rawCount)
	}

	words := 3 + 3*n
	if words > seg.End-seg.Begin+1 {
		return Type2Info{}, fmt.Errorf("%w: a sub-record of segment '%s' "+
			"in %s needs %d doubles, but the whole segment only spans %d.",
			daf.ErrFileFormat, seg.Name, k.FileName(), words,
			seg.End-seg.Begin+1)
	}

	return Type2Info{
		IntervalStart:   start,
		IntervalEnd:     end,
		IntervalSeconds: end - start,
		NumCoeffs:       n,
		RecordWords:     words,
	}, nil
}

// An IntervalWalk is the result of reading every sub-record header in a
// segment.
type IntervalWalk struct {
	// Count is the exact number of sub-records.
	Count int
	// MinSeconds and MaxSeconds bound the interval lengths seen.
	MinSeconds, MaxSeconds float64
}

// Uniform reports whether every sub-record used the same interval length.
func (iw IntervalWalk) Uniform() bool { return iw.MinSeconds == iw.MaxSeconds }

// WalkIntervals visits every sub-record header in the segment and returns
// the exact interval count and the range of interval lengths. It checks
// along the way that the sub-records share one coefficient count and tile
// the segment's time span without gaps, which is what every correctly
// written kernel does.
func (k *Kernel) WalkIntervals(seg Segment) (IntervalWalk, error) {
	info, err := k.NativeInterval(seg)
	if err != nil {
		return IntervalWalk{}, err
	}

	n := (seg.End - seg.Begin + 1) / info.RecordWords
	if n > k.lim.MaxIntervals {
		return IntervalWalk{}, fmt.Errorf("%w: segment '%s' in %s holds %d "+
			"sub-records, more than the configured limit of %d.",
			ErrTooManyIntervals, seg.Name, k.FileName(), n,
			k.lim.MaxIntervals)
	}

	walk := IntervalWalk{Count: n}
	prevEnd := 0.0
	for i := 0; i < n; i++ {
		addr := seg.Begin + i*info.RecordWords
		hd, err := k.f.ReadDoubles(addr, addr+2)
		if err != nil {
			return IntervalWalk{}, err
		}
		sub, err := k.subRecordInfo(seg, hd)
		if err != nil {
			return IntervalWalk{}, err
		}

		if sub.NumCoeffs != info.NumCoeffs {
			return IntervalWalk{}, fmt.Errorf("%w: segment '%s' in %s "+
				"changes from %d to %d coefficients at sub-record %d.",
				daf.ErrFileFormat, seg.Name, k.FileName(), info.NumCoeffs,
				sub.NumCoeffs, i)
		}
		if i > 0 && sub.IntervalStart != prevEnd {
			return IntervalWalk{}, fmt.Errorf("%w: segment '%s' in %s "+
				"jumps from epoch %g to %g at sub-record %d instead of "+
				"tiling its span.", daf.ErrFileFormat, seg.Name,
				k.FileName(), prevEnd, sub.IntervalStart, i)
		}
		prevEnd = sub.IntervalEnd

		if i == 0 || sub.IntervalSeconds < walk.MinSeconds {
			walk.MinSeconds = sub.IntervalSeconds
		}
		if i == 0 || sub.IntervalSeconds > walk.MaxSeconds {
			walk.MaxSeconds = sub.IntervalSeconds
		}
	}

	return walk, nil
}
