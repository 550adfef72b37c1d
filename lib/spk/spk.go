/*package spk interprets an open DAF as an SPK planetary ephemeris kernel.
The package answers the questions a diagnostic tool asks of a kernel: which
bodies it carries, over which time windows, which segment serves a given
epoch, and how a segment's Chebyshev data is laid out. It never evaluates
the polynomials themselves.

All epochs are ephemeris time: TDB seconds past the J2000 epoch, exactly as
they are stored in the file.
*/
package spk

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gutsergut/EphReader/lib/daf"
)

// The summary shape every SPK file uses: two doubles (the start and stop
// epochs) and six integers (target, center, frame, data type, and the
// begin and end addresses of the segment data).
const (
	spkND = 2
	spkNI = 6
)

var (
	// ErrNoSegment means a body has no segment in the kernel at all, or
	// none covering the requested epoch.
	ErrNoSegment = errors.New("no segment for body")
	// ErrUnsupportedType means a segment stores its ephemeris in a data
	// type this package cannot decode.
	ErrUnsupportedType = errors.New("unsupported SPK data type")
	// ErrTooManyBodies means enumerating the kernel hit the configured
	// body limit before the segment list was exhausted.
	ErrTooManyBodies = errors.New("too many distinct bodies")
	// ErrTooManyIntervals means a coverage or interval walk hit the
	// configured interval limit.
	ErrTooManyIntervals = errors.New("too many intervals")
)

// Limits bounds how much work a single kernel is allowed to cause. The
// limits exist so that a corrupted or adversarial file fails with a clear
// error instead of exhausting memory.
type Limits struct {
	// MaxBodies bounds the number of distinct target bodies.
	MaxBodies int
	// MaxIntervals bounds coverage windows per body and sub-record walks
	// per segment.
	MaxIntervals int
}

// DefaultLimits returns the limits used by the command line tools. They
// are far above anything a real ephemeris produces.
func DefaultLimits() Limits {
	return Limits{MaxBodies: 1000, MaxIntervals: 1000000}
}

// A Segment is the decoded descriptor of one SPK segment: a stretch of
// ephemeris data for one target body relative to one center, valid over
// [StartET, EndET]. Begin and End are the doubleword addresses of the
// segment's data within the file.
type Segment struct {
	Name           string
	Target, Center int
	Frame, Type    int
	StartET, EndET float64
	Begin, End     int
}

// A Window is a closed time span [Start, End] in ephemeris seconds.
type Window struct {
	Start, End float64
}

// Seconds returns the length of the window.
func (w Window) Seconds() float64 { return w.End - w.Start }

// A Kernel is an SPK file whose segment descriptors have been loaded. The
// descriptor list is read once at open time; segment data is read lazily.
type Kernel struct {
	f    *daf.File
	lim  Limits
	segs []Segment
}

// Open opens the named SPK file. It accepts anything daf.Open accepts,
// including zstandard-compressed kernels.
func Open(fileName string, lim Limits) (*Kernel, error) {
	f, err := daf.Open(fileName)
	if err != nil {
		return nil, err
	}
	k, err := FromFile(f, lim)
	if err != nil {
		f.Close()
		return nil, err
	}
	return k, nil
}

// FromFile interprets an already-open DAF as an SPK kernel and loads its
// segment descriptors.
func FromFile(f *daf.File, lim Limits) (*Kernel, error) {
	if f.ND() != spkND || f.NI() != spkNI {
		return nil, fmt.Errorf("%w: the file %s has summary shape (%d, %d) "+
			"instead of the (%d, %d) an SPK kernel would have.",
			daf.ErrFileFormat, f.FileName(), f.ND(), f.NI(), spkND, spkNI)
	}

	sums, err := f.Summaries()
	if err != nil {
		return nil, err
	}

	segs := make([]Segment, len(sums))
	for i, s := range sums {
		segs[i] = Segment{
			Name:    s.Name,
			StartET: s.D[0],
			EndET:   s.D[1],
			Target:  int(s.I[0]),
			Center:  int(s.I[1]),
			Frame:   int(s.I[2]),
			Type:    int(s.I[3]),
			Begin:   int(s.I[4]),
			End:     int(s.I[5]),
		}
		if segs[i].Begin < 1 || segs[i].End < segs[i].Begin {
			return nil, fmt.Errorf("%w: segment %d of %s spans addresses "+
				"%d - %d.", daf.ErrFileFormat, i, f.FileName(),
				segs[i].Begin, segs[i].End)
		}
	}

	return &Kernel{f: f, lim: lim, segs: segs}, nil
}

// Close closes the underlying file.
func (k *Kernel) Close() error { return k.f.Close() }

// FileName returns the path the kernel was opened from.
func (k *Kernel) FileName() string { return k.f.FileName() }

// Internal returns the internal file name stored in the kernel.
func (k *Kernel) Internal() string { return k.f.Internal() }

// Segments returns every segment descriptor in file order. The returned
// slice is shared, not copied.
func (k *Kernel) Segments() []Segment { return k.segs }

// Bodies returns the distinct target bodies in the kernel, in the order
// their first segments appear in the file.
func (k *Kernel) Bodies() ([]int, error) {
	seen := map[int]bool{}
	var ids []int
	for _, seg := range k.segs {
		if seen[seg.Target] {
			continue
		}
		seen[seg.Target] = true
		ids = append(ids, seg.Target)
		if len(ids) > k.lim.MaxBodies {
			return nil, fmt.Errorf("%w: the file %s contains more than %d "+
				"distinct bodies.", ErrTooManyBodies, k.FileName(),
				k.lim.MaxBodies)
		}
	}
	return ids, nil
}

// Coverage returns the time windows over which the kernel can produce
// states for the given body, as a sorted list of disjoint windows.
// Overlapping and abutting segments are merged.
func (k *Kernel) Coverage(body int) ([]Window, error) {
	var wins []Window
	for _, seg := range k.segs {
		if seg.Target != body {
			continue
		}
		wins = append(wins, Window{seg.StartET, seg.EndET})
		if len(wins) > k.lim.MaxIntervals {
			return nil, fmt.Errorf("%w: body %d in %s has more than %d "+
				"segments.", ErrTooManyIntervals, body, k.FileName(),
				k.lim.MaxIntervals)
		}
	}
	if len(wins) == 0 {
		return nil, fmt.Errorf("%w: body %d does not appear in %s.",
			ErrNoSegment, body, k.FileName())
	}

	sort.Slice(wins, func(i, j int) bool {
		if wins[i].Start != wins[j].Start {
			return wins[i].Start < wins[j].Start
		}
		return wins[i].End < wins[j].End
	})

	merged := wins[:1]
	for _, w := range wins[1:] {
		last := &merged[len(merged)-1]
		if w.Start <= last.End {
			if w.End > last.End {
				last.End = w.End
			}
		} else {
			merged = append(merged, w)
		}
	}
	return merged, nil
}

// SegmentFor returns the segment that should serve the given body at the
// given epoch. When several segments cover the epoch, the one latest in
// the file wins, matching the precedence readers give to newer data.
func (k *Kernel) SegmentFor(body int, et float64) (Segment, error) {
	for i := len(k.segs) - 1; i >= 0; i-- {
		seg := k.segs[i]
		if seg.Target == body && seg.StartET <= et && et <= seg.EndET {
			return seg, nil
		}
	}
	return Segment{}, fmt.Errorf("%w: body %d has no segment covering "+
		"epoch %g in %s.", ErrNoSegment, body, et, k.FileName())
}
