/*package report produces the human-readable analysis of SPK kernels that
the command line tool prints. The package pulls the other libraries
together: it opens kernels, enumerates their bodies, queries coverage and
native Chebyshev layout for each one, and renders the answers as the plain
fixed-format text blocks operators paste into tickets.

A failure on one body never aborts the analysis. The failure is recorded
in that body's report entry and rendering moves on to the next body; only
a failure to open a kernel or enumerate its bodies is fatal.
*/
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/gutsergut/EphReader/lib/bodies"
	"github.com/gutsergut/EphReader/lib/ephtime"
	"github.com/gutsergut/EphReader/lib/spk"
)

// Options configures a Reporter.
type Options struct {
	// Limits bounds the per-kernel work. The zero value means
	// spk.DefaultLimits().
	Limits spk.Limits
	// Bodies restricts the analysis to the given identifiers. Empty means
	// every body in the kernel. Identifiers that are not in the kernel get
	// a "No coverage" entry instead of breaking the run.
	Bodies []int
	// Exact walks every sub-record of each segment to count intervals
	// exactly instead of estimating from the first sub-record.
	Exact bool
	// Stats appends interval statistics across all reported bodies.
	Stats bool
}

// A Reporter analyses kernels with one fixed set of options. Diagnostics
// go to the logger; the report itself goes to the Writer handed to each
// call.
type Reporter struct {
	opt   Options
	sugar *zap.SugaredLogger
}

// New creates a Reporter. logger must not be nil; pass zap.NewNop() to
// discard diagnostics.
func New(logger *zap.Logger, opt Options) *Reporter {
	if opt.Limits == (spk.Limits{}) {
		opt.Limits = spk.DefaultLimits()
	}
	return &Reporter{opt: opt, sugar: logger.Sugar()}
}

// A BodyReport is everything the analysis learned about one body. Err is
// non-nil when some step failed; the fields filled in before the failure
// keep their values so partial answers still get printed.
type BodyReport struct {
	ID   int
	Name string
	// Windows is the body's coverage, sorted and disjoint.
	Windows []spk.Window
	// Native is the layout of the segment serving the start of coverage.
	Native *spk.Type2Info
	// Walk holds exact interval counts, when the Exact option is on.
	Walk *spk.IntervalWalk
	Err  error
}

// Inspect analyses one kernel and writes the report. The returned error
// is nil unless the kernel could not be opened or enumerated at all.
func (r *Reporter) Inspect(w io.Writer, fileName string) error {
	k, err := spk.Open(fileName, r.opt.Limits)
	if err != nil {
		return err
	}
	defer k.Close()

	return r.InspectKernel(w, k)
}

// InspectKernel is Inspect for an already-open kernel.
func (r *Reporter) InspectKernel(w io.Writer, k *spk.Kernel) error {
	fr := r.fileReport(k)
	if fr.Err != nil {
		return fr.Err
	}
	writeFileReport(w, fr, r.opt.Stats)
	return nil
}

// fileReport analyses every body of an open kernel. Inspection and
// comparison share it, so a kernel reads the same either way.
func (r *Reporter) fileReport(k *spk.Kernel) FileReport {
	fr := FileReport{FileName: k.FileName(), Internal: k.Internal()}

	ids, err := k.Bodies()
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Total = len(ids)

	if len(r.opt.Bodies) > 0 {
		ids = r.opt.Bodies
	}
	for _, id := range ids {
		fr.Reports = append(fr.Reports, r.bodyReport(k, id))
	}
	return fr
}

// bodyReport runs the per-body queries, stopping at the first failure.
func (r *Reporter) bodyReport(k *spk.Kernel, id int) BodyReport {
	br := BodyReport{ID: id, Name: bodies.Name(id)}

	wins, err := k.Coverage(id)
	if err != nil {
		br.Err = fmt.Errorf("could not get coverage: %w", err)
		r.sugar.Debugw("coverage query failed", "body", id, "error", err)
		return br
	}
	br.Windows = wins

	seg, err := k.SegmentFor(id, wins[0].Start)
	if err != nil {
		br.Err = fmt.Errorf("could not locate a segment: %w", err)
		r.sugar.Debugw("segment lookup failed", "body", id, "error", err)
		return br
	}

	info, err := k.NativeInterval(seg)
	if err != nil {
		br.Err = fmt.Errorf("could not read the segment layout: %w", err)
		r.sugar.Debugw("interval decode failed", "body", id,
			"segment", seg.Name, "type", seg.Type, "error", err)
		return br
	}
	br.Native = &info

	if r.opt.Exact {
		walk, err := k.WalkIntervals(seg)
		if err != nil {
			// The estimate from the first sub-record still stands, so an
			// exact walk failure downgrades the answer instead of losing
			// the body.
			r.sugar.Warnw("exact interval walk failed", "body", id,
				"segment", seg.Name, "error", err)
		} else {
			br.Walk = &walk
		}
	}

	return br
}

// writeFileReport renders one kernel's inventory: the banner, each body's
// block, and the interval statistics when they were asked for.
func writeFileReport(w io.Writer, fr FileReport, stats bool) {
	writeBanner(w, "Analyzing: "+fr.FileName)
	if fr.Internal != "" {
		fmt.Fprintf(w, "\nInternal name: %s", fr.Internal)
	}
	fmt.Fprintf(w, "\nFound %d bodies in file\n\n", fr.Total)

	for i := range fr.Reports {
		writeBody(w, fr.Reports[i])
	}

	if stats {
		if s, ok := Statistics(fr.Reports); ok {
			writeStatistics(w, s)
		}
	}

	fmt.Fprintf(w, "Analysis complete.\n")
}

// writeBody renders one body's block of the report.
func writeBody(w io.Writer, br BodyReport) {
	fmt.Fprintf(w, "Body %d: %s\n", br.ID, br.Name)

	if len(br.Windows) > 0 {
		first := br.Windows[0]
		fmt.Fprintf(w, "  Coverage: %s to %s\n",
			ephtime.Calendar(first.Start), ephtime.Calendar(first.End))
		fmt.Fprintf(w, "  Duration: %.2f years\n",
			ephtime.Years(first.Seconds()))
		if len(br.Windows) > 1 {
			fmt.Fprintf(w, "  Additional coverage windows: %d\n",
				len(br.Windows)-1)
		}
	}

	switch {
	case errors.Is(br.Err, spk.ErrNoSegment):
		fmt.Fprintf(w, "  No coverage\n")
	case br.Err != nil:
		fmt.Fprintf(w, "  Error: %v\n", br.Err)
	case br.Native != nil:
		info := br.Native
		fmt.Fprintf(w, "  Native interval: %.2f days (%.0f seconds)\n",
			ephtime.Days(info.IntervalSeconds), info.IntervalSeconds)
		fmt.Fprintf(w, "  Chebyshev coefficients per component: %d\n",
			info.NumCoeffs)
		fmt.Fprintf(w, "  Polynomial degree: %d\n", info.Degree())

		if br.Walk != nil {
			fmt.Fprintf(w, "  Intervals: %d (exact)\n", br.Walk.Count)
			if !br.Walk.Uniform() {
				fmt.Fprintf(w, "  Interval lengths: %.2f to %.2f days\n",
					ephtime.Days(br.Walk.MinSeconds),
					ephtime.Days(br.Walk.MaxSeconds))
			}
		} else {
			fmt.Fprintf(w, "  Estimated intervals: %d\n",
				info.EstimateIntervals(br.Windows[0]))
		}
	}

	fmt.Fprintln(w)
}

func writeBanner(w io.Writer, title string) {
	line := strings.Repeat("=", 80)
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", line, title, line)
}
