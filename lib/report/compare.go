package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gutsergut/EphReader/lib/bodies"
	"github.com/gutsergut/EphReader/lib/ephtime"
	"github.com/gutsergut/EphReader/lib/spk"
)

// A FileReport is the whole analysis of one kernel: the names from its
// file record and the per-body reports. Err is non-nil when the file
// could not be analysed at all.
type FileReport struct {
	FileName string
	// Internal is the kernel's internal name, empty when it has none.
	Internal string
	// Total counts the bodies in the file, before any selection.
	Total   int
	Reports []BodyReport
	Err     error
}

// Compare analyses each kernel and writes every readable kernel's
// inventory followed by a matrix of body availability and native interval
// lengths across all of them. A kernel that cannot be opened becomes an
// unreadable column instead of aborting the comparison; the returned
// error is only non-nil when every kernel failed.
func (r *Reporter) Compare(w io.Writer, fileNames []string) error {
	if len(fileNames) == 0 {
		return fmt.Errorf("There are no kernels to compare.")
	}

	files := make([]FileReport, len(fileNames))
	failures := 0
	for i, fileName := range fileNames {
		files[i] = r.compareFile(fileName)
		if files[i].Err != nil {
			failures++
			r.sugar.Warnw("kernel dropped from comparison",
				"file", fileName, "error", files[i].Err)
		}
	}

	if failures == len(files) {
		return fmt.Errorf("none of the %d kernels could be analysed, "+
			"last failure: %w", len(files), files[len(files)-1].Err)
	}

	for i := range files {
		if files[i].Err == nil {
			writeFileReport(w, files[i], r.opt.Stats)
		}
	}
	writeComparison(w, files)
	return nil
}

func (r *Reporter) compareFile(fileName string) FileReport {
	k, err := spk.Open(fileName, r.opt.Limits)
	if err != nil {
		return FileReport{FileName: fileName, Err: err}
	}
	defer k.Close()

	return r.fileReport(k)
}

// writeComparison renders the matrix: one row per body seen anywhere, one
// column per kernel, each cell the body's native interval in that kernel.
func writeComparison(w io.Writer, files []FileReport) {
	writeBanner(w, "Cross-file comparison")
	fmt.Fprintln(w)

	byID := make([]map[int]*BodyReport, len(files))
	var ids []int
	seen := map[int]bool{}
	for i := range files {
		byID[i] = map[int]*BodyReport{}
		for j := range files[i].Reports {
			br := &files[i].Reports[j]
			byID[i][br.ID] = br
			if !seen[br.ID] {
				seen[br.ID] = true
				ids = append(ids, br.ID)
			}
		}
	}
	sort.Ints(ids)

	fmt.Fprintf(w, "%-36s", "Body")
	for _, fr := range files {
		fmt.Fprintf(w, " %14s", filepath.Base(fr.FileName))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 36+15*len(files)))

	for _, id := range ids {
		fmt.Fprintf(w, "%-36s", fmt.Sprintf("%d %s", id, bodies.Name(id)))
		for i := range files {
			fmt.Fprintf(w, " %14s", cell(files[i], byID[i][id]))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\nCompared %d bodies across %d files.\n\n", len(ids),
		len(files))
}

// cell renders one matrix entry.
func cell(fr FileReport, br *BodyReport) string {
	switch {
	case fr.Err != nil:
		return "unreadable"
	case br == nil:
		return "N/A"
	case errors.Is(br.Err, spk.ErrNoSegment):
		return "N/A"
	case br.Native != nil:
		return fmt.Sprintf("%.2fd", ephtime.Days(br.Native.IntervalSeconds))
	case len(br.Windows) > 0:
		return "present"
	default:
		return "error"
	}
}
