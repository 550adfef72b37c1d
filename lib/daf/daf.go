/*package daf reads the record structure shared by NAIF double-precision
array files (DAF), the container format used by SPK planetary ephemerides.
The package only decodes: it walks the summary record chain, reports the
segment descriptors stored there, and reads runs of doubles out of the data
area. Interpreting those descriptors as ephemeris segments is left to the
spk package.

A DAF is a sequence of 1024-byte records. Record 1 is the file record and
holds the ID word, the summary shape (ND doubles and NI integers per
summary), the record numbers of the first and last summary records, the
first free address, and the binary format word. Summary records form a
doubly-linked chain, and each one is paired with a name record holding one
fixed-width name per summary. Everything else is data, addressed as 1-based
doubleword addresses: address a lives at byte offset (a-1)*8.
*/
package daf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/DataDog/zstd"
)

const (
	// RecordSize is the size of every DAF record in bytes.
	RecordSize = 1024
	// RecordWords is the number of doubleword addresses per record.
	RecordWords = RecordSize / 8

	idWordSize       = 8
	internalNameSize = 60

	// Offsets of the file record fields, in bytes from the start of the
	// file. These are fixed by the format, not by us.
	ndOffset     = 8
	niOffset     = 12
	nameOffset   = 16
	fwardOffset  = 76
	bwardOffset  = 80
	freeOffset   = 84
	formatOffset = 88

	littleFormatWord = "LTL-IEEE"
	bigFormatWord    = "BIG-IEEE"

	// maxDecompressedSize caps how much memory a compressed kernel may
	// inflate to. The largest kernels anyone distributes are around 3 GB,
	// so the cap only stops decompression bombs.
	maxDecompressedSize = int64(8) << 30
)

var (
	// ErrFileFormat is wrapped by every error caused by bytes that cannot
	// be a valid DAF, as opposed to errors caused by the host file system.
	ErrFileFormat = errors.New("malformed DAF file")
	// ErrRange is wrapped by every error caused by a read request outside
	// the file's data area.
	ErrRange = errors.New("address outside DAF data area")
)

// A Summary is one descriptor from the summary record chain: ND doubles,
// NI integers, and the name stored in the paired name record. The meaning
// of the components depends on the kernel type.
type Summary struct {
	Name string
	D    []float64
	I    []int32
}

// A File is an open double-precision array file. Files are strictly
// read-only. A File is not safe for concurrent use: reads seek the
// underlying file.
type File struct {
	r      io.ReadSeeker
	closer io.Closer
	order  binary.ByteOrder

	fileName string
	idWord   string
	internal string

	nd, ni             int
	fward, bward, free int
	summaryWords       int
	nameSize           int
	size               int64
}

// Open opens the named DAF and decodes its file record. Files ending in
// ".zst" are decompressed into memory first, so compressed kernels can be
// inspected without unpacking them on disk.
func Open(fileName string) (*File, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("The file %s does not exist or cannot be "+
			"accessed: %w", fileName, err)
	}

	if strings.HasSuffix(fileName, ".zst") {
		defer f.Close()

		zr := zstd.NewReader(f)
		defer zr.Close()

		raw, err := io.ReadAll(io.LimitReader(zr, maxDecompressedSize+1))
		if err != nil {
			return nil, fmt.Errorf("The file %s is not valid zstandard "+
				"data: %w", fileName, err)
		}
		if int64(len(raw)) > maxDecompressedSize {
			return nil, fmt.Errorf("The file %s decompresses to more than "+
				"%d bytes, which no real kernel does.",
				fileName, maxDecompressedSize)
		}
		return NewFile(bytes.NewReader(raw), int64(len(raw)), fileName)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("The file %s cannot be examined: %w",
			fileName, err)
	}

	daf, err := NewFile(f, info.Size(), fileName)
	if err != nil {
		f.Close()
		return nil, err
	}
	daf.closer = f
	return daf, nil
}

// NewFile decodes the file record of a DAF supplied as an arbitrary
// ReadSeeker of the given size. fileName is only used in error messages.
func NewFile(r io.ReadSeeker, size int64, fileName string) (*File, error) {
	if size < RecordSize {
		return nil, fmt.Errorf("%w: the file %s is %d bytes long, which is "+
			"not large enough to contain a DAF file record.",
			ErrFileFormat, fileName, size)
	}

	rec := make([]byte, RecordSize)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("The file %s cannot be read: %w", fileName, err)
	}
	if _, err := io.ReadFull(r, rec); err != nil {
		return nil, fmt.Errorf("The file %s cannot be read: %w", fileName, err)
	}

	idWord := string(rec[:idWordSize])
	if !strings.HasPrefix(idWord, "DAF/") {
		return nil, fmt.Errorf("%w: the file %s starts with the ID word "+
			"%q instead of a 'DAF/' architecture word, so it is not a "+
			"double-precision array file.", ErrFileFormat, fileName, idWord)
	}

	order, err := byteOrder(rec, fileName)
	if err != nil {
		return nil, err
	}

	f := &File{
		r:        r,
		order:    order,
		fileName: fileName,
		idWord:   strings.TrimRight(idWord, " "),
		internal: trimPadding(rec[nameOffset : nameOffset+internalNameSize]),
		nd:       int(int32(order.Uint32(rec[ndOffset:]))),
		ni:       int(int32(order.Uint32(rec[niOffset:]))),
		fward:    int(int32(order.Uint32(rec[fwardOffset:]))),
		bward:    int(int32(order.Uint32(rec[bwardOffset:]))),
		free:     int(int32(order.Uint32(rec[freeOffset:]))),
		size:     size,
	}

	if !plausibleShape(f.nd, f.ni) {
		return nil, fmt.Errorf("%w: the file %s claims summaries with %d "+
			"doubles and %d integers, which cannot fit in a single record.",
			ErrFileFormat, fileName, f.nd, f.ni)
	}
	f.summaryWords = f.nd + (f.ni+1)/2
	f.nameSize = 8 * f.summaryWords

	lastRecord := int(size / RecordSize)
	if f.fward < 2 || f.fward > lastRecord {
		return nil, fmt.Errorf("%w: the file %s points at record %d as its "+
			"first summary record, but the file only has records 1 - %d.",
			ErrFileFormat, fileName, f.fward, lastRecord)
	}
	if f.bward < f.fward || f.bward > lastRecord {
		return nil, fmt.Errorf("%w: the file %s points at record %d as its "+
			"last summary record, which is outside the range %d - %d.",
			ErrFileFormat, fileName, f.bward, f.fward, lastRecord)
	}
	if f.free < 1 {
		return nil, fmt.Errorf("%w: the file %s claims %d as its first "+
			"free address.", ErrFileFormat, fileName, f.free)
	}

	return f, nil
}

// byteOrder works out the byte order of the file. Well-formed files declare
// it in the binary format word, but files written by old toolkits leave
// that field blank, so we fall back to testing which order makes the
// summary shape plausible.
func byteOrder(rec []byte, fileName string) (binary.ByteOrder, error) {
	switch trimPadding(rec[formatOffset : formatOffset+idWordSize]) {
	case littleFormatWord:
		return binary.LittleEndian, nil
	case bigFormatWord:
		return binary.BigEndian, nil
	}

	ndL := int32(binary.LittleEndian.Uint32(rec[ndOffset:]))
	niL := int32(binary.LittleEndian.Uint32(rec[niOffset:]))
	if plausibleShape(int(ndL), int(niL)) {
		return binary.LittleEndian, nil
	}

	ndB := int32(binary.BigEndian.Uint32(rec[ndOffset:]))
	niB := int32(binary.BigEndian.Uint32(rec[niOffset:]))
	if plausibleShape(int(ndB), int(niB)) {
		return binary.BigEndian, nil
	}

	return nil, fmt.Errorf("%w: the file %s does not declare its binary "+
		"format and its summary shape is implausible in both byte orders.",
		ErrFileFormat, fileName)
}

// plausibleShape reports whether a (ND, NI) pair could describe real DAF
// summaries. A summary must contain at least one component and must fit in
// a single record alongside the three control words.
func plausibleShape(nd, ni int) bool {
	if nd < 0 || ni < 0 || nd+ni == 0 {
		return false
	}
	return nd+(ni+1)/2 <= RecordWords-3
}

func trimPadding(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}

// FileName returns the path this File was opened from.
func (f *File) FileName() string { return f.fileName }

// IDWord returns the architecture word, e.g. "DAF/SPK".
func (f *File) IDWord() string { return f.idWord }

// Internal returns the internal file name stored in the file record.
func (f *File) Internal() string { return f.internal }

// ND returns the number of doubles in each summary.
func (f *File) ND() int { return f.nd }

// NI returns the number of integers in each summary.
func (f *File) NI() int { return f.ni }

// ByteOrder returns the byte order the file is encoded in.
func (f *File) ByteOrder() binary.ByteOrder { return f.order }

// Close releases the underlying file, if any. Close is a no-op for Files
// backed by in-memory buffers and for Files that were already closed.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	c := f.closer
	f.closer = nil
	return c.Close()
}

// Summaries walks the summary record chain from front to back and returns
// every descriptor in the file, paired with its name. The walk is bounds-
// checked at each step so that a corrupted chain cannot send reads outside
// the file or loop forever.
func (f *File) Summaries() ([]Summary, error) {
	perRecord := (RecordWords - 3) / f.summaryWords
	visited := map[int]bool{}
	var sums []Summary

	for recNum := f.fward; recNum != 0; {
		if visited[recNum] {
			return nil, fmt.Errorf("%w: the summary chain in %s visits "+
				"record %d twice.", ErrFileFormat, f.fileName, recNum)
		}
		visited[recNum] = true

		rec, err := f.record(recNum)
		if err != nil {
			return nil, err
		}
		names, err := f.record(recNum + 1)
		if err != nil {
			return nil, err
		}

		next := int(f.float64At(rec, 0))
		nsum := int(f.float64At(rec, 16))
		if nsum < 0 || nsum > perRecord {
			return nil, fmt.Errorf("%w: summary record %d of %s claims %d "+
				"summaries, but a record can hold at most %d.",
				ErrFileFormat, recNum, f.fileName, nsum, perRecord)
		}

		for i := 0; i < nsum; i++ {
			sums = append(sums, f.summaryAt(rec, names, i))
		}

		if next != 0 && next < 2 {
			return nil, fmt.Errorf("%w: summary record %d of %s links to "+
				"record %d.", ErrFileFormat, recNum, f.fileName, next)
		}
		recNum = next
	}

	return sums, nil
}

// summaryAt decodes the i-th summary of a summary record. The doubles come
// first, then the integers, packed two per doubleword.
func (f *File) summaryAt(rec, names []byte, i int) Summary {
	base := 24 + i*f.summaryWords*8

	d := make([]float64, f.nd)
	for j := range d {
		d[j] = f.float64At(rec, base+8*j)
	}
	ints := make([]int32, f.ni)
	intBase := base + 8*f.nd
	for j := range ints {
		ints[j] = int32(f.order.Uint32(rec[intBase+4*j:]))
	}

	name := trimPadding(names[i*f.nameSize : (i+1)*f.nameSize])
	return Summary{Name: name, D: d, I: ints}
}

func (f *File) float64At(rec []byte, off int) float64 {
	return math.Float64frombits(f.order.Uint64(rec[off:]))
}

// record reads the 1024 bytes of record n. Record numbers are 1-based.
func (f *File) record(n int) ([]byte, error) {
	if n < 1 || int64(n)*RecordSize > f.size {
		return nil, fmt.Errorf("%w: record %d requested, but %s only has "+
			"records 1 - %d.", ErrFileFormat, n, f.fileName,
			f.size/RecordSize)
	}
	if _, err := f.r.Seek(int64(n-1)*RecordSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("The file %s cannot be read: %w",
			f.fileName, err)
	}
	rec := make([]byte, RecordSize)
	if _, err := io.ReadFull(f.r, rec); err != nil {
		return nil, fmt.Errorf("The file %s cannot be read: %w",
			f.fileName, err)
	}
	return rec, nil
}

// maxAddress returns the last doubleword address that reads are allowed to
// touch. The file record declares the first free address, but a corrupted
// value there must not let reads walk off the end of the file.
func (f *File) maxAddress() int {
	max := f.free - 1
	if fileMax := int(f.size / 8); max > fileMax {
		max = fileMax
	}
	return max
}

// ReadDoubles reads the doubles at addresses begin through end, inclusive.
// Addresses are the 1-based doubleword addresses used by segment
// descriptors.
func (f *File) ReadDoubles(begin, end int) ([]float64, error) {
	if begin < 1 || end < begin {
		return nil, fmt.Errorf("%w: the address range %d - %d in %s is not "+
			"a valid range.", ErrRange, begin, end, f.fileName)
	}
	if max := f.maxAddress(); end > max {
		return nil, fmt.Errorf("%w: the address range %d - %d in %s runs "+
			"past the last addressable double, %d.",
			ErrRange, begin, end, f.fileName, max)
	}

	if _, err := f.r.Seek(int64(begin-1)*8, io.SeekStart); err != nil {
		return nil, fmt.Errorf("The file %s cannot be read: %w",
			f.fileName, err)
	}
	out := make([]float64, end-begin+1)
	if err := binary.Read(f.r, f.order, out); err != nil {
		return nil, fmt.Errorf("The file %s cannot be read: %w",
			f.fileName, err)
	}
	return out, nil
}
