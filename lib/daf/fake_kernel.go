package daf

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// FakeSegment is the description of one segment in a FakeKernel: the
// summary components plus the raw doubles that make up the segment's data.
// If Data is non-nil and the kernel's summaries have at least two integer
// components, the last two integers are overwritten with the begin and end
// addresses the builder assigned to Data, which is the convention SPK
// descriptors use.
type FakeSegment struct {
	Name string
	D    []float64
	I    []int32
	Data []float64
}

// FakeKernel builds syntactically valid DAF bytes directly from arrays, for
// testing purposes. The zero value plus a list of segments produces a
// little-endian "DAF/SPK " file; the remaining fields override individual
// parts of the file record so tests can produce malformed files.
type FakeKernel struct {
	ID       string // ID word, default "DAF/SPK "
	Internal string // internal file name
	ND, NI   int    // summary shape, default 2 and 6
	Order    binary.ByteOrder
	Segments []FakeSegment

	// BlankFormatWord writes spaces over the binary format word so that
	// decoding has to fall back to probing the summary shape.
	BlankFormatWord bool
	// Free overrides the first free address when nonzero.
	Free int
}

// Bytes assembles the kernel. The layout is the standard one: the file
// record, then alternating summary and name records, then the data area.
func (fk *FakeKernel) Bytes() []byte {
	id, internal := fk.ID, fk.Internal
	if id == "" {
		id = "DAF/SPK "
	}
	nd, ni := fk.ND, fk.NI
	if nd == 0 && ni == 0 {
		nd, ni = 2, 6
	}
	order := fk.Order
	if order == nil {
		order = binary.LittleEndian
	}

	summaryWords := nd + (ni+1)/2
	nameSize := 8 * summaryWords
	perRecord := (RecordWords - 3) / summaryWords

	nSumRecords := 1
	if len(fk.Segments) > perRecord {
		nSumRecords = (len(fk.Segments) + perRecord - 1) / perRecord
	}

	// Addresses for each segment's data. The data area starts on the first
	// record after the chain.
	dataRecord := 2 + 2*nSumRecords
	addr := (dataRecord-1)*RecordWords + 1
	begins := make([]int, len(fk.Segments))
	ends := make([]int, len(fk.Segments))
	for i, seg := range fk.Segments {
		begins[i] = addr
		addr += len(seg.Data)
		ends[i] = addr - 1
	}
	free := addr
	if fk.Free != 0 {
		free = fk.Free
	}

	buf := &bytes.Buffer{}

	// File record.
	writePadded(buf, id, idWordSize)
	write(buf, order, int32(nd))
	write(buf, order, int32(ni))
	writePadded(buf, internal, internalNameSize)
	write(buf, order, int32(2))
	write(buf, order, int32(2+2*(nSumRecords-1)))
	write(buf, order, int32(free))
	formatWord := littleFormatWord
	if order == binary.BigEndian {
		formatWord = bigFormatWord
	}
	if fk.BlankFormatWord {
		formatWord = ""
	}
	writePadded(buf, formatWord, idWordSize)
	pad(buf, RecordSize-buf.Len())

	// Summary and name records.
	for r := 0; r < nSumRecords; r++ {
		lo := r * perRecord
		hi := lo + perRecord
		if hi > len(fk.Segments) {
			hi = len(fk.Segments)
		}

		next := 0.0
		if r != nSumRecords-1 {
			next = float64(2 + 2*(r+1))
		}
		prev := 0.0
		if r != 0 {
			prev = float64(2 + 2*(r-1))
		}

		recStart := buf.Len()
		write(buf, order, next)
		write(buf, order, prev)
		write(buf, order, float64(hi-lo))
		for i := lo; i < hi; i++ {
			seg := fk.Segments[i]
			if len(seg.D) != nd || len(seg.I) != ni {
				panic(fmt.Sprintf("Segment %d has %d doubles and %d "+
					"integers, but the kernel shape is (%d, %d).",
					i, len(seg.D), len(seg.I), nd, ni))
			}
			write(buf, order, seg.D)
			ints := make([]int32, ni)
			copy(ints, seg.I)
			if seg.Data != nil && ni >= 2 {
				ints[ni-2] = int32(begins[i])
				ints[ni-1] = int32(ends[i])
			}
			write(buf, order, ints)
			if ni%2 == 1 {
				pad(buf, 4)
			}
		}
		pad(buf, RecordSize-(buf.Len()-recStart))

		recStart = buf.Len()
		for i := lo; i < hi; i++ {
			writePadded(buf, fk.Segments[i].Name, nameSize)
		}
		pad(buf, RecordSize-(buf.Len()-recStart))
	}

	// Data area.
	for _, seg := range fk.Segments {
		write(buf, order, seg.Data)
	}
	if rem := buf.Len() % RecordSize; rem != 0 {
		pad(buf, RecordSize-rem)
	}

	return buf.Bytes()
}

// Reader returns the assembled kernel as a ReadSeeker alongside its size,
// ready to hand to NewFile.
func (fk *FakeKernel) Reader() (*bytes.Reader, int64) {
	b := fk.Bytes()
	return bytes.NewReader(b), int64(len(b))
}

func write(buf *bytes.Buffer, order binary.ByteOrder, x interface{}) {
	err := binary.Write(buf, order, x)
	if err != nil {
		panic(err.Error())
	}
}

func writePadded(buf *bytes.Buffer, s string, n int) {
	if len(s) > n {
		s = s[:n]
	}
	buf.WriteString(s)
	pad(buf, n-len(s))
}

func pad(buf *bytes.Buffer, n int) {
	for i := 0; i < n; i++ {
		buf.WriteByte(' ')
	}
}
