package main

// make_sample_kernel writes a small synthetic SPK kernel, plus a
// zstandard-compressed twin, for exercising ephreader by hand:
//
//   go run scripts/make_sample_kernel.go sample.bsp
//   go run . sample.bsp sample.bsp.zst
//
// The coefficients are filler. Only the layout matches real DE kernels:
// interval lengths and coefficient counts are the ones DE440 uses for
// these bodies.

import (
	"fmt"
	"os"

	"github.com/DataDog/zstd"

	"github.com/gutsergut/EphReader/lib/daf"
	"github.com/gutsergut/EphReader/lib/spk"
)

const (
	day  = 86400.0
	span = 64 * day
)

func segment(target, typ int, intlen float64, nCoef int) daf.FakeSegment {
	return daf.FakeSegment{
		Name: fmt.Sprintf("SAMPLE BODY %d", target),
		D:    []float64{0, span},
		I:    []int32{int32(target), 0, 1, int32(typ), 0, 0},
		Data: spk.FakeType2Data(0, intlen, nCoef, int(span/intlen)),
	}
}

func main() {
	fileName := "sample.bsp"
	if len(os.Args) > 1 {
		fileName = os.Args[1]
	}

	fk := &daf.FakeKernel{
		Internal: "EPHREADER SAMPLE KERNEL",
		Segments: []daf.FakeSegment{
			segment(1, 2, 8*day, 14),
			segment(2, 2, 16*day, 10),
			segment(3, 2, 16*day, 13),
			segment(4, 2, 32*day, 11),
			segment(5, 2, 32*day, 8),
			segment(6, 2, 32*day, 7),
			segment(7, 2, 32*day, 6),
			segment(8, 2, 32*day, 6),
			segment(9, 2, 32*day, 6),
			segment(10, 2, 16*day, 11),
			segment(301, 2, 4*day, 13),
			segment(399, 2, 4*day, 13),
			// A data type ephreader cannot decode, to exercise the
			// per-body error path.
			segment(2000001, 21, 16*day, 6),
		},
	}

	b := fk.Bytes()
	if err := os.WriteFile(fileName, b, 0666); err != nil {
		panic(err.Error())
	}

	comp, err := zstd.CompressLevel(nil, b, 19)
	if err != nil {
		panic(err.Error())
	}
	if err := os.WriteFile(fileName+".zst", comp, 0666); err != nil {
		panic(err.Error())
	}

	fmt.Printf("wrote %s (%d bytes) and %s.zst (%d bytes)\n",
		fileName, len(b), fileName, len(comp))
}
