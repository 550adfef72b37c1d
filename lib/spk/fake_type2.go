package spk

// FakeType2Data builds the data block of a Chebyshev position segment
// directly from its parameters, for testing purposes: nIvl contiguous
// intervals of intlen seconds starting at start, each holding nCoef
// coefficients per position component. The coefficient values are
// deterministic filler; nothing in this package evaluates them.
func FakeType2Data(start, intlen float64, nCoef, nIvl int) []float64 {
	out := make([]float64, 0, nIvl*(3+3*nCoef))
	for i := 0; i < nIvl; i++ {
		s := start + float64(i)*intlen
		out = append(out, s, s+intlen, float64(nCoef))
		for c := 0; c < 3*nCoef; c++ {
			out = append(out, float64(c%7))
		}
	}
	return out
}
