/*package format handles the miniature selection language used to pick
bodies on the command line, e.g.:

  --bodies "1..10"
  --bodies "1..10 + 301 + 399"
  --bodies "1..10 - 3 + 2000001..2000004"

Selection strings are a generic way to specify non-contiguous sequences of
non-negative integers. They consist of a series of tokens separated by "+"
or "-". Each token is either a number or two numbers separated by "..",
which stands for the whole inclusive range. Tokens after a "+" are added to
the selection, tokens after a "-" are removed from it. For example, the
planet barycenters without the Earth-Moon system could be written as
"1..10 - 3".

All spaces around "+" and "-" are ignored. Negative identifiers cannot be
written in this language, because "-" already means removal.
*/
package format

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Any expanded selection with more than BigNumber elements is assumed to
// be a typo, e.g. a missing "..2000010" bound turning into a two-million
// body range.
const BigNumber = 1 << 20

// ExpandSequenceFormat expands a selection string into a sorted sequence
// of integers.
func ExpandSequenceFormat(format string) ([]int, error) {
	// Parse and error-check the selection string.
	tok, err := tokeniseSequenceFormat(format)
	if err != nil {
		return nil, err
	}
	adds, subs, err := addsSubsSequenceFormat(tok)
	if err != nil {
		return nil, err
	}

	// Add numbers to the sequence.
	m := map[int]int{}
	for i := range adds {
		ns, err := parseSequenceFormatToken(adds[i])
		if err != nil {
			return nil, err
		}
		for _, n := range ns {
			if _, ok := m[n]; ok {
				return nil, fmt.Errorf("The number %d is added more than "+
					"once.", n)
			}
			m[n] = n
		}
	}

	// Remove numbers from the sequence.
	for i := range subs {
		ns, err := parseSequenceFormatToken(subs[i])
		if err != nil {
			return nil, err
		}
		for _, n := range ns {
			if _, ok := m[n]; !ok {
				return nil, fmt.Errorf("The number %d is removed more "+
					"times than it was inserted.", n)
			}
			delete(m, n)
		}
	}

	if len(m) > BigNumber {
		return nil, fmt.Errorf("This selection would have %d elements, "+
			"which is almost certainly a bug.", len(m))
	}

	// Convert to a sorted array of integers.
	out := []int{}
	for n := range m {
		out = append(out, n)
	}
	sort.Ints(out)

	return out, nil
}

// tokeniseSequenceFormat splits a selection string into number tokens and
// "+"/"-" operator tokens.
func tokeniseSequenceFormat(format string) ([]string, error) {
	// Make sure all operators are separated by spaces.
	formatClean := strings.ReplaceAll(format, "+", " + ")
	formatClean = strings.ReplaceAll(formatClean, "-", " - ")

	// Tokenize and remove empty tokens.
	tokRaw := strings.Split(formatClean, " ")
	tok := []string{}
	for i := range tokRaw {
		tokRaw[i] = strings.Trim(tokRaw[i], " ")
		if len(tokRaw[i]) > 0 {
			tok = append(tok, tokRaw[i])
		}
	}

	if len(tok) == 0 {
		return nil, fmt.Errorf("The selection string is empty.")
	}
	return tok, nil
}

func addsSubsSequenceFormat(tok []string) (adds, subs []string, err error) {
	if len(tok) == 0 {
		return nil, nil, fmt.Errorf("The selection string is empty.")
	}

	// Handle the case where the starting "+" is dropped.
	adds, subs = []string{}, []string{}
	var start int
	if tok[0] == "+" || tok[0] == "-" {
		start = 0
	} else {
		if err := isSequenceFormatToken(tok[0]); err != nil {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', cannot be parsed because %s",
				1, tok[0], err.Error(),
			)
		}

		adds = append(adds, tok[0])
		start = 1
	}

	for i := start; i < len(tok); i += 2 {
		if tok[i] != "-" && tok[i] != "+" {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', should be a '-' or '+', but isn't.",
				i+1, tok[i])
		}

		if i+1 >= len(tok) {
			return nil, nil, fmt.Errorf(
				"The selection string ends in a trailing '%s'.", tok[i],
			)
		}

		if err := isSequenceFormatToken(tok[i+1]); err != nil {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', cannot be parsed because %s",
				i+2, tok[i+1], err.Error(),
			)
		}

		if tok[i] == "+" {
			adds = append(adds, tok[i+1])
		} else {
			subs = append(subs, tok[i+1])
		}
	}

	return adds, subs, nil
}

// isSequenceFormatToken returns a nil error if tok is a valid token for a
// selection string and an error describing the problem otherwise. The
// error message assumes it is printed after a trailing "because".
func isSequenceFormatToken(tok string) error {
	if len(tok) == 0 {
		return fmt.Errorf("the selection string is empty.")
	}

	bounds := strings.Split(tok, "..")

	switch len(bounds) {
	case 1:
		_, err := strconv.Atoi(bounds[0])
		if err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[0])
		}
		return nil
	case 2:
		start, err1 := strconv.Atoi(bounds[0])
		if err1 != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[0])
		}
		end, err2 := strconv.Atoi(bounds[1])
		if err2 != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[1])
		}
		if end < start {
			return fmt.Errorf("lower bound %d is larger than upper bound %d.",
				start, end)
		}

		return nil
	}
	return fmt.Errorf("it has more than one '..'.")
}

// parseSequenceFormatToken parses a single token in a selection string and
// returns the corresponding array of numbers. The tests in
// isSequenceFormatToken have already run by the time this is called, so a
// parse failure here means the two functions have fallen out of sync.
func parseSequenceFormatToken(tok string) ([]int, error) {
	bounds := strings.Split(tok, "..")

	switch len(bounds) {
	case 1:
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("Invalid selection token, '%s', passed "+
				"isSequenceFormatToken().", tok)
		}
		return []int{n}, nil
	case 2:
		start, err1 := strconv.Atoi(bounds[0])
		end, err2 := strconv.Atoi(bounds[1])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("Invalid selection token, '%s', passed "+
				"isSequenceFormatToken().", tok)
		}
		if end-start > BigNumber {
			return nil, fmt.Errorf("The range '%s' would select %d numbers, "+
				"which is almost certainly a bug.", tok, end-start+1)
		}
		out := []int{}
		for n := start; n <= end; n++ {
			out = append(out, n)
		}

		return out, nil
	}

	return nil, fmt.Errorf("Invalid selection token, '%s', passed "+
		"isSequenceFormatToken().", tok)
}
