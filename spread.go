package qshadow

import (
	"fmt"
	"sort"
)

// Shot is a single-shot record: the one bitstring observed and the basis
// it was measured in.
type Shot struct {
	Bits  string
	Basis *BasisAssignment
}

/*
Spread expands per-circuit counts into single-shot records. Each circuit
must account for exactly shots observations. Bitstrings inside one circuit
are emitted in sorted order, so the shot order is reproducible.
*/
func Spread(shots int, counts []map[string]int, basis []*BasisAssignment) ([]Shot, error) {
	if shots <= 0 {
		return nil, &SchemaError{Field: "shots", Detail: fmt.Sprintf("got %d", shots)}
	}
	if len(counts) != len(basis) {
		return nil, &SchemaError{
			Field:  "counts",
			Detail: fmt.Sprintf("%d count records for %d basis assignments", len(counts), len(basis)),
		}
	}

	out := make([]Shot, 0, shots*len(counts))

	for circuit, single := range counts {
		if basis[circuit] == nil {
			return nil, &SchemaError{
				Field:  "random_basis",
				Detail: fmt.Sprintf("circuit %d has no assignment", circuit),
			}
		}

		bits := make([]string, 0, len(single))
		total := 0
		for b, n := range single {
			if n < 0 {
				return nil, &SchemaError{
					Field:  "counts",
					Detail: fmt.Sprintf("circuit %d: negative count %d for %q", circuit, n, b),
				}
			}
			bits = append(bits, b)
			total += n
		}
		if total != shots {
			return nil, &SchemaError{
				Field:  "counts",
				Detail: fmt.Sprintf("circuit %d: %d observations, want %d", circuit, total, shots),
			}
		}
		sort.Strings(bits)

		for _, b := range bits {
			for range single[b] {
				out = append(out, Shot{Bits: b, Basis: basis[circuit]})
			}
		}
	}

	return out, nil
}
