package qshadow

import (
	"math"
	"sort"
)

// Per-qubit kernel values comparing two snapshots.
const (
	kernelBasisDiffer = 0.5
	kernelSame        = 5.0
	kernelFlip        = -4.0
)

/*
elementaryKernel compares one qubit of two snapshots given as basis and
outcome tokens.
*/
func elementaryKernel(basisA, basisB, outcomeA, outcomeB string) float64 {
	if basisA != basisB {
		return kernelBasisDiffer
	}
	if outcomeA == outcomeB {
		return kernelSame
	}
	return kernelFlip
}

/*
PairTrace is the product of the elementary kernel over the subset, read
directly off two rows. An empty subset yields 1. Indices are not checked.
*/
func PairTrace(a, b Row, subset []int) float64 {
	trace := 1.0
	for _, q := range subset {
		i := 2 * q
		trace *= elementaryKernel(a[i], b[i], a[i+1], b[i+1])
	}
	return trace
}

/*
packRows reduces each row to the subset columns, one byte per qubit:
basis code in the upper bits, outcome in bit 0. XOR of two packed qubits is
0 for an identical measurement, 1 for same basis with flipped outcome and
at least 2 when the bases differ.
*/
func packRows(m Matrix, subset []int) [][]uint8 {
	packed := make([][]uint8, len(m))
	for idx, row := range m {
		p := make([]uint8, len(subset))
		for col, q := range subset {
			basis, _ := ParseBasis(row[2*q])
			code := uint8(basis) << 1
			if row[2*q+1] == "1" {
				code |= 1
			}
			p[col] = code
		}
		packed[idx] = p
	}
	return packed
}

/*
Tally is a partial result of the pair sum. The trace of a pair only depends
on how many subset qubits matched exactly (same) and how many matched in
basis but flipped in outcome (flip), so a Tally counts pairs per (same,
flip) combination. Merging tallies is integer addition, which makes the
final value independent of how pairs were split across batches and of the
order in which partial results arrive. Only observed combinations are
stored, so a tally stays small whatever the subset size.
*/
type Tally struct {
	qubits int
	counts map[tallyKey]int64
}

type tallyKey struct {
	same, flip int
}

// NewTally returns an empty tally for a subset of the given size.
func NewTally(qubits int) *Tally {
	return &Tally{
		qubits: qubits,
		counts: make(map[tallyKey]int64),
	}
}

// addPair counts the pair (a, b).
func (t *Tally) addPair(a, b []uint8) {
	key := tallyKey{}
	for i := range a {
		switch a[i] ^ b[i] {
		case 0:
			key.same++
		case 1:
			key.flip++
		}
	}
	t.counts[key]++
}

// Merge adds other into t. Both must cover the same subset size.
func (t *Tally) Merge(other *Tally) {
	for key, n := range other.counts {
		t.counts[key] += n
	}
}

// Pairs is the number of pairs counted.
func (t *Tally) Pairs() int64 {
	var total int64
	for _, n := range t.counts {
		total += n
	}
	return total
}

/*
Value evaluates the raw, unnormalized pair sum:
sum of count * 5^same * (-4)^flip * 0.5^(qubits-same-flip),
accumulated in ascending (same, flip) order. The powers of two are applied
last so a large 5^same does not overflow before the halvings bring it back
into range.
*/
func (t *Tally) Value() float64 {
	keys := make([]tallyKey, 0, len(t.counts))
	for key, n := range t.counts {
		if n != 0 {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].same != keys[j].same {
			return keys[i].same < keys[j].same
		}
		return keys[i].flip < keys[j].flip
	})

	var sum float64
	for _, key := range keys {
		frac, exp := pow5(key.same)
		differ := t.qubits - key.same - key.flip
		term := math.Ldexp(float64(t.counts[key])*frac, exp+2*key.flip-differ)
		if key.flip%2 == 1 {
			term = -term
		}
		sum += term
	}
	return sum
}

// pow5 returns 5^k as a fraction in [0.5, 1) and a binary exponent.
func pow5(k int) (float64, int) {
	frac, exp := 1.0, 0
	b, be := math.Frexp(kernelSame)
	for ; k > 0; k >>= 1 {
		if k&1 == 1 {
			f, e := math.Frexp(frac * b)
			frac, exp = f, exp+be+e
		}
		f, e := math.Frexp(b * b)
		b, be = f, 2*be+e
	}
	return frac, exp
}
