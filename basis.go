package qshadow

// Basis is the randomly selected single-qubit measurement basis.
type Basis int

const (
	BasisX Basis = iota
	BasisY
	BasisZ
)

var basisTokens = [...]string{"X", "Y", "Z"}

// Valid reports whether the basis code is one of X, Y or Z.
func (b Basis) Valid() bool {
	return b >= BasisX && b <= BasisZ
}

// String returns the basis letter used in the shadow file format.
func (b Basis) String() string {
	if !b.Valid() {
		return "?"
	}
	return basisTokens[b]
}

// ParseBasis maps a basis letter back to its code.
func ParseBasis(token string) (Basis, bool) {
	switch token {
	case "X":
		return BasisX, true
	case "Y":
		return BasisY, true
	case "Z":
		return BasisZ, true
	}
	return 0, false
}

// Outcome is the measured eigenvalue, either -1 or +1.
type Outcome int

const (
	OutcomeMinus Outcome = -1
	OutcomePlus  Outcome = 1
)

// String returns the outcome token used in the shadow file format.
func (o Outcome) String() string {
	if o == OutcomePlus {
		return "1"
	}
	return "-1"
}

// ParseOutcome maps an outcome token back to its value.
func ParseOutcome(token string) (Outcome, bool) {
	switch token {
	case "1":
		return OutcomePlus, true
	case "-1":
		return OutcomeMinus, true
	}
	return 0, false
}

// outcomeFromBit converts a raw bitstring character: '1' reads as +1 and
// '0' as -1.
func outcomeFromBit(bit byte) (Outcome, bool) {
	switch bit {
	case '1':
		return OutcomePlus, true
	case '0':
		return OutcomeMinus, true
	}
	return 0, false
}

// Row is one snapshot: alternating basis and outcome tokens, one pair per
// measured qubit, in registers-mapping order.
type Row []string

// Qubits returns the number of (basis, outcome) pairs in the row.
func (r Row) Qubits() int {
	return len(r) / 2
}

// Matrix is the ordered set of snapshots, one row per shot.
type Matrix []Row

// IntNotation carries the same snapshots as parallel integer sequences:
// basis codes (0=X, 1=Y, 2=Z) and outcomes (+1/-1).
type IntNotation struct {
	Bases    [][]int
	Outcomes [][]int
}
