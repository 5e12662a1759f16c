package qshadow

import (
	"strconv"

	"github.com/theapemachine/errnie"
)

// snapshot is one shot decoded into basis and outcome columns, in
// registers-mapping order.
type snapshot struct {
	bases    []Basis
	outcomes []Outcome
}

/*
Extract converts an experiment into string-notation snapshots, one row per
shot, and returns the registers mapping that fixes the column order. The
matrix is validated before it is returned.
*/
func Extract(exp *Experiment) (Matrix, *RegistersMapping, error) {
	snaps, err := extractSnapshots(exp)
	if err != nil {
		return nil, nil, err
	}

	m := make(Matrix, len(snaps))
	for idx, s := range snaps {
		row := make(Row, 0, 2*len(s.bases))
		for col := range s.bases {
			row = append(row, s.bases[col].String(), s.outcomes[col].String())
		}
		m[idx] = row
	}

	if err := Validate(m, exp.RegistersMapping.Len()); err != nil {
		return nil, nil, err
	}

	errnie.Info(
		"Extract - shots %d, qubits %d",
		len(m),
		exp.RegistersMapping.Len(),
	)
	return m, exp.RegistersMapping, nil
}

// ExtractInts converts an experiment into integer-notation snapshots.
func ExtractInts(exp *Experiment) (IntNotation, error) {
	snaps, err := extractSnapshots(exp)
	if err != nil {
		return IntNotation{}, err
	}

	out := IntNotation{
		Bases:    make([][]int, len(snaps)),
		Outcomes: make([][]int, len(snaps)),
	}
	for idx, s := range snaps {
		bases := make([]int, len(s.bases))
		outcomes := make([]int, len(s.outcomes))
		for col := range s.bases {
			bases[col] = int(s.bases[col])
			outcomes[col] = int(s.outcomes[col])
		}
		out.Bases[idx] = bases
		out.Outcomes[idx] = outcomes
	}
	return out, nil
}

func extractSnapshots(exp *Experiment) ([]snapshot, error) {
	basis, err := CheckExperiment(exp)
	if err != nil {
		return nil, err
	}

	shots, err := Spread(exp.Shots, exp.Counts, basis)
	if err != nil {
		return nil, err
	}

	snaps := make([]snapshot, len(shots))
	for idx, shot := range shots {
		if snaps[idx], err = decodeShot(idx, shot, exp.RegistersMapping); err != nil {
			return nil, err
		}
	}
	return snaps, nil
}

// decodeShot reads one bitstring against its basis assignment. Position p
// of the mapping reads the p-th character counting from the right.
func decodeShot(idx int, shot Shot, mapping *RegistersMapping) (snapshot, error) {
	bits := shot.Bits
	if len(bits) != shot.Basis.Len() {
		return snapshot{}, &RowShapeError{Row: idx, Got: len(bits), Want: shot.Basis.Len()}
	}

	s := snapshot{
		bases:    make([]Basis, 0, mapping.Len()),
		outcomes: make([]Outcome, 0, mapping.Len()),
	}

	var err error
	mapping.Each(func(qubit, position int) bool {
		col := len(s.bases)

		basis, ok := shot.Basis.Get(qubit)
		if !ok {
			err = &ConsistencyError{Shot: idx, Missing: []int{qubit}}
			return false
		}
		if !basis.Valid() {
			err = &AlphabetError{Row: idx, Position: 2 * col, Value: strconv.Itoa(int(basis))}
			return false
		}
		if position < 0 || position >= len(bits) {
			err = &RowShapeError{Row: idx, Got: len(bits), Want: position + 1}
			return false
		}

		bit := bits[len(bits)-1-position]
		outcome, ok := outcomeFromBit(bit)
		if !ok {
			err = &AlphabetError{Row: idx, Position: 2*col + 1, Value: string(bit)}
			return false
		}

		s.bases = append(s.bases, basis)
		s.outcomes = append(s.outcomes, outcome)
		return true
	})

	return s, err
}
