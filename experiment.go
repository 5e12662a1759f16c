package qshadow

import (
	"fmt"
	"slices"
	"sort"
)

// legacyBasisKey is the side-product entry older experiment records used to
// carry the random basis before it became a dedicated field.
const legacyBasisKey = "random_unitary_ids"

/*
Experiment is the read-only record of a randomized-measurement run, as
handed over by the execution engine. Counts holds one count map per
circuit; RandomBasis holds the basis assignment of each circuit. Records
written by older engines leave RandomBasis nil and put the assignments in
SideProduct under "random_unitary_ids", either as a []*BasisAssignment or
as a map[int]*BasisAssignment keyed by circuit index.
*/
type Experiment struct {
	Shots            int
	Counts           []map[string]int
	RandomBasis      []*BasisAssignment
	SideProduct      map[string]any
	RegistersMapping *RegistersMapping
	QubitsMeasured   []int
	UnitaryLocated   []int
}

/*
CheckExperiment verifies the record carries everything extraction needs and
returns the normalized per-circuit random basis.
*/
func CheckExperiment(exp *Experiment) ([]*BasisAssignment, error) {
	if exp == nil {
		return nil, &SchemaError{Field: "experiment"}
	}
	if exp.UnitaryLocated == nil {
		return nil, &SchemaError{Field: "unitary_located"}
	}
	if exp.QubitsMeasured == nil {
		return nil, &SchemaError{Field: "qubits_measured"}
	}
	if exp.RegistersMapping == nil {
		return nil, &SchemaError{Field: "registers_mapping"}
	}

	located := make(map[int]struct{}, len(exp.UnitaryLocated))
	for _, q := range exp.UnitaryLocated {
		located[q] = struct{}{}
	}

	var missing []int
	for _, q := range exp.QubitsMeasured {
		if _, ok := located[q]; !ok && !slices.Contains(missing, q) {
			missing = append(missing, q)
		}
	}
	if len(missing) > 0 {
		sort.Ints(missing)
		return nil, &ConsistencyError{Shot: -1, Missing: missing}
	}

	return randomBasis(exp)
}

// randomBasis probes the dedicated field first and falls back to the legacy
// side product, normalizing both to a slice indexed by circuit.
func randomBasis(exp *Experiment) ([]*BasisAssignment, error) {
	if exp.RandomBasis != nil {
		return exp.RandomBasis, nil
	}

	raw, ok := exp.SideProduct[legacyBasisKey]
	if !ok {
		return nil, &SchemaError{Field: "random_basis"}
	}

	switch v := raw.(type) {
	case []*BasisAssignment:
		return v, nil
	case map[int]*BasisAssignment:
		keys := make([]int, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Ints(keys)

		out := make([]*BasisAssignment, 0, len(keys))
		for i, k := range keys {
			if k != i {
				return nil, &SchemaError{
					Field:  legacyBasisKey,
					Detail: fmt.Sprintf("circuit index %d missing", i),
				}
			}
			out = append(out, v[k])
		}
		return out, nil
	default:
		return nil, &SchemaError{
			Field:  legacyBasisKey,
			Detail: fmt.Sprintf("unsupported type %T", raw),
		}
	}
}
