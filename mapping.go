package qshadow

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

/*
RegistersMapping associates a physical qubit with its position in a
measurement row. Iteration follows insertion order, and that order is the
column order of every extracted snapshot row.
*/
type RegistersMapping struct {
	m *orderedmap.OrderedMap[int, int]
}

// NewRegistersMapping builds a mapping from qubit/position pairs, in order.
func NewRegistersMapping(pairs ...[2]int) *RegistersMapping {
	rm := &RegistersMapping{m: orderedmap.New[int, int]()}
	for _, p := range pairs {
		rm.Set(p[0], p[1])
	}
	return rm
}

// Set records the row position of a qubit. Re-setting a qubit keeps its
// first place in the iteration order.
func (rm *RegistersMapping) Set(qubit, position int) {
	rm.m.Set(qubit, position)
}

// Position returns the row position of a qubit.
func (rm *RegistersMapping) Position(qubit int) (int, bool) {
	return rm.m.Get(qubit)
}

// Len is the number of mapped qubits, the subsystem size.
func (rm *RegistersMapping) Len() int {
	if rm == nil || rm.m == nil {
		return 0
	}
	return rm.m.Len()
}

// Each visits the mapping in insertion order until fn returns false.
func (rm *RegistersMapping) Each(fn func(qubit, position int) bool) {
	if rm == nil || rm.m == nil {
		return
	}
	for pair := rm.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Qubits lists the mapped qubits in iteration order.
func (rm *RegistersMapping) Qubits() []int {
	out := make([]int, 0, rm.Len())
	rm.Each(func(qubit, _ int) bool {
		out = append(out, qubit)
		return true
	})
	return out
}

/*
BasisAssignment is the random basis chosen for each qubit in one circuit or
shot, kept in insertion order.
*/
type BasisAssignment struct {
	m *orderedmap.OrderedMap[int, Basis]
}

// NewBasisAssignment returns an empty assignment.
func NewBasisAssignment() *BasisAssignment {
	return &BasisAssignment{m: orderedmap.New[int, Basis]()}
}

// BasisOf builds an assignment from qubit/basis-code pairs, in order.
func BasisOf(pairs ...[2]int) *BasisAssignment {
	ba := NewBasisAssignment()
	for _, p := range pairs {
		ba.Set(p[0], Basis(p[1]))
	}
	return ba
}

// Set assigns a basis to a qubit.
func (ba *BasisAssignment) Set(qubit int, basis Basis) {
	ba.m.Set(qubit, basis)
}

// Get returns the basis of a qubit.
func (ba *BasisAssignment) Get(qubit int) (Basis, bool) {
	if ba == nil || ba.m == nil {
		return 0, false
	}
	return ba.m.Get(qubit)
}

// Len is the number of qubits carrying a basis.
func (ba *BasisAssignment) Len() int {
	if ba == nil || ba.m == nil {
		return 0
	}
	return ba.m.Len()
}

// Each visits the assignment in insertion order until fn returns false.
func (ba *BasisAssignment) Each(fn func(qubit int, basis Basis) bool) {
	if ba == nil || ba.m == nil {
		return
	}
	for pair := ba.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}
