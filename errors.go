package qshadow

import (
	"errors"
	"fmt"
)

// ErrPoolClosed is returned when work is scheduled on a pool that has
// already been torn down.
var ErrPoolClosed = errors.New("pool closed")

// SchemaError reports a required field missing from the experiment record.
type SchemaError struct {
	Field  string
	Detail string
}

func (e *SchemaError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("schema: %s: %s", e.Field, e.Detail)
	}
	return fmt.Sprintf("schema: %s must be specified", e.Field)
}

// ConsistencyError reports measured qubits that carry no random basis.
type ConsistencyError struct {
	Shot    int
	Missing []int
}

func (e *ConsistencyError) Error() string {
	if e.Shot >= 0 {
		return fmt.Sprintf("consistency: shot %d: qubits %v have no basis", e.Shot, e.Missing)
	}
	return fmt.Sprintf("consistency: measured qubits %v are not part of the unitary located", e.Missing)
}

// RowShapeError reports a row whose length does not match the expected
// qubit count.
type RowShapeError struct {
	Row  int
	Got  int
	Want int
}

func (e *RowShapeError) Error() string {
	return fmt.Sprintf("row %d: length %d, want %d", e.Row, e.Got, e.Want)
}

// AlphabetError reports a token outside the basis or outcome alphabet.
type AlphabetError struct {
	Row      int
	Position int
	Value    string
}

func (e *AlphabetError) Error() string {
	return fmt.Sprintf("row %d: invalid token %q at position %d", e.Row, e.Value, e.Position)
}

// FileFormatError reports a malformed shadow file. Line is 1-based.
type FileFormatError struct {
	Line   int
	Reason string
	Err    error
}

func (e *FileFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *FileFormatError) Unwrap() error {
	return e.Err
}

// IndexError reports a subset index outside the row's qubit range.
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("subset index %d out of range [0, %d)", e.Index, e.Size)
}
