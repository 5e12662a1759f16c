package qshadow

/*
Validate checks that every row has exactly 2*size tokens, that even
positions hold a basis letter and odd positions an outcome token. It
returns the first violation found, carrying the row index.
*/
func Validate(m Matrix, size int) error {
	for idx, row := range m {
		if err := ValidateRow(idx, row, size); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRow checks a single row, reporting idx as its row index.
func ValidateRow(idx int, row Row, size int) error {
	if len(row) != 2*size {
		return &RowShapeError{Row: idx, Got: len(row), Want: 2 * size}
	}

	for pos := 0; pos < len(row); pos += 2 {
		if _, ok := ParseBasis(row[pos]); !ok {
			return &AlphabetError{Row: idx, Position: pos, Value: row[pos]}
		}
		if _, ok := ParseOutcome(row[pos+1]); !ok {
			return &AlphabetError{Row: idx, Position: pos + 1, Value: row[pos+1]}
		}
	}
	return nil
}
