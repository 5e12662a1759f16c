package qshadow

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/theapemachine/errnie"
)

// maxLineBytes bounds a single data line; wide subsystems produce long rows.
const maxLineBytes = 16 * 1024 * 1024

/*
Encode writes the matrix in the shadow file format: the system size alone
on the first line, then one whitespace-joined row per line. The whole
matrix is validated before anything is written.
*/
func Encode(w io.Writer, m Matrix, size int) error {
	if size < 0 {
		return fmt.Errorf("encode: negative system size %d", size)
	}
	if err := Validate(m, size); err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d\n", size); err != nil {
		return err
	}
	for _, row := range m {
		if _, err := bw.WriteString(strings.Join(row, " ")); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

/*
Decode reads a shadow file. Each data row is validated as soon as it is
read; row errors carry the 0-based data row index and are wrapped in a
FileFormatError giving the 1-based line.
*/
func Decode(r io.Reader) (Matrix, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, 0, &FileFormatError{Line: 1, Reason: "read header", Err: err}
		}
		return nil, 0, &FileFormatError{Line: 1, Reason: "empty file"}
	}

	header := strings.TrimSpace(scanner.Text())
	size, err := strconv.Atoi(header)
	if err != nil || size < 0 {
		return nil, 0, &FileFormatError{
			Line:   1,
			Reason: fmt.Sprintf("system size %q is not a non-negative integer", header),
		}
	}

	var m Matrix
	for scanner.Scan() {
		idx := len(m)
		row := Row(strings.Fields(scanner.Text()))
		if err := ValidateRow(idx, row, size); err != nil {
			return nil, 0, &FileFormatError{Line: idx + 2, Reason: "invalid row", Err: err}
		}
		m = append(m, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, &FileFormatError{Line: len(m) + 2, Reason: "read row", Err: err}
	}

	return m, size, nil
}

/*
WriteFile encodes into a temporary file next to path and renames it into
place, so an invalid matrix or a failed write never leaves a partial file.
*/
func WriteFile(path string, m Matrix, size int) error {
	var buf bytes.Buffer
	if err := Encode(&buf, m, size); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	errnie.Info("WriteFile - %s, rows %d, size %d", path, len(m), size)
	return nil
}

// ReadFile opens and decodes a shadow file.
func ReadFile(path string) (Matrix, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	m, size, err := Decode(f)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}

	errnie.Info("ReadFile - %s, rows %d, size %d", path, len(m), size)
	return m, size, nil
}
