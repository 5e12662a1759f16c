package qshadow

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/sebdah/goldie/v2"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEncodeGolden(t *testing.T) {
	var buf bytes.Buffer
	m := Matrix{
		{"X", "1", "Z", "-1"},
		{"X", "1", "Y", "1"},
	}
	if err := Encode(&buf, m, 2); err != nil {
		t.Fatal(err)
	}

	g := goldie.New(t)
	g.Assert(t, "encode", buf.Bytes())
}

func TestCodec(t *testing.T) {
	Convey("Given a valid snapshot matrix", t, func() {
		m := randomMatrix(25, 4, 11)

		Convey("It should survive a round trip", func() {
			var buf bytes.Buffer
			So(Encode(&buf, m, 4), ShouldBeNil)

			decoded, size, err := Decode(&buf)
			So(err, ShouldBeNil)
			So(size, ShouldEqual, 4)
			So(decoded, ShouldResemble, m)
		})

		Convey("It should write nothing for an invalid matrix", func() {
			m[3] = Row{"X", "1"}
			var buf bytes.Buffer
			err := Encode(&buf, m, 4)

			var shape *RowShapeError
			So(errors.As(err, &shape), ShouldBeTrue)
			So(shape.Row, ShouldEqual, 3)
			So(buf.Len(), ShouldEqual, 0)
		})

		Convey("It should round trip through a file", func() {
			path := filepath.Join(t.TempDir(), "shadow.txt")
			So(WriteFile(path, m, 4), ShouldBeNil)

			decoded, size, err := ReadFile(path)
			So(err, ShouldBeNil)
			So(size, ShouldEqual, 4)
			So(decoded, ShouldResemble, m)
		})

		Convey("It should leave no file behind when the matrix is invalid", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "shadow.txt")
			m[0][0] = "W"

			So(WriteFile(path, m, 4), ShouldNotBeNil)
			entries, err := os.ReadDir(dir)
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)
		})
	})

	Convey("Given malformed shadow files", t, func() {
		Convey("An empty file should be rejected", func() {
			_, _, err := Decode(strings.NewReader(""))
			var format *FileFormatError
			So(errors.As(err, &format), ShouldBeTrue)
			So(format.Line, ShouldEqual, 1)
			So(format.Reason, ShouldEqual, "empty file")
		})

		Convey("A non-integer header should be rejected", func() {
			for _, header := range []string{"two", "2 3", "-1", "2.0"} {
				_, _, err := Decode(strings.NewReader(header + "\nX 1 Z -1\n"))
				var format *FileFormatError
				So(errors.As(err, &format), ShouldBeTrue)
				So(format.Line, ShouldEqual, 1)
			}
		})

		Convey("An unknown basis letter should carry the data row index", func() {
			_, _, err := Decode(strings.NewReader("2\nX 1 Z -1\nX 1 W 1\n"))

			var format *FileFormatError
			So(errors.As(err, &format), ShouldBeTrue)
			So(format.Line, ShouldEqual, 3)

			var alpha *AlphabetError
			So(errors.As(err, &alpha), ShouldBeTrue)
			So(alpha.Row, ShouldEqual, 1)
			So(alpha.Value, ShouldEqual, "W")
		})

		Convey("A short row should be a shape error", func() {
			_, _, err := Decode(strings.NewReader("2\nX 1\n"))
			var shape *RowShapeError
			ok := errors.As(err, &shape)
			if !ok {
				Println(spew.Sdump(err))
			}
			So(ok, ShouldBeTrue)
			So(shape.Row, ShouldEqual, 0)
		})

		Convey("A blank data line should be rejected", func() {
			_, _, err := Decode(strings.NewReader("1\nX 1\n\nZ -1\n"))
			var shape *RowShapeError
			So(errors.As(err, &shape), ShouldBeTrue)
			So(shape.Row, ShouldEqual, 1)
		})

		Convey("Any run of whitespace should delimit tokens", func() {
			m, size, err := Decode(strings.NewReader("2\r\n X\t1   Z -1 \r\n"))
			So(err, ShouldBeNil)
			So(size, ShouldEqual, 2)
			So(m, ShouldResemble, Matrix{{"X", "1", "Z", "-1"}})
		})

		Convey("A header alone is an empty matrix", func() {
			m, size, err := Decode(strings.NewReader("3\n"))
			So(err, ShouldBeNil)
			So(size, ShouldEqual, 3)
			So(m, ShouldBeEmpty)
		})
	})
}
