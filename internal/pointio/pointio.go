// Package pointio reads point clouds from disk and writes labeling results.
package pointio

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnknownFormat is returned by Load for unsupported file extensions.
var ErrUnknownFormat = errors.New("pointio: unknown point file format")

// ReadOBJ reads the vertex positions of a Wavefront OBJ stream. Every line
// of the form "v x y z" yields one 3-D point; any further components (the
// optional w) are ignored. Other lines, and "v" lines whose first three
// components do not parse as numbers, are skipped.
func ReadOBJ(r io.Reader) ([][]float64, error) {
	var points [][]float64
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if p, ok := parseVertex(sc.Text()); ok {
			points = append(points, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "pointio: reading obj")
	}
	return points, nil
}

func parseVertex(line string) ([]float64, bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 || fields[0] != "v" {
		return nil, false
	}
	p := make([]float64, 3)
	for i := range p {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, false
		}
		p[i] = v
	}
	return p, true
}

// ReadCSV reads one point per row of comma-separated numbers. A first row
// that does not parse is treated as a header and skipped. Every other row
// must have the same number of columns and only numeric fields.
func ReadCSV(r io.Reader) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	cr.FieldsPerRecord = -1 // a header may differ from the data rows

	var points [][]float64
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "pointio: reading csv")
		}

		p, perr := parseRow(rec)
		if perr != nil {
			if line == 1 {
				continue
			}
			return nil, errors.Wrapf(perr, "pointio: csv line %d", line)
		}
		if len(points) > 0 && len(p) != len(points[0]) {
			return nil, errors.Newf("pointio: csv line %d has %d columns, want %d", line, len(p), len(points[0]))
		}
		points = append(points, p)
	}
	return points, nil
}

func parseRow(rec []string) ([]float64, error) {
	p := make([]float64, len(rec))
	for i, f := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errors.Newf("column %d: %q is not a number", i+1, f)
		}
		p[i] = v
	}
	return p, nil
}

// Load reads the point file at path, choosing the parser by extension:
// .obj is Wavefront OBJ, .csv and .txt are comma-separated rows.
func Load(path string) ([][]float64, error) {
	var read func(io.Reader) ([][]float64, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		read = ReadOBJ
	case ".csv", ".txt":
		read = ReadCSV
	default:
		return nil, errors.WithHint(
			errors.Mark(errors.Newf("pointio: cannot load %s", path), ErrUnknownFormat),
			"supported extensions are .obj, .csv and .txt")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "pointio: open %s", path)
	}
	defer f.Close()

	points, err := read(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "pointio: load %s", path)
	}
	return points, nil
}
