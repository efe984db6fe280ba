package similarity

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Load reads a matrix artifact. A .json file holds nested arrays of numbers;
// a .bin file holds the gonum dense binary encoding written by Write.
func Load(path string) (*Matrix, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open similarity matrix: %w", err)
	}
	defer file.Close()

	var m *Matrix
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		m, err = ReadJSON(file)
	case ".bin":
		m, err = ReadBinary(file)
	default:
		return nil, fmt.Errorf("similarity matrix %s: unsupported extension %q (want .json or .bin)", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("similarity matrix %s: %w", path, err)
	}
	return m, nil
}

// ReadJSON decodes a square array of arrays. Null cells are rejected.
func ReadJSON(r io.Reader) (*Matrix, error) {
	var cells [][]*float64
	if err := json.NewDecoder(r).Decode(&cells); err != nil {
		return nil, fmt.Errorf("decode json rows: %w", err)
	}
	rows := make([][]float64, len(cells))
	for i, row := range cells {
		rows[i] = make([]float64, len(row))
		for j, cell := range row {
			if cell == nil {
				return nil, fmt.Errorf("score (%d, %d) is null", i, j)
			}
			rows[i][j] = *cell
		}
	}
	return New(rows)
}

// ReadBinary decodes the gonum dense binary format.
func ReadBinary(r io.Reader) (*Matrix, error) {
	var dense mat.Dense
	if _, err := dense.UnmarshalBinaryFrom(bufio.NewReader(r)); err != nil {
		return nil, fmt.Errorf("decode binary matrix: %w", err)
	}
	return FromDense(&dense)
}

// WriteBinary encodes m in the gonum dense binary format.
func WriteBinary(w io.Writer, m *Matrix) error {
	buf := bufio.NewWriter(w)
	if _, err := m.dense.MarshalBinaryTo(buf); err != nil {
		return fmt.Errorf("encode binary matrix: %w", err)
	}
	return buf.Flush()
}

// Write stores m at path in the binary format, replacing any existing file
// only once the new contents are fully written.
func Write(path string, m *Matrix) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create matrix directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".similarity-*.bin")
	if err != nil {
		return fmt.Errorf("create temp matrix: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteBinary(tmp, m); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp matrix: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace matrix: %w", err)
	}
	return nil
}
