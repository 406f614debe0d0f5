package frames

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrEmptyFile is returned when a telemetry file has no header row.
var ErrEmptyFile = errors.New("empty telemetry file")

// ReadCSV parses a headered numeric CSV into a Table. Empty cells and the
// tokens nan/na/null become NaN. Cells that are not numbers also become NaN
// and are counted in Table.Malformed so schema validation can reject them;
// only structural problems (ragged rows, duplicate headers) are errors.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	names := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = struct{}{}
		names[i] = name
	}

	columns := make([][]float64, len(names))
	malformed := make(map[string]int)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		line++
		for i, cell := range record {
			value, ok := parseCell(cell)
			if !ok {
				malformed[names[i]]++
			}
			columns[i] = append(columns[i], value)
		}
	}

	n := 0
	if len(columns) > 0 {
		n = len(columns[0])
	}
	table := NewTable(n)
	for i, name := range names {
		values := columns[i]
		if values == nil {
			values = []float64{}
		}
		table.SetNumeric(name, values)
	}
	table.Malformed = malformed
	return table, nil
}

// ReadCSVFile opens and parses path.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	table, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

func parseCell(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "nan", "na", "null":
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// WriteCSV writes the requested columns in order. Columns absent from the
// table are skipped; columns not requested are never written.
func WriteCSV(w io.Writer, t *Table, columns []string) error {
	present := make([]string, 0, len(columns))
	for _, name := range columns {
		if t.Has(name) {
			present = append(present, name)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(present); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(present))
	for i := 0; i < t.Len(); i++ {
		for j, name := range present {
			row[j] = t.cell(name, i)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (t *Table) cell(name string, i int) string {
	if stream, ok := t.labels[name]; ok {
		return stream.Label(i)
	}
	v := t.numeric[name][i]
	if math.IsNaN(v) {
		return ""
	}
	if name == ColFrame {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
