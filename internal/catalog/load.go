package catalog

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Column names accepted for the identifier. The first one present wins.
var idColumns = []string{"id", "movie_id"}

const titleColumn = "title"

// Load reads a catalog artifact, choosing the decoder by file extension:
// .csv for a headed CSV table, .json for either a list of records or a
// column-oriented object keyed by row index.
func Load(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()

	var entries []Entry
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		entries, err = ReadCSV(file)
	case ".json":
		entries, err = ReadJSON(file)
	default:
		return nil, fmt.Errorf("catalog %s: unsupported extension %q (want .csv or .json)", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return New(entries)
}

// ReadCSV decodes a CSV table whose header names an id column and a title
// column. Remaining columns are kept as entry fields.
func ReadCSV(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv has no header row")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
		header[i] = name
	}
	idName, ok := findIDColumn(columns)
	if !ok {
		return nil, fmt.Errorf("csv header %v has no id column", header)
	}
	idCol := columns[idName]
	titleCol, ok := columns[titleColumn]
	if !ok {
		return nil, fmt.Errorf("csv header %v has no title column", header)
	}

	var entries []Entry
	for row := 0; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", row, err)
		}
		id, err := parseID(record[idCol])
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", row, err)
		}
		entry := Entry{ID: id, Title: record[titleCol]}
		for i, value := range record {
			if i == idCol || i == titleCol {
				continue
			}
			if entry.Fields == nil {
				entry.Fields = make(map[string]string, len(record)-2)
			}
			entry.Fields[header[i]] = value
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ReadJSON decodes either a list of records ([{"id":1,"title":"A"}, ...]) or
// a column-oriented object ({"id":{"0":1}, "title":{"0":"A"}}) whose row
// keys are integer positions.
func ReadJSON(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("json document is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	switch trimmed[0] {
	case '[':
		var records []map[string]any
		if err := decoder.Decode(&records); err != nil {
			return nil, fmt.Errorf("decode json records: %w", err)
		}
		return entriesFromRecords(records)
	case '{':
		var columns map[string]map[string]any
		if err := decoder.Decode(&columns); err != nil {
			return nil, fmt.Errorf("decode json columns: %w", err)
		}
		records, err := recordsFromColumns(columns)
		if err != nil {
			return nil, err
		}
		return entriesFromRecords(records)
	default:
		return nil, fmt.Errorf("json document must be an array or object, got %q", trimmed[0])
	}
}

func recordsFromColumns(columns map[string]map[string]any) ([]map[string]any, error) {
	// Row keys are looked up verbatim in every column, so only canonical
	// integers ("1", not "01") are accepted.
	rowKeys := map[int]string{}
	for name, values := range columns {
		for key := range values {
			pos, err := strconv.Atoi(key)
			if err != nil || pos < 0 || strconv.Itoa(pos) != key {
				return nil, fmt.Errorf("column %q: row key %q is not a non-negative integer", name, key)
			}
			rowKeys[pos] = key
		}
	}
	positions := make([]int, 0, len(rowKeys))
	for pos := range rowKeys {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	records := make([]map[string]any, 0, len(positions))
	for _, pos := range positions {
		key := rowKeys[pos]
		record := make(map[string]any, len(columns))
		for name, values := range columns {
			if value, ok := values[key]; ok {
				record[name] = value
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func entriesFromRecords(records []map[string]any) ([]Entry, error) {
	entries := make([]Entry, 0, len(records))
	for row, raw := range records {
		record := make(map[string]any, len(raw))
		for key, value := range raw {
			record[strings.ToLower(strings.TrimSpace(key))] = value
		}

		idCol, ok := findIDColumn(record)
		if !ok {
			return nil, fmt.Errorf("record %d has no id", row)
		}
		id, err := parseID(record[idCol])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", row, err)
		}
		title, ok := record[titleColumn].(string)
		if !ok {
			return nil, fmt.Errorf("record %d: title missing or not a string", row)
		}

		entry := Entry{ID: id, Title: title}
		for key, value := range record {
			if key == idCol || key == titleColumn || value == nil {
				continue
			}
			if entry.Fields == nil {
				entry.Fields = make(map[string]string, len(record))
			}
			entry.Fields[key] = fieldString(value)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func findIDColumn[V any](columns map[string]V) (string, bool) {
	for _, name := range idColumns {
		if _, ok := columns[name]; ok {
			return name, true
		}
	}
	return "", false
}

// parseID accepts integers encoded as strings, JSON numbers, or floats with no
// fractional part (pandas exports integer columns as 1.0 when NaNs exist).
func parseID(value any) (int64, error) {
	switch v := value.(type) {
	case json.Number:
		if id, err := v.Int64(); err == nil {
			return id, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("id %q is not a number", v.String())
		}
		return integralID(f)
	case string:
		s := strings.TrimSpace(v)
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			return id, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("id %q is not a number", v)
		}
		return integralID(f)
	case float64:
		return integralID(v)
	default:
		return 0, fmt.Errorf("id has unsupported type %T", value)
	}
}

func integralID(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("id %v is not an integer", f)
	}
	return int64(f), nil
}

func fieldString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}
