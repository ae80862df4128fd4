package adjudication

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// Parse decodes an upload into a Table. Names ending in ".csv" are read as a
// CSV with a header row; everything else is read as a JSON array of objects.
func Parse(name string, data []byte) (Table, error) {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return ParseCSV(name, data)
	}
	return ParseJSON(name, data)
}

// ParseJSON decodes a JSON array of flat objects, keeping the key order of
// each object so exports mirror the upload's column order.
func ParseJSON(name string, data []byte) (Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return Table{}, &MalformedInputError{Name: name, Err: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return Table{}, malformed(name, "expected a JSON array of objects")
	}

	var table Table
	for dec.More() {
		row, err := decodeRow(dec)
		if err != nil {
			return Table{}, &MalformedInputError{Name: name, Err: err}
		}
		table.addRow(row)
	}
	if _, err := dec.Token(); err != nil {
		return Table{}, &MalformedInputError{Name: name, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Table{}, malformed(name, "unexpected data after JSON array")
	}
	return table, nil
}

func decodeRow(dec *json.Decoder) (Fields, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected each array element to be an object")
	}
	var row Fields
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.New("expected object key")
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		cell, err := cellString(value)
		if err != nil {
			return nil, err
		}
		row = row.Set(key, cell)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return row, nil
}

// cellString renders a decoded JSON value as the text an operator sees.
// Booleans use the "True"/"False" spelling of the label option sets.
func cellString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		if v {
			return "True", nil
		}
		return "False", nil
	case json.Number:
		return v.String(), nil
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return "", err
		}
		return strings.TrimRight(buf.String(), "\n"), nil
	}
}

// ParseCSV decodes a CSV upload whose first row is the header.
func ParseCSV(name string, data []byte) (Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	rows, err := reader.ReadAll()
	if err != nil {
		return Table{}, &MalformedInputError{Name: name, Err: err}
	}
	if len(rows) == 0 {
		return Table{}, malformed(name, "no header row")
	}
	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	var table Table
	table.Columns = append(table.Columns, dedupe(header)...)
	for _, raw := range rows[1:] {
		row := make(Fields, 0, len(header))
		for i, key := range header {
			row = row.Set(key, raw[i])
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
