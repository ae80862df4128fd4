package adjudication

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Format selects an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Formats lists every supported export format.
var Formats = []Format{FormatCSV, FormatJSON}

// ParseFormat accepts "csv" or "json" in any case.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("adjudication: unknown export format %q", value)
	}
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string { return string(f) }

// ExportTimestampLayout renders the timestamp embedded in export file names.
const ExportTimestampLayout = "20060102_150405"

// ExportFileName returns adjudicated_data_<YYYYMMDD_HHMMSS>.<ext>.
func ExportFileName(format Format, at time.Time) string {
	return fmt.Sprintf("adjudicated_data_%s.%s", at.Format(ExportTimestampLayout), format.Extension())
}

// Export serializes decisions in order. An empty list yields an empty CSV or
// an empty JSON array.
func Export(decisions []Decision, format Format) ([]byte, error) {
	rows := make([]Fields, len(decisions))
	for i, d := range decisions {
		rows[i] = d.Fields()
	}
	switch format {
	case FormatCSV:
		return encodeCSV(rows)
	case FormatJSON:
		return encodeJSON(rows)
	default:
		return nil, fmt.Errorf("adjudication: unknown export format %q", format)
	}
}

func headerOf(rows []Fields) []string {
	var t Table
	for _, row := range rows {
		t.addRow(row)
	}
	return t.Columns
}

func encodeCSV(rows []Fields) ([]byte, error) {
	var buf bytes.Buffer
	if len(rows) == 0 {
		return buf.Bytes(), nil
	}
	header := headerOf(rows)
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("adjudication: write csv header: %w", err)
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, col := range header {
			record[i] = row.Value(col)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("adjudication: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("adjudication: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// encodeJSON writes an array of objects with two-space indentation. Keys keep
// row order, and non-ASCII or HTML characters are written literally.
func encodeJSON(rows []Fields) ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('[')
	for i, row := range rows {
		if i > 0 {
			compact.WriteByte(',')
		}
		compact.WriteByte('{')
		for j, field := range row {
			if j > 0 {
				compact.WriteByte(',')
			}
			if err := writeJSONString(&compact, field.Key); err != nil {
				return nil, err
			}
			compact.WriteByte(':')
			if err := writeJSONString(&compact, field.Value); err != nil {
				return nil, err
			}
		}
		compact.WriteByte('}')
	}
	compact.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("adjudication: indent json: %w", err)
	}
	return out.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, value string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("adjudication: encode json string: %w", err)
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
