package adjudication

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/adjudicate/internal/labels"
)

func adjudicatedSession(t *testing.T) *Session {
	t.Helper()
	s := loadedSession(t)
	records := s.Records()
	s.Adjudicate(records[0], Choices{}.With(labels.Emotion, FromB()), "ünïcødé note")
	s.Adjudicate(records[2], Choices{}.With(labels.Cyberbully, Custom("False")), "")
	return s
}

func TestExportFileName(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := ExportFileName(FormatCSV, at); got != "adjudicated_data_20260102_030405.csv" {
		t.Fatalf("csv file name = %q", got)
	}
	if got := ExportFileName(FormatJSON, at); got != "adjudicated_data_20260102_030405.json" {
		t.Fatalf("json file name = %q", got)
	}
}

func TestExportEmpty(t *testing.T) {
	csvData, err := Export(nil, FormatCSV)
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if len(csvData) != 0 {
		t.Fatalf("empty csv = %q", csvData)
	}
	jsonData, err := Export(nil, FormatJSON)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded []map[string]string
	if err := json.Unmarshal(jsonData, &decoded); err != nil {
		t.Fatalf("empty json must parse: %v (%q)", err, jsonData)
	}
	if len(decoded) != 0 {
		t.Fatalf("expected empty array")
	}
	if _, err := Export(nil, Format("xml")); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestExportJSONMatchesDecisions(t *testing.T) {
	s := adjudicatedSession(t)
	data, err := s.Export(FormatJSON)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.Contains(data, []byte("ünïcødé note")) || !bytes.Contains(data, []byte("✨")) {
		t.Fatalf("non-ASCII text must be written literally:\n%s", data)
	}
	if !bytes.Contains(data, []byte("<b>post</b>")) {
		t.Fatalf("HTML characters must not be escaped:\n%s", data)
	}
	if !bytes.HasPrefix(data, []byte("[\n  {\n    \"Tweet\": ")) {
		t.Fatalf("expected two-space indentation with record columns first:\n%s", data)
	}

	var decoded []map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	decisions := s.Decisions()
	if len(decoded) != len(decisions) {
		t.Fatalf("decoded %d objects, want %d", len(decoded), len(decisions))
	}
	for i, d := range decisions {
		fields := d.Fields()
		if len(decoded[i]) != len(fields) {
			t.Fatalf("object %d has %d keys, want %d", i, len(decoded[i]), len(fields))
		}
		for _, f := range fields {
			if decoded[i][f.Key] != f.Value {
				t.Fatalf("object %d key %q = %q, want %q", i, f.Key, decoded[i][f.Key], f.Value)
			}
		}
	}
	if decoded[0][ColumnFinalEmotion] != "Neutral" {
		t.Fatalf("final emotion = %q, want Neutral", decoded[0][ColumnFinalEmotion])
	}
	if decoded[0][ColumnTimestamp] != "2026-10-17 09:30:15" {
		t.Fatalf("timestamp = %q", decoded[0][ColumnTimestamp])
	}
	if decoded[1][ColumnStatus] != StatusAdjudicated {
		t.Fatalf("status = %q", decoded[1][ColumnStatus])
	}
}

func TestExportCSVMatchesJSON(t *testing.T) {
	s := adjudicatedSession(t)
	csvData, err := s.Export(FormatCSV)
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	jsonData, err := s.Export(FormatJSON)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(csvData)).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	var objects []map[string]string
	if err := json.Unmarshal(jsonData, &objects); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rows)-1 != len(objects) {
		t.Fatalf("csv rows = %d, json objects = %d", len(rows)-1, len(objects))
	}
	header := rows[0]
	if header[0] != "Tweet" || header[len(header)-1] != ColumnStatus {
		t.Fatalf("unexpected header %v", header)
	}
	for i, row := range rows[1:] {
		for j, col := range header {
			if row[j] != objects[i][col] {
				t.Fatalf("row %d col %q: csv %q json %q", i, col, row[j], objects[i][col])
			}
		}
	}
	if !strings.Contains(string(csvData), "\"third, with \"\"quotes\"\"\nand a newline\"") {
		t.Fatalf("embedded delimiters must be quoted:\n%s", csvData)
	}
}

func TestExportHeaderIsUnionInFirstSeenOrder(t *testing.T) {
	first := Decision{
		Record: Record{fields: Fields{{Key: "Tweet", Value: "a"}, {Key: "extra", Value: "1"}}},
		Final:  map[labels.Dimension]string{},
		Status: StatusAdjudicated,
	}
	second := Decision{
		Record: Record{fields: Fields{{Key: "Tweet", Value: "b"}, {Key: "later", Value: "2"}}},
		Final:  map[labels.Dimension]string{},
		Status: StatusAdjudicated,
	}
	data, err := Export([]Decision{first, second}, FormatCSV)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	header := rows[0]
	if header[1] != "extra" || header[len(header)-1] != "later" {
		t.Fatalf("header = %v", header)
	}
	if rows[1][len(header)-1] != "" || rows[2][1] != "" {
		t.Fatalf("absent cells should be empty: %v", rows)
	}
}

func TestDecisionFieldsOverwriteCollidingColumns(t *testing.T) {
	d := Decision{
		Record: Record{fields: Fields{{Key: "status", Value: "raw"}, {Key: "Tweet", Value: "x"}}},
		Final:  map[labels.Dimension]string{},
		Status: StatusAdjudicated,
	}
	fields := d.Fields()
	if fields[0].Key != "status" || fields[0].Value != StatusAdjudicated {
		t.Fatalf("status should be overwritten in place, got %+v", fields[0])
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" JSON "); err != nil || f != FormatJSON {
		t.Fatalf("ParseFormat(JSON) = %q, %v", f, err)
	}
	if _, err := ParseFormat("xlsx"); err == nil {
		t.Fatalf("expected error")
	}
}
