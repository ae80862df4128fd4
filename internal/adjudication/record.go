package adjudication

import (
	"fmt"

	"github.com/kingrea/adjudicate/internal/labels"
)

// Annotator names one of the two prior label sources.
type Annotator string

const (
	AnnotatorA Annotator = "A"
	AnnotatorB Annotator = "B"
)

// Column names expected in uploaded tables.
const (
	ColumnTweet     = "Tweet"
	ColumnReasoning = "reasoning"
)

// LabelColumn returns the input column carrying annotator a's label for d,
// for example "Annotator A Hate Speech".
func LabelColumn(a Annotator, d labels.Dimension) string {
	return fmt.Sprintf("Annotator %s %s", a, d.FriendlyName())
}

// ReasoningColumn returns the optional per-annotator reasoning column.
func ReasoningColumn(a Annotator) string {
	return fmt.Sprintf("Annotator %s Reasoning", a)
}

// RequiredColumns lists the columns every uploaded table must carry, in the
// order they are reported when missing.
func RequiredColumns() []string {
	cols := []string{ColumnTweet}
	for _, d := range labels.Dimensions {
		cols = append(cols, LabelColumn(AnnotatorA, d))
	}
	cols = append(cols, ColumnReasoning)
	for _, d := range labels.Dimensions {
		cols = append(cols, LabelColumn(AnnotatorB, d))
	}
	return cols
}

// Field is one named cell of a row.
type Field struct {
	Key   string
	Value string
}

// Fields is an ordered row. Keys are unique.
type Fields []Field

// Get returns the value stored under key.
func (f Fields) Get(key string) (string, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return "", false
}

// Value returns the value stored under key or "".
func (f Fields) Value(key string) string {
	v, _ := f.Get(key)
	return v
}

// Keys returns the keys in order.
func (f Fields) Keys() []string {
	keys := make([]string, len(f))
	for i, field := range f {
		keys[i] = field.Key
	}
	return keys
}

// Set replaces the value of an existing key in place or appends a new one.
func (f Fields) Set(key, value string) Fields {
	for i := range f {
		if f[i].Key == key {
			f[i].Value = value
			return f
		}
	}
	return append(f, Field{Key: key, Value: value})
}

func (f Fields) clone() Fields {
	return append(Fields(nil), f...)
}

// Table is a parsed upload before validation. Columns is the union of every
// row's keys in first-seen order.
type Table struct {
	Columns []string
	Rows    []Fields
}

func (t *Table) addRow(row Fields) {
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		seen[c] = struct{}{}
	}
	for _, field := range row {
		if _, ok := seen[field.Key]; ok {
			continue
		}
		seen[field.Key] = struct{}{}
		t.Columns = append(t.Columns, field.Key)
	}
	t.Rows = append(t.Rows, row)
}

// Record is one loaded row. It is immutable once returned by Validate.
type Record struct {
	index  int
	load   int
	fields Fields
}

// Index is the zero-based position of the record in its table.
func (r Record) Index() int { return r.index }

// Fields returns a copy of every cell in column order.
func (r Record) Fields() Fields { return r.fields.clone() }

// Get returns a single cell.
func (r Record) Get(key string) string { return r.fields.Value(key) }

// Tweet returns the text under review.
func (r Record) Tweet() string { return r.fields.Value(ColumnTweet) }

// Reasoning returns the shared reasoning cell.
func (r Record) Reasoning() string { return r.fields.Value(ColumnReasoning) }

// Label returns annotator a's label for d.
func (r Record) Label(a Annotator, d labels.Dimension) string {
	return r.fields.Value(LabelColumn(a, d))
}

// AnnotatorReasoning returns annotator a's own reasoning when the table has a
// per-annotator column, and the shared reasoning otherwise.
func (r Record) AnnotatorReasoning(a Annotator) string {
	if v, ok := r.fields.Get(ReasoningColumn(a)); ok {
		return v
	}
	return r.Reasoning()
}

// HasAnnotatorReasoning reports whether both per-annotator reasoning columns
// are present.
func (r Record) HasAnnotatorReasoning() bool {
	_, okA := r.fields.Get(ReasoningColumn(AnnotatorA))
	_, okB := r.fields.Get(ReasoningColumn(AnnotatorB))
	return okA && okB
}

// Validate checks the table schema and converts rows into records. The check
// is over the table's columns, not individual rows; a row lacking a column
// that another row has reads as an empty cell.
func Validate(t Table) ([]Record, error) {
	present := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		present[c] = struct{}{}
	}
	var missing []string
	for _, col := range RequiredColumns() {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}
	records := make([]Record, len(t.Rows))
	for i, row := range t.Rows {
		fields := make(Fields, 0, len(t.Columns))
		for _, col := range t.Columns {
			fields = append(fields, Field{Key: col, Value: row.Value(col)})
		}
		records[i] = Record{index: i, fields: fields}
	}
	return records, nil
}
