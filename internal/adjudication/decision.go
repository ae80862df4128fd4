package adjudication

import (
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/adjudicate/internal/labels"
)

// Source says where a final value comes from.
type Source string

const (
	// SourceDefault resolves to SourceA for labels and SourceShared for
	// reasoning.
	SourceDefault Source = ""
	SourceA       Source = "A"
	SourceB       Source = "B"
	SourceCustom  Source = "custom"
	// SourceShared takes the record's shared reasoning cell. Only meaningful
	// for reasoning.
	SourceShared Source = "shared"
)

// ParseSource accepts "A", "B", "custom" or "shared" in any case.
func ParseSource(value string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return SourceDefault, nil
	case "a", "annotator a":
		return SourceA, nil
	case "b", "annotator b":
		return SourceB, nil
	case "custom":
		return SourceCustom, nil
	case "shared":
		return SourceShared, nil
	default:
		return "", fmt.Errorf("adjudication: unknown source %q", value)
	}
}

// Choice picks a final value for one dimension. Value is read only when
// Source is SourceCustom.
type Choice struct {
	Source Source
	Value  string
}

// FromA picks annotator A's value.
func FromA() Choice { return Choice{Source: SourceA} }

// FromB picks annotator B's value.
func FromB() Choice { return Choice{Source: SourceB} }

// Custom overrides both annotators with value.
func Custom(value string) Choice { return Choice{Source: SourceCustom, Value: value} }

// Shared picks the shared reasoning cell.
func Shared() Choice { return Choice{Source: SourceShared} }

// Choices carries the operator's pick for every dimension plus reasoning.
// Missing dimensions resolve to annotator A; a zero Reasoning resolves to the
// shared reasoning cell.
type Choices struct {
	Labels    map[labels.Dimension]Choice
	Reasoning Choice
}

// Label returns the choice for d.
func (c Choices) Label(d labels.Dimension) Choice {
	if c.Labels == nil {
		return Choice{}
	}
	return c.Labels[d]
}

// With returns a copy of c with d set to choice.
func (c Choices) With(d labels.Dimension, choice Choice) Choices {
	next := Choices{Labels: make(map[labels.Dimension]Choice, len(c.Labels)+1), Reasoning: c.Reasoning}
	for k, v := range c.Labels {
		next.Labels[k] = v
	}
	next.Labels[d] = choice
	return next
}

// ResolveLabel applies choice to record r for dimension d.
func ResolveLabel(r Record, d labels.Dimension, choice Choice) string {
	switch choice.Source {
	case SourceB:
		return r.Label(AnnotatorB, d)
	case SourceCustom:
		return choice.Value
	default:
		return r.Label(AnnotatorA, d)
	}
}

// ResolveReasoning applies choice to the reasoning of record r.
func ResolveReasoning(r Record, choice Choice) string {
	switch choice.Source {
	case SourceA:
		return r.AnnotatorReasoning(AnnotatorA)
	case SourceB:
		return r.AnnotatorReasoning(AnnotatorB)
	case SourceCustom:
		return choice.Value
	default:
		return r.Reasoning()
	}
}

// Output columns appended to every decision.
const (
	ColumnFinalEmotion    = "final_emotion"
	ColumnFinalSentiment  = "final_sentiment"
	ColumnFinalHateSpeech = "final_hate_speech"
	ColumnFinalCyberbully = "final_cyberbully"
	ColumnFinalReasoning  = "final_reasoning"
	ColumnNotes           = "adjudicator_notes"
	ColumnTimestamp       = "adjudication_timestamp"
	ColumnStatus          = "status"

	// StatusAdjudicated is the only status a decision carries.
	StatusAdjudicated = "adjudicated"

	// TimestampLayout renders adjudication_timestamp with second precision.
	TimestampLayout = "2006-01-02 15:04:05"
)

// FinalColumn returns the output column for d.
func FinalColumn(d labels.Dimension) string {
	return "final_" + string(d)
}

// Decision is the result of adjudicating one record. It is never mutated
// after being appended to a session.
type Decision struct {
	Record    Record
	Final     map[labels.Dimension]string
	Reasoning string
	Notes     string
	Timestamp time.Time
	Status    string
}

// RecordIndex is the position of the adjudicated record in its table.
func (d Decision) RecordIndex() int { return d.Record.Index() }

// FinalLabel returns the chosen value for dim.
func (d Decision) FinalLabel(dim labels.Dimension) string { return d.Final[dim] }

// Fields renders the decision as the record's cells followed by the final
// columns. A record cell sharing a name with an output column is overwritten
// in place.
func (d Decision) Fields() Fields {
	fields := d.Record.Fields()
	for _, dim := range labels.Dimensions {
		fields = fields.Set(FinalColumn(dim), d.Final[dim])
	}
	fields = fields.Set(ColumnFinalReasoning, d.Reasoning)
	fields = fields.Set(ColumnNotes, d.Notes)
	fields = fields.Set(ColumnTimestamp, d.Timestamp.Format(TimestampLayout))
	fields = fields.Set(ColumnStatus, d.Status)
	return fields
}

// Resolve builds a decision for record r from the operator's choices.
func Resolve(r Record, choices Choices, notes string, at time.Time) Decision {
	final := make(map[labels.Dimension]string, len(labels.Dimensions))
	for _, dim := range labels.Dimensions {
		final[dim] = ResolveLabel(r, dim, choices.Label(dim))
	}
	return Decision{
		Record:    r,
		Final:     final,
		Reasoning: ResolveReasoning(r, choices.Reasoning),
		Notes:     notes,
		Timestamp: at.Truncate(time.Second),
		Status:    StatusAdjudicated,
	}
}
