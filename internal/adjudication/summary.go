package adjudication

import (
	"strings"

	"github.com/kingrea/adjudicate/internal/labels"
)

// Comparison lines up both annotators' labels for one dimension.
type Comparison struct {
	Dimension labels.Dimension
	A         string
	B         string
	Agree     bool
}

// Compare returns one comparison per dimension in display order. Labels are
// compared as text after trimming surrounding whitespace.
func Compare(r Record) []Comparison {
	out := make([]Comparison, 0, len(labels.Dimensions))
	for _, d := range labels.Dimensions {
		a := r.Label(AnnotatorA, d)
		b := r.Label(AnnotatorB, d)
		out = append(out, Comparison{
			Dimension: d,
			A:         a,
			B:         b,
			Agree:     strings.TrimSpace(a) == strings.TrimSpace(b),
		})
	}
	return out
}

// FullAgreement reports whether annotators agree on every dimension.
func FullAgreement(r Record) bool {
	for _, c := range Compare(r) {
		if !c.Agree {
			return false
		}
	}
	return true
}

// Summary reports progress and annotator agreement for a session.
type Summary struct {
	SessionID   string
	Source      string
	Total       int
	Adjudicated int
	Remaining   int
	Skipped     int
	Cursor      int
	// Decisions counts every decision the session would export, including
	// those made against an earlier file.
	Decisions int
	// Agreement counts, per dimension, the records where A and B match.
	Agreement map[labels.Dimension]int
	// FullAgreement counts records where A and B match on every dimension.
	FullAgreement int
}

// Progress is adjudicated decisions over total records, capped at 1.
func (s Summary) Progress() float64 {
	if s.Total == 0 {
		return 0
	}
	p := float64(s.Adjudicated) / float64(s.Total)
	if p > 1 {
		return 1
	}
	return p
}

// AgreementRate returns the share of records where both annotators agree on d.
func (s Summary) AgreementRate(d labels.Dimension) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Agreement[d]) / float64(s.Total)
}

// Summarize computes a summary over records and decisions.
func Summarize(records []Record, decisions []Decision) Summary {
	sum := Summary{
		Total:       len(records),
		Adjudicated: len(decisions),
		Agreement:   make(map[labels.Dimension]int, len(labels.Dimensions)),
	}
	for _, d := range labels.Dimensions {
		sum.Agreement[d] = 0
	}
	for _, r := range records {
		all := true
		for _, c := range Compare(r) {
			if c.Agree {
				sum.Agreement[c.Dimension]++
			} else {
				all = false
			}
		}
		if all {
			sum.FullAgreement++
		}
	}
	sum.Remaining = sum.Total - sum.Adjudicated
	if sum.Remaining < 0 {
		sum.Remaining = 0
	}
	return sum
}

// Summary reports progress through the loaded table. Adjudicated and
// Remaining only count decisions made against that table.
func (s *Session) Summary() Summary {
	sum := Summarize(s.records, s.CurrentDecisions())
	sum.Decisions = len(s.decisions)
	sum.SessionID = s.id
	sum.Source = s.source
	sum.Skipped = len(s.skipped)
	sum.Cursor = s.cursor
	return sum
}
