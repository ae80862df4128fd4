package adjudication

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/adjudicate/internal/labels"
)

var fixedTime = time.Date(2026, 10, 17, 9, 30, 15, 500, time.Local)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	n := 0
	s := NewSession(
		WithClock(func() time.Time { return fixedTime }),
		WithIDGenerator(func() string {
			n++
			return "session-" + string(rune('0'+n))
		}),
	)
	return s
}

func loadedSession(t *testing.T) *Session {
	t.Helper()
	s := newTestSession(t)
	if _, err := s.Load("sample.json", []byte(sampleJSON)); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func TestLoadPopulatesFreshSession(t *testing.T) {
	s := newTestSession(t)
	n, err := s.Load("sample.json", []byte(sampleJSON))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n != 3 || s.Len() != 3 {
		t.Fatalf("expected 3 records, got n=%d len=%d", n, s.Len())
	}
	if s.Cursor() != 0 {
		t.Fatalf("cursor = %d, want 0", s.Cursor())
	}
	if len(s.Decisions()) != 0 {
		t.Fatalf("expected no decisions")
	}
	if s.Source() != "sample.json" {
		t.Fatalf("source = %q", s.Source())
	}
	for i, r := range s.Records() {
		if r.Index() != i {
			t.Fatalf("record %d has index %d", i, r.Index())
		}
	}
}

func TestFailedLoadLeavesSessionUntouched(t *testing.T) {
	s := loadedSession(t)
	s.Advance(Forward)
	s.AdjudicateCurrent(Choices{}, "")
	before := s.Summary()

	_, err := s.Load("bad.json", []byte(`[{"Tweet": "x"}]`))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	_, err = s.Load("bad.json", []byte(`nope`))
	var mErr *MalformedInputError
	if !errors.As(err, &mErr) {
		t.Fatalf("expected MalformedInputError, got %v", err)
	}
	if after := s.Summary(); !reflect.DeepEqual(before, after) {
		t.Fatalf("session changed after failed load:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestAdvanceClampsAtBoundaries(t *testing.T) {
	s := loadedSession(t)
	if got := s.Advance(Backward); got != 0 {
		t.Fatalf("backward at 0 = %d", got)
	}
	s.Advance(Forward)
	s.Advance(Forward)
	if got := s.Advance(Forward); got != 2 {
		t.Fatalf("forward at last = %d, want 2", got)
	}
	if got := s.Advance(Backward); got != 1 {
		t.Fatalf("backward = %d, want 1", got)
	}
}

func TestAdvanceOnEmptySession(t *testing.T) {
	s := newTestSession(t)
	if got := s.Advance(Forward); got != 0 {
		t.Fatalf("forward on empty = %d", got)
	}
	if got := s.Advance(Backward); got != 0 {
		t.Fatalf("backward on empty = %d", got)
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("empty session has no current record")
	}
	if s.Done() {
		t.Fatalf("never-loaded session is not done")
	}
}

func TestAdjudicateResolvesChoicesAndAdvances(t *testing.T) {
	s := loadedSession(t)
	rec, _ := s.Current()
	choices := Choices{Labels: map[labels.Dimension]Choice{
		labels.Emotion:    FromA(),
		labels.Sentiment:  FromB(),
		labels.HateSpeech: Custom("False"),
	}}
	d := s.Adjudicate(rec, choices, "looks fine")
	if got := d.FinalLabel(labels.Emotion); got != "Anger" {
		t.Fatalf("final emotion = %q, want Anger", got)
	}
	if got := d.FinalLabel(labels.Sentiment); got != "Negative" {
		t.Fatalf("final sentiment = %q", got)
	}
	if got := d.FinalLabel(labels.HateSpeech); got != "False" {
		t.Fatalf("final hate speech = %q", got)
	}
	if got := d.FinalLabel(labels.Cyberbully); got != "False" {
		t.Fatalf("missing choice should default to annotator A, got %q", got)
	}
	if d.Reasoning != "shared one" {
		t.Fatalf("reasoning should default to shared, got %q", d.Reasoning)
	}
	if d.Status != StatusAdjudicated || d.Notes != "looks fine" {
		t.Fatalf("unexpected decision %+v", d)
	}
	if !d.Timestamp.Equal(fixedTime.Truncate(time.Second)) {
		t.Fatalf("timestamp = %v", d.Timestamp)
	}
	if s.Cursor() != 1 || len(s.Decisions()) != 1 {
		t.Fatalf("cursor=%d decisions=%d", s.Cursor(), len(s.Decisions()))
	}
}

func TestAdjudicateReachesTerminalPosition(t *testing.T) {
	s := loadedSession(t)
	for i := 0; i < 3; i++ {
		if _, err := s.AdjudicateCurrent(Choices{}, ""); err != nil {
			t.Fatalf("adjudicate %d: %v", i, err)
		}
	}
	if s.Cursor() != 3 || !s.Done() {
		t.Fatalf("expected terminal cursor 3, got %d", s.Cursor())
	}
	if _, err := s.AdjudicateCurrent(Choices{}, ""); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("expected ErrNoRecord, got %v", err)
	}
	rec := s.Records()[0]
	s.Adjudicate(rec, Choices{}, "second look")
	if s.Cursor() != 3 {
		t.Fatalf("cursor must clamp at 3, got %d", s.Cursor())
	}
	if len(s.Decisions()) != 4 {
		t.Fatalf("decisions = %d, want 4", len(s.Decisions()))
	}
	if got := s.Advance(Forward); got != 3 {
		t.Fatalf("forward at terminal = %d", got)
	}
	if got := s.Advance(Backward); got != 2 {
		t.Fatalf("backward from terminal = %d", got)
	}
}

func TestAdjudicateIsIndependentOfRecordOrder(t *testing.T) {
	s := loadedSession(t)
	records := s.Records()
	s.Adjudicate(records[2], Choices{}, "")
	if s.Cursor() != 1 {
		t.Fatalf("cursor = %d, want 1", s.Cursor())
	}
	decisions := s.Decisions()
	if decisions[0].RecordIndex() != 2 {
		t.Fatalf("decision should reference record 2, got %d", decisions[0].RecordIndex())
	}
	if !s.IsAdjudicated(2) || s.IsAdjudicated(0) {
		t.Fatalf("IsAdjudicated mismatch")
	}
}

func TestSkipTracksIndicesWithoutDecisions(t *testing.T) {
	s := loadedSession(t)
	if got := s.Skip(); got != 1 {
		t.Fatalf("skip = %d, want 1", got)
	}
	s.Skip()
	if len(s.Decisions()) != 0 {
		t.Fatalf("skip must not produce decisions")
	}
	if got := s.Skipped(); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("skipped = %v", got)
	}
	s.Advance(Backward)
	s.AdjudicateCurrent(Choices{}, "")
	if s.IsSkipped(1) {
		t.Fatalf("adjudicating clears the skip mark")
	}
	if s.Summary().Skipped != 1 {
		t.Fatalf("summary skipped = %d", s.Summary().Skipped)
	}
}

func TestSkipOnLastRecordMarksNothing(t *testing.T) {
	s := loadedSession(t)
	s.Advance(Forward)
	s.Advance(Forward)
	if got := s.Skip(); got != 2 {
		t.Fatalf("skip at last = %d, want 2", got)
	}
	if s.IsSkipped(2) || len(s.Skipped()) != 0 {
		t.Fatalf("record the operator never left is marked skipped: %v", s.Skipped())
	}
}

func TestReasoningChoices(t *testing.T) {
	data := `[{"Tweet":"t","Annotator A Emotion":"Fear","Annotator A Sentiment":"Neutral","Annotator A Hate Speech":"False","Annotator A Cyberbully":"False","reasoning":"shared","Annotator B Emotion":"Fear","Annotator B Sentiment":"Neutral","Annotator B Hate Speech":"False","Annotator B Cyberbully":"False","Annotator A Reasoning":"from a","Annotator B Reasoning":"from b"}]`
	s := newTestSession(t)
	if _, err := s.Load("r.json", []byte(data)); err != nil {
		t.Fatalf("load: %v", err)
	}
	rec, _ := s.Current()
	if !rec.HasAnnotatorReasoning() {
		t.Fatalf("expected per-annotator reasoning")
	}
	tests := []struct {
		choice Choice
		want   string
	}{
		{Choice{}, "shared"},
		{Shared(), "shared"},
		{FromA(), "from a"},
		{FromB(), "from b"},
		{Custom("mine"), "mine"},
	}
	for _, tt := range tests {
		if got := ResolveReasoning(rec, tt.choice); got != tt.want {
			t.Errorf("ResolveReasoning(%+v) = %q, want %q", tt.choice, got, tt.want)
		}
	}

	plain := loadedSession(t)
	rec, _ = plain.Current()
	if got := ResolveReasoning(rec, FromB()); got != "shared one" {
		t.Fatalf("without per-annotator columns B falls back to shared, got %q", got)
	}
}

func TestLoadOverExistingTableKeepsDecisions(t *testing.T) {
	s := loadedSession(t)
	s.AdjudicateCurrent(Choices{}, "")
	s.Skip()
	if _, err := s.Load("sample.json", []byte(sampleJSON)); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if s.Cursor() != 0 || len(s.Skipped()) != 0 {
		t.Fatalf("reload should reset cursor and skips")
	}
	if len(s.Decisions()) != 1 {
		t.Fatalf("reload must keep decisions, got %d", len(s.Decisions()))
	}
}

func TestReloadScopesProgressToNewTable(t *testing.T) {
	s := loadedSession(t)
	if _, err := s.AdjudicateCurrent(Choices{}, ""); err != nil {
		t.Fatalf("adjudicate: %v", err)
	}
	if _, err := s.Load("other.json", []byte(sampleJSON)); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if s.IsAdjudicated(0) {
		t.Fatalf("decision from the earlier file marks record 0 of the new one")
	}
	sum := s.Summary()
	if sum.Adjudicated != 0 || sum.Remaining != 3 || sum.Total != 3 {
		t.Fatalf("summary mixes tables: %+v", sum)
	}
	if sum.Decisions != 1 || len(s.CurrentDecisions()) != 0 {
		t.Fatalf("decisions = %d, current = %d", sum.Decisions, len(s.CurrentDecisions()))
	}
	out, err := s.Export(FormatJSON)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(out), `"final_emotion": "Anger"`) {
		t.Fatalf("export should keep the earlier decision:\n%s", out)
	}

	s.AdjudicateCurrent(Choices{}, "")
	if !s.IsAdjudicated(0) || s.Summary().Adjudicated != 1 {
		t.Fatalf("new decision not counted: %+v", s.Summary())
	}
}

func TestResetMatchesFreshSession(t *testing.T) {
	s := loadedSession(t)
	firstID := s.ID()
	s.AdjudicateCurrent(Choices{}, "")
	s.Skip()
	s.Reset()

	if s.ID() == firstID {
		t.Fatalf("reset should mint a new session id")
	}
	if s.Loaded() || s.Len() != 0 || s.Cursor() != 0 || len(s.Decisions()) != 0 || len(s.Skipped()) != 0 {
		t.Fatalf("reset left state behind: %+v", s.Summary())
	}
	if got := s.Advance(Forward); got != 0 {
		t.Fatalf("advance after reset = %d", got)
	}
	fresh := newTestSession(t)
	for _, format := range Formats {
		got, err := s.Export(format)
		if err != nil {
			t.Fatalf("export %s: %v", format, err)
		}
		want, _ := fresh.Export(format)
		if string(got) != string(want) {
			t.Fatalf("export %s after reset = %q, want %q", format, got, want)
		}
	}
}

func TestSummary(t *testing.T) {
	s := loadedSession(t)
	s.AdjudicateCurrent(Choices{}, "")
	sum := s.Summary()
	if sum.Total != 3 || sum.Adjudicated != 1 || sum.Remaining != 2 {
		t.Fatalf("unexpected counts %+v", sum)
	}
	if sum.Agreement[labels.Emotion] != 1 {
		t.Fatalf("emotion agreement = %d, want 1", sum.Agreement[labels.Emotion])
	}
	if sum.Agreement[labels.Sentiment] != 3 {
		t.Fatalf("sentiment agreement = %d, want 3", sum.Agreement[labels.Sentiment])
	}
	if sum.Agreement[labels.HateSpeech] != 2 {
		t.Fatalf("hate speech agreement = %d, want 2", sum.Agreement[labels.HateSpeech])
	}
	if sum.FullAgreement != 1 {
		t.Fatalf("full agreement = %d, want 1", sum.FullAgreement)
	}
	if p := sum.Progress(); p < 0.33 || p > 0.34 {
		t.Fatalf("progress = %f", p)
	}
	if sum.SessionID != s.ID() {
		t.Fatalf("summary session id mismatch")
	}
}
