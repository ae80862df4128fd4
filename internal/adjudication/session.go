package adjudication

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Direction moves the cursor.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Session owns the loaded records, the cursor over them, and the decisions
// made so far. The cursor stays within [0, len(records)]; len(records) means
// every record has been visited.
type Session struct {
	id        string
	source    string
	records   []Record
	cursor    int
	decisions []Decision
	skipped   map[int]struct{}
	now       func() time.Time
	newID     func() string

	// loads counts successful loads; records carry the count they were
	// loaded under so decisions from an earlier file can be told apart.
	loads int
}

// Option customizes a Session during construction.
type Option func(*Session)

// WithClock overrides the clock used for adjudication timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides how session identifiers are minted.
func WithIDGenerator(gen func() string) Option {
	return func(s *Session) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewSession returns an empty session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.id = s.newID()
	s.skipped = map[int]struct{}{}
	return s
}

// ID identifies the session in logs and summaries. Reset mints a new one.
func (s *Session) ID() string { return s.id }

// Source is the name of the last successfully loaded upload.
func (s *Session) Source() string { return s.source }

// Load parses, validates, and installs an upload. On any error the session is
// left exactly as it was. Loading over an existing table moves the cursor
// back to zero and forgets skips; decisions already made are kept, since only
// Reset discards them.
func (s *Session) Load(name string, data []byte) (int, error) {
	table, err := Parse(name, data)
	if err != nil {
		return 0, err
	}
	records, err := Validate(table)
	if err != nil {
		return 0, err
	}
	s.loads++
	for i := range records {
		records[i].load = s.loads
	}
	s.source = name
	s.records = records
	s.cursor = 0
	s.skipped = map[int]struct{}{}
	return len(records), nil
}

// Loaded reports whether a table has been installed.
func (s *Session) Loaded() bool { return s.records != nil }

// Len is the number of loaded records.
func (s *Session) Len() int { return len(s.records) }

// Records returns the loaded records.
func (s *Session) Records() []Record {
	return append([]Record(nil), s.records...)
}

// Cursor is the index of the record on display.
func (s *Session) Cursor() int { return s.cursor }

// Done reports whether the cursor is at the terminal position.
func (s *Session) Done() bool { return s.Loaded() && s.cursor >= len(s.records) }

// Current returns the record under the cursor.
func (s *Session) Current() (Record, bool) {
	if s.cursor < 0 || s.cursor >= len(s.records) {
		return Record{}, false
	}
	return s.records[s.cursor], true
}

// Advance moves the cursor one step. Moving backward from zero or forward
// from the last record is a no-op; there is no wraparound.
func (s *Session) Advance(dir Direction) int {
	switch dir {
	case Backward:
		if s.cursor > 0 {
			s.cursor--
		}
	case Forward:
		if s.cursor < len(s.records)-1 {
			s.cursor++
		}
	}
	return s.cursor
}

// Skip moves forward without recording a decision. The skipped index is
// remembered until the next Load or Reset. On the last record the cursor
// cannot move, so nothing is marked.
func (s *Session) Skip() int {
	from := s.cursor
	if to := s.Advance(Forward); to != from {
		s.skipped[from] = struct{}{}
	}
	return s.cursor
}

// Adjudicate appends a decision for r and advances the cursor by one, up to
// the terminal position. The cursor moves regardless of which record r is.
func (s *Session) Adjudicate(r Record, choices Choices, notes string) Decision {
	decision := Resolve(r, choices, notes, s.now())
	s.decisions = append(s.decisions, decision)
	delete(s.skipped, r.Index())
	if s.cursor < len(s.records) {
		s.cursor++
	}
	return decision
}

// AdjudicateCurrent adjudicates the record under the cursor.
func (s *Session) AdjudicateCurrent(choices Choices, notes string) (Decision, error) {
	r, ok := s.Current()
	if !ok {
		return Decision{}, ErrNoRecord
	}
	return s.Adjudicate(r, choices, notes), nil
}

// Decisions returns every decision in the order it was made.
func (s *Session) Decisions() []Decision {
	return append([]Decision(nil), s.decisions...)
}

// IsAdjudicated reports whether any decision exists for record index idx of
// the currently loaded table.
func (s *Session) IsAdjudicated(idx int) bool {
	for _, d := range s.decisions {
		if s.fromCurrentLoad(d) && d.RecordIndex() == idx {
			return true
		}
	}
	return false
}

// IsSkipped reports whether record index idx was skipped and not adjudicated
// since.
func (s *Session) IsSkipped(idx int) bool {
	_, ok := s.skipped[idx]
	return ok
}

// Skipped returns the skipped record indices in ascending order.
func (s *Session) Skipped() []int {
	out := make([]int, 0, len(s.skipped))
	for idx := range s.skipped {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// CurrentDecisions returns the decisions made against the currently loaded
// table. Decisions carried over from an earlier file are left out.
func (s *Session) CurrentDecisions() []Decision {
	var out []Decision
	for _, d := range s.decisions {
		if s.fromCurrentLoad(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s *Session) fromCurrentLoad(d Decision) bool {
	return s.Loaded() && d.Record.load == s.loads
}

// Reset discards records, cursor, skips, and decisions.
func (s *Session) Reset() {
	s.id = s.newID()
	s.source = ""
	s.records = nil
	s.cursor = 0
	s.decisions = nil
	s.skipped = map[int]struct{}{}
}

// Export serializes every decision in the requested format.
func (s *Session) Export(format Format) ([]byte, error) {
	return Export(s.decisions, format)
}
