// Package artifact writes the files an adjudication session leaves behind:
// the decision exports and a summary document carrying YAML frontmatter.
package artifact

import (
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/adjudicate/internal/adjudication"
)

// Kind captures the storage shape of an artifact.
type Kind string

const (
	// KindCSV is a decision export in CSV.
	KindCSV Kind = "csv"
	// KindJSON is a decision export as a JSON array.
	KindJSON Kind = "json"
	// KindSummary is a markdown document with YAML frontmatter.
	KindSummary Kind = "summary"
)

// KindFor maps an export format to its artifact kind.
func KindFor(format adjudication.Format) Kind {
	switch format {
	case adjudication.FormatJSON:
		return KindJSON
	default:
		return KindCSV
	}
}

// SummaryTimestampLayout matches the export file name timestamp.
const SummaryTimestampLayout = adjudication.ExportTimestampLayout

// SummaryFileName returns adjudication_summary_<YYYYMMDD_HHMMSS>.md.
func SummaryFileName(at time.Time) string {
	return fmt.Sprintf("adjudication_summary_%s.md", at.Format(SummaryTimestampLayout))
}

// Written describes one file the store produced.
type Written struct {
	Kind     Kind
	Path     string
	Bytes    int
	Checksum string
}

// Metadata is the provenance block stored in a summary's frontmatter.
type Metadata struct {
	SessionID   string
	Source      string
	Adjudicator string
	CreatedAt   time.Time
	Total       int
	// Adjudicated is the number of decisions in the exports, which may include
	// decisions made against an earlier file in the same session.
	Adjudicated int
	Skipped     int
	Exports     map[string]string
}

// Validate ensures the metadata can be written.
func (m Metadata) Validate() error {
	if strings.TrimSpace(m.SessionID) == "" {
		return fmt.Errorf("artifact: session id is required")
	}
	if m.CreatedAt.IsZero() {
		return fmt.Errorf("artifact: created timestamp is required")
	}
	if m.Adjudicated < 0 || m.Total < 0 || m.Skipped < 0 {
		return fmt.Errorf("artifact: counts must not be negative")
	}
	return nil
}

// State captures the readiness of an artifact on disk.
type State string

const (
	StateMissing State = "missing"
	StateReady   State = "ready"
	StateInvalid State = "invalid"
	StateError   State = "error"
)

// CheckResult captures Store.CheckSummary results.
type CheckResult struct {
	Path     string
	State    State
	Metadata *Metadata
	Err      error
}
