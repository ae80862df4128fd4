package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kingrea/adjudicate/internal/adjudication"
	"github.com/kingrea/adjudicate/internal/labels"
)

// Store manages artifact IO rooted at the export directory.
type Store struct {
	dir string
	now func() time.Time
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithClock overrides the clock used for file names and metadata timestamps.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = clock
	}
}

// NewStore builds a store writing into dir.
func NewStore(dir string, opts ...StoreOption) *Store {
	store := &Store{
		dir: dir,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Dir returns the export directory.
func (s *Store) Dir() string { return s.dir }

// ExportRequest describes one export run.
type ExportRequest struct {
	Formats     []adjudication.Format
	Adjudicator string
	// Summary also writes an adjudication_summary document next to the exports.
	Summary bool
}

// Export writes every requested format for the session, all stamped with the
// same timestamp, and optionally a summary listing their checksums. Either
// every file is written or, on error, the ones already written are removed.
func (s *Store) Export(session *adjudication.Session, req ExportRequest) (written []Written, err error) {
	if session == nil {
		return nil, fmt.Errorf("artifact: session is required")
	}
	if len(req.Formats) == 0 {
		return nil, fmt.Errorf("artifact: at least one export format is required")
	}
	defer func() {
		if err != nil {
			s.discard(written)
			written = nil
		}
	}()
	at := s.now()
	digests := map[string]string{}
	for _, format := range req.Formats {
		data, err := session.Export(format)
		if err != nil {
			return written, err
		}
		path := filepath.Join(s.dir, adjudication.ExportFileName(format, at))
		w, err := s.write(path, KindFor(format), data)
		if err != nil {
			return written, err
		}
		written = append(written, w)
		digests[filepath.Base(path)] = w.Checksum
	}
	if !req.Summary {
		return written, nil
	}
	sum := session.Summary()
	meta := Metadata{
		SessionID:   sum.SessionID,
		Source:      sum.Source,
		Adjudicator: strings.TrimSpace(req.Adjudicator),
		CreatedAt:   at,
		Total:       sum.Total,
		Adjudicated: sum.Decisions,
		Skipped:     sum.Skipped,
		Exports:     digests,
	}
	content, err := WriteFrontMatter(meta, renderSummaryBody(sum))
	if err != nil {
		return written, err
	}
	w, err := s.write(filepath.Join(s.dir, SummaryFileName(at)), KindSummary, content)
	if err != nil {
		return written, err
	}
	return append(written, w), nil
}

func (s *Store) discard(written []Written) {
	for _, w := range written {
		_ = os.Remove(w.Path)
	}
}

func (s *Store) write(path string, kind Kind, data []byte) (Written, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Written{}, fmt.Errorf("artifact: ensure export dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Written{}, fmt.Errorf("artifact: write %s: %w", filepath.Base(path), err)
	}
	sum := sha256.Sum256(data)
	return Written{Kind: kind, Path: path, Bytes: len(data), Checksum: hex.EncodeToString(sum[:])}, nil
}

// CheckSummary inspects a summary document on disk and returns its metadata.
// Export checksums recorded in the summary are verified against the files
// still present beside it.
func (s *Store) CheckSummary(path string) (CheckResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CheckResult{Path: path, State: StateMissing}, nil
		}
		return CheckResult{Path: path, State: StateError, Err: err}, err
	}
	meta, _, err := ParseFrontMatter(data)
	if err != nil {
		return invalidResult(path, err)
	}
	for file, want := range meta.Exports {
		exported, readErr := os.ReadFile(filepath.Join(filepath.Dir(path), file))
		if readErr != nil {
			return invalidResult(path, fmt.Errorf("artifact: export %s unreadable: %w", file, readErr))
		}
		got := sha256.Sum256(exported)
		if hex.EncodeToString(got[:]) != want {
			return invalidResult(path, fmt.Errorf("artifact: export %s checksum mismatch", file))
		}
	}
	return CheckResult{Path: path, State: StateReady, Metadata: &meta}, nil
}

// List returns the export and summary files already in the directory, oldest
// name first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "adjudicated_data_") || strings.HasPrefix(name, "adjudication_summary_") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func invalidResult(path string, err error) (CheckResult, error) {
	return CheckResult{Path: path, State: StateInvalid, Err: err}, err
}

func renderSummaryBody(sum adjudication.Summary) []byte {
	var b strings.Builder
	b.WriteString("# Adjudication Summary\n\n")
	fmt.Fprintf(&b, "- Total records: %d\n", sum.Total)
	fmt.Fprintf(&b, "- Adjudicated: %d\n", sum.Adjudicated)
	fmt.Fprintf(&b, "- Remaining: %d\n", sum.Remaining)
	fmt.Fprintf(&b, "- Skipped: %d\n", sum.Skipped)
	fmt.Fprintf(&b, "- Progress: %.1f%%\n\n", sum.Progress()*100)
	b.WriteString("## Annotator Agreement\n\n")
	b.WriteString("| Label | Agree | Rate |\n|---|---|---|\n")
	for _, d := range labels.Dimensions {
		fmt.Fprintf(&b, "| %s | %d/%d | %.1f%% |\n", d.FriendlyName(), sum.Agreement[d], sum.Total, sum.AgreementRate(d)*100)
	}
	fmt.Fprintf(&b, "\nFull agreement on %d of %d records.\n", sum.FullAgreement, sum.Total)
	return []byte(b.String())
}
