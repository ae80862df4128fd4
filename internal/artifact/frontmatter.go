package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("artifact: missing frontmatter")
	// ErrMalformedFrontMatter indicates the YAML block could not be parsed.
	ErrMalformedFrontMatter = errors.New("artifact: malformed frontmatter")
)

// ParseFrontMatter extracts the metadata block and body from a document that
// starts with `---` YAML fences.
func ParseFrontMatter(content []byte) (Metadata, []byte, error) {
	if len(content) == 0 {
		return Metadata{}, nil, ErrMissingFrontMatter
	}
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return Metadata{}, nil, ErrMissingFrontMatter
	}
	parts := bytes.SplitN(normalized[4:], []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return Metadata{}, nil, ErrMalformedFrontMatter
	}
	var envelope summaryEnvelope
	if err := yaml.Unmarshal(parts[0], &envelope); err != nil {
		return Metadata{}, nil, fmt.Errorf("artifact: parse frontmatter: %w", err)
	}
	meta, err := envelope.toMetadata()
	if err != nil {
		return Metadata{}, nil, err
	}
	return meta, parts[1], nil
}

// WriteFrontMatter renders metadata + body with YAML fences.
func WriteFrontMatter(meta Metadata, body []byte) ([]byte, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	var envelope summaryEnvelope
	envelope.fromMetadata(meta)
	data, err := yaml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("artifact: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(data, "\n"))
	buf.WriteString("\n---\n\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

type summaryEnvelope struct {
	Adjudication summaryMetadata `yaml:"adjudication"`
}

type summaryMetadata struct {
	Session     string         `yaml:"session"`
	Source      string         `yaml:"source,omitempty"`
	Adjudicator string         `yaml:"adjudicator,omitempty"`
	Created     string         `yaml:"created"`
	Total       int            `yaml:"total"`
	Adjudicated int            `yaml:"adjudicated"`
	Skipped     int            `yaml:"skipped"`
	Exports     []exportDigest `yaml:"exports,omitempty"`
}

type exportDigest struct {
	File   string `yaml:"file"`
	SHA256 string `yaml:"sha256"`
}

func (e summaryEnvelope) toMetadata() (Metadata, error) {
	if e.Adjudication.Session == "" {
		return Metadata{}, ErrMalformedFrontMatter
	}
	created, err := time.Parse(time.RFC3339, e.Adjudication.Created)
	if err != nil {
		return Metadata{}, fmt.Errorf("artifact: parse created timestamp: %w", err)
	}
	var exports map[string]string
	if len(e.Adjudication.Exports) > 0 {
		exports = make(map[string]string, len(e.Adjudication.Exports))
		for _, ex := range e.Adjudication.Exports {
			exports[ex.File] = ex.SHA256
		}
	}
	return Metadata{
		SessionID:   e.Adjudication.Session,
		Source:      e.Adjudication.Source,
		Adjudicator: e.Adjudication.Adjudicator,
		CreatedAt:   created.UTC(),
		Total:       e.Adjudication.Total,
		Adjudicated: e.Adjudication.Adjudicated,
		Skipped:     e.Adjudication.Skipped,
		Exports:     exports,
	}, nil
}

func (e *summaryEnvelope) fromMetadata(meta Metadata) {
	e.Adjudication = summaryMetadata{
		Session:     strings.TrimSpace(meta.SessionID),
		Source:      meta.Source,
		Adjudicator: meta.Adjudicator,
		Created:     meta.CreatedAt.UTC().Format(time.RFC3339),
		Total:       meta.Total,
		Adjudicated: meta.Adjudicated,
		Skipped:     meta.Skipped,
	}
	files := make([]string, 0, len(meta.Exports))
	for file := range meta.Exports {
		files = append(files, file)
	}
	sort.Strings(files)
	for _, file := range files {
		e.Adjudication.Exports = append(e.Adjudication.Exports, exportDigest{File: file, SHA256: meta.Exports[file]})
	}
}
