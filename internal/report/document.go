// Package report renders evaluated interview sessions as JSON documents and
// human-readable text reports.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/spigell/interview-evaluator/internal/session"
)

const (
	DefaultDir   = "reports"
	JSONFileName = "interview_analysis.json"
	TextFileName = "interview_evaluation_report.txt"
)

// Formats understood by Save.
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatBoth = "both"
)

// Document is the persisted form of an evaluated session.
type Document struct {
	SessionID  string          `json:"session_id"`
	Candidate  string          `json:"candidate_name"`
	StartedAt  time.Time       `json:"session_start"`
	FinishedAt time.Time       `json:"session_end"`
	Items      []*session.Item `json:"questions_data"`
	Summary    session.Summary `json:"content_analysis_summary"`
}

var now = func() time.Time { return time.Now().UTC() }

// NewDocument wraps outcome with a fresh session id.
func NewDocument(candidate string, startedAt time.Time, outcome *session.Outcome) *Document {
	doc := &Document{
		SessionID:  uuid.NewString(),
		Candidate:  candidate,
		StartedAt:  startedAt.UTC(),
		FinishedAt: now(),
		Items:      []*session.Item{},
	}
	if outcome != nil {
		doc.Items = outcome.Items
		doc.Summary = outcome.Summary
	}
	return doc
}

// WriteJSON encodes doc as indented JSON.
func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Save writes the requested formats into dir/<session id> and returns the written paths.
func Save(dir, format string, doc *Document) ([]string, error) {
	var writers []func(io.Writer, *Document) error
	var names []string

	switch format {
	case FormatJSON:
		writers, names = append(writers, WriteJSON), append(names, JSONFileName)
	case FormatText:
		writers, names = append(writers, WriteText), append(names, TextFileName)
	case FormatBoth, "":
		writers = append(writers, WriteJSON, WriteText)
		names = append(names, JSONFileName, TextFileName)
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}

	target := filepath.Join(dir, doc.SessionID)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	paths := make([]string, 0, len(names))
	for i, name := range names {
		path := filepath.Join(target, name)
		if err := writeFile(path, doc, writers[i]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, doc *Document, write func(io.Writer, *Document) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file, doc); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}

// DumpToTmpFile writes doc as JSON into a temporary file and returns its name.
func DumpToTmpFile(doc *Document) (string, error) {
	file, err := os.CreateTemp("", "interview_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := WriteJSON(file, doc); err != nil {
		return "", err
	}
	return file.Name(), nil
}
