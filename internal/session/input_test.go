package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		items   int
		wantErr string
	}{
		{
			name:  "valid",
			input: `{"candidate_name": "Ada", "questions_data": [{"question_number": 1, "question_text": "Q", "transcript": "A"}]}`,
			items: 1,
		},
		{name: "zero question number", input: `{"questions_data": [{"question_number": 0}]}`, wantErr: "question_number"},
		{name: "null item", input: `{"questions_data": [null]}`, wantErr: "empty"},
		{name: "unknown field", input: `{"questions": []}`, wantErr: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in, err := ReadInput(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(in.Items) != tt.items {
				t.Fatalf("expected %d items, got %d", tt.items, len(in.Items))
			}
		})
	}
}

func TestLoadInput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"candidate_name": "Ada", "questions_data": []}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	in, err := LoadInput(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Candidate != "Ada" {
		t.Fatalf("unexpected candidate: %q", in.Candidate)
	}

	if _, err := LoadInput(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
