package session

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
)

// Input is a recorded interview waiting for evaluation.
type Input struct {
	Candidate string  `json:"candidate_name"`
	Items     []*Item `json:"questions_data"`
}

// ReadInput decodes an interview recording.
func ReadInput(r io.Reader) (*Input, error) {
	var in Input
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("decode session input: %w", err)
	}
	for i, it := range in.Items {
		if it == nil {
			return nil, fmt.Errorf("questions_data[%d]: item is empty", i)
		}
		if it.QuestionNumber < 1 {
			return nil, fmt.Errorf("questions_data[%d]: question_number must be >= 1, got %d", i, it.QuestionNumber)
		}
	}
	return &in, nil
}

// LoadInput reads an interview recording from path.
func LoadInput(path string) (*Input, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	in, err := ReadInput(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}
