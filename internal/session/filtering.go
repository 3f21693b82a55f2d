package session

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Filter represents a single step that decides which items get evaluated.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, items []*Item) ([]*Item, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// DefaultFilters returns the steps every session goes through.
func DefaultFilters() []Filter {
	return []Filter{NewEmptyTranscript(), NewExcludedQuestions()}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
// It reports whether such a filter exists.
func DisableByName(steps []Filter, name, reason string) bool {
	found := false
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
			found = true
		}
	}
	return found
}

// Names returns the filter names in execution order.
func Names(steps []Filter) []string {
	names := make([]string, 0, len(steps))
	for _, step := range steps {
		names = append(names, step.Name())
	}
	return names
}

// Run executes the supplied filters sequentially and returns the items left.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, items []*Item) ([]*Item, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			deps.logger().Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, items)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.logger().Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		items = next
	}

	return items, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

func keep(items []*Item, drop func(*Item) bool) ([]*Item, []int) {
	kept := make([]*Item, 0, len(items))
	var dropped []int
	for _, it := range items {
		if drop(it) {
			dropped = append(dropped, it.QuestionNumber)
			continue
		}
		kept = append(kept, it)
	}
	return kept, dropped
}

type emptyTranscriptFilter struct {
	disabled bool
	reason   string
}

// NewEmptyTranscript creates a filter that removes items without a transcript.
func NewEmptyTranscript() Filter {
	return &emptyTranscriptFilter{}
}

func (f *emptyTranscriptFilter) Name() string { return "empty_transcript" }

func (f *emptyTranscriptFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *emptyTranscriptFilter) IsEnabled() bool { return !f.disabled }

func (f *emptyTranscriptFilter) Validate(*Config) error { return nil }

func (f *emptyTranscriptFilter) Apply(_ context.Context, deps Deps, items []*Item) ([]*Item, Step, error) {
	initial := len(items)
	kept, dropped := keep(items, func(it *Item) bool {
		return strings.TrimSpace(it.Transcript) == ""
	})
	if len(dropped) > 0 {
		deps.logger().Info("skipping questions without transcript",
			zap.Ints("question_numbers", dropped),
			zap.Int("items_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *emptyTranscriptFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type excludedQuestionsFilter struct {
	disabled bool
	reason   string
	excluded map[int]struct{}
}

// NewExcludedQuestions creates a filter that removes question numbers listed in the config.
func NewExcludedQuestions() Filter {
	return &excludedQuestionsFilter{}
}

func (f *excludedQuestionsFilter) Name() string { return "excluded_questions" }

func (f *excludedQuestionsFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *excludedQuestionsFilter) IsEnabled() bool { return !f.disabled }

func (f *excludedQuestionsFilter) Validate(cfg *Config) error {
	f.excluded = map[int]struct{}{}
	if cfg == nil {
		return nil
	}
	for _, n := range cfg.ExcludeQuestions {
		if n < 1 {
			return fmt.Errorf("question numbers start at 1, got %d", n)
		}
		f.excluded[n] = struct{}{}
	}
	return nil
}

func (f *excludedQuestionsFilter) Apply(_ context.Context, deps Deps, items []*Item) ([]*Item, Step, error) {
	initial := len(items)
	if len(f.excluded) == 0 {
		return items, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept, dropped := keep(items, func(it *Item) bool {
		_, ok := f.excluded[it.QuestionNumber]
		return ok
	})
	if len(dropped) > 0 {
		deps.logger().Info("excluding questions listed in the config",
			zap.Ints("question_numbers", dropped),
			zap.Int("items_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *excludedQuestionsFilter) Status() Status {
	details := map[string]string{}
	if len(f.excluded) > 0 {
		numbers := make([]int, 0, len(f.excluded))
		for n := range f.excluded {
			numbers = append(numbers, n)
		}
		sort.Ints(numbers)
		parts := make([]string, 0, len(numbers))
		for _, n := range numbers {
			parts = append(parts, strconv.Itoa(n))
		}
		details["questions"] = strings.Join(parts, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
