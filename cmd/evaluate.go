package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/interview-evaluator/internal/evaluator"
	"github.com/spigell/interview-evaluator/internal/rubric"
	"github.com/spigell/interview-evaluator/internal/speech"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [transcript]",
	Short: "Score a single answer",
	Long: "Score a single answer. Without --question an interactive picker is shown; " +
		"the transcript is taken from the argument, --file (\"-\" for stdin) or an interactive prompt.",
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		evaluate(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().IntP("question", "q", 0, "1-based question number")
	evaluateCmd.Flags().StringP("file", "f", "", "read the transcript from a file, \"-\" for stdin")
	evaluateCmd.Flags().Bool("speech", true, "attach filler and fluency analysis")
}

type evaluation struct {
	*evaluator.Result
	Speech *speech.Analysis `json:"speech_analysis,omitempty"`
}

func evaluate(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	logger, config := setup()

	store, err := loadRubric(config)
	if err != nil {
		logger.Fatal("loading rubric", zap.Error(err))
	}

	scorer, err := newScorer(ctx, config, store, logger)
	if err != nil {
		logger.Fatal("building scorer", zap.Error(err))
	}

	number, _ := cmd.Flags().GetInt("question")
	if number == 0 {
		if number, err = pickQuestion(store); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	file, _ := cmd.Flags().GetString("file")
	transcript, err := readTranscript(args, file, cmd.InOrStdin())
	if err != nil {
		logger.Fatal("reading transcript", zap.Error(err))
	}

	res, err := scorer.Score(ctx, number-1, transcript)
	switch {
	case errors.Is(err, evaluator.ErrUnknownQuestion):
		logger.Fatal("question has no rubric",
			zap.Int("question_number", number),
			zap.Ints("known_question_numbers", questionNumbers(store)),
		)
	case err != nil:
		logger.Fatal("evaluating answer", zap.Error(err))
	}

	out := evaluation{Result: res}
	if withSpeech, _ := cmd.Flags().GetBool("speech"); withSpeech {
		analyzer, err := newSpeechAnalyzer(config)
		if err != nil {
			logger.Fatal("building speech analyzer", zap.Error(err))
		}
		out.Speech = analyzer.Analyze(transcript)
	}

	pretty, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		logger.Fatal("encoding result", zap.Error(err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(pretty))

	logger.Info("answer evaluated",
		zap.Int("question_number", number),
		zap.Float64("score", res.Score),
		zap.String("method", res.Method),
	)
}

func pickQuestion(store *rubric.Store) (int, error) {
	indices := store.Indices()
	items := make([]string, 0, len(indices))
	for _, idx := range indices {
		e, _ := store.Entry(idx)
		items = append(items, fmt.Sprintf("%d. %s", idx+1, e.Question))
	}

	questionPrompt := promptui.Select{
		Label: "Choose a question and press ENTER",
		Items: items,
		Size:  10,
	}

	i, _, err := questionPrompt.Run()
	if err != nil {
		return 0, err
	}
	return indices[i] + 1, nil
}

func readTranscript(args []string, file string, stdin io.Reader) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case file == "-":
		data, err := io.ReadAll(stdin)
		return string(data), err
	case file != "":
		data, err := os.ReadFile(file)
		return string(data), err
	}

	transcriptPrompt := promptui.Prompt{
		Label: "Answer",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("answer is empty")
			}
			return nil
		},
	}
	return transcriptPrompt.Run()
}

func questionNumbers(store *rubric.Store) []int {
	indices := store.Indices()
	out := make([]int, len(indices))
	for i, idx := range indices {
		out[i] = idx + 1
	}
	return out
}
