package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/interview-evaluator/internal/rubric"
)

var rubricCmd = &cobra.Command{
	Use:   "rubric",
	Short: "Inspect the question rubric",
}

var rubricListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions with their keyword groups",
	Run: func(cmd *cobra.Command, _ []string) {
		logger, config := setup()
		store, err := loadRubric(config)
		if err != nil {
			logger.Fatal("loading rubric", zap.Error(err))
		}

		out := cmd.OutOrStdout()
		for _, idx := range store.Indices() {
			e, _ := store.Entry(idx)
			fmt.Fprintf(out, "%d. [%s] %s\n", idx+1, e.Type, e.Question)
			fmt.Fprintf(out, "   essential: %s\n", strings.Join(e.Groups(rubric.Essential).Names(), ", "))
			fmt.Fprintf(out, "   bonus:     %s\n", strings.Join(e.Groups(rubric.Bonus).Names(), ", "))
			l := e.LengthExpectations
			fmt.Fprintf(out, "   length:    %d/%d/%d words\n", l.MinWords, l.OptimalWords, l.MaxWords)
		}
	},
}

var rubricValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a rubric file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		logger, config := setup()
		if len(args) == 1 {
			config.RubricFile = args[0]
		}

		store, err := loadRubric(config)
		if err != nil {
			var cfgErr *rubric.ConfigurationError
			if errors.As(err, &cfgErr) {
				for _, problem := range cfgErr.Problems() {
					logger.Error("rubric problem", zap.Error(problem))
				}
			}
			logger.Fatal("rubric is invalid", zap.Error(err))
		}

		logger.Info("rubric is valid", zap.String("file", config.RubricFile), zap.Int("questions", store.Len()))
	},
}

func init() {
	rubricCmd.AddCommand(rubricListCmd, rubricValidateCmd)
	rootCmd.AddCommand(rubricCmd)
}
