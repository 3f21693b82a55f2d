package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-evaluator/internal/report"
	"github.com/spigell/interview-evaluator/internal/session"
)

const (
	PromptYes              = "Yes"
	PromptNo               = "No"
	PromptReportByQuestion = "Report by question"
	PromptDumpToFile       = "Dump session to tmp file"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Save reports?",
	Items: []string{PromptYes, PromptNo, PromptReportByQuestion, PromptDumpToFile},
}

var sessionCmd = &cobra.Command{
	Use:   "session <input.json>",
	Short: "Evaluate a recorded interview and write reports",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSession(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)

	sessionCmd.Flags().BoolP("auto-approve", "y", false, "save reports without asking")
	sessionCmd.Flags().StringP("output", "o", "", "directory for reports (default is report.dir)")
	sessionCmd.Flags().String("format", "", "report format: json, text or both (default is report.format)")
	sessionCmd.Flags().IntSlice("exclude", nil, "question numbers to skip")
	sessionCmd.Flags().StringSlice("skip-filter", nil, "filters to disable, e.g. empty_transcript")

	viper.BindPFlag("report.dir", sessionCmd.Flags().Lookup("output"))
	viper.BindPFlag("report.format", sessionCmd.Flags().Lookup("format"))
	viper.BindPFlag("session.exclude-questions", sessionCmd.Flags().Lookup("exclude"))
}

func runSession(cmd *cobra.Command, path string) {
	ctx := context.Background()
	started := time.Now()
	logger, config := setup()

	logger.Info("starting the interview-evaluator", zap.String("version", version))

	in, err := session.LoadInput(path)
	if err != nil {
		logger.Fatal("loading session input", zap.Error(err))
	}

	if len(in.Items) == 0 {
		logger.Info("exiting", zap.String("reason", "no answers in input"))
		return
	}

	store, err := loadRubric(config)
	if err != nil {
		logger.Fatal("loading rubric", zap.Error(err))
	}

	scorer, err := newScorer(ctx, config, store, logger)
	if err != nil {
		logger.Fatal("building scorer", zap.Error(err))
	}

	analyzer, err := newSpeechAnalyzer(config)
	if err != nil {
		logger.Fatal("building speech analyzer", zap.Error(err))
	}

	steps := session.DefaultFilters()
	skip, _ := cmd.Flags().GetStringSlice("skip-filter")
	for _, name := range skip {
		if !session.DisableByName(steps, name, "disabled by --skip-filter") {
			logger.Fatal("unknown filter", zap.String("name", name), zap.Strings("filters", session.Names(steps)))
		}
	}

	ev, err := session.New(sessionConfig(config), session.Deps{
		Logger: logger,
		Scorer: scorer,
		Speech: analyzer,
	}, steps...)
	if err != nil {
		logger.Fatal("building session evaluator", zap.Error(err))
	}

	outcome, err := ev.Evaluate(ctx, in.Items)
	if err != nil {
		logger.Fatal("evaluating session", zap.Error(err))
	}

	for _, st := range session.Describe(ev.Filters()) {
		logger.Debug("filter", zap.String("name", st.Name), zap.Bool("enabled", st.Enabled), zap.Any("details", st.Details))
	}

	doc := report.NewDocument(in.Candidate, started, outcome)

	if !outcome.Summary.Evaluated {
		logger.Info("exiting", zap.String("reason", session.NothingEvaluated))
		return
	}

	logger.Info("session summary",
		zap.String("candidate", in.Candidate),
		zap.Int("evaluated", outcome.Summary.Count),
		zap.Float64("average", outcome.Summary.Average),
		zap.Int("strong", outcome.Summary.Strong),
		zap.Int("weak", outcome.Summary.Weak),
	)

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	action := PromptYes
	for {
		if !autoApprove {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		if err := handleAction(action, logger, config, doc); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, config *Config, doc *report.Document) error {
	switch action {
	case PromptYes:
		dir, format := report.DefaultDir, report.FormatBoth
		if config.Report != nil {
			if config.Report.Dir != "" {
				dir = config.Report.Dir
			}
			if config.Report.Format != "" {
				format = config.Report.Format
			}
		}
		files, err := report.Save(dir, format, doc)
		if err != nil {
			return fmt.Errorf("saving reports: %w", err)
		}
		logger.Info("reports saved", zap.String("session_id", doc.SessionID), zap.Strings("files", files))
		return errExit
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptReportByQuestion:
		for _, it := range doc.Items {
			logger.Info(questionLine(it), zap.Float64("score", it.Evaluation.Score))
		}
		return nil
	case PromptDumpToFile:
		filename, err := report.DumpToTmpFile(doc)
		if err != nil {
			return fmt.Errorf("dump session to file: %w", err)
		}
		logger.Info("dumping session to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func questionLine(it *session.Item) string {
	text := strings.TrimSpace(it.QuestionText)
	if text == "" {
		text = it.Evaluation.QuestionType
	}
	if !it.Evaluation.OK() {
		return fmt.Sprintf("Q%d %s (%s)", it.QuestionNumber, text, it.Evaluation.Status)
	}
	return fmt.Sprintf("Q%d %s", it.QuestionNumber, text)
}
