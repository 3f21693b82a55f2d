package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-evaluator/internal/ai/gemini"
	"github.com/spigell/interview-evaluator/internal/evaluator"
	"github.com/spigell/interview-evaluator/internal/logger"
	"github.com/spigell/interview-evaluator/internal/rubric"
	"github.com/spigell/interview-evaluator/internal/secrets"
	"github.com/spigell/interview-evaluator/internal/session"
	"github.com/spigell/interview-evaluator/internal/speech"
)

const (
	app = "interview-evaluator"
)

type Config struct {
	RubricFile string            `mapstructure:"rubric-file"`
	Workers    int               `mapstructure:"workers"`
	Thresholds *ThresholdsConfig `mapstructure:"thresholds"`
	Session    *SessionConfig    `mapstructure:"session"`
	Report     *ReportConfig     `mapstructure:"report"`
	Server     *ServerConfig     `mapstructure:"server"`
	Speech     *SpeechConfig     `mapstructure:"speech"`
	AI         *AIConfig         `mapstructure:"ai"`
}

type ThresholdsConfig struct {
	Strong float64 `mapstructure:"strong"`
	Weak   float64 `mapstructure:"weak"`
}

type SessionConfig struct {
	ExcludeQuestions []int `mapstructure:"exclude-questions"`
}

type ReportConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
}

type SpeechConfig struct {
	Tagger string `mapstructure:"tagger"`
}

type ServerConfig struct {
	Addr         string `mapstructure:"addr"`
	APITokenFile string `mapstructure:"api-token-file"`
}

type AIConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Provider    string        `mapstructure:"provider"`
	BlendWeight float64       `mapstructure:"blend-weight"`
	Gemini      *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interview-evaluator scores interview answers against keyword rubrics",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("server.api-token-file", "INTERVIEW_API_TOKEN_FILE"); err != nil {
		log.Fatalf("binding INTERVIEW_API_TOKEN_FILE environment variable: %v", err)
	}

	viper.SetDefault("workers", 4)
	viper.SetDefault("thresholds.strong", 7.0)
	viper.SetDefault("thresholds.weak", 5.0)
	viper.SetDefault("report.dir", "reports")
	viper.SetDefault("report.format", "both")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("speech.tagger", speech.TaggerRegex)
	viper.SetDefault("ai.provider", gemini.ProviderName)
	viper.SetDefault("ai.blend-weight", 0.5)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-evaluator.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("rubric-file", "r", "", "a rubric file (default is the built-in rubric)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("rubric-file", rootCmd.PersistentFlags().Lookup("rubric-file"))
}

func initConfig() {
	// Every setting has a default, so a missing config file is fine unless it was requested explicitly.
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}
	if config == nil {
		return nil, errors.New("config is empty")
	}

	return config, nil
}

// setup builds the logger and the config shared by every command.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting with config", zap.Any("config", config))

	return logger, config
}

func loadRubric(config *Config) (*rubric.Store, error) {
	return rubric.LoadFile(config.RubricFile)
}

// newScorer returns the keyword engine, wrapped by the LLM rescorer when ai is enabled.
func newScorer(ctx context.Context, config *Config, store *rubric.Store, logger *zap.Logger) (evaluator.Scorer, error) {
	engine, err := evaluator.New(store, logger)
	if err != nil {
		return nil, err
	}

	if config.AI == nil || !config.AI.Enabled {
		return engine, nil
	}

	rater, err := newAIRater(ctx, config.AI, logger)
	if err != nil {
		return nil, fmt.Errorf("building ai rater: %w", err)
	}

	return evaluator.NewRescorer(engine, rater, config.AI.BlendWeight, logger)
}

func newAIRater(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (*gemini.Rater, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.ProviderName {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	genLogger := logger.With(
		zap.String("provider", gemini.ProviderName),
		zap.String("model", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	raterLogger := logger.With(
		zap.String("provider", gemini.ProviderName),
		zap.String("model", generator.Model()),
		zap.Float64("blend_weight", cfg.BlendWeight),
	)

	return gemini.NewRater(generator, cfg.Gemini.MaxLogLength, raterLogger), nil
}

func sessionConfig(config *Config) *session.Config {
	cfg := &session.Config{Workers: config.Workers}
	if config.Thresholds != nil {
		cfg.Thresholds = &session.Thresholds{Strong: config.Thresholds.Strong, Weak: config.Thresholds.Weak}
	}
	if config.Session != nil {
		cfg.ExcludeQuestions = config.Session.ExcludeQuestions
	}
	return cfg
}

func newSpeechAnalyzer(config *Config) (*speech.Analyzer, error) {
	name := ""
	if config.Speech != nil {
		name = config.Speech.Tagger
	}
	tagger, err := speech.NewTagger(name)
	if err != nil {
		return nil, err
	}
	return speech.NewAnalyzer(tagger), nil
}
