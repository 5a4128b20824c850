package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spigell/interview-coach/internal/agent"
	"github.com/spigell/interview-coach/internal/ai/gemini"
	"github.com/spigell/interview-coach/internal/catalog"
	"github.com/spigell/interview-coach/internal/emotion"
	"github.com/spigell/interview-coach/internal/evaluator"
	"github.com/spigell/interview-coach/internal/history"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/resume"
	"github.com/spigell/interview-coach/internal/secrets"
	"github.com/spigell/interview-coach/internal/session"
	"github.com/spigell/interview-coach/internal/speech"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a mock interview",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("role", "r", "", "interview role. Asked interactively when unset.")
	runCmd.Flags().IntP("max-questions", "n", 0, "maximum number of questions (default 5)")
	runCmd.Flags().String("resume", "", "plain text resume. Questions are generated from its skills.")
	runCmd.Flags().Duration("time-limit", 0, "time limit per answer, e.g. 60s. Unset means no limit.")

	viper.BindPFlag("role", runCmd.Flags().Lookup("role"))
	viper.BindPFlag("max-questions", runCmd.Flags().Lookup("max-questions"))
	viper.BindPFlag("resume", runCmd.Flags().Lookup("resume"))
	viper.BindPFlag("time-limit", runCmd.Flags().Lookup("time-limit"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// After the first signal the default handlers are restored, so a second
	// one terminates the process.
	context.AfterFunc(ctx, stop)

	appLogger := newLogger()
	defer appLogger.Sync() //nolint:errcheck

	config, err := getConfig()
	if err != nil {
		appLogger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		appLogger.Fatal("config is required")
	}

	appLogger.Info("starting the interview-coach", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	appLogger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	cat, err := catalog.Load(config.Catalog)
	if err != nil {
		appLogger.Fatal("loading question catalog", zap.Error(err), zap.String("catalog", config.Catalog))
	}

	role := strings.TrimSpace(config.Role)
	if role == "" {
		role, err = selectRole(cat)
		if err != nil {
			appLogger.Info("exiting", zap.String("reason", "no role selected"), zap.Error(err))
			return
		}
	}

	coach, err := agent.New(cat, role, config.MaxQuestions)
	if err != nil {
		appLogger.Fatal("creating the interview agent", zap.Error(err))
	}

	if config.Resume != "" {
		loadResumeQuestions(ctx, coach, config, appLogger)
	}

	recorder := session.New(role)
	sessionLogger := logger.ForSession(appLogger, role, recorder.ID())

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	monitor := newMonitor(config.Camera, sessionLogger)
	go monitor.Run(monitorCtx)

	runner := &interview.Runner{
		Agent:     coach,
		Evaluator: evaluator.Evaluate,
		Recorder:  recorder,
		Answers:   newConsoleAnswers(newListener(config.Speech, sessionLogger), cmd.OutOrStdout(), sessionLogger),
		Emotion:   monitor,
		OutputDir: config.SessionsDir,
		TimeLimit: config.TimeLimit,
		Logger:    appLogger,
	}

	if index, err := history.Open(config.HistoryDB); err != nil {
		sessionLogger.Warn("session history is disabled", zap.Error(err), zap.String("path", config.HistoryDB))
	} else {
		defer index.Close()
		runner.Index = index
	}

	result, err := runner.Run(ctx)
	stopMonitor()
	if err != nil {
		sessionLogger.Fatal("running the interview", zap.Error(err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, result.Artifact.SummaryText())

	if result.Interrupted {
		sessionLogger.Info("interview stopped early", zap.Int("answered", result.Artifact.QuestionsAnswered))
	}
	if result.Late > 0 {
		sessionLogger.Info("some answers were given after the time limit", zap.Int("late", result.Late))
	}
}

func selectRole(cat *catalog.Catalog) (string, error) {
	rolePrompt := promptui.Select{
		Label: "Select Job Role",
		Items: cat.Roles(),
	}

	_, role, err := rolePrompt.Run()
	return role, err
}

// loadResumeQuestions replaces the role questions with resume-based ones.
// Any failure keeps the role catalog.
func loadResumeQuestions(ctx context.Context, coach *agent.Agent, config *Config, logger *zap.Logger) {
	text, err := resume.ReadFile(config.Resume)
	if err != nil {
		logger.Warn("skipping resume questions", zap.Error(err))
		return
	}

	skills := resume.ExtractSkills(text)
	logger.Info("skills found in resume", zap.Strings("skills", skills))

	generator := &resume.FallbackGenerator{Logger: logger}
	if config.AI != nil && config.AI.Enabled {
		writer, err := newQuestionWriter(ctx, config.AI, coach.Role(), coach.MaxQuestions(), logger)
		if err != nil {
			logger.Warn("ai question writer is disabled", zap.Error(err))
		} else {
			generator.Primary = writer
		}
	}

	questions, err := generator.Generate(ctx, skills)
	if err != nil {
		logger.Warn("skipping resume questions", zap.Error(err))
		return
	}

	coach.LoadCustomQuestions(questions)
	logger.Info("using resume questions", zap.Int("count", len(questions)), zap.Int("max_questions", coach.MaxQuestions()))
}

func newQuestionWriter(ctx context.Context, cfg *AIConfig, role string, maxQuestions int, log *zap.Logger) (*gemini.QuestionWriter, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		cfg.Gemini = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
		Value: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, log)
	if err != nil {
		return nil, err
	}

	writerLogger := logger.ForAI(log, "gemini", generator.Model())
	return gemini.NewQuestionWriter(generator, role, maxQuestions, cfg.Gemini.MaxLogLength, writerLogger), nil
}

func newMonitor(cfg *CameraConfig, log *zap.Logger) *emotion.Monitor {
	if cfg == nil {
		return emotion.NewMonitor(nil, 0, log)
	}

	// A nil *CommandDetector must not end up inside the interface.
	var detector emotion.Detector
	if d := emotion.NewCommandDetector(cfg.Command, cfg.Timeout); d != nil {
		detector = d
	}

	return emotion.NewMonitor(detector, cfg.Interval, log)
}

func newListener(cfg *SpeechConfig, log *zap.Logger) speech.Listener {
	if cfg == nil {
		return nil
	}

	l := speech.NewCommandListener(cfg.Command, cfg.Timeout, log)
	if !l.Available() {
		if l != nil {
			log.Warn("speech input is disabled", zap.String("reason", "transcription command not found"), zap.String("command", cfg.Command))
		}
		return nil
	}

	return l
}

// redacted hides inline secrets before the config is logged.
func redacted(config *Config) *Config {
	if config.AI == nil || config.AI.Gemini == nil || config.AI.Gemini.APIKey == "" {
		return config
	}

	copied := *config
	ai := *config.AI
	gem := *config.AI.Gemini
	gem.APIKey = "***"
	ai.Gemini = &gem
	copied.AI = &ai
	return &copied
}
