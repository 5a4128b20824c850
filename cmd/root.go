package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/spigell/interview-coach/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "interview-coach"
)

type Config struct {
	Role         string        `mapstructure:"role"`
	MaxQuestions int           `mapstructure:"max-questions"`
	TimeLimit    time.Duration `mapstructure:"time-limit"`
	Catalog      string        `mapstructure:"catalog"`
	Resume       string        `mapstructure:"resume"`
	SessionsDir  string        `mapstructure:"sessions-dir"`
	HistoryDB    string        `mapstructure:"history-db"`
	Camera       *CameraConfig `mapstructure:"camera"`
	Speech       *SpeechConfig `mapstructure:"speech"`
	AI           *AIConfig     `mapstructure:"ai"`
}

type CameraConfig struct {
	Command  string        `mapstructure:"command"`
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type SpeechConfig struct {
	Command string        `mapstructure:"command"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
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
		Short: "interview-coach is a console mock interview trainer with answer scoring and session reports",
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

	viper.SetDefault("max-questions", 5)
	viper.SetDefault("sessions-dir", "sessions")
	viper.SetDefault("history-db", "sessions/history.db")
	viper.SetDefault("camera.interval", "500ms")
	viper.SetDefault("camera.timeout", "5s")
	viper.SetDefault("speech.timeout", "30s")
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-coach.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("catalog", "", "a .json or .toml question catalog (default is the built-in catalog)")
	rootCmd.PersistentFlags().String("sessions-dir", "", "directory for session reports")
	rootCmd.PersistentFlags().String("history-db", "", "sqlite index of saved sessions")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))
	viper.BindPFlag("sessions-dir", rootCmd.PersistentFlags().Lookup("sessions-dir"))
	viper.BindPFlag("history-db", rootCmd.PersistentFlags().Lookup("history-db"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless it was passed explicitly.
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

	return config, nil
}

// newLogger builds the application logger from the --json and --debug flags.
func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}
