package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "recruit-responder"
)

type Config struct {
	// Profile holds the user constraints and preferences driving the
	// filters and the scorer.
	Profile map[string]any `mapstructure:"profile"`

	// MessagesFile is a JSON file with the inbound messages to process.
	MessagesFile string `mapstructure:"messages-file"`
	// DecisionsFile receives rendered decisions as JSON lines. Empty
	// means stdout.
	DecisionsFile string `mapstructure:"decisions-file"`

	Pipeline *PipelineConfig `mapstructure:"pipeline"`
	Workers  *WorkersConfig  `mapstructure:"workers"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	AI       *AIConfig       `mapstructure:"ai"`
}

type PipelineConfig struct {
	AutoRespond  bool          `mapstructure:"auto-respond"`
	SendDeclines bool          `mapstructure:"send-declines"`
	CacheTTL     time.Duration `mapstructure:"cache-ttl"`

	Thresholds *ThresholdsConfig `mapstructure:"thresholds"`
}

type ThresholdsConfig struct {
	Low    float64 `mapstructure:"low"`
	Medium float64 `mapstructure:"medium"`
	High   float64 `mapstructure:"high"`
}

type WorkersConfig struct {
	Count         int  `mapstructure:"count"`
	KeyedBySender bool `mapstructure:"keyed-by-sender"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string        `mapstructure:"api-key"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Model        string        `mapstructure:"model"`
	MaxRetries   int           `mapstructure:"max-retries"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "recruit-responder decides whether and how to answer inbound recruiting messages",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("redis.url", "REDIS_URL"); err != nil {
		log.Fatalf("binding REDIS_URL environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is recruit-responder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
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
