package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spigell/recruit-responder/internal/ai/gemini"
	"github.com/spigell/recruit-responder/internal/cache"
	"github.com/spigell/recruit-responder/internal/logger"
	"github.com/spigell/recruit-responder/internal/message"
	"github.com/spigell/recruit-responder/internal/pipeline"
	"github.com/spigell/recruit-responder/internal/profile"
	"github.com/spigell/recruit-responder/internal/scoring"
	"github.com/spigell/recruit-responder/internal/secrets"
	"github.com/spigell/recruit-responder/internal/worker"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process inbound messages and render a decision for each",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-aprove", "y", false, "do not ask for confirmation before dispatching auto-responses")
	runCmd.Flags().StringP("messages-file", "m", "", "a JSON file with inbound messages to process")
	runCmd.Flags().IntP("workers", "w", 0, "number of concurrent workers")

	viper.BindPFlag("messages-file", runCmd.Flags().Lookup("messages-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the recruit-responder", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	prof, err := profile.FromMap(config.Profile)
	if err != nil {
		logger.Fatal("parsing the user profile", zap.Error(err))
	}

	thresholds := resolveThresholds(config)
	if err := thresholds.Validate(); err != nil {
		logger.Fatal("validating tier thresholds", zap.Error(err))
	}

	assistant, err := buildAssistant(ctx, config, logger)
	if err != nil {
		logger.Fatal(
			"building the gemini assistant",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY environment variable or the 'ai.gemini.api-key' key in the configuration file"),
		)
	}

	store := buildStore(ctx, config, logger)
	scorer := scoring.New(thresholds, logger)

	pipelineCfg := pipeline.Config{}
	if config.Pipeline != nil {
		pipelineCfg.AutoRespond = config.Pipeline.AutoRespond
		pipelineCfg.SendDeclines = config.Pipeline.SendDeclines
		pipelineCfg.CacheTTL = config.Pipeline.CacheTTL
	}

	engine := pipeline.New(assistant, scorer, store, pipelineCfg, logger)

	source, err := newFileSource(viper.GetString("messages-file"))
	if err != nil {
		logger.Fatal("opening the messages file", zap.Error(err))
	}

	sink, err := newDecisionSink(config.DecisionsFile, cmd.Flag("auto-aprove").Value.String() == "true", logger)
	if err != nil {
		logger.Fatal("opening the decisions file", zap.Error(err))
	}
	defer sink.close()

	workerCfg := worker.Config{Workers: 1}
	if config.Workers != nil {
		workerCfg.Workers = config.Workers.Count
		workerCfg.KeyedBySender = config.Workers.KeyedBySender
	}
	if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
		workerCfg.Workers = n
	}

	if err := worker.New(engine, prof, sink, workerCfg, logger).Run(ctx, source); err != nil {
		logger.Fatal("processing messages", zap.Error(err))
	}

	logger.Info("all messages processed", zap.Int("count", len(source.msgs)))
}

func resolveThresholds(config *Config) scoring.Thresholds {
	if config.Pipeline == nil || config.Pipeline.Thresholds == nil {
		return scoring.DefaultThresholds()
	}

	t := config.Pipeline.Thresholds
	return scoring.Thresholds{Low: t.Low, Medium: t.Medium, High: t.High}
}

func buildAssistant(ctx context.Context, config *Config, log *zap.Logger) (*gemini.Assistant, error) {
	geminiCfg := &GeminiConfig{}
	if config.AI != nil && config.AI.Gemini != nil {
		geminiCfg = config.AI.Gemini
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: geminiCfg.APIKey,
		File:  geminiCfg.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, geminiCfg.Model, geminiCfg.MaxRetries, log)
	if err != nil {
		return nil, err
	}

	return gemini.NewAssistant(generator, log, geminiCfg.MaxLogLength, geminiCfg.Timeout), nil
}

// buildStore prefers Redis and falls back to the in-process store so an
// unreachable cache never blocks message processing.
func buildStore(ctx context.Context, config *Config, log *zap.Logger) cache.Store {
	if config.Redis == nil || config.Redis.URL == "" {
		log.Info("no redis configured, decisions are cached in process only")
		return cache.NewMemoryStore()
	}

	client, err := cache.NewRedisClient(ctx, config.Redis.URL)
	if err != nil {
		log.Warn("redis unreachable, falling back to in-process cache", zap.Error(err))
		return cache.NewMemoryStore()
	}

	return cache.NewRedisStore(client, log)
}

// fileSource replays messages from a JSON file.
type fileSource struct {
	msgs []*message.RawMessage
}

func newFileSource(path string) (*fileSource, error) {
	if path == "" {
		return nil, fmt.Errorf("messages file is not configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var msgs []*message.RawMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for _, msg := range msgs {
		if msg.ReceivedAt.IsZero() {
			msg.ReceivedAt = time.Now().UTC()
		}
	}

	return &fileSource{msgs: msgs}, nil
}

func (s *fileSource) Messages(context.Context) (<-chan *message.RawMessage, error) {
	out := make(chan *message.RawMessage, len(s.msgs))
	for _, msg := range s.msgs {
		out <- msg
	}
	close(out)
	return out, nil
}

// decisionSink writes decisions as JSON lines and gates auto-response
// dispatch behind a confirmation prompt unless auto-approve is set.
type decisionSink struct {
	mu          sync.Mutex
	out         *os.File
	closable    bool
	autoApprove bool
	logger      *zap.Logger
}

func newDecisionSink(path string, autoApprove bool, log *zap.Logger) (*decisionSink, error) {
	sink := &decisionSink{out: os.Stdout, autoApprove: autoApprove, logger: log}

	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		sink.out = f
		sink.closable = true
	}

	return sink, nil
}

func (s *decisionSink) Deliver(_ context.Context, decision *pipeline.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if decision.Status == pipeline.StatusAutoResponded && !s.autoApprove && !decision.Cached {
		fmt.Printf("\nDrafted reply to %s:\n%s\n\n", decision.Sender, decision.Response)

		prompt := promptui.Select{
			Label: "Dispatch this reply?",
			Items: []string{PromptYes, PromptNo},
		}
		_, answer, err := prompt.Run()
		if err != nil {
			return err
		}
		if answer == PromptNo {
			s.logger.Info("dispatch skipped",
				zap.String(logger.FieldFingerprint, decision.Fingerprint))
		}
	}

	line, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("encoding decision: %w", err)
	}
	if _, err := fmt.Fprintln(s.out, string(line)); err != nil {
		return fmt.Errorf("writing decision: %w", err)
	}
	return nil
}

func (s *decisionSink) close() {
	if s.closable {
		_ = s.out.Close()
	}
}
