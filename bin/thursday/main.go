package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/thursday/internal/profile"
	"github.com/hrygo/thursday/plugin/ai"
	"github.com/hrygo/thursday/server"
	"github.com/hrygo/thursday/server/chat"
	"github.com/hrygo/thursday/server/retrieval"
	"github.com/hrygo/thursday/store"
)

const (
	greetingBanner = `Thursday — a bot that learns from corrections.`
)

var (
	version = "0.1.0"

	rootCmd = &cobra.Command{
		Use:   "thursday",
		Short: "A retrieval-augmented question-answering bot",
		RunE: func(_ *cobra.Command, _ []string) error {
			instanceProfile := &profile.Profile{
				Mode:       viper.GetString("mode"),
				Addr:       viper.GetString("addr"),
				Port:       viper.GetInt("port"),
				Data:       viper.GetString("data"),
				Matcher:    viper.GetString("matcher"),
				MemoryFile: viper.GetString("memory-file"),
				Version:    version,
			}
			instanceProfile.FromEnv()
			if err := instanceProfile.Validate(); err != nil {
				return fmt.Errorf("failed to validate profile: %w", err)
			}

			setupLogger(instanceProfile)
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			// The memory file is the sole source of truth; a malformed
			// file halts startup.
			memoryStore, err := store.Load(instanceProfile.MemoryFile)
			if err != nil {
				return fmt.Errorf("failed to load memory store: %w", err)
			}

			matcher, llm, err := buildServices(instanceProfile)
			if err != nil {
				return err
			}

			engine := chat.NewEngine(memoryStore, matcher, llm, slog.Default())
			if err := engine.Bootstrap(ctx); err != nil {
				return fmt.Errorf("failed to build match index: %w", err)
			}

			slog.Info("memory loaded",
				"file", memoryStore.Path(),
				"records", memoryStore.Len(),
				"matcher", matcher.Name(),
			)

			s := server.NewServer(instanceProfile, engine, slog.Default())

			go func() {
				<-ctx.Done()
				s.Shutdown(context.Background())
			}()

			fmt.Println(greetingBanner)
			return s.Start()
		},
	}
)

// buildServices constructs the matcher strategy and the fallback generator
// from the profile. Embedding strategy without a configured provider falls
// back to substring matching with a warning.
func buildServices(p *profile.Profile) (retrieval.Matcher, ai.LLMService, error) {
	cfg := ai.NewConfigFromProfile(p)

	var matcher retrieval.Matcher
	if p.Matcher == "embedding" && p.HasEmbeddingProvider() {
		if err := cfg.ValidateEmbedding(); err != nil {
			return nil, nil, fmt.Errorf("invalid embedding config: %w", err)
		}
		embedder, err := ai.NewEmbeddingService(&cfg.Embedding)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create embedding service: %w", err)
		}
		matcher = retrieval.NewEmbeddingMatcher(embedder)
	} else {
		if p.Matcher == "embedding" {
			slog.Warn("no embedding provider configured, falling back to substring matching")
		}
		matcher = retrieval.NewSubstringMatcher()
	}

	var llm ai.LLMService
	if err := cfg.ValidateLLM(); err != nil {
		slog.Warn("no generation provider configured, fallback replies disabled", "error", err)
	} else {
		service, err := ai.NewLLMService(&cfg.LLM)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create LLM service: %w", err)
		}
		llm = service
	}

	return matcher, llm, nil
}

func setupLogger(p *profile.Profile) {
	var handler slog.Handler
	if p.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8000)
	viper.SetDefault("data", ".")
	viper.SetDefault("matcher", "embedding")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8000, "port of server")
	rootCmd.PersistentFlags().String("data", ".", "data directory")
	rootCmd.PersistentFlags().String("matcher", "embedding", `matching strategy, "embedding" or "substring"`)
	rootCmd.PersistentFlags().String("memory-file", "", "path of the persisted memory file")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("thursday")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
