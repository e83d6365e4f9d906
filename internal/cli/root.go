// Package cli provides the command-line interface for shepherd.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/avandyck/shepherd/internal/assistant"
	"github.com/avandyck/shepherd/internal/config"
	"github.com/avandyck/shepherd/internal/directory"
	"github.com/avandyck/shepherd/internal/extract"
	"github.com/avandyck/shepherd/internal/llm"
	"github.com/avandyck/shepherd/internal/metrics"
	"github.com/avandyck/shepherd/internal/parser"
	"github.com/avandyck/shepherd/internal/resolve"
	"github.com/avandyck/shepherd/internal/retrieval"
	"github.com/avandyck/shepherd/internal/session"
	"github.com/avandyck/shepherd/internal/store"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	inMemory bool
	tenantID string
	userName string

	// Shared state built in PersistentPreRunE
	cfg       config.Config
	logger    *slog.Logger
	closeLogs func() error
	backend   store.Store
	collector *metrics.Collector

	// Lazy-initialized LLM components
	embedder *llm.Embedder
	model    *llm.Model
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "shepherd",
	Short: "Team-care assistant for ministry team leaders",
	Long: `Shepherd is a conversational assistant for people leading volunteer
teams. Log interactions after conversations, ask who is serving and who
is blocked out, set follow-up reminders, and get answers grounded in
your own notes and uploaded documents.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		logger, closeLogs = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)
		collector = metrics.NewCollector()

		if userName == "" {
			userName = "Team Leader"
			if u, err := user.Current(); err == nil && u.Username != "" {
				userName = u.Username
			}
		}

		if inMemory {
			backend = store.NewMemory()
			return nil
		}

		ctx := context.Background()
		surreal, err := store.NewSurreal(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		if err := surreal.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
		backend = surreal
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if surreal, ok := backend.(*store.Surreal); ok {
			if err := surreal.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if closeLogs != nil {
			_ = closeLogs()
		}
	},
}

// getAssistant wires the pipeline with lazy LLM initialization.
func getAssistant() (*assistant.Assistant, error) {
	if embedder == nil {
		var err error
		embedder, err = llm.NewEmbedder(cfg)
		if err != nil {
			return nil, fmt.Errorf("init embedder: %w", err)
		}
		model, err = llm.NewModel(cfg)
		if err != nil {
			return nil, fmt.Errorf("init model: %w", err)
		}
	}

	resolver := resolve.New(backend, cfg.MatchThreshold)
	engine := retrieval.NewEngine(backend, backend, embedder, retrieval.Options{
		Floor:     cfg.SimilarityFloor,
		NoteLimit: cfg.NoteSearchLimit,
		DocLimit:  cfg.DocSearchLimit,
		Budget:    cfg.EvidenceBudget,
	})

	return assistant.New(assistant.Deps{
		Config:    cfg,
		Sessions:  session.NewManager(backend),
		Store:     backend,
		Resolver:  resolver,
		Retriever: engine,
		Extractor: extract.NewPipeline(model, embedder, resolver, backend, backend),
		Model:     model,
		Directory: directory.New(cfg, logger),
		Metrics:   collector,
		Logger:    logger,
	}), nil
}

// getIngestor wires the document ingestion pipeline.
func getIngestor() (*parser.Ingestor, error) {
	if embedder == nil {
		var err error
		embedder, err = llm.NewEmbedder(cfg)
		if err != nil {
			return nil, fmt.Errorf("init embedder: %w", err)
		}
	}
	return parser.NewIngestor(embedder, backend, parser.DefaultChunkConfig()), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&inMemory, "memory", false, "use an in-memory store instead of SurrealDB")
	rootCmd.PersistentFlags().StringVar(&tenantID, "tenant", "default", "tenant scope for all data")
	rootCmd.PersistentFlags().StringVarP(&userName, "user", "u", "", "name shown to the assistant (default: current OS user)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(followupsCmd)
	rootCmd.AddCommand(correctCmd)
	rootCmd.AddCommand(statsCmd)
}
