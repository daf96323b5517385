package pipeline

import (
	"context"
	"fmt"
	"io"

	"trendradar/internal/config"
	"trendradar/internal/mailer"
	"trendradar/internal/repository"
	"trendradar/pkg/llm"
	"trendradar/pkg/snapshot"
)

// LoaderFromConfig wires the S3 store into a TopicLoader.
func LoaderFromConfig(ctx context.Context, cfg *config.Config) (*TopicLoader, error) {
	store, err := snapshot.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("error creating snapshot store: %w", err)
	}

	return NewTopicLoader(snapshot.NewFetcher(store, ""), cfg.Location, repository.ExtractOptions{
		Limit:          cfg.TopicLimit,
		MinTitleLength: cfg.MinTitleLength,
	}), nil
}

// RunnerFromConfig wires storage, the model fallback chain and the notifier.
// Digests are printed to out when delivery is disabled.
func RunnerFromConfig(ctx context.Context, cfg *config.Config, out io.Writer) (*Runner, error) {
	loader, err := LoaderFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	generator, err := llm.NewGenerator(ctx, cfg.LLM.Provider, cfg.LLM.APIKey)
	if err != nil {
		return nil, fmt.Errorf("error creating LLM client: %w", err)
	}
	summarizer := llm.NewSummarizer(generator, cfg.LLM.Models, llm.WithAttemptHook(ObserveAttempt))

	return NewRunner(loader, summarizer, mailer.New(cfg.Mail, out), cfg.Location,
		WithPromptLimit(cfg.PromptTopicLimit),
	), nil
}
