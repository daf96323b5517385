package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"trendradar/internal/digest"
	"trendradar/internal/mailer"
	"trendradar/internal/metrics"
	"trendradar/internal/model"
	"trendradar/pkg/llm"
	"trendradar/pkg/snapshot"
)

type Outcome string

const (
	OutcomeSent             Outcome = "sent"
	OutcomeNoSnapshot       Outcome = "no_snapshot"
	OutcomeNoTopics         Outcome = "no_topics"
	OutcomeSummaryFailed    Outcome = "summary_failed"
	OutcomeDeliveryDisabled Outcome = "delivery_disabled"
	OutcomeDeliveryFailed   Outcome = "delivery_failed"
	OutcomeFetchFailed      Outcome = "fetch_failed"
)

type TopicSource interface {
	Load(ctx context.Context, date time.Time) (*model.Extraction, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (*llm.Summary, error)
}

type Runner struct {
	topics      TopicSource
	summarizer  Summarizer
	notifier    mailer.Notifier
	location    *time.Location
	promptLimit int
	now         func() time.Time
}

type Option func(*Runner)

func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

func WithPromptLimit(limit int) Option {
	return func(r *Runner) {
		r.promptLimit = limit
	}
}

func NewRunner(topics TopicSource, summarizer Summarizer, notifier mailer.Notifier, loc *time.Location, opts ...Option) *Runner {
	r := &Runner{
		topics:      topics,
		summarizer:  summarizer,
		notifier:    notifier,
		location:    loc,
		promptLimit: digest.DefaultPromptTopics,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run produces and delivers one digest. Every failure is logged and reported
// through the returned outcome.
func (r *Runner) Run(ctx context.Context) Outcome {
	outcome := r.run(ctx)
	metrics.DigestRuns.WithLabelValues(string(outcome)).Inc()
	slog.Info("digest run finished", "outcome", outcome)
	return outcome
}

func (r *Runner) run(ctx context.Context) Outcome {
	now := r.now()

	extraction, err := r.topics.Load(ctx, now)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			slog.Warn("no snapshot for today yet", "key", snapshot.Key(now, r.location))
			return OutcomeNoSnapshot
		}
		slog.Error("error fetching snapshot", "error", err)
		return OutcomeFetchFailed
	}

	// only the latest run's mode carries a value
	metrics.TopicsExtracted.Reset()
	metrics.TopicsExtracted.WithLabelValues(string(extraction.Mode)).Set(float64(len(extraction.Topics)))

	if extraction.Empty() {
		slog.Warn("snapshot has no usable topics")
		return OutcomeNoTopics
	}

	part := digest.DayPartAt(now, r.location)
	prompt := digest.BuildPrompt(extraction, part, r.promptLimit)

	summary, err := r.summarizer.Summarize(ctx, prompt)
	if err != nil {
		if llm.Exhausted(err) {
			slog.Error("no candidate model produced a summary, skipping email", "error", err)
		} else {
			slog.Error("error generating summary", "error", err)
		}
		return OutcomeSummaryFailed
	}

	msg, err := digest.Compose(digest.ComposeInput{
		SummaryHTML: summary.HTML,
		Model:       summary.Model,
		Extraction:  extraction,
		Now:         now,
		Location:    r.location,
	})
	if err != nil {
		slog.Error("error composing digest", "error", err)
		return OutcomeSummaryFailed
	}

	if !r.notifier.Enabled() {
		if err := r.notifier.Send(ctx, msg); err != nil {
			slog.Error("error printing digest", "error", err)
		}
		return OutcomeDeliveryDisabled
	}

	if err := r.notifier.Send(ctx, msg); err != nil {
		slog.Error("error sending digest", "subject", msg.Subject, "error", err)
		return OutcomeDeliveryFailed
	}

	metrics.LastSuccess.SetToCurrentTime()
	slog.Info("digest delivered", "subject", msg.Subject, "model", msg.Model, "topics", len(extraction.Topics))
	return OutcomeSent
}

// ObserveAttempt is an llm.AttemptHook that counts model attempts by result.
func ObserveAttempt(model string, err error) {
	result := "success"
	switch {
	case err == nil:
	case llm.IsModelNotFound(err):
		result = "not_found"
	default:
		result = "error"
	}
	metrics.ObserveAttempt(model, result)
}
