package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Summary is the cleaned output of the first candidate model that succeeded.
type Summary struct {
	HTML     string
	Model    string
	Attempts []Attempt
}

type Attempt struct {
	Model string
	Err   error
}

// AttemptHook observes every generation attempt. err is nil on success.
type AttemptHook func(model string, err error)

type Summarizer struct {
	generator Generator
	models    []string
	hook      AttemptHook
}

type SummarizerOption func(*Summarizer)

func WithAttemptHook(hook AttemptHook) SummarizerOption {
	return func(s *Summarizer) {
		s.hook = hook
	}
}

// NewSummarizer tries models in order against generator.
func NewSummarizer(generator Generator, models []string, opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{
		generator: generator,
		models:    append([]string(nil), models...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Summarizer) Models() []string {
	return append([]string(nil), s.models...)
}

type fallbackState int

const (
	stateTrying fallbackState = iota
	stateSucceeded
	stateExhausted
)

// Summarize walks the candidate list: each candidate gets exactly one call,
// any failure moves on to the next one, the first success wins. When every
// candidate failed it returns ErrAllModelsFailed. A cancelled context stops
// the walk early.
func (s *Summarizer) Summarize(ctx context.Context, prompt string) (*Summary, error) {
	summary := &Summary{}

	state := stateTrying
	next := 0
	for state == stateTrying {
		if next >= len(s.models) {
			state = stateExhausted
			break
		}

		model := s.models[next]
		slog.Info("trying model", "provider", s.generator.Name(), "model", model, "candidate", next+1, "of", len(s.models))

		text, err := s.generator.Generate(ctx, model, prompt)
		if err == nil {
			text = CleanHTML(text)
			if text == "" {
				err = &GenerationError{Model: model, Err: ErrEmptyResponse}
			}
		}

		summary.Attempts = append(summary.Attempts, Attempt{Model: model, Err: err})
		if s.hook != nil {
			s.hook(model, err)
		}

		switch {
		case err == nil:
			summary.HTML = text
			summary.Model = model
			state = stateSucceeded
		case ctx.Err() != nil:
			return nil, fmt.Errorf("summarize cancelled at model %s: %w", model, ctx.Err())
		case IsModelNotFound(err):
			slog.Warn("model not available, trying next", "model", model, "error", err)
			next++
		default:
			slog.Error("model call failed, trying next", "model", model, "error", err)
			next++
		}
	}

	if state == stateExhausted {
		s.logAvailableModels(ctx)
		return nil, fmt.Errorf("%w: tried %d", ErrAllModelsFailed, len(summary.Attempts))
	}

	slog.Info("model call succeeded", "model", summary.Model, "attempts", len(summary.Attempts))
	return summary, nil
}

func (s *Summarizer) logAvailableModels(ctx context.Context) {
	lister, ok := s.generator.(ModelLister)
	if !ok || ctx.Err() != nil {
		return
	}

	names, err := lister.ListModels(ctx)
	if err != nil {
		slog.Warn("could not list available models", "provider", s.generator.Name(), "error", err)
		return
	}

	slog.Info("available models", "provider", s.generator.Name(), "models", names)
}

// Exhausted reports whether err means no candidate produced a summary.
func Exhausted(err error) bool {
	return errors.Is(err, ErrAllModelsFailed)
}
