package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// OutOfContextMarker is the exact reply the model is instructed to
// give when the context does not contain the answer.
const OutOfContextMarker = "I don't know"

// MissingCredentialMarker is returned in place of an answer when no
// completion credential is configured. It is a value, not an error:
// callers surface it verbatim.
const MissingCredentialMarker = "Error: completion service credential not configured"

const answerSystemPrompt = "You are a helpful assistant that answers questions strictly using the provided message context. " +
	"If the answer is not in the context, respond exactly with '" + OutOfContextMarker + "'. " +
	"Do not hallucinate or invent details."

// Answerer answers questions from a prepared context block, and only
// from it.
type Answerer struct {
	completer Completer
	log       *slog.Logger
}

// NewAnswerer builds an answerer over the given completion capability.
func NewAnswerer(c Completer) *Answerer {
	return &Answerer{
		completer: c,
		log:       slog.Default().With("component", "answerer"),
	}
}

// Answer submits the question and context and returns the trimmed
// completion verbatim. With no credential configured it returns
// MissingCredentialMarker. Transport exhaustion is the only error.
func (a *Answerer) Answer(ctx context.Context, question, contextBlock string) (string, error) {
	if !a.completer.Available() {
		a.log.Warn("answering without completion credential; returning degraded marker")
		return MissingCredentialMarker, nil
	}

	prompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s\nAnswer:", contextBlock, question)

	reply, err := a.completer.Complete(ctx, Request{
		Operation:   "qa_answer",
		System:      answerSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   200,
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}
	return strings.TrimSpace(reply), nil
}
