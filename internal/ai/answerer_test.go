package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswer_NoCredentialReturnsMarker(t *testing.T) {
	a := NewAnswerer(&stubCompleter{available: false})

	got, err := a.Answer(context.Background(), "who is alice?", "some context")
	require.NoError(t, err, "missing credential is a degraded value, not an error")
	assert.Equal(t, MissingCredentialMarker, got)
}

func TestAnswer_ReturnsTrimmedReply(t *testing.T) {
	stub := &stubCompleter{available: true, reply: "  Alice asked about Paris.  \n"}
	a := NewAnswerer(stub)

	got, err := a.Answer(context.Background(), "who asked about paris?", "- Alice | ts | 1: paris please")
	require.NoError(t, err)
	assert.Equal(t, "Alice asked about Paris.", got)
}

func TestAnswer_PromptCarriesContextAndQuestion(t *testing.T) {
	stub := &stubCompleter{available: true, reply: "ok"}
	a := NewAnswerer(stub)

	_, err := a.Answer(context.Background(), "the question", "the context block")
	require.NoError(t, err)

	assert.Contains(t, stub.lastReq.Prompt, "Context:\nthe context block")
	assert.Contains(t, stub.lastReq.Prompt, "Question: the question")
	assert.Contains(t, stub.lastReq.System, OutOfContextMarker)
	assert.Equal(t, int64(200), stub.lastReq.MaxTokens)
	assert.InDelta(t, 0.1, stub.lastReq.Temperature, 0.001)
}

func TestAnswer_TransportFailurePropagates(t *testing.T) {
	stub := &stubCompleter{available: true, err: errors.New("gateway timeout")}
	a := NewAnswerer(stub)

	_, err := a.Answer(context.Background(), "q", "ctx")
	assert.Error(t, err)
}
