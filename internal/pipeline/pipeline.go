// Package pipeline composes retrieval, context building, and answering
// into the question-answering path.
package pipeline

import (
	"context"

	"github.com/aurorahq/memberqa/internal/retrieval"
	"github.com/aurorahq/memberqa/internal/types"
)

// Answerer is the completion-backed answering capability. Production
// wires *ai.Answerer; tests wire a stub.
type Answerer interface {
	Answer(ctx context.Context, question, contextBlock string) (string, error)
}

// Pipeline is the stateless QA path: every call re-ranks and re-builds
// from the messages it is handed. Nothing is cached between calls.
type Pipeline struct {
	answerer Answerer
}

// New builds a pipeline over the given answerer.
func New(a Answerer) *Pipeline {
	return &Pipeline{answerer: a}
}

// Route answers a question over the message set: retrieve the top
// snippets, pack them into a bounded context block, and ask the
// answerer. Every message in the context originates from msgs.
func (p *Pipeline) Route(ctx context.Context, question string, msgs []types.Message) (string, error) {
	snippets := retrieval.Retrieve(msgs, question, retrieval.DefaultTopK)
	block := retrieval.BuildContext(snippets, retrieval.DefaultMaxContextChars)
	return p.answerer.Answer(ctx, question, block)
}
