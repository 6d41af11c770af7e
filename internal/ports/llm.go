package ports

import (
	"context"

	"github.com/katelouie/arcanite/internal/domain"
)

// SynthesisInput holds everything the LLM needs to weave the assembled
// context into a narrative. Context is the rendered markdown of an
// AssembledContext; the synthesizer treats it as opaque.
type SynthesisInput struct {
	SpreadName   string
	Question     string
	QuestionType domain.QuestionType
	Tradition    string
	Context      string
}

// SynthesisOutput is the structured narrative returned by the LLM.
type SynthesisOutput struct {
	Text       string `json:"text"`
	Tone       string `json:"tone"`
	Disclaimer string `json:"disclaimer"`
	Model      string `json:"-"`
}

// Synthesizer turns an assembled context into a cohesive narrative.
type Synthesizer interface {
	Synthesize(ctx context.Context, in SynthesisInput) (SynthesisOutput, error)
}

// Classifier assigns a question category to a free-text question.
type Classifier interface {
	Classify(ctx context.Context, question string) (domain.QuestionType, error)
}
