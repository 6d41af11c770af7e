package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/katelouie/arcanite/internal/domain"
	"github.com/katelouie/arcanite/internal/ports"
	"github.com/katelouie/arcanite/internal/render"
)

// CreateReadingRequest is the application-level input (no HTTP types).
type CreateReadingRequest struct {
	DeckID       string
	SpreadID     string
	Question     string
	QuestionType string
	// AllowReversals defaults to true at the transport layer.
	AllowReversals bool
	// Seed makes the draw reproducible when set.
	Seed *uint64
	// IncludeRelationships controls the relationship scan during assembly.
	IncludeRelationships bool
	// Synthesize requests an LLM narrative on top of the assembled context.
	Synthesize bool
	Tradition  string
}

// CreateReadingResponse is the application-level output.
type CreateReadingResponse struct {
	Reading   domain.Reading
	Context   domain.AssembledContext
	Synthesis *ports.SynthesisOutput
	Model     string
	LatencyMS int64
}

// ReadingService orchestrates deck access, drawing, question
// classification, deterministic assembly, and optional LLM synthesis.
type ReadingService struct {
	decks       ports.DeckStore
	spreads     domain.SpreadSource
	synthesizer ports.Synthesizer
	classifier  ports.Classifier
	rng         domain.RNG
	logger      *slog.Logger
}

// NewReadingService wires a service. synthesizer and classifier may be nil,
// in which case synthesis is skipped and unclassified questions fall back
// to the general category.
func NewReadingService(
	decks ports.DeckStore,
	spreads domain.SpreadSource,
	synthesizer ports.Synthesizer,
	classifier ports.Classifier,
	rng domain.RNG,
	logger *slog.Logger,
) *ReadingService {
	return &ReadingService{
		decks:       decks,
		spreads:     spreads,
		synthesizer: synthesizer,
		classifier:  classifier,
		rng:         rng,
		logger:      logger,
	}
}

func (s *ReadingService) CreateReading(ctx context.Context, req CreateReadingRequest) (CreateReadingResponse, error) {
	deck, err := s.decks.GetDeck(ctx, req.DeckID)
	if err != nil {
		return CreateReadingResponse{}, fmt.Errorf("get deck: %w", err)
	}

	spread, err := s.spreads.Spread(req.SpreadID)
	if err != nil {
		return CreateReadingResponse{}, fmt.Errorf("load spread: %w", err)
	}

	questionType := s.resolveQuestionType(ctx, req)

	rng := s.rng
	if req.Seed != nil {
		rng = domain.NewSeededRNG(*req.Seed)
	}

	drawn, err := domain.Draw(deck, spread, rng, req.AllowReversals)
	if err != nil {
		return CreateReadingResponse{}, fmt.Errorf("draw: %w", err)
	}

	reading := domain.Reading{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		SpreadID:       spread.ID,
		SpreadName:     spread.Name,
		Question:       req.Question,
		QuestionType:   questionType,
		DrawnCards:     drawn,
		AllowReversals: req.AllowReversals,
		Seed:           req.Seed,
	}

	assembler := domain.NewAssembler(deck, s.spreads)
	assembled, err := assembler.Assemble(reading, "", req.IncludeRelationships)
	if err != nil {
		return CreateReadingResponse{}, fmt.Errorf("assemble: %w", err)
	}

	resp := CreateReadingResponse{Reading: reading, Context: assembled}

	if req.Synthesize && s.synthesizer != nil {
		start := time.Now()
		out, err := s.synthesizer.Synthesize(ctx, ports.SynthesisInput{
			SpreadName:   assembled.SpreadName,
			Question:     assembled.Question,
			QuestionType: assembled.QuestionType,
			Tradition:    req.Tradition,
			Context:      render.Markdown(assembled),
		})
		resp.LatencyMS = time.Since(start).Milliseconds()
		if err != nil {
			return CreateReadingResponse{}, fmt.Errorf("synthesize: %w", err)
		}
		resp.Synthesis = &out
		resp.Model = out.Model
	}

	return resp, nil
}

// resolveQuestionType picks the category for a reading: an explicit one
// wins; otherwise a present question is classified when a classifier is
// wired. Classification failure degrades to general rather than failing
// the reading.
func (s *ReadingService) resolveQuestionType(ctx context.Context, req CreateReadingRequest) domain.QuestionType {
	if qt := domain.ParseQuestionType(req.QuestionType); qt != "" {
		return qt
	}
	if req.Question == "" {
		return ""
	}
	if s.classifier == nil {
		return domain.GeneralQuestion
	}

	qt, err := s.classifier.Classify(ctx, req.Question)
	if err != nil {
		s.logger.WarnContext(ctx, "question classification failed, using general", "error", err)
		return domain.GeneralQuestion
	}
	return qt
}
