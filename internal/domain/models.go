package domain

import "time"

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// Orientation represents the orientation of a drawn tarot card.
type Orientation string

const (
	Upright  Orientation = "upright"
	Reversed Orientation = "reversed"
)

// QuestionType categorizes a querent's question for context-aware
// interpretations. GeneralQuestion is the neutral value: it carries no
// question context during assembly.
type QuestionType string

const (
	LoveQuestion      QuestionType = "love"
	CareerQuestion    QuestionType = "career"
	SpiritualQuestion QuestionType = "spiritual"
	FinancialQuestion QuestionType = "financial"
	HealthQuestion    QuestionType = "health"
	GeneralQuestion   QuestionType = "general"
)

// ParseQuestionType maps a raw string to a QuestionType. Empty input stays
// empty (meaning "unset"); anything unrecognized becomes GeneralQuestion.
func ParseQuestionType(s string) QuestionType {
	switch QuestionType(s) {
	case LoveQuestion, CareerQuestion, SpiritualQuestion, FinancialQuestion, HealthQuestion, GeneralQuestion:
		return QuestionType(s)
	case "":
		return ""
	default:
		return GeneralQuestion
	}
}

// RelationshipType identifies how two cards relate within a reading.
type RelationshipType string

const (
	Amplifies        RelationshipType = "amplifies"
	Challenges       RelationshipType = "challenges"
	Clarifies        RelationshipType = "clarifies"
	SimilarEnergy    RelationshipType = "similar_energy"
	OppositeEnergy   RelationshipType = "opposite_energy"
	LearningSequence RelationshipType = "learning_sequence"
)

// knownRelationshipTypes gates the relationship scan: card data may carry
// relationship buckets this version does not model yet, and those are
// skipped rather than rejected.
var knownRelationshipTypes = map[RelationshipType]bool{
	Amplifies:        true,
	Challenges:       true,
	Clarifies:        true,
	SimilarEnergy:    true,
	OppositeEnergy:   true,
	LearningSequence: true,
}

// SpreadPosition defines one position in a spread.
type SpreadPosition struct {
	Name                string                  `json:"name" yaml:"name"`
	ShortDescription    string                  `json:"short_description" yaml:"short_description"`
	DetailedDescription string                  `json:"detailed_description" yaml:"detailed_description"`
	Keywords            []string                `json:"keywords" yaml:"keywords"`
	RAGMapping          string                  `json:"rag_mapping" yaml:"rag_mapping"`
	QuestionAdaptations map[QuestionType]string `json:"question_adaptations" yaml:"question_adaptations"`
}

// Description returns the detailed description, falling back to the short
// one when no detailed text was authored.
func (p SpreadPosition) Description() string {
	if p.DetailedDescription != "" {
		return p.DetailedDescription
	}
	return p.ShortDescription
}

// SpreadDefinition is a named, ordered arrangement of positions.
type SpreadDefinition struct {
	ID          string           `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description" yaml:"description"`
	Category    string           `json:"category" yaml:"category"`
	Difficulty  string           `json:"difficulty" yaml:"difficulty"`
	Positions   []SpreadPosition `json:"positions" yaml:"positions"`
}

// DrawnCard is a card drawn into a specific spread position. Orientation is
// fixed at draw time and never mutated by assembly.
type DrawnCard struct {
	CardID        string      `json:"card_id"`
	CardName      string      `json:"card_name"`
	PositionIndex int         `json:"position_index"`
	PositionName  string      `json:"position_name"`
	Orientation   Orientation `json:"orientation"`
	ImagePath     string      `json:"image_path,omitempty"`
}

// Reading is a complete reading: a spread plus the cards drawn into it.
// Invariant: len(DrawnCards) == len(spread.Positions) for the spread named
// by SpreadID.
type Reading struct {
	ID             string       `json:"id"`
	CreatedAt      time.Time    `json:"created_at"`
	SpreadID       string       `json:"spread_id"`
	SpreadName     string       `json:"spread_name"`
	Question       string       `json:"question,omitempty"`
	QuestionType   QuestionType `json:"question_type,omitempty"`
	DrawnCards     []DrawnCard  `json:"drawn_cards"`
	AllowReversals bool         `json:"allow_reversals"`
	Seed           *uint64      `json:"seed,omitempty"`
}

// CardInterpretation is the fully resolved interpretation for a single
// drawn card in its position. It is a pure function of the drawn card, its
// position definition, the card data, and the active question category.
type CardInterpretation struct {
	CardID        string      `json:"card_id"`
	CardName      string      `json:"card_name"`
	PositionIndex int         `json:"position_index"`
	PositionName  string      `json:"position_name"`
	PositionDesc  string      `json:"position_description"`
	Orientation   Orientation `json:"orientation"`

	PositionInterpretation string   `json:"position_interpretation"`
	PositionKeywords       []string `json:"position_keywords,omitempty"`

	// Question context is optional; empty means the category was unset,
	// general, or not authored for this card.
	QuestionContext  string   `json:"question_context,omitempty"`
	QuestionKeywords []string `json:"question_keywords,omitempty"`

	CoreEssence  string   `json:"core_essence"`
	CoreKeywords []string `json:"core_keywords,omitempty"`

	ImagePath string `json:"image_path,omitempty"`
}

// CardRelationshipMatch is a declared relationship between two cards that
// are both present in the reading. Card1ID is always the lexicographically
// smaller ID.
type CardRelationshipMatch struct {
	Card1ID          string           `json:"card1_id"`
	Card1Name        string           `json:"card1_name"`
	Card2ID          string           `json:"card2_id"`
	Card2Name        string           `json:"card2_name"`
	RelationshipType RelationshipType `json:"relationship_type"`
	Interpretation   string           `json:"interpretation"`
	Keywords         []string         `json:"keywords,omitempty"`
}

// AssembledContext is the deterministic output of assembly: one
// interpretation per drawn card in position order, plus any relationships
// found between drawn cards. It is immutable once returned and serializes
// to plain JSON for downstream synthesis and rendering.
type AssembledContext struct {
	ReadingID    string       `json:"reading_id"`
	SpreadName   string       `json:"spread_name"`
	Question     string       `json:"question,omitempty"`
	QuestionType QuestionType `json:"question_type,omitempty"`

	CardInterpretations []CardInterpretation    `json:"card_interpretations"`
	Relationships       []CardRelationshipMatch `json:"relationships,omitempty"`

	// RawCards echoes per-card data for template rendering downstream.
	RawCards []map[string]any `json:"raw_cards,omitempty"`
}
