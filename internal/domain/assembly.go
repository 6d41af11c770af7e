package domain

import (
	"fmt"
	"sort"
	"strings"
)

// placeholderPrefix marks relationship interpretations that exist in card
// data but have not been authored yet. They are treated as absent.
const placeholderPrefix = "[TO BE WRITTEN"

// CardSource resolves cards by ID. A Deck satisfies it.
type CardSource interface {
	Card(id string) (*Card, error)
}

// SpreadSource resolves spread definitions by ID. Implementations are
// immutable snapshots: assembly never triggers a reload.
type SpreadSource interface {
	Spread(id string) (SpreadDefinition, error)
}

// Assembler deterministically assembles card interpretations for a reading
// using each position's RAG mapping. No LLM involved: this is pure lookup
// over already-loaded card and spread data.
type Assembler struct {
	cards   CardSource
	spreads SpreadSource
}

func NewAssembler(cards CardSource, spreads SpreadSource) *Assembler {
	return &Assembler{cards: cards, spreads: spreads}
}

// Assemble resolves every drawn card's interpretation in position order and
// optionally scans for relationships between drawn cards.
//
// category overrides the reading's stored question type for this call only;
// pass "" to use the reading's own. Unset and general categories leave the
// question-context fields empty.
//
// Fails only on unknown card/spread IDs or a reading whose drawn cards do
// not line up with the spread; missing interpretation data never fails.
func (a *Assembler) Assemble(reading Reading, category QuestionType, includeRelationships bool) (AssembledContext, error) {
	spread, err := a.spreads.Spread(reading.SpreadID)
	if err != nil {
		return AssembledContext{}, fmt.Errorf("load spread %q: %w", reading.SpreadID, err)
	}

	if category == "" {
		category = reading.QuestionType
	}

	if len(reading.DrawnCards) != len(spread.Positions) {
		return AssembledContext{}, fmt.Errorf("%w: %d cards drawn for %d positions",
			ErrSpreadMismatch, len(reading.DrawnCards), len(spread.Positions))
	}

	interpretations := make([]CardInterpretation, 0, len(reading.DrawnCards))
	rawCards := make([]map[string]any, 0, len(reading.DrawnCards))

	for _, drawn := range reading.DrawnCards {
		card, err := a.cards.Card(drawn.CardID)
		if err != nil {
			return AssembledContext{}, fmt.Errorf("card %q: %w", drawn.CardID, err)
		}

		if drawn.PositionIndex < 0 || drawn.PositionIndex >= len(spread.Positions) {
			return AssembledContext{}, fmt.Errorf("%w: position index %d out of range",
				ErrSpreadMismatch, drawn.PositionIndex)
		}
		position := spread.Positions[drawn.PositionIndex]

		reversed := drawn.Orientation == Reversed
		interp := card.Interpretation(position.RAGMapping, reversed)

		var questionContext InterpretationText
		if category != "" && category != GeneralQuestion {
			questionContext = card.QuestionContext(category, reversed)
		}

		core := card.CoreMeaning(reversed)

		interpretations = append(interpretations, CardInterpretation{
			CardID:                 drawn.CardID,
			CardName:               drawn.CardName,
			PositionIndex:          drawn.PositionIndex,
			PositionName:           position.Name,
			PositionDesc:           position.Description(),
			Orientation:            drawn.Orientation,
			PositionInterpretation: interp.Text,
			PositionKeywords:       interp.Keywords,
			QuestionContext:        questionContext.Text,
			QuestionKeywords:       questionContext.Keywords,
			CoreEssence:            core.Essence,
			CoreKeywords:           core.Keywords,
			ImagePath:              drawn.ImagePath,
		})

		rawCards = append(rawCards, map[string]any{
			"card_id":                 drawn.CardID,
			"card_name":               drawn.CardName,
			"position_index":          drawn.PositionIndex,
			"position_name":           position.Name,
			"position_description":    position.Description(),
			"orientation":             string(drawn.Orientation),
			"position_interpretation": interp.Text,
			"position_keywords":       interp.Keywords,
			"question_context":        questionContext.Text,
			"question_keywords":       questionContext.Keywords,
			"core_essence":            core.Essence,
			"core_keywords":           core.Keywords,
			"image_path":              drawn.ImagePath,
			"raw_card_data":           card.Raw(),
		})
	}

	var relationships []CardRelationshipMatch
	if includeRelationships {
		relationships, err = a.findRelationships(reading)
		if err != nil {
			return AssembledContext{}, err
		}
	}

	return AssembledContext{
		ReadingID:           reading.ID,
		SpreadName:          reading.SpreadName,
		Question:            reading.Question,
		QuestionType:        category,
		CardInterpretations: interpretations,
		Relationships:       relationships,
		RawCards:            rawCards,
	}, nil
}

// findRelationships scans every drawn card's declared relationships for
// targets that are also present in the reading. Each unordered pair is
// canonicalized with the lexicographically smaller ID as card1 and emitted
// at most once per relationship type, regardless of which side declared it.
// Unknown relationship types and placeholder interpretations are skipped;
// a skipped placeholder does not claim the pair, so a written declaration
// from the other side can still surface.
//
// Map iteration order is randomized in Go, so relationship types and target
// IDs are sorted to keep the result deterministic for identical input.
func (a *Assembler) findRelationships(reading Reading) ([]CardRelationshipMatch, error) {
	drawnIDs := make(map[string]bool, len(reading.DrawnCards))
	for _, drawn := range reading.DrawnCards {
		drawnIDs[drawn.CardID] = true
	}

	seen := make(map[string]bool)
	var matches []CardRelationshipMatch
	for _, drawn := range reading.DrawnCards {
		card, err := a.cards.Card(drawn.CardID)
		if err != nil {
			return nil, fmt.Errorf("card %q: %w", drawn.CardID, err)
		}

		byType := card.Relationships()
		for _, relType := range sortedKeys(byType) {
			if !knownRelationshipTypes[RelationshipType(relType)] {
				continue
			}

			targets := byType[relType]
			for _, otherID := range sortedKeys(targets) {
				if !drawnIDs[otherID] || otherID == drawn.CardID {
					continue
				}

				card1ID, card2ID := drawn.CardID, otherID
				if card1ID > card2ID {
					card1ID, card2ID = card2ID, card1ID
				}
				key := card1ID + "|" + card2ID + "|" + relType
				if seen[key] {
					continue
				}

				data := targets[otherID]
				if data.Interpretation == "" || strings.HasPrefix(data.Interpretation, placeholderPrefix) {
					continue
				}
				seen[key] = true

				card1, err := a.cards.Card(card1ID)
				if err != nil {
					return nil, fmt.Errorf("card %q: %w", card1ID, err)
				}
				card2, err := a.cards.Card(card2ID)
				if err != nil {
					return nil, fmt.Errorf("card %q: %w", card2ID, err)
				}

				matches = append(matches, CardRelationshipMatch{
					Card1ID:          card1ID,
					Card1Name:        card1.Name(),
					Card2ID:          card2ID,
					Card2Name:        card2.Name(),
					RelationshipType: RelationshipType(relType),
					Interpretation:   data.Interpretation,
					Keywords:         data.Keywords,
				})
			}
		}
	}

	return matches, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
