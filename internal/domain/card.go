package domain

import "strings"

// Card is a single tarot card with its full interpretation tree. The four
// sub-trees (position interpretations, core meanings, question contexts,
// relationships) are kept as decoded JSON and read through typed accessors
// that never fail: absent or malformed data degrades to zero values.
type Card struct {
	id            string
	name          string
	number        int
	suit          string
	archetype     string
	imageFilename string

	positionInterps  map[string]any
	coreMeanings     map[string]any
	questionContexts map[string]any
	relationships    map[string]any

	raw map[string]any
}

// NewCard builds a Card from decoded JSON card data. A missing sub-tree is
// treated as an empty one.
func NewCard(raw map[string]any, imageFilename string) *Card {
	return &Card{
		id:               stringAt(raw, "card_id"),
		name:             stringAt(raw, "card_name"),
		number:           intAt(raw, "card_number"),
		suit:             stringAt(raw, "suit"),
		archetype:        stringAt(raw, "archetype"),
		imageFilename:    imageFilename,
		positionInterps:  mapAt(raw, "position_interpretations"),
		coreMeanings:     mapAt(raw, "core_meanings"),
		questionContexts: mapAt(raw, "question_contexts"),
		relationships:    mapAt(raw, "card_relationships"),
		raw:              raw,
	}
}

func (c *Card) ID() string            { return c.id }
func (c *Card) Name() string          { return c.name }
func (c *Card) Number() int           { return c.number }
func (c *Card) Suit() string          { return c.suit }
func (c *Card) Archetype() string     { return c.archetype }
func (c *Card) ImageFilename() string { return c.imageFilename }

// Raw exposes the decoded card data for downstream template rendering.
func (c *Card) Raw() map[string]any { return c.raw }

// InterpretationText is a resolved interpretation with its keywords.
type InterpretationText struct {
	Text     string
	Keywords []string
}

// Interpretation resolves the position-specific interpretation for a RAG
// mapping like "temporal_positions.past". The dotted path is walked one
// segment at a time; if any segment is missing, or the terminal node is not
// an orientation mapping, the card's core meaning for the requested
// orientation is returned instead. It never fails.
func (c *Card) Interpretation(ragMapping string, reversed bool) InterpretationText {
	current := any(c.positionInterps)
	for _, part := range strings.Split(ragMapping, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return c.coreMeaningFallback(reversed)
		}
		next, ok := node[part]
		if !ok {
			return c.coreMeaningFallback(reversed)
		}
		current = next
	}

	terminal, ok := current.(map[string]any)
	if !ok {
		return c.coreMeaningFallback(reversed)
	}
	return InterpretationText{
		Text:     stringAt(terminal, orientationKey(reversed)),
		Keywords: stringsAt(terminal, "keywords"),
	}
}

func (c *Card) coreMeaningFallback(reversed bool) InterpretationText {
	meaning := mapAt(c.coreMeanings, orientationKey(reversed))
	return InterpretationText{
		Text:     stringAt(meaning, "essence"),
		Keywords: stringsAt(meaning, "keywords"),
	}
}

// QuestionContext resolves the category-specific interpretation. Unlike
// Interpretation there is no fallback: an unauthored category yields empty
// text, which callers treat as "no question context".
func (c *Card) QuestionContext(category QuestionType, reversed bool) InterpretationText {
	context := mapAt(c.questionContexts, string(category))
	return InterpretationText{
		Text:     stringAt(context, orientationKey(reversed)),
		Keywords: stringsAt(context, "keywords"),
	}
}

// CoreMeaning holds the always-present baseline meaning of a card for one
// orientation.
type CoreMeaning struct {
	Essence       string
	Keywords      []string
	Psychological string
	Spiritual     string
	Practical     string
	Shadow        string
}

// CoreMeaning returns the card's core meaning for the given orientation.
func (c *Card) CoreMeaning(reversed bool) CoreMeaning {
	meaning := mapAt(c.coreMeanings, orientationKey(reversed))
	return CoreMeaning{
		Essence:       stringAt(meaning, "essence"),
		Keywords:      stringsAt(meaning, "keywords"),
		Psychological: stringAt(meaning, "psychological"),
		Spiritual:     stringAt(meaning, "spiritual"),
		Practical:     stringAt(meaning, "practical"),
		Shadow:        stringAt(meaning, "shadow"),
	}
}

// RelationshipData is one declared relationship toward another card.
type RelationshipData struct {
	Interpretation string
	Keywords       []string
}

// Relationships returns the card's relationship tree keyed by relationship
// type, then by target card ID. Buckets that are not mappings are dropped.
func (c *Card) Relationships() map[string]map[string]RelationshipData {
	out := make(map[string]map[string]RelationshipData, len(c.relationships))
	for relType, bucket := range c.relationships {
		targets, ok := bucket.(map[string]any)
		if !ok {
			continue
		}
		entries := make(map[string]RelationshipData, len(targets))
		for targetID, data := range targets {
			entry, ok := data.(map[string]any)
			if !ok {
				continue
			}
			entries[targetID] = RelationshipData{
				Interpretation: stringAt(entry, "interpretation"),
				Keywords:       stringsAt(entry, "keywords"),
			}
		}
		out[relType] = entries
	}
	return out
}

func orientationKey(reversed bool) string {
	if reversed {
		return "reversed"
	}
	return "upright"
}

func mapAt(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

func stringAt(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func intAt(m map[string]any, key string) int {
	// JSON numbers decode as float64.
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	return 0
}

func stringsAt(m map[string]any, key string) []string {
	items, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
