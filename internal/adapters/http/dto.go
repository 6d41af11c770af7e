package http

import (
	"github.com/katelouie/arcanite/internal/adapters/spreads"
	"github.com/katelouie/arcanite/internal/domain"
)

// CreateReadingRequest is the JSON body for POST /v1/readings.
type CreateReadingRequest struct {
	Spread       string  `json:"spread"`
	Deck         string  `json:"deck"`
	Question     string  `json:"question"`
	QuestionType string  `json:"question_type"`
	Seed         *uint64 `json:"seed"`
	// Pointers distinguish "omitted" from "false"; both default to true.
	AllowReversals       *bool  `json:"allow_reversals"`
	IncludeRelationships *bool  `json:"include_relationships"`
	Synthesize           bool   `json:"synthesize"`
	Tradition            string `json:"tradition"`
}

// ReadingResponse is the JSON shape returned by POST /v1/readings.
type ReadingResponse struct {
	Reading   ReadingResp             `json:"reading"`
	Context   domain.AssembledContext `json:"context"`
	Synthesis *SynthesisResp          `json:"synthesis,omitempty"`
	Meta      MetaResp                `json:"meta"`
}

type ReadingResp struct {
	ID             string             `json:"id"`
	CreatedAt      string             `json:"created_at"`
	SpreadID       string             `json:"spread_id"`
	SpreadName     string             `json:"spread_name"`
	Question       string             `json:"question,omitempty"`
	QuestionType   string             `json:"question_type,omitempty"`
	Cards          []CardResp         `json:"cards"`
	AllowReversals bool               `json:"allow_reversals"`
	Seed           *uint64            `json:"seed,omitempty"`
}

type CardResp struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Position     int                `json:"position"`
	PositionName string             `json:"position_name"`
	Orientation  domain.Orientation `json:"orientation"`
}

type SynthesisResp struct {
	Text       string `json:"text"`
	Tone       string `json:"tone"`
	Disclaimer string `json:"disclaimer"`
}

type MetaResp struct {
	Model     string `json:"model,omitempty"`
	RequestID string `json:"request_id"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
}

// SpreadsResponse is the JSON shape returned by GET /v1/spreads.
type SpreadsResponse struct {
	Spreads []spreads.Info `json:"spreads"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
