package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/katelouie/arcanite/internal/adapters/spreads"
	"github.com/katelouie/arcanite/internal/app"
	"github.com/katelouie/arcanite/internal/domain"
)

const maxQuestionLen = 500

type Handler struct {
	svc      *app.ReadingService
	registry *spreads.Registry
	// defaultDeck is used when the request omits a deck ID.
	defaultDeck string
}

func NewHandler(svc *app.ReadingService, registry *spreads.Registry, defaultDeck string) *Handler {
	return &Handler{svc: svc, registry: registry, defaultDeck: defaultDeck}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)
	e.GET("/v1/spreads", h.ListSpreads)
	e.POST("/v1/readings", h.CreateReading)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) ListSpreads(c echo.Context) error {
	return c.JSON(http.StatusOK, SpreadsResponse{Spreads: h.registry.Infos()})
}

func (h *Handler) CreateReading(c echo.Context) error {
	var req CreateReadingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	if req.Spread == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "spread is required"})
	}
	if len(req.Question) > maxQuestionLen {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "question must be at most 500 characters"})
	}
	if req.QuestionType != "" && domain.ParseQuestionType(req.QuestionType) != domain.QuestionType(req.QuestionType) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown question_type"})
	}

	deckID := req.Deck
	if deckID == "" {
		deckID = h.defaultDeck
	}

	appReq := app.CreateReadingRequest{
		DeckID:               deckID,
		SpreadID:             req.Spread,
		Question:             req.Question,
		QuestionType:         req.QuestionType,
		AllowReversals:       boolOr(req.AllowReversals, true),
		Seed:                 req.Seed,
		IncludeRelationships: boolOr(req.IncludeRelationships, true),
		Synthesize:           req.Synthesize,
		Tradition:            req.Tradition,
	}

	resp, err := h.svc.CreateReading(c.Request().Context(), appReq)
	if err != nil {
		return mapError(c, err)
	}

	requestID, _ := c.Get("request_id").(string)
	return c.JSON(http.StatusOK, toResponse(resp, requestID))
}

func toResponse(r app.CreateReadingResponse, requestID string) ReadingResponse {
	cards := make([]CardResp, len(r.Reading.DrawnCards))
	for i, dc := range r.Reading.DrawnCards {
		cards[i] = CardResp{
			ID:           dc.CardID,
			Name:         dc.CardName,
			Position:     dc.PositionIndex,
			PositionName: dc.PositionName,
			Orientation:  dc.Orientation,
		}
	}

	out := ReadingResponse{
		Reading: ReadingResp{
			ID:             r.Reading.ID,
			CreatedAt:      r.Reading.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			SpreadID:       r.Reading.SpreadID,
			SpreadName:     r.Reading.SpreadName,
			Question:       r.Reading.Question,
			QuestionType:   string(r.Reading.QuestionType),
			Cards:          cards,
			AllowReversals: r.Reading.AllowReversals,
			Seed:           r.Reading.Seed,
		},
		Context: r.Context,
		Meta: MetaResp{
			Model:     r.Model,
			RequestID: requestID,
			LatencyMS: r.LatencyMS,
		},
	}
	if r.Synthesis != nil {
		out.Synthesis = &SynthesisResp{
			Text:       r.Synthesis.Text,
			Tone:       r.Synthesis.Tone,
			Disclaimer: r.Synthesis.Disclaimer,
		}
	}
	return out
}

func mapError(c echo.Context, err error) error {
	requestID, _ := c.Get("request_id").(string)

	switch {
	case errors.Is(err, domain.ErrDeckNotFound), errors.Is(err, domain.ErrSpreadNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotEnoughCards):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUpstreamLLM), errors.Is(err, domain.ErrInvalidLLMJSON):
		slog.Error("upstream LLM failure", "request_id", requestID, "error", err)
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "upstream LLM failure"})
	default:
		// ErrSpreadMismatch and the rest are programming errors.
		slog.Error("internal error", "request_id", requestID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func boolOr(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}
