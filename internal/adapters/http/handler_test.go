package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katelouie/arcanite/internal/adapters/decks"
	"github.com/katelouie/arcanite/internal/adapters/spreads"
	"github.com/katelouie/arcanite/internal/app"
)

type testRNG struct{ r *rand.Rand }

func (t testRNG) Intn(n int) int { return t.r.IntN(n) }

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	registry, err := spreads.NewEmbedded()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := app.NewReadingService(decks.NewStore(), registry, nil, nil,
		testRNG{r: rand.New(rand.NewPCG(1, 1))}, logger)

	e := echo.New()
	e.Use(RequestIDMiddleware())
	NewHandler(svc, registry, "major_arcana").Register(e)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListSpreads(t *testing.T) {
	e := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/v1/spreads", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SpreadsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Spreads, 3)
	assert.Equal(t, "five_card_cross", resp.Spreads[0].ID)
}

func TestCreateReading(t *testing.T) {
	e := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/v1/readings",
		`{"spread": "three_card", "question": "What should I focus on?", "question_type": "career", "seed": 42}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ReadingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Len(t, resp.Reading.Cards, 3)
	assert.Len(t, resp.Context.CardInterpretations, 3)
	assert.Equal(t, "career", resp.Reading.QuestionType)
	assert.Equal(t, "Past, Present, Future", resp.Reading.SpreadName)
	assert.NotEmpty(t, resp.Meta.RequestID)
	assert.Nil(t, resp.Synthesis)

	for i, card := range resp.Reading.Cards {
		assert.Equal(t, i, card.Position)
	}
}

func TestCreateReading_SeededIsReproducible(t *testing.T) {
	e := newTestServer(t)
	body := `{"spread": "five_card_cross", "seed": 7}`

	first := doJSON(e, http.MethodPost, "/v1/readings", body)
	second := doJSON(e, http.MethodPost, "/v1/readings", body)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b ReadingResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a.Reading.Cards, b.Reading.Cards)
}

func TestCreateReading_Validation(t *testing.T) {
	e := newTestServer(t)

	cases := map[string]string{
		"missing spread":    `{}`,
		"bad question_type": `{"spread": "three_card", "question_type": "romance"}`,
		"long question":     `{"spread": "three_card", "question": "` + strings.Repeat("x", 501) + `"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/v1/readings", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateReading_UnknownSpread(t *testing.T) {
	e := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/v1/readings", `{"spread": "celtic_cross"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateReading_UnknownDeck(t *testing.T) {
	e := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/v1/readings", `{"spread": "three_card", "deck": "lenormand"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
