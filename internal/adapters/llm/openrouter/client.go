// Package openrouter implements the LLM ports against the OpenRouter
// chat-completions API.
package openrouter

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/katelouie/arcanite/internal/domain"
	"github.com/katelouie/arcanite/internal/ports"
)

//go:embed traditions.yaml
var traditionsYAML []byte

// DefaultTradition is used when the caller does not name one.
const DefaultTradition = "intuitive"

type tradition struct {
	Description string `yaml:"description"`
	System      string `yaml:"system"`
}

type traditionsFile struct {
	Traditions map[string]tradition `yaml:"traditions"`
}

func loadTraditions() (map[string]tradition, error) {
	var file traditionsFile
	if err := yaml.Unmarshal(traditionsYAML, &file); err != nil {
		return nil, fmt.Errorf("parse traditions: %w", err)
	}
	if _, ok := file.Traditions[DefaultTradition]; !ok {
		return nil, fmt.Errorf("traditions file missing %q", DefaultTradition)
	}
	return file.Traditions, nil
}

// Client implements ports.Synthesizer and ports.Classifier.
type Client struct {
	httpClient     *http.Client
	apiKey         string
	baseURL        string
	model          string
	fallbackModels []string
	traditions     map[string]tradition
	logger         *slog.Logger
}

func NewClient(httpClient *http.Client, apiKey, baseURL, model string, fallbackModels []string, logger *slog.Logger) (*Client, error) {
	traditions, err := loadTraditions()
	if err != nil {
		return nil, err
	}
	return &Client{
		httpClient:     httpClient,
		apiKey:         apiKey,
		baseURL:        strings.TrimRight(baseURL, "/"),
		model:          model,
		fallbackModels: fallbackModels,
		traditions:     traditions,
		logger:         logger,
	}, nil
}

// chatRequest / chatResponse mirror the OpenAI-compatible API shapes.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Synthesize weaves the assembled context into a narrative, trying the
// configured model and then each fallback in order.
func (c *Client) Synthesize(ctx context.Context, in ports.SynthesisInput) (ports.SynthesisOutput, error) {
	models := make([]string, 0, 1+len(c.fallbackModels))
	models = append(models, c.model)
	models = append(models, c.fallbackModels...)

	var lastErr error
	for _, model := range models {
		out, err := c.synthesizeWithModel(ctx, in, model)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if len(models) > 1 {
			c.logger.WarnContext(ctx, "model failed, trying next", "model", model, "error", err)
		}
	}

	return ports.SynthesisOutput{}, lastErr
}

func (c *Client) synthesizeWithModel(ctx context.Context, in ports.SynthesisInput, model string) (ports.SynthesisOutput, error) {
	systemPrompt := c.buildSystemPrompt(in.Tradition)
	userPrompt := buildUserPrompt(in)

	content, err := c.callLLM(ctx, model, systemPrompt, userPrompt)
	if err != nil {
		return ports.SynthesisOutput{}, fmt.Errorf("%w: %w", domain.ErrUpstreamLLM, err)
	}

	var out ports.SynthesisOutput
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		c.logger.WarnContext(ctx, "LLM returned invalid JSON, retrying", "model", model, "error", err)
		content, err = c.callLLM(ctx, model, systemPrompt, retryPrompt(content))
		if err != nil {
			return ports.SynthesisOutput{}, fmt.Errorf("%w: %w", domain.ErrUpstreamLLM, err)
		}
		if err := json.Unmarshal([]byte(content), &out); err != nil {
			return ports.SynthesisOutput{}, fmt.Errorf("%w: %w", domain.ErrInvalidLLMJSON, err)
		}
	}

	if out.Tone == "" {
		out.Tone = "neutral"
	}
	if out.Disclaimer == "" {
		out.Disclaimer = "For reflection/entertainment; not medical/legal/financial advice."
	}
	out.Model = model

	return out, nil
}

// classificationPrompt asks for exactly one category word.
const classificationPrompt = `Classify this tarot question into exactly ONE of these categories:

- love (relationships, romance, partnership, dating, marriage, breakups)
- career (work, profession, business, job, employment, promotion)
- spiritual (growth, purpose, meaning, path, enlightenment, meditation)
- financial (money, resources, material, wealth, investments, debt)
- health (physical, mental, wellness, healing, illness, vitality)
- general (none of the above, or multiple categories equally)

Question: %q

Respond with ONLY the category name, nothing else. Just one word.`

// Classify assigns a question category. Empty questions and unrecognized
// answers map to the general category.
func (c *Client) Classify(ctx context.Context, question string) (domain.QuestionType, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.GeneralQuestion, nil
	}

	content, err := c.callLLM(ctx, c.model, "", fmt.Sprintf(classificationPrompt, question))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamLLM, err)
	}

	answer := strings.ToLower(strings.TrimSpace(content))
	switch qt := domain.QuestionType(answer); qt {
	case domain.LoveQuestion, domain.CareerQuestion, domain.SpiritualQuestion,
		domain.FinancialQuestion, domain.HealthQuestion, domain.GeneralQuestion:
		return qt, nil
	default:
		c.logger.WarnContext(ctx, "unrecognized classification, using general", "answer", answer)
		return domain.GeneralQuestion, nil
	}
}

func (c *Client) callLLM(ctx context.Context, model, system, user string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	body, err := json.Marshal(chatRequest{Model: model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upstream status %d: %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

func (c *Client) buildSystemPrompt(traditionName string) string {
	if traditionName == "" {
		traditionName = DefaultTradition
	}
	t, ok := c.traditions[traditionName]
	if !ok {
		t = c.traditions[DefaultTradition]
	}

	return t.System + `

Rules:
- Be balanced; never predict specific outcomes or disasters.
- Never provide medical, legal, or financial advice.
- Never command actions or diagnose conditions.
- If a question is provided, incorporate it but never guarantee outcomes.

Respond with ONLY a JSON object (no markdown, no code fences, no extra text) matching this exact schema:
{
  "text": "<your synthesized reading>",
  "tone": "neutral",
  "disclaimer": "For reflection/entertainment; not medical/legal/financial advice."
}`
}

func buildUserPrompt(in ports.SynthesisInput) string {
	var b strings.Builder
	b.WriteString("Below is a fully assembled tarot reading context. Weave it into one cohesive interpretation.\n\n")
	b.WriteString(in.Context)

	if in.Question != "" {
		fmt.Fprintf(&b, "\nThe querent asks: %q\n", in.Question)
	}

	b.WriteString("\nProvide the synthesis as a single JSON object.")
	return b.String()
}

func retryPrompt(badJSON string) string {
	return fmt.Sprintf(`Your previous response was not valid JSON. Here is what you returned:
%s

Return ONLY the corrected JSON object matching this schema (no markdown, no code fences):
{
  "text": "<your synthesized reading>",
  "tone": "neutral",
  "disclaimer": "For reflection/entertainment; not medical/legal/financial advice."
}`, badJSON)
}
