// Package openai provides the OpenAI chat-completions client used for
// recipe generation and cost estimation.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/costing"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/recipe"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/config"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/outbound"
	"go.uber.org/zap"
)

// Client implements the AIService interface against the OpenAI
// chat-completions API. An empty API key leaves the client in an
// unconfigured state where every call returns ErrAIUnavailable, so the
// costing path can degrade instead of crash.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a new OpenAI client from configuration.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	if cfg.AI.APIKey == "" {
		logger.Warn("OpenAI API key not configured, AI features disabled")
	}

	return &Client{
		apiKey:  cfg.AI.APIKey,
		baseURL: cfg.AI.BaseURL,
		model:   cfg.AI.Model,
		client: &http.Client{
			Timeout: cfg.AI.Timeout,
		},
		logger: logger,
	}
}

// OpenAI API structures
type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Message      message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateRecipe asks the model for a sandwich recipe as a JSON object.
// The model parameter overrides the configured default when non-empty.
func (c *Client) GenerateRecipe(ctx context.Context, idea, model string) (string, error) {
	if c.apiKey == "" {
		return "", outbound.ErrAIUnavailable
	}

	prompt := fmt.Sprintf(`Genereer een creatief en uniek recept voor een broodje gebaseerd op het volgende idee: "%s". Het recept moet stapsgewijze instructies bevatten, een lijst van ingrediënten met hoeveelheden, en een aantrekkelijke naam voor het broodje. Output alleen de JSON structuur.
Denk aan:
- Originele combinaties
- Duidelijke stappen
- Geschikte hoeveelheden voor 1 persoon
- Een pakkende naam

Output formaat (alleen JSON):
{
  "naam": "...",
  "beschrijving": "...",
  "ingredienten": [ { "naam": "...", "hoeveelheid": "..." } ],
  "instructies": [ "stap 1...", "stap 2..." ]
}
`, idea)

	if model == "" {
		model = c.model
	}

	reply, err := c.complete(ctx, chatCompletionRequest{
		Model:          model,
		Messages:       []message{{Role: "user", Content: prompt}},
		Temperature:    0.7,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}

	return extractJSONObject(reply)
}

// EstimateCostBreakdown asks the model for a full cost report over all
// ingredients, in the fixed markdown-like layout the total extractor
// understands.
func (c *Client) EstimateCostBreakdown(ctx context.Context, r recipe.Recipe) (string, error) {
	if c.apiKey == "" {
		return "", outbound.ErrAIUnavailable
	}

	var lines []string
	for _, ing := range r.Ingredients {
		lines = append(lines, fmt.Sprintf("- %s %s", ing.Quantity, ing.Name))
	}

	title := r.Title
	if title == "" {
		title = "Recept"
	}

	prompt := fmt.Sprintf(`Maak een geschatte kostenopbouw in Euro's (€) voor het recept "%s" met de volgende ingrediënten, gebaseerd op gemiddelde Nederlandse supermarktprijzen. Geef een lijst per ingrediënt en een totaal.

Formaat voorbeeld:
## Geschatte Kosten Opbouw:
- Ingrediënt 1 (Hoeveelheid): €X.XX
- Ingrediënt 2 (Hoeveelheid): €Y.YY
- ...
- **Totaal Geschat:** €Z.ZZ

Ingrediënten:
%s

Geef ALLEEN de kostenopbouw in dit formaat terug, zonder extra uitleg.`, title, strings.Join(lines, "\n"))

	return c.complete(ctx, chatCompletionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: "Je bent een assistent die kostenopbouwen voor recepten schat in Euro's. Reageer alleen met de gevraagde opbouw."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
	})
}

// EstimateItemsCost asks the model for one combined amount covering the
// given unpriceable items. The reply must be a bare number.
func (c *Client) EstimateItemsCost(ctx context.Context, items []costing.LineItem) (float64, error) {
	if c.apiKey == "" {
		return 0, outbound.ErrAIUnavailable
	}
	if len(items) == 0 {
		return 0, nil
	}

	var lines []string
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = "Onbekend"
		}
		lines = append(lines, fmt.Sprintf("- %s %s (%s)", item.QuantityString, name, item.Reason))
	}

	prompt := fmt.Sprintf(`Schat de gecombineerde kosten in Euro's (€) ALLEEN voor de volgende lijst met ingrediënten (hoeveelheden en redenen voor falen zijn ter info), gebaseerd op gemiddelde Nederlandse supermarktprijzen.

Geef ALLEEN het totale geschatte numerieke bedrag terug (bijv. "3.45"). Geef GEEN valutasymbool, GEEN extra uitleg, GEEN lijst per item.

Te schatten ingrediënten:
%s`, strings.Join(lines, "\n"))

	reply, err := c.complete(ctx, chatCompletionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: "Je bent een assistent die de gecombineerde kosten van een lijst ingrediënten schat in Euro's. Reageer ALLEEN met het totale numerieke bedrag (bv. 4.75)."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return 0, err
	}

	amount, ok := costing.ParseEstimateAmount(reply)
	if !ok {
		return 0, fmt.Errorf("unparseable estimate reply: %q", reply)
	}

	return amount, nil
}

// RefineRecipe asks the model to rework a recipe and its cost report
// according to a free-text user request, returning one plain-text
// document.
func (c *Client) RefineRecipe(ctx context.Context, recipeJSON, breakdownText, request string) (string, error) {
	if c.apiKey == "" {
		return "", outbound.ErrAIUnavailable
	}

	prompt := fmt.Sprintf(`Origineel Recept (JSON formaat):
--- START RECEPT ---
%s
--- EINDE RECEPT ---

Bestaande Kosten Opbouw:
--- START KOSTEN ---
%s
--- EINDE KOSTEN ---

Verzoek Gebruiker: "%s"

Taak: Pas het originele recept aan volgens het verzoek van de gebruiker. Pas OOK de kosten opbouw aan zodat deze overeenkomt met het *aangepaste* recept. Geef het volledige, bijgewerkte recept EN de bijgewerkte kostenopbouw terug als één stuk platte tekst. Gebruik de volgende Markdown-achtige opmaak voor het GEHELE antwoord:

# [Nieuwe Recept Titel]

[Optionele korte beschrijving]

## Ingrediënten:
- [Hoeveelheid] [Ingrediënt 1]
- ...

## Bereiding:
1. [Stap 1]
- ...

## Geschatte Tijd:
- [Tijd]

## Geschatte Kosten Opbouw:
- [Ingrediënt A] ([Hoeveelheid]): €X.XX
- [Ingrediënt B] ([Hoeveelheid]): €Y.YY
- ...
- **Totaal Geschat:** €Z.ZZ

BELANGRIJK: Geef GEEN extra uitleg, GEEN inleidende zinnen, GEEN afsluitende zinnen. Geef alleen het bijgewerkte recept en de bijgewerkte kostenopbouw in de gevraagde platte tekst opmaak.`,
		recipeJSON, breakdownText, request)

	return c.complete(ctx, chatCompletionRequest{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: 0.7,
	})
}

// complete makes the chat-completions call and returns the first choice.
func (c *Client) complete(ctx context.Context, reqBody chatCompletionRequest) (string, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	c.logger.Debug("OpenAI API call successful",
		zap.String("model", reqBody.Model),
		zap.Int("prompt_tokens", chatResp.Usage.PromptTokens),
		zap.Int("completion_tokens", chatResp.Usage.CompletionTokens),
	)

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// extractJSONObject pulls the outermost JSON object out of a model
// reply. Models sometimes wrap the object in prose or code fences.
func extractJSONObject(response string) (string, error) {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")

	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no valid JSON found in response")
	}

	return response[start : end+1], nil
}
