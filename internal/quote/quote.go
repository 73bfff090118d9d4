// Package quote generates the short motivational line for the morning
// greeting. It calls the OpenAI Responses API when a key is configured and
// falls back to a date-rotated built-in list otherwise — the greeting never
// fails because the quote source is down.
package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client fetches morning quotes.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// New creates a quote client. An empty apiKey disables the API and every
// quote comes from the fallback list.
func New(apiKey, model string) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		model:   model,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

type responsesRequest struct {
	Model           string `json:"model"`
	Input           string `json:"input"`
	MaxOutputTokens int    `json:"max_output_tokens"`
}

type responsesPayload struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// Morning returns a one-line quote for the given day. It never returns an
// error: any API failure degrades to the fallback list.
func (c *Client) Morning(ctx context.Context, today time.Time) string {
	if c.apiKey == "" {
		return Fallback(today)
	}

	q, err := c.generate(ctx, today)
	if err != nil || q == "" {
		return Fallback(today)
	}
	return q
}

func (c *Client) generate(ctx context.Context, today time.Time) (string, error) {
	prompt := fmt.Sprintf(
		"Today is %s. Write one short motivating fitness quote for a morning check-in. "+
			"1 sentence, under 20 words, no hashtags, no emojis, no quotation marks.",
		today.Format("2006-01-02"),
	)

	body, err := json.Marshal(responsesRequest{Model: c.model, Input: prompt, MaxOutputTokens: 60})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling quote API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("quote API status %d", resp.StatusCode)
	}

	var payload responsesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return extractText(payload), nil
}

// extractText pulls the quote out of either response shape: the flat
// output_text field or the structured output blocks.
func extractText(p responsesPayload) string {
	if text := strings.TrimSpace(p.OutputText); text != "" {
		return text
	}

	var parts []string
	for _, item := range p.Output {
		for _, content := range item.Content {
			if content.Type != "output_text" && content.Type != "text" {
				continue
			}
			if piece := strings.TrimSpace(content.Text); piece != "" {
				parts = append(parts, piece)
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

var fallbackQuotes = []string{
	"Small steps, repeated daily, build unstoppable momentum.",
	"Discipline today is strength tomorrow.",
	"Show up for the work, and confidence will follow.",
	"Consistency beats intensity when intensity is inconsistent.",
	"Every set is a vote for the person you are becoming.",
	"Progress is quiet: one rep, one set, one day at a time.",
	"You do not need perfect conditions, only a clear next set.",
}

// Fallback returns the built-in quote for a given day, rotating through the
// list so consecutive mornings differ.
func Fallback(today time.Time) string {
	day := today.Year()*366 + today.YearDay()
	return fallbackQuotes[day%len(fallbackQuotes)]
}
