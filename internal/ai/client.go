package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

const chatCompletionsURL = "https://api.openai.com/v1/chat/completions"

type Client struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Client {
	return &Client{
		APIKey: apiKey,
		Model:  model,
	}
}

// chat sends one user prompt and returns the trimmed assistant reply.
func (c *Client) chat(ctx context.Context, prompt string, temperature float64) (string, error) {
	body := map[string]interface{}{
		"model": c.Model,
		"messages": []map[string]interface{}{
			{"role": "user", "content": prompt},
		},
		"temperature": temperature,
		"max_tokens":  250,
	}
	payload, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, "POST", chatCompletionsURL, bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai: status %d: %s", res.StatusCode, raw)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// GenerateExcuse returns the excuse and its translation. When language is
// "en" both strings are the same text.
func (c *Client) GenerateExcuse(ctx context.Context, scenario, urgency, language, style string) (string, string, error) {
	text, err := c.chat(ctx, BuildExcusePrompt(scenario, urgency, style), 0.7)
	if err != nil {
		return "", "", err
	}
	translated, err := c.translate(ctx, text, language)
	if err != nil {
		return text, "Translation failed.", nil
	}
	return text, translated, nil
}

// GenerateApology returns the apology and its translation.
func (c *Client) GenerateApology(ctx context.Context, situation, tone, typ, style, language string) (string, string, error) {
	text, err := c.chat(ctx, BuildApologyPrompt(situation, tone, typ, style), 0.7)
	if err != nil {
		return "", "", err
	}
	translated, err := c.translate(ctx, text, language)
	if err != nil {
		return text, "Translation failed.", nil
	}
	return text, translated, nil
}

func (c *Client) translate(ctx context.Context, text, language string) (string, error) {
	if language == "" || language == "en" {
		return text, nil
	}
	return c.chat(ctx, fmt.Sprintf("Translate this to %s:\n%s", language, text), 0.7)
}

// AdjustTone rewrites an apology in the requested tone.
func (c *Client) AdjustTone(ctx context.Context, text, tone string) (string, error) {
	prompt := fmt.Sprintf("Rewrite the apology below in a more %s tone:\n\n%s", tone, text)
	return c.chat(ctx, prompt, 0.5)
}

// CompleteApology continues a started apology in the requested tone.
func (c *Client) CompleteApology(ctx context.Context, start, tone string) (string, error) {
	prompt := fmt.Sprintf("Complete this sentence in a %s apology tone:\n\n%s", tone, start)
	return c.chat(ctx, prompt, 0.7)
}

var guiltAnswerRe = regexp.MustCompile(`(?s)"score"\s*:\s*(\d+).*"reason"\s*:\s*"([^"]+)`)

// GuiltScore asks the model for a calibrated 1-100 sincerity score and
// returns "<score>/100 – <reason>". The model is asked for strict JSON; a
// sloppy answer falls back to a regex extraction.
func (c *Client) GuiltScore(ctx context.Context, text string) (string, error) {
	raw, err := c.chat(ctx, BuildGuiltPrompt(text), 1.0)
	if err != nil {
		return "", err
	}

	score, reason, err := ParseGuiltAnswer(raw)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d/100 – %s", score, reason), nil
}

// ParseGuiltAnswer extracts the score and reason from the model's answer.
func ParseGuiltAnswer(raw string) (int, string, error) {
	var parsed struct {
		Score  int    `json:"score"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		return parsed.Score, parsed.Reason, nil
	}

	m := guiltAnswerRe.FindStringSubmatch(raw)
	if m == nil {
		return 0, "", fmt.Errorf("bad format from model: %s", raw)
	}
	var score int
	fmt.Sscanf(m[1], "%d", &score)
	return score, m[2], nil
}
