package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to an Ollama-compatible /api/generate endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type GenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type translationResult struct {
	Translation string `json:"translation"`
}

func NewClient(baseURL, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) BuildTranslationPrompt(text, targetLang string) string {
	return fmt.Sprintf(`Translate the following search keyword into the language with code %q.
It is a term from a video game community, so prefer the name players use.

Keyword: %s

Return a JSON object {"translation": "..."} and nothing else.`, targetLang, text)
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/generate", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("LLM API error %d: %s", resp.StatusCode, string(body))
	}

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Response, nil
}

// Translate asks the model for a single-term translation. It satisfies
// translate.Translator.
func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	response, err := c.Generate(ctx, c.BuildTranslationPrompt(text, targetLang))
	if err != nil {
		return "", err
	}

	var result translationResult
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		// Models often wrap the JSON in prose
		start := strings.IndexByte(response, '{')
		end := strings.LastIndexByte(response, '}')
		if start < 0 || end <= start {
			return "", fmt.Errorf("no JSON found in LLM response")
		}
		if err := json.Unmarshal([]byte(response[start:end+1]), &result); err != nil {
			return "", fmt.Errorf("failed to parse LLM response as JSON: %w", err)
		}
	}

	out := strings.TrimSpace(result.Translation)
	if out == "" {
		return "", fmt.Errorf("empty translation from LLM")
	}
	return out, nil
}
