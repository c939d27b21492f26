package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/minios-linux/subkit/langmeta"
)

// OpenAISystemPrompt instructs the model to behave as a subtitle
// translator. {{sourceLang}} and {{targetLang}} are replaced per job.
const OpenAISystemPrompt = `You are a professional subtitle translator. Translate subtitle text from {{sourceLang}} to {{targetLang}}.

RULES:
- Preserve line breaks exactly: the translation must have the same number of lines as the input.
- Keep the translation concise so it fits typical subtitle reading speed.
- Preserve formatting tags (<i>, <b>, {\an8}) exactly as-is.
- Keep proper nouns and brand names unchanged unless they have an established translation.
- Return ONLY the translated text, no quotes, no explanations.`

// ---------------------------------------------------------------------------
// OpenAI-compatible client
// ---------------------------------------------------------------------------

// OpenAIClient translates through an OpenAI-compatible chat completions
// endpoint. Works with api.openai.com and self-hosted compatibles
// (Ollama, LM Studio, vLLM) via a custom base URL.
type OpenAIClient struct {
	provider Provider
	http     *http.Client
}

// NewOpenAIClient builds a client for an OpenAI-compatible endpoint.
func NewOpenAIClient(prov Provider) *OpenAIClient {
	if prov.BaseURL == "" {
		prov.BaseURL = "https://api.openai.com/v1"
	}
	if prov.Model == "" {
		prov.Model = "gpt-4o-mini"
	}
	if prov.Name == "" {
		prov.Name = "OpenAI"
	}
	return &OpenAIClient{
		provider: prov,
		http:     makeHTTPClient(prov.Proxy, prov.Timeout),
	}
}

// Name returns the provider display name.
func (c *OpenAIClient) Name() string {
	return c.provider.Name
}

// Translate translates one text through a chat completion.
func (c *OpenAIClient) Translate(ctx context.Context, text, srcLang, dstLang string) (string, error) {
	system := strings.ReplaceAll(OpenAISystemPrompt, "{{sourceLang}}", langDisplayName(srcLang))
	system = strings.ReplaceAll(system, "{{targetLang}}", langDisplayName(dstLang))

	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	body, err := json.Marshal(struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature"`
		Stream      bool    `json:"stream"`
	}{
		Model: c.provider.Model,
		Messages: []msg{
			{Role: "system", Content: system},
			{Role: "user", Content: text},
		},
		Temperature: 0.3,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	endpoint := strings.TrimRight(c.provider.BaseURL, "/")
	if !strings.HasSuffix(endpoint, "/chat/completions") {
		endpoint += "/chat/completions"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.provider.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.provider.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", c.provider.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusErr(resp)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", c.provider.Name)
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// langDisplayName returns the display name for a language code, falling
// back to the code itself for unknown languages.
func langDisplayName(lang string) string {
	return langmeta.Resolve(lang).Name
}
