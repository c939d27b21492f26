package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DeepLAPIBase is the endpoint for paid DeepL API keys.
const DeepLAPIBase = "https://api.deepl.com"

// DeepLFreeAPIBase is the endpoint for free DeepL API keys (suffix ":fx").
const DeepLFreeAPIBase = "https://api-free.deepl.com"

// ---------------------------------------------------------------------------
// DeepL client
// ---------------------------------------------------------------------------

// DeepLClient translates through the DeepL v2 REST API.
type DeepLClient struct {
	provider Provider
	http     *http.Client
}

// NewDeepLClient builds a DeepL client. Free-tier keys (":fx" suffix) are
// routed to the free API endpoint automatically unless a custom base URL
// is configured.
func NewDeepLClient(prov Provider) *DeepLClient {
	if prov.BaseURL == "" {
		prov.BaseURL = DeepLAPIBase
	}
	if prov.BaseURL == DeepLAPIBase && strings.HasSuffix(prov.APIKey, ":fx") {
		prov.BaseURL = DeepLFreeAPIBase
	}
	if prov.Name == "" {
		prov.Name = "DeepL"
	}
	return &DeepLClient{
		provider: prov,
		http:     makeHTTPClient(prov.Proxy, prov.Timeout),
	}
}

// Name returns the provider display name.
func (c *DeepLClient) Name() string {
	return c.provider.Name
}

// Translate translates one text. srcLang may be empty, letting DeepL
// detect the source language.
func (c *DeepLClient) Translate(ctx context.Context, text, srcLang, dstLang string) (string, error) {
	form := url.Values{}
	form.Set("text", text)
	if srcLang != "" {
		form.Set("source_lang", deeplLangCode(srcLang))
	}
	form.Set("target_lang", deeplLangCode(dstLang))

	endpoint := strings.TrimRight(c.provider.BaseURL, "/") + "/v2/translate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.provider.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling DeepL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusErr(resp)
	}

	var result struct {
		Translations []struct {
			DetectedSourceLanguage string `json:"detected_source_language"`
			Text                   string `json:"text"`
		} `json:"translations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding DeepL response: %w", err)
	}
	if len(result.Translations) == 0 {
		return "", fmt.Errorf("DeepL returned no translations")
	}
	return result.Translations[0].Text, nil
}

// Usage reports the account's character quota consumption.
func (c *DeepLClient) Usage(ctx context.Context) (count, limit int64, err error) {
	endpoint := strings.TrimRight(c.provider.BaseURL, "/") + "/v2/usage"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.provider.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("calling DeepL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, statusErr(resp)
	}

	var result struct {
		CharacterCount int64 `json:"character_count"`
		CharacterLimit int64 `json:"character_limit"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, 0, fmt.Errorf("decoding DeepL response: %w", err)
	}
	return result.CharacterCount, result.CharacterLimit, nil
}

// deeplLangCode converts a canonical language code to DeepL's form:
// upper-case, region kept ("pt-BR" -> "PT-BR").
func deeplLangCode(lang string) string {
	return strings.ToUpper(lang)
}
