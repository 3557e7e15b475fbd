package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mailidpwd/similarlinks/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash"

	// Maxed out so the thinking tokens of the flash model cannot starve the
	// actual answer.
	maxOutputTokens = 8192
)

// Client handles communication with the Gemini generateContent API. It holds
// an ordered list of interchangeable API keys; which key a call uses is the
// caller's choice, so credential rotation stays request-scoped.
type Client struct {
	httpClient  *http.Client
	apiKeys     []string
	baseURL     string
	model       string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Gemini API client over the given credentials.
func NewClient(apiKeys []string, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}

	// Free-tier quota is per-minute; keep a modest steady rate with a small
	// burst so concurrent pipelines do not trip it immediately.
	limiter := rate.NewLimiter(rate.Limit(1), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKeys:     apiKeys,
		baseURL:     baseURL,
		model:       model,
		rateLimiter: limiter,
	}
}

// SetDebug toggles request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// CredentialCount returns how many interchangeable API keys are configured.
func (c *Client) CredentialCount() int {
	return len(c.apiKeys)
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// generateRequest mirrors the generateContent request body.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// generateResponse mirrors the generateContent response body.
type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

var relaxedSafetySettings = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
}

// Generate runs one completion call with the credential at the given index.
// Quota rejections map to domain.ErrRateLimited and transient overload to
// domain.ErrOverloaded so the caller can drive rotation and backoff.
func (c *Client) Generate(ctx context.Context, prompt string, credential int) (*domain.Completion, error) {
	if credential < 0 || credential >= len(c.apiKeys) {
		return nil, fmt.Errorf("credential index %d out of range (have %d keys)", credential, len(c.apiKeys))
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.5,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: maxOutputTokens,
		},
		SafetySettings: relaxedSafetySettings,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKeys[credential])
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.debug {
		log.Printf("[GEMINI] Sending prompt (%d chars) to %s with credential %d", len(prompt), c.model, credential+1)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, respBody)
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(parsed.Candidates) == 0 {
		// No candidates at all usually means the prompt itself was blocked.
		return nil, domain.ErrSafetyBlocked
	}

	candidate := parsed.Candidates[0]
	completion := &domain.Completion{
		StopReason: mapFinishReason(candidate.FinishReason),
		Text:       joinParts(candidate.Content.Parts),
	}

	if c.debug {
		log.Printf("[GEMINI] Completion: stop=%s, %d chars", completion.StopReason, len(completion.Text))
	}
	return completion, nil
}

// classifyStatus maps HTTP failures onto the retry taxonomy.
func classifyStatus(status int, body []byte) error {
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", domain.ErrRateLimited, status)
	case status == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: status %d", domain.ErrOverloaded, status)
	case strings.Contains(strings.ToLower(string(body)), "quota"):
		return fmt.Errorf("%w: status %d", domain.ErrRateLimited, status)
	default:
		return fmt.Errorf("generation API error: status %d, body: %s", status, truncateBody(body))
	}
}

func mapFinishReason(reason string) domain.StopReason {
	switch reason {
	case "STOP", "":
		return domain.StopNormal
	case "MAX_TOKENS":
		return domain.StopMaxTokens
	case "SAFETY":
		return domain.StopSafety
	default:
		return domain.StopOther
	}
}

// joinParts concatenates candidate part texts; on MAX_TOKENS truncation the
// answer can be split across several parts.
func joinParts(parts []part) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func truncateBody(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}
