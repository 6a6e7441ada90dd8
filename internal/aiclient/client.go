package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"medvision/internal/config"
	"medvision/internal/domain"
)

const (
	// FixedRecommendation is attached to every analysis result; the model's
	// reply is never parsed for one.
	FixedRecommendation = "Please consult a qualified medical professional for a full evaluation of these findings."

	// FixedConfidence is the constant confidence attached to every result.
	FixedConfidence = 0.85

	// PlaceholderFindings is used when the model returns an empty reply.
	PlaceholderFindings = "No findings were returned for this image batch."
)

// Analyzer is the outbound AI boundary. The pipeline depends on this
// interface so tests can substitute a fake.
type Analyzer interface {
	AnalyzeBatch(ctx context.Context, payloads []string, userPrompt, systemPrompt string) (domain.AnalysisResult, error)
}

// APIError is returned for non-2xx upstream responses.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ai endpoint returned status %d: %s", e.Status, e.Message)
}

type Client struct {
	cfg        config.AIConfig
	httpClient *http.Client
	log        *zap.Logger
}

func New(cfg config.AIConfig, log *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// AnalyzeBatch posts one multimodal chat request carrying the user prompt
// and every image as an inline data URI, and waits synchronously for the
// reply. systemPrompt, when non-empty, replaces the configured default
// entirely.
func (c *Client) AnalyzeBatch(ctx context.Context, payloads []string, userPrompt, systemPrompt string) (domain.AnalysisResult, error) {
	if systemPrompt == "" {
		systemPrompt = c.cfg.SystemPrompt
	}

	parts := make([]contentPart, 0, len(payloads)+1)
	parts = append(parts, contentPart{Type: "text", Text: userPrompt})
	for _, p := range payloads {
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: "data:image/png;base64," + p},
		})
	}

	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: parts},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+c.cfg.Path, bytes.NewReader(body))
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	if c.cfg.CustomerID != "" {
		req.Header.Set("X-Customer-ID", c.cfg.CustomerID)
	}

	c.log.Info("Sending batch to AI endpoint",
		zap.Int("images", len(payloads)),
		zap.String("model", c.cfg.Model))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("ai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.AnalysisResult{}, &APIError{Status: resp.StatusCode, Message: string(msg)}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("failed to decode ai response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return domain.AnalysisResult{}, fmt.Errorf("ai response contained no choices")
	}

	findings := parsed.Choices[0].Message.Content
	if findings == "" {
		findings = PlaceholderFindings
	}

	return domain.AnalysisResult{
		Findings:       findings,
		Recommendation: FixedRecommendation,
		Confidence:     FixedConfidence,
	}, nil
}
