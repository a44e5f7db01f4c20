package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const classifySystemPrompt = "You are a property-management data classifier. You MUST respond with ONLY a valid JSON object. " +
	"Do not include any explanatory text, markdown formatting, or commentary before or after the JSON. " +
	"Start your response directly with { and end with }."

type Config struct {
	APIKey      string
	BaseURL     string // override for tests; defaults to the OpenAI API
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type openAIClient struct {
	httpClient  *resty.Client
	model       string
	temperature float64
	maxTokens   int
	logger      *zap.Logger
}

// NewOpenAIClient creates a Client backed by the OpenAI chat completions API.
func NewOpenAIClient(cfg Config, logger *zap.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4000
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(cfg.APIKey)

	return &openAIClient{
		httpClient:  httpClient,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}, nil
}

func (c *openAIClient) Classify(ctx context.Context, headers []string, sampleRows []map[string]string, maxSample int) ClassificationResult {
	if maxSample <= 0 {
		maxSample = DefaultMaxSample
	}
	if len(sampleRows) > maxSample {
		sampleRows = sampleRows[:maxSample]
	}

	prompt, err := buildClassifyPrompt(headers, sampleRows)
	if err != nil {
		return Fallback(err)
	}

	content, err := c.complete(ctx, prompt)
	if err != nil {
		c.logger.Warn("classification request failed", zap.Error(err))
		return Fallback(err)
	}

	result, err := parseClassification(content)
	if err != nil {
		c.logger.Warn("classification response rejected", zap.Error(err))
		return Fallback(err)
	}
	return result
}

func (c *openAIClient) NormalizeAll(ctx context.Context, headers []string, rows []map[string]string, dataType string) ([]map[string]any, error) {
	prompt, err := buildNormalizePrompt(headers, rows, dataType)
	if err != nil {
		return nil, err
	}

	content, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("normalization request failed: %w", err)
	}

	var parsed struct {
		NormalizedData []map[string]any `json:"normalizedData"`
	}
	if err := json.Unmarshal([]byte(cleanMarkdownWrapper(content)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse normalization response: %w", err)
	}
	if parsed.NormalizedData == nil {
		return nil, fmt.Errorf("no normalizedData found in response")
	}
	return parsed.NormalizedData, nil
}

// complete runs one chat completion and returns the first choice's content.
func (c *openAIClient) complete(ctx context.Context, userPrompt string) (string, error) {
	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": classifySystemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}

	var response openAIResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&response).
		Post("/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode(), resp.String())
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return response.Choices[0].Message.Content, nil
}

func buildClassifyPrompt(headers []string, sampleRows []map[string]string) (string, error) {
	sample, err := json.Marshal(sampleRows)
	if err != nil {
		return "", fmt.Errorf("failed to marshal sample rows: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Classify this spreadsheet for a property-management system.\n\n")
	sb.WriteString("Headers: " + strings.Join(headers, ", ") + "\n")
	sb.WriteString("Sample rows: " + string(sample) + "\n\n")
	sb.WriteString("The data is one of exactly these types: tenants, buildings, expenses, units, payments. ")
	sb.WriteString("If none fits, use \"unknown\".\n\n")
	sb.WriteString("Respond with JSON of this exact shape:\n")
	sb.WriteString(`{"detectedType":"tenants|buildings|expenses|units|payments|unknown","confidence":0.0,` +
		`"normalizedData":[{}],"suggestions":["..."],"errors":["..."]}` + "\n\n")
	sb.WriteString(schemaReference)
	sb.WriteString("\nNormalize the sample rows into the canonical field names of the detected type. " +
		"confidence must be between 0 and 1. List data-quality problems in errors and improvement hints in suggestions.")
	return sb.String(), nil
}

func buildNormalizePrompt(headers []string, rows []map[string]string, dataType string) (string, error) {
	all, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("failed to marshal rows: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "The following spreadsheet has already been classified as %q. Do not re-classify it.\n\n", dataType)
	sb.WriteString("Headers: " + strings.Join(headers, ", ") + "\n")
	sb.WriteString("Rows: " + string(all) + "\n\n")
	sb.WriteString(schemaReference)
	fmt.Fprintf(&sb, "\nTransform EVERY row into the canonical %s shape. ", dataType)
	sb.WriteString(`Respond with JSON of this exact shape: {"normalizedData":[{...}]}`)
	return sb.String(), nil
}

const schemaReference = `Canonical schemas:
- tenants: name, email, phone, building or building_id, unit, move_in_date, move_out_date, monthly_rent, status (active|moving-out|moved-out), rent_status (current|late), arrears
- buildings: name, address, city, building_type, total_units, floors, year_built, status (active|maintenance|archived)
- expenses: category, description, amount, expense_date, vendor, payment_method, status (pending|paid|overdue)
- units: unit_number, bedrooms, bathrooms, size_sqft, rent_amount, status (vacant|occupied|maintenance)
- payments: amount, payment_type (rent|deposit|maintenance|utility|late_fee|other), payment_method, payment_date, status (pending|completed|failed|refunded), reference_number, description
`

// parseClassification enforces the strict response contract: a known label,
// a confidence in [0,1] and a normalizedData array. Anything else is a hard
// failure handled by the caller.
func parseClassification(content string) (ClassificationResult, error) {
	var result ClassificationResult
	if err := json.Unmarshal([]byte(cleanMarkdownWrapper(content)), &result); err != nil {
		return ClassificationResult{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	switch result.DetectedType {
	case "tenants", "buildings", "expenses", "units", "payments", "unknown":
	default:
		return ClassificationResult{}, fmt.Errorf("unexpected detectedType %q in response", result.DetectedType)
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return ClassificationResult{}, fmt.Errorf("confidence %v out of range", result.Confidence)
	}

	if result.NormalizedData == nil {
		result.NormalizedData = []map[string]any{}
	}
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}
	return result, nil
}

// cleanMarkdownWrapper strips ```json fences some models wrap around output.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

type openAIResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
}
