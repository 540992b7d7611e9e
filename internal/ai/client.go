// Package ai is the AI Helper Client: stateless calls to an OpenAI-compatible
// chat-completion endpoint that assess, tag, rewrite and answer questions.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"stackit/internal/config"
	"stackit/internal/logger"
	"stackit/internal/utils"
	"stackit/internal/validation"
)

const (
	analyzePrompt = "You are a content quality analyzer for a programming Q&A platform. Analyze the %s and reply with a JSON object " +
		"containing quality_score (number 0-100), issues (array of strings), suggestions (array of strings) and spam_probability (number 0-1)."
	tagsPrompt = "Generate 3-5 relevant tags for a programming question. " +
		`Reply with a JSON object of the form {"tags": ["tag", ...]}.`
	improvePrompt = "Improve a programming question by making it clearer and more specific. " +
		"Reply with a JSON object containing improved_title and improved_description."
	answerPrompt = "You are a helpful programming assistant. Provide a detailed, accurate answer to the programming question."
	suggestPrompt = "Generate 3-5 related search queries for a programming Q&A platform. " +
		`Reply with a JSON object of the form {"suggestions": ["query", ...]}.`
)

// Client calls the completion endpoint. It keeps no state between calls.
type Client struct {
	api     *openai.Client
	model   string
	logger  *zap.Logger
	metrics *utils.MetricsCollector
	replies *validation.Validator
}

// NewClient builds a client for cfg.BaseURL authenticated with cfg.APIKey.
func NewClient(cfg *config.AIConfig, logger *zap.Logger, metrics *utils.MetricsCollector) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, utils.NewInvalidInputError("AI API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		model:   cfg.Model,
		logger:  logger.Named("ai"),
		metrics: metrics,
		replies: validation.New(),
	}, nil
}

// AnalyzeContent scores the quality of a question or answer. Value is nil unless the call succeeds.
func (c *Client) AnalyzeContent(ctx context.Context, content string, kind ContentType) Result[*ContentAnalysis] {
	start := time.Now()
	var reply analysisReply
	if outcome, err := c.completeJSON(ctx, fmt.Sprintf(analyzePrompt, kind), content, &reply); err != nil {
		return finish(c, "AnalyzeContent", start, failed[*ContentAnalysis](nil, outcome, err))
	}
	return finish(c, "AnalyzeContent", start, ok(&ContentAnalysis{
		QualityScore:    *reply.QualityScore,
		Issues:          *reply.Issues,
		Suggestions:     *reply.Suggestions,
		SpamProbability: *reply.SpamProbability,
	}))
}

// GenerateTags suggests up to MaxTags tags for a question. Value is empty unless the call succeeds.
func (c *Client) GenerateTags(ctx context.Context, title, description string) Result[[]string] {
	start := time.Now()
	raw, outcome, err := c.complete(ctx, tagsPrompt, questionPrompt(title, description), true)
	if err != nil {
		return finish(c, "GenerateTags", start, failed([]string{}, outcome, err))
	}
	tags, err := c.decodeList(raw, &tagsReply{})
	if err != nil {
		return finish(c, "GenerateTags", start, failed([]string{}, OutcomeMalformed, err))
	}
	return finish(c, "GenerateTags", start, ok(normalizeList(tags, MaxTags)))
}

// ImproveQuestion rewrites a question to be clearer. Value is nil unless the call succeeds.
func (c *Client) ImproveQuestion(ctx context.Context, title, description string) Result[*ImprovedQuestion] {
	start := time.Now()
	var reply improvementReply
	if outcome, err := c.completeJSON(ctx, improvePrompt, questionPrompt(title, description), &reply); err != nil {
		return finish(c, "ImproveQuestion", start, failed[*ImprovedQuestion](nil, outcome, err))
	}
	return finish(c, "ImproveQuestion", start, ok(&ImprovedQuestion{
		ImprovedTitle:       strings.TrimSpace(reply.ImprovedTitle),
		ImprovedDescription: strings.TrimSpace(reply.ImprovedDescription),
	}))
}

// GenerateAnswer drafts a free-text answer. Value is "" unless the call succeeds.
func (c *Client) GenerateAnswer(ctx context.Context, question, details string) Result[string] {
	start := time.Now()
	raw, outcome, err := c.complete(ctx, answerPrompt,
		fmt.Sprintf("Question: %s\nContext: %s", question, details), false)
	if err != nil {
		return finish(c, "GenerateAnswer", start, failed("", outcome, err))
	}
	if strings.TrimSpace(raw) == "" {
		return finish(c, "GenerateAnswer", start, failed("", OutcomeMalformed, errors.New("empty answer")))
	}
	return finish(c, "GenerateAnswer", start, ok(raw))
}

// SuggestSearches proposes related search queries. Value is empty unless the call succeeds.
func (c *Client) SuggestSearches(ctx context.Context, query string) Result[[]string] {
	start := time.Now()
	raw, outcome, err := c.complete(ctx, suggestPrompt, "Search query: "+query, true)
	if err != nil {
		return finish(c, "SuggestSearches", start, failed([]string{}, outcome, err))
	}
	suggestions, err := c.decodeList(raw, &suggestionsReply{})
	if err != nil {
		return finish(c, "SuggestSearches", start, failed([]string{}, OutcomeMalformed, err))
	}
	return finish(c, "SuggestSearches", start, ok(normalizeList(suggestions, MaxSuggestions)))
}

func questionPrompt(title, description string) string {
	return fmt.Sprintf("Title: %s\nDescription: %s", title, description)
}

// finish records one public call in metrics and logs, labelled with its final outcome.
func finish[T any](c *Client, op string, start time.Time, r Result[T]) Result[T] {
	c.metrics.ObserveResult("ai."+op, start, r.Outcome.String(), r.Err)
	if r.Err != nil {
		c.logger.Warn("completion failed",
			logger.Operation(op),
			zap.Stringer("outcome", r.Outcome),
			zap.Error(r.Err),
		)
		return r
	}
	c.logger.Debug("completion", logger.Operation(op), zap.Duration("duration", time.Since(start)))
	return r
}

// complete sends one system and one user message and returns the first choice's text.
func (c *Client) complete(ctx context.Context, system, user string, jsonMode bool) (string, Outcome, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", OutcomeUnavailable, describeAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", OutcomeMalformed, errors.New("completion has no choices")
	}
	return resp.Choices[0].Message.Content, OutcomeOK, nil
}

// completeJSON runs a JSON-mode completion and decodes the reply into out, which must
// satisfy its validate tags.
func (c *Client) completeJSON(ctx context.Context, system, user string, out any) (Outcome, error) {
	raw, outcome, err := c.complete(ctx, system, user, true)
	if err != nil {
		return outcome, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return OutcomeMalformed, fmt.Errorf("reply is not a JSON object: %w", err)
	}
	if err := c.replies.ValidateRow("completion", out); err != nil {
		return OutcomeMalformed, err
	}
	return OutcomeOK, nil
}

// decodeList reads a string list from either a keyed object or a bare JSON array.
func (c *Client) decodeList(raw string, reply listReply) ([]string, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		var list []string
		if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
			return nil, fmt.Errorf("reply is not a JSON string array: %w", err)
		}
		return list, nil
	}

	if err := json.Unmarshal([]byte(trimmed), reply); err != nil {
		return nil, fmt.Errorf("reply is not a JSON object: %w", err)
	}
	if err := c.replies.ValidateRow("completion", reply); err != nil {
		return nil, err
	}
	return *reply.items(), nil
}

// normalizeList trims entries, drops blanks and case-insensitive duplicates, and keeps at most limit.
func normalizeList(items []string, limit int) []string {
	out := make([]string, 0, min(len(items), limit))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if item == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}

func describeAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return utils.NewAppError(utils.ErrTransport, fmt.Sprintf("completion endpoint returned %d", apiErr.HTTPStatusCode), err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return utils.NewAppError(utils.ErrTransport, fmt.Sprintf("completion request failed with %d", reqErr.HTTPStatusCode), err)
	}
	return utils.NewAppError(utils.ErrTransport, "completion request failed", err)
}
