package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/singleflight"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAIGenerator asks a chat completions endpoint for JSON learning paths
// or maps.
type OpenAIGenerator struct {
	apiKey     string
	model      string
	baseURL    string
	retries    int
	backoff    time.Duration
	httpClient *http.Client
	log        *slog.Logger
	group      singleflight.Group
}

func NewOpenAIGenerator(cfg GeneratorConfig, log *slog.Logger) *OpenAIGenerator {
	g := &OpenAIGenerator{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		retries:    cfg.Retries,
		backoff:    500 * time.Millisecond,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
	if g.model == "" {
		g.model = defaultOpenAIModel
	}
	if g.baseURL == "" {
		g.baseURL = defaultOpenAIBaseURL
	}
	if g.log == nil {
		g.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return g
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// statusError is a non-2xx reply; 429 and 5xx are retried, anything else
// is permanent.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("openai: status %d: %s", e.code, e.message)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

func pathsPrompt(req GenerationRequest) string {
	return fmt.Sprintf(`Generate %d learning paths for the goal skill: "%s". Each path should contain 3-5 phases. A path can be something like using a tutor, self teaching through youtube videos, reading books, etc. Give each phase a concise name, a duration and a meaningful set of skills; skill names should be 1-2 words. Return a JSON object with this structure:
{
  "goal_skill": "%s",
  "paths": [
    {
      "phase": [
        {
          "phase_name": "Fundamentals",
          "duration": {"approx_time": "2 weeks", "start_time": "1 week", "mastery_time": "3 weeks"},
          "skills": ["Skill 1", "Skill 2"]
        }
      ]
    }
  ]
}`, req.NumberOfPaths, req.GoalSkill, req.GoalSkill)
}

func mapPrompt(req GenerationRequest) string {
	return fmt.Sprintf(`Create a learning map for the goal skill: "%s" with %d layers. Return the result as a JSON object with the following structure:
{
  "goal_skill": "%s",
  "layers": [
    {"layer_name": "Layer 1", "skills": [{"skill": "Skill 1", "description": "One sentence"}]},
    {"layer_name": "Layer 2", "skills": [{"skill": "Skill 2", "description": "One sentence"}]}
  ]
}
Ensure that each layer has a meaningful name and contains relevant skills needed to progress towards the goal skill.`, req.GoalSkill, req.Layers, req.GoalSkill)
}

func systemPrompt(mode GenerationMode) string {
	if mode == GenerationMap {
		return "You are a helpful assistant that creates structured learning maps."
	}
	return "You are a helpful assistant that creates structured learning paths."
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	req = req.withDefaults()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	key := fmt.Sprintf("%s|%s|%d|%d", req.Mode, req.GoalSkill, req.NumberOfPaths, req.Layers)
	v, err, shared := g.group.Do(key, func() (any, error) {
		return g.generate(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		g.log.Debug("generation shared", slog.String("key", key))
	}
	return v.(*GenerationResult), nil
}

func (g *OpenAIGenerator) generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	prompt := pathsPrompt(req)
	if req.Mode == GenerationMap {
		prompt = mapPrompt(req)
	}
	body := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(req.Mode)},
			{Role: "user", Content: prompt},
		},
		Temperature:    0.7,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.backoff
	content, err := backoff.Retry(ctx, func() (string, error) {
		content, err := g.complete(ctx, body)
		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			return "", backoff.Permanent(err)
		}
		return content, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(g.retries+1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			g.log.Warn("retrying completion", slog.Duration("wait", wait), slog.String("error", err.Error()))
		}),
	)
	if err != nil {
		return nil, err
	}
	return decodeResult(req.Mode, []byte(content))
}

func (g *OpenAIGenerator) complete(ctx context.Context, body chatRequest) (string, error) {
	start := time.Now()
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr chatError
		msg := string(respBody)
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return "", &statusError{code: resp.StatusCode, message: msg}
	}

	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: empty completion: %w", ErrGenerationFailed)
	}

	g.log.Debug("completion done",
		slog.String("model", g.model),
		slog.Int("prompt_tokens", out.Usage.PromptTokens),
		slog.Int("completion_tokens", out.Usage.CompletionTokens),
		slog.Duration("elapsed", time.Since(start)))
	return out.Choices[0].Message.Content, nil
}
