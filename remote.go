package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"
)

// RemoteGenerator calls a pathboard server, or anything serving the same
// two routes.
type RemoteGenerator struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	group      singleflight.Group
}

func NewRemoteGenerator(cfg GeneratorConfig, log *slog.Logger) *RemoteGenerator {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RemoteGenerator{
		baseURL:    strings.TrimRight(cfg.RemoteURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

func (g *RemoteGenerator) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	req = req.withDefaults()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	route := pathsRoute
	if req.Mode == GenerationMap {
		route = mapRoute
	}
	key := fmt.Sprintf("%s|%s|%d|%d", req.Mode, req.GoalSkill, req.NumberOfPaths, req.Layers)
	v, err, _ := g.group.Do(key, func() (any, error) {
		return g.post(ctx, route, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*GenerationResult), nil
}

func (g *RemoteGenerator) post(ctx context.Context, route string, body GenerationRequest) (*GenerationResult, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+route, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e errResponse
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return nil, fmt.Errorf("remote %s: status %d: %s: %w", route, resp.StatusCode, msg, ErrGenerationFailed)
	}
	g.log.Debug("remote generation done", slog.String("route", route), slog.Int("bytes", len(data)))
	return decodeResult(body.Mode, data)
}
