package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pathsContent = `{"goal_skill": "Go", "paths": [{"phase": [{"phase_name": "Basics", "duration": {"approx_time": "2 weeks"}, "skills": ["Syntax"]}]}]}`

func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
	})
	require.NoError(t, err)
	return body
}

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAIGenerator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	g := NewOpenAIGenerator(GeneratorConfig{APIKey: "sk-test", BaseURL: srv.URL + "/", Timeout: 5 * time.Second, Retries: 2}, nil)
	g.backoff = time.Millisecond
	return g
}

func TestOpenAIGeneratePaths(t *testing.T) {
	var got chatRequest
	g := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write(completionBody(t, pathsContent))
	})

	res, err := g.Generate(context.Background(), GenerationRequest{GoalSkill: "Go"})
	require.NoError(t, err)
	assert.Equal(t, GenerationPaths, res.Mode)
	assert.Equal(t, "Go", res.GoalSkill())

	assert.Equal(t, defaultOpenAIModel, got.Model)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[1].Content, `Generate 3 learning paths for the goal skill: "Go"`)
}

func TestOpenAIGenerateMap(t *testing.T) {
	var prompt string
	g := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompt = req.Messages[1].Content
		w.Write(completionBody(t, `{"goal_skill": "Go", "layers": [{"layer_name": "Core", "skills": [{"skill": "Syntax", "description": "The basics"}]}]}`))
	})

	res, err := g.Generate(context.Background(), GenerationRequest{GoalSkill: "Go", Mode: GenerationMap, Layers: 4})
	require.NoError(t, err)
	require.NotNil(t, res.Map)
	assert.Equal(t, "The basics", res.Map.Layers[0].Skills[0].Description)
	assert.Contains(t, prompt, "with 4 layers")
}

func TestOpenAIRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	g := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": {"message": "overloaded"}}`))
			return
		}
		w.Write(completionBody(t, pathsContent))
	})

	_, err := g.Generate(context.Background(), GenerationRequest{GoalSkill: "Go"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenAIRetriesAreCapped(t *testing.T) {
	var calls atomic.Int32
	g := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "slow down"}}`))
	})

	_, err := g.Generate(context.Background(), GenerationRequest{GoalSkill: "Go"})
	var se *statusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.code)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenAIDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	g := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "bad key"}}`))
	})

	_, err := g.Generate(context.Background(), GenerationRequest{GoalSkill: "Go"})
	var se *statusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.code)
	assert.Equal(t, "bad key", se.message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIRejectsBadContent(t *testing.T) {
	g := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody(t, `{"goal_skill": "Go", "paths": [{"phase_name": "Basics", "skills": ["Syntax"]}]}`))
	})
	_, err := g.Generate(context.Background(), GenerationRequest{GoalSkill: "Go"})
	assert.ErrorIs(t, err, ErrUnsupportedShape)

	empty := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	})
	_, err = empty.Generate(context.Background(), GenerationRequest{GoalSkill: "Go"})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestOpenAIValidatesBeforeCalling(t *testing.T) {
	var calls atomic.Int32
	g := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	_, err := g.Generate(context.Background(), GenerationRequest{GoalSkill: "   "})
	assert.Error(t, err)
	assert.Zero(t, calls.Load())
}
