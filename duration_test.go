package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		raw  RawDuration
		want string
	}{
		{"approx only", RawDuration{ApproxTime: "2 weeks"}, "2 weeks"},
		{"same start and mastery", RawDuration{StartTime: "1 month", MasteryTime: "1 month"}, "1 month"},
		{"range", RawDuration{StartTime: "1 week", MasteryTime: "3 weeks"}, "1 week - 3 weeks"},
		{"start falls back to approx", RawDuration{ApproxTime: "2 weeks", MasteryTime: "6 weeks"}, "2 weeks - 6 weeks"},
		{"dates", RawDuration{StartTime: "2024-01-01", MasteryTime: "2024-01-31"}, "2024-01-01 - 2024-01-31"},
		{"empty", RawDuration{}, "unknown"},
		{"unparsable", RawDuration{ApproxTime: "soon"}, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.raw))
		})
	}
}

func TestNormalizeDurationDays(t *testing.T) {
	d := normalizeDuration(&RawDuration{ApproxTime: "1 month"})
	assert.True(t, d.HasDays)
	assert.Equal(t, 30, d.Days)

	d = normalizeDuration(&RawDuration{StartTime: "2024-01-01", MasteryTime: "2024-01-31"})
	assert.Equal(t, 30, d.Days)

	d = normalizeDuration(nil)
	assert.False(t, d.HasDays)
	assert.Equal(t, "unknown", d.String())
}

func TestParseSpan(t *testing.T) {
	tests := []struct {
		in   string
		days int
		ok   bool
	}{
		{"3 days", 3, true},
		{"1 week", 7, true},
		{"2 Weeks", 14, true},
		{"1.5 months", 45, true},
		{"1 year", 365, true},
		{"4", 28, true},
		{"a while", 0, false},
		{"3 fortnights", 0, false},
		{"1e300 weeks", 0, false},
		{"NaN days", 0, false},
		{"Inf years", 0, false},
		{"500 years", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		days, ok := parseSpan(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.days, days, tt.in)
	}
}

func TestRawDurationJSON(t *testing.T) {
	var raw RawDuration
	require.NoError(t, json.Unmarshal([]byte(`{"approx_time": 4, "start_time": "1 week", "mastery_time": null}`), &raw))
	assert.Equal(t, timeValue("4 weeks"), raw.ApproxTime)
	assert.Equal(t, timeValue("1 week"), raw.StartTime)
	assert.Equal(t, timeValue(""), raw.MasteryTime)
	assert.Equal(t, "1 week - 4 weeks", formatDuration(raw))

	for _, body := range []string{`{"approx_time": true}`, `{"approx_time": {"n": 2}}`, `{"approx_time": [2, "weeks"]}`} {
		var odd RawDuration
		require.NoError(t, json.Unmarshal([]byte(body), &odd), body)
		assert.Equal(t, "unknown", formatDuration(odd), body)
	}
}

func TestMalformedDurationKeepsGeneration(t *testing.T) {
	body := `{"goal_skill": "Go", "paths": [{"phase": [{"phase_name": "Basics", "duration": {"approx_time": true, "start_time": {}, "mastery_time": []}, "skills": ["Syntax"]}]}]}`
	res, err := decodeResult(GenerationPaths, []byte(body))
	require.NoError(t, err)

	b := newTestBoard(t, "Go")
	require.NoError(t, b.Generate(context.Background(), &fakeGenerator{res: res}, GenerationRequest{GoalSkill: "Go"}))
	el, ok := b.Element("path-0-phase-0")
	require.True(t, ok)
	assert.Empty(t, b.Err())

	b.PointerMove(point{el.X + 10, el.Y + 10})
	assert.Equal(t, []string{"Syntax (unknown)"}, b.View(el.ID).Popover())
}
