package main

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	unknownDuration = "unknown"

	// maxSpanDays bounds parsed spans; anything longer is treated as unparsable.
	maxSpanDays = 100 * 365
)

// timeValue accepts "2 weeks" style strings, ISO dates, and bare numbers
// (older responses sent a week count).
type timeValue string

func (t *timeValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = timeValue(s)
		return nil
	}
	// Anything else (bool, object, array) degrades to an unknown value
	// instead of failing the whole response.
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		*t = ""
		return nil
	}
	*t = timeValue(strconv.FormatFloat(n, 'f', -1, 64) + " weeks")
	return nil
}

type RawDuration struct {
	ApproxTime  timeValue `json:"approx_time"`
	StartTime   timeValue `json:"start_time"`
	MasteryTime timeValue `json:"mastery_time"`
}

// Duration is computed once when a generated phase is ingested.
type Duration struct {
	Days    int
	HasDays bool
	Display string
}

func (d Duration) String() string {
	if d.Display == "" {
		return unknownDuration
	}
	return d.Display
}

func formatDuration(raw RawDuration) string {
	return normalizeDuration(&raw).String()
}

func normalizeDuration(raw *RawDuration) Duration {
	if raw == nil {
		return Duration{}
	}
	approx := strings.TrimSpace(string(raw.ApproxTime))
	start := strings.TrimSpace(string(raw.StartTime))
	mastery := strings.TrimSpace(string(raw.MasteryTime))
	if start == "" {
		start = approx
	}
	if mastery == "" {
		mastery = approx
	}

	if from, ok := parseDate(start); ok {
		if to, ok := parseDate(mastery); ok {
			days := int(math.Round(math.Abs(to.Sub(from).Hours()) / 24))
			d := Duration{Days: days, HasDays: true, Display: start}
			if days != 0 {
				d.Display = start + " - " + mastery
			}
			return d
		}
	}

	startDays, startOK := parseSpan(start)
	masteryDays, masteryOK := parseSpan(mastery)
	switch {
	case startOK && masteryOK:
		d := Duration{Days: startDays, HasDays: true, Display: start}
		if approxDays, ok := parseSpan(approx); ok {
			d.Days = approxDays
		}
		if startDays != masteryDays {
			d.Display = start + " - " + mastery
		}
		return d
	case startOK:
		return Duration{Days: startDays, HasDays: true, Display: start}
	case masteryOK:
		return Duration{Days: masteryDays, HasDays: true, Display: mastery}
	}
	if days, ok := parseSpan(approx); ok {
		return Duration{Days: days, HasDays: true, Display: approx}
	}
	return Duration{}
}

// parseSpan converts "3 weeks" to days. A bare number is a week count.
func parseSpan(s string) (int, bool) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 || len(fields) > 2 {
		return 0, false
	}
	n, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	unit := "weeks"
	if len(fields) == 2 {
		unit = fields[1]
	}
	var perUnit float64
	switch strings.TrimSuffix(unit, "s") {
	case "day":
		perUnit = 1
	case "week":
		perUnit = 7
	case "month":
		perUnit = 30
	case "year":
		perUnit = 365
	default:
		return 0, false
	}
	days := math.Round(n * perUnit)
	if days > maxSpanDays {
		return 0, false
	}
	return int(days), true
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
