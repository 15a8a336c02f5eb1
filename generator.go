package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type GenerationMode int

const (
	GenerationPaths GenerationMode = iota
	GenerationMap
)

func (m GenerationMode) String() string {
	if m == GenerationMap {
		return "map"
	}
	return "path"
}

func parseGenerationMode(s string) (GenerationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "path", "paths":
		return GenerationPaths, nil
	case "map":
		return GenerationMap, nil
	}
	return GenerationPaths, fmt.Errorf("unknown generation mode %q", s)
}

// PathGenerator produces learning paths or maps for a goal skill.
type PathGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)
}

type GenerationRequest struct {
	GoalSkill     string         `json:"goal_skill"`
	NumberOfPaths int            `json:"numberOfPaths,omitempty"`
	Layers        int            `json:"layers,omitempty"`
	Mode          GenerationMode `json:"-"`
}

func (r GenerationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.GoalSkill, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.NumberOfPaths, validation.Min(0), validation.Max(5)),
		validation.Field(&r.Layers, validation.Min(0), validation.Max(10)),
	)
}

// withDefaults fills in three paths or three layers when the count is unset.
func (r GenerationRequest) withDefaults() GenerationRequest {
	r.GoalSkill = strings.TrimSpace(r.GoalSkill)
	if r.Mode == GenerationPaths && r.NumberOfPaths == 0 {
		r.NumberOfPaths = 3
	}
	if r.Mode == GenerationMap && r.Layers == 0 {
		r.Layers = 3
	}
	return r
}

type PathPhase struct {
	PhaseName string       `json:"phase_name,omitempty"`
	Duration  *RawDuration `json:"duration,omitempty"`
	Skills    []string     `json:"skills"`
}

func (p PathPhase) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Skills, validation.Required),
	)
}

type LearningPath struct {
	Phase []PathPhase `json:"phase"`
}

func (p LearningPath) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Phase, validation.Required),
	)
}

// LearningPaths is the canonical path-mode response: paths of phases, each
// phase carrying skills and a duration.
type LearningPaths struct {
	GoalSkill string         `json:"goal_skill"`
	Paths     []LearningPath `json:"paths"`
}

func (p LearningPaths) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.GoalSkill, validation.Required),
		validation.Field(&p.Paths, validation.Required),
	)
}

// MapSkill decodes both a bare skill name and a {skill, description} object.
type MapSkill struct {
	Skill       string `json:"skill"`
	Description string `json:"description,omitempty"`
}

func (s *MapSkill) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*s = MapSkill{Skill: name}
		return nil
	}
	type plain MapSkill
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("skill must be a string or an object: %w", err)
	}
	*s = MapSkill(obj)
	return nil
}

func (s MapSkill) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Skill, validation.Required),
	)
}

type MapLayer struct {
	LayerName string     `json:"layer_name"`
	Skills    []MapSkill `json:"skills"`
}

func (l MapLayer) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Skills, validation.Required),
	)
}

type LearningMap struct {
	GoalSkill string     `json:"goal_skill"`
	Layers    []MapLayer `json:"layers"`
}

func (m LearningMap) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.GoalSkill, validation.Required),
		validation.Field(&m.Layers, validation.Required),
	)
}

// GenerationResult is tagged by Mode; exactly the matching field is set.
type GenerationResult struct {
	Mode  GenerationMode
	Paths *LearningPaths
	Map   *LearningMap
}

func (r *GenerationResult) GoalSkill() string {
	switch {
	case r.Mode == GenerationMap && r.Map != nil:
		return r.Map.GoalSkill
	case r.Mode == GenerationPaths && r.Paths != nil:
		return r.Paths.GoalSkill
	}
	return ""
}

func (r *GenerationResult) Validate() error {
	switch r.Mode {
	case GenerationMap:
		if r.Map == nil || r.Paths != nil {
			return fmt.Errorf("map result without map payload: %w", ErrUnsupportedShape)
		}
		return r.Map.Validate()
	default:
		if r.Paths == nil || r.Map != nil {
			return fmt.Errorf("path result without paths payload: %w", ErrUnsupportedShape)
		}
		return r.Paths.Validate()
	}
}

// Payload is the wire body of the result.
func (r *GenerationResult) Payload() any {
	if r.Mode == GenerationMap {
		return r.Map
	}
	return r.Paths
}

func decodeResult(mode GenerationMode, data []byte) (*GenerationResult, error) {
	var res *GenerationResult
	var err error
	switch mode {
	case GenerationMap:
		var m *LearningMap
		m, err = decodeMap(data)
		res = &GenerationResult{Mode: GenerationMap, Map: m}
	default:
		var p *LearningPaths
		p, err = decodePaths(data)
		res = &GenerationResult{Mode: GenerationPaths, Paths: p}
	}
	if err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s response: %w", mode, err)
	}
	return res, nil
}

// decodePaths refuses the flat {phase_name, skills} path shape instead of
// reading it as empty phases.
func decodePaths(data []byte) (*LearningPaths, error) {
	var shape struct {
		Paths []map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("decode paths: %w", err)
	}
	for i, path := range shape.Paths {
		if _, ok := path["phase"]; ok {
			continue
		}
		_, named := path["phase_name"]
		_, skills := path["skills"]
		if named || skills {
			return nil, fmt.Errorf("path %d uses the flat phase_name/skills shape: %w", i, ErrUnsupportedShape)
		}
		return nil, fmt.Errorf("path %d has no phases: %w", i, ErrUnsupportedShape)
	}
	var lp LearningPaths
	if err := json.Unmarshal(data, &lp); err != nil {
		return nil, fmt.Errorf("decode paths: %w", err)
	}
	return &lp, nil
}

func decodeMap(data []byte) (*LearningMap, error) {
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("decode map: %w", err)
	}
	if _, ok := shape["layers"]; !ok {
		if _, ok := shape["paths"]; ok {
			return nil, fmt.Errorf("map response carries paths: %w", ErrUnsupportedShape)
		}
	}
	var lm LearningMap
	if err := json.Unmarshal(data, &lm); err != nil {
		return nil, fmt.Errorf("decode map: %w", err)
	}
	return &lm, nil
}
