package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Standard parameter ids.
const (
	ParamAngleX     = "ParamAngleX"
	ParamAngleY     = "ParamAngleY"
	ParamAngleZ     = "ParamAngleZ"
	ParamEyeLOpen   = "ParamEyeLOpen"
	ParamEyeROpen   = "ParamEyeROpen"
	ParamEyeBallX   = "ParamEyeBallX"
	ParamEyeBallY   = "ParamEyeBallY"
	ParamBrowLY     = "ParamBrowLY"
	ParamBrowRY     = "ParamBrowRY"
	ParamMouthForm  = "ParamMouthForm"
	ParamMouthOpenY = "ParamMouthOpenY"
	ParamCheek      = "ParamCheek"
	ParamBodyAngleX = "ParamBodyAngleX"
	ParamBodyAngleY = "ParamBodyAngleY"
	ParamBodyAngleZ = "ParamBodyAngleZ"
	ParamBreath     = "ParamBreath"
)

// Definition is the on-disk description of a model's parameters and parts.
type Definition struct {
	Parameters []Parameter `json:"parameters"`
	Parts      []string    `json:"parts,omitempty"`
	EyeBlink   []string    `json:"eyeBlink,omitempty"`
	LipSync    []string    `json:"lipSync,omitempty"`
}

// Build creates a model from the definition.
func (d *Definition) Build() *Model {
	return New(d.Parameters, d.Parts...)
}

// DefaultDefinition returns the standard face and body parameter set.
func DefaultDefinition() *Definition {
	return &Definition{
		Parameters: []Parameter{
			{ID: ParamAngleX, Min: -30, Max: 30},
			{ID: ParamAngleY, Min: -30, Max: 30},
			{ID: ParamAngleZ, Min: -30, Max: 30},
			{ID: ParamEyeLOpen, Min: 0, Max: 1, Default: 1},
			{ID: ParamEyeROpen, Min: 0, Max: 1, Default: 1},
			{ID: ParamEyeBallX, Min: -1, Max: 1},
			{ID: ParamEyeBallY, Min: -1, Max: 1},
			{ID: ParamBrowLY, Min: -1, Max: 1},
			{ID: ParamBrowRY, Min: -1, Max: 1},
			{ID: ParamMouthForm, Min: -1, Max: 1},
			{ID: ParamMouthOpenY, Min: 0, Max: 1},
			{ID: ParamCheek, Min: 0, Max: 1},
			{ID: ParamBodyAngleX, Min: -10, Max: 10},
			{ID: ParamBodyAngleY, Min: -10, Max: 10},
			{ID: ParamBodyAngleZ, Min: -10, Max: 10},
			{ID: ParamBreath, Min: 0, Max: 1},
		},
		EyeBlink: []string{ParamEyeLOpen, ParamEyeROpen},
		LipSync:  []string{ParamMouthOpenY},
	}
}

// LoadDefinition reads a JSON model definition from disk.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model definition: %w", err)
	}
	return ParseDefinition(data)
}

// ParseDefinition decodes a JSON model definition.
func ParseDefinition(data []byte) (*Definition, error) {
	var d Definition
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse model definition: %w", err)
	}
	if len(d.Parameters) == 0 {
		return nil, fmt.Errorf("model definition declares no parameters")
	}
	return &d, nil
}
