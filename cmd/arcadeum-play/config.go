package main

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// MoveConfig is one ply of a scripted match: which player slot acts and
// where they place their mark.
type MoveConfig struct {
	Player int `yaml:"player"`
	Row    int `yaml:"row"`
	Column int `yaml:"column"`
}

// MatchConfig describes a tic-tac-toe match to simulate across three local
// replicas (the owner plus both players).
type MatchConfig struct {
	Moves []MoveConfig `yaml:"moves"`
}

// DefaultMatchConfig returns a short, guaranteed-to-finish match: player 0
// wins the top row on their third move.
func DefaultMatchConfig() *MatchConfig {
	return &MatchConfig{
		Moves: []MoveConfig{
			{Player: 0, Row: 0, Column: 0},
			{Player: 1, Row: 1, Column: 0},
			{Player: 0, Row: 0, Column: 1},
			{Player: 1, Row: 1, Column: 1},
			{Player: 0, Row: 0, Column: 2},
		},
	}
}

// LoadMatchConfig parses a MatchConfig from YAML bytes.
func LoadMatchConfig(data []byte) (*MatchConfig, error) {
	cfg := DefaultMatchConfig()
	cfg.Moves = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for correctness before the match runs.
func (c *MatchConfig) Validate() error {
	if len(c.Moves) == 0 {
		return fmt.Errorf("config: moves must not be empty")
	}
	for i, m := range c.Moves {
		if m.Player != 0 && m.Player != 1 {
			return fmt.Errorf("config: move %d: player must be 0 or 1, got %d", i, m.Player)
		}
		if m.Row < 0 || m.Row > 2 {
			return fmt.Errorf("config: move %d: row out of range", i)
		}
		if m.Column < 0 || m.Column > 2 {
			return fmt.Errorf("config: move %d: column out of range", i)
		}
	}
	return nil
}
