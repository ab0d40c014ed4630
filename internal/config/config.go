// Package config handles animtool configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all settings.
type Config struct {
	Animation   AnimationConfig   `yaml:"animation"`
	Compression CompressionConfig `yaml:"compression"`
	Rig         RigConfig         `yaml:"rig"`
	Simulation  SimulationConfig  `yaml:"simulation"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// AnimationConfig holds per-frame update settings.
type AnimationConfig struct {
	IncludeRootTransform bool `yaml:"include_root_transform"` // Compose root bones with the model's root transform
	Workers              int  `yaml:"workers"`                // Model instances updated in parallel
}

// CompressionConfig holds keyframe compression tolerances.
type CompressionConfig struct {
	TranslationTolerance     float32 `yaml:"translation_tolerance"`
	RotationToleranceDegrees float32 `yaml:"rotation_tolerance_degrees"`
}

// RigConfig describes the procedural test rig.
type RigConfig struct {
	Bones        int     `yaml:"bones"`
	BoneLength   float32 `yaml:"bone_length"`
	Keyframes    int     `yaml:"keyframes"` // Per track
	Duration     float32 `yaml:"duration"`  // Seconds
	RingSegments int     `yaml:"ring_segments"`
}

// SimulationConfig holds batch simulation settings.
type SimulationConfig struct {
	Instances int     `yaml:"instances"`
	Frames    int     `yaml:"frames"`
	FrameRate float32 `yaml:"frame_rate"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Animation: AnimationConfig{
			IncludeRootTransform: false,
			Workers:              4,
		},
		Compression: CompressionConfig{
			TranslationTolerance:     0.01,
			RotationToleranceDegrees: 0.5,
		},
		Rig: RigConfig{
			Bones:        4,
			BoneLength:   1,
			Keyframes:    31,
			Duration:     2,
			RingSegments: 8,
		},
		Simulation: SimulationConfig{
			Instances: 16,
			Frames:    120,
			FrameRate: 30,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks the values the rig builder and simulator rely on.
func (c *Config) Validate() error {
	switch {
	case c.Animation.Workers < 1:
		return fmt.Errorf("animation.workers must be at least 1, got %d: %w", c.Animation.Workers, ErrInvalidConfig)
	case c.Compression.TranslationTolerance < 0 || c.Compression.RotationToleranceDegrees < 0:
		return fmt.Errorf("compression tolerances must not be negative: %w", ErrInvalidConfig)
	case c.Rig.Bones < 1:
		return fmt.Errorf("rig.bones must be at least 1, got %d: %w", c.Rig.Bones, ErrInvalidConfig)
	case c.Rig.BoneLength <= 0:
		return fmt.Errorf("rig.bone_length must be positive: %w", ErrInvalidConfig)
	case c.Rig.Keyframes < 2:
		return fmt.Errorf("rig.keyframes must be at least 2, got %d: %w", c.Rig.Keyframes, ErrInvalidConfig)
	case c.Rig.Duration <= 0:
		return fmt.Errorf("rig.duration must be positive: %w", ErrInvalidConfig)
	case c.Rig.RingSegments < 3:
		return fmt.Errorf("rig.ring_segments must be at least 3, got %d: %w", c.Rig.RingSegments, ErrInvalidConfig)
	case c.Simulation.Instances < 0 || c.Simulation.Frames < 0:
		return fmt.Errorf("simulation counts must not be negative: %w", ErrInvalidConfig)
	case c.Simulation.FrameRate <= 0:
		return fmt.Errorf("simulation.frame_rate must be positive: %w", ErrInvalidConfig)
	}
	return nil
}
