package tonal

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig         = errors.New("invalid detector configuration")
	ErrModelNotTrained       = errors.New("model not trained")
	ErrAlreadyTrained        = errors.New("model already trained")
	ErrUnknownLabel          = errors.New("label not in the label set")
	ErrNoConfidentPrediction = errors.New("no confident prediction")
	ErrNoTrainingData        = errors.New("no training data")
)

// DetectorConfig controls training and prediction of a ChordDetector
type DetectorConfig struct {
	// ConfidenceThreshold is the posterior a label must strictly exceed to be detected
	ConfidenceThreshold float64 `json:"confidence_threshold" yaml:"confidence_threshold"`
	// StepDivisor sets the training hop to WindowSize/StepDivisor
	StepDivisor int `json:"step_divisor" yaml:"step_divisor"`
}

// DefaultDetectorConfig returns a 0.9 threshold and a 75% training overlap
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		ConfidenceThreshold: 0.9,
		StepDivisor:         4,
	}
}

func (c DetectorConfig) Validate() error {
	if c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold >= 1 {
		return fmt.Errorf("%w: confidence threshold %v must be in (0, 1)", ErrInvalidConfig, c.ConfidenceThreshold)
	}
	if c.StepDivisor < 1 {
		return fmt.Errorf("%w: step divisor %d must be positive", ErrInvalidConfig, c.StepDivisor)
	}
	return nil
}
