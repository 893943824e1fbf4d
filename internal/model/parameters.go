// Package model holds the simulation parameters file and the baseline
// simulation runner invoked by the run-model stage.
package model

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
)

// Parameters is the top-level document of a parameters file. Sections other
// than microsim are accepted and ignored.
type Parameters struct {
	Microsim Microsim `yaml:"microsim"`
}

// Microsim controls a simulation run.
type Microsim struct {
	Iterations           int     `yaml:"iterations"`
	StudyArea            string  `yaml:"study-area"`
	Output               bool    `yaml:"output"`
	OutputEveryIteration bool    `yaml:"output-every-iteration"`
	TransmissionProb     float64 `yaml:"transmission-probability"`
	RecoveryProb         float64 `yaml:"recovery-probability"`
}

// DefaultParameters returns the values used when a file omits a field.
func DefaultParameters() Parameters {
	return Parameters{
		Microsim: Microsim{
			Iterations:       100,
			Output:           true,
			TransmissionProb: 0.05,
			RecoveryProb:     0.1,
		},
	}
}

// ParseParameters decodes and validates a parameters document.
func ParseParameters(data []byte) (Parameters, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Parameters{}, fmt.Errorf("%w: parameters document is empty", domain.ErrValidation)
	}
	p := DefaultParameters()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Parameters{}, fmt.Errorf("%w: decode parameters: %v", domain.ErrValidation, err)
	}
	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

// LoadParameters reads and parses the parameters file at path.
func LoadParameters(path string) (Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Parameters{}, fmt.Errorf("%w: read parameters %s: %v", domain.ErrSourceUnavailable, path, err)
	}
	p, err := ParseParameters(data)
	if err != nil {
		return Parameters{}, fmt.Errorf("parameters %s: %w", path, err)
	}
	return p, nil
}

// Validate reports every problem with the parameters.
func (p Parameters) Validate() error {
	var errs []error
	m := p.Microsim

	if m.Iterations < 1 {
		errs = append(errs, fmt.Errorf("microsim.iterations must be >= 1, got %d", m.Iterations))
	}
	if !m.Output && m.OutputEveryIteration {
		errs = append(errs, errors.New("microsim.output-every-iteration requires microsim.output"))
	}
	if m.TransmissionProb < 0 || m.TransmissionProb > 1 {
		errs = append(errs, fmt.Errorf("microsim.transmission-probability must be within [0, 1], got %v", m.TransmissionProb))
	}
	if m.RecoveryProb < 0 || m.RecoveryProb > 1 {
		errs = append(errs, fmt.Errorf("microsim.recovery-probability must be within [0, 1], got %v", m.RecoveryProb))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrValidation, errors.Join(errs...))
	}
	return nil
}
