package model_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
	"github.com/jsamuelsen11/ramp-pipeline/internal/model"
)

func TestParseParameters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantErr bool
		check   func(t *testing.T, p model.Parameters)
	}{
		{
			name: "full microsim block",
			doc: `
microsim:
  iterations: 30
  study-area: devon
  output: true
  output-every-iteration: true
  transmission-probability: 0.2
disease:
  current_risk_beta: 0.008
`,
			check: func(t *testing.T, p model.Parameters) {
				if p.Microsim.Iterations != 30 || p.Microsim.StudyArea != "devon" {
					t.Errorf("Microsim = %+v", p.Microsim)
				}
				if p.Microsim.TransmissionProb != 0.2 {
					t.Errorf("TransmissionProb = %v, want 0.2", p.Microsim.TransmissionProb)
				}
				if p.Microsim.RecoveryProb != model.DefaultParameters().Microsim.RecoveryProb {
					t.Errorf("RecoveryProb = %v, want default", p.Microsim.RecoveryProb)
				}
			},
		},
		{
			name:    "empty document",
			doc:     "  \n",
			wantErr: true,
		},
		{
			name:    "zero iterations",
			doc:     "microsim:\n  iterations: 0\n",
			wantErr: true,
		},
		{
			name:    "every iteration without output",
			doc:     "microsim:\n  output: false\n  output-every-iteration: true\n",
			wantErr: true,
		},
		{
			name:    "probability out of range",
			doc:     "microsim:\n  transmission-probability: 1.5\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			doc:     "microsim: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := model.ParseParameters([]byte(tt.doc))
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("ParseParameters() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseParameters() error = %v", err)
			}
			tt.check(t, p)
		})
	}
}

func TestLoadParameters_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := model.LoadParameters(filepath.Join(t.TempDir(), "absent.yml"))
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("LoadParameters() error = %v, want ErrSourceUnavailable", err)
	}
}

func TestLoadParameters_BundledDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join("..", "..", "model_parameters", "default.yml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("bundled parameters missing: %v", err)
	}
	if _, err := model.LoadParameters(path); err != nil {
		t.Fatalf("LoadParameters(%s) error = %v", path, err)
	}
}
