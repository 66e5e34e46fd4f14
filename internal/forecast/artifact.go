package forecast

import (
	"encoding/json"
	"fmt"
	"os"
)

// SequenceArtifact is the JSON export of the trained glucose sequence model:
// the 11-feature standardization table plus the weights of the linear
// surrogate distilled from the recurrent network for in-process serving.
// The artifact is loaded once at startup and read-only afterwards.
type SequenceArtifact struct {
	ScalerMean  []float64 `json:"scaler_mean"`
	ScalerScale []float64 `json:"scaler_scale"`
	Weights     []float64 `json:"weights"`
	Bias        float64   `json:"bias"`
}

// Validate checks the artifact dimensions against the fixed window shape.
func (a *SequenceArtifact) Validate() error {
	if len(a.ScalerMean) != NumFeatures || len(a.ScalerScale) != NumFeatures {
		return fmt.Errorf("scaler must cover %d features, got mean=%d scale=%d",
			NumFeatures, len(a.ScalerMean), len(a.ScalerScale))
	}
	for i, s := range a.ScalerScale {
		if s == 0 {
			return fmt.Errorf("scaler scale for feature %d is zero", i)
		}
	}
	if len(a.Weights) != WindowSize*NumFeatures {
		return fmt.Errorf("expected %d weights, got %d", WindowSize*NumFeatures, len(a.Weights))
	}
	return nil
}

// Scaler returns the artifact's feature scaler.
func (a *SequenceArtifact) Scaler() *FeatureScaler {
	return &FeatureScaler{Mean: a.ScalerMean, Scale: a.ScalerScale}
}

// Predictor returns the linear surrogate predictor backed by the artifact.
func (a *SequenceArtifact) Predictor() Predictor {
	return &linearPredictor{weights: a.Weights, bias: a.Bias}
}

// LoadSequenceArtifact reads a JSON-exported sequence model from disk.
func LoadSequenceArtifact(path string) (*SequenceArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sequence artifact: %w", err)
	}

	var artifact SequenceArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse sequence artifact: %w", err)
	}
	if err := artifact.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sequence artifact: %w", err)
	}
	return &artifact, nil
}

// linearPredictor scores the flattened normalized window against the
// exported surrogate weights.
type linearPredictor struct {
	weights []float64
	bias    float64
}

func (p *linearPredictor) PredictNext(window [][]float64) (float64, error) {
	if len(window) != WindowSize {
		return 0, fmt.Errorf("window has %d rows, expected %d", len(window), WindowSize)
	}

	out := p.bias
	for i, row := range window {
		if len(row) != NumFeatures {
			return 0, fmt.Errorf("window row %d has %d features, expected %d", i, len(row), NumFeatures)
		}
		base := i * NumFeatures
		for j, v := range row {
			out += p.weights[base+j] * v
		}
	}
	return out, nil
}
