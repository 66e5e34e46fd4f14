package forecast

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// predictorFunc adapts a closure to the Predictor interface.
type predictorFunc func(window [][]float64) (float64, error)

func (f predictorFunc) PredictNext(window [][]float64) (float64, error) {
	return f(window)
}

func identityScaler() *FeatureScaler {
	mean := make([]float64, NumFeatures)
	scale := make([]float64, NumFeatures)
	for i := range scale {
		scale[i] = 1
	}
	return &FeatureScaler{Mean: mean, Scale: scale}
}

func syntheticHistory(start time.Time) []Reading {
	history := make([]Reading, WindowSize)
	for i := range history {
		history[i] = Reading{
			Timestamp: start.Add(time.Duration(i) * StepInterval),
			Glucose:   110 + float64(i),
		}
	}
	return history
}

func TestForecast(t *testing.T) {
	start := time.Date(2024, 11, 22, 15, 0, 0, 0, time.UTC)

	t.Run("Should reject history that is not exactly 12 points", func(t *testing.T) {
		f := NewForecaster(predictorFunc(func([][]float64) (float64, error) { return 0, nil }), identityScaler())

		for _, n := range []int{11, 13} {
			history := make([]Reading, n)
			_, err := f.Forecast(history, nil, 6)
			assert.ErrorIs(t, err, ErrInvalidHistoryLength, "history of %d should be rejected", n)
		}
	})

	t.Run("Should reject horizons outside 1..24", func(t *testing.T) {
		f := NewForecaster(predictorFunc(func([][]float64) (float64, error) { return 0, nil }), identityScaler())
		history := syntheticHistory(start)

		for _, n := range []int{0, 25, -1} {
			_, err := f.Forecast(history, nil, n)
			assert.ErrorIs(t, err, ErrInvalidStepCount)
		}
	})

	t.Run("Should fail without a loaded model", func(t *testing.T) {
		f := NewForecaster(nil, identityScaler())

		_, err := f.Forecast(syntheticHistory(start), nil, 6)
		assert.ErrorIs(t, err, ErrModelUnavailable)
	})

	t.Run("Should keep the window at exactly 12 rows for every step", func(t *testing.T) {
		calls := 0
		f := NewForecaster(predictorFunc(func(window [][]float64) (float64, error) {
			calls++
			require.Len(t, window, WindowSize)
			for _, row := range window {
				require.Len(t, row, NumFeatures)
			}
			return 115, nil
		}), identityScaler())

		result, err := f.Forecast(syntheticHistory(start), nil, 12)
		require.NoError(t, err)
		assert.Equal(t, 12, calls)
		assert.Len(t, result.Predictions, 12)
	})

	t.Run("Should be deterministic for identical calls", func(t *testing.T) {
		predictor := predictorFunc(func(window [][]float64) (float64, error) {
			// Depend on the window so feedback differences would show up.
			return window[WindowSize-1][featGlucose]*0.99 + 1, nil
		})
		f := NewForecaster(predictor, identityScaler())
		plan := make([]PlanStep, 12)

		first, err := f.Forecast(syntheticHistory(start), plan, 12)
		require.NoError(t, err)
		second, err := f.Forecast(syntheticHistory(start), plan, 12)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("Should stamp each step five minutes apart", func(t *testing.T) {
		f := NewForecaster(predictorFunc(func([][]float64) (float64, error) { return 120, nil }), identityScaler())

		result, err := f.Forecast(syntheticHistory(start), nil, 3)
		require.NoError(t, err)

		last := start.Add(11 * StepInterval)
		assert.Equal(t, last.Add(5*time.Minute).Format(time.RFC3339), result.Timestamps[0])
		assert.Equal(t, last.Add(10*time.Minute).Format(time.RFC3339), result.Timestamps[1])
		assert.Equal(t, last.Add(15*time.Minute).Format(time.RFC3339), result.Timestamps[2])
	})

	t.Run("Should feed predictions and plan entries back into the window", func(t *testing.T) {
		var windows [][]float64
		f := NewForecaster(predictorFunc(func(window [][]float64) (float64, error) {
			last := make([]float64, NumFeatures)
			copy(last, window[WindowSize-1])
			windows = append(windows, last)
			return 150, nil
		}), identityScaler())

		plan := []PlanStep{{Carbs: 45, Bolus: 6, ExerciseIntensity: 3, ExerciseDuration: 30}}

		_, err := f.Forecast(syntheticHistory(start), plan, 2)
		require.NoError(t, err)
		require.Len(t, windows, 2)

		// Second call sees the first prediction plus the first plan entry.
		assert.Equal(t, 150.0, windows[1][featGlucose])
		assert.Equal(t, 45.0, windows[1][featCarbs])
		assert.Equal(t, 6.0, windows[1][featBolus])
		assert.Equal(t, 3.0, windows[1][featExerciseIntensity])
		assert.Equal(t, 30.0, windows[1][featExerciseDuration])
	})

	t.Run("Should zero the controllable inputs beyond the plan", func(t *testing.T) {
		var windows [][]float64
		f := NewForecaster(predictorFunc(func(window [][]float64) (float64, error) {
			last := make([]float64, NumFeatures)
			copy(last, window[WindowSize-1])
			windows = append(windows, last)
			return 150, nil
		}), identityScaler())

		history := syntheticHistory(start)
		history[WindowSize-1].Carbs = 60

		_, err := f.Forecast(history, nil, 2)
		require.NoError(t, err)

		assert.Equal(t, 0.0, windows[1][featCarbs])
		assert.Equal(t, 0.0, windows[1][featBolus])
	})

	t.Run("Should abort the whole forecast on prediction failure", func(t *testing.T) {
		boom := errors.New("model exploded")
		calls := 0
		f := NewForecaster(predictorFunc(func([][]float64) (float64, error) {
			calls++
			if calls == 3 {
				return 0, boom
			}
			return 120, nil
		}), identityScaler())

		result, err := f.Forecast(syntheticHistory(start), nil, 12)

		assert.Nil(t, result)
		var predErr *PredictionError
		require.ErrorAs(t, err, &predErr)
		assert.Equal(t, 3, predErr.Step)
		assert.ErrorIs(t, err, boom)
		// No retry: the failing step is the last call made.
		assert.Equal(t, 3, calls)
	})

	t.Run("Should summarize the trajectory", func(t *testing.T) {
		values := []float64{120, 130, 250, 65}
		i := 0
		f := NewForecaster(predictorFunc(func([][]float64) (float64, error) {
			v := values[i]
			i++
			return v, nil
		}), identityScaler())

		history := syntheticHistory(start)
		history[WindowSize-1].Glucose = 118

		result, err := f.Forecast(history, nil, 4)
		require.NoError(t, err)

		s := result.Summary
		assert.Equal(t, 118.0, s.CurrentGlucose)
		assert.Equal(t, 65.0, s.FinalGlucose)
		assert.Equal(t, -53.0, s.Change)
		assert.Equal(t, 65.0, s.MinGlucose)
		assert.Equal(t, 250.0, s.MaxGlucose)
		assert.Equal(t, "descendente", s.Trend)
		// 120 and 130 are in [70,180]; 250 and 65 are not.
		assert.Equal(t, 50.0, s.TimeInRange)
		assert.Equal(t, "alto", s.RiskLevel)
	})

	t.Run("Should report rising trend and low risk without alerts", func(t *testing.T) {
		values := []float64{110, 120, 130}
		i := 0
		f := NewForecaster(predictorFunc(func([][]float64) (float64, error) {
			v := values[i]
			i++
			return v, nil
		}), identityScaler())

		result, err := f.Forecast(syntheticHistory(start), nil, 3)
		require.NoError(t, err)

		assert.Equal(t, "ascendente", result.Summary.Trend)
		assert.Equal(t, "bajo", result.Summary.RiskLevel)
		assert.Empty(t, result.Alerts)
	})
}

func TestLinearPredictor(t *testing.T) {
	t.Run("Should score the flattened window", func(t *testing.T) {
		weights := make([]float64, WindowSize*NumFeatures)
		// Only the newest row's glucose channel contributes.
		weights[(WindowSize-1)*NumFeatures+featGlucose] = 0.5
		artifact := &SequenceArtifact{
			ScalerMean:  make([]float64, NumFeatures),
			ScalerScale: onesRow(),
			Weights:     weights,
			Bias:        0.25,
		}
		require.NoError(t, artifact.Validate())

		window := make([][]float64, WindowSize)
		for i := range window {
			window[i] = make([]float64, NumFeatures)
		}
		window[WindowSize-1][featGlucose] = 2.0

		got, err := artifact.Predictor().PredictNext(window)
		require.NoError(t, err)
		assert.InDelta(t, 1.25, got, 1e-9)
	})

	t.Run("Should reject malformed artifacts", func(t *testing.T) {
		artifact := &SequenceArtifact{
			ScalerMean:  make([]float64, NumFeatures),
			ScalerScale: onesRow(),
			Weights:     []float64{1, 2, 3},
		}
		assert.Error(t, artifact.Validate())

		zeroScale := &SequenceArtifact{
			ScalerMean:  make([]float64, NumFeatures),
			ScalerScale: make([]float64, NumFeatures),
			Weights:     make([]float64, WindowSize*NumFeatures),
		}
		assert.Error(t, zeroScale.Validate())
	})
}

func onesRow() []float64 {
	row := make([]float64, NumFeatures)
	for i := range row {
		row[i] = 1
	}
	return row
}
