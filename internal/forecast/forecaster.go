package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidHistoryLength is returned when the caller does not supply
	// exactly WindowSize historical readings.
	ErrInvalidHistoryLength = errors.New("exactly 12 historical readings are required")

	// ErrInvalidStepCount is returned for a forecast horizon outside 1..24.
	ErrInvalidStepCount = errors.New("n_steps must be between 1 and 24")

	// ErrModelUnavailable is returned when no trained sequence model is
	// loaded. Forecasting has no heuristic fallback.
	ErrModelUnavailable = errors.New("glucose prediction model not loaded")
)

// PredictionError wraps a failure of the underlying model call. The forecast
// is aborted as a whole; there is no retry.
type PredictionError struct {
	Step int
	Err  error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed at step %d: %v", e.Step, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

// Predictor is the trained sequence model: given the normalized 12x11
// feature window it returns the normalized glucose value for the next step.
// Implementations must be safe for concurrent read-only use.
type Predictor interface {
	PredictNext(window [][]float64) (float64, error)
}

// Forecaster rolls a glucose trajectory forward by feeding each prediction
// back into the model input window. It is stateless across calls.
type Forecaster struct {
	predictor Predictor
	scaler    *FeatureScaler
}

// NewForecaster creates a forecaster over a trained predictor and its
// feature scaler.
func NewForecaster(predictor Predictor, scaler *FeatureScaler) *Forecaster {
	return &Forecaster{predictor: predictor, scaler: scaler}
}

// Summary condenses a forecast trajectory for the caller.
type Summary struct {
	CurrentGlucose float64 `json:"current_glucose"`
	FinalGlucose   float64 `json:"final_glucose"`
	Change         float64 `json:"change"`
	MinGlucose     float64 `json:"min_glucose"`
	MaxGlucose     float64 `json:"max_glucose"`
	AvgGlucose     float64 `json:"avg_glucose"`
	Trend          string  `json:"trend"`
	TimeInRange    float64 `json:"time_in_range"`
	RiskLevel      string  `json:"risk_level"`
}

// Result is the full output of one forecast call.
type Result struct {
	Predictions []float64 `json:"predictions"`
	Timestamps  []string  `json:"timestamps"`
	Alerts      []Alert   `json:"alerts"`
	Summary     Summary   `json:"summary"`
}

// Forecast produces nSteps future glucose values from exactly 12 historical
// readings and an optional plan of future inputs. Steps beyond the plan
// assume zero carbs, insulin and exercise.
func (f *Forecaster) Forecast(history []Reading, plan []PlanStep, nSteps int) (*Result, error) {
	if f.predictor == nil {
		return nil, ErrModelUnavailable
	}
	if len(history) != WindowSize {
		return nil, ErrInvalidHistoryLength
	}
	if nSteps < 1 || nSteps > MaxSteps {
		return nil, ErrInvalidStepCount
	}
	if len(plan) > MaxSteps {
		return nil, fmt.Errorf("plan covers %d steps, maximum is %d", len(plan), MaxSteps)
	}

	// Encode and standardize the history into the fixed-size ring window.
	window := newRingWindow()
	for _, r := range history {
		row := encodeReading(r)
		f.scaler.transform(row)
		window.push(row)
	}

	lastKnown := history[WindowSize-1].Timestamp
	predictions := make([]float64, 0, nSteps)
	timestamps := make([]string, 0, nSteps)

	for step := 0; step < nSteps; step++ {
		normalized, err := f.predictor.PredictNext(window.ordered())
		if err != nil {
			return nil, &PredictionError{Step: step + 1, Err: err}
		}

		glucose := f.scaler.denormalize(featGlucose, normalized)
		predictions = append(predictions, round1(glucose))
		timestamps = append(timestamps,
			lastKnown.Add(time.Duration(step+1)*StepInterval).Format(time.RFC3339))

		// Next input row: carry the last row forward, overwrite the glucose
		// channel with the renormalized prediction and the controllable
		// channels with the plan entry for this step.
		next := window.copyLast()
		next[featGlucose] = f.scaler.normalize(featGlucose, glucose)

		var planned PlanStep
		if step < len(plan) {
			planned = plan[step]
		}
		next[featCarbs] = f.scaler.normalize(featCarbs, planned.Carbs)
		next[featBolus] = f.scaler.normalize(featBolus, planned.Bolus)
		next[featExerciseIntensity] = f.scaler.normalize(featExerciseIntensity, planned.ExerciseIntensity)
		next[featExerciseDuration] = f.scaler.normalize(featExerciseDuration, planned.ExerciseDuration)

		window.push(next)
	}

	alerts := GenerateAlerts(predictions)

	return &Result{
		Predictions: predictions,
		Timestamps:  timestamps,
		Alerts:      alerts,
		Summary:     summarize(history[WindowSize-1].Glucose, predictions, alerts),
	}, nil
}

// summarize derives the trajectory summary. Trend is a two-point comparison
// of the last and first forecast values, not a slope fit.
func summarize(current float64, predictions []float64, alerts []Alert) Summary {
	minV, maxV, sum := predictions[0], predictions[0], 0.0
	inRange := 0
	for _, p := range predictions {
		sum += p
		if p < minV {
			minV = p
		}
		if p > maxV {
			maxV = p
		}
		if p >= 70 && p <= 180 {
			inRange++
		}
	}

	trend := "descendente"
	if predictions[len(predictions)-1] > predictions[0] {
		trend = "ascendente"
	}

	riskLevel := "bajo"
	if len(alerts) > 0 {
		riskLevel = "alto"
	}

	return Summary{
		CurrentGlucose: round1(current),
		FinalGlucose:   round1(predictions[len(predictions)-1]),
		Change:         round1(predictions[len(predictions)-1] - current),
		MinGlucose:     round1(minV),
		MaxGlucose:     round1(maxV),
		AvgGlucose:     round1(sum / float64(len(predictions))),
		Trend:          trend,
		TimeInRange:    round1(float64(inRange) / float64(len(predictions)) * 100),
		RiskLevel:      riskLevel,
	}
}

// ringWindow is the fixed 12-row sliding window. Rows live in a preallocated
// arena; advancing the window overwrites the oldest row instead of
// reslicing, so the rollout does not allocate per step.
type ringWindow struct {
	rows [WindowSize][]float64
	view [WindowSize][]float64
	head int
	size int
}

func newRingWindow() *ringWindow {
	w := &ringWindow{}
	for i := range w.rows {
		w.rows[i] = make([]float64, NumFeatures)
	}
	return w
}

// push overwrites the oldest row with the given values.
func (w *ringWindow) push(row []float64) {
	copy(w.rows[w.head], row)
	w.head = (w.head + 1) % WindowSize
	if w.size < WindowSize {
		w.size++
	}
}

// ordered returns the rows oldest-first. The returned slices alias the
// arena and are only valid until the next push.
func (w *ringWindow) ordered() [][]float64 {
	for i := 0; i < WindowSize; i++ {
		w.view[i] = w.rows[(w.head+i)%WindowSize]
	}
	return w.view[:w.size]
}

// copyLast returns a copy of the most recent row.
func (w *ringWindow) copyLast() []float64 {
	last := w.rows[(w.head+WindowSize-1)%WindowSize]
	out := make([]float64, NumFeatures)
	copy(out, last)
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
