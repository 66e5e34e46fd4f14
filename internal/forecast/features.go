package forecast

import (
	"math"
	"time"
)

// Feature vector layout consumed by the trained sequence model. The order is
// fixed by the training pipeline and must match the exported scaler.
const (
	featGlucose = iota
	featCarbs
	featBolus
	featHourSin
	featHourCos
	featDaySin
	featDayCos
	featTimePeriod
	featIsWeekend
	featExerciseIntensity
	featExerciseDuration

	// NumFeatures is the dimensionality of one encoded reading.
	NumFeatures = 11
)

const (
	// WindowSize is the fixed lookback: 12 readings at 5-minute sampling,
	// one hour of history per prediction step.
	WindowSize = 12

	// StepInterval is the sampling period of the CGM stream and therefore
	// the horizon of a single prediction step.
	StepInterval = 5 * time.Minute

	// MaxSteps bounds the forecast horizon to two hours.
	MaxSteps = 24
)

// Reading is one historical CGM point with its contextual inputs. Glucose is
// in mg/dL here, matching the units the sequence model was trained on.
type Reading struct {
	Timestamp         time.Time `json:"timestamp"`
	Glucose           float64   `json:"glucose"`
	Carbs             float64   `json:"carbs"`
	Bolus             float64   `json:"bolus"`
	ExerciseIntensity float64   `json:"exercise_intensity"`
	ExerciseDuration  float64   `json:"exercise_duration"`
}

// PlanStep is a caller-declared future input for one 5-minute step. The zero
// value means no carbs, no insulin and no exercise.
type PlanStep struct {
	Carbs             float64 `json:"carbs"`
	Bolus             float64 `json:"bolus"`
	ExerciseIntensity float64 `json:"exercise_intensity"`
	ExerciseDuration  float64 `json:"exercise_duration"`
}

// encodeReading turns a reading into the 11-dimensional raw feature vector.
// Hour and weekday use cyclical sin/cos encoding so 23:55 sits next to 00:00
// in feature space; the coarse time period buckets the day into quarters.
func encodeReading(r Reading) []float64 {
	hour := float64(r.Timestamp.Hour()) + float64(r.Timestamp.Minute())/60.0

	// time.Weekday is Sunday-based; the model was trained with Monday=0.
	weekday := (int(r.Timestamp.Weekday()) + 6) % 7

	features := make([]float64, NumFeatures)
	features[featGlucose] = r.Glucose
	features[featCarbs] = r.Carbs
	features[featBolus] = r.Bolus
	features[featHourSin] = math.Sin(2 * math.Pi * hour / 24)
	features[featHourCos] = math.Cos(2 * math.Pi * hour / 24)
	features[featDaySin] = math.Sin(2 * math.Pi * float64(weekday) / 7)
	features[featDayCos] = math.Cos(2 * math.Pi * float64(weekday) / 7)
	features[featTimePeriod] = float64(r.Timestamp.Hour() / 6)
	features[featIsWeekend] = 0
	if weekday >= 5 {
		features[featIsWeekend] = 1
	}
	features[featExerciseIntensity] = r.ExerciseIntensity
	features[featExerciseDuration] = r.ExerciseDuration
	return features
}

// FeatureScaler is the per-feature standardization table exported with the
// trained model. Rows are transformed in place as (x - mean) / scale.
type FeatureScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// transform standardizes a raw feature row in place.
func (s *FeatureScaler) transform(row []float64) {
	for i := range row {
		row[i] = (row[i] - s.Mean[i]) / s.Scale[i]
	}
}

// normalize standardizes a single feature channel.
func (s *FeatureScaler) normalize(feature int, v float64) float64 {
	return (v - s.Mean[feature]) / s.Scale[feature]
}

// denormalize inverts the standardization for a single feature channel.
func (s *FeatureScaler) denormalize(feature int, v float64) float64 {
	return v*s.Scale[feature] + s.Mean[feature]
}
