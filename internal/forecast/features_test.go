package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeReading(t *testing.T) {
	t.Run("Should encode cyclical time features", func(t *testing.T) {
		// Monday 06:00 UTC.
		r := Reading{
			Timestamp: time.Date(2024, 11, 18, 6, 0, 0, 0, time.UTC),
			Glucose:   120, Carbs: 30, Bolus: 4,
			ExerciseIntensity: 5, ExerciseDuration: 20,
		}

		f := encodeReading(r)

		assert.Len(t, f, NumFeatures)
		assert.Equal(t, 120.0, f[featGlucose])
		assert.Equal(t, 30.0, f[featCarbs])
		assert.Equal(t, 4.0, f[featBolus])
		assert.InDelta(t, 1.0, f[featHourSin], 1e-9)
		assert.InDelta(t, 0.0, f[featHourCos], 1e-9)
		// Monday is weekday 0 for the model.
		assert.InDelta(t, 0.0, f[featDaySin], 1e-9)
		assert.InDelta(t, 1.0, f[featDayCos], 1e-9)
		assert.Equal(t, 1.0, f[featTimePeriod])
		assert.Equal(t, 0.0, f[featIsWeekend])
		assert.Equal(t, 5.0, f[featExerciseIntensity])
		assert.Equal(t, 20.0, f[featExerciseDuration])
	})

	t.Run("Should flag weekends and evening period", func(t *testing.T) {
		// Saturday 18:30 UTC.
		r := Reading{Timestamp: time.Date(2024, 11, 23, 18, 30, 0, 0, time.UTC)}

		f := encodeReading(r)

		assert.Equal(t, 1.0, f[featIsWeekend])
		assert.Equal(t, 3.0, f[featTimePeriod])

		hour := 18.5
		assert.InDelta(t, math.Sin(2*math.Pi*hour/24), f[featHourSin], 1e-9)
		assert.InDelta(t, math.Cos(2*math.Pi*hour/24), f[featHourCos], 1e-9)
	})

	t.Run("Should include minutes in the hour encoding", func(t *testing.T) {
		onTheHour := encodeReading(Reading{Timestamp: time.Date(2024, 11, 18, 12, 0, 0, 0, time.UTC)})
		halfPast := encodeReading(Reading{Timestamp: time.Date(2024, 11, 18, 12, 30, 0, 0, time.UTC)})

		assert.NotEqual(t, onTheHour[featHourSin], halfPast[featHourSin])
	})
}

func TestFeatureScaler(t *testing.T) {
	scaler := &FeatureScaler{
		Mean:  []float64{100, 10, 2, 0, 0, 0, 0, 1.5, 0.3, 1, 5},
		Scale: []float64{40, 15, 3, 1, 1, 1, 1, 1, 1, 2, 10},
	}

	t.Run("Should round-trip a single channel", func(t *testing.T) {
		v := 182.0
		norm := scaler.normalize(featGlucose, v)
		assert.InDelta(t, v, scaler.denormalize(featGlucose, norm), 1e-9)
	})

	t.Run("Should standardize a full row in place", func(t *testing.T) {
		row := make([]float64, NumFeatures)
		row[featGlucose] = 180
		row[featCarbs] = 40

		scaler.transform(row)

		assert.InDelta(t, 2.0, row[featGlucose], 1e-9)
		assert.InDelta(t, 2.0, row[featCarbs], 1e-9)
	})
}
