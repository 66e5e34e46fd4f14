package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDailyMetrics(t *testing.T) {
	t.Run("Should fail with insufficient readings", func(t *testing.T) {
		for n := 0; n < MinDailyReadings; n++ {
			readings := make([]float64, n)
			for i := range readings {
				readings[i] = 5.5
			}

			_, err := CalculateDailyMetrics(readings)
			assert.ErrorIs(t, err, ErrInsufficientData, "size %d should be rejected", n)
		}
	})

	t.Run("Should never fail with at least 10 readings", func(t *testing.T) {
		readings := []float64{4.0, 5.0, 6.0, 7.0, 8.0, 9.0, 10.0, 11.0, 3.5, 2.9}

		m, err := CalculateDailyMetrics(readings)
		require.NoError(t, err)
		assert.Equal(t, 10, m.NReadings)
	})

	t.Run("Should partition readings so TIR+TBR+TAR is 100", func(t *testing.T) {
		// No reading falls on a shared band boundary.
		readings := []float64{2.5, 3.2, 4.5, 5.0, 6.1, 7.3, 8.8, 10.5, 12.0, 14.5, 9.9, 3.8}

		m, err := CalculateDailyMetrics(readings)
		require.NoError(t, err)

		assert.InDelta(t, 100.0, m.TIR+m.TBR+m.TAR, 0.01)
		assert.LessOrEqual(t, m.TBRSevere, m.TBR)
		assert.LessOrEqual(t, m.TARSevere, m.TAR)
	})

	t.Run("Should count severe bands as subsets", func(t *testing.T) {
		// 2 below 3.0, 3 below 3.9 total, 2 above 13.9, 3 above 10.0 total.
		readings := []float64{2.5, 2.9, 3.5, 5.0, 5.5, 6.0, 7.0, 14.0, 15.0, 11.0}

		m, err := CalculateDailyMetrics(readings)
		require.NoError(t, err)

		assert.Equal(t, 30.0, m.TBR)
		assert.Equal(t, 20.0, m.TBRSevere)
		assert.Equal(t, 30.0, m.TAR)
		assert.Equal(t, 20.0, m.TARSevere)
		assert.Equal(t, 40.0, m.TIR)
	})

	t.Run("Should reproduce the GMI formula", func(t *testing.T) {
		readings := make([]float64, 10)
		for i := range readings {
			readings[i] = 5.55 // 100 mg/dL
		}

		m, err := CalculateDailyMetrics(readings)
		require.NoError(t, err)

		// GMI = 3.31 + 0.02392 * (5.55 * 18.0182)
		assert.InDelta(t, 5.70, m.GMI, 0.01)
	})

	t.Run("Should be monotonically increasing in mean glucose", func(t *testing.T) {
		prev := -1.0
		for _, level := range []float64{4.0, 6.0, 8.0, 10.0, 12.0} {
			readings := make([]float64, 10)
			for i := range readings {
				readings[i] = level
			}

			m, err := CalculateDailyMetrics(readings)
			require.NoError(t, err)
			assert.Greater(t, m.GMI, prev)
			prev = m.GMI
		}
	})

	t.Run("Should guard CV against zero mean", func(t *testing.T) {
		readings := make([]float64, 10)

		m, err := CalculateDailyMetrics(readings)
		require.NoError(t, err)
		assert.Equal(t, 0.0, m.CV)
	})

	t.Run("Should be idempotent for identical input", func(t *testing.T) {
		readings := []float64{4.2, 5.1, 6.7, 7.9, 8.3, 9.0, 10.2, 3.1, 5.5, 6.6, 7.7}

		first, err := CalculateDailyMetrics(readings)
		require.NoError(t, err)
		second, err := CalculateDailyMetrics(readings)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("Should compute spread statistics", func(t *testing.T) {
		readings := []float64{4.0, 4.0, 5.0, 5.0, 6.0, 6.0, 7.0, 7.0, 8.0, 8.0}

		m, err := CalculateDailyMetrics(readings)
		require.NoError(t, err)

		assert.Equal(t, 6.0, m.MeanGlucose)
		assert.Equal(t, 6.0, m.MedianGlucose)
		assert.Equal(t, 4.0, m.MinGlucose)
		assert.Equal(t, 8.0, m.MaxGlucose)
		assert.Equal(t, 4.0, m.GlucoseRange)
	})
}

func TestAggregate(t *testing.T) {
	t.Run("Should average the six classifier features", func(t *testing.T) {
		days := []DailyMetrics{
			{MeanGlucose: 6.0, CV: 30, TIR: 70, TBR: 2, TAR: 28, GMI: 6.5},
			{MeanGlucose: 8.0, CV: 40, TIR: 60, TBR: 4, TAR: 36, GMI: 7.5},
		}

		agg := Aggregate(days)

		assert.Equal(t, 7.0, agg.MeanGlucose)
		assert.Equal(t, 35.0, agg.CV)
		assert.Equal(t, 65.0, agg.TIR)
		assert.Equal(t, 3.0, agg.TBR)
		assert.Equal(t, 32.0, agg.TAR)
		assert.Equal(t, 7.0, agg.GMI)
	})

	t.Run("Should return zero value for empty window", func(t *testing.T) {
		assert.Equal(t, AggregateMetrics{}, Aggregate(nil))
	})
}
