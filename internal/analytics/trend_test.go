package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tirSeries(tirs ...float64) []DailyMetrics {
	days := make([]DailyMetrics, len(tirs))
	for i, tir := range tirs {
		days[i] = DailyMetrics{TIR: tir}
	}
	return days
}

func TestAssessTrend(t *testing.T) {
	t.Run("Should return stable below six records regardless of values", func(t *testing.T) {
		assert.Equal(t, TrendStable, AssessTrend(tirSeries(10, 90, 10, 90, 10)))
		assert.Equal(t, TrendStable, AssessTrend(nil))
	})

	t.Run("Should detect improvement above the five point threshold", func(t *testing.T) {
		trend := AssessTrend(tirSeries(50, 52, 54, 60, 62, 64))
		assert.Equal(t, TrendImproving, trend)
	})

	t.Run("Should detect worsening below the five point threshold", func(t *testing.T) {
		trend := AssessTrend(tirSeries(70, 72, 74, 60, 62, 64))
		assert.Equal(t, TrendWorsening, trend)
	})

	t.Run("Should report stable within the threshold band", func(t *testing.T) {
		trend := AssessTrend(tirSeries(60, 62, 64, 63, 65, 67))
		assert.Equal(t, TrendStable, trend)
	})

	t.Run("Should use disjoint windows for longer series", func(t *testing.T) {
		// Middle records must not affect the verdict.
		trend := AssessTrend(tirSeries(50, 50, 50, 0, 100, 0, 70, 70, 70))
		assert.Equal(t, TrendImproving, trend)
	})
}

func TestRiskScoreTiers(t *testing.T) {
	t.Run("Should score zero for metrics at target", func(t *testing.T) {
		m := DailyMetrics{TIR: 80, CV: 30, TBR: 2, TBRSevere: 0, TAR: 15}
		assert.Equal(t, 0.0, RiskScore(m))
	})

	t.Run("Should add independent category points", func(t *testing.T) {
		// TIR<70 (+15) and CV>36 (+15).
		m := DailyMetrics{TIR: 65, CV: 38, TBR: 2, TAR: 20}
		assert.Equal(t, 30.0, RiskScore(m))
	})

	t.Run("Should clamp the score at 100", func(t *testing.T) {
		// 30+25+30+15+10 = 110 before clamping.
		m := DailyMetrics{TIR: 40, CV: 45, TBRSevere: 2, TBR: 5, TAR: 30}
		assert.Equal(t, 100.0, RiskScore(m))
	})

	t.Run("Should use the milder severe hypo tier", func(t *testing.T) {
		m := DailyMetrics{TIR: 80, CV: 30, TBRSevere: 0.5, TBR: 2, TAR: 10}
		assert.Equal(t, 15.0, RiskScore(m))
	})
}
