package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskScore(t *testing.T) {
	t.Run("Should score a well-controlled day as zero", func(t *testing.T) {
		score := RiskScore(DailyMetrics{TIR: 85, CV: 30, TBR: 1, TBRSevere: 0, TAR: 10})
		assert.Equal(t, 0.0, score)
	})

	t.Run("Should add independent contributions per category", func(t *testing.T) {
		// TIR 60 (+15), CV 38 (+15), severe lows 0.5 (+15).
		score := RiskScore(DailyMetrics{TIR: 60, CV: 38, TBR: 2, TBRSevere: 0.5, TAR: 10})
		assert.Equal(t, 45.0, score)
	})

	t.Run("Should use the higher band when both match", func(t *testing.T) {
		score := RiskScore(DailyMetrics{TIR: 40, CV: 30, TAR: 10})
		assert.Equal(t, 30.0, score)
	})

	t.Run("Should clamp the total at 100", func(t *testing.T) {
		score := RiskScore(DailyMetrics{TIR: 30, CV: 50, TBR: 10, TBRSevere: 5, TAR: 40})
		assert.Equal(t, 100.0, score)
	})
}
