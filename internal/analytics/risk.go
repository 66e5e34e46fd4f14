package analytics

// RiskScore converts the current day's metrics into a bounded 0-100 score.
// Each category contributes independently and the sum is clamped to 100.
func RiskScore(m DailyMetrics) float64 {
	risk := 0.0

	switch {
	case m.TIR < 50:
		risk += 30
	case m.TIR < 70:
		risk += 15
	}

	switch {
	case m.CV > 40:
		risk += 25
	case m.CV > 36:
		risk += 15
	}

	switch {
	case m.TBRSevere > 1:
		risk += 30
	case m.TBRSevere > 0:
		risk += 15
	}

	if m.TBR > 4 {
		risk += 15
	}
	if m.TAR > 25 {
		risk += 10
	}

	if risk > 100 {
		return 100
	}
	return risk
}
