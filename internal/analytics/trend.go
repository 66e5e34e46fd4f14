package analytics

// Trend verdicts comparing early vs recent control quality.
const (
	TrendImproving = "improving"
	TrendWorsening = "worsening"
	TrendStable    = "stable"
)

// trendWindow is the number of daily records averaged on each side of the
// comparison, and trendThreshold the TIR change (percentage points) that
// counts as a real shift.
const (
	trendWindow    = 3
	trendThreshold = 5.0
)

// AssessTrend compares the mean TIR of the first three daily records against
// the last three. Fewer than six records is not enough signal and yields
// "stable" rather than an error.
func AssessTrend(daily []DailyMetrics) string {
	if len(daily) < 2*trendWindow {
		return TrendStable
	}

	var early, recent float64
	for i := 0; i < trendWindow; i++ {
		early += daily[i].TIR
		recent += daily[len(daily)-trendWindow+i].TIR
	}
	early /= trendWindow
	recent /= trendWindow

	switch {
	case recent > early+trendThreshold:
		return TrendImproving
	case recent < early-trendThreshold:
		return TrendWorsening
	default:
		return TrendStable
	}
}
