package analytics

import (
	"errors"
	"math"
	"sort"
)

// Clinical glucose thresholds in mmol/L, aligned with the international
// consensus on time-in-range reporting.
const (
	TargetRangeLow  = 3.9
	TargetRangeHigh = 10.0
	SevereHypo      = 3.0
	SevereHyper     = 13.9
)

// MinDailyReadings is the minimum number of samples required before daily
// metrics are considered clinically meaningful.
const MinDailyReadings = 10

// mmolToMgdl converts mmol/L glucose to mg/dL.
const mmolToMgdl = 18.0182

// ErrInsufficientData is returned when too few readings are available to
// compute metrics for a day.
var ErrInsufficientData = errors.New("insufficient glucose readings")

// DailyMetrics holds the derived clinical indices for one calendar day of
// glucose readings. All percentage fields are rounded to two decimals and a
// recomputation from identical input yields identical values.
type DailyMetrics struct {
	MeanGlucose   float64 `json:"mean_glucose"`
	MedianGlucose float64 `json:"median_glucose"`
	StdGlucose    float64 `json:"std_glucose"`
	MinGlucose    float64 `json:"min_glucose"`
	MaxGlucose    float64 `json:"max_glucose"`
	GlucoseRange  float64 `json:"glucose_range"`
	CV            float64 `json:"cv"`
	TIR           float64 `json:"tir"`
	TBR           float64 `json:"tbr"`
	TBRSevere     float64 `json:"tbr_severe"`
	TAR           float64 `json:"tar"`
	TARSevere     float64 `json:"tar_severe"`
	GMI           float64 `json:"gmi"`
	NReadings     int     `json:"n_readings"`
}

// CalculateDailyMetrics derives the standard clinical indices from a day's
// glucose readings (mmol/L). It returns ErrInsufficientData when fewer than
// MinDailyReadings samples are supplied.
func CalculateDailyMetrics(readings []float64) (DailyMetrics, error) {
	if len(readings) < MinDailyReadings {
		return DailyMetrics{}, ErrInsufficientData
	}

	n := float64(len(readings))

	var sum, minV, maxV float64
	minV = readings[0]
	maxV = readings[0]
	for _, r := range readings {
		sum += r
		if r < minV {
			minV = r
		}
		if r > maxV {
			maxV = r
		}
	}
	mean := sum / n

	var sqDiff float64
	for _, r := range readings {
		d := r - mean
		sqDiff += d * d
	}
	// Population standard deviation, matching how CV is defined clinically.
	std := math.Sqrt(sqDiff / n)

	cv := 0.0
	if mean > 0 {
		cv = std / mean * 100
	}

	var inRange, below, belowSevere, above, aboveSevere float64
	for _, r := range readings {
		switch {
		case r < TargetRangeLow:
			below++
			if r < SevereHypo {
				belowSevere++
			}
		case r > TargetRangeHigh:
			above++
			if r > SevereHyper {
				aboveSevere++
			}
		default:
			inRange++
		}
	}

	// NGSP-aligned Glucose Management Indicator from mean glucose in mg/dL.
	gmi := 3.31 + 0.02392*(mean*mmolToMgdl)

	return DailyMetrics{
		MeanGlucose:   round2(mean),
		MedianGlucose: round2(median(readings)),
		StdGlucose:    round2(std),
		MinGlucose:    round2(minV),
		MaxGlucose:    round2(maxV),
		GlucoseRange:  round2(maxV - minV),
		CV:            round2(cv),
		TIR:           round2(inRange / n * 100),
		TBR:           round2(below / n * 100),
		TBRSevere:     round2(belowSevere / n * 100),
		TAR:           round2(above / n * 100),
		TARSevere:     round2(aboveSevere / n * 100),
		GMI:           round2(gmi),
		NReadings:     len(readings),
	}, nil
}

// AggregateMetrics is the six-feature window average consumed by the
// profile classifier.
type AggregateMetrics struct {
	MeanGlucose float64 `json:"avg_mean_glucose"`
	CV          float64 `json:"avg_cv"`
	TIR         float64 `json:"avg_tir"`
	TBR         float64 `json:"avg_tbr"`
	TAR         float64 `json:"avg_tar"`
	GMI         float64 `json:"avg_gmi"`
}

// Aggregate averages a window of daily metrics into the classifier's
// six-feature input. The zero value is returned for an empty window.
func Aggregate(days []DailyMetrics) AggregateMetrics {
	if len(days) == 0 {
		return AggregateMetrics{}
	}

	var agg AggregateMetrics
	for _, d := range days {
		agg.MeanGlucose += d.MeanGlucose
		agg.CV += d.CV
		agg.TIR += d.TIR
		agg.TBR += d.TBR
		agg.TAR += d.TAR
		agg.GMI += d.GMI
	}

	n := float64(len(days))
	agg.MeanGlucose /= n
	agg.CV /= n
	agg.TIR /= n
	agg.TBR /= n
	agg.TAR /= n
	agg.GMI /= n
	return agg
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
