package forecast

import "fmt"

// Alert types and severities, in the wording patients see.
const (
	AlertHypoglycemia  = "HIPOGLUCEMIA"
	AlertLow           = "BAJO"
	AlertHyperglycemia = "HIPERGLUCEMIA"

	SeverityCritical = "CRÍTICO"
	SeverityWarning  = "ADVERTENCIA"
)

// Forecast alert thresholds in mg/dL. The bands are disjoint: exactly 70
// and exactly 180 fall in the no-alert range.
const (
	hypoThreshold        = 70.0
	lowThreshold         = 80.0
	hyperThreshold       = 180.0
	severeHyperThreshold = 250.0
)

// Alert flags one forecast point that crosses a clinical threshold.
type Alert struct {
	OffsetMinutes int     `json:"offset_minutes"`
	Type          string  `json:"type"`
	Severity      string  `json:"severity"`
	Glucose       float64 `json:"glucose"`
	Message       string  `json:"message"`
}

// GenerateAlerts classifies each forecast value (mg/dL) against the alert
// bands. At most one alert fires per point; values in [80,180] produce none.
// The offset of point i is 5*(i+1) minutes into the future.
func GenerateAlerts(predictions []float64) []Alert {
	var alerts []Alert

	for i, p := range predictions {
		minutes := (i + 1) * 5

		switch {
		case p < hypoThreshold:
			alerts = append(alerts, Alert{
				OffsetMinutes: minutes,
				Type:          AlertHypoglycemia,
				Severity:      SeverityCritical,
				Glucose:       round1(p),
				Message:       fmt.Sprintf("¡ALERTA! Glucosa crítica: %.1f mg/dL. Consume carbohidratos rápidos.", p),
			})
		case p < lowThreshold:
			alerts = append(alerts, Alert{
				OffsetMinutes: minutes,
				Type:          AlertLow,
				Severity:      SeverityWarning,
				Glucose:       round1(p),
				Message:       fmt.Sprintf("Glucosa baja: %.1f mg/dL. Considera consumir carbohidratos.", p),
			})
		case p > severeHyperThreshold:
			alerts = append(alerts, Alert{
				OffsetMinutes: minutes,
				Type:          AlertHyperglycemia,
				Severity:      SeverityCritical,
				Glucose:       round1(p),
				Message:       fmt.Sprintf("¡ALERTA! Glucosa muy alta: %.1f mg/dL. Aplicar insulina de corrección.", p),
			})
		case p > hyperThreshold:
			alerts = append(alerts, Alert{
				OffsetMinutes: minutes,
				Type:          AlertHyperglycemia,
				Severity:      SeverityWarning,
				Glucose:       round1(p),
				Message:       fmt.Sprintf("Glucosa alta: %.1f mg/dL. Monitorear y considerar corrección.", p),
			})
		}
	}

	return alerts
}
