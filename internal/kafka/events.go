package kafka

import "time"

// ReadingEvent is the payload consumed from the CGM readings topic.
// Glucose is in mmol/L, matching the sensor uplink format.
type ReadingEvent struct {
	PatientExternalID string    `json:"patient_id"`
	Timestamp         time.Time `json:"timestamp"`
	Glucose           float64   `json:"glucose"`
	Carbs             float64   `json:"carbs,omitempty"`
	Bolus             float64   `json:"bolus,omitempty"`
	Basal             float64   `json:"basal,omitempty"`
	ExerciseIntensity float64   `json:"exercise_intensity,omitempty"`
	ExerciseDuration  float64   `json:"exercise_duration,omitempty"`
	Source            string    `json:"source,omitempty"`
}

// AlertEvent is the payload published to the alerts topic when a
// forecast predicts an excursion. Glucose here is in mg/dL, matching
// the alert thresholds.
type AlertEvent struct {
	PatientExternalID string    `json:"patient_id"`
	Type              string    `json:"type"`
	Severity          string    `json:"severity"`
	Glucose           float64   `json:"glucose"`
	OffsetMinutes     int       `json:"offset_minutes"`
	Message           string    `json:"message"`
	EmittedAt         time.Time `json:"emitted_at"`
}
