// Package queue ingests anomaly events published by the external detection
// process and persists them through the storage layer.
package queue

// AnomalyDetectedEvent is the payload the detector publishes when it flags
// an irregularity on a water request.
type AnomalyDetectedEvent struct {
	RequestID   uint   `json:"requestId"`
	Type        string `json:"type"`
	Description string `json:"description"`
	DetectedAt  string `json:"detectedAt"`
}
