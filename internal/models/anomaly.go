package models

import "time"

// Anomaly type constants
const (
	AnomalyVolumeMismatch   = "volume_mismatch"
	AnomalyDelay            = "delay"
	AnomalyLocationMismatch = "location_mismatch"
)

// Anomaly is a flagged irregularity on a water request, produced by an
// external detection process and cleared one-way by an admin.
type Anomaly struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RequestID   uint      `json:"requestId" gorm:"column:request_id;not null;index"`
	Type        string    `json:"type" gorm:"column:type;not null"`
	Description string    `json:"description" gorm:"column:description;not null"`
	Resolved    bool      `json:"resolved" gorm:"column:resolved;not null;default:false"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName specifies the table name
func (Anomaly) TableName() string {
	return "anomalies"
}
