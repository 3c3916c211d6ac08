package models

import "time"

// DriverLocation is a timestamped position sample. The table is an
// append-only log; a driver's current location is the newest row.
type DriverLocation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	DriverID  uint      `json:"driverId" gorm:"column:driver_id;not null;index"`
	Latitude  float64   `json:"latitude" gorm:"column:latitude;not null"`
	Longitude float64   `json:"longitude" gorm:"column:longitude;not null"`
	Timestamp time.Time `json:"timestamp" gorm:"column:timestamp;not null"`
}

// TableName specifies the table name
func (DriverLocation) TableName() string {
	return "driver_locations"
}
