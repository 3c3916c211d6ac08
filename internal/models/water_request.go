package models

import "time"

type Urgency string

const (
	UrgencyNormal    Urgency = "normal"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyEmergency Urgency = "emergency"
)

// ValidUrgency reports whether urgency is a recognised priority tag.
func ValidUrgency(urgency string) bool {
	switch Urgency(urgency) {
	case UrgencyNormal, UrgencyUrgent, UrgencyEmergency:
		return true
	}
	return false
}

// WaterRequest is a resident's ask for a water delivery, tracked through the
// pending -> accepted -> in_transit -> completed lifecycle. Each transition
// stamps its own timestamp; rating and feedback only apply once completed.
type WaterRequest struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	RequestID   string     `json:"requestId" gorm:"column:request_id;unique;not null"`
	UserID      uint       `json:"userId" gorm:"column:user_id;not null"`
	Address     string     `json:"address" gorm:"column:address;not null"`
	WaterAmount int        `json:"waterAmount" gorm:"column:water_amount;not null"` // liters
	Urgency     string     `json:"urgency" gorm:"column:urgency;not null"`
	Notes       string     `json:"notes" gorm:"column:notes"`
	Status      string     `json:"status" gorm:"column:status;not null;default:'pending'"`
	DriverID    *uint      `json:"driverId" gorm:"column:driver_id"`
	CreatedAt   time.Time  `json:"createdAt"`
	AcceptedAt  *time.Time `json:"acceptedAt" gorm:"column:accepted_at"`
	InTransitAt *time.Time `json:"inTransitAt" gorm:"column:in_transit_at"`
	DeliveredAt *time.Time `json:"deliveredAt" gorm:"column:delivered_at"`
	Rating      *int       `json:"rating" gorm:"column:rating"`
	Feedback    *string    `json:"feedback" gorm:"column:feedback"`
	Latitude    *float64   `json:"latitude" gorm:"column:latitude"`
	Longitude   *float64   `json:"longitude" gorm:"column:longitude"`
}

// TableName specifies the table name
func (WaterRequest) TableName() string {
	return "water_requests"
}
