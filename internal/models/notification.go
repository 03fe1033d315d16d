package models

import "time"

// Notification is a persisted in-app alert produced by workflow transitions.
type Notification struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	TargetUserID string `gorm:"size:64;index;not null"`
	Kind         string `gorm:"size:32;index"`
	Payload      string `gorm:"type:json"`
	Read         bool   `gorm:"column:is_read;default:false"`
	CreatedAt    time.Time
}
