package models

import "time"

// AutoAssignRule is a department/program/stage filter attached to a template.
// The constraint sets are stored as JSON string arrays; an empty set is a
// wildcard for that dimension.
type AutoAssignRule struct {
	ID           string `gorm:"primaryKey;size:32"`
	TemplateID   string `gorm:"size:32;index;not null"`
	Departments  string `gorm:"type:json"`
	ProgramTypes string `gorm:"type:json"`
	Stages       string `gorm:"type:json"`
	DueInDays    *int
	AutoNotify   bool `gorm:"default:false"`
	CreatedAt    time.Time

	Template ChecklistTemplate `gorm:"foreignKey:TemplateID"`
}
