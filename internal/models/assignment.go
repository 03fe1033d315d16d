package models

import "time"

// ChecklistAssignment binds one template to one user. Status and completion
// percentage are derived from progress items on every read, never stored.
type ChecklistAssignment struct {
	ID             string     `gorm:"primaryKey;size:32"`
	TemplateID     string     `gorm:"size:32;index;not null"`
	UserID         string     `gorm:"size:64;index;not null"`
	DueDate        *time.Time
	IsAutoAssigned bool   `gorm:"default:false"`
	AssignedBy     string `gorm:"size:64"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Template ChecklistTemplate       `gorm:"foreignKey:TemplateID"`
	Progress []ChecklistProgressItem `gorm:"foreignKey:AssignmentID"`
}

// ChecklistProgressItem is one row per (assignment, template item) pair,
// created eagerly when the assignment is created. Completion and verification
// are mutated independently by the employee and the verifying role.
type ChecklistProgressItem struct {
	ID                 uint   `gorm:"primaryKey;autoIncrement"`
	AssignmentID       string `gorm:"size:32;not null;uniqueIndex:idx_progress_pair,priority:1"`
	ItemID             string `gorm:"size:32;not null;uniqueIndex:idx_progress_pair,priority:2"`
	IsCompleted        bool   `gorm:"default:false"`
	CompletedAt        *time.Time
	Notes              string             `gorm:"type:text"`
	VerificationStatus VerificationStatus `gorm:"size:16;default:pending"`
	VerifiedBy         string             `gorm:"size:64"`
	VerifiedAt         *time.Time
	VerificationNotes  string `gorm:"type:text"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Assignment ChecklistAssignment `gorm:"foreignKey:AssignmentID"`
	Item       ChecklistItem       `gorm:"foreignKey:ItemID"`
}
