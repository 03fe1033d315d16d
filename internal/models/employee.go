package models

import "time"

// Employee backs the default user-directory implementation. Other deployments
// replace it with an external directory behind the same interface.
type Employee struct {
	ID           string  `gorm:"primaryKey;size:64"`
	Name         string  `gorm:"not null"`
	Email        string  `gorm:"size:128"`
	Department   string  `gorm:"size:64;index"`
	Team         string  `gorm:"size:64;index"`
	SupervisorID *string `gorm:"size:64"`
	Role         Role    `gorm:"size:16;default:employee"`
	ProgramType  string  `gorm:"size:64"`
	Stage        Stage   `gorm:"size:16"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Supervisor *Employee `gorm:"foreignKey:SupervisorID"`
}
