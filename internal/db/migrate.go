package db

import (
	"fmt"

	"github.com/crewbase/gangplank/internal/config"
	"github.com/crewbase/gangplank/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.ChecklistTemplate{},
		&models.ChecklistItem{},
		&models.ChecklistAssignment{},
		&models.ChecklistProgressItem{},
		&models.AutoAssignRule{},
		&models.Employee{},
		&models.Notification{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedEmployees upserts Employee rows from configuration.
func SeedEmployees(db *gorm.DB, employees []config.EmployeeConfig) error {
	for _, ec := range employees {
		emp := models.Employee{
			ID:          ec.ID,
			Name:        ec.Name,
			Email:       ec.Email,
			Department:  ec.Department,
			Team:        ec.Team,
			Role:        models.Role(ec.Role),
			ProgramType: ec.ProgramType,
			Stage:       models.Stage(ec.Stage),
		}
		if ec.Supervisor != "" {
			s := ec.Supervisor
			emp.SupervisorID = &s
		}

		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "department", "team", "supervisor_id", "role", "program_type", "stage"}),
		}).Create(&emp)
		if result.Error != nil {
			return fmt.Errorf("db: seed employee %q: %w", ec.ID, result.Error)
		}
	}
	return nil
}
