package assignment

import (
	"fmt"
	"time"

	"github.com/crewbase/gangplank/internal/models"
	"github.com/crewbase/gangplank/internal/notify"
	"gorm.io/gorm"
)

// Overdue returns every assignment whose due date has passed and whose
// computed completion is below 100%. Satisfies notify.OverdueFunc.
func Overdue(db *gorm.DB, now time.Time) ([]notify.OverdueAssignment, error) {
	var as []models.ChecklistAssignment
	err := db.Preload("Template").Preload("Progress").
		Where("due_date IS NOT NULL AND due_date < ?", now).
		Find(&as).Error
	if err != nil {
		return nil, fmt.Errorf("assignment: list overdue: %w", err)
	}

	var out []notify.OverdueAssignment
	for i := range as {
		if _, status := Completion(&as[i], now); status == models.StatusOverdue {
			out = append(out, notify.OverdueAssignment{
				AssignmentID: as[i].ID,
				UserID:       as[i].UserID,
			})
		}
	}
	return out, nil
}
