// Package assignment binds checklist templates to users and derives
// completion state from their progress records.
package assignment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/crewbase/gangplank/internal/directory"
	"github.com/crewbase/gangplank/internal/fault"
	"github.com/crewbase/gangplank/internal/models"
	"github.com/crewbase/gangplank/internal/notify"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignOpts holds parameters for creating an assignment.
type AssignOpts struct {
	UserID       string
	TemplateID   string
	DueDate      *time.Time
	AssignedBy   string
	AutoAssigned bool
}

// newID creates a unique assignment ID in asg-xxxxx format (5-char hex).
func newID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("assignment: generate ID: %w", err)
	}
	return "asg-" + hex.EncodeToString(b)[:5], nil
}

// lockForUpdate adds a row lock on dialects that support it. SQLite (used in
// tests) serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// Assign creates an assignment and eagerly materializes one progress row per
// current template item, all in one transaction. An active assignment for the
// same (user, template) pair is a conflict, never an implicit overwrite.
// Creation is announced to the assignee through em.
func Assign(db *gorm.DB, em notify.Emitter, opts AssignOpts) (*models.ChecklistAssignment, error) {
	if opts.UserID == "" {
		return nil, fault.Invalid("assignment: user is required")
	}
	if opts.TemplateID == "" {
		return nil, fault.Invalid("assignment: template is required")
	}

	var created models.ChecklistAssignment
	err := db.Transaction(func(tx *gorm.DB) error {
		// The template row is the serialization point for concurrent assigns
		// of the same pair: lock it before the existence check.
		var tpl models.ChecklistTemplate
		if err := lockForUpdate(tx).Where("id = ?", opts.TemplateID).First(&tpl).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.NotFound("assignment: template not found: %s", opts.TemplateID)
			}
			return fmt.Errorf("assignment: get template %s: %w", opts.TemplateID, err)
		}

		active, err := hasActive(tx, opts.UserID, opts.TemplateID)
		if err != nil {
			return err
		}
		if active {
			return fault.Conflict("assignment: %s already has an active assignment for %s", opts.UserID, opts.TemplateID)
		}

		var items []models.ChecklistItem
		if err := tx.Where("template_id = ?", opts.TemplateID).Order("order_index ASC").Find(&items).Error; err != nil {
			return fmt.Errorf("assignment: load items for %s: %w", opts.TemplateID, err)
		}

		id, err := newID()
		if err != nil {
			return err
		}
		created = models.ChecklistAssignment{
			ID:             id,
			TemplateID:     opts.TemplateID,
			UserID:         opts.UserID,
			DueDate:        opts.DueDate,
			IsAutoAssigned: opts.AutoAssigned,
			AssignedBy:     opts.AssignedBy,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("assignment: create: %w", err)
		}

		for _, item := range items {
			p := models.ChecklistProgressItem{
				AssignmentID:       id,
				ItemID:             item.ID,
				VerificationStatus: models.VerificationPending,
			}
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("assignment: materialize progress for %s: %w", item.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := notify.Event{
		TargetUserID: created.UserID,
		Kind:         notify.KindAssignmentCreated,
		AssignmentID: created.ID,
		ActorID:      created.AssignedBy,
	}
	if err := em.Emit(context.Background(), ev); err != nil {
		slog.Warn("assignment created but notification failed", "assignment", created.ID, "error", err)
	}
	return &created, nil
}

// hasActive reports whether the pair has an assignment that is not yet
// complete. Completion is derived, so each candidate is aggregated in place.
func hasActive(tx *gorm.DB, userID, templateID string) (bool, error) {
	var existing []models.ChecklistAssignment
	err := tx.Preload("Template").Preload("Progress").
		Where("user_id = ? AND template_id = ?", userID, templateID).
		Find(&existing).Error
	if err != nil {
		return false, fmt.Errorf("assignment: check active for (%s, %s): %w", userID, templateID, err)
	}
	for i := range existing {
		if _, status := Completion(&existing[i], time.Now()); status != models.StatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

// Result is the outcome of one user's slot in a bulk assignment.
type Result struct {
	UserID     string
	Assignment *models.ChecklistAssignment
	Err        error
}

// BulkAssign applies Assign per user, each in its own transaction. One user's
// failure never blocks the others; the caller receives one result per user.
func BulkAssign(db *gorm.DB, em notify.Emitter, templateID string, userIDs []string, dueDate *time.Time, assignedBy string) []Result {
	results := make([]Result, 0, len(userIDs))
	for _, uid := range userIDs {
		a, err := Assign(db, em, AssignOpts{
			UserID:     uid,
			TemplateID: templateID,
			DueDate:    dueDate,
			AssignedBy: assignedBy,
		})
		results = append(results, Result{UserID: uid, Assignment: a, Err: err})
	}
	return results
}

// Get retrieves an assignment with items, progress, and computed completion.
func Get(db *gorm.DB, id string) (*View, error) {
	var a models.ChecklistAssignment
	err := db.Preload("Template").
		Preload("Progress", func(q *gorm.DB) *gorm.DB { return q.Order("id ASC") }).
		Preload("Progress.Item").
		Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.NotFound("assignment: not found: %s", id)
		}
		return nil, fmt.Errorf("assignment: get %s: %w", id, err)
	}
	v := view(a, time.Now())
	return &v, nil
}

// ListForUser returns all of a user's assignments with computed completion.
func ListForUser(db *gorm.DB, userID string) ([]View, error) {
	return list(db, "user_id IN ?", []string{userID})
}

// ListForDepartment returns assignments for every user the directory places
// in the department.
func ListForDepartment(db *gorm.DB, dir directory.Directory, department string) ([]View, error) {
	profiles, err := dir.ListByDepartment(department)
	if err != nil {
		return nil, err
	}
	return list(db, "user_id IN ?", profileIDs(profiles))
}

// ListForTeam returns assignments for every user the directory places in the
// team.
func ListForTeam(db *gorm.DB, dir directory.Directory, team string) ([]View, error) {
	profiles, err := dir.ListByTeam(team)
	if err != nil {
		return nil, err
	}
	return list(db, "user_id IN ?", profileIDs(profiles))
}

func profileIDs(profiles []directory.Profile) []string {
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	return ids
}

func list(db *gorm.DB, query string, ids []string) ([]View, error) {
	if len(ids) == 0 {
		return []View{}, nil
	}
	var as []models.ChecklistAssignment
	err := db.Preload("Template").Preload("Progress").
		Where(query, ids).Order("created_at DESC").Find(&as).Error
	if err != nil {
		return nil, fmt.Errorf("assignment: list: %w", err)
	}

	now := time.Now()
	views := make([]View, 0, len(as))
	for _, a := range as {
		views = append(views, view(a, now))
	}
	return views, nil
}

// Delete revokes an assignment and removes its progress rows.
func Delete(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var a models.ChecklistAssignment
		if err := tx.Where("id = ?", id).First(&a).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.NotFound("assignment: not found: %s", id)
			}
			return fmt.Errorf("assignment: get %s for delete: %w", id, err)
		}
		if err := tx.Where("assignment_id = ?", id).Delete(&models.ChecklistProgressItem{}).Error; err != nil {
			return fmt.Errorf("assignment: delete progress for %s: %w", id, err)
		}
		if err := tx.Delete(&a).Error; err != nil {
			return fmt.Errorf("assignment: delete %s: %w", id, err)
		}
		return nil
	})
}
