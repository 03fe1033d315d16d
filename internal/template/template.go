// Package template provides checklist template lifecycle operations.
package template

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/crewbase/gangplank/internal/fault"
	"github.com/crewbase/gangplank/internal/models"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for creating a new template.
type CreateOpts struct {
	Title                string
	Description          string
	ProgramType          string
	Stage                models.Stage
	AutoAssign           bool
	RequiresVerification bool
	CreatedBy            string
}

// ListFilters holds optional filters for listing templates.
type ListFilters struct {
	ProgramType string
	Stage       models.Stage
	AutoAssign  *bool
}

// newID creates a unique template ID in tpl-xxxxx format (5-char hex).
func newID(prefix string) (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("template: generate ID: %w", err)
	}
	return prefix + "-" + hex.EncodeToString(b)[:5], nil
}

// Create creates a new template with an auto-generated ID.
func Create(db *gorm.DB, opts CreateOpts) (*models.ChecklistTemplate, error) {
	if opts.Title == "" {
		return nil, fault.Invalid("template: title is required")
	}
	if !opts.Stage.Valid() {
		return nil, fault.Invalid("template: unknown stage %q", opts.Stage)
	}

	id, err := newID("tpl")
	if err != nil {
		return nil, err
	}

	tpl := models.ChecklistTemplate{
		ID:                   id,
		Title:                opts.Title,
		Description:          opts.Description,
		ProgramType:          opts.ProgramType,
		Stage:                opts.Stage,
		AutoAssign:           opts.AutoAssign,
		RequiresVerification: opts.RequiresVerification,
		CreatedBy:            opts.CreatedBy,
	}
	if err := db.Create(&tpl).Error; err != nil {
		return nil, fmt.Errorf("template: create: %w", err)
	}
	return &tpl, nil
}

// Get retrieves a template by ID with its items in display order.
func Get(db *gorm.DB, id string) (*models.ChecklistTemplate, error) {
	var tpl models.ChecklistTemplate
	err := db.Preload("Items", func(q *gorm.DB) *gorm.DB {
		return q.Order("order_index ASC")
	}).Where("id = ?", id).First(&tpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.NotFound("template: not found: %s", id)
		}
		return nil, fmt.Errorf("template: get %s: %w", id, err)
	}
	return &tpl, nil
}

// List returns templates matching the given filters, newest first.
func List(db *gorm.DB, filters ListFilters) ([]models.ChecklistTemplate, error) {
	q := db.Model(&models.ChecklistTemplate{})
	if filters.ProgramType != "" {
		q = q.Where("program_type = ?", filters.ProgramType)
	}
	if filters.Stage != "" {
		q = q.Where("stage = ?", filters.Stage)
	}
	if filters.AutoAssign != nil {
		q = q.Where("auto_assign = ?", *filters.AutoAssign)
	}

	var tpls []models.ChecklistTemplate
	if err := q.Order("created_at DESC").Find(&tpls).Error; err != nil {
		return nil, fmt.Errorf("template: list: %w", err)
	}
	return tpls, nil
}

// UpdateOpts holds metadata edits for a template. Nil fields are left as-is.
// Changing RequiresVerification never retroactively touches verification
// state already recorded on progress items.
type UpdateOpts struct {
	Title                *string
	Description          *string
	ProgramType          *string
	Stage                *models.Stage
	AutoAssign           *bool
	RequiresVerification *bool
}

// Update edits template metadata.
func Update(db *gorm.DB, id string, opts UpdateOpts) (*models.ChecklistTemplate, error) {
	updates := map[string]interface{}{}
	if opts.Title != nil {
		if *opts.Title == "" {
			return nil, fault.Invalid("template: title cannot be empty")
		}
		updates["title"] = *opts.Title
	}
	if opts.Description != nil {
		updates["description"] = *opts.Description
	}
	if opts.ProgramType != nil {
		updates["program_type"] = *opts.ProgramType
	}
	if opts.Stage != nil {
		if !opts.Stage.Valid() {
			return nil, fault.Invalid("template: unknown stage %q", *opts.Stage)
		}
		updates["stage"] = *opts.Stage
	}
	if opts.AutoAssign != nil {
		updates["auto_assign"] = *opts.AutoAssign
	}
	if opts.RequiresVerification != nil {
		updates["requires_verification"] = *opts.RequiresVerification
	}

	var count int64
	if err := db.Model(&models.ChecklistTemplate{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("template: check %s: %w", id, err)
	}
	if count == 0 {
		return nil, fault.NotFound("template: not found: %s", id)
	}

	if len(updates) > 0 {
		if err := db.Model(&models.ChecklistTemplate{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("template: update %s: %w", id, err)
		}
	}
	return Get(db, id)
}

// Delete removes a template and its items. A template with live assignments
// cannot be deleted; revoke the assignments first.
func Delete(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var tpl models.ChecklistTemplate
		if err := tx.Where("id = ?", id).First(&tpl).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.NotFound("template: not found: %s", id)
			}
			return fmt.Errorf("template: get %s for delete: %w", id, err)
		}

		var live int64
		if err := tx.Model(&models.ChecklistAssignment{}).Where("template_id = ?", id).Count(&live).Error; err != nil {
			return fmt.Errorf("template: count assignments for %s: %w", id, err)
		}
		if live > 0 {
			return fault.Conflict("template: %s has %d live assignment(s); revoke them before deleting", id, live)
		}

		if err := tx.Where("template_id = ?", id).Delete(&models.AutoAssignRule{}).Error; err != nil {
			return fmt.Errorf("template: delete rules for %s: %w", id, err)
		}
		if err := tx.Where("template_id = ?", id).Delete(&models.ChecklistItem{}).Error; err != nil {
			return fmt.Errorf("template: delete items for %s: %w", id, err)
		}
		if err := tx.Delete(&tpl).Error; err != nil {
			return fmt.Errorf("template: delete %s: %w", id, err)
		}
		return nil
	})
}
