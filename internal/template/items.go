package template

import (
	"errors"
	"fmt"
	"sort"

	"github.com/crewbase/gangplank/internal/fault"
	"github.com/crewbase/gangplank/internal/models"
	"gorm.io/gorm"
)

// ItemOpts holds parameters for adding an item to a template.
type ItemOpts struct {
	Title        string
	Description  string
	Required     bool
	OrderIndex   int
	Phase        models.Stage
	ControlledBy models.ControlledBy
}

// AddItem appends an item to a template at an explicit order index. The index
// must be unused within the template.
func AddItem(db *gorm.DB, templateID string, opts ItemOpts) (*models.ChecklistItem, error) {
	if opts.Title == "" {
		return nil, fault.Invalid("template: item title is required")
	}
	if opts.Phase != "" && !opts.Phase.Valid() {
		return nil, fault.Invalid("template: unknown phase %q", opts.Phase)
	}
	if opts.ControlledBy == "" {
		opts.ControlledBy = models.ControlEmployee
	}
	if !opts.ControlledBy.Valid() {
		return nil, fault.Invalid("template: unknown controlled_by %q", opts.ControlledBy)
	}

	var item *models.ChecklistItem
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ChecklistTemplate{}).Where("id = ?", templateID).Count(&count).Error; err != nil {
			return fmt.Errorf("template: check %s: %w", templateID, err)
		}
		if count == 0 {
			return fault.NotFound("template: not found: %s", templateID)
		}

		var clash int64
		if err := tx.Model(&models.ChecklistItem{}).
			Where("template_id = ? AND order_index = ?", templateID, opts.OrderIndex).
			Count(&clash).Error; err != nil {
			return fmt.Errorf("template: check order index: %w", err)
		}
		if clash > 0 {
			return fault.Conflict("template: order index %d already used in %s", opts.OrderIndex, templateID)
		}

		id, err := newID("itm")
		if err != nil {
			return err
		}
		item = &models.ChecklistItem{
			ID:           id,
			TemplateID:   templateID,
			Title:        opts.Title,
			Description:  opts.Description,
			Required:     opts.Required,
			OrderIndex:   opts.OrderIndex,
			Phase:        opts.Phase,
			ControlledBy: opts.ControlledBy,
		}
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("template: add item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ItemUpdateOpts holds item edits. Nil fields are left as-is.
type ItemUpdateOpts struct {
	Title        *string
	Description  *string
	Required     *bool
	OrderIndex   *int
	Phase        *models.Stage
	ControlledBy *models.ControlledBy
}

// UpdateItem edits an item. Moving it to an occupied order index is a conflict.
func UpdateItem(db *gorm.DB, itemID string, opts ItemUpdateOpts) (*models.ChecklistItem, error) {
	var updated models.ChecklistItem
	err := db.Transaction(func(tx *gorm.DB) error {
		var item models.ChecklistItem
		if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.NotFound("template: item not found: %s", itemID)
			}
			return fmt.Errorf("template: get item %s: %w", itemID, err)
		}

		updates := map[string]interface{}{}
		if opts.Title != nil {
			if *opts.Title == "" {
				return fault.Invalid("template: item title cannot be empty")
			}
			updates["title"] = *opts.Title
		}
		if opts.Description != nil {
			updates["description"] = *opts.Description
		}
		if opts.Required != nil {
			updates["required"] = *opts.Required
		}
		if opts.Phase != nil {
			if !opts.Phase.Valid() {
				return fault.Invalid("template: unknown phase %q", *opts.Phase)
			}
			updates["phase"] = *opts.Phase
		}
		if opts.ControlledBy != nil {
			if !opts.ControlledBy.Valid() {
				return fault.Invalid("template: unknown controlled_by %q", *opts.ControlledBy)
			}
			updates["controlled_by"] = *opts.ControlledBy
		}
		if opts.OrderIndex != nil && *opts.OrderIndex != item.OrderIndex {
			var clash int64
			if err := tx.Model(&models.ChecklistItem{}).
				Where("template_id = ? AND order_index = ?", item.TemplateID, *opts.OrderIndex).
				Count(&clash).Error; err != nil {
				return fmt.Errorf("template: check order index: %w", err)
			}
			if clash > 0 {
				return fault.Conflict("template: order index %d already used in %s", *opts.OrderIndex, item.TemplateID)
			}
			updates["order_index"] = *opts.OrderIndex
		}

		if len(updates) > 0 {
			if err := tx.Model(&models.ChecklistItem{}).Where("id = ?", itemID).Updates(updates).Error; err != nil {
				return fmt.Errorf("template: update item %s: %w", itemID, err)
			}
		}
		return tx.Where("id = ?", itemID).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteItem removes an item and reconciles existing assignments by deleting
// their progress rows for it, so completion percentages stay consistent with
// the live item set.
func DeleteItem(db *gorm.DB, itemID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var item models.ChecklistItem
		if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.NotFound("template: item not found: %s", itemID)
			}
			return fmt.Errorf("template: get item %s: %w", itemID, err)
		}

		if err := tx.Where("item_id = ?", itemID).Delete(&models.ChecklistProgressItem{}).Error; err != nil {
			return fmt.Errorf("template: delete progress for item %s: %w", itemID, err)
		}
		if err := tx.Delete(&item).Error; err != nil {
			return fmt.Errorf("template: delete item %s: %w", itemID, err)
		}
		return nil
	})
}

// ListItems returns a template's items ordered by index, then phase for items
// sharing an index from before the unique constraint existed.
func ListItems(db *gorm.DB, templateID string) ([]models.ChecklistItem, error) {
	var items []models.ChecklistItem
	if err := db.Where("template_id = ?", templateID).Order("order_index ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("template: list items for %s: %w", templateID, err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].OrderIndex != items[j].OrderIndex {
			return items[i].OrderIndex < items[j].OrderIndex
		}
		return items[i].Phase.Rank() < items[j].Phase.Rank()
	})
	return items, nil
}
