package models

import "time"

// ChecklistTemplate is a reusable, ordered set of checklist items.
type ChecklistTemplate struct {
	ID                   string `gorm:"primaryKey;size:32"`
	Title                string `gorm:"not null"`
	Description          string `gorm:"type:text"`
	ProgramType          string `gorm:"size:64;index"`
	Stage                Stage  `gorm:"size:16;index"`
	AutoAssign           bool   `gorm:"default:false"`
	RequiresVerification bool   `gorm:"default:false"`
	CreatedBy            string `gorm:"size:64"`
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Items []ChecklistItem  `gorm:"foreignKey:TemplateID"`
	Rules []AutoAssignRule `gorm:"foreignKey:TemplateID"`
}

// ChecklistItem belongs to exactly one template. OrderIndex is unique per
// template and defines display order; Phase groups items on the timeline.
type ChecklistItem struct {
	ID           string       `gorm:"primaryKey;size:32"`
	TemplateID   string       `gorm:"size:32;not null;uniqueIndex:idx_item_order,priority:1"`
	Title        string       `gorm:"not null"`
	Description  string       `gorm:"type:text"`
	Required     bool         `gorm:"default:true"`
	OrderIndex   int          `gorm:"not null;uniqueIndex:idx_item_order,priority:2"`
	Phase        Stage        `gorm:"size:16"`
	ControlledBy ControlledBy `gorm:"size:16;default:employee"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Template ChecklistTemplate `gorm:"foreignKey:TemplateID"`
}
