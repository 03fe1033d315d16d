// Package autoassign evaluates per-template rules against employee records
// and turns matches into assignment requests.
package autoassign

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/crewbase/gangplank/internal/fault"
	"github.com/crewbase/gangplank/internal/models"
	"gorm.io/gorm"
)

// Rule is the decoded form of an AutoAssignRule. Empty constraint sets are
// wildcards; non-empty sets are allow-lists, combined conjunctively.
type Rule struct {
	ID           string
	TemplateID   string
	Departments  []string
	ProgramTypes []string
	Stages       []string
	DueInDays    *int
	AutoNotify   bool
}

// RuleOpts holds parameters for creating a rule.
type RuleOpts struct {
	TemplateID   string
	Departments  []string
	ProgramTypes []string
	Stages       []string
	DueInDays    *int
	AutoNotify   bool
}

// newID creates a unique rule ID in rule-xxxxx format (5-char hex).
func newID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("autoassign: generate ID: %w", err)
	}
	return "rule-" + hex.EncodeToString(b)[:5], nil
}

// CreateRule attaches a rule to a template.
func CreateRule(db *gorm.DB, opts RuleOpts) (*Rule, error) {
	if opts.TemplateID == "" {
		return nil, fault.Invalid("autoassign: template is required")
	}
	if opts.DueInDays != nil && *opts.DueInDays < 0 {
		return nil, fault.Invalid("autoassign: due_in_days must not be negative")
	}
	for _, s := range opts.Stages {
		if !models.Stage(s).Valid() {
			return nil, fault.Invalid("autoassign: unknown stage %q", s)
		}
	}

	var count int64
	if err := db.Model(&models.ChecklistTemplate{}).Where("id = ?", opts.TemplateID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("autoassign: check template %s: %w", opts.TemplateID, err)
	}
	if count == 0 {
		return nil, fault.NotFound("autoassign: template not found: %s", opts.TemplateID)
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}
	row := models.AutoAssignRule{
		ID:           id,
		TemplateID:   opts.TemplateID,
		Departments:  marshalSet(opts.Departments),
		ProgramTypes: marshalSet(opts.ProgramTypes),
		Stages:       marshalSet(opts.Stages),
		DueInDays:    opts.DueInDays,
		AutoNotify:   opts.AutoNotify,
	}
	if err := db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("autoassign: create rule: %w", err)
	}
	return decode(row)
}

// ListRules returns the rules for a template.
func ListRules(db *gorm.DB, templateID string) ([]Rule, error) {
	var rows []models.AutoAssignRule
	if err := db.Where("template_id = ?", templateID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("autoassign: list rules for %s: %w", templateID, err)
	}
	return decodeAll(rows)
}

// DeleteRule removes a rule.
func DeleteRule(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.AutoAssignRule{})
	if result.Error != nil {
		return fmt.Errorf("autoassign: delete rule %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fault.NotFound("autoassign: rule not found: %s", id)
	}
	return nil
}

func marshalSet(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(values)
	return string(data)
}

func unmarshalSet(data string) ([]string, error) {
	if data == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func decode(row models.AutoAssignRule) (*Rule, error) {
	r := Rule{
		ID:         row.ID,
		TemplateID: row.TemplateID,
		DueInDays:  row.DueInDays,
		AutoNotify: row.AutoNotify,
	}
	var err error
	if r.Departments, err = unmarshalSet(row.Departments); err != nil {
		return nil, fmt.Errorf("autoassign: rule %s departments: %w", row.ID, err)
	}
	if r.ProgramTypes, err = unmarshalSet(row.ProgramTypes); err != nil {
		return nil, fmt.Errorf("autoassign: rule %s program types: %w", row.ID, err)
	}
	if r.Stages, err = unmarshalSet(row.Stages); err != nil {
		return nil, fmt.Errorf("autoassign: rule %s stages: %w", row.ID, err)
	}
	return &r, nil
}

func decodeAll(rows []models.AutoAssignRule) ([]Rule, error) {
	rules := make([]Rule, 0, len(rows))
	for _, row := range rows {
		r, err := decode(row)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *r)
	}
	return rules, nil
}
