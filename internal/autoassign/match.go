package autoassign

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/crewbase/gangplank/internal/assignment"
	"github.com/crewbase/gangplank/internal/directory"
	"github.com/crewbase/gangplank/internal/fault"
	"github.com/crewbase/gangplank/internal/models"
	"github.com/crewbase/gangplank/internal/notify"
	"gorm.io/gorm"
)

// Matches reports whether a rule matches an employee profile. Each dimension
// is an allow-list, empty meaning "any"; all dimensions must pass.
func Matches(r Rule, p *directory.Profile) bool {
	return inSet(r.Departments, p.Department) &&
		inSet(r.ProgramTypes, p.ProgramType) &&
		inSet(r.Stages, string(p.Stage))
}

func inSet(set []string, value string) bool {
	if len(set) == 0 {
		return true
	}
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}

// RunResult records one template's outcome for a matcher run.
type RunResult struct {
	TemplateID string
	RuleID     string
	Assignment *models.ChecklistAssignment
	Skipped    bool // an active assignment already existed
}

// Run evaluates every rule of every auto-assign template against the user and
// creates assignments for matches. Re-running for a user who already has an
// active assignment for a template is a no-op for that template, so hiring
// pipelines may call this on every employee create or update.
func Run(db *gorm.DB, em notify.Emitter, dir directory.Directory, userID string) ([]RunResult, error) {
	profile, err := dir.Lookup(userID)
	if err != nil {
		return nil, err
	}

	var templateIDs []string
	err = db.Model(&models.ChecklistTemplate{}).
		Where("auto_assign = ?", true).
		Pluck("id", &templateIDs).Error
	if err != nil {
		return nil, fmt.Errorf("autoassign: load templates: %w", err)
	}
	if len(templateIDs) == 0 {
		return []RunResult{}, nil
	}

	var rows []models.AutoAssignRule
	err = db.Where("template_id IN ?", templateIDs).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("autoassign: load rules: %w", err)
	}
	rules, err := decodeAll(rows)
	if err != nil {
		return nil, err
	}

	var results []RunResult
	matched := map[string]bool{} // first matching rule per template wins
	for _, r := range rules {
		if matched[r.TemplateID] || !Matches(r, profile) {
			continue
		}
		matched[r.TemplateID] = true

		var due *time.Time
		if r.DueInDays != nil {
			d := time.Now().AddDate(0, 0, *r.DueInDays)
			due = &d
		}

		emitter := notify.Emitter(notify.Discard{})
		if r.AutoNotify {
			emitter = em
		}
		a, err := assignment.Assign(db, emitter, assignment.AssignOpts{
			UserID:       userID,
			TemplateID:   r.TemplateID,
			DueDate:      due,
			AssignedBy:   "auto-assign",
			AutoAssigned: true,
		})
		if err != nil {
			if fault.IsKind(err, fault.KindConflict) {
				results = append(results, RunResult{TemplateID: r.TemplateID, RuleID: r.ID, Skipped: true})
				continue
			}
			return results, err
		}
		slog.Info("auto-assigned checklist", "user", userID, "template", r.TemplateID, "rule", r.ID)
		results = append(results, RunResult{TemplateID: r.TemplateID, RuleID: r.ID, Assignment: a})
	}
	return results, nil
}
