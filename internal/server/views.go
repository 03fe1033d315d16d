package server

import (
	"sort"
	"time"

	"github.com/crewbase/gangplank/internal/assignment"
	"github.com/crewbase/gangplank/internal/models"
	"github.com/crewbase/gangplank/internal/progress"
)

// assignmentSummary is the list-row representation of an assignment.
type assignmentSummary struct {
	ID             string                  `json:"id"`
	TemplateID     string                  `json:"template_id"`
	TemplateTitle  string                  `json:"template_title"`
	UserID         string                  `json:"user_id"`
	DueDate        *time.Time              `json:"due_date,omitempty"`
	IsAutoAssigned bool                    `json:"is_auto_assigned"`
	AssignedBy     string                  `json:"assigned_by"`
	Percentage     int                     `json:"percentage"`
	Status         models.AssignmentStatus `json:"status"`
	CreatedAt      time.Time               `json:"created_at"`
}

// assignmentDetail is the full representation: summary plus per-item state.
type assignmentDetail struct {
	assignmentSummary
	RequiresVerification bool           `json:"requires_verification"`
	Items                []progressView `json:"items"`
}

// progressView is one progress row joined with its template item and the
// derived effective state.
type progressView struct {
	ID                 uint                      `json:"id"`
	ItemID             string                    `json:"item_id"`
	Title              string                    `json:"title"`
	OrderIndex         int                       `json:"order_index"`
	Phase              models.Stage              `json:"phase,omitempty"`
	ControlledBy       models.ControlledBy       `json:"controlled_by"`
	Required           bool                      `json:"required"`
	IsCompleted        bool                      `json:"is_completed"`
	CompletedAt        *time.Time                `json:"completed_at,omitempty"`
	Notes              string                    `json:"notes,omitempty"`
	VerificationStatus models.VerificationStatus `json:"verification_status"`
	VerifiedBy         string                    `json:"verified_by,omitempty"`
	VerifiedAt         *time.Time                `json:"verified_at,omitempty"`
	VerificationNotes  string                    `json:"verification_notes,omitempty"`
	State              progress.State            `json:"state"`
}

func toSummary(v assignment.View) assignmentSummary {
	return assignmentSummary{
		ID:             v.ID,
		TemplateID:     v.TemplateID,
		TemplateTitle:  v.Template.Title,
		UserID:         v.UserID,
		DueDate:        v.DueDate,
		IsAutoAssigned: v.IsAutoAssigned,
		AssignedBy:     v.AssignedBy,
		Percentage:     v.Percentage,
		Status:         v.Status,
		CreatedAt:      v.CreatedAt,
	}
}

func toAssignmentList(views []assignment.View) []assignmentSummary {
	out := make([]assignmentSummary, 0, len(views))
	for _, v := range views {
		out = append(out, toSummary(v))
	}
	return out
}

func toAssignmentDetail(v *assignment.View) assignmentDetail {
	detail := assignmentDetail{
		assignmentSummary:    toSummary(*v),
		RequiresVerification: v.Template.RequiresVerification,
		Items:                make([]progressView, 0, len(v.Progress)),
	}
	for _, p := range v.Progress {
		detail.Items = append(detail.Items, progressView{
			ID:                 p.ID,
			ItemID:             p.ItemID,
			Title:              p.Item.Title,
			OrderIndex:         p.Item.OrderIndex,
			Phase:              p.Item.Phase,
			ControlledBy:       p.Item.ControlledBy,
			Required:           p.Item.Required,
			IsCompleted:        p.IsCompleted,
			CompletedAt:        p.CompletedAt,
			Notes:              p.Notes,
			VerificationStatus: p.VerificationStatus,
			VerifiedBy:         p.VerifiedBy,
			VerifiedAt:         p.VerifiedAt,
			VerificationNotes:  p.VerificationNotes,
			State:              progress.EffectiveState(&p, v.Template.RequiresVerification),
		})
	}
	// Display order follows the template item order.
	sort.SliceStable(detail.Items, func(i, j int) bool {
		return detail.Items[i].OrderIndex < detail.Items[j].OrderIndex
	})
	return detail
}
