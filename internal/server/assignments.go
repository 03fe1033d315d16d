package server

import (
	"net/http"
	"time"

	"github.com/crewbase/gangplank/internal/assignment"
	"github.com/crewbase/gangplank/internal/fault"
	"github.com/crewbase/gangplank/internal/models"
	"github.com/gin-gonic/gin"
)

// dueDateLayout is the wire format for due dates.
const dueDateLayout = "2006-01-02"

func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dueDateLayout, s)
	if err != nil {
		return nil, fault.Invalid("server: due_date %q is not %s", s, dueDateLayout)
	}
	return &t, nil
}

type createAssignmentRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	TemplateID string `json:"template_id" binding:"required"`
	DueDate    string `json:"due_date"`
}

func (a *api) createAssignment(c *gin.Context) {
	actor, err := a.requireRole(c, models.RoleHR, models.RoleManager)
	if err != nil {
		writeError(c, err)
		return
	}

	var req createAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fault.Invalid("server: %v", err))
		return
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		writeError(c, err)
		return
	}

	created, err := assignment.Assign(a.db, a.em, assignment.AssignOpts{
		UserID:     req.UserID,
		TemplateID: req.TemplateID,
		DueDate:    due,
		AssignedBy: actor.ID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

type bulkAssignRequest struct {
	TemplateID string   `json:"template_id" binding:"required"`
	UserIDs    []string `json:"user_ids" binding:"required,min=1"`
	DueDate    string   `json:"due_date"`
}

// bulkAssignResult is one user's slot in the bulk response.
type bulkAssignResult struct {
	UserID     string                      `json:"user_id"`
	Assignment *models.ChecklistAssignment `json:"assignment,omitempty"`
	Error      string                      `json:"error,omitempty"`
	Status     int                         `json:"status"`
}

func (a *api) bulkAssign(c *gin.Context) {
	actor, err := a.requireRole(c, models.RoleHR, models.RoleManager)
	if err != nil {
		writeError(c, err)
		return
	}

	var req bulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fault.Invalid("server: %v", err))
		return
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		writeError(c, err)
		return
	}

	results := assignment.BulkAssign(a.db, a.em, req.TemplateID, req.UserIDs, due, actor.ID)
	out := make([]bulkAssignResult, 0, len(results))
	for _, r := range results {
		br := bulkAssignResult{UserID: r.UserID, Assignment: r.Assignment, Status: http.StatusCreated}
		if r.Err != nil {
			br.Error = r.Err.Error()
			br.Status = statusOf(r.Err)
		}
		out = append(out, br)
	}
	c.JSON(http.StatusMultiStatus, gin.H{"results": out})
}

func (a *api) listAssignments(c *gin.Context) {
	if _, err := a.actorProfile(c); err != nil {
		writeError(c, err)
		return
	}

	var (
		views []assignment.View
		err   error
	)
	switch {
	case c.Query("user") != "":
		views, err = assignment.ListForUser(a.db, c.Query("user"))
	case c.Query("department") != "":
		views, err = assignment.ListForDepartment(a.db, a.dir, c.Query("department"))
	case c.Query("team") != "":
		views, err = assignment.ListForTeam(a.db, a.dir, c.Query("team"))
	default:
		err = fault.Invalid("server: one of user, department, or team is required")
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAssignmentList(views))
}

func (a *api) getAssignment(c *gin.Context) {
	if _, err := a.actorProfile(c); err != nil {
		writeError(c, err)
		return
	}
	v, err := assignment.Get(a.db, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAssignmentDetail(v))
}

func (a *api) deleteAssignment(c *gin.Context) {
	if _, err := a.requireRole(c, models.RoleHR, models.RoleManager); err != nil {
		writeError(c, err)
		return
	}
	if err := assignment.Delete(a.db, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
