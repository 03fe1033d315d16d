package server

import (
	"net/http"

	"github.com/crewbase/gangplank/internal/autoassign"
	"github.com/crewbase/gangplank/internal/fault"
	"github.com/crewbase/gangplank/internal/models"
	"github.com/gin-gonic/gin"
)

type createRuleRequest struct {
	Departments  []string `json:"departments"`
	ProgramTypes []string `json:"program_types"`
	Stages       []string `json:"stages" binding:"omitempty,dive,stage"`
	DueInDays    *int     `json:"due_in_days"`
	AutoNotify   bool     `json:"auto_notify"`
}

func (a *api) createRule(c *gin.Context) {
	if _, err := a.requireRole(c, models.RoleHR); err != nil {
		writeError(c, err)
		return
	}

	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fault.Invalid("server: %v", err))
		return
	}

	rule, err := autoassign.CreateRule(a.db, autoassign.RuleOpts{
		TemplateID:   c.Param("id"),
		Departments:  req.Departments,
		ProgramTypes: req.ProgramTypes,
		Stages:       req.Stages,
		DueInDays:    req.DueInDays,
		AutoNotify:   req.AutoNotify,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (a *api) listRules(c *gin.Context) {
	rules, err := autoassign.ListRules(a.db, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (a *api) deleteRule(c *gin.Context) {
	if _, err := a.requireRole(c, models.RoleHR); err != nil {
		writeError(c, err)
		return
	}
	if err := autoassign.DeleteRule(a.db, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type runAutoAssignRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (a *api) runAutoAssign(c *gin.Context) {
	if _, err := a.requireRole(c, models.RoleHR, models.RoleManager); err != nil {
		writeError(c, err)
		return
	}

	var req runAutoAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fault.Invalid("server: %v", err))
		return
	}

	results, err := autoassign.Run(a.db, a.em, a.dir, req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
