package server

import (
	"net/http"

	"github.com/crewbase/gangplank/internal/fault"
	"github.com/crewbase/gangplank/internal/models"
	"github.com/crewbase/gangplank/internal/template"
	"github.com/gin-gonic/gin"
)

type createTemplateRequest struct {
	Title                string `json:"title" binding:"required"`
	Description          string `json:"description"`
	ProgramType          string `json:"program_type"`
	Stage                string `json:"stage" binding:"required,stage"`
	AutoAssign           bool   `json:"auto_assign"`
	RequiresVerification bool   `json:"requires_verification"`
}

func (a *api) createTemplate(c *gin.Context) {
	actor, err := a.requireRole(c, models.RoleHR)
	if err != nil {
		writeError(c, err)
		return
	}

	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fault.Invalid("server: %v", err))
		return
	}

	tpl, err := template.Create(a.db, template.CreateOpts{
		Title:                req.Title,
		Description:          req.Description,
		ProgramType:          req.ProgramType,
		Stage:                models.Stage(req.Stage),
		AutoAssign:           req.AutoAssign,
		RequiresVerification: req.RequiresVerification,
		CreatedBy:            actor.ID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (a *api) listTemplates(c *gin.Context) {
	filters := template.ListFilters{
		ProgramType: c.Query("program_type"),
		Stage:       models.Stage(c.Query("stage")),
	}
	tpls, err := template.List(a.db, filters)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpls)
}

func (a *api) getTemplate(c *gin.Context) {
	tpl, err := template.Get(a.db, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

type updateTemplateRequest struct {
	Title                *string `json:"title"`
	Description          *string `json:"description"`
	ProgramType          *string `json:"program_type"`
	Stage                *string `json:"stage" binding:"omitempty,stage"`
	AutoAssign           *bool   `json:"auto_assign"`
	RequiresVerification *bool   `json:"requires_verification"`
}

func (a *api) updateTemplate(c *gin.Context) {
	if _, err := a.requireRole(c, models.RoleHR); err != nil {
		writeError(c, err)
		return
	}

	var req updateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fault.Invalid("server: %v", err))
		return
	}

	opts := template.UpdateOpts{
		Title:                req.Title,
		Description:          req.Description,
		ProgramType:          req.ProgramType,
		AutoAssign:           req.AutoAssign,
		RequiresVerification: req.RequiresVerification,
	}
	if req.Stage != nil {
		s := models.Stage(*req.Stage)
		opts.Stage = &s
	}

	tpl, err := template.Update(a.db, c.Param("id"), opts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (a *api) deleteTemplate(c *gin.Context) {
	if _, err := a.requireRole(c, models.RoleHR); err != nil {
		writeError(c, err)
		return
	}
	if err := template.Delete(a.db, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addItemRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	Required     *bool  `json:"required"`
	OrderIndex   int    `json:"order_index"`
	Phase        string `json:"phase" binding:"omitempty,stage"`
	ControlledBy string `json:"controlled_by" binding:"omitempty,controlledby"`
}

func (a *api) addItem(c *gin.Context) {
	if _, err := a.requireRole(c, models.RoleHR); err != nil {
		writeError(c, err)
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fault.Invalid("server: %v", err))
		return
	}

	required := true
	if req.Required != nil {
		required = *req.Required
	}
	item, err := template.AddItem(a.db, c.Param("id"), template.ItemOpts{
		Title:        req.Title,
		Description:  req.Description,
		Required:     required,
		OrderIndex:   req.OrderIndex,
		Phase:        models.Stage(req.Phase),
		ControlledBy: models.ControlledBy(req.ControlledBy),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (a *api) listItems(c *gin.Context) {
	items, err := template.ListItems(a.db, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type updateItemRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Required     *bool   `json:"required"`
	OrderIndex   *int    `json:"order_index"`
	Phase        *string `json:"phase" binding:"omitempty,stage"`
	ControlledBy *string `json:"controlled_by" binding:"omitempty,controlledby"`
}

func (a *api) updateItem(c *gin.Context) {
	if _, err := a.requireRole(c, models.RoleHR); err != nil {
		writeError(c, err)
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fault.Invalid("server: %v", err))
		return
	}

	opts := template.ItemUpdateOpts{
		Title:       req.Title,
		Description: req.Description,
		Required:    req.Required,
		OrderIndex:  req.OrderIndex,
	}
	if req.Phase != nil {
		p := models.Stage(*req.Phase)
		opts.Phase = &p
	}
	if req.ControlledBy != nil {
		cb := models.ControlledBy(*req.ControlledBy)
		opts.ControlledBy = &cb
	}

	item, err := template.UpdateItem(a.db, c.Param("id"), opts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (a *api) deleteItem(c *gin.Context) {
	if _, err := a.requireRole(c, models.RoleHR); err != nil {
		writeError(c, err)
		return
	}
	if err := template.DeleteItem(a.db, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
