package server

import (
	"github.com/crewbase/gangplank/internal/directory"
	"github.com/crewbase/gangplank/internal/fault"
	"github.com/crewbase/gangplank/internal/models"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all API routes on the Gin router.
func (a *api) registerRoutes(router *gin.Engine) {
	api := router.Group("/api")

	api.POST("/templates", a.createTemplate)
	api.GET("/templates", a.listTemplates)
	api.GET("/templates/:id", a.getTemplate)
	api.PATCH("/templates/:id", a.updateTemplate)
	api.DELETE("/templates/:id", a.deleteTemplate)
	api.POST("/templates/:id/items", a.addItem)
	api.GET("/templates/:id/items", a.listItems)
	api.PATCH("/items/:id", a.updateItem)
	api.DELETE("/items/:id", a.deleteItem)

	api.POST("/templates/:id/rules", a.createRule)
	api.GET("/templates/:id/rules", a.listRules)
	api.DELETE("/rules/:id", a.deleteRule)
	api.POST("/autoassign/run", a.runAutoAssign)

	api.POST("/assignments", a.createAssignment)
	api.POST("/assignments/bulk", a.bulkAssign)
	api.GET("/assignments", a.listAssignments)
	api.GET("/assignments/:id", a.getAssignment)
	api.DELETE("/assignments/:id", a.deleteAssignment)

	api.GET("/progress/:id", a.getProgress)
	api.POST("/progress/:id/completion", a.setCompletion)
	api.POST("/progress/:id/verification", a.verify)

	api.GET("/notifications", a.listNotifications)
	api.POST("/notifications/:id/read", a.markNotificationRead)
}

// actorProfile resolves the acting user from the X-Actor-ID header.
func (a *api) actorProfile(c *gin.Context) (*directory.Profile, error) {
	id := c.GetHeader("X-Actor-ID")
	if id == "" {
		return nil, fault.Forbidden("server: X-Actor-ID header is required")
	}
	p, err := a.dir.Lookup(id)
	if err != nil {
		if fault.IsKind(err, fault.KindNotFound) {
			return nil, fault.Forbidden("server: unknown actor: %s", id)
		}
		return nil, err
	}
	return p, nil
}

// requireRole resolves the actor and checks their role against the allowed
// set.
func (a *api) requireRole(c *gin.Context, roles ...models.Role) (*directory.Profile, error) {
	p, err := a.actorProfile(c)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if p.Role == r {
			return p, nil
		}
	}
	return nil, fault.Forbidden("server: %s (%s) may not perform this operation", p.ID, p.Role)
}
