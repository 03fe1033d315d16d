package server

import (
	"net/http"
	"strconv"

	"github.com/crewbase/gangplank/internal/fault"
	"github.com/crewbase/gangplank/internal/models"
	"github.com/crewbase/gangplank/internal/notify"
	"github.com/gin-gonic/gin"
)

func (a *api) listNotifications(c *gin.Context) {
	actor, err := a.actorProfile(c)
	if err != nil {
		writeError(c, err)
		return
	}

	// Users read their own notifications; HR may read anyone's.
	userID := c.Query("user")
	if userID == "" {
		userID = actor.ID
	}
	if userID != actor.ID && actor.Role != models.RoleHR {
		writeError(c, fault.Forbidden("server: %s may not read notifications for %s", actor.ID, userID))
		return
	}

	out, err := a.store.List(userID, notify.ListFilters{
		Kind:       c.Query("kind"),
		UnreadOnly: c.Query("unread") == "true",
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (a *api) markNotificationRead(c *gin.Context) {
	if _, err := a.actorProfile(c); err != nil {
		writeError(c, err)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		writeError(c, fault.Invalid("server: notification id %q is not numeric", c.Param("id")))
		return
	}
	if err := a.store.MarkRead(uint(id)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
