package server

import (
	"net/http"
	"strconv"

	"github.com/crewbase/gangplank/internal/fault"
	"github.com/crewbase/gangplank/internal/progress"
	"github.com/gin-gonic/gin"
)

func progressID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, fault.Invalid("server: progress id %q is not numeric", c.Param("id"))
	}
	return uint(id), nil
}

func (a *api) getProgress(c *gin.Context) {
	if _, err := a.actorProfile(c); err != nil {
		writeError(c, err)
		return
	}
	id, err := progressID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	p, err := progress.Get(a.db, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type completionRequest struct {
	Completed bool   `json:"completed"`
	Notes     string `json:"notes"`
}

func (a *api) setCompletion(c *gin.Context) {
	actor, err := a.actorProfile(c)
	if err != nil {
		writeError(c, err)
		return
	}
	id, err := progressID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var req completionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fault.Invalid("server: %v", err))
		return
	}

	p, err := progress.SetCompletion(a.db, a.em, a.dir, progress.CompletionOpts{
		ProgressID: id,
		ActorID:    actor.ID,
		Completed:  req.Completed,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type verifyRequest struct {
	Decision string `json:"decision" binding:"required,decision"`
	Notes    string `json:"notes"`
}

func (a *api) verify(c *gin.Context) {
	actor, err := a.actorProfile(c)
	if err != nil {
		writeError(c, err)
		return
	}
	id, err := progressID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fault.Invalid("server: %v", err))
		return
	}

	p, err := progress.Verify(a.db, a.em, a.dir, progress.VerifyOpts{
		ProgressID: id,
		ActorID:    actor.ID,
		Approve:    req.Decision == "approve",
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
