package handlers

import (
	"net/http"

	"slotwise/services/recurrence"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
)

// RecurrenceHandler exposes the recurrence engine.
type RecurrenceHandler struct {
	Engine recurrence.Engine
}

func NewRecurrenceHandler(engine recurrence.Engine) *RecurrenceHandler {
	return &RecurrenceHandler{Engine: engine}
}

func (h *RecurrenceHandler) CheckFeasibilityHandler(c *gin.Context) {
	report, err := h.Engine.CheckFeasibility(c.Request.Context(), c.Param("slotId"))
	if err != nil {
		utils.JSONEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *RecurrenceHandler) CreateRecurrenceHandler(c *gin.Context) {
	var req recurrence.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	rec, err := h.Engine.Create(c.Request.Context(), req, actor(c, req.ClientID))
	if err != nil {
		utils.JSONEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *RecurrenceHandler) CancelRecurrenceHandler(c *gin.Context) {
	id := c.Param("recurrenceId")
	if err := h.Engine.Cancel(c.Request.Context(), id, actor(c, "")); err != nil {
		utils.JSONEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": id})
}
