package handlers

import (
	"net/http"

	"slotwise/services/waitlist"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
)

// WaitlistHandler exposes the waitlist engine.
type WaitlistHandler struct {
	Engine waitlist.Engine
}

func NewWaitlistHandler(engine waitlist.Engine) *WaitlistHandler {
	return &WaitlistHandler{Engine: engine}
}

func (h *WaitlistHandler) EnqueueWaitlistHandler(c *gin.Context) {
	var req waitlist.EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	entry, err := h.Engine.Enqueue(c.Request.Context(), req)
	if err != nil {
		utils.JSONEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

type cancelEntryInput struct {
	ClientID string `json:"clientId"`
}

func (h *WaitlistHandler) CancelWaitlistEntryHandler(c *gin.Context) {
	var input cancelEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	entryID := c.Param("entryId")
	if err := h.Engine.CancelEntry(c.Request.Context(), entryID, input.ClientID); err != nil {
		utils.JSONEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": entryID})
}
