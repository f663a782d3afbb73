package handlers

import (
	"net/http"

	slotRepo "slotwise/database/repository/slot"
	"slotwise/services/slots"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
)

// SlotHandler exposes the booking state machine.
type SlotHandler struct {
	Engine slots.SlotEngine
	Repo   slotRepo.SlotRepository
}

func NewSlotHandler(engine slots.SlotEngine, repo slotRepo.SlotRepository) *SlotHandler {
	return &SlotHandler{Engine: engine, Repo: repo}
}

func (h *SlotHandler) ListSlotsHandler(c *gin.Context) {
	serviceID := c.Param("id")
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "date query parameter is required")
		return
	}
	if _, err := utils.ParseDate(date); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	found, err := h.Repo.GetByServiceAndDate(c.Request.Context(), serviceID, date)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list slots", err.Error())
		return
	}
	c.JSON(http.StatusOK, found)
}

type enrollInput struct {
	ClientID string `json:"clientId"`
}

func (h *SlotHandler) EnrollHandler(c *gin.Context) {
	var input enrollInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	slot, err := h.Engine.Enroll(c.Request.Context(), c.Param("slotId"), input.ClientID, actor(c, input.ClientID))
	if err != nil {
		utils.JSONEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}

func (h *SlotHandler) ListClientEnrollmentsHandler(c *gin.Context) {
	serviceID := c.Query("serviceId")
	enrollments, err := h.Engine.ListClientEnrollments(c.Request.Context(), c.Param("clientId"), serviceID)
	if err != nil {
		utils.JSONEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

func (h *SlotHandler) UnenrollHandler(c *gin.Context) {
	var input enrollInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	slot, err := h.Engine.Unenroll(c.Request.Context(), c.Param("slotId"), input.ClientID, actor(c, input.ClientID))
	if err != nil {
		utils.JSONEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}
