package handlers

import (
	"net/http"

	availabilityRepo "slotwise/database/repository/availability"
	"slotwise/models"
	"slotwise/services/impact"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AvailabilityHandler exposes window and blackout management plus the
// availability-change impact surface.
type AvailabilityHandler struct {
	Repo     availabilityRepo.AvailabilityRepository
	Analyzer impact.Analyzer
}

func NewAvailabilityHandler(repo availabilityRepo.AvailabilityRepository, analyzer impact.Analyzer) *AvailabilityHandler {
	return &AvailabilityHandler{Repo: repo, Analyzer: analyzer}
}

type windowsInput struct {
	Windows []models.AvailabilityWindow `json:"windows"`
}

// SetWindowsHandler replaces the service's weekly windows without impact
// reprocessing; it is the initial-setup path. Changing windows on a live
// service goes through ApplyChangeHandler instead.
func (h *AvailabilityHandler) SetWindowsHandler(c *gin.Context) {
	serviceID := c.Param("id")
	var input windowsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	for i := range input.Windows {
		input.Windows[i].ServiceID = serviceID
		if input.Windows[i].ID == "" {
			input.Windows[i].ID = uuid.New().String()
		}
	}
	if err := h.Repo.ReplaceWindows(c.Request.Context(), serviceID, input.Windows); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to store windows", err.Error())
		return
	}
	c.JSON(http.StatusOK, input.Windows)
}

func (h *AvailabilityHandler) GetWindowsHandler(c *gin.Context) {
	windows, err := h.Repo.GetWindowsByService(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch windows", err.Error())
		return
	}
	c.JSON(http.StatusOK, windows)
}

func (h *AvailabilityHandler) DeleteWindowHandler(c *gin.Context) {
	if err := h.Repo.DeleteWindow(c.Request.Context(), c.Param("id"), c.Param("windowId")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to delete window", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("windowId")})
}

func (h *AvailabilityHandler) CreateUnavailabilityHandler(c *gin.Context) {
	var u models.Unavailability
	if err := c.ShouldBindJSON(&u); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if u.StartDate == "" || u.EndDate == "" || u.StartDate > u.EndDate {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "startDate/endDate must describe a non-empty span")
		return
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if err := h.Repo.CreateUnavailability(c.Request.Context(), &u); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to store unavailability", err.Error())
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *AvailabilityHandler) DeleteUnavailabilityHandler(c *gin.Context) {
	if err := h.Repo.DeleteUnavailability(c.Request.Context(), c.Param("unavailabilityId")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to delete unavailability", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("unavailabilityId")})
}

// AnalyzeImpactHandler is the read-only dry run of an availability change.
func (h *AvailabilityHandler) AnalyzeImpactHandler(c *gin.Context) {
	serviceID := c.Param("id")
	var input windowsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	report, err := h.Analyzer.AnalyzeImpact(c.Request.Context(), serviceID, input.Windows)
	if err != nil {
		utils.JSONEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ApplyChangeHandler swaps the windows and queues reprocessing; the caller
// gets 202 as soon as the work is queued.
func (h *AvailabilityHandler) ApplyChangeHandler(c *gin.Context) {
	serviceID := c.Param("id")
	var input windowsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	for i := range input.Windows {
		if input.Windows[i].ID == "" {
			input.Windows[i].ID = uuid.New().String()
		}
	}
	if err := h.Analyzer.ApplyChange(c.Request.Context(), serviceID, input.Windows, actor(c, "")); err != nil {
		utils.JSONEngineError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"serviceId": serviceID, "status": "reprocessing queued"})
}
