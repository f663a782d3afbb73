package handlers

import (
	"net/http"

	"slotwise/models"
	"slotwise/services/generator"
	"slotwise/services/tasks"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
)

// GenerationHandler exposes slot generation. Bulk generation runs as a
// background task so response latency never depends on horizon size; daily
// extension is cheap enough to run inline.
type GenerationHandler struct {
	Gen    generator.GeneratorService
	Runner tasks.Submitter
}

func NewGenerationHandler(gen generator.GeneratorService, runner tasks.Submitter) *GenerationHandler {
	return &GenerationHandler{Gen: gen, Runner: runner}
}

func (h *GenerationHandler) GenerateForServiceHandler(c *gin.Context) {
	var input models.GeneratePayload
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	input.ServiceID = c.Param("id")
	if input.HorizonStart == "" || input.HorizonEnd == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "horizonStart and horizonEnd are required")
		return
	}
	if _, err := utils.ParseDate(input.HorizonStart); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if _, err := utils.ParseDate(input.HorizonEnd); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	task, err := tasks.NewGenerateTask(input)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to build generation task", err.Error())
		return
	}
	if err := h.Runner.Submit(task); err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "failed to queue generation", err.Error())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"serviceId": input.ServiceID, "status": "generation queued"})
}

func (h *GenerationHandler) ExtendByOneDayHandler(c *gin.Context) {
	n, err := h.Gen.ExtendByOneDay(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"serviceId": c.Param("id"), "generated": n})
}
