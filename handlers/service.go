package handlers

import (
	"errors"
	"net/http"

	serviceRepo "slotwise/database/repository/service"
	"slotwise/models"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServiceHandler exposes service management.
type ServiceHandler struct {
	Repo serviceRepo.ServiceRepository
}

func NewServiceHandler(repo serviceRepo.ServiceRepository) *ServiceHandler {
	return &ServiceHandler{Repo: repo}
}

func (h *ServiceHandler) CreateServiceHandler(c *gin.Context) {
	var svc models.Service
	if err := c.ShouldBindJSON(&svc); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if svc.DurationMinutes <= 0 || svc.Capacity <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "durationMinutes and capacity must be positive")
		return
	}
	if svc.ID == "" {
		svc.ID = uuid.New().String()
	}
	if err := h.Repo.Create(c.Request.Context(), &svc); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to create service", err.Error())
		return
	}
	c.JSON(http.StatusCreated, svc)
}

func (h *ServiceHandler) UpdateServiceHandler(c *gin.Context) {
	var svc models.Service
	if err := c.ShouldBindJSON(&svc); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	svc.ID = c.Param("id")
	if err := h.Repo.Update(c.Request.Context(), &svc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.JSONError(c, http.StatusNotFound, "service not found", svc.ID)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to update service", err.Error())
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *ServiceHandler) DeleteServiceHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.Repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.JSONError(c, http.StatusNotFound, "service not found", id)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to delete service", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *ServiceHandler) GetServiceHandler(c *gin.Context) {
	id := c.Param("id")
	svc, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.JSONError(c, http.StatusNotFound, "service not found", id)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch service", err.Error())
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *ServiceHandler) ListServicesHandler(c *gin.Context) {
	var (
		services []models.Service
		err      error
	)
	if providerID := c.Query("providerId"); providerID != "" {
		services, err = h.Repo.ListByProvider(c.Request.Context(), providerID)
	} else {
		services, err = h.Repo.ListAll(c.Request.Context())
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list services", err.Error())
		return
	}
	c.JSON(http.StatusOK, services)
}
