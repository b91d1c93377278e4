package handler

import (
	"net/http"

	"crystalerp/internal/apierror"
	"crystalerp/internal/dto"
	"crystalerp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MaterialsHandler struct{ svc service.MaterialService }

func NewMaterialsHandler(svc service.MaterialService) *MaterialsHandler {
	return &MaterialsHandler{svc: svc}
}

func (h *MaterialsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MaterialsHandler) List(c *gin.Context) {
	var filter dto.MaterialFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query parameters"))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list materials"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MaterialsHandler) ListLowStock(c *gin.Context) {
	resp, err := h.svc.ListLowStock(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list low-stock materials"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MaterialsHandler) ListUsages(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.ListUsages(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
