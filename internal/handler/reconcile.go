package handler

import (
	"net/http"

	"crystalerp/internal/apierror"
	"crystalerp/internal/service"

	"github.com/gin-gonic/gin"
)

type ReconcileHandler struct{ svc service.ReconcileService }

func NewReconcileHandler(svc service.ReconcileService) *ReconcileHandler {
	return &ReconcileHandler{svc: svc}
}

// Run executes a full integrity scan. 200 when clean, 409 when any
// inconsistency was found — the report body is returned either way.
func (h *ReconcileHandler) Run(c *gin.Context) {
	report, err := h.svc.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	status := http.StatusOK
	if !report.Clean() {
		status = http.StatusConflict
	}
	c.JSON(status, report)
}
