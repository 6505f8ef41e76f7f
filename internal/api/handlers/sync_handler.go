package handlers

import (
	"net/http"
	"strings"

	"github.com/andresuchdata/wenku/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	service *service.SyncService
}

func NewSyncHandler(service *service.SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// Sync runs a reconcile pass and answers with its counters.
func (h *SyncHandler) Sync(c *gin.Context) {
	force := parseForce(c.Query("force"))

	result, err := h.service.Run(c.Request.Context(), force)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseForce(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true":
		return true
	default:
		return false
	}
}
