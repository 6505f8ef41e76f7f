package handlers

import (
	"net/http"
	"strings"

	"github.com/andresuchdata/wenku/backend-go/internal/domain"
	"github.com/andresuchdata/wenku/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type LibraryHandler struct {
	service *service.LibraryService
}

func NewLibraryHandler(service *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{service: service}
}

func (h *LibraryHandler) GetCategories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *LibraryHandler) GetDocuments(c *gin.Context) {
	filter := domain.DocumentFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Series:   strings.TrimSpace(c.Query("series")),
	}
	if filter.Category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing category parameter"})
		return
	}

	docs, err := h.service.Documents(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (h *LibraryHandler) GetDocument(c *gin.Context) {
	detail, err := h.service.Document(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *LibraryHandler) Search(c *gin.Context) {
	docs, err := h.service.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

type readCountRequest struct {
	DocumentID string `json:"documentId"`
}

func (h *LibraryHandler) RecordRead(c *gin.Context) {
	var req readCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.DocumentID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing documentId"})
		return
	}

	if err := h.service.RecordRead(c.Request.Context(), req.DocumentID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
