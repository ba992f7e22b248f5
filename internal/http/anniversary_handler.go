package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"anniversary-api/internal/repository"
)

// AnniversaryHandler expone el CRUD de aniversarios del usuario autenticado.
type AnniversaryHandler struct {
	logger        *zap.Logger
	anniversaries repository.AnniversaryRepository
}

func NewAnniversaryHandler(logger *zap.Logger, anniversaries repository.AnniversaryRepository) *AnniversaryHandler {
	return &AnniversaryHandler{
		logger:        logger,
		anniversaries: anniversaries,
	}
}

type anniversaryRequest struct {
	Name        string    `json:"name" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	CategoryID  int64     `json:"category_id" binding:"required,gt=0"`
	Description *string   `json:"description"`
}

func (r anniversaryRequest) input() repository.AnniversaryInput {
	return repository.AnniversaryInput{
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Date:        r.Date.UTC(),
		Description: r.Description,
	}
}

// List maneja GET /anniversaries.
func (h *AnniversaryHandler) List(c *gin.Context) {
	userID, ok := requireIdentity(c)
	if !ok {
		return
	}

	anniversaries, err := h.anniversaries.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list anniversaries failed", zap.Error(err), zap.Int64("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch anniversaries"})
		return
	}
	c.JSON(http.StatusOK, anniversaries)
}

// Create maneja POST /anniversaries.
func (h *AnniversaryHandler) Create(c *gin.Context) {
	var req anniversaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	userID, ok := requireIdentity(c)
	if !ok {
		return
	}

	anniversary, err := h.anniversaries.Create(c.Request.Context(), userID, req.input())
	if err != nil {
		h.respondError(c, err, "create anniversary failed", "Failed to create anniversary")
		return
	}
	c.JSON(http.StatusCreated, anniversary)
}

// Get maneja GET /anniversaries/:id.
func (h *AnniversaryHandler) Get(c *gin.Context) {
	userID, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	anniversary, err := h.anniversaries.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.respondError(c, err, "get anniversary failed", "Failed to get anniversary")
		return
	}
	c.JSON(http.StatusOK, anniversary)
}

// Update maneja PUT /anniversaries/:id.
func (h *AnniversaryHandler) Update(c *gin.Context) {
	var req anniversaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	userID, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	anniversary, err := h.anniversaries.Update(c.Request.Context(), userID, id, req.input())
	if err != nil {
		h.respondError(c, err, "update anniversary failed", "Failed to update anniversary")
		return
	}
	c.JSON(http.StatusOK, anniversary)
}

// Delete maneja DELETE /anniversaries/:id.
func (h *AnniversaryHandler) Delete(c *gin.Context) {
	userID, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.anniversaries.Delete(c.Request.Context(), userID, id); err != nil {
		h.respondError(c, err, "delete anniversary failed", "Failed to delete anniversary")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AnniversaryHandler) respondError(c *gin.Context, err error, logMsg, publicMsg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Anniversary not found"})
	case errors.Is(err, repository.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": publicMsg})
	}
}
