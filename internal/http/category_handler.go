package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"anniversary-api/internal/repository"
)

// CategoryHandler expone el CRUD de categorias del usuario autenticado.
type CategoryHandler struct {
	logger     *zap.Logger
	categories repository.CategoryRepository
}

func NewCategoryHandler(logger *zap.Logger, categories repository.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{
		logger:     logger,
		categories: categories,
	}
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// List maneja GET /categories.
func (h *CategoryHandler) List(c *gin.Context) {
	userID, ok := requireIdentity(c)
	if !ok {
		return
	}

	categories, err := h.categories.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list categories failed", zap.Error(err), zap.Int64("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Create maneja POST /categories. El dueño sale del token, nunca del body.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	userID, ok := requireIdentity(c)
	if !ok {
		return
	}

	category, err := h.categories.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		h.logger.Error("create category failed", zap.Error(err), zap.Int64("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}
	c.JSON(http.StatusCreated, category)
}

// Get maneja GET /categories/:id.
func (h *CategoryHandler) Get(c *gin.Context) {
	userID, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	category, err := h.categories.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.respondError(c, err, "get category failed", "Failed to fetch category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// Update maneja PUT /categories/:id.
func (h *CategoryHandler) Update(c *gin.Context) {
	var req categoryRequest
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

	category, err := h.categories.Update(c.Request.Context(), userID, id, req.Name)
	if err != nil {
		h.respondError(c, err, "update category failed", "Failed to update category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// Delete maneja DELETE /categories/:id.
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.categories.Delete(c.Request.Context(), userID, id); err != nil {
		h.respondError(c, err, "delete category failed", "Failed to delete category")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CategoryHandler) respondError(c *gin.Context, err error, logMsg, publicMsg string) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	h.logger.Error(logMsg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": publicMsg})
}
