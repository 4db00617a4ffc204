package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edustore/edustore-backend/internal/content"
	"github.com/edustore/edustore-backend/internal/content/service"
	"github.com/edustore/edustore-backend/internal/storage"
	"github.com/edustore/edustore-backend/pkg/logger"
	"github.com/edustore/edustore-backend/pkg/metrics"
	"github.com/edustore/edustore-backend/pkg/middleware"
)

// actorName attributes authorship to the authenticated user, when any.
func actorName(c *gin.Context) string {
	if claims, ok := middleware.ClaimsFrom(c); ok {
		return claims.Username
	}
	return ""
}

// Handler translates the catalog operations to HTTP. Domain errors map to
// status codes here; anything unexpected becomes a generic 500.
type Handler struct {
	svc   *service.Service
	files *storage.LocalStorage
}

func NewHandler(svc *service.Service, files *storage.LocalStorage) *Handler {
	return &Handler{svc: svc, files: files}
}

// Register binds the public routes. The auth and admin middlewares guard
// every mutating endpoint.
func (h *Handler) Register(r *gin.Engine, auth, admin gin.HandlerFunc) {
	r.GET("/api/content", h.ListAll)
	r.GET("/api/content/:category", h.ListByCategory)
	r.POST("/api/upload", auth, admin, h.Upload)
	r.PUT("/api/content/:id", auth, admin, h.Update)
	r.DELETE("/api/content/:id", auth, admin, h.Delete)
}

func (h *Handler) ListAll(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListAll())
}

func (h *Handler) ListByCategory(c *gin.Context) {
	items, err := h.svc.ListByCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// Upload accepts a multipart form (title, description, category, type and
// an optional file), stores the file and appends a catalog entry. The size
// limit is enforced before anything touches the disk; validation failures
// leave both the catalog and the upload directory untouched.
func (h *Handler) Upload(c *gin.Context) {
	in := service.CreateInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Type:        c.PostForm("type"),
	}
	if in.Title == "" || in.Category == "" || in.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title, category and type are required"})
		return
	}
	cat, err := content.ParseCategory(in.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	if fh, err := c.FormFile("file"); err == nil {
		stored, err := h.files.Save(c.Request.Context(), string(cat), fh)
		if err != nil {
			if errors.Is(err, storage.ErrTooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
				return
			}
			logger.Errorf("store upload: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
			return
		}
		in.Filename = stored.Filename
		in.OriginalName = stored.OriginalName
		metrics.UploadsTotal.WithLabelValues(string(cat)).Inc()
	}

	item, err := h.svc.Create(in, actorName(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": item})
}

func (h *Handler) Update(c *gin.Context) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Type        *string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.svc.Update(c.Param("id"), service.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
	}, actorName(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": item})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Content deleted"})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, content.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
	default:
		logger.Errorf("content operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
