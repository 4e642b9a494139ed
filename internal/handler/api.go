package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"feedback-service/internal/models"
	"feedback-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests
type Handler struct {
	analyzer  *service.Analyzer
	logger    *zap.Logger
	maxUpload int64
}

// NewHandler creates a new API handler. maxUpload is the upload size
// limit in bytes.
func NewHandler(analyzer *service.Analyzer, logger *zap.Logger, maxUpload int64) *Handler {
	return &Handler{
		analyzer:  analyzer,
		logger:    logger,
		maxUpload: maxUpload,
	}
}

// RegisterRoutes registers all routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// Pages
	r.GET("/", h.Index)
	r.GET("/batch/:id", h.ViewBatch)

	// Batch lifecycle
	r.POST("/upload", h.Upload)
	r.DELETE("/batch/:id", h.DeleteBatch)
	r.GET("/export/:id", h.ExportCSV)

	api := r.Group("/api")
	{
		api.GET("/stats/:id", h.GetStats)
		api.GET("/category/:id/:category", h.GetCategoryRows)
		api.GET("/categories", h.GetCategories)
	}

	// Health check
	r.GET("/health", h.HealthCheck)
}

// Index renders the most recent batch, or the empty state.
func (h *Handler) Index(c *gin.Context) {
	batches, err := h.analyzer.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list batches", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to list batches")
		return
	}

	view, err := h.analyzer.Latest(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load latest batch", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to load latest batch")
		return
	}

	h.renderBatchPage(c, batches, view)
}

// ViewBatch renders one batch by ID.
func (h *Handler) ViewBatch(c *gin.Context) {
	view, err := h.analyzer.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.String(http.StatusNotFound, "batch not found")
			return
		}
		h.logger.Error("Failed to load batch", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to load batch")
		return
	}

	batches, err := h.analyzer.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list batches", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to list batches")
		return
	}

	h.renderBatchPage(c, batches, view)
}

func (h *Handler) renderBatchPage(c *gin.Context, batches []models.BatchMeta, view *models.BatchView) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Batches":    batches,
		"Current":    view,
		"Categories": models.Categories,
	})
}

// Upload ingests a CSV file and returns the new batch's aggregated view.
func (h *Handler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please upload a .csv file"})
		return
	}

	raw, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	if int64(len(raw)) > h.maxUpload {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file exceeds the %d MB upload limit", h.maxUpload/(1<<20))})
		return
	}

	view, err := h.analyzer.Ingest(c.Request.Context(), header.Filename, raw)
	if err != nil {
		if errors.Is(err, models.ErrEncoding) || errors.Is(err, models.ErrMalformedInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to ingest upload", zap.String("filename", header.Filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch_id": view.Batch.ID,
		"total":    view.Stats.Total,
		"message":  fmt.Sprintf("processed %d feedback rows", view.Stats.Total),
		"columns": gin.H{
			"content":   view.ContentColumn,
			"user_type": view.UserTypeColumn,
		},
		"stats": view.Stats,
	})
}

// DeleteBatch removes a batch and all its rows.
func (h *Handler) DeleteBatch(c *gin.Context) {
	id := c.Param("id")
	if err := h.analyzer.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
			return
		}
		h.logger.Error("Failed to delete batch", zap.String("batch_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete batch"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "batch deleted"})
}

// GetStats returns totals and distributions for one batch.
func (h *Handler) GetStats(c *gin.Context) {
	view, err := h.analyzer.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
			return
		}
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch_id":   view.Batch.ID,
		"total":      view.Stats.Total,
		"user_types": view.Stats.UserTypes,
		"categories": view.Stats.Categories,
	})
}

// GetCategoryRows returns the drill-down rows of one category.
func (h *Handler) GetCategoryRows(c *gin.Context) {
	rows, err := h.analyzer.CategoryRows(c.Request.Context(), c.Param("id"), c.Param("category"))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCategory):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		default:
			h.logger.Error("Failed to get category rows", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get rows"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": c.Param("category"),
		"total":    len(rows),
		"rows":     rows,
	})
}

// GetCategories returns the fixed category vocabulary.
func (h *Handler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.analyzer.Categories()})
}

// ExportCSV exports one batch's classified rows as CSV.
func (h *Handler) ExportCSV(c *gin.Context) {
	id := c.Param("id")

	var buf bytes.Buffer
	if err := h.analyzer.ExportCSV(c.Request.Context(), id, &buf); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
			return
		}
		h.logger.Error("Failed to export batch", zap.String("batch_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=feedback_export_%s.csv", id))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "feedback-service",
	})
}
