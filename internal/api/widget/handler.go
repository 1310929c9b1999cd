package widget

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/liliang-cn/qualia/internal/domain"
	"github.com/liliang-cn/qualia/internal/service"
)

// Handler handles widget API requests
type Handler struct {
	widgetService *service.WidgetService
}

// NewHandler creates a new widget handler
func NewHandler(widgetService *service.WidgetService) *Handler {
	return &Handler{widgetService: widgetService}
}

// RegisterRoutes registers widget routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/config", h.GetConfig)
	r.GET("/messages", h.GetMessages)
	r.POST("/chat", h.Chat)
	r.POST("/chat/stream", h.ChatStream)
	r.POST("/search", h.Search)
}

// GetConfig returns the widget configuration
func (h *Handler) GetConfig(c *gin.Context) {
	config := h.widgetService.GetWidgetConfig()

	if config.AppURL == "" {
		// Determine scheme from request (support reverse proxy headers)
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		config.AppURL = scheme + "://" + c.Request.Host
	}

	c.JSON(http.StatusOK, config)
}

// GetMessages returns the conversation snapshot
func (h *Handler) GetMessages(c *gin.Context) {
	c.JSON(http.StatusOK, h.widgetService.Snapshot())
}

// Chat handles a chat message
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.widgetService.Chat(c.Request.Context(), &req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ChatStream handles a streaming chat message (SSE)
func (h *Handler) ChatStream(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stream, err := h.widgetService.ChatStream(c.Request.Context(), &req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	for chunk := range stream {
		data, _ := json.Marshal(chunk)
		writeSSE(c.Writer, chunk.Type, string(data))
		c.Writer.Flush()
	}
}

// Search runs the search adapter without touching the conversation
func (h *Handler) Search(c *gin.Context) {
	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.widgetService.Search(c.Request.Context(), req.Query)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrBlankInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeSSE(w io.Writer, eventType, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, data)
}
