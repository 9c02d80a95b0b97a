package notification

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"structnotify/internal/logger"
	"structnotify/pkg/errors"
)

type Handler struct {
	Registry *Registry
	Marker   *DeliveryMarker
	Logger   logger.Logger
}

func NewHandler(registry *Registry, marker *DeliveryMarker, log logger.Logger) *Handler {
	return &Handler{
		Registry: registry,
		Marker:   marker,
		Logger:   log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/notifications", h.GatherNotifications)
		v1.GET("/notifications/dependencies", h.GetCacheDependencies)
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

// GatherNotifications runs a gather pass for one user. plugins narrows the
// sources consulted; mark_delivered=true additionally claims each event so
// later passes suppress it.
func (h *Handler) GatherNotifications(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
			errors.ErrValidation.WithDetail("message", "user query parameter is required")))
		return
	}

	events, err := h.Registry.GatherAll(c.Request.Context(), user, splitPlugins(c.Query("plugins")), time.Now())
	if err != nil {
		h.handleError(c, err)
		return
	}

	if h.Marker != nil && c.Query("mark_delivered") == "true" {
		events = h.Marker.Suppress(c.Request.Context(), events)
	}

	if events == nil {
		events = []Event{}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   user,
		"count":  len(events),
		"events": events,
	})
}

func (h *Handler) GetCacheDependencies(c *gin.Context) {
	deps, err := h.Registry.CacheDependenciesFor(c.Request.Context(), splitPlugins(c.Query("plugins")))
	if err != nil {
		h.handleError(c, err)
		return
	}

	if deps == nil {
		deps = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"dependencies": deps})
}

func splitPlugins(raw string) []string {
	if raw == "" {
		return nil
	}
	var plugins []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			plugins = append(plugins, p)
		}
	}
	return plugins
}
