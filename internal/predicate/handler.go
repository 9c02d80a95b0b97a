package predicate

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"structnotify/internal/logger"
	"structnotify/pkg/errors"
)

type Handler struct {
	Service Service
	Logger  logger.Logger
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		Service: service,
		Logger:  log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		predicates := v1.Group("/predicates")
		{
			predicates.GET("", h.ListPredicates)
			predicates.POST("", h.CreatePredicate)
			predicates.GET("/:id", h.GetPredicate)
			predicates.PUT("/:id", h.UpdatePredicate)
			predicates.DELETE("/:id", h.DeletePredicate)
		}

		v1.GET("/schemas", h.GetBackingSchemas)
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

func (h *Handler) ListPredicates(c *gin.Context) {
	predicates, err := h.Service.ListPredicates(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, predicates)
}

func (h *Handler) CreatePredicate(c *gin.Context) {
	var req CreatePredicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	p, err := h.Service.CreatePredicate(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPredicate(c *gin.Context) {
	id := c.Param("id")
	p, err := h.Service.GetPredicate(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePredicate(c *gin.Context) {
	id := c.Param("id")
	var req UpdatePredicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	p, err := h.Service.UpdatePredicate(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePredicate(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.DeletePredicate(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) GetBackingSchemas(c *gin.Context) {
	schemas, err := h.Service.BackingSchemas(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	if schemas == nil {
		schemas = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"schemas": schemas})
}
