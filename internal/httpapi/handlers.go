package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/jobmerge/internal/model"
	"github.com/amishk599/jobmerge/internal/service"
)

// JobHandler serves the job search and cache endpoints.
type JobHandler struct {
	svc    *service.Service
	logger *slog.Logger
}

// NewJobHandler returns a handler backed by svc.
func NewJobHandler(svc *service.Service, logger *slog.Logger) *JobHandler {
	return &JobHandler{svc: svc, logger: logger}
}

// Mixed searches every enabled source and returns a paged envelope.
func (h *JobHandler) Mixed(c *gin.Context) {
	req, err := service.ParseSearchRequest(c.Request.URL.Query())
	if err != nil {
		h.fail(c, "Invalid search parameters", err)
		return
	}

	resp, err := h.svc.Search(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "Failed to fetch mixed jobs", err)
		return
	}
	c.JSON(http.StatusOK, service.PagedEnvelope(resp))
}

// Random returns a shuffled mix of stored and external jobs.
func (h *JobHandler) Random(c *gin.Context) {
	resp, err := h.svc.Discover(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to fetch random jobs", err)
		return
	}
	c.JSON(http.StatusOK, service.ListEnvelope(resp))
}

// External lists jobs from one external source, or from all of them.
func (h *JobHandler) External(c *gin.Context) {
	resp, err := h.svc.External(c.Request.Context(), c.Query("source"), c.Query("query"), c.Query("location"))
	if err != nil {
		h.fail(c, "Failed to fetch external jobs", err)
		return
	}
	c.JSON(http.StatusOK, service.ListEnvelope(resp))
}

// Trending returns the newest remote jobs.
func (h *JobHandler) Trending(c *gin.Context) {
	resp, err := h.svc.Trending(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to fetch trending jobs", err)
		return
	}
	c.JSON(http.StatusOK, service.ListEnvelope(resp))
}

// SearchExternal runs a keyword search against the upstream boards.
func (h *JobHandler) SearchExternal(c *gin.Context) {
	q, err := service.ParseExternalSearch(c.Request.URL.Query())
	if err != nil {
		h.fail(c, "Invalid search parameters", err)
		return
	}
	resp, err := h.svc.SearchExternal(c.Request.Context(), q)
	if err != nil {
		h.fail(c, "Failed to search jobs", err)
		return
	}
	c.JSON(http.StatusOK, service.ListEnvelope(resp))
}

// ClearCache returns a handler that flushes the cache and reports message.
func (h *JobHandler) ClearCache(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.svc.Flush(c.Request.Context()); err != nil {
			h.fail(c, "Failed to clear cache", err)
			return
		}
		c.JSON(http.StatusOK, service.Succeeded(message))
	}
}

// fail writes a failure envelope: 400 for bad parameters, 500 otherwise.
func (h *JobHandler) fail(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	var pe *model.ParamError
	if errors.As(err, &pe) {
		status = http.StatusBadRequest
	}
	h.logger.Warn("request failed",
		"path", c.FullPath(),
		"status", status,
		"request_id", c.GetString(requestIDKey),
		"error", err,
	)
	c.JSON(status, service.Failed(message, err))
}
