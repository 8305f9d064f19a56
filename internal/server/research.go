package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/scourbot/scour/internal/artifact/registry"
	"github.com/scourbot/scour/internal/session"
)

// ResearchHandler serves run submission, progress streams, and report
// downloads.
type ResearchHandler struct {
	Manager  *session.Manager
	Registry registry.Registry
}

func (h *ResearchHandler) Register(g *echo.Group) {
	g.POST("/research", h.startResearch)
	g.GET("/research/:run_id/stream", h.streamResearch)
	g.GET("/reports/latest", h.latestReport)
	g.GET("/reports/:artifact_id", h.reportByID)
}

type researchRequest struct {
	Task       string `json:"task"`
	MaxResults int    `json:"max_results"`
}

type researchResponse struct {
	RunID string `json:"run_id"`
}

// startResearch accepts a task and returns immediately; the run proceeds
// in the background and reports progress over its stream.
func (h *ResearchHandler) startResearch(c echo.Context) error {
	var req researchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.Task = strings.TrimSpace(req.Task)
	if req.Task == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task is required")
	}
	s := h.Manager.Start(req.Task, req.MaxResults)
	return c.JSON(http.StatusAccepted, researchResponse{RunID: s.ID()})
}

// streamResearch relays a run's progress events as Server-Sent Events.
// The stream ends when the run reaches its terminal event or the client
// disconnects.
func (h *ResearchHandler) streamResearch(c echo.Context) error {
	runID := c.Param("run_id")
	s, ok := h.Manager.Get(runID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown run")
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	flusher, ok := resp.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "streaming unsupported")
	}

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, open := <-s.Events():
			if !open {
				return nil
			}
			if _, err := resp.Write([]byte("data: " + msg + "\n\n")); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

// latestReport serves the most recently produced report file.
func (h *ResearchHandler) latestReport(c echo.Context) error {
	a, ok, err := h.Registry.Latest(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no report available yet")
	}
	return c.Attachment(a.Path, a.ID)
}

// reportByID serves one report file by artifact ID.
func (h *ResearchHandler) reportByID(c echo.Context) error {
	id := c.Param("artifact_id")
	a, ok, err := h.Registry.ByID(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown report")
	}
	return c.Attachment(a.Path, a.ID)
}
