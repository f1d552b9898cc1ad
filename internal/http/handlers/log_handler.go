// Log sink HTTP handlers.
//
// The WebApp has no console of its own once deployed inside Telegram, so it
// ships client-side events to POST /webapp-log and reads them (alongside
// mirrored server logs) back via the GET endpoints.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"supportdesk/internal/domain"
	"supportdesk/internal/services"
	"supportdesk/internal/utils"
)

// WebAppLogPayload is the JSON payload for a client-side log entry.
type WebAppLogPayload struct {
	Level   string `json:"level" example:"error"`
	Message string `json:"message" binding:"required" example:"fetch /chat/42 failed"`
	Context string `json:"context" example:"chat-view"`
}

// LogsResponse wraps a list of log entries.
type LogsResponse struct {
	Logs []domain.Log `json:"logs"`
}

// ListLogs godoc
// @ID          listLogs
// @Summary     List log entries
// @Description Returns stored log entries, newest first.
// @Tags        Logs
// @Produce     json
//
// @Param       level  query  string  false  "Level filter"       example(error)
// @Param       limit  query  int     false  "Max entries"        default(100)
//
// @Success     200  {object}  handlers.LogsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /logs [get]
func (h *Handlers) ListLogs(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), 100)
	logs, err := h.logs.List(c.Request.Context(), c.Query("level"), limit)
	if err != nil {
		failInternal(c, ErrCodeListFailed, err)
		return
	}
	if logs == nil {
		logs = []domain.Log{}
	}
	ok(c, http.StatusOK, LogsResponse{Logs: logs})
}

// ListRecentLogs godoc
// @ID          listRecentLogs
// @Summary     List recent log entries
// @Description Returns log entries from the last N hours (default 24), newest first.
// @Tags        Logs
// @Produce     json
//
// @Param       hours  query  int     false  "Look-back window"   default(24)
// @Param       level  query  string  false  "Level filter"       example(warn)
// @Param       limit  query  int     false  "Max entries"        default(500)
//
// @Success     200  {object}  handlers.LogsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /logs/recent [get]
func (h *Handlers) ListRecentLogs(c *gin.Context) {
	hours := utils.AtoiDefault(c.Query("hours"), 24)
	limit := utils.AtoiDefault(c.Query("limit"), 500)
	logs, err := h.logs.Recent(c.Request.Context(), hours, c.Query("level"), limit)
	if err != nil {
		failInternal(c, ErrCodeListFailed, err)
		return
	}
	if logs == nil {
		logs = []domain.Log{}
	}
	ok(c, http.StatusOK, LogsResponse{Logs: logs})
}

// StoreWebAppLog godoc
// @ID          storeWebAppLog
// @Summary     Store a WebApp log entry
// @Description Persists a client-side log entry so WebApp errors are visible server-side.
// @Tags        Logs
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.WebAppLogPayload  true  "Log entry"
//
// @Success     201  {object}  map[string]string
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /webapp-log [post]
func (h *Handlers) StoreWebAppLog(c *gin.Context) {
	var req WebAppLogPayload
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message is required")
		return
	}

	logCtx := req.Context
	if logCtx == "" {
		logCtx = "webapp"
	}
	if err := h.logs.Append(c.Request.Context(), req.Level, req.Message, logCtx); err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		failInternal(c, ErrCodeInternal, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"status": "stored"})
}
