// Conversation HTTP handlers.
//
// This file exposes the WebApp-facing thread endpoints:
//   - GET  /chat/{id}               (request metadata + full thread, ETag)
//   - GET  /chat/{id}/messages      (incremental poll with ?since=)
//   - POST /chat/{id}/messages      (append + counterpart relay)
//   - GET  /chats                   (all requests with latest message, ETag)
//
// The polling endpoint is deliberately forgiving: unknown ids and unparsable
// since values yield an empty list rather than an error, so a WebApp left
// open on a deleted ticket just idles instead of surfacing failures.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"supportdesk/internal/domain"
	"supportdesk/internal/repo"
	"supportdesk/internal/services"
	"supportdesk/internal/utils"
)

//
// DTOs
//

// ThreadResponse is the full conversation view for one request.
type ThreadResponse struct {
	Request  domain.Request   `json:"request"`
	Messages []domain.Message `json:"messages"`
}

// MessagesResponse wraps an incremental message poll result.
type MessagesResponse struct {
	Messages []domain.Message `json:"messages"`
}

// AppendMessagePayload is the JSON payload for posting a thread message.
type AppendMessagePayload struct {
	SenderID   int64  `json:"sender_id" binding:"required" example:"123456789"`
	SenderType string `json:"sender_type" binding:"required" example:"user"`
	Message    string `json:"message" binding:"required" example:"Any update on this?"`
}

// AppendMessageResponse acknowledges a stored thread message.
type AppendMessageResponse struct {
	MessageID int64     `json:"message_id" example:"7"`
	RequestID int64     `json:"request_id" example:"42"`
	Timestamp time.Time `json:"timestamp"`
}

// OverviewResponse wraps the admin dashboard listing.
type OverviewResponse struct {
	Chats []services.RequestOverview `json:"chats"`
}

// serviceDB exposes the underlying gorm handle when the ticket service is the
// concrete implementation; ETag shortcuts are skipped otherwise.
func (h *Handlers) serviceDB() *gorm.DB {
	if svc, ok := h.tickets.(*services.RequestService); ok {
		return svc.DB
	}
	return nil
}

// GetThread godoc
// @ID          getThread
// @Summary     Fetch a conversation
// @Description Returns the request and its full ordered message list. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Chats
// @Produce     json
//
// @Param       id             path    int     true  "Request ID"
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object}  handlers.ThreadResponse
// @Success     304  {string}  string "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chat/{id} [get]
func (h *Handlers) GetThread(c *gin.Context) {
	id, okID := utils.ParseInt64(c.Param("id"))
	if !okID || id <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "request id must be a positive integer")
		return
	}
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if db := h.serviceDB(); db != nil {
		count, maxTS, err := repo.ThreadStats(ctx, db, id)
		if err == nil && count > 0 {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"thread:%d:%d:%d"`, id, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	req, msgs, err := h.tickets.Thread(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "request not found")
			return
		}
		failInternal(c, ErrCodeInternal, err)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	ok(c, http.StatusOK, ThreadResponse{Request: *req, Messages: msgs})
}

// ListThreadMessages godoc
// @ID          listThreadMessages
// @Summary     Poll thread messages
// @Description Returns messages strictly newer than ?since= (RFC3339 or a few lenient variants). Unknown ids and bad timestamps yield an empty list.
// @Tags        Chats
// @Produce     json
//
// @Param       id     path   int     true   "Request ID"
// @Param       since  query  string  false  "Lower bound timestamp (exclusive)"  example(2026-01-02T15:04:05Z)
//
// @Success     200  {object}  handlers.MessagesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /chat/{id}/messages [get]
func (h *Handlers) ListThreadMessages(c *gin.Context) {
	id, okID := utils.ParseInt64(c.Param("id"))
	if !okID || id <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "request id must be a positive integer")
		return
	}

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		t := utils.ParseSince(raw)
		since = &t
	}

	msgs, err := h.tickets.ListMessages(c.Request.Context(), id, since)
	if err != nil {
		// tolerate vanished requests: the poller just sees silence
		if errors.Is(err, services.ErrRequestNotFound) {
			ok(c, http.StatusOK, MessagesResponse{Messages: []domain.Message{}})
			return
		}
		failInternal(c, ErrCodeInternal, err)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	ok(c, http.StatusOK, MessagesResponse{Messages: msgs})
}

// AppendThreadMessage godoc
// @ID          appendThreadMessage
// @Summary     Post a thread message
// @Description Stores a message on an existing thread and relays it to the Telegram counterpart (best effort).
// @Tags        Chats
// @Accept      json
// @Produce     json
//
// @Param       id    path  int  true  "Request ID"
// @Param       body  body  handlers.AppendMessagePayload  true  "Message payload"
//
// @Success     201  {object}  handlers.AppendMessageResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chat/{id}/messages [post]
func (h *Handlers) AppendThreadMessage(c *gin.Context) {
	id, okID := utils.ParseInt64(c.Param("id"))
	if !okID || id <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "request id must be a positive integer")
		return
	}

	var req AppendMessagePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "sender_id, sender_type and message are required")
		return
	}

	ctx := c.Request.Context()
	msg, err := h.tickets.AppendMessage(ctx, id, req.SenderID, req.SenderType, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "request not found")
		case errors.Is(err, services.ErrEmptyMessage),
			errors.Is(err, services.ErrInvalidSenderType),
			errors.Is(err, services.ErrTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			failInternal(c, ErrCodeInternal, err)
		}
		return
	}

	if h.notif != nil {
		if ticket, err := h.tickets.Get(ctx, id); err == nil {
			go h.notif.RelayMessage(context.Background(), ticket, msg.SenderType, msg.Body)
		}
	}

	ok(c, http.StatusCreated, AppendMessageResponse{
		MessageID: msg.ID,
		RequestID: msg.RequestID,
		Timestamp: msg.Timestamp,
	})
}

// ListChats godoc
// @ID          listChats
// @Summary     List conversations
// @Description Returns every request with its latest message, most recently updated first. Supports weak ETag via If-None-Match.
// @Tags        Chats
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object}  handlers.OverviewResponse
// @Success     304  {string}  string "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chats [get]
func (h *Handlers) ListChats(c *gin.Context) {
	ctx := c.Request.Context()

	if db := h.serviceDB(); db != nil {
		count, maxTS, err := repo.RequestsStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"chats:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.tickets.Overview(ctx)
	if err != nil {
		failInternal(c, ErrCodeListFailed, err)
		return
	}
	if items == nil {
		items = []services.RequestOverview{}
	}
	ok(c, http.StatusOK, OverviewResponse{Chats: items})
}
