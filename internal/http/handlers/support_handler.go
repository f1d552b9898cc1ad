// Support request HTTP handlers.
//
// This file exposes REST endpoints for the request resource:
//   - POST /support-request        (create a ticket)
//   - GET  /requests               (list, optional status filter)
//   - PUT  /requests/{id}          (partial update)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses. Telegram
// notifications are dispatched on separate goroutines so delivery latency
// never shows up in API response times.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"supportdesk/internal/domain"
	"supportdesk/internal/services"
	"supportdesk/internal/utils"
)

//
// Service contracts (context-aware)
//

// TicketService defines the request lifecycle operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use and honor the
// provided context.
type TicketService interface {
	// Create opens a ticket and seeds its thread with the issue text.
	Create(ctx context.Context, userID int64, issue string) (*domain.Request, error)
	// Get returns a single request by id.
	Get(ctx context.Context, requestID int64) (*domain.Request, error)
	// AppendMessage adds a message to an existing thread.
	AppendMessage(ctx context.Context, requestID, senderID int64, senderType, body string) (*domain.Message, error)
	// ListMessages returns thread messages, optionally strictly after since.
	ListMessages(ctx context.Context, requestID int64, since *time.Time) ([]domain.Message, error)
	// Thread returns a request together with its full ordered message list.
	Thread(ctx context.Context, requestID int64) (*domain.Request, []domain.Message, error)
	// Update applies a partial update and returns the fresh snapshot.
	Update(ctx context.Context, requestID int64, upd services.RequestUpdate) (*domain.Request, error)
	// List returns requests filtered by status ("" for all, "open" for
	// pending and in_progress).
	List(ctx context.Context, statusFilter string) ([]domain.Request, error)
	// Overview returns every request paired with its latest message.
	Overview(ctx context.Context) ([]services.RequestOverview, error)
}

// LogService defines the log sink operations consumed by HTTP handlers.
type LogService interface {
	Append(ctx context.Context, level, message, logCtx string) error
	List(ctx context.Context, level string, limit int) ([]domain.Log, error)
	Recent(ctx context.Context, hours int, level string, limit int) ([]domain.Log, error)
}

// Notifier pushes best-effort Telegram notifications. Implementations must
// never block beyond their internal timeout and never return errors to the
// caller.
type Notifier interface {
	NewRequest(ctx context.Context, req *domain.Request)
	RelayMessage(ctx context.Context, req *domain.Request, senderType, body string)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for requests, threads, and logs.
type Handlers struct {
	tickets TicketService
	logs    LogService
	notif   Notifier
}

// New constructs a Handlers instance bound to the given services. A nil
// notifier disables notifications.
func New(tickets TicketService, logs LogService, notif Notifier) *Handlers {
	return &Handlers{tickets: tickets, logs: logs, notif: notif}
}

//
// DTOs
//

// CreateRequestPayload is the JSON payload for opening a ticket.
type CreateRequestPayload struct {
	// UserID is the Telegram id of the requester.
	UserID int64 `json:"user_id" binding:"required" example:"123456789"`
	// Issue is the problem description; becomes the first thread message.
	Issue string `json:"issue" binding:"required" example:"I cannot log in"`
}

// CreateRequestResponse acknowledges a created ticket.
type CreateRequestResponse struct {
	RequestID int64     `json:"request_id" example:"42"`
	Status    string    `json:"status" example:"pending"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateRequestPayload carries the partial update for a request. Absent
// fields are left untouched.
type UpdateRequestPayload struct {
	Status        *string `json:"status" example:"in_progress"`
	AssignedAdmin *int64  `json:"assigned_admin" example:"987654321"`
	Solution      *string `json:"solution" example:"Reset the password"`
}

// ListRequestsResponse wraps the request list.
type ListRequestsResponse struct {
	Requests []domain.Request `json:"requests"`
}

//
// Handlers
//

// CreateSupportRequest godoc
// @ID          createSupportRequest
// @Summary     Open a support request
// @Description Creates a ticket for a Telegram user and seeds the thread with the issue text.
// @Tags        Requests
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateRequestPayload  true  "Create request payload"
//
// @Success     201  {object}  handlers.CreateRequestResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /support-request [post]
func (h *Handlers) CreateSupportRequest(c *gin.Context) {
	var req CreateRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id and issue are required")
		return
	}
	if req.UserID <= 0 || strings.TrimSpace(req.Issue) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id and issue are required")
		return
	}

	created, err := h.tickets.Create(c.Request.Context(), req.UserID, req.Issue)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyIssue), errors.Is(err, services.ErrTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			failInternal(c, ErrCodeCreateFailed, err)
		}
		return
	}

	if h.notif != nil {
		go h.notif.NewRequest(context.Background(), created)
	}

	ok(c, http.StatusCreated, CreateRequestResponse{
		RequestID: created.ID,
		Status:    created.Status,
		CreatedAt: created.CreatedAt,
	})
}

// UpdateRequest godoc
// @ID          updateRequest
// @Summary     Update a request
// @Description Applies a partial update (status, assigned admin, solution) and returns the fresh snapshot. Status values are normalized.
// @Tags        Requests
// @Accept      json
// @Produce     json
//
// @Param       id    path  int  true  "Request ID"
// @Param       body  body  handlers.UpdateRequestPayload  true  "Fields to update"
//
// @Success     200  {object}  domain.Request
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests/{id} [put]
func (h *Handlers) UpdateRequest(c *gin.Context) {
	id, okID := utils.ParseInt64(c.Param("id"))
	if !okID || id <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "request id must be a positive integer")
		return
	}

	var req UpdateRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.Status == nil && req.AssignedAdmin == nil && req.Solution == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "at least one field must be provided")
		return
	}

	updated, err := h.tickets.Update(c.Request.Context(), id, services.RequestUpdate{
		Status:        req.Status,
		AssignedAdmin: req.AssignedAdmin,
		Solution:      req.Solution,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "request not found")
		case errors.Is(err, services.ErrInvalidStatus):
			fail(c, http.StatusBadRequest, ErrCodeInvalidStatus, err.Error())
		default:
			failInternal(c, ErrCodeUpdateFailed, err)
		}
		return
	}

	ok(c, http.StatusOK, updated)
}

// ListRequests godoc
// @ID          listRequests
// @Summary     List requests
// @Description Returns requests newest first. The status filter accepts canonical values plus "open" (pending and in_progress) and common aliases.
// @Tags        Requests
// @Produce     json
//
// @Param       status  query  string  false  "Status filter"  example(open)
//
// @Success     200  {object}  handlers.ListRequestsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown status"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /requests [get]
func (h *Handlers) ListRequests(c *gin.Context) {
	reqs, err := h.tickets.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidStatus, err.Error())
			return
		}
		failInternal(c, ErrCodeListFailed, err)
		return
	}
	if reqs == nil {
		reqs = []domain.Request{}
	}
	ok(c, http.StatusOK, ListRequestsResponse{Requests: reqs})
}
