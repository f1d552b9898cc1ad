// Package bot – update routing.
//
// This file wires telebot handlers to the ticket service. Commands drive the
// session state machine, free text is interpreted against the sender's
// current state, and inline button presses arrive as encoded callbacks.
// Handlers run on telebot's own goroutines, so blocking database calls here
// never stall update delivery.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	telebot "gopkg.in/telebot.v3"

	"supportdesk/internal/domain"
	"supportdesk/internal/notify"
	"supportdesk/internal/services"
)

// Router owns the telebot handler set and the conversation sessions.
type Router struct {
	Bot           *telebot.Bot
	Requests      *services.RequestService
	Notifier      *notify.Notifier
	Sessions      *SessionStore
	AdminGroupID  int64
	WebAppBaseURL string
}

// NewRouter builds a Router. The bot may be nil in tests; Register must only
// be called with a live bot.
func NewRouter(b *telebot.Bot, requests *services.RequestService, notifier *notify.Notifier, adminGroupID int64, webAppBaseURL string) *Router {
	return &Router{
		Bot:           b,
		Requests:      requests,
		Notifier:      notifier,
		Sessions:      NewSessionStore(),
		AdminGroupID:  adminGroupID,
		WebAppBaseURL: webAppBaseURL,
	}
}

// Register attaches all handlers to the bot.
func (r *Router) Register() {
	r.Bot.Handle("/start", r.handleStart)
	r.Bot.Handle("/help", r.handleHelp)
	r.Bot.Handle("/request", r.handleRequest)
	r.Bot.Handle("/list", r.handleList)
	r.Bot.Handle(telebot.OnText, r.handleText)
	r.Bot.Handle(telebot.OnCallback, r.handleCallback)
}

func (r *Router) handleStart(c telebot.Context) error {
	// deep link /start request lands here when the WebApp form was skipped
	if m := c.Message(); m != nil && strings.TrimSpace(m.Payload) == "request" {
		return r.handleRequest(c)
	}

	r.Sessions.Clear(c.Sender().ID)
	return c.Send(
		"👋 Welcome to support!\n\n" +
			"Use /request to open a new support request, or just keep " +
			"messaging here once you have one open. /help lists everything.")
}

func (r *Router) handleHelp(c telebot.Context) error {
	help := "ℹ️ Commands:\n\n" +
		"/request – open a new support request\n" +
		"/start – back to the beginning\n" +
		"/help – this message"
	if c.Chat() != nil && c.Chat().ID == r.AdminGroupID {
		help += "\n/list [status] – list requests (admin group)"
	}
	return c.Send(help)
}

func (r *Router) handleRequest(c telebot.Context) error {
	r.Sessions.AwaitIssue(c.Sender().ID)

	markup := &telebot.ReplyMarkup{}
	if r.WebAppBaseURL != "" {
		btn := markup.WebApp("Open Request Form", &telebot.WebApp{URL: r.WebAppBaseURL + "/new-request"})
		markup.Inline(markup.Row(btn))
		return c.Send("📝 Describe your issue in one message, or use the form below.", markup)
	}
	return c.Send("📝 Describe your issue in one message.")
}

func (r *Router) handleList(c telebot.Context) error {
	if c.Chat() == nil || c.Chat().ID != r.AdminGroupID {
		return c.Send("This command only works in the admin group.")
	}

	filter := services.StatusFilterOpen
	if args := c.Args(); len(args) > 0 {
		filter = args[0]
	}

	reqs, err := r.Requests.List(context.Background(), filter)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			return c.Send(fmt.Sprintf("Unknown status %q. Try open, pending, in_progress or resolved.", filter))
		}
		log.Error().Err(err).Msg("bot: list requests failed")
		return c.Send("❌ Could not load requests.")
	}
	if len(reqs) == 0 {
		return c.Send(fmt.Sprintf("No %s requests.", filter))
	}

	markup := &telebot.ReplyMarkup{}
	var rows []telebot.Row
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📋 Requests (%s):\n\n", filter))
	for _, req := range reqs {
		b.WriteString(fmt.Sprintf("%s #%d – %s\n", statusIcon(req.Status), req.ID, firstLine(req.Issue)))
		btn := markup.Data(
			fmt.Sprintf("#%d details", req.ID),
			notify.Callback{Action: notify.ActionView, RequestID: req.ID}.Encode(),
		)
		rows = append(rows, markup.Row(btn))
	}
	markup.Inline(rows...)
	return c.Send(b.String(), markup)
}

func (r *Router) handleText(c telebot.Context) error {
	if strings.HasPrefix(c.Text(), "/") {
		return nil
	}
	if c.Chat() == nil || c.Chat().Type != telebot.ChatPrivate {
		return nil
	}

	sender := c.Sender()
	sess := r.Sessions.Get(sender.ID)

	switch sess.State {
	case StateAwaitingIssue:
		return r.createFromText(c, sender.ID)
	case StateAwaitingSolution:
		return r.resolveFromText(c, sender.ID, sess.RequestID)
	default:
		return r.continueThread(c, sender.ID)
	}
}

// createFromText turns the incoming text into a new ticket. The session is
// cleared on every exit path so a failed create does not trap the user.
func (r *Router) createFromText(c telebot.Context, userID int64) error {
	defer r.Sessions.Clear(userID)

	ctx := context.Background()
	req, err := r.Requests.Create(ctx, userID, c.Text())
	if err != nil {
		if errors.Is(err, services.ErrEmptyIssue) {
			return c.Send("Please describe the issue in a bit more detail.")
		}
		log.Error().Err(err).Int64("user_id", userID).Msg("bot: create request failed")
		return c.Send("❌ Could not create your request, please try again.")
	}

	r.Notifier.NewRequest(ctx, req)
	return c.Send(fmt.Sprintf("✅ Support request #%d created. An admin will be with you shortly.", req.ID))
}

// resolveFromText closes requestID with the incoming text as solution.
func (r *Router) resolveFromText(c telebot.Context, adminID, requestID int64) error {
	defer r.Sessions.Clear(adminID)

	ctx := context.Background()
	req, err := r.Requests.Resolve(ctx, requestID, c.Text(), adminID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptySolution):
			return c.Send("The solution text cannot be empty. Press Solve again to retry.")
		case errors.Is(err, services.ErrRequestNotFound):
			return c.Send(fmt.Sprintf("Request #%d no longer exists.", requestID))
		}
		log.Error().Err(err).Int64("request_id", requestID).Msg("bot: resolve failed")
		return c.Send("❌ Could not resolve the request, please try again.")
	}

	r.Notifier.Resolved(ctx, req, senderName(c.Sender()))
	return c.Send(fmt.Sprintf("✔️ Request #%d resolved.", req.ID))
}

// continueThread appends idle-state private text to the sender's open ticket.
func (r *Router) continueThread(c telebot.Context, userID int64) error {
	ctx := context.Background()
	req, err := r.Requests.OpenForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			return c.Send("You have no open request. Use /request to open one.")
		}
		log.Error().Err(err).Int64("user_id", userID).Msg("bot: open request lookup failed")
		return c.Send("❌ Could not process your message, please try again.")
	}

	if _, err := r.Requests.AppendMessage(ctx, req.ID, userID, domain.SenderUser, c.Text()); err != nil {
		log.Error().Err(err).Int64("request_id", req.ID).Msg("bot: append message failed")
		return c.Send("❌ Could not deliver your message, please try again.")
	}

	r.Notifier.RelayMessage(ctx, req, domain.SenderUser, c.Text())
	return c.Send(fmt.Sprintf("✅ Added to request #%d.", req.ID))
}

func (r *Router) handleCallback(c telebot.Context) error {
	cb, err := notify.ParseCallback(c.Callback().Data)
	if err != nil {
		log.Warn().Err(err).Str("data", c.Callback().Data).Msg("bot: bad callback payload")
		return c.Respond(&telebot.CallbackResponse{Text: "Unknown action"})
	}

	switch cb.Action {
	case notify.ActionAssign:
		return r.assignCallback(c, cb.RequestID)
	case notify.ActionSolve, notify.ActionResolve:
		return r.solveCallback(c, cb.RequestID)
	case notify.ActionView, notify.ActionChat:
		return r.viewCallback(c, cb.RequestID)
	}
	return c.Respond(&telebot.CallbackResponse{Text: "Unknown action"})
}

func (r *Router) assignCallback(c telebot.Context, requestID int64) error {
	ctx := context.Background()
	admin := c.Sender()

	req, err := r.Requests.Assign(ctx, requestID, admin.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyAssigned):
			return c.Respond(&telebot.CallbackResponse{Text: "Already assigned"})
		case errors.Is(err, services.ErrRequestNotFound):
			return c.Respond(&telebot.CallbackResponse{Text: "Request no longer exists"})
		}
		log.Error().Err(err).Int64("request_id", requestID).Msg("bot: assign failed")
		return c.Respond(&telebot.CallbackResponse{Text: "Assign failed"})
	}

	r.Notifier.Assigned(ctx, req, senderName(admin))

	// drop the assign button from the announcement
	markup := &telebot.ReplyMarkup{}
	btnOpen := markup.URL("Open Support Chat", r.Notifier.ChatURL(req))
	btnSolve := markup.Data("Solve", notify.Callback{Action: notify.ActionSolve, RequestID: req.ID}.Encode())
	markup.Inline(markup.Row(btnOpen), markup.Row(btnSolve))
	if err := c.Edit(markup); err != nil {
		log.Warn().Err(err).Int64("request_id", req.ID).Msg("bot: edit announcement failed")
	}

	return c.Respond(&telebot.CallbackResponse{Text: fmt.Sprintf("Request #%d is yours", req.ID)})
}

func (r *Router) solveCallback(c telebot.Context, requestID int64) error {
	ctx := context.Background()
	admin := c.Sender()

	req, err := r.Requests.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			return c.Respond(&telebot.CallbackResponse{Text: "Request no longer exists"})
		}
		log.Error().Err(err).Int64("request_id", requestID).Msg("bot: solve lookup failed")
		return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong"})
	}

	r.Sessions.AwaitSolution(admin.ID, requestID)
	r.Notifier.DM(ctx, admin.ID,
		fmt.Sprintf("💡 Send the solution for request #%d as your next message.", requestID))

	// show the rest of the group that a solution is on its way
	markup := &telebot.ReplyMarkup{}
	btnOpen := markup.URL("Open Support Chat", r.Notifier.ChatURL(req))
	btnPending := markup.Data(
		fmt.Sprintf("⏳ Awaiting details from %s", senderName(admin)),
		notify.Callback{Action: notify.ActionView, RequestID: requestID}.Encode(),
	)
	markup.Inline(markup.Row(btnOpen), markup.Row(btnPending))
	if err := c.Edit(markup); err != nil {
		log.Warn().Err(err).Int64("request_id", requestID).Msg("bot: edit announcement failed")
	}

	return c.Respond(&telebot.CallbackResponse{Text: "Check your DMs for the next step"})
}

func (r *Router) viewCallback(c telebot.Context, requestID int64) error {
	ctx := context.Background()

	req, msgs, err := r.Requests.Thread(ctx, requestID)
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			return c.Respond(&telebot.CallbackResponse{Text: "Request no longer exists"})
		}
		log.Error().Err(err).Int64("request_id", requestID).Msg("bot: thread lookup failed")
		return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong"})
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s Request #%d (%s)\n👤 User: %d\n\n📝 %s\n",
		statusIcon(req.Status), req.ID, req.Status, req.UserID, req.Issue))
	if req.AssignedAdmin != nil {
		b.WriteString(fmt.Sprintf("👨‍💼 Assigned: %d\n", *req.AssignedAdmin))
	}
	if req.Solution != nil {
		b.WriteString(fmt.Sprintf("💡 Solution: %s\n", *req.Solution))
	}
	if len(msgs) > 0 {
		b.WriteString("\n--- Thread ---\n")
		for _, m := range msgs {
			b.WriteString(fmt.Sprintf("[%s] %s: %s\n",
				m.Timestamp.Format("2006-01-02 15:04"), m.SenderType, m.Body))
		}
	}

	r.Notifier.DM(ctx, c.Sender().ID, b.String())
	return c.Respond()
}

func statusIcon(status string) string {
	switch status {
	case domain.StatusPending:
		return "🟢"
	case domain.StatusInProgress:
		return "🟡"
	case domain.StatusResolved:
		return "🔴"
	}
	return "⚪"
}

// firstLine shortens an issue for list views.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	runes := []rune(s)
	if len(runes) > 60 {
		return string(runes[:57]) + "..."
	}
	return s
}

// senderName prefers the username, falling back to first name or the raw id.
func senderName(u *telebot.User) string {
	if u == nil {
		return "admin"
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return fmt.Sprintf("%d", u.ID)
}
