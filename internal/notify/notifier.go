// Package notify – notification dispatcher.
//
// This file implements the Notifier, which pushes Telegram messages for
// ticket lifecycle events: a new request lands in the admin group with
// action buttons, assignment and resolution fan out to the requester, and
// HTTP-appended messages are relayed to the counterpart.
//
// Every send is best-effort. Failures are logged and counted but never
// propagate to the triggering mutation: a Telegram outage must not block
// ticket writes.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	telebot "gopkg.in/telebot.v3"

	"supportdesk/internal/config"
	"supportdesk/internal/domain"
)

var (
	// notifySends counts outbound notification attempts by kind and outcome.
	notifySends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_sends_total",
			Help: "Total number of outbound Telegram notification attempts.",
		},
		[]string{"kind", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(notifySends)
}

// Sender is the narrow slice of the telebot API the Notifier needs.
// *telebot.Bot satisfies it; tests substitute a fake.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Notifier delivers ticket lifecycle notifications over Telegram.
type Notifier struct {
	Bot           Sender
	AdminGroupID  int64
	WebAppBaseURL string
	SendTimeout   time.Duration
	Breaker       *Breaker
}

// NewNotifier constructs a Notifier from configuration. A nil bot is
// tolerated: sends are then reported as failures without panicking, which
// keeps the HTTP API usable when the bot could not start.
func NewNotifier(bot Sender, cfg config.Config) *Notifier {
	return &Notifier{
		Bot:           bot,
		AdminGroupID:  cfg.Telegram.AdminGroupID,
		WebAppBaseURL: cfg.WebAppBaseURL,
		SendTimeout:   cfg.Telegram.SendTimeout,
		Breaker:       NewBreaker(cfg.Breaker),
	}
}

// ChatURL returns the WebApp conversation URL for a ticket.
func (n *Notifier) ChatURL(req *domain.Request) string {
	return fmt.Sprintf("%s/chat/%d?user_id=%d", n.WebAppBaseURL, req.ID, req.UserID)
}

// NewRequest announces a freshly created ticket: an actionable message in
// the admin group and a confirmation DM to the requester. Both sends are
// independent; one failing does not stop the other.
func (n *Notifier) NewRequest(ctx context.Context, req *domain.Request) {
	group := &telebot.ReplyMarkup{}
	btnOpen := group.URL("Open Support Chat", n.ChatURL(req))
	btnAssign := group.Data("Assign to me", Callback{Action: ActionAssign, RequestID: req.ID}.Encode())
	btnSolve := group.Data("Solve", Callback{Action: ActionSolve, RequestID: req.ID}.Encode())
	group.Inline(group.Row(btnOpen), group.Row(btnAssign, btnSolve))

	text := fmt.Sprintf(
		"📌 New Support Request #%d\n\n"+
			"👤 User: %d\n"+
			"📝 Issue:\n%s",
		req.ID, req.UserID, req.Issue,
	)
	n.send(ctx, "new_request_group", telebot.ChatID(n.AdminGroupID), text, group)

	user := &telebot.ReplyMarkup{}
	user.Inline(user.Row(n.chatButton(user, req)))
	n.send(ctx, "new_request_user", telebot.ChatID(req.UserID),
		fmt.Sprintf("✅ Your support request #%d has been created. An admin will be with you shortly.", req.ID),
		user)
}

// Assigned tells the requester their ticket was picked up and announces the
// claim in the admin group.
func (n *Notifier) Assigned(ctx context.Context, req *domain.Request, adminName string) {
	user := &telebot.ReplyMarkup{}
	user.Inline(user.Row(n.chatButton(user, req)))
	n.send(ctx, "assigned_user", telebot.ChatID(req.UserID),
		fmt.Sprintf("👨‍💼 Admin %s has been assigned to your request #%d.", adminName, req.ID),
		user)

	n.send(ctx, "assigned_group", telebot.ChatID(n.AdminGroupID),
		fmt.Sprintf("✅ Request #%d assigned to %s.", req.ID, adminName))
}

// Resolved delivers the solution to the requester and closes the loop in
// the admin group.
func (n *Notifier) Resolved(ctx context.Context, req *domain.Request, adminName string) {
	solution := ""
	if req.Solution != nil {
		solution = *req.Solution
	}
	n.send(ctx, "resolved_user", telebot.ChatID(req.UserID),
		fmt.Sprintf("✔️ Your request #%d has been resolved.\n\n💡 Solution:\n%s", req.ID, solution))

	n.send(ctx, "resolved_group", telebot.ChatID(n.AdminGroupID),
		fmt.Sprintf("✔️ Request #%d resolved by %s.", req.ID, adminName))
}

// DM sends a direct message to a single Telegram user through the breaker.
func (n *Notifier) DM(ctx context.Context, userID int64, text string, opts ...interface{}) {
	n.send(ctx, "dm", telebot.ChatID(userID), text, opts...)
}

// RelayMessage forwards an HTTP-appended thread message to the counterpart:
// admin-authored text goes to the requester, user-authored text to the
// assigned admin (or the admin group when nobody claimed the ticket yet).
func (n *Notifier) RelayMessage(ctx context.Context, req *domain.Request, senderType, body string) {
	switch senderType {
	case domain.SenderAdmin:
		user := &telebot.ReplyMarkup{}
		user.Inline(user.Row(n.chatButton(user, req)))
		n.send(ctx, "relay_to_user", telebot.ChatID(req.UserID),
			fmt.Sprintf("💬 Support reply on request #%d:\n\n%s", req.ID, body), user)
	case domain.SenderUser:
		text := fmt.Sprintf("💬 New message on request #%d:\n\n%s", req.ID, body)
		if req.AssignedAdmin != nil {
			n.send(ctx, "relay_to_admin", telebot.ChatID(*req.AssignedAdmin), text)
		} else {
			n.send(ctx, "relay_to_group", telebot.ChatID(n.AdminGroupID), text)
		}
	}
	// system messages are audit entries; nothing to relay
}

// chatButton builds a WebApp button opening the conversation view, falling
// back to a plain URL button when no WebApp base is configured.
func (n *Notifier) chatButton(m *telebot.ReplyMarkup, req *domain.Request) telebot.Btn {
	url := n.ChatURL(req)
	if n.WebAppBaseURL == "" {
		return m.URL("Open Chat", url)
	}
	return m.WebApp("Open Chat", &telebot.WebApp{URL: url})
}

// send pushes one message through the breaker with a bounded timeout.
// Failures are logged and counted; the error never escapes.
func (n *Notifier) send(ctx context.Context, kind string, to telebot.Recipient, what interface{}, opts ...interface{}) {
	if n.Bot == nil {
		notifySends.WithLabelValues(kind, "failure").Inc()
		log.Warn().Str("kind", kind).Msg("notification dropped: bot not configured")
		return
	}

	timeout := n.SendTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	breaker := n.Breaker
	if breaker == nil {
		breaker = defaultBreaker()
	}

	err := breaker.Execute(sendCtx, func() error {
		_, err := n.Bot.Send(to, what, opts...)
		return err
	})
	if err != nil {
		notifySends.WithLabelValues(kind, "failure").Inc()
		log.Error().Err(err).Str("kind", kind).Msg("notification send failed")
		return
	}
	notifySends.WithLabelValues(kind, "success").Inc()
}
