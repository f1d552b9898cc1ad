// Package notify delivers Telegram notifications for ticket lifecycle events
// and owns the inline-keyboard callback wire format.
//
// This file implements the typed callback codec. Buttons carry a compact
// "action_requestID[_adminID]" string; both sides go through Callback so a
// malformed payload is rejected in one place instead of scattered string
// splitting in handlers.
package notify

import (
	"fmt"
	"strconv"
	"strings"
)

// Action identifies what an inline button press asks for.
type Action string

// Known callback actions.
const (
	ActionAssign  Action = "assign"
	ActionView    Action = "view"
	ActionChat    Action = "chat"
	ActionSolve   Action = "solve"
	ActionResolve Action = "resolve"
)

// valid reports whether a is a known action.
func (a Action) valid() bool {
	switch a {
	case ActionAssign, ActionView, ActionChat, ActionSolve, ActionResolve:
		return true
	}
	return false
}

// Callback is the decoded payload of an inline button press.
type Callback struct {
	Action    Action
	RequestID int64
	AdminID   int64 // optional; 0 when absent
}

// Encode renders the wire form "action_requestID" or
// "action_requestID_adminID" when AdminID is set.
func (c Callback) Encode() string {
	if c.AdminID != 0 {
		return fmt.Sprintf("%s_%d_%d", c.Action, c.RequestID, c.AdminID)
	}
	return fmt.Sprintf("%s_%d", c.Action, c.RequestID)
}

// ParseCallback decodes callback data back into a Callback. Telebot prefixes
// unique-button payloads with "\f"; that is stripped before parsing. Unknown
// actions, wrong arity, or non-numeric ids yield an error.
func ParseCallback(data string) (Callback, error) {
	data = strings.TrimLeft(data, "\f")
	data = strings.TrimSpace(data)
	if data == "" {
		return Callback{}, fmt.Errorf("empty callback data")
	}

	parts := strings.Split(data, "_")
	if len(parts) < 2 || len(parts) > 3 {
		return Callback{}, fmt.Errorf("malformed callback data %q", data)
	}

	action := Action(parts[0])
	if !action.valid() {
		return Callback{}, fmt.Errorf("unknown callback action %q", parts[0])
	}

	reqID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || reqID <= 0 {
		return Callback{}, fmt.Errorf("bad request id in callback %q", data)
	}

	cb := Callback{Action: action, RequestID: reqID}
	if len(parts) == 3 {
		adminID, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil || adminID == 0 {
			return Callback{}, fmt.Errorf("bad admin id in callback %q", data)
		}
		cb.AdminID = adminID
	}
	return cb, nil
}
