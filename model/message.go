package model

import (
	"encoding/json"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleFunction  = "function"
)

// Message is one entry of the transcript sent to the chat API each turn.
type Message struct {
	Role      string
	Name      string // Function name for RoleFunction messages
	Content   string
	Call      *FunctionCall // Directive carried by an assistant message
	CallID    string        // Directive this RoleFunction message answers
	Timestamp time.Time
}

// FunctionCall is a directive from the model to invoke one catalog function.
// Arguments is the raw JSON string as emitted by the model.
type FunctionCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ParseArguments decodes Arguments into a JSON object.
// An empty payload is treated as "{}".
func (c FunctionCall) ParseArguments() (map[string]any, error) {
	if c.Arguments == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(c.Arguments), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// Transcript is the ordered, append-only message sequence of one run.
type Transcript []Message

// Append adds msg to the end of the transcript, stamping it if needed.
func (t *Transcript) Append(msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	*t = append(*t, msg)
}

// Messages returns a copy safe to hand to a provider.
func (t Transcript) Messages() []Message {
	out := make([]Message, len(t))
	copy(out, t)
	return out
}

// Last returns the final message, if any.
func (t Transcript) Last() (Message, bool) {
	if len(t) == 0 {
		return Message{}, false
	}
	return t[len(t)-1], true
}
