package agent

import (
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// FunctionCall names a registered function together with the raw argument
// string produced by the model. The arguments are not guaranteed to be
// well-formed JSON.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is the unit of exchange between agents.
type Message struct {
	Role         string        `json:"role,omitempty"`
	Content      string        `json:"content,omitempty"`
	Name         string        `json:"name,omitempty"`
	FunctionCall *FunctionCall `json:"function_call,omitempty"`
}

// AsMessage normalizes the receive-boundary union. Bare text becomes a user
// message; Message values pass through; loosely typed maps are read for the
// documented fields and everything else in them is ignored. Whatever comes
// in, what comes out is a Message.
func AsMessage(v any) Message {
	switch m := v.(type) {
	case Message:
		return m
	case *Message:
		if m != nil {
			return *m
		}
		return Message{}
	case string:
		return Message{Role: openai.ChatMessageRoleUser, Content: m}
	case map[string]any:
		msg := Message{}
		if s, ok := m["role"].(string); ok {
			msg.Role = s
		}
		if s, ok := m["content"].(string); ok {
			msg.Content = s
		}
		if s, ok := m["name"].(string); ok {
			msg.Name = s
		}
		if fc, ok := m["function_call"].(map[string]any); ok {
			call := &FunctionCall{}
			if s, ok := fc["name"].(string); ok {
				call.Name = s
			}
			if s, ok := fc["arguments"].(string); ok {
				call.Arguments = s
			}
			msg.FunctionCall = call
		}
		return msg
	default:
		return Message{Role: openai.ChatMessageRoleUser, Content: fmt.Sprint(v)}
	}
}

// TerminationFunc decides whether a received message ends the conversation.
type TerminationFunc func(Message) bool

// DefaultIsTermination reports messages whose content is the literal
// TERMINATE marker.
func DefaultIsTermination(msg Message) bool {
	return msg.Content == "TERMINATE"
}
