package agent

import "context"

// Agent is a conversational participant. Send delivers a message to the
// recipient synchronously; Receive handles one inbound message to
// completion before returning.
type Agent interface {
	Name() string
	Receive(ctx context.Context, message any, sender Agent) error
	Send(ctx context.Context, message any, recipient Agent) error
}

// Generator produces a reply for a transcript. The LLM adapter implements
// this; tests script it.
type Generator interface {
	Generate(ctx context.Context, systemMessage string, history []Message) (Message, error)
}

// ChatAgent is the embeddable base for agents: it owns per-counterpart
// transcripts (in memory only, for the process lifetime) and delivers
// outbound messages by invoking the recipient's Receive.
type ChatAgent struct {
	name          string
	systemMessage string
	conversations map[string][]Message
}

// NewChatAgent creates the base state for a named agent.
func NewChatAgent(name, systemMessage string) ChatAgent {
	return ChatAgent{
		name:          name,
		systemMessage: systemMessage,
		conversations: make(map[string][]Message),
	}
}

// Name returns the agent's name.
func (a *ChatAgent) Name() string { return a.name }

// SystemMessage returns the agent's system message.
func (a *ChatAgent) SystemMessage() string { return a.systemMessage }

// record appends a message to the transcript with the named counterpart.
func (a *ChatAgent) record(counterpart string, msg Message) {
	a.conversations[counterpart] = append(a.conversations[counterpart], msg)
}

// Receive records the inbound message. Embedding agents call this before
// running their own turn logic.
func (a *ChatAgent) Receive(ctx context.Context, message any, sender Agent) error {
	a.record(sender.Name(), AsMessage(message))
	return nil
}

// deliver records the outbound message and hands it to the recipient as
// coming from the embedding agent.
func (a *ChatAgent) deliver(ctx context.Context, message any, recipient, from Agent) error {
	a.record(recipient.Name(), AsMessage(message))
	return recipient.Receive(ctx, message, from)
}

// Transcript returns a copy of the messages exchanged with the named
// counterpart, oldest first.
func (a *ChatAgent) Transcript(counterpart string) []Message {
	msgs := a.conversations[counterpart]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
