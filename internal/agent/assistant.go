package agent

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"agent-proxy/pkg/logger"
)

// DefaultAssistantSystemMessage instructs the peer to solve tasks with code
// the proxy can execute.
const DefaultAssistantSystemMessage = `You are a helpful AI assistant. Solve tasks using your coding and language skills. Suggest python code (in a python coding block) or shell script (in a sh coding block) for the user to execute. When everything is done, reply "TERMINATE".`

// Assistant is the LLM-backed peer: every received message is answered with
// a generated reply. From the proxy's point of view it is an opaque
// counterpart.
type Assistant struct {
	ChatAgent
	generator Generator
	logger    *zap.Logger
}

// NewAssistant creates an assistant backed by the given generator. An empty
// system message falls back to DefaultAssistantSystemMessage.
func NewAssistant(name, systemMessage string, generator Generator) *Assistant {
	if systemMessage == "" {
		systemMessage = DefaultAssistantSystemMessage
	}
	return &Assistant{
		ChatAgent: NewChatAgent(name, systemMessage),
		generator: generator,
		logger:    logger.Named("assistant").With(zap.String("agent", name)),
	}
}

// Send records the outbound message and delivers it to the recipient.
func (a *Assistant) Send(ctx context.Context, message any, recipient Agent) error {
	return a.deliver(ctx, message, recipient, a)
}

// Receive answers the inbound message with a generated reply.
func (a *Assistant) Receive(ctx context.Context, message any, sender Agent) error {
	_ = a.ChatAgent.Receive(ctx, message, sender)

	reply, err := a.generator.Generate(ctx, a.SystemMessage(), a.Transcript(sender.Name()))
	if err != nil {
		a.logger.Error("reply generation failed", zap.Error(err))
		return fmt.Errorf("generate reply: %w", err)
	}
	reply.Role = openai.ChatMessageRoleAssistant
	a.logger.Debug("reply generated",
		zap.Bool("has_function_call", reply.FunctionCall != nil),
		zap.Int("content_len", len(reply.Content)),
	)
	return a.Send(ctx, reply, sender)
}
