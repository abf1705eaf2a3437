package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"agent-proxy/internal/agent"
	"agent-proxy/pkg/logger"
)

// FunctionSpec describes a callable advertised to the model. The peer
// replies with function_call messages naming one of these.
type FunctionSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// LLMAdapter generates replies through an OpenAI-compatible endpoint
// (LiteLLM in the default deployment).
type LLMAdapter struct {
	client    *openai.Client
	model     string
	functions []FunctionSpec
	logger    *zap.Logger
}

// NewLLMAdapter creates a new LLM adapter.
func NewLLMAdapter(baseURL, apiKey, modelID string) *LLMAdapter {
	// LiteLLM accepts a dummy API key when none is required
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL + "/v1"

	return &LLMAdapter{
		client: openai.NewClientWithConfig(config),
		model:  modelID,
		logger: logger.Named("adapter"),
	}
}

// SetFunctions advertises function specs on every subsequent request.
func (a *LLMAdapter) SetFunctions(specs []FunctionSpec) {
	a.functions = specs
}

// Generate sends the transcript to the model and returns its reply, which
// carries content, a function call, or both.
func (a *LLMAdapter) Generate(ctx context.Context, systemMessage string, history []agent.Message) (agent.Message, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemMessage,
	})
	for _, msg := range history {
		messages = append(messages, toChatMessage(msg))
	}

	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: 0.7,
	}
	for _, spec := range a.functions {
		req.Functions = append(req.Functions, openai.FunctionDefinition{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  spec.Parameters,
		})
	}

	// Retry with linear backoff; LiteLLM occasionally returns transient
	// non-JSON errors under load
	var resp openai.ChatCompletionResponse
	var err error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			a.logger.Warn("retrying LLM request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			time.Sleep(backoff)
		}

		resp, err = a.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}
		a.logger.Error("LLM request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", a.model),
		)
	}
	if err != nil {
		return agent.Message{}, fmt.Errorf("failed to generate response after %d attempts: %w", maxRetries, err)
	}
	if len(resp.Choices) == 0 {
		return agent.Message{}, fmt.Errorf("no choices in LLM response")
	}

	return fromChatMessage(resp.Choices[0].Message), nil
}

// toChatMessage converts a transcript message into the wire shape. Roles
// recorded by the agents map directly; anything unrecognized travels as a
// user message.
func toChatMessage(msg agent.Message) openai.ChatCompletionMessage {
	out := openai.ChatCompletionMessage{
		Role:    msg.Role,
		Content: msg.Content,
	}
	switch msg.Role {
	case openai.ChatMessageRoleAssistant, openai.ChatMessageRoleSystem:
	case openai.ChatMessageRoleFunction:
		out.Name = msg.Name
	default:
		out.Role = openai.ChatMessageRoleUser
	}
	if msg.FunctionCall != nil {
		out.FunctionCall = &openai.FunctionCall{
			Name:      msg.FunctionCall.Name,
			Arguments: msg.FunctionCall.Arguments,
		}
	}
	return out
}

func fromChatMessage(msg openai.ChatCompletionMessage) agent.Message {
	out := agent.Message{
		Role:    msg.Role,
		Content: msg.Content,
	}
	if msg.FunctionCall != nil {
		out.FunctionCall = &agent.FunctionCall{
			Name:      msg.FunctionCall.Name,
			Arguments: msg.FunctionCall.Arguments,
		}
	}
	return out
}
