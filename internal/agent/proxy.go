package agent

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"agent-proxy/internal/codeexec"
	"agent-proxy/internal/functions"
	apperrors "agent-proxy/pkg/errors"
	"agent-proxy/pkg/logger"
)

// HumanInputMode controls when the proxy solicits operator feedback.
type HumanInputMode string

const (
	// InputModeAlways prompts on every received message.
	InputModeAlways HumanInputMode = "ALWAYS"
	// InputModeTerminate prompts only on termination messages or when the
	// consecutive auto-reply limit is reached.
	InputModeTerminate HumanInputMode = "TERMINATE"
	// InputModeNever never prompts; the limit and termination conditions
	// end the conversation instead.
	InputModeNever HumanInputMode = "NEVER"
)

// DefaultMaxConsecutiveAutoReply is the auto-reply limit applied when the
// options leave it unset.
const DefaultMaxConsecutiveAutoReply = 100

const exitReply = "exit"

// Prompter solicits one line of operator feedback. Implementations block
// until input is available; tests substitute scripted doubles.
type Prompter interface {
	Prompt(prompt string) (string, error)
}

// ProxyOptions configure a UserProxy at construction.
type ProxyOptions struct {
	SystemMessage string
	// HumanInputMode defaults to InputModeAlways.
	HumanInputMode HumanInputMode
	// MaxConsecutiveAutoReply gates auto replies when the mode is not
	// ALWAYS; zero or negative means DefaultMaxConsecutiveAutoReply.
	MaxConsecutiveAutoReply int
	// IsTermination defaults to DefaultIsTermination.
	IsTermination TerminationFunc
	// Functions may be nil when no functions are exposed to the peer.
	Functions *functions.Registry
	// Executor runs extracted code blocks. Nil disables the code path
	// (blocks fail with a synthetic error result).
	Executor codeexec.Executor
	// Prompter supplies human feedback. Nil behaves like an operator who
	// always skips.
	Prompter Prompter
	// WorkDir is handed to the execution service.
	WorkDir string
	// DisableSandbox turns off the sandbox request flag; default is on.
	DisableSandbox bool
}

// UserProxy is the turn controller: it stands in for the human operator,
// decides per message whether to solicit input, reply automatically or stop,
// and dispatches auto replies to function calls or code execution.
//
// State is per sender and mutated only by the goroutine handling that
// sender's turn; concurrent senders must use separate UserProxy instances or
// serialize externally.
type UserProxy struct {
	ChatAgent

	mode          HumanInputMode
	maxAutoReply  int
	counters      map[string]int
	isTermination TerminationFunc
	functions     *functions.Registry
	executor      codeexec.Executor
	prompter      Prompter
	workDir       string
	sandbox       bool
	// execHandle is the opaque execution-context handle returned by the
	// last execution, threaded into the next one. Kept separate from the
	// sandbox flag on purpose.
	execHandle string
	logger     *zap.Logger
}

// NewUserProxy validates the options and builds a proxy. The counter map is
// owned by the instance and never shared.
func NewUserProxy(name string, opts ProxyOptions) (*UserProxy, error) {
	mode := opts.HumanInputMode
	if mode == "" {
		mode = InputModeAlways
	}
	switch mode {
	case InputModeAlways, InputModeTerminate, InputModeNever:
	default:
		return nil, apperrors.NewUnknownInputMode(string(mode))
	}

	maxAutoReply := opts.MaxConsecutiveAutoReply
	if maxAutoReply <= 0 {
		maxAutoReply = DefaultMaxConsecutiveAutoReply
	}

	isTermination := opts.IsTermination
	if isTermination == nil {
		isTermination = DefaultIsTermination
	}

	return &UserProxy{
		ChatAgent:     NewChatAgent(name, opts.SystemMessage),
		mode:          mode,
		maxAutoReply:  maxAutoReply,
		counters:      make(map[string]int),
		isTermination: isTermination,
		functions:     opts.Functions,
		executor:      opts.Executor,
		prompter:      opts.Prompter,
		workDir:       opts.WorkDir,
		sandbox:       !opts.DisableSandbox,
		logger:        logger.Named("proxy").With(zap.String("agent", name)),
	}, nil
}

// autoReplyCount returns the consecutive auto-reply count for a sender,
// zero for senders never seen.
func (u *UserProxy) autoReplyCount(sender string) int {
	return u.counters[sender]
}

func (u *UserProxy) resetAutoReplyCount(sender string) {
	u.counters[sender] = 0
}

// Send records the outbound message and delivers it to the recipient.
func (u *UserProxy) Send(ctx context.Context, message any, recipient Agent) error {
	return u.deliver(ctx, message, recipient, u)
}

// InitiateChat opens a fresh exchange with the peer: the auto-reply counter
// for the peer is cleared and the opening message is sent.
func (u *UserProxy) InitiateChat(ctx context.Context, recipient Agent, text string) error {
	u.resetAutoReplyCount(recipient.Name())
	return u.Send(ctx, text, recipient)
}

// Receive handles one inbound message to completion: it applies the
// human-input policy, then either stops, sends the operator's reply
// verbatim, or generates an auto reply. Nothing in here raises past the
// turn boundary.
func (u *UserProxy) Receive(ctx context.Context, message any, sender Agent) error {
	msg := AsMessage(message)
	_ = u.ChatAgent.Receive(ctx, msg, sender)

	reply := ""
	switch {
	case u.mode == InputModeAlways:
		reply = u.promptFeedback("Provide feedback to the sender. Press enter to skip and use auto-reply, or type 'exit' to end the conversation: ")
	case u.autoReplyCount(sender.Name()) >= u.maxAutoReply || u.isTermination(msg):
		if u.mode == InputModeTerminate {
			reply = u.promptFeedback("Please give feedback to the sender. (Press enter or type 'exit' to stop the conversation): ")
			if reply == "" {
				reply = exitReply
			}
		} else {
			// InputModeNever stops without asking
			reply = exitReply
		}
	}

	if reply == exitReply || (u.isTermination(msg) && reply == "") {
		u.resetAutoReplyCount(sender.Name())
		u.logger.Info("conversation stopped", zap.String("sender", sender.Name()))
		return nil
	}
	if reply != "" {
		u.resetAutoReplyCount(sender.Name())
		return u.Send(ctx, reply, sender)
	}

	u.counters[sender.Name()]++
	u.logger.Info("no human input received, using auto reply",
		zap.String("sender", sender.Name()),
		zap.Int("consecutive_auto_replies", u.autoReplyCount(sender.Name())),
	)
	return u.autoReply(ctx, msg, sender, reply)
}

// promptFeedback asks the operator for one line of feedback. A missing
// prompter or a prompt failure reads as an empty reply.
func (u *UserProxy) promptFeedback(prompt string) string {
	if u.prompter == nil {
		return ""
	}
	reply, err := u.prompter.Prompt(prompt)
	if err != nil {
		u.logger.Warn("failed to read human input", zap.Error(err))
		return ""
	}
	return reply
}

// autoReply generates a reply without fresh human input. A function_call
// message always takes the function path, success or not. Otherwise code
// blocks are extracted and executed; with no fenced code at all, the default
// reply is sent verbatim, even when empty.
func (u *UserProxy) autoReply(ctx context.Context, msg Message, sender Agent, defaultReply string) error {
	if msg.FunctionCall != nil {
		result := u.executeFunction(ctx, *msg.FunctionCall)
		return u.Send(ctx, result, sender)
	}

	blocks := codeexec.Extract(msg.Content)
	if len(blocks) == 1 && blocks[0].Lang == codeexec.LangUnknown {
		return u.Send(ctx, defaultReply, sender)
	}

	res := codeexec.Run(ctx, u.executor, blocks, codeexec.RunOptions{
		WorkDir: u.workDir,
		Sandbox: u.sandbox,
		Handle:  u.execHandle,
	})
	u.execHandle = res.Handle

	status := "execution succeeded"
	if res.ExitCode != 0 {
		status = "execution failed"
	}
	return u.Send(ctx, fmt.Sprintf("exitcode: %d (%s)\nCode output: %s", res.ExitCode, status, res.Logs), sender)
}

// executeFunction dispatches a function call against the registry and wraps
// the outcome in a function-role result message. Errors become message
// content; they never propagate.
func (u *UserProxy) executeFunction(ctx context.Context, call FunctionCall) Message {
	content, err := u.functions.Call(ctx, call.Name, call.Arguments)
	if err != nil {
		u.logger.Warn("function call failed",
			zap.String("function", call.Name),
			zap.Error(err),
		)
		content = fmt.Sprintf("Error: %v", err)
	}
	return Message{
		Name:    call.Name,
		Role:    openai.ChatMessageRoleFunction,
		Content: content,
	}
}
