package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"agent-proxy/internal/adapter"
	"agent-proxy/internal/agent"
	"agent-proxy/internal/codeexec"
	"agent-proxy/pkg/config"
	"agent-proxy/pkg/logger"
)

// ConsolePrompter reads one line of operator feedback per prompt.
type ConsolePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsolePrompter wraps the given reader/writer pair.
func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{in: bufio.NewReader(in), out: out}
}

// Prompt prints the prompt and blocks until the operator enters a line.
func (p *ConsolePrompter) Prompt(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize dependencies
	llm := adapter.NewLLMAdapter(cfg.LiteLLMURL, cfg.OpenRouterAPIKey, cfg.ModelID)
	assistant := agent.NewAssistant("assistant", "", llm)

	prompter := NewConsolePrompter(os.Stdin, os.Stdout)
	proxy, err := agent.NewUserProxy("user_proxy", agent.ProxyOptions{
		HumanInputMode:          agent.HumanInputMode(cfg.HumanInputMode),
		MaxConsecutiveAutoReply: cfg.MaxAutoReply,
		Executor:                codeexec.NewLocalExecutor(),
		Prompter:                prompter,
		WorkDir:                 cfg.WorkDir,
		DisableSandbox:          !cfg.UseSandbox,
	})
	if err != nil {
		log.Fatal("Failed to build user proxy", zap.Error(err))
	}

	task := strings.TrimSpace(strings.Join(os.Args[1:], " "))
	if task == "" {
		task, err = prompter.Prompt("Enter the task for the assistant: ")
		if err != nil {
			log.Fatal("Failed to read task", zap.Error(err))
		}
	}
	if task == "" {
		log.Fatal("No task given")
	}

	log.Info("Starting chat",
		zap.String("model", cfg.ModelID),
		zap.String("human_input_mode", cfg.HumanInputMode),
	)

	if err := proxy.InitiateChat(context.Background(), assistant, task); err != nil {
		log.Fatal("Chat failed", zap.Error(err))
	}

	log.Info("Chat finished")
}
