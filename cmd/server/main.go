package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"agent-proxy/internal/adapter"
	"agent-proxy/internal/agent"
	"agent-proxy/internal/codeexec"
	"agent-proxy/pkg/config"
	"agent-proxy/pkg/logger"
)

// session pairs a NEVER-mode proxy with its assistant peer. Turns within a
// session run strictly one at a time; sessions are independent.
type session struct {
	mu        sync.Mutex
	proxy     *agent.UserProxy
	assistant *agent.Assistant
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	newProxy func() (*agent.UserProxy, error)
	newPeer  func() *agent.Assistant
}

func (s *sessionStore) create() (string, error) {
	proxy, err := s.newProxy()
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	s.mu.Lock()
	s.sessions[id] = &session{proxy: proxy, assistant: s.newPeer()}
	s.mu.Unlock()
	return id, nil
}

func (s *sessionStore) get(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	store := &sessionStore{
		sessions: make(map[string]*session),
		newProxy: func() (*agent.UserProxy, error) {
			// HTTP sessions have no operator on the line, so the proxy
			// never prompts
			return agent.NewUserProxy("user_proxy", agent.ProxyOptions{
				HumanInputMode:          agent.InputModeNever,
				MaxConsecutiveAutoReply: cfg.MaxAutoReply,
				Executor:                codeexec.NewLocalExecutor(),
				WorkDir:                 cfg.WorkDir,
				DisableSandbox:          !cfg.UseSandbox,
			})
		},
		newPeer: func() *agent.Assistant {
			llm := adapter.NewLLMAdapter(cfg.LiteLLMURL, cfg.OpenRouterAPIKey, cfg.ModelID)
			return agent.NewAssistant("assistant", "", llm)
		},
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(store, log)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// newRouter wires the HTTP surface around the session store.
func newRouter(store *sessionStore, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		// Create a session
		api.POST("/sessions", func(c *gin.Context) {
			id, err := store.create()
			if err != nil {
				log.Error("Failed to create session", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
				return
			}
			c.JSON(http.StatusCreated, gin.H{"session_id": id})
		})

		// Run one exchange: the message goes to the assistant, the proxy
		// auto-replies until the conversation stops
		api.POST("/sessions/:id/chat", func(c *gin.Context) {
			sess, ok := store.get(c.Param("id"))
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
				return
			}

			var req struct {
				Message string `json:"message" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			sess.mu.Lock()
			defer sess.mu.Unlock()

			if err := sess.proxy.InitiateChat(c.Request.Context(), sess.assistant, req.Message); err != nil {
				log.Error("Chat failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"transcript": sess.proxy.Transcript(sess.assistant.Name()),
			})
		})

		// Full transcript for a session
		api.GET("/sessions/:id/transcript", func(c *gin.Context) {
			sess, ok := store.get(c.Param("id"))
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
				return
			}

			sess.mu.Lock()
			defer sess.mu.Unlock()
			c.JSON(http.StatusOK, gin.H{
				"transcript": sess.proxy.Transcript(sess.assistant.Name()),
			})
		})
	}

	return router
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("HTTP Request",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
