package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/structsim/internal/config"
	"github.com/nvandessel/structsim/internal/ratelimit"
	"github.com/nvandessel/structsim/internal/store"
)

// Server wraps the MCP SDK server and exposes the structsim experiments as
// tools.
type Server struct {
	server       *sdk.Server
	settings     *config.Config
	history      *store.History
	toolLimiters ratelimit.ToolLimiters
	auditLogger  *AuditLogger
	logger       *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "structsim")
	Version string // Server version

	// Settings are the experiment defaults and limits. Nil means config.Default().
	Settings *config.Config

	// Logger receives operational logs. Nil discards them.
	Logger *slog.Logger
}

// NewServer creates a new MCP server with structsim tools.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var history *store.History
	if settings.History.Enabled {
		h, err := store.Open(settings.HistoryPath())
		if err != nil {
			return nil, fmt.Errorf("failed to open run history: %w", err)
		}
		history = h
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server:       mcpServer,
		settings:     settings,
		history:      history,
		toolLimiters: ratelimit.NewToolLimiters(),
		auditLogger:  NewAuditLogger(settings.ResultsDir),
		logger:       logger,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			s.logger.Info("shutting down mcp server")
			cancel()
		case <-ctx.Done():
		}
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})

	if closeErr := s.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	var firstErr error
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			firstErr = err
		}
		s.history = nil
	}
	if err := s.auditLogger.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	s.auditLogger = nil
	return firstErr
}
