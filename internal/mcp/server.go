// Package mcp provides an MCP (Model Context Protocol) server that lets
// agents run walks, browse stored runs and export them.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/latwalk/internal/ratelimit"
	"github.com/nvandessel/latwalk/internal/store"
)

// Server wraps the MCP SDK server and the run store.
type Server struct {
	server      *sdk.Server
	store       store.RunStore
	root        string
	limits      ratelimit.Tools
	auditLogger *AuditLogger
	logger      *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "latwalk")
	Version string // Server version
	Root    string // Project root directory

	// Store overrides the SQLite store under Root. The server closes it.
	Store store.RunStore

	// Logger receives operational logs. Nil discards them.
	Logger *slog.Logger
}

// NewServer creates a new MCP server with the walk tools registered.
func NewServer(cfg *Config) (*Server, error) {
	runStore := cfg.Store
	if runStore == nil {
		sqliteStore, err := store.NewSQLiteRunStore(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("failed to open run store: %w", err)
		}
		runStore = sqliteStore
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		server:      mcpServer,
		store:       runStore,
		root:        cfg.Root,
		limits:      ratelimit.DefaultTools(),
		auditLogger: NewAuditLogger(cfg.Root),
		logger:      logger,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects, the context is cancelled,
// or the process receives an interrupt.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.logger.Info("mcp server starting", "root", s.root)
	err := s.server.Run(ctx, &sdk.StdioTransport{})
	s.logger.Info("mcp server stopped", "error", err)
	return err
}

// Close closes the run store and the audit log.
func (s *Server) Close() error {
	s.auditLogger.Close()
	return s.store.Close()
}
