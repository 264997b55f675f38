package mcp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nvandessel/latwalk/internal/store"
)

// isolateHome sets HOME to a temp directory to avoid touching real ~/.latwalk/
func isolateHome(t *testing.T, tmpDir string) {
	t.Helper()
	tmpHome := filepath.Join(tmpDir, "home")
	if err := os.MkdirAll(tmpHome, 0755); err != nil {
		t.Fatalf("Failed to create temp home: %v", err)
	}
	t.Setenv("HOME", tmpHome)
}

// setupTestServer creates a server backed by an in-memory store.
func setupTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	server, err := NewServer(&Config{
		Name:    "latwalk-test",
		Version: "v0.0.0-test",
		Root:    tmpDir,
		Store:   store.NewInMemoryRunStore(),
	})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	t.Cleanup(func() { server.Close() })
	return server, tmpDir
}

func TestNewServer_SQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	server, err := NewServer(&Config{Name: "latwalk", Version: "v1.0.0", Root: tmpDir})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	if server.server == nil {
		t.Error("Server.server is nil")
	}
	if server.root != tmpDir {
		t.Errorf("Server.root = %q, want %q", server.root, tmpDir)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, ".latwalk", "latwalk.db")); err != nil {
		t.Errorf("database not created: %v", err)
	}
	if _, ok := server.store.(*store.SQLiteRunStore); !ok {
		t.Errorf("store is %T, want *store.SQLiteRunStore", server.store)
	}
}

func TestServer_Close(t *testing.T) {
	server, _ := setupTestServer(t)
	if err := server.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
