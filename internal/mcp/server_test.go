package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nvandessel/structsim/internal/config"
	"github.com/nvandessel/structsim/internal/ratelimit"
)

// testSettings returns small-sample settings writing under a temp directory.
func testSettings(t *testing.T) *config.Config {
	t.Helper()
	settings := config.Default()
	settings.ResultsDir = filepath.Join(t.TempDir(), "results")
	settings.Performance.Samples = 300
	settings.Stress.Samples = 300
	settings.StateSpace.Samples = 200
	settings.Judgment.Runs = 40
	settings.MCP.MaxSamples = 5000
	return settings
}

// setupTestServer creates a server over testSettings.
func setupTestServer(t *testing.T) (*Server, *config.Config) {
	t.Helper()
	settings := testSettings(t)
	server, err := NewServer(&Config{Name: "test-server", Version: "v1.0.0", Settings: settings})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	t.Cleanup(func() { server.Close() })
	return server, settings
}

func TestNewServer(t *testing.T) {
	server, settings := setupTestServer(t)

	if server.server == nil {
		t.Error("Server.server is nil")
	}
	if server.history == nil {
		t.Error("Server.history is nil with history enabled")
	}
	if server.auditLogger == nil {
		t.Error("Server.auditLogger is nil")
	}
	if _, err := os.Stat(settings.HistoryPath()); err != nil {
		t.Errorf("history database not created: %v", err)
	}
}

func TestNewServer_HistoryDisabled(t *testing.T) {
	settings := testSettings(t)
	settings.History.Enabled = false

	server, err := NewServer(&Config{Name: "test-server", Version: "v1.0.0", Settings: settings})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	if server.history != nil {
		t.Error("history opened although disabled")
	}
	if _, _, err := server.handleHistory(context.Background(), nil, HistoryInput{}); err == nil {
		t.Error("expected error from history tool with history disabled")
	}
}

func TestNewServer_InvalidSettings(t *testing.T) {
	settings := testSettings(t)
	settings.Performance.Samples = 0

	if _, err := NewServer(&Config{Name: "test-server", Settings: settings}); err == nil {
		t.Error("expected error for invalid settings")
	}
}

func TestNewServer_HasRateLimiters(t *testing.T) {
	server, _ := setupTestServer(t)

	for _, tool := range []string{
		ratelimit.ToolPerformance,
		ratelimit.ToolStress,
		ratelimit.ToolStateSpace,
		ratelimit.ToolJudgment,
		ratelimit.ToolHistory,
	} {
		if _, ok := server.toolLimiters[tool]; !ok {
			t.Errorf("missing rate limiter for %s", tool)
		}
	}
}

func TestClose(t *testing.T) {
	settings := testSettings(t)
	server, err := NewServer(&Config{Name: "test-server", Settings: settings})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	if err := server.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	// Second close is a no-op.
	if err := server.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	settings := testSettings(t)
	server, err := NewServer(&Config{Name: "test-server", Settings: settings})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
	if server.history != nil {
		t.Error("Run did not close the history")
	}
}
