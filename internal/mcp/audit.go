package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// AuditFile is the name of the tool audit log under the results directory.
const AuditFile = "audit.jsonl"

// AuditEntry represents a single audit log entry for an MCP tool invocation.
type AuditEntry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Tool       string            `json:"tool"`
	DurationMs int64             `json:"duration_ms"`
	Status     string            `json:"status"` // "success" or "error"
	Error      string            `json:"error,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
	RunID      string            `json:"run_id,omitempty"`
}

// AuditLogger writes audit entries to a JSONL file. It is safe for
// concurrent use. A nil AuditLogger is safe to use; all methods are no-ops
// on nil receiver.
type AuditLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewAuditLogger creates an audit logger writing to dir/audit.jsonl.
// If the file cannot be created, a warning is printed to stderr and nil is
// returned.
func NewAuditLogger(dir string) *AuditLogger {
	if err := os.MkdirAll(dir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot create audit log directory %s: %v\n", dir, err)
		return nil
	}

	path := filepath.Join(dir, AuditFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open audit log %s: %v\n", path, err)
		return nil
	}

	return &AuditLogger{file: f}
}

// Log appends entry as a single line. Safe to call on nil receiver.
func (a *AuditLogger) Log(entry AuditEntry) {
	if a == nil {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return // silently skip malformed entries
	}
	data = append(data, '\n')

	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = a.file.Write(data)
}

// Close closes the audit log file. Safe to call on nil receiver.
func (a *AuditLogger) Close() error {
	if a == nil {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.file.Close()
}

// auditParams formats the non-zero tool parameters for the audit log.
// A "_param_count" key records how many were set.
func auditParams(params map[string]any) map[string]string {
	result := make(map[string]string, len(params)+1)
	for key, val := range params {
		switch v := val.(type) {
		case nil:
			continue
		case int:
			if v == 0 {
				continue
			}
		case int64:
			if v == 0 {
				continue
			}
		case bool:
			if !v {
				continue
			}
		case string:
			if v == "" {
				continue
			}
		case []float64:
			if len(v) == 0 {
				continue
			}
			parts := make([]string, len(v))
			for i, f := range v {
				parts[i] = fmt.Sprintf("%g", f)
			}
			result[key] = strings.Join(parts, ",")
			continue
		}
		result[key] = fmt.Sprintf("%v", val)
	}
	result["_param_count"] = fmt.Sprintf("%d", len(result))
	return result
}

// auditTool logs a tool invocation to the audit log and the debug log.
func (s *Server) auditTool(toolName string, start time.Time, err error, params map[string]string, runID string) {
	status := "success"
	errMsg := ""
	if err != nil {
		status = "error"
		errMsg = err.Error()
	}

	entry := AuditEntry{
		Timestamp:  start,
		Tool:       toolName,
		DurationMs: time.Since(start).Milliseconds(),
		Status:     status,
		Error:      errMsg,
		Params:     params,
		RunID:      runID,
	}
	s.auditLogger.Log(entry)

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := []any{"tool", toolName, "status", status, "duration_ms", entry.DurationMs}
	for _, k := range keys {
		attrs = append(attrs, k, params[k])
	}
	s.logger.Debug("tool call", attrs...)
}
