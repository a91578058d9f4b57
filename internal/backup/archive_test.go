package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nvandessel/structsim/internal/store"
)

func writeArchive(t *testing.T, runs int) string {
	t.Helper()
	a := &Archive{CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	for i := 0; i < runs; i++ {
		a.Runs = append(a.Runs, store.Run{
			ID:         "run-" + string(rune('a'+i)),
			Experiment: "stress",
			Seed:       42,
			Samples:    2000,
		})
	}
	path := filepath.Join(t.TempDir(), "archive.bak")
	if _, err := Write(path, a, map[string]string{"host": "test"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return path
}

func TestWriteRead(t *testing.T) {
	path := writeArchive(t, 3)

	header, a, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if header.Version != FormatVersion {
		t.Errorf("Version = %d, want %d", header.Version, FormatVersion)
	}
	if header.Metadata["host"] != "test" {
		t.Errorf("Metadata = %v", header.Metadata)
	}
	if len(a.Runs) != 3 || a.Runs[2].ID != "run-c" {
		t.Errorf("Runs = %+v", a.Runs)
	}
}

func TestReadHeader(t *testing.T) {
	path := writeArchive(t, 2)

	header, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	if header.RunCount != 2 {
		t.Errorf("RunCount = %d, want 2", header.RunCount)
	}
	if !header.CreatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("CreatedAt = %v", header.CreatedAt)
	}
}

func TestVerify_DetectsCorruption(t *testing.T) {
	path := writeArchive(t, 1)
	if err := Verify(path); err != nil {
		t.Fatalf("Verify() on fresh archive error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	data[len(data)-1] ^= 0xff
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := Verify(path); err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Errorf("Verify() error = %v, want checksum mismatch", err)
	}
	if _, _, err := Read(path); err == nil {
		t.Error("Read() accepted a corrupted archive")
	}
}

func TestRead_BadInput(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		content     string
		errContains string
	}{
		{"empty file", "", "reading header line"},
		{"not json", "hello\n", "parsing header"},
		{"wrong version", `{"version":9,"checksum":"sha256:00"}` + "\n", "unsupported archive version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_"))
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			_, _, err := Read(path)
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Read() error = %v, want containing %q", err, tt.errContains)
			}
		})
	}

	if _, _, err := Read(filepath.Join(dir, "missing.bak")); err == nil {
		t.Error("expected error for missing file")
	}
}
