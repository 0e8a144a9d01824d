package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fem-labs/partheat/internal/domain"
)

func TestErrorLog_WritesOneLinePerCommit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	log, err := NewErrorLog(path, func(s domain.SolutionState) float64 {
		return s[0]
	})
	if err != nil {
		t.Fatalf("NewErrorLog: %v", err)
	}

	log.OnCommit(domain.SolutionState{0.5}, 0.1)
	log.OnCommit(domain.SolutionState{0.0625}, 0.2)
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("log has %d lines, want 2: %q", len(lines), string(b))
	}
	if lines[0] != "0.100000, 5.000000e-01" {
		t.Errorf("first line = %q", lines[0])
	}
	if lines[1] != "0.200000, 6.250000e-02" {
		t.Errorf("second line = %q", lines[1])
	}
}

func TestNewErrorLog_BadPath(t *testing.T) {
	if _, err := NewErrorLog(filepath.Join(t.TempDir(), "no", "such", "dir.log"), nil); err == nil {
		t.Error("unwritable path accepted")
	}
}
