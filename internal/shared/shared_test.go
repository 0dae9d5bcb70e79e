package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	t.Run("Writes To Given Writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello")

		if !bytes.Contains(buf.Bytes(), []byte("hello")) {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
	})

	t.Run("Respects Level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.WarnLevel)
		logger.Info("quiet")
		logger.Warn("loud")

		if bytes.Contains(buf.Bytes(), []byte("quiet")) {
			t.Error("info message should be filtered at warn level")
		}
		if !bytes.Contains(buf.Bytes(), []byte("loud")) {
			t.Error("warn message should pass at warn level")
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vidctl.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create file logger: %v", err)
	}
	logger.Info("persisted")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !bytes.Contains(data, []byte("persisted")) {
		t.Errorf("expected log file to contain message, got %q", data)
	}
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == "" || b == "" {
		t.Fatal("expected non-empty IDs")
	}
	if a == b {
		t.Error("expected distinct IDs")
	}
}
