package internal

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger_FansOutToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.log")
	var out bytes.Buffer

	logger, closer, err := newLogger(ApplicationConfig{LogLevel: slog.LevelInfo, LogFile: path}, &out)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hidden")
	logger.Info("hello", slog.String("k", "v"))
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for name, got := range map[string]string{"writer": out.String(), "file": string(data)} {
		if !strings.Contains(got, `"msg":"hello"`) || !strings.Contains(got, `"k":"v"`) {
			t.Errorf("%s missing record: %q", name, got)
		}
		if strings.Contains(got, "hidden") {
			t.Errorf("%s got a record below the level: %q", name, got)
		}
	}
}

func TestNewLogger_NoSinks(t *testing.T) {
	logger, closer, err := newLogger(ApplicationConfig{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("dropped")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
}
