package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	valid bool
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	s.valid = true
	return nil
}

func write(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "folio")
	cfg := &sample{Port: 80}
	if err := Load(write(t, "name: ${SAMPLE_NAME}\n"), cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "folio" || cfg.Port != 80 || !cfg.valid {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	err := Load(write(t, "port: 0\n"), &sample{})
	if err == nil || !strings.Contains(err.Error(), "validation") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &sample{Port: 1}); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestLoadOptional(t *testing.T) {
	cfg := &sample{Port: 1}
	read, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), cfg)
	if err != nil || read {
		t.Fatalf("missing file: read=%v err=%v", read, err)
	}
	if !cfg.valid {
		t.Error("defaults were not validated")
	}

	read, err = LoadOptional(write(t, "port: 2\n"), cfg)
	if err != nil || !read || cfg.Port != 2 {
		t.Fatalf("present file: read=%v err=%v cfg=%+v", read, err, cfg)
	}
}
