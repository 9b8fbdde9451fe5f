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
	Token string `yaml:"token"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_KeepsDefaults(t *testing.T) {
	p := writeFile(t, "name: forge\n")
	cfg := sample{Port: 8080}
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "forge" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v, want name forge port 8080", cfg)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SNGFORGE_TEST_TOKEN", "s3cret")
	p := writeFile(t, "port: 1\ntoken: ${SNGFORGE_TEST_TOKEN}\n")
	var cfg sample
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Token != "s3cret" {
		t.Errorf("token = %q, want %q", cfg.Token, "s3cret")
	}
}

func TestLoad_Validates(t *testing.T) {
	p := writeFile(t, "port: 0\n")
	var cfg sample
	err := Load(p, &cfg)
	if err == nil || !strings.Contains(err.Error(), "port must be positive") {
		t.Fatalf("err = %v, want validation failure", err)
	}
}

func TestLoad_UnknownField(t *testing.T) {
	p := writeFile(t, "port: 1\nbogus: true\n")
	var cfg sample
	if err := Load(p, &cfg); err == nil {
		t.Fatal("unknown field should fail")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var cfg sample
	err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}

func TestLoadOptional(t *testing.T) {
	cfg := sample{Port: 9}
	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.Port != 9 {
		t.Errorf("port = %d, want 9", cfg.Port)
	}

	var bad sample
	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &bad); err == nil {
		t.Fatal("defaults should still be validated")
	}
}

func TestDecode_Empty(t *testing.T) {
	cfg := sample{Port: 3}
	if err := Decode(nil, &cfg); err != nil {
		t.Fatalf("Decode(nil): %v", err)
	}
}
