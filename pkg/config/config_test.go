package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.UI.Theme.ActiveBorderColor) == 0 {
		t.Error("ActiveBorderColor should have a value")
	}
	if cfg.UI.PageSize != 200 {
		t.Errorf("PageSize = %d, expected 200", cfg.UI.PageSize)
	}
	if strings.HasPrefix(cfg.Data.Dir, "~") {
		t.Errorf("Data.Dir = %q, expected ~ to be expanded", cfg.Data.Dir)
	}
	if !strings.HasSuffix(cfg.Log.File, "lazya2l.log") {
		t.Errorf("Log.File = %q", cfg.Log.File)
	}
	if cfg.Server.Addr == "" {
		t.Error("Server.Addr should have a default")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `ui:
  pageSize: 50
  nerdFontsVersion: "3"
  theme:
    activeBorderColor: ["red", "bold"]
    selectedLineBgColor: ["#ff0000"]
    editBorderColor: ["green"]
data:
  dir: /var/lib/lazya2l
server:
  addr: ":9000"
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"page size", cfg.UI.PageSize, 50},
		{"nerd fonts", cfg.UI.NerdFontsVersion, "3"},
		{"border colors", len(cfg.UI.Theme.ActiveBorderColor), 2},
		{"hex color", cfg.UI.Theme.SelectedLineBgColor[0], "#ff0000"},
		{"default kept", cfg.UI.Theme.InactiveBorderColor[0], "default"},
		{"edit border", cfg.UI.Theme.EditBorderColor[0], "green"},
		{"filter border default", cfg.UI.Theme.FilterBorderColor[0], "yellow"},
		{"data dir", cfg.Data.Dir, "/var/lib/lazya2l"},
		{"server addr", cfg.Server.Addr, ":9000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, expected %v", tt.got, tt.expected)
			}
		})
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LAZYA2L_SERVER_ADDR", "0.0.0.0:8080")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:8080" {
		t.Errorf("Server.Addr = %q, expected env override", cfg.Server.Addr)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("ui: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}
