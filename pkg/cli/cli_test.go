package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/marjoballabani/lazya2l/pkg/app"
	"github.com/marjoballabani/lazya2l/pkg/config"
	"github.com/marjoballabani/lazya2l/pkg/recent"
)

const sample = `ASAP2_VERSION 1 71
/begin PROJECT demo "Demo"
  /begin MODULE engine "Engine"
    /begin MEASUREMENT EngineSpeed "Engine speed" UWORD NO_COMPU_METHOD 1 0 0 8000
      ECU_ADDRESS 0x1234
    /end MEASUREMENT
    /begin MEASUREMENT Coolant "" SBYTE NO_COMPU_METHOD 1 0 -40 120 /end MEASUREMENT
  /end MODULE
/end PROJECT
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := New(context.Background(), &app.BuildInfo{Version: "test"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.a2l")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		contains []string
		excludes []string
	}{
		{
			name:     "full tree",
			args:     []string{"tree", path},
			contains: []string{"demo", "ASAP2 1.71", "engine", "Measurements (2)", "EngineSpeed", "Datatype UWORD, Limits 0 .. 8000", "Coolant"},
		},
		{
			name:     "limited",
			args:     []string{"tree", path, "--limit", "1"},
			contains: []string{"EngineSpeed", "1 more"},
			excludes: []string{"Coolant"},
		},
		{
			name:     "filtered",
			args:     []string{"tree", path, "--filter", "cool"},
			contains: []string{"Coolant"},
			excludes: []string{"EngineSpeed"},
		},
		{
			name:     "jq filter",
			args:     []string{"tree", path, "--filter", `.details.Datatype == "UWORD"`},
			contains: []string{"EngineSpeed"},
			excludes: []string{"Coolant"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("tree: %v", err)
			}
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestTreeMissingFile(t *testing.T) {
	if _, err := run(t, "tree", filepath.Join(t.TempDir(), "nope.a2l")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestRecent(t *testing.T) {
	dir := t.TempDir()
	loadConfig = func() (*config.Config, error) {
		cfg, err := config.Load(dir)
		if err != nil {
			return nil, err
		}
		cfg.Data.Dir = dir
		return cfg, nil
	}
	t.Cleanup(func() { loadConfig = config.LoadConfig })

	out, err := run(t, "recent")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no recent files") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := recent.Open(dir).Record(recent.KindELF, recent.Entry{Name: "ecu.elf", Location: "/fw/ecu.elf"}); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, "recent", "elf")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "/fw/ecu.elf") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := run(t, "recent", "hex"); err == nil {
		t.Error("expected an error for an unknown kind")
	}
}

func TestSymbols(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("needs an ELF test binary")
	}
	exe, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "symbols", exe, "--objects")
	if err != nil {
		t.Skipf("test binary has no readable symbols: %v", err)
	}
	if !strings.Contains(out, "Import as") || !strings.Contains(out, "symbols") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "test") {
		t.Errorf("unexpected output: %q", out)
	}
}
