package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/elastipend/internal/config"
	"github.com/san-kum/elastipend/internal/framecache"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNewRootCmd(t *testing.T) {
	root := newRootCmd()
	want := []string{"run", "plot", "analyze", "export-csv", "presets", "list"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("missing command %q", name)
		}
	}
}

func TestModelFlags_Load(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "defaults leave angles random",
			args: nil,
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Physics.Alpha0 != nil || cfg.Physics.K1 != nil {
					t.Error("unset angle or spring was fixed")
				}
				if cfg.Seed == 0 {
					t.Error("seed not drawn")
				}
				if cfg.Sim.TEnd != config.DefaultTEnd {
					t.Errorf("t_end = %v", cfg.Sim.TEnd)
				}
			},
		},
		{
			name: "explicit flags win",
			args: []string{"--alpha0", "0", "--k2", "50", "--time", "3", "--method", "rk23", "--seed", "7"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Physics.Alpha0 == nil || *cfg.Physics.Alpha0 != 0 {
					t.Error("alpha0 = 0 not applied")
				}
				if cfg.Physics.K2 == nil || *cfg.Physics.K2 != 50 {
					t.Error("k2 not applied")
				}
				if cfg.Sim.TEnd != 3 || cfg.Sim.Method != "rk23" || cfg.Seed != 7 {
					t.Errorf("sim = %+v seed = %d", cfg.Sim, cfg.Seed)
				}
			},
		},
		{
			name: "preset then flag",
			args: []string{"--preset", "chaos", "--time", "1"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Physics.Alpha0 == nil || *cfg.Physics.Alpha0 != 2.5 {
					t.Error("preset angle not applied")
				}
				if cfg.Sim.TEnd != 1 {
					t.Errorf("flag did not override preset t_end: %v", cfg.Sim.TEnd)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &modelFlags{}
			cmd := &cobra.Command{Use: "test"}
			f.register(cmd.Flags())
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			cfg, err := f.load(cmd, nil)
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestModelFlags_LoadErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown preset", []string{"--preset", "nope"}},
		{"missing config file", []string{"--config", filepath.Join(t.TempDir(), "none.yaml")}},
		{"bad method", []string{"--method", "leapfrog"}},
		{"zero fps", []string{"--fps", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &modelFlags{}
			cmd := &cobra.Command{Use: "test"}
			f.register(cmd.Flags())
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			if _, err := f.load(cmd, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPresetsCmd(t *testing.T) {
	out, err := execute(t, "presets")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range config.ListPresets() {
		if !strings.Contains(out, name) {
			t.Errorf("preset %q not listed", name)
		}
	}
}

func TestExportCmd(t *testing.T) {
	out, err := execute(t, "export-csv", "--preset", "vertical", "--time", "0.5", "--fps", "10", "--log-level", "error")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want header + 5 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "time,alpha,alpha_dot") {
		t.Errorf("header = %q", lines[0])
	}
}

func TestExportCmd_Singular(t *testing.T) {
	_, err := execute(t, "export-csv", "--preset", "vertical", "--a0", "1e-9", "--log-level", "error")
	if err == nil || !strings.HasPrefix(err.Error(), "integration: ") {
		t.Errorf("err = %v, want integration failure", err)
	}
}

func TestRunCmd_NoMovie(t *testing.T) {
	dir := t.TempDir()
	cache := filepath.Join(dir, "_figs")
	catalog := filepath.Join(dir, "runs.db")

	out, err := execute(t, "run",
		"--preset", "vertical",
		"--time", "0.5", "--fps", "10",
		"--size", "32", "--dpi", "16", "--segments", "4", "--stride", "2", "--supersample", "2",
		"--cache", cache,
		"--catalog", catalog,
		"--no-movie",
		"--log-level", "error",
	)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "5 @ 10 fps") {
		t.Errorf("summary missing frame count:\n%s", out)
	}
	if err := framecache.New(cache, framecache.DefaultExt).Verify(5); err != nil {
		t.Error(err)
	}

	listed, err := execute(t, "list", "--catalog", catalog)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(listed, "success") || !strings.Contains(listed, "rk45") {
		t.Errorf("run not catalogued:\n%s", listed)
	}
}

func TestListCmd_Empty(t *testing.T) {
	out, err := execute(t, "list", "--catalog", filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no runs found") {
		t.Errorf("out = %q", out)
	}
}
