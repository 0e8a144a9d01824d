package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fem-labs/partheat/internal/domain"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() on defaults: %v", err)
	}
	if cfg.ParsedRole() != domain.RoleDirichlet {
		t.Errorf("default role = %v, want Dirichlet", cfg.ParsedRole())
	}
}

func TestValidate_DerivedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Role = "Neumann"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.WindowSize != cfg.Timestep {
		t.Errorf("window size = %g, want timestep %g", cfg.WindowSize, cfg.Timestep)
	}
	if cfg.Participant != "HeatNeumann" {
		t.Errorf("participant = %q, want HeatNeumann", cfg.Participant)
	}
	if cfg.Peer != "HeatDirichlet" {
		t.Errorf("peer = %q, want HeatDirichlet", cfg.Peer)
	}
	if cfg.ErrorLog != "Error-Neumann.log" {
		t.Errorf("error log = %q, want Error-Neumann.log", cfg.ErrorLog)
	}
}

func TestValidate_ExplicitNamesWin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Participant = "Left"
	cfg.Peer = "Right"
	cfg.ErrorLog = "-"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Participant != "Left" || cfg.Peer != "Right" || cfg.ErrorLog != "-" {
		t.Errorf("explicit names overridden: %q %q %q", cfg.Participant, cfg.Peer, cfg.ErrorLog)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown role", func(c *Config) { c.Role = "Robin" }},
		{"odd elements", func(c *Config) { c.Elements = 7 }},
		{"too few elements", func(c *Config) { c.Elements = 0 }},
		{"negative diffusivity", func(c *Config) { c.Diffusivity = -1 }},
		{"zero timestep", func(c *Config) { c.Timestep = 0 }},
		{"zero end time", func(c *Config) { c.EndTime = 0 }},
		{"unknown projection", func(c *Config) { c.Projection = "galerkin" }},
		{"zero sub-samples", func(c *Config) { c.SubSamples = 0 }},
		{"empty coupling dir", func(c *Config) { c.CouplingDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestApplyFileConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partheat.toml")
	data := `
role = "Neumann"
elements = 16
timestep = 0.05
max_iterations = 4
conv_tol = 1e-6
projection = "area-weighted"
coupling_dir = "/tmp/run"
poll_interval = "10ms"
log_level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, nil); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}

	if cfg.Role != "Neumann" || cfg.Elements != 16 || cfg.Timestep != 0.05 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.MaxIterations != 4 || cfg.ConvTol != 1e-6 {
		t.Errorf("scheme values not applied: %+v", cfg)
	}
	if cfg.Projection != ProjectionAreaWeighted || cfg.CouplingDir != "/tmp/run" {
		t.Errorf("string values not applied: %+v", cfg)
	}
	if cfg.PollInterval != 10*time.Millisecond || cfg.LogLevel != "debug" {
		t.Errorf("interval or level not applied: %+v", cfg)
	}
	// Fields absent from the file keep their defaults.
	if cfg.EndTime != 0.5 || cfg.SubSamples != 16 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestApplyFileConfig_FlagsTakePrecedence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Elements = 32 // as if set by flag
	changed := map[string]bool{"elements": true}

	fc := fileConfig{Elements: 16, Timestep: 0.05}
	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.Elements != 32 {
		t.Errorf("flag value overridden by file: elements = %d", cfg.Elements)
	}
	if cfg.Timestep != 0.05 {
		t.Errorf("unflagged file value dropped: timestep = %g", cfg.Timestep)
	}
}

func TestApplyFileConfig_BadDuration(t *testing.T) {
	cfg := DefaultConfig()
	fc := fileConfig{PollInterval: "soon"}
	if err := ApplyFileConfig(&cfg, fc, nil); err == nil {
		t.Error("bad duration accepted")
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("PARTHEAT_ROLE", "Neumann")
	t.Setenv("PARTHEAT_ELEMENTS", "12")
	t.Setenv("PARTHEAT_TIMESTEP", "0.025")
	t.Setenv("PARTHEAT_POLL_INTERVAL", "5ms")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, nil); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}
	if cfg.Role != "Neumann" || cfg.Elements != 12 || cfg.Timestep != 0.025 {
		t.Errorf("env values not applied: %+v", cfg)
	}
	if cfg.PollInterval != 5*time.Millisecond {
		t.Errorf("poll interval = %v, want 5ms", cfg.PollInterval)
	}
}

func TestApplyEnvConfig_FlagsTakePrecedence(t *testing.T) {
	t.Setenv("PARTHEAT_ROLE", "Neumann")

	cfg := DefaultConfig()
	changed := map[string]bool{"role": true}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}
	if cfg.Role != "Dirichlet" {
		t.Errorf("flagged role overridden by env: %q", cfg.Role)
	}
}

func TestApplyEnvConfig_BadValue(t *testing.T) {
	t.Setenv("PARTHEAT_ELEMENTS", "many")
	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, nil); err == nil {
		t.Error("bad integer accepted")
	}
}
