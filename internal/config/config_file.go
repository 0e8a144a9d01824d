package config

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors Config but uses strings for durations to keep the
// TOML friendly.
type fileConfig struct {
	Role          string  `toml:"role"`
	Elements      int     `toml:"elements"`
	Diffusivity   float64 `toml:"diffusivity"`
	Timestep      float64 `toml:"timestep"`
	EndTime       float64 `toml:"end_time"`
	WindowSize    float64 `toml:"window_size"`
	MaxIterations int     `toml:"max_iterations"`
	ConvTol       float64 `toml:"conv_tol"`
	Projection    string  `toml:"projection"`
	Droptol       float64 `toml:"droptol"`
	SubSamples    int     `toml:"sub_samples"`
	CouplingDir   string  `toml:"coupling_dir"`
	Participant   string  `toml:"participant"`
	Peer          string  `toml:"peer"`
	ErrorLog      string  `toml:"error_log"`
	PollInterval  string  `toml:"poll_interval"`
	LogLevel      string  `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file.
func LoadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// ApplyFileConfig applies file values to the Config, respecting flags that
// were explicitly set.
func ApplyFileConfig(cfg *Config, fc fileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("role", fc.Role, &cfg.Role)
	s.setInt("elements", fc.Elements, &cfg.Elements)
	s.setFloat("diffusivity", fc.Diffusivity, &cfg.Diffusivity)
	s.setFloat("timestep", fc.Timestep, &cfg.Timestep)
	s.setFloat("end-time", fc.EndTime, &cfg.EndTime)
	s.setFloat("window-size", fc.WindowSize, &cfg.WindowSize)
	s.setInt("max-iterations", fc.MaxIterations, &cfg.MaxIterations)
	s.setFloat("conv-tol", fc.ConvTol, &cfg.ConvTol)
	s.setString("projection", fc.Projection, &cfg.Projection)
	s.setFloat("droptol", fc.Droptol, &cfg.Droptol)
	s.setInt("sub-samples", fc.SubSamples, &cfg.SubSamples)
	s.setString("coupling-dir", fc.CouplingDir, &cfg.CouplingDir)
	s.setString("participant", fc.Participant, &cfg.Participant)
	s.setString("peer", fc.Peer, &cfg.Peer)
	s.setString("error-log", fc.ErrorLog, &cfg.ErrorLog)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	return s.setDuration("poll-interval", fc.PollInterval, &cfg.PollInterval)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
