// Package config holds the run configuration for a partheat participant,
// merged from defaults, an optional TOML file, PARTHEAT_* environment
// variables, and command-line flags, in increasing order of precedence.
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fem-labs/partheat/internal/domain"
)

// Config describes one participant run.
type Config struct {
	// Role is "Dirichlet" or "Neumann".
	Role string

	// Elements is the mesh resolution along a full unit-square edge.
	Elements int

	// Diffusivity is the heat conduction coefficient.
	Diffusivity float64

	// Timestep caps the local step size.
	Timestep float64

	// EndTime is the simulation end time.
	EndTime float64

	// WindowSize is the coupling window length. Defaults to Timestep.
	WindowSize float64

	// MaxIterations caps sub-iterations per window; 1 selects the
	// serial-explicit scheme.
	MaxIterations int

	// ConvTol is the implicit scheme's relative convergence tolerance.
	ConvTol float64

	// Projection selects the flux projection strategy:
	// "least-squares" or "area-weighted".
	Projection string

	// Droptol is the row-support threshold of constraint and projection
	// builds.
	Droptol float64

	// SubSamples is the number of production points per interface element.
	SubSamples int

	// CouplingDir is the shared coupling run directory.
	CouplingDir string

	// Participant and Peer name the two coupled processes. Derived from
	// the role when left empty.
	Participant string
	Peer        string

	// ErrorLog is the per-window error log path. Derived from the role
	// when left empty; "-" disables it.
	ErrorLog string

	// PollInterval is the fallback polling period while awaiting peer data.
	PollInterval time.Duration

	// LogLevel is the zerolog level name.
	LogLevel string
}

// Projection strategy names.
const (
	ProjectionLeastSquares = "least-squares"
	ProjectionAreaWeighted = "area-weighted"
)

// DefaultConfig returns a Config with default values matching the
// reference setup: an 8x8 unit square split in two, explicit coupling with
// step 0.1 up to t=0.5, and least-squares flux projection.
func DefaultConfig() Config {
	return Config{
		Role:          "Dirichlet",
		Elements:      8,
		Diffusivity:   1,
		Timestep:      0.1,
		EndTime:       0.5,
		MaxIterations: 1,
		ConvTol:       1e-8,
		Projection:    ProjectionLeastSquares,
		Droptol:       1e-15,
		SubSamples:    16,
		CouplingDir:   "coupling-run",
		PollInterval:  50 * time.Millisecond,
		LogLevel:      "info",
	}
}

// Validate checks the configuration and fills derived defaults.
func (c *Config) Validate() error {
	role, err := domain.ParseRole(c.Role)
	if err != nil {
		return err
	}

	if c.Elements < 2 || c.Elements%2 != 0 {
		return fmt.Errorf("%w: elements must be even and at least 2", domain.ErrInvalidConfig)
	}
	if c.Diffusivity <= 0 {
		return fmt.Errorf("%w: diffusivity must be positive", domain.ErrInvalidConfig)
	}
	if c.Timestep <= 0 {
		return fmt.Errorf("%w: timestep must be positive", domain.ErrInvalidConfig)
	}
	if c.EndTime <= 0 {
		return fmt.Errorf("%w: end time must be positive", domain.ErrInvalidConfig)
	}
	if c.WindowSize <= 0 {
		c.WindowSize = c.Timestep
	}
	if c.MaxIterations < 1 {
		c.MaxIterations = 1
	}
	if c.Projection != ProjectionLeastSquares && c.Projection != ProjectionAreaWeighted {
		return fmt.Errorf("%w: unsupported projection %q", domain.ErrInvalidConfig, c.Projection)
	}
	if c.SubSamples < 1 {
		return fmt.Errorf("%w: sub-samples must be positive", domain.ErrInvalidConfig)
	}
	if c.CouplingDir == "" {
		return fmt.Errorf("%w: coupling directory is required", domain.ErrInvalidConfig)
	}

	other := domain.RoleNeumann
	if role == domain.RoleNeumann {
		other = domain.RoleDirichlet
	}
	if c.Participant == "" {
		c.Participant = "Heat" + role.String()
	}
	if c.Peer == "" {
		c.Peer = "Heat" + other.String()
	}
	if c.ErrorLog == "" {
		c.ErrorLog = "Error-" + role.String() + ".log"
	}
	return nil
}

// ParsedRole returns the validated role. Call after Validate.
func (c *Config) ParsedRole() domain.Role {
	role, _ := domain.ParseRole(c.Role)
	return role
}

// configSetter applies configuration values while respecting flag
// precedence: a value is skipped when the corresponding flag was set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i > 0 {
		*dst = i
	}
	return nil
}

func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f > 0 {
		*dst = f
	}
	return nil
}
