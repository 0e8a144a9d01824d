// Package filecoupling implements the coupling channel over a shared run
// directory. Each participant publishes its outgoing interface data as
// atomically renamed JSON files and awaits the peer's files with fsnotify,
// so two participant processes can couple without a network transport.
//
// Two schemes are supported. The serial-explicit scheme performs one
// exchange per coupling window and never requests checkpoint actions. The
// serial-implicit scheme iterates each window until the relative change of
// the exchanged data drops below a tolerance (or an iteration cap is hit);
// it requires a WriteCheckpoint action at every window start and a
// ReadCheckpoint action after every rejected sub-iteration. The second
// participant measures convergence and publishes the decision; the first
// participant awaits it, so both sides always agree.
package filecoupling

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/fem-labs/partheat/internal/domain"
	"github.com/fem-labs/partheat/internal/ports"
)

// timeEps guards floating-point accumulation when comparing the clock
// against the configured end time.
const timeEps = 1e-12

// Config describes one participant's view of the shared coupling setup.
// Both participants must agree on WindowSize, MaxTime, MaxIterations and
// ConvTol; exactly one of them must be First.
type Config struct {
	// Dir is the shared run directory.
	Dir string

	// Participant is this participant's name; Peer names the other one.
	Participant string
	Peer        string

	// First marks the participant that starts each window without waiting.
	First bool

	// WindowSize is the coupling window length in simulation time.
	WindowSize float64

	// MaxTime is the simulation end time.
	MaxTime float64

	// MaxIterations caps the sub-iterations per window; 1 selects the
	// serial-explicit scheme.
	MaxIterations int

	// ConvTol is the relative convergence measure of the implicit scheme.
	ConvTol float64

	// PollInterval is the fallback polling period while awaiting peer files.
	PollInterval time.Duration
}

// Validate checks the configuration and fills derived defaults.
func (c *Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("%w: coupling directory is required", domain.ErrInvalidConfig)
	}
	if c.Participant == "" || c.Peer == "" || c.Participant == c.Peer {
		return fmt.Errorf("%w: coupling needs two distinct participant names", domain.ErrInvalidConfig)
	}
	if c.WindowSize <= 0 {
		return fmt.Errorf("%w: window size must be positive", domain.ErrInvalidConfig)
	}
	if c.MaxTime <= 0 {
		return fmt.Errorf("%w: end time must be positive", domain.ErrInvalidConfig)
	}
	if c.MaxIterations < 1 {
		c.MaxIterations = 1
	}
	if c.ConvTol <= 0 {
		c.ConvTol = 1e-8
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 50 * time.Millisecond
	}
	return nil
}

// Channel implements ports.CouplingChannel over the shared directory.
// A channel serves exactly one participant; it is not safe for concurrent
// use, matching the single logical thread of control of a participant.
type Channel struct {
	cfg    Config
	logger zerolog.Logger

	meshes []domain.InterfaceSample

	clock     domain.CouplingClock
	window    int
	iteration int

	written   int // outgoing data files published
	read      int // peer data files consumed
	decisions int // decision files consumed or published

	lastRead []float64 // peer values as written, for the convergence measure
	prevRead []float64

	pendingWrite bool
	pendingRead  bool
	initialized  bool
	finalized    bool
}

// New creates a channel for one participant.
func New(cfg Config, logger zerolog.Logger) (*Channel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Channel{
		cfg:    cfg,
		logger: logger.With().Str("participant", cfg.Participant).Logger(),
	}, nil
}

// RegisterInterface stores the sample and returns its handle. Registration
// must complete before Initialize.
func (c *Channel) RegisterInterface(name string, sample domain.InterfaceSample) (ports.MeshHandle, error) {
	if c.initialized {
		return 0, fmt.Errorf("%w: interface %q registered after initialization", domain.ErrProtocolViolation, name)
	}
	if sample.Len() == 0 {
		return 0, fmt.Errorf("%w: interface %q has no points", domain.ErrInvalidConfig, name)
	}
	c.meshes = append(c.meshes, sample)
	return ports.MeshHandle(len(c.meshes) - 1), nil
}

// Initialize creates the run directory and returns the initial clock.
func (c *Channel) Initialize(ctx context.Context) (domain.CouplingClock, error) {
	if c.initialized || c.finalized {
		return domain.CouplingClock{}, fmt.Errorf("%w: initialize called twice", domain.ErrProtocolViolation)
	}
	if err := os.MkdirAll(c.cfg.Dir, 0o700); err != nil {
		return domain.CouplingClock{}, fmt.Errorf("coupling dir: %w", err)
	}
	c.initialized = true
	c.window = 1
	c.iteration = 1
	if c.implicit() {
		c.pendingWrite = true
	}
	c.clock = domain.CouplingClock{
		Now:            0,
		AdmissibleStep: math.Min(c.cfg.WindowSize, c.cfg.MaxTime),
		Ongoing:        true,
	}
	return c.clock, nil
}

func (c *Channel) implicit() bool { return c.cfg.MaxIterations > 1 }

// IsReadAvailable reports whether peer data can be pulled this iteration.
// The first participant has nothing to read before its first advance.
func (c *Channel) IsReadAvailable() bool {
	if !c.initialized || c.finalized {
		return false
	}
	if c.cfg.First && c.read == 0 && c.written == 0 {
		return false
	}
	return true
}

// Read awaits the peer's next data file and maps it onto the point set
// behind the handle.
func (c *Channel) Read(ctx context.Context, quantity domain.Quantity, h ports.MeshHandle) (domain.ExchangeBuffer, error) {
	if c.finalized {
		return domain.ExchangeBuffer{}, fmt.Errorf("%w: read after finalize", domain.ErrChannelClosed)
	}
	if !c.IsReadAvailable() {
		return domain.ExchangeBuffer{}, fmt.Errorf("%w: read attempted with no data available", domain.ErrProtocolViolation)
	}
	sample, err := c.mesh(h)
	if err != nil {
		return domain.ExchangeBuffer{}, err
	}

	path := c.dataPath(c.cfg.Peer, c.read+1)
	if err := awaitFile(ctx, path, c.cfg.PollInterval); err != nil {
		return domain.ExchangeBuffer{}, fmt.Errorf("await %s: %w", filepath.Base(path), err)
	}
	var p dataPayload
	if err := readJSON(path, &p); err != nil {
		return domain.ExchangeBuffer{}, err
	}
	if p.Quantity != string(quantity) {
		return domain.ExchangeBuffer{}, fmt.Errorf("%w: peer sent %q, expected %q",
			domain.ErrProtocolViolation, p.Quantity, quantity)
	}
	c.read++
	c.prevRead = c.lastRead
	c.lastRead = p.Values

	values, err := interpolate(p.Ys, p.Values, sample)
	if err != nil {
		return domain.ExchangeBuffer{}, err
	}
	return domain.ExchangeBuffer{Quantity: quantity, Values: values}, nil
}

// IsWriteRequired reports whether outgoing data must be published for a
// step of the given size.
func (c *Channel) IsWriteRequired(dt float64) bool {
	return c.initialized && !c.finalized && c.clock.Ongoing
}

// Write publishes the buffer as this participant's next data file.
func (c *Channel) Write(ctx context.Context, quantity domain.Quantity, h ports.MeshHandle, buf domain.ExchangeBuffer) error {
	if c.finalized {
		return fmt.Errorf("%w: write after finalize", domain.ErrChannelClosed)
	}
	if !c.IsWriteRequired(0) {
		return fmt.Errorf("%w: write attempted when not required", domain.ErrProtocolViolation)
	}
	sample, err := c.mesh(h)
	if err != nil {
		return err
	}
	if err := buf.Validate(sample); err != nil {
		return err
	}

	ys := make([]float64, sample.Len())
	for i, pt := range sample.Points {
		ys[i] = pt.Y
	}
	p := dataPayload{
		Quantity:  string(quantity),
		Window:    c.window,
		Iteration: c.iteration,
		Ys:        ys,
		Values:    buf.Values,
	}
	if err := writeJSON(c.dataPath(c.cfg.Participant, c.written+1), p); err != nil {
		return err
	}
	c.written++
	return nil
}

// Advance moves the coupling clock. In the implicit scheme this is where
// the window's convergence decision is made (second participant) or
// awaited (first participant) and where checkpoint actions get scheduled.
func (c *Channel) Advance(ctx context.Context, dt float64) (domain.CouplingClock, error) {
	if c.finalized {
		return domain.CouplingClock{}, fmt.Errorf("%w: advance after finalize", domain.ErrChannelClosed)
	}
	if !c.initialized {
		return domain.CouplingClock{}, fmt.Errorf("%w: advance on unopened channel", domain.ErrProtocolViolation)
	}
	if dt <= 0 {
		return domain.CouplingClock{}, fmt.Errorf("%w: advance with non-positive step %g", domain.ErrInvalidConfig, dt)
	}

	converged := true
	if c.implicit() {
		var err error
		if converged, err = c.decide(ctx); err != nil {
			return domain.CouplingClock{}, err
		}
	}

	if converged {
		c.clock.Now += dt
		c.window++
		c.iteration = 1
		if c.implicit() {
			c.pendingWrite = true
		}
	} else {
		c.iteration++
		c.pendingRead = true
	}

	remaining := c.cfg.MaxTime - c.clock.Now
	c.clock.Ongoing = remaining > timeEps
	c.clock.AdmissibleStep = math.Min(c.cfg.WindowSize, math.Max(remaining, 0))
	return c.clock, nil
}

// decide resolves the implicit window's convergence. The second participant
// measures the relative change of the data it received and publishes the
// decision; the first participant awaits it.
func (c *Channel) decide(ctx context.Context) (bool, error) {
	seq := c.decisions + 1
	path := filepath.Join(c.cfg.Dir, fmt.Sprintf("decision-%06d.json", seq))

	var d decisionPayload
	if c.cfg.First {
		if err := awaitFile(ctx, path, c.cfg.PollInterval); err != nil {
			return false, fmt.Errorf("await %s: %w", filepath.Base(path), err)
		}
		if err := readJSON(path, &d); err != nil {
			return false, err
		}
	} else {
		d = decisionPayload{
			Window:    c.window,
			Iteration: c.iteration,
			Converged: c.iteration >= c.cfg.MaxIterations ||
				(c.iteration > 1 && relativeChange(c.lastRead, c.prevRead) < c.cfg.ConvTol),
		}
		if err := writeJSON(path, d); err != nil {
			return false, err
		}
	}
	c.decisions++
	if !d.Converged {
		c.logger.Debug().Int("window", c.window).Int("iteration", c.iteration).Msg("window rejected")
	}
	return d.Converged, nil
}

// IsActionRequired reports pending checkpoint actions.
func (c *Channel) IsActionRequired(kind domain.ActionKind) bool {
	switch kind {
	case domain.ActionWriteCheckpoint:
		return c.pendingWrite
	case domain.ActionReadCheckpoint:
		return c.pendingRead
	default:
		return false
	}
}

// Acknowledge clears a pending checkpoint action.
func (c *Channel) Acknowledge(kind domain.ActionKind) error {
	switch {
	case kind == domain.ActionWriteCheckpoint && c.pendingWrite:
		c.pendingWrite = false
	case kind == domain.ActionReadCheckpoint && c.pendingRead:
		c.pendingRead = false
	default:
		return fmt.Errorf("%w: acknowledged %v without pending action", domain.ErrProtocolViolation, kind)
	}
	return nil
}

// IsOngoing reports whether the coupling is still in progress.
func (c *Channel) IsOngoing() bool {
	return c.initialized && !c.finalized && c.clock.Ongoing
}

// Finalize releases the channel.
func (c *Channel) Finalize() error {
	if c.finalized {
		return fmt.Errorf("%w: finalize called twice", domain.ErrChannelClosed)
	}
	if !c.initialized {
		return fmt.Errorf("%w: finalize on unopened channel", domain.ErrProtocolViolation)
	}
	c.finalized = true
	return nil
}

func (c *Channel) mesh(h ports.MeshHandle) (domain.InterfaceSample, error) {
	if int(h) < 0 || int(h) >= len(c.meshes) {
		return domain.InterfaceSample{}, fmt.Errorf("%w: unknown mesh handle %d", domain.ErrProtocolViolation, h)
	}
	return c.meshes[int(h)], nil
}

func (c *Channel) dataPath(participant string, seq int) string {
	return filepath.Join(c.cfg.Dir, fmt.Sprintf("%s-%06d.json", participant, seq))
}

// relativeChange is the convergence measure of the implicit scheme: the
// L2 norm of the difference between successive exchanges relative to the
// latest one. A window's first iteration never converges by measure.
func relativeChange(last, prev []float64) float64 {
	if prev == nil || len(prev) != len(last) {
		return math.Inf(1)
	}
	var num, den float64
	for i := range last {
		d := last[i] - prev[i]
		num += d * d
		den += last[i] * last[i]
	}
	if den == 0 {
		return math.Sqrt(num)
	}
	return math.Sqrt(num / den)
}
