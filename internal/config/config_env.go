package config

import "os"

// ApplyEnvConfig applies configuration from environment variables
// (PARTHEAT_*). Values override the file config but lose to flags that
// were explicitly set.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("role", os.Getenv("PARTHEAT_ROLE"), &cfg.Role)
	s.setString("projection", os.Getenv("PARTHEAT_PROJECTION"), &cfg.Projection)
	s.setString("coupling-dir", os.Getenv("PARTHEAT_COUPLING_DIR"), &cfg.CouplingDir)
	s.setString("participant", os.Getenv("PARTHEAT_PARTICIPANT"), &cfg.Participant)
	s.setString("peer", os.Getenv("PARTHEAT_PEER"), &cfg.Peer)
	s.setString("error-log", os.Getenv("PARTHEAT_ERROR_LOG"), &cfg.ErrorLog)
	s.setString("log-level", os.Getenv("PARTHEAT_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("elements", os.Getenv("PARTHEAT_ELEMENTS"), &cfg.Elements); err != nil {
		return err
	}
	if err := s.setIntFromString("max-iterations", os.Getenv("PARTHEAT_MAX_ITERATIONS"), &cfg.MaxIterations); err != nil {
		return err
	}
	if err := s.setIntFromString("sub-samples", os.Getenv("PARTHEAT_SUB_SAMPLES"), &cfg.SubSamples); err != nil {
		return err
	}
	if err := s.setFloatFromString("diffusivity", os.Getenv("PARTHEAT_DIFFUSIVITY"), &cfg.Diffusivity); err != nil {
		return err
	}
	if err := s.setFloatFromString("timestep", os.Getenv("PARTHEAT_TIMESTEP"), &cfg.Timestep); err != nil {
		return err
	}
	if err := s.setFloatFromString("end-time", os.Getenv("PARTHEAT_END_TIME"), &cfg.EndTime); err != nil {
		return err
	}
	if err := s.setFloatFromString("window-size", os.Getenv("PARTHEAT_WINDOW_SIZE"), &cfg.WindowSize); err != nil {
		return err
	}
	if err := s.setFloatFromString("conv-tol", os.Getenv("PARTHEAT_CONV_TOL"), &cfg.ConvTol); err != nil {
		return err
	}
	if err := s.setFloatFromString("droptol", os.Getenv("PARTHEAT_DROPTOL"), &cfg.Droptol); err != nil {
		return err
	}

	return s.setDuration("poll-interval", os.Getenv("PARTHEAT_POLL_INTERVAL"), &cfg.PollInterval)
}
