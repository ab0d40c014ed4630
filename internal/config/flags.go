package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagWorkers   = flag.Int("workers", 0, "Model instances updated in parallel")
	flagInstances = flag.Int("instances", 0, "Model instances to simulate")
	flagFrames    = flag.Int("frames", 0, "Frames to simulate")
	flagRoot      = flag.Bool("root", false, "Include the model root transform")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWorkers > 0 {
		cfg.Animation.Workers = *flagWorkers
	}
	if *flagInstances > 0 {
		cfg.Simulation.Instances = *flagInstances
	}
	if *flagFrames > 0 {
		cfg.Simulation.Frames = *flagFrames
	}
	if *flagRoot {
		cfg.Animation.IncludeRootTransform = true
	}
}
