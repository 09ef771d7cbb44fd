package config

// Default values applied to absent configuration fields.
const (
	defaultMakeCommand = "make"
	defaultJustCommand = "just"
	defaultShell       = "bash"
	defaultScript      = "./run.sh"
	// defaultTimeoutSecs bounds task execution unless overridden per call.
	defaultTimeoutSecs = 300
)

func defaultRunnerPriority() []string {
	return []string{"make", "just", "script"}
}

func defaultScripts() []string {
	return []string{"./run.sh", "./build.sh", "./task.sh"}
}

// applyDefaults fills in zero-valued fields.
func applyDefaults(cfg *Config) {
	if len(cfg.Defaults.RunnerPriority) == 0 {
		cfg.Defaults.RunnerPriority = defaultRunnerPriority()
	}
	if cfg.Defaults.DefaultScript == "" {
		cfg.Defaults.DefaultScript = defaultScript
	}
	if cfg.Defaults.Timeout == 0 {
		cfg.Defaults.Timeout = defaultTimeoutSecs
	}
	if cfg.Runners.Make.Command == "" {
		cfg.Runners.Make.Command = defaultMakeCommand
	}
	if cfg.Runners.Just.Command == "" {
		cfg.Runners.Just.Command = defaultJustCommand
	}
	if len(cfg.Runners.Script.Scripts) == 0 {
		cfg.Runners.Script.Scripts = defaultScripts()
	}
	if cfg.Runners.Script.Shell == "" {
		cfg.Runners.Script.Shell = defaultShell
	}
}
