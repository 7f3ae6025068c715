package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mxtrix/Happy-Little-Taverley/internal/client"
	"github.com/mxtrix/Happy-Little-Taverley/internal/config"
	"github.com/mxtrix/Happy-Little-Taverley/internal/db"
	"github.com/mxtrix/Happy-Little-Taverley/internal/logging"
	"github.com/mxtrix/Happy-Little-Taverley/internal/orchestrator"
	"github.com/mxtrix/Happy-Little-Taverley/internal/rotation"
)

// loadConfig reads the config file named by the persistent --config flag,
// falling back to the default search paths.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// initLogging initializes the logging subsystem. --verbose forces debug.
func initLogging(cmd *cobra.Command, cfg *config.Config) error {
	lc := cfg.Logging
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		lc.Level = "debug"
	}
	return logging.Init(lc)
}

// buildClient constructs the configured game-client backend. Remote
// clients are dialed before returning.
func buildClient(cfg *config.Config) (client.Client, func(), error) {
	switch cfg.Client.Kind {
	case config.ClientSim:
		sim := client.NewSim(cfg.SimSkills())
		sim.SetMember(cfg.Client.Member)
		return sim, func() {}, nil

	case config.ClientRemote:
		remote := client.NewRemote(cfg.Client.URL, cfg.Client.RequestTimeout)
		if err := remote.Dial(); err != nil {
			return nil, nil, err
		}
		return remote, func() { _ = remote.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown client kind %q", cfg.Client.Kind)
	}
}

// buildRegistry loads the configured tasks into a fresh registry.
func buildRegistry(cfg *config.Config, cl client.Client) (*rotation.Registry, error) {
	tasks := cfg.RotationTasks()
	if len(tasks) == 0 {
		return nil, fmt.Errorf("no tasks configured")
	}

	reg := rotation.NewRegistry(cl, rotation.WithLogger(logging.Component("rotation")))
	reg.Setup(tasks)
	return reg, nil
}

// orchestratorConfig maps file configuration onto the run loop.
func orchestratorConfig(cfg *config.Config) orchestrator.Config {
	oc := orchestrator.DefaultConfig()
	oc.Mode = orchestrator.Mode(cfg.Rotation.Mode)
	oc.KeepPreviousActive = cfg.Rotation.KeepPreviousActive
	oc.WorkInterval = cfg.Rotation.WorkInterval
	oc.Cron = cfg.Rotation.Cron
	if cfg.Travel.Timeout > 0 {
		oc.Travel.ArrivalTimeout = cfg.Travel.Timeout
	}
	if cfg.Travel.PollInterval > 0 {
		oc.Travel.PollInterval = cfg.Travel.PollInterval
	}
	return oc
}

// watchConfig applies config file edits to a running orchestrator.
// adjust reapplies any command-line overrides on top of the reloaded
// file. Watching is best effort: without a config file there is
// nothing to watch and rotation continues on the startup settings.
func watchConfig(cmd *cobra.Command, orch *orchestrator.Orchestrator, adjust func(*orchestrator.Config)) {
	path, _ := cmd.Flags().GetString("config")
	err := config.Watch(path, func(c *config.Config) {
		oc := orchestratorConfig(c)
		if adjust != nil {
			adjust(&oc)
		}
		orch.ApplyConfig(oc)
	})
	if err != nil {
		logging.Component("config").Debugf("config watch disabled: %v", err)
	}
}

// openState opens the session store at the configured path.
func openState(cfg *config.Config) (*db.DB, error) {
	path := cfg.State.Path
	if path == "" {
		path = db.DefaultPath()
	}
	return db.Open(path)
}
