package injector

import (
	"github.com/google/wire"
	"github.com/zeusync/cubewalk/internal/config"
	"github.com/zeusync/cubewalk/internal/core/events/bus"
	"github.com/zeusync/cubewalk/internal/core/journal"
	"github.com/zeusync/cubewalk/internal/core/level"
	"github.com/zeusync/cubewalk/internal/core/observability/log"
	"github.com/zeusync/cubewalk/internal/core/simulation"
	"github.com/zeusync/cubewalk/internal/server"
)

// App is the wired process: a simulation and, when enabled, its control server.
type App struct {
	Config     *config.Config
	Logger     *log.Logger
	Bus        bus.EventBus
	Simulation *simulation.Simulation
	// Server is nil when server.enabled is false.
	Server *server.Server
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideBus,
	ProvideLevelSource,
	ProvideJournal,
	ProvideSimulation,
	ProvideServer,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg *config.Config) *log.Logger {
	return log.New(cfg.LogLevel())
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

func ProvideLevelSource(cfg *config.Config) level.Source {
	return level.Dir(cfg.Simulation.LevelDir)
}

// ProvideJournal opens a new journal file when journaling is enabled; otherwise the
// writer is nil.
func ProvideJournal(cfg *config.Config, logger *log.Logger) (*journal.Writer, func(), error) {
	if !cfg.Journal.Enabled {
		return nil, func() {}, nil
	}
	w, path, err := journal.Create(cfg.Journal.Dir, "cubewalk")
	if err != nil {
		return nil, nil, err
	}
	logger.Info("journal opened", log.String("path", path))
	return w, func() {
		if err := w.Close(); err != nil {
			logger.Error("journal close failed", log.String("path", path), log.Error(err))
		}
	}, nil
}

func ProvideSimulation(cfg *config.Config, src level.Source, b bus.EventBus, logger *log.Logger, w *journal.Writer) (*simulation.Simulation, error) {
	opts := []simulation.Option{
		simulation.WithLogger(logger.With(log.String("component", "simulation"))),
		simulation.WithBus(b),
		simulation.WithMotion(cfg.Locomotion.Motion()),
		simulation.WithTickRate(cfg.Simulation.TickRate),
		simulation.WithCommandBuffer(cfg.Simulation.CommandBuffer),
	}
	if w != nil {
		opts = append(opts, simulation.WithJournal(w))
	}
	return simulation.New(src, cfg.Simulation.Level, opts...)
}

func ProvideServer(cfg *config.Config, sim *simulation.Simulation, logger *log.Logger) *server.Server {
	if !cfg.Server.Enabled {
		return nil
	}
	sc := server.DefaultServerConfig()
	sc.ListenAddr = cfg.Server.Addr
	sc.SnapshotInterval = cfg.Server.SnapshotInterval
	return server.NewServer(sc, sim, logger)
}
