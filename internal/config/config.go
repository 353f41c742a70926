package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zeusync/cubewalk/internal/core/locomotion"
	"github.com/zeusync/cubewalk/internal/core/observability/log"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Simulation SimulationConfig `yaml:"simulation"`
	Locomotion LocomotionConfig `yaml:"locomotion"`
	Server     ServerConfig     `yaml:"server"`
	Journal    JournalConfig    `yaml:"journal"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type SimulationConfig struct {
	// TickRate is the number of frames simulated per second.
	TickRate int `yaml:"tick_rate"`
	// LevelDir holds level documents; Level names the first one to load.
	LevelDir string `yaml:"level_dir"`
	Level    string `yaml:"level"`
	// CommandBuffer bounds how many control commands may wait for the next frame.
	CommandBuffer int `yaml:"command_buffer"`
}

type LocomotionConfig struct {
	Speed                float64       `yaml:"speed"`
	FallSpeed            float64       `yaml:"fall_speed"`
	Tolerance            float64       `yaml:"tolerance"`
	SettleTimeout        time.Duration `yaml:"settle_timeout"`
	FallingSettleTimeout time.Duration `yaml:"falling_settle_timeout"`
	GravityPause         time.Duration `yaml:"gravity_pause"`
	RotateThresholdDeg   float64       `yaml:"rotate_threshold_deg"`
}

type ServerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Addr             string        `yaml:"addr"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
}

type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Default mirrors the motion constants the game was tuned with.
func Default() Config {
	motion := locomotion.DefaultConfig()
	return Config{
		Log: LogConfig{Level: "info"},
		Simulation: SimulationConfig{
			TickRate:      60,
			LevelDir:      "levels",
			Level:         "corridor",
			CommandBuffer: 64,
		},
		Locomotion: LocomotionConfig{
			Speed:                motion.Speed,
			FallSpeed:            motion.FallSpeedFactor,
			Tolerance:            motion.Tolerance,
			SettleTimeout:        seconds(motion.SettleTimeout),
			FallingSettleTimeout: seconds(motion.FallingSettleTimeout),
			GravityPause:         seconds(motion.GravityPause),
			RotateThresholdDeg:   motion.RotateThresholdDeg,
		},
		Server: ServerConfig{
			Enabled:          true,
			Addr:             "127.0.0.1:8080",
			SnapshotInterval: 100 * time.Millisecond,
		},
		Journal: JournalConfig{Enabled: false, Dir: "journal"},
	}
}

// Load decodes YAML over the defaults and validates the result.
func Load(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Simulation.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("simulation.tick_rate must be positive, got %d", c.Simulation.TickRate))
	}
	if c.Simulation.Level == "" {
		errs = append(errs, errors.New("simulation.level is required"))
	}
	if c.Simulation.CommandBuffer <= 0 {
		errs = append(errs, fmt.Errorf("simulation.command_buffer must be positive, got %d", c.Simulation.CommandBuffer))
	}
	l := c.Locomotion
	if l.Speed <= 0 || l.FallSpeed <= 0 {
		errs = append(errs, errors.New("locomotion speeds must be positive"))
	}
	if l.Tolerance <= 0 {
		errs = append(errs, errors.New("locomotion.tolerance must be positive"))
	}
	if l.SettleTimeout < 0 || l.FallingSettleTimeout < 0 || l.GravityPause < 0 {
		errs = append(errs, errors.New("locomotion timeouts must not be negative"))
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required when the server is enabled"))
	}
	if c.Server.SnapshotInterval <= 0 {
		errs = append(errs, errors.New("server.snapshot_interval must be positive"))
	}
	if c.Journal.Enabled && c.Journal.Dir == "" {
		errs = append(errs, errors.New("journal.dir is required when the journal is enabled"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// LogLevel is the parsed log level; call after Validate.
func (c *Config) LogLevel() log.Level {
	level, _ := log.ParseLevel(c.Log.Level)
	return level
}

// Motion converts the locomotion section into the locomotion package's units.
func (l LocomotionConfig) Motion() locomotion.Config {
	cfg := locomotion.DefaultConfig()
	cfg.Speed = l.Speed
	cfg.FallSpeedFactor = l.FallSpeed
	cfg.Tolerance = l.Tolerance
	cfg.SettleTimeout = l.SettleTimeout.Seconds()
	cfg.FallingSettleTimeout = l.FallingSettleTimeout.Seconds()
	cfg.GravityPause = l.GravityPause.Seconds()
	if l.RotateThresholdDeg > 0 {
		cfg.RotateThresholdDeg = l.RotateThresholdDeg
	}
	return cfg
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
