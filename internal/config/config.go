package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "WORLDCORE_CONFIG"

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Network   NetworkConfig   `toml:"network"`
	World     WorldConfig     `toml:"world"`
	NPC       NPCConfig       `toml:"npc"`
	Scripting ScriptingConfig `toml:"scripting"`
	Data      DataConfig      `toml:"data"`
	Logging   LoggingConfig   `toml:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Debug     DebugConfig     `toml:"debug"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	ID        int    `toml:"id"`
	StartTime int64  // set at boot, not from config
}

type NetworkConfig struct {
	BindAddress       string        `toml:"bind_address"`
	TickRate          time.Duration `toml:"tick_rate"`
	InputPoll         time.Duration `toml:"input_poll"` // input-only ticks between full ticks
	InQueueSize       int           `toml:"in_queue_size"`
	OutQueueSize      int           `toml:"out_queue_size"`
	MaxPacketsPerTick int           `toml:"max_packets_per_tick"`
	MaxFrame          int           `toml:"max_frame"`
}

type WorldConfig struct {
	CellSize   int32 `toml:"cell_size"`
	ViewRadius int32 `toml:"view_radius"` // in cells

	// Where new players appear.
	StartInstance uint64 `toml:"start_instance"`
	StartX        int32  `toml:"start_x"`
	StartY        int32  `toml:"start_y"`
	StartZ        int32  `toml:"start_z"`
}

type NPCConfig struct {
	EggRespawnDelay time.Duration `toml:"egg_respawn_delay"` // when the template gives none
	RespawnDelay    time.Duration `toml:"respawn_delay"`     // combat NPCs without a template delay
	SpawnSeed       int64         `toml:"spawn_seed"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir"`
}

type DataConfig struct {
	NpcList   string `toml:"npc_list"`
	SpawnList string `toml:"spawn_list"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type RateLimitConfig struct {
	Enabled          bool `toml:"enabled"`
	PacketsPerSecond int  `toml:"packets_per_second"`
}

type DebugConfig struct {
	Profile     string `toml:"profile"` // "", "cpu", "mem", "block", "mutex", "trace"
	ProfilePath string `toml:"profile_path"`
}

// PathFromEnv returns $WORLDCORE_CONFIG, or def when it is unset.
func PathFromEnv(def string) string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return def
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

// Validate rejects values the game loop cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Network.TickRate <= 0 {
		errs = append(errs, errors.New("network.tick_rate must be positive"))
	}
	if c.Network.InputPoll < 0 || c.Network.InputPoll > c.Network.TickRate {
		errs = append(errs, errors.New("network.input_poll must be within [0, tick_rate]"))
	}
	if c.World.CellSize <= 0 {
		errs = append(errs, errors.New("world.cell_size must be positive"))
	}
	if c.World.ViewRadius < 0 {
		errs = append(errs, errors.New("world.view_radius must not be negative"))
	}
	switch c.Debug.Profile {
	case "", "cpu", "mem", "block", "mutex", "trace":
	default:
		errs = append(errs, fmt.Errorf("debug.profile: unknown mode %q", c.Debug.Profile))
	}
	return errors.Join(errs...)
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "worldcore",
			ID:   1,
		},
		Network: NetworkConfig{
			BindAddress:       "0.0.0.0:7001",
			TickRate:          200 * time.Millisecond,
			InputPoll:         2 * time.Millisecond,
			InQueueSize:       128,
			OutQueueSize:      256,
			MaxPacketsPerTick: 32,
			MaxFrame:          8192,
		},
		World: WorldConfig{
			CellSize:   20,
			ViewRadius: 1,
		},
		NPC: NPCConfig{
			EggRespawnDelay: 60 * time.Second,
			RespawnDelay:    30 * time.Second,
			SpawnSeed:       1,
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Data: DataConfig{
			NpcList:   "data/npc_list.yaml",
			SpawnList: "data/spawn_list.yaml",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		RateLimit: RateLimitConfig{
			Enabled:          true,
			PacketsPerSecond: 60,
		},
		Debug: DebugConfig{
			ProfilePath: ".",
		},
	}
}
