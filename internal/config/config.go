package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Combat     CombatConfig     `toml:"combat"`
	Interp     InterpConfig     `toml:"interp"`
	Network    NetworkConfig    `toml:"network"`
	Logging    LoggingConfig    `toml:"logging"`
}

type SimulationConfig struct {
	TickRate     time.Duration `toml:"tick_rate"`
	GridCellSize float64       `toml:"grid_cell_size"`
	CoopMode     bool          `toml:"coop_mode"` // true = friendly fire off
}

type CombatConfig struct {
	CritBaseChance    float64 `toml:"crit_base_chance"`    // base crit probability
	CritRuneIncrement float64 `toml:"crit_rune_increment"` // added per equipped crit-chance rune
	CritBaseMult      float64 `toml:"crit_base_mult"`      // base crit damage multiplier
	CritMultIncrement float64 `toml:"crit_mult_increment"` // added per equipped crit-damage rune
	DamageNumberCap   int     `toml:"damage_number_cap"`   // cosmetic ring buffer size
}

type InterpConfig struct {
	RenderDelay        time.Duration `toml:"render_delay"`        // render this far behind newest snapshot
	ExtrapolationGrace time.Duration `toml:"extrapolation_grace"` // coast this long on packet loss, then hold
	SnapDistance       float64       `toml:"snap_distance"`       // farther jumps teleport instead of interpolating
}

type NetworkConfig struct {
	ServerURL     string        `toml:"server_url"`
	InQueueSize   int           `toml:"in_queue_size"`
	OutQueueSize  int           `toml:"out_queue_size"`
	MaxMsgPerTick int           `toml:"max_msg_per_tick"`
	MoveSendRate  time.Duration `toml:"move_send_rate"` // min interval between position broadcasts
	AnimSendRate  time.Duration `toml:"anim_send_rate"` // min interval between animation-state deltas
	WriteTimeout  time.Duration `toml:"write_timeout"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRate:     16 * time.Millisecond, // ~60 Hz
			GridCellSize: 4.0,
			CoopMode:     true,
		},
		Combat: CombatConfig{
			CritBaseChance:    0.11,
			CritRuneIncrement: 0.03,
			CritBaseMult:      1.5,
			CritMultIncrement: 0.25,
			DamageNumberCap:   128,
		},
		Interp: InterpConfig{
			RenderDelay:        100 * time.Millisecond,
			ExtrapolationGrace: 250 * time.Millisecond,
			SnapDistance:       12.0,
		},
		Network: NetworkConfig{
			ServerURL:     "ws://localhost:7350/sim",
			InQueueSize:   256,
			OutQueueSize:  128,
			MaxMsgPerTick: 64,
			MoveSendRate:  50 * time.Millisecond,
			AnimSendRate:  100 * time.Millisecond,
			WriteTimeout:  5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
