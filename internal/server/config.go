package server

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the full server configuration.
type Config struct {
	Server     ServerConfig
	Tournament TournamentConfig
	Blinds     []BlindLevelBlock
}

// fileConfig is the HCL shape. Blocks are optional; anything absent
// keeps its default.
type fileConfig struct {
	Server     *ServerConfig     `hcl:"server,block"`
	Tournament *TournamentConfig `hcl:"tournament,block"`
	Blinds     []BlindLevelBlock `hcl:"blind_level,block"`
}

// ServerConfig holds the listener settings.
type ServerConfig struct {
	Host     string `hcl:"host,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// TournamentConfig holds the tournament parameters.
type TournamentConfig struct {
	MinPlayers           int `hcl:"min_players,optional"`
	MaxPlayers           int `hcl:"max_players,optional"`
	StartingStack        int `hcl:"starting_stack,optional"`
	ActionTimeoutSeconds int `hcl:"action_timeout_seconds,optional"`
	LobbyWaitSeconds     int `hcl:"lobby_wait_seconds,optional"`
}

// BlindLevelBlock is one step of the escalation schedule: from Hand
// onwards the blinds are Small/Big, until a later level takes over.
type BlindLevelBlock struct {
	Hand  int `hcl:"hand,optional"`
	Small int `hcl:"small"`
	Big   int `hcl:"big"`
}

// BlindLevel is the runtime form of a schedule step.
type BlindLevel struct {
	Hand  int
	Small int
	Big   int
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "localhost",
			Port:     8765,
			LogLevel: "info",
		},
		Tournament: TournamentConfig{
			MinPlayers:           2,
			MaxPlayers:           9,
			StartingStack:        10000,
			ActionTimeoutSeconds: 30,
			LobbyWaitSeconds:     5,
		},
	}
}

// DefaultBlindSchedule escalates roughly every ten hands.
func DefaultBlindSchedule() []BlindLevel {
	return []BlindLevel{
		{Hand: 0, Small: 50, Big: 100},
		{Hand: 10, Small: 100, Big: 200},
		{Hand: 20, Small: 200, Big: 400},
		{Hand: 30, Small: 400, Big: 800},
		{Hand: 40, Small: 800, Big: 1600},
		{Hand: 50, Small: 1600, Big: 3200},
	}
}

// LoadConfig reads an HCL config file, falling back to defaults for a
// missing file or any field the file leaves out.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse config %s: %s", path, diags.Error())
	}

	var loaded fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &loaded); diags.HasErrors() {
		return nil, fmt.Errorf("decode config %s: %s", path, diags.Error())
	}
	mergeConfig(cfg, &loaded)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeConfig(dst *Config, src *fileConfig) {
	if src.Server != nil {
		if src.Server.Host != "" {
			dst.Server.Host = src.Server.Host
		}
		if src.Server.Port != 0 {
			dst.Server.Port = src.Server.Port
		}
		if src.Server.LogLevel != "" {
			dst.Server.LogLevel = src.Server.LogLevel
		}
	}
	if src.Tournament != nil {
		if src.Tournament.MinPlayers != 0 {
			dst.Tournament.MinPlayers = src.Tournament.MinPlayers
		}
		if src.Tournament.MaxPlayers != 0 {
			dst.Tournament.MaxPlayers = src.Tournament.MaxPlayers
		}
		if src.Tournament.StartingStack != 0 {
			dst.Tournament.StartingStack = src.Tournament.StartingStack
		}
		if src.Tournament.ActionTimeoutSeconds != 0 {
			dst.Tournament.ActionTimeoutSeconds = src.Tournament.ActionTimeoutSeconds
		}
		if src.Tournament.LobbyWaitSeconds != 0 {
			dst.Tournament.LobbyWaitSeconds = src.Tournament.LobbyWaitSeconds
		}
	}
	dst.Blinds = src.Blinds
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if c.Tournament.MinPlayers < 2 {
		return fmt.Errorf("min_players must be at least 2, got %d", c.Tournament.MinPlayers)
	}
	if c.Tournament.MaxPlayers < c.Tournament.MinPlayers {
		return fmt.Errorf("max_players %d below min_players %d", c.Tournament.MaxPlayers, c.Tournament.MinPlayers)
	}
	if c.Tournament.StartingStack <= 0 {
		return fmt.Errorf("starting_stack must be positive, got %d", c.Tournament.StartingStack)
	}
	for _, b := range c.Blinds {
		if b.Small <= 0 || b.Big < b.Small {
			return fmt.Errorf("invalid blind level at hand %d: %d/%d", b.Hand, b.Small, b.Big)
		}
	}
	return nil
}

// Address returns the host:port to listen on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ActionTimeout returns the per-decision deadline.
func (c *Config) ActionTimeout() time.Duration {
	return time.Duration(c.Tournament.ActionTimeoutSeconds) * time.Second
}

// LobbyWait returns the grace period after min players is reached.
func (c *Config) LobbyWait() time.Duration {
	return time.Duration(c.Tournament.LobbyWaitSeconds) * time.Second
}

// BlindSchedule returns the configured schedule sorted by hand number,
// or the default one when the file declared none.
func (c *Config) BlindSchedule() []BlindLevel {
	if len(c.Blinds) == 0 {
		return DefaultBlindSchedule()
	}
	out := make([]BlindLevel, len(c.Blinds))
	for i, b := range c.Blinds {
		out[i] = BlindLevel{Hand: b.Hand, Small: b.Small, Big: b.Big}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hand < out[j].Hand })
	return out
}
