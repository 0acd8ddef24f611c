package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug             = "debug"
	ConfigCPUProfile        = "cpu-profile"
	ConfigMemProfile        = "mem-profile"
	ConfigMinimaxDepth      = "minimax-depth"
	ConfigMinimaxTime       = "minimax-time"
	ConfigMctsTrials        = "mcts-trials"
	ConfigMctsThreads       = "mcts-threads"
	ConfigEvalCacheFraction = "eval-cache-fraction"
	ConfigArenaGames        = "arena-games"
	ConfigArenaThreads      = "arena-threads"
	ConfigHistoryFile       = "history-file"
)

const envPrefix = "PENTAGO"

// Config is a thin wrapper around viper. Settings come, in increasing
// priority, from the defaults, ~/.pentago/config.yaml, PENTAGO_*
// environment variables and command-line flags.
type Config struct {
	*viper.Viper
}

// DefaultConfig returns a config holding only the defaults. It is what
// tests and library callers should use.
func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigCPUProfile, "")
	c.SetDefault(ConfigMemProfile, "")
	c.SetDefault(ConfigMinimaxDepth, 4)
	c.SetDefault(ConfigMinimaxTime, 5*time.Second)
	c.SetDefault(ConfigMctsTrials, 1000)
	c.SetDefault(ConfigMctsThreads, 1)
	c.SetDefault(ConfigEvalCacheFraction, 0.0)
	c.SetDefault(ConfigArenaGames, 100)
	c.SetDefault(ConfigArenaThreads, 1)
	c.SetDefault(ConfigHistoryFile, filepath.Join(os.TempDir(), "pentago_history"))
}

func flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("pentago", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigCPUProfile, "", "file to write a CPU profile to")
	fs.String(ConfigMemProfile, "", "file to write a memory profile to")
	fs.Int(ConfigMinimaxDepth, 4, "deepest ply the minimax engine searches")
	fs.Duration(ConfigMinimaxTime, 5*time.Second, "time budget per minimax move")
	fs.Int(ConfigMctsTrials, 1000, "random games per candidate move for the mcts engine")
	fs.Int(ConfigMctsThreads, 1, "worker goroutines for the mcts engine")
	fs.Float64(ConfigEvalCacheFraction, 0, "fraction of system memory for the minimax eval cache (0 disables it)")
	fs.Int(ConfigArenaGames, 100, "games per arena run")
	fs.Int(ConfigArenaThreads, 1, "games played at once in the arena")
	fs.String(ConfigHistoryFile, "", "readline history file")
	// everything from the first positional argument on is a shell command.
	fs.SetInterspersed(false)
	return fs
}

// Load reads the config file and environment, then parses args as flags.
// Arguments that are not flags are left for the caller; see Args.
func (c *Config) Load(args []string) error {
	return c.LoadWithFlags(args, nil)
}

// LoadWithFlags is Load for commands with flags of their own. Those are
// parsed into extra and not stored in the config.
func (c *Config) LoadWithFlags(args []string, extra *pflag.FlagSet) error {
	c.Viper = viper.New()
	c.setDefaults()

	c.SetEnvPrefix(envPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	c.SetConfigName("config")
	c.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		c.AddConfigPath(filepath.Join(home, ".pentago"))
	}
	if err := c.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	fs := flagSet()
	if extra != nil {
		fs.AddFlagSet(extra)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	// only flags given explicitly override the file and environment.
	fs.VisitAll(func(f *pflag.Flag) {
		if extra != nil && extra.Lookup(f.Name) != nil {
			return
		}
		if f.Changed {
			c.Set(f.Name, f.Value.String())
		}
	})
	c.Set("args", fs.Args())
	return nil
}

// Args returns the positional arguments left over by Load.
func (c *Config) Args() []string {
	return c.GetStringSlice("args")
}

// SanitizedSettings is safe to log.
func (c *Config) SanitizedSettings() map[string]any {
	settings := c.AllSettings()
	delete(settings, "args")
	return settings
}

// Write saves the current settings to ~/.pentago/config.yaml.
func (c *Config) Write() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(home, ".pentago")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, "config.yaml")
	out := viper.New()
	for k, v := range c.SanitizedSettings() {
		out.Set(k, v)
	}
	log.Info().Str("path", path).Msg("writing-config")
	return out.WriteConfigAs(path)
}
