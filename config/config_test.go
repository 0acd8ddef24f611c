package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/spf13/pflag"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	is.Equal(cfg.GetInt(ConfigMinimaxDepth), 4)
	is.Equal(cfg.GetDuration(ConfigMinimaxTime), 5*time.Second)
	is.Equal(cfg.GetInt(ConfigMctsTrials), 1000)
	is.True(!cfg.GetBool(ConfigDebug))
}

func TestLoadFlagsAndEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PENTAGO_MCTS_TRIALS", "250")

	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--minimax-depth", "2", "--minimax-time=1500ms", "--debug", "autoplay"}))
	is.Equal(cfg.GetInt(ConfigMinimaxDepth), 2)
	is.Equal(cfg.GetDuration(ConfigMinimaxTime), 1500*time.Millisecond)
	is.True(cfg.GetBool(ConfigDebug))
	is.Equal(cfg.GetInt(ConfigMctsTrials), 250)
	is.Equal(cfg.Args(), []string{"autoplay"})

	_, ok := cfg.SanitizedSettings()["args"]
	is.True(!ok)
}

func TestLoadReadsConfigFile(t *testing.T) {
	is := is.New(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	is.NoErr(os.MkdirAll(filepath.Join(home, ".pentago"), 0o755))
	is.NoErr(os.WriteFile(filepath.Join(home, ".pentago", "config.yaml"),
		[]byte("arena-games: 12\nmcts-threads: 3\n"), 0o644))

	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--arena-games", "20"}))
	// flags beat the file
	is.Equal(cfg.GetInt(ConfigArenaGames), 20)
	is.Equal(cfg.GetInt(ConfigMctsThreads), 3)
}

func TestLoadBadFlag(t *testing.T) {
	is := is.New(t)
	t.Setenv("HOME", t.TempDir())
	cfg := &Config{}
	is.True(cfg.Load([]string{"--no-such-flag"}) != nil)
}

func TestWrite(t *testing.T) {
	is := is.New(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg := DefaultConfig()
	cfg.Set(ConfigArenaGames, 7)
	is.NoErr(cfg.Write())

	loaded := &Config{}
	is.NoErr(loaded.Load(nil))
	is.Equal(loaded.GetInt(ConfigArenaGames), 7)
}

func TestLoadStopsAtCommand(t *testing.T) {
	is := is.New(t)
	t.Setenv("HOME", t.TempDir())
	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--minimax-depth", "3", "solve", "-depth", "2"}))
	is.Equal(cfg.GetInt(ConfigMinimaxDepth), 3)
	is.Equal(cfg.Args(), []string{"solve", "-depth", "2"})
}

func TestLoadWithFlags(t *testing.T) {
	is := is.New(t)
	t.Setenv("HOME", t.TempDir())
	fs := pflag.NewFlagSet("extra", pflag.ContinueOnError)
	logFile := fs.String("log", "", "")
	cfg := &Config{}
	is.NoErr(cfg.LoadWithFlags([]string{"--log", "out.csv", "--arena-games", "5"}, fs))
	is.Equal(*logFile, "out.csv")
	is.Equal(cfg.GetInt(ConfigArenaGames), 5)
	is.True(!cfg.IsSet("log"))
}
