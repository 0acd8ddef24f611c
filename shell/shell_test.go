package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/pentago/config"
	"github.com/domino14/pentago/game"
)

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"arena -log /path/to/log.csv",
			&shellcmd{"arena", nil, map[string]string{"log": "/path/to/log.csv"}},
			nil},
		{"sim stop",
			&shellcmd{"sim", []string{"stop"}, map[string]string{}},
			nil},
		{"play 1/5 1R -x y ",
			&shellcmd{"play",
				[]string{"1/5", "1R"},
				map[string]string{"x": "y"}},
			nil,
		},
		{"new -white 'Ann Lee:human'",
			&shellcmd{"new", nil, map[string]string{"white": "Ann Lee:human"}},
			nil},
		{"solve -depth",
			nil, errWrongOptionSyntax},
	}
	for _, tc := range cases {
		cmd, err := extractFields(tc.line)
		is.Equal(cmd, tc.expCmd)
		is.Equal(err, tc.expErr)
	}
}

func newTestShell(t *testing.T) (*ShellController, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigMinimaxDepth, 0)
	cfg.Set(config.ConfigMctsTrials, 10)
	return newShellController(cfg, &out), &out
}

func run(t *testing.T, sc *ShellController, line string) (string, error) {
	t.Helper()
	sig := make(chan os.Signal, 1)
	resp, err := sc.standardModeSwitch(line, sig)
	if resp == nil {
		return "", err
	}
	return resp.message, err
}

func TestNewPlayAndAI(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)

	_, err := run(t, sc, "show")
	is.Equal(err, errNoGame)

	out, err := run(t, sc, "new")
	is.NoErr(err)
	is.True(strings.Contains(out, "you"))

	out, err = run(t, sc, "p 1/5 1R")
	is.NoErr(err)
	is.Equal(sc.game.Turn(), 1)
	is.True(strings.Contains(out, "Last: you played 1/5 1R"))

	_, err = run(t, sc, "play 1/5 1R")
	is.True(err != nil) // occupied
	is.Equal(sc.game.Turn(), 1)

	out, err = run(t, sc, "ai")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "computer played "))
	is.Equal(sc.game.Turn(), 2)

	_, err = run(t, sc, "ai")
	is.True(err != nil) // a human is on turn
}

func TestAutoplayRandomGame(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	_, err := run(t, sc, "new -white a:random -black b:random -first black")
	is.NoErr(err)
	is.Equal(sc.game.Current().Name(), "b")

	out, err := run(t, sc, "autoplay")
	is.NoErr(err)
	is.Equal(sc.game.Playing(), game.GameOver)
	is.True(strings.Contains(out, game.ResultString(sc.game.Result())))

	_, err = run(t, sc, "new -white a:nonsense")
	is.True(err != nil)
}

func TestEvalSolveSim(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	_, err := run(t, sc, "new -white a:human -black b:human")
	is.NoErr(err)
	_, err = run(t, sc, "play 1/1 4L")
	is.NoErr(err)

	out, err := run(t, sc, "eval")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "W: score"))

	out, err = run(t, sc, "solve -depth 0 -time 2s")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "Best move for B: "))
	is.Equal(sc.game.Turn(), 1)

	out, err = run(t, sc, "sim -trials 5 -threads 2")
	is.NoErr(err)
	is.True(strings.Contains(out, "Iterations: 5"))

	out, err = run(t, sc, "sim details")
	is.NoErr(err)
	is.True(strings.Contains(out, "iters = 5"))

	_, err = run(t, sc, "sim stop")
	is.True(err != nil)
	_, err = run(t, sc, "sim -stop 42")
	is.True(err != nil)
}

func TestAsyncSimIsBusyAtOnce(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	_, err := run(t, sc, "new -white a:human -black b:human")
	is.NoErr(err)

	_, err = run(t, sc, "sim -trials 100000000 -threads 1 -async true")
	is.NoErr(err)
	is.True(sc.busy())
	_, err = run(t, sc, "sim -trials 5")
	is.True(err != nil)
	_, err = run(t, sc, "sim log")
	is.True(err != nil)

	_, err = run(t, sc, "sim stop")
	is.NoErr(err)
	is.True(!sc.busy())
	_, err = run(t, sc, "sim stop")
	is.True(err != nil)
}

func TestSaveAndLoad(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	fn := filepath.Join(t.TempDir(), "g.txt")

	_, err := run(t, sc, "new -white ann:human -black bob:random")
	is.NoErr(err)
	_, err = run(t, sc, "play 2/5 2R")
	is.NoErr(err)
	_, err = run(t, sc, "ai")
	is.NoErr(err)
	rows := sc.game.Board().Rows()
	_, err = run(t, sc, "save "+fn)
	is.NoErr(err)

	_, err = run(t, sc, "load "+fn+" -black random")
	is.NoErr(err)
	is.Equal(sc.game.Board().Rows(), rows)
	is.Equal(sc.game.Turn(), 2)
	is.Equal(sc.game.Player(1).Name(), "bob")
	is.True(!sc.isHuman(sc.game.Player(1)))
	is.True(sc.isHuman(sc.game.Player(0)))
}

func TestSet(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	out, err := run(t, sc, "set")
	is.NoErr(err)
	is.True(strings.Contains(out, "minimax-depth"))

	_, err = run(t, sc, "set minimax-time 250ms")
	is.NoErr(err)
	out, err = run(t, sc, "set minimax-time")
	is.NoErr(err)
	is.Equal(out, "250ms")

	_, err = run(t, sc, "set minimax-depth deep")
	is.True(err != nil)
	_, err = run(t, sc, "set lexicon NWL23")
	is.True(err != nil)
}

func TestHelpAndUnknown(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	out, err := run(t, sc, "help")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "Usage:"))
	for _, topic := range commandMetadata["help"].Args {
		_, err = run(t, sc, "help "+topic)
		is.NoErr(err)
	}
	_, err = run(t, sc, "help nothing")
	is.True(err != nil)
	_, err = run(t, sc, "frobnicate")
	is.True(err != nil)
}

func TestExecute(t *testing.T) {
	is := is.New(t)
	sc, out := newTestShell(t)
	sig := make(chan os.Signal, 1)
	sc.Execute(sig, "new -white a:random -black b:random")
	is.True(strings.Contains(out.String(), "a"))
	out.Reset()
	sc.Execute(sig, "ai")
	is.True(strings.HasPrefix(out.String(), "a played "))
	out.Reset()
	sc.Execute(sig, "bogus")
	is.True(strings.HasPrefix(out.String(), "Error: "))
	sc.Execute(sig, "exit")
	is.Equal(len(sig), 1)
}

func TestScript(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	dir := t.TempDir()
	result := filepath.Join(dir, "result.json")
	script := filepath.Join(dir, "s.lua")
	src := `
local json = require("json")
pentago_new("-white a:human -black b:random")
local played = pentago_play("1/5 1R")
local bad = pentago_play("9/9 9X")
pentago_ai("")
local f = io.open("` + result + `", "w")
f:write(json.encode({played = played ~= "", bad = string.sub(bad, 1, 6)}))
f:close()
`
	is.NoErr(os.WriteFile(script, []byte(src), 0o644))
	_, err := run(t, sc, "script "+script)
	is.NoErr(err)
	is.Equal(sc.game.Turn(), 2)

	contents, err := os.ReadFile(result)
	is.NoErr(err)
	is.True(strings.Contains(string(contents), `"bad":"ERROR:"`))
	is.True(strings.Contains(string(contents), `"played":true`))
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestShell(t)
	c := NewShellCompleter(sc)

	complete := func(line string) []string {
		matches, _ := c.Do([]rune(line), len(line))
		var out []string
		for _, m := range matches {
			out = append(out, string(m))
		}
		return out
	}
	is.Equal(complete("so"), []string{"lve"})
	is.Equal(complete("sim -st"), []string{"op"})
	is.Equal(complete("sim -stop 9"), []string{"5", "8", "9"})
	is.Equal(complete("new -white bob:mc"), []string{"ts"})
	is.Equal(complete("help ar"), []string{"ena"})
}
