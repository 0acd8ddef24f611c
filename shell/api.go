package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/pentago/automatic"
	"github.com/domino14/pentago/board"
	"github.com/domino14/pentago/config"
	"github.com/domino14/pentago/equity"
	"github.com/domino14/pentago/game"
	"github.com/domino14/pentago/gameio"
	"github.com/domino14/pentago/minimax"
	"github.com/domino14/pentago/montecarlo"
	"github.com/domino14/pentago/turnplayer"
)

const (
	defaultWhite = "you:human"
	defaultBlack = "computer:minimax"
)

type cmdOptions map[string]string

func (c cmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v, ok := c[key]
	if !ok {
		return defaultI, nil
	}
	return strconv.Atoi(v)
}

func (c cmdOptions) DurationDefault(key string, defaultD time.Duration) (time.Duration, error) {
	v, ok := c[key]
	if !ok {
		return defaultD, nil
	}
	return time.ParseDuration(v)
}

func (c cmdOptions) Bool(key string) bool {
	return strings.ToLower(c[key]) == "true"
}

func (sc *ShellController) requireGame() error {
	if sc.game == nil {
		return errNoGame
	}
	return nil
}

func (sc *ShellController) isHuman(c turnplayer.Controller) bool {
	id, _ := sc.factory.ByPrompt(turnplayer.KindHuman)
	return c.KindID() == id
}

// newGame starts a fresh game. Players are given as name:kind.
func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	if sc.busy() {
		return nil, errPentagoBusy
	}
	specs := map[board.PlayerColor]string{
		board.WhitePlayer: defaultWhite,
		board.BlackPlayer: defaultBlack,
	}
	if v, ok := cmd.options["white"]; ok {
		specs[board.WhitePlayer] = v
	}
	if v, ok := cmd.options["black"]; ok {
		specs[board.BlackPlayer] = v
	}
	b := board.New()
	var players [2]turnplayer.Controller
	for i, color := range []board.PlayerColor{board.WhitePlayer, board.BlackPlayer} {
		spec, err := turnplayer.ParsePlayerSpec(specs[color])
		if err != nil {
			return nil, err
		}
		players[i], err = sc.factory.ConstructByPrompt(spec.Kind, spec.Name, color, b)
		if err != nil {
			return nil, fmt.Errorf("%w (choose from %s)", err,
				strings.Join(sc.factory.Prompts(), ", "))
		}
	}
	g, err := game.NewGame(b, players[0], players[1])
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(cmd.options["first"], "black") {
		g.SwapPlayers()
	}
	sc.game = g
	return msg(g.ToDisplayText()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) afterMove() string {
	out := sc.game.ToDisplayText()
	if sc.game.Playing() == game.GameOver {
		out += "\n" + game.ResultString(sc.game.Result())
	}
	return out
}

// play makes a move for the player on turn, whoever controls it.
func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	m, err := turnplayer.ParseMove(cmd.args)
	if err != nil {
		return nil, err
	}
	if _, err := sc.game.PlayMove(m); err != nil {
		return nil, err
	}
	return msg(sc.afterMove()), nil
}

func (sc *ShellController) playComputerTurn(ctx context.Context) (board.WinStatus, error) {
	cur := sc.game.Current()
	if sc.isHuman(cur) {
		return board.NoWin, fmt.Errorf("it is %s's turn; use `play <move>`", cur.Name())
	}
	return sc.game.PlayTurn(ctx)
}

// aiplay lets the controller on turn pick its move.
func (sc *ShellController) aiplay(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	if sc.busy() {
		return nil, errPentagoBusy
	}
	if _, err := sc.playComputerTurn(context.Background()); err != nil {
		return nil, err
	}
	last := sc.game.History()[sc.game.Turn()-1]
	return msg(fmt.Sprintf("%s played %s\n%s", last.Player, last.Move, sc.afterMove())), nil
}

// autoplay plays computer turns until the game ends or a human is to move.
func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	if sc.busy() {
		return nil, errPentagoBusy
	}
	var sb strings.Builder
	for sc.game.Playing() == game.Playing && !sc.isHuman(sc.game.Current()) {
		if _, err := sc.game.PlayTurn(context.Background()); err != nil {
			return nil, err
		}
		last := sc.game.History()[sc.game.Turn()-1]
		fmt.Fprintf(&sb, "%s played %s\n", last.Player, last.Move)
	}
	sb.WriteString(sc.afterMove())
	if sc.game.Playing() == game.Playing {
		fmt.Fprintf(&sb, "\nWaiting for %s.", sc.game.Current().Name())
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, c := range []board.PlayerColor{board.WhitePlayer, board.BlackPlayer} {
		e := equity.NewEvaluator(c)
		own, opp := e.Runs(sc.game.Board())
		fmt.Fprintf(&sb, "%s: score %.3f  runs %v  opponent runs %v\n",
			c, e.ScoreBoard(sc.game.Board()), own, opp)
	}
	return msg(strings.TrimSuffix(sb.String(), "\n")), nil
}

// solve runs the minimax engine for the side to move without playing.
func (sc *ShellController) solve(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	opts := cmdOptions(cmd.options)
	depth, err := opts.IntDefault("depth", sc.config.GetInt(config.ConfigMinimaxDepth))
	if err != nil {
		return nil, err
	}
	maxTime, err := opts.DurationDefault("time", sc.config.GetDuration(config.ConfigMinimaxTime))
	if err != nil {
		return nil, err
	}
	color := sc.game.Current().Color()
	solver := minimax.NewSolver(color, depth, maxTime)
	if opts.Bool("disable-id") {
		solver.SetIterativeDeepening(false)
	}
	if opts.Bool("disable-killers") {
		solver.SetKillerPlayOptim(false)
	}
	if frac := sc.config.GetFloat64(config.ConfigEvalCacheFraction); frac > 0 {
		solver.SetEvalCache(minimax.NewEvalCache(frac))
	}
	if fn, ok := cmd.options["log"]; ok {
		f, err := os.Create(fn)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		solver.SetLogStream(f)
	}
	tstart := time.Now()
	m, v, err := solver.Solve(context.Background(), sc.game.Board())
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("Best move for %s: %s\nValue: %.3f\nDepth completed: %d\nNodes: %d\nTime: %.2fs",
		color, m, v, solver.CompletedDepth(), solver.Nodes(), time.Since(tstart).Seconds())), nil
}

func (sc *ShellController) sim(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 {
		return sc.simControlArguments(cmd.args)
	}
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	if sc.busy() {
		return nil, errors.New("simming already, please do a `sim stop` first")
	}
	opts := cmdOptions(cmd.options)
	trials, err := opts.IntDefault("trials", sc.config.GetInt(config.ConfigMctsTrials))
	if err != nil {
		return nil, err
	}
	threads, err := opts.IntDefault("threads", sc.config.GetInt(config.ConfigMctsThreads))
	if err != nil {
		return nil, err
	}
	stoppingCondition := montecarlo.StopNone
	if v, ok := cmd.options["stop"]; ok {
		var valid bool
		if stoppingCondition, valid = montecarlo.StoppingConditionFromString(v); !valid {
			return nil, errors.New("only allowed values are 95, 98, and 99 for stopping condition")
		}
	}
	log.Debug().Int("trials", trials).Int("threads", threads).
		Int("stoppingCondition", int(stoppingCondition)).Msg("will start sim")

	sc.simmer.Init(sc.game.Current().Color(), trials)
	sc.simmer.SetThreads(threads)
	sc.simmer.SetStoppingCondition(stoppingCondition)
	if err := sc.simmer.PrepareSim(sc.game.Board()); err != nil {
		return nil, err
	}
	if opts.Bool("async") {
		sc.startSim()
		return msg("Simulation started. Please do `sim show` and `sim details` to see more info"), nil
	}
	if err := sc.simmer.Simulate(context.Background()); err != nil {
		return nil, err
	}
	return msg(sc.simmer.EquityStats()), nil
}

func (sc *ShellController) startSim() {
	sc.simRunning.Store(true)
	sc.simCtx, sc.simCancel = context.WithCancel(context.Background())
	sc.simTicker = time.NewTicker(10 * time.Second)
	sc.simTickerDone = make(chan bool)
	go func() {
		for {
			select {
			case <-sc.simTickerDone:
				log.Debug().Msg("ticker thread exiting...")
				return
			case <-sc.simTicker.C:
				log.Info().Msgf("Simmer is at %v iterations...", sc.simmer.Iterations())
			}
		}
	}()
	go func() {
		err := sc.simmer.Simulate(sc.simCtx)
		if err != nil {
			sc.showError(err)
		}
		sc.simTicker.Stop()
		sc.simRunning.Store(false)
		close(sc.simTickerDone)
		log.Debug().Msg("simulation thread exiting...")
	}()
}

func (sc *ShellController) simControlArguments(args []string) (*Response, error) {
	switch args[0] {
	case "log":
		if sc.busy() {
			return nil, errors.New("please stop sim before making any log changes")
		}
		f, err := os.Create(SimLog)
		if err != nil {
			return nil, err
		}
		if sc.simLogFile != nil {
			sc.simLogFile.Close()
		}
		sc.simLogFile = f
		sc.simmer.SetLogStream(sc.simLogFile)
		return msg("sim will log to " + SimLog), nil
	case "stop":
		if !sc.simRunning.Load() {
			return nil, errors.New("no running sim to stop")
		}
		sc.simCancel()
		<-sc.simTickerDone
		return msg(sc.simmer.EquityStats()), nil
	case "details":
		return msg(sc.simmer.ShortDetails(10)), nil
	case "show":
		return msg(sc.simmer.EquityStats()), nil
	}
	return nil, fmt.Errorf("do not understand sim argument %v", args[0])
}

func (sc *ShellController) save(cmd *shellcmd) (*Response, error) {
	if err := sc.requireGame(); err != nil {
		return nil, err
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: save <file>")
	}
	s := gameio.FromGame(sc.game)
	if enc, ok := cmd.options["encoding"]; ok {
		s.Encoding = enc
	}
	if err := gameio.SaveFile(cmd.args[0], s); err != nil {
		return nil, err
	}
	return msg("saved game to " + cmd.args[0]), nil
}

// load restores a saved game. Both sides are humans unless -white or
// -black name a controller kind.
func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: load <file> [-white kind] [-black kind]")
	}
	if sc.busy() {
		return nil, errPentagoBusy
	}
	s, err := gameio.LoadFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	b, err := s.Board()
	if err != nil {
		return nil, err
	}
	var players [2]turnplayer.Controller
	for i := range players {
		kind := turnplayer.KindHuman
		if s.Colors[i] == board.WhitePlayer {
			if k, ok := cmd.options["white"]; ok {
				kind = k
			}
		} else if k, ok := cmd.options["black"]; ok {
			kind = k
		}
		players[i], err = sc.factory.ConstructByPrompt(strings.ToLower(kind), s.Names[i], s.Colors[i], b)
		if err != nil {
			return nil, err
		}
	}
	g, err := s.Restore(players[0], players[1])
	if err != nil {
		return nil, err
	}
	sc.game = g
	return msg(g.ToDisplayText()), nil
}

func (sc *ShellController) arena(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 2 && cmd.args[0] == "analyze" {
		summary, err := automatic.AnalyzeLogFile(cmd.args[1])
		if err != nil {
			return nil, err
		}
		return msg(summary), nil
	}
	if sc.busy() {
		return nil, errPentagoBusy
	}
	opts := cmdOptions(cmd.options)
	var err error
	ao := automatic.ArenaOptions{
		EvalCacheFraction: sc.config.GetFloat64(config.ConfigEvalCacheFraction),
		MctsThreads:       sc.config.GetInt(config.ConfigMctsThreads),
		LogFile:           cmd.options["log"],
		GameLog:           cmd.options["gamelog"],
	}
	if ao.Games, err = opts.IntDefault("games", sc.config.GetInt(config.ConfigArenaGames)); err != nil {
		return nil, err
	}
	if ao.Threads, err = opts.IntDefault("threads", sc.config.GetInt(config.ConfigArenaThreads)); err != nil {
		return nil, err
	}
	if ao.MinimaxDepth, err = opts.IntDefault("depth", sc.config.GetInt(config.ConfigMinimaxDepth)); err != nil {
		return nil, err
	}
	if ao.MinimaxTime, err = opts.DurationDefault("time", sc.config.GetDuration(config.ConfigMinimaxTime)); err != nil {
		return nil, err
	}
	if ao.Trials, err = opts.IntDefault("trials", sc.config.GetInt(config.ConfigMctsTrials)); err != nil {
		return nil, err
	}
	sample, err := opts.IntDefault("sample", 1)
	if err != nil {
		return nil, err
	}
	ao.GameLogSampleRate = uint64(max(1, sample))

	sc.arenaBusy = true
	defer func() { sc.arenaBusy = false }()
	res, err := automatic.RunArena(context.Background(), ao)
	if err != nil {
		return nil, err
	}
	return msg(res.Summary()), nil
}

// settable lists the config keys `set` may change and how to parse them.
var settable = map[string]func(string) (any, error){
	config.ConfigMinimaxDepth:      func(s string) (any, error) { return strconv.Atoi(s) },
	config.ConfigMinimaxTime:       func(s string) (any, error) { return time.ParseDuration(s) },
	config.ConfigMctsTrials:        func(s string) (any, error) { return strconv.Atoi(s) },
	config.ConfigMctsThreads:       func(s string) (any, error) { return strconv.Atoi(s) },
	config.ConfigEvalCacheFraction: func(s string) (any, error) { return strconv.ParseFloat(s, 64) },
	config.ConfigArenaGames:        func(s string) (any, error) { return strconv.Atoi(s) },
	config.ConfigArenaThreads:      func(s string) (any, error) { return strconv.Atoi(s) },
	config.ConfigDebug:             func(s string) (any, error) { return strconv.ParseBool(s) },
}

func settableKeys() []string {
	keys := make([]string, 0, len(settable))
	for k := range settable {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// set changes a setting for this session. New players pick it up; players
// already in a game keep theirs.
func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		var sb strings.Builder
		for _, k := range settableKeys() {
			fmt.Fprintf(&sb, "%-22s %v\n", k, sc.config.Get(k))
		}
		return msg(strings.TrimSuffix(sb.String(), "\n")), nil
	}
	key := cmd.args[0]
	parse, ok := settable[key]
	if !ok {
		return nil, fmt.Errorf("unknown setting %q; choose from %s", key,
			strings.Join(settableKeys(), ", "))
	}
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%v", sc.config.Get(key))), nil
	}
	v, err := parse(cmd.args[1])
	if err != nil {
		return nil, err
	}
	sc.config.Set(key, v)
	return msg(fmt.Sprintf("set %s to %v", key, v)), nil
}

func (sc *ShellController) setConfig(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) < 2 {
		return nil, errors.New("usage: setconfig <key> <value>")
	}
	if _, err := sc.set(cmd); err != nil {
		return nil, err
	}
	if err := sc.config.Write(); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	return msg(fmt.Sprintf("set config %s to %s and saved to file", cmd.args[0], cmd.args[1])), nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return usage("standard")
	}
	return usageTopic(cmd.args[0])
}
