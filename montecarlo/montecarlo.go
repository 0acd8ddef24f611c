// Package montecarlo implements a flat Monte-Carlo player: every candidate
// move is followed by many random games, and the move whose games are won
// most often is chosen.
package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
	"lukechampine.com/frand"

	"github.com/domino14/pentago/board"
	"github.com/domino14/pentago/move"
	"github.com/domino14/pentago/movegen"
	"github.com/domino14/pentago/stats"
)

const (
	DefaultTrials = 1000

	stopConditionCheckInterval = 32
)

var (
	ErrNotPrepared = errors.New("please prepare the simulation first")
	ErrNoPlays     = errors.New("there are no plays to simulate")
)

// LogPlay is a single candidate, serialized to the log stream when the
// sim ends.
type LogPlay struct {
	Play    string  `json:"play" yaml:"play"`
	WinRate float64 `json:"win" yaml:"win"`
	Trials  int     `json:"trials" yaml:"trials"`
	Ignored bool    `json:"ignored,omitempty" yaml:"ignored,omitempty"`
}

type SimmedPlay struct {
	sync.RWMutex
	play move.Move
	// each rollout pushes 1 for a win and 0 for anything else.
	winStats stats.Statistic
	ignore   bool
}

func (sp *SimmedPlay) String() string {
	sp.RLock()
	defer sp.RUnlock()
	return fmt.Sprintf("<Simmed play: %v (win %.3f over %d)>", sp.play,
		sp.winStats.Mean(), sp.winStats.Iterations())
}

func (sp *SimmedPlay) Ignore() {
	sp.Lock()
	sp.ignore = true
	sp.Unlock()
}

func (sp *SimmedPlay) Ignored() bool {
	sp.RLock()
	defer sp.RUnlock()
	return sp.ignore
}

func (sp *SimmedPlay) addWinStat(win bool) {
	v := 0.0
	if win {
		v = 1.0
	}
	sp.Lock()
	sp.winStats.Push(v)
	sp.Unlock()
}

func (sp *SimmedPlay) Move() move.Move {
	return sp.play
}

// WinRate is the fraction of rollouts won, from 0 to 1.
func (sp *SimmedPlay) WinRate() float64 {
	sp.RLock()
	defer sp.RUnlock()
	return sp.winStats.Mean()
}

func (sp *SimmedPlay) Trials() int {
	sp.RLock()
	defer sp.RUnlock()
	return sp.winStats.Iterations()
}

type SimmedPlays struct {
	sync.RWMutex
	plays []*SimmedPlay
}

// PlaysNoLock returns the plays without locking.
func (s *SimmedPlays) PlaysNoLock() []*SimmedPlay {
	return s.plays
}

// Simmer runs the rollouts for one color.
type Simmer struct {
	color     board.PlayerColor
	trials    int
	threads   int
	origBoard *board.Board

	iterationCount atomic.Uint64
	nodeCount      atomic.Uint64

	simming           atomic.Bool
	readyToSim        bool
	simmedPlays       *SimmedPlays
	stoppingCondition StoppingCondition

	logStream io.Writer
}

// Init sets the color to play for and the number of rollouts per play.
func (s *Simmer) Init(color board.PlayerColor, trials int) {
	s.color = color
	s.trials = trials
	if s.trials <= 0 {
		s.trials = DefaultTrials
	}
	if s.threads == 0 {
		s.threads = 1
	}
	s.stoppingCondition = StopNone
}

func (s *Simmer) SetThreads(threads int) {
	s.threads = max(1, threads)
}

func (s *Simmer) Threads() int {
	return s.threads
}

func (s *Simmer) SetTrials(trials int) {
	if trials > 0 {
		s.trials = trials
	}
}

func (s *Simmer) SetStoppingCondition(sc StoppingCondition) {
	s.stoppingCondition = sc
}

func (s *Simmer) SetLogStream(l io.Writer) {
	s.logStream = l
}

func (s *Simmer) Color() board.PlayerColor {
	return s.color
}

func (s *Simmer) IsSimming() bool {
	return s.simming.Load()
}

func (s *Simmer) Ready() bool {
	return s.readyToSim
}

// Iterations is the number of rounds completed by the last Simulate. A
// round is one rollout of every play still in the running.
func (s *Simmer) Iterations() int {
	return int(s.iterationCount.Load())
}

// Nodes counts random moves made during rollouts.
func (s *Simmer) Nodes() uint64 {
	return s.nodeCount.Load()
}

// PrepareSim creates one SimmedPlay per legal move of b. b is copied.
func (s *Simmer) PrepareSim(b *board.Board) error {
	plays := movegen.StaticList(b, nil)
	if len(plays) == 0 {
		return ErrNoPlays
	}
	s.origBoard = b.Clone()
	s.simmedPlays = &SimmedPlays{plays: make([]*SimmedPlay, len(plays))}
	for i, p := range plays {
		s.simmedPlays.plays[i] = &SimmedPlay{play: p}
	}
	s.iterationCount.Store(0)
	s.nodeCount.Store(0)
	s.readyToSim = true
	return nil
}

// rollout plays p and then random moves for both sides until somebody
// wins or the board fills up. It returns true when the game ends in an
// outright win for the simmer's color.
func (s *Simmer) rollout(scratch *board.Board, p move.Move, rng *frand.RNG) bool {
	scratch.CopyFrom(s.origBoard)
	scratch.ApplyMoveNoCheck(p, s.color)
	status := scratch.CheckForWins()
	mover := s.color.Opponent()
	for status == board.NoWin && !scratch.IsFull() {
		scratch.ApplyMoveNoCheck(movegen.RandomMove(scratch, rng), mover)
		s.nodeCount.Add(1)
		mover = mover.Opponent()
		status = scratch.CheckForWins()
	}
	return status == board.WinFor(s.color)
}

func (s *Simmer) simSingleIteration(ctx context.Context, scratch *board.Board, rng *frand.RNG) error {
	for _, sp := range s.simmedPlays.plays {
		if err := ctx.Err(); err != nil {
			return err
		}
		if sp.Ignored() {
			continue
		}
		sp.addWinStat(s.rollout(scratch, sp.play, rng))
	}
	return nil
}

// Simulate runs the configured number of rounds over the prepared plays.
// Rounds are handed out to s.threads workers. Cancelling ctx ends the sim
// early; that is not an error.
func (s *Simmer) Simulate(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	if !s.readyToSim || s.simmedPlays == nil {
		return ErrNotPrepared
	}
	s.simming.Store(true)
	defer func() {
		s.simming.Store(false)
		s.readyToSim = false
	}()

	tstart := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var claimed atomic.Uint64
	g := errgroup.Group{}
	for t := 0; t < s.threads; t++ {
		g.Go(func() error {
			scratch := s.origBoard.Clone()
			rng := frand.New()
			for {
				it := claimed.Add(1)
				if it > uint64(s.trials) {
					return nil
				}
				if err := s.simSingleIteration(ctx, scratch, rng); err != nil {
					return err
				}
				done := s.iterationCount.Add(1)
				if s.stoppingCondition != StopNone && done%stopConditionCheckInterval == 0 {
					if shouldStop(s.simmedPlays.plays, s.stoppingCondition, int(done)) {
						logger.Debug().Uint64("iterations", done).Msg("reached stopping condition")
						cancel()
						return nil
					}
				}
			}
		})
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Debug().AnErr("ctxErr", err).Msg("montecarlo-it's ok, not an error")
		err = nil
	}

	elapsed := time.Since(tstart)
	nodes := s.nodeCount.Load()
	logger.Debug().
		Float64("time-taken", elapsed.Seconds()).
		Float64("nps", float64(nodes)/max(elapsed.Seconds(), 1e-9)).
		Uint64("nodes", nodes).
		Uint64("iterations", s.iterationCount.Load()).
		Msg("sim-ended")

	s.sortPlaysByWinRate(false)
	if err == nil {
		err = s.writeLog()
	}
	return err
}

func (s *Simmer) writeLog() error {
	if s.logStream == nil {
		return nil
	}
	s.simmedPlays.RLock()
	logPlays := make([]LogPlay, len(s.simmedPlays.plays))
	for i, sp := range s.simmedPlays.plays {
		sp.RLock()
		logPlays[i] = LogPlay{
			Play:    sp.play.String(),
			WinRate: sp.winStats.Mean(),
			Trials:  sp.winStats.Iterations(),
			Ignored: sp.ignore,
		}
		sp.RUnlock()
	}
	s.simmedPlays.RUnlock()
	out, err := yaml.Marshal(logPlays)
	if err != nil {
		return err
	}
	_, err = s.logStream.Write(out)
	return err
}

func (s *Simmer) sortPlaysByWinRate(ignoredAtBottom bool) {
	s.simmedPlays.Lock()
	defer s.simmedPlays.Unlock()
	plays := s.simmedPlays.plays
	sort.SliceStable(plays, func(i, j int) bool {
		if ignoredAtBottom && plays[i].ignore != plays[j].ignore {
			return !plays[i].ignore
		}
		return plays[i].winStats.Mean() > plays[j].winStats.Mean()
	})
}

// WinningPlay returns the play with the best win rate among those not cut
// by the stopping condition.
func (s *Simmer) WinningPlay() *SimmedPlay {
	if s.simmedPlays == nil || len(s.simmedPlays.plays) == 0 {
		return nil
	}
	s.sortPlaysByWinRate(true)
	s.simmedPlays.RLock()
	defer s.simmedPlays.RUnlock()
	return s.simmedPlays.plays[0]
}

// PlaysByWinRate returns the plays sorted best first.
func (s *Simmer) PlaysByWinRate() *SimmedPlays {
	s.sortPlaysByWinRate(false)
	return s.simmedPlays
}

func (s *Simmer) ShortDetails(nplays int) string {
	var ss strings.Builder
	if s.simmedPlays == nil {
		return "No simmed plays."
	}
	s.sortPlaysByWinRate(true)

	s.simmedPlays.RLock()
	defer s.simmedPlays.RUnlock()

	plays := s.simmedPlays.plays
	if len(plays) > nplays {
		plays = plays[:nplays]
	}
	for idx, play := range plays {
		fmt.Fprintf(&ss, "%d) %s (%.1f%%)  ", idx+1, play.play, 100.0*play.winStats.Mean())
	}
	fmt.Fprintf(&ss, "; iters = %d", s.iterationCount.Load())
	return ss.String()
}

// EquityStats prints every play with a 99% interval on its win rate.
func (s *Simmer) EquityStats() string {
	var ss strings.Builder
	if s.simmedPlays == nil {
		return "No simmed plays."
	}
	s.sortPlaysByWinRate(false)
	fmt.Fprintf(&ss, "%-12s%-16s%-8s\n", "Play", "Win%", "Iters")
	s.simmedPlays.RLock()
	defer s.simmedPlays.RUnlock()
	for _, play := range s.simmedPlays.plays {
		wpStats := fmt.Sprintf("%.2f±%.2f", 100.0*play.winStats.Mean(),
			100.0*play.winStats.StandardError(stats.Z99))
		ignore := ""
		if play.ignore {
			ignore = "❌"
		}
		fmt.Fprintf(&ss, "%-12s%-16s%-8d%s\n", play.play, wpStats, play.winStats.Iterations(), ignore)
	}
	fmt.Fprintf(&ss, "Iterations: %d (intervals are 99%% confidence, ❌ marks plays cut off early)\n",
		s.iterationCount.Load())
	return ss.String()
}

// BestMove prepares and runs a full sim on b and returns the winner.
func (s *Simmer) BestMove(ctx context.Context, b *board.Board) (move.Move, error) {
	if err := s.PrepareSim(b); err != nil {
		return move.Invalid, err
	}
	if err := s.Simulate(ctx); err != nil {
		return move.Invalid, err
	}
	wp := s.WinningPlay()
	if wp == nil {
		return move.Invalid, ErrNoPlays
	}
	zerolog.Ctx(ctx).Debug().Str("play", wp.play.String()).Float64("win", wp.WinRate()).
		Int("trials", wp.Trials()).Msg("montecarlo-best-move")
	return wp.play, nil
}
