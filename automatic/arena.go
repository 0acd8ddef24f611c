package automatic

// Batches of computer vs computer games.

import (
	"context"
	"encoding/csv"
	"errors"
	"expvar"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	ArenaGamesPlayed *expvar.Int
	ArenaIsPlaying   *expvar.Int
)

var ErrArenaBusy = errors.New("games are already being played, please wait till complete")

func init() {
	ArenaGamesPlayed = expvar.NewInt("arenaGamesPlayed")
	ArenaIsPlaying = expvar.NewInt("arenaIsPlaying")
}

type ArenaOptions struct {
	Games   int
	Threads int

	MinimaxDepth      int
	MinimaxTime       time.Duration
	EvalCacheFraction float64
	Trials            int
	MctsThreads       int

	// LogFile receives one CSV line per game.
	LogFile string
	// GameLog receives the full move list of sampled games as YAML.
	GameLog           string
	GameLogSampleRate uint64

	// Players overrides the default minimax vs mcts matchup.
	Players PlayerMaker
}

func writeCSV(w io.Writer, logchan <-chan []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for rec := range logchan {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeGames(w io.Writer, gamechan <-chan []byte) error {
	for g := range gamechan {
		if _, err := w.Write(g); err != nil {
			return err
		}
	}
	return nil
}

// RunArena plays opts.Games games over opts.Threads workers and tallies the
// results. If ctx is cancelled the games finished so far are returned
// with Interrupted set.
func RunArena(ctx context.Context, opts ArenaOptions) (*ArenaResult, error) {
	if ArenaIsPlaying.Value() > 0 {
		return nil, ErrArenaBusy
	}
	threads := max(1, opts.Threads)

	var logchan chan []string
	var gamechan chan []byte
	// A failed writer cancels wctx, which stops the workers below.
	writers, wctx := errgroup.WithContext(ctx)
	if opts.LogFile != "" {
		f, err := os.Create(opts.LogFile)
		if err != nil {
			return nil, err
		}
		logchan = make(chan []string, 100)
		writers.Go(func() error {
			defer f.Close()
			err := writeCSV(f, logchan)
			log.Info().Msg("exiting-csv-logger")
			return err
		})
	}
	if opts.GameLog != "" {
		f, err := os.Create(opts.GameLog)
		if err != nil {
			if logchan != nil {
				close(logchan)
				writers.Wait()
			}
			return nil, err
		}
		gamechan = make(chan []byte, 10)
		writers.Go(func() error {
			defer f.Close()
			return writeGames(f, gamechan)
		})
	}

	log.Info().Int("games", opts.Games).Int("threads", threads).Msg("starting-arena")
	ArenaGamesPlayed.Set(0)
	jobs := make(chan int, 100)
	var mu sync.Mutex
	var records []GameRecord

	g, gctx := errgroup.WithContext(wctx)
	for t := 0; t < threads; t++ {
		makePlayers := opts.Players
		if makePlayers == nil {
			makePlayers = DefaultPlayers(opts)
		}
		g.Go(func() error {
			r := NewGameRunner(makePlayers, logchan, gamechan, opts.GameLogSampleRate)
			ArenaIsPlaying.Add(1)
			defer ArenaIsPlaying.Add(-1)
			for idx := range jobs {
				rec, err := r.PlayGame(gctx, idx)
				if err != nil {
					if gctx.Err() != nil {
						continue
					}
					return err
				}
				ArenaGamesPlayed.Add(1)
				mu.Lock()
				records = append(records, rec)
				mu.Unlock()
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < opts.Games; i++ {
			select {
			case <-gctx.Done():
				log.Info().Msg("got-stop-signal")
				return nil
			case jobs <- i:
			}
			if (i+1)%1000 == 0 {
				log.Info().Int("queued", i+1).Msg("queued-jobs")
			}
		}
		return nil
	})

	err := g.Wait()
	if logchan != nil {
		close(logchan)
	}
	if gamechan != nil {
		close(gamechan)
	}
	if werr := writers.Wait(); err == nil {
		err = werr
	}
	interrupted := ctx.Err() != nil
	log.Info().Int("played", len(records)).Bool("interrupted", interrupted).Msg("arena-finished")
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Index < records[j].Index })
	res := Tally(records)
	res.Interrupted = interrupted
	return res, nil
}
