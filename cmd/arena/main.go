// Command arena plays a batch of minimax vs mcts games and prints the
// win rates.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/domino14/pentago/automatic"
	"github.com/domino14/pentago/config"
)

func main() {
	fs := pflag.NewFlagSet("arena", pflag.ContinueOnError)
	logFile := fs.String("log", "", "CSV file with one line per game")
	gameLog := fs.String("gamelog", "", "YAML file with the moves of sampled games")
	sample := fs.Uint64("sample", 1, "write one game in this many to the game log")
	analyze := fs.String("analyze", "", "summarize an existing CSV log and exit")

	cfg := &config.Config{}
	if err := cfg.LoadWithFlags(os.Args[1:], fs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	level := zerolog.InfoLevel
	if cfg.GetBool(config.ConfigDebug) {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Logger()

	if *analyze != "" {
		summary, err := automatic.AnalyzeLogFile(*analyze)
		if err != nil {
			log.Fatal().Err(err).Msg("analyze-failed")
		}
		fmt.Print(summary)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := automatic.RunArena(ctx, automatic.ArenaOptions{
		Games:             cfg.GetInt(config.ConfigArenaGames),
		Threads:           cfg.GetInt(config.ConfigArenaThreads),
		MinimaxDepth:      cfg.GetInt(config.ConfigMinimaxDepth),
		MinimaxTime:       cfg.GetDuration(config.ConfigMinimaxTime),
		EvalCacheFraction: cfg.GetFloat64(config.ConfigEvalCacheFraction),
		Trials:            cfg.GetInt(config.ConfigMctsTrials),
		MctsThreads:       cfg.GetInt(config.ConfigMctsThreads),
		LogFile:           *logFile,
		GameLog:           *gameLog,
		GameLogSampleRate: *sample,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("arena-failed")
	}
	fmt.Print(res.Summary())
}
