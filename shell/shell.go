package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/pentago/config"
	"github.com/domino14/pentago/game"
	"github.com/domino14/pentago/montecarlo"
	"github.com/domino14/pentago/turnplayer"
)

const SimLog = "/tmp/pentago-simlog"

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoGame            = errors.New("no game in progress; start one with `new` or `load`")
	errPentagoBusy       = errors.New("pentago is busy with a simulation or arena; please wait")
)

type ShellController struct {
	l          *readline.Instance
	out        io.Writer
	config     *config.Config
	execPath   string
	gitVersion string

	// human controllers never read input; moves are typed with `play`.
	factory *turnplayer.Factory
	game    *game.Game

	simmer        *montecarlo.Simmer
	simCtx        context.Context
	simCancel     context.CancelFunc
	simTicker     *time.Ticker
	simTickerDone chan bool
	simLogFile    *os.File
	// set from the moment an async sim is launched until it has exited.
	simRunning atomic.Bool

	arenaBusy bool
}

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config, execPath, gitVersion string) *ShellController {
	sc := newShellController(cfg, nil)
	sc.execPath = execPath
	sc.gitVersion = gitVersion
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mpentago>\033[0m ",
		HistoryFile:     cfg.GetString(config.ConfigHistoryFile),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	sc.out = l.Stderr()
	return sc
}

// newShellController builds a controller without a terminal; output goes
// to out.
func newShellController(cfg *config.Config, out io.Writer) *ShellController {
	return &ShellController{
		out:     out,
		config:  cfg,
		factory: turnplayer.NewDefaultFactory(cfg, strings.NewReader(""), io.Discard),
		simmer:  &montecarlo.Simmer{},
	}
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func (sc *ShellController) busy() bool {
	return sc.simRunning.Load() || sc.simmer.IsSimming() || sc.arenaBusy
}

// extractFields splits a line into a command, its arguments and its
// -options. Every option takes exactly one value.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := map[string]string{}
	for idx := 1; idx < len(fields); idx++ {
		if strings.HasPrefix(fields[idx], "-") {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[fields[idx][1:]] = fields[idx+1]
			idx++
			continue
		}
		args = append(args, fields[idx])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "bye":
		sig <- syscall.SIGINT
		return nil, errors.New("sending quit signal")
	case "help":
		return sc.help(cmd)
	case "new", "n":
		return sc.newGame(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "play", "p":
		return sc.play(cmd)
	case "ai", "a":
		return sc.aiplay(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "eval":
		return sc.eval(cmd)
	case "solve":
		return sc.solve(cmd)
	case "sim":
		return sc.sim(cmd)
	case "save":
		return sc.save(cmd)
	case "load":
		return sc.load(cmd)
	case "arena":
		return sc.arena(cmd)
	case "set":
		return sc.set(cmd)
	case "setconfig":
		return sc.setConfig(cmd)
	case "script":
		return sc.script(cmd)
	default:
		log.Debug().Msgf("you said: %v", line)
		return nil, fmt.Errorf("unrecognized command %q; try `help`", cmd.cmd)
	}
}

// Execute runs a single command, e.g. from the command line.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.standardModeSwitch(strings.TrimSpace(line), sig)
	if err != nil {
		sc.showError(err)
		return
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.standardModeSwitch(line, sig)
		if err != nil {
			if line == "exit" || line == "bye" {
				break
			}
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup stops a running simulation and closes its log.
func (sc *ShellController) Cleanup() {
	if sc.simRunning.Load() && sc.simCancel != nil {
		sc.simCancel()
	}
	if sc.simLogFile != nil {
		sc.simLogFile.Close()
		sc.simLogFile = nil
	}
	log.Info().Msg("shell-cleaned-up")
}
