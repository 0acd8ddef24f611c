package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/domino14/pentago/turnplayer"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"new": {
		Options: []string{"-white", "-black", "-first"},
	},
	"solve": {
		Options: []string{"-depth", "-time", "-disable-id", "-disable-killers", "-log"},
	},
	"sim": {
		Options: []string{"-trials", "-threads", "-stop", "-async"},
		Args:    []string{"stop", "show", "details", "log"},
	},
	"arena": {
		Options: []string{"-games", "-threads", "-depth", "-time", "-trials", "-log", "-gamelog", "-sample"},
		Args:    []string{"analyze"},
	},
	"load": {
		Options: []string{"-white", "-black"},
	},
	"save": {
		Options: []string{"-encoding"},
	},
	"set": {
		Args: settableKeys(),
	},
	"setconfig": {
		Args: settableKeys(),
	},
	"help": {
		Args: []string{"new", "play", "solve", "sim", "arena", "save", "load", "set", "script"},
	},
}

var commandNames = []string{
	"help", "new", "show", "play", "ai", "autoplay", "eval", "solve", "sim",
	"save", "load", "arena", "set", "setconfig", "script", "exit",
}

var boolValues = []string{"true", "false"}
var stopValues = []string{"95", "98", "99"}

func (c *ShellCompleter) kinds() []string {
	if c.sc != nil && c.sc.factory != nil {
		return c.sc.factory.Prompts()
	}
	return []string{turnplayer.KindHuman, turnplayer.KindRandom, turnplayer.KindMinimax, turnplayer.KindMCTS}
}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		// unbalanced quotes; fall back to simple space splitting
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		if strings.HasPrefix(lastCompleteField, "-") {
			switch strings.TrimPrefix(lastCompleteField, "-") {
			case "stop":
				completions = stopValues
			case "async", "disable-id", "disable-killers":
				completions = boolValues
			case "encoding":
				completions = []string{"utf8", "iso-8859-1"}
			case "first":
				completions = []string{"white", "black"}
			case "white", "black":
				completions = c.kinds()
				if cmdName == "new" {
					// name:kind; complete the kind after the colon.
					if _, kind, found := strings.Cut(prefix, ":"); found {
						prefix = kind
					} else {
						completions = nil
					}
				}
			}
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
