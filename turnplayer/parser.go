package turnplayer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/domino14/pentago/move"
)

var ErrBadPlayerSpec = errors.New("player must look like name:kind")

// PlayerSpec is a player as typed on the command line, e.g. "alice:minimax".
type PlayerSpec struct {
	Name string
	Kind string
}

// ParsePlayerSpec splits name:kind. A bare kind is its own name.
func ParsePlayerSpec(s string) (PlayerSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PlayerSpec{}, ErrBadPlayerSpec
	}
	name, kind, found := strings.Cut(s, ":")
	if !found {
		return PlayerSpec{Name: s, Kind: strings.ToLower(s)}, nil
	}
	if name == "" || kind == "" {
		return PlayerSpec{}, fmt.Errorf("%w: %q", ErrBadPlayerSpec, s)
	}
	return PlayerSpec{Name: name, Kind: strings.ToLower(kind)}, nil
}

// ParseMove reads a move typed as separate fields, e.g. ["1/5", "1R"].
func ParseMove(fields []string) (move.Move, error) {
	if len(fields) == 0 {
		return move.Invalid, fmt.Errorf("%w: no move given", move.ErrBadFormat)
	}
	return move.FromString(strings.Join(fields, " "))
}
