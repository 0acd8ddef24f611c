// Package gameio reads and writes the plain-text game snapshot.
//
// A snapshot looks like this:
//
//	#encoding utf8
//	Alphonse
//	Gaston
//	W
//	B
//	1
//	......
//	.w....
//	......
//	......
//	......
//	......
//	1/5 1R
//
// The encoding line is optional and may also name iso-8859-1. Then come
// the two player names, their colors, the index of the player to move,
// one line per board row and the moves played so far, oldest first.
package gameio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/domino14/pentago/board"
	"github.com/domino14/pentago/game"
	"github.com/domino14/pentago/move"
	"github.com/domino14/pentago/turnplayer"
)

const (
	EncodingUTF8   = "utf8"
	EncodingLatin1 = "iso-8859-1"

	encodingPragma = "#encoding "
)

var (
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
	ErrUnknownEncoding = errors.New("unhandled character encoding")
	ErrPlayerMismatch  = errors.New("controllers do not match the snapshot")
	errUnexpectedEOF   = errors.New("unexpected end of file")
	errDuplicateColors = errors.New("both players have the same color")
	errBadNextToMove   = errors.New("next to move must be 0 or 1")
	errEmptyPlayerName = errors.New("empty player name")
)

type Snapshot struct {
	Encoding   string
	Names      [2]string
	Colors     [2]board.PlayerColor
	NextToMove int
	Rows       []string
	History    []move.Move
}

func corrupt(line int, err error) error {
	return fmt.Errorf("%w: line %d: %w", ErrCorruptSnapshot, line, err)
}

// FromGame captures the state of g.
func FromGame(g *game.Game) *Snapshot {
	s := &Snapshot{
		Encoding:   EncodingUTF8,
		NextToMove: g.PlayerOnTurn(),
		Rows:       g.Board().Rows(),
	}
	for i := 0; i < 2; i++ {
		s.Names[i] = g.Player(i).Name()
		s.Colors[i] = g.Player(i).Color()
	}
	for _, t := range g.History() {
		s.History = append(s.History, t.Move)
	}
	return s
}

// Board builds the board the snapshot describes.
func (s *Snapshot) Board() (*board.Board, error) {
	return board.FromRows(s.Rows)
}

// Turns rebuilds the history with the color of each mover. Colors
// alternate, and the last move was made by the player not on turn unless
// that move ended the game.
func (s *Snapshot) Turns() ([]game.Turn, error) {
	b, err := s.Board()
	if err != nil {
		return nil, err
	}
	status := b.CheckForWins()
	lastMover := 1 - s.NextToMove
	if status != board.NoWin || b.IsFull() {
		lastMover = s.NextToMove
	}
	turns := make([]game.Turn, len(s.History))
	for i := range s.History {
		seat := lastMover
		if (len(s.History)-1-i)%2 == 1 {
			seat = 1 - lastMover
		}
		turns[i] = game.Turn{Color: s.Colors[seat], Player: s.Names[seat], Move: s.History[i]}
	}
	if len(turns) > 0 {
		turns[len(turns)-1].Status = status
	}
	return turns, nil
}

// Restore starts a game from the snapshot. p1 and p2 must have the colors
// stored for the first and second player.
func (s *Snapshot) Restore(p1, p2 turnplayer.Controller) (*game.Game, error) {
	if p1.Color() != s.Colors[0] || p2.Color() != s.Colors[1] {
		return nil, ErrPlayerMismatch
	}
	b, err := s.Board()
	if err != nil {
		return nil, err
	}
	turns, err := s.Turns()
	if err != nil {
		return nil, err
	}
	return game.NewGameAt(b, p1, p2, s.NextToMove, turns)
}

// Write serializes s. Names are written in s.Encoding.
func Write(w io.Writer, s *Snapshot) error {
	enc := s.Encoding
	if enc == "" {
		enc = EncodingUTF8
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s%s\n", encodingPragma, enc)
	header := sb.Len()
	for _, n := range s.Names {
		sb.WriteString(n + "\n")
	}
	for _, c := range s.Colors {
		sb.WriteString(c.String() + "\n")
	}
	fmt.Fprintf(&sb, "%d\n", s.NextToMove)
	for _, r := range s.Rows {
		sb.WriteString(r + "\n")
	}
	for _, m := range s.History {
		sb.WriteString(m.String() + "\n")
	}
	out := sb.String()
	switch enc {
	case EncodingUTF8:
	case EncodingLatin1:
		body, _, err := transform.String(charmap.ISO8859_1.NewEncoder(), out[header:])
		if err != nil {
			return err
		}
		out = out[:header] + body
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEncoding, enc)
	}
	_, err := io.WriteString(w, out)
	return err
}

// encodingOrFirstLine reads the first line. If it is an encoding pragma
// the returned line is nil.
func encodingOrFirstLine(br *bufio.Reader) (string, *string, error) {
	line, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", nil, err
	}
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, encodingPragma) {
		return EncodingUTF8, &line, nil
	}
	enc := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, encodingPragma)))
	switch enc {
	case "utf8", "utf-8":
		return EncodingUTF8, nil, nil
	case "iso-8859-1", "latin1", "latin-1":
		return EncodingLatin1, nil, nil
	}
	return "", nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, enc)
}

// Read parses a snapshot. Nothing is returned unless the whole snapshot
// is well formed.
func Read(r io.Reader) (*Snapshot, error) {
	br := bufio.NewReader(r)
	enc, firstLine, err := encodingOrFirstLine(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, corrupt(1, errUnexpectedEOF)
		}
		if errors.Is(err, ErrUnknownEncoding) {
			return nil, corrupt(1, err)
		}
		return nil, err
	}
	var scanner *bufio.Scanner
	if enc == EncodingLatin1 {
		scanner = bufio.NewScanner(transform.NewReader(br, charmap.ISO8859_1.NewDecoder()))
	} else {
		scanner = bufio.NewScanner(br)
	}

	var lines []string
	lineOffset := 2
	if firstLine != nil {
		lines = append(lines, *firstLine)
		lineOffset = 1
	}
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	p := &snapshotParser{lines: lines, offset: lineOffset}
	s, err := p.parse()
	if err != nil {
		return nil, err
	}
	s.Encoding = enc
	return s, nil
}

type snapshotParser struct {
	lines  []string
	offset int
	pos    int
}

// lineNo is the 1-based file line of the current position.
func (p *snapshotParser) lineNo() int {
	return p.pos + p.offset
}

func (p *snapshotParser) next() (string, error) {
	if p.pos >= len(p.lines) {
		return "", corrupt(p.lineNo(), errUnexpectedEOF)
	}
	l := p.lines[p.pos]
	p.pos++
	return l, nil
}

func (p *snapshotParser) parse() (*Snapshot, error) {
	s := &Snapshot{}
	for i := 0; i < 2; i++ {
		n, err := p.next()
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(n) == "" {
			return nil, corrupt(p.lineNo()-1, errEmptyPlayerName)
		}
		s.Names[i] = strings.TrimSpace(n)
	}
	for i := 0; i < 2; i++ {
		c, err := p.next()
		if err != nil {
			return nil, err
		}
		s.Colors[i], err = board.ColorFromString(strings.TrimSpace(c))
		if err != nil {
			return nil, corrupt(p.lineNo()-1, err)
		}
	}
	if s.Colors[0] == s.Colors[1] {
		return nil, corrupt(p.lineNo()-1, errDuplicateColors)
	}
	flag, err := p.next()
	if err != nil {
		return nil, err
	}
	s.NextToMove, err = strconv.Atoi(strings.TrimSpace(flag))
	if err != nil || (s.NextToMove != 0 && s.NextToMove != 1) {
		return nil, corrupt(p.lineNo()-1, errBadNextToMove)
	}

	size := board.New().Size()
	for y := 0; y < size; y++ {
		row, err := p.next()
		if err != nil {
			return nil, err
		}
		row = strings.TrimSpace(row)
		if _, err := board.FromRows(padRows(row, y, size)); err != nil {
			return nil, corrupt(p.lineNo()-1, err)
		}
		s.Rows = append(s.Rows, row)
	}

	for p.pos < len(p.lines) {
		l, _ := p.next()
		if strings.TrimSpace(l) == "" {
			continue
		}
		m, err := move.FromString(l)
		if err != nil {
			return nil, corrupt(p.lineNo()-1, err)
		}
		s.History = append(s.History, m)
	}
	return s, nil
}

// padRows places row at index y of an otherwise empty board so a single
// row can be checked on its own.
func padRows(row string, y, size int) []string {
	rows := make([]string, size)
	for i := range rows {
		rows[i] = strings.Repeat(".", size)
	}
	rows[y] = row
	return rows
}

func SaveFile(filename string, s *Snapshot) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := Write(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func LoadFile(filename string) (*Snapshot, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
