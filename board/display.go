package board

import (
	"fmt"
	"strings"
)

func (b *Board) writeBorder(sb *strings.Builder) {
	sb.WriteByte('+')
	for i := 0; i < b.cellsPerRow; i++ {
		sb.WriteString(strings.Repeat("-", b.cellSize*2-1))
		sb.WriteByte('+')
	}
	sb.WriteByte('\n')
}

func (b *Board) writeBlankLine(sb *strings.Builder) {
	for i := 0; i < b.size*2; i++ {
		if i%(b.cellSize*2) == 0 {
			sb.WriteByte('|')
		} else {
			sb.WriteByte(' ')
		}
	}
	sb.WriteString("|\n")
}

// String draws the board with quadrant borders, e.g.
//
//	+-----+-----+
//	|. . .|. . .|
//	|     |     |
//	|. w .|. . .|
func (b *Board) String() string {
	var sb strings.Builder
	for y := 0; y < b.size; y++ {
		if y%b.cellSize == 0 {
			b.writeBorder(&sb)
		} else {
			b.writeBlankLine(&sb)
		}
		for x := 0; x < b.size; x++ {
			if x%b.cellSize == 0 {
				sb.WriteByte('|')
			} else {
				sb.WriteByte(' ')
			}
			sb.WriteString(b.GetAbsolute(x, y).String())
		}
		sb.WriteString("|\n")
	}
	b.writeBorder(&sb)
	return sb.String()
}

// Rows returns one string per board row, one character per slot.
func (b *Board) Rows() []string {
	rows := make([]string, b.size)
	for y := 0; y < b.size; y++ {
		var sb strings.Builder
		for x := 0; x < b.size; x++ {
			sb.WriteString(b.GetAbsolute(x, y).String())
		}
		rows[y] = sb.String()
	}
	return rows
}

// FromRows builds a standard board from the output of Rows.
func FromRows(rows []string) (*Board, error) {
	b := New()
	if err := b.SetRows(rows); err != nil {
		return nil, err
	}
	return b, nil
}

// SetRows overwrites the board from the output of Rows. The board is left
// untouched if any row is bad.
func (b *Board) SetRows(rows []string) error {
	if len(rows) != b.size {
		return fmt.Errorf("expected %d rows, got %d", b.size, len(rows))
	}
	var entries [MaxEntries]BoardEntry
	for y, row := range rows {
		runes := []rune(row)
		if len(runes) != b.size {
			return fmt.Errorf("row %d: expected %d entries, got %d", y+1, b.size, len(runes))
		}
		for x, r := range runes {
			e, ok := entryFromRune(r)
			if !ok {
				return fmt.Errorf("row %d: bad entry %q", y+1, r)
			}
			entries[x+y*b.size] = e
		}
	}
	b.entries = entries
	return nil
}
