package board

// CheckForWins rescans every row, column and diagonal (both directions)
// for WinSize identical pieces in a row. This runs at every search node,
// so it avoids allocation.
func (b *Board) CheckForWins() WinStatus {
	var whiteWin, blackWin bool
	n := b.size

	for y := 0; y < n; y++ {
		b.scanLine(0, y, 1, 0, &whiteWin, &blackWin)
	}
	for x := 0; x < n; x++ {
		b.scanLine(x, 0, 0, 1, &whiteWin, &blackWin)
	}
	// Diagonals going down-right start on the top row or the left column;
	// those going down-left start on the top row or the right column.
	// Anything shorter than WinSize is skipped.
	for x := 0; x <= n-WinSize; x++ {
		b.scanLine(x, 0, 1, 1, &whiteWin, &blackWin)
	}
	for y := 1; y <= n-WinSize; y++ {
		b.scanLine(0, y, 1, 1, &whiteWin, &blackWin)
	}
	for x := WinSize - 1; x < n; x++ {
		b.scanLine(x, 0, -1, 1, &whiteWin, &blackWin)
	}
	for y := 1; y <= n-WinSize; y++ {
		b.scanLine(n-1, y, -1, 1, &whiteWin, &blackWin)
	}

	switch {
	case whiteWin && blackWin:
		return Tie
	case whiteWin:
		return WhiteWin
	case blackWin:
		return BlackWin
	}
	return NoWin
}

func (b *Board) scanLine(x, y, dx, dy int, whiteWin, blackWin *bool) {
	runLen := 0
	runType := Empty
	for x >= 0 && x < b.size && y >= 0 && y < b.size {
		v := b.entries[x+y*b.size]
		if v == runType && v != Empty {
			runLen++
		} else {
			runLen = 1
			runType = v
		}
		if runLen >= WinSize {
			if runType == White {
				*whiteWin = true
			} else if runType == Black {
				*blackWin = true
			}
		}
		x += dx
		y += dy
	}
}
