package automatic

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/domino14/pentago/board"
)

var ErrBadLogFile = errors.New("bad arena log file")

func parseResult(s string) (board.WinStatus, error) {
	switch s {
	case "draw":
		return board.NoWin, nil
	case board.WhiteWin.String():
		return board.WhiteWin, nil
	case board.BlackWin.String():
		return board.BlackWin, nil
	case board.Tie.String():
		return board.Tie, nil
	}
	return board.NoWin, fmt.Errorf("%w: unknown result %q", ErrBadLogFile, s)
}

// ReadLogFile reads the games of an arena CSV log.
func ReadLogFile(r io.Reader) ([]GameRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	var records []GameRecord
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadLogFile, err)
		}
		if record[0] == csvHeader[0] {
			continue
		}
		idx, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadLogFile, err)
		}
		turns, err := strconv.Atoi(record[6])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadLogFile, err)
		}
		result, err := parseResult(record[5])
		if err != nil {
			return nil, err
		}
		records = append(records, GameRecord{
			GameID:     record[0],
			Index:      idx,
			White:      record[2],
			Black:      record[3],
			FirstColor: record[4],
			Result:     result,
			ResultText: record[5],
			Turns:      turns,
		})
	}
	return records, nil
}

// AnalyzeLogFile analyzes the given arena CSV file and spits out a bunch
// of statistics.
func AnalyzeLogFile(filepath string) (string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	records, err := ReadLogFile(file)
	if err != nil {
		return "", err
	}
	return Tally(records).Summary(), nil
}
