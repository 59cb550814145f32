package scrape

import (
	"dedi-tracker/internal/domain"
	"dedi-tracker/internal/parse"
	"strings"

	"github.com/rs/zerolog"
)

// rowMarker opens every data row on a Dedimania records page; the marker
// line itself is the Game column.
const rowMarker = "TMU"

// headerFields is the fixed 12-line header block that precedes the data
// region; the row blocks map positionally onto the same 12 columns.
var headerFields = []string{
	"Game", "Login", "NickName", "Rank", "Max",
	"Record", "Mode", "CPs", "MapCPs", "Challenge",
	"Envir", "RecordDate",
}

// pageState tags the parser's position within a page. Malformed pages fall
// out of the machine before reaching stateRows, yielding zero records.
type pageState int

const (
	stateSearching pageState = iota // looking for the header block
	stateRows                       // consuming marker-delimited rows
	stateTerminated                 // hit the Limit footer
)

// PageParser turns the stripped text lines of one records page into
// structured rows.
type PageParser struct {
	logger zerolog.Logger
}

func NewPageParser(logger zerolog.Logger) *PageParser {
	return &PageParser{logger: logger}
}

// Parse scans lines for the header block and the "Limit" footer, then
// sweeps the region between them left to right, emitting one record per
// rowMarker followed by at least 11 lines. A trailing marker with fewer
// lines is dropped. A page missing either boundary yields no records.
func (p *PageParser) Parse(uid string, lines []string) []domain.Record {
	var records []domain.Record
	state := stateSearching
	var data []string

	for i := 0; state == stateSearching && i+len(headerFields) <= len(lines); i++ {
		if !matchesHeader(lines[i : i+len(headerFields)]) {
			continue
		}
		end := findLimit(lines, i+len(headerFields))
		if end < 0 {
			p.logger.Warn().Str("uid", uid).Msg("page has no Limit footer")
			return nil
		}
		data = lines[i+len(headerFields) : end]
		state = stateRows
	}
	if state != stateRows {
		p.logger.Warn().Str("uid", uid).Msg("page has no header block")
		return nil
	}

	for i := 0; i < len(data); {
		if data[i] != rowMarker {
			i++
			continue
		}
		if i+len(headerFields) > len(data) {
			// incomplete trailing row
			break
		}
		records = append(records, p.buildRecord(uid, data[i:i+len(headerFields)]))
		i += len(headerFields)
	}

	return records
}

func (p *PageParser) buildRecord(uid string, block []string) domain.Record {
	rec := domain.Record{
		Game:           block[0],
		Login:          block[1],
		Nickname:       parse.CleanNickname(block[2]),
		Rank:           parse.Int(block[3]),
		MaxEntries:     parse.Int(block[4]),
		Mode:           block[6],
		Checkpoints:    parse.Int(block[7]),
		MapCheckpoints: block[8],
		Challenge:      block[9],
		Environment:    block[10],
		MapUID:         uid,
	}

	secs, err := parse.RecordTime(block[5])
	if err != nil {
		p.logger.Warn().Err(err).Str("uid", uid).Str("login", rec.Login).Msg("unparsable record time")
	} else {
		rec.TimeSeconds = secs
		rec.TimeValid = true
	}

	if date, ok := parse.RecordDate(block[11]); ok {
		rec.RecordDate = date
	}

	return rec
}

func matchesHeader(window []string) bool {
	for i, field := range headerFields {
		if window[i] != field {
			return false
		}
	}
	return true
}

func findLimit(lines []string, from int) int {
	for i := from; i < len(lines); i++ {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(lines[i])), "limit") {
			return i
		}
	}
	return -1
}
