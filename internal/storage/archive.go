package storage

import (
	"dedi-tracker/internal/domain"
	"dedi-tracker/internal/parse"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
)

// csvTimeLayout is day-first with seconds, matching the source site and
// what the archive reader coerces back through parse.RecordDate.
const csvTimeLayout = "02/01/2006 15:04:05"

var csvHeader = []string{
	"Game", "Login", "NickName", "Rank", "Max", "Record",
	"Mode", "CPs", "MapCPs", "Challenge", "Envir", "RecordDate", "MapUID",
}

// Archive persists the last successfully scraped dataset as a CSV flat
// file, read back at cold start when the in-memory slot is still empty.
type Archive struct {
	path   string
	logger zerolog.Logger
}

func NewArchive(path string, logger zerolog.Logger) *Archive {
	return &Archive{path: path, logger: logger}
}

// Write replaces the archive with the given dataset. The file is written
// to a temp sibling and renamed so readers never see a torn file.
func (a *Archive) Write(dataset domain.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(a.path), "dedi-archive-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(csvHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("writing archive header: %w", err)
	}
	for _, rec := range dataset.Records {
		if err := w.Write(toRow(rec)); err != nil {
			tmp.Close()
			return fmt.Errorf("writing archive row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp archive: %w", err)
	}

	if err := os.Rename(tmp.Name(), a.path); err != nil {
		return fmt.Errorf("replacing archive: %w", err)
	}

	a.logger.Info().Str("path", a.path).Int("records", len(dataset.Records)).Msg("dataset archived")
	return nil
}

// Load reads the archived dataset back, coercing numeric and temporal
// columns the same way the scraper does. A missing archive returns an
// empty dataset and no error.
func (a *Archive) Load() (domain.Dataset, error) {
	f, err := os.Open(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Dataset{}, nil
		}
		return domain.Dataset{}, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("stat archive: %w", err)
	}

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("reading archive: %w", err)
	}
	if len(rows) < 2 {
		return domain.Dataset{FetchedAt: info.ModTime()}, nil
	}

	dataset := domain.Dataset{
		Records:   make([]domain.Record, 0, len(rows)-1),
		FetchedAt: info.ModTime(),
	}
	for _, row := range rows[1:] {
		if len(row) != len(csvHeader) {
			continue
		}
		dataset.Records = append(dataset.Records, fromRow(row))
	}

	a.logger.Info().Str("path", a.path).Int("records", len(dataset.Records)).Msg("archived dataset loaded")
	return dataset, nil
}

func toRow(rec domain.Record) []string {
	timeText := ""
	if rec.TimeValid {
		timeText = strconv.FormatFloat(rec.TimeSeconds, 'f', -1, 64)
	}
	dateText := ""
	if !rec.RecordDate.IsZero() {
		dateText = rec.RecordDate.Format(csvTimeLayout)
	}
	return []string{
		rec.Game,
		rec.Login,
		rec.Nickname,
		strconv.Itoa(rec.Rank),
		strconv.Itoa(rec.MaxEntries),
		timeText,
		rec.Mode,
		strconv.Itoa(rec.Checkpoints),
		rec.MapCheckpoints,
		rec.Challenge,
		rec.Environment,
		dateText,
		rec.MapUID,
	}
}

func fromRow(row []string) domain.Record {
	rec := domain.Record{
		Game:           row[0],
		Login:          row[1],
		Nickname:       row[2],
		Rank:           parse.Int(row[3]),
		MaxEntries:     parse.Int(row[4]),
		Mode:           row[6],
		Checkpoints:    parse.Int(row[7]),
		MapCheckpoints: row[8],
		Challenge:      row[9],
		Environment:    row[10],
		MapUID:         row[12],
	}
	if secs, err := strconv.ParseFloat(row[5], 64); err == nil {
		rec.TimeSeconds = secs
		rec.TimeValid = true
	}
	if date, ok := parse.RecordDate(row[11]); ok {
		rec.RecordDate = date
	}
	return rec
}
