package scrape

import (
	"context"
	"dedi-tracker/internal/constants"
	"dedi-tracker/internal/domain"
	"time"

	"github.com/rs/zerolog"
)

// Result is one complete pass over the configured map list. A cycle with
// zero successful fetches is still a valid (empty) result, never an error.
// FetchedUIDs lists the maps whose pages were actually retrieved and
// parsed this cycle; rows for any other map are simply unknown, not gone.
type Result struct {
	Dataset     domain.Dataset
	FetchedUIDs []string
	Succeeded   int
	Failed      int
}

// Orchestrator fetches every configured map page sequentially and
// aggregates the parsed rows into one dataset. Per-map failures are logged
// and skipped; they are retried on the next cycle, not within this one.
type Orchestrator struct {
	client *Client
	parser *PageParser
	logger zerolog.Logger
}

func NewOrchestrator(client *Client, parser *PageParser, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{client: client, parser: parser, logger: logger}
}

// Scrape runs one full cycle over uids. Duplicate UIDs are tolerated and
// simply refetched.
func (o *Orchestrator) Scrape(ctx context.Context, uids []string) Result {
	result := Result{
		Dataset: domain.Dataset{FetchedAt: time.Now().UTC()},
	}

	o.logger.Info().Int("uid_count", len(uids)).Msg("starting scrape cycle")

	for n, uid := range uids {
		fetchCtx, cancel := context.WithTimeout(ctx, constants.FetchTimeout)
		body, err := o.client.FetchPage(fetchCtx, uid)
		cancel()
		if err != nil {
			o.logger.Warn().Err(err).Str("uid", uid).Int("n", n+1).Int("total", len(uids)).Msg("fetch failed, skipping")
			result.Failed++
			continue
		}

		lines, err := StripHTML(body)
		if err != nil {
			o.logger.Warn().Err(err).Str("uid", uid).Msg("stripping page failed, skipping")
			result.Failed++
			continue
		}

		records := o.parser.Parse(uid, lines)
		if len(records) == 0 {
			o.logger.Warn().Str("uid", uid).Msg("no records found")
		} else {
			o.logger.Debug().Str("uid", uid).Int("records", len(records)).Msg("page parsed")
		}

		result.Dataset.Records = append(result.Dataset.Records, records...)
		result.FetchedUIDs = append(result.FetchedUIDs, uid)
		result.Succeeded++
	}

	o.logger.Info().
		Int("records", len(result.Dataset.Records)).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("scrape cycle finished")

	return result
}
