// Package results renders computed leaderboards as downloadable
// JSON, CSV or ZIP documents.
package results

import (
	"bytes"
	"context"
	"fmt"

	"github.com/programme-lv/competitions/comp"
	"github.com/programme-lv/competitions/leaderboard"
	"github.com/programme-lv/competitions/logger"
	"github.com/programme-lv/competitions/metrics"
	decorator "github.com/programme-lv/competitions/srvccqs"
)

type CompRepo interface {
	GetCompetition(ctx context.Context, id int64) (comp.Competition, error)
}

type BoardRepo interface {
	// ordered by id
	ListLeaderboards(ctx context.Context, compID int64) ([]leaderboard.Leaderboard, error)
	// ordered by submission creation time
	ListEntries(ctx context.Context, lbID int64) ([]leaderboard.Entry, error)
}

type Exporter struct {
	comps  CompRepo
	boards BoardRepo
}

func NewExporter(comps CompRepo, boards BoardRepo) *Exporter {
	return &Exporter{comps: comps, boards: boards}
}

type ExportQuery struct {
	CompetitionID int64
	Format        Format
	Selector      Selector
	Filter        *leaderboard.Filter
}

type Export struct {
	Filename    string // set for archives only
	ContentType string
	Body        []byte
}

// Export computes every selected leaderboard and renders them in order.
func (e *Exporter) Export(ctx context.Context, q ExportQuery) (Export, error) {
	competition, err := e.comps.GetCompetition(ctx, q.CompetitionID)
	if err != nil {
		return Export{}, err
	}

	all, err := e.boards.ListLeaderboards(ctx, competition.ID)
	if err != nil {
		return Export{}, fmt.Errorf("failed to list leaderboards: %w", err)
	}
	selected, err := q.Selector.Apply(all)
	if err != nil {
		return Export{}, err
	}

	computed := make([]leaderboard.Result, 0, len(selected))
	for _, lb := range selected {
		entries, err := e.boards.ListEntries(ctx, lb.ID)
		if err != nil {
			return Export{}, fmt.Errorf("failed to list entries of leaderboard %d: %w", lb.ID, err)
		}
		computed = append(computed, leaderboard.Compute(lb, entries, q.Filter))
	}

	var buf bytes.Buffer
	res := Export{ContentType: q.Format.ContentType()}
	switch q.Format {
	case FormatCSV:
		err = writeCSVBlocks(&buf, computed)
	case FormatZIP:
		err = writeZip(&buf, computed)
		res.Filename = competition.Title + ".zip"
	default:
		err = writeJSON(&buf, computed)
	}
	if err != nil {
		return Export{}, fmt.Errorf("failed to render %s export: %w", q.Format, err)
	}
	res.Body = buf.Bytes()

	metrics.RecordExport(string(q.Format))
	logger.FromContext(ctx).Debug("results exported",
		"competition_id", competition.ID,
		"format", q.Format,
		"selector", q.Selector.String(),
		"leaderboards", len(computed))
	return res, nil
}

func (e *Exporter) ExportHandler() decorator.QueryHandler[ExportQuery, Export] {
	return decorator.QueryHandlerFunc[ExportQuery, Export](e.Export)
}
