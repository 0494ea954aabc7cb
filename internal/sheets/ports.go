// Package sheets defines the outbound port for exporting owner rollups to a
// spreadsheet.
package sheets

import (
	"context"
	"time"

	"ledgerbook/internal/core"
)

// Summary is one owner's monthly rollup as it is laid out on a sheet.
type Summary struct {
	Owner       string
	Rows        []core.MonthlyRollupRow
	Totals      core.RollupTotals
	GeneratedAt time.Time
}

// Ports for outbound adapters.
type (
	// SummaryWriter replaces the owner's summary tab with s and returns a
	// reference to the written range.
	SummaryWriter interface {
		WriteSummary(ctx context.Context, s Summary) (ref string, err error)
	}
)
