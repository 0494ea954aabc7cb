package http

import (
	"net/http"
	"time"

	"ledgerbook/internal/core"
	"ledgerbook/internal/log"

	"github.com/shopspring/decimal"
)

type rollupRow struct {
	Year              int             `json:"year"`
	Month             int             `json:"month"`
	Label             string          `json:"label"`
	PropertyRemaining decimal.Decimal `json:"propertyRemaining"`
	MiscTotal         decimal.Decimal `json:"miscTotal"`
	Difference        decimal.Decimal `json:"difference"`
}

type rollupResponse struct {
	Owner       string            `json:"owner"`
	Rows        []rollupRow       `json:"rows"`
	Totals      core.RollupTotals `json:"totals"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

func (s *Server) handleRollup(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	rollup, err := s.svc.MonthlyRollup(r.Context(), owner)
	if err != nil {
		writeError(w, r, log.OpRollup, err)
		return
	}
	resp := rollupResponse{
		Owner:       rollup.Owner,
		Rows:        make([]rollupRow, 0, len(rollup.Rows)),
		Totals:      rollup.Totals,
		GeneratedAt: rollup.GeneratedAt,
	}
	for _, row := range rollup.Rows {
		resp.Rows = append(resp.Rows, rollupRow{
			Year:              row.Year,
			Month:             row.Month,
			Label:             row.Label(),
			PropertyRemaining: row.PropertyRemaining,
			MiscTotal:         row.MiscTotal,
			Difference:        row.Difference(),
		})
	}
	OK(resp).Write(w)
}
