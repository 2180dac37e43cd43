// Package quarterly derives quarter values that a filing only reports
// cumulatively (six, nine or twelve months).
package quarterly

import (
	"math/big"

	"go.uber.org/zap"

	"github.com/agentic-research/xbrlgraph/api"
	"github.com/agentic-research/xbrlgraph/internal/xbrl"
)

const quarterMonths = 3

type periodKey struct {
	parameter string
	segment   string
	date      string // start or end date, depending on the index
	months    int
}

type index map[periodKey][]*xbrl.FactValue

// add stores v unless a fact with the same context is already present.
func (ix index) add(k periodKey, v *xbrl.FactValue) {
	for _, o := range ix[k] {
		if o.ContextRef() == v.ContextRef() {
			return
		}
	}
	ix[k] = append(ix[k], v)
}

// Infer returns an estimate for every cumulative numeric value whose last
// quarter was not reported itself. The quarter is the difference between
// the cumulative value and the one for the same start date ending three
// months earlier. Exactly one such earlier value must exist; otherwise the
// value is skipped and a warning is logged.
func Infer(doc *xbrl.Document) []api.Estimate {
	logger := doc.Logger()

	byEnd, byStart := index{}, index{}
	var cumulative []*xbrl.FactValue
	for _, v := range doc.Values() {
		ctx := v.Context()
		if ctx == nil || ctx.Instant || !v.IsNumeric() {
			continue
		}
		seg := ctx.SegmentDescription()
		byEnd.add(periodKey{v.Parameter(), seg, ctx.Date(), ctx.Months}, v)
		byStart.add(periodKey{v.Parameter(), seg, ctx.StartDate(), ctx.Months}, v)
		switch ctx.Months {
		case 6, 9, 12:
			cumulative = append(cumulative, v)
		}
	}

	var out []api.Estimate
	done := make(map[periodKey]bool)
	for _, v := range cumulative {
		ctx := v.Context()
		seg := ctx.SegmentDescription()
		if len(byEnd[periodKey{v.Parameter(), seg, ctx.Date(), quarterMonths}]) > 0 {
			continue
		}
		self := periodKey{v.Parameter(), seg, ctx.Date(), ctx.Months}
		if done[self] {
			continue
		}
		done[self] = true

		fromMonths := ctx.Months - quarterMonths
		prev := byStart[periodKey{v.Parameter(), seg, ctx.StartDate(), fromMonths}]
		if len(prev) != 1 {
			logger.Warn("quarterly value could not be determined",
				zap.String("parameter", v.Parameter()),
				zap.String("date", ctx.Date()),
				zap.String("segment", seg),
				zap.Int("fromMonths", fromMonths),
				zap.Int("candidates", len(prev)))
			continue
		}

		cur, err := v.Decimal()
		if err != nil {
			continue
		}
		earlier, err := prev[0].Decimal()
		if err != nil {
			logger.Warn("quarterly subtrahend is not numeric",
				zap.String("parameter", v.Parameter()),
				zap.String("context", prev[0].ContextRef()))
			continue
		}

		out = append(out, api.Estimate{
			Parameter:  v.Parameter(),
			Label:      v.Label().Text,
			Segment:    seg,
			Start:      prev[0].Context().End.AddDate(0, 0, 1).Format("2006-01-02"),
			End:        ctx.Date(),
			Months:     quarterMonths,
			Value:      xbrl.FormatDecimal(new(big.Rat).Sub(cur, earlier)),
			Cumulative: v.ContextRef(),
			Previous:   prev[0].ContextRef(),
		})
	}

	logger.Debug("quarterly inference finished",
		zap.Int("cumulative", len(cumulative)),
		zap.Int("estimates", len(out)))
	return out
}
