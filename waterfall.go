package fundcalc

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
)

// TierKind identifies a waterfall tier. Tiers are evaluated strictly in
// their declared order: a tier receives nothing until every prior tier is
// satisfied or the event's proceeds are exhausted.
type TierKind int

const (
	// TierROC returns capital to LPs up to capital outstanding.
	TierROC TierKind = iota
	// TierHurdle pays the LP preferred return.
	TierHurdle
	// TierCatchup accelerates the GP share until the target carry ratio is reached.
	TierCatchup
	// TierCarry splits remaining profit at the carry rate.
	TierCarry
)

func (k TierKind) String() string {
	switch k {
	case TierROC:
		return "roc"
	case TierHurdle:
		return "hurdle"
	case TierCatchup:
		return "catchup"
	case TierCarry:
		return "carry"
	default:
		return "unknown"
	}
}

// ParseTierKind parses a string into a TierKind.
func ParseTierKind(s string) (TierKind, error) {
	switch s {
	case "roc":
		return TierROC, nil
	case "hurdle":
		return TierHurdle, nil
	case "catchup":
		return TierCatchup, nil
	case "carry":
		return TierCarry, nil
	default:
		return 0, fmt.Errorf("unknown waterfall tier: %q", s)
	}
}

// Tier is one step of the distribution waterfall. Rate is the tier's
// governing fraction (preferred rate for hurdle, carry rate for catch-up
// and carry). Cap, when set, is an absolute ceiling on what the tier may
// ever receive cumulatively.
type Tier struct {
	Kind TierKind
	Rate Rate
	Cap  *Money
}

// StandardTiers returns the classic European waterfall for a fund:
// return of capital, preferred return, GP catch-up, carried interest.
func StandardTiers(cfg *FundConfig) []Tier {
	return []Tier{
		{Kind: TierROC},
		{Kind: TierHurdle, Rate: cfg.Hurdle},
		{Kind: TierCatchup, Rate: cfg.Carry},
		{Kind: TierCarry, Rate: cfg.Carry},
	}
}

// DistributionEvent is one exit's proceeds, consumed chronologically.
type DistributionEvent struct {
	Date              Date
	Gross             Money
	CostBasisReturned Money
	ProfitPortion     Money
}

func (e DistributionEvent) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", e.Date)
	w.Append("gross", e.Gross.Decimal())
	w.Append("costBasisReturned", e.CostBasisReturned.Decimal())
	w.Append("profitPortion", e.ProfitPortion.Decimal())
	w.Optional("currency", e.Gross.Currency())
	return w.MarshalJSON()
}

// EventResult is the tier breakdown for a single processed event.
type EventResult struct {
	Date       Date
	Gross      Money // as received, before recycling
	Recycled   Money
	ByTier     map[TierKind]Money
	LPResidual Money
	GPCarry    Money // catch-up + carry paid to the GP this event
	Clawback   Money // non-zero only under the interim trigger
}

// accumulator is the cumulative distribution state threaded through each
// event. It belongs to one Waterfall instance; nothing here is global.
type accumulator struct {
	capitalReturned   Money // ROC paid to date
	preferredAccrued  Money // preferred return accrued to date
	hurdlePaid        Money // preferred return paid to date
	carryPaid         Money // GP catch-up + carry paid to date
	profitDistributed Money // everything distributed beyond ROC
	realizedProfit    Money // sum of events' profit portions
	recycled          Money // recycled back into investable capital
	perTier           map[TierKind]Money
	accruedThrough    Date // preferred accrual watermark
	lastEvent         Date
}

// Waterfall allocates distribution proceeds across tiers, one event at a
// time, in chronological order. One instance serves one run: it owns its
// cumulative state and must not be shared between concurrent runs.
type Waterfall struct {
	cfg    *FundConfig
	tiers  []Tier
	strict bool
	acc    accumulator
	events []EventResult
}

// conservationTolerance is the rounding slack allowed on the per-event
// sum invariant, in currency units.
var conservationTolerance = decimal.NewFromFloat(0.01)

// NewWaterfall builds a waterfall engine for a fund. In strict mode a
// conservation violation (an engine bug, never bad input) fails the call
// instead of only logging.
func NewWaterfall(cfg *FundConfig, tiers []Tier, strict bool) (*Waterfall, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(tiers) == 0 {
		tiers = StandardTiers(cfg)
	}
	for _, t := range tiers {
		if t.Rate.IsNegative() || t.Rate.GreaterThan(R(1)) {
			return nil, fmt.Errorf("tier %s rate %s out of range, want a fraction in [0,1]", t.Kind, t.Rate.Decimal())
		}
	}
	c := cfg.Size.Currency()
	zero := M(0, c)
	return &Waterfall{
		cfg:    cfg,
		tiers:  tiers,
		strict: strict,
		acc: accumulator{
			capitalReturned:   zero,
			preferredAccrued:  zero,
			hurdlePaid:        zero,
			carryPaid:         zero,
			profitDistributed: zero,
			realizedProfit:    zero,
			recycled:          zero,
			perTier:           map[TierKind]Money{},
			accruedThrough:    cfg.Vintage,
		},
	}, nil
}

// Process runs one distribution event through the waterfall.
//
// Order of operations: recycling is applied to the gross proceeds before
// any tier runs, so the clawback test (interim trigger) always sees
// post-recycling allocations.
func (w *Waterfall) Process(e DistributionEvent) (EventResult, error) {
	if e.Gross.IsNegative() {
		return EventResult{}, fmt.Errorf("distribution gross proceeds must not be negative, got %s", e.Gross)
	}
	if !w.acc.lastEvent.IsZero() && e.Date.Before(w.acc.lastEvent) {
		return EventResult{}, fmt.Errorf("distribution events must be processed chronologically: %s is before %s", e.Date, w.acc.lastEvent)
	}

	c := w.cfg.Size.Currency()
	zero := M(0, c)
	res := EventResult{
		Date:     e.Date,
		Gross:    e.Gross,
		Recycled: zero,
		ByTier:   map[TierKind]Money{},
		Clawback: zero,
	}

	w.accrue(e.Date)
	remaining := w.recycle(e, &res)

	for _, t := range w.tiers {
		if remaining.IsZero() {
			break
		}
		capacity := w.capacity(t, e, remaining)
		if cap := t.Cap; cap != nil {
			room := cap.Sub(w.acc.perTier[t.Kind])
			capacity = Min(capacity, maxZero(room))
		}
		take := Min(remaining, maxZero(capacity))
		if take.IsZero() {
			continue
		}
		res.ByTier[t.Kind] = res.ByTier[t.Kind].Add(take).Add(zero)
		remaining = remaining.Sub(take)
		w.credit(t.Kind, take)
	}

	res.LPResidual = remaining
	res.GPCarry = res.ByTier[TierCatchup].Add(res.ByTier[TierCarry]).Add(zero)
	w.acc.profitDistributed = w.acc.profitDistributed.
		Add(res.ByTier[TierHurdle]).Add(res.GPCarry).Add(res.LPResidual)
	w.acc.realizedProfit = w.acc.realizedProfit.Add(e.ProfitPortion)
	w.acc.lastEvent = e.Date

	if err := w.checkConservation(e, res); err != nil {
		return EventResult{}, err
	}

	if w.cfg.ClawbackEnabled && w.cfg.ClawbackTrigger == TriggerInterim {
		cb := w.Clawback()
		if cb.IsPositive() {
			res.Clawback = cb
			// Returned carry is no longer paid; LPs are made whole.
			w.acc.carryPaid = w.acc.carryPaid.Sub(cb)
		}
	}

	w.events = append(w.events, res)
	return res, nil
}

// recycle diverts part of the gross back into investable capital, within
// the cumulative cap and the recycling window, and returns the proceeds
// left for the tiers. Recycling stops mid-event once the cap is reached:
// the triggering distribution is recycled partially, not all-or-nothing.
func (w *Waterfall) recycle(e DistributionEvent, res *EventResult) Money {
	if w.cfg.RecyclingCap.IsZero() {
		return e.Gross
	}
	if QuartersSince(w.cfg.Vintage, e.Date) > w.cfg.RecyclingTerm {
		return e.Gross
	}
	capTotal := w.cfg.Size.MulRate(w.cfg.RecyclingCap)
	room := maxZero(capTotal.Sub(w.acc.recycled))
	recycled := Min(room, e.Gross)
	if recycled.IsPositive() {
		w.acc.recycled = w.acc.recycled.Add(recycled)
		res.Recycled = recycled
	}
	return e.Gross.Sub(recycled)
}

// capacity computes how much a tier can absorb at this point of the event.
func (w *Waterfall) capacity(t Tier, e DistributionEvent, remaining Money) Money {
	c := w.cfg.Size.Currency()
	switch t.Kind {
	case TierROC:
		return w.cfg.Size.Sub(w.acc.capitalReturned)

	case TierHurdle:
		return maxZero(w.acc.preferredAccrued.Sub(w.acc.hurdlePaid))

	case TierCatchup:
		full := w.catchupOwed(t.Rate)
		switch w.cfg.Catchup {
		case CatchupNone:
			return M(0, c)
		case CatchupPartial:
			return full.MulRate(w.cfg.CatchupFraction)
		case CatchupFull:
			return full
		default:
			return M(0, c)
		}

	case TierCarry:
		// carry takes its fraction of whatever profit is left, uncapped
		return remaining.MulRate(t.Rate)

	default:
		return M(0, c)
	}
}

// accrue advances the preferred-return accrual to the given date: simple
// interest at the hurdle rate on capital outstanding, Actual/365. The
// accrual stops naturally once capital is fully returned because the
// outstanding base drops to zero.
func (w *Waterfall) accrue(on Date) {
	if w.cfg.Hurdle.IsZero() || !on.After(w.acc.accruedThrough) {
		w.acc.accruedThrough = on
		return
	}
	base := maxZero(w.cfg.Size.Sub(w.acc.capitalReturned))
	frac := YearFrac(w.acc.accruedThrough, on)
	w.acc.preferredAccrued = w.acc.preferredAccrued.
		Add(base.MulRate(w.cfg.Hurdle).MulDec(frac))
	w.acc.accruedThrough = on
}

// catchupOwed is the amount that brings the GP current to the target
// carry ratio of profit distributed so far:
//
//	catchup = target/(1-target) * hurdlePaid - carryPaid
func (w *Waterfall) catchupOwed(target Rate) Money {
	zero := M(0, w.cfg.Size.Currency())
	one := decimal.NewFromInt(1)
	if target.Decimal().GreaterThanOrEqual(one) {
		// a 100% target means the GP takes everything until current
		return w.acc.hurdlePaid
	}
	ratio := target.Decimal().Div(one.Sub(target.Decimal()))
	owed := w.acc.hurdlePaid.MulDec(ratio).Sub(w.acc.carryPaid)
	if owed.IsNegative() {
		return zero
	}
	return owed
}

func (w *Waterfall) credit(k TierKind, take Money) {
	w.acc.perTier[k] = w.acc.perTier[k].Add(take).Add(M(0, w.cfg.Size.Currency()))
	switch k {
	case TierROC:
		w.acc.capitalReturned = w.acc.capitalReturned.Add(take)
	case TierHurdle:
		w.acc.hurdlePaid = w.acc.hurdlePaid.Add(take)
	case TierCatchup, TierCarry:
		w.acc.carryPaid = w.acc.carryPaid.Add(take)
	}
}

// checkConservation verifies the per-event sum invariant: recycling plus
// every tier allocation plus the LP residual reassembles the gross. A
// violation indicates an engine bug, never bad input.
func (w *Waterfall) checkConservation(e DistributionEvent, res EventResult) error {
	sum := res.Recycled.Add(res.LPResidual)
	for _, m := range res.ByTier {
		sum = sum.Add(m)
	}
	diff := sum.Sub(e.Gross).Decimal().Abs()
	if diff.LessThanOrEqual(conservationTolerance) {
		return nil
	}
	if w.strict {
		return fmt.Errorf("conservation violation on %s: allocated %s of gross %s", e.Date, sum, e.Gross)
	}
	log.Printf("warning: conservation violation on %s: allocated %s of gross %s", e.Date, sum, e.Gross)
	return nil
}

// Clawback returns the carry the GP must hand back given the fund's
// cumulative position: max(0, carry paid - carry owed on cumulative
// realized profit). A fund still below its preferred return owes the GP
// nothing, so any carry paid claws back in full.
func (w *Waterfall) Clawback() Money {
	zero := M(0, w.cfg.Size.Currency())
	if !w.cfg.ClawbackEnabled {
		return zero
	}
	return maxZero(w.acc.carryPaid.Sub(w.carryOwed()))
}

// carryOwed is the carry the GP has actually earned on the fund's
// cumulative realized profit.
func (w *Waterfall) carryOwed() Money {
	zero := M(0, w.cfg.Size.Currency())
	if !w.acc.realizedProfit.IsPositive() {
		return zero
	}
	// below the preferred return, no carry is owed at all
	if w.acc.hurdlePaid.LessThan(w.acc.preferredAccrued) {
		return zero
	}
	return w.acc.realizedProfit.MulRate(w.cfg.Carry)
}

// Totals is the cumulative ledger after the events processed so far.
type Totals struct {
	CapitalReturned   Money
	PreferredAccrued  Money
	HurdlePaid        Money
	CarryPaid         Money
	ProfitDistributed Money
	RealizedProfit    Money
	Recycled          Money
	ByTier            map[TierKind]Money
}

// Totals returns a copy of the cumulative distribution state.
func (w *Waterfall) Totals() Totals {
	byTier := make(map[TierKind]Money, len(w.acc.perTier))
	for k, v := range w.acc.perTier {
		byTier[k] = v
	}
	return Totals{
		CapitalReturned:   w.acc.capitalReturned,
		PreferredAccrued:  w.acc.preferredAccrued,
		HurdlePaid:        w.acc.hurdlePaid,
		CarryPaid:         w.acc.carryPaid,
		ProfitDistributed: w.acc.profitDistributed,
		RealizedProfit:    w.acc.realizedProfit,
		Recycled:          w.acc.recycled,
		ByTier:            byTier,
	}
}

// Events returns the per-event results in processing order.
func (w *Waterfall) Events() []EventResult { return w.events }

// maxZero clamps a money value at zero.
func maxZero(m Money) Money {
	if m.IsNegative() {
		return M(0, m.Currency())
	}
	return m
}
