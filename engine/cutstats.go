package engine

import "github.com/rs/zerolog"

// CutStatistics collects counts for each pruning/cutoff mechanism.
type CutStatistics struct {
	TTCutoffs        uint64
	NullMoveCutoffs  uint64
	NullVerifyFails  uint64
	RazoringCutoffs  uint64
	FutilityPrunes   uint64
	LateMoveSearches uint64
	LateMoveRetries  uint64
	BetaCutoffs      uint64
	FirstMoveCutoffs uint64
	QStandPatCutoffs uint64
	QBetaCutoffs     uint64
	QDeltaPrunes     uint64
	Splits           uint64
}

func (c *CutStatistics) add(o *CutStatistics) {
	c.TTCutoffs += o.TTCutoffs
	c.NullMoveCutoffs += o.NullMoveCutoffs
	c.NullVerifyFails += o.NullVerifyFails
	c.RazoringCutoffs += o.RazoringCutoffs
	c.FutilityPrunes += o.FutilityPrunes
	c.LateMoveSearches += o.LateMoveSearches
	c.LateMoveRetries += o.LateMoveRetries
	c.BetaCutoffs += o.BetaCutoffs
	c.FirstMoveCutoffs += o.FirstMoveCutoffs
	c.QStandPatCutoffs += o.QStandPatCutoffs
	c.QBetaCutoffs += o.QBetaCutoffs
	c.QDeltaPrunes += o.QDeltaPrunes
	c.Splits += o.Splits
}

// FirstMoveRate is the share of beta cutoffs produced by the first move
// searched, a measure of move ordering quality.
func (c *CutStatistics) FirstMoveRate() float64 {
	if c.BetaCutoffs == 0 {
		return 0
	}
	return float64(c.FirstMoveCutoffs) / float64(c.BetaCutoffs)
}

// MarshalZerologObject lets the statistics be logged with Event.Object.
func (c CutStatistics) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("tt", c.TTCutoffs).
		Uint64("null", c.NullMoveCutoffs).
		Uint64("null-verify-fail", c.NullVerifyFails).
		Uint64("razor", c.RazoringCutoffs).
		Uint64("futility", c.FutilityPrunes).
		Uint64("lmr", c.LateMoveSearches).
		Uint64("lmr-retry", c.LateMoveRetries).
		Uint64("beta", c.BetaCutoffs).
		Float64("first-move-rate", c.FirstMoveRate()).
		Uint64("q-stand-pat", c.QStandPatCutoffs).
		Uint64("q-beta", c.QBetaCutoffs).
		Uint64("q-delta", c.QDeltaPrunes).
		Uint64("splits", c.Splits)
}
