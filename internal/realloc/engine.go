package realloc

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"intrastat-assistant/constants"
	"intrastat-assistant/internal/entity"
	"intrastat-assistant/internal/llm"
)

// fallbackGrossFactor estimates gross weight from net when an item has to
// fall back to its provisional value.
const fallbackGrossFactor = 1.1

// Engine runs the two-phase weight reallocation for one shipment: a proposal
// phase delegated to a WeightProposer, then a programmatic correction that
// makes the per-item weights sum to the measured targets exactly.
type Engine struct {
	proposer llm.WeightProposer
	logger   *slog.Logger
}

func NewEngine(proposer llm.WeightProposer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{proposer: proposer, logger: logger}
}

// Reallocate fills FinalNet and FinalGross on every item in place. Items
// whose provisional weight carries an error tag keep that tag; model
// failures degrade to sentinel tags on the affected items rather than an
// error, so one bad shipment cannot abort a batch.
func (e *Engine) Reallocate(ctx context.Context, items []entity.LineItem, target entity.ReallocationTarget) error {
	if err := target.Validate(); err != nil {
		return err
	}

	var eligible []int
	for i := range items {
		if items[i].IsProduct && !items[i].PageFailed && items[i].Provisional.Valid() {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		e.logger.Warn("realloc.skipped", "reason", string(constants.TagSkippedNoItems), "items", len(items))
		for i := range items {
			if !items[i].IsProduct || items[i].PageFailed {
				items[i].FinalNet = entity.Tagged(constants.TagNotApplicable)
				items[i].FinalGross = entity.Tagged(constants.TagNotApplicable)
				continue
			}
			items[i].FinalNet = entity.Tagged(constants.TagSkippedNoItems)
			items[i].FinalGross = entity.Tagged(constants.TagSkippedNoItems)
		}
		return nil
	}

	weightItems := make([]llm.WeightItem, 0, len(eligible))
	for _, i := range eligible {
		qty, _ := items[i].Quantity.Float64()
		weightItems = append(weightItems, llm.WeightItem{
			Code:           items[i].ItemCode,
			Description:    items[i].Description,
			Quantity:       qty,
			ProvisionalNet: items[i].Provisional.Kg,
		})
	}

	proposals, err := e.proposer.ProposeWeights(ctx, weightItems, target.NetKg, target.GrossKg)
	if err != nil {
		tag := classifyProposerError(err)
		e.logger.Error("realloc.proposal.failed", "tag", string(tag), "error", err)
		for _, i := range eligible {
			items[i].FinalNet = entity.Tagged(tag)
			items[i].FinalGross = entity.Tagged(tag)
		}
		ApplyFallback(items)
		return nil
	}

	// Split eligible items into those with a usable proposal and those that
	// must fall back to their provisional weight.
	var included []int
	var proposed []Allocation
	for _, i := range eligible {
		p, ok := proposals[items[i].ItemCode]
		switch {
		case !ok:
			e.logger.Warn("realloc.proposal.missing_item", "item_code", items[i].ItemCode, "reason", string(constants.TagNotInProposal))
			items[i].FinalNet = entity.Tagged(constants.TagNotInProposal)
			items[i].FinalGross = entity.Tagged(constants.TagNotInProposal)
		case !isFinite(p.NetKg) || !isFinite(p.GrossKg):
			e.logger.Warn("realloc.proposal.bad_value", "item_code", items[i].ItemCode, "net_kg", p.NetKg, "gross_kg", p.GrossKg)
			items[i].FinalNet = entity.Tagged(constants.TagConvert)
			items[i].FinalGross = entity.Tagged(constants.TagConvert)
		default:
			included = append(included, i)
			proposed = append(proposed, Allocation{Code: items[i].ItemCode, NetKg: p.NetKg, GrossKg: p.GrossKg})
		}
	}
	if len(included) == 0 {
		e.logger.Warn("realloc.skipped", "reason", "no usable proposals")
		ApplyFallback(items)
		return nil
	}

	corrected := Correct(proposed, target.NetKg, target.GrossKg)
	for k, i := range included {
		items[i].FinalNet = entity.Kilograms(corrected[k].NetKg)
		items[i].FinalGross = entity.Kilograms(corrected[k].GrossKg)
	}
	ApplyFallback(items)

	netDrift, grossDrift := SumDrift(corrected, target.NetKg, target.GrossKg)
	if netDrift > SumTolerance || grossDrift > SumTolerance {
		e.logger.Warn("realloc.drift", "net_drift_kg", netDrift, "gross_drift_kg", grossDrift)
	} else {
		e.logger.Info("realloc.done", "items", len(included), "net_drift_kg", netDrift, "gross_drift_kg", grossDrift)
	}
	return nil
}

// ApplyFallback fills final weights for every item that has none yet:
// the provisional value plus a flat gross markup for clean product lines,
// the provisional tag carried through for tagged ones. Items whose final
// weights are already assigned are left alone.
func ApplyFallback(items []entity.LineItem) {
	for i := range items {
		if items[i].FinalNet.Tag != constants.TagNone || items[i].FinalNet.Valid() {
			continue
		}
		if !items[i].IsProduct || items[i].PageFailed {
			items[i].FinalNet = entity.Tagged(constants.TagNotApplicable)
			items[i].FinalGross = entity.Tagged(constants.TagNotApplicable)
			continue
		}
		if items[i].Provisional.Valid() {
			items[i].FinalNet = items[i].Provisional
			items[i].FinalGross = entity.Kilograms(items[i].Provisional.Kg * fallbackGrossFactor)
		} else {
			items[i].FinalNet = items[i].Provisional
			items[i].FinalGross = items[i].Provisional
		}
	}
}

func classifyProposerError(err error) constants.WeightTag {
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		return constants.TagMissingAPIKey
	case errors.Is(err, llm.ErrDecode):
		return constants.TagAIDecodeError
	case errors.Is(err, llm.ErrBadFormat):
		return constants.TagAIBadFormat
	default:
		return constants.TagAIException
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
