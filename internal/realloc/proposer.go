package realloc

import (
	"context"
	"math"

	"intrastat-assistant/internal/llm"
)

// ProportionalProposer is a deterministic llm.WeightProposer that splits the
// targets by catalog weight alone. It backs the offline mode and stands in
// when the model is unavailable.
//
// Net shares follow the provisional weights. Packaging shares follow the
// square root of the net share, because packaging grows sublinearly with
// item weight (a 10x heavier item does not need 10x the cardboard).
type ProportionalProposer struct{}

var _ llm.WeightProposer = ProportionalProposer{}

func (ProportionalProposer) ProposeWeights(_ context.Context, items []llm.WeightItem, targetNet, targetGross float64) (map[string]llm.WeightProposal, error) {
	n := len(items)
	if n == 0 {
		return map[string]llm.WeightProposal{}, nil
	}

	sumProv := 0.0
	for _, it := range items {
		sumProv += math.Max(it.ProvisionalNet, 0)
	}

	nets := make([]float64, n)
	if sumProv > 0 {
		for i, it := range items {
			nets[i] = targetNet * math.Max(it.ProvisionalNet, 0) / sumProv
		}
	} else {
		for i := range items {
			nets[i] = targetNet / float64(n)
		}
	}

	sumRoot := 0.0
	roots := make([]float64, n)
	for i, v := range nets {
		roots[i] = math.Sqrt(v)
		sumRoot += roots[i]
	}
	targetPack := math.Max(targetGross-targetNet, 0)

	proposals := make(map[string]llm.WeightProposal, n)
	for i, it := range items {
		pack := targetPack / float64(n)
		if sumRoot > 0 {
			pack = targetPack * roots[i] / sumRoot
		}
		proposals[it.Code] = llm.WeightProposal{NetKg: nets[i], GrossKg: nets[i] + pack}
	}
	return proposals, nil
}
