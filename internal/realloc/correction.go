package realloc

import "math"

// Allocation is a per-item weight pair, either as proposed or as corrected.
type Allocation struct {
	Code    string
	NetKg   float64
	GrossKg float64
}

const (
	// minPackaging keeps the packaging distribution well defined when a
	// proposal claims zero packaging for an item.
	minPackaging = 1e-6

	// SumTolerance is the acceptable absolute drift between corrected sums
	// and the shipment targets. Drift beyond it is logged, never fatal.
	SumTolerance = 1e-5
)

// Correct rescales the proposed allocations so their net and gross sums hit
// the shipment targets exactly, preserving the proposal's relative shape.
//
// Net weights are scaled multiplicatively, which keeps them nonnegative and
// proportional. When the proposal nets sum to zero the target is split
// equally instead. Packaging (gross minus net) is redistributed the same way
// on its own basis, so every corrected gross stays at or above its net.
func Correct(proposed []Allocation, targetNet, targetGross float64) []Allocation {
	n := len(proposed)
	if n == 0 {
		return nil
	}

	// Repair individually implausible proposals before scaling. A negative
	// net or a gross below net would poison both distributions.
	nets := make([]float64, n)
	packs := make([]float64, n)
	for i, p := range proposed {
		nets[i] = math.Max(p.NetKg, 0)
		packs[i] = math.Max(p.GrossKg-nets[i], minPackaging)
	}

	sumNet := 0.0
	for _, v := range nets {
		sumNet += v
	}
	corrected := make([]Allocation, n)
	if sumNet > minPackaging {
		scale := targetNet / sumNet
		for i := range nets {
			corrected[i].NetKg = nets[i] * scale
		}
	} else {
		share := targetNet / float64(n)
		for i := range nets {
			corrected[i].NetKg = math.Max(share, 0)
		}
	}

	targetPack := math.Max(targetGross-targetNet, 0)
	sumPack := 0.0
	for _, v := range packs {
		sumPack += v
	}
	for i := range packs {
		corrected[i].Code = proposed[i].Code
		corrected[i].GrossKg = corrected[i].NetKg + packs[i]*targetPack/sumPack
	}
	return corrected
}

// SumDrift returns how far the corrected sums are from the targets.
func SumDrift(corrected []Allocation, targetNet, targetGross float64) (netDrift, grossDrift float64) {
	var sumNet, sumGross float64
	for _, a := range corrected {
		sumNet += a.NetKg
		sumGross += a.GrossKg
	}
	return math.Abs(sumNet - targetNet), math.Abs(sumGross - targetGross)
}
