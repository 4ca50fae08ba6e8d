package reconciliation

import (
	"quarryflow/internal/core/types"
)

// Checkpoint names and tolerance bands. Checkpoints 1 and 3 run a loose 8%
// band; checkpoint 2 runs a tight 3% band because truck loads and the
// weighbridge are both fixed measuring points with little expected loss.
var (
	thresholdExcavatorHauling = types.MustTonnage("8")
	thresholdHaulingFeed      = types.MustTonnage("3")
	thresholdFeedOutput       = types.MustTonnage("8")

	alertMultiplier = types.MustTonnage("1.5")

	// Healthy crushing-loss range: fines, dust and moisture account for
	// 2-8% mass reduction between feed and output.
	minExpectedLossPercent = types.MustTonnage("2")
	maxExpectedLossPercent = types.MustTonnage("8")
)

const (
	checkpointExcavatorHauling = "Excavator → Hauling"
	checkpointHaulingFeed      = "Hauling → Crusher Feed"
	checkpointFeedOutput       = "Crusher Feed → Output"
)

// Classify computes the variance between an expected and an actual tonnage
// and grades it against a symmetric tolerance band. Pure function, no I/O.
//
// A zero expected tonnage yields variancePercent = 0 rather than a division
// error; an empty upstream stage must not fail the reconciliation.
func Classify(index int, name string, expected, actual, thresholdPercent types.Tonnage) Checkpoint {
	variance := actual.Sub(expected)
	variancePercent := types.RatioPercent(variance, expected)

	return Checkpoint{
		Index:            index,
		Name:             name,
		Expected:         expected,
		Actual:           actual,
		Variance:         variance,
		VariancePercent:  variancePercent,
		ThresholdPercent: thresholdPercent,
		Status:           gradeSymmetric(variancePercent, thresholdPercent),
	}
}

// gradeSymmetric applies the generic band: ALERT past 1.5x the threshold,
// WARNING past the threshold, OK otherwise. Comparisons are strict, so a
// variance sitting exactly on the threshold is still OK.
func gradeSymmetric(variancePercent, thresholdPercent types.Tonnage) CheckpointStatus {
	abs := variancePercent.Abs()
	if abs.GreaterThan(thresholdPercent.Mul(alertMultiplier)) {
		return StatusAlert
	}
	if abs.GreaterThan(thresholdPercent) {
		return StatusWarning
	}
	return StatusOK
}

// classifyCrusherLoss runs checkpoint 3. The symmetric grade is computed
// first, then overridden by the loss-aware policy: crushing is expected to
// lose mass, so a loss inside [2%, 8%] is healthy regardless of what the
// symmetric band says. A larger loss points at leakage, a weighbridge fault
// or theft; a suspiciously small loss points at double counting or
// miscalibration.
func classifyCrusherLoss(feed, output types.Tonnage) Checkpoint {
	cp := Classify(3, checkpointFeedOutput, feed, output, thresholdFeedOutput)

	// Positive when output < feed.
	lossPercent := cp.VariancePercent.Neg()

	switch {
	case lossPercent.GreaterThan(maxExpectedLossPercent):
		cp.Status = StatusAlert
	case lossPercent.LessThan(minExpectedLossPercent):
		cp.Status = StatusWarning
	default:
		cp.Status = StatusOK
	}

	return cp
}
