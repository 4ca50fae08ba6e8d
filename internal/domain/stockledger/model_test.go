package stockledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"quarryflow/internal/core/types"
)

func TestRecalculate(t *testing.T) {
	level := &StockLevel{
		OpeningStock: types.MustTonnage("350"),
		Produced:     types.MustTonnage("500"),
		Sold:         types.MustTonnage("120"),
		Adjustments:  types.MustTonnage("-15"),
	}

	level.Recalculate()

	assert.True(t, level.ClosingStock.Equal(types.MustTonnage("715")))
}

func TestAppendAdjustment_FirstLine(t *testing.T) {
	level := &StockLevel{}

	level.AppendAdjustment(types.MustTonnage("12.5"), "stockpile survey")

	assert.True(t, level.Adjustments.Equal(types.MustTonnage("12.5")))
	assert.True(t, level.ClosingStock.Equal(types.MustTonnage("12.5")))
	if assert.NotNil(t, level.AdjustmentReason) {
		assert.Equal(t, "stockpile survey: 12.5", *level.AdjustmentReason)
	}
}

func TestAppendAdjustment_BlankTrailIsReplaced(t *testing.T) {
	blank := "   "
	level := &StockLevel{AdjustmentReason: &blank}

	level.AppendAdjustment(types.MustTonnage("-2"), "spillage")

	if assert.NotNil(t, level.AdjustmentReason) {
		assert.Equal(t, "spillage: -2", *level.AdjustmentReason)
	}
}
