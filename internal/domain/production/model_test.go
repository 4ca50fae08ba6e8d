package production

import (
	"testing"

	"quarryflow/internal/core/types"
)

func TestParseShift(t *testing.T) {
	if s, ok := ParseShift("DAY"); !ok || s != ShiftDay {
		t.Errorf("ParseShift(DAY) = %q, %v", s, ok)
	}
	if s, ok := ParseShift("NIGHT"); !ok || s != ShiftNight {
		t.Errorf("ParseShift(NIGHT) = %q, %v", s, ok)
	}
	if _, ok := ParseShift("day"); ok {
		t.Error("ParseShift must be case sensitive")
	}
	if _, ok := ParseShift(""); ok {
		t.Error("ParseShift must reject empty input")
	}
}

func TestStageIsValid(t *testing.T) {
	for _, stage := range Stages {
		if !stage.IsValid() {
			t.Errorf("stage %q reported invalid", stage)
		}
	}
	if Stage("screening").IsValid() {
		t.Error("unknown stage reported valid")
	}
}

func TestTonnages(t *testing.T) {
	records := []Record{
		{Tonnage: types.MustTonnage("10")},
		{Tonnage: types.MustTonnage("20.5")},
	}

	values := Tonnages(records)
	if len(values) != 2 {
		t.Fatalf("len = %d, want 2", len(values))
	}
	if !values[0].Equal(types.MustTonnage("10")) || !values[1].Equal(types.MustTonnage("20.5")) {
		t.Errorf("Tonnages did not preserve values in order: %v", values)
	}
}
