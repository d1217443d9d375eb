package pipeline

import (
	"github.com/xbfeng/gnssppp/pkg/combination"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// ComputeCombination applies an ordered combination.Set to every
// satellite, ported from ComputeCombination.cpp's per-satellite,
// per-combination loop (pkg/combination already implements the
// skip-on-missing-input and FIFO-ordering semantics of spec §4.2).
type ComputeCombination struct {
	Combinations combination.Set
}

func (ComputeCombination) Name() string { return "ComputeCombination" }

func (c ComputeCombination) Process(_ obs.Epoch, data obs.SatTypeValueMap) error {
	c.Combinations.Apply(data)
	return nil
}
