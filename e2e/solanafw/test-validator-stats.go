package solanafw

import "fmt"

// TestValidatorStats is a snapshot of the local cluster tip.
type TestValidatorStats struct {
	Healthy     bool
	Slot        uint64
	BlockHeight uint64
}

func (s *TestValidatorStats) String() string {
	if s == nil {
		return "{ nil }"
	}

	return fmt.Sprintf("{ Healthy: %t, Slot: %d, BlockHeight: %d }", s.Healthy, s.Slot, s.BlockHeight)
}
