// Package memaccessagent provides an agent that issues random reads and
// writes and checks the data that comes back.
package memaccessagent

import "fmt"

// Spec holds the parameters of an agent.
type Spec struct {
	MaxAddress  uint64  `json:"max_address"`
	LineSize    uint64  `json:"line_size"`
	NumAccesses int     `json:"num_accesses"`
	ReadPercent int     `json:"read_percent"`
	Seed        int64   `json:"seed"`
	GenProb     float64 `json:"gen_prob"`
}

// Defaults returns an agent that issues 1000 accesses to the first MiB.
func Defaults() Spec {
	return Spec{
		MaxAddress:  1 << 20,
		LineSize:    64,
		NumAccesses: 1000,
		ReadPercent: 50,
		Seed:        1,
		GenProb:     1,
	}
}

// Validate returns an error if the agent cannot be built.
func (s Spec) Validate() error {
	if s.LineSize == 0 || s.MaxAddress < s.LineSize {
		return fmt.Errorf("max address 0x%x must hold at least one %d-byte line",
			s.MaxAddress, s.LineSize)
	}

	if s.ReadPercent < 0 || s.ReadPercent > 100 {
		return fmt.Errorf("read percent %d is not in [0, 100]", s.ReadPercent)
	}

	if s.GenProb <= 0 || s.GenProb > 1 {
		return fmt.Errorf("generation probability %f is not in (0, 1]",
			s.GenProb)
	}

	return nil
}
