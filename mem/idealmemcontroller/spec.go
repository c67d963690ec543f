// Package idealmemcontroller provides a memory that serves every request after
// a fixed number of cycles.
package idealmemcontroller

import (
	"fmt"

	"github.com/sarchlab/cachesim/sim"
)

// Spec holds the parameters of an ideal memory controller.
type Spec struct {
	Latency    int      `json:"latency"`
	Freq       sim.Freq `json:"freq"`
	Capacity   uint64   `json:"capacity"`
	BaseAddr   uint64   `json:"base_addr"`
	ReqCredits uint32   `json:"req_credits"`
}

// Defaults returns a 4 GiB memory with a 100-cycle latency.
func Defaults() Spec {
	return Spec{
		Latency:    100,
		Freq:       1 * sim.GHz,
		Capacity:   4 << 30,
		ReqCredits: 1,
	}
}

// Validate returns an error if the memory cannot be built.
func (s Spec) Validate() error {
	if s.Latency < 0 {
		return fmt.Errorf("latency must not be negative, got %d", s.Latency)
	}

	if s.Freq <= 0 {
		return fmt.Errorf("frequency must be positive, got %f", float64(s.Freq))
	}

	if s.Capacity == 0 {
		return fmt.Errorf("capacity must not be 0")
	}

	if s.ReqCredits == 0 {
		return fmt.Errorf("at least one request credit is required")
	}

	return nil
}
