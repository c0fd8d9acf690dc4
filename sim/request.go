// Defines the Request struct: a unit asking the band database for more spectrum.

package sim

import "fmt"

// Request is a (unit, bandwidth) pair enqueued by a unit and resolved by the
// allocator within the same diurnal slot.
type Request struct {
	UnitID    int
	Bandwidth float64
}

func (r Request) String() string {
	return fmt.Sprintf("Request(unit=%d, bw=%.2f)", r.UnitID, r.Bandwidth)
}
