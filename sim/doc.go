// Package sim provides the spectrum-allocation engine for the band-sharing simulator.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - unit.go: Unit state (demand, granted bandwidth, congestion, group)
//   - allocator.go: grant / shrink / full-grant resolution of a Request
//   - state.go: the explicit State every component is called with
//
// # Architecture
//
// The sim package defines the data model and the allocation path; the
// surrounding machinery lives in sub-packages:
//   - sim/spatial/: interference grouping on k-d trees
//   - sim/topology/: city generation (unit placement by density)
//   - sim/driver/: the Year → Day → Slot clock
//   - sim/trace/: allocation decision records
//   - sim/report/: per-class aggregates and Prometheus export
//
// # Invariants
//
//   - A group's running ledger total equals the sum of its members' bandwidth.
//   - After any request, a group's total never exceeds its class capacity.
//   - Hotspot and cellular capacity always sum to the total band.
//   - A unit is congested iff bandwidth × efficiency < demand; the flag is
//     recomputed, never carried over.
//
// Processing is single-threaded and deterministic for a given seed and
// request order.
package sim
