// Package topology generates the city the engine runs on: a grid of blocks,
// each with a population-density class that decides how many hotspots and
// base stations are placed inside it.
package topology

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/spectrum-sim/spectrum-sim/sim"
)

// City is a generated topology.
type City struct {
	Rows, Cols int
	BlockSize  int
	Densities  [][]int // [row][col] density class
	Units      []*sim.Unit
}

// Generate builds a city from cfg. Units are numbered in placement order:
// block by block (row-major), hotspots before base stations. No two units in
// a block share a coordinate.
func Generate(cfg sim.TopologyConfig, rng *rand.Rand) (*City, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("topology: rng must not be nil")
	}
	city := &City{
		Rows:      cfg.CityRows,
		Cols:      cfg.CityCols,
		BlockSize: cfg.BlockSize,
		Densities: make([][]int, cfg.CityRows),
	}
	for i := range city.Densities {
		city.Densities[i] = make([]int, cfg.CityCols)
		for j := range city.Densities[i] {
			city.Densities[i][j] = pickDensity(cfg.DensityWeights, rng)
		}
	}

	nextID := 0
	for i := 0; i < cfg.CityRows; i++ {
		for j := 0; j < cfg.CityCols; j++ {
			density := city.Densities[i][j]
			taken := make(map[sim.Position]bool)
			place := func(t sim.UnitType, n int) {
				for k := 0; k < n; k++ {
					pos := randomPosition(i, j, cfg.BlockSize, rng)
					for taken[pos] {
						pos = randomPosition(i, j, cfg.BlockSize, rng)
					}
					taken[pos] = true
					city.Units = append(city.Units, sim.NewUnit(nextID, pos, t, density))
					nextID++
				}
			}
			place(sim.Hotspot, cfg.HotspotsPerBlock[density])
			place(sim.BaseStation, cfg.BaseStationsPerBlock[density])
		}
	}
	logrus.Infof("generated %dx%d city with %d units", cfg.CityRows, cfg.CityCols, len(city.Units))
	return city, nil
}

// Count returns the number of units of type t.
func (c *City) Count(t sim.UnitType) int {
	n := 0
	for _, u := range c.Units {
		if u.Type == t {
			n++
		}
	}
	return n
}

func randomPosition(row, col, blockSize int, rng *rand.Rand) sim.Position {
	return sim.Position{
		X: float64(col*blockSize + rng.Intn(blockSize)),
		Y: float64(row*blockSize + rng.Intn(blockSize)),
	}
}

func pickDensity(weights []float64, rng *rand.Rand) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	for d, w := range weights {
		if r < w {
			return d
		}
		r -= w
	}
	return len(weights) - 1
}
