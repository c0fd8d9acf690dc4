package spatial

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/spectrum-sim/spectrum-sim/sim"
)

// site is a unit position stored in the k-d tree.
type site struct {
	id   int
	x, y float64
}

// Compare returns the signed distance of s from the plane through c
// perpendicular to dimension d.
func (s site) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(site)
	if d == 0 {
		return s.x - q.x
	}
	return s.y - q.y
}

// Dims returns the number of dimensions.
func (s site) Dims() int { return 2 }

// Distance returns the squared Euclidean distance between s and c.
func (s site) Distance(c kdtree.Comparable) float64 {
	q := c.(site)
	dx, dy := s.x-q.x, s.y-q.y
	return dx*dx + dy*dy
}

// sites implements kdtree.Interface.
type sites []site

func (p sites) Index(i int) kdtree.Comparable         { return p[i] }
func (p sites) Len() int                              { return len(p) }
func (p sites) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p sites) Pivot(d kdtree.Dim) int {
	return plane{sites: p, dim: d}.pivot()
}

// plane sorts sites along one dimension for median selection.
type plane struct {
	sites
	dim kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	if p.dim == 0 {
		return p.sites[i].x < p.sites[j].x
	}
	return p.sites[i].y < p.sites[j].y
}
func (p plane) Swap(i, j int) { p.sites[i], p.sites[j] = p.sites[j], p.sites[i] }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{sites: p.sites[start:end], dim: p.dim}
}
func (p plane) pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Index answers radius queries over a fixed set of unit positions.
type Index struct {
	tree *kdtree.Tree
	size int
}

// NewIndex builds an index over the positions of units.
func NewIndex(units []*sim.Unit) *Index {
	pts := make(sites, len(units))
	for i, u := range units {
		pts[i] = site{id: u.ID, x: u.Position.X, y: u.Position.Y}
	}
	ix := &Index{size: len(pts)}
	if len(pts) > 0 {
		ix.tree = kdtree.New(pts, false)
	}
	return ix
}

// Len returns the number of indexed positions.
func (ix *Index) Len() int {
	return ix.size
}

// Within returns the IDs of all indexed units at distance <= radius from p,
// in ascending order. A unit located at p is included.
func (ix *Index) Within(p sim.Position, radius float64) []int {
	if ix.tree == nil || radius < 0 {
		return nil
	}
	r2 := radius * radius
	// The keeper seeds its heap with a nil sentinel at its limit. Placing the
	// limit one ulp above r2 keeps points exactly on the circle strictly
	// below the sentinel.
	keep := kdtree.NewDistKeeper(math.Nextafter(r2, math.Inf(1)))
	ix.tree.NearestSet(keep, site{id: -1, x: p.X, y: p.Y})
	ids := make([]int, 0, len(keep.Heap))
	for _, c := range keep.Heap {
		if c.Comparable == nil || c.Dist > r2 {
			continue
		}
		ids = append(ids, c.Comparable.(site).id)
	}
	sort.Ints(ids)
	return ids
}
