package surface

import (
	"math"

	"github.com/piwi3910/SlabGen/internal/crystal"
)

// clusterPlanes groups sites into atomic planes along c. Two sites share a
// plane when their periodic c separation, scaled by the cell height h, is
// within tol; grouping is transitive (single linkage). The returned slice
// holds a cluster id per site, numbered in order of first appearance.
func clusterPlanes(sites []crystal.Site, h, tol float64) []int {
	uf := newUnionFind(len(sites))
	for i := 0; i < len(sites); i++ {
		for j := i + 1; j < len(sites); j++ {
			d := sites[i].Frac[2] - sites[j].Frac[2]
			d = math.Abs(d-math.Round(d)) * h
			if d <= tol {
				uf.union(i, j)
			}
		}
	}

	ids := make(map[int]int)
	out := make([]int, len(sites))
	for i := range sites {
		root := uf.find(i)
		id, ok := ids[root]
		if !ok {
			id = len(ids)
			ids[root] = id
		}
		out[i] = id
	}
	return out
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}
