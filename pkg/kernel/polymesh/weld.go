package polymesh

import (
	"math"
	"sort"
)

// weld merges vertices closer than dist into a single representative and
// rebuilds topology: faces lose repeated consecutive vertices, faces with
// fewer than three distinct vertices are dropped, duplicate faces over
// the same vertex set collapse to one. When only is non-nil, merging is
// restricted to the listed vertices.
func weld(m *pmesh, dist float64, only map[int]struct{}) {
	if len(m.verts) == 0 || dist <= 0 {
		return
	}

	candidate := func(vi int) bool {
		if only == nil {
			return true
		}
		_, ok := only[vi]
		return ok
	}

	// Spatial hash with cell size dist; a vertex merges into the first
	// representative found within dist in its own or a neighboring cell.
	type cell [3]int
	grid := make(map[cell][]int)
	cellOf := func(vi int) cell {
		v := m.verts[vi]
		return cell{
			int(math.Floor(v.X() / dist)),
			int(math.Floor(v.Y() / dist)),
			int(math.Floor(v.Z() / dist)),
		}
	}

	rep := make([]int, len(m.verts))
	for vi := range m.verts {
		rep[vi] = vi
		if !candidate(vi) {
			continue
		}
		c := cellOf(vi)
		found := false
		for dx := -1; dx <= 1 && !found; dx++ {
			for dy := -1; dy <= 1 && !found; dy++ {
				for dz := -1; dz <= 1 && !found; dz++ {
					for _, ri := range grid[cell{c[0] + dx, c[1] + dy, c[2] + dz}] {
						if m.verts[vi].Sub(m.verts[ri]).Len() <= dist {
							rep[vi] = ri
							found = true
							break
						}
					}
				}
			}
		}
		if !found {
			grid[c] = append(grid[c], vi)
		}
	}

	var faces [][]int
	seen := make(map[string]struct{})
	for _, f := range m.faces {
		nf := make([]int, 0, len(f))
		for _, vi := range f {
			r := rep[vi]
			if len(nf) > 0 && nf[len(nf)-1] == r {
				continue
			}
			nf = append(nf, r)
		}
		for len(nf) > 1 && nf[0] == nf[len(nf)-1] {
			nf = nf[:len(nf)-1]
		}
		if len(nf) < 3 {
			continue
		}
		if _, dup := seen[faceFingerprint(nf)]; dup {
			continue
		}
		seen[faceFingerprint(nf)] = struct{}{}
		faces = append(faces, nf)
	}
	m.faces = faces

	var wires [][2]int
	for _, w := range m.wires {
		a, b := rep[w[0]], rep[w[1]]
		if a != b {
			wires = append(wires, [2]int{a, b})
		}
	}
	m.wires = wires

	m.compact()
}

// faceFingerprint identifies a face by its sorted vertex set, so the two
// windings of a collapsed face count as duplicates.
func faceFingerprint(f []int) string {
	s := append([]int(nil), f...)
	sort.Ints(s)
	b := make([]byte, 0, len(s)*4)
	for _, vi := range s {
		b = append(b, byte(vi), byte(vi>>8), byte(vi>>16), ',')
	}
	return string(b)
}
