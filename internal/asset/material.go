package asset

import "github.com/Faultbox/z64forge/pkg/o2r"

// Material pairs the display list that sets up render state with the one
// that restores it.
type Material struct {
	Name   string
	Setup  *DisplayList
	Revert *DisplayList // may be nil
}

// O2R encodes a material display list as a material resource.
func materialO2R(dl *DisplayList, folder string) []byte {
	w := o2r.NewWriter(o2r.TypeMaterial)
	dl.body(w, folder)
	return w.Bytes()
}

// TriangleGroup is one material's triangles within a mesh.
type TriangleGroup struct {
	Material   string
	TriList    *DisplayList
	VertexList *VertexList
}

// Mesh is a drawable piece of geometry: a draw list that calls into the
// tri lists of its triangle groups.
type Mesh struct {
	Name           string
	Draw           *DisplayList
	TriangleGroups []TriangleGroup
}

// Hash returns the CRC64 of the mesh's display lists and vertices.
func (m *Mesh) Hash() uint64 {
	h := hashBuilder{}
	if m.Draw != nil {
		h.add(m.Draw.Hash())
	}
	for _, g := range m.TriangleGroups {
		if g.TriList != nil {
			h.add(g.TriList.Hash())
		}
		if g.VertexList != nil {
			h.addBytes(g.VertexList.Bytes())
		}
	}
	return h.sum()
}
