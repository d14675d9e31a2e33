package asset

import (
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/Faultbox/z64forge/pkg/cdata"
	"github.com/Faultbox/z64forge/pkg/codec"
	"github.com/Faultbox/z64forge/pkg/o2r"
)

type hashBuilder struct {
	h hash.Hash64
}

func (b *hashBuilder) addBytes(p []byte) {
	if b.h == nil {
		b.h = codec.NewCRC64()
	}
	b.h.Write(p)
}

func (b *hashBuilder) add(v uint64) {
	b.addBytes(binary.BigEndian.AppendUint64(nil, v))
}

func (b *hashBuilder) sum() uint64 {
	if b.h == nil {
		return codec.CRC64Sum("")
	}
	return b.h.Sum64()
}

// File is one emitted resource.
type File struct {
	Name string
	Type o2r.ResourceType
	Data []byte
}

// Model is an ordered, name-keyed registry of the resources one export
// emits. Adding a resource under a name already taken is a no-op when the
// content matches and ErrConflict otherwise.
type Model struct {
	Name string

	textures  []*Texture
	materials []*Material
	meshes    []*Mesh
	byName    map[string]uint64
}

// NewModel returns an empty model.
func NewModel(name string) *Model {
	return &Model{Name: name, byName: make(map[string]uint64)}
}

func (m *Model) claim(name string, hash uint64) (bool, error) {
	if prev, ok := m.byName[name]; ok {
		if prev != hash {
			return false, fmt.Errorf("%w: %s", ErrConflict, name)
		}
		return false, nil
	}
	m.byName[name] = hash
	return true, nil
}

// AddTexture registers t.
func (m *Model) AddTexture(t *Texture) error {
	added, err := m.claim(t.Name, t.Hash())
	if added {
		m.textures = append(m.textures, t)
	}
	return err
}

// AddMaterial registers mat.
func (m *Model) AddMaterial(mat *Material) error {
	h := hashBuilder{}
	h.add(mat.Setup.Hash())
	if mat.Revert != nil {
		h.add(mat.Revert.Hash())
	}
	added, err := m.claim(mat.Name, h.sum())
	if added {
		m.materials = append(m.materials, mat)
	}
	return err
}

// AddMesh registers mesh. It reports whether the mesh was new.
func (m *Model) AddMesh(mesh *Mesh) (bool, error) {
	added, err := m.claim(mesh.Name, mesh.Hash())
	if added {
		m.meshes = append(m.meshes, mesh)
	}
	return added, err
}

// Mesh returns the mesh registered under name.
func (m *Model) Mesh(name string) (*Mesh, bool) {
	for _, mesh := range m.meshes {
		if mesh.Name == name {
			return mesh, true
		}
	}
	return nil, false
}

func (m *Model) Textures() []*Texture   { return m.textures }
func (m *Model) Materials() []*Material { return m.materials }
func (m *Model) Meshes() []*Mesh        { return m.meshes }

// Files encodes every resource for an O2R export under folder, in write
// order: textures, materials with their reverts, then for each mesh its
// draw list followed by each triangle group's tri list and vertex list.
func (m *Model) Files(folder string) []File {
	var files []File
	for _, t := range m.textures {
		files = append(files, File{t.Name, o2r.TypeTexture, t.O2R()})
	}
	for _, mat := range m.materials {
		files = append(files, File{mat.Setup.Name, o2r.TypeMaterial, materialO2R(mat.Setup, folder)})
		if mat.Revert != nil {
			files = append(files, File{mat.Revert.Name, o2r.TypeMaterial, materialO2R(mat.Revert, folder)})
		}
	}
	for _, mesh := range m.meshes {
		if mesh.Draw == nil {
			continue
		}
		files = append(files, File{mesh.Draw.Name, o2r.TypeDisplayList, mesh.Draw.O2R(folder)})
		for _, g := range mesh.TriangleGroups {
			if g.TriList != nil {
				files = append(files, File{g.TriList.Name, o2r.TypeDisplayList, g.TriList.O2R(folder)})
			}
			if g.VertexList != nil {
				files = append(files, File{g.VertexList.Name, o2r.TypeVertex, g.VertexList.O2R()})
			}
		}
	}
	return files
}

// C returns every resource as C declarations. Textures come first so the
// display lists that reference them compile.
func (m *Model) C() *cdata.CData {
	c := cdata.New()
	for _, t := range m.textures {
		c.Headerf("extern u64 %s[];\n", t.Name)
		c.Sourcef("u64 %s[] = {\n", t.Name)
		for _, w := range t.words() {
			c.Sourcef("\t0x%016X,\n", w)
		}
		c.Sourcef("};\n\n")
	}
	for _, mesh := range m.meshes {
		for _, g := range mesh.TriangleGroups {
			if g.VertexList != nil {
				c.Append(g.VertexList.C())
			}
		}
	}
	for _, mat := range m.materials {
		c.Append(mat.Setup.C())
		if mat.Revert != nil {
			c.Append(mat.Revert.C())
		}
	}
	for _, mesh := range m.meshes {
		for _, g := range mesh.TriangleGroups {
			if g.TriList != nil {
				c.Append(g.TriList.C())
			}
		}
		if mesh.Draw != nil {
			c.Append(mesh.Draw.C())
		}
	}
	return c
}

// Sink receives emitted files in write order.
type Sink interface {
	Put(f File) error
}

// Collector is a Sink that keeps files in memory.
type Collector struct {
	Files []File
}

// Put appends f.
func (c *Collector) Put(f File) error {
	c.Files = append(c.Files, f)
	return nil
}

// Names returns the collected file names in order.
func (c *Collector) Names() []string {
	out := make([]string, len(c.Files))
	for i, f := range c.Files {
		out[i] = f.Name
	}
	return out
}
