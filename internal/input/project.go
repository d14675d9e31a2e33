package input

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/Faultbox/z64forge/internal/asset"
	"github.com/Faultbox/z64forge/internal/skeleton"
	"github.com/Faultbox/z64forge/pkg/errs"
	zmath "github.com/Faultbox/z64forge/pkg/math"
)

// Project is a loaded document plus the resolver for the files it
// references. Meshes are decoded once per project.
type Project struct {
	Doc   *Document
	Files *Resolver

	meshes map[string]*asset.Mesh
}

// Open loads the document at path. Referenced files resolve relative to
// the document's directory.
func Open(path string) (*Project, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return NewProject(doc, NewResolver(filepath.Dir(path))), nil
}

// NewProject wraps an already parsed document.
func NewProject(doc *Document, files *Resolver) *Project {
	return &Project{Doc: doc, Files: files, meshes: make(map[string]*asset.Mesh)}
}

// Close releases the resolver.
func (p *Project) Close() error {
	return p.Files.Close()
}

// Armature converts the document's armature.
func (p *Project) Armature() (*skeleton.Armature, error) {
	if p.Doc.Armature == nil {
		return nil, errs.Validation("input", "document %s has no armature", p.Doc.Name)
	}
	return convertArmature(p.Doc.Armature)
}

// LODArmature converts the document's LOD armature. It returns nil when
// the document has none.
func (p *Project) LODArmature() (*skeleton.Armature, error) {
	if p.Doc.LOD == nil {
		return nil, nil
	}
	return convertArmature(p.Doc.LOD)
}

func convertArmature(d *ArmatureDoc) (*skeleton.Armature, error) {
	arm := &skeleton.Armature{Name: d.Name, Bones: make([]skeleton.Bone, 0, len(d.Bones))}
	switch len(d.Scale) {
	case 0:
	case 3:
		arm.Scale = zmath.V3(d.Scale[0], d.Scale[1], d.Scale[2])
	default:
		return nil, errs.Validation("input", "armature %s: scale needs 3 components, got %d", d.Name, len(d.Scale))
	}

	for _, b := range d.Bones {
		typ, err := skeleton.ParseBoneType(b.Type)
		if err != nil {
			return nil, err
		}
		m := zmath.Identity()
		switch len(b.MatrixLocal) {
		case 0:
		case 4:
			m = zmath.FromRows([4][4]float32(b.MatrixLocal))
		default:
			return nil, errs.Validation("input", "bone %s: matrix_local needs 4 rows, got %d", b.Name, len(b.MatrixLocal))
		}
		arm.Bones = append(arm.Bones, skeleton.Bone{
			Name:        b.Name,
			Parent:      b.Parent,
			Type:        typ,
			Deform:      b.Deform == nil || *b.Deform,
			CustomDL:    b.CustomDL,
			MatrixLocal: m,
		})
	}
	return arm, nil
}

// DisplayList loads a display list. The name defaults to fallback.
func (p *Project) DisplayList(d DLDoc, fallback string) (*asset.DisplayList, error) {
	name := d.Name
	if name == "" {
		name = fallback
	}
	if d.File == "" {
		return nil, errs.Validation("input", "display list %s has no file", name)
	}
	data, err := p.Files.Load(d.File)
	if err != nil {
		return nil, err
	}
	dl, err := asset.NewDisplayList(name, data, d.Refs...)
	if err != nil {
		return nil, errs.Resource("input", err, "display list %s", d.File)
	}
	return dl, nil
}

// Mesh loads the mesh named name with its triangle groups.
func (p *Project) Mesh(name string) (*asset.Mesh, error) {
	if m, ok := p.meshes[name]; ok {
		return m, nil
	}
	d, ok := p.Doc.mesh(name)
	if !ok {
		return nil, errs.Validation("input", "no mesh named %q", name)
	}

	draw, err := p.DisplayList(d.Draw, d.Name)
	if err != nil {
		return nil, err
	}
	mesh := &asset.Mesh{Name: d.Name, Draw: draw}
	for i, g := range d.Groups {
		tri, err := p.DisplayList(g.TriList, fmt.Sprintf("%s_tri_%d", d.Name, i))
		if err != nil {
			return nil, err
		}
		vtxName := g.Vertices.Name
		if vtxName == "" {
			vtxName = fmt.Sprintf("%s_vtx_%d", d.Name, i)
		}
		vl, err := p.vertices(vtxName, &g)
		if err != nil {
			return nil, err
		}
		mesh.TriangleGroups = append(mesh.TriangleGroups, asset.TriangleGroup{
			Material:   g.Material,
			TriList:    tri,
			VertexList: vl,
		})
	}
	p.meshes[name] = mesh
	return mesh, nil
}

func (p *Project) vertices(name string, g *GroupDoc) (*asset.VertexList, error) {
	if g.Vertices.File == "" && len(g.Verts) > 0 {
		src := make([]asset.VertexSource, len(g.Verts))
		for i, v := range g.Verts {
			src[i] = asset.VertexSource{Pos: v.Pos, UV: v.UV, Color: [4]uint8{0xFF, 0xFF, 0xFF, 0xFF}}
			if v.Color != nil {
				src[i].Color = *v.Color
			}
			if v.Normal != nil {
				n := zmath.V3(v.Normal[0], v.Normal[1], v.Normal[2])
				src[i].Normal = &n
			}
		}
		vl, err := asset.EncodeVertices(name, src, g.TextureSize[0], g.TextureSize[1])
		if err != nil {
			return nil, errs.Validation("input", "%v", err)
		}
		return vl, nil
	}

	data, err := p.Files.Load(g.Vertices.File)
	if err != nil {
		return nil, err
	}
	vl, err := asset.ParseVertices(name, data)
	if err != nil {
		return nil, errs.Resource("input", err, "vertices %s", g.Vertices.File)
	}
	return vl, nil
}

// Texture loads and encodes a texture.
func (p *Project) Texture(d TextureDoc) (*asset.Texture, error) {
	format, err := asset.ParseTextureFormat(d.Format)
	if err != nil {
		return nil, errs.Validation("input", "texture %s: %v", d.Name, err)
	}
	data, err := p.Files.Load(d.File)
	if err != nil {
		return nil, err
	}
	img, err := asset.DecodeImage(bytes.NewReader(data))
	if err != nil {
		return nil, errs.Resource("input", err, "texture %s", d.File)
	}
	return asset.NewTexture(d.Name, img, format), nil
}

// Material loads a material's display lists.
func (p *Project) Material(d MaterialDoc) (*asset.Material, error) {
	setup, err := p.DisplayList(d.Setup, d.Name)
	if err != nil {
		return nil, err
	}
	mat := &asset.Material{Name: d.Name, Setup: setup}
	if d.Revert != nil {
		if mat.Revert, err = p.DisplayList(*d.Revert, d.Name+"_revert"); err != nil {
			return nil, err
		}
	}
	return mat, nil
}

// Model returns a model named name holding the listed textures and
// materials. Nil lists select every entry of the document.
func (p *Project) Model(name string, textures, materials []string) (*asset.Model, error) {
	m := asset.NewModel(name)
	for _, d := range p.Doc.Textures {
		if textures != nil && !contains(textures, d.Name) {
			continue
		}
		t, err := p.Texture(d)
		if err != nil {
			return nil, err
		}
		if err := m.AddTexture(t); err != nil {
			return nil, errs.Validation("input", "%v", err)
		}
	}
	for _, d := range p.Doc.Materials {
		if materials != nil && !contains(materials, d.Name) {
			continue
		}
		mat, err := p.Material(d)
		if err != nil {
			return nil, err
		}
		if err := m.AddMaterial(mat); err != nil {
			return nil, errs.Validation("input", "%v", err)
		}
	}
	return m, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Geometry returns the resolver for the bones of the main armature, or of
// the LOD armature when lod is set.
func (p *Project) Geometry(lod bool) skeleton.GeometryResolver {
	d := p.Doc.Armature
	if lod {
		d = p.Doc.LOD
	}
	g := &geometry{project: p, meshes: make(map[string]string)}
	if d != nil {
		for _, b := range d.Bones {
			if b.Mesh != "" {
				g.meshes[b.Name] = b.Mesh
			}
		}
	}
	return g
}

// geometry maps bones to the meshes the document assigns them.
type geometry struct {
	project *Project
	meshes  map[string]string
}

func (g *geometry) Resolve(_ string, bone *skeleton.Bone) (*skeleton.Geometry, error) {
	name, ok := g.meshes[bone.Name]
	if !ok {
		return nil, nil
	}
	mesh, err := g.project.Mesh(name)
	if err != nil {
		return nil, err
	}
	d, _ := g.project.Doc.mesh(name)
	return &skeleton.Geometry{Mesh: mesh, Skinned: d.Skinned}, nil
}
