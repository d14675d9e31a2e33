package skeleton

import (
	"errors"

	"github.com/Faultbox/z64forge/internal/asset"
	"github.com/Faultbox/z64forge/pkg/cdata"
	"github.com/Faultbox/z64forge/pkg/codec"
	"github.com/Faultbox/z64forge/pkg/errs"
	zmath "github.com/Faultbox/z64forge/pkg/math"
)

// Geometry is the mesh a bone owns.
type Geometry struct {
	Mesh *asset.Mesh
	// Skinned is set when some of the mesh's faces are weighted to more
	// than one bone.
	Skinned bool
}

// GeometryResolver turns the faces weighted to a bone's vertex group into a
// mesh. It returns nil, nil when the bone owns no geometry.
type GeometryResolver interface {
	Resolve(prefix string, bone *Bone) (*Geometry, error)
}

// Options configures Build.
type Options struct {
	// Transform converts armature space to engine space. The armature's
	// object scale is applied on top of it.
	Transform zmath.Mat4

	// SkeletonOnly skips geometry resolution.
	SkeletonOnly bool

	// Order arranges children. Defaults to SortByName.
	Order ChildOrder

	// Geometry resolves bone meshes. Required unless SkeletonOnly is set.
	Geometry GeometryResolver

	// Model collects the meshes of every limb. Optional.
	Model *asset.Model

	// VertexGroups lists the mesh's vertex-group names by group index.
	VertexGroups []string
}

// Result is the output of Build.
type Result struct {
	Skeleton *Skeleton
	// VertexGroupToLimb maps vertex-group index to the index of the limb
	// its bone became. Groups with no matching bone are absent.
	VertexGroupToLimb map[int]int
}

// traversal is the state of one Build call.
type traversal struct {
	arm       *Armature
	opts      Options
	name      string
	transform zmath.Mat4
	next      int
	groups    map[int]int
	instances map[string]*asset.Mesh
}

// Build converts arm into a skeleton named name. Limbs are indexed in
// depth-first pre-order with children visited in opts.Order, the order the
// engine draws them in.
func Build(arm *Armature, name string, opts Options) (*Result, error) {
	const op = "skeleton.build"

	if name == "" {
		return nil, errs.Validation(op, "skeleton name is empty")
	}
	if err := arm.Validate(); err != nil {
		return nil, err
	}
	if !opts.SkeletonOnly && opts.Geometry == nil {
		return nil, errs.Validation(op, "no mesh parented to armature %s", arm.Name)
	}
	start, err := arm.StartBone()
	if err != nil {
		return nil, err
	}
	if opts.Order == nil {
		opts.Order = SortByName
	}
	if opts.Transform == (zmath.Mat4{}) {
		opts.Transform = zmath.Identity()
	}

	scale := arm.Scale
	if scale == (zmath.Vec3{}) {
		scale = zmath.V3(1, 1, 1)
	}

	t := &traversal{
		arm:       arm,
		opts:      opts,
		name:      name,
		transform: opts.Transform.Mul(zmath.Diagonal(scale)),
		groups:    make(map[int]int),
		instances: make(map[string]*asset.Mesh),
	}

	skel := &Skeleton{Name: name}
	root, err := t.visit(start, nil)
	if err != nil {
		return nil, err
	}
	skel.Root = root

	if t.next > MaxLimbs {
		return nil, errs.Validation(op, "%s has %d limbs, at most %d are supported", name, t.next, MaxLimbs)
	}
	return &Result{Skeleton: skel, VertexGroupToLimb: t.groups}, nil
}

func (t *traversal) visit(boneName string, parent *Bone) (*Limb, error) {
	const op = "skeleton.build"

	bone, _ := t.arm.Bone(boneName)

	var m zmath.Mat4
	if parent != nil {
		m = t.transform.Mul(parent.MatrixLocal.Inverse()).Mul(bone.MatrixLocal)
	} else {
		m = t.transform.Mul(bone.MatrixLocal)
	}
	translate, rotate, _ := m.Decompose()

	tr, err := codec.ConvertTranslation(translate)
	if err != nil {
		return nil, errs.Validation(op, "bone %s: translation: %v", bone.Name, err)
	}

	limb := &Limb{
		Index:        t.next,
		BoneName:     bone.Name,
		Translation:  tr,
		Rotation:     rotate,
		Angles:       codec.ConvertRotation(rotate),
		skeletonName: t.name,
	}
	if g := t.groupIndex(bone.Name); g >= 0 {
		t.groups[g] = t.next
	}
	t.next++

	var geom *Geometry
	if !t.opts.SkeletonOnly {
		geom, err = t.opts.Geometry.Resolve(t.name, bone)
		if err != nil {
			return nil, err
		}
	}

	if bone.Type == BoneCustomDL {
		if geom != nil && geom.Mesh != nil {
			return nil, errs.Validation(op,
				"%s is set to use a custom DL but still has geometry assigned to it, remove this geometry from this bone", bone.Name)
		}
		symbol := cdata.ToAlnum(bone.CustomDL)
		if symbol == "" {
			return nil, errs.Validation(op, "%s is set to use a custom DL but has no DL name", bone.Name)
		}
		limb.CustomDL = symbol
	} else if geom != nil && geom.Mesh != nil {
		if !bone.Deform {
			return nil, errs.Validation(op,
				"%s has vertices in its vertex group but is not set to deformable, enable deform on this bone", bone.Name)
		}
		mesh, err := t.instance(geom.Mesh)
		if err != nil {
			return nil, err
		}
		limb.DL = mesh.Draw
		limb.IsFlex = geom.Skinned
	}

	for _, child := range t.arm.sortedChildren(bone.Name, t.opts.Order) {
		c, err := t.visit(child.Name, bone)
		if err != nil {
			return nil, err
		}
		limb.Children = append(limb.Children, c)
	}
	return limb, nil
}

// instance returns the cached mesh of the same name, so a mesh shared by
// several bones is emitted once. Two different meshes under one name are
// an error.
func (t *traversal) instance(mesh *asset.Mesh) (*asset.Mesh, error) {
	const op = "skeleton.build"

	if cached, ok := t.instances[mesh.Name]; ok {
		if cached.Hash() != mesh.Hash() {
			return nil, errs.Validation(op, "mesh %s was already processed with different content", mesh.Name)
		}
		return cached, nil
	}
	t.instances[mesh.Name] = mesh

	if t.opts.Model != nil {
		if _, err := t.opts.Model.AddMesh(mesh); err != nil {
			if errors.Is(err, asset.ErrConflict) {
				return nil, errs.Validation(op, "%v", err)
			}
			return nil, err
		}
	}
	return mesh, nil
}

func (t *traversal) groupIndex(bone string) int {
	for i, g := range t.opts.VertexGroups {
		if g == bone {
			return i
		}
	}
	return -1
}

// MergeLOD pairs lod's limbs with skel's by index, copying each LOD limb's
// display list into LODDL and or-ing its flex flag. The two skeletons must
// have the same shape.
func MergeLOD(skel, lod *Skeleton) error {
	const op = "skeleton.lod"

	main, low := skel.LimbList(), lod.LimbList()
	if len(main) != len(low) {
		return errs.Validation(op, "%s cannot use %s as LOD because they do not have the same bone structure (%d vs %d limbs)",
			skel.Name, lod.Name, len(main), len(low))
	}
	for i := range main {
		if len(main[i].Children) != len(low[i].Children) {
			return errs.Validation(op, "%s cannot use %s as LOD because they do not have the same bone structure (limb %d)",
				skel.Name, lod.Name, i)
		}
	}

	for i := range main {
		main[i].LODDL = low[i].DL
		main[i].LODCustomDL = low[i].CustomDL
		main[i].IsFlex = main[i].IsFlex || low[i].IsFlex
	}
	skel.HasLOD = true
	return nil
}
