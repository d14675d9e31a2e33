package skeleton

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/z64forge/internal/asset"
	"github.com/Faultbox/z64forge/pkg/codec"
	"github.com/Faultbox/z64forge/pkg/errs"
	zmath "github.com/Faultbox/z64forge/pkg/math"
	"github.com/Faultbox/z64forge/pkg/o2r"
)

var endDL = []byte{0xDF, 0, 0, 0, 0, 0, 0, 0}

// geometryMap resolves bones to fixed meshes.
type geometryMap map[string]*Geometry

func (g geometryMap) Resolve(prefix string, bone *Bone) (*Geometry, error) {
	return g[bone.Name], nil
}

type failingGeometry struct{ err error }

func (f failingGeometry) Resolve(string, *Bone) (*Geometry, error) { return nil, f.err }

func mesh(t *testing.T, name string) *asset.Mesh {
	t.Helper()
	dl, err := asset.NewDisplayList(name, endDL)
	require.NoError(t, err)
	return &asset.Mesh{Name: name, Draw: dl}
}

func meshOf(dl *asset.DisplayList) *asset.Mesh {
	return &asset.Mesh{Name: dl.Name, Draw: dl}
}

func bone(name, parent string, z float32) Bone {
	return Bone{Name: name, Parent: parent, Deform: true, MatrixLocal: zmath.Translate(0, 0, z)}
}

// threeBones is root with child A (geometry) and child B (custom DL).
func threeBones() *Armature {
	b := bone("B", "root", 2)
	b.Type = BoneCustomDL
	b.CustomDL = "gExternalDL"
	return &Armature{
		Name:  "Armature",
		Bones: []Bone{bone("root", "", 0), b, bone("A", "root", 1)},
	}
}

func TestBuildThreeBoneScenario(t *testing.T) {
	arm := threeBones()
	res, err := Build(arm, "gSkel", Options{
		Transform:    zmath.Identity(),
		Geometry:     geometryMap{"A": {Mesh: mesh(t, "gSkel_A")}},
		VertexGroups: []string{"A", "B", "root"},
	})
	require.NoError(t, err)

	limbs := res.Skeleton.LimbList()
	require.Len(t, limbs, 3)
	assert.Equal(t, "root", limbs[0].BoneName)
	assert.Equal(t, "A", limbs[1].BoneName)
	assert.Equal(t, "B", limbs[2].BoneName)

	assert.Nil(t, limbs[0].DL)
	require.NotNil(t, limbs[1].DL)
	assert.Equal(t, "gSkel_A", limbs[1].DL.Name)

	// The custom display list is referenced by name only.
	require.Nil(t, limbs[2].DL)
	assert.Equal(t, "gExternalDL", limbs[2].CustomDL)
	assert.Equal(t, "gExternalDL", limbs[2].DLName())

	assert.Equal(t, map[int]int{0: 1, 1: 2, 2: 0}, res.VertexGroupToLimb)
	assert.Equal(t, 2, res.Skeleton.DLCount())
	assert.False(t, res.Skeleton.IsFlex())
}

func TestBuildPreOrder(t *testing.T) {
	arm := &Armature{Name: "arm", Bones: []Bone{
		bone("c2", "root", 1),
		bone("c1_b", "c1", 1),
		bone("root", "", 0),
		bone("C1", "root", 1),
		bone("c1", "root", 1),
		bone("c1_a", "c1", 1),
		bone("c2_a", "c2", 1),
	}}
	res, err := Build(arm, "gSkel", Options{SkeletonOnly: true})
	require.NoError(t, err)

	var names []string
	for i, l := range res.Skeleton.LimbList() {
		assert.Equal(t, i, l.Index)
		names = append(names, l.BoneName)
	}
	// Case-insensitive order with exact-name tiebreak: "C1" < "c1".
	assert.Equal(t, []string{"root", "C1", "c1", "c1_a", "c1_b", "c2", "c2_a"}, names)
}

func TestBuildCustomOrder(t *testing.T) {
	arm := &Armature{Name: "arm", Bones: []Bone{
		bone("root", "", 0), bone("a", "root", 1), bone("b", "root", 1),
	}}
	reverse := func(children []*Bone) {
		for i, j := 0, len(children)-1; i < j; i, j = i+1, j-1 {
			children[i], children[j] = children[j], children[i]
		}
	}
	res, err := Build(arm, "gSkel", Options{SkeletonOnly: true, Order: reverse})
	require.NoError(t, err)
	assert.Equal(t, "b", res.Skeleton.LimbList()[1].BoneName)
}

func TestBuildTransforms(t *testing.T) {
	arm := &Armature{
		Name:  "arm",
		Scale: zmath.V3(2, 2, 2),
		Bones: []Bone{
			{Name: "root", MatrixLocal: zmath.Translate(1, 0, 0)},
			{Name: "up", Parent: "root", MatrixLocal: zmath.Translate(1, 0, 1.5)},
		},
	}
	convert := zmath.Scale(10, 10, 10).Mul(zmath.ZUpToYUp())

	res, err := Build(arm, "gSkel", Options{SkeletonOnly: true, Transform: convert})
	require.NoError(t, err)

	limbs := res.Skeleton.LimbList()
	// Root keeps its armature-space offset: x=1 scaled by 2 and 10.
	assert.Equal(t, [3]int16{20, 0, 0}, limbs[0].Translation)
	// Child is relative to its parent: +1.5 up becomes +Y.
	assert.Equal(t, [3]int16{0, 30, 0}, limbs[1].Translation)
}

func TestBuildTranslationOverflow(t *testing.T) {
	arm := &Armature{Name: "arm", Bones: []Bone{{Name: "root", MatrixLocal: zmath.Translate(40000, 0, 0)}}}
	_, err := Build(arm, "gSkel", Options{SkeletonOnly: true})
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.ErrorContains(t, err, "bone root: translation")
}

func TestBuildRotationAngles(t *testing.T) {
	arm := &Armature{Name: "arm", Bones: []Bone{
		{Name: "root"},
		{Name: "turned", Parent: "root", MatrixLocal: zmath.RotateAxis(zmath.V3(0, 1, 0), math.Pi/4)},
	}}
	res, err := Build(arm, "gSkel", Options{SkeletonOnly: true})
	require.NoError(t, err)

	limbs := res.Skeleton.LimbList()
	assert.Equal(t, [3]int16{0, 0, 0}, limbs[0].Angles)
	assert.Equal(t, [3]int16{0, 0x2000, 0}, limbs[1].Angles)
}

func TestBuildValidationErrors(t *testing.T) {
	customWithGeometry := threeBones()

	notDeform := threeBones()
	notDeform.Bones[2].Deform = false

	twoRoots := threeBones()
	twoRoots.Bones[2].Parent = ""

	noRoot := &Armature{Name: "arm", Bones: []Bone{{Name: "a", Parent: "b"}, {Name: "b", Parent: "a"}}}

	onlyIgnored := &Armature{Name: "arm", Bones: []Bone{{Name: "a", Type: BoneIgnore}}}

	dup := &Armature{Name: "arm", Bones: []Bone{bone("a", "", 0), bone("a", "", 0)}}

	unknownParent := &Armature{Name: "arm", Bones: []Bone{bone("a", "missing", 0)}}

	geom := geometryMap{"A": {Mesh: mesh(t, "mA")}, "B": {Mesh: mesh(t, "mB")}}

	tests := []struct {
		name    string
		arm     *Armature
		skel    string
		opts    Options
		message string
	}{
		{"custom dl with geometry", customWithGeometry, "gSkel", Options{Geometry: geom}, "custom DL but still has geometry"},
		{"geometry on non deform bone", notDeform, "gSkel", Options{Geometry: geom}, "not set to deformable"},
		{"two roots", twoRoots, "gSkel", Options{SkeletonOnly: true}, "too many parentless bones"},
		{"cycle", noRoot, "gSkel", Options{SkeletonOnly: true}, "its own ancestor"},
		{"only ignored roots", onlyIgnored, "gSkel", Options{SkeletonOnly: true}, "no non switch option start bone"},
		{"duplicate bone", dup, "gSkel", Options{SkeletonOnly: true}, "more than one bone named a"},
		{"unknown parent", unknownParent, "gSkel", Options{SkeletonOnly: true}, "unknown parent"},
		{"empty name", threeBones(), "", Options{SkeletonOnly: true}, "name is empty"},
		{"no geometry source", threeBones(), "gSkel", Options{}, "no mesh parented"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.arm, tt.skel, tt.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrValidation)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestBuildResolverError(t *testing.T) {
	cause := errs.Resource("input", nil, "missing A.dl")
	_, err := Build(threeBones(), "gSkel", Options{Geometry: failingGeometry{cause}})
	assert.ErrorIs(t, err, errs.ErrResource)
}

func TestBuildIgnoredSubtree(t *testing.T) {
	arm := threeBones()
	ign := bone("switch", "root", 1)
	ign.Type = BoneIgnore
	arm.Bones = append(arm.Bones, ign, bone("under_switch", "switch", 1))

	res, err := Build(arm, "gSkel", Options{SkeletonOnly: true})
	require.NoError(t, err)
	assert.Len(t, res.Skeleton.LimbList(), 3)
}

func TestBuildMeshInstancing(t *testing.T) {
	arm := &Armature{Name: "arm", Bones: []Bone{
		bone("root", "", 0), bone("l", "root", 1), bone("r", "root", 1),
	}}
	shared := mesh(t, "gSkel_hand")
	model := asset.NewModel("gSkel")

	res, err := Build(arm, "gSkel", Options{
		Geometry: geometryMap{"l": {Mesh: shared}, "r": {Mesh: mesh(t, "gSkel_hand")}},
		Model:    model,
	})
	require.NoError(t, err)
	limbs := res.Skeleton.LimbList()
	assert.Same(t, limbs[1].DL, limbs[2].DL)
	assert.Len(t, model.Meshes(), 1)

	other := mesh(t, "gSkel_hand")
	other.Draw.Data = append([]byte{0xE7, 0, 0, 0, 0, 0, 0, 0}, endDL...)
	_, err = Build(arm, "gSkel", Options{
		Geometry: geometryMap{"l": {Mesh: mesh(t, "gSkel_hand")}, "r": {Mesh: other}},
	})
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Contains(t, err.Error(), "already processed")
}

func TestBuildFlex(t *testing.T) {
	res, err := Build(threeBones(), "gSkel", Options{
		Geometry: geometryMap{"A": {Mesh: mesh(t, "mA"), Skinned: true}},
	})
	require.NoError(t, err)
	assert.True(t, res.Skeleton.IsFlex())
	assert.True(t, res.Skeleton.LimbList()[1].IsFlex)
}

func TestMergeLOD(t *testing.T) {
	main, err := Build(threeBones(), "gSkel", Options{Geometry: geometryMap{"A": {Mesh: mesh(t, "mA")}}})
	require.NoError(t, err)

	lodArm := threeBones()
	lodArm.Name = "ArmatureLOD"
	lodArm.Bones[1].Type = BoneDefault
	lod, err := Build(lodArm, "gSkel_lod", Options{Geometry: geometryMap{"A": {Mesh: mesh(t, "mA_lod"), Skinned: true}}})
	require.NoError(t, err)

	require.NoError(t, MergeLOD(main.Skeleton, lod.Skeleton))
	limbs := main.Skeleton.LimbList()
	assert.True(t, main.Skeleton.HasLOD)
	assert.Equal(t, "mA_lod", limbs[1].LODDL.Name)
	assert.True(t, limbs[1].IsFlex)
	assert.Nil(t, limbs[2].LODDL)
}

func TestMergeLODTopologyMismatch(t *testing.T) {
	main, err := Build(threeBones(), "gSkel", Options{SkeletonOnly: true})
	require.NoError(t, err)

	twoBones := &Armature{Name: "lod", Bones: []Bone{bone("root", "", 0), bone("A", "root", 1)}}
	lod, err := Build(twoBones, "gSkel_lod", Options{SkeletonOnly: true})
	require.NoError(t, err)

	err = MergeLOD(main.Skeleton, lod.Skeleton)
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Contains(t, err.Error(), "same bone structure")
	assert.False(t, main.Skeleton.HasLOD)

	// Same count, different shape: a chain instead of two siblings.
	chain := &Armature{Name: "lod", Bones: []Bone{bone("root", "", 0), bone("A", "root", 1), bone("B", "A", 1)}}
	lod, err = Build(chain, "gSkel_lod", Options{SkeletonOnly: true})
	require.NoError(t, err)
	assert.ErrorIs(t, MergeLOD(main.Skeleton, lod.Skeleton), errs.ErrValidation)
}

func TestCloneEqual(t *testing.T) {
	arm := threeBones()
	clone := arm.Clone()
	assert.True(t, arm.Equal(clone))
	clone.Bones[0].Deform = false
	assert.False(t, arm.Equal(clone))
	assert.True(t, arm.Bones[0].Deform, "clone must not alias")

	res, err := Build(arm, "gSkel", Options{SkeletonOnly: true})
	require.NoError(t, err)
	skel := res.Skeleton.Clone()
	assert.True(t, res.Skeleton.Equal(skel))
	skel.Root.Children[0].Translation[0]++
	assert.False(t, res.Skeleton.Equal(skel))
}

func TestParseBoneType(t *testing.T) {
	for in, want := range map[string]BoneType{
		"":          BoneDefault,
		"Default":   BoneDefault,
		"Custom DL": BoneCustomDL,
		"custom_dl": BoneCustomDL,
		"Ignore":    BoneIgnore,
	} {
		got, err := ParseBoneType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseBoneType("switch")
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func buildThree(t *testing.T) *Skeleton {
	t.Helper()
	res, err := Build(threeBones(), "gSkel", Options{
		Transform: zmath.Scale(10, 10, 10).Mul(zmath.ZUpToYUp()),
		Geometry:  geometryMap{"A": {Mesh: mesh(t, "gSkel_A")}},
	})
	require.NoError(t, err)
	return res.Skeleton
}

func TestSkeletonC(t *testing.T) {
	c := buildThree(t).C()
	src := c.Source.String()

	assert.Contains(t, src, "StandardLimb gSkelLimb_000 = { { 0, 0, 0 }, 0x01, LIMB_DONE, NULL };\n")
	assert.Contains(t, src, "StandardLimb gSkelLimb_001 = { { 0, 10, 0 }, LIMB_DONE, 0x02, gSkel_A };\n")
	assert.Contains(t, src, "StandardLimb gSkelLimb_002 = { { 0, 20, 0 }, LIMB_DONE, LIMB_DONE, gExternalDL };\n")
	assert.Contains(t, src, "void* gSkelLimbs[] = {\n\t&gSkelLimb_000,\n\t&gSkelLimb_001,\n\t&gSkelLimb_002,\n};")
	assert.Contains(t, src, "SkeletonHeader gSkel = { gSkelLimbs, ARRAY_COUNT(gSkelLimbs) };")

	hdr := c.Header.String()
	assert.Contains(t, hdr, "\tGSKEL_LIMB_NONE,\n\tGSKEL_ROOT_LIMB,\n\tGSKEL_A_LIMB,\n\tGSKEL_B_LIMB,\n\tGSKEL_LIMB_MAX\n} gSkelLimb;")
	assert.Contains(t, hdr, "extern SkeletonHeader gSkel;")
}

func TestSkeletonCFlexLOD(t *testing.T) {
	skel := buildThree(t)
	skel.LimbList()[1].IsFlex = true
	skel.LimbList()[1].LODDL = &asset.DisplayList{Name: "gSkel_A_lod"}
	skel.HasLOD = true

	src := skel.C().Source.String()
	assert.Contains(t, src, "LodLimb gSkelLimb_001 = { { 0, 10, 0 }, LIMB_DONE, 0x02, { gSkel_A, gSkel_A_lod } };")
	assert.Contains(t, src, "FlexSkeletonHeader gSkel = { { gSkelLimbs, ARRAY_COUNT(gSkelLimbs) }, 2 };")
}

func TestEmitC(t *testing.T) {
	model := asset.NewModel("gSkel")
	skel := buildThree(t)
	_, err := model.AddMesh(meshOf(skel.LimbList()[1].DL))
	require.NoError(t, err)

	c := EmitC(skel, model, "gSkel")
	hdr := c.Header.String()
	assert.True(t, strings.HasPrefix(hdr, "#ifndef GSKEL_H\n#define GSKEL_H\n\n#include \"ultra64.h\"\n"))
	assert.True(t, strings.HasSuffix(hdr, "#endif\n"))
	assert.Contains(t, hdr, "extern Gfx gSkel_A[];")

	src := c.Source.String()
	assert.True(t, strings.HasPrefix(src, "#include \"gSkel.h\"\n"))
	assert.Less(t, strings.Index(src, "Gfx gSkel_A[]"), strings.Index(src, "gSkelLimb_000 ="))
}

func TestSkeletonO2R(t *testing.T) {
	skel := buildThree(t)
	out := skel.O2R("objects/gSkel")

	h, err := o2r.ParseHeader(out)
	require.NoError(t, err)
	assert.Equal(t, o2r.TypeSkeleton, h.Type)

	body := out[o2r.HeaderSize:]
	require.Len(t, body, SkeletonHeaderSize+3*LimbRecordSize)
	assert.Equal(t, []byte{0, 0}, body[:2])
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(body[2:]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(body[6:]))

	rec := body[SkeletonHeaderSize+LimbRecordSize:]
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(rec[0:]))
	assert.Equal(t, int16(10), int16(binary.LittleEndian.Uint16(rec[4:])))
	assert.Equal(t, []byte{LimbDone, 2, limbFlagDL, 0}, rec[8:12])
	assert.Equal(t, codec.CRC64Sum("objects/gSkel/gSkel_A"), binary.LittleEndian.Uint64(rec[12:]))
	assert.Zero(t, binary.LittleEndian.Uint64(rec[20:]))

	root := body[SkeletonHeaderSize:]
	assert.Equal(t, []byte{1, LimbDone, 0, 0}, root[8:12])
	assert.Zero(t, binary.LittleEndian.Uint64(root[12:]))

	custom := body[SkeletonHeaderSize+2*LimbRecordSize:]
	assert.Equal(t, byte(limbFlagDL|limbFlagCustomDL), custom[10])
}

func TestLimbO2R(t *testing.T) {
	skel := buildThree(t)
	r, h, err := o2r.NewReader(skel.LimbO2R(skel.LimbList()[1], "objects/gSkel"))
	require.NoError(t, err)
	assert.Equal(t, o2r.TypeSkeletonLimb, h.Type)

	assert.Equal(t, uint8(limbStandard), r.U8())
	assert.Equal(t, int16(0), r.I16())
	assert.Equal(t, int16(10), r.I16())
	assert.Equal(t, int16(0), r.I16())
	assert.Equal(t, uint8(LimbDone), r.U8())
	assert.Equal(t, uint8(2), r.U8())
	assert.Equal(t, "objects/gSkel/gSkel_A", r.Text())
	assert.Equal(t, "", r.Text())
	require.NoError(t, r.Err())
	assert.Zero(t, r.Remaining())
}

func TestFiles(t *testing.T) {
	skel := buildThree(t)
	model := asset.NewModel("gSkel")
	_, err := model.AddMesh(meshOf(skel.LimbList()[1].DL))
	require.NoError(t, err)

	var names []string
	for _, f := range Files(skel, model, "objects/gSkel", "gSkel") {
		names = append(names, f.Name)
	}
	// The limb DL was already written as the mesh draw list; the custom DL
	// is external.
	assert.Equal(t, []string{"gSkel_A", "gSkel", "gSkelLimb_000", "gSkelLimb_001", "gSkelLimb_002"}, names)
}
