// Package skeleton converts an armature's bone tree into the ordered limb
// list the engine's skeletal animation code draws, and emits it as C source
// or O2R resources.
package skeleton

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Faultbox/z64forge/pkg/errs"
	zmath "github.com/Faultbox/z64forge/pkg/math"
)

// BoneType selects how a bone becomes a limb.
type BoneType int

const (
	// BoneDefault owns the geometry weighted to its vertex group.
	BoneDefault BoneType = iota
	// BoneCustomDL draws a display list defined outside the export.
	BoneCustomDL
	// BoneIgnore is left out of the limb list along with its subtree.
	BoneIgnore
)

// String returns the bone type name.
func (t BoneType) String() string {
	switch t {
	case BoneDefault:
		return "default"
	case BoneCustomDL:
		return "custom_dl"
	case BoneIgnore:
		return "ignore"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// ParseBoneType resolves a bone type name. Both the snake_case names and
// the authoring tool's labels ("Default", "Custom DL", "Ignore") are
// accepted.
func ParseBoneType(s string) (BoneType, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_") {
	case "", "default":
		return BoneDefault, nil
	case "custom_dl":
		return BoneCustomDL, nil
	case "ignore":
		return BoneIgnore, nil
	default:
		return 0, errs.Validation("skeleton.bone", "unknown bone type %q", s)
	}
}

// Bone is one node of an armature at rest.
type Bone struct {
	Name     string
	Parent   string // empty for parentless bones
	Type     BoneType
	Deform   bool
	CustomDL string // symbol drawn by BoneCustomDL bones

	// MatrixLocal is the bone's rest transform in armature space.
	MatrixLocal zmath.Mat4
}

// Armature is a read-only snapshot of a bone tree.
type Armature struct {
	Name  string
	Scale zmath.Vec3 // object scale, folded into the export transform
	Bones []Bone
}

// Bone returns the bone named name.
func (a *Armature) Bone(name string) (*Bone, bool) {
	for i := range a.Bones {
		if a.Bones[i].Name == name {
			return &a.Bones[i], true
		}
	}
	return nil, false
}

// Children returns the direct children of name in authored order.
func (a *Armature) Children(name string) []*Bone {
	var out []*Bone
	for i := range a.Bones {
		if a.Bones[i].Parent == name && a.Bones[i].Name != name {
			out = append(out, &a.Bones[i])
		}
	}
	return out
}

// Validate checks that names are unique and non-empty, every parent exists,
// and the parent links contain no cycle.
func (a *Armature) Validate() error {
	const op = "skeleton.armature"

	seen := make(map[string]bool, len(a.Bones))
	for _, b := range a.Bones {
		if b.Name == "" {
			return errs.Validation(op, "%s has a bone with no name", a.Name)
		}
		if seen[b.Name] {
			return errs.Validation(op, "%s has more than one bone named %s", a.Name, b.Name)
		}
		seen[b.Name] = true
	}

	for _, b := range a.Bones {
		if b.Parent != "" && !seen[b.Parent] {
			return errs.Validation(op, "bone %s has unknown parent %s", b.Name, b.Parent)
		}
	}

	for _, b := range a.Bones {
		steps := 0
		for cur := b.Parent; cur != ""; steps++ {
			if cur == b.Name || steps > len(a.Bones) {
				return errs.Validation(op, "bone %s is its own ancestor", b.Name)
			}
			p, _ := a.Bone(cur)
			cur = p.Parent
		}
	}
	return nil
}

// StartBone returns the single parentless bone the hierarchy descends from.
// Ignored bones do not count.
func (a *Armature) StartBone() (string, error) {
	var roots []string
	for _, b := range a.Bones {
		if b.Parent == "" && b.Type != BoneIgnore {
			roots = append(roots, b.Name)
		}
	}
	sort.Strings(roots)

	switch len(roots) {
	case 0:
		return "", errs.Validation("skeleton.root", "%s: no non switch option start bone could be found", a.Name)
	case 1:
		return roots[0], nil
	default:
		return "", errs.Validation("skeleton.root",
			"%s: too many parentless bones found (%s), make sure your bone hierarchy starts from a single bone",
			a.Name, strings.Join(roots, ", "))
	}
}

// Clone returns a deep copy of the armature.
func (a *Armature) Clone() *Armature {
	if a == nil {
		return nil
	}
	c := &Armature{Name: a.Name, Scale: a.Scale, Bones: make([]Bone, len(a.Bones))}
	copy(c.Bones, a.Bones)
	return c
}

// Equal reports whether two armatures hold the same bones in the same order.
func (a *Armature) Equal(b *Armature) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || a.Scale != b.Scale || len(a.Bones) != len(b.Bones) {
		return false
	}
	for i := range a.Bones {
		if !a.Bones[i].Equal(&b.Bones[i]) {
			return false
		}
	}
	return true
}

// Equal compares every field of two bones.
func (b *Bone) Equal(o *Bone) bool {
	return b.Name == o.Name &&
		b.Parent == o.Parent &&
		b.Type == o.Type &&
		b.Deform == o.Deform &&
		b.CustomDL == o.CustomDL &&
		b.MatrixLocal == o.MatrixLocal
}

// ChildOrder arranges a bone's children into traversal order. It must be
// deterministic so indices are stable across exports.
type ChildOrder func(children []*Bone)

// SortByName orders children by case-insensitive name, falling back to the
// exact name on ties.
func SortByName(children []*Bone) {
	sort.SliceStable(children, func(i, j int) bool {
		li, lj := strings.ToLower(children[i].Name), strings.ToLower(children[j].Name)
		if li != lj {
			return li < lj
		}
		return children[i].Name < children[j].Name
	})
}

// sortedChildren returns name's non-ignored children in traversal order.
func (a *Armature) sortedChildren(name string, order ChildOrder) []*Bone {
	var out []*Bone
	for _, c := range a.Children(name) {
		if c.Type != BoneIgnore {
			out = append(out, c)
		}
	}
	order(out)
	return out
}
