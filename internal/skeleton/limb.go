package skeleton

import (
	"fmt"

	"github.com/Faultbox/z64forge/internal/asset"
	zmath "github.com/Faultbox/z64forge/pkg/math"
)

// LimbDone marks an absent child or sibling in limb records.
const LimbDone = 0xFF

// MaxLimbs is the number of limbs addressable by a u8 index below LimbDone.
const MaxLimbs = LimbDone

// Limb is a bone after traversal.
type Limb struct {
	Index       int
	BoneName    string
	Translation [3]int16
	Rotation    zmath.Quat
	// Angles is Rotation as XYZ binary angles.
	Angles [3]int16

	// DL is the limb's display list, nil for custom display-list bones.
	DL *asset.DisplayList
	// CustomDL names the external display list symbol a custom
	// display-list bone draws. No data is emitted for it.
	CustomDL string
	LODDL    *asset.DisplayList
	// LODCustomDL is CustomDL of the matching LOD limb.
	LODCustomDL string
	IsFlex      bool

	Children []*Limb

	skeletonName string
}

// Name returns the limb's symbol, <skeleton>Limb_<NNN>.
func (l *Limb) Name() string {
	return fmt.Sprintf("%sLimb_%03d", l.skeletonName, l.Index)
}

// DLName returns the symbol of the display list the limb draws, or ""
// when it draws nothing.
func (l *Limb) DLName() string {
	if l.DL != nil {
		return l.DL.Name
	}
	return l.CustomDL
}

// LODDLName is DLName for the LOD display list.
func (l *Limb) LODDLName() string {
	if l.LODDL != nil {
		return l.LODDL.Name
	}
	return l.LODCustomDL
}

// Clone returns a deep copy of the limb subtree. Display lists are shared.
func (l *Limb) Clone() *Limb {
	if l == nil {
		return nil
	}
	c := *l
	c.Children = make([]*Limb, len(l.Children))
	for i, child := range l.Children {
		c.Children[i] = child.Clone()
	}
	return &c
}

// Equal compares two limb subtrees field by field.
func (l *Limb) Equal(o *Limb) bool {
	if l == nil || o == nil {
		return l == o
	}
	if l.Index != o.Index ||
		l.BoneName != o.BoneName ||
		l.Translation != o.Translation ||
		l.Rotation != o.Rotation ||
		l.Angles != o.Angles ||
		!l.DL.Equal(o.DL) ||
		l.CustomDL != o.CustomDL ||
		!l.LODDL.Equal(o.LODDL) ||
		l.LODCustomDL != o.LODCustomDL ||
		l.IsFlex != o.IsFlex ||
		l.skeletonName != o.skeletonName ||
		len(l.Children) != len(o.Children) {
		return false
	}
	for i := range l.Children {
		if !l.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Skeleton owns the root limb of a converted armature.
type Skeleton struct {
	Name   string
	Root   *Limb
	HasLOD bool
}

// LimbList returns the limbs in index order, which is depth-first
// pre-order.
func (s *Skeleton) LimbList() []*Limb {
	var out []*Limb
	var walk func(l *Limb)
	walk = func(l *Limb) {
		out = append(out, l)
		for _, c := range l.Children {
			walk(c)
		}
	}
	if s.Root != nil {
		walk(s.Root)
	}
	return out
}

// IsFlex reports whether any limb owns geometry skinned across bones.
func (s *Skeleton) IsFlex() bool {
	for _, l := range s.LimbList() {
		if l.IsFlex {
			return true
		}
	}
	return false
}

// DLCount returns the number of limbs that draw a display list.
func (s *Skeleton) DLCount() int {
	n := 0
	for _, l := range s.LimbList() {
		if l.DLName() != "" {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the skeleton.
func (s *Skeleton) Clone() *Skeleton {
	if s == nil {
		return nil
	}
	return &Skeleton{Name: s.Name, Root: s.Root.Clone(), HasLOD: s.HasLOD}
}

// Equal compares two skeletons limb by limb.
func (s *Skeleton) Equal(o *Skeleton) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Name == o.Name && s.HasLOD == o.HasLOD && s.Root.Equal(o.Root)
}

// links returns each limb's first child and next sibling index, LimbDone
// where absent.
func (s *Skeleton) links() (child, sibling []int) {
	list := s.LimbList()
	child = make([]int, len(list))
	sibling = make([]int, len(list))
	for i := range list {
		child[i], sibling[i] = LimbDone, LimbDone
	}
	for _, l := range list {
		if len(l.Children) > 0 {
			child[l.Index] = l.Children[0].Index
		}
		for i := 0; i+1 < len(l.Children); i++ {
			sibling[l.Children[i].Index] = l.Children[i+1].Index
		}
	}
	return child, sibling
}
