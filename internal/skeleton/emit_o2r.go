package skeleton

import (
	"github.com/Faultbox/z64forge/internal/asset"
	"github.com/Faultbox/z64forge/pkg/o2r"
)

// Skeleton and limb type codes in O2R records.
const (
	skeletonNormal = 0
	skeletonFlex   = 1

	limbStandard = 0
	limbLOD      = 1
)

// Limb record flags.
const (
	limbFlagFlex = 1 << iota
	limbFlagDL
	limbFlagLODDL
	limbFlagCustomDL
)

// LimbRecordSize is the size of one limb record in a skeleton resource.
const LimbRecordSize = 28

// SkeletonHeaderSize is the size of the chunk preceding the limb records.
const SkeletonHeaderSize = 10

func (s *Skeleton) types() (skelType, limbType uint8) {
	if s.IsFlex() {
		skelType = skeletonFlex
	}
	if s.HasLOD {
		limbType = limbLOD
	}
	return skelType, limbType
}

func dlHash(folder, name string) uint64 {
	if name == "" {
		return 0
	}
	return asset.ResourceHash(folder, name)
}

func dlPath(folder, name string) string {
	if name == "" {
		return ""
	}
	return asset.ResourcePath(folder, name)
}

// O2R encodes the skeleton resource: a header chunk
//
//	u8 skeleton type, u8 limb type, u32 limb count, u32 display list count
//
// followed by one record per limb in index order
//
//	u16 index, s16 x, y, z, u8 child, u8 sibling, u8 flags, u8 pad,
//	u64 display list hash, u64 LOD display list hash
//
// where hashes are CRC64 resource names, 0 when absent.
func (s *Skeleton) O2R(folder string) []byte {
	list := s.LimbList()
	child, sibling := s.links()
	skelType, limbType := s.types()

	w := o2r.NewWriter(o2r.TypeSkeleton)
	w.U8(skelType)
	w.U8(limbType)
	w.U32(uint32(len(list)))
	w.U32(uint32(s.DLCount()))

	for _, l := range list {
		var flags uint8
		if l.IsFlex {
			flags |= limbFlagFlex
		}
		if l.DLName() != "" {
			flags |= limbFlagDL
		}
		if l.LODDLName() != "" {
			flags |= limbFlagLODDL
		}
		if l.CustomDL != "" {
			flags |= limbFlagCustomDL
		}

		w.U16(uint16(l.Index))
		w.I16(l.Translation[0])
		w.I16(l.Translation[1])
		w.I16(l.Translation[2])
		w.U8(uint8(child[l.Index]))
		w.U8(uint8(sibling[l.Index]))
		w.U8(flags)
		w.U8(0)
		w.U64(dlHash(folder, l.DLName()))
		w.U64(dlHash(folder, l.LODDLName()))
	}
	return w.Bytes()
}

// LimbO2R encodes one limb as its own resource:
//
//	u8 limb type, s16 x, y, z, u8 child, u8 sibling,
//	string display list path, string LOD display list path
func (s *Skeleton) LimbO2R(l *Limb, folder string) []byte {
	child, sibling := s.links()
	_, limbType := s.types()

	w := o2r.NewWriter(o2r.TypeSkeletonLimb)
	w.U8(limbType)
	w.I16(l.Translation[0])
	w.I16(l.Translation[1])
	w.I16(l.Translation[2])
	w.U8(uint8(child[l.Index]))
	w.U8(uint8(sibling[l.Index]))
	w.String(dlPath(folder, l.DLName()))
	w.String(dlPath(folder, l.LODDLName()))
	return w.Bytes()
}

// Files lists every resource of an O2R skeleton export under folder, in
// write order: the model's resources, the skeleton file named filename,
// one file per limb, then each limb display list not already written.
// Custom display lists are external and produce no file.
func Files(s *Skeleton, model *asset.Model, folder, filename string) []asset.File {
	var files []asset.File
	written := make(map[string]bool)
	add := func(f asset.File) {
		if written[f.Name] {
			return
		}
		written[f.Name] = true
		files = append(files, f)
	}

	if model != nil {
		for _, f := range model.Files(folder) {
			add(f)
		}
	}
	add(asset.File{Name: filename, Type: o2r.TypeSkeleton, Data: s.O2R(folder)})

	list := s.LimbList()
	for _, l := range list {
		add(asset.File{Name: l.Name(), Type: o2r.TypeSkeletonLimb, Data: s.LimbO2R(l, folder)})
	}
	for _, l := range list {
		for _, dl := range []*asset.DisplayList{l.DL, l.LODDL} {
			if dl == nil || dl.Data == nil {
				continue
			}
			add(asset.File{Name: dl.Name, Type: o2r.TypeDisplayList, Data: dl.O2R(folder)})
		}
	}
	return files
}
