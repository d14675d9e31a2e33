package skeleton

import (
	"fmt"
	"strings"

	"github.com/Faultbox/z64forge/internal/asset"
	"github.com/Faultbox/z64forge/pkg/cdata"
)

// CIncludes are the headers a skeleton source needs.
var CIncludes = []string{"ultra64.h", "array_count.h", "z64animation.h"}

func limbIndex(i int) string {
	if i == LimbDone {
		return "LIMB_DONE"
	}
	return fmt.Sprintf("0x%02X", i)
}

func dlSymbol(name string) string {
	if name == "" {
		return "NULL"
	}
	return name
}

// limbEnum returns the enum constant naming a limb, e.g. GSKEL_ROOT_LIMB.
func limbEnum(skel, bone string) string {
	return strings.TrimSuffix(cdata.GuardName(skel+"_"+bone), "_H") + "_LIMB"
}

// C returns the skeleton's limb definitions, limb table and header struct.
func (s *Skeleton) C() *cdata.CData {
	c := cdata.New()
	list := s.LimbList()
	child, sibling := s.links()

	limbType := "StandardLimb"
	if s.HasLOD {
		limbType = "LodLimb"
	}

	prefix := strings.TrimSuffix(cdata.GuardName(s.Name), "_H")
	c.Headerf("typedef enum %sLimb {\n", s.Name)
	c.Headerf("\t%s_LIMB_NONE,\n", prefix)
	for _, l := range list {
		c.Headerf("\t%s,\n", limbEnum(s.Name, l.BoneName))
	}
	c.Headerf("\t%s_LIMB_MAX\n} %sLimb;\n\n", prefix, s.Name)

	for _, l := range list {
		c.Headerf("extern %s %s;\n", limbType, l.Name())

		c.Sourcef("%s %s = { { %d, %d, %d }, %s, %s, ",
			limbType, l.Name(),
			l.Translation[0], l.Translation[1], l.Translation[2],
			limbIndex(child[l.Index]), limbIndex(sibling[l.Index]))
		if s.HasLOD {
			c.Sourcef("{ %s, %s } };\n", dlSymbol(l.DLName()), dlSymbol(l.LODDLName()))
		} else {
			c.Sourcef("%s };\n", dlSymbol(l.DLName()))
		}
	}
	c.Sourcef("\n")

	c.Headerf("extern void* %sLimbs[];\n", s.Name)
	c.Sourcef("void* %sLimbs[] = {\n", s.Name)
	for _, l := range list {
		c.Sourcef("\t&%s,\n", l.Name())
	}
	c.Sourcef("};\n\n")

	if s.IsFlex() {
		c.Headerf("extern FlexSkeletonHeader %s;\n", s.Name)
		c.Sourcef("FlexSkeletonHeader %s = { { %sLimbs, ARRAY_COUNT(%sLimbs) }, %d };\n\n",
			s.Name, s.Name, s.Name, s.DLCount())
	} else {
		c.Headerf("extern SkeletonHeader %s;\n", s.Name)
		c.Sourcef("SkeletonHeader %s = { %sLimbs, ARRAY_COUNT(%sLimbs) };\n\n",
			s.Name, s.Name, s.Name)
	}
	return c
}

// EmitC assembles the complete header and source for a skeleton export:
// include guard, includes, the model's resources and the skeleton itself.
// filename is the base name shared by the .h and .c files.
func EmitC(s *Skeleton, model *asset.Model, filename string) *cdata.CData {
	body := cdata.New()
	for _, inc := range CIncludes {
		body.Headerf("#include \"%s\"\n", inc)
	}
	body.Headerf("\n")
	body.Sourcef("%s\n", cdata.Include(filename+".h"))

	if model != nil {
		body.Append(model.C())
	}
	body.Append(s.C())

	out := cdata.New()
	out.Headerf("%s", cdata.Guarded(filename, body.Header.String()))
	out.Sourcef("%s", body.Source.String())
	return out
}
