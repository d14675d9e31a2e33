package input

import (
	"fmt"

	"github.com/Faultbox/z64forge/internal/scene"
	"github.com/Faultbox/z64forge/pkg/codec"
	"github.com/Faultbox/z64forge/pkg/errs"
)

// Scene converts the scene named name, or the only scene when name is
// empty. Room display lists and models are loaded here.
func (p *Project) Scene(name string) (*scene.Scene, error) {
	d, err := p.Doc.Scene(name)
	if err != nil {
		return nil, err
	}

	s := scene.New(d.Name)
	if s.Collision, err = convertCollision(d.Name, &d.Collision); err != nil {
		return nil, err
	}

	for i, rd := range d.Rooms {
		r, err := p.room(d.Name, i, &rd)
		if err != nil {
			return nil, err
		}
		s.Rooms = append(s.Rooms, r)
	}

	for _, sp := range d.Spawns {
		s.Spawns = append(s.Spawns, scene.Spawn{SpawnIndex: sp.Actor, RoomIndex: sp.Room})
	}
	for _, a := range d.EntranceActors {
		s.EntranceActors = append(s.EntranceActors, scene.EntranceActor{
			ActorID: a.ActorID,
			Pos:     a.Pos,
			Rot:     a.Rot,
			Params:  a.Params,
		})
	}
	for _, c := range d.CutsceneCameras {
		cam := scene.CutsceneCamera{Type: c.Type}
		for _, pt := range c.Points {
			cam.Points = append(cam.Points, pt)
		}
		s.CutsceneCameras = append(s.CutsceneCameras, cam)
	}

	s.SpecialFiles.NaviHint = d.NaviHint
	if d.GlobalObject != nil {
		s.SpecialFiles.GlobalObject = *d.GlobalObject
	}
	s.Skybox.Unknown = d.Skybox.Unknown
	s.Skybox.SkyboxID = d.Skybox.ID
	s.Skybox.Weather = d.Skybox.Weather
	if d.Skybox.Indoors != nil {
		s.Skybox.Indoors = *d.Skybox.Indoors
	}
	return s, nil
}

// Segments returns the segment table of the named scene.
func (p *Project) Segments(name string) (codec.SegmentTable, uint32, error) {
	d, err := p.Doc.Scene(name)
	if err != nil {
		return nil, 0, err
	}
	table := make(codec.SegmentTable, len(d.Segments))
	for _, seg := range d.Segments {
		if seg.End < seg.Start {
			return nil, 0, errs.Validation("input", "segment 0x%02X ends before it starts", seg.ID)
		}
		table[seg.ID] = codec.SegmentRange{Start: seg.Start, End: seg.End}
	}
	return table, d.CollisionBase, nil
}

func convertCollision(sceneName string, d *CollisionDoc) (scene.CollisionHeader, error) {
	h := scene.CollisionHeader{Name: sceneName + "_collisionHeader"}
	for _, v := range d.Vertices {
		h.Vertices = append(h.Vertices, v)
	}
	for _, pd := range d.Polygons {
		poly, err := scene.NewCollisionPoly(h.Vertices, pd.Indices[0], pd.Indices[1], pd.Indices[2], pd.Surface)
		if err != nil {
			return h, err
		}
		if pd.IgnoreCamera {
			poly.Indices[0] |= scene.PolyFlagIgnoreCam
		}
		if pd.IgnoreActors {
			poly.Indices[0] |= scene.PolyFlagIgnoreAll
		}
		if pd.Conveyor {
			poly.Indices[1] |= scene.PolyFlagConveyor
		}
		h.Polygons = append(h.Polygons, poly)
	}
	for _, st := range d.SurfaceTypes {
		h.SurfaceTypes = append(h.SurfaceTypes, scene.SurfaceType{
			BgCamIndex:        st.Camera,
			ExitIndex:         st.Exit,
			FloorType:         st.FloorType,
			Unk18:             st.Unk18,
			WallType:          st.WallType,
			FloorProperty:     st.FloorProperty,
			IsSoft:            st.IsSoft,
			IsHorseBlocked:    st.IsHorseBlocked,
			Material:          st.Material,
			FloorEffect:       st.FloorEffect,
			LightSetting:      st.LightSetting,
			Echo:              st.Echo,
			CanHookshot:       st.CanHookshot,
			ConveyorSpeed:     st.ConveyorSpeed,
			ConveyorDirection: st.ConveyorDirection,
			Unk27:             st.Unk27,
		})
	}
	for _, c := range d.Cameras {
		cam := scene.BgCamInfo{Setting: c.Setting}
		for _, v := range c.Data {
			cam.Data = append(cam.Data, v)
		}
		h.BgCams = append(h.BgCams, cam)
	}
	for _, w := range d.WaterBoxes {
		h.WaterBoxes = append(h.WaterBoxes, scene.WaterBox{
			XMin:       w.XMin,
			YSurface:   w.YSurface,
			ZMin:       w.ZMin,
			XLength:    w.XLength,
			ZLength:    w.ZLength,
			Properties: w.Properties,
		})
	}
	h.ComputeBounds()
	return h, nil
}

func (p *Project) room(sceneName string, index int, d *RoomDoc) (*scene.Room, error) {
	shape, err := scene.ParseRoomShapeType(d.Shape)
	if err != nil {
		return nil, err
	}
	name := d.Name
	if name == "" {
		name = scene.RoomName(sceneName, index)
	}

	r := &scene.Room{
		Name:             name,
		Shape:            scene.RoomShape{Type: shape},
		Echo:             d.Echo,
		ShowInvisActors:  d.ShowInvisActors,
		DisableWarpSongs: d.DisableWarpSongs,
		EnablePosLights:  d.EnablePosLights,
		EnableStorm:      d.EnableStorm,
		DisableSky:       d.DisableSky,
		DisableSunMoon:   d.DisableSunMoon,
		Hour:             orDefault(d.Hour, 0xFF),
		Minute:           orDefault(d.Minute, 0xFF),
		TimeSpeed:        orDefault(d.TimeSpeed, 10),
	}

	for i, e := range d.Entries {
		entry := scene.DisplayListEntry{Center: e.Center, Radius: e.Radius}
		if e.Opaque != nil {
			if entry.Opaque, err = p.DisplayList(*e.Opaque, fmt.Sprintf("%s_dl_opa_%d", name, i)); err != nil {
				return nil, err
			}
		}
		if e.Transparent != nil {
			if entry.Transparent, err = p.DisplayList(*e.Transparent, fmt.Sprintf("%s_dl_xlu_%d", name, i)); err != nil {
				return nil, err
			}
		}
		r.Shape.Entries = append(r.Shape.Entries, entry)
	}

	if len(d.Meshes) > 0 || len(d.Materials) > 0 || len(d.Textures) > 0 {
		model, err := p.Model(name, nonNil(d.Textures), nonNil(d.Materials))
		if err != nil {
			return nil, err
		}
		for _, m := range d.Meshes {
			mesh, err := p.Mesh(m)
			if err != nil {
				return nil, err
			}
			if _, err := model.AddMesh(mesh); err != nil {
				return nil, errs.Validation("input", "%v", err)
			}
		}
		r.Shape.Model = model
	}
	return r, nil
}

func orDefault(v *uint8, def uint8) uint8 {
	if v == nil {
		return def
	}
	return *v
}

// nonNil makes an absent list select nothing rather than everything.
func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
