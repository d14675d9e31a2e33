package scene

import (
	"fmt"
	"strings"

	"github.com/Faultbox/z64forge/pkg/o2r"
)

// Command is one decoded scene or room header command.
type Command struct {
	ID      uint32
	Summary string
}

// Name returns the SCENE_CMD_* name of the command.
func (c Command) Name() string {
	switch c.ID {
	case CmdSpawnList:
		return "SCENE_CMD_SPAWN_LIST"
	case CmdCutsceneCamera:
		return "SCENE_CMD_ACTOR_CUTSCENE_CAM_LIST"
	case CmdCollisionHeader:
		return "SCENE_CMD_COL_HEADER"
	case CmdRoomList:
		return "SCENE_CMD_ROOM_LIST"
	case CmdEntranceList:
		return "SCENE_CMD_ENTRANCE_LIST"
	case CmdSpecialFiles:
		return "SCENE_CMD_SPECIAL_FILES"
	case CmdRoomBehavior:
		return "SCENE_CMD_ROOM_BEHAVIOR"
	case CmdRoomShape:
		return "SCENE_CMD_ROOM_SHAPE"
	case CmdTimeSettings:
		return "SCENE_CMD_TIME_SETTINGS"
	case CmdSkyboxSettings:
		return "SCENE_CMD_SKYBOX_SETTINGS"
	case CmdSkyboxDisables:
		return "SCENE_CMD_SKYBOX_DISABLES"
	case CmdEnd:
		return "SCENE_CMD_END"
	case CmdEchoSettings:
		return "SCENE_CMD_ECHO_SETTINGS"
	case CmdActorCutsceneList:
		return "SCENE_CMD_ACTOR_CUTSCENE_LIST"
	default:
		return fmt.Sprintf("0x%02X", c.ID)
	}
}

// roomListEntryMin is an empty path plus the two unused address words.
const roomListEntryMin = 4 + 8

// DecodeCommands walks the command list of a scene or room resource up
// to and including the end marker.
func DecodeCommands(data []byte) ([]Command, error) {
	r, h, err := o2r.NewReader(data)
	if err != nil {
		return nil, err
	}
	if h.Type != o2r.TypeRoom {
		return nil, fmt.Errorf("resource type %s has no command list", h.Type)
	}

	declared := r.U32()
	var cmds []Command
	for r.Err() == nil && r.Remaining() > 0 {
		id := r.U32()
		var summary string
		switch id {
		case CmdCollisionHeader:
			summary = r.Text()
		case CmdRoomList:
			var paths []string
			for i, n := 0, r.Count(roomListEntryMin); i < n && r.Err() == nil; i++ {
				paths = append(paths, r.Text())
				r.Skip(8)
			}
			summary = strings.Join(paths, ", ")
		case CmdActorCutsceneList:
			summary = fmt.Sprintf("%d entries", r.U32())
		case CmdCutsceneCamera:
			n := r.Count(4)
			for i := 0; i < n && r.Err() == nil; i++ {
				r.Skip(2)
				r.Skip(int(r.U16()) * 6)
			}
			summary = fmt.Sprintf("%d cameras", n)
		case CmdSpecialFiles:
			summary = fmt.Sprintf("navi hint %d, object 0x%04X", r.U8(), r.U16())
		case CmdSkyboxSettings:
			summary = fmt.Sprintf("unk %d, skybox %d, weather %d, indoors %d", r.U8(), r.U8(), r.U8(), r.U8())
		case CmdEntranceList:
			n := r.Count(2)
			r.Skip(n * 2)
			summary = fmt.Sprintf("%d spawns", n)
		case CmdSpawnList:
			n := r.Count(16)
			r.Skip(n * 16)
			summary = fmt.Sprintf("%d actors", n)
		case CmdRoomShape:
			r.U8()
			typ := RoomShapeType(r.U8())
			n := r.U8()
			for i := uint8(0); i < n && r.Err() == nil; i++ {
				if typ == ShapeCullable {
					r.Skip(9)
				}
				r.Text()
				r.Text()
			}
			summary = fmt.Sprintf("%s, %d entries", typ, n)
		case CmdEchoSettings:
			summary = fmt.Sprintf("echo %d", r.U8())
		case CmdRoomBehavior:
			r.Skip(6)
		case CmdSkyboxDisables:
			summary = fmt.Sprintf("sky %d, sun/moon %d", r.U8(), r.U8())
		case CmdTimeSettings:
			summary = fmt.Sprintf("%02X:%02X speed %d", r.U8(), r.U8(), r.U8())
		case CmdEnd:
		default:
			return cmds, fmt.Errorf("unknown command 0x%02X at offset %d", id, r.Offset()-4)
		}
		if r.Err() != nil {
			break
		}
		cmds = append(cmds, Command{ID: id, Summary: summary})
		if id == CmdEnd {
			break
		}
	}
	if err := r.Err(); err != nil {
		return cmds, err
	}
	if n := len(cmds); uint32(n) != declared && uint32(n-1) != declared {
		return cmds, fmt.Errorf("header declares %d commands, found %d", declared, n)
	}
	return cmds, nil
}
