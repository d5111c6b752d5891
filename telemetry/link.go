// Package telemetry decodes the MumbleLink record published by the game and
// keeps a file copy of it fresh.
//
// The record is a fixed little-endian layout refreshed in place by the game
// at up to 30 Hz. Reads are not synchronized with the writer; the tick
// counter at offset 4 is the only freshness signal.
package telemetry

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"fortio.org/log"
	"github.com/ansipixels/mumbleview/math3d"
	"golang.org/x/text/encoding/unicode"
)

// Layout constants.
const (
	// RecordSize is the number of bytes needed to decode every field.
	RecordSize = 1193
	// PageSize is how much of the shared region is copied per read.
	PageSize = 4096
	// SharedSize is the full size of the MumbleLink shared memory block.
	SharedSize = 5460

	offVersion         = 0
	offTick            = 4
	offAvatarPosition  = 8
	offAvatarFront     = 20
	offAvatarTop       = 32
	offName            = 44
	offCameraPosition  = 556
	offCameraFront     = 568
	offCameraTop       = 580
	offIdentity        = 592
	offMapID           = 1136
	offMapType         = 1140
	offShardID         = 1144
	offInstance        = 1148
	offBuildID         = 1152
	offUIState         = 1156
	offCompassWidth    = 1160
	offCompassHeight   = 1162
	offCompassRotation = 1164
	offPlayerX         = 1168
	offPlayerY         = 1172
	offMapCenterX      = 1176
	offMapCenterY      = 1180
	offMapScale        = 1184
	offProcessID       = 1188
	offMount           = 1192

	stringFieldSize = 512
)

// ErrShortRecord is returned when a buffer is smaller than RecordSize.
var ErrShortRecord = errors.New("short mumble link record")

// Snapshot is one decoded MumbleLink record.
type Snapshot struct {
	Version uint32
	Tick    uint32

	AvatarPosition math3d.Vec3
	AvatarFront    math3d.Vec3
	AvatarTop      math3d.Vec3
	Name           string

	CameraPosition math3d.Vec3
	CameraFront    math3d.Vec3
	CameraTop      math3d.Vec3
	Identity       Identity
	IdentityRaw    string

	MapID    uint32
	MapType  uint32
	ShardID  uint32
	Instance uint32
	BuildID  uint32
	UIState  UIState

	CompassWidth    uint16 // pixels
	CompassHeight   uint16 // pixels
	CompassRotation float32
	PlayerX         float32 // continent coordinates
	PlayerY         float32
	MapCenterX      float32
	MapCenterY      float32
	MapScale        float32
	ProcessID       uint32
	Mount           Mount
}

// Stale reports whether the record has never been written by the game.
func (s Snapshot) Stale() bool {
	return s.Tick == 0
}

// Tick returns the tick counter of a raw record, or 0 when buf is too short.
func Tick(buf []byte) uint32 {
	if len(buf) < offTick+4 {
		return 0
	}
	return binary.LittleEndian.Uint32(buf[offTick:])
}

// Decode parses a raw MumbleLink record. Only a short buffer is an error;
// a malformed identity decodes to an empty Identity with Valid false.
func Decode(buf []byte) (Snapshot, error) {
	if len(buf) < RecordSize {
		return Snapshot{}, fmt.Errorf("%w: %d bytes, need %d", ErrShortRecord, len(buf), RecordSize)
	}
	le := binary.LittleEndian
	s := Snapshot{
		Version:         le.Uint32(buf[offVersion:]),
		Tick:            le.Uint32(buf[offTick:]),
		AvatarPosition:  vec3At(buf, offAvatarPosition),
		AvatarFront:     vec3At(buf, offAvatarFront),
		AvatarTop:       vec3At(buf, offAvatarTop),
		Name:            utf16At(buf, offName),
		CameraPosition:  vec3At(buf, offCameraPosition),
		CameraFront:     vec3At(buf, offCameraFront),
		CameraTop:       vec3At(buf, offCameraTop),
		MapID:           le.Uint32(buf[offMapID:]),
		MapType:         le.Uint32(buf[offMapType:]),
		ShardID:         le.Uint32(buf[offShardID:]),
		Instance:        le.Uint32(buf[offInstance:]),
		BuildID:         le.Uint32(buf[offBuildID:]),
		UIState:         UIState(le.Uint32(buf[offUIState:])),
		CompassWidth:    le.Uint16(buf[offCompassWidth:]),
		CompassHeight:   le.Uint16(buf[offCompassHeight:]),
		CompassRotation: float32At(buf, offCompassRotation),
		PlayerX:         float32At(buf, offPlayerX),
		PlayerY:         float32At(buf, offPlayerY),
		MapCenterX:      float32At(buf, offMapCenterX),
		MapCenterY:      float32At(buf, offMapCenterY),
		MapScale:        float32At(buf, offMapScale),
		ProcessID:       le.Uint32(buf[offProcessID:]),
		Mount:           Mount(buf[offMount]),
	}
	s.IdentityRaw = utf16At(buf, offIdentity)
	s.Identity = ParseIdentity(s.IdentityRaw)
	return s, nil
}

// Encode lays a snapshot out as a RecordSize byte record. IdentityRaw is
// written verbatim when set; otherwise a valid Identity is marshalled.
// Strings longer than their field are truncated.
func Encode(s Snapshot) []byte {
	buf := make([]byte, RecordSize)
	le := binary.LittleEndian
	le.PutUint32(buf[offVersion:], s.Version)
	le.PutUint32(buf[offTick:], s.Tick)
	putVec3(buf, offAvatarPosition, s.AvatarPosition)
	putVec3(buf, offAvatarFront, s.AvatarFront)
	putVec3(buf, offAvatarTop, s.AvatarTop)
	putUTF16(buf, offName, s.Name)
	putVec3(buf, offCameraPosition, s.CameraPosition)
	putVec3(buf, offCameraFront, s.CameraFront)
	putVec3(buf, offCameraTop, s.CameraTop)
	raw := s.IdentityRaw
	if raw == "" && s.Identity.Valid {
		if b, err := json.Marshal(s.Identity); err == nil {
			raw = string(b)
		}
	}
	putUTF16(buf, offIdentity, raw)
	le.PutUint32(buf[offMapID:], s.MapID)
	le.PutUint32(buf[offMapType:], s.MapType)
	le.PutUint32(buf[offShardID:], s.ShardID)
	le.PutUint32(buf[offInstance:], s.Instance)
	le.PutUint32(buf[offBuildID:], s.BuildID)
	le.PutUint32(buf[offUIState:], uint32(s.UIState))
	le.PutUint16(buf[offCompassWidth:], s.CompassWidth)
	le.PutUint16(buf[offCompassHeight:], s.CompassHeight)
	putFloat32(buf, offCompassRotation, s.CompassRotation)
	putFloat32(buf, offPlayerX, s.PlayerX)
	putFloat32(buf, offPlayerY, s.PlayerY)
	putFloat32(buf, offMapCenterX, s.MapCenterX)
	putFloat32(buf, offMapCenterY, s.MapCenterY)
	putFloat32(buf, offMapScale, s.MapScale)
	le.PutUint32(buf[offProcessID:], s.ProcessID)
	buf[offMount] = byte(s.Mount)
	return buf
}

func putFloat32(buf []byte, off int, f float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
}

func putVec3(buf []byte, off int, v math3d.Vec3) {
	f := v.Float32()
	putFloat32(buf, off, f[0])
	putFloat32(buf, off+4, f[1])
	putFloat32(buf, off+8, f[2])
}

// putUTF16 writes s NUL-terminated, leaving room for the terminator.
func putUTF16(buf []byte, off int, s string) {
	encoded, err := utf16LE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		log.Debugf("utf-16 encode %q: %v", s, err)
		return
	}
	if limit := stringFieldSize - 2; len(encoded) > limit {
		encoded = encoded[:limit&^1]
		// Never end on the first half of a surrogate pair.
		if n := len(encoded); n >= 2 && isHighSurrogate(binary.LittleEndian.Uint16(encoded[n-2:])) {
			encoded = encoded[:n-2]
		}
	}
	copy(buf[off:off+stringFieldSize], encoded)
}

func isHighSurrogate(u uint16) bool {
	return u >= 0xd800 && u < 0xdc00
}

func float32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func vec3At(buf []byte, off int) math3d.Vec3 {
	return math3d.V3(
		float64(float32At(buf, off)),
		float64(float32At(buf, off+4)),
		float64(float32At(buf, off+8)),
	)
}

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// utf16At decodes a NUL-terminated UTF-16LE string from a fixed 512 byte field.
func utf16At(buf []byte, off int) string {
	decoded, err := utf16LE.NewDecoder().Bytes(buf[off : off+stringFieldSize])
	if err != nil {
		log.Debugf("utf-16 field at %d: %v", off, err)
		return ""
	}
	s, _, _ := strings.Cut(string(decoded), "\x00")
	return s
}
