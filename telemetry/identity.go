package telemetry

import (
	"encoding/json"
	"fmt"
	"strings"

	"fortio.org/log"
)

// Identity is the JSON blob the game embeds in the record.
type Identity struct {
	Name           string     `json:"name"`
	Profession     Profession `json:"profession"`
	Specialization int        `json:"spec"`
	Race           Race       `json:"race"`
	MapID          int        `json:"map_id"`
	WorldID        int64      `json:"world_id"`
	TeamColorID    int        `json:"team_color_id"`
	Commander      bool       `json:"commander"`
	FOV            float64    `json:"fov"` // radians
	UISize         UISize     `json:"uisz"`

	// Valid is false when the blob was empty or could not be parsed.
	Valid bool `json:"-"`
}

// ParseIdentity decodes the identity JSON. Empty or malformed input yields
// the zero Identity rather than an error so a frame is never lost to it;
// Valid tells callers which case they got.
func ParseIdentity(raw string) Identity {
	if raw == "" {
		return Identity{}
	}
	var id Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		log.Debugf("identity json %q: %v", raw, err)
		return Identity{}
	}
	id.Valid = true
	return id
}

// Profession of the active character.
type Profession int

// Professions, numbered as the game reports them.
const (
	ProfessionUnknown Profession = iota
	Guardian
	Warrior
	Engineer
	Ranger
	Thief
	Elementalist
	Mesmer
	Necromancer
	Revenant
)

var professionNames = [...]string{
	"Unknown", "Guardian", "Warrior", "Engineer", "Ranger",
	"Thief", "Elementalist", "Mesmer", "Necromancer", "Revenant",
}

func (p Profession) String() string {
	if p >= 0 && int(p) < len(professionNames) {
		return professionNames[p]
	}
	return fmt.Sprintf("Profession(%d)", int(p))
}

// Race of the active character.
type Race int

// Races.
const (
	Asura Race = iota
	Charr
	Human
	Norn
	Sylvari
)

var raceNames = [...]string{"Asura", "Charr", "Human", "Norn", "Sylvari"}

func (r Race) String() string {
	if r >= 0 && int(r) < len(raceNames) {
		return raceNames[r]
	}
	return fmt.Sprintf("Race(%d)", int(r))
}

// UISize is the interface size setting.
type UISize int

// UI sizes.
const (
	UISmall UISize = iota
	UINormal
	UILarge
	UILarger
)

var uiSizeNames = [...]string{"Small", "Normal", "Large", "Larger"}

func (u UISize) String() string {
	if u >= 0 && int(u) < len(uiSizeNames) {
		return uiSizeNames[u]
	}
	return fmt.Sprintf("UISize(%d)", int(u))
}

// Mount currently ridden, from the byte at offset 1192.
type Mount uint8

// Mounts.
const (
	MountNone Mount = iota
	Jackal
	Griffon
	Springer
	Skimmer
	Raptor
	RollerBeetle
	Warclaw
	Skyscale
)

var mountNames = [...]string{
	"None", "Jackal", "Griffon", "Springer", "Skimmer",
	"Raptor", "RollerBeetle", "Warclaw", "Skyscale",
}

func (m Mount) String() string {
	if int(m) < len(mountNames) {
		return mountNames[m]
	}
	return fmt.Sprintf("Mount(%d)", int(m))
}

// UIState is a bit set describing the game interface.
type UIState uint32

// UI state flags.
const (
	MapOpen UIState = 1 << iota
	CompassTopRight
	CompassRotationEnabled
	GameFocus
	CompetitiveMode
	TextboxFocus
	InCombat
)

// Has reports whether every bit in flag is set.
func (s UIState) Has(flag UIState) bool {
	return s&flag == flag
}

var uiStateNames = [...]string{
	"MapOpen", "CompassTopRight", "CompassRotationEnabled", "GameFocus",
	"CompetitiveMode", "TextboxFocus", "InCombat",
}

// String lists the set flags joined with "|", or "0" when none are set.
func (s UIState) String() string {
	if s == 0 {
		return "0"
	}
	var parts []string
	for i, name := range uiStateNames {
		if s&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	if rest := s &^ (1<<len(uiStateNames) - 1); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}
