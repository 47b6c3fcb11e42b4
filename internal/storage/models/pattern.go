package models

import "time"

// PatternKey identifies one of the fixed alarm pattern slots.
type PatternKey string

const (
	PatternDefault PatternKey = "default"
	PatternA       PatternKey = "A"
	PatternB       PatternKey = "B"
	PatternC       PatternKey = "C"
	PatternD       PatternKey = "D"
	PatternE       PatternKey = "E"
	PatternF       PatternKey = "F"
)

// PatternKeys lists every slot, default first.
var PatternKeys = []PatternKey{
	PatternDefault, PatternA, PatternB, PatternC, PatternD, PatternE, PatternF,
}

// CanonicalPatternKey migrates a stored key to a member of the fixed slot
// set. Legacy lowercase keys from the three-slot era map onto A-C; anything
// unrecognized means the default slot.
func CanonicalPatternKey(key PatternKey) PatternKey {
	for _, k := range PatternKeys {
		if key == k {
			return k
		}
	}
	switch key {
	case "a":
		return PatternA
	case "b":
		return PatternB
	case "c":
		return PatternC
	}
	return PatternDefault
}

// Offset bounds for alarm patterns, in minutes before event start.
// Zero means "at start"; the maximum is three days out.
const (
	MinOffsetMinutes     = 0
	MaxOffsetMinutes     = 4320
	MaxOffsetsPerPattern = 5
)

// AlarmPattern is a named, reusable set of reminder offsets plus a sound
// choice. An unregistered custom slot has no offsets and is not selectable
// for scheduling.
type AlarmPattern struct {
	Key        PatternKey `json:"key"`
	Name       string     `json:"name"`
	OffsetsMin []int      `json:"offsets_min"`
	Registered bool       `json:"registered"`
	SoundID    SoundID    `json:"sound_id"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// FactoryPattern returns the out-of-the-box state for a slot. The default
// slot ships registered with the system offsets; custom slots ship empty.
func FactoryPattern(key PatternKey) AlarmPattern {
	key = CanonicalPatternKey(key)
	if key == PatternDefault {
		return AlarmPattern{
			Key:        PatternDefault,
			Name:       "デフォルト",
			OffsetsMin: []int{5, 60},
			Registered: true,
			SoundID:    SoundDefault,
		}
	}
	names := map[PatternKey]string{
		PatternA: "カスタム1",
		PatternB: "カスタム2",
		PatternC: "カスタム3",
		PatternD: "カスタム4",
		PatternE: "カスタム5",
		PatternF: "カスタム6",
	}
	return AlarmPattern{
		Key:        key,
		Name:       names[key],
		OffsetsMin: []int{},
		Registered: false,
		SoundID:    SoundDefault,
	}
}

// SoundID selects the platform notification sound.
type SoundID string

const (
	SoundDefault          SoundID = "default"
	SoundBeep             SoundID = "beep"
	SoundBrightUpbeat     SoundID = "brightUpbeat"
	SoundClassic          SoundID = "classic"
	SoundMagical          SoundID = "magical"
	SoundRefreshingWakeup SoundID = "refreshingWakeup"
)

// soundFiles maps custom sound ids to their bundled asset names.
var soundFiles = map[SoundID]string{
	SoundBeep:             "beep.wav",
	SoundBrightUpbeat:     "bright_upbeat.wav",
	SoundClassic:          "classic.wav",
	SoundMagical:          "magical.wav",
	SoundRefreshingWakeup: "refreshing_wakeup.wav",
}

// CanonicalSoundID falls back to the system default for unknown ids.
func CanonicalSoundID(id SoundID) SoundID {
	if _, ok := soundFiles[id]; ok {
		return id
	}
	return SoundDefault
}

// SoundFile resolves the value handed to the notification platform:
// "default" for the system sound, otherwise the bare asset filename.
func SoundFile(id SoundID) string {
	if f, ok := soundFiles[id]; ok {
		return f
	}
	return "default"
}
