package pipework

import "path/filepath"

// Limits of the sample playback parameters, as accepted by the sample
// player reading the definition files.
const (
	MaxSampleOffset = 158760000
	MaxVelocity     = 127
	MaxTimeMillis   = 100000
)

var (
	sampleOffsetRange = intRange{0, MaxSampleOffset}
	velocityRange     = intRange{0, MaxVelocity}
	timeRange         = intRange{0, MaxTimeMillis}
)

// Attack is a sample played when a pipe is triggered.
type Attack struct {
	// FullPath is the absolute path of the sample file. For a borrowed pipe
	// it holds the reference string instead; for a dummy pipe it is empty.
	FullPath string `yaml:",omitempty"`

	// FileName is the path relative to the organ definition root.
	FileName string `yaml:",omitempty"`

	AttackStart int `yaml:",omitempty"`

	// AttackVelocity is the lowest velocity this attack is used for; 0
	// means the attack applies to all velocities.
	AttackVelocity int `yaml:",omitempty"`

	// CuePoint is the loop/sustain start offset.
	CuePoint Optional[int] `yaml:",omitempty"`

	// ReleaseEnd is where the release part of the attack sample ends; when
	// unset the tail of the attack sample itself plays.
	ReleaseEnd Optional[int] `yaml:",omitempty"`

	IsTremulant Tremulant

	// LoadRelease tells the player to use the release part contained in
	// the attack sample.
	LoadRelease bool

	MaxKeyPressTime         Optional[int] `yaml:",omitempty"`
	MaxTimeSinceLastRelease Optional[int] `yaml:",omitempty"`
}

// NewAttack returns an attack for the sample at fullPath with default
// playback parameters; fileName is the path relative to the definition root.
func NewAttack(fullPath, fileName string) Attack {
	return Attack{FullPath: fullPath, FileName: fileName, LoadRelease: true}
}

// IsEmpty reports whether the attack is the placeholder of a dummy pipe.
func (a *Attack) IsEmpty() bool { return a.FullPath == "" }

// Dir returns the folder of the sample; attacks loaded from the same folder
// usually share their playback parameters.
func (a *Attack) Dir() string {
	if a.IsEmpty() || IsReference(a.FullPath) {
		return ""
	}
	return filepath.Dir(a.FullPath)
}

func (a *Attack) SetAttackStart(v int)    { a.AttackStart = sampleOffsetRange.Clamp(v) }
func (a *Attack) SetAttackVelocity(v int) { a.AttackVelocity = velocityRange.Clamp(v) }

// SetCuePoint clamps v to a valid offset; a negative v unsets the cue point.
func (a *Attack) SetCuePoint(v int)  { a.CuePoint = clampOptional(v, sampleOffsetRange) }
func (a *Attack) SetReleaseEnd(v int) { a.ReleaseEnd = clampOptional(v, sampleOffsetRange) }
func (a *Attack) SetMaxKeyPressTime(v int) {
	a.MaxKeyPressTime = clampOptional(v, timeRange)
}
func (a *Attack) SetMaxTimeSinceLastRelease(v int) {
	a.MaxTimeSinceLastRelease = clampOptional(v, timeRange)
}

func (a *Attack) ClearCuePoint()                { a.CuePoint = None[int]() }
func (a *Attack) ClearReleaseEnd()              { a.ReleaseEnd = None[int]() }
func (a *Attack) ClearMaxKeyPressTime()         { a.MaxKeyPressTime = None[int]() }
func (a *Attack) ClearMaxTimeSinceLastRelease() { a.MaxTimeSinceLastRelease = None[int]() }

// CopyPropertiesFrom copies the playback parameters of src, leaving the
// sample paths alone.
func (a *Attack) CopyPropertiesFrom(src *Attack) {
	a.AttackStart = src.AttackStart
	a.AttackVelocity = src.AttackVelocity
	a.CuePoint = src.CuePoint
	a.ReleaseEnd = src.ReleaseEnd
	a.IsTremulant = src.IsTremulant
	a.LoadRelease = src.LoadRelease
	a.MaxKeyPressTime = src.MaxKeyPressTime
	a.MaxTimeSinceLastRelease = src.MaxTimeSinceLastRelease
}
