package pipework

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultReleasePrefix starts the names of release folders, as in "rel500".
const DefaultReleasePrefix = "rel"

var ErrKeyPressTime = errors.New("release folder name has no key press time")

// Release is a sample played when a pipe is released.
type Release struct {
	FullPath string
	FileName string `yaml:",omitempty"`

	CuePoint   Optional[int] `yaml:",omitempty"`
	ReleaseEnd Optional[int] `yaml:",omitempty"`

	// MaxKeyPressTime selects this release only when the key was held at
	// most this many milliseconds; unset means no limit.
	MaxKeyPressTime Optional[int] `yaml:",omitempty"`

	IsTremulant Tremulant
}

func NewRelease(fullPath, fileName string) Release {
	return Release{FullPath: fullPath, FileName: fileName}
}

func (r *Release) Dir() string { return filepath.Dir(r.FullPath) }

func (r *Release) SetCuePoint(v int)        { r.CuePoint = clampOptional(v, sampleOffsetRange) }
func (r *Release) SetReleaseEnd(v int)      { r.ReleaseEnd = clampOptional(v, sampleOffsetRange) }
func (r *Release) SetMaxKeyPressTime(v int) { r.MaxKeyPressTime = clampOptional(v, timeRange) }

func (r *Release) ClearCuePoint()        { r.CuePoint = None[int]() }
func (r *Release) ClearReleaseEnd()      { r.ReleaseEnd = None[int]() }
func (r *Release) ClearMaxKeyPressTime() { r.MaxKeyPressTime = None[int]() }

func (r *Release) CopyPropertiesFrom(src *Release) {
	r.CuePoint = src.CuePoint
	r.ReleaseEnd = src.ReleaseEnd
	r.MaxKeyPressTime = src.MaxKeyPressTime
	r.IsTremulant = src.IsTremulant
}

// KeyPressTimeFromFolder reads the max key press time from the name of a
// release folder: the number after prefix, as 500 in "rel500" or "rel_500".
// Case of the prefix is ignored. A name with nothing after the prefix gives
// no limit; anything else that is not a non-negative number is an error.
func KeyPressTimeFromFolder(folder, prefix string) (Optional[int], error) {
	if len(folder) < len(prefix) || !strings.EqualFold(folder[:len(prefix)], prefix) {
		return None[int](), fmt.Errorf("%w: %q does not start with %q", ErrKeyPressTime, folder, prefix)
	}
	suffix := strings.TrimLeft(folder[len(prefix):], " _-")
	if suffix == "" {
		return None[int](), nil
	}
	ms, err := strconv.Atoi(suffix)
	if err != nil || ms < 0 {
		return None[int](), fmt.Errorf("%w: %q", ErrKeyPressTime, folder)
	}
	return Some(timeRange.Clamp(ms)), nil
}
