// Package odf writes ranks as sections of an organ definition file and reads
// them back.
//
// Definition files are ini files. Keys of further attacks and releases are
// numbered per pipe, e.g. Pipe003Attack002CuePoint; numbers are 1-based and
// zero-padded to three digits. Paths are relative to the definition file and
// use backslashes. Booleans are Y or N, and -1 means an unset offset or time.
package odf

import (
	"fmt"
	"strings"

	"github.com/organforge/pipework"
)

// Dummy is the path of a pipe without samples.
const Dummy = "DUMMY"

// Ordinal formats a 1-based number the way section and key names use it.
func Ordinal(n int) string { return fmt.Sprintf("%03d", n) }

// Bool formats b as Y or N.
func Bool(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

// ParseBool reads Y/N; anything starting with y or Y is true.
func ParseBool(s string, def bool) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s[0] == 'Y' || s[0] == 'y'
}

// FixSeparator converts a path to the backslash separated form.
func FixSeparator(path string) string { return strings.ReplaceAll(path, "/", `\`) }

// Sentinel returns the value of o, or -1 when it is unset.
func Sentinel(o pipework.Optional[int]) int { return o.Or(-1) }

// FromSentinel is the inverse of Sentinel: negative values are unset.
func FromSentinel(v int) pipework.Optional[int] {
	if v < 0 {
		return pipework.None[int]()
	}
	return pipework.Some(v)
}

func rankSection(ordinal int) string { return "Rank" + Ordinal(ordinal) }

func windchestSection(ordinal int) string { return "WindchestGroup" + Ordinal(ordinal) }

func pipeKey(i int) string { return "Pipe" + Ordinal(i+1) }
