package pipework

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Reference points a borrowed pipe to a pipe of another stop. It is written
// in place of the sample path as REF:MMM:SSS:PPP, where MMM is the manual
// ordinal (000 is the pedal), SSS the stop ordinal and PPP the pipe ordinal
// in that stop, each zero-padded to three digits.
type Reference struct {
	Manual int
	Stop   int
	Pipe   int
}

const referencePrefix = "REF:"

var ErrBadReference = errors.New("malformed pipe reference")

func (r Reference) String() string {
	return fmt.Sprintf("%s%03d:%03d:%03d", referencePrefix, r.Manual, r.Stop, r.Pipe)
}

// IsReference reports whether a sample path is in fact a pipe reference.
func IsReference(path string) bool {
	return strings.HasPrefix(path, referencePrefix)
}

// ParseReference parses a REF:MMM:SSS:PPP string. The fields must be
// non-negative integers; shorter or longer fields are accepted.
func ParseReference(s string) (Reference, error) {
	if !IsReference(s) {
		return Reference{}, fmt.Errorf("%w: %q", ErrBadReference, s)
	}
	parts := strings.Split(s[len(referencePrefix):], ":")
	if len(parts) != 3 {
		return Reference{}, fmt.Errorf("%w: %q has %d fields, expected 3", ErrBadReference, s, len(parts))
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return Reference{}, fmt.Errorf("%w: %q", ErrBadReference, s)
		}
		nums[i] = n
	}
	return Reference{Manual: nums[0], Stop: nums[1], Pipe: nums[2]}, nil
}
