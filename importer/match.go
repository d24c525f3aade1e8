package importer

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

type (
	// Window is the part of MIDI note space a rank covers: pipe k sounds
	// note FirstNote+k, for k below Pipes.
	Window struct {
		FirstNote int
		Pipes     int
	}

	// Matcher maps a sample file to the pipe it belongs to. name is the base
	// name of the file and pos its position among the sample files of its
	// folder in natural sort order.
	Matcher interface {
		Match(name string, pos int, w Window) (pipe int, ok bool)
		Name() string
	}

	// MidiNumberMatcher reads the leading digits of the file name as the MIDI
	// note, e.g. "036-C.wav" is note 36.
	MidiNumberMatcher struct{}

	// PipeOrdinalMatcher reads the leading digits of the file name as the
	// 1-based pipe number, e.g. "001.wav" is the lowest pipe.
	PipeOrdinalMatcher struct{}

	// PositionalMatcher ignores the file name and gives the n-th file of a
	// folder to pipe n.
	PositionalMatcher struct{}
)

func (MidiNumberMatcher) Name() string  { return "midi" }
func (PipeOrdinalMatcher) Name() string { return "ordinal" }
func (PositionalMatcher) Name() string  { return "position" }

func (MidiNumberMatcher) Match(name string, _ int, w Window) (int, bool) {
	n, ok := leadingNumber(name)
	if !ok {
		return 0, false
	}
	return w.index(n - w.FirstNote)
}

func (PipeOrdinalMatcher) Match(name string, _ int, w Window) (int, bool) {
	n, ok := leadingNumber(name)
	if !ok {
		return 0, false
	}
	return w.index(n - 1)
}

func (PositionalMatcher) Match(_ string, pos int, w Window) (int, bool) {
	return w.index(pos)
}

// MatcherByName returns the matcher called name; empty selects the MIDI
// number matcher.
func MatcherByName(name string) (Matcher, error) {
	switch strings.ToLower(name) {
	case "", "midi":
		return MidiNumberMatcher{}, nil
	case "ordinal":
		return PipeOrdinalMatcher{}, nil
	case "position":
		return PositionalMatcher{}, nil
	}
	return nil, fmt.Errorf("unknown matcher %q, expected midi, ordinal or position", name)
}

func (w Window) index(i int) (int, bool) {
	return i, i >= 0 && i < w.Pipes
}

// leadingNumber parses the digits at the start of a file name.
func leadingNumber(name string) (int, bool) {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	end := 0
	for end < len(name) && isDigit(name[end]) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(name[:end])
	return n, err == nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// naturalLess orders strings so that digit runs compare by value: "9.wav"
// sorts before "10.wav". Letters compare case-insensitively, with the raw
// string as the tie-break so the order is total.
func naturalLess(a, b string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if isDigit(a[i]) && isDigit(b[j]) {
			si, sj := i, j
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			na := strings.TrimLeft(a[si:i], "0")
			nb := strings.TrimLeft(b[sj:j], "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}
		ca, cb := lower(a[i]), lower(b[j])
		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	if len(a)-i != len(b)-j {
		return len(a)-i < len(b)-j
	}
	return a < b
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
