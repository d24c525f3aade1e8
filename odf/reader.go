package odf

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-ini/ini"

	"github.com/organforge/pipework"
)

// Reader reads ranks from a definition file.
type Reader struct {
	file *ini.File
	// OdfRoot is the folder sample paths are relative to.
	OdfRoot string
}

var (
	ErrNoSection = errors.New("no such section")

	rankSectionRe = regexp.MustCompile(`^Rank(\d{3})$`)
)

// Open parses a definition file. src is a file name, a []byte or an
// io.Reader.
func Open(src interface{}, odfRoot string) (*Reader, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreContinuation:      true,
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, src)
	if err != nil {
		return nil, fmt.Errorf("could not parse definition file: %w", err)
	}
	return &Reader{file: f, OdfRoot: odfRoot}, nil
}

// ReadRank reads section RankNNN from src.
func ReadRank(src interface{}, ordinal int, odfRoot string) (*pipework.Rank, error) {
	r, err := Open(src, odfRoot)
	if err != nil {
		return nil, err
	}
	return r.Rank(ordinal)
}

// Ranks lists the ordinals of the rank sections in the file.
func (r *Reader) Ranks() []int {
	var ret []int
	for _, name := range r.file.SectionStrings() {
		if m := rankSectionRe.FindStringSubmatch(name); m != nil {
			n, _ := strconv.Atoi(m[1])
			ret = append(ret, n)
		}
	}
	sort.Ints(ret)
	return ret
}

// Rank reads section RankNNN. Values out of range are clamped like edits
// are; pipe keys that are missing give dummy pipes.
func (r *Reader) Rank(ordinal int) (*pipework.Rank, error) {
	name := rankSection(ordinal)
	sec, err := r.file.GetSection(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSection, name)
	}
	rank := pipework.NewRank(sec.Key("Name").String())
	rank.SetNumberOfLogicalPipes(sec.Key("NumberOfLogicalPipes").MustInt(1))
	rank.SetFirstMidiNoteNumber(sec.Key("FirstMidiNoteNumber").MustInt(36))
	rank.SetHarmonicNumber(sec.Key("HarmonicNumber").MustInt(8))
	rank.SetPitchCorrection(sec.Key("PitchCorrection").MustFloat64(0))
	rank.SetAcceptsRetuning(ParseBool(sec.Key("AcceptsRetuning").String(), true))
	rank.SetMinVelocityVolume(sec.Key("MinVelocityVolume").MustFloat64(100))
	rank.SetMaxVelocityVolume(sec.Key("MaxVelocityVolume").MustFloat64(100))
	rank.SetAmplitudeLevel(sec.Key("AmplitudeLevel").MustFloat64(100))
	rank.SetGain(sec.Key("Gain").MustFloat64(0))
	rank.SetPitchTuning(sec.Key("PitchTuning").MustFloat64(0))
	rank.SetTrackerDelay(sec.Key("TrackerDelay").MustInt(0))
	if w := sec.Key("WindchestGroup").MustInt(0); w > 0 {
		rank.SetWindchest(r.windchest(w))
	}
	for i, p := range rank.Pipes() {
		r.readPipe(sec, pipeKey(i), p)
	}
	// after the pipes, so that releases in the file are dropped
	rank.SetPercussive(ParseBool(sec.Key("Percussive").String(), false))
	return rank, nil
}

func (r *Reader) windchest(ordinal int) *pipework.WindchestGroup {
	name := windchestSection(ordinal)
	if sec, err := r.file.GetSection(name); err == nil && sec.HasKey("Name") {
		name = sec.Key("Name").String()
	}
	return &pipework.WindchestGroup{Name: name}
}

func (r *Reader) readPipe(sec *ini.Section, key string, p *pipework.Pipe) {
	path := strings.TrimSpace(sec.Key(key).String())
	switch {
	case path == "" || strings.EqualFold(path, Dummy):
		return
	case pipework.IsReference(path):
		if ref, err := pipework.ParseReference(path); err == nil {
			p.Borrow(ref)
		}
		return
	}
	first := r.attack(sec, key, path)
	p.AddAttack(first)
	for a := 1; a <= sec.Key(key+"AttackCount").MustInt(0); a++ {
		k := key + "Attack" + Ordinal(a)
		if !sec.HasKey(k) {
			continue
		}
		p.AddAttack(r.attack(sec, k, sec.Key(k).String()))
	}
	for n := 1; n <= sec.Key(key+"ReleaseCount").MustInt(0); n++ {
		k := key + "Release" + Ordinal(n)
		if !sec.HasKey(k) {
			continue
		}
		p.AddRelease(r.release(sec, k, sec.Key(k).String()))
	}
}

func (r *Reader) attack(sec *ini.Section, key, path string) pipework.Attack {
	a := pipework.NewAttack(r.fullPath(path), localPath(path))
	a.LoadRelease = ParseBool(sec.Key(key+"LoadRelease").String(), true)
	a.SetAttackVelocity(sec.Key(key + "AttackVelocity").MustInt(0))
	a.SetAttackStart(sec.Key(key + "AttackStart").MustInt(0))
	a.IsTremulant = pipework.TremulantFromSentinel(sec.Key(key + "IsTremulant").MustInt(-1))
	a.SetCuePoint(sec.Key(key + "CuePoint").MustInt(-1))
	a.SetReleaseEnd(sec.Key(key + "ReleaseEnd").MustInt(-1))
	a.SetMaxKeyPressTime(sec.Key(key + "MaxKeyPressTime").MustInt(-1))
	a.SetMaxTimeSinceLastRelease(sec.Key(key + "MaxTimeSinceLastRelease").MustInt(-1))
	return a
}

func (r *Reader) release(sec *ini.Section, key, path string) pipework.Release {
	rel := pipework.NewRelease(r.fullPath(path), localPath(path))
	rel.IsTremulant = pipework.TremulantFromSentinel(sec.Key(key + "IsTremulant").MustInt(-1))
	rel.SetCuePoint(sec.Key(key + "CuePoint").MustInt(-1))
	rel.SetReleaseEnd(sec.Key(key + "ReleaseEnd").MustInt(-1))
	rel.SetMaxKeyPressTime(sec.Key(key + "MaxKeyPressTime").MustInt(-1))
	return rel
}

func (r *Reader) fullPath(path string) string {
	local := localPath(path)
	if filepath.IsAbs(local) {
		return local
	}
	return filepath.Join(r.OdfRoot, local)
}

// localPath converts a backslash separated path to the local form.
func localPath(path string) string {
	return filepath.FromSlash(strings.ReplaceAll(path, `\`, "/"))
}
