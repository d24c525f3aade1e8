package pipework

import (
	"fmt"
	"iter"
	"path/filepath"

	"gitlab.com/gomidi/midi/v2"
)

// Attribute limits of a rank.
const (
	MaxMidiNote     = 256
	MaxLogicalPipes = 192
)

var (
	midiNoteRange        = intRange{0, MaxMidiNote}
	logicalPipeRange     = intRange{1, MaxLogicalPipes}
	harmonicNumberRange  = intRange{1, 1024}
	trackerDelayRange    = intRange{0, 10000}
	velocityVolumeLimits = [2]float64{0, 10000}
	amplitudeLimits      = [2]float64{0, 1000}
	gainLimits           = [2]float64{-120, 40}
	pitchTuningLimits    = [2]float64{-1800, 1800}
	pitchCorrLimits      = [2]float64{-1200, 1200}
)

// Rank is a set of pipes of one timbre over a range of MIDI notes. Pipe at
// index k sounds MIDI note FirstMidiNoteNumber()+k. The number of logical
// pipes is the length of the pipe list, so the two can never disagree.
//
// Pipes are created and destroyed only by the rank: growing or shrinking
// the pipe count, shifting the first MIDI note, and clearing. Callers edit
// the pipes they get from Pipe but cannot add or remove pipes themselves.
//
// Rank is not safe for concurrent use.
type Rank struct {
	name              string
	windchest         *WindchestGroup
	firstMidiNote     int
	harmonicNumber    int
	pitchCorrection   float64
	percussive        bool
	acceptsRetuning   bool
	minVelocityVolume float64
	maxVelocityVolume float64
	amplitudeLevel    float64
	gain              float64
	pitchTuning       float64
	trackerDelay      int
	pipesRootPath     string

	pipes []Pipe
}

// NewRank returns a rank with one dummy pipe starting at MIDI note 36.
func NewRank(name string) *Rank {
	return &Rank{
		name:              name,
		firstMidiNote:     36,
		harmonicNumber:    8,
		acceptsRetuning:   true,
		minVelocityVolume: 100,
		maxVelocityVolume: 100,
		amplitudeLevel:    100,
		pipes:             []Pipe{NewDummyPipe()},
	}
}

func (r *Rank) Name() string        { return r.name }
func (r *Rank) SetName(name string) { r.name = name }

func (r *Rank) Windchest() *WindchestGroup     { return r.windchest }
func (r *Rank) SetWindchest(w *WindchestGroup) { r.windchest = w }

func (r *Rank) HarmonicNumber() int     { return r.harmonicNumber }
func (r *Rank) SetHarmonicNumber(v int) { r.harmonicNumber = harmonicNumberRange.Clamp(v) }

func (r *Rank) PitchCorrection() float64 { return r.pitchCorrection }
func (r *Rank) SetPitchCorrection(v float64) {
	r.pitchCorrection = clamp(v, pitchCorrLimits[0], pitchCorrLimits[1])
}

func (r *Rank) IsPercussive() bool { return r.percussive }

// SetPercussive sets the percussive flag. Percussive pipes never carry
// releases, so turning it on drops the releases of every pipe and stops
// attacks from playing their own release part.
func (r *Rank) SetPercussive(v bool) {
	r.percussive = v
	if v {
		for i := range r.pipes {
			r.pipes[i].clearReleases()
			for a := range r.pipes[i].attacks {
				r.pipes[i].attacks[a].LoadRelease = false
			}
		}
	}
}

func (r *Rank) AcceptsRetuning() bool     { return r.acceptsRetuning }
func (r *Rank) SetAcceptsRetuning(v bool) { r.acceptsRetuning = v }

func (r *Rank) MinVelocityVolume() float64 { return r.minVelocityVolume }
func (r *Rank) SetMinVelocityVolume(v float64) {
	r.minVelocityVolume = clamp(v, velocityVolumeLimits[0], velocityVolumeLimits[1])
}

func (r *Rank) MaxVelocityVolume() float64 { return r.maxVelocityVolume }
func (r *Rank) SetMaxVelocityVolume(v float64) {
	r.maxVelocityVolume = clamp(v, velocityVolumeLimits[0], velocityVolumeLimits[1])
}

func (r *Rank) AmplitudeLevel() float64 { return r.amplitudeLevel }
func (r *Rank) SetAmplitudeLevel(v float64) {
	r.amplitudeLevel = clamp(v, amplitudeLimits[0], amplitudeLimits[1])
}

func (r *Rank) Gain() float64     { return r.gain }
func (r *Rank) SetGain(v float64) { r.gain = clamp(v, gainLimits[0], gainLimits[1]) }

func (r *Rank) PitchTuning() float64 { return r.pitchTuning }
func (r *Rank) SetPitchTuning(v float64) {
	r.pitchTuning = clamp(v, pitchTuningLimits[0], pitchTuningLimits[1])
}

func (r *Rank) TrackerDelay() int     { return r.trackerDelay }
func (r *Rank) SetTrackerDelay(v int) { r.trackerDelay = trackerDelayRange.Clamp(v) }

// PipesRootPath is the folder samples were last imported from.
func (r *Rank) PipesRootPath() string     { return r.pipesRootPath }
func (r *Rank) SetPipesRootPath(p string) { r.pipesRootPath = p }

func (r *Rank) FirstMidiNoteNumber() int  { return r.firstMidiNote }
func (r *Rank) NumberOfLogicalPipes() int { return len(r.pipes) }

// SetNumberOfLogicalPipes grows the rank to n pipes by appending dummy
// pipes at the top. n is clamped to the legal pipe count. A smaller n does
// nothing and returns false: deleting pipes needs an explicit ShrinkTo.
func (r *Rank) SetNumberOfLogicalPipes(n int) bool {
	n = logicalPipeRange.Clamp(n)
	if n <= len(r.pipes) {
		return false
	}
	for len(r.pipes) < n {
		r.addDummyPipeBack()
	}
	return true
}

// ShrinkTo deletes the top pipes so that n remain. n is clamped between 1
// and the current pipe count. The pipes are deleted without asking; ask the
// user before calling.
func (r *Rank) ShrinkTo(n int) {
	n = clamp(n, 1, len(r.pipes))
	for len(r.pipes) > n {
		r.removePipeBack()
	}
}

// SetFirstMidiNoteNumber moves the rank to start at note first. When the
// rank holds only dummy pipes only the attribute changes. Otherwise the pipe
// list is a window over MIDI note space and moves with its origin: raising
// the first note by d discards the d lowest pipes and adds d dummy pipes at
// the top, lowering it discards the d highest pipes and adds d dummy pipes at
// the bottom. Pipes that still sound the same note keep their content and the
// pipe count is unchanged.
func (r *Rank) SetFirstMidiNoteNumber(first int) {
	first = midiNoteRange.Clamp(first)
	old := r.firstMidiNote
	r.firstMidiNote = first
	if first == old || r.HasOnlyDummyPipes() {
		return
	}
	if first > old {
		for d := first - old; d > 0; d-- {
			r.addDummyPipeBack()
			r.removePipeFront()
		}
	} else {
		for d := old - first; d > 0; d-- {
			r.addDummyPipeFront()
			r.removePipeBack()
		}
	}
}

// HasOnlyDummyPipes reports whether no pipe has samples or a reference.
func (r *Rank) HasOnlyDummyPipes() bool {
	for i := range r.pipes {
		if !r.pipes[i].IsDummy() {
			return false
		}
	}
	return true
}

// ClearAllPipes resets every pipe to a dummy pipe, keeping the pipe count.
func (r *Rank) ClearAllPipes() {
	r.CreateDummyPipes()
}

// CreateDummyPipes replaces the pipe list with NumberOfLogicalPipes dummy
// pipes.
func (r *Rank) CreateDummyPipes() {
	n := len(r.pipes)
	r.pipes = make([]Pipe, n)
	for i := range r.pipes {
		r.pipes[i] = NewDummyPipe()
	}
}

// ClearPipeAt resets the pipe at index i to a dummy pipe.
func (r *Rank) ClearPipeAt(i int) bool {
	p := r.Pipe(i)
	if p == nil {
		return false
	}
	p.Clear()
	return true
}

// Pipe returns the pipe at index i, or nil if there is no such pipe.
func (r *Rank) Pipe(i int) *Pipe {
	if i < 0 || i >= len(r.pipes) {
		return nil
	}
	return &r.pipes[i]
}

// Pipes iterates the pipes from the lowest note up.
func (r *Rank) Pipes() iter.Seq2[int, *Pipe] {
	return func(yield func(int, *Pipe) bool) {
		for i := range r.pipes {
			if !yield(i, &r.pipes[i]) {
				return
			}
		}
	}
}

// MidiNoteOf returns the MIDI note sounded by the pipe at index i.
func (r *Rank) MidiNoteOf(i int) int { return r.firstMidiNote + i }

// PipeIndexFor returns the index of the pipe sounding note.
func (r *Rank) PipeIndexFor(note int) (int, bool) {
	i := note - r.firstMidiNote
	return i, i >= 0 && i < len(r.pipes)
}

// PipeLabel names the pipe at index i by its ordinal and note, e.g.
// "Pipe001 (036 C)".
func (r *Rank) PipeLabel(i int) string {
	note := r.MidiNoteOf(i)
	name := "?"
	if note >= 0 && note < 128 {
		name = midi.Note(uint8(note)).Name()
	}
	return fmt.Sprintf("Pipe%03d (%03d %s)", i+1, note, name)
}

// AddAttack loads the sample at path as a new attack of pipe i.
func (r *Rank) AddAttack(i int, path string, loadRelease bool) bool {
	p := r.Pipe(i)
	if p == nil {
		return false
	}
	a := NewAttack(path, filepath.Base(path))
	a.LoadRelease = loadRelease && !r.percussive
	return p.AddAttack(a)
}

// AddRelease loads the sample at path as a new release of pipe i. With
// extractKeyPressTime the max key press time is read from the sample's
// folder name, which follows DefaultReleasePrefix as in "rel500". Pipes
// without a real attack refuse releases.
func (r *Rank) AddRelease(i int, path string, extractKeyPressTime bool) bool {
	p := r.Pipe(i)
	if p == nil || r.percussive {
		return false
	}
	rel := NewRelease(path, filepath.Base(path))
	if extractKeyPressTime {
		rel.MaxKeyPressTime, _ = KeyPressTimeFromFolder(filepath.Base(filepath.Dir(path)), DefaultReleasePrefix)
	}
	return p.AddRelease(rel)
}

// DeleteAttack deletes attack a of pipe i; the last attack of a pipe cannot
// be deleted.
func (r *Rank) DeleteAttack(i, a int) bool {
	p := r.Pipe(i)
	return p != nil && p.DeleteAttack(a)
}

func (r *Rank) DeleteRelease(i, rel int) bool {
	p := r.Pipe(i)
	return p != nil && p.DeleteRelease(rel)
}

// PropagateAttackProperties copies the playback parameters of attack a of
// pipe i to every other attack of the rank loaded from the same folder. It
// returns the number of attacks changed.
func (r *Rank) PropagateAttackProperties(i, a int) int {
	p := r.Pipe(i)
	if p == nil {
		return 0
	}
	src := p.Attack(a)
	if src == nil || src.Dir() == "" {
		return 0
	}
	srcCopy := *src
	dir := srcCopy.Dir()
	changed := 0
	for pi := range r.pipes {
		for ai := range r.pipes[pi].attacks {
			if pi == i && ai == a {
				continue
			}
			atk := &r.pipes[pi].attacks[ai]
			if atk.Dir() == dir {
				atk.CopyPropertiesFrom(&srcCopy)
				changed++
			}
		}
	}
	return changed
}

// PropagateReleaseProperties is PropagateAttackProperties for releases.
func (r *Rank) PropagateReleaseProperties(i, rel int) int {
	p := r.Pipe(i)
	if p == nil {
		return 0
	}
	src := p.Release(rel)
	if src == nil {
		return 0
	}
	srcCopy := *src
	dir := srcCopy.Dir()
	changed := 0
	for pi := range r.pipes {
		for ri := range r.pipes[pi].releases {
			if pi == i && ri == rel {
				continue
			}
			rl := &r.pipes[pi].releases[ri]
			if rl.Dir() == dir {
				rl.CopyPropertiesFrom(&srcCopy)
				changed++
			}
		}
	}
	return changed
}

// Copy makes a deep copy of the rank. The windchest group is shared.
func (r *Rank) Copy() *Rank {
	c := *r
	c.pipes = make([]Pipe, len(r.pipes))
	for i := range r.pipes {
		c.pipes[i] = r.pipes[i].Copy()
	}
	return &c
}

func (r *Rank) addDummyPipeBack() {
	r.pipes = append(r.pipes, NewDummyPipe())
}

func (r *Rank) addDummyPipeFront() {
	r.pipes = append([]Pipe{NewDummyPipe()}, r.pipes...)
}

func (r *Rank) removePipeFront() {
	r.pipes = r.pipes[1:]
}

func (r *Rank) removePipeBack() {
	r.pipes = r.pipes[:len(r.pipes)-1]
}
