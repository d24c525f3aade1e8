package session

import "github.com/organforge/pipework"

type (
	// Int is a clamped integer attribute of the edited rank.
	Int struct {
		IntData
	}

	IntData interface {
		Value() int
		Range() IntRange

		setValue(int) bool
	}

	IntRange struct {
		Min, Max int
	}

	FirstMidiNote  Session
	LogicalPipes   Session
	HarmonicNumber Session
	TrackerDelay   Session
)

func (v Int) Add(delta int) (ok bool) {
	return v.Set(v.Value() + delta)
}

// Set clamps value to the range and stores it. It reports false when the
// value did not change, including when a confirmation was declined.
func (v Int) Set(value int) (ok bool) {
	value = v.Range().Clamp(value)
	if value == v.Value() {
		return false
	}
	return v.setValue(value)
}

func (r IntRange) Clamp(value int) int {
	return max(min(value, r.Max), r.Min)
}

// Session methods

func (s *Session) FirstMidiNote() *FirstMidiNote   { return (*FirstMidiNote)(s) }
func (s *Session) LogicalPipes() *LogicalPipes     { return (*LogicalPipes)(s) }
func (s *Session) HarmonicNumber() *HarmonicNumber { return (*HarmonicNumber)(s) }
func (s *Session) TrackerDelay() *TrackerDelay     { return (*TrackerDelay)(s) }

// FirstMidiNote

func (v *FirstMidiNote) Int() Int        { return Int{v} }
func (v *FirstMidiNote) Range() IntRange { return IntRange{0, pipework.MaxMidiNote} }
func (v *FirstMidiNote) Value() int {
	return (*Session)(v).read(func(r *pipework.Rank) int { return r.FirstMidiNoteNumber() })
}
func (v *FirstMidiNote) setValue(value int) bool {
	return (*Session)(v).SetFirstMidiNoteNumber(value)
}

// LogicalPipes

func (v *LogicalPipes) Int() Int        { return Int{v} }
func (v *LogicalPipes) Range() IntRange { return IntRange{1, pipework.MaxLogicalPipes} }
func (v *LogicalPipes) Value() int {
	return (*Session)(v).read(func(r *pipework.Rank) int { return r.NumberOfLogicalPipes() })
}
func (v *LogicalPipes) setValue(value int) bool {
	return (*Session)(v).SetNumberOfLogicalPipes(value)
}

// HarmonicNumber

func (v *HarmonicNumber) Int() Int        { return Int{v} }
func (v *HarmonicNumber) Range() IntRange { return IntRange{1, 1024} }
func (v *HarmonicNumber) Value() int {
	return (*Session)(v).read(func(r *pipework.Rank) int { return r.HarmonicNumber() })
}
func (v *HarmonicNumber) setValue(value int) bool {
	(*Session)(v).Edit("HarmonicNumber", 10, func(r *pipework.Rank) { r.SetHarmonicNumber(value) })
	return true
}

// TrackerDelay

func (v *TrackerDelay) Int() Int        { return Int{v} }
func (v *TrackerDelay) Range() IntRange { return IntRange{0, 10000} }
func (v *TrackerDelay) Value() int {
	return (*Session)(v).read(func(r *pipework.Rank) int { return r.TrackerDelay() })
}
func (v *TrackerDelay) setValue(value int) bool {
	(*Session)(v).Edit("TrackerDelay", 10, func(r *pipework.Rank) { r.SetTrackerDelay(value) })
	return true
}

func (s *Session) read(f func(r *pipework.Rank) int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return f(s.rank)
}
